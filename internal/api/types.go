package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/ruthwik162/OTSchedular-Backend/internal/booking"
	"github.com/ruthwik162/OTSchedular-Backend/internal/consult"
	"github.com/ruthwik162/OTSchedular-Backend/internal/report"
)

type BookAppointmentRequest struct {
	Date     string `json:"date" validate:"required"`
	TimeBand string `json:"timeBand" validate:"required"`
	RoomID   string `json:"roomId" validate:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved confirmed cancelled"`
}

type CreateConsultRequest struct {
	DoctorEmail  string `json:"doctorEmail" validate:"required,email"`
	PatientEmail string `json:"patientEmail" validate:"required,email"`
	Date         string `json:"date" validate:"required"`
	Slot         string `json:"slot" validate:"required"`
}

type AppointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	PatientEmail    string    `json:"patientEmail"`
	PatientName     string    `json:"patientName"`
	CaseType        string    `json:"caseType"`
	RoomID          string    `json:"roomId"`
	Date            string    `json:"date"`
	TimeBand        string    `json:"timeBand"`
	Doctor          string    `json:"doctor"`
	DoctorEmail     string    `json:"doctorEmail"`
	AssistantDoctor string    `json:"assistantDoctor"`
	AssistantEmail  string    `json:"assistantDoctorEmail"`
	Nurses          []string  `json:"nurses"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toAppointmentResponse(a *booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		PatientEmail:    a.PatientEmail,
		PatientName:     a.PatientName,
		CaseType:        a.CaseType,
		RoomID:          a.RoomID,
		Date:            a.Date,
		TimeBand:        string(a.Band),
		Doctor:          a.DoctorName,
		DoctorEmail:     a.DoctorEmail,
		AssistantDoctor: a.AssistantName,
		AssistantEmail:  a.AssistantEmail,
		Nurses:          a.Nurses,
		Status:          string(a.Status),
		CreatedAt:       a.CreatedAt,
	}
}

func toAppointmentResponses(appts []booking.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, toAppointmentResponse(&appts[i]))
	}
	return out
}

type ConsultResponse struct {
	ID           uuid.UUID  `json:"id"`
	DoctorEmail  string     `json:"doctorEmail"`
	PatientEmail string     `json:"patientEmail"`
	Date         string     `json:"date"`
	Slot         string     `json:"slot"`
	Status       string     `json:"status"`
	ApprovedAt   *time.Time `json:"approvedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func toConsultResponse(r *consult.Request) ConsultResponse {
	return ConsultResponse{
		ID:           r.ID,
		DoctorEmail:  r.DoctorEmail,
		PatientEmail: r.PatientEmail,
		Date:         r.Date,
		Slot:         r.Slot,
		Status:       string(r.Status),
		ApprovedAt:   r.ApprovedAt,
		CreatedAt:    r.CreatedAt,
	}
}

func toConsultResponses(requests []consult.Request) []ConsultResponse {
	out := make([]ConsultResponse, 0, len(requests))
	for i := range requests {
		out = append(out, toConsultResponse(&requests[i]))
	}
	return out
}

type ReportResponse struct {
	ID           uuid.UUID `json:"id"`
	PatientEmail string    `json:"patientEmail"`
	FileURL      string    `json:"fileUrl"`
	FileName     string    `json:"fileName"`
	FileSize     int64     `json:"fileSize"`
	UploadedBy   string    `json:"uploadedBy"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

func toReportResponse(r *report.Report) ReportResponse {
	return ReportResponse{
		ID:           r.ID,
		PatientEmail: r.PatientEmail,
		FileURL:      r.FileURL,
		FileName:     r.FileName,
		FileSize:     r.FileSize,
		UploadedBy:   r.UploadedBy,
		UploadedAt:   r.UploadedAt,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
