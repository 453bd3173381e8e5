package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ruthwik162/OTSchedular-Backend/internal/booking"
	"github.com/ruthwik162/OTSchedular-Backend/internal/staff"
)

var validate = validator.New()

func bookAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := chi.URLParam(r, "email")

		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if err := validate.Struct(req); err != nil {
			bookingsTotal.WithLabelValues("validation_error").Inc()
			writeError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}

		appt, err := svc.Book(r.Context(), email, booking.Input{
			Date:   req.Date,
			Band:   req.TimeBand,
			RoomID: req.RoomID,
		})
		if err != nil {
			handleBookError(w, err)
			return
		}

		bookingsTotal.WithLabelValues("created").Inc()
		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func handleBookError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrMissingField),
		errors.Is(err, booking.ErrInvalidTimeBand),
		errors.Is(err, booking.ErrInvalidDate),
		errors.Is(err, booking.ErrMissingCaseType):
		bookingsTotal.WithLabelValues("validation_error").Inc()
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, booking.ErrPatientNotFound):
		bookingsTotal.WithLabelValues("not_found").Inc()
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, booking.ErrSlotOccupied):
		bookingsTotal.WithLabelValues("conflict").Inc()
		slotConflictsTotal.Inc()
		writeError(w, http.StatusConflict, "slot_occupied", "selected slot is already occupied")
	case errors.Is(err, booking.ErrDuplicateAppointment):
		bookingsTotal.WithLabelValues("conflict").Inc()
		writeError(w, http.StatusConflict, "duplicate_appointment", err.Error())
	case errors.Is(err, staff.ErrNoDoctorAvailable),
		errors.Is(err, staff.ErrNoAssistantAvailable),
		errors.Is(err, staff.ErrNotEnoughNurses):
		bookingsTotal.WithLabelValues("insufficient_staff").Inc()
		writeError(w, http.StatusInternalServerError, "insufficient_staff", "not enough medical staff available")
	default:
		bookingsTotal.WithLabelValues("error").Inc()
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func listAppointmentsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appts, err := svc.ListAll(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponses(appts))
	}
}

func listDoctorAppointmentsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := chi.URLParam(r, "email")

		appts, err := svc.ListByDoctor(r.Context(), email)
		if err != nil {
			if errors.Is(err, staff.ErrMemberNotFound) {
				writeError(w, http.StatusNotFound, "doctor_not_found", "doctor not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponses(appts))
	}
}

func getAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, booking.ErrAppointmentNotFound) {
				writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func updateAppointmentStatusHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}

		appt, err := svc.UpdateStatus(r.Context(), id, req.Status)
		if err != nil {
			switch {
			case errors.Is(err, booking.ErrInvalidStatus):
				writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
			case errors.Is(err, booking.ErrAppointmentNotFound):
				writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			}
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}
