package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ruthwik162/OTSchedular-Backend/internal/booking"
	"github.com/ruthwik162/OTSchedular-Backend/internal/consult"
	"github.com/ruthwik162/OTSchedular-Backend/internal/staff"
)

func createConsultHandler(svc *consult.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateConsultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}

		created, err := svc.Create(r.Context(), req.DoctorEmail, req.PatientEmail, req.Date, req.Slot)
		if err != nil {
			switch {
			case errors.Is(err, consult.ErrMissingField):
				writeError(w, http.StatusBadRequest, "validation_error", err.Error())
			case errors.Is(err, consult.ErrDoctorNotFound):
				writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
			case errors.Is(err, staff.ErrMemberNotFound):
				writeError(w, http.StatusNotFound, "patient_not_found", "patient not found")
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			}
			return
		}

		writeJSON(w, http.StatusCreated, toConsultResponse(created))
	}
}

func listPatientConsultsHandler(svc *consult.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := chi.URLParam(r, "email")

		requests, err := svc.ListByPatient(r.Context(), email)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toConsultResponses(requests))
	}
}

func listDoctorConsultsHandler(svc *consult.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := chi.URLParam(r, "email")

		requests, err := svc.ListByDoctor(r.Context(), email)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toConsultResponses(requests))
	}
}

func getConsultHandler(svc *consult.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_id", "id must be a valid UUID")
			return
		}

		req, err := svc.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, consult.ErrRequestNotFound) {
				writeError(w, http.StatusNotFound, "request_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toConsultResponse(req))
	}
}

func updateConsultStatusHandler(svc *consult.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_id", "id must be a valid UUID")
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

		updated, err := svc.UpdateStatus(r.Context(), id, req.Status)
		if err != nil {
			switch {
			case errors.Is(err, booking.ErrInvalidStatus):
				writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
			case errors.Is(err, consult.ErrRequestNotFound):
				writeError(w, http.StatusNotFound, "request_not_found", err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			}
			return
		}

		writeJSON(w, http.StatusOK, toConsultResponse(updated))
	}
}
