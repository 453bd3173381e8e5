package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ruthwik162/OTSchedular-Backend/internal/report"
)

// 25 MB upload cap, same order of magnitude as typical scan/PDF reports.
const maxReportSize = 25 << 20

func uploadReportHandler(svc *report.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := chi.URLParam(r, "email")

		if err := r.ParseMultipartForm(maxReportSize); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_multipart_form", err.Error())
			return
		}

		file, header, err := r.FormFile("report")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing_file", "form field 'report' is required")
			return
		}
		defer file.Close()

		uploadedBy := r.FormValue("uploadedBy")
		contentType := header.Header.Get("Content-Type")

		created, err := svc.Upload(r.Context(), email, header.Filename, contentType, uploadedBy, file, header.Size)
		if err != nil {
			if errors.Is(err, report.ErrPatientNotFound) {
				writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, toReportResponse(created))
	}
}

func listReportsHandler(svc *report.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := chi.URLParam(r, "email")

		reports, err := svc.ListByPatient(r.Context(), email)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		out := make([]ReportResponse, 0, len(reports))
		for i := range reports {
			out = append(out, toReportResponse(&reports[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}
