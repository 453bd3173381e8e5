package report

import (
	"time"

	"github.com/google/uuid"
)

// Report is uploaded medical-report metadata. The file itself lives in
// object storage; rows are append-only.
type Report struct {
	ID           uuid.UUID
	PatientEmail string
	FileURL      string
	FileName     string
	FileSize     int64
	UploadedBy   string
	UploadedAt   time.Time
}
