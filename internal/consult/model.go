package consult

import (
	"time"

	"github.com/google/uuid"

	"github.com/ruthwik162/OTSchedular-Backend/internal/booking"
)

// Request is a patient's ask for a consultation slot with a named doctor.
// It is a separate lifecycle from OT appointments: no room, no staff
// selection, just the pending/approved/confirmed/cancelled machine.
type Request struct {
	ID           uuid.UUID
	DoctorEmail  string
	PatientEmail string
	Date         string
	Slot         string
	Status       booking.Status
	ApprovedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
