package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

// Store is the persistent appointment record. It is the sole writer of
// appointment state; slot occupancy lives in the Registry.
type Store interface {
	Create(ctx context.Context, appt *Appointment) (*Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// FindActiveByPatient returns the patient's non-cancelled appointment,
	// or ErrAppointmentNotFound.
	FindActiveByPatient(ctx context.Context, patientEmail string) (*Appointment, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, error)

	ListAll(ctx context.Context) ([]Appointment, error)
	ListByDoctorEmail(ctx context.Context, doctorEmail string) ([]Appointment, error)
	ListByPatientEmail(ctx context.Context, patientEmail string) ([]Appointment, error)
}
