package consult

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ruthwik162/OTSchedular-Backend/internal/booking"
)

var ErrRequestNotFound = errors.New("consultation request not found")

type Repository interface {
	Create(ctx context.Context, r *Request) (*Request, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)

	// UpdateStatus sets the status and, when approvedAt is non-nil, the
	// approval timestamp.
	UpdateStatus(ctx context.Context, id uuid.UUID, status booking.Status, approvedAt *time.Time) (*Request, error)

	ListByPatient(ctx context.Context, patientEmail string) ([]Request, error)
	ListByDoctor(ctx context.Context, doctorEmail string) ([]Request, error)
}
