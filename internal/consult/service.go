package consult

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ruthwik162/OTSchedular-Backend/internal/booking"
	"github.com/ruthwik162/OTSchedular-Backend/internal/notify"
	"github.com/ruthwik162/OTSchedular-Backend/internal/staff"
)

var (
	ErrMissingField   = errors.New("missing required field")
	ErrDoctorNotFound = errors.New("doctor not found")
)

// Service owns the consultation-request lifecycle. Status updates validate
// the target against the allow-list only; there is no transition table, so
// any listed status is reachable from any other.
type Service struct {
	repo     Repository
	dir      staff.Directory
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, dir staff.Directory, notifier notify.Notifier, log *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		dir:      dir,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Create registers a pending request after checking both parties exist.
func (s *Service) Create(ctx context.Context, doctorEmail, patientEmail, date, slot string) (*Request, error) {
	switch {
	case strings.TrimSpace(doctorEmail) == "":
		return nil, fmt.Errorf("%w: doctorEmail", ErrMissingField)
	case strings.TrimSpace(patientEmail) == "":
		return nil, fmt.Errorf("%w: patientEmail", ErrMissingField)
	case strings.TrimSpace(date) == "":
		return nil, fmt.Errorf("%w: date", ErrMissingField)
	case strings.TrimSpace(slot) == "":
		return nil, fmt.Errorf("%w: slot", ErrMissingField)
	}

	doctor, err := s.dir.FindByEmail(ctx, doctorEmail)
	if err != nil {
		if errors.Is(err, staff.ErrMemberNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if doctor.Role != staff.RoleDoctor {
		return nil, ErrDoctorNotFound
	}

	if _, err := s.dir.FindByEmail(ctx, patientEmail); err != nil {
		if errors.Is(err, staff.ErrMemberNotFound) {
			return nil, staff.ErrMemberNotFound
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	created, err := s.repo.Create(ctx, &Request{
		DoctorEmail:  doctorEmail,
		PatientEmail: patientEmail,
		Date:         date,
		Slot:         slot,
		Status:       booking.StatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("persist request: %w", err)
	}

	s.notifyBoth(created, "New consultation request",
		fmt.Sprintf("A consultation with %s on %s (%s) has been requested and is pending approval.",
			doctorEmail, date, slot))

	return created, nil
}

// UpdateStatus moves a request to any allow-listed status. A transition to
// approved stamps ApprovedAt.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Request, error) {
	if !booking.AllowedStatus(status) {
		return nil, fmt.Errorf("%w: %q", booking.ErrInvalidStatus, status)
	}

	var approvedAt *time.Time
	if booking.Status(status) == booking.StatusApproved {
		now := s.now()
		approvedAt = &now
	}

	updated, err := s.repo.UpdateStatus(ctx, id, booking.Status(status), approvedAt)
	if err != nil {
		return nil, err
	}

	s.notifyBoth(updated, fmt.Sprintf("Consultation request %s", updated.Status),
		fmt.Sprintf("The consultation on %s (%s) is now %s.", updated.Date, updated.Slot, updated.Status))

	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientEmail string) ([]Request, error) {
	return s.repo.ListByPatient(ctx, patientEmail)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorEmail string) ([]Request, error) {
	return s.repo.ListByDoctor(ctx, doctorEmail)
}

// notifyBoth mails patient and doctor best-effort, off the request path.
func (s *Service) notifyBoth(r *Request, subject, body string) {
	msg := notify.Message{
		Recipients: []string{r.PatientEmail, r.DoctorEmail},
		Subject:    subject,
		Body:       body,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := s.notifier.Send(ctx, msg); err != nil {
			s.log.Error("send consultation notification",
				zap.String("request_id", r.ID.String()),
				zap.Error(err))
		}
	}()
}
