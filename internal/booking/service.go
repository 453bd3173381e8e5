package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ruthwik162/OTSchedular-Backend/internal/notify"
	"github.com/ruthwik162/OTSchedular-Backend/internal/staff"
)

var (
	ErrMissingField         = errors.New("missing required field")
	ErrInvalidTimeBand      = errors.New("invalid time band")
	ErrInvalidDate          = errors.New("invalid date, want YYYY-MM-DD")
	ErrPatientNotFound      = errors.New("patient not found")
	ErrMissingCaseType      = errors.New("patient has no case type")
	ErrDuplicateAppointment = errors.New("patient already has an active appointment")
	ErrInvalidStatus        = errors.New("invalid appointment status")
)

// Input is one OT booking request. The patient is identified separately,
// by email.
type Input struct {
	Date   string
	Band   string
	RoomID string
}

// Service is the booking orchestrator: it validates the request, reserves
// the slot, selects staff, persists the appointment, stamps nurse
// cooldowns and dispatches notification.
type Service struct {
	store       Store
	registry    Registry
	dir         staff.Directory
	selector    *staff.Selector
	notifier    notify.Notifier
	log         *zap.Logger
	notifyStaff bool
	now         func() time.Time
}

func NewService(store Store, registry Registry, dir staff.Directory, selector *staff.Selector, notifier notify.Notifier, log *zap.Logger, notifyStaff bool) *Service {
	return &Service{
		store:       store,
		registry:    registry,
		dir:         dir,
		selector:    selector,
		notifier:    notifier,
		log:         log,
		notifyStaff: notifyStaff,
		now:         time.Now,
	}
}

// Book runs the full booking workflow. The slot is reserved first, as a
// single atomic test-and-set, and released again if any later step fails,
// so two concurrent requests for the same key can never both persist an
// appointment.
func (s *Service) Book(ctx context.Context, patientEmail string, in Input) (*Appointment, error) {
	if err := validateInput(patientEmail, in); err != nil {
		return nil, err
	}

	key := SlotKey{RoomID: in.RoomID, Date: in.Date, Band: TimeBand(in.Band)}

	if err := s.registry.Reserve(ctx, key); err != nil {
		return nil, err
	}

	appt, err := s.bookReserved(ctx, patientEmail, key)
	if err != nil {
		if relErr := s.registry.Release(ctx, key); relErr != nil {
			s.log.Error("release slot after failed booking",
				zap.String("slot", key.String()),
				zap.Error(relErr))
		}
		return nil, err
	}

	return appt, nil
}

func (s *Service) bookReserved(ctx context.Context, patientEmail string, key SlotKey) (*Appointment, error) {
	// One active OT appointment per patient.
	existing, err := s.store.FindActiveByPatient(ctx, patientEmail)
	if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
		return nil, fmt.Errorf("check existing appointment: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateAppointment
	}

	patient, err := s.dir.FindByEmail(ctx, patientEmail)
	if err != nil {
		if errors.Is(err, staff.ErrMemberNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if strings.TrimSpace(patient.CaseType) == "" {
		return nil, ErrMissingCaseType
	}

	team, err := s.selector.SelectTeam(ctx, patient.CaseType)
	if err != nil {
		return nil, err
	}

	nurseNames := make([]string, 0, len(team.Nurses))
	for _, n := range team.Nurses {
		nurseNames = append(nurseNames, n.DisplayName)
	}

	appt := &Appointment{
		ID:             uuid.New(),
		PatientEmail:   patient.Email,
		PatientName:    patient.DisplayName,
		CaseType:       patient.CaseType,
		RoomID:         key.RoomID,
		Date:           key.Date,
		Band:           key.Band,
		DoctorName:     team.Doctor.DisplayName,
		DoctorEmail:    team.Doctor.Email,
		AssistantName:  team.Assistant.DisplayName,
		AssistantEmail: team.Assistant.Email,
		Nurses:         nurseNames,
		Status:         StatusAssigned,
	}

	created, err := s.store.Create(ctx, appt)
	if err != nil {
		return nil, fmt.Errorf("persist appointment: %w", err)
	}

	// The booking is committed. Cooldown stamping and notification are
	// best-effort from here on.
	assignedAt := s.now()
	for _, n := range team.Nurses {
		if err := s.dir.UpdateLastAssigned(ctx, n.ID, assignedAt); err != nil {
			s.log.Error("stamp nurse cooldown",
				zap.String("nurse", n.Email),
				zap.Error(err))
		}
	}

	s.dispatchBookingMail(created, team)

	return created, nil
}

// UpdateStatus moves an appointment to any allow-listed status. A move to
// cancelled frees the slot for rebooking.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	if !AllowedStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	updated, err := s.store.UpdateStatus(ctx, id, Status(status))
	if err != nil {
		return nil, err
	}

	if updated.Status == StatusCancelled {
		if err := s.registry.Release(ctx, updated.SlotKey()); err != nil {
			s.log.Error("release slot on cancellation",
				zap.String("slot", updated.SlotKey().String()),
				zap.Error(err))
		}
	}

	s.dispatchAsync(notify.Message{
		Recipients: []string{updated.PatientEmail, updated.DoctorEmail},
		Subject:    fmt.Sprintf("OT appointment %s", updated.Status),
		Body: fmt.Sprintf("The OT appointment for %s on %s (%s, %s) is now %s.",
			updated.PatientName, updated.Date, updated.Band, updated.RoomID, updated.Status),
	})

	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]Appointment, error) {
	return s.store.ListAll(ctx)
}

// ListByDoctor resolves the doctor first so an unknown email reads as 404
// rather than an empty list.
func (s *Service) ListByDoctor(ctx context.Context, doctorEmail string) ([]Appointment, error) {
	if _, err := s.dir.FindByEmail(ctx, doctorEmail); err != nil {
		return nil, err
	}
	return s.store.ListByDoctorEmail(ctx, doctorEmail)
}

func (s *Service) dispatchBookingMail(appt *Appointment, team *staff.Team) {
	body := fmt.Sprintf(`<h1>Hello <strong>%s</strong>,</h1>
<p>Your OT appointment has been successfully scheduled.</p>
<p><strong>Case:</strong> %s</p>
<p><strong>Date:</strong> %s</p>
<p><strong>Time Slot:</strong> %s</p>
<h1><strong>Operation Theatre:</strong> %s</h1>
<ul>
  <li><strong>Doctor Assigned:</strong> %s</li>
  <li><strong>Assistant Doctor Assigned:</strong> %s</li>
  <li><strong>Nurses Assigned:</strong> %s</li>
</ul>
<p>Thank you for choosing our hospital.</p>`,
		appt.PatientName, appt.CaseType, appt.Date, appt.Band, appt.RoomID,
		appt.DoctorName, appt.AssistantName, strings.Join(appt.Nurses, ", "))

	recipients := []string{appt.PatientEmail}
	if s.notifyStaff {
		recipients = append(recipients, team.Doctor.Email, team.Assistant.Email)
		for _, n := range team.Nurses {
			recipients = append(recipients, n.Email)
		}
	}

	s.dispatchAsync(notify.Message{
		Recipients: recipients,
		Subject:    "Your OT Appointment is Confirmed",
		Body:       body,
		HTML:       true,
	})
}

// dispatchAsync sends fire-and-forget: the request that triggered the
// notification does not wait on it and never sees its failure.
func (s *Service) dispatchAsync(msg notify.Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := s.notifier.Send(ctx, msg); err != nil {
			s.log.Error("send notification",
				zap.Strings("recipients", msg.Recipients),
				zap.String("subject", msg.Subject),
				zap.Error(err))
		}
	}()
}

func validateInput(patientEmail string, in Input) error {
	switch {
	case strings.TrimSpace(patientEmail) == "":
		return fmt.Errorf("%w: email", ErrMissingField)
	case strings.TrimSpace(in.Date) == "":
		return fmt.Errorf("%w: date", ErrMissingField)
	case strings.TrimSpace(in.Band) == "":
		return fmt.Errorf("%w: timeBand", ErrMissingField)
	case strings.TrimSpace(in.RoomID) == "":
		return fmt.Errorf("%w: roomId", ErrMissingField)
	}

	if !ValidTimeBand(in.Band) {
		return fmt.Errorf("%w: %q", ErrInvalidTimeBand, in.Band)
	}

	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, in.Date)
	}

	return nil
}
