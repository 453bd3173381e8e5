package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const appointmentColumns = `id, patient_email, patient_name, case_type, room_id, ot_date, time_band,
	doctor_name, doctor_email, assistant_name, assistant_email, nurses, status, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.PatientEmail,
		&a.PatientName,
		&a.CaseType,
		&a.RoomID,
		&a.Date,
		&a.Band,
		&a.DoctorName,
		&a.DoctorEmail,
		&a.AssistantName,
		&a.AssistantEmail,
		&a.Nurses,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *PgStore) Create(ctx context.Context, appt *Appointment) (*Appointment, error) {
	id := appt.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_email, patient_name, case_type, room_id, ot_date, time_band,
			doctor_name, doctor_email, assistant_name, assistant_email, nurses, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
		RETURNING `+appointmentColumns+`
	`, id, appt.PatientEmail, appt.PatientName, appt.CaseType, appt.RoomID, appt.Date, appt.Band,
		appt.DoctorName, appt.DoctorEmail, appt.AssistantName, appt.AssistantEmail, appt.Nurses, appt.Status)

	created, err := scanAppointment(row)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return created, nil
}

// mapUniqueViolation turns the partial unique indexes into sentinel errors,
// so the race loser between the application-level check and the insert still
// reads as a conflict, not a 500.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "uq_appointments_patient_active":
			return ErrDuplicateAppointment
		case "uq_appointments_slot_active":
			return ErrSlotOccupied
		}
	}
	return err
}

func (s *PgStore) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (s *PgStore) FindActiveByPatient(ctx context.Context, patientEmail string) (*Appointment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_email = $1
		  AND status <> 'cancelled'
		LIMIT 1
	`, patientEmail)
	return scanAppointment(row)
}

func (s *PgStore) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, status)
	return scanAppointment(row)
}

func (s *PgStore) ListAll(ctx context.Context) ([]Appointment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (s *PgStore) ListByDoctorEmail(ctx context.Context, doctorEmail string) ([]Appointment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_email = $1
		ORDER BY created_at DESC
	`, doctorEmail)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (s *PgStore) ListByPatientEmail(ctx context.Context, patientEmail string) ([]Appointment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_email = $1
		ORDER BY created_at DESC
	`, patientEmail)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}
