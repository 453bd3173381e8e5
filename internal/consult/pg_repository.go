package consult

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ruthwik162/OTSchedular-Backend/internal/booking"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const requestColumns = `id, doctor_email, patient_email, on_date, slot, status, approved_at, created_at, updated_at`

func scanRequest(row pgx.Row) (*Request, error) {
	var r Request
	var approvedAt *time.Time

	err := row.Scan(
		&r.ID,
		&r.DoctorEmail,
		&r.PatientEmail,
		&r.Date,
		&r.Slot,
		&r.Status,
		&approvedAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	r.ApprovedAt = approvedAt
	return &r, nil
}

func collectRequests(rows pgx.Rows) ([]Request, error) {
	defer rows.Close()

	var result []Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (p *PgRepository) Create(ctx context.Context, r *Request) (*Request, error) {
	id := r.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := p.pool.QueryRow(ctx, `
		INSERT INTO consult_requests (id, doctor_email, patient_email, on_date, slot, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING `+requestColumns+`
	`, id, r.DoctorEmail, r.PatientEmail, r.Date, r.Slot, r.Status)

	return scanRequest(row)
}

func (p *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT `+requestColumns+`
		FROM consult_requests
		WHERE id = $1
	`, id)
	return scanRequest(row)
}

func (p *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status booking.Status, approvedAt *time.Time) (*Request, error) {
	row := p.pool.QueryRow(ctx, `
		UPDATE consult_requests
		SET status = $2,
		    approved_at = COALESCE($3, approved_at),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+requestColumns+`
	`, id, status, approvedAt)
	return scanRequest(row)
}

func (p *PgRepository) ListByPatient(ctx context.Context, patientEmail string) ([]Request, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM consult_requests
		WHERE patient_email = $1
		ORDER BY created_at DESC
	`, patientEmail)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

func (p *PgRepository) ListByDoctor(ctx context.Context, doctorEmail string) ([]Request, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM consult_requests
		WHERE doctor_email = $1
		ORDER BY created_at DESC
	`, doctorEmail)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}
