package report

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// Append stores the report and links it to every given appointment.
	Append(ctx context.Context, r *Report, appointmentIDs []uuid.UUID) (*Report, error)
	ListByPatient(ctx context.Context, patientEmail string) ([]Report, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const reportColumns = `id, patient_email, file_url, file_name, file_size, uploaded_by, uploaded_at`

func scanReport(row pgx.Row) (*Report, error) {
	var r Report
	err := row.Scan(
		&r.ID,
		&r.PatientEmail,
		&r.FileURL,
		&r.FileName,
		&r.FileSize,
		&r.UploadedBy,
		&r.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *PgRepository) Append(ctx context.Context, r *Report, appointmentIDs []uuid.UUID) (*Report, error) {
	id := r.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO reports (id, patient_email, file_url, file_name, file_size, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING `+reportColumns+`
	`, id, r.PatientEmail, r.FileURL, r.FileName, r.FileSize, r.UploadedBy)

	created, err := scanReport(row)
	if err != nil {
		return nil, err
	}

	for _, apptID := range appointmentIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO appointment_reports (appointment_id, report_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, apptID, created.ID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return created, nil
}

func (p *PgRepository) ListByPatient(ctx context.Context, patientEmail string) ([]Report, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+reportColumns+`
		FROM reports
		WHERE patient_email = $1
		ORDER BY uploaded_at DESC
	`, patientEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				break
			}
			return nil, err
		}
		result = append(result, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
