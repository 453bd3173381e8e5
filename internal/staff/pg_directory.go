package staff

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgDirectory struct {
	pool *pgxpool.Pool
}

func NewPgDirectory(pool *pgxpool.Pool) *PgDirectory {
	return &PgDirectory{pool: pool}
}

const memberColumns = `id, role, department, email, display_name, case_type, last_assigned_at, created_at, updated_at`

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	var lastAssigned *time.Time

	err := row.Scan(
		&m.ID,
		&m.Role,
		&m.Department,
		&m.Email,
		&m.DisplayName,
		&m.CaseType,
		&lastAssigned,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	m.LastAssignedAt = lastAssigned
	return &m, nil
}

func collectMembers(rows pgx.Rows) ([]Member, error) {
	defer rows.Close()

	var result []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (d *PgDirectory) FindByEmail(ctx context.Context, email string) (*Member, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT `+memberColumns+`
		FROM staff
		WHERE email = $1
	`, email)
	return scanMember(row)
}

func (d *PgDirectory) FindByRole(ctx context.Context, role Role) ([]Member, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+memberColumns+`
		FROM staff
		WHERE role = $1
		ORDER BY created_at, id
	`, role)
	if err != nil {
		return nil, err
	}
	return collectMembers(rows)
}

func (d *PgDirectory) FindByRoleAndDepartment(ctx context.Context, role Role, department string) ([]Member, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+memberColumns+`
		FROM staff
		WHERE role = $1
		  AND lower(department) = lower($2)
		ORDER BY created_at, id
	`, role, department)
	if err != nil {
		return nil, err
	}
	return collectMembers(rows)
}

func (d *PgDirectory) UpdateLastAssigned(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE staff
		SET last_assigned_at = $2,
		    updated_at = now()
		WHERE id = $1
	`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}
