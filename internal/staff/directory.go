package staff

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrMemberNotFound = errors.New("staff member not found")

// Directory is the queryable personnel store the selector and orchestrator
// read from. UpdateLastAssigned is the only write the scheduling core
// performs against it.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*Member, error)
	FindByRole(ctx context.Context, role Role) ([]Member, error)
	FindByRoleAndDepartment(ctx context.Context, role Role, department string) ([]Member, error)
	UpdateLastAssigned(ctx context.Context, id uuid.UUID, at time.Time) error
}
