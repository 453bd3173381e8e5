package staff

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleDoctor          Role = "doctor"
	RoleAssistantDoctor Role = "assistantDoctor"
	RoleNurse           Role = "nurse"
	RoleAdmin           Role = "admin"
	RolePatient         Role = "patient"
)

// Member is a personnel or patient record in the hospital directory.
// LastAssignedAt is only meaningful for nurses: it is stamped after every
// OT assignment and drives the cooldown filter.
type Member struct {
	ID             uuid.UUID
	Role           Role
	Department     string
	Email          string
	DisplayName    string
	CaseType       string // patients only: clinical category used for staff matching
	LastAssignedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
