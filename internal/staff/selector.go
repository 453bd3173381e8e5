package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNoDoctorAvailable    = errors.New("no doctor available for case type")
	ErrNoAssistantAvailable = errors.New("no assistant doctor available for case type")
	ErrNotEnoughNurses      = errors.New("not enough nurses off cooldown")
)

// Team is the clinical staff picked for one OT appointment.
type Team struct {
	Doctor    Member
	Assistant Member
	Nurses    []Member
}

// Selector picks staff for a case type. Selection is deterministic: the
// directory's natural order decides between equally eligible candidates,
// with no load balancing beyond the nurse cooldown filter.
type Selector struct {
	dir      Directory
	cooldown time.Duration
	target   int // nurses requested per team
	minimum  int // selection fails below this
	now      func() time.Time
}

func NewSelector(dir Directory, cooldown time.Duration, target, minimum int) *Selector {
	return &Selector{
		dir:      dir,
		cooldown: cooldown,
		target:   target,
		minimum:  minimum,
		now:      time.Now,
	}
}

// SelectTeam assembles a doctor, an assistant doctor and up to the target
// number of nurses for the given case type. The assistant is guaranteed to
// be a different person than the doctor.
func (s *Selector) SelectTeam(ctx context.Context, caseType string) (*Team, error) {
	doctor, err := s.SelectDoctor(ctx, caseType)
	if err != nil {
		return nil, err
	}

	assistant, err := s.SelectAssistant(ctx, caseType, doctor.Email)
	if err != nil {
		return nil, err
	}

	nurses, err := s.SelectNurses(ctx, s.target)
	if err != nil {
		return nil, err
	}
	if len(nurses) < s.minimum {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrNotEnoughNurses, s.minimum, len(nurses))
	}

	return &Team{
		Doctor:    *doctor,
		Assistant: *assistant,
		Nurses:    nurses,
	}, nil
}

// SelectDoctor returns the first doctor whose department matches the case
// type, case-insensitively.
func (s *Selector) SelectDoctor(ctx context.Context, caseType string) (*Member, error) {
	doctors, err := s.dir.FindByRoleAndDepartment(ctx, RoleDoctor, caseType)
	if err != nil {
		return nil, fmt.Errorf("find doctors: %w", err)
	}
	if len(doctors) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDoctorAvailable, strings.ToLower(caseType))
	}
	return &doctors[0], nil
}

// SelectAssistant returns the first assistant doctor in the case type's
// department whose email differs from excludeEmail.
func (s *Selector) SelectAssistant(ctx context.Context, caseType, excludeEmail string) (*Member, error) {
	assistants, err := s.dir.FindByRoleAndDepartment(ctx, RoleAssistantDoctor, caseType)
	if err != nil {
		return nil, fmt.Errorf("find assistant doctors: %w", err)
	}
	for i := range assistants {
		if assistants[i].Email != excludeEmail {
			return &assistants[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoAssistantAvailable, strings.ToLower(caseType))
}

// SelectNurses scans all nurses in directory order and keeps those whose
// last assignment is unset or at least the cooldown interval old, stopping
// once count is reached. The result may be shorter than count.
func (s *Selector) SelectNurses(ctx context.Context, count int) ([]Member, error) {
	nurses, err := s.dir.FindByRole(ctx, RoleNurse)
	if err != nil {
		return nil, fmt.Errorf("find nurses: %w", err)
	}

	now := s.now()
	var picked []Member
	for i := range nurses {
		if len(picked) >= count {
			break
		}
		last := nurses[i].LastAssignedAt
		if last == nil || now.Sub(*last) >= s.cooldown {
			picked = append(picked, nurses[i])
		}
	}

	return picked, nil
}
