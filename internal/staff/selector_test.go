package staff

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeDirectory struct {
	members      []Member
	lastAssigned map[uuid.UUID]time.Time
}

func newFakeDirectory(members ...Member) *fakeDirectory {
	return &fakeDirectory{
		members:      members,
		lastAssigned: make(map[uuid.UUID]time.Time),
	}
}

func (d *fakeDirectory) FindByEmail(_ context.Context, email string) (*Member, error) {
	for i := range d.members {
		if d.members[i].Email == email {
			m := d.members[i]
			return &m, nil
		}
	}
	return nil, ErrMemberNotFound
}

func (d *fakeDirectory) FindByRole(_ context.Context, role Role) ([]Member, error) {
	var out []Member
	for _, m := range d.members {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out, nil
}

func (d *fakeDirectory) FindByRoleAndDepartment(_ context.Context, role Role, department string) ([]Member, error) {
	var out []Member
	for _, m := range d.members {
		if m.Role == role && strings.EqualFold(m.Department, department) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (d *fakeDirectory) UpdateLastAssigned(_ context.Context, id uuid.UUID, at time.Time) error {
	d.lastAssigned[id] = at
	return nil
}

func member(role Role, dept, email string) Member {
	return Member{
		ID:          uuid.New(),
		Role:        role,
		Department:  dept,
		Email:       email,
		DisplayName: email,
	}
}

func nurseAssignedAgo(t *testing.T, now time.Time, ago time.Duration, email string) Member {
	t.Helper()
	n := member(RoleNurse, "", email)
	if ago >= 0 {
		at := now.Add(-ago)
		n.LastAssignedAt = &at
	}
	return n
}

func TestSelectDoctorMatchesDepartmentCaseInsensitively(t *testing.T) {
	dir := newFakeDirectory(
		member(RoleDoctor, "Cardiology", "dr.a@hospital.test"),
		member(RoleDoctor, "cardiology", "dr.b@hospital.test"),
	)
	s := NewSelector(dir, 6*time.Hour, 4, 3)

	doctor, err := s.SelectDoctor(context.Background(), "cardiology")
	if err != nil {
		t.Fatalf("expected doctor, got error: %v", err)
	}
	if doctor.Email != "dr.a@hospital.test" {
		t.Errorf("expected first doctor in directory order, got %s", doctor.Email)
	}
}

func TestSelectDoctorNoneAvailable(t *testing.T) {
	dir := newFakeDirectory(member(RoleDoctor, "neurology", "dr.n@hospital.test"))
	s := NewSelector(dir, 6*time.Hour, 4, 3)

	_, err := s.SelectDoctor(context.Background(), "cardiology")
	if !errors.Is(err, ErrNoDoctorAvailable) {
		t.Fatalf("expected ErrNoDoctorAvailable, got %v", err)
	}
}

func TestSelectAssistantNeverReturnsDoctor(t *testing.T) {
	dir := newFakeDirectory(
		member(RoleAssistantDoctor, "cardiology", "shared@hospital.test"),
		member(RoleAssistantDoctor, "cardiology", "asst@hospital.test"),
	)
	s := NewSelector(dir, 6*time.Hour, 4, 3)

	assistant, err := s.SelectAssistant(context.Background(), "cardiology", "shared@hospital.test")
	if err != nil {
		t.Fatalf("expected assistant, got error: %v", err)
	}
	if assistant.Email == "shared@hospital.test" {
		t.Error("assistant must not be the doctor")
	}
}

func TestSelectAssistantOnlyCandidateIsDoctor(t *testing.T) {
	dir := newFakeDirectory(member(RoleAssistantDoctor, "cardiology", "shared@hospital.test"))
	s := NewSelector(dir, 6*time.Hour, 4, 3)

	_, err := s.SelectAssistant(context.Background(), "cardiology", "shared@hospital.test")
	if !errors.Is(err, ErrNoAssistantAvailable) {
		t.Fatalf("expected ErrNoAssistantAvailable, got %v", err)
	}
}

func TestSelectNursesHonorsCooldown(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	dir := newFakeDirectory(
		nurseAssignedAgo(t, now, 2*time.Hour, "busy@hospital.test"),   // on cooldown
		nurseAssignedAgo(t, now, 7*time.Hour, "rested@hospital.test"), // cooled down
		nurseAssignedAgo(t, now, -1, "idle@hospital.test"),            // never assigned
	)

	s := NewSelector(dir, 6*time.Hour, 4, 3)
	s.now = func() time.Time { return now }

	nurses, err := s.SelectNurses(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(nurses) != 2 {
		t.Fatalf("expected 2 eligible nurses, got %d", len(nurses))
	}
	for _, n := range nurses {
		if n.Email == "busy@hospital.test" {
			t.Error("nurse on cooldown must not be selected")
		}
		if n.LastAssignedAt != nil && now.Sub(*n.LastAssignedAt) < 6*time.Hour {
			t.Errorf("nurse %s assigned %s ago, inside cooldown", n.Email, now.Sub(*n.LastAssignedAt))
		}
	}
}

func TestSelectNursesStopsAtCount(t *testing.T) {
	now := time.Now()
	dir := newFakeDirectory(
		nurseAssignedAgo(t, now, -1, "n1@hospital.test"),
		nurseAssignedAgo(t, now, -1, "n2@hospital.test"),
		nurseAssignedAgo(t, now, -1, "n3@hospital.test"),
		nurseAssignedAgo(t, now, -1, "n4@hospital.test"),
		nurseAssignedAgo(t, now, -1, "n5@hospital.test"),
	)
	s := NewSelector(dir, 6*time.Hour, 4, 3)

	nurses, err := s.SelectNurses(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nurses) != 4 {
		t.Fatalf("expected 4 nurses, got %d", len(nurses))
	}
	if nurses[0].Email != "n1@hospital.test" {
		t.Errorf("expected directory order to win, got %s first", nurses[0].Email)
	}
}

func TestSelectTeamRequiresMinimumNurses(t *testing.T) {
	now := time.Now()
	dir := newFakeDirectory(
		member(RoleDoctor, "cardiology", "dr@hospital.test"),
		member(RoleAssistantDoctor, "cardiology", "asst@hospital.test"),
		nurseAssignedAgo(t, now, -1, "n1@hospital.test"),
		nurseAssignedAgo(t, now, -1, "n2@hospital.test"),
	)
	s := NewSelector(dir, 6*time.Hour, 4, 3)

	_, err := s.SelectTeam(context.Background(), "cardiology")
	if !errors.Is(err, ErrNotEnoughNurses) {
		t.Fatalf("expected ErrNotEnoughNurses, got %v", err)
	}
}

func TestSelectTeamFullHouse(t *testing.T) {
	now := time.Now()
	dir := newFakeDirectory(
		member(RoleDoctor, "cardiology", "dr@hospital.test"),
		member(RoleAssistantDoctor, "cardiology", "asst@hospital.test"),
		nurseAssignedAgo(t, now, -1, "n1@hospital.test"),
		nurseAssignedAgo(t, now, -1, "n2@hospital.test"),
		nurseAssignedAgo(t, now, -1, "n3@hospital.test"),
		nurseAssignedAgo(t, now, -1, "n4@hospital.test"),
	)
	s := NewSelector(dir, 6*time.Hour, 4, 3)

	team, err := s.SelectTeam(context.Background(), "CARDIOLOGY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if team.Doctor.Email != "dr@hospital.test" {
		t.Errorf("wrong doctor: %s", team.Doctor.Email)
	}
	if team.Assistant.Email != "asst@hospital.test" {
		t.Errorf("wrong assistant: %s", team.Assistant.Email)
	}
	if len(team.Nurses) != 4 {
		t.Errorf("expected 4 nurses, got %d", len(team.Nurses))
	}
}
