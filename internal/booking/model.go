package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimeBand is one of the four daily OT windows.
type TimeBand string

const (
	BandMorning   TimeBand = "7Am-10Am"
	BandMidday    TimeBand = "11Am-2Pm"
	BandAfternoon TimeBand = "3Pm-6Pm"
	BandEvening   TimeBand = "7Pm-10Pm"
)

// TimeBands lists every band in daily order.
func TimeBands() []TimeBand {
	return []TimeBand{BandMorning, BandMidday, BandAfternoon, BandEvening}
}

func ValidTimeBand(s string) bool {
	for _, b := range TimeBands() {
		if s == string(b) {
			return true
		}
	}
	return false
}

// SlotKey identifies one bookable OT interval. At most one active
// appointment may hold a given key at a time.
type SlotKey struct {
	RoomID string
	Date   string // YYYY-MM-DD
	Band   TimeBand
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s-%s-%s", k.RoomID, k.Date, k.Band)
}

type Status string

const (
	StatusAssigned  Status = "assigned"
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// AllowedStatus reports whether s is an accepted target for a status
// update. This is an allow-list only: any listed value is accepted from
// any current state, including out of cancelled.
func AllowedStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Appointment is a staffed, slot-bound OT booking. Cancellation is a
// status transition; appointments are never deleted.
type Appointment struct {
	ID             uuid.UUID
	PatientEmail   string
	PatientName    string
	CaseType       string
	RoomID         string
	Date           string
	Band           TimeBand
	DoctorName     string
	DoctorEmail    string
	AssistantName  string
	AssistantEmail string
	Nurses         []string // display names, in assignment order
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (a *Appointment) SlotKey() SlotKey {
	return SlotKey{RoomID: a.RoomID, Date: a.Date, Band: a.Band}
}
