package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ruthwik162/OTSchedular-Backend/internal/booking"
	"github.com/ruthwik162/OTSchedular-Backend/internal/consult"
	"github.com/ruthwik162/OTSchedular-Backend/internal/notify"
	"github.com/ruthwik162/OTSchedular-Backend/internal/staff"
)

type stubStore struct {
	mu    sync.Mutex
	appts map[uuid.UUID]*booking.Appointment
}

func newStubStore() *stubStore {
	return &stubStore{appts: make(map[uuid.UUID]*booking.Appointment)}
}

func (s *stubStore) Create(_ context.Context, appt *booking.Appointment) (*booking.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *appt
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	s.appts[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *stubStore) GetByID(_ context.Context, id uuid.UUID) (*booking.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appts[id]
	if !ok {
		return nil, booking.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *stubStore) FindActiveByPatient(_ context.Context, patientEmail string) (*booking.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.appts {
		if a.PatientEmail == patientEmail && a.Status != booking.StatusCancelled {
			cp := *a
			return &cp, nil
		}
	}
	return nil, booking.ErrAppointmentNotFound
}

func (s *stubStore) UpdateStatus(_ context.Context, id uuid.UUID, status booking.Status) (*booking.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appts[id]
	if !ok {
		return nil, booking.ErrAppointmentNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	cp := *a
	return &cp, nil
}

func (s *stubStore) ListAll(_ context.Context) ([]booking.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []booking.Appointment
	for _, a := range s.appts {
		out = append(out, *a)
	}
	return out, nil
}

func (s *stubStore) ListByDoctorEmail(_ context.Context, doctorEmail string) ([]booking.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []booking.Appointment
	for _, a := range s.appts {
		if a.DoctorEmail == doctorEmail {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *stubStore) ListByPatientEmail(_ context.Context, patientEmail string) ([]booking.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []booking.Appointment
	for _, a := range s.appts {
		if a.PatientEmail == patientEmail {
			out = append(out, *a)
		}
	}
	return out, nil
}

type stubDirectory struct {
	members []staff.Member
}

func (d *stubDirectory) FindByEmail(_ context.Context, email string) (*staff.Member, error) {
	for i := range d.members {
		if d.members[i].Email == email {
			m := d.members[i]
			return &m, nil
		}
	}
	return nil, staff.ErrMemberNotFound
}

func (d *stubDirectory) FindByRole(_ context.Context, role staff.Role) ([]staff.Member, error) {
	var out []staff.Member
	for _, m := range d.members {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out, nil
}

func (d *stubDirectory) FindByRoleAndDepartment(_ context.Context, role staff.Role, department string) ([]staff.Member, error) {
	var out []staff.Member
	for _, m := range d.members {
		if m.Role == role && strings.EqualFold(m.Department, department) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (d *stubDirectory) UpdateLastAssigned(_ context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

type stubConsultRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*consult.Request
}

func newStubConsultRepo() *stubConsultRepo {
	return &stubConsultRepo{requests: make(map[uuid.UUID]*consult.Request)}
}

func (r *stubConsultRepo) Create(_ context.Context, req *consult.Request) (*consult.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.requests[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *stubConsultRepo) GetByID(_ context.Context, id uuid.UUID) (*consult.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, consult.ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *stubConsultRepo) UpdateStatus(_ context.Context, id uuid.UUID, status booking.Status, approvedAt *time.Time) (*consult.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, consult.ErrRequestNotFound
	}
	req.Status = status
	if approvedAt != nil {
		req.ApprovedAt = approvedAt
	}
	req.UpdatedAt = time.Now()
	cp := *req
	return &cp, nil
}

func (r *stubConsultRepo) ListByPatient(_ context.Context, patientEmail string) ([]consult.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []consult.Request
	for _, req := range r.requests {
		if req.PatientEmail == patientEmail {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *stubConsultRepo) ListByDoctor(_ context.Context, doctorEmail string) ([]consult.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []consult.Request
	for _, req := range r.requests {
		if req.DoctorEmail == doctorEmail {
			out = append(out, *req)
		}
	}
	return out, nil
}

type dropNotifier struct{}

func (dropNotifier) Send(context.Context, notify.Message) error { return nil }

func testRoster() []staff.Member {
	m := func(role staff.Role, dept, email, name, caseType string) staff.Member {
		return staff.Member{
			ID:          uuid.New(),
			Role:        role,
			Department:  dept,
			Email:       email,
			DisplayName: name,
			CaseType:    caseType,
		}
	}

	return []staff.Member{
		m(staff.RolePatient, "", "pat@example.test", "Pat Patient", "cardiology"),
		m(staff.RolePatient, "", "sam@example.test", "Sam Second", "cardiology"),
		m(staff.RoleDoctor, "cardiology", "dr@hospital.test", "Dr. Heart", ""),
		m(staff.RoleAssistantDoctor, "cardiology", "asst@hospital.test", "Dr. Assist", ""),
		m(staff.RoleNurse, "", "n1@hospital.test", "Nurse One", ""),
		m(staff.RoleNurse, "", "n2@hospital.test", "Nurse Two", ""),
		m(staff.RoleNurse, "", "n3@hospital.test", "Nurse Three", ""),
		m(staff.RoleNurse, "", "n4@hospital.test", "Nurse Four", ""),
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := &stubDirectory{members: testRoster()}
	selector := staff.NewSelector(dir, 6*time.Hour, 4, 3)
	notifier := dropNotifier{}
	log := zap.NewNop()

	bookingSvc := booking.NewService(newStubStore(), booking.NewMemoryRegistry(), dir, selector, notifier, log, false)
	consultSvc := consult.NewService(newStubConsultRepo(), dir, notifier, log)

	router := NewRouter(RouterConfig{
		Booking:  bookingSvc,
		Consults: consultSvc,
		Log:      log,
		Env:      "test",
		Version:  "test",
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var out bytes.Buffer
	if _, err := out.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, out.Bytes()
}

func bookBody() map[string]string {
	return map[string]string{
		"date":     "2024-01-01",
		"timeBand": "7Am-10Am",
		"roomId":   "OT1",
	}
}

func TestBookAppointmentCreated(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/ot/assign/pat@example.test", bookBody())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}

	var out AppointmentResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Status != "assigned" {
		t.Errorf("expected status assigned, got %q", out.Status)
	}
	if out.DoctorEmail != "dr@hospital.test" {
		t.Errorf("wrong doctor: %s", out.DoctorEmail)
	}
	if out.AssistantEmail == out.DoctorEmail {
		t.Error("assistant must differ from doctor")
	}
}

func TestBookAppointmentSlotConflict(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/ot/assign/pat@example.test", bookBody())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first booking: expected 201, got %d: %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/ot/assign/sam@example.test", bookBody())
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.StatusCode, body)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Error != "slot_occupied" {
		t.Errorf("expected slot_occupied, got %q", errResp.Error)
	}
}

func TestBookAppointmentValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing date", map[string]string{"timeBand": "7Am-10Am", "roomId": "OT1"}},
		{"missing band", map[string]string{"date": "2024-01-01", "roomId": "OT1"}},
		{"missing room", map[string]string{"date": "2024-01-01", "timeBand": "7Am-10Am"}},
		{"unknown band", map[string]string{"date": "2024-01-01", "timeBand": "8Am-11Am", "roomId": "OT1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, srv.URL+"/ot/assign/pat@example.test", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
			}
		})
	}
}

func TestBookAppointmentUnknownPatient(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/ot/assign/ghost@example.test", bookBody())
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", resp.StatusCode, body)
	}
}

func TestGetAppointmentRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/ot/assign/pat@example.test", bookBody())
	var created AppointmentResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	resp, body := doJSON(t, http.MethodGet, fmt.Sprintf("%s/ot/appointments/%s", srv.URL, created.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var fetched AppointmentResponse
	if err := json.Unmarshal(body, &fetched); err != nil {
		t.Fatalf("decode fetched: %v", err)
	}
	if fetched.ID != created.ID {
		t.Errorf("id mismatch: %s vs %s", fetched.ID, created.ID)
	}
}

func TestGetAppointmentBadID(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/ot/appointments/not-a-uuid", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUpdateAppointmentStatus(t *testing.T) {
	srv := newTestServer(t)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/ot/assign/pat@example.test", bookBody())
	var created AppointmentResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	url := fmt.Sprintf("%s/ot/appointments/%s", srv.URL, created.ID)

	resp, body := doJSON(t, http.MethodPut, url, map[string]string{"status": "cancelled"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var updated AppointmentResponse
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated.Status != "cancelled" {
		t.Errorf("expected cancelled, got %q", updated.Status)
	}

	// Cancelled slot is free again.
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/ot/assign/sam@example.test", bookBody())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("slot should be rebookable, got %d: %s", resp.StatusCode, body)
	}
}

func TestUpdateAppointmentStatusRejected(t *testing.T) {
	srv := newTestServer(t)

	url := fmt.Sprintf("%s/ot/appointments/%s", srv.URL, uuid.New())
	resp, _ := doJSON(t, http.MethodPut, url, map[string]string{"status": "rescheduled"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListDoctorAppointmentsUnknownDoctor(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/ot/doctor/ghost@hospital.test", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateConsultRequest(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/consults/", map[string]string{
		"doctorEmail":  "dr@hospital.test",
		"patientEmail": "pat@example.test",
		"date":         "2024-01-05",
		"slot":         "10:30",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}

	var out ConsultResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Status != "pending" {
		t.Errorf("expected pending, got %q", out.Status)
	}
}

func TestConsultStatusApproval(t *testing.T) {
	srv := newTestServer(t)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/consults/", map[string]string{
		"doctorEmail":  "dr@hospital.test",
		"patientEmail": "pat@example.test",
		"date":         "2024-01-05",
		"slot":         "10:30",
	})
	var created ConsultResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	url := fmt.Sprintf("%s/consults/%s/status", srv.URL, created.ID)
	resp, body := doJSON(t, http.MethodPut, url, map[string]string{"status": "approved"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var updated ConsultResponse
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated.Status != "approved" {
		t.Errorf("expected approved, got %q", updated.Status)
	}
	if updated.ApprovedAt == nil {
		t.Error("approval must stamp approvedAt")
	}
}

func TestListConsultsByParty(t *testing.T) {
	srv := newTestServer(t)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/consults/", map[string]string{
		"doctorEmail":  "dr@hospital.test",
		"patientEmail": "pat@example.test",
		"date":         "2024-01-05",
		"slot":         "10:30",
	})
	var created ConsultResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	for _, url := range []string{
		srv.URL + "/consults/doctor/dr@hospital.test",
		srv.URL + "/consults/patient/pat@example.test",
	} {
		resp, body := doJSON(t, http.MethodGet, url, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d: %s", url, resp.StatusCode, body)
		}

		var listed []ConsultResponse
		if err := json.Unmarshal(body, &listed); err != nil {
			t.Fatalf("decode list: %v", err)
		}
		if len(listed) != 1 || listed[0].ID != created.ID {
			t.Errorf("GET %s: expected the created request, got %v", url, listed)
		}
	}

	// A party with no requests gets an empty list, not an error.
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/consults/patient/sam@example.test", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var empty []ConsultResponse
	if err := json.Unmarshal(body, &empty); err != nil {
		t.Fatalf("decode empty list: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty list, got %v", empty)
	}
}

func TestHealthLiveness(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/health/live", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
