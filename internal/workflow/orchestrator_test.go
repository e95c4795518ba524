package workflow

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/repository/memrepo"
	"clinic-scheduling/internal/service"
	"clinic-scheduling/internal/usecase"

	"github.com/sirupsen/logrus"
)

type stubSelector struct {
	requestID int64
	doctorID  int64
	err       error

	sawPending []entity.AppointmentRequest
	sawRequest *entity.AppointmentRequest
	sawDoctors []entity.Doctor
}

func (s *stubSelector) SelectRequest(_ context.Context, pending []entity.AppointmentRequest) (int64, error) {
	s.sawPending = pending
	return s.requestID, s.err
}

func (s *stubSelector) SelectDoctor(_ context.Context, req *entity.AppointmentRequest, doctors []entity.Doctor) (int64, error) {
	s.sawRequest = req
	s.sawDoctors = doctors
	return s.doctorID, nil
}

type fixture struct {
	store *memrepo.Store
	repos memrepo.Repositories
	orch  *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := memrepo.NewStore()
	repos := store.Repositories()
	scheduling := usecase.NewSchedulingUsecase(store.Transactor(), log, repos.Patients, repos.Doctors,
		repos.Requests, repos.Appointments, service.NewAuditService(log, repos.AuditLogs))

	return &fixture{store: store, repos: repos, orch: NewOrchestrator(scheduling, log)}
}

func (f *fixture) patient(t *testing.T, name string) *PatientSession {
	t.Helper()
	p := &entity.Patient{Name: name, Email: strings.ToLower(name) + "@example.com", Phone: "555-0100"}
	if err := f.repos.Patients.Create(nil, p); err != nil {
		t.Fatalf("failed to create patient: %v", err)
	}
	return &PatientSession{PatientID: p.ID, Email: p.Email}
}

func (f *fixture) doctor(t *testing.T, name, specialization string) int64 {
	t.Helper()
	d := &entity.Doctor{Name: name, Specialization: specialization, Available: true}
	if err := f.repos.Doctors.Create(nil, d); err != nil {
		t.Fatalf("failed to create doctor: %v", err)
	}
	return d.ID
}

func inDays(n int) time.Time {
	return time.Now().UTC().AddDate(0, 0, n)
}

func TestSubmit_RequiresSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Submit(t.Context(), nil, SubmitInput{Specialization: "Cardiology", RequestedDate: inDays(1)})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestFix_RequiresSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Fix(t.Context(), nil, &stubSelector{})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestSubmitAndFix(t *testing.T) {
	f := newFixture(t)
	alice := f.patient(t, "Alice")
	smith := f.doctor(t, "Dr. Smith", "Cardiology")
	f.doctor(t, "Dr. Lee", "Dermatology")

	reqID, err := f.orch.Submit(t.Context(), alice, SubmitInput{Specialization: "Cardiology", RequestedDate: inDays(1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sel := &stubSelector{requestID: reqID, doctorID: smith}
	out, err := f.orch.Fix(t.Context(), &AdminSession{}, sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.RequestID != reqID || out.DoctorID != smith || out.AppointmentID <= 0 {
		t.Errorf("unexpected outcome: %+v", out)
	}

	if len(sel.sawPending) != 1 || sel.sawPending[0].ID != reqID {
		t.Errorf("expected selector to be offered request %d, got %+v", reqID, sel.sawPending)
	}
	if sel.sawRequest == nil || sel.sawRequest.ID != reqID {
		t.Errorf("expected chosen request to be passed to SelectDoctor, got %+v", sel.sawRequest)
	}
	if len(sel.sawDoctors) != 1 || sel.sawDoctors[0].ID != smith {
		t.Errorf("expected only Dr. Smith to be offered, got %+v", sel.sawDoctors)
	}

	// Nothing left to approve.
	_, err = f.orch.Fix(t.Context(), &AdminSession{}, sel)
	if !errors.Is(err, ErrNothingPending) {
		t.Errorf("expected ErrNothingPending, got %v", err)
	}
}

func TestFix_UnlistedSelectionsReachEngine(t *testing.T) {
	f := newFixture(t)
	alice := f.patient(t, "Alice")
	smith := f.doctor(t, "Dr. Smith", "Cardiology")

	reqID, err := f.orch.Submit(t.Context(), alice, SubmitInput{Specialization: "Cardiology", RequestedDate: inDays(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sel := &stubSelector{requestID: reqID + 100, doctorID: smith}
	_, err = f.orch.Fix(t.Context(), &AdminSession{}, sel)
	if !errors.Is(err, usecase.ErrRequestNotFound) {
		t.Errorf("expected engine's ErrRequestNotFound, got %v", err)
	}
	if sel.sawRequest != nil || len(sel.sawDoctors) != 0 {
		t.Errorf("expected no request or doctors for an unlisted id, got %+v %+v", sel.sawRequest, sel.sawDoctors)
	}

	sel = &stubSelector{requestID: reqID, doctorID: smith + 100}
	_, err = f.orch.Fix(t.Context(), &AdminSession{}, sel)
	if !errors.Is(err, usecase.ErrDoctorNotFound) {
		t.Errorf("expected engine's ErrDoctorNotFound, got %v", err)
	}
}

func TestFix_SelectorError(t *testing.T) {
	f := newFixture(t)
	alice := f.patient(t, "Alice")
	if _, err := f.orch.Submit(t.Context(), alice, SubmitInput{Specialization: "Cardiology", RequestedDate: inDays(1)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancelled := errors.New("cancelled by user")
	_, err := f.orch.Fix(t.Context(), &AdminSession{}, &stubSelector{err: cancelled})
	if !errors.Is(err, cancelled) {
		t.Errorf("expected selector error, got %v", err)
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "Done"},
		{ErrNotAuthenticated, "Please log in first"},
		{ErrNothingPending, "There are no pending appointment requests"},
		{usecase.ErrDoctorBooked, "The doctor already has a confirmed appointment on that date"},
		{usecase.ErrSpecializationMismatch, "Doctor specialization does not match the request"},
		{usecase.ErrRequestNotPending, "Appointment request is not pending"},
		{usecase.ErrPatientNotFound, "Patient not found"},
		{usecase.ErrStorage, "The service is temporarily unavailable, please try again"},
		{errors.New("boom"), "Something went wrong"},
	}

	for _, tt := range tests {
		if got := Message(tt.err); got != tt.want {
			t.Errorf("Message(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
