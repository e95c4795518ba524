package usecase

import (
	"io"
	"testing"
	"time"

	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/repository/memrepo"
	"clinic-scheduling/internal/service"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/sirupsen/logrus"
)

// fixedNow is the clock used by every scheduling test.
var fixedNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return time.Date(2025, time.March, 10+offset, 0, 0, 0, 0, time.UTC)
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type testEnv struct {
	store      *memrepo.Store
	repos      memrepo.Repositories
	scheduling *schedulingUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memrepo.NewStore()
	repos := store.Repositories()
	log := newTestLogger()
	audit := service.NewAuditService(log, repos.AuditLogs)

	uc := NewSchedulingUsecase(store.Transactor(), log, repos.Patients, repos.Doctors, repos.Requests, repos.Appointments, audit).(*schedulingUsecase)
	uc.now = func() time.Time { return fixedNow }

	return &testEnv{store: store, repos: repos, scheduling: uc}
}

func (e *testEnv) addPatient(t *testing.T, name string) *entity.Patient {
	t.Helper()
	if name == "" {
		name = gofakeit.Name()
	}
	p := &entity.Patient{
		Name:  name,
		Email: gofakeit.Email(),
		Phone: gofakeit.Phone(),
		Age:   gofakeit.Number(18, 90),
	}
	if err := e.repos.Patients.Create(nil, p); err != nil {
		t.Fatalf("failed to create patient: %v", err)
	}
	return p
}

func (e *testEnv) addDoctor(t *testing.T, specialization string, available bool) *entity.Doctor {
	t.Helper()
	d := &entity.Doctor{
		Name:           "Dr. " + gofakeit.LastName(),
		Specialization: specialization,
		Experience:     gofakeit.Number(1, 30),
		Available:      available,
	}
	if err := e.repos.Doctors.Create(nil, d); err != nil {
		t.Fatalf("failed to create doctor: %v", err)
	}
	return d
}

func (e *testEnv) submit(t *testing.T, patientID int64, specialization string, date time.Time) int64 {
	t.Helper()
	id, err := e.scheduling.SubmitRequest(t.Context(), patientID, specialization, date, "")
	if err != nil {
		t.Fatalf("SubmitRequest: unexpected error: %v", err)
	}
	return id
}
