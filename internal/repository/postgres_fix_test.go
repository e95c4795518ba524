package repository

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/infrastructure/database"
	"clinic-scheduling/internal/service"
	"clinic-scheduling/internal/usecase"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func newPgScheduling(db *gorm.DB) usecase.SchedulingUsecase {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return usecase.NewSchedulingUsecase(
		database.NewTransactor(db),
		log,
		NewPatientRepository(),
		NewDoctorRepository(),
		NewAppointmentRequestRepository(),
		NewAppointmentRepository(),
		service.NewAuditService(log, NewAuditLogRepository()),
	)
}

// runConcurrently starts every call at once and collects their errors.
func runConcurrently(n int, call func(i int) error) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs[i] = call(i)
		}()
	}
	close(start)
	wg.Wait()
	return errs
}

func countConfirmed(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&entity.Appointment{}).Where("status = ?", entity.AppointmentStatusConfirmed).Count(&n).Error; err != nil {
		t.Fatalf("count appointments: %v", err)
	}
	return n
}

func TestPostgres_ConcurrentFixSameDoctorSameDay(t *testing.T) {
	db := openTestDB(t)
	f := newPgFixture(t, db)
	scheduling := newPgScheduling(db)

	const n = 8
	requestIDs := []int64{f.first.ID, f.second.ID}
	for len(requestIDs) < n {
		req := &entity.AppointmentRequest{
			PatientID:      f.patient.ID,
			Specialization: "Cardiology",
			RequestedDate:  entity.CalendarDay(f.day),
			Status:         entity.RequestStatusPending,
		}
		if err := NewAppointmentRequestRepository().Create(db, req); err != nil {
			t.Fatalf("create request: %v", err)
		}
		requestIDs = append(requestIDs, req.ID)
	}

	errs := runConcurrently(n, func(i int) error {
		_, err := scheduling.FixAppointment(t.Context(), requestIDs[i], f.doctor.ID)
		return err
	})

	succeeded := 0
	for i, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, usecase.ErrConflict):
			t.Errorf("request %d: expected ErrConflict, got %v", requestIDs[i], err)
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly one confirmed fix, got %d", succeeded)
	}
	if got := countConfirmed(t, db); got != 1 {
		t.Errorf("expected one confirmed appointment, got %d", got)
	}

	pending, err := NewAppointmentRequestRepository().FindPending(db)
	if err != nil {
		t.Fatalf("find pending: %v", err)
	}
	if len(pending) != n-1 {
		t.Errorf("expected %d requests still pending, got %d", n-1, len(pending))
	}
}

func TestPostgres_ConcurrentFixSameRequest(t *testing.T) {
	db := openTestDB(t)
	f := newPgFixture(t, db)
	scheduling := newPgScheduling(db)

	const n = 6
	doctorIDs := []int64{f.doctor.ID}
	for len(doctorIDs) < n {
		d := &entity.Doctor{Name: fmt.Sprintf("Dr. %d", len(doctorIDs)), Specialization: "Cardiology", Available: true}
		if err := NewDoctorRepository().Create(db, d); err != nil {
			t.Fatalf("create doctor: %v", err)
		}
		doctorIDs = append(doctorIDs, d.ID)
	}

	errs := runConcurrently(n, func(i int) error {
		_, err := scheduling.FixAppointment(t.Context(), f.first.ID, doctorIDs[i])
		return err
	})

	succeeded := 0
	for i, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, usecase.ErrInvalidState):
			t.Errorf("doctor %d: expected ErrInvalidState, got %v", doctorIDs[i], err)
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly one confirmed fix, got %d", succeeded)
	}
	if got := countConfirmed(t, db); got != 1 {
		t.Errorf("expected one confirmed appointment, got %d", got)
	}

	req, err := NewAppointmentRequestRepository().FindByID(db, f.first.ID)
	if err != nil || req == nil || req.Status != entity.RequestStatusApproved {
		t.Errorf("expected request APPROVED, got %+v (err %v)", req, err)
	}
}
