package usecase

import (
	"errors"
	"sync"
	"testing"
	"time"

	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/domain/repository"
	"clinic-scheduling/internal/repository/memrepo"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestSubmitRequest_Success(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPatient(t, "Alice")

	requested := day(5).Add(14 * time.Hour)
	id, err := env.scheduling.SubmitRequest(t.Context(), alice.ID, "Cardiology", requested, "chest pain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	stored, ok := env.store.Request(id)
	if !ok {
		t.Fatal("request was not stored")
	}
	if stored.Status != entity.RequestStatusPending {
		t.Errorf("expected PENDING, got %s", stored.Status)
	}
	if !stored.RequestedDate.Equal(day(5)) {
		t.Errorf("expected requested date %s, got %s", day(5), stored.RequestedDate)
	}
	if stored.PatientID != alice.ID || stored.Specialization != "Cardiology" {
		t.Errorf("unexpected request: %+v", stored)
	}

	logs := env.store.AuditLogs()
	if len(logs) != 1 || logs[0].Action != entity.AuditActionRequestSubmit || logs[0].Actor != entity.PatientActor(alice.ID) {
		t.Errorf("expected one submit audit entry, got %+v", logs)
	}
}

func TestSubmitRequest_PastDateIsInvalidArgument(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPatient(t, "Alice")

	tests := []struct {
		name      string
		patientID int64
		date      time.Time
	}{
		{"zero date", alice.ID, time.Time{}},
		{"yesterday", alice.ID, day(-1)},
		{"today at midnight", alice.ID, day(0)},
		{"one second ago", alice.ID, fixedNow.Add(-time.Second)},
		{"unknown patient", 9999, day(-3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.scheduling.SubmitRequest(t.Context(), tt.patientID, "Cardiology", tt.date, "")
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			if !errors.Is(err, ErrDateInPast) {
				t.Errorf("expected ErrDateInPast, got %v", err)
			}
		})
	}

	pending, _ := env.scheduling.ListPendingRequests(t.Context())
	if len(pending) != 0 {
		t.Errorf("expected no requests stored, got %d", len(pending))
	}
}

func TestSubmitRequest_BlankSpecialization(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPatient(t, "Alice")

	for _, spec := range []string{"", "   "} {
		_, err := env.scheduling.SubmitRequest(t.Context(), alice.ID, spec, day(3), "")
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("specialization %q: expected ErrInvalidArgument, got %v", spec, err)
		}
	}
}

func TestSubmitRequest_UnknownPatient(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.scheduling.SubmitRequest(t.Context(), 42, "Cardiology", day(3), "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestSubmitRequest_StorageFailure(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPatient(t, "Alice")

	cause := errors.New("connection refused")
	env.store.Fail("appointment_requests.create", cause)

	_, err := env.scheduling.SubmitRequest(t.Context(), alice.ID, "Cardiology", day(3), "")
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be preserved, got %v", err)
	}
	if len(env.store.AuditLogs()) != 0 {
		t.Error("expected no audit entry after a failed submit")
	}
}

func TestSubmitRequest_AuditFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPatient(t, "Alice")

	env.store.Fail("audit_logs.create", errors.New("disk full"))

	_, err := env.scheduling.SubmitRequest(t.Context(), alice.ID, "Cardiology", day(3), "")
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}

	env.store.Fail("audit_logs.create", nil)
	pending, err := env.scheduling.ListPendingRequests(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected request to be rolled back, got %d pending", len(pending))
	}
}

func TestListPendingRequests_OrderedByDateThenID(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPatient(t, "Alice")
	bob := env.addPatient(t, "Bob")

	late := env.submit(t, alice.ID, "Cardiology", day(9))
	early := env.submit(t, bob.ID, "Dermatology", day(2))
	sameDay := env.submit(t, alice.ID, "Neurology", day(2))

	pending, err := env.scheduling.ListPendingRequests(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int64{early, sameDay, late}
	if len(pending) != len(want) {
		t.Fatalf("expected %d pending, got %d", len(want), len(pending))
	}
	for i, id := range want {
		if pending[i].ID != id {
			t.Errorf("position %d: expected request %d, got %d", i, id, pending[i].ID)
		}
	}
	if pending[0].Patient == nil || pending[0].Patient.Name != "Bob" {
		t.Errorf("expected patient name to be loaded, got %+v", pending[0].Patient)
	}
}

func TestFindSuitableDoctors(t *testing.T) {
	env := newTestEnv(t)
	smith := env.addDoctor(t, "Cardiology", true)
	env.addDoctor(t, "Cardiology", false)
	env.addDoctor(t, "Dermatology", true)
	jones := env.addDoctor(t, "Cardiology", true)

	doctors, err := env.scheduling.FindSuitableDoctors(t.Context(), "Cardiology")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doctors) != 2 || doctors[0].ID != smith.ID || doctors[1].ID != jones.ID {
		t.Errorf("expected available cardiologists [%d %d], got %+v", smith.ID, jones.ID, doctors)
	}

	// Exact match, case included.
	doctors, err = env.scheduling.FindSuitableDoctors(t.Context(), "cardiology")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doctors) != 0 {
		t.Errorf("expected no match for lower-case specialization, got %d", len(doctors))
	}
}

func TestFixAppointment_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPatient(t, "Alice")
	smith := env.addDoctor(t, "Cardiology", true)

	reqID := env.submit(t, alice.ID, "Cardiology", day(1))

	pending, err := env.scheduling.ListPendingRequests(t.Context())
	if err != nil || len(pending) != 1 || pending[0].ID != reqID {
		t.Fatalf("expected request %d to be pending, got %+v (err %v)", reqID, pending, err)
	}

	doctors, err := env.scheduling.FindSuitableDoctors(t.Context(), pending[0].Specialization)
	if err != nil || len(doctors) != 1 || doctors[0].ID != smith.ID {
		t.Fatalf("expected Dr. Smith to be suitable, got %+v (err %v)", doctors, err)
	}

	apptID, err := env.scheduling.FixAppointment(t.Context(), reqID, smith.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	appt, err := env.scheduling.GetAppointment(t.Context(), apptID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.PatientID != alice.ID || appt.DoctorID != smith.ID || appt.Status != entity.AppointmentStatusConfirmed {
		t.Errorf("unexpected appointment: %+v", appt)
	}
	if !appt.AppointmentDate.Equal(day(1)) || appt.RequestID == nil || *appt.RequestID != reqID {
		t.Errorf("appointment does not reflect request: %+v", appt)
	}

	stored, _ := env.store.Request(reqID)
	if stored.Status != entity.RequestStatusApproved {
		t.Errorf("expected request APPROVED, got %s", stored.Status)
	}

	pending, _ = env.scheduling.ListPendingRequests(t.Context())
	if len(pending) != 0 {
		t.Errorf("expected no pending requests, got %d", len(pending))
	}

	mine, err := env.scheduling.ListPatientAppointments(t.Context(), alice.ID)
	if err != nil || len(mine) != 1 || mine[0].Doctor == nil || mine[0].Doctor.Name != smith.Name {
		t.Errorf("expected Alice to see her appointment with doctor details, got %+v (err %v)", mine, err)
	}

	// Fixing the same request again is rejected.
	_, err = env.scheduling.FixAppointment(t.Context(), reqID, smith.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState on second fix, got %v", err)
	}
	if n := len(env.store.Appointments()); n != 1 {
		t.Errorf("expected exactly one appointment, got %d", n)
	}
}

func TestFixAppointment_Failures(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPatient(t, "Alice")
	bob := env.addPatient(t, "Bob")
	cardio := env.addDoctor(t, "Cardiology", true)
	away := env.addDoctor(t, "Cardiology", false)
	derm := env.addDoctor(t, "Dermatology", true)

	booked := env.submit(t, alice.ID, "Cardiology", day(2))
	if _, err := env.scheduling.FixAppointment(t.Context(), booked, cardio.ID); err != nil {
		t.Fatalf("setup fix failed: %v", err)
	}
	sameDay := env.submit(t, bob.ID, "Cardiology", day(2))
	open := env.submit(t, bob.ID, "Cardiology", day(4))

	tests := []struct {
		name      string
		requestID int64
		doctorID  int64
		kind      error
		specific  error
	}{
		{"unknown request", 999, cardio.ID, ErrNotFound, ErrRequestNotFound},
		{"request already approved", booked, cardio.ID, ErrInvalidState, ErrRequestNotPending},
		{"unknown doctor", open, 999, ErrNotFound, ErrDoctorNotFound},
		{"doctor unavailable", open, away.ID, ErrInvalidArgument, ErrDoctorUnavailable},
		{"specialization mismatch", open, derm.ID, ErrInvalidArgument, ErrSpecializationMismatch},
		{"doctor booked that day", sameDay, cardio.ID, ErrConflict, ErrDoctorBooked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.scheduling.FixAppointment(t.Context(), tt.requestID, tt.doctorID)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("expected kind %v, got %v", tt.kind, err)
			}
			if !errors.Is(err, tt.specific) {
				t.Errorf("expected %v, got %v", tt.specific, err)
			}
			if Kind(err) != tt.kind {
				t.Errorf("Kind() = %v, want %v", Kind(err), tt.kind)
			}
		})
	}

	for _, id := range []int64{sameDay, open} {
		if r, _ := env.store.Request(id); r.Status != entity.RequestStatusPending {
			t.Errorf("request %d: expected to stay PENDING, got %s", id, r.Status)
		}
	}
	if n := len(env.store.Appointments()); n != 1 {
		t.Errorf("expected only the setup appointment, got %d", n)
	}
}

func TestFixAppointment_SpecializationIgnoresCase(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPatient(t, "Alice")
	doctor := env.addDoctor(t, "CARDIOLOGY", true)

	reqID := env.submit(t, alice.ID, "cardiology", day(1))
	if _, err := env.scheduling.FixAppointment(t.Context(), reqID, doctor.ID); err != nil {
		t.Fatalf("expected case-insensitive match to succeed, got %v", err)
	}
}

func TestFixAppointment_SameDoctorOtherDay(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPatient(t, "Alice")
	bob := env.addPatient(t, "Bob")
	doctor := env.addDoctor(t, "Cardiology", true)

	first := env.submit(t, alice.ID, "Cardiology", day(1))
	second := env.submit(t, bob.ID, "Cardiology", day(2))

	if _, err := env.scheduling.FixAppointment(t.Context(), first, doctor.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := env.scheduling.FixAppointment(t.Context(), second, doctor.ID); err != nil {
		t.Fatalf("expected a different day to be free, got %v", err)
	}
}

func TestFixAppointment_CommitFailureLeavesRequestPending(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPatient(t, "Alice")
	doctor := env.addDoctor(t, "Cardiology", true)
	reqID := env.submit(t, alice.ID, "Cardiology", day(1))

	cause := errors.New("connection reset by peer")
	env.store.FailNextCommit(cause)

	_, err := env.scheduling.FixAppointment(t.Context(), reqID, doctor.ID)
	if !errors.Is(err, ErrStorage) || !errors.Is(err, cause) {
		t.Fatalf("expected storage error wrapping cause, got %v", err)
	}

	if r, _ := env.store.Request(reqID); r.Status != entity.RequestStatusPending {
		t.Errorf("expected request to stay PENDING, got %s", r.Status)
	}
	if n := len(env.store.Appointments()); n != 0 {
		t.Errorf("expected no appointment, got %d", n)
	}

	// The same fix succeeds once the store recovers.
	if _, err := env.scheduling.FixAppointment(t.Context(), reqID, doctor.ID); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
}

func TestFixAppointment_StorageFailureDuringApproval(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPatient(t, "Alice")
	doctor := env.addDoctor(t, "Cardiology", true)
	reqID := env.submit(t, alice.ID, "Cardiology", day(1))

	env.store.Fail("appointment_requests.update", errors.New("timeout"))

	_, err := env.scheduling.FixAppointment(t.Context(), reqID, doctor.ID)
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if n := len(env.store.Appointments()); n != 0 {
		t.Errorf("expected appointment insert to roll back, got %d", n)
	}
}

// blindAppointmentRepo hides existing bookings from the pre-insert check so
// that the unique index is what rejects the second booking.
type blindAppointmentRepo struct {
	repository.AppointmentRepository
}

func (blindAppointmentRepo) CountConfirmedForDoctorOnDay(*gorm.DB, int64, time.Time) (int64, error) {
	return 0, nil
}

func TestFixAppointment_UniqueIndexReportsConflict(t *testing.T) {
	env := newTestEnv(t)
	env.scheduling.appointmentRepo = blindAppointmentRepo{env.repos.Appointments}

	alice := env.addPatient(t, "Alice")
	bob := env.addPatient(t, "Bob")
	doctor := env.addDoctor(t, "Cardiology", true)

	first := env.submit(t, alice.ID, "Cardiology", day(1))
	second := env.submit(t, bob.ID, "Cardiology", day(1))

	if _, err := env.scheduling.FixAppointment(t.Context(), first, doctor.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := env.scheduling.FixAppointment(t.Context(), second, doctor.ID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict from unique index, got %v", err)
	}
}

func TestFixAppointment_ConcurrentSameDoctorSameDay(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.addDoctor(t, "Cardiology", true)

	const n = 8
	requests := make([]int64, n)
	for i := range requests {
		p := env.addPatient(t, "")
		requests[i] = env.submit(t, p.ID, "Cardiology", day(3))
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, reqID := range requests {
		wg.Add(1)
		go func(i int, reqID int64) {
			defer wg.Done()
			_, errs[i] = env.scheduling.FixAppointment(t.Context(), reqID, doctor.ID)
		}(i, reqID)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != n-1 {
		t.Errorf("expected 1 success and %d conflicts, got %d and %d", n-1, ok, conflicts)
	}

	confirmed := 0
	for _, a := range env.store.Appointments() {
		if a.DoctorID == doctor.ID && a.AppointmentDay.Equal(day(3)) && a.IsConfirmed() {
			confirmed++
		}
	}
	if confirmed != 1 {
		t.Errorf("expected exactly one confirmed appointment, got %d", confirmed)
	}
}

func TestFixAppointment_ConcurrentSameRequest(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPatient(t, "Alice")
	reqID := env.submit(t, alice.ID, "Cardiology", day(3))

	const n = 5
	doctors := make([]int64, n)
	for i := range doctors {
		doctors[i] = env.addDoctor(t, "Cardiology", true).ID
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, doctorID := range doctors {
		wg.Add(1)
		go func(i int, doctorID int64) {
			defer wg.Done()
			_, errs[i] = env.scheduling.FixAppointment(t.Context(), reqID, doctorID)
		}(i, doctorID)
	}
	wg.Wait()

	var ok, invalid int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInvalidState):
			invalid++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || invalid != n-1 {
		t.Errorf("expected 1 success and %d invalid-state errors, got %d and %d", n-1, ok, invalid)
	}
}

func TestListAppointments_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPatient(t, "Alice")
	doctor := env.addDoctor(t, "Cardiology", true)

	early := env.submit(t, alice.ID, "Cardiology", day(1))
	late := env.submit(t, alice.ID, "Cardiology", day(6))
	earlyAppt, _ := env.scheduling.FixAppointment(t.Context(), early, doctor.ID)
	lateAppt, _ := env.scheduling.FixAppointment(t.Context(), late, doctor.ID)

	all, err := env.scheduling.ListAppointments(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 || all[0].ID != lateAppt || all[1].ID != earlyAppt {
		t.Errorf("expected [%d %d], got %+v", lateAppt, earlyAppt, all)
	}
	if all[0].Patient == nil || all[0].Patient.Name != "Alice" {
		t.Errorf("expected patient to be loaded, got %+v", all[0].Patient)
	}

	reqs, err := env.scheduling.ListPatientRequests(t.Context(), alice.ID)
	if err != nil || len(reqs) != 2 || reqs[0].ID != late {
		t.Errorf("expected patient requests newest first, got %+v (err %v)", reqs, err)
	}
}

func TestGetAppointment_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.scheduling.GetAppointment(t.Context(), 77)
	if !errors.Is(err, ErrAppointmentNotFound) || !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestReadOperations_StorageFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.Fail("appointment_requests.find", errors.New("broken pipe"))
	env.store.Fail("doctors.find", errors.New("broken pipe"))

	if _, err := env.scheduling.ListPendingRequests(t.Context()); !errors.Is(err, ErrStorage) {
		t.Errorf("ListPendingRequests: expected ErrStorage, got %v", err)
	}
	if _, err := env.scheduling.FindSuitableDoctors(t.Context(), "Cardiology"); !errors.Is(err, ErrStorage) {
		t.Errorf("FindSuitableDoctors: expected ErrStorage, got %v", err)
	}
}

func TestDuplicateKeyClassification(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: memrepo.ConstraintDoctorDay}
	if !isDuplicateKeyError(err, "doctor_day") {
		t.Error("expected doctor/day index violation to be recognised")
	}
	if isDuplicateKeyError(err, "email") {
		t.Error("did not expect email match")
	}
	if isForeignKeyError(err, "doctor_day") {
		t.Error("unique violation is not a foreign key violation")
	}
}
