package memrepo

import (
	"sort"
	"time"

	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/domain/repository"

	"gorm.io/gorm"
)

// Repositories bundles one repository per table, all backed by the same store.
type Repositories struct {
	Patients     repository.PatientRepository
	Doctors      repository.DoctorRepository
	Requests     repository.AppointmentRequestRepository
	Appointments repository.AppointmentRepository
	AuditLogs    repository.AuditLogRepository
}

func (s *Store) Repositories() Repositories {
	return Repositories{
		Patients:     &patientRepo{s},
		Doctors:      &doctorRepo{s},
		Requests:     &requestRepo{s},
		Appointments: &appointmentRepo{s},
		AuditLogs:    &auditLogRepo{s},
	}
}

type patientRepo struct{ s *Store }

func (r *patientRepo) Create(_ *gorm.DB, p *entity.Patient) error {
	s := r.s
	if err := s.lock("patients.create"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()

	for _, existing := range s.data.patients {
		if existing.Email == p.Email {
			return uniqueViolation(ConstraintPatientEmail)
		}
	}
	p.ID = s.id()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	s.data.patients[p.ID] = *p
	return nil
}

func (r *patientRepo) FindByID(_ *gorm.DB, id int64) (*entity.Patient, error) {
	s := r.s
	if err := s.lock("patients.find"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()

	p, ok := s.data.patients[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *patientRepo) FindByEmail(_ *gorm.DB, email string) (*entity.Patient, error) {
	s := r.s
	if err := s.lock("patients.find"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()

	for _, p := range s.data.patients {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *patientRepo) FindAll(_ *gorm.DB) ([]entity.Patient, error) {
	s := r.s
	if err := s.lock("patients.find"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()

	out := make([]entity.Patient, 0, len(s.data.patients))
	for _, p := range s.data.patients {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *patientRepo) Update(_ *gorm.DB, p *entity.Patient) error {
	s := r.s
	if err := s.lock("patients.update"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()

	current, ok := s.data.patients[p.ID]
	if !ok {
		return nil
	}
	for _, existing := range s.data.patients {
		if existing.ID != p.ID && existing.Email == p.Email {
			return uniqueViolation(ConstraintPatientEmail)
		}
	}
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	s.data.patients[p.ID] = *p
	return nil
}

type doctorRepo struct{ s *Store }

func (r *doctorRepo) Create(_ *gorm.DB, d *entity.Doctor) error {
	s := r.s
	if err := s.lock("doctors.create"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()

	d.ID = s.id()
	d.CreatedAt = time.Now().UTC()
	d.UpdatedAt = d.CreatedAt
	s.data.doctors[d.ID] = *d
	return nil
}

func (r *doctorRepo) FindByID(_ *gorm.DB, id int64) (*entity.Doctor, error) {
	s := r.s
	if err := s.lock("doctors.find"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()

	d, ok := s.data.doctors[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *doctorRepo) FindAll(_ *gorm.DB, filter repository.DoctorFilter) ([]entity.Doctor, error) {
	s := r.s
	if err := s.lock("doctors.find"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()

	out := []entity.Doctor{}
	for _, d := range s.data.doctors {
		if filter.Available != nil && d.Available != *filter.Available {
			continue
		}
		if filter.Specialization != "" && d.Specialization != filter.Specialization {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *doctorRepo) FindAvailableBySpecialization(db *gorm.DB, specialization string) ([]entity.Doctor, error) {
	available := true
	return r.FindAll(db, repository.DoctorFilter{Available: &available, Specialization: specialization})
}

func (r *doctorRepo) UpdateAvailability(_ *gorm.DB, id int64, available bool) (int64, error) {
	s := r.s
	if err := s.lock("doctors.update"); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	defer s.mu.Unlock()

	d, ok := s.data.doctors[id]
	if !ok {
		return 0, nil
	}
	d.Available = available
	d.UpdatedAt = time.Now().UTC()
	s.data.doctors[id] = d
	return 1, nil
}

type requestRepo struct{ s *Store }

func (r *requestRepo) Create(_ *gorm.DB, req *entity.AppointmentRequest) error {
	s := r.s
	if err := s.lock("appointment_requests.create"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()

	if _, ok := s.data.patients[req.PatientID]; !ok {
		return foreignKeyViolation(ConstraintRequestPatientFK)
	}
	req.ID = s.id()
	req.CreatedAt = time.Now().UTC()
	req.UpdatedAt = req.CreatedAt
	stored := *req
	stored.Patient = nil
	s.data.requests[req.ID] = stored
	return nil
}

func (r *requestRepo) find(op string, id int64, withPatient bool) (*entity.AppointmentRequest, error) {
	s := r.s
	if err := s.lock(op); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()

	req, ok := s.data.requests[id]
	if !ok {
		return nil, nil
	}
	if withPatient {
		req.Patient = s.patientRef(req.PatientID)
	}
	return &req, nil
}

func (r *requestRepo) FindByID(_ *gorm.DB, id int64) (*entity.AppointmentRequest, error) {
	return r.find("appointment_requests.find", id, true)
}

func (r *requestRepo) FindByIDForUpdate(_ *gorm.DB, id int64) (*entity.AppointmentRequest, error) {
	return r.find("appointment_requests.lock", id, false)
}

func (r *requestRepo) list(keep func(entity.AppointmentRequest) bool, less func(a, b entity.AppointmentRequest) bool, withPatient bool) ([]entity.AppointmentRequest, error) {
	s := r.s
	if err := s.lock("appointment_requests.find"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()

	out := []entity.AppointmentRequest{}
	for _, req := range s.data.requests {
		if !keep(req) {
			continue
		}
		if withPatient {
			req.Patient = s.patientRef(req.PatientID)
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

func (r *requestRepo) FindPending(_ *gorm.DB) ([]entity.AppointmentRequest, error) {
	return r.list(
		func(req entity.AppointmentRequest) bool { return req.IsPending() },
		func(a, b entity.AppointmentRequest) bool {
			if !a.RequestedDate.Equal(b.RequestedDate) {
				return a.RequestedDate.Before(b.RequestedDate)
			}
			return a.ID < b.ID
		},
		true,
	)
}

func (r *requestRepo) FindByPatientID(_ *gorm.DB, patientID int64) ([]entity.AppointmentRequest, error) {
	return r.list(
		func(req entity.AppointmentRequest) bool { return req.PatientID == patientID },
		func(a, b entity.AppointmentRequest) bool {
			if !a.RequestedDate.Equal(b.RequestedDate) {
				return a.RequestedDate.After(b.RequestedDate)
			}
			return a.ID > b.ID
		},
		false,
	)
}

func (r *requestRepo) UpdateStatusIfPending(_ *gorm.DB, id int64, status entity.RequestStatus) (int64, error) {
	s := r.s
	if err := s.lock("appointment_requests.update"); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	defer s.mu.Unlock()

	req, ok := s.data.requests[id]
	if !ok || !req.IsPending() {
		return 0, nil
	}
	req.Status = status
	req.UpdatedAt = time.Now().UTC()
	s.data.requests[id] = req
	return 1, nil
}

type appointmentRepo struct{ s *Store }

func (r *appointmentRepo) Create(_ *gorm.DB, a *entity.Appointment) error {
	s := r.s
	if err := s.lock("appointments.create"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()

	for _, existing := range s.data.appointments {
		if a.RequestID != nil && existing.RequestID != nil && *existing.RequestID == *a.RequestID {
			return uniqueViolation(ConstraintAppointmentReq)
		}
		if a.IsConfirmed() && existing.IsConfirmed() &&
			existing.DoctorID == a.DoctorID && existing.AppointmentDay.Equal(a.AppointmentDay) {
			return uniqueViolation(ConstraintDoctorDay)
		}
	}
	a.ID = s.id()
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	stored := *a
	stored.Patient, stored.Doctor = nil, nil
	s.data.appointments[a.ID] = stored
	return nil
}

func (r *appointmentRepo) FindByID(_ *gorm.DB, id int64) (*entity.Appointment, error) {
	s := r.s
	if err := s.lock("appointments.find"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()

	a, ok := s.data.appointments[id]
	if !ok {
		return nil, nil
	}
	s.attach(&a)
	return &a, nil
}

func (r *appointmentRepo) list(keep func(entity.Appointment) bool) ([]entity.Appointment, error) {
	s := r.s
	if err := s.lock("appointments.find"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()

	out := []entity.Appointment{}
	for _, a := range s.data.appointments {
		if !keep(a) {
			continue
		}
		s.attach(&a)
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AppointmentDate.Equal(out[j].AppointmentDate) {
			return out[i].AppointmentDate.After(out[j].AppointmentDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *appointmentRepo) FindAll(_ *gorm.DB) ([]entity.Appointment, error) {
	return r.list(func(entity.Appointment) bool { return true })
}

func (r *appointmentRepo) FindByPatientID(_ *gorm.DB, patientID int64) ([]entity.Appointment, error) {
	return r.list(func(a entity.Appointment) bool { return a.PatientID == patientID })
}

func (r *appointmentRepo) CountConfirmedForDoctorOnDay(_ *gorm.DB, doctorID int64, day time.Time) (int64, error) {
	s := r.s
	if err := s.lock("appointments.count"); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	defer s.mu.Unlock()

	day = entity.CalendarDay(day)
	var n int64
	for _, a := range s.data.appointments {
		if a.DoctorID == doctorID && a.IsConfirmed() && a.AppointmentDay.Equal(day) {
			n++
		}
	}
	return n, nil
}

type auditLogRepo struct{ s *Store }

func (r *auditLogRepo) Create(_ *gorm.DB, log *entity.AuditLog) error {
	s := r.s
	if err := s.lock("audit_logs.create"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()

	log.ID = s.id()
	log.CreatedAt = time.Now().UTC()
	s.data.auditLogs = append(s.data.auditLogs, *log)
	return nil
}

func (r *auditLogRepo) FindAll(_ *gorm.DB, filter repository.AuditLogFilter) ([]entity.AuditLog, error) {
	s := r.s
	if err := s.lock("audit_logs.find"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()

	out := []entity.AuditLog{}
	for i := len(s.data.auditLogs) - 1; i >= 0; i-- {
		l := s.data.auditLogs[i]
		if filter.Actor != "" && l.Actor != filter.Actor {
			continue
		}
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		out = append(out, l)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// patientRef and attach emulate gorm Preload. Callers hold s.mu.
func (s *Store) patientRef(id int64) *entity.Patient {
	p, ok := s.data.patients[id]
	if !ok {
		return nil
	}
	return &p
}

func (s *Store) attach(a *entity.Appointment) {
	a.Patient = s.patientRef(a.PatientID)
	if d, ok := s.data.doctors[a.DoctorID]; ok {
		a.Doctor = &d
	}
}
