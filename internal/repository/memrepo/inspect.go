package memrepo

import "clinic-scheduling/internal/domain/entity"

// Request returns a copy of the stored request, bypassing failure injection.
func (s *Store) Request(id int64) (entity.AppointmentRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.requests[id]
	return r, ok
}

// Appointments returns a copy of every stored appointment.
func (s *Store) Appointments() []entity.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Appointment, 0, len(s.data.appointments))
	for _, a := range s.data.appointments {
		out = append(out, a)
	}
	return out
}

// AuditLogs returns a copy of the audit trail in insertion order.
func (s *Store) AuditLogs() []entity.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.AuditLog(nil), s.data.auditLogs...)
}
