package entity

import "time"

// AppointmentStatus represents the status of a confirmed booking
type AppointmentStatus string

const (
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
)

// Appointment is created only by approving exactly one AppointmentRequest.
// AppointmentDay is the calendar day of AppointmentDate; the store keeps at
// most one CONFIRMED row per (DoctorID, AppointmentDay).
type Appointment struct {
	ID              int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID       int64             `gorm:"not null;index" json:"patient_id"`
	DoctorID        int64             `gorm:"not null;index" json:"doctor_id"`
	RequestID       *int64            `gorm:"uniqueIndex" json:"request_id,omitempty"`
	AppointmentDate time.Time         `gorm:"not null" json:"appointment_date"`
	AppointmentDay  time.Time         `gorm:"type:date;not null" json:"-"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  *Doctor  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsConfirmed checks if appointment is confirmed
func (a *Appointment) IsConfirmed() bool {
	return a.Status == AppointmentStatusConfirmed
}

// CalendarDay truncates t to midnight UTC of its own calendar date. Dates
// are compared at day granularity throughout scheduling.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
