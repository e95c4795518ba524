package entity

import "time"

// RequestStatus represents the lifecycle state of an appointment request
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	// RequestStatusRejected is part of the status domain but no operation
	// transitions into it yet.
	RequestStatusRejected RequestStatus = "REJECTED"
)

// AppointmentRequest is a patient's ask for a doctor of a given specialization
// on a calendar day, before any doctor is assigned.
type AppointmentRequest struct {
	ID             int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID      int64         `gorm:"not null;index" json:"patient_id"`
	Specialization string        `gorm:"type:varchar(100);not null" json:"specialization"`
	RequestedDate  time.Time     `gorm:"type:date;not null;index" json:"requested_date"`
	Status         RequestStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Description    string        `gorm:"type:text" json:"description,omitempty"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (AppointmentRequest) TableName() string {
	return "appointment_requests"
}

// IsPending checks if the request still awaits a doctor
func (r *AppointmentRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}
