package dto

import "time"

// Request DTOs

// SubmitRequestRequest carries a patient's appointment request. RequestedDate
// is a calendar date in YYYY-MM-DD form.
type SubmitRequestRequest struct {
	Specialization string `json:"specialization" validate:"required,max=100"`
	RequestedDate  string `json:"requested_date" validate:"required,datetime=2006-01-02"`
	Description    string `json:"description" validate:"omitempty,max=2000"`
}

// FixAppointmentRequest names the pending request and doctor an administrator
// chose.
type FixAppointmentRequest struct {
	RequestID int64 `json:"request_id" validate:"required,gt=0"`
	DoctorID  int64 `json:"doctor_id" validate:"required,gt=0"`
}

// Response DTOs

type SubmitRequestResponse struct {
	RequestID int64  `json:"request_id"`
	Status    string `json:"status"`
}

type AppointmentRequestResponse struct {
	ID             int64     `json:"id"`
	PatientID      int64     `json:"patient_id"`
	PatientName    string    `json:"patient_name,omitempty"`
	Specialization string    `json:"specialization"`
	RequestedDate  string    `json:"requested_date"`
	Status         string    `json:"status"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type AppointmentRequestListResponse struct {
	Requests []AppointmentRequestResponse `json:"requests"`
	Total    int                          `json:"total"`
}

type AppointmentResponse struct {
	ID              int64  `json:"id"`
	RequestID       *int64 `json:"request_id,omitempty"`
	PatientID       int64  `json:"patient_id"`
	PatientName     string `json:"patient_name,omitempty"`
	DoctorID        int64  `json:"doctor_id"`
	DoctorName      string `json:"doctor_name,omitempty"`
	Specialization  string `json:"specialization,omitempty"`
	AppointmentDate string `json:"appointment_date"`
	Status          string `json:"status"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type FixAppointmentResponse struct {
	AppointmentID int64  `json:"appointment_id"`
	RequestID     int64  `json:"request_id"`
	DoctorID      int64  `json:"doctor_id"`
	Message       string `json:"message"`
}
