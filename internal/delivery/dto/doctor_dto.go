package dto

import "time"

// Request DTOs

type CreateDoctorRequest struct {
	Name           string `json:"name" validate:"required,min=2"`
	Specialization string `json:"specialization" validate:"required"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone" validate:"omitempty,min=6,max=20"`
	Qualification  string `json:"qualification" validate:"omitempty,max=255"`
	Experience     int    `json:"experience" validate:"gte=0,lte=80"`
}

type UpdateAvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

// Response DTOs

type DoctorResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Specialization string    `json:"specialization"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Qualification  string    `json:"qualification,omitempty"`
	Experience     int       `json:"experience"`
	Available      bool      `json:"available"`
	CreatedAt      time.Time `json:"created_at"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
