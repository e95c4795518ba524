package dto

import "time"

// Request DTOs

type RegisterPatientRequest struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,min=6,max=20"`
	Age     int    `json:"age" validate:"gte=0,lte=150"`
	Gender  string `json:"gender" validate:"omitempty,oneof=M F"`
	Address string `json:"address" validate:"omitempty"`
}

// UpdatePatientRequest carries only the fields to change.
type UpdatePatientRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=2"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,min=6,max=20"`
	Age     *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	Gender  *string `json:"gender" validate:"omitempty,oneof=M F"`
	Address *string `json:"address"`
}

// Response DTOs

type PatientResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type PatientListResponse struct {
	Patients []PatientResponse `json:"patients"`
	Total    int               `json:"total"`
}
