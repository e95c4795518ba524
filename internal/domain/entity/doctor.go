package entity

import (
	"strings"
	"time"
)

// Doctor represents a practitioner that can be assigned to appointment requests.
// Available is toggled by an administrator; unavailable doctors are never matched.
type Doctor struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Specialization string    `gorm:"type:varchar(100);not null;index" json:"specialization"`
	Email          string    `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone          string    `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Qualification  string    `gorm:"type:varchar(255)" json:"qualification,omitempty"`
	Experience     int       `gorm:"not null" json:"experience"`
	Available      bool      `gorm:"not null;index" json:"available"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// Handles reports whether the doctor's specialization matches the requested
// one, ignoring case.
func (d *Doctor) Handles(specialization string) bool {
	return strings.EqualFold(d.Specialization, specialization)
}
