package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// AuditLog represents a system audit trail entry. Actor is "admin" or
// "patient:<id>"; system jobs such as seeding use "system".
type AuditLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Actor      string    `gorm:"type:varchar(64);not null;index" json:"actor"`
	Action     string    `gorm:"type:varchar(100);not null;index" json:"action"`
	EntityType string    `gorm:"type:varchar(64)" json:"entity_type,omitempty"`
	EntityID   *int64    `json:"entity_id,omitempty"`
	Metadata   JSON      `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Audit actors
const (
	AuditActorAdmin  = "admin"
	AuditActorSystem = "system"
)

// PatientActor formats the actor string for a patient
func PatientActor(patientID int64) string {
	return fmt.Sprintf("patient:%d", patientID)
}

// Common audit actions
const (
	AuditActionPatientRegister = "patient.register"
	AuditActionPatientUpdate   = "patient.update"
	AuditActionPatientLogin    = "patient.login"
	AuditActionAdminLogin      = "admin.login"
	AuditActionLogout          = "auth.logout"
	AuditActionRequestSubmit   = "request.submit"
	AuditActionAppointmentFix  = "appointment.fix"
	AuditActionDoctorCreate    = "doctor.create"
	AuditActionDoctorUpdate    = "doctor.update"
)

// Audit entity types
const (
	AuditEntityPatient     = "patient"
	AuditEntityDoctor      = "doctor"
	AuditEntityRequest     = "appointment_request"
	AuditEntityAppointment = "appointment"
)
