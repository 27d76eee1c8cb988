package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Verification methods recorded in the audit trail.
const (
	MethodUIDAI       = "uidai"
	MethodDigiLocker  = "digilocker"
	MethodManual      = "manual"
	MethodFormatCheck = "format_check"
)

// Verification log statuses.
const (
	LogInitiated = "initiated"
	LogSuccess   = "success"
	LogFailed    = "failed"
	LogError     = "error"
)

// VerificationLog is one append-only entry in the Aadhar verification audit
// trail. Rows are never updated or deleted. Snapshots are masked before they
// reach this struct; the full Aadhar number must never appear here.
type VerificationLog struct {
	ID           string         `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string         `gorm:"type:uuid;index;not null" json:"user_id"`
	Method       string         `gorm:"not null;index" json:"verification_type"`
	Status       string         `gorm:"not null;index" json:"status"`
	RequestData  datatypes.JSON `json:"request_data,omitempty"`
	ResponseData datatypes.JSON `json:"response_data,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	IPAddress    string         `json:"ip_address,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
}

func (l *VerificationLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
