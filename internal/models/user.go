package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Platform roles. The identity provider authenticates users; the role decides
// which surfaces a user may touch.
const (
	RoleAdmin         = "admin"
	RoleDistrictAdmin = "district-admin"
	RoleTalukaAdmin   = "taluka-admin"
	RoleHomestayOwner = "homestay-owner"
	RoleFisherfolk    = "fisherfolk"
	RoleArtisan       = "artisan"
	RoleNGO           = "ngo"
	RoleInvestor      = "investor"
	RoleTourist       = "tourist"
	RoleTrainer       = "trainer"
)

// Aadhar verification lifecycle states.
const (
	VerificationPending    = "pending"
	VerificationInProgress = "in_progress"
	VerificationVerified   = "verified"
	VerificationFailed     = "failed"
	VerificationRejected   = "rejected"
)

// AllRoles lists every role accepted at registration.
var AllRoles = []string{
	RoleAdmin, RoleDistrictAdmin, RoleTalukaAdmin, RoleHomestayOwner,
	RoleFisherfolk, RoleArtisan, RoleNGO, RoleInvestor, RoleTourist, RoleTrainer,
}

// ValidRole reports whether the given role is one the platform recognises.
func ValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User is a platform account. Identity is owned by the external provider;
// UID links the local row to it.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	UID      string `gorm:"uniqueIndex;not null" json:"uid"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Phone    string `gorm:"uniqueIndex;not null" json:"phone"`
	FullName string `gorm:"not null" json:"full_name"`

	Role     string `gorm:"not null;index" json:"role"`
	District string `gorm:"index" json:"district"`
	Taluka   string `json:"taluka"`

	IsActive bool `gorm:"not null" json:"is_active"`

	// Aadhar verification state. The number itself is stored encrypted and
	// never serialised.
	AadhaarNumberEncrypted string     `gorm:"column:aadhar_number_encrypted" json:"-"`
	AadhaarStatus          string     `gorm:"column:aadhar_verification_status;default:pending;index" json:"aadhar_verification_status"`
	AadhaarMethod          string     `gorm:"column:aadhar_verification_method" json:"aadhar_verification_method,omitempty"`
	AadhaarReferenceID     string     `gorm:"column:aadhar_reference_id" json:"aadhar_reference_id,omitempty"`
	AadhaarVerifiedAt      *time.Time `gorm:"column:aadhar_verified_at" json:"aadhar_verified_at,omitempty"`
	AadhaarAttempts        int        `gorm:"column:aadhar_verification_attempts;default:0" json:"aadhar_verification_attempts"`
	AadhaarLastAttemptAt   *time.Time `gorm:"column:aadhar_last_attempt_at" json:"aadhar_last_attempt_at,omitempty"`
	AadhaarFailureReason   string     `gorm:"column:aadhar_failure_reason" json:"aadhar_failure_reason,omitempty"`
	AadhaarDocumentURL     string     `gorm:"column:aadhar_document_url" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
