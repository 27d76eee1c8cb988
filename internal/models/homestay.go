package models

import (
	"gorm.io/datatypes"
)

// Homestay grades awarded by the classification board.
const (
	GradeSilver  = "silver"
	GradeGold    = "gold"
	GradeDiamond = "diamond"
)

// Homestay listing states.
const (
	HomestayPendingVerification = "pending-verification"
	HomestayActive              = "active"
	HomestayInactive            = "inactive"
)

// ValidGrade reports whether the grade is a recognised classification.
func ValidGrade(grade string) bool {
	switch grade {
	case GradeSilver, GradeGold, GradeDiamond:
		return true
	}
	return false
}

// Homestay is a property listed by a verified owner. New listings start in
// pending-verification until an administrator reviews them.
type Homestay struct {
	BaseModel

	OwnerID string `gorm:"type:uuid;index;not null" json:"owner_id"`
	Owner   *User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	Name        string `gorm:"not null;index" json:"name"`
	Description string `json:"description"`
	District    string `gorm:"index;not null" json:"district"`
	Taluka      string `gorm:"index" json:"taluka"`
	Address     string `json:"address"`

	Grade  string `gorm:"not null" json:"grade"`
	Status string `gorm:"default:pending-verification;index" json:"status"`

	Amenities datatypes.JSON `json:"amenities,omitempty"`
	Media     datatypes.JSON `json:"media,omitempty"`

	Rooms []HomestayRoom `gorm:"foreignKey:HomestayID" json:"rooms,omitempty"`
}

// HomestayRoom is a bookable room within a homestay.
type HomestayRoom struct {
	BaseModel

	HomestayID string `gorm:"type:uuid;index;not null" json:"homestay_id"`
	Name       string `gorm:"not null" json:"name"`
	Capacity   int    `gorm:"not null" json:"capacity"`

	PricePerNight float64 `gorm:"not null" json:"price_per_night"`
	// No column default: gorm would skip a false value on insert and the
	// database default would silently flip the room back to active.
	IsActive bool `gorm:"not null" json:"is_active"`
}

// HomestayReviewLog records an administrator's decision on a pending listing.
type HomestayReviewLog struct {
	BaseModel

	HomestayID string `gorm:"type:uuid;index;not null" json:"homestay_id"`
	ReviewerID string `gorm:"type:uuid;not null" json:"reviewer_id"`
	Action     string `gorm:"not null" json:"action"`
	Reason     string `json:"reason,omitempty"`
	Comments   string `json:"comments,omitempty"`
}
