package models

// Location is seeded master data describing the coastal districts and talukas
// the platform operates in.
type Location struct {
	BaseModel

	District string `gorm:"index;not null" json:"district"`
	Taluka   string `gorm:"not null" json:"taluka"`
}

// Category is seeded master data for listing and marketplace classification.
type Category struct {
	BaseModel

	Name   string `gorm:"uniqueIndex;not null" json:"name"`
	Slug   string `gorm:"uniqueIndex;not null" json:"slug"`
	Domain string `gorm:"index" json:"domain"`
}
