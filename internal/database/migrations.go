package database

import (
	"gorm.io/gorm"

	"github.com/samudrayan/backend/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.VerificationLog{},
		&models.Homestay{},
		&models.HomestayRoom{},
		&models.HomestayReviewLog{},
		&models.Booking{},
		&models.PaymentTransaction{},
		&models.Location{},
		&models.Category{},
		&models.CacheEntry{},
	)
}

// SeedData populates master data for the coastal districts the platform
// launches in. Seeding is idempotent.
func SeedData(db *gorm.DB) error {
	locations := []models.Location{
		{District: "Ratnagiri", Taluka: "Ratnagiri"},
		{District: "Ratnagiri", Taluka: "Guhagar"},
		{District: "Ratnagiri", Taluka: "Dapoli"},
		{District: "Sindhudurg", Taluka: "Malvan"},
		{District: "Sindhudurg", Taluka: "Vengurla"},
		{District: "Sindhudurg", Taluka: "Devgad"},
		{District: "Raigad", Taluka: "Alibag"},
		{District: "Raigad", Taluka: "Murud"},
		{District: "Raigad", Taluka: "Shrivardhan"},
	}

	for _, loc := range locations {
		if err := db.Where(models.Location{District: loc.District, Taluka: loc.Taluka}).
			Attrs(loc).FirstOrCreate(&models.Location{}).Error; err != nil {
			return err
		}
	}

	categories := []models.Category{
		{Name: "Beachfront Homestay", Slug: "beachfront-homestay", Domain: "homestay"},
		{Name: "Farm Stay", Slug: "farm-stay", Domain: "homestay"},
		{Name: "Heritage Home", Slug: "heritage-home", Domain: "homestay"},
		{Name: "Handicrafts", Slug: "handicrafts", Domain: "marketplace"},
		{Name: "Dried Seafood", Slug: "dried-seafood", Domain: "marketplace"},
		{Name: "Coastal Cuisine", Slug: "coastal-cuisine", Domain: "marketplace"},
	}

	for _, cat := range categories {
		if err := db.Where(models.Category{Slug: cat.Slug}).
			Attrs(cat).FirstOrCreate(&models.Category{}).Error; err != nil {
			return err
		}
	}

	return nil
}
