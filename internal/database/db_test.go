package database

import (
	"testing"

	"gorm.io/gorm"

	"github.com/samudrayan/backend/internal/models"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t)

	if err := db.Exec("SELECT 1").Error; err != nil {
		t.Fatalf("expected health query to succeed: %v", err)
	}
}

func TestAutoMigrateAndSeedData(t *testing.T) {
	db := openTestDB(t)

	if err := AutoMigrateAndSeed(db); err != nil {
		t.Fatalf("auto migrate and seed failed: %v", err)
	}

	var locationCount int64
	if err := db.Model(&models.Location{}).Count(&locationCount).Error; err != nil {
		t.Fatalf("count locations: %v", err)
	}
	if locationCount == 0 {
		t.Fatal("expected seeded locations")
	}

	var categoryCount int64
	if err := db.Model(&models.Category{}).Count(&categoryCount).Error; err != nil {
		t.Fatalf("count categories: %v", err)
	}
	if categoryCount == 0 {
		t.Fatal("expected seeded categories")
	}

	// Seeding twice must not duplicate master data.
	if err := SeedData(db); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	var again int64
	if err := db.Model(&models.Location{}).Count(&again).Error; err != nil {
		t.Fatalf("count locations: %v", err)
	}
	if again != locationCount {
		t.Fatalf("expected idempotent seed, got %d then %d locations", locationCount, again)
	}
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "oracle"}); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite"})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
