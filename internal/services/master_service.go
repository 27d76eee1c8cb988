package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/samudrayan/backend/internal/models"
)

// MasterService serves the seeded reference tables.
type MasterService struct {
	db *gorm.DB
}

// NewMasterService constructs a MasterService instance.
func NewMasterService(db *gorm.DB) (*MasterService, error) {
	if db == nil {
		return nil, errors.New("master service: db is required")
	}
	return &MasterService{db: db}, nil
}

// Locations returns the district/taluka pairs the platform operates in,
// optionally filtered by district.
func (s *MasterService) Locations(ctx context.Context, district string) ([]models.Location, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Order("district, taluka")
	if district != "" {
		query = query.Where("district = ?", district)
	}

	var locations []models.Location
	if err := query.Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("master service: list locations: %w", err)
	}
	return locations, nil
}

// Categories returns the classification categories, optionally by domain.
func (s *MasterService) Categories(ctx context.Context, domain string) ([]models.Category, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Order("name")
	if domain != "" {
		query = query.Where("domain = ?", domain)
	}

	var categories []models.Category
	if err := query.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("master service: list categories: %w", err)
	}
	return categories, nil
}
