package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samudrayan/backend/internal/models"
	apperrors "github.com/samudrayan/backend/pkg/errors"
)

func validHomestayInput(ownerID string) CreateHomestayInput {
	return CreateHomestayInput{
		OwnerID:     ownerID,
		Name:        "Konkan Breeze",
		Description: "Beachfront rooms near the fort",
		District:    "Sindhudurg",
		Taluka:      "Malvan",
		Grade:       models.GradeGold,
		Rooms: []RoomInput{
			{Name: "Sea View", Capacity: 2, PricePerNight: 2000},
			{Name: "Garden", Capacity: 4, PricePerNight: 1200},
		},
	}
}

func TestCreateHomestayRequiresVerifiedOwner(t *testing.T) {
	db := newServiceTestDB(t)
	svc, err := NewHomestayService(db)
	require.NoError(t, err)
	ctx := context.Background()

	pendingOwner := createTestUser(t, db, asRole(models.RoleHomestayOwner))
	_, err = svc.Create(ctx, validHomestayInput(pendingOwner.ID))
	require.True(t, errors.Is(err, apperrors.ErrAadhaarRequired))

	tourist := createTestUser(t, db, withAadhaarStatus(models.VerificationVerified))
	_, err = svc.Create(ctx, validHomestayInput(tourist.ID))
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, 403, appErr.StatusCode)
}

func TestCreateHomestay(t *testing.T) {
	db := newServiceTestDB(t)
	svc, err := NewHomestayService(db)
	require.NoError(t, err)
	ctx := context.Background()

	owner := createTestUser(t, db, asRole(models.RoleHomestayOwner), withAadhaarStatus(models.VerificationVerified))

	homestay, err := svc.Create(ctx, validHomestayInput(owner.ID))
	require.NoError(t, err)
	require.Equal(t, models.HomestayPendingVerification, homestay.Status)
	require.Len(t, homestay.Rooms, 2)

	// Bad grade and empty rooms are rejected
	input := validHomestayInput(owner.ID)
	input.Grade = "platinum"
	_, err = svc.Create(ctx, input)
	require.Error(t, err)

	input = validHomestayInput(owner.ID)
	input.Rooms = nil
	_, err = svc.Create(ctx, input)
	require.Error(t, err)
}

func TestListHomestaysFilters(t *testing.T) {
	db := newServiceTestDB(t)
	svc, err := NewHomestayService(db)
	require.NoError(t, err)
	ctx := context.Background()

	owner := createTestUser(t, db, asRole(models.RoleHomestayOwner), withAadhaarStatus(models.VerificationVerified))

	active := createTestHomestay(t, db, owner.ID, models.HomestayActive,
		models.HomestayRoom{Name: "A", Capacity: 2, PricePerNight: 1000, IsActive: true},
		models.HomestayRoom{Name: "B", Capacity: 4, PricePerNight: 2500, IsActive: true},
		models.HomestayRoom{Name: "Closed", Capacity: 6, PricePerNight: 5000, IsActive: false})
	createTestHomestay(t, db, owner.ID, models.HomestayPendingVerification,
		models.HomestayRoom{Name: "C", Capacity: 2, PricePerNight: 900, IsActive: true})

	// Default listing only shows active homestays
	items, total, err := svc.List(ctx, ListHomestaysOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, active.ID, items[0].ID)

	// Inactive rooms stay out of the aggregates
	require.Equal(t, 2, items[0].RoomSummary.RoomCount)
	require.Equal(t, 1000.0, items[0].RoomSummary.MinPrice)
	require.Equal(t, 2500.0, items[0].RoomSummary.MaxPrice)
	require.Equal(t, 4, items[0].RoomSummary.MaxCapacity)

	_, total, err = svc.List(ctx, ListHomestaysOptions{Filters: HomestayFilters{District: "Ratna"}})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	_, total, err = svc.List(ctx, ListHomestaysOptions{Filters: HomestayFilters{District: "Palghar"}})
	require.NoError(t, err)
	require.EqualValues(t, 0, total)

	_, total, err = svc.List(ctx, ListHomestaysOptions{Filters: HomestayFilters{Status: models.HomestayPendingVerification}})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
}

func TestRoomCreatedInactiveStaysInactive(t *testing.T) {
	db := newServiceTestDB(t)
	owner := createTestUser(t, db, asRole(models.RoleHomestayOwner), withAadhaarStatus(models.VerificationVerified))
	homestay := createTestHomestay(t, db, owner.ID, models.HomestayActive,
		models.HomestayRoom{Name: "Closed", Capacity: 2, PricePerNight: 1000, IsActive: false})

	var stored models.HomestayRoom
	require.NoError(t, db.Where("homestay_id = ?", homestay.ID).First(&stored).Error)
	require.False(t, stored.IsActive, "room created inactive must not persist as active")
}

func TestGetHomestay(t *testing.T) {
	db := newServiceTestDB(t)
	svc, err := NewHomestayService(db)
	require.NoError(t, err)
	ctx := context.Background()

	owner := createTestUser(t, db, asRole(models.RoleHomestayOwner), withAadhaarStatus(models.VerificationVerified))
	homestay := createTestHomestay(t, db, owner.ID, models.HomestayActive,
		models.HomestayRoom{Name: "A", Capacity: 2, PricePerNight: 1000, IsActive: true},
		models.HomestayRoom{Name: "Closed", Capacity: 4, PricePerNight: 2000, IsActive: false})

	detail, err := svc.Get(ctx, homestay.ID)
	require.NoError(t, err)
	require.Len(t, detail.Rooms, 1, "inactive rooms are hidden")
	require.Equal(t, 1, detail.RoomSummary.RoomCount)

	_, err = svc.Get(ctx, "missing-id")
	require.True(t, errors.Is(err, ErrHomestayNotFound))
}
