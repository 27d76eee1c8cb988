package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samudrayan/backend/internal/models"
)

func TestPendingHomestaysDistrictScope(t *testing.T) {
	db := newServiceTestDB(t)
	svc, err := NewReviewService(db)
	require.NoError(t, err)
	ctx := context.Background()

	owner := createTestUser(t, db, asRole(models.RoleHomestayOwner), withAadhaarStatus(models.VerificationVerified))

	ratnagiri := createTestHomestay(t, db, owner.ID, models.HomestayPendingVerification)
	other := createTestHomestay(t, db, owner.ID, models.HomestayPendingVerification)
	require.NoError(t, db.Model(other).Update("district", "Raigad").Error)
	createTestHomestay(t, db, owner.ID, models.HomestayActive)

	all, total, err := svc.PendingHomestays(ctx, PendingHomestaysOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.NotNil(t, all[0].Owner)

	scoped, total, err := svc.PendingHomestays(ctx, PendingHomestaysOptions{District: "Ratnagiri"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, ratnagiri.ID, scoped[0].ID)
}

func TestApproveActivatesListing(t *testing.T) {
	db := newServiceTestDB(t)
	svc, err := NewReviewService(db)
	require.NoError(t, err)
	ctx := context.Background()

	owner := createTestUser(t, db, asRole(models.RoleHomestayOwner), withAadhaarStatus(models.VerificationVerified))
	admin := createTestUser(t, db, asRole(models.RoleAdmin))
	homestay := createTestHomestay(t, db, owner.ID, models.HomestayPendingVerification,
		models.HomestayRoom{Name: "A", Capacity: 2, PricePerNight: 1000, IsActive: true})

	approved, err := svc.Approve(ctx, homestay.ID, admin.ID, "all documents in order")
	require.NoError(t, err)
	require.Equal(t, models.HomestayActive, approved.Status)

	detail, err := svc.HomestayDetail(ctx, homestay.ID)
	require.NoError(t, err)
	require.Len(t, detail.History, 1)
	require.Equal(t, ReviewApproved, detail.History[0].Action)
	require.Equal(t, admin.ID, detail.History[0].ReviewerID)

	// Second decision on the same listing conflicts
	_, err = svc.Approve(ctx, homestay.ID, admin.ID, "")
	require.True(t, errors.Is(err, ErrNotPendingReview))
}

func TestRejectRequiresReason(t *testing.T) {
	db := newServiceTestDB(t)
	svc, err := NewReviewService(db)
	require.NoError(t, err)
	ctx := context.Background()

	owner := createTestUser(t, db, asRole(models.RoleHomestayOwner), withAadhaarStatus(models.VerificationVerified))
	admin := createTestUser(t, db, asRole(models.RoleDistrictAdmin))
	homestay := createTestHomestay(t, db, owner.ID, models.HomestayPendingVerification)

	_, err = svc.Reject(ctx, homestay.ID, admin.ID, "  ")
	require.Error(t, err)

	rejected, err := svc.Reject(ctx, homestay.ID, admin.ID, "address could not be verified")
	require.NoError(t, err)
	require.Equal(t, models.HomestayInactive, rejected.Status)

	detail, err := svc.HomestayDetail(ctx, homestay.ID)
	require.NoError(t, err)
	require.Equal(t, "address could not be verified", detail.History[0].Reason)
}

func TestReviewUnknownHomestay(t *testing.T) {
	db := newServiceTestDB(t)
	svc, err := NewReviewService(db)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), "missing-id", "admin-1", "")
	require.True(t, errors.Is(err, ErrHomestayNotFound))

	_, err = svc.HomestayDetail(context.Background(), "missing-id")
	require.True(t, errors.Is(err, ErrHomestayNotFound))
}
