package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/samudrayan/backend/internal/models"
)

func TestMeAndUpdateMe(t *testing.T) {
	db := newServiceTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)
	ctx := context.Background()

	user := createTestUser(t, db)

	me, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, me.Email)

	name := "Asha Tandel"
	updated, err := svc.UpdateMe(ctx, user.ID, UpdateProfileInput{FullName: &name})
	require.NoError(t, err)
	require.Equal(t, "Asha Tandel", updated.FullName)

	empty := "  "
	_, err = svc.UpdateMe(ctx, user.ID, UpdateProfileInput{Phone: &empty})
	require.Error(t, err)

	_, err = svc.Me(ctx, "missing-id")
	require.True(t, errors.Is(err, ErrUserNotFound))
}

func TestUpdateMePhoneConflict(t *testing.T) {
	db := newServiceTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)
	ctx := context.Background()

	first := createTestUser(t, db)
	second := createTestUser(t, db)

	_, err = svc.UpdateMe(ctx, second.ID, UpdateProfileInput{Phone: &first.Phone})
	require.Error(t, err)
}

func TestMyBookingsFiltersAndPaginates(t *testing.T) {
	db := newServiceTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)
	ctx := context.Background()

	owner := createTestUser(t, db, asRole(models.RoleHomestayOwner))
	guest := createTestUser(t, db)
	homestay := createTestHomestay(t, db, owner.ID, models.HomestayActive,
		models.HomestayRoom{Name: "Sea View", Capacity: 2, PricePerNight: 1500, IsActive: true})
	room := homestay.Rooms[0]

	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		booking := &models.Booking{
			RoomID:   room.ID,
			GuestID:  guest.ID,
			CheckIn:  base.AddDate(0, 0, i*7),
			CheckOut: base.AddDate(0, 0, i*7+2),
			Guests:   2,
			Total:    3000,
			Status:   models.BookingConfirmed,
		}
		require.NoError(t, db.Create(booking).Error)
	}
	cancelled := &models.Booking{
		RoomID:   room.ID,
		GuestID:  guest.ID,
		CheckIn:  base.AddDate(0, 1, 0),
		CheckOut: base.AddDate(0, 1, 2),
		Guests:   2,
		Total:    3000,
		Status:   models.BookingCanceled,
	}
	require.NoError(t, db.Create(cancelled).Error)

	bookings, total, err := svc.MyBookings(ctx, guest.ID, MyBookingsOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 4, total)
	require.Len(t, bookings, 4)
	require.NotNil(t, bookings[0].Room)

	_, total, err = svc.MyBookings(ctx, guest.ID, MyBookingsOptions{Status: models.BookingConfirmed})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)

	from := base.AddDate(0, 0, 10)
	bookings, total, err = svc.MyBookings(ctx, guest.ID, MyBookingsOptions{From: &from, Status: models.BookingConfirmed})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, bookings, 1)

	bookings, _, err = svc.MyBookings(ctx, guest.ID, MyBookingsOptions{Page: 2, PerPage: 3})
	require.NoError(t, err)
	require.Len(t, bookings, 1)
}
