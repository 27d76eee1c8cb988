package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/samudrayan/backend/internal/cache"
	"github.com/samudrayan/backend/internal/database/testutil"
	"github.com/samudrayan/backend/internal/models"
	"github.com/samudrayan/backend/internal/services"
)

func createCleanupUser(t *testing.T, db *gorm.DB, role, suffix string) *models.User {
	t.Helper()
	user := &models.User{
		UID:      "uid-" + suffix,
		Email:    suffix + "@example.com",
		Phone:    "9" + suffix,
		FullName: "Cleanup " + suffix,
		Role:     role,
		District: "Ratnagiri",
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestRunOnceExpiresStaleBookingsAndPurgesCache(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	ctx := context.Background()

	// Bookings reference real rows; foreign keys are enforced on the test DB.
	owner := createCleanupUser(t, db, models.RoleHomestayOwner, "cl-owner")
	guestOne := createCleanupUser(t, db, models.RoleTourist, "cl-guest1")
	guestTwo := createCleanupUser(t, db, models.RoleTourist, "cl-guest2")

	homestay := &models.Homestay{
		OwnerID:  owner.ID,
		Name:     "Cleanup Homestay",
		District: "Ratnagiri",
		Grade:    models.GradeSilver,
		Status:   models.HomestayActive,
		Rooms: []models.HomestayRoom{
			{Name: "Sea View", Capacity: 2, PricePerNight: 1500, IsActive: true},
		},
	}
	require.NoError(t, db.Create(homestay).Error)
	room := homestay.Rooms[0]

	stale := models.Booking{
		RoomID:   room.ID,
		GuestID:  guestOne.ID,
		CheckIn:  time.Now().AddDate(0, 0, 5),
		CheckOut: time.Now().AddDate(0, 0, 7),
		Guests:   2,
		Total:    3000,
		Status:   models.BookingPendingPayment,
	}
	require.NoError(t, db.Create(&stale).Error)

	paid := models.Booking{
		RoomID:   room.ID,
		GuestID:  guestTwo.ID,
		CheckIn:  time.Now().AddDate(0, 0, 5),
		CheckOut: time.Now().AddDate(0, 0, 7),
		Guests:   2,
		Total:    3000,
		Status:   models.BookingConfirmed,
	}
	require.NoError(t, db.Create(&paid).Error)

	require.NoError(t, db.Create(&models.CacheEntry{
		Key:       "gone",
		Value:     []byte("1"),
		ExpiresAt: time.Now().Add(-time.Minute),
	}).Error)
	require.NoError(t, db.Create(&models.CacheEntry{
		Key:       "live",
		Value:     []byte("1"),
		ExpiresAt: time.Now().Add(time.Hour),
	}).Error)

	// A clock one hour ahead makes the freshly created booking stale.
	future := func() time.Time { return time.Now().Add(time.Hour) }
	bookings, err := services.NewBookingService(db, services.WithBookingClock(future))
	require.NoError(t, err)

	cleaner := NewCleaner(bookings, cache.NewDatabaseStore(db),
		WithBookingMaxAge(30*time.Minute),
		WithNow(time.Now),
	)
	require.NoError(t, cleaner.RunOnce(ctx))

	var got models.Booking
	require.NoError(t, db.First(&got, "id = ?", stale.ID).Error)
	require.Equal(t, models.BookingExpired, got.Status)

	var gotPaid models.Booking
	require.NoError(t, db.First(&gotPaid, "id = ?", paid.ID).Error)
	require.Equal(t, models.BookingConfirmed, gotPaid.Status)

	var entries []models.CacheEntry
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, "live", entries[0].Key)
}

func TestStartSchedulesConfiguredJobs(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	bookings, err := services.NewBookingService(db)
	require.NoError(t, err)

	cleaner := NewCleaner(bookings, cache.NewDatabaseStore(db),
		WithBookingSchedule("@every 1h"),
		WithCacheSchedule("@every 1h"),
	)
	require.NoError(t, cleaner.Start())

	stop := cleaner.Stop()
	<-stop.Done()
}

func TestCleanerDisabledWithoutDependencies(t *testing.T) {
	cleaner := NewCleaner(nil, nil)
	require.NoError(t, cleaner.Start())
	require.NoError(t, cleaner.RunOnce(context.Background()))
}
