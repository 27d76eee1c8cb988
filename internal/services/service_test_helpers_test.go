package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/samudrayan/backend/internal/auth"
	"github.com/samudrayan/backend/internal/database/testutil"
	"github.com/samudrayan/backend/internal/models"
)

func newServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
}

func newTestJWT(t *testing.T) *iauth.JWTService {
	t.Helper()
	svc, err := iauth.NewJWTService(iauth.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
	})
	require.NoError(t, err)
	return svc
}

type testUserOption func(*models.User)

func asRole(role string) testUserOption {
	return func(u *models.User) { u.Role = role }
}

func withAadhaarStatus(status string) testUserOption {
	return func(u *models.User) { u.AadhaarStatus = status }
}

func inDistrict(district string) testUserOption {
	return func(u *models.User) { u.District = district }
}

func createTestUser(t *testing.T, db *gorm.DB, opts ...testUserOption) *models.User {
	t.Helper()

	suffix := uuid.NewString()[:8]
	user := &models.User{
		UID:      "uid-" + suffix,
		Email:    suffix + "@example.com",
		Phone:    "9" + suffix,
		FullName: "Test User " + suffix,
		Role:     models.RoleTourist,
		District: "Ratnagiri",
		Taluka:   "Guhagar",
		IsActive: true,
	}
	for _, opt := range opts {
		opt(user)
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestHomestay(t *testing.T, db *gorm.DB, ownerID, status string, rooms ...models.HomestayRoom) *models.Homestay {
	t.Helper()

	suffix := uuid.NewString()[:8]
	homestay := &models.Homestay{
		OwnerID:  ownerID,
		Name:     "Homestay " + suffix,
		District: "Ratnagiri",
		Taluka:   "Guhagar",
		Grade:    models.GradeSilver,
		Status:   status,
		Rooms:    rooms,
	}
	require.NoError(t, db.Create(homestay).Error)
	return homestay
}
