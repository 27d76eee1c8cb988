package services

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/samudrayan/backend/pkg/errors"
)

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrHomestayNotFound indicates the requested homestay does not exist.
	ErrHomestayNotFound = apperrors.New("HOMESTAY_NOT_FOUND", "Homestay not found", http.StatusNotFound)
	// ErrRoomNotFound indicates the requested room does not exist or is inactive.
	ErrRoomNotFound = apperrors.New("ROOM_NOT_FOUND", "Room not found", http.StatusNotFound)
	// ErrRoomUnavailable indicates the requested dates overlap an existing booking.
	ErrRoomUnavailable = apperrors.New("ROOM_UNAVAILABLE", "Room is not available for the selected dates", http.StatusConflict)
	// ErrAccountExists indicates a uid, email or phone is already registered.
	ErrAccountExists = apperrors.New("ACCOUNT_EXISTS", "An account with this uid, email or phone already exists", http.StatusConflict)
)

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") ||
		strings.Contains(lower, "duplicate") ||
		strings.Contains(lower, "constraint")
}
