package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/samudrayan/backend/internal/models"
	"github.com/samudrayan/backend/pkg/logger"
)

const defaultHistoryLimit = 10

// AuditEntry captures a single verification event to persist. Snapshot maps
// may carry an "aadhar_number" key; it is masked before it reaches storage.
type AuditEntry struct {
	UserID    string
	Method    string
	Status    string
	Request   map[string]any
	Response  map[string]any
	Error     string
	IPAddress string
	UserAgent string
}

// AuditWriter appends entries to the immutable verification trail.
type AuditWriter struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewAuditWriter constructs an AuditWriter using the provided database handle.
func NewAuditWriter(db *gorm.DB) (*AuditWriter, error) {
	if db == nil {
		return nil, errors.New("audit writer: db is required")
	}
	return &AuditWriter{db: db, log: logger.WithModule("verification.audit")}, nil
}

// MaskNumber redacts an Aadhar number to its last four digits. Anything
// shorter than four characters is fully masked.
func MaskNumber(number string) string {
	if len(number) < 4 {
		return "****"
	}
	return "****" + number[len(number)-4:]
}

// Record appends one audit row. It is best-effort: a failed insert is logged
// and swallowed so a broken audit store never blocks verification itself.
func (w *AuditWriter) Record(ctx context.Context, entry AuditEntry) {
	if ctx == nil {
		ctx = context.Background()
	}

	row, err := w.buildRow(entry)
	if err != nil {
		w.log.Error("could not build audit row", zap.String("user_id", entry.UserID), zap.Error(err))
		return
	}

	if err := w.db.WithContext(ctx).Create(&row).Error; err != nil {
		w.log.Error("could not persist audit row",
			zap.String("user_id", entry.UserID),
			zap.String("method", entry.Method),
			zap.Error(err))
	}
}

// MustRecord appends one audit row and reports the failure to the caller.
// Used by tests and by the manual override path where a lost record should
// abort the operation.
func (w *AuditWriter) MustRecord(ctx context.Context, entry AuditEntry) error {
	if ctx == nil {
		ctx = context.Background()
	}

	row, err := w.buildRow(entry)
	if err != nil {
		return err
	}
	return w.db.WithContext(ctx).Create(&row).Error
}

func (w *AuditWriter) buildRow(entry AuditEntry) (models.VerificationLog, error) {
	if strings.TrimSpace(entry.UserID) == "" {
		return models.VerificationLog{}, errors.New("audit writer: user id is required")
	}
	if strings.TrimSpace(entry.Method) == "" {
		return models.VerificationLog{}, errors.New("audit writer: method is required")
	}
	if strings.TrimSpace(entry.Status) == "" {
		return models.VerificationLog{}, errors.New("audit writer: status is required")
	}

	request, err := marshalMasked(entry.Request)
	if err != nil {
		return models.VerificationLog{}, fmt.Errorf("audit writer: marshal request: %w", err)
	}
	response, err := marshalMasked(entry.Response)
	if err != nil {
		return models.VerificationLog{}, fmt.Errorf("audit writer: marshal response: %w", err)
	}

	return models.VerificationLog{
		UserID:       strings.TrimSpace(entry.UserID),
		Method:       entry.Method,
		Status:       entry.Status,
		RequestData:  request,
		ResponseData: response,
		ErrorMessage: entry.Error,
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
	}, nil
}

// marshalMasked serialises a snapshot, masking any field that looks like it
// carries the raw identity number.
func marshalMasked(snapshot map[string]any) (datatypes.JSON, error) {
	if snapshot == nil {
		return nil, nil
	}

	masked := make(map[string]any, len(snapshot))
	for key, value := range snapshot {
		if isNumberField(key) {
			if s, ok := value.(string); ok {
				masked[key] = MaskNumber(s)
				continue
			}
		}
		masked[key] = value
	}

	encoded, err := json.Marshal(masked)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(encoded), nil
}

func isNumberField(key string) bool {
	switch strings.ToLower(key) {
	case "aadhar_number", "aadhaar_number", "aadharnumber", "aadhaarnumber":
		return true
	}
	return false
}

// History returns the newest audit rows for a user, most recent first.
// A non-positive limit applies the default of ten; a negative limit returns
// everything (admin detail view).
func (w *AuditWriter) History(ctx context.Context, userID string, limit int) ([]models.VerificationLog, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("audit writer: user id is required")
	}

	query := w.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	switch {
	case limit == 0:
		query = query.Limit(defaultHistoryLimit)
	case limit > 0:
		query = query.Limit(limit)
	}

	var logs []models.VerificationLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("audit writer: history: %w", err)
	}
	return logs, nil
}
