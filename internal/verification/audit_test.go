package verification

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samudrayan/backend/internal/database/testutil"
	"github.com/samudrayan/backend/internal/models"
)

func TestMaskNumber(t *testing.T) {
	require.Equal(t, "****9012", MaskNumber("123456789012"))
	require.Equal(t, "****", MaskNumber("123"))
	require.Equal(t, "****", MaskNumber(""))
}

func TestRecordMasksSnapshots(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	writer, err := NewAuditWriter(db)
	require.NoError(t, err)

	user := models.User{UID: "uid-1", Email: "a@example.com", Phone: "9000000001", FullName: "A", Role: models.RoleTourist}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, writer.MustRecord(context.Background(), AuditEntry{
		UserID:  user.ID,
		Method:  models.MethodUIDAI,
		Status:  models.LogInitiated,
		Request: map[string]any{"aadhar_number": "123456789012", "document_url": "https://cdn/doc.pdf"},
	}))

	var row models.VerificationLog
	require.NoError(t, db.Take(&row, "user_id = ?", user.ID).Error)

	var request map[string]any
	require.NoError(t, json.Unmarshal(row.RequestData, &request))
	require.Equal(t, "****9012", request["aadhar_number"])
	require.Equal(t, "https://cdn/doc.pdf", request["document_url"])
	require.NotContains(t, string(row.RequestData), "123456789012")
}

func TestRecordRequiresCoreFields(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	writer, err := NewAuditWriter(db)
	require.NoError(t, err)

	require.Error(t, writer.MustRecord(context.Background(), AuditEntry{Method: "uidai", Status: "failed"}))
	require.Error(t, writer.MustRecord(context.Background(), AuditEntry{UserID: "u", Status: "failed"}))
	require.Error(t, writer.MustRecord(context.Background(), AuditEntry{UserID: "u", Method: "uidai"}))
}

func TestHistoryOrderAndLimit(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	writer, err := NewAuditWriter(db)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 15; i++ {
		require.NoError(t, writer.MustRecord(ctx, AuditEntry{
			UserID: "user-1",
			Method: models.MethodUIDAI,
			Status: models.LogInitiated,
		}))
	}

	logs, err := writer.History(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, logs, defaultHistoryLimit)

	all, err := writer.History(ctx, "user-1", -1)
	require.NoError(t, err)
	require.Len(t, all, 15)

	for i := 1; i < len(all); i++ {
		require.False(t, all[i-1].CreatedAt.Before(all[i].CreatedAt),
			"expected history to be newest first")
	}
}

func TestRecordIsBestEffort(t *testing.T) {
	db := testutil.MustOpenTestDB(t) // no migration: inserts will fail
	writer, err := NewAuditWriter(db)
	require.NoError(t, err)

	// Must not panic or surface the storage failure.
	writer.Record(context.Background(), AuditEntry{
		UserID: "user-1",
		Method: models.MethodUIDAI,
		Status: models.LogInitiated,
	})
}
