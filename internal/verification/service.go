package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/samudrayan/backend/internal/models"
	appErrors "github.com/samudrayan/backend/pkg/errors"
	"github.com/samudrayan/backend/pkg/logger"
	"github.com/samudrayan/backend/pkg/metrics"
)

// RequestMeta carries caller context recorded alongside audit rows.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// StatusView is the projection of a user's verification state exposed by the
// API. The Aadhar number itself never appears here.
type StatusView struct {
	UserID        string     `json:"user_id"`
	Status        string     `json:"status"`
	Method        string     `json:"method,omitempty"`
	ReferenceID   string     `json:"reference_id,omitempty"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	Attempts      int        `json:"attempts"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	MaskedNumber  string     `json:"masked_number,omitempty"`
	HasDocument   bool       `json:"has_document"`
}

// CheckResult is the outcome of a stateless format check.
type CheckResult struct {
	WellFormed    bool `json:"well_formed"`
	ValidChecksum bool `json:"valid_checksum"`
}

// Statistics summarises verification state across a district or the whole
// platform.
type Statistics struct {
	Total           int64   `json:"total"`
	Pending         int64   `json:"pending"`
	InProgress      int64   `json:"in_progress"`
	Verified        int64   `json:"verified"`
	Failed          int64   `json:"failed"`
	Rejected        int64   `json:"rejected"`
	AverageAttempts float64 `json:"average_attempts"`
}

// PendingListOptions filters the admin review queue.
type PendingListOptions struct {
	District string
	Page     int
	PerPage  int
}

// Service drives the Aadhar verification state machine:
//
//	pending -> in_progress -> verified | failed
//	failed | rejected -> in_progress (retry)
//	any non-verified -> rejected (manual)
//
// verified is terminal for all automated paths. Status transitions are
// compare-and-swap updates so concurrent attempts cannot race each other past
// in_progress.
type Service struct {
	db       *gorm.DB
	codec    *Codec
	audit    *AuditWriter
	primary  Provider
	fallback Provider
	log      *zap.Logger
	now      func() time.Time
}

// ServiceOption customises the Service.
type ServiceOption func(*Service)

// WithClock overrides the clock, primarily for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithFallbackProvider installs the secondary provider tried when the primary
// fails.
func WithFallbackProvider(p Provider) ServiceOption {
	return func(s *Service) {
		s.fallback = p
	}
}

// NewService constructs the verification engine.
func NewService(db *gorm.DB, codec *Codec, audit *AuditWriter, primary Provider, opts ...ServiceOption) (*Service, error) {
	if db == nil {
		return nil, errors.New("verification service: db is required")
	}
	if codec == nil {
		return nil, errors.New("verification service: codec is required")
	}
	if audit == nil {
		return nil, errors.New("verification service: audit writer is required")
	}
	if primary == nil {
		return nil, errors.New("verification service: primary provider is required")
	}

	svc := &Service{
		db:      db,
		codec:   codec,
		audit:   audit,
		primary: primary,
		log:     logger.WithModule("verification"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Begin runs a verification attempt for the user. Allowed from pending,
// failed and rejected states.
func (s *Service) Begin(ctx context.Context, userID, number, document string, meta RequestMeta) (*StatusView, error) {
	return s.attempt(ctx, userID, number, document, meta, false)
}

// Retry re-runs verification after a failed or rejected outcome. Unlike
// Begin it refuses pending users: there is nothing to retry yet.
func (s *Service) Retry(ctx context.Context, userID, number, document string, meta RequestMeta) (*StatusView, error) {
	return s.attempt(ctx, userID, number, document, meta, true)
}

func (s *Service) attempt(ctx context.Context, userID, number, document string, meta RequestMeta, isRetry bool) (*StatusView, error) {
	ctx = ensureContext(ctx)

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if rejectErr := s.checkPreconditions(ctx, user, meta, isRetry); rejectErr != nil {
		return nil, rejectErr
	}

	// Structural failures short-circuit before any state change; the attempt
	// counter is untouched.
	if !IsWellFormed(number) || !ValidChecksum(number) {
		s.audit.Record(ctx, AuditEntry{
			UserID:    user.ID,
			Method:    models.MethodFormatCheck,
			Status:    models.LogFailed,
			Request:   map[string]any{"aadhar_number": number},
			Error:     "format or checksum validation failed",
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		metrics.VerificationAttempts.WithLabelValues(models.MethodFormatCheck, "failed").Inc()
		return nil, appErrors.ErrInvalidAadhaar
	}

	if err := s.claimInProgress(ctx, user, meta); err != nil {
		return nil, err
	}

	view, err := s.runProviders(ctx, user, number, document, meta)
	if err != nil {
		var appErr *appErrors.AppError
		if !errors.As(err, &appErr) {
			// Unexpected internal failure: the user must never be left
			// stranded in in_progress.
			return nil, s.forceFailed(ctx, user.ID, err, meta)
		}
		return nil, err
	}
	return view, nil
}

// checkPreconditions rejects attempts the state machine forbids. Every
// rejection still produces an audit row so the trail covers each call.
func (s *Service) checkPreconditions(ctx context.Context, user *models.User, meta RequestMeta, isRetry bool) error {
	reject := func(reason string, appErr *appErrors.AppError) error {
		s.audit.Record(ctx, AuditEntry{
			UserID:    user.ID,
			Method:    models.MethodFormatCheck,
			Status:    models.LogError,
			Error:     reason,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return appErr
	}

	switch user.AadhaarStatus {
	case models.VerificationVerified:
		return reject("already verified", appErrors.ErrAlreadyVerified)
	case models.VerificationInProgress:
		return reject("verification already in progress", appErrors.ErrVerificationInProgress)
	case models.VerificationPending:
		if isRetry {
			return reject("no prior attempt to retry", appErrors.ErrNothingToRetry)
		}
	}
	return nil
}

// claimInProgress performs the CAS transition into in_progress. Losing the
// race surfaces as a conflict, never as a second concurrent attempt.
func (s *Service) claimInProgress(ctx context.Context, user *models.User, meta RequestMeta) error {
	allowed := []string{models.VerificationPending, models.VerificationFailed, models.VerificationRejected}

	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND aadhar_verification_status IN ?", user.ID, allowed).
		Updates(map[string]any{
			"aadhar_verification_status": models.VerificationInProgress,
			"aadhar_last_attempt_at":     s.now(),
		})
	if result.Error != nil {
		return appErrors.Wrap(result.Error, "could not start verification")
	}
	if result.RowsAffected == 0 {
		current, err := s.loadUser(ctx, user.ID)
		if err != nil {
			return err
		}
		if current.AadhaarStatus == models.VerificationVerified {
			return s.checkPreconditions(ctx, current, meta, false)
		}
		return s.checkPreconditions(ctx, &models.User{
			ID:            current.ID,
			AadhaarStatus: models.VerificationInProgress,
		}, meta, false)
	}
	return nil
}

func (s *Service) runProviders(ctx context.Context, user *models.User, number, document string, meta RequestMeta) (*StatusView, error) {
	request := map[string]any{"aadhar_number": number}
	if document != "" {
		request["document_url"] = document
	}

	providers := []Provider{s.primary}
	if s.fallback != nil {
		providers = append(providers, s.fallback)
	}

	var failures []string
	unavailableOnly := true

	for i, provider := range providers {
		method := provider.Name()

		s.audit.Record(ctx, AuditEntry{
			UserID:    user.ID,
			Method:    method,
			Status:    models.LogInitiated,
			Request:   request,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})

		req := Request{Number: number}
		if i == 0 {
			// Supporting documents only go to the primary provider.
			req.Document = document
		}

		result, err := provider.Verify(ctx, req)
		if err == nil && result != nil {
			metrics.ProviderRequests.WithLabelValues(method, "success").Inc()
			return s.finalizeSuccess(ctx, user.ID, number, document, method, result.ReferenceID, meta)
		}

		metrics.ProviderRequests.WithLabelValues(method, "failure").Inc()
		if err == nil {
			err = errors.New("provider returned no result")
		}
		if !errors.Is(err, ErrProviderUnavailable) && !errors.Is(err, ErrProviderAuth) {
			unavailableOnly = false
		}
		failures = append(failures, fmt.Sprintf("%s: %v", method, err))

		s.audit.Record(ctx, AuditEntry{
			UserID:    user.ID,
			Method:    method,
			Status:    models.LogFailed,
			Request:   request,
			Error:     err.Error(),
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
	}

	return nil, s.finalizeFailure(ctx, user.ID, strings.Join(failures, "; "), unavailableOnly, meta)
}

func (s *Service) finalizeSuccess(ctx context.Context, userID, number, document, method, referenceID string, meta RequestMeta) (*StatusView, error) {
	encrypted, err := s.codec.Encrypt(number)
	if err != nil {
		return nil, fmt.Errorf("encrypt identity number: %w", err)
	}

	now := s.now()
	updates := map[string]any{
		"aadhar_verification_status":   models.VerificationVerified,
		"aadhar_verification_method":   method,
		"aadhar_reference_id":          referenceID,
		"aadhar_number_encrypted":      encrypted,
		"aadhar_verified_at":           now,
		"aadhar_last_attempt_at":       now,
		"aadhar_failure_reason":        "",
		"aadhar_verification_attempts": gorm.Expr("aadhar_verification_attempts + 1"),
	}
	if document != "" {
		updates["aadhar_document_url"] = document
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND aadhar_verification_status = ?", userID, models.VerificationInProgress).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("persist verification outcome: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("verification state changed underneath attempt for user %s", userID)
	}

	s.audit.Record(ctx, AuditEntry{
		UserID:    userID,
		Method:    method,
		Status:    models.LogSuccess,
		Request:   map[string]any{"aadhar_number": number},
		Response:  map[string]any{"reference_id": referenceID, "provider": method},
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
	metrics.VerificationAttempts.WithLabelValues(method, "success").Inc()

	s.log.Info("identity verified",
		zap.String("user_id", userID),
		zap.String("method", method),
		zap.String("reference_id", referenceID))

	return s.Status(ctx, userID)
}

func (s *Service) finalizeFailure(ctx context.Context, userID, reason string, unavailableOnly bool, meta RequestMeta) error {
	now := s.now()
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND aadhar_verification_status = ?", userID, models.VerificationInProgress).
		Updates(map[string]any{
			"aadhar_verification_status":   models.VerificationFailed,
			"aadhar_failure_reason":        reason,
			"aadhar_last_attempt_at":       now,
			"aadhar_verification_attempts": gorm.Expr("aadhar_verification_attempts + 1"),
		})
	if result.Error != nil {
		return appErrors.Wrap(result.Error, "could not record verification failure")
	}

	s.audit.Record(ctx, AuditEntry{
		UserID:    userID,
		Method:    models.MethodManual,
		Status:    models.LogError,
		Error:     reason,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
	metrics.VerificationAttempts.WithLabelValues(s.primary.Name(), "failure").Inc()

	s.log.Warn("identity verification failed",
		zap.String("user_id", userID),
		zap.String("reason", reason))

	if unavailableOnly {
		return appErrors.ErrProviderUnavailable
	}
	return appErrors.ErrVerificationFailed
}

// forceFailed handles unexpected internal errors mid-attempt: the status is
// forced to failed so the user is never stranded in in_progress, matching the
// terminal-state guarantee.
func (s *Service) forceFailed(ctx context.Context, userID string, cause error, meta RequestMeta) error {
	reason := cause.Error()

	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND aadhar_verification_status = ?", userID, models.VerificationInProgress).
		Updates(map[string]any{
			"aadhar_verification_status":   models.VerificationFailed,
			"aadhar_verification_method":   models.MethodManual,
			"aadhar_failure_reason":        reason,
			"aadhar_last_attempt_at":       s.now(),
			"aadhar_verification_attempts": gorm.Expr("aadhar_verification_attempts + 1"),
		})
	if result.Error != nil {
		s.log.Error("could not force failed state",
			zap.String("user_id", userID), zap.Error(result.Error))
	}

	s.audit.Record(ctx, AuditEntry{
		UserID:    userID,
		Method:    models.MethodManual,
		Status:    models.LogError,
		Error:     reason,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})

	s.log.Error("verification aborted by internal error",
		zap.String("user_id", userID), zap.Error(cause))

	return appErrors.New("VERIFICATION_FAILED", "Aadhar verification failed", 500).WithInternal(cause)
}

// ManualApprove marks a user verified by operator decision. The attempt
// counter is untouched: manual overrides are not automated attempts.
func (s *Service) ManualApprove(ctx context.Context, userID, operatorID, comments string, meta RequestMeta) (*StatusView, error) {
	ctx = ensureContext(ctx)

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.AadhaarStatus == models.VerificationVerified {
		s.audit.Record(ctx, AuditEntry{
			UserID: user.ID, Method: models.MethodManual, Status: models.LogError,
			Error: "already verified", IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
		})
		return nil, appErrors.ErrAlreadyVerified
	}

	now := s.now()
	referenceID := fmt.Sprintf("MANUAL_%d_%s", now.UnixMilli(), operatorID)

	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND aadhar_verification_status <> ?", userID, models.VerificationVerified).
		Updates(map[string]any{
			"aadhar_verification_status": models.VerificationVerified,
			"aadhar_verification_method": models.MethodManual,
			"aadhar_reference_id":        referenceID,
			"aadhar_verified_at":         now,
			"aadhar_failure_reason":      "",
		})
	if result.Error != nil {
		return nil, appErrors.Wrap(result.Error, "could not approve verification")
	}
	if result.RowsAffected == 0 {
		return nil, appErrors.ErrAlreadyVerified
	}

	if err := s.audit.MustRecord(ctx, AuditEntry{
		UserID: userID,
		Method: models.MethodManual,
		Status: models.LogSuccess,
		Response: map[string]any{
			"reference_id": referenceID,
			"operator_id":  operatorID,
			"comments":     comments,
		},
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}); err != nil {
		s.log.Error("manual approval audit record failed",
			zap.String("user_id", userID), zap.Error(err))
	}
	metrics.VerificationAttempts.WithLabelValues(models.MethodManual, "success").Inc()

	return s.Status(ctx, userID)
}

// ManualReject moves a non-verified user to rejected. A reason is mandatory.
func (s *Service) ManualReject(ctx context.Context, userID, operatorID, reason, comments string, meta RequestMeta) (*StatusView, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(reason) == "" {
		return nil, appErrors.NewBadRequest("rejection reason is required")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.AadhaarStatus == models.VerificationVerified {
		s.audit.Record(ctx, AuditEntry{
			UserID: user.ID, Method: models.MethodManual, Status: models.LogError,
			Error: "already verified", IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
		})
		return nil, appErrors.ErrAlreadyVerified
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND aadhar_verification_status <> ?", userID, models.VerificationVerified).
		Updates(map[string]any{
			"aadhar_verification_status": models.VerificationRejected,
			"aadhar_failure_reason":      strings.TrimSpace(reason),
		})
	if result.Error != nil {
		return nil, appErrors.Wrap(result.Error, "could not reject verification")
	}
	if result.RowsAffected == 0 {
		return nil, appErrors.ErrAlreadyVerified
	}

	if err := s.audit.MustRecord(ctx, AuditEntry{
		UserID: userID,
		Method: models.MethodManual,
		Status: models.LogFailed,
		Response: map[string]any{
			"operator_id": operatorID,
			"reason":      reason,
			"comments":    comments,
		},
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}); err != nil {
		s.log.Error("manual rejection audit record failed",
			zap.String("user_id", userID), zap.Error(err))
	}
	metrics.VerificationAttempts.WithLabelValues(models.MethodManual, "failure").Inc()

	return s.Status(ctx, userID)
}

// Status returns the verification projection for a user.
func (s *Service) Status(ctx context.Context, userID string) (*StatusView, error) {
	ctx = ensureContext(ctx)

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(user), nil
}

// History returns the audit trail for a user, newest first. A zero limit
// applies the default of ten entries.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]models.VerificationLog, error) {
	ctx = ensureContext(ctx)

	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.audit.History(ctx, userID, limit)
}

// Check validates a number's structure without touching state. Nothing is stored and
// no state changes.
func (s *Service) Check(number string) CheckResult {
	wellFormed := IsWellFormed(number)
	return CheckResult{
		WellFormed:    wellFormed,
		ValidChecksum: wellFormed && ValidChecksum(number),
	}
}

// PendingReview lists users awaiting manual attention, optionally scoped to a
// district.
func (s *Service) PendingReview(ctx context.Context, opts PendingListOptions) ([]StatusView, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}

	statuses := []string{models.VerificationPending, models.VerificationInProgress, models.VerificationFailed}

	query := s.db.WithContext(ctx).Model(&models.User{}).
		Where("aadhar_verification_status IN ?", statuses)
	if opts.District != "" {
		query = query.Where("district = ?", opts.District)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("verification service: count pending: %w", err)
	}

	var users []models.User
	if err := query.
		Order("created_at ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("verification service: list pending: %w", err)
	}

	views := make([]StatusView, 0, len(users))
	for i := range users {
		views = append(views, *s.view(&users[i]))
	}
	return views, total, nil
}

// Detail returns the full projection plus unbounded history for the admin
// detail view.
func (s *Service) Detail(ctx context.Context, userID string) (*StatusView, []models.VerificationLog, error) {
	ctx = ensureContext(ctx)

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	history, err := s.audit.History(ctx, userID, -1)
	if err != nil {
		return nil, nil, err
	}
	return s.view(user), history, nil
}

// Statistics aggregates verification state, optionally per district.
func (s *Service) Statistics(ctx context.Context, district string) (*Statistics, error) {
	ctx = ensureContext(ctx)

	base := s.db.WithContext(ctx).Model(&models.User{})
	if district != "" {
		base = base.Where("district = ?", district)
	}

	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	if err := base.Session(&gorm.Session{}).
		Select("aadhar_verification_status AS status, COUNT(*) AS count").
		Group("aadhar_verification_status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("verification service: statistics: %w", err)
	}

	stats := &Statistics{}
	for _, r := range rows {
		stats.Total += r.Count
		switch r.Status {
		case models.VerificationPending:
			stats.Pending = r.Count
		case models.VerificationInProgress:
			stats.InProgress = r.Count
		case models.VerificationVerified:
			stats.Verified = r.Count
		case models.VerificationFailed:
			stats.Failed = r.Count
		case models.VerificationRejected:
			stats.Rejected = r.Count
		}
	}

	avgRow := base.Session(&gorm.Session{}).
		Select("COALESCE(AVG(aadhar_verification_attempts), 0)").Row()
	if err := avgRow.Scan(&stats.AverageAttempts); err != nil {
		return nil, fmt.Errorf("verification service: average attempts: %w", err)
	}

	return stats, nil
}

func (s *Service) loadUser(ctx context.Context, userID string) (*models.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, appErrors.NewBadRequest("user id is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Take(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.ErrNotFound.WithMessage("User not found")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, "could not load user")
	}
	return &user, nil
}

// view builds the API projection. Stored numbers that cannot be decrypted are
// logged and rendered fully masked; decryption problems never reach clients.
func (s *Service) view(user *models.User) *StatusView {
	view := &StatusView{
		UserID:        user.ID,
		Status:        user.AadhaarStatus,
		Method:        user.AadhaarMethod,
		ReferenceID:   user.AadhaarReferenceID,
		VerifiedAt:    user.AadhaarVerifiedAt,
		Attempts:      user.AadhaarAttempts,
		LastAttemptAt: user.AadhaarLastAttemptAt,
		FailureReason: user.AadhaarFailureReason,
		HasDocument:   user.AadhaarDocumentURL != "",
	}

	if user.AadhaarNumberEncrypted != "" {
		number, err := s.codec.Decrypt(user.AadhaarNumberEncrypted)
		if err != nil {
			s.log.Error("stored identity number is unreadable",
				zap.String("user_id", user.ID), zap.Error(err))
			view.MaskedNumber = "****"
		} else {
			view.MaskedNumber = MaskNumber(number)
		}
	}

	return view
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
