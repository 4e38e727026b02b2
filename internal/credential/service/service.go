// Package service implements the credential verifier: the lifecycle state
// machine for professional credentials. Verification is anchored and feeds a
// credential_verified event into the reputation log.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"lexara/internal/anchor"
	"lexara/internal/audit"
	"lexara/internal/credential/metrics"
	"lexara/internal/credential/models"
	"lexara/internal/credential/store"
	"lexara/internal/evidence"
	repmodels "lexara/internal/reputation/models"
	"lexara/pkg/domain"
	dErrors "lexara/pkg/domain-errors"
)

// EventAppender feeds verification events into the reputation log.
type EventAppender interface {
	Append(ctx context.Context, in repmodels.AppendInput) (repmodels.EventID, error)
}

// Service is the credential verifier.
type Service struct {
	store    store.Store
	evidence evidence.Store
	anchorer anchor.Client
	events   EventAppender
	auditor  audit.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithAuditor configures a best-effort audit publisher.
func WithAuditor(auditor audit.Publisher) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

// WithMetrics configures Prometheus metrics for the verifier.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger configures a logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates the credential verifier service.
func New(st store.Store, ev evidence.Store, anchorer anchor.Client, events EventAppender, opts ...Option) *Service {
	s := &Service{
		store:    st,
		evidence: ev,
		anchorer: anchorer,
		events:   events,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit uploads the evidence document and creates a pending credential.
// All-or-nothing: a cancelled context between upload and create leaves no
// credential record (the orphaned evidence blob is content-addressed and
// harmless).
func (s *Service) Submit(ctx context.Context, in models.SubmitInput, file evidence.File) (models.CredentialID, error) {
	if err := in.Validate(); err != nil {
		s.recordFailure("validation")
		return "", err
	}

	cid, err := s.evidence.Upload(ctx, file)
	if err != nil {
		s.recordFailure("evidence")
		return "", dErrors.Wrap(err, dErrors.CodeStorage, "upload credential evidence")
	}

	if err := ctx.Err(); err != nil {
		s.recordFailure("cancelled")
		return "", dErrors.Wrap(err, dErrors.CodeTimeout, "submission cancelled")
	}

	now := s.now()
	cred := models.Credential{
		ID:               models.NewCredentialID(),
		UserID:           in.UserID,
		CredentialType:   in.CredentialType,
		IssuingAuthority: in.IssuingAuthority,
		CredentialName:   in.CredentialName,
		Jurisdiction:     in.Jurisdiction,
		Status:           models.StatusPending,
		EvidenceCID:      cid,
		IssuedDate:       in.IssuedDate,
		ExpiryDate:       in.ExpiryDate,
		SubmittedAt:      now,
		UpdatedAt:        now,
	}
	if err := s.store.Create(ctx, cred); err != nil {
		s.recordFailure("storage")
		return "", dErrors.Wrap(err, dErrors.CodeStorage, "persist credential")
	}

	if s.metrics != nil {
		s.metrics.SubmissionsTotal.Inc()
	}
	s.emitAudit(ctx, cred, audit.ActionCredentialSubmitted, "")
	if s.logger != nil {
		s.logger.InfoContext(ctx, "credential submitted",
			"credential_id", cred.ID,
			"user_id", cred.UserID,
			"credential_type", cred.CredentialType,
		)
	}
	return cred.ID, nil
}

// anchorRecord is the canonical JSON document fingerprinted on chain when a
// credential is verified.
type anchorRecord struct {
	CredentialID   string `json:"credential_id"`
	UserID         string `json:"user_id"`
	CredentialType string `json:"credential_type"`
	VerifierID     string `json:"verifier_id"`
	EvidenceCID    string `json:"evidence_cid,omitempty"`
}

// Verify transitions a pending credential to verified. The transition is
// anchored before it is persisted; a verified credential also appends a
// credential_verified reputation event for its owner.
func (s *Service) Verify(ctx context.Context, id models.CredentialID, verifierID domain.UserID) error {
	if verifierID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "verifier_id is required")
	}

	cred, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !cred.Status.CanTransition(models.StatusVerified) {
		s.recordFailure("state_conflict")
		return dErrors.New(dErrors.CodeStateConflict, "credential is not pending")
	}

	payload, err := json.Marshal(anchorRecord{
		CredentialID:   cred.ID.String(),
		UserID:         cred.UserID.String(),
		CredentialType: cred.CredentialType,
		VerifierID:     verifierID.String(),
		EvidenceCID:    cred.EvidenceCID,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "marshal anchor record")
	}
	txID, err := s.anchorer.Submit(ctx, anchor.Submission{
		PayloadJSON: payload,
		Algorithm:   "sha256",
		Label:       "credential_verification",
		Size:        len(payload),
		Metadata:    map[string]string{"credential_type": cred.CredentialType},
	})
	if err != nil {
		s.recordFailure("anchor")
		return dErrors.Wrap(err, dErrors.CodeAnchorUnavailable, "verification was not recorded: anchoring failed")
	}

	from := cred.Status
	cred.Status = models.StatusVerified
	cred.AnchorTxID = txID
	cred.VerifierID = verifierID
	cred.UpdatedAt = s.now()
	if err := s.store.Update(ctx, cred, from); err != nil {
		if errors.Is(err, store.ErrStatusChanged) {
			s.recordFailure("state_conflict")
			return dErrors.New(dErrors.CodeStateConflict, "credential is not pending")
		}
		s.recordFailure("storage")
		return dErrors.Wrap(err, dErrors.CodeStorage, "persist verification")
	}

	// The credential is verified regardless of whether the reputation event
	// lands; an append failure is surfaced but does not roll the state back.
	_, err = s.events.Append(ctx, repmodels.AppendInput{
		UserID:       cred.UserID,
		Type:         repmodels.EventCredentialVerified,
		Rating:       5,
		EvidenceHash: cred.EvidenceCID,
		Metadata: map[string]string{
			"credential_id":   cred.ID.String(),
			"credential_type": cred.CredentialType,
		},
	})
	if err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "credential verified but reputation event failed",
			"credential_id", cred.ID, "error", err)
	}

	s.recordTransition(models.StatusVerified)
	s.emitAudit(ctx, cred, audit.ActionCredentialVerified, "")
	if s.logger != nil {
		s.logger.InfoContext(ctx, "credential verified",
			"credential_id", cred.ID,
			"verifier_id", verifierID,
			"anchor_tx", txID,
		)
	}
	return nil
}

// Reject transitions a pending credential to rejected.
func (s *Service) Reject(ctx context.Context, id models.CredentialID, reason string) error {
	return s.transition(ctx, id, models.StatusRejected, reason, audit.ActionCredentialRejected)
}

// Revoke transitions a verified credential to revoked.
func (s *Service) Revoke(ctx context.Context, id models.CredentialID, reason string) error {
	return s.transition(ctx, id, models.StatusRevoked, reason, audit.ActionCredentialRevoked)
}

func (s *Service) transition(ctx context.Context, id models.CredentialID, to models.Status, reason string, action audit.Action) error {
	cred, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !cred.Status.CanTransition(to) {
		s.recordFailure("state_conflict")
		return dErrors.New(dErrors.CodeStateConflict, "invalid credential transition")
	}

	from := cred.Status
	cred.Status = to
	cred.RejectionReason = reason
	cred.UpdatedAt = s.now()
	if err := s.store.Update(ctx, cred, from); err != nil {
		if errors.Is(err, store.ErrStatusChanged) {
			s.recordFailure("state_conflict")
			return dErrors.New(dErrors.CodeStateConflict, "invalid credential transition")
		}
		s.recordFailure("storage")
		return dErrors.Wrap(err, dErrors.CodeStorage, "persist transition")
	}

	s.recordTransition(to)
	s.emitAudit(ctx, cred, action, reason)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "credential transitioned",
			"credential_id", cred.ID,
			"status", cred.Status,
			"reason", reason,
		)
	}
	return nil
}

// CheckExpiry expires a verified credential whose expiry date has passed.
// Idempotent: expired, pending, and unexpired credentials are left untouched.
func (s *Service) CheckExpiry(ctx context.Context, id models.CredentialID, now time.Time) error {
	cred, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if cred.Status != models.StatusVerified || cred.ExpiryDate == nil || !now.After(*cred.ExpiryDate) {
		return nil
	}

	cred.Status = models.StatusExpired
	cred.UpdatedAt = s.now()
	if err := s.store.Update(ctx, cred, models.StatusVerified); err != nil {
		// A concurrent transition already moved the credential on; expiry is
		// idempotent, so a lost race is a no-op.
		if errors.Is(err, store.ErrStatusChanged) {
			return nil
		}
		s.recordFailure("storage")
		return dErrors.Wrap(err, dErrors.CodeStorage, "persist expiry")
	}

	s.recordTransition(models.StatusExpired)
	s.emitAudit(ctx, cred, audit.ActionCredentialExpired, "")
	if s.logger != nil {
		s.logger.InfoContext(ctx, "credential expired", "credential_id", cred.ID)
	}
	return nil
}

// Get returns a credential by ID.
func (s *Service) Get(ctx context.Context, id models.CredentialID) (models.Credential, error) {
	return s.store.Get(ctx, id)
}

// ListByUser returns the user's credentials newest-first.
func (s *Service) ListByUser(ctx context.Context, userID domain.UserID) ([]models.Credential, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) recordTransition(to models.Status) {
	if s.metrics != nil {
		s.metrics.RecordTransition(string(to))
	}
}

func (s *Service) recordFailure(reason string) {
	if s.metrics != nil {
		s.metrics.RecordFailure(reason)
	}
}

func (s *Service) emitAudit(ctx context.Context, cred models.Credential, action audit.Action, reason string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Timestamp: s.now(),
		UserID:    cred.UserID,
		Action:    action,
		Subject:   cred.ID.String(),
		Reason:    reason,
		AnchorTx:  cred.AnchorTxID,
	})
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err, "credential_id", cred.ID)
	}
}
