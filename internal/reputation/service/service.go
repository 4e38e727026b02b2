// Package service implements the event store: the only writer of the
// reputation log and the engine's single mutable shared resource.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"lexara/internal/anchor"
	"lexara/internal/audit"
	"lexara/internal/reputation/metrics"
	"lexara/internal/reputation/models"
	"lexara/internal/reputation/store"
	"lexara/pkg/domain"
	dErrors "lexara/pkg/domain-errors"
	keyedsync "lexara/pkg/platform/sync"
)

// ScoreInvalidator drops cached scores after a successful append.
type ScoreInvalidator interface {
	Invalidate(ctx context.Context, userID domain.UserID)
}

// Service is the event store. Appends are serialized per user: staleness
// between reading the log and writing to it would let concurrent appends
// mis-weight attestations that read the score mid-flight.
type Service struct {
	store    store.Store
	anchorer anchor.Client
	locks    *keyedsync.KeyedMutex
	scores   ScoreInvalidator
	auditor  audit.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithScoreInvalidator wires the score cache invalidation hook.
func WithScoreInvalidator(inv ScoreInvalidator) Option {
	return func(s *Service) {
		s.scores = inv
	}
}

// WithAuditor configures a best-effort audit publisher.
func WithAuditor(auditor audit.Publisher) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

// WithMetrics configures Prometheus metrics for the event store.
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

// New creates the event store service.
func New(st store.Store, anchorer anchor.Client, opts ...Option) *Service {
	s := &Service{
		store:    st,
		anchorer: anchorer,
		locks:    keyedsync.NewKeyedMutex(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// anchorPayload is the canonical JSON document fingerprinted on chain.
type anchorPayload struct {
	UserID       string  `json:"user_id"`
	EventType    string  `json:"event_type"`
	Rating       float64 `json:"rating"`
	ScoreChange  float64 `json:"score_change"`
	EvidenceHash string  `json:"evidence_hash,omitempty"`
}

// Append validates, anchors, and persists a new reputation event, returning
// its ID. Anchoring is a precondition: if it fails, nothing is persisted and
// the anchor error propagates. On success the user's cached score is
// invalidated before Append returns.
func (s *Service) Append(ctx context.Context, in models.AppendInput) (models.EventID, error) {
	start := s.now()

	if err := in.Validate(); err != nil {
		s.recordFailure("validation")
		return "", err
	}

	// Serialize read-then-write per user.
	key := in.UserID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	scoreChange := in.Type.ScoreChange(in.Rating, in.AttestationWeight)

	payload, err := json.Marshal(anchorPayload{
		UserID:       in.UserID.String(),
		EventType:    string(in.Type),
		Rating:       in.Rating,
		ScoreChange:  scoreChange,
		EvidenceHash: in.EvidenceHash,
	})
	if err != nil {
		s.recordFailure("internal")
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "marshal anchor payload")
	}

	txID, err := s.anchorer.Submit(ctx, anchor.Submission{
		PayloadJSON: payload,
		Algorithm:   "sha256",
		Label:       "reputation_event",
		Size:        len(payload),
		Metadata:    map[string]string{"event_type": string(in.Type)},
	})
	if err != nil {
		s.recordFailure("anchor")
		return "", dErrors.Wrap(err, dErrors.CodeAnchorUnavailable, "event was not recorded: anchoring failed")
	}

	event := models.Event{
		ID:           models.NewEventID(),
		UserID:       in.UserID,
		Type:         in.Type,
		GigID:        in.GigID,
		ReviewerID:   in.ReviewerID,
		ScoreChange:  scoreChange,
		Rating:       in.Rating,
		ReviewText:   in.ReviewText,
		EvidenceHash: in.EvidenceHash,
		AnchorTxID:   txID,
		Timestamp:    s.nextTimestamp(ctx, in.UserID),
		Metadata:     in.Metadata,
	}

	if err := s.store.Insert(ctx, event); err != nil {
		s.recordFailure("storage")
		return "", dErrors.Wrap(err, dErrors.CodeStorage, "persist event")
	}

	if s.scores != nil {
		s.scores.Invalidate(ctx, in.UserID)
		if s.metrics != nil {
			s.metrics.ScoreInvalidations.Inc()
		}
	}
	if s.metrics != nil {
		s.metrics.RecordAppend(string(in.Type))
		s.metrics.AppendDurationSecs.Observe(s.now().Sub(start).Seconds())
	}

	s.emitAudit(ctx, event)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "reputation event appended",
			"event_id", event.ID,
			"user_id", event.UserID,
			"event_type", event.Type,
			"score_change", event.ScoreChange,
			"anchor_tx", event.AnchorTxID,
		)
	}
	return event.ID, nil
}

// Query returns the user's events newest-first. Pure read, no side effects.
func (s *Service) Query(ctx context.Context, userID domain.UserID, filter models.Filter) ([]models.Event, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	start := s.now()
	events, err := s.store.ListByUser(ctx, userID, filter)
	if s.metrics != nil {
		s.metrics.QueryDurationSecs.Observe(s.now().Sub(start).Seconds())
	}
	return events, err
}

// nextTimestamp assigns a store-side timestamp strictly after the user's
// latest event. Caller holds the per-user lock.
func (s *Service) nextTimestamp(ctx context.Context, userID domain.UserID) time.Time {
	ts := s.now()
	latest, err := s.store.LatestTimestamp(ctx, userID)
	if err != nil {
		// Fall back to wall clock; ordering is still monotonic in practice.
		return ts
	}
	if !ts.After(latest) {
		ts = latest.Add(time.Microsecond)
	}
	return ts
}

func (s *Service) recordFailure(reason string) {
	if s.metrics != nil {
		s.metrics.RecordAppendFailure(reason)
	}
}

func (s *Service) emitAudit(ctx context.Context, event models.Event) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Timestamp: event.Timestamp,
		UserID:    event.UserID,
		Action:    audit.ActionEventAppended,
		Subject:   event.ID.String(),
		AnchorTx:  event.AnchorTxID,
	})
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err, "event_id", event.ID)
	}
}
