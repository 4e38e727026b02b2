// Package service implements the attestation engine. An attestation's
// influence on the subject's reputation is proportional to the attester's own
// standing: the attester's overall score sets a weight, clamped so nobody
// carries zero or runaway influence.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"lexara/internal/anchor"
	"lexara/internal/attestation/models"
	"lexara/internal/attestation/store"
	"lexara/internal/audit"
	repmodels "lexara/internal/reputation/models"
	"lexara/internal/reputation/score"
	"lexara/pkg/domain"
	dErrors "lexara/pkg/domain-errors"
)

// ScoreReader resolves a user's current reputation score.
type ScoreReader interface {
	Calculate(ctx context.Context, userID domain.UserID) (score.Score, error)
}

// EventAppender feeds attestation events into the reputation log.
type EventAppender interface {
	Append(ctx context.Context, in repmodels.AppendInput) (repmodels.EventID, error)
}

// DefaultPairLimit caps how many times one attester may endorse the same
// subject.
const DefaultPairLimit = 3

// Service is the attestation engine.
type Service struct {
	store     store.Store
	anchorer  anchor.Client
	scores    ScoreReader
	events    EventAppender
	auditor   audit.Publisher
	logger    *slog.Logger
	pairLimit int
	now       func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithAuditor configures a best-effort audit publisher.
func WithAuditor(auditor audit.Publisher) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

// WithLogger configures a logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPairLimit overrides the per-pair attestation cap. Zero disables it.
func WithPairLimit(limit int) Option {
	return func(s *Service) {
		s.pairLimit = limit
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates the attestation engine.
func New(st store.Store, anchorer anchor.Client, scores ScoreReader, events EventAppender, opts ...Option) *Service {
	s := &Service{
		store:     st,
		anchorer:  anchorer,
		scores:    scores,
		events:    events,
		pairLimit: DefaultPairLimit,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// anchorRecord is the canonical JSON document fingerprinted on chain.
type anchorRecord struct {
	AttestationID string  `json:"attestation_id"`
	SubjectID     string  `json:"subject_user_id"`
	AttesterID    string  `json:"attester_id"`
	Score         float64 `json:"score"`
	Weight        float64 `json:"weight"`
}

// Attest records a peer attestation: it weights the endorsement by the
// attester's current overall score, anchors it, persists it, and appends a
// peer_attestation_received event to the subject's reputation log.
func (s *Service) Attest(ctx context.Context, in models.AttestInput) (models.AttestationID, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	if s.pairLimit > 0 {
		count, err := s.store.CountByPair(ctx, in.SubjectID, in.AttesterID)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeStorage, "count prior attestations")
		}
		if count >= s.pairLimit {
			return "", dErrors.New(dErrors.CodeConflict,
				fmt.Sprintf("attester already made %d attestations about this user", count))
		}
	}

	attesterScore, err := s.scores.Calculate(ctx, in.AttesterID)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "resolve attester score")
	}
	weight := models.ClampWeight(attesterScore.Overall / 100)

	att := models.PeerAttestation{
		ID:              models.NewAttestationID(),
		SubjectID:       in.SubjectID,
		AttesterID:      in.AttesterID,
		AttestationType: in.AttestationType,
		Score:           in.Score,
		Text:            in.Text,
		Relationship:    in.Relationship,
		YearsKnown:      in.YearsKnown,
		Weight:          weight,
		CreatedAt:       s.now(),
	}

	payload, err := json.Marshal(anchorRecord{
		AttestationID: att.ID.String(),
		SubjectID:     att.SubjectID.String(),
		AttesterID:    att.AttesterID.String(),
		Score:         att.Score,
		Weight:        att.Weight,
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "marshal anchor record")
	}
	att.AnchorTxID, err = s.anchorer.Submit(ctx, anchor.Submission{
		PayloadJSON: payload,
		Algorithm:   "sha256",
		Label:       "peer_attestation",
		Size:        len(payload),
		Metadata:    map[string]string{"attestation_type": att.AttestationType},
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeAnchorUnavailable, "attestation was not recorded: anchoring failed")
	}

	if err := s.store.Insert(ctx, att); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeStorage, "persist attestation")
	}

	_, err = s.events.Append(ctx, repmodels.AppendInput{
		UserID:            att.SubjectID,
		Type:              repmodels.EventPeerAttestation,
		ReviewerID:        att.AttesterID.String(),
		Rating:            att.Score,
		AttestationWeight: att.Weight,
		Metadata:          map[string]string{"attestation_id": att.ID.String()},
	})
	if err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "attestation recorded but reputation event failed",
			"attestation_id", att.ID, "error", err)
	}

	s.emitAudit(ctx, att)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "peer attestation recorded",
			"attestation_id", att.ID,
			"subject_id", att.SubjectID,
			"attester_id", att.AttesterID,
			"weight", att.Weight,
		)
	}
	return att.ID, nil
}

// ListBySubject returns attestations made about the user, newest-first.
func (s *Service) ListBySubject(ctx context.Context, subjectID domain.UserID) ([]models.PeerAttestation, error) {
	if subjectID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "subject_user_id is required")
	}
	return s.store.ListBySubject(ctx, subjectID)
}

func (s *Service) emitAudit(ctx context.Context, att models.PeerAttestation) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Timestamp: att.CreatedAt,
		UserID:    att.SubjectID,
		Action:    audit.ActionAttestationRecorded,
		Subject:   att.ID.String(),
		AnchorTx:  att.AnchorTxID,
	})
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err, "attestation_id", att.ID)
	}
}
