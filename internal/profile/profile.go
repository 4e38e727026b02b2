// Package profile composes the read side: a user's trust profile assembled
// from the score calculator, badge deriver, credential list, and event log.
// Every collaborator is a port, and every fetch degrades gracefully: a score
// failure falls back to a flagged zero score, list failures render empty
// lists. The profile page never blocks on a single sick dependency.
package profile

import (
	"context"
	"log/slog"
	"time"

	"lexara/internal/badge"
	credmodels "lexara/internal/credential/models"
	repmodels "lexara/internal/reputation/models"
	"lexara/internal/reputation/score"
	"lexara/pkg/domain"
	dErrors "lexara/pkg/domain-errors"
)

// ScoreReader resolves a user's current reputation score.
type ScoreReader interface {
	Calculate(ctx context.Context, userID domain.UserID) (score.Score, error)
}

// EventReader lists a user's reputation events.
type EventReader interface {
	Query(ctx context.Context, userID domain.UserID, filter repmodels.Filter) ([]repmodels.Event, error)
}

// CredentialReader lists a user's credentials.
type CredentialReader interface {
	ListByUser(ctx context.Context, userID domain.UserID) ([]credmodels.Credential, error)
}

// recentEventLimit bounds the events embedded in a profile.
const recentEventLimit = 20

// Profile is the assembled trust profile for display.
type Profile struct {
	UserID           domain.UserID           `json:"user_id"`
	Score            score.Score             `json:"score"`
	ScoreUnavailable bool                    `json:"score_unavailable,omitempty"`
	Badges           []badge.Badge           `json:"badges"`
	Credentials      []credmodels.Credential `json:"credentials"`
	RecentEvents     []repmodels.Event       `json:"recent_events"`
	GeneratedAt      time.Time               `json:"generated_at"`
}

// Service assembles trust profiles.
type Service struct {
	scores      ScoreReader
	events      EventReader
	credentials CredentialReader
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures the Service.
type Option func(*Service)

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

// New creates the profile service.
func New(scores ScoreReader, events EventReader, credentials CredentialReader, opts ...Option) *Service {
	s := &Service{
		scores:      scores,
		events:      events,
		credentials: credentials,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get assembles the user's trust profile. Collaborator failures degrade the
// profile instead of failing it.
func (s *Service) Get(ctx context.Context, userID domain.UserID) (Profile, error) {
	if userID.IsNil() {
		return Profile{}, dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	now := s.now()
	p := Profile{UserID: userID, GeneratedAt: now}

	sc, err := s.scores.Calculate(ctx, userID)
	if err != nil {
		p.ScoreUnavailable = true
		if s.logger != nil {
			s.logger.WarnContext(ctx, "score unavailable for profile", "user_id", userID, "error", err)
		}
	} else {
		p.Score = sc
	}

	// Badge rules look at the whole history (streaks, rating counts), so the
	// query is unfiltered and only the displayed events are truncated.
	events, err := s.events.Query(ctx, userID, repmodels.Filter{})
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "events unavailable for profile", "user_id", userID, "error", err)
		}
		events = nil
	}
	p.RecentEvents = events
	if len(p.RecentEvents) > recentEventLimit {
		p.RecentEvents = p.RecentEvents[:recentEventLimit]
	}

	creds, err := s.credentials.ListByUser(ctx, userID)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "credentials unavailable for profile", "user_id", userID, "error", err)
		}
		creds = nil
	}
	p.Credentials = creds

	if !p.ScoreUnavailable {
		p.Badges = badge.Derive(badge.Input{
			Score:       p.Score,
			Events:      events,
			Credentials: p.Credentials,
			Now:         now,
		})
	}
	return p, nil
}

// Badges derives the user's current badge set from a full event history read.
func (s *Service) Badges(ctx context.Context, userID domain.UserID) ([]badge.Badge, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "user_id is required")
	}

	sc, err := s.scores.Calculate(ctx, userID)
	if err != nil {
		return nil, err
	}
	events, err := s.events.Query(ctx, userID, repmodels.Filter{})
	if err != nil {
		return nil, err
	}
	creds, err := s.credentials.ListByUser(ctx, userID)
	if err != nil {
		creds = nil
	}
	return badge.Derive(badge.Input{
		Score:       sc,
		Events:      events,
		Credentials: creds,
		Now:         s.now(),
	}), nil
}
