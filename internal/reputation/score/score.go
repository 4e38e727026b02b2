// Package score derives a user's reputation score from the event log.
//
// The score is never stored as authoritative state: it is a pure function of
// the events and is recomputed on every read (optionally through a cache that
// the event store invalidates on append).
package score

import (
	"context"
	"log/slog"
	"math"

	"lexara/internal/reputation/models"
	"lexara/pkg/domain"
)

// Score is the derived reputation of a user.
type Score struct {
	Overall           float64 `json:"overall"`
	LegalReview       float64 `json:"legal_review"`
	PropertyApproval  float64 `json:"property_approval"`
	DisputeResolution float64 `json:"dispute_resolution"`
	General           float64 `json:"general"`
	TotalCompletions  int     `json:"total_completions"`
	AverageRating     float64 `json:"average_rating"`
}

// Weights holds the constants of the overall-score formula. The upstream
// combination formula is opaque; this deterministic substitute keeps every
// constant tunable. Category scores are capped at 100 before weighting, and
// low-activity users are shrunk toward the baseline:
//
//	overall = (raw*n + baseline*k) / (n + k), n = total completions.
type Weights struct {
	LegalReview       float64
	PropertyApproval  float64
	DisputeResolution float64
	General           float64
	Baseline          float64
	ShrinkageK        int
}

// DefaultWeights returns the standard formula constants.
func DefaultWeights() Weights {
	return Weights{
		LegalReview:       0.3,
		PropertyApproval:  0.3,
		DisputeResolution: 0.2,
		General:           0.2,
		Baseline:          50,
		ShrinkageK:        5,
	}
}

const categoryCap = 100

// Compute derives the score from an event set. It is pure and deterministic:
// the same events always produce the same score, regardless of order.
func Compute(events []models.Event, w Weights) Score {
	var (
		legal, property, dispute, general float64
		ratingSum                         float64
		ratingCount                       int
		completions                       int
	)

	for _, e := range events {
		switch e.Type {
		case models.EventLegalCaseCompleted:
			legal += e.ScoreChange
		case models.EventPropertyApproved:
			property += e.ScoreChange
		case models.EventDisputeResolved:
			dispute += e.ScoreChange
		default:
			general += e.ScoreChange
		}
		if e.HasRating() {
			ratingSum += e.Rating
			ratingCount++
		}
		if e.Type.IsCompletion() {
			completions++
		}
	}

	legal = math.Min(categoryCap, legal)
	property = math.Min(categoryCap, property)
	dispute = math.Min(categoryCap, dispute)
	general = math.Min(categoryCap, general)

	raw := w.LegalReview*legal + w.PropertyApproval*property +
		w.DisputeResolution*dispute + w.General*general

	// Confidence shrinkage: sparse histories are pulled toward the baseline
	// so one lucky event cannot claim an expert score.
	n := float64(completions)
	k := float64(w.ShrinkageK)
	overall := raw
	if n+k > 0 {
		overall = (raw*n + w.Baseline*k) / (n + k)
	}

	avgRating := 0.0
	if ratingCount > 0 {
		avgRating = ratingSum / float64(ratingCount)
	}

	return Score{
		Overall:           round2(overall),
		LegalReview:       round2(legal),
		PropertyApproval:  round2(property),
		DisputeResolution: round2(dispute),
		General:           round2(general),
		TotalCompletions:  completions,
		AverageRating:     round2(avgRating),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// EventSource is the read side of the event log needed for calculation.
type EventSource interface {
	ListByUser(ctx context.Context, userID domain.UserID, filter models.Filter) ([]models.Event, error)
}

// Calculator computes scores on demand, reading through an optional cache.
type Calculator struct {
	events  EventSource
	cache   Cache
	weights Weights
	logger  *slog.Logger
}

// Option configures the Calculator.
type Option func(*Calculator)

// WithCache sets the score cache. Without one every read recomputes.
func WithCache(cache Cache) Option {
	return func(c *Calculator) {
		c.cache = cache
	}
}

// WithWeights overrides the formula constants.
func WithWeights(w Weights) Option {
	return func(c *Calculator) {
		c.weights = w
	}
}

// WithLogger sets the logger for the calculator.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Calculator) {
		c.logger = logger
	}
}

// NewCalculator creates a score calculator over the given event source.
func NewCalculator(events EventSource, opts ...Option) *Calculator {
	c := &Calculator{
		events:  events,
		weights: DefaultWeights(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate returns the user's current score. Cache failures are logged and
// degrade to recomputation; they never fail the read.
func (c *Calculator) Calculate(ctx context.Context, userID domain.UserID) (Score, error) {
	if c.cache != nil {
		cached, ok, err := c.cache.Get(ctx, userID)
		if err != nil && c.logger != nil {
			c.logger.Warn("score cache read failed", "error", err, "user_id", userID)
		}
		if ok {
			return cached, nil
		}
	}

	events, err := c.events.ListByUser(ctx, userID, models.Filter{})
	if err != nil {
		return Score{}, err
	}
	s := Compute(events, c.weights)

	if c.cache != nil {
		if err := c.cache.Set(ctx, userID, s); err != nil && c.logger != nil {
			c.logger.Warn("score cache write failed", "error", err, "user_id", userID)
		}
	}
	return s, nil
}

// Invalidate drops any cached score for the user. The event store calls this
// synchronously after every append.
func (c *Calculator) Invalidate(ctx context.Context, userID domain.UserID) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Invalidate(ctx, userID); err != nil && c.logger != nil {
		c.logger.Warn("score cache invalidation failed", "error", err, "user_id", userID)
	}
}
