package score

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexara/internal/reputation/models"
	"lexara/pkg/domain"
)

func event(t models.EventType, rating float64) models.Event {
	weight := 0.0
	if t == models.EventPeerAttestation {
		weight = 1.0
	}
	return models.Event{
		ID:          models.NewEventID(),
		Type:        t,
		Rating:      rating,
		ScoreChange: t.ScoreChange(rating, weight),
		Timestamp:   time.Now().UTC(),
	}
}

func TestComputeBaselineAtZeroActivity(t *testing.T) {
	s := Compute(nil, DefaultWeights())
	assert.InDelta(t, 50.0, s.Overall, 1e-9, "no history means exactly the neutral baseline")
	assert.Equal(t, 0, s.TotalCompletions)
	assert.Zero(t, s.AverageRating)
}

func TestComputeBaselineIgnoresNonCompletionEvents(t *testing.T) {
	// Reviews and attestations raise category scores but not completions, so
	// shrinkage keeps the overall pinned at the baseline while n stays 0.
	events := []models.Event{
		event(models.EventReviewReceived, 5),
		event(models.EventPeerAttestation, 4),
	}
	s := Compute(events, DefaultWeights())

	assert.Equal(t, 0, s.TotalCompletions)
	assert.InDelta(t, 50.0, s.Overall, 1e-9)
	assert.Greater(t, s.General, 0.0)
}

func TestComputeShrinkageNumericExample(t *testing.T) {
	// One 5-star review (score_change 2.5) plus one unrated completion gives
	// n=1: overall = (raw*1 + 50*5) / 6 with raw = 0.2 * 2.5 = 0.5.
	events := []models.Event{
		event(models.EventReviewReceived, 5),
		event(models.EventGigCompleted, 0),
	}
	s := Compute(events, DefaultWeights())

	require.Equal(t, 1, s.TotalCompletions)
	want := (0.5*1 + 50*5) / 6
	assert.InDelta(t, want, s.Overall, 0.005)
}

func TestComputeCategoryBuckets(t *testing.T) {
	events := []models.Event{
		event(models.EventLegalCaseCompleted, 5),  // 5.0 -> legal
		event(models.EventPropertyApproved, 5),    // 4.0 -> property
		event(models.EventDisputeResolved, 5),     // 6.0 -> dispute
		event(models.EventGigCompleted, 5),        // 3.0 -> general
		event(models.EventCredentialVerified, 5),  // 2.0 -> general
		event(models.EventReviewReceived, 5),      // 2.5 -> general
		event(models.EventPeerAttestation, 5),     // 2.5 -> general (weight 1)
	}
	s := Compute(events, DefaultWeights())

	assert.InDelta(t, 5.0, s.LegalReview, 1e-9)
	assert.InDelta(t, 4.0, s.PropertyApproval, 1e-9)
	assert.InDelta(t, 6.0, s.DisputeResolution, 1e-9)
	assert.InDelta(t, 10.0, s.General, 1e-9)
	assert.Equal(t, 3, s.TotalCompletions)
	assert.InDelta(t, 5.0, s.AverageRating, 1e-9)
}

func TestComputeCategoryCapAt100(t *testing.T) {
	var events []models.Event
	for range 50 {
		events = append(events, event(models.EventDisputeResolved, 5)) // 6.0 each
	}
	s := Compute(events, DefaultWeights())

	assert.InDelta(t, 100.0, s.DisputeResolution, 1e-9, "category score is capped")
}

func TestComputeDeterministicAndOrderIndependent(t *testing.T) {
	events := []models.Event{
		event(models.EventGigCompleted, 5),
		event(models.EventLegalCaseCompleted, 4),
		event(models.EventReviewReceived, 3),
		event(models.EventDisputeResolved, 5),
		event(models.EventPropertyApproved, 2),
	}

	first := Compute(events, DefaultWeights())
	for i := 0; i < 10; i++ {
		shuffled := make([]models.Event, len(events))
		copy(shuffled, events)
		rand.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, first, Compute(shuffled, DefaultWeights()))
	}
}

func TestComputeAverageRatingSkipsUnrated(t *testing.T) {
	events := []models.Event{
		event(models.EventGigCompleted, 5),
		event(models.EventGigCompleted, 0), // unrated
		event(models.EventReviewReceived, 4),
	}
	s := Compute(events, DefaultWeights())
	assert.InDelta(t, 4.5, s.AverageRating, 1e-9)
}

type staticEvents struct {
	events []models.Event
	calls  int
}

func (s *staticEvents) ListByUser(context.Context, domain.UserID, models.Filter) ([]models.Event, error) {
	s.calls++
	return s.events, nil
}

func TestCalculatorReadsThroughCache(t *testing.T) {
	source := &staticEvents{events: []models.Event{event(models.EventGigCompleted, 5)}}
	calc := NewCalculator(source, WithCache(NewMemoryCache()))
	user := domain.NewUserID()
	ctx := context.Background()

	first, err := calc.Calculate(ctx, user)
	require.NoError(t, err)
	second, err := calc.Calculate(ctx, user)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, source.calls, "second read served from cache")

	calc.Invalidate(ctx, user)
	_, err = calc.Calculate(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls, "invalidation forces recomputation")
}
