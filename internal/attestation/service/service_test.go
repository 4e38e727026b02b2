package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexara/internal/anchor"
	"lexara/internal/attestation/models"
	"lexara/internal/attestation/store"
	repmodels "lexara/internal/reputation/models"
	"lexara/internal/reputation/score"
	repservice "lexara/internal/reputation/service"
	repstore "lexara/internal/reputation/store"
	"lexara/pkg/domain"
	dErrors "lexara/pkg/domain-errors"
)

// stubScores returns a fixed overall score for every user.
type stubScores struct {
	overall float64
}

func (s *stubScores) Calculate(_ context.Context, _ domain.UserID) (score.Score, error) {
	return score.Score{Overall: s.overall}, nil
}

type fixture struct {
	svc    *Service
	atts   *store.InMemoryStore
	events *repstore.InMemoryStore
	scores *stubScores
}

func newFixture(t *testing.T, attesterOverall float64) *fixture {
	t.Helper()
	atts := store.NewInMemoryStore()
	events := repstore.NewInMemoryStore()
	fake := anchor.NewFake()
	scores := &stubScores{overall: attesterOverall}
	appender := repservice.New(events, fake)
	return &fixture{
		svc:    New(atts, fake, scores, appender),
		atts:   atts,
		events: events,
		scores: scores,
	}
}

func validInput(subject, attester domain.UserID) models.AttestInput {
	return models.AttestInput{
		SubjectID:       subject,
		AttesterID:      attester,
		AttestationType: "professional_competence",
		Score:           5,
		Text:            "Handled our contract review flawlessly.",
		Relationship:    "opposing_counsel",
		YearsKnown:      4,
	}
}

func TestAttestEndToEnd(t *testing.T) {
	f := newFixture(t, 80)
	subject := domain.NewUserID()
	attester := domain.NewUserID()
	ctx := context.Background()

	id, err := f.svc.Attest(ctx, validInput(subject, attester))
	require.NoError(t, err)

	atts, err := f.svc.ListBySubject(ctx, subject)
	require.NoError(t, err)
	require.Len(t, atts, 1)
	assert.Equal(t, id, atts[0].ID)
	assert.InDelta(t, 0.8, atts[0].Weight, 1e-9)
	assert.NotEmpty(t, atts[0].AnchorTxID)

	events, err := f.events.ListByUser(ctx, subject, repmodels.Filter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, repmodels.EventPeerAttestation, events[0].Type)
	// score 5 at weight 0.8: 5 * 0.8 * 0.5
	assert.InDelta(t, 2.0, events[0].ScoreChange, 1e-9)
}

func TestSelfAttestationForbidden(t *testing.T) {
	f := newFixture(t, 80)
	user := domain.NewUserID()

	_, err := f.svc.Attest(context.Background(), validInput(user, user))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

	atts, _ := f.svc.ListBySubject(context.Background(), user)
	assert.Empty(t, atts)
}

func TestWeightClampBounds(t *testing.T) {
	cases := []struct {
		overall float64
		weight  float64
	}{
		{-10, 0.1},
		{0, 0.1},
		{5, 0.1},
		{50, 0.5},
		{100, 1.0},
		{1000, 2.0},
	}
	for _, tc := range cases {
		f := newFixture(t, tc.overall)
		subject := domain.NewUserID()

		_, err := f.svc.Attest(context.Background(), validInput(subject, domain.NewUserID()))
		require.NoError(t, err)

		atts, err := f.svc.ListBySubject(context.Background(), subject)
		require.NoError(t, err)
		require.Len(t, atts, 1)
		assert.InDeltaf(t, tc.weight, atts[0].Weight, 1e-9, "overall=%v", tc.overall)
	}
}

func TestAnchorFailureNothingPersisted(t *testing.T) {
	atts := store.NewInMemoryStore()
	events := repstore.NewInMemoryStore()
	fake := anchor.NewFake()
	fake.FailWith(anchor.ErrUnavailable)
	svc := New(atts, fake, &stubScores{overall: 80}, repservice.New(events, fake))
	subject := domain.NewUserID()

	_, err := svc.Attest(context.Background(), validInput(subject, domain.NewUserID()))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAnchorUnavailable))

	listed, err := atts.ListBySubject(context.Background(), subject)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestPairLimit(t *testing.T) {
	f := newFixture(t, 80)
	subject := domain.NewUserID()
	attester := domain.NewUserID()
	ctx := context.Background()

	for range DefaultPairLimit {
		_, err := f.svc.Attest(ctx, validInput(subject, attester))
		require.NoError(t, err)
	}

	_, err := f.svc.Attest(ctx, validInput(subject, attester))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	// A different attester is unaffected.
	_, err = f.svc.Attest(ctx, validInput(subject, domain.NewUserID()))
	assert.NoError(t, err)
}

func TestValidation(t *testing.T) {
	f := newFixture(t, 80)
	subject := domain.NewUserID()
	attester := domain.NewUserID()

	in := validInput(subject, attester)
	in.Score = 6
	_, err := f.svc.Attest(context.Background(), in)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	in = validInput(subject, attester)
	in.AttestationType = " "
	_, err = f.svc.Attest(context.Background(), in)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
