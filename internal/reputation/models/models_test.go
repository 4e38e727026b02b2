package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexara/pkg/domain"
	dErrors "lexara/pkg/domain-errors"
)

func TestParseEventType(t *testing.T) {
	for _, raw := range []string{
		"gig_completed", "legal_case_completed", "property_approved",
		"dispute_resolved", "credential_verified", "peer_attestation_received",
		"review_received",
	} {
		parsed, err := ParseEventType(raw)
		require.NoError(t, err, raw)
		assert.True(t, parsed.Known())
	}

	_, err := ParseEventType("account_created")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestScoreChangeRuleTable(t *testing.T) {
	cases := []struct {
		eventType EventType
		rating    float64
		want      float64
	}{
		{EventGigCompleted, 5, 3.0},
		{EventLegalCaseCompleted, 5, 5.0},
		{EventPropertyApproved, 5, 4.0},
		{EventDisputeResolved, 5, 6.0},
		{EventCredentialVerified, 5, 2.0},
		{EventReviewReceived, 5, 2.5},
		{EventGigCompleted, 2.5, 1.5},
		{EventReviewReceived, 3, 1.5},
		{EventDisputeResolved, 0, 0},
		// 2.5 * 3.3 / 5 = 1.65
		{EventReviewReceived, 3.3, 1.65},
	}
	for _, tc := range cases {
		got := tc.eventType.ScoreChange(tc.rating, 0)
		assert.InDelta(t, tc.want, got, 1e-9, "%s rating=%v", tc.eventType, tc.rating)
	}
}

func TestScoreChangeAttestationUsesWeight(t *testing.T) {
	// score=5, weight=0.8 -> 5 * 0.8 * 0.5 = 2.0
	assert.InDelta(t, 2.0, EventPeerAttestation.ScoreChange(5, 0.8), 1e-9)
	// score=4, weight=2.0 -> 4.0
	assert.InDelta(t, 4.0, EventPeerAttestation.ScoreChange(4, 2.0), 1e-9)
	// rounding to 2 decimals: 3.7 * 0.33 * 0.5 = 0.6105 -> 0.61
	assert.InDelta(t, 0.61, EventPeerAttestation.ScoreChange(3.7, 0.33), 1e-9)
}

func TestAppendInputValidate(t *testing.T) {
	user := domain.NewUserID()

	t.Run("valid input passes", func(t *testing.T) {
		in := AppendInput{UserID: user, Type: EventGigCompleted, Rating: 5}
		assert.NoError(t, in.Validate())
	})

	t.Run("missing user rejected", func(t *testing.T) {
		in := AppendInput{Type: EventGigCompleted, Rating: 5}
		assert.True(t, dErrors.HasCode(in.Validate(), dErrors.CodeValidation))
	})

	t.Run("rating bounds enforced", func(t *testing.T) {
		for _, rating := range []float64{-0.1, 5.01, 100} {
			in := AppendInput{UserID: user, Type: EventReviewReceived, Rating: rating}
			assert.Error(t, in.Validate(), "rating %v", rating)
		}
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		in := AppendInput{UserID: user, Type: "mystery", Rating: 3}
		assert.True(t, dErrors.HasCode(in.Validate(), dErrors.CodeValidation))
	})

	t.Run("attestation requires weight in range", func(t *testing.T) {
		in := AppendInput{UserID: user, Type: EventPeerAttestation, Rating: 5}
		assert.Error(t, in.Validate(), "zero weight out of range")

		in.AttestationWeight = 0.1
		assert.NoError(t, in.Validate())

		in.AttestationWeight = 2.5
		assert.Error(t, in.Validate())
	})

	t.Run("weight forbidden outside attestations", func(t *testing.T) {
		in := AppendInput{UserID: user, Type: EventGigCompleted, Rating: 5, AttestationWeight: 1}
		assert.Error(t, in.Validate())
	})
}

func TestFilterMatches(t *testing.T) {
	e := Event{Type: EventGigCompleted}

	assert.True(t, Filter{}.Matches(e))
	assert.True(t, Filter{Types: []EventType{EventGigCompleted, EventReviewReceived}}.Matches(e))
	assert.False(t, Filter{Types: []EventType{EventDisputeResolved}}.Matches(e))
}
