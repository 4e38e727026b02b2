package badge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	credmodels "lexara/internal/credential/models"
	repmodels "lexara/internal/reputation/models"
	"lexara/internal/reputation/score"
)

var now = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func ratedEvents(ratings ...float64) []repmodels.Event {
	events := make([]repmodels.Event, len(ratings))
	for i, r := range ratings {
		events[i] = repmodels.Event{Type: repmodels.EventReviewReceived, Rating: r}
	}
	return events
}

func badgeIDs(badges []Badge) []string {
	ids := make([]string, len(badges))
	for i, b := range badges {
		ids[i] = b.ID
	}
	return ids
}

func tierOf(t *testing.T, badges []Badge) string {
	t.Helper()
	var tiers []string
	for _, b := range badges {
		if b.Kind == KindReputation {
			tiers = append(tiers, b.Tier)
		}
	}
	require.Len(t, tiers, 1, "exactly one tier badge")
	return tiers[0]
}

func TestTierThresholds(t *testing.T) {
	cases := []struct {
		overall float64
		tier    string
	}{
		{0, "novice"},
		{24.999, "novice"},
		{25, "competent"},
		{49.999, "competent"},
		{50, "proficient"},
		{74.999, "proficient"},
		{75, "expert"},
		{89.999, "expert"},
		{90, "master"},
		{100, "master"},
	}
	for _, tc := range cases {
		badges := Derive(Input{Score: score.Score{Overall: tc.overall}, Now: now})
		assert.Equalf(t, tc.tier, tierOf(t, badges), "overall=%v", tc.overall)
	}
}

func TestAchievementMonotonicity(t *testing.T) {
	counts := []int{0, 1, 4, 5, 10, 25, 50, 99, 100, 250}
	var prev map[string]bool
	for _, c := range counts {
		badges := Derive(Input{Score: score.Score{TotalCompletions: c}, Now: now})
		current := make(map[string]bool)
		for _, b := range badges {
			if b.Kind == KindAchievement {
				current[b.ID] = true
			}
		}
		for id := range prev {
			assert.Truef(t, current[id], "badge %s lost between counts", id)
		}
		prev = current
	}
	assert.Len(t, prev, 6, "all milestones at 250 completions")
}

func TestFiveStarStreak(t *testing.T) {
	badges := Derive(Input{Events: ratedEvents(5, 5, 5, 5, 5), Now: now})
	assert.Contains(t, badgeIDs(badges), "five_star_streak")

	// A recent 4-star breaks the streak.
	badges = Derive(Input{Events: ratedEvents(5, 4, 5, 5, 5, 5), Now: now})
	assert.NotContains(t, badgeIDs(badges), "five_star_streak")

	// Unrated events in between do not break it.
	events := []repmodels.Event{
		{Type: repmodels.EventReviewReceived, Rating: 5},
		{Type: repmodels.EventGigCompleted},
		{Type: repmodels.EventReviewReceived, Rating: 5},
		{Type: repmodels.EventReviewReceived, Rating: 5},
		{Type: repmodels.EventReviewReceived, Rating: 5},
		{Type: repmodels.EventReviewReceived, Rating: 5},
	}
	badges = Derive(Input{Events: events, Now: now})
	assert.Contains(t, badgeIDs(badges), "five_star_streak")

	// Fewer than five rated events is never a streak.
	badges = Derive(Input{Events: ratedEvents(5, 5, 5, 5), Now: now})
	assert.NotContains(t, badgeIDs(badges), "five_star_streak")
}

func TestClientFavorite(t *testing.T) {
	ratings := make([]float64, 10)
	for i := range ratings {
		ratings[i] = 5
	}
	in := Input{
		Score:  score.Score{AverageRating: 4.6},
		Events: ratedEvents(ratings...),
		Now:    now,
	}
	assert.Contains(t, badgeIDs(Derive(in)), "client_favorite")

	// High average over too few ratings does not qualify.
	in.Events = ratedEvents(5, 5, 5)
	assert.NotContains(t, badgeIDs(Derive(in)), "client_favorite")

	in.Events = ratedEvents(ratings...)
	in.Score.AverageRating = 4.4
	assert.NotContains(t, badgeIDs(Derive(in)), "client_favorite")
}

func TestPerfectionist(t *testing.T) {
	// Ten consecutive perfect ratings buried in older history.
	ratings := append([]float64{4, 3}, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5)
	badges := Derive(Input{Events: ratedEvents(ratings...), Now: now})
	assert.Contains(t, badgeIDs(badges), "perfectionist")

	// A break in the run resets it.
	ratings = []float64{5, 5, 5, 5, 5, 4, 5, 5, 5, 5, 5}
	badges = Derive(Input{Events: ratedEvents(ratings...), Now: now})
	assert.NotContains(t, badgeIDs(badges), "perfectionist")
}

func TestQuickResponder(t *testing.T) {
	in := Input{MedianResponse: 20 * time.Minute, Now: now}
	assert.Contains(t, badgeIDs(Derive(in)), "quick_responder")

	in.MedianResponse = 3 * time.Hour
	assert.NotContains(t, badgeIDs(Derive(in)), "quick_responder")

	// Unknown response time never earns the badge.
	in.MedianResponse = 0
	assert.NotContains(t, badgeIDs(Derive(in)), "quick_responder")
}

func TestVerificationBadges(t *testing.T) {
	creds := []credmodels.Credential{
		{CredentialType: credmodels.TypeBarLicense, Status: credmodels.StatusVerified},
		{CredentialType: credmodels.TypeIdentity, Status: credmodels.StatusPending},
		{CredentialType: credmodels.TypeProfessional, Status: credmodels.StatusRevoked},
		{CredentialType: "notary", Status: credmodels.StatusVerified},
	}
	ids := badgeIDs(Derive(Input{Credentials: creds, Now: now}))
	assert.Contains(t, ids, "bar_license_verified")
	assert.NotContains(t, ids, "identity_verified", "pending credentials earn nothing")
	assert.NotContains(t, ids, "professional_verified", "revoked credentials earn nothing")
}

func TestVerificationBadgeDeduplicated(t *testing.T) {
	creds := []credmodels.Credential{
		{CredentialType: credmodels.TypeBarLicense, Status: credmodels.StatusVerified},
		{CredentialType: credmodels.TypeBarLicense, Status: credmodels.StatusVerified},
	}
	ids := badgeIDs(Derive(Input{Credentials: creds, Now: now}))
	count := 0
	for _, id := range ids {
		if id == "bar_license_verified" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestLoyaltyBadges(t *testing.T) {
	ids := badgeIDs(Derive(Input{MemberSince: now.AddDate(-4, 0, 0), Now: now}))
	assert.Contains(t, ids, "loyal_member")
	assert.Contains(t, ids, "veteran_member")

	ids = badgeIDs(Derive(Input{MemberSince: now.AddDate(0, -6, 0), Now: now}))
	assert.NotContains(t, ids, "loyal_member")

	// Unknown membership date disables loyalty badges.
	ids = badgeIDs(Derive(Input{Now: now}))
	assert.NotContains(t, ids, "loyal_member")
}

func TestDeriveIsIdempotent(t *testing.T) {
	in := Input{
		Score:  score.Score{Overall: 80, TotalCompletions: 12, AverageRating: 4.8},
		Events: ratedEvents(5, 5, 5, 5, 5, 5, 5, 5, 5, 5),
		Credentials: []credmodels.Credential{
			{CredentialType: credmodels.TypeIdentity, Status: credmodels.StatusVerified},
		},
		MemberSince: now.AddDate(-2, 0, 0),
		Now:         now,
	}
	assert.Equal(t, Derive(in), Derive(in))
}

func TestEveryKindHasARule(t *testing.T) {
	for _, kind := range kindOrder {
		_, ok := rules[kind]
		assert.Truef(t, ok, "kind %s has no rule", kind)
	}
	assert.Len(t, rules, len(kindOrder))
}
