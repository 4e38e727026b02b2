// Package badge derives a user's display badge set from their reputation
// score, event history, credentials, and membership data. Derivation is a
// pure function: no side effects, identical output for identical input. The
// derived set may be cached for display but the cache is never authoritative.
package badge

import (
	"fmt"
	"time"

	credmodels "lexara/internal/credential/models"
	repmodels "lexara/internal/reputation/models"
	"lexara/internal/reputation/score"
)

// Kind partitions badges by what earns them.
type Kind string

const (
	KindReputation   Kind = "reputation"
	KindAchievement  Kind = "achievement"
	KindQuality      Kind = "quality"
	KindVerification Kind = "verification"
	KindLoyalty      Kind = "loyalty"
)

// Rarity is a display hint.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Badge is a derived, display-only marker of standing.
type Badge struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"type"`
	Tier       string    `json:"tier,omitempty"`
	Rarity     Rarity    `json:"rarity,omitempty"`
	EarnedDate time.Time `json:"earned_date"`
}

// Input is everything badge derivation reads. Events are newest-first, as
// the event store returns them.
type Input struct {
	Score       score.Score
	Events      []repmodels.Event
	Credentials []credmodels.Credential

	// MedianResponse is an externally measured response-time metric; it is
	// not derivable from the event log. Zero means unknown.
	MedianResponse time.Duration

	// MemberSince drives loyalty badges. Zero disables them.
	MemberSince time.Time

	// Now stamps EarnedDate on the derived set.
	Now time.Time
}

// rule derives the badges of one kind.
type rule func(Input) []Badge

// rules is the full dispatch table. Every Kind has exactly one entry; adding
// a kind without a rule is caught by TestEveryKindHasARule.
var rules = map[Kind]rule{
	KindReputation:   deriveTier,
	KindAchievement:  deriveAchievements,
	KindQuality:      deriveQuality,
	KindVerification: deriveVerification,
	KindLoyalty:      deriveLoyalty,
}

// kindOrder fixes the output order.
var kindOrder = []Kind{KindReputation, KindAchievement, KindQuality, KindVerification, KindLoyalty}

// Derive computes the user's current badge set. Idempotent and side-effect
// free; calling it twice with the same input yields the same set.
func Derive(in Input) []Badge {
	var out []Badge
	for _, kind := range kindOrder {
		out = append(out, rules[kind](in)...)
	}
	return out
}

// tierThresholds maps minimum overall score to the tier badge, checked
// highest-first. Exactly one tier applies to any score.
var tierThresholds = []struct {
	min    float64
	tier   string
	rarity Rarity
}{
	{90, "master", RarityLegendary},
	{75, "expert", RarityEpic},
	{50, "proficient", RarityRare},
	{25, "competent", RarityUncommon},
	{0, "novice", RarityCommon},
}

func deriveTier(in Input) []Badge {
	for _, t := range tierThresholds {
		if in.Score.Overall >= t.min {
			return []Badge{{
				ID:         "tier_" + t.tier,
				Kind:       KindReputation,
				Tier:       t.tier,
				Rarity:     t.rarity,
				EarnedDate: in.Now,
			}}
		}
	}
	return nil
}

// achievementThresholds are completion-count milestones. Completions never
// decrease, so earned milestones are permanent.
var achievementThresholds = []struct {
	count  int
	rarity Rarity
}{
	{1, RarityCommon},
	{5, RarityCommon},
	{10, RarityUncommon},
	{25, RarityRare},
	{50, RarityEpic},
	{100, RarityLegendary},
}

func deriveAchievements(in Input) []Badge {
	var out []Badge
	for _, t := range achievementThresholds {
		if in.Score.TotalCompletions >= t.count {
			out = append(out, Badge{
				ID:         fmt.Sprintf("completions_%d", t.count),
				Kind:       KindAchievement,
				Rarity:     t.rarity,
				EarnedDate: in.Now,
			})
		}
	}
	return out
}

// quickResponderCutoff is the response-time bar for the quick_responder
// badge.
const quickResponderCutoff = time.Hour

func deriveQuality(in Input) []Badge {
	var out []Badge

	if fiveStarStreak(in.Events, 5) {
		out = append(out, Badge{ID: "five_star_streak", Kind: KindQuality, Rarity: RarityRare, EarnedDate: in.Now})
	}
	if in.Score.AverageRating >= 4.5 && countRated(in.Events) >= 10 {
		out = append(out, Badge{ID: "client_favorite", Kind: KindQuality, Rarity: RarityRare, EarnedDate: in.Now})
	}
	if hasConsecutiveFiveStars(in.Events, 10) {
		out = append(out, Badge{ID: "perfectionist", Kind: KindQuality, Rarity: RarityEpic, EarnedDate: in.Now})
	}
	if in.MedianResponse > 0 && in.MedianResponse <= quickResponderCutoff {
		out = append(out, Badge{ID: "quick_responder", Kind: KindQuality, Rarity: RarityUncommon, EarnedDate: in.Now})
	}
	return out
}

// badgedCredentialTypes maps verified credential types to their badge IDs.
var badgedCredentialTypes = map[string]string{
	credmodels.TypeIdentity:     "identity_verified",
	credmodels.TypeProfessional: "professional_verified",
	credmodels.TypeBarLicense:   "bar_license_verified",
}

func deriveVerification(in Input) []Badge {
	var out []Badge
	seen := make(map[string]bool)
	for _, cred := range in.Credentials {
		if cred.Status != credmodels.StatusVerified {
			continue
		}
		id, ok := badgedCredentialTypes[cred.CredentialType]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, Badge{ID: id, Kind: KindVerification, Rarity: RarityUncommon, EarnedDate: in.Now})
	}
	return out
}

func deriveLoyalty(in Input) []Badge {
	if in.MemberSince.IsZero() || in.Now.IsZero() {
		return nil
	}
	tenure := in.Now.Sub(in.MemberSince)
	var out []Badge
	if tenure >= 365*24*time.Hour {
		out = append(out, Badge{ID: "loyal_member", Kind: KindLoyalty, Rarity: RarityCommon, EarnedDate: in.Now})
	}
	if tenure >= 3*365*24*time.Hour {
		out = append(out, Badge{ID: "veteran_member", Kind: KindLoyalty, Rarity: RarityRare, EarnedDate: in.Now})
	}
	return out
}

// fiveStarStreak reports whether the n most recent rated events all carry a
// perfect rating. Events are newest-first; unrated events are skipped.
func fiveStarStreak(events []repmodels.Event, n int) bool {
	seen := 0
	for _, e := range events {
		if !e.HasRating() {
			continue
		}
		if e.Rating != 5 {
			return false
		}
		seen++
		if seen == n {
			return true
		}
	}
	return false
}

// hasConsecutiveFiveStars reports whether any run of n consecutive rated
// events in the history all carry a perfect rating.
func hasConsecutiveFiveStars(events []repmodels.Event, n int) bool {
	run := 0
	for _, e := range events {
		if !e.HasRating() {
			continue
		}
		if e.Rating == 5 {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

func countRated(events []repmodels.Event) int {
	count := 0
	for _, e := range events {
		if e.HasRating() {
			count++
		}
	}
	return count
}
