// Package matcher provides the pure preference-to-event match scorer.
//
// The scorer is deterministic and side-effect-free: it reads only its two
// inputs, performs no I/O, and never fails. Missing or malformed optional
// fields degrade to the documented neutral or zero scores instead of
// producing errors, so it is safe to call concurrently from any number of
// goroutines without coordination.
package matcher

import (
	"github.com/marqueeapp/marquee/internal/event"
	"github.com/marqueeapp/marquee/internal/geo"
	"github.com/marqueeapp/marquee/internal/preference"
)

// Per-dimension score caps. The five caps sum to 100, so a total match
// score always falls within [0, 100].
const (
	MaxCategoryScore = 30.0
	MaxGenreScore    = 25.0
	MaxPriceScore    = 20.0
	MaxDayScore      = 15.0
	MaxDistanceScore = 10.0
)

// Neutral scores assigned when a dimension cannot be evaluated. Each is
// roughly half its cap so missing data neither helps nor hurts ranking.
const (
	NeutralGenreScore    = 12.5
	NeutralDayScore      = 7.5
	NeutralDistanceScore = 5.0
)

// FreeEventCreditScore is the small credit a free event earns from users
// who did not opt into free events. Free is still attractive to most people.
const FreeEventCreditScore = 5.0

// PartialPriceOverlapScore is the price score for a paid event whose price
// band merely overlaps the user's desired band without being contained.
const PartialPriceOverlapScore = 10.0

// Breakdown holds the five sub-scores produced for one (preferences, event)
// pair. Every field is non-negative and individually capped.
type Breakdown struct {
	Category float64 `json:"category"`
	Genre    float64 `json:"genre"`
	Price    float64 `json:"price"`
	Day      float64 `json:"day"`
	Distance float64 `json:"distance"`
}

// Total returns the aggregate match score on the 0-100 scale.
func (b Breakdown) Total() float64 {
	return b.Category + b.Genre + b.Price + b.Day + b.Distance
}

// Scorer computes match breakdowns using a genre compatibility table.
// A Scorer is immutable after construction and safe for concurrent use.
type Scorer struct {
	genres *GenreTable
}

// NewScorer creates a Scorer backed by the given genre table.
// A nil table falls back to the shipped defaults.
func NewScorer(genres *GenreTable) *Scorer {
	if genres == nil {
		genres = DefaultGenreTable()
	}
	return &Scorer{genres: genres}
}

// Score computes the five sub-scores for one user's preferences against one
// candidate event. It never fails; absent optional fields score per the
// neutral/zero rules documented on each dimension.
func (s *Scorer) Score(prefs *preference.Preferences, ev *event.Event) Breakdown {
	return Breakdown{
		Category: s.categoryScore(prefs, ev),
		Genre:    s.genreScore(prefs, ev),
		Price:    s.priceScore(prefs, ev),
		Day:      s.dayScore(prefs, ev),
		Distance: s.distanceScore(prefs, ev),
	}
}

// categoryScore scales linearly with the stated interest level: 6 points
// per level, 30 at level 5. An absent category key scores 0; absence is a
// real signal of disinterest, not neutrality.
func (s *Scorer) categoryScore(prefs *preference.Preferences, ev *event.Event) float64 {
	level, ok := prefs.Categories[ev.Category]
	if !ok {
		return 0
	}
	// Clamp out-of-range stored levels instead of failing.
	if level < 0 {
		level = 0
	}
	if level > 5 {
		level = 5
	}
	return float64(level) / 5 * MaxCategoryScore
}

// genreScore awards the full 25 when any stated genre is compatible with
// the event's category. First match wins; there is no additive stacking.
// A user with no stated genres gets the neutral 12.5, since genre data on
// events is sparse and "no preference" should read as mild positive.
func (s *Scorer) genreScore(prefs *preference.Preferences, ev *event.Event) float64 {
	if len(prefs.Genres) == 0 {
		return NeutralGenreScore
	}
	for _, g := range prefs.Genres {
		if s.genres.Compatible(g, ev.Category) {
			return MaxGenreScore
		}
	}
	return 0
}

// priceScore compares the event's effective price band against the user's
// desired band. Free events short-circuit: 20 when the user wants them
// included, a small credit of 5 otherwise.
func (s *Scorer) priceScore(prefs *preference.Preferences, ev *event.Event) float64 {
	if ev.IsFree {
		if prefs.IncludeFreeEvents {
			return MaxPriceScore
		}
		return FreeEventCreditScore
	}

	// Event band: [priceMin ?? 0, priceMax ?? priceMin ?? 0].
	evMin := 0
	if ev.PriceMin != nil {
		evMin = *ev.PriceMin
	}
	evMax := evMin
	if ev.PriceMax != nil {
		evMax = *ev.PriceMax
	}

	// User band: [priceMin ?? 0, priceMax ?? +inf].
	userMin := 0
	if prefs.PriceMin != nil {
		userMin = *prefs.PriceMin
	}
	unboundedMax := prefs.PriceMax == nil

	// No overlap at all.
	if evMax < userMin || (!unboundedMax && evMin > *prefs.PriceMax) {
		return 0
	}
	// Event band fully contained within the user's band.
	if evMin >= userMin && (unboundedMax || evMax <= *prefs.PriceMax) {
		return MaxPriceScore
	}
	return PartialPriceOverlapScore
}

// dayScore awards the full 15 when the event's weekday is among the user's
// preferred days, 0 when it is not, and the neutral 7.5 when the user
// expressed no day preference.
func (s *Scorer) dayScore(prefs *preference.Preferences, ev *event.Event) float64 {
	if len(prefs.PreferredDays) == 0 {
		return NeutralDayScore
	}
	if prefs.PrefersDay(ev.Weekday()) {
		return MaxDayScore
	}
	return 0
}

// distanceScore decreases linearly from 10 at the user's doorstep to 0 at
// their configured maximum distance. When either side lacks coordinates
// the dimension cannot be computed and scores the neutral 5.
func (s *Scorer) distanceScore(prefs *preference.Preferences, ev *event.Event) float64 {
	if !prefs.HasHomeCoordinates() || !ev.Venue.HasCoordinates() {
		return NeutralDistanceScore
	}

	distance := geo.HaversineMiles(
		*prefs.HomeLatitude, *prefs.HomeLongitude,
		*ev.Venue.Latitude, *ev.Venue.Longitude,
	)
	maxDistance := prefs.EffectiveMaxDistance()

	if distance > maxDistance {
		return 0
	}
	return (1 - distance/maxDistance) * MaxDistanceScore
}
