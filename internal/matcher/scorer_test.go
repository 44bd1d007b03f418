package matcher

import (
	"math"
	"testing"
	"time"

	"github.com/marqueeapp/marquee/internal/event"
	"github.com/marqueeapp/marquee/internal/geo"
	"github.com/marqueeapp/marquee/internal/preference"
)

const epsilon = 0.0001

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}

// tuesdayEvening is a known Tuesday (2024-01-02).
var tuesdayEvening = time.Date(2024, 1, 2, 19, 0, 0, 0, time.UTC)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

// TestScoreFullBreakdown covers the reference scenario: max category
// interest, neutral genre/day/distance, free event the user wants.
func TestScoreFullBreakdown(t *testing.T) {
	scorer := NewScorer(nil)

	prefs := &preference.Preferences{
		UserID:            "user-1",
		Categories:        map[event.Category]int{event.CategoryConcert: 5},
		IncludeFreeEvents: true,
	}
	ev := &event.Event{
		ID:        "event-1",
		Category:  event.CategoryConcert,
		IsFree:    true,
		StartDate: tuesdayEvening,
	}

	breakdown := scorer.Score(prefs, ev)

	expected := Breakdown{
		Category: 30,
		Genre:    12.5,
		Price:    20,
		Day:      7.5,
		Distance: 5,
	}
	if breakdown != expected {
		t.Errorf("expected breakdown %+v, got %+v", expected, breakdown)
	}
	if !almostEqual(breakdown.Total(), 75) {
		t.Errorf("expected total 75, got %f", breakdown.Total())
	}
}

// TestScoreCategoryMismatch verifies a non-matching category zeroes the
// category dimension and drops the total accordingly.
func TestScoreCategoryMismatch(t *testing.T) {
	scorer := NewScorer(nil)

	prefs := &preference.Preferences{
		UserID:            "user-1",
		Categories:        map[event.Category]int{event.CategoryConcert: 5},
		IncludeFreeEvents: true,
	}
	ev := &event.Event{
		Category:  event.CategoryTheater,
		IsFree:    true,
		StartDate: tuesdayEvening,
	}

	breakdown := scorer.Score(prefs, ev)

	if breakdown.Category != 0 {
		t.Errorf("expected category score 0, got %f", breakdown.Category)
	}
	if !almostEqual(breakdown.Total(), 45) {
		t.Errorf("expected total 45, got %f", breakdown.Total())
	}
}

// TestCategoryScoreLinear verifies category score is 6 points per
// interest level.
func TestCategoryScoreLinear(t *testing.T) {
	scorer := NewScorer(nil)

	tests := []struct {
		name     string
		level    int
		expected float64
	}{
		{name: "level 1", level: 1, expected: 6},
		{name: "level 2", level: 2, expected: 12},
		{name: "level 3", level: 3, expected: 18},
		{name: "level 4", level: 4, expected: 24},
		{name: "level 5", level: 5, expected: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := &preference.Preferences{
				Categories: map[event.Category]int{event.CategoryDance: tt.level},
			}
			ev := &event.Event{Category: event.CategoryDance, StartDate: tuesdayEvening}

			breakdown := scorer.Score(prefs, ev)
			if !almostEqual(breakdown.Category, tt.expected) {
				t.Errorf("expected category score %f, got %f", tt.expected, breakdown.Category)
			}
		})
	}
}

// TestCategoryScoreClampsStoredLevels verifies out-of-range stored levels
// degrade instead of breaking the cap.
func TestCategoryScoreClampsStoredLevels(t *testing.T) {
	scorer := NewScorer(nil)

	tests := []struct {
		name     string
		level    int
		expected float64
	}{
		{name: "negative level", level: -3, expected: 0},
		{name: "level above five", level: 9, expected: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := &preference.Preferences{
				Categories: map[event.Category]int{event.CategoryFilm: tt.level},
			}
			ev := &event.Event{Category: event.CategoryFilm, StartDate: tuesdayEvening}

			breakdown := scorer.Score(prefs, ev)
			if !almostEqual(breakdown.Category, tt.expected) {
				t.Errorf("expected category score %f, got %f", tt.expected, breakdown.Category)
			}
		})
	}
}

// TestGenreScore covers the curated table match, the neutral no-genre
// case, and the zero no-match case.
func TestGenreScore(t *testing.T) {
	scorer := NewScorer(nil)

	tests := []struct {
		name     string
		genres   []string
		category event.Category
		expected float64
	}{
		{
			name:     "no stated genres is neutral",
			genres:   nil,
			category: event.CategoryConcert,
			expected: 12.5,
		},
		{
			name:     "jazz matches concert",
			genres:   []string{"jazz"},
			category: event.CategoryConcert,
			expected: 25,
		},
		{
			name:     "matching is case-insensitive",
			genres:   []string{"JaZz"},
			category: event.CategoryConcert,
			expected: 25,
		},
		{
			name:     "poetry matches literary",
			genres:   []string{"poetry"},
			category: event.CategoryLiterary,
			expected: 25,
		},
		{
			name:     "first match wins without stacking",
			genres:   []string{"jazz", "rock", "folk"},
			category: event.CategoryConcert,
			expected: 25,
		},
		{
			name:     "unknown genre scores zero",
			genres:   []string{"zydeco polka fusion"},
			category: event.CategoryConcert,
			expected: 0,
		},
		{
			name:     "known genre wrong category scores zero",
			genres:   []string{"comedy"},
			category: event.CategoryConcert,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := &preference.Preferences{Genres: tt.genres}
			ev := &event.Event{Category: tt.category, StartDate: tuesdayEvening}

			breakdown := scorer.Score(prefs, ev)
			if !almostEqual(breakdown.Genre, tt.expected) {
				t.Errorf("expected genre score %f, got %f", tt.expected, breakdown.Genre)
			}
		})
	}
}

// TestPriceScore covers free-event handling and the three paid band
// relationships: containment, partial overlap, and no overlap.
func TestPriceScore(t *testing.T) {
	scorer := NewScorer(nil)

	tests := []struct {
		name     string
		prefs    *preference.Preferences
		ev       *event.Event
		expected float64
	}{
		{
			name:     "free event wanted",
			prefs:    &preference.Preferences{IncludeFreeEvents: true},
			ev:       &event.Event{IsFree: true},
			expected: 20,
		},
		{
			name:     "free event not wanted still gets small credit",
			prefs:    &preference.Preferences{IncludeFreeEvents: false},
			ev:       &event.Event{IsFree: true},
			expected: 5,
		},
		{
			name:     "event band fully contained",
			prefs:    &preference.Preferences{PriceMin: intPtr(1000), PriceMax: intPtr(3000)},
			ev:       &event.Event{PriceMin: intPtr(1500), PriceMax: intPtr(2500)},
			expected: 20,
		},
		{
			name:     "partial overlap",
			prefs:    &preference.Preferences{PriceMin: intPtr(1000), PriceMax: intPtr(3000)},
			ev:       &event.Event{PriceMin: intPtr(2500), PriceMax: intPtr(5000)},
			expected: 10,
		},
		{
			name:     "no overlap",
			prefs:    &preference.Preferences{PriceMin: intPtr(1000), PriceMax: intPtr(3000)},
			ev:       &event.Event{PriceMin: intPtr(5000), PriceMax: intPtr(6000)},
			expected: 0,
		},
		{
			name:     "event below user's minimum",
			prefs:    &preference.Preferences{PriceMin: intPtr(2000), PriceMax: intPtr(3000)},
			ev:       &event.Event{PriceMin: intPtr(500), PriceMax: intPtr(1000)},
			expected: 0,
		},
		{
			name:     "single price point uses priceMin",
			prefs:    &preference.Preferences{PriceMin: intPtr(1000), PriceMax: intPtr(3000)},
			ev:       &event.Event{PriceMin: intPtr(2000)},
			expected: 20,
		},
		{
			name:     "user band unbounded above",
			prefs:    &preference.Preferences{PriceMin: intPtr(1000)},
			ev:       &event.Event{PriceMin: intPtr(50000), PriceMax: intPtr(90000)},
			expected: 20,
		},
		{
			name:     "no price data on either side",
			prefs:    &preference.Preferences{},
			ev:       &event.Event{},
			expected: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.ev.StartDate = tuesdayEvening
			breakdown := scorer.Score(tt.prefs, tt.ev)
			if !almostEqual(breakdown.Price, tt.expected) {
				t.Errorf("expected price score %f, got %f", tt.expected, breakdown.Price)
			}
		})
	}
}

// TestDayScore covers matching, non-matching, and neutral day handling.
func TestDayScore(t *testing.T) {
	scorer := NewScorer(nil)

	tests := []struct {
		name     string
		days     []string
		expected float64
	}{
		{name: "no preferred days is neutral", days: nil, expected: 7.5},
		{name: "event day preferred", days: []string{"tuesday", "friday"}, expected: 15},
		{name: "event day not preferred", days: []string{"saturday", "sunday"}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := &preference.Preferences{PreferredDays: tt.days}
			ev := &event.Event{Category: event.CategoryFilm, StartDate: tuesdayEvening}

			breakdown := scorer.Score(prefs, ev)
			if !almostEqual(breakdown.Day, tt.expected) {
				t.Errorf("expected day score %f, got %f", tt.expected, breakdown.Day)
			}
		})
	}
}

// TestDistanceScore covers the linear decay, the cutoff, and the neutral
// missing-coordinates cases.
func TestDistanceScore(t *testing.T) {
	scorer := NewScorer(nil)

	// Offsets chosen so the great-circle distance along a meridian is
	// exactly the target mileage.
	homeLat, homeLng := 42.3314, -83.0458
	latAtMiles := func(miles float64) float64 {
		return homeLat + (miles/geo.EarthRadiusMiles)*180/math.Pi
	}

	tests := []struct {
		name     string
		prefs    *preference.Preferences
		venue    *event.Venue
		expected float64
	}{
		{
			name:     "no home coordinates is neutral",
			prefs:    &preference.Preferences{},
			venue:    &event.Venue{Latitude: floatPtr(homeLat), Longitude: floatPtr(homeLng)},
			expected: 5,
		},
		{
			name: "no venue coordinates is neutral",
			prefs: &preference.Preferences{
				HomeLatitude:  floatPtr(homeLat),
				HomeLongitude: floatPtr(homeLng),
			},
			venue:    &event.Venue{},
			expected: 5,
		},
		{
			name: "no venue at all is neutral",
			prefs: &preference.Preferences{
				HomeLatitude:  floatPtr(homeLat),
				HomeLongitude: floatPtr(homeLng),
			},
			venue:    nil,
			expected: 5,
		},
		{
			name: "venue at home scores full",
			prefs: &preference.Preferences{
				HomeLatitude:  floatPtr(homeLat),
				HomeLongitude: floatPtr(homeLng),
				MaxDistance:   floatPtr(10),
			},
			venue:    &event.Venue{Latitude: floatPtr(homeLat), Longitude: floatPtr(homeLng)},
			expected: 10,
		},
		{
			name: "five miles of ten scores half",
			prefs: &preference.Preferences{
				HomeLatitude:  floatPtr(homeLat),
				HomeLongitude: floatPtr(homeLng),
				MaxDistance:   floatPtr(10),
			},
			venue:    &event.Venue{Latitude: floatPtr(latAtMiles(5)), Longitude: floatPtr(homeLng)},
			expected: 5,
		},
		{
			name: "beyond max distance scores zero",
			prefs: &preference.Preferences{
				HomeLatitude:  floatPtr(homeLat),
				HomeLongitude: floatPtr(homeLng),
				MaxDistance:   floatPtr(10),
			},
			venue:    &event.Venue{Latitude: floatPtr(latAtMiles(20)), Longitude: floatPtr(homeLng)},
			expected: 0,
		},
		{
			name: "default max distance applies when unset",
			prefs: &preference.Preferences{
				HomeLatitude:  floatPtr(homeLat),
				HomeLongitude: floatPtr(homeLng),
			},
			venue: &event.Venue{Latitude: floatPtr(latAtMiles(25)), Longitude: floatPtr(homeLng)},
			// 25 of 50 miles: (1 - 25/50) * 10
			expected: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := &event.Event{
				Category:  event.CategoryConcert,
				StartDate: tuesdayEvening,
				Venue:     tt.venue,
			}

			breakdown := scorer.Score(tt.prefs, ev)
			if math.Abs(breakdown.Distance-tt.expected) > 0.001 {
				t.Errorf("expected distance score %f, got %f", tt.expected, breakdown.Distance)
			}
		})
	}
}

// TestScoreBoundsProperty verifies every sub-score stays within its cap
// and the total within [0, 100] across a grid of inputs.
func TestScoreBoundsProperty(t *testing.T) {
	scorer := NewScorer(nil)

	prefsVariants := []*preference.Preferences{
		{},
		{Categories: map[event.Category]int{event.CategoryConcert: 5, event.CategoryDance: 2}},
		{Genres: []string{"jazz", "ballet"}, IncludeFreeEvents: true},
		{PriceMin: intPtr(0), PriceMax: intPtr(100)},
		{PriceMin: intPtr(5000)},
		{PreferredDays: []string{"monday", "tuesday", "wednesday"}},
		{
			HomeLatitude:  floatPtr(40.7),
			HomeLongitude: floatPtr(-74.0),
			MaxDistance:   floatPtr(1),
		},
		{
			Categories:        map[event.Category]int{event.CategoryLiterary: 5},
			Genres:            []string{"poetry"},
			IncludeFreeEvents: true,
			PreferredDays:     []string{"tuesday"},
			HomeLatitude:      floatPtr(40.7),
			HomeLongitude:     floatPtr(-74.0),
		},
	}
	eventVariants := []*event.Event{
		{Category: event.CategoryConcert, IsFree: true, StartDate: tuesdayEvening},
		{Category: event.CategoryLiterary, PriceMin: intPtr(1500), StartDate: tuesdayEvening},
		{
			Category:  event.CategoryDance,
			PriceMin:  intPtr(2000),
			PriceMax:  intPtr(8000),
			StartDate: tuesdayEvening.Add(72 * time.Hour),
			Venue:     &event.Venue{Latitude: floatPtr(40.75), Longitude: floatPtr(-73.99)},
		},
		{Category: event.CategoryFilm, StartDate: tuesdayEvening, Venue: &event.Venue{}},
	}

	for _, prefs := range prefsVariants {
		for _, ev := range eventVariants {
			b := scorer.Score(prefs, ev)

			checks := []struct {
				name string
				val  float64
				max  float64
			}{
				{"category", b.Category, MaxCategoryScore},
				{"genre", b.Genre, MaxGenreScore},
				{"price", b.Price, MaxPriceScore},
				{"day", b.Day, MaxDayScore},
				{"distance", b.Distance, MaxDistanceScore},
			}
			for _, c := range checks {
				if c.val < 0 || c.val > c.max {
					t.Errorf("%s score %f out of range [0, %f]", c.name, c.val, c.max)
				}
			}
			if total := b.Total(); total < 0 || total > 100 {
				t.Errorf("total %f out of range [0, 100]", total)
			}
		}
	}
}

// TestScoreDeterministic verifies identical inputs yield identical
// breakdowns with no hidden state.
func TestScoreDeterministic(t *testing.T) {
	scorer := NewScorer(nil)

	prefs := &preference.Preferences{
		Categories:        map[event.Category]int{event.CategoryConcert: 4},
		Genres:            []string{"jazz"},
		IncludeFreeEvents: true,
		PreferredDays:     []string{"tuesday"},
		HomeLatitude:      floatPtr(40.7),
		HomeLongitude:     floatPtr(-74.0),
	}
	ev := &event.Event{
		Category:  event.CategoryConcert,
		IsFree:    true,
		StartDate: tuesdayEvening,
		Venue:     &event.Venue{Latitude: floatPtr(40.72), Longitude: floatPtr(-74.01)},
	}

	first := scorer.Score(prefs, ev)
	second := scorer.Score(prefs, ev)

	if first != second {
		t.Errorf("expected identical breakdowns, got %+v and %+v", first, second)
	}
}
