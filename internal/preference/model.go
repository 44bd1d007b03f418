// Package preference provides the user preference model and repositories
// used by the match engine to find interested users.
package preference

import (
	"github.com/marqueeapp/marquee/internal/event"
	"github.com/marqueeapp/marquee/internal/validate"
)

// DefaultMaxDistanceMiles is the distance cutoff applied when a user has
// home coordinates but never configured a maximum distance.
const DefaultMaxDistanceMiles = 50.0

// Preferences holds one user's saved matching preferences. Each user owns
// exactly one record, created on first save and mutated in place.
//
// Optional fields are pointers; nil means "not set" and the scorer
// degrades gracefully rather than failing.
type Preferences struct {
	UserID string

	// Categories maps an event category to an interest level 1-5.
	// Absence of a key is a real signal of disinterest, not neutrality.
	Categories map[event.Category]int

	// Genres are free-text genre/style strings, matched case-insensitively
	// against the curated genre compatibility table.
	Genres []string

	// PriceMin and PriceMax bound the desired price range in minor
	// currency units (cents). nil means unbounded on that side.
	PriceMin *int
	PriceMax *int

	// IncludeFreeEvents controls whether free events score favorably.
	IncludeFreeEvents bool

	// PreferredDays holds lowercase weekday names ("monday" ... "sunday").
	PreferredDays []string

	HomeLatitude  *float64
	HomeLongitude *float64

	// MaxDistance is the distance cutoff in miles. nil falls back to
	// DefaultMaxDistanceMiles when coordinates are present.
	MaxDistance *float64

	// NotifyMatches gates participation in the matching pipeline.
	NotifyMatches bool
}

// HasHomeCoordinates reports whether the user saved a usable home location.
func (p *Preferences) HasHomeCoordinates() bool {
	return p != nil && p.HomeLatitude != nil && p.HomeLongitude != nil
}

// EffectiveMaxDistance returns the configured distance cutoff in miles,
// falling back to DefaultMaxDistanceMiles when unset or non-positive.
func (p *Preferences) EffectiveMaxDistance() float64 {
	if p.MaxDistance == nil || *p.MaxDistance <= 0 {
		return DefaultMaxDistanceMiles
	}
	return *p.MaxDistance
}

// PrefersDay reports whether the given lowercase weekday name is among
// the user's preferred days.
func (p *Preferences) PrefersDay(day string) bool {
	for _, d := range p.PreferredDays {
		if d == day {
			return true
		}
	}
	return false
}

// Validate checks the record for values the storage layer should refuse.
// It returns the first problem found, or nil for a well-formed record.
func (p *Preferences) Validate() error {
	if p.UserID == "" {
		return ErrMissingUserID
	}
	for cat, level := range p.Categories {
		if !cat.Valid() {
			return validate.ErrUnknownCategory
		}
		if err := validate.InterestLevel(level); err != nil {
			return err
		}
	}
	for _, day := range p.PreferredDays {
		if err := validate.WeekdayName(day); err != nil {
			return err
		}
	}
	if p.HomeLatitude != nil && p.HomeLongitude != nil {
		if err := validate.Coordinates(*p.HomeLatitude, *p.HomeLongitude); err != nil {
			return err
		}
	}
	if err := validate.PriceRange(p.PriceMin, p.PriceMax); err != nil {
		return err
	}
	return nil
}
