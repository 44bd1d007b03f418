// Package validate provides input validation helpers for preference payloads.
package validate

import (
	"errors"
)

// Validation errors returned by the helpers in this package.
var (
	ErrUnknownCategory    = errors.New("unknown event category")
	ErrInterestLevelRange = errors.New("interest level must be between 1 and 5")
	ErrInvalidWeekday     = errors.New("weekday must be a lowercase English day name")
	ErrLatitudeRange      = errors.New("latitude must be between -90 and 90")
	ErrLongitudeRange     = errors.New("longitude must be between -180 and 180")
	ErrNegativePrice      = errors.New("price must not be negative")
	ErrInvertedPriceRange = errors.New("price minimum must not exceed price maximum")
)

// validWeekdays is the set of accepted lowercase weekday names.
var validWeekdays = map[string]bool{
	"monday":    true,
	"tuesday":   true,
	"wednesday": true,
	"thursday":  true,
	"friday":    true,
	"saturday":  true,
	"sunday":    true,
}

// InterestLevel checks that a category interest level is within 1-5.
func InterestLevel(level int) error {
	if level < 1 || level > 5 {
		return ErrInterestLevelRange
	}
	return nil
}

// WeekdayName checks that day is a lowercase English weekday name.
func WeekdayName(day string) error {
	if !validWeekdays[day] {
		return ErrInvalidWeekday
	}
	return nil
}

// Coordinates checks that a latitude/longitude pair is within valid ranges.
func Coordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return ErrLatitudeRange
	}
	if lng < -180 || lng > 180 {
		return ErrLongitudeRange
	}
	return nil
}

// PriceRange checks an optional min/max price pair in minor currency units.
// Either bound may be nil (unbounded). When both are present the minimum
// must not exceed the maximum.
func PriceRange(min, max *int) error {
	if min != nil && *min < 0 {
		return ErrNegativePrice
	}
	if max != nil && *max < 0 {
		return ErrNegativePrice
	}
	if min != nil && max != nil && *min > *max {
		return ErrInvertedPriceRange
	}
	return nil
}
