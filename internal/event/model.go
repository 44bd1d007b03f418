// Package event provides the event and venue models consumed by the
// match engine, along with repositories for fetching candidate events.
package event

import (
	"time"
)

// Category is the closed set of event categories recognized by the directory.
type Category string

// Event categories.
const (
	CategoryConcert        Category = "CONCERT"
	CategoryTheater        Category = "THEATER"
	CategoryMusical        Category = "MUSICAL"
	CategoryGalleryOpening Category = "GALLERY_OPENING"
	CategoryPoetryReading  Category = "POETRY_READING"
	CategoryDance          Category = "DANCE"
	CategoryFilm           Category = "FILM"
	CategoryLiterary       Category = "LITERARY"
)

// AllCategories lists every valid event category.
var AllCategories = []Category{
	CategoryConcert,
	CategoryTheater,
	CategoryMusical,
	CategoryGalleryOpening,
	CategoryPoetryReading,
	CategoryDance,
	CategoryFilm,
	CategoryLiterary,
}

// Valid reports whether c is one of the recognized categories.
func (c Category) Valid() bool {
	for _, cat := range AllCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// Status represents the publication state of an event.
type Status string

// Event statuses.
const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusCancelled Status = "cancelled"
)

// Venue is the physical location an event takes place at.
// Coordinates are optional; venues without them simply cannot
// contribute to distance scoring.
type Venue struct {
	ID        string
	Name      string
	Latitude  *float64
	Longitude *float64
}

// HasCoordinates reports whether the venue carries a usable lat/lng pair.
func (v *Venue) HasCoordinates() bool {
	return v != nil && v.Latitude != nil && v.Longitude != nil
}

// Event is a single listing in the directory. The match engine treats
// events as read-only input; their lifecycle is owned by the web app.
//
// PriceMin and PriceMax are in minor currency units (cents). When only
// one is present it represents a single price point.
type Event struct {
	ID        string
	Title     string
	Category  Category
	IsFree    bool
	PriceMin  *int
	PriceMax  *int
	StartDate time.Time
	Status    Status
	Venue     *Venue
}

// Weekday returns the event's day of week as a lowercase English name
// ("monday" ... "sunday"), the form stored in user preferences.
func (e *Event) Weekday() string {
	switch e.StartDate.Weekday() {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}
