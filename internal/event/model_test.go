package event

import (
	"testing"
	"time"
)

func TestCategoryValid(t *testing.T) {
	for _, cat := range AllCategories {
		if !cat.Valid() {
			t.Errorf("expected %s to be valid", cat)
		}
	}
	if Category("BASKETBALL").Valid() {
		t.Error("expected unknown category to be invalid")
	}
	if Category("").Valid() {
		t.Error("expected empty category to be invalid")
	}
	if Category("concert").Valid() {
		t.Error("category values are case-sensitive")
	}
}

func TestEventWeekday(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		expected string
	}{
		{name: "monday", date: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), expected: "monday"},
		{name: "tuesday", date: time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC), expected: "tuesday"},
		{name: "saturday", date: time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC), expected: "saturday"},
		{name: "sunday", date: time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC), expected: "sunday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := &Event{StartDate: tt.date}
			if got := ev.Weekday(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestVenueHasCoordinates(t *testing.T) {
	lat, lng := 40.7128, -74.0060

	tests := []struct {
		name     string
		venue    *Venue
		expected bool
	}{
		{name: "both set", venue: &Venue{Latitude: &lat, Longitude: &lng}, expected: true},
		{name: "latitude only", venue: &Venue{Latitude: &lat}, expected: false},
		{name: "longitude only", venue: &Venue{Longitude: &lng}, expected: false},
		{name: "neither", venue: &Venue{}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.venue.HasCoordinates(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
