package matcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/marqueeapp/marquee/internal/event"
)

func TestDefaultGenreTableCompatible(t *testing.T) {
	table := DefaultGenreTable()

	tests := []struct {
		name     string
		genre    string
		category event.Category
		expected bool
	}{
		{name: "jazz maps to concert", genre: "jazz", category: event.CategoryConcert, expected: true},
		{name: "jazz does not map to film", genre: "jazz", category: event.CategoryFilm, expected: false},
		{name: "poetry maps to poetry reading", genre: "poetry", category: event.CategoryPoetryReading, expected: true},
		{name: "poetry maps to literary", genre: "poetry", category: event.CategoryLiterary, expected: true},
		{name: "lookup ignores case", genre: "BALLET", category: event.CategoryDance, expected: true},
		{name: "lookup trims whitespace", genre: "  comedy ", category: event.CategoryTheater, expected: true},
		{name: "unknown term matches nothing", genre: "chiptune", category: event.CategoryConcert, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Compatible(tt.genre, tt.category); got != tt.expected {
				t.Errorf("Compatible(%q, %q) = %v, expected %v", tt.genre, tt.category, got, tt.expected)
			}
		})
	}
}

func TestLoadGenreCalibrationEmptyPath(t *testing.T) {
	table, err := LoadGenreCalibration("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != DefaultGenreTable().Len() {
		t.Errorf("expected default table, got %d terms", table.Len())
	}
}

func TestLoadGenreCalibrationMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genres.json")
	data := `{
		"version": "1",
		"genres": {
			"blues": ["CONCERT"],
			"jazz": ["CONCERT", "FILM"],
			"bogus": ["NOT_A_CATEGORY"]
		}
	}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("failed to write calibration file: %v", err)
	}

	table, err := LoadGenreCalibration(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// New term added.
	if !table.Compatible("blues", event.CategoryConcert) {
		t.Error("expected blues to map to CONCERT")
	}
	// Existing term replaced, not appended.
	if !table.Compatible("jazz", event.CategoryFilm) {
		t.Error("expected calibrated jazz to map to FILM")
	}
	// Default entries not named by the file survive.
	if !table.Compatible("ballet", event.CategoryDance) {
		t.Error("expected default ballet entry to survive the merge")
	}
	// Unknown categories are dropped, leaving the term matching nothing.
	if table.Compatible("bogus", event.CategoryConcert) {
		t.Error("expected unknown category to be ignored")
	}
}

func TestLoadGenreCalibrationMissingFileReturnsDefaults(t *testing.T) {
	table, err := LoadGenreCalibration(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if table == nil || table.Len() != DefaultGenreTable().Len() {
		t.Error("expected default table alongside the error")
	}
	if !table.Compatible("jazz", event.CategoryConcert) {
		t.Error("expected default entries to be usable after load failure")
	}
}

func TestLoadGenreCalibrationMalformedJSONReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genres.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to write calibration file: %v", err)
	}

	table, err := LoadGenreCalibration(path)
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	if !table.Compatible("jazz", event.CategoryConcert) {
		t.Error("expected default entries to be usable after parse failure")
	}
}
