package matcher

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/marqueeapp/marquee/internal/event"
)

// GenreTable maps lowercased genre terms to the event categories they are
// considered compatible with. It is a hand-curated configuration table,
// not a learned structure; deployments extend it via a calibration file.
type GenreTable struct {
	entries map[string][]event.Category
}

// genreCalibration is the JSON structure of the genre calibration file.
type genreCalibration struct {
	Version string                      `json:"version"`
	Genres  map[string][]event.Category `json:"genres"`
}

// DefaultGenreTable returns the shipped genre compatibility table.
// Terms are lowercase; lookups lowercase their input to match.
func DefaultGenreTable() *GenreTable {
	return &GenreTable{
		entries: map[string][]event.Category{
			"jazz":         {event.CategoryConcert},
			"rock":         {event.CategoryConcert},
			"classical":    {event.CategoryConcert, event.CategoryMusical},
			"folk":         {event.CategoryConcert},
			"indie":        {event.CategoryConcert},
			"opera":        {event.CategoryMusical, event.CategoryTheater},
			"musical":      {event.CategoryMusical},
			"comedy":       {event.CategoryTheater},
			"drama":        {event.CategoryTheater, event.CategoryFilm},
			"improv":       {event.CategoryTheater},
			"poetry":       {event.CategoryPoetryReading, event.CategoryLiterary},
			"spoken word":  {event.CategoryPoetryReading},
			"fiction":      {event.CategoryLiterary},
			"visual art":   {event.CategoryGalleryOpening},
			"photography":  {event.CategoryGalleryOpening},
			"sculpture":    {event.CategoryGalleryOpening},
			"ballet":       {event.CategoryDance},
			"contemporary": {event.CategoryDance, event.CategoryGalleryOpening},
			"documentary":  {event.CategoryFilm},
			"film noir":    {event.CategoryFilm},
		},
	}
}

// Compatible reports whether the given genre term maps to a category set
// containing cat. Matching is case-insensitive; unknown terms match nothing.
func (t *GenreTable) Compatible(genre string, cat event.Category) bool {
	cats, ok := t.entries[strings.ToLower(strings.TrimSpace(genre))]
	if !ok {
		return false
	}
	for _, c := range cats {
		if c == cat {
			return true
		}
	}
	return false
}

// Len returns the number of genre terms in the table.
func (t *GenreTable) Len() int {
	return len(t.entries)
}

// LoadGenreCalibration loads the genre compatibility table from a JSON
// calibration file, merging entries over the shipped defaults. An entry in
// the file replaces the default category set for that term; new terms are
// added. On any read or parse error the defaults are returned alongside
// the error so callers can degrade gracefully.
func LoadGenreCalibration(filePath string) (*GenreTable, error) {
	table := DefaultGenreTable()
	if filePath == "" {
		return table, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read genre calibration file, using defaults",
			"path", filePath,
			"error", err)
		return table, fmt.Errorf("failed to read genre calibration file: %w", err)
	}

	var cal genreCalibration
	if err := json.Unmarshal(data, &cal); err != nil {
		slog.Warn("failed to parse genre calibration file, using defaults",
			"path", filePath,
			"error", err)
		return table, fmt.Errorf("failed to parse genre calibration file: %w", err)
	}

	overrides := 0
	for term, cats := range cal.Genres {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		valid := make([]event.Category, 0, len(cats))
		for _, c := range cats {
			if c.Valid() {
				valid = append(valid, c)
			} else {
				slog.Warn("ignoring unknown category in genre calibration",
					"genre", term,
					"category", string(c))
			}
		}
		table.entries[term] = valid
		overrides++
	}

	slog.Info("loaded genre calibration",
		"path", filePath,
		"overrides", overrides,
		"terms", table.Len())

	return table, nil
}
