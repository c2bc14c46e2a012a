// Package directory holds the in-memory indexes over the loaded collections.
//
// Both directories are plain slices behind query methods — the collections
// are small and loaded once at startup, so there is nothing to be gained from
// maps or secondary indexes. They own no persistence; the booking layer
// decides when a collection is saved.
package directory

import (
	"strings"

	"github.com/sakif/railbook/internal/model"
)

// TrainDirectory answers route, coverage, and lookup queries over the train
// catalog. Trains are immutable after load.
type TrainDirectory struct {
	trains []model.Train
}

// NewTrainDirectory wraps the loaded catalog. The directory keeps the slice
// it is given; callers must not mutate it afterwards.
func NewTrainDirectory(trains []model.Train) *TrainDirectory {
	return &TrainDirectory{trains: trains}
}

// Len reports the number of trains in the catalog.
func (d *TrainDirectory) Len() int {
	return len(d.trains)
}

// List returns the catalog in load order, for display.
func (d *TrainDirectory) List() []model.Train {
	return d.trains
}

// FindByKey looks a train up by its number first, falling back to its ID.
// Both comparisons trim whitespace and ignore case. The first match wins —
// numbers are expected to be unique, and behaviour with duplicates is
// first-come.
//
// Returns (zero Train, false) on a miss.
func (d *TrainDirectory) FindByKey(key string) (model.Train, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return model.Train{}, false
	}
	for _, t := range d.trains {
		if strings.EqualFold(key, strings.TrimSpace(t.Number)) ||
			strings.EqualFold(key, strings.TrimSpace(t.ID)) {
			return t, true
		}
	}
	return model.Train{}, false
}

// Search returns every train whose station set contains both names,
// case-insensitively and regardless of order. This is membership only — a
// train that passes through both stations in the wrong direction still
// matches. Direction is checked separately by CoversRoute, which lets the
// booking engine reject with a specific reason instead of "not found".
//
// Blank input yields an empty result, not an error.
func (d *TrainDirectory) Search(from, to string) []model.Train {
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))
	if from == "" || to == "" {
		return []model.Train{}
	}

	matches := []model.Train{}
	for _, t := range d.trains {
		hasFrom, hasTo := false, false
		for _, s := range t.Stations {
			// Independent checks: the same station may satisfy both names.
			lower := strings.ToLower(s)
			if lower == from {
				hasFrom = true
			}
			if lower == to {
				hasTo = true
			}
		}
		if hasFrom && hasTo {
			matches = append(matches, t)
		}
	}
	return matches
}

// CoversRoute reports whether the train's station sequence contains `from`
// at an earlier position than `to`. The first occurrence of each name decides
// its position; comparison trims whitespace and ignores case. A train with no
// stations never covers any route.
func (d *TrainDirectory) CoversRoute(t model.Train, from, to string) bool {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	iFrom, iTo := -1, -1
	for i, s := range t.Stations {
		if iFrom < 0 && strings.EqualFold(s, from) {
			iFrom = i
		}
		if iTo < 0 && strings.EqualFold(s, to) {
			iTo = i
		}
	}
	return iFrom >= 0 && iTo >= 0 && iFrom < iTo
}
