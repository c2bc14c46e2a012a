// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "strings"

// Train represents one train in the catalog: its route (an ordered list of
// station names), its seat layout, and an optional station→time schedule.
//
// The `json:"..."` tags use snake_case because that is the persisted field
// naming convention for the collection files — the on-disk form of a train is
// {"train_id":"...","train_no":"...","stations":[...],...}. Unknown persisted
// fields are ignored on load, so old data files keep working as the entity
// grows.
//
// WHY AN ORDERED []string FOR STATIONS?
// Route coverage is order-sensitive: a train covers (from, to) only when
// `from` appears at an earlier position than `to`. A map of station→time
// cannot answer that question, so the route order lives in Stations and the
// schedule lives separately in StationTimes.
//
// Trains are immutable after load. Nothing in this service mutates a train's
// route or seats; tickets carry a snapshot instead of a live reference.
type Train struct {
	ID           string            `json:"train_id"`
	Number       string            `json:"train_no"` // display key, e.g. "12301"; also usable for lookup
	Stations     []string          `json:"stations"`
	Seats        [][]int           `json:"seats"`         // coach × seat grid of seat-state codes
	StationTimes map[string]string `json:"station_times"` // station name → scheduled time (optional)
}

// Snapshot returns a deep copy of the train.
//
// A booked ticket embeds a Snapshot, not a pointer into the directory, so a
// later reload of the train catalog cannot retroactively change what was
// booked.
func (t Train) Snapshot() Train {
	c := t
	c.Stations = append([]string(nil), t.Stations...)
	if t.Seats != nil {
		c.Seats = make([][]int, len(t.Seats))
		for i, row := range t.Seats {
			c.Seats[i] = append([]int(nil), row...)
		}
	}
	if t.StationTimes != nil {
		c.StationTimes = make(map[string]string, len(t.StationTimes))
		for k, v := range t.StationTimes {
			c.StationTimes[k] = v
		}
	}
	return c
}

// RouteString renders the route for logs and listings,
// e.g. `12301 (t001): Delhi -> Kanpur -> Patna`.
func (t Train) RouteString() string {
	return t.Number + " (" + t.ID + "): " + strings.Join(t.Stations, " -> ")
}
