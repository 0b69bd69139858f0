package event

import (
	"sort"
	"strings"
)

// ReservationMarker prefixes titles of events that require sign-up.
const ReservationMarker = "◆"

// Aggregate merges per-source event lists into the published order:
// reservation-marker decoration, dedup by Key, then a stable sort by
// date ascending with undated records last. IDs and wire dates are
// filled in here so adapters never have to.
func Aggregate(lists ...[]Event) []Event {
	var all []Event
	for _, list := range lists {
		all = append(all, list...)
	}

	for i := range all {
		if all[i].NeedsReservation && !strings.HasPrefix(all[i].Title, ReservationMarker) {
			all[i].Title = ReservationMarker + all[i].Title
		}
	}

	seen := make(map[string]struct{}, len(all))
	merged := all[:0]
	for _, e := range all {
		key := e.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, e)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		switch {
		case a.Date.IsZero() && b.Date.IsZero():
			return false
		case a.Date.IsZero():
			return false
		case b.Date.IsZero():
			return true
		}
		return a.Date.Before(b.Date)
	})

	for i := range merged {
		merged[i].DateISO = merged[i].dateISO()
		merged[i].ID = GenerateID(merged[i].Key())
	}
	return merged
}
