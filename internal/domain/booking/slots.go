package booking

import (
	"sort"
	"time"

	"github.com/BruksfildServices01/booking-api/internal/timezone"
)

const DefaultGranularity = 15

type TimeSlot struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Time        string    `json:"time"`
	ProviderIDs []uint    `json:"provider_ids,omitempty"`
	Provisional bool      `json:"provisional"`
}

// SlotRequest is everything the generator needs; it holds no hidden state so
// equal requests give equal output.
type SlotRequest struct {
	Day          time.Time // midnight in the tenant location
	Windows      []Window
	Duration     int
	BufferBefore int
	BufferAfter  int
	Granularity  int
	Busy         []Interval
	NotBefore    time.Time // zero means no lower bound
}

// GenerateSlots walks every window in Granularity steps while the service
// still fits and keeps starts whose buffered interval is free. The result is
// ascending and unique even when windows overlap.
func GenerateSlots(req SlotRequest) []time.Time {
	if req.Duration <= 0 {
		return []time.Time{}
	}
	step := req.Granularity
	if step <= 0 {
		step = DefaultGranularity
	}

	seen := make(map[int]struct{})
	minutes := make([]int, 0)

	for _, w := range req.Windows {
		for m := w.Start; m+req.Duration <= w.End; m += step {
			if _, dup := seen[m]; dup {
				continue
			}

			start := timezone.AtMinute(req.Day, m)
			if !req.NotBefore.IsZero() && start.Before(req.NotBefore) {
				continue
			}

			candidate := Occupied(start, req.Duration, req.BufferBefore, req.BufferAfter)
			if overlapsAny(candidate, req.Busy) {
				continue
			}

			seen[m] = struct{}{}
			minutes = append(minutes, m)
		}
	}

	sort.Ints(minutes)

	out := make([]time.Time, 0, len(minutes))
	for _, m := range minutes {
		out = append(out, timezone.AtMinute(req.Day, m))
	}
	return out
}

func overlapsAny(candidate Interval, busy []Interval) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}
