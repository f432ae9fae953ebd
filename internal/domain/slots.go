package domain

import "time"

// SlotGranularity is the spacing between candidate slot starts.
const SlotGranularity = 15 * time.Minute

// CandidateSlots returns every interval of the given duration starting at
// SlotGranularity increments from the window start, keeping only candidates
// that end within the window. A blocked period or appointment that partially
// overlaps a candidate excludes that whole candidate; no shorter slot is
// offered in its place.
func CandidateSlots(window Interval, duration time.Duration) []Interval {
	if duration <= 0 || !window.Valid() {
		return nil
	}

	var out []Interval
	for start := window.Start; ; start = start.Add(SlotGranularity) {
		end := start.Add(duration)
		if end.After(window.End) {
			break
		}
		out = append(out, Interval{Start: start, End: end})
	}
	return out
}

// FreeSlots filters candidates down to those overlapping none of the busy
// intervals. Busy intervals are merged first so a candidate is tested against
// a minimal sorted set.
func FreeSlots(candidates []Interval, busy []Interval) []Interval {
	if len(candidates) == 0 {
		return nil
	}
	merged := MergeIntervals(busy)

	out := make([]Interval, 0, len(candidates))
	for _, c := range candidates {
		blocked := false
		for _, b := range merged {
			if b.Start.After(c.End) || b.Start.Equal(c.End) {
				break
			}
			if c.Overlaps(b) {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, c)
		}
	}
	return out
}
