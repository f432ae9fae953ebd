package domain

import "time"

// Interval is a half-open time range [Start, End) in absolute instants.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}

// Overlaps reports whether two half-open intervals share any instant.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether inner lies entirely within i.
func (i Interval) Contains(inner Interval) bool {
	return !inner.Start.Before(i.Start) && !inner.End.After(i.End)
}

func (i Interval) UTC() Interval {
	return Interval{Start: i.Start.UTC(), End: i.End.UTC()}
}

// MergeIntervals collapses overlapping or adjacent intervals into a sorted
// minimal set. The input slice is not modified.
func MergeIntervals(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	for i := 1; i < len(sorted); i++ {
		key := sorted[i]
		j := i - 1
		for j >= 0 && sorted[j].Start.After(key.Start) {
			sorted[j+1] = sorted[j]
			j--
		}
		sorted[j+1] = key
	}

	merged := make([]Interval, 0, len(sorted))
	merged = append(merged, sorted[0])
	for _, cur := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !cur.Start.After(last.End) {
			if cur.End.After(last.End) {
				last.End = cur.End
			}
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}
