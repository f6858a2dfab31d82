package timerange

import (
	"fmt"
	"sort"
)

// Range is a half-open [Start, End) interval within a single day.
type Range struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// New builds a range.
func New(start, end Clock) Range {
	return Range{Start: start, End: end}
}

// Valid reports whether the range has positive length and stays inside the day.
func (r Range) Valid() bool {
	return r.Start >= Midnight && r.End <= EndOfDay && r.End > r.Start
}

// Minutes returns the length of the range.
func (r Range) Minutes() int {
	if r.End <= r.Start {
		return 0
	}
	return int(r.End - r.Start)
}

// Contains reports whether o lies entirely inside r.
func (r Range) Contains(o Range) bool {
	return o.Start >= r.Start && o.End <= r.End
}

// Overlaps reports whether the half-open ranges share at least one minute.
func (r Range) Overlaps(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

// Expand widens the range by before/after minutes, clipped to the day.
func (r Range) Expand(before, after int) Range {
	out := Range{Start: r.Start - Clock(before), End: r.End + Clock(after)}
	if out.Start < Midnight {
		out.Start = Midnight
	}
	if out.End > EndOfDay {
		out.End = EndOfDay
	}
	return out
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start, r.End)
}

// Sorted returns a copy of ranges ordered by start, then end.
func Sorted(ranges []Range) []Range {
	out := make([]Range, len(ranges))
	copy(out, ranges)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start == out[j].Start {
			return out[i].End < out[j].End
		}
		return out[i].Start < out[j].Start
	})
	return out
}

// FirstOverlap returns the first pair of overlapping ranges in start order.
func FirstOverlap(ranges []Range) (Range, Range, bool) {
	sorted := Sorted(ranges)
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Overlaps(sorted[i]) {
			return sorted[i-1], sorted[i], true
		}
	}
	return Range{}, Range{}, false
}

// Merge unions overlapping or touching ranges and drops empty ones.
func Merge(ranges []Range) []Range {
	sorted := Sorted(ranges)
	out := make([]Range, 0, len(sorted))
	for _, r := range sorted {
		if r.End <= r.Start {
			continue
		}
		if n := len(out); n > 0 && r.Start <= out[n-1].End {
			if r.End > out[n-1].End {
				out[n-1].End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// Subtract removes every cut from base and returns the surviving positive-length
// pieces in ascending order. Cuts may be unsorted and may overlap each other.
func Subtract(base []Range, cuts []Range) []Range {
	merged := Merge(cuts)
	out := make([]Range, 0, len(base))
	for _, b := range Sorted(base) {
		if b.End <= b.Start {
			continue
		}
		cursor := b.Start
		for _, c := range merged {
			if c.End <= cursor {
				continue
			}
			if c.Start >= b.End {
				break
			}
			if c.Start > cursor {
				out = append(out, Range{Start: cursor, End: c.Start})
			}
			if c.End > cursor {
				cursor = c.End
			}
			if cursor >= b.End {
				break
			}
		}
		if cursor < b.End {
			out = append(out, Range{Start: cursor, End: b.End})
		}
	}
	return out
}

// ContainedIn reports whether candidate lies entirely inside one of ranges.
func ContainedIn(candidate Range, ranges []Range) bool {
	for _, r := range ranges {
		if r.Contains(candidate) {
			return true
		}
	}
	return false
}
