package colleagues

import (
	"sort"
	"time"

	"talent-search/internal/storage"
)

// OverlapMonths intersects [start1,end1] with [start2,end2]. ok is false when the
// intervals do not meet; otherwise months is the whole-month length of the
// intersection.
func OverlapMonths(start1, end1, start2, end2 time.Time) (months int, ok bool) {
	start := start1
	if start2.After(start) {
		start = start2
	}
	end := end1
	if end2.Before(end) {
		end = end2
	}
	if start.After(end) {
		return 0, false
	}
	return MonthsBetween(start, end), true
}

// MonthsBetween counts calendar months from start to end, ignoring the day.
func MonthsBetween(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
}

// TotalMonths is the length of the union of all employment intervals, so
// parallel roles are not double counted.
func TotalMonths(experiences []storage.WorkExperience, now time.Time) int {
	type span struct{ start, end time.Time }

	spans := make([]span, 0, len(experiences))
	for _, exp := range experiences {
		s, e := exp.Span(now)
		if e.Before(s) {
			continue
		}
		spans = append(spans, span{s, e})
	}
	if len(spans) == 0 {
		return 0
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })

	total := 0
	current := spans[0]
	for _, s := range spans[1:] {
		if !s.start.After(current.end) {
			if s.end.After(current.end) {
				current.end = s.end
			}
			continue
		}
		total += MonthsBetween(current.start, current.end)
		current = s
	}
	return total + MonthsBetween(current.start, current.end)
}
