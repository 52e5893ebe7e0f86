package schedule

import (
	"sort"
	"time"
)

// Slot is a bookable start time.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// Busy is an occupied interval.
type Busy struct {
	Start time.Time
	End   time.Time
}

// SlotQuery describes one day of slot generation.
type SlotQuery struct {
	Day      time.Time
	Location *time.Location
	Windows  []Window
	Length   time.Duration
	Busy     []Busy
	// Slots starting before NotBefore are dropped.
	NotBefore time.Time
}

// Slots walks each window of the query day in steps of Length and returns the
// starts that fit entirely inside the window, do not overlap Busy and are not
// in the past. The result is ordered by start.
func Slots(q SlotQuery) []Slot {
	if q.Length <= 0 {
		return nil
	}

	loc := q.Location
	if loc == nil {
		loc = time.UTC
	}
	day := q.Day.In(loc)

	var out []Slot
	for _, w := range q.Windows {
		if w.Day != day.Weekday() {
			continue
		}

		windowEnd := At(day, w.End, loc)
		for start := At(day, w.Start, loc); ; start = start.Add(q.Length) {
			end := start.Add(q.Length)
			if end.After(windowEnd) {
				break
			}
			if start.Before(q.NotBefore) || isBusy(q.Busy, start, end) {
				continue
			}
			out = append(out, Slot{Start: start, End: end, Label: Label(start, end, loc)})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func isBusy(busy []Busy, start, end time.Time) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}
