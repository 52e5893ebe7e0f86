package schedule

import (
	"fmt"
	"sort"
	"time"
)

// Window is an opening window on a weekday. Start is inclusive, End exclusive.
type Window struct {
	Day   time.Weekday
	Start Clock
	End   Clock
}

// ParseWindow builds a Window from stored "HH:MM" strings.
func ParseWindow(day int, start, end string) (Window, error) {
	if day < 0 || day > 6 {
		return Window{}, fmt.Errorf("day of week must be between 0 and 6, got %d", day)
	}
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, fmt.Errorf("start time: %w", err)
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, fmt.Errorf("end time: %w", err)
	}
	if s >= e {
		return Window{}, fmt.Errorf("start time %s must be before end time %s", s, e)
	}
	return Window{Day: time.Weekday(day), Start: s, End: e}, nil
}

// Contains reports whether [start, end) lies inside the window. Both instants
// are read in loc and must fall on the window's weekday.
func (w Window) Contains(start, end time.Time, loc *time.Location) bool {
	ls, le := start.In(loc), end.In(loc)
	if ls.Weekday() != w.Day || !sameDay(ls, le) {
		return false
	}
	return ClockOf(ls) >= w.Start && ClockOf(le) <= w.End
}

// Fits reports whether some window contains [start, end).
func Fits(windows []Window, start, end time.Time, loc *time.Location) bool {
	for _, w := range windows {
		if w.Contains(start, end, loc) {
			return true
		}
	}
	return false
}

// CheckWeek validates a full weekly set: no two windows on the same day may
// overlap. Windows touching end-to-start are allowed.
func CheckWeek(windows []Window) error {
	byDay := make(map[time.Weekday][]Window)
	for _, w := range windows {
		byDay[w.Day] = append(byDay[w.Day], w)
	}

	for day, ws := range byDay {
		sort.Slice(ws, func(i, j int) bool { return ws[i].Start < ws[j].Start })
		for i := 1; i < len(ws); i++ {
			if ws[i].Start < ws[i-1].End {
				return fmt.Errorf("windows %s-%s and %s-%s overlap on %s",
					ws[i-1].Start, ws[i-1].End, ws[i].Start, ws[i].End, day)
			}
		}
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
