// Package schedule does the calendar math behind bookings: parsing widget
// date/time input in a tenant's timezone, checking weekly availability
// windows, detecting overlaps and generating free slots.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	// RangeSeparator splits a slot label such as "09:00 - 09:30".
	RangeSeparator = " - "
)

var (
	ErrInvalidDate  = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidClock = errors.New("time must be formatted as HH:MM")
)

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock parses "HH:MM" (24h).
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, ErrInvalidClock
	}

	if !digits(hh) || !digits(mm) {
		return 0, ErrInvalidClock
	}

	h, err := strconv.Atoi(hh)
	if err != nil || h > 23 {
		return 0, ErrInvalidClock
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m > 59 {
		return 0, ErrInvalidClock
	}

	return Clock(h*60 + m), nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseSlotStart accepts either "HH:MM" or a range label "HH:MM - HH:MM" and
// returns the start. The end of a label is ignored.
func ParseSlotStart(s string) (Clock, error) {
	start, _, _ := strings.Cut(s, RangeSeparator)
	return ParseClock(start)
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// ClockOf returns the wall clock of t in its own location.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

// ParseDate parses "YYYY-MM-DD" as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// At combines a calendar day with a wall clock in loc.
func At(day time.Time, c Clock, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, loc)
}

// SlotStart resolves the widget's date and time fields to an instant in loc.
func SlotStart(date, timeField string, loc *time.Location) (time.Time, error) {
	day, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	c, err := ParseSlotStart(timeField)
	if err != nil {
		return time.Time{}, err
	}
	return At(day, c, loc), nil
}

// Label renders a slot as "HH:MM - HH:MM" in loc.
func Label(start, end time.Time, loc *time.Location) string {
	return ClockOf(start.In(loc)).String() + RangeSeparator + ClockOf(end.In(loc)).String()
}

// Overlaps reports whether the half-open ranges [aStart, aEnd) and
// [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
