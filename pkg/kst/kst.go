// Package kst provides wall-clock arithmetic in Korea Standard Time.
//
// Every helper converts through a fixed UTC+9 offset rather than an IANA
// zone lookup, so results never depend on the timezone of the machine the
// server happens to run on. KST observes no daylight saving.
package kst

import "time"

// Zone is the fixed KST offset (UTC+9).
var Zone = time.FixedZone("KST", 9*60*60)

// Now returns the current instant expressed in KST.
func Now() time.Time {
	return time.Now().In(Zone)
}

// ToKST reinterprets t in the fixed KST offset.
func ToKST(t time.Time) time.Time {
	return t.In(Zone)
}

// StartOfDay floors t to 00:00:00.000 KST.
func StartOfDay(t time.Time) time.Time {
	k := t.In(Zone)
	return time.Date(k.Year(), k.Month(), k.Day(), 0, 0, 0, 0, Zone)
}

// EndOfDay returns 23:59:59.999 KST of t's civil day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// DayOfWeek returns the KST weekday as 0=Sunday..6=Saturday.
func DayOfWeek(t time.Time) int {
	return int(t.In(Zone).Weekday())
}

// SameDay reports whether a and b fall on the same KST calendar day.
func SameDay(a, b time.Time) bool {
	ak, bk := a.In(Zone), b.In(Zone)
	return ak.Year() == bk.Year() && ak.YearDay() == bk.YearDay()
}

// AddDays shifts t by n civil days.
func AddDays(t time.Time, n int) time.Time {
	return t.In(Zone).AddDate(0, 0, n)
}

// WeekRange returns the Monday 00:00:00.000 on or before ref and the
// following Sunday 23:59:59.999, both in KST. A Sunday reference maps back
// six days to the preceding Monday, not forward.
func WeekRange(ref time.Time) (weekStart, weekEnd time.Time) {
	day := StartOfDay(ref)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	weekStart = day.AddDate(0, 0, -offset)
	weekEnd = EndOfDay(weekStart.AddDate(0, 0, 6))
	return weekStart, weekEnd
}

// MonthRange returns the first and last civil instants of ref's KST month.
func MonthRange(ref time.Time) (monthStart, monthEnd time.Time) {
	k := ref.In(Zone)
	monthStart = time.Date(k.Year(), k.Month(), 1, 0, 0, 0, 0, Zone)
	monthEnd = EndOfDay(monthStart.AddDate(0, 1, -1))
	return monthStart, monthEnd
}

// DatesInRange enumerates every KST calendar day from start through end
// inclusive, each at civil midnight.
func DatesInRange(start, end time.Time) []time.Time {
	first := StartOfDay(start)
	last := StartOfDay(end)
	if last.Before(first) {
		return nil
	}
	var dates []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
