package kst

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekRangeWednesday(t *testing.T) {
	// 2025-03-12 is a Wednesday in KST.
	ref := time.Date(2025, 3, 12, 15, 30, 0, 0, Zone)
	start, end := WeekRange(ref)

	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, Zone), start)
	assert.Equal(t, time.Monday, start.Weekday())
	assert.Equal(t, time.Date(2025, 3, 16, 23, 59, 59, 999000000, Zone), end)
	assert.Equal(t, time.Sunday, end.Weekday())
}

func TestWeekRangeSundayMapsBack(t *testing.T) {
	// 2025-03-16 is a Sunday: weekStart must be six days earlier.
	ref := time.Date(2025, 3, 16, 9, 0, 0, 0, Zone)
	start, _ := WeekRange(ref)

	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, Zone), start)
}

func TestWeekRangeIgnoresHostTimezone(t *testing.T) {
	// The same instant expressed in UTC must bucket into the same KST week.
	refKST := time.Date(2025, 3, 10, 1, 0, 0, 0, Zone) // Monday 01:00 KST
	refUTC := refKST.UTC()                             // Sunday 16:00 UTC

	startA, _ := WeekRange(refKST)
	startB, _ := WeekRange(refUTC)
	assert.True(t, startA.Equal(startB))
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, Zone), startA)
}

func TestMonthRange(t *testing.T) {
	ref := time.Date(2025, 2, 14, 12, 0, 0, 0, Zone)
	start, end := MonthRange(ref)

	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, Zone), start)
	assert.Equal(t, time.Date(2025, 2, 28, 23, 59, 59, 999000000, Zone), end)
}

func TestDatesInRange(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, Zone)
	end := time.Date(2025, 3, 16, 23, 59, 59, 0, Zone)

	dates := DatesInRange(start, end)
	require.Len(t, dates, 7)
	assert.Equal(t, start, dates[0])
	assert.Equal(t, time.Date(2025, 3, 16, 0, 0, 0, 0, Zone), dates[6])

	assert.Nil(t, DatesInRange(end, start))
}

func TestDayOfWeek(t *testing.T) {
	sunday := time.Date(2025, 3, 16, 0, 0, 0, 0, Zone)
	saturday := time.Date(2025, 3, 15, 0, 0, 0, 0, Zone)

	assert.Equal(t, 0, DayOfWeek(sunday))
	assert.Equal(t, 6, DayOfWeek(saturday))
}

func TestSameDayAcrossOffsets(t *testing.T) {
	// 2025-03-15 23:30 KST is 14:30 UTC the same day; 15:30 UTC rolls into
	// the next KST day.
	a := time.Date(2025, 3, 15, 23, 30, 0, 0, Zone)
	b := a.UTC()
	assert.True(t, SameDay(a, b))

	c := time.Date(2025, 3, 15, 15, 30, 0, 0, time.UTC)
	assert.False(t, SameDay(a, c))
}

func TestToKSTRoundTrip(t *testing.T) {
	// One instant per calendar month: converting to KST and back must be
	// lossless, which would break if a DST-aware zone ever crept in.
	for month := time.January; month <= time.December; month++ {
		instant := time.Date(2025, month, 17, 4, 45, 30, 123456789, time.UTC)
		back := ToKST(instant).UTC()
		require.True(t, instant.Equal(back), "month %s", month)

		_, offset := ToKST(instant).Zone()
		require.Equal(t, 9*60*60, offset, "month %s", month)
	}
}

func TestStartOfDayUsesCivilDate(t *testing.T) {
	// 2025-03-15 18:00 UTC is already 03-16 in KST.
	instant := time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 16, 0, 0, 0, 0, Zone), StartOfDay(instant))
}
