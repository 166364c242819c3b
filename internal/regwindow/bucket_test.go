package regwindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrth-run/mrth-api/internal/models"
	"github.com/mrth-run/mrth-api/pkg/kst"
)

func namedRace(title string, start time.Time) models.Race {
	race := raceWithSchedules(regSchedule(tp(start), tp(start.AddDate(0, 0, 14))))
	race.Title = title
	return race
}

func TestBucketByOpeningDayGroupsAndSorts(t *testing.T) {
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, kst.Zone)
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, kst.Zone) // Wednesday
	weekStart, weekEnd := kst.WeekRange(now)
	dates := kst.DatesInRange(weekStart, weekEnd)
	require.Len(t, dates, 7)

	races := []models.Race{
		namedRace("afternoon", monday.Add(14*time.Hour)),
		namedRace("morning", monday.Add(9*time.Hour)),
		namedRace("thursday", monday.AddDate(0, 0, 3).Add(10*time.Hour)),
	}

	buckets := BucketByOpeningDay(races, dates, now, DefaultOptions())
	require.Len(t, buckets, 7)

	mondayBucket := buckets[0]
	require.Len(t, mondayBucket.Entries, 2)
	assert.Equal(t, "morning", mondayBucket.Entries[0].Race.Title)
	assert.Equal(t, "afternoon", mondayBucket.Entries[1].Race.Title)
	assert.Equal(t, "09:00", mondayBucket.Entries[0].TimeLabel)

	require.Len(t, buckets[3].Entries, 1)
	assert.Equal(t, "thursday", buckets[3].Entries[0].Race.Title)

	assert.Empty(t, buckets[1].Entries)
}

func TestBucketExcludesRacesWithoutStart(t *testing.T) {
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, kst.Zone)
	weekStart, weekEnd := kst.WeekRange(now)
	dates := kst.DatesInRange(weekStart, weekEnd)

	endOnly := models.Race{Title: "end-only"}
	endOnly.RegistrationEndAt = tp(now.AddDate(0, 0, 1))
	nothing := models.Race{Title: "nothing"}

	buckets := BucketByOpeningDay([]models.Race{endOnly, nothing}, dates, now, DefaultOptions())
	for _, b := range buckets {
		assert.Empty(t, b.Entries)
	}
}

func TestBucketMidnightStartUsesDefaultLabel(t *testing.T) {
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, kst.Zone)
	weekStart, weekEnd := kst.WeekRange(now)
	dates := kst.DatesInRange(weekStart, weekEnd)

	// Exactly 00:00 KST means the crawler only knew the date.
	midnight := namedRace("date-only", time.Date(2025, 3, 11, 0, 0, 0, 0, kst.Zone))
	trueEarly := namedRace("true-early", time.Date(2025, 3, 11, 0, 30, 0, 0, kst.Zone))

	buckets := BucketByOpeningDay([]models.Race{midnight, trueEarly}, dates, now, DefaultOptions())
	tuesday := buckets[1]
	require.Len(t, tuesday.Entries, 2)

	byTitle := map[string]string{}
	for _, e := range tuesday.Entries {
		byTitle[e.Race.Title] = e.TimeLabel
	}
	assert.Equal(t, DefaultOpeningLabel, byTitle["date-only"])
	assert.Equal(t, "00:30", byTitle["true-early"])
}

func TestBucketDayMarkersAndOpenCount(t *testing.T) {
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, kst.Zone) // Wednesday
	weekStart, weekEnd := kst.WeekRange(now)
	dates := kst.DatesInRange(weekStart, weekEnd)

	opened := namedRace("opened-monday", time.Date(2025, 3, 10, 10, 0, 0, 0, kst.Zone))
	buckets := BucketByOpeningDay([]models.Race{opened}, dates, now, DefaultOptions())

	assert.True(t, buckets[0].IsPast)      // Monday
	assert.True(t, buckets[1].IsPast)      // Tuesday
	assert.True(t, buckets[2].IsToday)     // Wednesday
	assert.False(t, buckets[2].IsPast)
	assert.True(t, buckets[3].IsTomorrow)  // Thursday
	assert.False(t, buckets[4].IsTomorrow) // Friday

	assert.Equal(t, 1, buckets[0].OpenCount)
}

func TestBucketSameInstantDifferentOffsetSameDay(t *testing.T) {
	// A UTC-expressed start must land in its KST day.
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, kst.Zone)
	weekStart, weekEnd := kst.WeekRange(now)
	dates := kst.DatesInRange(weekStart, weekEnd)

	// 2025-03-10 16:00 UTC == 2025-03-11 01:00 KST.
	utcStart := time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)
	buckets := BucketByOpeningDay([]models.Race{namedRace("utc", utcStart)}, dates, now, DefaultOptions())

	assert.Empty(t, buckets[0].Entries)
	require.Len(t, buckets[1].Entries, 1)
	assert.Equal(t, "01:00", buckets[1].Entries[0].TimeLabel)
}
