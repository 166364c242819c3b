package regwindow

import (
	"sort"
	"time"

	"github.com/mrth-run/mrth-api/internal/models"
	"github.com/mrth-run/mrth-api/pkg/kst"
)

// DefaultOpeningLabel stands in for a start timestamp of exactly civil
// midnight. Crawled races usually carry a date with no time-of-day, which
// lands on 00:00; showing that literally would imply a pre-dawn opening
// that is really just missing data, so the timeline displays 10:00.
const DefaultOpeningLabel = "10:00"

// Entry is one race placed on a calendar day.
type Entry struct {
	Race      models.Race `json:"race"`
	Status    Status      `json:"status"`
	TimeLabel string      `json:"time"`
}

// DayBucket groups the races whose registration opens on one KST day.
type DayBucket struct {
	Date       time.Time `json:"date"`
	Entries    []Entry   `json:"entries"`
	IsPast     bool      `json:"is_past"`
	IsToday    bool      `json:"is_today"`
	IsTomorrow bool      `json:"is_tomorrow"`
	OpenCount  int       `json:"open_count"`
}

// BucketByOpeningDay distributes races across the given KST dates keyed by
// the day their derived window opens. Races with no derivable start are
// excluded: they cannot be placed on a calendar. Entries within a day sort
// ascending by opening time label.
func BucketByOpeningDay(races []models.Race, dates []time.Time, now time.Time, opts Options) []DayBucket {
	today := kst.StartOfDay(now)
	tomorrow := kst.AddDays(today, 1)

	buckets := make([]DayBucket, 0, len(dates))
	for _, date := range dates {
		bucket := DayBucket{
			Date:       date,
			Entries:    []Entry{},
			IsPast:     kst.StartOfDay(date).Before(today),
			IsToday:    kst.SameDay(date, today),
			IsTomorrow: kst.SameDay(date, tomorrow),
		}

		for _, race := range races {
			w := DeriveWindow(race, opts)
			if w.Start == nil {
				continue
			}
			if !kst.SameDay(*w.Start, date) {
				continue
			}
			bucket.Entries = append(bucket.Entries, Entry{
				Race:      race,
				Status:    Classify(w, now, CategoryStatuses(race)),
				TimeLabel: OpeningTimeLabel(*w.Start),
			})
		}

		sort.SliceStable(bucket.Entries, func(i, j int) bool {
			return bucket.Entries[i].TimeLabel < bucket.Entries[j].TimeLabel
		})
		for _, e := range bucket.Entries {
			if e.Status == StatusOpen {
				bucket.OpenCount++
			}
		}
		buckets = append(buckets, bucket)
	}
	return buckets
}

// OpeningTimeLabel renders the "HH:mm" opening time of a window start,
// substituting the unknown-time convention for exact civil midnight.
func OpeningTimeLabel(start time.Time) string {
	label := kst.FormatTime(start)
	if label == "00:00" {
		return DefaultOpeningLabel
	}
	return label
}
