package regwindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrth-run/mrth-api/internal/models"
	"github.com/mrth-run/mrth-api/pkg/kst"
)

func tp(t time.Time) *time.Time { return &t }

func statusPtr(s models.CategoryStatus) *models.CategoryStatus { return &s }

func regSchedule(start, end *time.Time) models.RaceSchedule {
	return models.RaceSchedule{Type: models.ScheduleRegistration, StartAt: start, EndAt: end}
}

func raceWithSchedules(schedules ...models.RaceSchedule) models.Race {
	return models.Race{
		Categories: []models.RaceCategory{{RawName: "Full", Schedules: schedules}},
	}
}

func TestDeriveWindowPrefersStructuredOverFlat(t *testing.T) {
	structured := time.Date(2025, 3, 1, 10, 0, 0, 0, kst.Zone)
	flat := time.Date(2025, 2, 1, 10, 0, 0, 0, kst.Zone)

	race := raceWithSchedules(regSchedule(tp(structured), nil))
	race.RegistrationStartAt = tp(flat)
	race.RegistrationEndAt = tp(flat.AddDate(0, 1, 0))

	w := DeriveWindow(race, DefaultOptions())
	require.NotNil(t, w.Start)
	assert.True(t, w.Start.Equal(structured), "structured schedule must win over flat fields")
}

func TestDeriveWindowAggregatesMinStartMaxEnd(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, kst.Zone) }

	race := raceWithSchedules(
		regSchedule(tp(day(5)), tp(day(20))),
		regSchedule(tp(day(1)), tp(day(15))),
		regSchedule(tp(day(10)), tp(day(25))),
	)

	w := DeriveWindow(race, DefaultOptions())
	require.NotNil(t, w.Start)
	require.NotNil(t, w.End)
	assert.True(t, w.Start.Equal(day(1)), "start must be the earliest, not the first")
	assert.True(t, w.End.Equal(day(25)), "end must be the latest, not the first")
}

func TestDeriveWindowIgnoresPaymentSchedules(t *testing.T) {
	reg := time.Date(2025, 3, 3, 0, 0, 0, 0, kst.Zone)
	pay := time.Date(2025, 3, 1, 0, 0, 0, 0, kst.Zone)

	race := models.Race{Categories: []models.RaceCategory{{
		RawName: "10K",
		Schedules: []models.RaceSchedule{
			{Type: models.SchedulePayment, StartAt: tp(pay), EndAt: tp(pay)},
			regSchedule(tp(reg), nil),
		},
	}}}

	w := DeriveWindow(race, DefaultOptions())
	require.NotNil(t, w.Start)
	assert.True(t, w.Start.Equal(reg))
	assert.Nil(t, w.End)
}

func TestDeriveWindowFlatFallback(t *testing.T) {
	start := time.Date(2025, 2, 1, 9, 0, 0, 0, kst.Zone)
	end := time.Date(2025, 2, 28, 18, 0, 0, 0, kst.Zone)
	race := models.Race{RegistrationStartAt: tp(start), RegistrationEndAt: tp(end)}

	src := SourceFromRace(race, DefaultOptions())
	assert.Equal(t, SourceFlat, src.Kind)

	w := Derive(src)
	require.NotNil(t, w.Start)
	require.NotNil(t, w.End)
	assert.True(t, w.Start.Equal(start))
	assert.True(t, w.End.Equal(end))
}

func TestDeriveWindowNoSource(t *testing.T) {
	race := models.Race{Categories: []models.RaceCategory{{RawName: "Half"}}}

	src := SourceFromRace(race, DefaultOptions())
	assert.Equal(t, SourceNone, src.Kind)

	w := Derive(src)
	assert.Nil(t, w.Start)
	assert.Nil(t, w.End)
}

func TestDeriveWindowCancelledCategoryFlag(t *testing.T) {
	early := time.Date(2025, 3, 1, 0, 0, 0, 0, kst.Zone)
	late := time.Date(2025, 3, 10, 0, 0, 0, 0, kst.Zone)

	race := models.Race{Categories: []models.RaceCategory{
		{RawName: "Full", Status: statusPtr(models.CategoryCancelled), Schedules: []models.RaceSchedule{regSchedule(tp(early), nil)}},
		{RawName: "10K", Status: statusPtr(models.CategoryUpcoming), Schedules: []models.RaceSchedule{regSchedule(tp(late), nil)}},
	}}

	withCancelled := DeriveWindow(race, Options{IncludeCancelled: true})
	require.NotNil(t, withCancelled.Start)
	assert.True(t, withCancelled.Start.Equal(early))

	withoutCancelled := DeriveWindow(race, Options{IncludeCancelled: false})
	require.NotNil(t, withoutCancelled.Start)
	assert.True(t, withoutCancelled.Start.Equal(late))
}

func TestDeriveWindowDeterministic(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, kst.Zone)
	race := raceWithSchedules(regSchedule(tp(start), tp(start.AddDate(0, 0, 10))))
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, kst.Zone)

	w1 := DeriveWindow(race, DefaultOptions())
	w2 := DeriveWindow(race, DefaultOptions())
	assert.Equal(t, w1, w2)
	assert.Equal(t, Classify(w1, now, nil), Classify(w2, now, nil))
}
