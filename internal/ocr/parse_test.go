package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNikeRunClubStyle(t *testing.T) {
	raw := "10.02 km\n5'32\"\n55:27\n642 kcal"

	m := Parse(raw)
	require.NotNil(t, m.DistanceKm)
	assert.InDelta(t, 10.02, *m.DistanceKm, 0.001)
	require.NotNil(t, m.PaceSeconds)
	assert.Equal(t, 5*60+32, *m.PaceSeconds)
	require.NotNil(t, m.Calories)
	assert.Equal(t, 642, *m.Calories)
}

func TestParseKoreanNotation(t *testing.T) {
	raw := "거리 21.1 킬로미터 페이스 6분 15초 1시간 58분 30초 1350 칼로리"

	m := Parse(raw)
	require.NotNil(t, m.DistanceKm)
	assert.InDelta(t, 21.1, *m.DistanceKm, 0.001)
	require.NotNil(t, m.PaceSeconds)
	assert.Equal(t, 6*60+15, *m.PaceSeconds)
	require.NotNil(t, m.DurationSeconds)
	assert.Equal(t, 3600+58*60+30, *m.DurationSeconds)
	require.NotNil(t, m.Calories)
	assert.Equal(t, 1350, *m.Calories)
}

func TestParseDurationNotMistakenForPace(t *testing.T) {
	// A marathon time with no pace shown must not leak into pace.
	raw := "42.195 km 4:05:33"

	m := Parse(raw)
	require.NotNil(t, m.DurationSeconds)
	assert.Equal(t, 4*3600+5*60+33, *m.DurationSeconds)
	assert.Nil(t, m.PaceSeconds)
}

func TestParseEmptyText(t *testing.T) {
	m := Parse("오늘도 좋은 하루")
	assert.True(t, m.Empty())
}

func TestParseRejectsAbsurdDistance(t *testing.T) {
	m := Parse("9999 km")
	assert.Nil(t, m.DistanceKm)
}
