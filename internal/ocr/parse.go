package ocr

import (
	"regexp"
	"strconv"
)

// Metrics holds the run figures extracted from screenshot text. Fields stay
// nil when the corresponding pattern never matched.
type Metrics struct {
	DistanceKm      *float64
	PaceSeconds     *int
	DurationSeconds *int
	Calories        *int
}

// Empty reports whether nothing at all was extracted.
func (m Metrics) Empty() bool {
	return m.DistanceKm == nil && m.PaceSeconds == nil && m.DurationSeconds == nil && m.Calories == nil
}

var (
	distancePattern = regexp.MustCompile(`(\d+\.?\d*)\s*(?:km|KM|Km|킬로미터)`)
	pacePattern     = regexp.MustCompile(`(\d{1,2})['′:](\d{2})(?:["″]|/km)?`)
	paceKoPattern   = regexp.MustCompile(`(\d{1,2})분\s*(\d{1,2})초`)
	durationPattern = regexp.MustCompile(`(\d{1,2}):(\d{2}):(\d{2})`)
	durationKoHMS   = regexp.MustCompile(`(\d{1,2})시간\s*(\d{1,2})분(?:\s*(\d{1,2})초)?`)
	caloriePattern  = regexp.MustCompile(`(\d+)\s*(?:kcal|Kcal|KCAL|칼로리)`)
)

// Parse scans raw OCR output from a running-app screenshot and pulls out the
// distance, pace, total duration and calories. Apps disagree on notation, so
// every metric tries a latin pattern first and a Korean one second.
func Parse(raw string) Metrics {
	var m Metrics

	if match := distancePattern.FindStringSubmatch(raw); match != nil {
		if v, err := strconv.ParseFloat(match[1], 64); err == nil && v > 0 && v < 1000 {
			m.DistanceKm = &v
		}
	}

	// The duration pattern (H:MM:SS) must run before pace so a 1:23:45
	// total time is not misread as a 1'23" pace.
	durationText := raw
	if match := durationPattern.FindStringSubmatch(raw); match != nil {
		h, _ := strconv.Atoi(match[1])
		min, _ := strconv.Atoi(match[2])
		sec, _ := strconv.Atoi(match[3])
		total := h*3600 + min*60 + sec
		if total > 0 {
			m.DurationSeconds = &total
			durationText = durationPattern.ReplaceAllString(raw, "")
		}
	} else if match := durationKoHMS.FindStringSubmatch(raw); match != nil {
		h, _ := strconv.Atoi(match[1])
		min, _ := strconv.Atoi(match[2])
		sec := 0
		if match[3] != "" {
			sec, _ = strconv.Atoi(match[3])
		}
		total := h*3600 + min*60 + sec
		if total > 0 {
			m.DurationSeconds = &total
		}
	}

	if match := pacePattern.FindStringSubmatch(durationText); match != nil {
		min, _ := strconv.Atoi(match[1])
		sec, _ := strconv.Atoi(match[2])
		total := min*60 + sec
		if total > 0 && min < 60 {
			m.PaceSeconds = &total
		}
	} else if match := paceKoPattern.FindStringSubmatch(durationText); match != nil {
		min, _ := strconv.Atoi(match[1])
		sec, _ := strconv.Atoi(match[2])
		total := min*60 + sec
		if total > 0 {
			m.PaceSeconds = &total
		}
	}

	if match := caloriePattern.FindStringSubmatch(raw); match != nil {
		if v, err := strconv.Atoi(match[1]); err == nil && v > 0 {
			m.Calories = &v
		}
	}

	return m
}
