package regwindow

import (
	"time"

	"github.com/mrth-run/mrth-api/internal/models"
)

// Status is the tri-state registration status shown across every page.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusOpen     Status = "open"
	StatusClosed   Status = "closed"
)

// Classify resolves a race-level status from the canonical window, the
// current time, and any explicit per-category status flags.
//
// Flag precedence (legacy schema): all categories CLOSED wins outright,
// then any OPEN, then any UPCOMING falls through to time-based refinement
// so a hand-set "upcoming" flips to "open" once its start has passed
// without requiring a write-back. Races whose categories carry no flags
// (or only CANCELLED ones) classify purely by time.
func Classify(w Window, now time.Time, statuses []models.CategoryStatus) Status {
	if len(statuses) > 0 {
		allClosed := true
		hasOpen := false
		hasUpcoming := false
		for _, st := range statuses {
			if st != models.CategoryClosed {
				allClosed = false
			}
			switch st {
			case models.CategoryOpen:
				hasOpen = true
			case models.CategoryUpcoming:
				hasUpcoming = true
			}
		}
		if allClosed {
			return StatusClosed
		}
		if hasOpen {
			return StatusOpen
		}
		if hasUpcoming {
			return classifyByTime(w, now)
		}
	}
	return classifyByTime(w, now)
}

// classifyByTime applies the time rule. Boundaries are inclusive on both
// ends: now==start and now==end both count as open. A race with no known
// window defaults to upcoming, never open.
func classifyByTime(w Window, now time.Time) Status {
	if w.End != nil && now.After(*w.End) {
		return StatusClosed
	}
	if w.Start != nil && now.Before(*w.Start) {
		return StatusUpcoming
	}
	if w.Start != nil && (w.End == nil || !now.After(*w.End)) {
		return StatusOpen
	}
	return StatusUpcoming
}

// ClassifyRace collects the explicit category flags off a race and
// classifies its derived window.
func ClassifyRace(race models.Race, now time.Time, opts Options) Status {
	return Classify(DeriveWindow(race, opts), now, CategoryStatuses(race))
}

// CategoryStatuses returns the explicit status flags present on a race's
// categories, in order. Categories without a flag contribute nothing.
func CategoryStatuses(race models.Race) []models.CategoryStatus {
	var statuses []models.CategoryStatus
	for _, cat := range race.Categories {
		if cat.Status != nil {
			statuses = append(statuses, *cat.Status)
		}
	}
	return statuses
}
