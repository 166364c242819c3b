// Package regwindow derives a race's canonical registration window,
// classifies it against a KST clock, and buckets races into calendar days.
//
// Everything here is a pure function over immutable inputs. The current
// time is always an explicit parameter so callers (and tests) control it;
// no function reads an ambient clock.
package regwindow

import (
	"time"

	"github.com/mrth-run/mrth-api/internal/models"
)

// Window is the canonical registration window derived for a race. Either
// bound may be nil; both nil means no structured window is known.
type Window struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// SourceKind tags which of the three schema shapes supplied the window.
type SourceKind int

const (
	// SourceStructured: at least one REGISTRATION schedule with a
	// non-null bound exists under the race's categories.
	SourceStructured SourceKind = iota
	// SourceFlat: only the legacy flat registration_start_at/end_at pair.
	SourceFlat
	// SourceNone: neither shape carries any timestamp.
	SourceNone
)

// Source is the normalized window input, built once at the data boundary
// so derivation is a three-way match instead of null checks scattered
// through page code.
type Source struct {
	Kind      SourceKind
	Schedules []models.RaceSchedule
	Start     *time.Time
	End       *time.Time
}

// Options tunes window derivation.
type Options struct {
	// IncludeCancelled keeps CANCELLED categories' schedules in the
	// aggregate. The product has not decided this yet; both behaviors are
	// supported and the default (true) preserves what most call sites of
	// the previous implementation did.
	IncludeCancelled bool
}

// DefaultOptions matches the documented product default.
func DefaultOptions() Options {
	return Options{IncludeCancelled: true}
}

// SourceFromRace inspects a race and tags the window source. Precedence is
// fixed: structured schedules win over flat fields, which win over nothing.
func SourceFromRace(race models.Race, opts Options) Source {
	var schedules []models.RaceSchedule
	for _, cat := range race.Categories {
		if !opts.IncludeCancelled && cat.Status != nil && *cat.Status == models.CategoryCancelled {
			continue
		}
		for _, sch := range cat.Schedules {
			if sch.Type != models.ScheduleRegistration {
				continue
			}
			if sch.StartAt == nil && sch.EndAt == nil {
				continue
			}
			schedules = append(schedules, sch)
		}
	}
	if len(schedules) > 0 {
		return Source{Kind: SourceStructured, Schedules: schedules}
	}
	if race.RegistrationStartAt != nil || race.RegistrationEndAt != nil {
		return Source{Kind: SourceFlat, Start: race.RegistrationStartAt, End: race.RegistrationEndAt}
	}
	return Source{Kind: SourceNone}
}

// Derive resolves the canonical window for a tagged source. Structured
// schedules aggregate as min of non-null starts and max of non-null ends:
// the union of announced registration periods, not the intersection.
func Derive(src Source) Window {
	switch src.Kind {
	case SourceStructured:
		var start, end *time.Time
		for i := range src.Schedules {
			sch := src.Schedules[i]
			if sch.StartAt != nil && (start == nil || sch.StartAt.Before(*start)) {
				start = sch.StartAt
			}
			if sch.EndAt != nil && (end == nil || sch.EndAt.After(*end)) {
				end = sch.EndAt
			}
		}
		return Window{Start: start, End: end}
	case SourceFlat:
		return Window{Start: src.Start, End: src.End}
	default:
		return Window{}
	}
}

// DeriveWindow is the common path: tag the source, then derive.
func DeriveWindow(race models.Race, opts Options) Window {
	return Derive(SourceFromRace(race, opts))
}
