package models

import "time"

// RegistrationStatus is the coarse per-race status kept only for races
// without structured category/schedule rows. The derived status in
// regwindow supersedes it whenever schedules exist.
type RegistrationStatus string

const (
	RegistrationOpen    RegistrationStatus = "open"
	RegistrationClosed  RegistrationStatus = "closed"
	RegistrationUnknown RegistrationStatus = "unknown"
)

// CategoryStatus is the hand-set per-category status of the legacy schema.
// Newer rows leave it NULL and rely on time-derived status.
type CategoryStatus string

const (
	CategoryUpcoming  CategoryStatus = "UPCOMING"
	CategoryOpen      CategoryStatus = "OPEN"
	CategoryClosed    CategoryStatus = "CLOSED"
	CategoryCancelled CategoryStatus = "CANCELLED"
)

// ScheduleType distinguishes the sub-windows attached to a category. Only
// REGISTRATION schedules feed registration-window derivation; PAYMENT
// schedules are display-only.
type ScheduleType string

const (
	ScheduleRegistration ScheduleType = "REGISTRATION"
	SchedulePayment      ScheduleType = "PAYMENT"
)

// Race represents one event stored in the races table.
type Race struct {
	ID           string    `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	TitleEn      *string   `db:"title_en" json:"title_en,omitempty"`
	Description  *string   `db:"description" json:"description,omitempty"`
	EventStartAt time.Time `db:"event_start_at" json:"event_start_at"`
	EventTime    *string   `db:"event_time" json:"event_time,omitempty"`
	Timezone     string    `db:"timezone" json:"timezone"`
	Country      *string   `db:"country" json:"country,omitempty"`
	Region       *string   `db:"region" json:"region,omitempty"`
	City         *string   `db:"city" json:"city,omitempty"`
	Venue        *string   `db:"venue" json:"venue,omitempty"`
	Organizer    *string   `db:"organizer" json:"organizer,omitempty"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Email        *string   `db:"email" json:"email,omitempty"`
	Website      *string   `db:"website" json:"website,omitempty"`
	GeneralGuide *string   `db:"general_guide" json:"general_guide,omitempty"`
	IsFeatured   bool      `db:"is_featured" json:"is_featured"`
	IsUrgent     bool      `db:"is_urgent" json:"is_urgent"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	// Legacy flat window. Fallback only: when categories carry
	// REGISTRATION schedules those win, these are ignored.
	RegistrationStartAt *time.Time          `db:"registration_start_at" json:"registration_start_at,omitempty"`
	RegistrationEndAt   *time.Time          `db:"registration_end_at" json:"registration_end_at,omitempty"`
	RegistrationStatus  *RegistrationStatus `db:"registration_status" json:"registration_status,omitempty"`

	Categories []RaceCategory `db:"-" json:"categories,omitempty"`
}

// RaceCategory is one division/distance within a race.
type RaceCategory struct {
	ID            string          `db:"id" json:"id"`
	RaceID        string          `db:"race_id" json:"race_id"`
	RawName       string          `db:"raw_name" json:"raw_name"`
	CanonicalName *string         `db:"canonical_name" json:"canonical_name,omitempty"`
	DistanceKm    *float64        `db:"distance_km" json:"distance_km,omitempty"`
	CategoryType  *string         `db:"category_type" json:"category_type,omitempty"`
	Status        *CategoryStatus `db:"status" json:"status,omitempty"`
	StartTime     *string         `db:"start_time" json:"start_time,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`

	Schedules []RaceSchedule `db:"-" json:"schedules,omitempty"`
}

// DisplayName prefers the canonical name over the raw crawler name.
func (c RaceCategory) DisplayName() string {
	if c.CanonicalName != nil && *c.CanonicalName != "" {
		return *c.CanonicalName
	}
	return c.RawName
}

// RaceSchedule is a typed sub-window belonging to a category.
type RaceSchedule struct {
	ID         string       `db:"id" json:"id"`
	CategoryID string       `db:"category_id" json:"category_id"`
	Type       ScheduleType `db:"type" json:"type"`
	StartAt    *time.Time   `db:"start_at" json:"start_at,omitempty"`
	EndAt      *time.Time   `db:"end_at" json:"end_at,omitempty"`
	Label      *string      `db:"label" json:"label,omitempty"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
}

// RaceSort enumerates the supported list orderings.
type RaceSort string

const (
	SortByDate         RaceSort = "date"
	SortByRegistration RaceSort = "registration"
	SortByPopular      RaceSort = "popular"
)

// RegionCount pairs a region with its number of upcoming races.
type RegionCount struct {
	Region string `db:"region" json:"region"`
	Count  int    `db:"count" json:"count"`
}

// RaceFilter narrows down race listings.
type RaceFilter struct {
	Region     string
	Status     string // upcoming|open|closed, applied on the derived window
	Distance   string // full|half|10km|5km
	Query      string
	FutureOnly bool
	Sort       RaceSort
	Page       int
	PageSize   int
}
