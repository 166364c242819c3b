package dto

import (
	"time"

	"github.com/mrth-run/mrth-api/internal/models"
)

// RaceSummary is the listing card shape for public race pages.
type RaceSummary struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	EventDate  string     `json:"event_date"`
	EventAt    time.Time  `json:"event_at"`
	Region     *string    `json:"region,omitempty"`
	City       *string    `json:"city,omitempty"`
	Venue      *string    `json:"venue,omitempty"`
	Categories []string   `json:"categories"`
	Status     string     `json:"status"`
	RegStartAt *time.Time `json:"registration_start_at,omitempty"`
	RegEndAt   *time.Time `json:"registration_end_at,omitempty"`
	IsFeatured bool       `json:"is_featured"`
	IsUrgent   bool       `json:"is_urgent"`
}

// RaceDetail is the full race page payload.
type RaceDetail struct {
	models.Race
	EventDate  string     `json:"event_date"`
	Status     string     `json:"status"`
	RegStartAt *time.Time `json:"registration_start_at_derived,omitempty"`
	RegEndAt   *time.Time `json:"registration_end_at_derived,omitempty"`
}

// ListRacesQuery captures the public race listing filters.
type ListRacesQuery struct {
	Region   string `form:"region"`
	Status   string `form:"status"`
	Distance string `form:"distance"`
	Query    string `form:"q"`
	Sort     string `form:"sort"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// UpdateRaceRequest is the admin race editing payload. Categories, when
// present, replace the stored set wholesale together with their schedules.
type UpdateRaceRequest struct {
	Title        string  `json:"title" validate:"required"`
	TitleEn      *string `json:"title_en"`
	Description  *string `json:"description"`
	EventStartAt string  `json:"event_start_at" validate:"required"`
	EventTime    *string `json:"event_time"`
	Country      *string `json:"country"`
	Region       *string `json:"region"`
	City         *string `json:"city"`
	Venue        *string `json:"venue"`
	Organizer    *string `json:"organizer"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Website      *string `json:"website"`
	GeneralGuide *string `json:"general_guide"`
	IsFeatured   bool    `json:"is_featured"`
	IsUrgent     bool    `json:"is_urgent"`

	RegistrationStartAt *string `json:"registration_start_at"`
	RegistrationEndAt   *string `json:"registration_end_at"`
	RegistrationStatus  *string `json:"registration_status"`

	Categories []UpdateCategoryRequest `json:"categories"`
}

// UpdateCategoryRequest is one division within an admin race update.
type UpdateCategoryRequest struct {
	RawName       string                  `json:"raw_name" validate:"required"`
	CanonicalName *string                 `json:"canonical_name"`
	DistanceKm    *float64                `json:"distance_km"`
	CategoryType  *string                 `json:"category_type"`
	Status        *string                 `json:"status"`
	StartTime     *string                 `json:"start_time"`
	Schedules     []UpdateScheduleRequest `json:"schedules"`
}

// UpdateScheduleRequest is one typed sub-window within a category update.
type UpdateScheduleRequest struct {
	Type    string  `json:"type" validate:"required,oneof=REGISTRATION PAYMENT"`
	StartAt *string `json:"start_at"`
	EndAt   *string `json:"end_at"`
	Label   *string `json:"label"`
}
