package dto

import "time"

// ScheduleEntry is one race on the weekly registration timeline.
type ScheduleEntry struct {
	RaceID    string  `json:"race_id"`
	Title     string  `json:"title"`
	Region    *string `json:"region,omitempty"`
	EventDate string  `json:"event_date"`
	Time      string  `json:"time"`
	Status    string  `json:"status"`
}

// ScheduleDay is one KST calendar day of the weekly timeline.
type ScheduleDay struct {
	Date       string          `json:"date"`
	Label      string          `json:"label"`
	IsPast     bool            `json:"is_past"`
	IsToday    bool            `json:"is_today"`
	IsTomorrow bool            `json:"is_tomorrow"`
	OpenCount  int             `json:"open_count"`
	Entries    []ScheduleEntry `json:"entries"`
}

// WeeklyScheduleResponse is the full weekly timeline payload.
type WeeklyScheduleResponse struct {
	WeekStart   string        `json:"week_start"`
	WeekEnd     string        `json:"week_end"`
	CurrentTime string        `json:"current_time"`
	Days        []ScheduleDay `json:"days"`
}

// UrgentRace is one race whose registration closes soon.
type UrgentRace struct {
	RaceID     string     `json:"race_id"`
	Title      string     `json:"title"`
	Region     *string    `json:"region,omitempty"`
	EventDate  string     `json:"event_date"`
	ClosesAt   time.Time  `json:"closes_at"`
	ClosesIn   string     `json:"closes_in"`
	RegStartAt *time.Time `json:"registration_start_at,omitempty"`
}

// UrgentScheduleResponse lists races closing within the urgency horizon.
type UrgentScheduleResponse struct {
	CurrentTime string       `json:"current_time"`
	WithinHours int          `json:"within_hours"`
	Races       []UrgentRace `json:"races"`
}
