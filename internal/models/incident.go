package models

import "time"

// Incident is a report filed about something that happened on site
type Incident struct {
	ID          int64
	Name        string
	StartDate   time.Time
	EndDate     time.Time
	Request     string
	Description string
	CreatedAt   time.Time
}
