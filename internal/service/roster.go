package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"orangefrog/internal/models"
)

// RosterRow is one contractor line of an event roster export
type RosterRow struct {
	ContractorID int64   `csv:"contractor_id"`
	Name         string  `csv:"name"`
	Email        string  `csv:"email"`
	Status       string  `csv:"status"`
	HourlyRate   float64 `csv:"hourly_rate"`
	Hours        float64 `csv:"hours"`
	EstimatedPay string  `csv:"estimated_pay"`
	DecidedAt    string  `csv:"decided_at"`
}

// RosterRows builds the roster for an event, ordered by contractor id
func RosterRows(detail *EventDetail) []*RosterRow {
	ev := detail.Event
	rows := make([]*RosterRow, 0, len(detail.Invited))
	for _, c := range detail.Invited {
		m, _ := ev.Member(c.ID)
		row := &RosterRow{
			ContractorID: c.ID,
			Name:         c.Name,
			Email:        c.Email,
			Status:       string(m.Status),
			HourlyRate:   c.HourlyRate,
			Hours:        ev.Hours,
		}
		if m.Status == models.MemberApproved {
			row.EstimatedPay = fmt.Sprintf("%.2f", c.HourlyRate*ev.Hours)
		}
		if m.DecidedAt != nil {
			row.DecidedAt = m.DecidedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, row)
	}
	return rows
}

// RosterCSV writes the event roster as CSV to w
func (s *EventService) RosterCSV(ctx context.Context, eventID string, w io.Writer) error {
	detail, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if err := gocsv.Marshal(RosterRows(detail), w); err != nil {
		return fmt.Errorf("failed to write roster: %w", err)
	}
	return nil
}
