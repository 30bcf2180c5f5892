package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"orangefrog/internal/database"
	"orangefrog/internal/models"
)

// ErrVersionConflict is returned by SaveEvent when the stored version moved on
var ErrVersionConflict = errors.New("event version conflict")

const eventColumns = "id, name, location, load_in, load_out, hours, description, status, version, created_at, updated_at"

// EventRepository handles database operations for events and their memberships
type EventRepository struct {
	db *database.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

func scanEvent(row rowScanner) (*models.Event, error) {
	ev := &models.Event{Members: make(map[int64]models.Membership)}
	var status string
	if err := row.Scan(
		&ev.ID,
		&ev.Name,
		&ev.Location,
		&ev.LoadIn,
		&ev.LoadOut,
		&ev.Hours,
		&ev.Description,
		&status,
		&ev.Version,
		&ev.CreatedAt,
		&ev.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ev.Status = models.EventStatus(status)
	return ev, nil
}

// CreateEvent inserts an event with its initial memberships at version 1
func (r *EventRepository) CreateEvent(ctx context.Context, ev *models.Event) error {
	now := time.Now().UTC()
	err := r.db.InTx(ctx, func(tx *database.Tx) error {
		query := `
			INSERT INTO events (id, name, location, load_in, load_out, hours, description, status, version, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, query,
			ev.ID, ev.Name, ev.Location, ev.LoadIn.UTC(), ev.LoadOut.UTC(), ev.Hours, ev.Description,
			string(ev.Status), now, now,
		); err != nil {
			return err
		}
		return insertMembers(ctx, tx, ev)
	})
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	ev.Version = 1
	ev.CreatedAt = now
	ev.UpdatedAt = now
	return nil
}

// GetEventByID retrieves an event with all memberships, or nil if missing
func (r *EventRepository) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	query := "SELECT " + eventColumns + " FROM events WHERE id = ?"
	ev, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if err := r.loadMembers(ctx, []*models.Event{ev}); err != nil {
		return nil, err
	}
	return ev, nil
}

// GetAllEvents retrieves every event ordered by load-in
func (r *EventRepository) GetAllEvents(ctx context.Context) ([]*models.Event, error) {
	query := "SELECT " + eventColumns + " FROM events ORDER BY load_in, id"
	return r.queryEvents(ctx, query)
}

// GetEventsForContractor retrieves the events a contractor was invited to
func (r *EventRepository) GetEventsForContractor(ctx context.Context, contractorID int64) ([]*models.Event, error) {
	query := `
		SELECT e.id, e.name, e.location, e.load_in, e.load_out, e.hours, e.description, e.status, e.version, e.created_at, e.updated_at
		FROM events e
		JOIN event_contractors ec ON ec.event_id = e.id
		WHERE ec.contractor_id = ?
		ORDER BY e.load_in, e.id
	`
	return r.queryEvents(ctx, query, contractorID)
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*models.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	if err := r.loadMembers(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

// loadMembers fills Members for the given events with a single query
func (r *EventRepository) loadMembers(ctx context.Context, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}

	byID := make(map[string]*models.Event, len(events))
	ids := make([]string, 0, len(events))
	for _, ev := range events {
		byID[ev.ID] = ev
		ids = append(ids, ev.ID)
	}

	query, args, err := sq.Select("event_id, contractor_id, status, decided_at, updated_at").
		From("event_contractors").
		Where(sq.Eq{"event_id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build membership query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			eventID      string
			contractorID int64
			status       string
			decidedAt    sql.NullTime
			m            models.Membership
		)
		if err := rows.Scan(&eventID, &contractorID, &status, &decidedAt, &m.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan membership: %w", err)
		}
		m.Status = models.MemberStatus(status)
		if decidedAt.Valid {
			t := decidedAt.Time
			m.DecidedAt = &t
		}
		if ev, ok := byID[eventID]; ok {
			ev.Members[contractorID] = m
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate memberships: %w", err)
	}
	return nil
}

// SaveEvent writes ev if the stored version still equals ev.Version.
// On success ev.Version is incremented; otherwise ErrVersionConflict is returned
// and nothing is written.
func (r *EventRepository) SaveEvent(ctx context.Context, ev *models.Event) error {
	now := time.Now().UTC()
	err := r.db.InTx(ctx, func(tx *database.Tx) error {
		query := `
			UPDATE events
			SET name = ?, location = ?, load_in = ?, load_out = ?, hours = ?, description = ?, status = ?,
				version = version + 1, updated_at = ?
			WHERE id = ? AND version = ?
		`
		result, err := tx.ExecContext(ctx, query,
			ev.Name, ev.Location, ev.LoadIn.UTC(), ev.LoadOut.UTC(), ev.Hours, ev.Description, string(ev.Status),
			now, ev.ID, ev.Version,
		)
		if err != nil {
			return err
		}
		ok, err := affected(result)
		if err != nil {
			return err
		}
		if !ok {
			return ErrVersionConflict
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM event_contractors WHERE event_id = ?", ev.ID); err != nil {
			return err
		}
		return insertMembers(ctx, tx, ev)
	})
	if errors.Is(err, ErrVersionConflict) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}

	ev.Version++
	ev.UpdatedAt = now
	return nil
}

// DeleteEvent removes an event and its memberships, reporting whether it existed
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) (bool, error) {
	var found bool
	err := r.db.InTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM event_contractors WHERE event_id = ?", id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
		if err != nil {
			return err
		}
		found, err = affected(result)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete event: %w", err)
	}
	return found, nil
}

func insertMembers(ctx context.Context, tx *database.Tx, ev *models.Event) error {
	query := `
		INSERT INTO event_contractors (event_id, contractor_id, status, decided_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, id := range ev.Invited() {
		m := ev.Members[id]
		var decidedAt any
		if m.DecidedAt != nil {
			decidedAt = m.DecidedAt.UTC()
		}
		updatedAt := m.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now()
		}
		if _, err := tx.ExecContext(ctx, query, ev.ID, id, string(m.Status), decidedAt, updatedAt.UTC()); err != nil {
			return fmt.Errorf("failed to insert membership for contractor %d: %w", id, err)
		}
	}
	return nil
}
