package repository

import (
	"context"
	"fmt"
	"time"

	"orangefrog/internal/database"
	"orangefrog/internal/models"
)

// IncidentRepository stores incident reports
type IncidentRepository struct {
	db *database.DB
}

func NewIncidentRepository(db *database.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

// CreateIncident inserts a new incident report
func (r *IncidentRepository) CreateIncident(ctx context.Context, inc *models.Incident) (*models.Incident, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO incidents (name, start_date, end_date, request, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, inc.Name, inc.StartDate.UTC(), inc.EndDate.UTC(), inc.Request, inc.Description, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create incident: %w", err)
	}

	created := *inc
	created.ID = id
	created.CreatedAt = now
	return &created, nil
}

// GetAllIncidents returns incident reports, newest first
func (r *IncidentRepository) GetAllIncidents(ctx context.Context) ([]models.Incident, error) {
	query := `
		SELECT id, name, start_date, end_date, request, description, created_at
		FROM incidents
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	var incidents []models.Incident
	for rows.Next() {
		var inc models.Incident
		if err := rows.Scan(&inc.ID, &inc.Name, &inc.StartDate, &inc.EndDate, &inc.Request, &inc.Description, &inc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incidents: %w", err)
	}
	return incidents, nil
}
