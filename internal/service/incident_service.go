package service

import (
	"context"
	"log"
	"strings"
	"time"

	"orangefrog/internal/models"
	"orangefrog/internal/repository"
	"orangefrog/internal/validation"
)

// IncidentInput is a new incident report
type IncidentInput struct {
	Name        string
	StartDate   time.Time
	EndDate     time.Time
	Request     string
	Description string
}

// IncidentService files and lists incident reports
type IncidentService struct {
	repo *repository.IncidentRepository
}

func NewIncidentService(repo *repository.IncidentRepository) *IncidentService {
	return &IncidentService{repo: repo}
}

// CreateIncident validates and stores a report
func (s *IncidentService) CreateIncident(ctx context.Context, in IncidentInput) (*models.Incident, error) {
	if err := validation.ValidateIncident(in.Name, in.Description, in.StartDate, in.EndDate); err != nil {
		return nil, err
	}

	inc, err := s.repo.CreateIncident(ctx, &models.Incident{
		Name:        strings.TrimSpace(in.Name),
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Request:     in.Request,
		Description: in.Description,
	})
	if err != nil {
		return nil, storageErr("create incident", err)
	}
	log.Printf("Incident reported: id=%d, name=%s", inc.ID, inc.Name)
	return inc, nil
}

// ListIncidents returns all reports, newest first
func (s *IncidentService) ListIncidents(ctx context.Context) ([]models.Incident, error) {
	incidents, err := s.repo.GetAllIncidents(ctx)
	if err != nil {
		return nil, storageErr("list incidents", err)
	}
	return incidents, nil
}
