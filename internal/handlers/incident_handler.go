package handlers

import (
	"net/http"

	"orangefrog/internal/service"
)

// IncidentHandler serves incident reports
type IncidentHandler struct {
	incidents *service.IncidentService
}

func NewIncidentHandler(incidents *service.IncidentService) *IncidentHandler {
	return &IncidentHandler{incidents: incidents}
}

func (h *IncidentHandler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.incidents.ListIncidents(r.Context())
	if err != nil {
		respondWithServiceError(w, "Error listing incidents", err)
		return
	}

	views := make([]IncidentView, 0, len(incidents))
	for _, inc := range incidents {
		views = append(views, newIncidentView(inc))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *IncidentHandler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var req incidentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	inc, err := h.incidents.CreateIncident(r.Context(), service.IncidentInput{
		Name:        req.Name,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Request:     req.Request,
		Description: req.Description,
	})
	if err != nil {
		respondWithServiceError(w, "Error creating incident", err)
		return
	}
	writeJSON(w, http.StatusCreated, newIncidentView(*inc))
}
