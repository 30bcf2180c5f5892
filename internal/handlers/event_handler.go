package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"

	"orangefrog/internal/models"
	"orangefrog/internal/service"
)

// EventHandler serves the event lifecycle API
type EventHandler struct {
	events *service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(events *service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// ListEvents returns every event with its contractors
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	details, err := h.events.ListEvents(r.Context())
	if err != nil {
		respondWithServiceError(w, "Error listing events", err)
		return
	}

	views := make([]EventView, 0, len(details))
	for _, d := range details {
		views = append(views, newEventView(d))
	}
	writeJSON(w, http.StatusOK, views)
}

// CreateEvent creates an event and invites its contractors
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := h.events.CreateEvent(r.Context(), req.input())
	if err != nil {
		respondWithServiceError(w, "Error creating event", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// GetEvent returns one event with all membership lists
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	detail, err := h.events.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, "Error loading event", err)
		return
	}
	writeJSON(w, http.StatusOK, newEventView(*detail))
}

// UpdateEvent edits an event and replaces its invited contractors
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id := r.PathValue("id")
	if _, err := h.events.EditEvent(r.Context(), id, req.input()); err != nil {
		respondWithServiceError(w, "Error updating event", err)
		return
	}
	h.writeEvent(w, r, id)
}

// DeleteEvent removes an event
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.events.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		respondWithServiceError(w, "Error deleting event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetStatus changes the event's own status
func (h *EventHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id := r.PathValue("id")
	if _, err := h.events.SetEventStatus(r.Context(), id, models.EventStatus(req.Status)); err != nil {
		respondWithServiceError(w, "Error updating event status", err)
		return
	}
	h.writeEvent(w, r, id)
}

// Apply records a contractor accepting an invitation
func (h *EventHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.events.ApplyToEvent(r.Context(), r.PathValue("id"), req.Email); err != nil {
		respondWithServiceError(w, "Error applying to event", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(models.MemberApplied)})
}

// Reject records a contractor turning an invitation down
func (h *EventHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.events.RejectEvent(r.Context(), r.PathValue("id"), req.Email); err != nil {
		respondWithServiceError(w, "Error rejecting event", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(models.MemberDeclined)})
}

// Decide approves or denies an applicant
func (h *EventHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.events.DecideContractor(r.Context(), r.PathValue("id"), req.ContractorID, req.Approved); err != nil {
		respondWithServiceError(w, "Error deciding contractor", err)
		return
	}

	status := models.MemberDeclined
	if req.Approved {
		status = models.MemberApproved
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

// Roster downloads the event roster as CSV
func (h *EventHandler) Roster(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var buf bytes.Buffer
	if err := h.events.RosterCSV(r.Context(), id, &buf); err != nil {
		respondWithServiceError(w, "Error exporting roster", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=roster_%s.csv", id))
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Error writing roster for event %s: %v", id, err)
	}
}

// AcceptInvite applies through a signed link from an invitation email
func (h *EventHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	eventID, err := h.events.AcceptInviteToken(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		respondWithServiceError(w, "Error accepting invite", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"eventId": eventID, "status": string(models.MemberApplied)})
}

// ContractorEvents lists the jobs currently visible to a contractor
func (h *EventHandler) ContractorEvents(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.events.ListContractorEvents(r.Context(), r.PathValue("email"))
	if err != nil {
		respondWithServiceError(w, "Error listing contractor events", err)
		return
	}
	writeJSON(w, http.StatusOK, newJobViews(jobs))
}

// ContractorInvitations lists invitations a contractor can still answer
func (h *EventHandler) ContractorInvitations(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.events.ListOpenInvitations(r.Context(), r.PathValue("email"))
	if err != nil {
		respondWithServiceError(w, "Error listing invitations", err)
		return
	}
	writeJSON(w, http.StatusOK, newJobViews(jobs))
}

func (h *EventHandler) writeEvent(w http.ResponseWriter, r *http.Request, id string) {
	detail, err := h.events.GetEvent(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, "Error loading event", err)
		return
	}
	writeJSON(w, http.StatusOK, newEventView(*detail))
}
