package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health answers liveness checks, including a database ping
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			respondWithError(w, http.StatusServiceUnavailable, ErrServiceUnavailable, "Health check failed", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Routes builds the API router
func Routes(db Pinger, events *EventHandler, contractors *ContractorHandler, incidents *IncidentHandler, middleware *Middleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", Health(db))

	mux.HandleFunc("GET /api/events", events.ListEvents)
	mux.HandleFunc("POST /api/events", events.CreateEvent)
	mux.HandleFunc("GET /api/events/{id}", events.GetEvent)
	mux.HandleFunc("PUT /api/events/{id}", events.UpdateEvent)
	mux.HandleFunc("DELETE /api/events/{id}", events.DeleteEvent)
	mux.HandleFunc("PUT /api/events/{id}/status", events.SetStatus)
	mux.HandleFunc("POST /api/events/{id}/apply", middleware.RateLimit(events.Apply))
	mux.HandleFunc("POST /api/events/{id}/reject", middleware.RateLimit(events.Reject))
	mux.HandleFunc("POST /api/events/{id}/decide", events.Decide)
	mux.HandleFunc("GET /api/events/{id}/roster.csv", events.Roster)
	mux.HandleFunc("GET /api/invites/accept", middleware.RateLimit(events.AcceptInvite))

	mux.HandleFunc("GET /api/contractors", contractors.ListContractors)
	mux.HandleFunc("POST /api/contractors", contractors.CreateContractor)
	mux.HandleFunc("GET /api/contractors/{email}", contractors.GetContractor)
	mux.HandleFunc("PUT /api/contractors/{id}/status", contractors.SetStatus)
	mux.HandleFunc("POST /api/contractors/{id}/credentials", contractors.ResendCredentials)
	mux.HandleFunc("DELETE /api/contractors/{id}", contractors.DeleteContractor)
	mux.HandleFunc("GET /api/contractors/{email}/events", events.ContractorEvents)
	mux.HandleFunc("GET /api/contractors/{email}/invitations", events.ContractorInvitations)

	mux.HandleFunc("GET /api/incidents", incidents.ListIncidents)
	mux.HandleFunc("POST /api/incidents", incidents.CreateIncident)

	return Logging(mux)
}
