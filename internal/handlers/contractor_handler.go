package handlers

import (
	"net/http"
	"strconv"

	"orangefrog/internal/models"
	"orangefrog/internal/service"
)

// ContractorHandler serves the contractor directory API
type ContractorHandler struct {
	contractors *service.ContractorService
}

// NewContractorHandler creates a new contractor handler
func NewContractorHandler(contractors *service.ContractorService) *ContractorHandler {
	return &ContractorHandler{contractors: contractors}
}

func (h *ContractorHandler) ListContractors(w http.ResponseWriter, r *http.Request) {
	contractors, err := h.contractors.ListContractors(r.Context())
	if err != nil {
		respondWithServiceError(w, "Error listing contractors", err)
		return
	}

	views := make([]ContractorView, 0, len(contractors))
	for _, c := range contractors {
		views = append(views, newContractorView(c))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *ContractorHandler) CreateContractor(w http.ResponseWriter, r *http.Request) {
	var req contractorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.contractors.CreateContractor(r.Context(), service.ContractorInput{
		Email:        req.Email,
		Name:         req.Name,
		HourlyRate:   req.HourlyRate,
		Address:      req.Address,
		Phone:        req.Phone,
		ShirtSize:    req.ShirtSize,
		FirstAidCert: req.FirstAidCert,
		Allergies:    req.Allergies,
	})
	if err != nil {
		respondWithServiceError(w, "Error creating contractor", err)
		return
	}
	writeJSON(w, http.StatusCreated, newContractorView(*c))
}

func (h *ContractorHandler) GetContractor(w http.ResponseWriter, r *http.Request) {
	c, err := h.contractors.GetByEmail(r.Context(), r.PathValue("email"))
	if err != nil {
		respondWithServiceError(w, "Error loading contractor", err)
		return
	}
	writeJSON(w, http.StatusOK, newContractorView(*c))
}

func (h *ContractorHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.contractors.SetStatus(r.Context(), id, models.ContractorStatus(req.Status)); err != nil {
		respondWithServiceError(w, "Error updating contractor status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

func (h *ContractorHandler) ResendCredentials(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.contractors.ResendCredentials(r.Context(), id); err != nil {
		respondWithServiceError(w, "Error resending credentials", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *ContractorHandler) DeleteContractor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.contractors.DeleteContractor(r.Context(), id); err != nil {
		respondWithServiceError(w, "Error deleting contractor", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, ErrInvalidID, "", nil)
		return 0, false
	}
	return id, true
}
