package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/choreboard/backend/internal/model"
	"github.com/choreboard/backend/internal/store"
)

type HouseholdHandler struct {
	households *store.HouseholdStore
	logger     *slog.Logger
}

func NewHouseholdHandler(hs *store.HouseholdStore, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{households: hs, logger: logger}
}

type householdRequest struct {
	Name      string  `json:"name"`
	CreatedBy *string `json:"created_by"`
}

func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req householdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	household, err := h.households.Create(req.Name, req.CreatedBy)
	if err != nil {
		h.logger.Error("create household", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create household"})
		return
	}

	writeJSON(w, http.StatusCreated, household)
}

func (h *HouseholdHandler) List(w http.ResponseWriter, r *http.Request) {
	households, err := h.households.List()
	if err != nil {
		h.logger.Error("list households", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list households"})
		return
	}
	if households == nil {
		households = []model.Household{}
	}
	writeJSON(w, http.StatusOK, households)
}

func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid household ID"})
		return
	}

	household, err := h.households.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get household"})
		return
	}
	if household == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "household not found"})
		return
	}
	writeJSON(w, http.StatusOK, household)
}

func (h *HouseholdHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid household ID"})
		return
	}

	existing, err := h.households.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get household"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "household not found"})
		return
	}

	var req householdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	updated, err := h.households.Update(id, req.Name)
	if err != nil {
		h.logger.Error("update household", "household_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update household"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *HouseholdHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid household ID"})
		return
	}

	existing, err := h.households.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get household"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "household not found"})
		return
	}

	if err := h.households.Delete(id); err != nil {
		h.logger.Error("delete household", "household_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete household"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
