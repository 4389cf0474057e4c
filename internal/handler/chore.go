package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/choreboard/backend/internal/chore"
	"github.com/choreboard/backend/internal/event"
	"github.com/choreboard/backend/internal/model"
	"github.com/choreboard/backend/internal/store"
)

type ChoreHandler struct {
	chores     *store.ChoreStore
	households *store.HouseholdStore
	events     event.Publisher
	logger     *slog.Logger
}

func NewChoreHandler(cs *store.ChoreStore, hs *store.HouseholdStore, events event.Publisher, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{chores: cs, households: hs, events: events, logger: logger}
}

type choreRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssignedTo  *string    `json:"assigned_to"`
	HouseholdID string     `json:"household_id"`
	DueDate     *time.Time `json:"due_date"`
	Priority    string     `json:"priority"`
	Recurring   string     `json:"recurring"`
	CreatedBy   *string    `json:"created_by"`
}

// normalize applies defaults and validates enum fields. It returns a
// user-facing message for the first problem found, or "".
func (req *choreRequest) normalize() string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if req.Priority == "" {
		req.Priority = string(model.PriorityMedium)
	}
	if !model.Priority(req.Priority).Valid() {
		return "priority must be low, medium, or high"
	}
	if req.Recurring == "" {
		req.Recurring = string(model.RecurNone)
	}
	if !model.Recurrence(req.Recurring).Valid() {
		return "recurring must be none, daily, weekly, or monthly"
	}
	return ""
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req choreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if msg := req.normalize(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	household, err := h.households.GetByID(req.HouseholdID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check household"})
		return
	}
	if household == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "household not found"})
		return
	}

	created, err := h.chores.Create(req.Title, req.Description, req.AssignedTo, req.HouseholdID, req.DueDate, model.Priority(req.Priority), model.Recurrence(req.Recurring), req.CreatedBy)
	if err != nil {
		h.logger.Error("create chore", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create chore"})
		return
	}

	_ = h.events.Publish(event.TopicChoreCreated, event.New("created", created))

	writeJSON(w, http.StatusCreated, created)
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	chores, err := h.chores.List(r.URL.Query().Get("household_id"))
	if err != nil {
		h.logger.Error("list chores", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list chores"})
		return
	}
	if chores == nil {
		chores = []model.Chore{}
	}
	writeJSON(w, http.StatusOK, chores)
}

func (h *ChoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid chore ID"})
		return
	}

	c, err := h.chores.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get chore"})
		return
	}
	if c == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chore not found"})
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Update replaces a chore's editable fields. Status is not accepted here:
// it only changes through UpdateStatus, so every transition passes the
// validator.
func (h *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid chore ID"})
		return
	}

	existing, err := h.chores.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get chore"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chore not found"})
		return
	}

	var req choreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if msg := req.normalize(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	updated, err := h.chores.Update(id, req.Title, req.Description, req.AssignedTo, req.DueDate, model.Priority(req.Priority), model.Recurrence(req.Recurring))
	if err != nil {
		h.logger.Error("update chore", "chore_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update chore"})
		return
	}

	_ = h.events.Publish(event.TopicChoreUpdated, event.New("updated", updated))

	writeJSON(w, http.StatusOK, updated)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/chores/{id}/status. A rejected
// transition surfaces as a 400 carrying the validator's reason. A failed
// event publish must not fail the status update.
func (h *ChoreHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid chore ID"})
		return
	}

	existing, err := h.chores.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get chore"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chore not found"})
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	next := model.Status(req.Status)
	decision := chore.ValidateTransition(existing.Status, next)
	if !decision.Allowed {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": decision.Reason})
		return
	}

	upd := chore.PrepareUpdate(existing.Status, next, time.Now())
	updated, err := h.chores.UpdateStatus(id, upd)
	if err != nil {
		h.logger.Error("update chore status", "chore_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update chore status"})
		return
	}

	evt := event.New("status_updated", updated)
	evt.PreviousStatus = existing.Status
	evt.NewStatus = updated.Status
	_ = h.events.Publish(event.TopicStatusUpdated, evt)

	writeJSON(w, http.StatusOK, updated)
}

func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid chore ID"})
		return
	}

	existing, err := h.chores.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get chore"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chore not found"})
		return
	}

	if err := h.chores.Delete(id); err != nil {
		h.logger.Error("delete chore", "chore_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete chore"})
		return
	}

	_ = h.events.Publish(event.TopicChoreDeleted, event.New("deleted", existing))

	w.WriteHeader(http.StatusNoContent)
}
