package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/choreboard/backend/internal/database"
	"github.com/choreboard/backend/internal/event"
	"github.com/choreboard/backend/internal/model"
	"github.com/choreboard/backend/internal/store"
)

type recordedPublish struct {
	Topic string
	Event event.Event
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []recordedPublish
}

func (p *recordingPublisher) Publish(topic string, evt event.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, recordedPublish{Topic: topic, Event: evt})
	return true
}

func (p *recordingPublisher) all() []recordedPublish {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedPublish(nil), p.published...)
}

func setupChoreHandler(t *testing.T) (*ChoreHandler, *store.ChoreStore, *store.HouseholdStore, *recordingPublisher) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cs := store.NewChoreStore(db)
	hs := store.NewHouseholdStore(db)
	pub := &recordingPublisher{}
	return NewChoreHandler(cs, hs, pub, slog.Default()), cs, hs, pub
}

func makeTestHousehold(t *testing.T, hs *store.HouseholdStore) *model.Household {
	t.Helper()
	h, err := hs.Create("The Bakers", nil)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	return h
}

func decodeChore(t *testing.T, rec *httptest.ResponseRecorder) model.Chore {
	t.Helper()
	var c model.Chore
	if err := json.NewDecoder(rec.Body).Decode(&c); err != nil {
		t.Fatalf("decode chore response: %v", err)
	}
	return c
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return body["error"]
}

func TestChoreCreateHandler(t *testing.T) {
	h, _, hs, pub := setupChoreHandler(t)
	hh := makeTestHousehold(t, hs)

	body := `{"title":"Wash dishes","household_id":"` + hh.ID + `","priority":"high","recurring":"daily"}`
	req := httptest.NewRequest("POST", "/api/chores", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body)
	}
	c := decodeChore(t, rec)
	if c.Status != model.StatusPending {
		t.Errorf("new chore status = %s, want pending", c.Status)
	}
	if c.Priority != model.PriorityHigh {
		t.Errorf("priority = %s, want high", c.Priority)
	}

	events := pub.all()
	if len(events) != 1 || events[0].Topic != event.TopicChoreCreated {
		t.Fatalf("expected one %s event, got %+v", event.TopicChoreCreated, events)
	}
}

func TestChoreCreateHandlerValidation(t *testing.T) {
	h, _, hs, _ := setupChoreHandler(t)
	hh := makeTestHousehold(t, hs)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing title", `{"household_id":"` + hh.ID + `"}`, "title is required"},
		{"bad priority", `{"title":"x","household_id":"` + hh.ID + `","priority":"urgent"}`, "priority must be low, medium, or high"},
		{"bad recurring", `{"title":"x","household_id":"` + hh.ID + `","recurring":"yearly"}`, "recurring must be none, daily, weekly, or monthly"},
		{"unknown household", `{"title":"x","household_id":"` + "00000000-0000-0000-0000-000000000000" + `"}`, "household not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/chores", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Create(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if got := decodeError(t, rec); got != tt.want {
				t.Errorf("error = %q, want %q", got, tt.want)
			}
		})
	}
}

func createTestChore(t *testing.T, h *ChoreHandler, householdID, title string) model.Chore {
	t.Helper()
	body := `{"title":"` + title + `","household_id":"` + householdID + `"}`
	req := httptest.NewRequest("POST", "/api/chores", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create chore: status %d: %s", rec.Code, rec.Body)
	}
	return decodeChore(t, rec)
}

func patchStatus(t *testing.T, h *ChoreHandler, id, status string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"status":"` + status + `"}`
	req := httptest.NewRequest("PATCH", "/api/chores/"+id+"/status", strings.NewReader(body))
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)
	return rec
}

func TestUpdateStatusCompletesChore(t *testing.T) {
	h, _, hs, pub := setupChoreHandler(t)
	hh := makeTestHousehold(t, hs)
	c := createTestChore(t, h, hh.ID, "Laundry")

	if rec := patchStatus(t, h, c.ID, "in_progress"); rec.Code != http.StatusOK {
		t.Fatalf("to in_progress: status = %d: %s", rec.Code, rec.Body)
	}

	rec := patchStatus(t, h, c.ID, "completed")
	if rec.Code != http.StatusOK {
		t.Fatalf("to completed: status = %d: %s", rec.Code, rec.Body)
	}
	updated := decodeChore(t, rec)
	if updated.Status != model.StatusCompleted {
		t.Errorf("status = %s, want completed", updated.Status)
	}
	if updated.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}

	events := pub.all()
	// chores.created plus two status updates.
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	last := events[2]
	if last.Topic != event.TopicStatusUpdated {
		t.Errorf("topic = %s, want %s", last.Topic, event.TopicStatusUpdated)
	}
	if last.Event.Type != "status_updated" {
		t.Errorf("event type = %s, want status_updated", last.Event.Type)
	}
	if last.Event.PreviousStatus != model.StatusInProgress {
		t.Errorf("previous status = %s, want in_progress", last.Event.PreviousStatus)
	}
	if last.Event.NewStatus != model.StatusCompleted {
		t.Errorf("new status = %s, want completed", last.Event.NewStatus)
	}
	if last.Event.Chore == nil || last.Event.Chore.ID != c.ID {
		t.Errorf("event chore = %+v, want id %s", last.Event.Chore, c.ID)
	}
}

func TestUpdateStatusReopenClearsCompletedAt(t *testing.T) {
	h, _, hs, _ := setupChoreHandler(t)
	hh := makeTestHousehold(t, hs)
	c := createTestChore(t, h, hh.ID, "Laundry")

	patchStatus(t, h, c.ID, "completed")
	rec := patchStatus(t, h, c.ID, "pending")
	if rec.Code != http.StatusOK {
		t.Fatalf("reopen: status = %d: %s", rec.Code, rec.Body)
	}
	reopened := decodeChore(t, rec)
	if reopened.Status != model.StatusPending {
		t.Errorf("status = %s, want pending", reopened.Status)
	}
	if reopened.CompletedAt != nil {
		t.Errorf("completed_at = %v, want cleared", reopened.CompletedAt)
	}
}

func TestUpdateStatusUnknownValue(t *testing.T) {
	h, _, hs, pub := setupChoreHandler(t)
	hh := makeTestHousehold(t, hs)
	c := createTestChore(t, h, hh.ID, "Laundry")

	rec := patchStatus(t, h, c.ID, "archived")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	msg := decodeError(t, rec)
	if !strings.Contains(msg, "archived") {
		t.Errorf("error %q should name the rejected value", msg)
	}
	for _, valid := range []string{"pending", "in_progress", "completed"} {
		if !strings.Contains(msg, valid) {
			t.Errorf("error %q should list valid status %s", msg, valid)
		}
	}

	// Only the creation event; the rejected transition publishes nothing.
	if events := pub.all(); len(events) != 1 {
		t.Errorf("expected 1 event, got %d", len(events))
	}
}

func TestUpdateStatusChoreNotFound(t *testing.T) {
	h, _, _, _ := setupChoreHandler(t)

	rec := patchStatus(t, h, "6b1e2f3a-0000-4000-8000-000000000000", "completed")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestUpdateStatusSameStatusAllowed(t *testing.T) {
	h, _, hs, _ := setupChoreHandler(t)
	hh := makeTestHousehold(t, hs)
	c := createTestChore(t, h, hh.ID, "Laundry")

	rec := patchStatus(t, h, c.ID, "pending")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
}

func TestChoreUpdateHandlerCannotChangeStatus(t *testing.T) {
	h, cs, hs, _ := setupChoreHandler(t)
	hh := makeTestHousehold(t, hs)
	c := createTestChore(t, h, hh.ID, "Laundry")

	// A status field in the general update payload is ignored.
	body := `{"title":"Laundry day","household_id":"` + hh.ID + `","status":"completed"}`
	req := httptest.NewRequest("PUT", "/api/chores/"+c.ID, strings.NewReader(body))
	req.SetPathValue("id", c.ID)
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	got, err := cs.GetByID(c.ID)
	if err != nil || got == nil {
		t.Fatalf("get chore: %v", err)
	}
	if got.Title != "Laundry day" {
		t.Errorf("title = %q, want %q", got.Title, "Laundry day")
	}
	if got.Status != model.StatusPending {
		t.Errorf("status = %s, want pending", got.Status)
	}
	if got.CompletedAt != nil {
		t.Errorf("completed_at = %v, want nil", got.CompletedAt)
	}
}

func TestChoreListHandler(t *testing.T) {
	h, _, hs, _ := setupChoreHandler(t)
	hh := makeTestHousehold(t, hs)
	createTestChore(t, h, hh.ID, "Vacuum")
	createTestChore(t, h, hh.ID, "Dust")

	req := httptest.NewRequest("GET", "/api/chores?household_id="+hh.ID, nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var chores []model.Chore
	if err := json.NewDecoder(rec.Body).Decode(&chores); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(chores) != 2 {
		t.Errorf("expected 2 chores, got %d", len(chores))
	}
}

func TestChoreListHandlerEmpty(t *testing.T) {
	h, _, _, _ := setupChoreHandler(t)

	req := httptest.NewRequest("GET", "/api/chores", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q, want empty JSON array", body)
	}
}

func TestChoreDeleteHandler(t *testing.T) {
	h, cs, hs, pub := setupChoreHandler(t)
	hh := makeTestHousehold(t, hs)
	c := createTestChore(t, h, hh.ID, "Old chore")

	req := httptest.NewRequest("DELETE", "/api/chores/"+c.ID, nil)
	req.SetPathValue("id", c.ID)
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	got, err := cs.GetByID(c.ID)
	if err != nil {
		t.Fatalf("get chore: %v", err)
	}
	if got != nil {
		t.Errorf("expected chore deleted, got %+v", got)
	}

	events := pub.all()
	if len(events) != 2 || events[1].Topic != event.TopicChoreDeleted {
		t.Fatalf("expected a %s event, got %+v", event.TopicChoreDeleted, events)
	}
}

func TestChoreGetHandlerInvalidID(t *testing.T) {
	h, _, _, _ := setupChoreHandler(t)

	req := httptest.NewRequest("GET", "/api/chores/not-a-uuid", nil)
	req.SetPathValue("id", "not-a-uuid")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
