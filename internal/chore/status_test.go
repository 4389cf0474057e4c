package chore

import (
	"strings"
	"testing"
	"time"

	"github.com/choreboard/backend/internal/model"
)

func TestValidateTransitionSameStatus(t *testing.T) {
	for _, s := range model.Statuses() {
		d := ValidateTransition(s, s)
		if !d.Allowed {
			t.Errorf("ValidateTransition(%s, %s).Allowed = false, want true", s, s)
		}
		if d.Reason != "status unchanged" {
			t.Errorf("reason = %q, want %q", d.Reason, "status unchanged")
		}
	}
}

func TestValidateTransitionAllPairs(t *testing.T) {
	// The 3-node graph is fully connected: every distinct pair is legal.
	for _, from := range model.Statuses() {
		for _, to := range model.Statuses() {
			if from == to {
				continue
			}
			d := ValidateTransition(from, to)
			if !d.Allowed {
				t.Errorf("ValidateTransition(%s, %s).Allowed = false, want true (reason %q)", from, to, d.Reason)
			}
		}
	}
}

func TestValidateTransitionUnknownStatus(t *testing.T) {
	d := ValidateTransition(model.StatusPending, model.Status("archived"))
	if d.Allowed {
		t.Fatal("expected unknown status to be rejected")
	}
	if !strings.Contains(d.Reason, "archived") {
		t.Errorf("reason %q does not name the invalid value", d.Reason)
	}
	for _, valid := range []string{"pending", "in_progress", "completed"} {
		if !strings.Contains(d.Reason, valid) {
			t.Errorf("reason %q does not list valid status %q", d.Reason, valid)
		}
	}
}

func TestValidateTransitionEmptyStatus(t *testing.T) {
	d := ValidateTransition(model.StatusCompleted, model.Status(""))
	if d.Allowed {
		t.Fatal("expected empty status to be rejected")
	}
}

func TestPrepareUpdateEnteringCompleted(t *testing.T) {
	now := time.Date(2023, 12, 1, 10, 0, 0, 0, time.UTC)

	upd := PrepareUpdate(model.StatusInProgress, model.StatusCompleted, now)
	if upd.Status != model.StatusCompleted {
		t.Errorf("status = %s, want completed", upd.Status)
	}
	if !upd.SetCompletedAt {
		t.Fatal("expected completed_at to be part of the update")
	}
	if upd.CompletedAt == nil || !upd.CompletedAt.Equal(now) {
		t.Errorf("completed_at = %v, want %v", upd.CompletedAt, now)
	}
}

func TestPrepareUpdateLeavingCompleted(t *testing.T) {
	now := time.Date(2023, 12, 1, 10, 0, 0, 0, time.UTC)

	upd := PrepareUpdate(model.StatusCompleted, model.StatusPending, now)
	if upd.Status != model.StatusPending {
		t.Errorf("status = %s, want pending", upd.Status)
	}
	if !upd.SetCompletedAt {
		t.Fatal("expected completed_at to be cleared")
	}
	if upd.CompletedAt != nil {
		t.Errorf("completed_at = %v, want nil", upd.CompletedAt)
	}
}

func TestPrepareUpdateLateralMove(t *testing.T) {
	now := time.Date(2023, 12, 1, 10, 0, 0, 0, time.UTC)

	// pending <-> in_progress never touches completed_at.
	for _, tc := range []struct{ from, to model.Status }{
		{model.StatusPending, model.StatusInProgress},
		{model.StatusInProgress, model.StatusPending},
	} {
		upd := PrepareUpdate(tc.from, tc.to, now)
		if upd.SetCompletedAt {
			t.Errorf("PrepareUpdate(%s, %s) touches completed_at, want untouched", tc.from, tc.to)
		}
	}
}

func TestPrepareUpdateCompletedToCompleted(t *testing.T) {
	now := time.Date(2023, 12, 1, 10, 0, 0, 0, time.UTC)

	// A no-op completed -> completed must not restamp the timestamp.
	upd := PrepareUpdate(model.StatusCompleted, model.StatusCompleted, now)
	if upd.SetCompletedAt {
		t.Error("expected completed_at untouched for completed -> completed")
	}
}

func TestPrepareUpdateStampsUTC(t *testing.T) {
	loc := time.FixedZone("PST", -8*3600)
	now := time.Date(2023, 12, 1, 2, 0, 0, 0, loc)

	upd := PrepareUpdate(model.StatusPending, model.StatusCompleted, now)
	if upd.CompletedAt.Location() != time.UTC {
		t.Errorf("completed_at location = %v, want UTC", upd.CompletedAt.Location())
	}
}
