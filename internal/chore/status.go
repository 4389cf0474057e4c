package chore

import (
	"fmt"
	"strings"
	"time"

	"github.com/choreboard/backend/internal/model"
)

// transitions maps each status to the statuses it may move to. Self-loops
// are handled before the table is consulted, so every status is reachable
// from every other in a single hop.
var transitions = map[model.Status][]model.Status{
	model.StatusPending:    {model.StatusInProgress, model.StatusCompleted},
	model.StatusInProgress: {model.StatusPending, model.StatusCompleted},
	model.StatusCompleted:  {model.StatusPending, model.StatusInProgress},
}

// Decision is the outcome of validating a requested status change. Reason
// is user-facing and returned verbatim in 400 responses.
type Decision struct {
	Allowed bool
	Reason  string
}

// ValidateTransition decides whether a chore may move from current to next.
// It is a pure function: illegal input yields a rejection, never an error.
func ValidateTransition(current, next model.Status) Decision {
	if current == next {
		return Decision{Allowed: true, Reason: "status unchanged"}
	}

	if !next.Valid() {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("invalid status %q: must be one of %s", next, statusList()),
		}
	}

	for _, allowed := range transitions[current] {
		if next == allowed {
			return Decision{Allowed: true, Reason: "status transition is valid"}
		}
	}

	return Decision{
		Allowed: false,
		Reason:  fmt.Sprintf("invalid status transition from %q to %q", current, next),
	}
}

// StatusUpdate describes the field changes that accompany a status change.
// CompletedAt only participates in the update when SetCompletedAt is true;
// a true flag with a nil value clears the column.
type StatusUpdate struct {
	Status         model.Status
	SetCompletedAt bool
	CompletedAt    *time.Time
}

// PrepareUpdate computes the update for an allowed transition. Entering
// completed stamps CompletedAt with now; leaving completed clears it;
// moves between pending and in_progress leave it untouched.
func PrepareUpdate(current, next model.Status, now time.Time) StatusUpdate {
	upd := StatusUpdate{Status: next}

	switch {
	case next == model.StatusCompleted && current != model.StatusCompleted:
		ts := now.UTC()
		upd.SetCompletedAt = true
		upd.CompletedAt = &ts
	case current == model.StatusCompleted && next != model.StatusCompleted:
		upd.SetCompletedAt = true
		upd.CompletedAt = nil
	}

	return upd
}

func statusList() string {
	all := model.Statuses()
	parts := make([]string, len(all))
	for i, s := range all {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
