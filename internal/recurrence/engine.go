package recurrence

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/choreboard/backend/internal/event"
	"github.com/choreboard/backend/internal/model"
	"github.com/choreboard/backend/internal/store"
)

// ChoreStore is the slice of persistence the engine needs.
type ChoreStore interface {
	ListCompletedRecurring() ([]model.Chore, error)
	CloneAndReset(orig model.Chore, nextDue *time.Time) (*model.Chore, error)
}

// Engine finds completed recurring chores and creates their next
// occurrence. Each candidate is handled independently: one failure is
// logged and skipped, never aborting the batch.
type Engine struct {
	chores ChoreStore
	events event.Publisher
	logger *slog.Logger
}

func NewEngine(chores ChoreStore, events event.Publisher, logger *slog.Logger) *Engine {
	return &Engine{chores: chores, events: events, logger: logger}
}

// ProcessRecurringChores clones every eligible chore and returns the
// created clones. Only a failure of the candidate query itself is
// returned as an error; per-candidate failures are logged and the batch
// continues. The persisted recurring reset, not a time window, is what
// keeps a candidate from being processed twice.
func (e *Engine) ProcessRecurringChores() ([]model.Chore, error) {
	candidates, err := e.chores.ListCompletedRecurring()
	if err != nil {
		return nil, fmt.Errorf("list recurring candidates: %w", err)
	}

	e.logger.Info("processing recurring chores", "candidates", len(candidates))

	var created []model.Chore
	for _, c := range candidates {
		nextDue := NextDueDate(c.DueDate, c.Recurring)

		clone, err := e.chores.CloneAndReset(c, nextDue)
		if err != nil {
			if errors.Is(err, store.ErrRecurringChanged) {
				e.logger.Debug("candidate already cloned by another run", "chore_id", c.ID)
				continue
			}
			e.logger.Error("clone recurring chore", "chore_id", c.ID, "error", err)
			continue
		}

		created = append(created, *clone)
		_ = e.events.Publish(event.TopicRecurrenceCreated, event.New("recurrence_created", clone))
	}

	e.logger.Info("recurring chores processed", "created", len(created))
	return created, nil
}
