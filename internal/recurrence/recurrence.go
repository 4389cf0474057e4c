// Package recurrence regenerates completed recurring chores: a chore with
// a daily, weekly, or monthly pattern is cloned once after completion with
// its due date advanced by the pattern's interval.
package recurrence

import (
	"time"

	"github.com/choreboard/backend/internal/model"
)

// NextDueDate advances base by one interval of the given pattern. A nil
// base, a "none" pattern, or an unrecognized pattern yields nil. Month
// arithmetic follows time.Time.AddDate normalization: adding a month to
// Jan 31 rolls into early March rather than clamping to the end of
// February.
func NextDueDate(base *time.Time, pattern model.Recurrence) *time.Time {
	if base == nil {
		return nil
	}

	var next time.Time
	switch pattern {
	case model.RecurDaily:
		next = base.AddDate(0, 0, 1)
	case model.RecurWeekly:
		next = base.AddDate(0, 0, 7)
	case model.RecurMonthly:
		next = base.AddDate(0, 1, 0)
	default:
		return nil
	}
	return &next
}
