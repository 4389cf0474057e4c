package model

import "time"

// Status is the lifecycle state of a chore.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every valid status, in the order used for error messages.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority indicates how urgent a chore is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Recurrence describes how a new chore should be scheduled after this
// one completes. A completed recurring chore is cloned once with its due
// date advanced by the pattern's interval.
type Recurrence string

const (
	RecurNone    Recurrence = "none"
	RecurDaily   Recurrence = "daily"
	RecurWeekly  Recurrence = "weekly"
	RecurMonthly Recurrence = "monthly"
)

// Valid reports whether r is a known recurrence pattern.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurNone, RecurDaily, RecurWeekly, RecurMonthly:
		return true
	}
	return false
}

type Chore struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssignedTo  *string    `json:"assigned_to"`
	HouseholdID string     `json:"household_id"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	Priority    Priority   `json:"priority"`
	Recurring   Recurrence `json:"recurring"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedBy   *string    `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
