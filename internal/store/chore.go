package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/choreboard/backend/internal/chore"
	"github.com/choreboard/backend/internal/model"
)

// ErrRecurringChanged is returned by CloneAndReset when the original
// chore's recurring field no longer matches the value it was read with,
// meaning another run already cloned it.
var ErrRecurringChanged = errors.New("chore recurrence changed since read")

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

const choreCols = `id, title, description, assigned_to, household_id, status, due_date, priority, recurring, completed_at, created_by, created_at, updated_at`

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	var assignedTo, createdBy sql.NullString
	var dueDate, completedAt sql.NullTime

	err := scanner.Scan(
		&c.ID, &c.Title, &c.Description, &assignedTo, &c.HouseholdID,
		&c.Status, &dueDate, &c.Priority, &c.Recurring, &completedAt,
		&createdBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignedTo.Valid {
		c.AssignedTo = &assignedTo.String
	}
	if createdBy.Valid {
		c.CreatedBy = &createdBy.String
	}
	if dueDate.Valid {
		t := dueDate.Time.UTC()
		c.DueDate = &t
	}
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		c.CompletedAt = &t
	}
	return &c, nil
}

// Create inserts a new chore. New chores always start pending with no
// completion timestamp.
func (s *ChoreStore) Create(title, description string, assignedTo *string, householdID string, dueDate *time.Time, priority model.Priority, recurring model.Recurrence, createdBy *string) (*model.Chore, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := s.db.Exec(
		`INSERT INTO chores (`+choreCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, title, description, nullString(assignedTo), householdID,
		model.StatusPending, nullTime(dueDate), priority, recurring, nil,
		nullString(createdBy), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChoreStore) GetByID(id string) (*model.Chore, error) {
	row := s.db.QueryRow(`SELECT `+choreCols+` FROM chores WHERE id = ?`, id)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

// List returns all chores ordered by due date, optionally filtered to one
// household. An empty householdID returns every chore.
func (s *ChoreStore) List(householdID string) ([]model.Chore, error) {
	query := `SELECT ` + choreCols + ` FROM chores`
	var args []any
	if householdID != "" {
		query += ` WHERE household_id = ?`
		args = append(args, householdID)
	}
	query += ` ORDER BY due_date ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

// Update replaces a chore's editable fields. Status is not among them:
// it only changes through UpdateStatus so every transition passes the
// validator.
func (s *ChoreStore) Update(id, title, description string, assignedTo *string, dueDate *time.Time, priority model.Priority, recurring model.Recurrence) (*model.Chore, error) {
	_, err := s.db.Exec(
		`UPDATE chores SET title = ?, description = ?, assigned_to = ?, due_date = ?, priority = ?, recurring = ?, updated_at = ? WHERE id = ?`,
		title, description, nullString(assignedTo), nullTime(dueDate), priority, recurring, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update chore: %w", err)
	}
	return s.GetByID(id)
}

// UpdateStatus applies a prepared status transition. The completed_at
// column is only written when the update says so, leaving lateral moves
// untouched.
func (s *ChoreStore) UpdateStatus(id string, upd chore.StatusUpdate) (*model.Chore, error) {
	now := time.Now().UTC()

	var err error
	if upd.SetCompletedAt {
		_, err = s.db.Exec(
			`UPDATE chores SET status = ?, completed_at = ?, updated_at = ? WHERE id = ?`,
			upd.Status, nullTime(upd.CompletedAt), now, id,
		)
	} else {
		_, err = s.db.Exec(
			`UPDATE chores SET status = ?, updated_at = ? WHERE id = ?`,
			upd.Status, now, id,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("update chore status: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChoreStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM chores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	return nil
}

// ListCompletedRecurring returns every chore eligible for recurrence
// cloning. There is no time window: any completed recurring chore not yet
// reset is a candidate, however old, so a run that failed part way heals
// on the next invocation.
func (s *ChoreStore) ListCompletedRecurring() ([]model.Chore, error) {
	rows, err := s.db.Query(
		`SELECT ` + choreCols + ` FROM chores WHERE recurring != 'none' AND status = 'completed' AND completed_at IS NOT NULL`,
	)
	if err != nil {
		return nil, fmt.Errorf("list completed recurring chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

// CloneAndReset inserts the next occurrence of orig and flips the
// original's recurring field to none, in a single transaction. The reset
// is conditional on the recurring value orig was read with; if it no
// longer matches, a concurrent run got there first and ErrRecurringChanged
// is returned with nothing written.
func (s *ChoreStore) CloneAndReset(orig model.Chore, nextDue *time.Time) (*model.Chore, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO chores (`+choreCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, orig.Title, orig.Description, nullString(orig.AssignedTo), orig.HouseholdID,
		model.StatusPending, nullTime(nextDue), orig.Priority, orig.Recurring, nil,
		nullString(orig.CreatedBy), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert clone: %w", err)
	}

	res, err := tx.Exec(
		`UPDATE chores SET recurring = ?, updated_at = ? WHERE id = ? AND recurring = ?`,
		model.RecurNone, now, orig.ID, orig.Recurring,
	)
	if err != nil {
		return nil, fmt.Errorf("reset recurring: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrRecurringChanged
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit clone: %w", err)
	}
	return s.GetByID(id)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
