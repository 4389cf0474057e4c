package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/choreboard/backend/internal/model"
)

type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

const householdCols = `id, name, created_by, created_at, updated_at`

func scanHousehold(scanner interface{ Scan(...any) error }) (*model.Household, error) {
	var h model.Household
	var createdBy sql.NullString

	err := scanner.Scan(&h.ID, &h.Name, &createdBy, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if createdBy.Valid {
		h.CreatedBy = &createdBy.String
	}
	return &h, nil
}

func (s *HouseholdStore) Create(name string, createdBy *string) (*model.Household, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := s.db.Exec(
		`INSERT INTO households (`+householdCols+`) VALUES (?, ?, ?, ?, ?)`,
		id, name, nullString(createdBy), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert household: %w", err)
	}
	return s.GetByID(id)
}

func (s *HouseholdStore) GetByID(id string) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM households WHERE id = ?`, id)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) List() ([]model.Household, error) {
	rows, err := s.db.Query(`SELECT ` + householdCols + ` FROM households ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list households: %w", err)
	}
	defer rows.Close()

	var households []model.Household
	for rows.Next() {
		h, err := scanHousehold(rows)
		if err != nil {
			return nil, fmt.Errorf("scan household: %w", err)
		}
		households = append(households, *h)
	}
	return households, rows.Err()
}

func (s *HouseholdStore) Update(id, name string) (*model.Household, error) {
	_, err := s.db.Exec(
		`UPDATE households SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update household: %w", err)
	}
	return s.GetByID(id)
}

func (s *HouseholdStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM households WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete household: %w", err)
	}
	return nil
}
