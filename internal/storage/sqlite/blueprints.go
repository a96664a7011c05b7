package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/genie/internal/models"
	"github.com/julianstephens/genie/internal/storage"
)

func (s *Store) SaveBlueprint(b models.Blueprint) error {
	if b.ID == "" || b.UserID == "" {
		return fmt.Errorf("blueprint requires an id and a user id")
	}
	plan, err := json.Marshal(b.Plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO blueprints (id, user_id, title, idea, plan, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Title, b.Idea, string(plan), formatTime(b.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save blueprint: %w", err)
	}
	return nil
}

func (s *Store) GetBlueprint(id string) (models.Blueprint, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, title, idea, plan, created_at
		FROM blueprints WHERE id = ?`, id)

	var b models.Blueprint
	var plan, created string
	err := row.Scan(&b.ID, &b.UserID, &b.Title, &b.Idea, &plan, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Blueprint{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Blueprint{}, fmt.Errorf("failed to read blueprint: %w", err)
	}
	if err := json.Unmarshal([]byte(plan), &b.Plan); err != nil {
		return models.Blueprint{}, fmt.Errorf("failed to decode plan for blueprint %s: %w", id, err)
	}
	b.Plan.Normalize()
	if b.CreatedAt, err = parseTime(created); err != nil {
		return models.Blueprint{}, fmt.Errorf("parsing created_at: %w", err)
	}
	return b, nil
}

func (s *Store) ListBlueprints(userID string) ([]models.BlueprintSummary, error) {
	rows, err := s.db.Query(`
		SELECT id, title, idea, json_extract(plan, '$.pitchSummary'), created_at
		FROM blueprints WHERE user_id = ?
		ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blueprints: %w", err)
	}
	defer rows.Close()

	out := []models.BlueprintSummary{}
	for rows.Next() {
		var b models.BlueprintSummary
		var pitch sql.NullString
		var created string
		if err := rows.Scan(&b.ID, &b.Title, &b.Idea, &pitch, &created); err != nil {
			return nil, err
		}
		b.PitchSummary = pitch.String
		if b.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) DeleteBlueprint(id string) error {
	if _, err := s.db.Exec("DELETE FROM blueprints WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete blueprint: %w", err)
	}
	return nil
}
