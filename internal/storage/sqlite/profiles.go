package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/genie/internal/models"
	"github.com/julianstephens/genie/internal/storage"
)

func (s *Store) GetProfile(userID string) (models.Profile, error) {
	row := s.db.QueryRow(`
		SELECT user_id, full_name, role, bio, avatar_ref, updated_at
		FROM profiles WHERE user_id = ?`, userID)

	var p models.Profile
	var updated string
	err := row.Scan(&p.UserID, &p.FullName, &p.Role, &p.Bio, &p.AvatarRef, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return models.Profile{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return p, nil
}

func (s *Store) SaveProfile(p models.Profile) error {
	if p.UserID == "" {
		return fmt.Errorf("profile has no user id")
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO profiles (user_id, full_name, role, bio, avatar_ref, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.UserID, p.FullName, p.Role, p.Bio, p.AvatarRef, formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
