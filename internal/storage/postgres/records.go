package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/genie/internal/models"
	"github.com/julianstephens/genie/internal/storage"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = $1", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

const accountColumns = "id, email, password_hash, provider, confirmed_at, created_at"

func (s *Store) CreateAccount(a models.Account) error {
	var confirmed sql.NullTime
	if a.ConfirmedAt != nil {
		confirmed = sql.NullTime{Time: *a.ConfirmedAt, Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, strings.TrimSpace(a.Email), a.PasswordHash, a.Provider, confirmed, a.CreatedAt.UTC())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return storage.ErrAccountExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *Store) GetAccount(id string) (models.Account, error) {
	return scanAccount(s.db.QueryRow("SELECT "+accountColumns+" FROM accounts WHERE id = $1", id))
}

func (s *Store) GetAccountByEmail(email string) (models.Account, error) {
	return scanAccount(s.db.QueryRow(
		"SELECT "+accountColumns+" FROM accounts WHERE lower(email) = lower($1)",
		strings.TrimSpace(email)))
}

func (s *Store) ConfirmAccount(id string, at time.Time) error {
	res, err := s.db.Exec("UPDATE accounts SET confirmed_at = $1 WHERE id = $2", at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to confirm account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanAccount(row *sql.Row) (models.Account, error) {
	var a models.Account
	var confirmed sql.NullTime
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Provider, &confirmed, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to read account: %w", err)
	}
	if confirmed.Valid {
		t := confirmed.Time
		a.ConfirmedAt = &t
	}
	return a, nil
}

func (s *Store) GetProfile(userID string) (models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRow(`
		SELECT user_id, full_name, role, bio, avatar_ref, updated_at
		FROM profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.FullName, &p.Role, &p.Bio, &p.AvatarRef, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}
	return p, nil
}

func (s *Store) SaveProfile(p models.Profile) error {
	if p.UserID == "" {
		return fmt.Errorf("profile has no user id")
	}
	_, err := s.db.Exec(`
		INSERT INTO profiles (user_id, full_name, role, bio, avatar_ref, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			role = EXCLUDED.role,
			bio = EXCLUDED.bio,
			avatar_ref = EXCLUDED.avatar_ref,
			updated_at = EXCLUDED.updated_at`,
		p.UserID, p.FullName, p.Role, p.Bio, p.AvatarRef, p.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (s *Store) SaveBlueprint(b models.Blueprint) error {
	if b.ID == "" || b.UserID == "" {
		return fmt.Errorf("blueprint requires an id and a user id")
	}
	plan, err := json.Marshal(b.Plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO blueprints (id, user_id, title, idea, plan, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			idea = EXCLUDED.idea,
			plan = EXCLUDED.plan`,
		b.ID, b.UserID, b.Title, b.Idea, string(plan), b.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save blueprint: %w", err)
	}
	return nil
}

func (s *Store) GetBlueprint(id string) (models.Blueprint, error) {
	var b models.Blueprint
	var plan []byte
	err := s.db.QueryRow(`
		SELECT id, user_id, title, idea, plan, created_at
		FROM blueprints WHERE id = $1`, id).
		Scan(&b.ID, &b.UserID, &b.Title, &b.Idea, &plan, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Blueprint{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Blueprint{}, fmt.Errorf("failed to read blueprint: %w", err)
	}
	if err := json.Unmarshal(plan, &b.Plan); err != nil {
		return models.Blueprint{}, fmt.Errorf("failed to decode plan for blueprint %s: %w", id, err)
	}
	b.Plan.Normalize()
	return b, nil
}

func (s *Store) ListBlueprints(userID string) ([]models.BlueprintSummary, error) {
	rows, err := s.db.Query(`
		SELECT id, title, idea, COALESCE(plan->>'pitchSummary', ''), created_at
		FROM blueprints WHERE user_id = $1
		ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blueprints: %w", err)
	}
	defer rows.Close()

	out := []models.BlueprintSummary{}
	for rows.Next() {
		var b models.BlueprintSummary
		if err := rows.Scan(&b.ID, &b.Title, &b.Idea, &b.PitchSummary, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) DeleteBlueprint(id string) error {
	if _, err := s.db.Exec("DELETE FROM blueprints WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete blueprint: %w", err)
	}
	return nil
}
