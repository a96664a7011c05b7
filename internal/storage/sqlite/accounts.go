package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/genie/internal/models"
	"github.com/julianstephens/genie/internal/storage"
)

const accountColumns = "id, email, password_hash, provider, confirmed_at, created_at"

func (s *Store) CreateAccount(a models.Account) error {
	if _, err := s.GetAccountByEmail(a.Email); err == nil {
		return storage.ErrAccountExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	var confirmed sql.NullString
	if a.ConfirmedAt != nil {
		confirmed = sql.NullString{String: formatTime(*a.ConfirmedAt), Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, strings.TrimSpace(a.Email), a.PasswordHash, a.Provider, confirmed, formatTime(a.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrAccountExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *Store) GetAccount(id string) (models.Account, error) {
	return s.scanAccount(s.db.QueryRow("SELECT "+accountColumns+" FROM accounts WHERE id = ?", id))
}

// GetAccountByEmail matches case-insensitively.
func (s *Store) GetAccountByEmail(email string) (models.Account, error) {
	return s.scanAccount(s.db.QueryRow(
		"SELECT "+accountColumns+" FROM accounts WHERE email = ? COLLATE NOCASE",
		strings.TrimSpace(email)))
}

func (s *Store) ConfirmAccount(id string, at time.Time) error {
	res, err := s.db.Exec("UPDATE accounts SET confirmed_at = ? WHERE id = ?", formatTime(at), id)
	if err != nil {
		return fmt.Errorf("failed to confirm account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) scanAccount(row *sql.Row) (models.Account, error) {
	var a models.Account
	var confirmed sql.NullString
	var created string
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Provider, &confirmed, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to read account: %w", err)
	}

	if a.CreatedAt, err = parseTime(created); err != nil {
		return models.Account{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if confirmed.Valid {
		t, err := parseTime(confirmed.String)
		if err != nil {
			return models.Account{}, fmt.Errorf("parsing confirmed_at: %w", err)
		}
		a.ConfirmedAt = &t
	}
	return a, nil
}
