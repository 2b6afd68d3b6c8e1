package sqlite

import (
	"context"

	"github.com/fwojciec/chatvault"
)

// Compile-time interface verification.
var _ chatvault.SettingsService = (*SettingsService)(nil)

// SettingsService implements chatvault.SettingsService using SQLite.
type SettingsService struct {
	db *DB
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(db *DB) *SettingsService {
	return &SettingsService{db: db}
}

// Settings returns all stored settings.
func (s *SettingsService) Settings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}

	return settings, rows.Err()
}

// SetSetting stores a single value. An empty value removes the key.
func (s *SettingsService) SetSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return chatvault.Errorf(chatvault.EINVALID, "setting key required")
	}

	if value == "" {
		_, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key)
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)

	return err
}
