package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fwojciec/chatvault"
)

// Compile-time interface verification.
var _ chatvault.VaultHandleService = (*VaultHandleService)(nil)

// VaultHandleService implements chatvault.VaultHandleService using SQLite.
type VaultHandleService struct {
	db *DB
}

// NewVaultHandleService creates a new VaultHandleService.
func NewVaultHandleService(db *DB) *VaultHandleService {
	return &VaultHandleService{db: db}
}

// FindVaultHandle retrieves a handle by name.
func (s *VaultHandleService) FindVaultHandle(ctx context.Context, name string) (*chatvault.VaultHandle, error) {
	var handle chatvault.VaultHandle
	var grantedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT name, path, granted_at
		FROM vault_handles
		WHERE name = ?
	`, name).Scan(&handle.Name, &handle.Path, &grantedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, chatvault.Errorf(chatvault.ENOTFOUND, "vault handle not found")
	}
	if err != nil {
		return nil, err
	}

	handle.GrantedAt, err = parseTime(grantedAt, "granted_at")
	if err != nil {
		return nil, err
	}

	return &handle, nil
}

// SaveVaultHandle creates or replaces the handle with the same name.
func (s *VaultHandleService) SaveVaultHandle(ctx context.Context, handle *chatvault.VaultHandle) error {
	if err := handle.Validate(); err != nil {
		return err
	}
	if handle.GrantedAt.IsZero() {
		handle.GrantedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vault_handles (name, path, granted_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET path = excluded.path, granted_at = excluded.granted_at
	`, handle.Name, handle.Path, formatTime(handle.GrantedAt))

	return err
}

// DeleteVaultHandle removes a handle.
func (s *VaultHandleService) DeleteVaultHandle(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM vault_handles WHERE name = ?", name)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return chatvault.Errorf(chatvault.ENOTFOUND, "vault handle not found")
	}

	return nil
}
