package chatvault

import (
	"context"
	"time"
)

// VaultHandleName is the fixed key under which the vault directory handle
// is persisted.
const VaultHandleName = "vaultDirectory"

// VaultHandle is a persisted, permission-scoped reference to the vault
// directory. It is created only in response to a user gesture.
type VaultHandle struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	GrantedAt time.Time `json:"grantedAt"`
}

// Validate returns an error if the handle contains invalid fields.
func (h *VaultHandle) Validate() error {
	if h.Name == "" {
		return Errorf(EINVALID, "vault handle name required")
	}
	if h.Path == "" {
		return Errorf(EINVALID, "vault handle path required")
	}
	return nil
}

// VaultHandleService persists vault handles across sessions.
type VaultHandleService interface {
	// FindVaultHandle retrieves a handle by name.
	// Returns ENOTFOUND if no handle has been granted.
	FindVaultHandle(ctx context.Context, name string) (*VaultHandle, error)

	// SaveVaultHandle creates or replaces the handle with the same name.
	SaveVaultHandle(ctx context.Context, handle *VaultHandle) error

	// DeleteVaultHandle removes a handle.
	// Returns ENOTFOUND if no handle exists.
	DeleteVaultHandle(ctx context.Context, name string) error
}

// DirectoryPicker acquires a vault directory from the user. Pick may block
// until the user answers.
type DirectoryPicker interface {
	Pick(ctx context.Context) (path string, err error)
}

// WriteResult describes a completed vault write.
type WriteResult struct {
	// Path is the vault-relative path the content was written to.
	Path string

	// Duplicate reports that identical content already existed and
	// nothing was written.
	Duplicate bool
}

// VaultWriter writes files into a vault directory.
type VaultWriter interface {
	// CheckPermission verifies that the handle's directory is writable.
	// Returns EPERMISSION if access is missing or revoked.
	CheckPermission(ctx context.Context, handle *VaultHandle) error

	// WriteFile writes content at relPath below the handle's directory.
	// Identical existing content is reported as a duplicate; different
	// existing content is never overwritten and a numbered name is used.
	WriteFile(ctx context.Context, handle *VaultHandle, relPath string, content []byte) (*WriteResult, error)
}

type gestureKey struct{}

// WithUserGesture marks ctx as carrying an active user gesture, which is
// required before a new vault directory may be requested.
func WithUserGesture(ctx context.Context) context.Context {
	return context.WithValue(ctx, gestureKey{}, true)
}

// HasUserGesture reports whether ctx carries an active user gesture.
func HasUserGesture(ctx context.Context) bool {
	v, _ := ctx.Value(gestureKey{}).(bool)
	return v
}
