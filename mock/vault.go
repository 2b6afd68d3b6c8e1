package mock

import (
	"context"

	"github.com/fwojciec/chatvault"
)

// Compile-time interface verification.
var (
	_ chatvault.VaultHandleService = (*VaultHandleService)(nil)
	_ chatvault.DirectoryPicker    = (*DirectoryPicker)(nil)
	_ chatvault.VaultWriter        = (*VaultWriter)(nil)
)

// VaultHandleService is a mock implementation of chatvault.VaultHandleService.
type VaultHandleService struct {
	FindVaultHandleFn   func(ctx context.Context, name string) (*chatvault.VaultHandle, error)
	SaveVaultHandleFn   func(ctx context.Context, handle *chatvault.VaultHandle) error
	DeleteVaultHandleFn func(ctx context.Context, name string) error
}

func (s *VaultHandleService) FindVaultHandle(ctx context.Context, name string) (*chatvault.VaultHandle, error) {
	return s.FindVaultHandleFn(ctx, name)
}

func (s *VaultHandleService) SaveVaultHandle(ctx context.Context, handle *chatvault.VaultHandle) error {
	return s.SaveVaultHandleFn(ctx, handle)
}

func (s *VaultHandleService) DeleteVaultHandle(ctx context.Context, name string) error {
	return s.DeleteVaultHandleFn(ctx, name)
}

// DirectoryPicker is a mock implementation of chatvault.DirectoryPicker.
type DirectoryPicker struct {
	PickFn func(ctx context.Context) (string, error)
}

func (p *DirectoryPicker) Pick(ctx context.Context) (string, error) {
	return p.PickFn(ctx)
}

// VaultWriter is a mock implementation of chatvault.VaultWriter.
type VaultWriter struct {
	CheckPermissionFn func(ctx context.Context, handle *chatvault.VaultHandle) error
	WriteFileFn       func(ctx context.Context, handle *chatvault.VaultHandle, relPath string, content []byte) (*chatvault.WriteResult, error)
}

func (w *VaultWriter) CheckPermission(ctx context.Context, handle *chatvault.VaultHandle) error {
	return w.CheckPermissionFn(ctx, handle)
}

func (w *VaultWriter) WriteFile(ctx context.Context, handle *chatvault.VaultHandle, relPath string, content []byte) (*chatvault.WriteResult, error) {
	return w.WriteFileFn(ctx, handle, relPath, content)
}
