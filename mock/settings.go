package mock

import (
	"context"

	"github.com/fwojciec/chatvault"
)

// Compile-time interface verification.
var (
	_ chatvault.SettingsService   = (*SettingsService)(nil)
	_ chatvault.SaveRecordService = (*SaveRecordService)(nil)
)

// SettingsService is a mock implementation of chatvault.SettingsService.
type SettingsService struct {
	SettingsFn   func(ctx context.Context) (map[string]string, error)
	SetSettingFn func(ctx context.Context, key, value string) error
}

func (s *SettingsService) Settings(ctx context.Context) (map[string]string, error) {
	return s.SettingsFn(ctx)
}

func (s *SettingsService) SetSetting(ctx context.Context, key, value string) error {
	return s.SetSettingFn(ctx, key, value)
}

// SaveRecordService is a mock implementation of chatvault.SaveRecordService.
type SaveRecordService struct {
	CreateSaveRecordFn func(ctx context.Context, rec *chatvault.SaveRecord) error
	FindSaveRecordsFn  func(ctx context.Context, filter chatvault.SaveRecordFilter) ([]*chatvault.SaveRecord, error)
}

func (s *SaveRecordService) CreateSaveRecord(ctx context.Context, rec *chatvault.SaveRecord) error {
	return s.CreateSaveRecordFn(ctx, rec)
}

func (s *SaveRecordService) FindSaveRecords(ctx context.Context, filter chatvault.SaveRecordFilter) ([]*chatvault.SaveRecord, error) {
	return s.FindSaveRecordsFn(ctx, filter)
}
