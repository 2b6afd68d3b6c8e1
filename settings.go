package chatvault

import (
	"context"
	"strconv"
)

// Setting keys supplied by the settings collaborator.
const (
	SettingPathTemplate = "pathTemplate"
	SettingSaveMethod   = "saveMethod"
	SettingVaultName    = "vaultName"
	SettingChunkSize    = "chunkSize"
	SettingRecentCount  = "recentCount"
)

// Setting defaults.
const (
	DefaultPathTemplate = "ChatVault/{service}/{date}"
	DefaultRecentCount  = 30
)

// PreferAuto lets the coordinator try every strategy in its default order.
const PreferAuto SaveMethod = "auto"

// Settings holds the user configuration read by the core.
type Settings struct {
	PathTemplate string
	SaveMethod   SaveMethod
	VaultName    string
	ChunkSize    int
	RecentCount  int
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		PathTemplate: DefaultPathTemplate,
		SaveMethod:   PreferAuto,
		ChunkSize:    DefaultChunkSize,
		RecentCount:  DefaultRecentCount,
	}
}

// ParseSettings builds Settings from a flat key-value map. Missing keys
// keep their defaults; malformed values return EINVALID.
func ParseSettings(m map[string]string) (Settings, error) {
	s := DefaultSettings()

	if v := m[SettingPathTemplate]; v != "" {
		s.PathTemplate = v
	}
	if v := m[SettingVaultName]; v != "" {
		s.VaultName = v
	}
	if v := m[SettingSaveMethod]; v != "" {
		method := SaveMethod(v)
		if !validPreference(method) {
			return Settings{}, Errorf(EINVALID, "unknown save method %q", v)
		}
		s.SaveMethod = method
	}
	if v := m[SettingChunkSize]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Settings{}, Errorf(EINVALID, "chunk size must be a positive integer, got %q", v)
		}
		s.ChunkSize = n
	}
	if v := m[SettingRecentCount]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Settings{}, Errorf(EINVALID, "recent count must be a positive integer, got %q", v)
		}
		s.RecentCount = n
	}

	return s, nil
}

func validPreference(m SaveMethod) bool {
	switch m {
	case PreferAuto, MethodFilesystem, MethodAdvancedURI, MethodAdvancedURIClipboard,
		MethodDownloads, MethodClipboard, MethodURI:
		return true
	}
	return false
}

// SettingsService stores the flat settings map.
type SettingsService interface {
	// Settings returns all stored settings.
	Settings(ctx context.Context) (map[string]string, error)

	// SetSetting stores a single value. An empty value removes the key.
	SetSetting(ctx context.Context, key, value string) error
}
