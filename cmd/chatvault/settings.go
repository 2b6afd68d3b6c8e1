package main

import (
	"fmt"
	"strconv"

	"github.com/fwojciec/chatvault"
)

// settingKeys lists the known settings in display order.
var settingKeys = []string{
	chatvault.SettingPathTemplate,
	chatvault.SettingSaveMethod,
	chatvault.SettingVaultName,
	chatvault.SettingChunkSize,
	chatvault.SettingRecentCount,
}

// settingDefaults renders the default settings as strings.
func settingDefaults() map[string]string {
	d := chatvault.DefaultSettings()
	return map[string]string{
		chatvault.SettingPathTemplate: d.PathTemplate,
		chatvault.SettingSaveMethod:   string(d.SaveMethod),
		chatvault.SettingVaultName:    d.VaultName,
		chatvault.SettingChunkSize:    strconv.Itoa(d.ChunkSize),
		chatvault.SettingRecentCount:  strconv.Itoa(d.RecentCount),
	}
}

func knownSetting(key string) error {
	for _, k := range settingKeys {
		if k == key {
			return nil
		}
	}
	return chatvault.Errorf(chatvault.EINVALID, "unknown setting %q", key)
}

// Run executes the settings list command.
func (c *SettingsListCmd) Run(deps *Dependencies) error {
	stored, err := deps.Settings.Settings(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatvault.ErrorMessage(err))
		return err
	}

	defaults := settingDefaults()
	for _, key := range settingKeys {
		if v, ok := stored[key]; ok {
			fmt.Fprintf(deps.Stdout, "%s=%s\n", key, v)
			continue
		}
		fmt.Fprintf(deps.Stdout, "%s=%s (default)\n", key, defaults[key])
	}
	return nil
}

// Run executes the settings get command.
func (c *SettingsGetCmd) Run(deps *Dependencies) error {
	if err := knownSetting(c.Key); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatvault.ErrorMessage(err))
		return err
	}

	stored, err := deps.Settings.Settings(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatvault.ErrorMessage(err))
		return err
	}

	v, ok := stored[c.Key]
	if !ok {
		v = settingDefaults()[c.Key]
	}
	fmt.Fprintln(deps.Stdout, v)
	return nil
}

// Run executes the settings set command.
func (c *SettingsSetCmd) Run(deps *Dependencies) error {
	if err := knownSetting(c.Key); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatvault.ErrorMessage(err))
		return err
	}

	stored, err := deps.Settings.Settings(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatvault.ErrorMessage(err))
		return err
	}
	stored[c.Key] = c.Value
	if _, err := chatvault.ParseSettings(stored); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatvault.ErrorMessage(err))
		return err
	}

	if err := deps.Settings.SetSetting(deps.Ctx, c.Key, c.Value); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatvault.ErrorMessage(err))
		return err
	}

	if c.Value == "" {
		fmt.Fprintf(deps.Stdout, "Reset %s to its default\n", c.Key)
		return nil
	}
	fmt.Fprintf(deps.Stdout, "Set %s=%s\n", c.Key, c.Value)
	return nil
}
