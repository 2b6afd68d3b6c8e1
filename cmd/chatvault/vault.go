package main

import (
	"fmt"

	"github.com/fwojciec/chatvault"
	"github.com/fwojciec/chatvault/fs"
)

// Run executes the vault grant command.
func (c *VaultGrantCmd) Run(deps *Dependencies) error {
	picker := deps.Picker
	if c.Dir != "" {
		picker = &fs.StaticPicker{Path: c.Dir}
	}
	if picker == nil {
		fmt.Fprintln(deps.Stderr, "error: no directory given. Use 'chatvault vault grant <dir>'.")
		return chatvault.Errorf(chatvault.EINVALID, "no vault directory given")
	}

	path, err := picker.Pick(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatvault.ErrorMessage(err))
		return err
	}

	handle := &chatvault.VaultHandle{Name: chatvault.VaultHandleName, Path: path}
	if err := deps.Writer.CheckPermission(deps.Ctx, handle); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatvault.ErrorMessage(err))
		return err
	}
	if err := deps.Handles.SaveVaultHandle(deps.Ctx, handle); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatvault.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Vault directory set to %s\n", path)
	return nil
}

// Run executes the vault show command.
func (c *VaultShowCmd) Run(deps *Dependencies) error {
	handle, err := deps.Handles.FindVaultHandle(deps.Ctx, chatvault.VaultHandleName)
	if chatvault.ErrorCode(err) == chatvault.ENOTFOUND {
		fmt.Fprintln(deps.Stdout, "No vault directory granted. Use 'chatvault vault grant <dir>' to set one.")
		return nil
	} else if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatvault.ErrorMessage(err))
		return err
	}

	status := "writable"
	if err := deps.Writer.CheckPermission(deps.Ctx, handle); err != nil {
		status = "not writable: " + chatvault.ErrorMessage(err)
	}
	fmt.Fprintf(deps.Stdout, "%s  (granted %s, %s)\n", handle.Path, handle.GrantedAt.Local().Format("2006-01-02 15:04"), status)
	return nil
}

// Run executes the vault revoke command.
func (c *VaultRevokeCmd) Run(deps *Dependencies) error {
	err := deps.Handles.DeleteVaultHandle(deps.Ctx, chatvault.VaultHandleName)
	if chatvault.ErrorCode(err) == chatvault.ENOTFOUND {
		fmt.Fprintln(deps.Stdout, "No vault directory granted.")
		return nil
	} else if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatvault.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, "Vault access revoked.")
	return nil
}
