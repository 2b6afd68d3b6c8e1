package main

import (
	"fmt"

	"github.com/fwojciec/chatvault"
	"github.com/fwojciec/chatvault/capture"
)

// Run executes the capture command.
func (c *CaptureCmd) Run(deps *Dependencies) error {
	mode, err := chatvault.ParseCaptureMode(c.Mode)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatvault.ErrorMessage(err))
		return err
	}

	count := c.Count
	if mode == chatvault.CaptureRecent && count <= 0 {
		count = recentCount(deps)
	}

	page, err := deps.LoadPage(deps.Ctx, c.From.Source, c.From.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatvault.ErrorMessage(err))
		return err
	}

	result, err := deps.agent(page).Capture(deps.gestureContext(), mode, count)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatvault.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, capture.FormatSummary(result))
	if !result.Outcome.Success {
		return fmt.Errorf("capture not saved: %s", result.Outcome.Error)
	}
	return nil
}

// Run executes the artifacts command.
func (c *ArtifactsCmd) Run(deps *Dependencies) error {
	page, err := deps.LoadPage(deps.Ctx, c.From.Source, c.From.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatvault.ErrorMessage(err))
		return err
	}

	outcomes, err := deps.agent(page).SaveArtifacts(deps.gestureContext())
	if chatvault.ErrorCode(err) == chatvault.ENOCONTENT {
		fmt.Fprintln(deps.Stdout, "No artifacts found.")
		return nil
	} else if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatvault.ErrorMessage(err))
		return err
	}

	failed := 0
	for _, out := range outcomes {
		if out.Success {
			fmt.Fprintf(deps.Stdout, "saved via %s: %s\n", out.Method, out.Message)
			continue
		}
		failed++
		fmt.Fprintf(deps.Stderr, "error: %s\n", out.Message)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d artifacts not saved", failed, len(outcomes))
	}
	return nil
}

// recentCount returns the configured recent message count.
func recentCount(deps *Dependencies) int {
	m, err := deps.Settings.Settings(deps.Ctx)
	if err != nil {
		return chatvault.DefaultRecentCount
	}
	s, err := chatvault.ParseSettings(m)
	if err != nil {
		return chatvault.DefaultRecentCount
	}
	return s.RecentCount
}
