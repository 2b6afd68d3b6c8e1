package main

import (
	"fmt"

	"github.com/fwojciec/chatvault"
)

// Run executes the watch command.
func (c *WatchCmd) Run(deps *Dependencies) error {
	page, closePage, err := deps.OpenPage(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatvault.ErrorMessage(err))
		return err
	}
	defer closePage()

	agent := deps.agent(page)
	agent.Report = func(messageID string, out chatvault.SaveOutcome) {
		if out.Success {
			fmt.Fprintf(deps.Stdout, "%s: %s\n", messageID, out.Message)
			return
		}
		fmt.Fprintf(deps.Stderr, "error: %s: %s\n", messageID, out.Message)
	}

	fmt.Fprintf(deps.Stdout, "Watching %s. Press Ctrl-C to stop.\n", c.URL)
	return agent.Run(deps.Ctx)
}
