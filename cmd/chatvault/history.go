package main

import (
	"fmt"

	"github.com/fwojciec/chatvault"
	"github.com/fwojciec/chatvault/capture"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := chatvault.SaveRecordFilter{Limit: c.Limit}
	if c.Service != "" {
		filter.Service = &c.Service
	}

	records, err := deps.History.FindSaveRecords(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatvault.ErrorMessage(err))
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(deps.Stdout, "No saves recorded yet. Use 'chatvault capture' to save a conversation.")
		return nil
	}

	for _, r := range records {
		status := string(r.Method)
		switch {
		case !r.Success:
			status = "failed: " + r.Error
		case r.Duplicate:
			status += ", unchanged"
		}

		title := r.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(deps.Stdout, "%s  %-10s %-9s %s  %s  (%s)\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Service, r.MessageType, title, capture.FormatBytes(r.Bytes), status)
		if r.Filename != "" {
			fmt.Fprintf(deps.Stdout, "    %s\n", r.Filename)
		}
	}
	return nil
}
