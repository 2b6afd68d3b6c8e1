package main

import (
	"fmt"

	cvhttp "github.com/fwojciec/chatvault/http"
)

// Run executes the serve command. It blocks until the context is done.
func (c *ServeCmd) Run(deps *Dependencies) error {
	srv := cvhttp.NewServer(c.Addr, deps.Saver)
	if err := srv.Open(); err != nil {
		return fmt.Errorf("listen on %s: %w", c.Addr, err)
	}
	defer srv.Close()

	fmt.Fprintf(deps.Stdout, "Coordinator listening on %s\n", srv.URL())
	<-deps.Ctx.Done()
	return nil
}
