package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	av1cmd "av1studio/internal/cli/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := av1cmd.Execute(ctx); err != nil {
		var ee *av1cmd.ExitError
		if errors.As(err, &ee) {
			if ee.Err != nil {
				fmt.Fprintln(os.Stderr, "av1studio:", ee.Err)
			}
			os.Exit(ee.Code)
		}
		fmt.Fprintln(os.Stderr, "av1studio:", err)
		os.Exit(av1cmd.ExitCLIError)
	}
	os.Exit(av1cmd.ExitOK)
}
