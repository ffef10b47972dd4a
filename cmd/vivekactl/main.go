// Command vivekactl manages loans and the cashflow profile from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"viveka/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	a := newApp(os.Stdout)
	err := newRootCmd(a).ExecuteContext(ctx)
	if cerr := a.close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "  close backend: %v\n", cerr)
	}
	stop()
	if err != nil {
		fmt.Fprint(os.Stderr, describe(err))
		os.Exit(1)
	}
}
