package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"viveka/internal/backend"
	"viveka/internal/config"
	"viveka/internal/core"
	vlog "viveka/internal/log"
)

// app is the state shared by every command of one invocation.
type app struct {
	out      io.Writer
	now      func() time.Time
	asOf     string
	logLevel string

	res *backend.BackendResult
}

func newApp(out io.Writer) *app {
	return &app{out: out, now: time.Now}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "vivekactl",
		Short:         "Track EMI loans and monthly cashflow",
		Long:          "Manage loans, record EMI payments and read the cashflow dashboard.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runSummary,
	}
	root.SetOut(a.out)

	root.PersistentFlags().StringVar(&a.asOf, "as-of", "", "Date to act on, YYYY-MM-DD (default today)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(
		newSummaryCmd(a),
		newLoansCmd(a),
		newOverviewCmd(a),
		newLoanCmd(a),
		newCashflowCmd(a),
		newEMICmd(a),
	)

	return root
}

// describe lists validation problems one per line.
func describe(err error) string {
	var verrs core.ValidationErrors
	if errors.As(err, &verrs) {
		var b strings.Builder
		b.WriteString("  Please fix the following:\n")
		for _, m := range verrs.Messages() {
			b.WriteString("    - " + m + "\n")
		}
		return b.String()
	}
	return fmt.Sprintf("  Error: %v\n", err)
}

// backend opens the configured store on first use.
func (a *app) backend(ctx context.Context) (*backend.BackendResult, error) {
	if a.res != nil {
		return a.res, nil
	}

	level, err := config.ParseLogLevel(a.logLevel)
	if err != nil {
		return nil, err
	}
	logger := vlog.New(vlog.Config{Level: level, Component: vlog.ComponentCLI, Output: os.Stderr})
	vlog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}
	a.res = res
	return res, nil
}

func (a *app) close() error {
	if a.res == nil {
		return nil
	}
	err := a.res.Cleanup()
	a.res = nil
	return err
}

// today is --as-of when given, otherwise the current date.
func (a *app) today() (time.Time, error) {
	if a.asOf == "" {
		return a.now(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", a.asOf, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q: want YYYY-MM-DD", a.asOf)
	}
	return t, nil
}

func (a *app) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
