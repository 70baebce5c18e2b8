// Package cli implements the hscode command line tool.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/hsclassify/internal/config"
	"github.com/JonMunkholm/hsclassify/internal/core"
	"github.com/JonMunkholm/hsclassify/internal/hscode"
	"github.com/JonMunkholm/hsclassify/internal/logging"
	"github.com/JonMunkholm/hsclassify/internal/oracle"
)

// serviceFactory builds the classification service for commands that call
// the oracle. The cleanup func is never nil.
type serviceFactory func(ctx context.Context) (*core.Service, func(), error)

var (
	okLabel   = color.New(color.FgGreen).SprintFunc()
	warnLabel = color.New(color.FgYellow).SprintFunc()
	failLabel = color.New(color.FgRed).SprintFunc()
)

// NewRootCmd returns the hscode root command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(newService)
}

func newRootCmd(factory serviceFactory) *cobra.Command {
	root := &cobra.Command{
		Use:   "hscode",
		Short: "Classify products into HS / HTS tariff codes",
		Long: `hscode formats tariff codes for a jurisdiction and classifies product
descriptions with the configured language model.

Commands that call the model read the same environment (and .env file) as
the server, e.g. ORACLE_PROVIDER and ORACLE_API_KEY.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(formatCmd())
	root.AddCommand(jurisdictionsCmd())
	root.AddCommand(classifyCmd(factory))
	root.AddCommand(batchCmd(factory))

	return root
}

// newService loads config from the environment and builds the oracle stack.
// Logs go to stderr so stdout carries only results.
func newService(ctx context.Context) (*core.Service, func(), error) {
	// Explicit environment wins over .env for one-off CLI runs
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, func() {}, err
	}
	slog.SetDefault(logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format))

	o, cleanup, err := oracle.Build(ctx, cfg, nil)
	if err != nil {
		return nil, func() {}, fmt.Errorf("create oracle: %w", err)
	}

	svc, err := core.NewService(o, cfg, nil)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return svc, cleanup, nil
}

// tableFromLengths applies ID=LENGTH overrides to the default table.
func tableFromLengths(overrides []string) (*hscode.Table, error) {
	codes := config.CodesConfig{JurisdictionLengths: overrides}
	lengths, err := codes.Lengths()
	if err != nil {
		return nil, fmt.Errorf("--lengths: %w", err)
	}
	return hscode.DefaultTable().WithLengths(lengths), nil
}

// userError prefixes err with its user-facing message and support code.
func userError(err error) error {
	if !core.IsUserFacing(err) {
		return err
	}
	return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
}
