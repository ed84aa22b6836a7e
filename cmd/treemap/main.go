// Command treemap cleans the municipal tree inventory and renders the trees of
// one genus on an interactive map.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/tree-inventory-etl/internal/config"
	"github.com/couchcryptid/tree-inventory-etl/internal/observability"
)

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	closer  io.Closer
}

func (a *app) close() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

// newMetrics registers on the default registry served by /metrics.
var newMetrics = observability.NewMetrics

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("treemap failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "treemap",
		Short: "Clean the tree inventory and map trees by genus",
		Long: `treemap turns the municipal tree inventory export into a cleaned table,
stores it, and opens an interactive dialog that renders the trees of a chosen
genus on a Leaflet map.

Running treemap without a subcommand starts the map dialog.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			a.metrics = newMetrics()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	mapCmd := newMapCmd(a)
	root.RunE = mapCmd.RunE
	root.Flags().AddFlagSet(mapCmd.Flags())

	root.AddCommand(
		newCleanCmd(a),
		newLoadCmd(a),
		newSeedGenusCmd(a),
		mapCmd,
	)
	return root
}

// useStdoutLogger installs the configured logger for non-interactive commands.
func (a *app) useStdoutLogger() error {
	logger, closer, err := observability.NewLogger(a.cfg.LogLevel, a.cfg.LogFormat, a.cfg.LogFile)
	if err != nil {
		return err
	}
	a.logger = logger
	a.closer = closer
	return nil
}
