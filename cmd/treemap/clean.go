package main

import (
	"fmt"

	"github.com/spf13/cobra"

	kafkaadapter "github.com/couchcryptid/tree-inventory-etl/internal/adapter/kafka"
	"github.com/couchcryptid/tree-inventory-etl/internal/config"
	"github.com/couchcryptid/tree-inventory-etl/internal/genus"
	"github.com/couchcryptid/tree-inventory-etl/internal/pipeline"
	"github.com/couchcryptid/tree-inventory-etl/internal/tabular"
)

func newCleanCmd(a *app) *cobra.Command {
	var input, output string
	var skipStore bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Normalize the raw inventory into the cleaned table",
		Long: `clean reads the semicolon-delimited inventory export, drops unclassified
trees and trees planted before 1900, renumbers the survivors from 0 and writes
them to CLEAN_CSV_PATH (CSV, or XLSX for a .xlsx path). The records are also
loaded into the configured store and published to Kafka when KAFKA_BROKERS is
set. A malformed value aborts the run before anything is written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.useStdoutLogger(); err != nil {
				return err
			}
			cfg := a.cfg
			if input != "" {
				cfg.RawCSVPath = input
			}
			if output != "" {
				cfg.CleanCSVPath = output
			}
			ctx := cmd.Context()

			exporter := tabular.Exporter{Path: cfg.CleanCSVPath}
			sinks := []pipeline.Sink{{Name: exporter.Format(), Loader: exporter}}

			if !skipStore && cfg.StoreDriver != config.DriverMemory {
				store, err := openStore(ctx, cfg)
				if err != nil {
					return err
				}
				defer store.Close()
				sinks = append(sinks, pipeline.Sink{Name: cfg.StoreDriver, Loader: store})
			}

			if len(cfg.KafkaBrokers) > 0 {
				writer := kafkaadapter.NewWriter(cfg, a.logger)
				defer func() {
					if err := writer.Close(); err != nil {
						a.logger.Error("kafka writer close error", "error", err)
					}
				}()
				sinks = append(sinks, pipeline.Sink{Name: "kafka", Loader: writer})
			}

			importer := tabular.Importer{
				Path:    cfg.RawCSVPath,
				Options: tabular.Options{Encoding: cfg.InputEncoding},
			}
			p := pipeline.New(importer, pipeline.NewNormalizer(), sinks, a.logger, a.metrics)

			summary, err := p.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleaned %d of %d rows into %s (run %s)\n",
				summary.Report.Kept, summary.Report.Read, cfg.CleanCSVPath, summary.RunID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "raw inventory file (default RAW_CSV_PATH)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "cleaned output file (default CLEAN_CSV_PATH)")
	cmd.Flags().BoolVar(&skipStore, "no-store", false, "only write the cleaned file")
	return cmd
}

func newLoadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load [cleaned-file]",
		Short: "Load a cleaned table into the configured store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.useStdoutLogger(); err != nil {
				return err
			}
			path := a.cfg.CleanCSVPath
			if len(args) == 1 {
				path = args[0]
			}
			ctx := cmd.Context()

			records, err := tabular.ReadCleaned(path)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return tabular.ErrNoRecords
			}

			store, err := openStore(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Load(ctx, records); err != nil {
				return fmt.Errorf("load %s: %w", a.cfg.StoreDriver, err)
			}
			a.metrics.RecordsWritten.WithLabelValues(a.cfg.StoreDriver).Add(float64(len(records)))
			a.logger.Info("records loaded", "path", path, "records", len(records), "store", a.cfg.StoreDriver)
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d records into %s\n", len(records), a.cfg.StoreDriver)
			return nil
		},
	}
}

func newSeedGenusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-genus [yaml-file]",
		Short: "Replace the store's genus reference table from a YAML seed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.useStdoutLogger(); err != nil {
				return err
			}
			path := a.cfg.GenusFile
			if len(args) == 1 {
				path = args[0]
			}
			ctx := cmd.Context()

			table, err := genus.LoadYAML(path)
			if err != nil {
				return err
			}

			store, err := openStore(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.ReplaceGenus(ctx, table.Entries()); err != nil {
				return fmt.Errorf("seed genus names: %w", err)
			}
			a.logger.Info("genus names seeded", "path", path, "genera", table.Len())
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d genera\n", table.Len())
			return nil
		},
	}
}
