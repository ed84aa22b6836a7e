package main

import (
	"errors"
	"fmt"
	"net"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/tree-inventory-etl/internal/adapter/browser"
	"github.com/couchcryptid/tree-inventory-etl/internal/adapter/cache"
	httpadapter "github.com/couchcryptid/tree-inventory-etl/internal/adapter/http"
	"github.com/couchcryptid/tree-inventory-etl/internal/config"
	"github.com/couchcryptid/tree-inventory-etl/internal/genus"
	"github.com/couchcryptid/tree-inventory-etl/internal/observability"
	"github.com/couchcryptid/tree-inventory-etl/internal/render"
	"github.com/couchcryptid/tree-inventory-etl/internal/session"
	"github.com/couchcryptid/tree-inventory-etl/internal/ui"
)

func newMapCmd(a *app) *cobra.Command {
	var genusName, language string
	var noBrowser bool

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Pick a genus and render its trees on a map",
		Long: `map opens a dialog listing every genus in the chosen language. Running a
selection queries the store for the matching trees, asks for confirmation when
there are CONFIRM_THRESHOLD or more, writes MAP_DIR/MAP_FILE and opens it in
the browser. The dialog stays open with the previous genus selected.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if genusName != "" {
				cfg.DefaultGenus = genusName
			}
			if language != "" {
				lang, err := genus.ParseLanguage(language)
				if err != nil {
					return err
				}
				cfg.DefaultLanguage = lang
			}
			if noBrowser {
				cfg.OpenBrowser = false
			}

			// The dialog owns the terminal; logs go to LOG_FILE or nowhere.
			if cfg.LogFile != "" {
				if err := a.useStdoutLogger(); err != nil {
					return err
				}
			} else {
				a.logger = observability.DiscardLogger()
			}
			ctx := cmd.Context()

			src, err := openSource(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = src.close() }()

			var opener session.Opener
			if cfg.OpenBrowser {
				opener = browser.New()
			}

			mapURL, err := servedMapURL(cfg)
			if err != nil {
				return err
			}

			sess, err := session.New(session.Options{
				Table:  src.table,
				Source: cache.NewCachedSource(src.source, cfg.MarkerCacheSize, a.metrics),
				Renderer: render.New(render.Options{
					Zoom:        cfg.MapZoom,
					IconURL:     cfg.MapIconURL,
					MapboxToken: cfg.MapboxToken,
				}),
				Opener:    opener,
				Health:    src.health,
				MapPath:   cfg.MapPath(),
				MapURL:    mapURL,
				Threshold: cfg.ConfirmThreshold,
				Language:  cfg.DefaultLanguage,
				Genus:     cfg.DefaultGenus,
				Logger:    a.logger,
				Metrics:   a.metrics,
			})
			if err != nil {
				return err
			}

			if cfg.HTTPAddr != "" {
				mapDir := ""
				if cfg.ServeMaps {
					mapDir = cfg.MapDir
				}
				srv := httpadapter.NewServer(cfg.HTTPAddr, sess, mapDir, a.logger)
				stopServer := srv.RunInBackground(cfg.ShutdownTimeout)
				defer func() {
					if err := stopServer(); err != nil {
						a.logger.Error("http server shutdown error", "error", err)
					}
				}()
			}

			a.logger.Info("map dialog started",
				"genus", sess.Genus(),
				"language", sess.Language(),
				"genera", src.table.Len(),
				"store", cfg.StoreDriver,
			)

			program := tea.NewProgram(ui.NewSelectionModel(ctx, sess), tea.WithContext(ctx))
			final, err := program.Run()
			if err != nil {
				if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("run dialog: %w", err)
			}
			if m, ok := final.(ui.SelectionModel); ok {
				return m.Err()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&genusName, "genus", "g", "", "preselected genus (default DEFAULT_GENUS)")
	cmd.Flags().StringVarP(&language, "language", "l", "", "display language: Latin, Français or English (default DEFAULT_LANGUAGE)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "write the map without opening it")
	return cmd
}

// servedMapURL is the address of the rendered map on the embedded server, or
// "" when maps are not served and the file is opened directly.
func servedMapURL(cfg *config.Config) (string, error) {
	if cfg.HTTPAddr == "" || !cfg.ServeMaps {
		return "", nil
	}
	host, port, err := net.SplitHostPort(cfg.HTTPAddr)
	if err != nil {
		return "", fmt.Errorf("HTTP_ADDR %q: %w", cfg.HTTPAddr, err)
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + httpadapter.MapsPrefix + cfg.MapFile, nil
}
