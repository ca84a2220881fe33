package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/abelbrown/blogwiki/internal/config"
	"github.com/abelbrown/blogwiki/internal/coord"
	"github.com/abelbrown/blogwiki/internal/logging"
	"github.com/abelbrown/blogwiki/internal/paging"
	"github.com/abelbrown/blogwiki/internal/render"
	"github.com/abelbrown/blogwiki/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	if err := logging.Init(config.LogDir()); err != nil {
		// The reader still works without a log file.
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	defer logging.Close()

	cfg, err := loadConfig(opts)
	if err != nil {
		logging.Error("loading config", "err", err)
		return err
	}
	logging.Debug("config loaded", "sources", len(cfg.EnabledSources()), "theme", cfg.Theme)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	listScroll, detailScroll := cfg.ListScroll(), cfg.DetailScroll()
	app := ui.NewApp(
		ui.DefaultCommands(st, cfg.PageSize, paging.WithLogger(logging.WithPrefix("paging"))),
		ui.Options{
			ListScroll:   &listScroll,
			DetailScroll: &detailScroll,
			Renderer:     render.NewRenderer(cfg.Theme),
		},
	)

	program := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	// Imports run in the background and report through the program.
	var coordinator *coord.Coordinator
	if len(cfg.EnabledSources()) > 0 {
		coordinator = newCoordinator(cfg, st)
		coordinator.Start(ctx, program)
	}

	logging.Info("tui started", "db", cfg.DatabasePath(), "page_size", cfg.PageSize)
	_, err = program.Run()

	// Graceful shutdown
	cancel()
	if coordinator != nil {
		coordinator.Wait()
	}

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logging.Error("tui exited", "err", err)
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
