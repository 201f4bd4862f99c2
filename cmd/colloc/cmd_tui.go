package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/mgomes/colloc/internal/config"
	"github.com/mgomes/colloc/internal/notify"
	"github.com/mgomes/colloc/internal/tui"
)

func newTuiCmd(state *appState) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Usage:     "Open the interactive lookup screen",
		UsageText: "colloc tui",
		Action: func(ctx context.Context, c *cli.Command) error {
			return runTui(ctx, state)
		},
	}
}

func runTui(ctx context.Context, state *appState) error {
	if state.cfg.APIKey() == "" {
		if err := runSetup(ctx, state); err != nil {
			return fmt.Errorf("setup: %w", err)
		}
	}

	queue := notify.New()
	defer queue.Close()

	model := tui.NewLookupModel(state.service, queue, state.cfg.ToastDurationValue())
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// Removal timers fire outside the event loop, and Add is called from
	// inside it, so Send must not block the caller.
	queue.Subscribe(func([]notify.Notification) {
		go program.Send(tui.ToastsChangedMsg{})
	})

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	startConfigWatcher(watchCtx, state, program)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// startConfigWatcher swaps the analyzer whenever the config file changes.
func startConfigWatcher(ctx context.Context, state *appState, program *tea.Program) {
	w, err := config.NewWatcher(state.configPath, func(cfg *config.Config, err error) {
		if err != nil {
			log.Warn().Err(err).Msg("config reload failed")
			program.Send(tui.ConfigReloadedMsg{Err: err})
			return
		}
		state.service.SetAnalyzer(newAnalyzer(cfg))
		log.Info().Str("provider", cfg.Provider).Str("model", cfg.ChatModel).Msg("config reloaded")
		program.Send(tui.ConfigReloadedMsg{})
	})
	if err != nil {
		log.Warn().Err(err).Msg("config watcher unavailable")
		return
	}

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Warn().Err(err).Msg("config watcher stopped")
		}
	}()
}
