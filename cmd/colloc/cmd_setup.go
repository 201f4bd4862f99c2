package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/mgomes/colloc/internal/anthropic"
	"github.com/mgomes/colloc/internal/cohere"
	"github.com/mgomes/colloc/internal/config"
	"github.com/mgomes/colloc/internal/tui"
)

var errSetupCancelled = errors.New("setup cancelled")

func newSetupCmd(state *appState) *cli.Command {
	var provider string

	return &cli.Command{
		Name:      "setup",
		Usage:     "Configure the API key and model",
		UsageText: "colloc setup [--provider cohere|anthropic]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "provider",
				Usage:       "collocation provider (cohere, anthropic)",
				Destination: &provider,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if provider != "" && provider != state.cfg.Provider {
				state.cfg.Provider = provider
				state.cfg.ChatModel = ""
				state.cfg.ApplyDefaults()
			}
			if err := runSetup(ctx, state); err != nil {
				return err
			}
			fmt.Printf("Saved config to %s\n", state.configPath)
			return nil
		},
	}
}

// runSetup runs the setup wizard, saves the result and points the lookup
// service at the new backend.
func runSetup(ctx context.Context, state *appState) error {
	cfg := state.cfg
	switch cfg.Provider {
	case config.ProviderCohere, config.ProviderAnthropic:
	default:
		return fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	program := tea.NewProgram(newSetupRunner(ctx, cfg), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return err
	}

	runner, ok := finalModel.(setupRunner)
	if !ok || runner.apiKey == "" {
		return errSetupCancelled
	}

	cfg.SetAPIKey(runner.apiKey)
	cfg.ChatModel = runner.model
	if err := cfg.Save(state.configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	state.service.SetAnalyzer(newAnalyzer(cfg))
	log.Info().Str("provider", cfg.Provider).Str("model", cfg.ChatModel).Msg("setup complete")
	return nil
}

type keyValidator func(ctx context.Context, apiKey string) error

func validatorFor(cfg *config.Config) keyValidator {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return func(ctx context.Context, apiKey string) error {
			return anthropic.NewClient(apiKey, cfg.ChatModel).ValidateAPIKey(ctx)
		}
	default:
		return func(ctx context.Context, apiKey string) error {
			return cohere.NewClient(apiKey, cfg.ChatModel, cfg.EmbedModel, cfg.EmbedDim).ValidateAPIKey(ctx)
		}
	}
}

func setupProvider(cfg *config.Config) tui.SetupProvider {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return tui.SetupProvider{
			Name:         "Anthropic",
			KeysURL:      "https://console.anthropic.com/settings/keys",
			DefaultModel: config.DefaultChatModel(cfg.Provider),
		}
	default:
		return tui.SetupProvider{
			Name:         "Cohere",
			KeysURL:      "https://dashboard.cohere.com/api-keys",
			DefaultModel: config.DefaultChatModel(cfg.Provider),
		}
	}
}

type setupRunner struct {
	ctx        context.Context
	setupModel tui.SetupModel
	validate   keyValidator
	apiKey     string
	model      string
}

func newSetupRunner(ctx context.Context, cfg *config.Config) setupRunner {
	return setupRunner{
		ctx:        ctx,
		setupModel: tui.NewSetupModel(setupProvider(cfg)),
		validate:   validatorFor(cfg),
	}
}

func (m setupRunner) Init() tea.Cmd {
	return tea.Batch(m.setupModel.Init(), tea.EnableBracketedPaste)
}

func (m setupRunner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tui.SetupSubmitMsg:
		if err := m.validate(m.ctx, msg.APIKey); err != nil {
			newModel, _ := m.setupModel.Update(tui.SetupErrorMsg{Error: "Invalid API key: " + err.Error()})
			if sm, ok := newModel.(tui.SetupModel); ok {
				m.setupModel = sm
			}
			return m, nil
		}

		m.apiKey = msg.APIKey
		m.model = msg.Model
		return m, tea.Quit

	default:
		newModel, cmd := m.setupModel.Update(msg)
		if sm, ok := newModel.(tui.SetupModel); ok {
			m.setupModel = sm
		}
		return m, cmd
	}
}

func (m setupRunner) View() string {
	return m.setupModel.View()
}
