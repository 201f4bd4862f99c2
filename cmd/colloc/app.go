package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/mgomes/colloc/internal/anthropic"
	"github.com/mgomes/colloc/internal/cohere"
	"github.com/mgomes/colloc/internal/collocation"
	"github.com/mgomes/colloc/internal/config"
	"github.com/mgomes/colloc/internal/db"
	"github.com/mgomes/colloc/internal/history"
	"github.com/mgomes/colloc/internal/lookup"
	"github.com/mgomes/colloc/internal/related"
)

// appState holds everything the commands share. It is filled in by the root
// Before hook.
type appState struct {
	cfg        *config.Config
	configPath string
	db         *db.DB
	history    *history.Store
	related    *related.Index
	service    *lookup.Service
}

func (a *appState) open(ctx context.Context, cfg *config.Config, configPath string) error {
	dbPath, err := config.DBPath()
	if err != nil {
		return fmt.Errorf("database path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	embedDim := 0
	if cfg.Embeddings() {
		embedDim = cfg.EmbedDim
	}
	database, err := db.Open(dbPath, embedDim)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if n, err := database.DeleteExpired(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to sweep expired cache entries")
	} else if n > 0 {
		log.Debug().Int64("removed", n).Msg("swept expired cache entries")
	}

	hist := history.NewStore(database, log.With().Str("component", "history").Logger())
	hist.Load(ctx)

	var embedder related.Embedder
	if cfg.Embeddings() {
		embedder = cohere.NewClient(cfg.CohereAPIKey, cfg.ChatModel, cfg.EmbedModel, cfg.EmbedDim)
	}
	idx := related.New(database, embedder)

	a.cfg = cfg
	a.configPath = configPath
	a.db = database
	a.history = hist
	a.related = idx
	a.service = lookup.New(newAnalyzer(cfg), hist,
		lookup.WithCache(database, cfg.CacheTTLDuration()),
		lookup.WithRelated(idx),
		lookup.WithLogger(log.With().Str("component", "lookup").Logger()),
	)

	log.Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.ChatModel).
		Bool("related", idx.Enabled()).
		Msg("colloc started")
	return nil
}

func (a *appState) close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// newAnalyzer returns nil when the selected provider has no API key.
func newAnalyzer(cfg *config.Config) collocation.Analyzer {
	if cfg.APIKey() == "" {
		return nil
	}
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return anthropic.NewClient(cfg.AnthropicAPIKey, cfg.ChatModel)
	default:
		return cohere.NewClient(cfg.CohereAPIKey, cfg.ChatModel, cfg.EmbedModel, cfg.EmbedDim)
	}
}
