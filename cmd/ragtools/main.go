package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragtools/internal/config"
	logpkg "github.com/kailas-cloud/ragtools/internal/logger"
	"github.com/kailas-cloud/ragtools/internal/repository/tabular"
	"github.com/kailas-cloud/ragtools/internal/transport/tavily"
	chunkinguc "github.com/kailas-cloud/ragtools/internal/usecase/chunking"
	healthuc "github.com/kailas-cloud/ragtools/internal/usecase/health"
	websearchuc "github.com/kailas-cloud/ragtools/internal/usecase/websearch"
)

// envFlag overrides the ENV variable for config and logger selection.
var envFlag string

var rootCmd = &cobra.Command{
	Use:           "ragtools",
	Short:         "Tabular chunking and web search helpers for RAG pipelines",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFlag, "env", "", "config environment (default: $ENV or local)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app is the composition root shared by all commands.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
	chunks *chunkinguc.Service
	search *websearchuc.Service
	health *healthuc.Service
}

func newApp() (*app, error) {
	env := envFlag
	if env == "" {
		env = config.GetEnv()
	}

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	readerOpts := []tabular.Option{tabular.WithNAValues(cfg.Chunking.NAValues...)}
	if cfg.Chunking.Sheet != "" {
		readerOpts = append(readerOpts, tabular.WithSheet(cfg.Chunking.Sheet))
	}
	chunks := chunkinguc.New(tabular.New(readerOpts...), logger).
		WithLimits(cfg.Chunking.MaxSamples, cfg.Chunking.MaxUniqueValues).
		WithKeywords(cfg.Chunking.MedicineKeywords, cfg.Chunking.ConditionKeywords)

	// Pass nil interfaces (not typed nil pointers) if search is not configured.
	var searcher websearchuc.Searcher
	var checker healthuc.SearchChecker
	if websearchuc.KeyConfigured(cfg.Search.APIKey) {
		client := tavily.NewClient(&tavily.Config{
			APIKey:      cfg.Search.APIKey,
			BaseURL:     cfg.Search.BaseURL,
			SearchDepth: cfg.Search.SearchDepth,
			Timeout:     time.Duration(cfg.Search.TimeoutSec) * time.Second,
			Logger:      logger,
		})
		searcher, checker = client, client
	}
	search := websearchuc.New(websearchuc.Config{
		APIKey:     cfg.Search.APIKey,
		MaxResults: cfg.Search.MaxResults,
		Provider:   cfg.Search.Provider,
	}, searcher, logger)

	return &app{
		env:    env,
		cfg:    cfg,
		logger: logger,
		chunks: chunks,
		search: search,
		health: healthuc.New(checker, logger),
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}
