package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civ5archive/wikicrawler/internal/api"
	"github.com/civ5archive/wikicrawler/internal/config"
	"github.com/civ5archive/wikicrawler/internal/crawler"
	"github.com/civ5archive/wikicrawler/internal/logging"
	"github.com/civ5archive/wikicrawler/internal/politeness"
	"github.com/civ5archive/wikicrawler/internal/progress"
	"github.com/civ5archive/wikicrawler/internal/progress/sinks"
)

const journalFileName = "crawl_log.txt"

// newCrawlCmd creates and configures the 'crawl' subcommand.
func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Starts the wiki crawl",
		Long: `Runs the breadth-first crawl from the configured seed URL. If a
checkpoint file exists the crawl resumes from it; otherwise it starts
fresh. An interrupt (SIGINT/SIGTERM) drains gracefully: the current fetch
is abandoned and a final checkpoint is written before exit.`,
		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	promSink, err := sinks.NewPrometheusSink(registry)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	hub := progress.NewHub(
		progress.Config{Logger: logger},
		sinks.NewLogSink(logger.Named("progress")),
		promSink,
	)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := hub.Close(closeCtx); cerr != nil {
			logger.Warn("progress hub close failed", zap.Error(cerr))
		}
	}()

	engine, journal, err := buildEngine(cfg, hub, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := journal.Close(); cerr != nil {
			logger.Warn("journal close failed", zap.Error(cerr))
		}
	}()

	if cfg.Server.Enabled {
		server := api.NewServer(cfg.Server.Port, engine.Status, registry, logger.Named("api"))
		server.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if serr := server.Shutdown(shutdownCtx); serr != nil {
				logger.Warn("status server shutdown failed", zap.Error(serr))
			}
		}()
	}

	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run crawl: %w", err)
	}
	return nil
}

func buildEngine(cfg config.Config, emitter progress.Emitter, logger *zap.Logger) (*crawler.Engine, *crawler.Journal, error) {
	classifier := crawler.NewClassifier(crawler.ClassifierConfig{
		SeedURL:            cfg.Crawler.SeedURL,
		Domain:             cfg.Site.Domain,
		LanguageCodes:      cfg.Site.LanguageCodes,
		NamespacePrefixes:  cfg.Site.NamespacePrefixes,
		ArticleSuffix:      cfg.Site.ArticleSuffix,
		ExcludedPageSuffix: cfg.Site.ExcludedPageSuffix,
	})

	fetcher, err := crawler.NewCollyFetcher(cfg.Crawler.UserAgent, cfg.Crawler.RequestTimeout, logger.Named("fetcher"))
	if err != nil {
		return nil, nil, fmt.Errorf("init fetcher: %w", err)
	}

	store, err := crawler.NewArticleStore(cfg.Crawler.OutputDir, cfg.Site.ArticleSuffix, logger.Named("store"))
	if err != nil {
		return nil, nil, fmt.Errorf("init article store: %w", err)
	}

	journal, err := crawler.OpenJournal(filepath.Join(cfg.Crawler.OutputDir, journalFileName), logger.Named("journal"))
	if err != nil {
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}

	limiter := politeness.New(politeness.Config{
		RequestsPerSecond: cfg.Crawler.RequestsPerSecond,
		Burst:             cfg.Crawler.RequestBurst,
	})

	engine, err := crawler.NewEngine(
		crawler.EngineConfig{
			SeedURL:            cfg.Crawler.SeedURL,
			MaxArticles:        cfg.Crawler.MaxArticles,
			CheckpointInterval: cfg.Checkpoint.Interval,
			ProgressInterval:   cfg.Crawler.ProgressInterval,
		},
		classifier,
		fetcher,
		crawler.NewLinkExtractor(cfg.Site.Domain),
		store,
		journal,
		crawler.NewCheckpointManager(cfg.Checkpoint.Path, logger.Named("checkpoint")),
		limiter,
		emitter,
		nil,
		logger.Named("engine"),
	)
	if err != nil {
		if cerr := journal.Close(); cerr != nil {
			logger.Warn("journal close failed", zap.Error(cerr))
		}
		return nil, nil, fmt.Errorf("init engine: %w", err)
	}
	return engine, journal, nil
}
