package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"bidash/internal/aggregate"
	"bidash/internal/config"
	"bidash/internal/dataset"
	"bidash/internal/exporter"
	"bidash/internal/infrastructure"
	"bidash/internal/insights"
	"bidash/internal/join"
	"bidash/pkg/contracts/domain"
)

func main() {
	facebook := flag.String("facebook", "", "path to the Facebook marketing CSV (overrides config)")
	google := flag.String("google", "", "path to the Google marketing CSV (overrides config)")
	tiktok := flag.String("tiktok", "", "path to the TikTok marketing CSV (overrides config)")
	business := flag.String("business", "", "path to the business metrics CSV (overrides config)")
	outDir := flag.String("out", "", "output directory for derived artifacts (overrides config)")
	onError := flag.String("on-error", "", "malformed row policy: abort or skip (overrides config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	if *facebook != "" {
		cfg.Sources.Facebook = *facebook
	}
	if *google != "" {
		cfg.Sources.Google = *google
	}
	if *tiktok != "" {
		cfg.Sources.TikTok = *tiktok
	}
	if *business != "" {
		cfg.Sources.Business = *business
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *onError != "" {
		cfg.Loader.OnError = *onError
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	start := time.Now()
	logger.Info("pipeline starting",
		slog.String("facebook", cfg.Sources.Facebook),
		slog.String("google", cfg.Sources.Google),
		slog.String("tiktok", cfg.Sources.TikTok),
		slog.String("business", cfg.Sources.Business),
		slog.String("output_dir", cfg.Output.Dir))

	if err := cfg.EnsureOutputDir(); err != nil {
		return err
	}

	loader := dataset.NewLoader(dataset.Options{
		OnError:       cfg.Loader.OnError,
		ColumnAliases: cfg.Loader.ColumnAliases,
	}, logger)

	loadStart := time.Now()
	ds, err := loader.Load(ctx, dataset.Sources{
		Facebook: cfg.Sources.Facebook,
		Google:   cfg.Sources.Google,
		TikTok:   cfg.Sources.TikTok,
		Business: cfg.Sources.Business,
	})
	if err != nil {
		return err
	}
	logger.Info("load complete",
		slog.Int("marketing_rows", len(ds.Marketing)),
		slog.Int("business_rows", len(ds.Business)),
		slog.Int("skipped_rows", ds.SkippedRows),
		slog.Duration("elapsed", time.Since(loadStart)))

	aggStart := time.Now()
	byDate, err := aggregate.GroupMarketing(ds.Marketing, domain.ByDate)
	if err != nil {
		return err
	}
	byPlatform, err := aggregate.GroupMarketing(ds.Marketing, domain.ByPlatform)
	if err != nil {
		return err
	}
	byTactic, err := aggregate.GroupMarketing(ds.Marketing, domain.ByTactic)
	if err != nil {
		return err
	}
	businessDays := aggregate.GroupBusiness(ds.Business)
	combined := join.Daily(byDate, businessDays)
	logger.Info("aggregation complete",
		slog.Int("daily_rows", len(byDate)),
		slog.Int("combined_rows", len(combined)),
		slog.Duration("elapsed", time.Since(aggStart)))

	ins, err := insights.Build(ds.Marketing, ds.Business, combined)
	if err != nil {
		return err
	}

	exportStart := time.Now()
	exp := exporter.New(cfg.Output.Dir, logger)
	if err := exp.ExportMarketingRecords(ds.Marketing); err != nil {
		return err
	}
	if err := exp.ExportBusinessRecords(ds.Business); err != nil {
		return err
	}
	if err := exp.ExportCombined(combined); err != nil {
		return err
	}
	if err := exp.ExportSummary(exporter.PlatformArtifact, byPlatform); err != nil {
		return err
	}
	if err := exp.ExportSummary(exporter.TacticArtifact, byTactic); err != nil {
		return err
	}
	if err := exp.ExportInsights(ins); err != nil {
		return err
	}
	if err := exp.ExportWorkbook(exporter.WorkbookTables{
		Daily:     byDate,
		Platforms: byPlatform,
		Tactics:   byTactic,
		Combined:  combined,
	}); err != nil {
		return err
	}
	logger.Info("export complete", slog.Duration("elapsed", time.Since(exportStart)))

	logger.Info("pipeline finished", slog.Duration("total", time.Since(start)))
	return nil
}
