// Package app is the composition root shared by the wayfarer server and CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wayfarer/internal/config"
	"github.com/kailas-cloud/wayfarer/internal/db"
	"github.com/kailas-cloud/wayfarer/internal/db/memory"
	"github.com/kailas-cloud/wayfarer/internal/db/sqlite"
	"github.com/kailas-cloud/wayfarer/internal/db/valkey"
	"github.com/kailas-cloud/wayfarer/internal/domain"
	domrisk "github.com/kailas-cloud/wayfarer/internal/domain/risk"
	"github.com/kailas-cloud/wayfarer/internal/domain/search/request"
	"github.com/kailas-cloud/wayfarer/internal/index"
	"github.com/kailas-cloud/wayfarer/internal/metrics"
	"github.com/kailas-cloud/wayfarer/internal/repository/embcache"
	"github.com/kailas-cloud/wayfarer/internal/repository/knowledge"
	"github.com/kailas-cloud/wayfarer/internal/source"
	"github.com/kailas-cloud/wayfarer/internal/transport/hashembed"
	openaiEmb "github.com/kailas-cloud/wayfarer/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/wayfarer/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/wayfarer/internal/usecase/health"
	planneruc "github.com/kailas-cloud/wayfarer/internal/usecase/planner"
	retrievaluc "github.com/kailas-cloud/wayfarer/internal/usecase/retrieval"
	riskuc "github.com/kailas-cloud/wayfarer/internal/usecase/risk"
)

// App holds the wired services.
type App struct {
	Config    config.Config
	Index     *index.Flat
	Retrieval *retrievaluc.Service
	Scorer    *riskuc.Scorer
	Source    source.DataSource
	Planner   *planneruc.Service
	Health    *healthuc.Service

	cache  db.Store
	logger *zap.Logger
}

// Build wires every service from cfg and loads the index snapshot.
// When no snapshot exists the seed file is indexed and saved.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Register()

	a := &App{Config: cfg, logger: logger}

	cache, err := buildCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	a.cache = cache

	provider := buildProvider(cfg.Embedding, logger)
	docEmbedder := buildEmbedder(provider, cfg, cfg.Embedding.DocumentInstruction, cache, logger)
	queryEmbedder := buildEmbedder(provider, cfg, cfg.Embedding.QueryInstruction, cache, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	idx, err := index.New(cfg.Embedding.Dimensions, ModelID(cfg.Embedding), sqlite.SnapshotStore{})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}
	a.Index = idx

	a.Retrieval = retrievaluc.New(idx, docEmbedder, queryEmbedder, retrievaluc.Options{
		InterestBoost: cfg.Retrieval.InterestBoost,
		Limits: request.Limits{
			DefaultTopK: cfg.Retrieval.DefaultTopK,
			MaxTopK:     cfg.Retrieval.MaxTopK,
		},
	})

	a.Scorer, err = riskuc.NewScorer(RiskTables(cfg.Risk))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("risk tables: %w", err)
	}

	a.Source, err = source.New(SourceConfig(cfg.Sources, logger))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("data source: %w", err)
	}

	a.Planner = planneruc.New(a.Source, a.Scorer, a.Retrieval, planneruc.Options{
		BaseCurrency: cfg.Sources.BaseCurrency,
	})

	// Pass nil interface (not typed nil pointer!) when the cache is disabled.
	var pinger healthuc.CachePinger
	if cache != nil {
		pinger = cache
	}
	a.Health = healthuc.New(idx, pinger, newEmbeddingHealthChecker(provider))

	if err := a.loadIndex(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Seed indexes the documents of a seed file and returns how many were added.
func (a *App) Seed(ctx context.Context, path string) (int, error) {
	docs, err := knowledge.LoadSeed(path)
	if err != nil {
		return 0, err
	}
	if err := a.Retrieval.AddDocuments(ctx, docs); err != nil {
		return 0, fmt.Errorf("index seed %s: %w", path, err)
	}
	return len(docs), nil
}

// Save writes the index snapshot to the configured path.
func (a *App) Save(ctx context.Context) error {
	path := a.Config.Index.Path
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create index dir: %w", err)
		}
	}
	return a.Index.Save(ctx, path)
}

// Close releases the cache connection.
func (a *App) Close() {
	if a.cache != nil {
		a.cache.Close()
		a.cache = nil
	}
}

func (a *App) loadIndex(ctx context.Context) error {
	path := a.Config.Index.Path
	if path != "" {
		err := a.Index.Load(ctx, path)
		if err == nil {
			a.logger.Info("Index loaded", zap.String("path", path), zap.Int("documents", a.Index.Len()))
			metrics.IndexDocuments.Set(float64(a.Index.Len()))
			return nil
		}
		if errors.Is(err, domain.ErrModelMismatch) {
			return fmt.Errorf("%w (rebuild with `wayfarerctl index build --force`)", err)
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}

	seed := a.Config.Index.SeedFile
	if seed == "" {
		a.logger.Warn("Index is empty: no snapshot and no seed file configured")
		return nil
	}
	n, err := a.Seed(ctx, seed)
	if err != nil {
		return err
	}
	a.logger.Info("Index seeded", zap.String("seed_file", seed), zap.Int("documents", n))

	if err := a.Save(ctx); err != nil {
		return err
	}
	return nil
}

func buildCache(ctx context.Context, cfg config.CacheConfig) (db.Store, error) {
	switch cfg.Driver {
	case "none":
		return nil, nil
	case "memory", "":
		store, err := memory.NewStore(memory.Config{
			Size: cfg.Size,
			TTL:  time.Duration(cfg.TTLSec) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("create memory cache: %w", err)
		}
		return store, nil
	case "valkey", "redis":
		store, err := valkey.NewStore(valkey.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s cache: %w", cfg.Driver, err)
		}
		if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return nil, fmt.Errorf("%s cache not ready: %w", cfg.Driver, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

// ModelID names the vector space a provider produces. It keys the embedding cache
// and is recorded in index snapshots. The hash provider ignores embedding.model,
// so its vectors are identified by the provider alone.
func ModelID(cfg config.EmbeddingConfig) string {
	if cfg.Provider == "openai" {
		return cfg.Model
	}
	return cfg.Provider
}

func buildProvider(cfg config.EmbeddingConfig, logger *zap.Logger) domain.Embedder {
	var base domain.Embedder
	switch cfg.Provider {
	case "openai":
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Timeout:    time.Duration(cfg.TimeoutSec) * time.Second,
			Logger:     logger,
		})
	default:
		base = hashembed.New(cfg.Dimensions)
	}
	return domain.NewDimensionGuard(base, cfg.Dimensions)
}

// buildEmbedder assembles the decorator chain: Provider -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	provider domain.Embedder,
	cfg config.Config,
	instruction string,
	store db.Store,
	logger *zap.Logger,
) domain.Embedder {
	embedder := provider
	if store != nil {
		embedder = embcache.New(provider, store, embcache.Options{
			Model: ModelID(cfg.Embedding),
			TTL:   time.Duration(cfg.Cache.TTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.Embedding.Provider, cfg.Embedding.Model, logger,
	).WithChunkSize(cfg.Embedding.BatchSize)

	// Instruction prefix (outermost, the cache key includes it)
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

// RiskTables converts the risk config section into scorer tables.
// Unset entries fall back to the built-in tables inside the scorer.
func RiskTables(cfg config.RiskConfig) riskuc.Tables {
	t := riskuc.Tables{
		BudgetDestinations: cfg.BudgetDestinations,
		LuxuryDestinations: cfg.LuxuryDestinations,
		InterestCosts:      cfg.InterestCosts,
		Crowding: riskuc.CrowdingWeights{
			Holiday: cfg.CrowdingWeights.Holiday,
			High:    cfg.CrowdingWeights.High,
			Medium:  cfg.CrowdingWeights.Medium,
			Low:     cfg.CrowdingWeights.Low,
		},
	}
	if len(cfg.BaseCosts) > 0 {
		t.BaseCosts = make(map[domrisk.Tier]float64, len(cfg.BaseCosts))
		for tier, cost := range cfg.BaseCosts {
			t.BaseCosts[domrisk.Tier(tier)] = cost
		}
	}
	return t
}

// SourceConfig converts the sources config section into a data source config.
func SourceConfig(cfg config.SourcesConfig, logger *zap.Logger) source.Config {
	holidays := make([]source.CalendarEntry, len(cfg.Holidays))
	for i, h := range cfg.Holidays {
		holidays[i] = source.CalendarEntry{Name: h.Name, Date: h.Date}
	}
	return source.Config{
		Mode:           cfg.Mode,
		WeatherAPIKey:  cfg.OpenWeatherAPIKey,
		WeatherBaseURL: cfg.OpenWeatherBaseURL,
		RatesAPIKey:    cfg.ExchangeRateAPIKey,
		RatesBaseURL:   cfg.ExchangeRateURL,
		Timeout:        time.Duration(cfg.TimeoutSec) * time.Second,
		Holidays:       holidays,
		Logger:         logger,
	}
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
