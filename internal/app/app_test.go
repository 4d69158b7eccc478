package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/kailas-cloud/wayfarer/internal/config"
	"github.com/kailas-cloud/wayfarer/internal/domain"
	domrisk "github.com/kailas-cloud/wayfarer/internal/domain/risk"
	"github.com/kailas-cloud/wayfarer/internal/domain/trip"
	healthuc "github.com/kailas-cloud/wayfarer/internal/usecase/health"
	planneruc "github.com/kailas-cloud/wayfarer/internal/usecase/planner"
)

func seedPath(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "config", "knowledge.yaml")
}

func testConfig(t *testing.T, cacheDriver string) config.Config {
	t.Helper()
	yaml := strings.Join([]string{
		"embedding:",
		"  provider: hash",
		"  dimensions: 384",
		"  query_instruction: 'query: '",
		"cache:",
		"  driver: " + cacheDriver,
		"index:",
		"  path: " + filepath.Join(t.TempDir(), "idx", "knowledge.db"),
		"  seed_file: " + seedPath(t),
		"sources:",
		"  mode: mock",
	}, "\n")
	cfg, err := config.Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("config.Parse: %v", err)
	}
	return cfg
}

func TestBuild_SeedsAndSavesSnapshot(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "memory")

	a, err := Build(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer a.Close()

	if a.Index.Len() == 0 {
		t.Fatal("expected seeded documents")
	}
	if _, err := os.Stat(cfg.Index.Path); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}

	// A second build loads the snapshot instead of re-seeding.
	cfg.Index.SeedFile = ""
	b, err := Build(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	defer b.Close()
	if b.Index.Len() != a.Index.Len() {
		t.Errorf("loaded %d documents, seeded %d", b.Index.Len(), a.Index.Len())
	}
}

func TestBuild_RejectsSnapshotFromAnotherModel(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "memory")

	a, err := Build(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	a.Close()

	// Same 384 dimensions, different vector space.
	cfg.Embedding.Provider = "openai"
	cfg.Embedding.Model = "all-minilm"
	cfg.Embedding.BaseURL = "http://127.0.0.1:1/v1"
	_, err = Build(ctx, cfg, nil)
	if !errors.Is(err, domain.ErrModelMismatch) {
		t.Fatalf("expected ErrModelMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "--force") {
		t.Errorf("error should point at a rebuild: %v", err)
	}
}

func TestModelID(t *testing.T) {
	tests := []struct {
		cfg  config.EmbeddingConfig
		want string
	}{
		{config.EmbeddingConfig{Provider: "hash", Model: "all-minilm"}, "hash"},
		{config.EmbeddingConfig{Provider: "openai", Model: "all-minilm"}, "all-minilm"},
		{config.EmbeddingConfig{Provider: "openai", Model: "bge-small"}, "bge-small"},
	}
	for _, tt := range tests {
		if got := ModelID(tt.cfg); got != tt.want {
			t.Errorf("ModelID(%+v) = %q, want %q", tt.cfg, got, tt.want)
		}
	}
}

func TestBuild_RetrieveAndPlan(t *testing.T) {
	ctx := context.Background()
	a, err := Build(ctx, testConfig(t, "memory"), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer a.Close()

	req, err := a.Retrieval.NewRequest("best food markets in Tokyo", "tokyo", []string{"food"}, 10)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	results, err := a.Retrieval.Retrieve(ctx, &req)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	// top_k 10 over-fetches the whole seed, so both Tokyo snippets survive the filter.
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i := range results {
		doc := results[i].Document()
		meta := doc.Metadata()
		if !strings.Contains(strings.ToLower(meta.Destination()), "tokyo") {
			t.Errorf("result %d destination = %q", i, meta.Destination())
		}
	}

	tr, err := trip.New("Tokyo", "2026-04-01", "2026-04-05", 2000, "USD", []string{"food", "culture"})
	if err != nil {
		t.Fatalf("trip.New: %v", err)
	}
	plan, err := a.Planner.Plan(ctx, tr)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Source != "mock" {
		t.Errorf("source = %q", plan.Source)
	}
	if plan.Gate.Decision != planneruc.Proceed && plan.Gate.Decision != planneruc.NeedsApproval {
		t.Errorf("unexpected decision %q", plan.Gate.Decision)
	}
}

func TestBuild_HealthWithoutCache(t *testing.T) {
	a, err := Build(context.Background(), testConfig(t, "none"), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer a.Close()

	r := a.Health.Check(context.Background())
	if r.Status != healthuc.Healthy {
		t.Errorf("expected healthy, got %q (%v)", r.Status, r.Checks)
	}
	if _, ok := r.Checks["cache"]; ok {
		t.Error("cache check should be skipped when the cache is disabled")
	}
}

func TestBuild_MissingSeedFile(t *testing.T) {
	cfg := testConfig(t, "memory")
	cfg.Index.SeedFile = filepath.Join(t.TempDir(), "missing.yaml")

	if _, err := Build(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for a missing seed file")
	}
}

func TestRiskTables(t *testing.T) {
	tables := RiskTables(config.RiskConfig{
		LuxuryDestinations: []string{"Santorini"},
		BaseCosts:          map[string]float64{"luxury": 400},
		CrowdingWeights:    config.CrowdingConfig{Holiday: 5},
	})

	if tables.BaseCosts[domrisk.TierLuxury] != 400 {
		t.Errorf("luxury base cost = %v", tables.BaseCosts[domrisk.TierLuxury])
	}
	if tables.Crowding.Holiday != 5 {
		t.Errorf("holiday weight = %v", tables.Crowding.Holiday)
	}

	filled := tables.WithDefaults()
	if filled.Tier("Santorini") != domrisk.TierLuxury {
		t.Errorf("Santorini tier = %q", filled.Tier("Santorini"))
	}
	if filled.BaseCosts[domrisk.TierBudget] == 0 {
		t.Error("budget base cost should fall back to the default")
	}
}

func TestSourceConfig(t *testing.T) {
	sc := SourceConfig(config.SourcesConfig{
		Mode:       "mock",
		TimeoutSec: 3,
		Holidays:   []config.HolidayConfig{{Name: "New Year", Date: "01-01"}},
	}, nil)

	if sc.Timeout.Seconds() != 3 {
		t.Errorf("timeout = %v", sc.Timeout)
	}
	if len(sc.Holidays) != 1 || sc.Holidays[0].Date != "01-01" {
		t.Errorf("holidays = %+v", sc.Holidays)
	}
}
