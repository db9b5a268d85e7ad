package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rushteam/bookrec/config"
	_ "github.com/rushteam/bookrec/config/builders"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/filter"
	"github.com/rushteam/bookrec/model"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/rerank"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	w := cfg.Engine.FusionWeights()
	for s, want := range core.DefaultWeights() {
		if w.Get(s) != want {
			t.Errorf("weight %s = %v, want %v", s, w.Get(s), want)
		}
	}
	if got := cfg.Model.PopularityConfig(); got != model.DefaultPopularityConfig() {
		t.Errorf("PopularityConfig() = %+v, want %+v", got, model.DefaultPopularityConfig())
	}
	if cfg.Engine.DefaultN != 10 || cfg.Engine.MaxN != 100 {
		t.Errorf("N defaults = %d/%d", cfg.Engine.DefaultN, cfg.Engine.MaxN)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bookrec.yaml")
	data := `
engine:
  default_n: 20
  weights:
    popularity: 0.5
model:
  trending_window: 168h
log:
  level: debug
pipeline:
  - type: filter
    config:
      filters:
        - type: expr
          expr: "book.rating_count >= 10"
        - type: blacklist
          item_ids: [7, 8]
  - type: rerank.topn
    config:
      n: 5
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.DefaultN != 20 {
		t.Errorf("DefaultN = %d, want 20", cfg.Engine.DefaultN)
	}
	if cfg.Engine.MaxN != 100 {
		t.Errorf("MaxN = %d, want default 100", cfg.Engine.MaxN)
	}
	if cfg.Model.TrendingWindow != 168*time.Hour {
		t.Errorf("TrendingWindow = %v", cfg.Model.TrendingWindow)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}

	nodes, err := cfg.Nodes()
	if err != nil {
		t.Fatalf("Nodes: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("len(nodes) = %d, want 2", len(nodes))
	}
	fn, ok := nodes[0].(*filter.FilterNode)
	if !ok || len(fn.Filters) != 2 {
		t.Fatalf("nodes[0] = %#v, want filter node with 2 filters", nodes[0])
	}
	if topn, ok := nodes[1].(*rerank.TopNNode); !ok || topn.N != 5 {
		t.Errorf("nodes[1] = %#v, want TopN(5)", nodes[1])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"default n above max", func(c *config.Config) { c.Engine.DefaultN = 200 }},
		{"unknown weight", func(c *config.Config) { c.Engine.Weights["bogus"] = 0.1 }},
		{"negative weight", func(c *config.Config) { c.Engine.Weights["content"] = -1 }},
		{"redis without addr", func(c *config.Config) { c.Store.Kind = "redis" }},
		{"sqlite without dsn", func(c *config.Config) { c.Store.Kind = "sqlite" }},
		{"unknown store", func(c *config.Config) { c.Store.Kind = "etcd" }},
		{"bad log level", func(c *config.Config) { c.Log.Level = "loud" }},
		{"node without type", func(c *config.Config) {
			c.Pipeline = append(c.Pipeline, pipeline.NodeConfig{})
		}},
		{"unknown node", func(c *config.Config) {
			c.Pipeline = append(c.Pipeline, pipelineNode("rank.lr"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !core.IsInvalidInput(err) {
				t.Errorf("Validate() = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("BOOKREC_STORE_KIND", "redis")
	t.Setenv("BOOKREC_STORE_ADDR", "localhost:6379")
	t.Setenv("BOOKREC_DEFAULT_N", "7")
	t.Setenv("BOOKREC_METRICS_ENABLED", "true")

	cfg := config.Default()
	if err := cfg.LoadEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if cfg.Store.Kind != "redis" || cfg.Store.Addr != "localhost:6379" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Engine.DefaultN != 7 {
		t.Errorf("DefaultN = %d, want 7", cfg.Engine.DefaultN)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadEnvBadNumber(t *testing.T) {
	t.Setenv("BOOKREC_MAX_N", "many")
	cfg := config.Default()
	if err := cfg.LoadEnv(filepath.Join(t.TempDir(), "missing.env")); !core.IsInvalidInput(err) {
		t.Errorf("LoadEnv() = %v, want INVALID_INPUT", err)
	}
}

func TestSupportedTypes(t *testing.T) {
	got := config.SupportedTypes()
	want := []string{"filter", "rerank.diversity", "rerank.topn"}
	if len(got) != len(want) {
		t.Fatalf("SupportedTypes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SupportedTypes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func pipelineNode(typ string) pipeline.NodeConfig {
	return pipeline.NodeConfig{Type: typ, Config: map[string]interface{}{}}
}

func TestExampleConfig(t *testing.T) {
	cfg, err := config.Load(filepath.Join("..", "examples", "config", "bookrec.example.yaml"))
	if err != nil {
		t.Fatalf("Load(example) error = %v", err)
	}
	if cfg.Model.TrendingWindow != 720*time.Hour {
		t.Errorf("trending window = %v, want 720h", cfg.Model.TrendingWindow)
	}
	nodes, err := cfg.Nodes()
	if err != nil {
		t.Fatal(err)
	}
	// 第二个节点 disabled
	if len(nodes) != 1 {
		t.Fatalf("nodes = %d, want 1", len(nodes))
	}
	fn, ok := nodes[0].(*filter.FilterNode)
	if !ok || len(fn.Filters) != 2 {
		t.Errorf("node[0] = %#v, want filter node with 2 filters", nodes[0])
	}
}
