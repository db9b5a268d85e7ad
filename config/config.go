// Package config 加载引擎配置，并维护可配置 Node 的注册表。
//
// 加载顺序：Default() -> YAML 文件 -> .env 与 BOOKREC_* 环境变量 -> Validate。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/logging"
	"github.com/rushteam/bookrec/model"
	"github.com/rushteam/bookrec/pipeline"
)

// Config 是完整的引擎配置。
type Config struct {
	Engine   EngineConfig          `yaml:"engine" validate:"required"`
	Model    ModelConfig           `yaml:"model" validate:"required"`
	Log      logging.Config        `yaml:"log"`
	Store    StoreConfig           `yaml:"store"`
	Metrics  MetricsConfig         `yaml:"metrics"`
	Pipeline []pipeline.NodeConfig `yaml:"pipeline" validate:"dive"`
}

// EngineConfig 控制请求期的融合与重排。
type EngineConfig struct {
	Weights map[string]float64 `yaml:"weights" validate:"dive,keys,oneof=popularity trending content collaborative demographic context quiz association,endkeys,gte=0"`

	ContentSeeds          int `yaml:"content_seeds" validate:"gte=1"`
	ContentNeighbours     int `yaml:"content_neighbours" validate:"gte=1"`
	AssociationSeeds      int `yaml:"association_seeds" validate:"gte=1"`
	AssociationNeighbours int `yaml:"association_neighbours" validate:"gte=1"`
	CategoryTopK          int `yaml:"category_top_k" validate:"gte=1"`

	DefaultN int `yaml:"default_n" validate:"gte=1,ltefield=MaxN"`
	MaxN     int `yaml:"max_n" validate:"gte=1"`
	// 融合后保留 CandidateFactor·N 个进入多样性重排
	CandidateFactor int `yaml:"candidate_factor" validate:"gte=1"`

	DiversityWeight float64 `yaml:"diversity_weight" validate:"gte=0"`
	NoveltyWeight   float64 `yaml:"novelty_weight" validate:"gte=0"`
	PopularityCap   float64 `yaml:"popularity_cap" validate:"gt=0"`

	DefaultContext     string `yaml:"default_context"`
	DefaultPersonality string `yaml:"default_personality"`

	ScorerTimeout time.Duration `yaml:"scorer_timeout" validate:"gte=0"`
	MaxConcurrent int           `yaml:"max_concurrent" validate:"gte=0"`
}

// ModelConfig 控制快照构建。
type ModelConfig struct {
	MaxFeatures      int           `yaml:"max_features" validate:"gte=1"`
	MinSupport       int           `yaml:"min_support" validate:"gte=0"`
	PopularityCap    int           `yaml:"popularity_cap" validate:"gte=1"`
	TrendingWindow   time.Duration `yaml:"trending_window" validate:"gt=0"`
	TrendingMinCount int           `yaml:"trending_min_count" validate:"gte=0"`
	TrendingCap      int           `yaml:"trending_cap" validate:"gte=1"`
	MinTrendingItems int           `yaml:"min_trending_items" validate:"gte=0"`
	ProfileSize      int           `yaml:"profile_size" validate:"gte=1"`
}

// StoreConfig 描述导出数据从哪里来、热门榜发布到哪里。
type StoreConfig struct {
	Kind     string `yaml:"kind" validate:"oneof=memory redis sqlite"`
	Addr     string `yaml:"addr" validate:"required_if=Kind redis"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	DSN      string `yaml:"dsn" validate:"required_if=Kind sqlite"`
	Prefix   string `yaml:"prefix" validate:"required"`

	// ExportKey 为空时使用 store.DefaultExportKey
	ExportKey    string `yaml:"export_key"`
	BlacklistKey string `yaml:"blacklist_key"`
	Publish      bool   `yaml:"publish"`
}

// MetricsConfig 控制 Prometheus 指标暴露。
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr" validate:"required_if=Enabled true"`
}

// Default 返回默认配置，所有常量与评分模型的默认值一致。
func Default() *Config {
	pop := model.DefaultPopularityConfig()
	weights := make(map[string]float64)
	for s, w := range core.DefaultWeights() {
		weights[string(s)] = w
	}
	return &Config{
		Engine: EngineConfig{
			Weights:               weights,
			ContentSeeds:          5,
			ContentNeighbours:     20,
			AssociationSeeds:      3,
			AssociationNeighbours: 15,
			CategoryTopK:          20,
			DefaultN:              10,
			MaxN:                  100,
			CandidateFactor:       3,
			DiversityWeight:       0.3,
			NoveltyWeight:         0.2,
			PopularityCap:         100,
			DefaultContext:        "afternoon",
			DefaultPersonality:    "adventurous",
		},
		Model: ModelConfig{
			MaxFeatures:      5000,
			MinSupport:       pop.MinSupport,
			PopularityCap:    pop.Cap,
			TrendingWindow:   pop.TrendingWindow,
			TrendingMinCount: pop.TrendingMinCount,
			TrendingCap:      pop.TrendingCap,
			MinTrendingItems: pop.MinTrendingItems,
			ProfileSize:      50,
		},
		Log:     logging.DefaultConfig(),
		Store:   StoreConfig{Kind: "memory", Prefix: "bookrec"},
		Metrics: MetricsConfig{Addr: ":9090"},
	}
}

// Load 读取 YAML 配置文件（path 为空时只使用默认值），再叠加环境变量并校验。
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.LoadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv 加载 .env 文件（不存在时忽略，已有的环境变量不会被覆盖），然后应用 BOOKREC_* 覆盖项。
func (c *Config) LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env: %w", err)
	}
	return c.applyEnv(os.Getenv)
}

func (c *Config) applyEnv(getenv func(string) string) error {
	strs := map[string]*string{
		"BOOKREC_LOG_LEVEL":      &c.Log.Level,
		"BOOKREC_LOG_FORMAT":     &c.Log.Format,
		"BOOKREC_STORE_KIND":     &c.Store.Kind,
		"BOOKREC_STORE_ADDR":     &c.Store.Addr,
		"BOOKREC_STORE_PASSWORD": &c.Store.Password,
		"BOOKREC_STORE_DSN":      &c.Store.DSN,
		"BOOKREC_STORE_PREFIX":   &c.Store.Prefix,
		"BOOKREC_METRICS_ADDR":   &c.Metrics.Addr,
	}
	for key, dst := range strs {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"BOOKREC_STORE_DB":  &c.Store.DB,
		"BOOKREC_DEFAULT_N": &c.Engine.DefaultN,
		"BOOKREC_MAX_N":     &c.Engine.MaxN,
	}
	for key, dst := range ints {
		v := getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "config: "+key, err)
		}
		*dst = n
	}

	if v := getenv("BOOKREC_METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "config: BOOKREC_METRICS_ENABLED", err)
		}
		c.Metrics.Enabled = b
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate 校验配置，失败返回 INVALID_INPUT。
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "config: invalid", err)
	}
	if err := checkNodeTypes(c.Pipeline); err != nil {
		return core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput,
			fmt.Sprintf("config: supported node types are %v", SupportedTypes()), err)
	}
	if _, err := c.Nodes(); err != nil {
		return core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "config: pipeline", err)
	}
	return nil
}

// FusionWeights 把配置中的权重转换为 core.Weights。
func (e EngineConfig) FusionWeights() core.Weights {
	w := make(core.Weights, len(e.Weights))
	for k, v := range e.Weights {
		w[core.Strategy(k)] = v
	}
	return w
}

// PopularityConfig 转换为热门模型参数。
func (m ModelConfig) PopularityConfig() model.PopularityConfig {
	return model.PopularityConfig{
		MinSupport:       m.MinSupport,
		Cap:              m.PopularityCap,
		TrendingWindow:   m.TrendingWindow,
		TrendingMinCount: m.TrendingMinCount,
		TrendingCap:      m.TrendingCap,
		MinTrendingItems: m.MinTrendingItems,
	}
}

// Nodes 按配置构建额外的 Pipeline Node（需要先 import config/builders 完成注册）。
func (c *Config) Nodes() ([]pipeline.Node, error) {
	return pipeline.BuildNodes(DefaultFactory(), c.Pipeline)
}
