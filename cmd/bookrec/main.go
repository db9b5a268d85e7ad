// Command bookrec 从导出数据构建打分快照并执行一次推荐查询，结果以 JSON 写到标准输出。
//
//	bookrec -config bookrec.yaml -export export.json -user 1 -n 10
//	bookrec -export export.json -strategy content -seed 42
//	bookrec -export export.json -similar 42
//	bookrec -export export.json -mood happy=8,calm=6 -country Japan
//	bookrec -config bookrec.yaml -watch 10m   # 定时重建并暴露 /metrics
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rushteam/bookrec/config"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/engine"
	"github.com/rushteam/bookrec/logging"
	"github.com/rushteam/bookrec/mood"
	"github.com/rushteam/bookrec/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		exportPath = flag.String("export", "", "JSON export file; overrides the configured store")
		userID     = flag.Int64("user", 0, "user id to recommend for")
		n          = flag.Int("n", 0, "number of results (0 = configured default)")
		strategy   = flag.String("strategy", "", "single strategy mode: popularity|trending|content|collaborative|demographic|context|quiz|association")
		seed       = flag.Int64("seed", 0, "seed book for content/association strategies")
		ctxTag     = flag.String("context", "", "context tag, e.g. night")
		quiz       = flag.String("personality", "", "personality tag, e.g. adventurous")
		exclude    = flag.String("exclude", "", "comma separated book ids to exclude")
		filterExpr = flag.String("filter", "", "CEL eligibility expression, e.g. 'book.rating_count >= 10'")
		noDiv      = flag.Bool("no-diversity", false, "disable diversity re-ranking")
		similar    = flag.Int64("similar", 0, "print books similar to this id")
		moodSpec   = flag.String("mood", "", "mood query, e.g. happy=8,calm=6")
		country    = flag.String("country", "", "mood query country filter")
		status     = flag.Bool("status", false, "print snapshot status")
		watch      = flag.Duration("watch", 0, "retrain periodically and serve metrics until interrupted")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Init(cfg.Log)
	log := logging.With("cmd")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, opts, closeFn, err := openSource(ctx, cfg, *exportPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open export source")
	}
	defer closeFn()

	eng, err := engine.New(cfg, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("create engine")
	}
	if _, err := eng.RetrainFrom(ctx, src); err != nil {
		log.Fatal().Err(err).Msg("build snapshot")
	}

	if *watch > 0 {
		if err := serve(ctx, cfg, eng, src, *watch); err != nil {
			log.Fatal().Err(err).Msg("watch")
		}
		return
	}

	var out any
	switch {
	case *status:
		out, err = eng.Status()
	case *similar != 0:
		out, err = eng.SimilarTo(ctx, *similar, *n)
	case *moodSpec != "":
		var q mood.Query
		q, err = parseMood(*moodSpec)
		q.N = *n
		q.Filters.Country = *country
		if err == nil {
			out, err = eng.MoodRecommend(ctx, q)
		}
	default:
		req := engine.Request{
			UserID:      *userID,
			N:           *n,
			Strategy:    *strategy,
			SeedID:      *seed,
			Context:     *ctxTag,
			Personality: *quiz,
			Filter:      *filterExpr,
		}
		if *noDiv {
			req.Diversity = new(bool)
		}
		req.ExcludeIDs, err = parseIDs(*exclude)
		if err == nil {
			out, err = eng.Recommend(ctx, req)
		}
	}
	if err != nil {
		log.Fatal().Err(err).Msg("query failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("encode result")
	}
}

// openSource 按配置打开导出数据源，同时返回与该存储相关的引擎选项（黑名单、榜单发布）。
func openSource(ctx context.Context, cfg *config.Config, exportPath string) (store.ExportSource, []engine.Option, func(), error) {
	noop := func() {}
	if exportPath != "" {
		data, err := os.ReadFile(exportPath)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("read export: %w", err)
		}
		exp, err := store.DecodeExport(data)
		if err != nil {
			return nil, nil, noop, err
		}
		return store.StaticExport(exp), nil, noop, nil
	}

	switch cfg.Store.Kind {
	case "redis":
		rs, err := store.NewRedisStore(ctx, store.RedisOptions{Addr: cfg.Store.Addr, Password: cfg.Store.Password, DB: cfg.Store.DB})
		if err != nil {
			return nil, nil, noop, err
		}
		var opts []engine.Option
		if cfg.Store.BlacklistKey != "" {
			opts = append(opts, engine.WithBlacklistStore(rs, cfg.Store.BlacklistKey))
		}
		if cfg.Store.Publish {
			opts = append(opts, engine.WithPublisher(rs, cfg.Store.Prefix))
		}
		closeFn := func() { _ = rs.Close() }
		return &store.KVExport{Store: rs, Key: cfg.Store.ExportKey}, opts, closeFn, nil
	case "sqlite":
		db, err := sql.Open("sqlite3", cfg.Store.DSN)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("open sqlite: %w", err)
		}
		return &store.SQLExport{DB: db}, nil, func() { _ = db.Close() }, nil
	default:
		return nil, nil, noop, errors.New("memory store has no persistent export; pass -export")
	}
}

// serve 定时重建快照并暴露 Prometheus 指标，直到 ctx 被取消。重建失败时继续使用旧快照。
func serve(ctx context.Context, cfg *config.Config, eng *engine.Engine, src store.ExportSource, every time.Duration) error {
	log := logging.With("cmd")

	var srv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
		log.Info().Str("addr", cfg.Metrics.Addr).Msg("serving metrics")
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if srv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
			return nil
		case <-ticker.C:
			// 错误已在引擎内记录
			_, _ = eng.RetrainFrom(ctx, src)
		}
	}
}

func parseIDs(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "invalid id", err)
		}
		out = append(out, id)
	}
	return out, nil
}

func parseMood(s string) (mood.Query, error) {
	values := make(map[string]float64)
	for _, kv := range strings.Split(s, ",") {
		name, raw, ok := strings.Cut(strings.TrimSpace(kv), "=")
		if !ok {
			return mood.Query{}, core.NewDomainError(core.ModuleMood, core.ErrorCodeInvalidInput, "mood: expected name=value, got "+kv)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return mood.Query{}, core.WrapDomainError(core.ModuleMood, core.ErrorCodeInvalidInput, "mood: "+name, err)
		}
		values[strings.ToLower(name)] = v
	}
	return mood.Query{Vector: mood.ParseVector(values)}, nil
}
