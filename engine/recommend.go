package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/filter"
	"github.com/rushteam/bookrec/metrics"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/recall"
	"github.com/rushteam/bookrec/rerank"
	"github.com/rushteam/bookrec/snapshot"
)

// 请求模式，用作指标 label
const (
	modeFused     = "fused"
	modeColdStart = "cold_start"
	modeStrategy  = "strategy"
	modeSimilar   = "similar"
	modeMood      = "mood"
)

// Recommend 返回 N 本推荐书目，按分数降序、ID 升序。
//
//   - Strategy 非空：单策略模式，返回该策略的原始分
//   - 用户没有任何评分：冷启动，返回热门榜（排除后截断到 N）
//   - 否则：加权融合全部策略，取前 3N，再做多样性重排（或直接截断）到 N
//
// 没有快照时返回 core.ErrNoSnapshot；策略名无法识别时返回 INVALID_INPUT。
// 候选池为空时返回空列表。
func (e *Engine) Recommend(ctx context.Context, req Request) ([]core.Scored, error) {
	start := time.Now()
	snap, err := e.holder.Load()
	if err != nil {
		return nil, err
	}
	req, err = e.prepare(req)
	if err != nil {
		return nil, err
	}

	log := e.logger.With().
		Str("request_id", req.RequestID).
		Int64("user_id", req.UserID).
		Uint64("snapshot_version", snap.Version).
		Logger()

	rctx := newContext(snap, req)

	var (
		mode string
		p    *pipeline.Pipeline
	)
	switch {
	case req.Strategy != "":
		mode = modeStrategy
		p, err = e.strategyPipeline(snap, req, log)
	case rctx.User.IsColdStart():
		mode = modeColdStart
		p, err = e.coldStartPipeline(snap, req, log)
	default:
		mode = modeFused
		p, err = e.fusedPipeline(snap, req, log)
	}
	if err != nil {
		return nil, err
	}

	p.Observe = observeNode(log)

	var out []core.Scored
	if len(rctx.Candidates()) > 0 {
		items, err := p.Run(ctx, rctx, nil)
		if err != nil {
			return nil, err
		}
		out = core.ToScored(items)
		core.SortScored(out)
	} else {
		out = []core.Scored{}
	}

	metrics.ObserveRequest(mode, start, len(out))
	log.Debug().
		Str("mode", mode).
		Int("candidates", len(rctx.Candidates())).
		Int("returned", len(out)).
		Dur("latency", time.Since(start)).
		Msg("recommendation complete")
	return out, nil
}

// observeNode 把每个 Node 的耗时写入指标，并在 trace 级别记录候选数量的变化。
func observeNode(log zerolog.Logger) func(pipeline.Node, int, int, time.Duration, error) {
	return func(n pipeline.Node, in, out int, elapsed time.Duration, err error) {
		metrics.ObserveNode(string(n.Kind()), n.Name(), elapsed)
		log.Trace().
			Str("node", n.Name()).
			Int("in", in).
			Int("out", out).
			Dur("elapsed", elapsed).
			AnErr("error", err).
			Msg("pipeline node")
	}
}

// filters 返回融合之后的过滤 Node：候选集合兜底、黑名单、请求表达式。
func (e *Engine) filters(snap *snapshot.Snapshot, req Request, log zerolog.Logger) (*filter.FilterNode, error) {
	fs := []filter.Filter{&filter.ExcludeFilter{}}
	if len(snap.Blacklist) > 0 {
		fs = append(fs, filter.NewBlacklistFilter(snap.Blacklist))
	}
	if req.Filter != "" {
		f, err := filter.NewExprFilter(req.Filter)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	return &filter.FilterNode{
		Filters: fs,
		OnError: func(name string, err error) {
			log.Warn().Str("filter", name).Err(err).Msg("filter failed, item kept")
		},
		OnDrop: func(name string, dropped int) {
			metrics.FilteredItems.WithLabelValues(name).Add(float64(dropped))
		},
	}, nil
}

// fusedPipeline: 加权融合 → 书目信息 → 过滤 → 自定义 Node → 前 3N → 多样性重排 / 截断。
func (e *Engine) fusedPipeline(snap *snapshot.Snapshot, req Request, log zerolog.Logger) (*pipeline.Pipeline, error) {
	fn, err := e.filters(snap, req, log)
	if err != nil {
		return nil, err
	}

	fanout := &recall.Fanout{
		Sources:       e.fusionSources(snap, req),
		Weights:       e.cfg.FusionWeights(),
		MergeStrategy: recall.MergeWeighted,
		Timeout:       e.cfg.ScorerTimeout,
		MaxConcurrent: e.cfg.MaxConcurrent,
		OnError:       e.onScorerError(log),
	}

	nodes := []pipeline.Node{fanout, catalog(snap), fn}
	nodes = append(nodes, e.extra...)
	nodes = append(nodes, &rerank.TopNNode{N: e.cfg.CandidateFactor * req.N, Sort: true})
	if req.diversity() {
		d := rerank.NewDiversity(req.N)
		d.DiversityWeight = e.cfg.DiversityWeight
		d.NoveltyWeight = e.cfg.NoveltyWeight
		d.PopularityCap = e.cfg.PopularityCap
		nodes = append(nodes, d)
	} else {
		nodes = append(nodes, &rerank.TopNNode{N: req.N, Sort: true})
	}
	return &pipeline.Pipeline{Nodes: nodes}, nil
}

// fusionSources 按固定顺序返回参与融合的策略；context / quiz 只在请求带了标签时参与。
func (e *Engine) fusionSources(snap *snapshot.Snapshot, req Request) []recall.Source {
	sources := []recall.Source{
		&recall.Hot{Model: snap.Popularity},
		&recall.ContentRecall{Index: snap.Content, Seeds: e.cfg.ContentSeeds, PerSeed: e.cfg.ContentNeighbours},
		&recall.CollaborativeRecall{Model: snap.Bias, Normalize: true},
		&recall.DemographicRecall{Model: snap.Demographic, Normalize: true},
	}
	if req.Context != "" {
		sources = append(sources, &recall.CategoryRecall{Model: snap.Context, Tag: req.Context, TopK: e.cfg.CategoryTopK})
	}
	if req.Personality != "" {
		sources = append(sources, &recall.CategoryRecall{Model: snap.Personality, Tag: req.Personality, TopK: e.cfg.CategoryTopK})
	}
	sources = append(sources, &recall.AssociationRecall{Model: snap.Association, Seeds: e.cfg.AssociationSeeds, PerSeed: e.cfg.AssociationNeighbours})
	return sources
}

// coldStartPipeline: 热门榜 → 书目信息 → 过滤 → 截断到 N。
func (e *Engine) coldStartPipeline(snap *snapshot.Snapshot, req Request, log zerolog.Logger) (*pipeline.Pipeline, error) {
	fn, err := e.filters(snap, req, log)
	if err != nil {
		return nil, err
	}
	return &pipeline.Pipeline{Nodes: []pipeline.Node{
		&recall.Hot{Model: snap.Popularity},
		catalog(snap),
		fn,
		&rerank.TopNNode{N: req.N, Sort: true},
	}}, nil
}

// strategyPipeline: 单个策略的原始分 → 书目信息 → 过滤 → 截断到 N。
// 策略失败或种子未知时结果为空，不返回错误。
func (e *Engine) strategyPipeline(snap *snapshot.Snapshot, req Request, log zerolog.Logger) (*pipeline.Pipeline, error) {
	strategy, err := core.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, err
	}
	src := e.strategySource(snap, strategy, req)

	fn, err := e.filters(snap, req, log)
	if err != nil {
		return nil, err
	}
	return &pipeline.Pipeline{Nodes: []pipeline.Node{
		&recall.Fanout{
			Sources:       []recall.Source{src},
			Dedup:         true,
			MergeStrategy: recall.MergeFirst,
			Timeout:       e.cfg.ScorerTimeout,
			OnError:       e.onScorerError(log),
		},
		catalog(snap),
		fn,
		&rerank.TopNNode{N: req.N, Sort: true},
	}}, nil
}

// 近邻类策略不在召回源内截断：已评分的书要先被排除，再由 TopN 截断到 N。
func (e *Engine) strategySource(snap *snapshot.Snapshot, s core.Strategy, req Request) recall.Source {
	all := len(snap.BookIDs())
	switch s {
	case core.StrategyTrending:
		return &recall.Hot{Model: snap.Popularity, Trending: true}
	case core.StrategyContent:
		return &recall.ContentRecall{Index: snap.Content, Seeds: 1, PerSeed: all}
	case core.StrategyCollaborative:
		return &recall.CollaborativeRecall{Model: snap.Bias, RequireUser: true}
	case core.StrategyDemographic:
		return &recall.DemographicRecall{Model: snap.Demographic, ProfileOnly: true}
	case core.StrategyContext:
		tag := req.Context
		if tag == "" {
			tag = e.cfg.DefaultContext
		}
		return &recall.CategoryRecall{Model: snap.Context, Tag: tag, TopK: req.N}
	case core.StrategyQuiz:
		tag := req.Personality
		if tag == "" {
			tag = e.cfg.DefaultPersonality
		}
		return &recall.CategoryRecall{Model: snap.Personality, Tag: tag, TopK: req.N}
	case core.StrategyAssociation:
		return &recall.AssociationRecall{Model: snap.Association, Seeds: 1, PerSeed: all}
	default:
		return &recall.Hot{Model: snap.Popularity}
	}
}
