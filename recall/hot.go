package recall

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/model"
	"github.com/rushteam/bookrec/pipeline"
)

// Hot 是热门/趋势召回源。
// - 默认读取快照中的 Popularity 榜单
// - 如果配置了 Store + Key，读取外部发布的榜单（store.Publish 写入）：
//   - Store 实现了 RankingStore 时读取已发布的有序榜单
//   - 否则从普通 key 读取 JSON 数组 [{"id":..,"score":..}]
//
// Hot 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用
type Hot struct {
	Model    *model.Popularity
	Trending bool

	Store core.Store
	Key   string

	// TopK 返回 TopK 个物品，0 表示不限
	TopK int
}

func (r *Hot) Name() string {
	if r.Trending {
		return string(core.StrategyTrending)
	}
	return string(core.StrategyPopularity)
}

func (r *Hot) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Hot) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Hot) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Store != nil && r.Key != "" {
		scored, err := r.fromStore(ctx)
		if err != nil {
			return nil, err
		}
		return fromScored(rctx, scored, r.TopK), nil
	}

	if r.Model == nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeUnavailable, "recall: popularity model not loaded")
	}
	list := r.Model.Overall()
	if r.Trending {
		list = r.Model.Trending()
	}
	return fromScored(rctx, list, r.TopK), nil
}

func (r *Hot) fromStore(ctx context.Context) ([]core.Scored, error) {
	if rs, ok := r.Store.(core.RankingStore); ok {
		n := 0
		if r.TopK > 0 {
			// 预留过滤余量
			n = r.TopK * 3
		}
		ranking, err := rs.TopRanking(ctx, r.Key, n)
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleRecall, core.ErrorCodeUnavailable, "recall: read ranking", err)
		}
		return ranking, nil
	}

	data, err := r.Store.Get(ctx, r.Key)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleRecall, core.ErrorCodeUnavailable, "recall: read ranking", err)
	}
	var parsed []core.Scored
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, core.WrapDomainError(core.ModuleRecall, core.ErrorCodeUnavailable, "recall: decode ranking", err)
	}
	return core.TopScored(parsed, 0), nil
}
