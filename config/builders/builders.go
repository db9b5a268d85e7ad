// Package builders 注册内置的可配置 Node。
// 这些 Node 插在融合之后、截断与多样性重排之前，用于按配置追加过滤或调整候选。
package builders

import (
	"fmt"

	"github.com/rushteam/bookrec/config"
	"github.com/rushteam/bookrec/filter"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/conv"
	"github.com/rushteam/bookrec/rerank"
)

func init() {
	config.Register("filter", BuildFilterNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
}

// BuildFilterNode 构建过滤节点，支持的过滤器类型：
//
//	- type: blacklist
//	  item_ids: [1, 2, 3]
//	- type: expr
//	  expr: book.rating_count >= 10
func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		switch filterType := conv.ConfigGet(filterMap, "type", ""); filterType {
		case "blacklist":
			filters = append(filters, filter.NewBlacklistFilter(conv.ConfigGetInt64IDs(filterMap, "item_ids")))
		case "expr":
			f, err := filter.NewExprFilter(conv.ConfigGet(filterMap, "expr", ""))
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}

func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{
		N:    int(conv.ConfigGetInt64(cfg, "n", 0)),
		Sort: conv.ConfigGet(cfg, "sort", false),
	}, nil
}

func BuildDiversityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	d := rerank.NewDiversity(int(conv.ConfigGetInt64(cfg, "n", 0)))
	d.DiversityWeight = conv.ConfigGetFloat64(cfg, "diversity_weight", d.DiversityWeight)
	d.NoveltyWeight = conv.ConfigGetFloat64(cfg, "novelty_weight", d.NoveltyWeight)
	d.PopularityCap = conv.ConfigGetFloat64(cfg, "popularity_cap", d.PopularityCap)
	return d, nil
}
