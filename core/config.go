package core

// Weights 是融合阶段各策略的权重。未出现的策略权重为 0。
type Weights map[Strategy]float64

// DefaultWeights 返回默认融合权重。trending 只在单策略模式下使用。
func DefaultWeights() Weights {
	return Weights{
		StrategyPopularity:    0.15,
		StrategyContent:       0.20,
		StrategyCollaborative: 0.25,
		StrategyDemographic:   0.10,
		StrategyContext:       0.10,
		StrategyQuiz:          0.05,
		StrategyAssociation:   0.15,
	}
}

// Get 返回策略权重。
func (w Weights) Get(s Strategy) float64 {
	if w == nil {
		return 0
	}
	return w[s]
}

// 评分刻度为 [MinRating, RatingScale]。协同过滤与人口统计的原始分需除以 RatingScale 归一到 [0,1]。
const (
	MinRating   = 1.0
	RatingScale = 5.0
)
