package core

import (
	"fmt"
	"strings"
)

// Strategy 标识一个打分策略，同时用作融合权重的 key 和单策略模式的名称。
type Strategy string

const (
	StrategyPopularity    Strategy = "popularity"
	StrategyTrending      Strategy = "trending"
	StrategyContent       Strategy = "content"
	StrategyCollaborative Strategy = "collaborative"
	StrategyDemographic   Strategy = "demographic"
	StrategyContext       Strategy = "context"
	StrategyQuiz          Strategy = "quiz"
	StrategyAssociation   Strategy = "association"
)

// Strategies 是全部可用策略，顺序固定。
var Strategies = []Strategy{
	StrategyPopularity,
	StrategyTrending,
	StrategyContent,
	StrategyCollaborative,
	StrategyDemographic,
	StrategyContext,
	StrategyQuiz,
	StrategyAssociation,
}

// ParseStrategy 解析策略名，大小写不敏感；"personality" 是 "quiz" 的别名。
func ParseStrategy(s string) (Strategy, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "personality" {
		return StrategyQuiz, nil
	}
	for _, st := range Strategies {
		if string(st) == name {
			return st, nil
		}
	}
	return "", WrapDomainError(ModuleEngine, ErrorCodeInvalidInput, "engine: unknown strategy", fmt.Errorf("%q", s))
}
