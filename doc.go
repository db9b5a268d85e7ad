// Package bookrec 是一个多策略图书推荐打分引擎。
//
// 设计要点：
// - Snapshot-first: 全部模型从一次全量导出拟合为不可变快照，在线请求只读快照，重建后原子替换
// - Pipeline-first: 一次推荐由 Node 串联（加权融合 → 过滤 → 截断 → 多样性重排）
// - 策略可降级: 单个策略失败或种子未知时贡献记为 0，请求继续
//
// 入口见 engine 包；配置见 config 包。
package bookrec

import (
	"github.com/rushteam/bookrec/engine"
	"github.com/rushteam/bookrec/pipeline"
)

// 轻量 facade：便于直接 import "bookrec" 使用核心抽象。
type (
	Engine   = engine.Engine
	Request  = engine.Request
	Pipeline = pipeline.Pipeline
	Node     = pipeline.Node
	Kind     = pipeline.Kind
)

// New 等同于 engine.New。
var New = engine.New

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
