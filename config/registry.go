package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/bookrec/pipeline"
)

// 配置里的 pipeline 节点（filter、rerank.topn、rerank.diversity）由 config/builders 在 init 中注册；
// engine 包已 blank import 该包，直接使用 config 包时需自行 import _ ".../config/builders"。

// NodeBuilder 根据节点的 config 字段构建 Node。
type NodeBuilder = pipeline.NodeBuilder

var registry = struct {
	sync.RWMutex
	builders map[string]NodeBuilder
}{builders: make(map[string]NodeBuilder)}

// Register 注册一种节点类型。类型名为空、builder 为 nil 或重复注册都会 panic，
// 与 database/sql.Register 一致，只应在 init 中调用。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		panic("config: Register with empty type or nil builder")
	}
	registry.Lock()
	defer registry.Unlock()
	if _, dup := registry.builders[typeName]; dup {
		panic("config: Register called twice for node type " + typeName)
	}
	registry.builders[typeName] = builder
}

// SupportedTypes 返回已注册的节点类型（排序）。
func SupportedTypes() []string {
	registry.RLock()
	defer registry.RUnlock()
	types := make([]string, 0, len(registry.builders))
	for t := range registry.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回包含全部已注册类型的 NodeFactory。
func DefaultFactory() *pipeline.NodeFactory {
	registry.RLock()
	defer registry.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range registry.builders {
		f.Register(typeName, builder)
	}
	return f
}

// checkNodeTypes 在构建之前检查节点类型，错误信息里带上可用类型。
func checkNodeTypes(nodes []pipeline.NodeConfig) error {
	registry.RLock()
	defer registry.RUnlock()
	for i, nc := range nodes {
		if nc.Disabled {
			continue
		}
		if _, ok := registry.builders[nc.Type]; !ok {
			return fmt.Errorf("pipeline[%d]: unsupported node type %q", i, nc.Type)
		}
	}
	return nil
}
