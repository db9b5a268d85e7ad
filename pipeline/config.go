package pipeline

import (
	"fmt"
	"sort"
)

// NodeConfig 是配置文件中的一个节点，例如：
//
//	- type: rerank.topn
//	  config: {n: 30, sort: true}
type NodeConfig struct {
	Type     string                 `yaml:"type" json:"type" validate:"required"`
	Config   map[string]interface{} `yaml:"config" json:"config"`
	Disabled bool                   `yaml:"disabled" json:"disabled"`
}

// NodeBuilder 根据节点的 config 字段构建 Node。
type NodeBuilder func(map[string]interface{}) (Node, error)

// NodeFactory 按类型名查找 NodeBuilder。不是并发安全的，构建完成后只读。
type NodeFactory struct {
	builders map[string]NodeBuilder
}

func NewNodeFactory() *NodeFactory {
	return &NodeFactory{builders: make(map[string]NodeBuilder)}
}

func (f *NodeFactory) Register(nodeType string, builder NodeBuilder) {
	f.builders[nodeType] = builder
}

// Types 返回已注册的类型（排序）。
func (f *NodeFactory) Types() []string {
	out := make([]string, 0, len(f.builders))
	for t := range f.builders {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (f *NodeFactory) Build(nodeType string, config map[string]interface{}) (Node, error) {
	builder, ok := f.builders[nodeType]
	if !ok {
		return nil, fmt.Errorf("unknown node type %q (known: %v)", nodeType, f.Types())
	}
	return builder(config)
}

// BuildNodes 按顺序构建节点，跳过 Disabled 的节点。
func BuildNodes(factory *NodeFactory, ncs []NodeConfig) ([]Node, error) {
	nodes := make([]Node, 0, len(ncs))
	for i, nc := range ncs {
		if nc.Disabled {
			continue
		}
		node, err := factory.Build(nc.Type, nc.Config)
		if err != nil {
			return nil, fmt.Errorf("pipeline[%d] %s: %w", i, nc.Type, err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
