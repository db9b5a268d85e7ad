package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/bookrec/core"
)

type addNode struct {
	id  int64
	err error
}

func (n *addNode) Name() string { return "test.add" }
func (n *addNode) Kind() Kind   { return KindRecall }
func (n *addNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if n.err != nil {
		return nil, n.err
	}
	return append(items, core.NewItem(n.id)), nil
}

func TestPipelineRun(t *testing.T) {
	p := &Pipeline{Nodes: []Node{&addNode{id: 1}, &addNode{id: 2}}}
	got, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("Run() = %v", core.ToScored(got))
	}
}

func TestPipelineRunError(t *testing.T) {
	boom := errors.New("boom")
	p := &Pipeline{Nodes: []Node{&addNode{id: 1}, &addNode{err: boom}, &addNode{id: 3}}}
	_, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Run() err = %v, want wrapped boom", err)
	}
}

func TestPipelineObserve(t *testing.T) {
	type call struct {
		name    string
		in, out int
		failed  bool
	}
	var calls []call
	drop := NodeFunc{
		NodeName: "test.drop",
		NodeKind: KindFilter,
		Fn: func(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
			return items[1:], nil
		},
	}
	p := &Pipeline{
		Nodes: []Node{&addNode{id: 1}, &addNode{id: 2}, drop},
		Observe: func(n Node, in, out int, _ time.Duration, err error) {
			calls = append(calls, call{n.Name(), in, out, err != nil})
		},
	}
	got, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("Run() = %v, want [2]", core.ToScored(got))
	}
	want := []call{{"test.add", 0, 1, false}, {"test.add", 1, 2, false}, {"test.drop", 2, 1, false}}
	if len(calls) != len(want) {
		t.Fatalf("observed %d nodes, want %d", len(calls), len(want))
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call[%d] = %+v, want %+v", i, calls[i], want[i])
		}
	}
}

func TestPipelineRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Pipeline{Nodes: []Node{&addNode{id: 1}}}
	if _, err := p.Run(ctx, &core.RecommendContext{}, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() err = %v, want context.Canceled", err)
	}
}

func TestBuildNodes(t *testing.T) {
	data := `
- type: test.add
  config:
    id: 7
- type: test.add
  disabled: true
  config:
    id: 8
`
	var ncs []NodeConfig
	if err := yaml.Unmarshal([]byte(data), &ncs); err != nil {
		t.Fatal(err)
	}

	factory := NewNodeFactory()
	factory.Register("test.add", func(m map[string]interface{}) (Node, error) {
		id, _ := m["id"].(int)
		return &addNode{id: int64(id)}, nil
	})
	nodes, err := BuildNodes(factory, ncs)
	if err != nil {
		t.Fatal(err)
	}
	got, err := (&Pipeline{Nodes: nodes}).Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 7 {
		t.Errorf("Run() = %v, want [7] (disabled node skipped)", core.ToScored(got))
	}

	if _, err := BuildNodes(factory, []NodeConfig{{Type: "missing"}}); err == nil {
		t.Error("BuildNodes(missing) = nil error")
	}
	if got := factory.Types(); len(got) != 1 || got[0] != "test.add" {
		t.Errorf("Types() = %v", got)
	}
}
