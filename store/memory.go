package store

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/bookrec/core"
)

// MemoryStore 是进程内的 RankingStore，用于测试和单机运行。
// 过期 key 在读取时视为不存在，并由后台协程定期回收；Close 之后协程退出。
type MemoryStore struct {
	mu       sync.RWMutex
	values   map[string]memValue
	rankings map[string][]core.Scored // 已排好序

	janitor *time.Ticker
	done    chan struct{}
	once    sync.Once
}

type memValue struct {
	data    []byte
	expires time.Time // 零值表示不过期
}

func (v memValue) expired(now time.Time) bool {
	return !v.expires.IsZero() && now.After(v.expires)
}

func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		values:   make(map[string]memValue),
		rankings: make(map[string][]core.Scored),
		janitor:  time.NewTicker(10 * time.Second),
		done:     make(chan struct{}),
	}
	go m.sweep()
	return m
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok || v.expired(time.Now()) {
		return nil, core.ErrStoreNotFound
	}
	return v.data, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	v := memValue{data: append([]byte(nil), value...)}
	if ttl > 0 {
		v.expires = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.values[key] = v
	m.mu.Unlock()
	return nil
}

// Delete 同时删除同名的普通 key 和榜单。
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.values, key)
	delete(m.rankings, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) ReplaceRanking(_ context.Context, key string, ranking []core.Scored) error {
	sorted := core.TopScored(append([]core.Scored(nil), ranking...), 0)
	for i := range sorted {
		sorted[i].Sources = nil
	}

	m.mu.Lock()
	m.rankings[key] = sorted
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) TopRanking(_ context.Context, key string, n int) ([]core.Scored, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r := m.rankings[key]
	if n > 0 && len(r) > n {
		r = r[:n]
	}
	return append([]core.Scored(nil), r...), nil
}

func (m *MemoryStore) Close() error {
	m.once.Do(func() {
		m.janitor.Stop()
		close(m.done)
	})
	return nil
}

func (m *MemoryStore) sweep() {
	for {
		select {
		case <-m.done:
			return
		case now := <-m.janitor.C:
			m.mu.Lock()
			for k, v := range m.values {
				if v.expired(now) {
					delete(m.values, k)
				}
			}
			m.mu.Unlock()
		}
	}
}

var _ core.RankingStore = (*MemoryStore)(nil)
