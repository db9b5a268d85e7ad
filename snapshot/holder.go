package snapshot

import (
	"sync/atomic"

	"github.com/rushteam/bookrec/core"
)

// Holder 持有当前快照，读写都是一次原子指针操作。
type Holder struct {
	cur atomic.Pointer[Snapshot]
}

// Load 返回当前快照；还没有快照时返回 core.ErrNoSnapshot。
func (h *Holder) Load() (*Snapshot, error) {
	s := h.cur.Load()
	if s == nil {
		return nil, core.ErrNoSnapshot
	}
	return s, nil
}

// Swap 替换当前快照并返回旧快照（可能为 nil）。
func (h *Holder) Swap(s *Snapshot) *Snapshot {
	return h.cur.Swap(s)
}

// NextVersion 返回下一个版本号。
func (h *Holder) NextVersion() uint64 {
	if s := h.cur.Load(); s != nil {
		return s.Version + 1
	}
	return 1
}
