// Package store 是快照的数据来源与榜单的发布目标。
//
// 三种后端：MemoryStore（进程内）、RedisStore（go-redis）、SQLExport（database/sql，按表读取导出）。
// KV 后端实现 core.Store / core.RankingStore：
//
//	kv := store.NewMemoryStore()
//	_ = store.SaveExport(ctx, kv, "", exp)
//	src := &store.KVExport{Store: kv}
//	_ = store.Publish(ctx, kv, store.RankingKey("bookrec", store.RankingPopular), ranking)
//
// 存储只在快照重建阶段被访问。
package store
