package store

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/rushteam/bookrec/core"
)

// DefaultExportKey 是 KV 中全量导出的默认 key。
const DefaultExportKey = "bookrec:export"

// ExportSource 提供一次全量导出（目录 + 评分 + 情绪目录）。
type ExportSource interface {
	LoadExport(ctx context.Context) (*core.Export, error)
}

// ExportFunc 让普通函数实现 ExportSource。
type ExportFunc func(ctx context.Context) (*core.Export, error)

func (f ExportFunc) LoadExport(ctx context.Context) (*core.Export, error) { return f(ctx) }

// StaticExport 直接返回内存中的导出，用于测试和嵌入式使用。
func StaticExport(exp *core.Export) ExportSource {
	return ExportFunc(func(context.Context) (*core.Export, error) { return exp, nil })
}

// KVExport 从 core.Store 的单个 key 读取 JSON 编码的导出。
type KVExport struct {
	Store core.Store
	Key   string
}

func (k *KVExport) key() string {
	if k.Key == "" {
		return DefaultExportKey
	}
	return k.Key
}

// LoadExport 实现 ExportSource。
func (k *KVExport) LoadExport(ctx context.Context) (*core.Export, error) {
	data, err := k.Store.Get(ctx, k.key())
	if err != nil {
		return nil, err
	}
	return DecodeExport(data)
}

// SaveExport 把导出编码为 JSON 写入 Store。
func SaveExport(ctx context.Context, s core.Store, key string, exp *core.Export) error {
	data, err := EncodeExport(exp)
	if err != nil {
		return err
	}
	if key == "" {
		key = DefaultExportKey
	}
	return s.Set(ctx, key, data, 0)
}

// EncodeExport 编码导出。
func EncodeExport(exp *core.Export) ([]byte, error) {
	data, err := json.Marshal(exp)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeInternalError, "store: encode export", err)
	}
	return data, nil
}

// DecodeExport 解码导出，格式错误返回 INVALID_INPUT。
func DecodeExport(data []byte) (*core.Export, error) {
	var exp core.Export
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: decode export", err)
	}
	return &exp, nil
}
