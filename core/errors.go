package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 使用场景：
//   - 快照未加载：NOT_CONFIGURED（调用方必须处理）
//   - 种子/用户不在快照中：NOT_FOUND（引擎内部降级为空结果）
//   - 召回源不可用：UNAVAILABLE（融合时贡献记为 0）
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "NOT_CONFIGURED"）
	Message string
	Module  string // 模块名称（如 "store", "engine", "recall"）
	Err     error  // 被包装的底层错误，可以为空
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is 使 errors.Is 按 Code 匹配；target 的 Module 为空时匹配任意模块。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Module == "" || t.Module == e.Module
}

// GetDomainError 获取错误链上的 DomainError，如果没有则返回 nil
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建包装底层错误的领域错误
func WrapDomainError(module, code, message string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"
	ErrorCodeNotSupported  = "NOT_SUPPORTED"
	ErrorCodeUnavailable   = "UNAVAILABLE"
	ErrorCodeInvalidInput  = "INVALID_INPUT"
	ErrorCodeNotConfigured = "NOT_CONFIGURED"
	ErrorCodeInternalError = "INTERNAL_ERROR"
)

// 模块名称常量
const (
	ModuleStore    = "store"
	ModuleEngine   = "engine"
	ModuleRecall   = "recall"
	ModuleSnapshot = "snapshot"
	ModuleMood     = "mood"
	ModuleConfig   = "config"
)

var (
	// ErrNoSnapshot 表示还没有加载任何快照，属于配置错误。
	ErrNoSnapshot = NewDomainError(ModuleEngine, ErrorCodeNotConfigured, "engine: no scoring snapshot loaded")

	// ErrUnknownEntity 匹配任意模块的 NOT_FOUND。
	ErrUnknownEntity = NewDomainError("", ErrorCodeNotFound, "unknown entity")

	// ErrUnavailable 匹配任意模块的 UNAVAILABLE。
	ErrUnavailable = NewDomainError("", ErrorCodeUnavailable, "unavailable")

	// ErrUnknownStrategy 表示单策略模式下的策略名无法识别。
	ErrUnknownStrategy = NewDomainError(ModuleEngine, ErrorCodeInvalidInput, "engine: unknown strategy")
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool { return hasCode(err, ErrorCodeNotSupported) }

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool { return hasCode(err, ErrorCodeUnavailable) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsNotConfigured 检查错误是否为 NOT_CONFIGURED
func IsNotConfigured(err error) bool { return hasCode(err, ErrorCodeNotConfigured) }
