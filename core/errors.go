package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 错误分级（与恢复策略对应）：
//   - RESOLUTION_FAILED：单个种子解析失败，非致命，跳过并计数
//   - EMPTY_INPUT：解析/归一化后零条可用曲目，请求级致命
//   - SCHEMA_MISMATCH：scaler/候选库/向量列不一致，构建期工件缺陷，不可恢复
//   - INVALID_INPUT：非有限数值进入聚合器，上游归一化缺陷
//   - UPSTREAM_ERROR：目录调用在重试耗尽后仍失败，请求级致命
type DomainError struct {
	Code    string // 错误代码（如 "EMPTY_INPUT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "taste", "rank"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeResolutionFailed = "RESOLUTION_FAILED" // 种子无法解析为任何曲目
	ErrorCodeEmptyInput       = "EMPTY_INPUT"       // 没有可用输入行
	ErrorCodeSchemaMismatch   = "SCHEMA_MISMATCH"   // 列集合/顺序不一致
	ErrorCodeInvalidInput     = "INVALID_INPUT"     // 非有限数值等非法输入
	ErrorCodeUpstream         = "UPSTREAM_ERROR"    // 目录服务调用失败
	ErrorCodeNotFound         = "NOT_FOUND"         // 资源不存在（store 用）
)

// 模块名称常量
const (
	ModuleTable     = "table"
	ModuleNormalize = "normalize"
	ModuleTaste     = "taste"
	ModuleRank      = "rank"
	ModuleRecall    = "recall"
	ModuleService   = "service"
	ModuleCatalog   = "catalog"
	ModuleLibrary   = "library"
	ModuleStore     = "store"
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsEmptyInput 检查错误是否为 EMPTY_INPUT
func IsEmptyInput(err error) bool { return hasCode(err, ErrorCodeEmptyInput) }

// IsSchemaMismatch 检查错误是否为 SCHEMA_MISMATCH
func IsSchemaMismatch(err error) bool { return hasCode(err, ErrorCodeSchemaMismatch) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsUpstream 检查错误是否为 UPSTREAM_ERROR
func IsUpstream(err error) bool { return hasCode(err, ErrorCodeUpstream) }

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// ErrStoreNotFound 是 store 的统一未命中错误。
var ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")
