package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 使用场景：
//   - Catalog 错误：CATALOG_UNAVAILABLE
//   - 持久化错误：PERSISTENCE_READ, PERSISTENCE_WRITE, NOT_FOUND
//   - 请求错误：UNKNOWN_ITEM, INVALID_INPUT
//
// 除 INVALID_INPUT 外，这些错误都在本地降级处理，不会抛给 UI 层。
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "CATALOG_UNAVAILABLE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "catalog"）
	Err     error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链上的 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
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

// WrapDomainError 创建携带底层错误的领域错误
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
	ErrorCodeNotFound           = "NOT_FOUND"           // 资源不存在
	ErrorCodeInvalidInput       = "INVALID_INPUT"       // 输入无效
	ErrorCodeCatalogUnavailable = "CATALOG_UNAVAILABLE" // 目录拉取失败
	ErrorCodePersistenceRead    = "PERSISTENCE_READ"    // 持久化数据损坏或不可读
	ErrorCodePersistenceWrite   = "PERSISTENCE_WRITE"   // 持久化写入失败
	ErrorCodeUnknownItem        = "UNKNOWN_ITEM"        // 目录中不存在的酒款
)

// 模块名称常量
const (
	ModuleStore   = "store"
	ModuleCatalog = "catalog"
	ModuleHistory = "history"
	ModuleProfile = "profile"
	ModuleView    = "view"
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsCatalogUnavailable 检查错误是否为 CATALOG_UNAVAILABLE
func IsCatalogUnavailable(err error) bool { return hasCode(err, ErrorCodeCatalogUnavailable) }

// IsPersistenceRead 检查错误是否为 PERSISTENCE_READ
func IsPersistenceRead(err error) bool { return hasCode(err, ErrorCodePersistenceRead) }

// IsPersistenceWrite 检查错误是否为 PERSISTENCE_WRITE
func IsPersistenceWrite(err error) bool { return hasCode(err, ErrorCodePersistenceWrite) }

// IsUnknownItem 检查错误是否为 UNKNOWN_ITEM
func IsUnknownItem(err error) bool { return hasCode(err, ErrorCodeUnknownItem) }
