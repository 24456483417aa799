// Package errors 提供统一的错误定义
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1002"
	CodeConflict           ErrorCode = "1003"
	CodeInternalError      ErrorCode = "1004"
	CodeServiceUnavailable ErrorCode = "1005"

	// 校验错误 (2xxx)：任何持久化之前即被拒绝
	CodeEmptyTitle         ErrorCode = "2001"
	CodeWouldCreateCycle   ErrorCode = "2002"
	CodePositionOutOfRange ErrorCode = "2003"

	// 资源错误 (3xxx)
	CodeNovelNotFound   ErrorCode = "3001"
	CodeChapterNotFound ErrorCode = "3002"
	CodeVersionNotFound ErrorCode = "3003"

	// 数据完整性错误 (4xxx)：版本链损坏，必须上报而非降级
	CodeDanglingParentVersion ErrorCode = "4001"
	CodeChainWithoutSnapshot  ErrorCode = "4002"
	CodeCorruptDiffPayload    ErrorCode = "4003"

	// 外部服务错误 (5xxx)
	CodeDatabaseError ErrorCode = "5001"
	CodeCacheError    ErrorCode = "5002"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息
func (e *AppError) WithDetail(detail string) *AppError {
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeEmptyTitle, CodePositionOutOfRange:
		return http.StatusBadRequest
	case CodeWouldCreateCycle:
		return http.StatusUnprocessableEntity
	case CodeNotFound, CodeNovelNotFound, CodeChapterNotFound, CodeVersionNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrConflict           = New(CodeConflict, "resource conflict")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrEmptyTitle         = New(CodeEmptyTitle, "title must not be empty")
	ErrWouldCreateCycle   = New(CodeWouldCreateCycle, "move would create a cycle")
	ErrPositionOutOfRange = New(CodePositionOutOfRange, "position out of range")

	ErrNovelNotFound   = New(CodeNovelNotFound, "novel not found")
	ErrChapterNotFound = New(CodeChapterNotFound, "chapter not found")
	ErrVersionNotFound = New(CodeVersionNotFound, "version not found")

	ErrDanglingParentVersion = New(CodeDanglingParentVersion, "version chain has a dangling parent link")
	ErrChainWithoutSnapshot  = New(CodeChainWithoutSnapshot, "version chain never reaches a snapshot")
	ErrCorruptDiffPayload    = New(CodeCorruptDiffPayload, "diff payload does not apply to its base content")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}

// IsCode 检查错误是否携带指定错误码
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}
