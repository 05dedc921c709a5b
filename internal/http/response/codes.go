package response

import "net/http"

const (
	CodeBadRequest      = http.StatusBadRequest
	CodeNotFound        = http.StatusNotFound
	CodeTooManyRequests = http.StatusTooManyRequests
	CodeInternal        = http.StatusInternalServerError
)

// AppError 携带 HTTP 状态与对外提示的错误，Err 仅用于日志
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status 返回有效的 HTTP 状态码，非法值按 500 处理
func (e *AppError) Status() int {
	if e == nil || e.Code < http.StatusBadRequest || e.Code > 599 {
		return CodeInternal
	}
	return e.Code
}

// WrapError 包装错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
