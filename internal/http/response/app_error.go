package response

import "github.com/gin-gonic/gin"

// AppError handler 层错误：业务码、文案键与原始错误
type AppError struct {
	Code    int
	Key     string
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

// Status 对外 HTTP 状态
func (e *AppError) Status() int {
	return HTTPStatus(e.Code)
}

// Internal 服务端错误（5xx），其余视为调用方错误
func (e *AppError) Internal() bool {
	return e.Status() >= CodeInternal
}

// Respond 写出统一错误响应
func (e *AppError) Respond(c *gin.Context) {
	Error(c, e.Code, e.Message)
}

// WrapError 包装错误，key 为 i18n 文案键，自定义文案时为空
func WrapError(code int, key, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Key:     key,
		Message: message,
		Err:     err,
	}
}
