package model

import "net/http"

type ResponseError struct {
	// 自定义错误码。
	Code int `json:"code"`
	// 请求ID。
	RequestID string `json:"requestID"`
	// Message
	Message string `json:"message"`
	// Details 额外信息，如各字段的校验错误。
	Details interface{} `json:"details,omitempty"`
}

// 错误码前三位与 HTTP 状态码一致，每个错误码只表示一种错误。
const (
	ResponseErrorBadRequest       = 400000
	ResponseErrorValidation       = 400001
	ResponseErrorDuplicate        = 400002
	ResponseErrorUpload           = 400003
	ResponseErrorPastInterview    = 400004
	ResponseErrorInvalidStatus    = 400005
	ResponseErrorDuplicateEmail   = 400006
	ResponseErrorResumeRequired   = 400007
	ResponseErrorBadInterviewTime = 400008
	ResponseErrorNotLoggedIn      = 401001
	ResponseErrorBadToken         = 401003
	ResponseErrorTokenExpired     = 401004
	ResponseErrorBadCredentials   = 401005
	ResponseErrorWrongPassword    = 401006
	ResponseErrorForbidden        = 403000
	ResponseErrorNotFound         = 404000
	ResponseErrorNoSuchUser       = 404001
	ResponseErrorNoSuchApp        = 404002
	ResponseErrorNoSuchPosition   = 404003
	ResponseErrorInvalidID        = 404004
	ResponseErrorUsernameTaken    = 409001
	ResponseErrorTooManyRequests  = 429000
	ResponseErrorInternal         = 500000
	ResponseErrorExternalService  = 502001
)

func (e *ResponseError) Error() string {
	return e.Message
}

// HTTPStatus 错误码对应的 HTTP 状态码。
func (e *ResponseError) HTTPStatus() int {
	status := e.Code / 1000
	if http.StatusText(status) == "" {
		return http.StatusInternalServerError
	}
	return status
}

// NewResponseErrorBadRequest 参数错误。
func NewResponseErrorBadRequest(message string) *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorBadRequest,
		Message: message,
	}
}

// NewResponseErrorValidation 表单校验失败，details 为各项错误信息。
func NewResponseErrorValidation(details []string) *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorValidation,
		Message: "Validation failed",
		Details: map[string]interface{}{"errors": details},
	}
}

// NewResponseErrorNotLoggedIn 用户未登录。
func NewResponseErrorNotLoggedIn() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNotLoggedIn,
		Message: "No token, authorization denied",
	}
}

// NewResponseErrorBadToken 登录token错误。
func NewResponseErrorBadToken() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorBadToken,
		Message: "Token is not valid",
	}
}

// NewResponseErrorForbidden 无权访问。
func NewResponseErrorForbidden(message string) *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorForbidden,
		Message: message,
	}
}

// NewResponseErrorInternal 其他内部服务错误。
func NewResponseErrorInternal() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorInternal,
		Message: "Server error",
	}
}

func NewResponseErrorNotFound(message string) *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNotFound,
		Message: message,
	}
}

func NewResponseErrorTooManyRequests() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorTooManyRequests,
		Message: "Too many requests, please try again later",
	}
}

func NewResponseError(code int, message string) *ResponseError {
	return &ResponseError{
		Code:    code,
		Message: message,
	}
}
