package rednote

import (
	"fmt"
	"strings"
)

// ErrorType 请求错误分类
type ErrorType string

const (
	ErrorNone        ErrorType = ""
	ErrorNetwork     ErrorType = "network_error" // 连接失败/超时，可重试
	ErrorRateLimit   ErrorType = "rate_limit"    // HTTP 429，可重试
	ErrorServer      ErrorType = "server_error"  // HTTP >= 500，可重试
	ErrorHTTP        ErrorType = "http_error"    // 其它 HTTP >= 400，不重试
	ErrorAuth        ErrorType = "auth_error"    // 鉴权失败，不重试
	ErrorAPI         ErrorType = "api_error"     // 非零业务码，不重试但触发版本回退
	ErrorInvalidJSON ErrorType = "invalid_json"  // 响应体不是合法 JSON，可重试
)

// CodeSuccess 业务成功码
const CodeSuccess = 0

// DefaultErrorCodes 业务错误码中文映射。
// 服务端未提供权威的完整错误码表，此表为观测所得的默认值，
// 可通过 WithErrorCodes 覆盖。
var DefaultErrorCodes = map[int]string{
	0:   "成功",
	100: "Token 无效或已失效",
	201: "内容为空（无可用数据）",
	301: "采集失败，请重试",
	302: "超出速率限制",
	303: "超出每日配额",
	400: "参数错误",
	500: "内部服务器错误",
	600: "权限不足",
	601: "余额不足",
}

// RequestDebug 请求诊断信息，Token 已脱敏
type RequestDebug struct {
	Path       string            `json:"path"`
	URL        string            `json:"url"`
	Params     map[string]string `json:"params"`
	HTTPStatus int               `json:"http_status"`
	DurationMS int64             `json:"duration_ms"`
	Attempt    int               `json:"attempt"`
}

// Outcome 单次逻辑请求的结果：成功、业务错误、HTTP 错误或网络错误之一。
// Body 仅在拿到合法 JSON 响应时非空。
type Outcome struct {
	Type       ErrorType
	Body       *RawResponse
	HTTPStatus int
	Err        error // 网络层错误，仅 network_error 时非空
	Debug      *RequestDebug
	Attempts   int
}

// Success 业务成功（code == 0）
func (o *Outcome) Success() bool {
	return o.Type == ErrorNone && o.Body != nil && o.Body.Code == CodeSuccess
}

// Retryable 是否允许重试：网络错误、限流、5xx、无效 JSON。
// 鉴权错误与业务错误是终局的，普通 4xx 也不重试。
func (o *Outcome) Retryable() bool {
	switch o.Type {
	case ErrorNetwork, ErrorRateLimit, ErrorServer, ErrorInvalidJSON:
		return true
	}
	return false
}

func (o *Outcome) String() string {
	if o.Success() {
		return "success"
	}
	if o.Body != nil {
		return fmt.Sprintf("%s (code=%d, http=%d)", o.Type, o.Body.Code, o.HTTPStatus)
	}
	return fmt.Sprintf("%s (http=%d)", o.Type, o.HTTPStatus)
}

// classifyOutcome 按 HTTP 状态与业务码划分错误类型。
// 优先级：HTTP 状态 > 业务码 100/文案含 TOKEN INVALID > 其它非零业务码。
func classifyOutcome(httpStatus int, body *RawResponse) ErrorType {
	switch {
	case httpStatus == 401 || httpStatus == 403:
		return ErrorAuth
	case httpStatus == 429:
		return ErrorRateLimit
	case httpStatus >= 500:
		return ErrorServer
	case httpStatus >= 400:
		return ErrorHTTP
	}

	if body == nil {
		return ErrorInvalidJSON
	}
	// 业务码 100 表示 Token 未激活/失效，按鉴权错误处理
	if body.Code == 100 {
		return ErrorAuth
	}
	up := strings.ToUpper(body.Message)
	if strings.Contains(up, "TOKEN") &&
		(strings.Contains(up, "INVALID") || strings.Contains(up, "UNACTIVATE")) {
		return ErrorAuth
	}
	if body.Code != CodeSuccess {
		return ErrorAPI
	}
	return ErrorNone
}
