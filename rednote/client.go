package rednote

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Operation 服务端支持的逻辑操作
type Operation string

const (
	OpSearchNote     Operation = "search_note"
	OpUserInfo       Operation = "user_info"
	OpUserNoteList   Operation = "user_note_list"
	OpNoteComment    Operation = "note_comment"
	OpNoteSubComment Operation = "note_sub_comment"
	OpNoteDetail     Operation = "note_detail"
)

// versionRoute 某个逻辑操作的首选/回退版本路由。
// 回退为空表示该操作只有单一版本。
type versionRoute struct {
	prefer       string
	preferPath   string
	fallback     string
	fallbackPath string
}

// 各操作的版本路由表。历史上老版本接口对部分操作反而更稳定，
// 因此任何非零业务码（而不仅是特定错误）都会触发回退。
var versionRoutes = map[Operation]versionRoute{
	OpSearchNote: {
		prefer: "v2", preferPath: "/api/xiaohongshu/search-note/v2",
		fallback: "v3", fallbackPath: "/api/xiaohongshu/search-note/v3",
	},
	OpUserInfo: {
		prefer: "v4", preferPath: "/api/xiaohongshu/get-user/v4",
		fallback: "v3", fallbackPath: "/api/xiaohongshu/get-user/v3",
	},
	OpUserNoteList: {
		prefer: "v4", preferPath: "/api/xiaohongshu/get-user-note-list/v4",
		fallback: "v2", fallbackPath: "/api/xiaohongshu/get-user-note-list/v2",
	},
	OpNoteComment: {
		prefer: "v2", preferPath: "/api/xiaohongshu/get-note-comment/v2",
	},
	OpNoteSubComment: {
		prefer: "v2", preferPath: "/api/xiaohongshu/get-note-sub-comment/v2",
	},
	OpNoteDetail: {
		prefer: "v7", preferPath: "/api/xiaohongshu/get-note-detail/v7",
		fallback: "v3", fallbackPath: "/api/xiaohongshu/get-note-detail/v3",
	},
}

// Client 版本回退客户端：首选版本经过完整重试预算，
// 业务失败后对回退版本只尝试一次，不再叠加重试。
type Client struct {
	transport *Transport
	retry     *RetryPolicy
	metrics   *RunMetrics
}

// ClientOption 客户端可选配置
type ClientOption func(*Client)

// WithErrorCodes 覆盖业务错误码文案表（服务端的权威表未完全公开）
func WithErrorCodes(codes map[int]string) ClientOption {
	return func(c *Client) {
		merged := make(map[int]string, len(DefaultErrorCodes)+len(codes))
		for k, v := range DefaultErrorCodes {
			merged[k] = v
		}
		for k, v := range codes {
			merged[k] = v
		}
		c.transport.codes = merged
	}
}

// WithTransport 替换底层传输层（测试用）
func WithTransport(t *Transport) ClientOption {
	return func(c *Client) {
		c.transport = t
	}
}

func NewClient(baseURL, token string, metrics *RunMetrics, opts ...ClientOption) *Client {
	c := &Client{
		transport: NewTransport(baseURL, token, metrics),
		retry:     NewRetryPolicy(),
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call 执行一次逻辑操作：首选版本失败（任何非零业务码）时回退到老版本。
// 鉴权错误同样回退一次，但不消耗重试预算。
// 返回值永远非 nil，失败时附带结构化错误。
func (c *Client) Call(ctx context.Context, op Operation, params map[string]string) *RawResponse {
	route, ok := versionRoutes[op]
	if !ok {
		return &RawResponse{
			Code:    -1,
			Message: fmt.Sprintf("unknown operation: %s", op),
			Error:   &ResponseError{Type: ErrorAPI},
		}
	}

	outcome := c.retry.Execute(ctx, func(ctx context.Context) *Outcome {
		return c.transport.Send(ctx, route.preferPath, params)
	})
	c.metrics.RecordVersionChoice(VersionChoice{
		API:        string(op),
		Prefer:     route.prefer,
		ResultCode: outcomeCode(outcome),
	})

	if outcome.Success() {
		return outcome.Body
	}
	if route.fallback == "" {
		return outcomeToResponse(outcome)
	}

	logrus.WithFields(logrus.Fields{
		"api":     op,
		"prefer":  route.prefer,
		"outcome": outcome.String(),
	}).Warn("首选版本失败，回退到老版本")

	fbOutcome := c.transport.Send(ctx, route.fallbackPath, params)
	fbOutcome.Attempts = 1
	if fbOutcome.Debug != nil {
		fbOutcome.Debug.Attempt = 1
	}
	c.metrics.RecordVersionChoice(VersionChoice{
		API:        string(op),
		Fallback:   route.fallback,
		ResultCode: outcomeCode(fbOutcome),
	})

	return outcomeToResponse(fbOutcome)
}

func outcomeCode(o *Outcome) int {
	if o != nil && o.Body != nil {
		return o.Body.Code
	}
	return -1
}

// outcomeToResponse 把请求结果收敛成响应信封；
// 失败时附带带脱敏诊断的结构化错误，绝不向上抛异常。
func outcomeToResponse(o *Outcome) *RawResponse {
	if o.Body != nil {
		if !o.Success() {
			o.Body.Error = &ResponseError{Type: o.Type, Debug: o.Debug}
		}
		return o.Body
	}

	msg := fmt.Sprintf("invalid json or http error (status=%d)", o.HTTPStatus)
	msgCN := "无效的JSON响应或HTTP错误"
	if o.Type == ErrorNetwork {
		msg = "request error"
		if o.Err != nil {
			msg = fmt.Sprintf("request error: %v", o.Err)
		}
		msgCN = "网络请求异常"
	}
	return &RawResponse{
		Code:      -1,
		Message:   msg,
		MessageCN: msgCN,
		Error:     &ResponseError{Type: o.Type, Debug: o.Debug},
	}
}
