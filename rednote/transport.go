package rednote

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/xpzouying/rednote-collector/configs"
)

// Transport 负责发出单次逻辑请求：请求前限速、超时控制、
// 结果分类与耗时统计。重试不在这一层，由 RetryPolicy 负责。
type Transport struct {
	baseURL string
	token   string
	client  *http.Client
	limiter *rate.Limiter
	metrics *RunMetrics
	codes   map[int]string
}

// NewTransport 创建传输层。metrics 为本次运行独占的诊断对象。
// 限速器实现了“每次请求前固定等待”的节流策略，多处并发共享同一实例时
// 仍能保证对服务端的整体速率。
func NewTransport(baseURL, token string, metrics *RunMetrics) *Transport {
	limiter := rate.NewLimiter(rate.Every(configs.RequestPreDelay), 1)
	// 初始令牌在构造时消费，第一次请求同样经历完整前置延迟
	limiter.AllowN(time.Now(), 1)
	return &Transport{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: configs.RequestTimeout},
		limiter: limiter,
		metrics: metrics,
		codes:   DefaultErrorCodes,
	}
}

// MaskToken 隐藏 Token 用于日志与诊断输出
func MaskToken(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:3] + "***" + token[len(token)-4:]
}

// maskedParams 构造脱敏后的请求参数（用于诊断输出）
func (t *Transport) maskedParams(params map[string]string) map[string]string {
	masked := make(map[string]string, len(params)+1)
	for k, v := range params {
		if v != "" {
			masked[k] = v
		}
	}
	masked["token"] = MaskToken(t.token)
	return masked
}

// Send 发出一次 GET 请求并分类结果。空值参数不会拼进请求。
func (t *Transport) Send(ctx context.Context, path string, params map[string]string) *Outcome {
	// 请求前节流：等待被取消时按网络错误返回
	if err := t.limiter.Wait(ctx); err != nil {
		return &Outcome{
			Type:  ErrorNetwork,
			Err:   err,
			Debug: &RequestDebug{Path: path, Params: t.maskedParams(params)},
		}
	}

	query := url.Values{}
	query.Set("token", t.token)
	for k, v := range params {
		if v != "" {
			query.Set(k, v)
		}
	}
	fullURL := t.baseURL + path + "?" + query.Encode()

	debug := &RequestDebug{
		Path:   path,
		URL:    t.baseURL + path,
		Params: t.maskedParams(params),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return &Outcome{Type: ErrorNetwork, Err: err, Debug: debug}
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	debug.DurationMS = time.Since(start).Milliseconds()
	t.metrics.RecordDuration(path, debug.DurationMS)

	if err != nil {
		logrus.WithError(err).WithField("path", path).Debug("请求失败")
		return &Outcome{Type: ErrorNetwork, Err: err, Debug: debug}
	}
	defer resp.Body.Close()

	debug.HTTPStatus = resp.StatusCode

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Outcome{Type: ErrorNetwork, HTTPStatus: resp.StatusCode, Err: err, Debug: debug}
	}

	body := decodeRawResponse(raw)
	if body != nil {
		// 注入业务码中文文案
		if cn, ok := t.codes[body.Code]; ok {
			body.MessageCN = cn
		}
	}

	outcome := &Outcome{
		Type:       classifyOutcome(resp.StatusCode, body),
		Body:       body,
		HTTPStatus: resp.StatusCode,
		Debug:      debug,
	}

	logrus.WithFields(logrus.Fields{
		"path":        path,
		"http_status": resp.StatusCode,
		"duration_ms": debug.DurationMS,
		"outcome":     outcome.String(),
	}).Debug("请求完成")

	return outcome
}
