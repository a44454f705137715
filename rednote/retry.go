package rednote

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/xpzouying/rednote-collector/configs"
)

// RetryPolicy 在 Transport 之上做有界重试：
// 网络错误、限流、5xx、无效 JSON 可重试；鉴权错误与业务错误是终局的。
// 退避为 base*2^(k-1) 加均匀随机抖动。
type RetryPolicy struct {
	attempts uint
	base     time.Duration
	jitter   time.Duration
}

func NewRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		attempts: configs.RequestRetryAttempts,
		base:     configs.RequestBackoffBase,
		jitter:   configs.RequestBackoffJitter,
	}
}

// outcomeError 把非成功结果适配成 error，供 retry-go 判定
type outcomeError struct {
	outcome *Outcome
}

func (e *outcomeError) Error() string {
	return e.outcome.String()
}

// Execute 执行 thunk 直到成功、遇到终局错误或用尽尝试次数，
// 返回最后一次的结果并标注尝试次数。
func (p *RetryPolicy) Execute(ctx context.Context, thunk func(context.Context) *Outcome) *Outcome {
	var last *Outcome
	attempt := 0

	//nolint:errcheck // 结果通过 last 返回，错误只用于驱动重试
	_ = retry.Do(
		func() error {
			attempt++
			last = thunk(ctx)
			last.Attempts = attempt
			if last.Debug != nil {
				last.Debug.Attempt = attempt
			}
			if last.Success() {
				return nil
			}
			return &outcomeError{outcome: last}
		},
		retry.Attempts(p.attempts),
		retry.Delay(p.base),
		retry.MaxJitter(p.jitter),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var oe *outcomeError
			if errors.As(err, &oe) {
				return oe.outcome.Retryable()
			}
			return false
		}),
		retry.Context(ctx),
	)

	return last
}
