package spotify

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"
)

const (
	defaultMaxAttempts = 3
	defaultBackoffMs   = 500
)

// retryPolicy 对瞬时失败做有限次指数退避重试。
// 限流（429）由 SDK 自己按 Retry-After 等待，这里兜底 5xx 和网络错误。
type retryPolicy struct {
	maxAttempts int
	baseBackoff time.Duration
}

func newRetryPolicy(maxAttempts, backoffMs int) retryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if backoffMs <= 0 {
		backoffMs = defaultBackoffMs
	}
	return retryPolicy{
		maxAttempts: maxAttempts,
		baseBackoff: time.Duration(backoffMs) * time.Millisecond,
	}
}

func (p retryPolicy) do(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		err = fn()
		if err == nil || !shouldRetry(err) {
			return err
		}
		if attempt == p.maxAttempts-1 {
			break
		}
		if serr := sleepWithContext(ctx, p.baseBackoff*time.Duration(1<<attempt)); serr != nil {
			return serr
		}
	}
	return err
}

func shouldRetry(err error) bool {
	// 翻页结束与取消是终态，不是瞬时故障
	if errors.Is(err, spotify.ErrNoMorePages) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var serr spotify.Error
	if errors.As(err, &serr) {
		return serr.Status == http.StatusTooManyRequests || serr.Status >= http.StatusInternalServerError
	}
	// 其余非 API 错误（连接重置、超时等）一律可重试
	return true
}

// isStatus 判断错误是否为指定 HTTP 状态的 API 错误
func isStatus(err error, status int) bool {
	var serr spotify.Error
	return errors.As(err, &serr) && serr.Status == status
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
