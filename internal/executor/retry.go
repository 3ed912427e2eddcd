package executor

import (
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// #region attempt
// Attempt records one call to the bridge.
type Attempt struct {
	Code    codes.Code
	Timeout time.Duration
	Err     error
}

// #endregion attempt

// #region retry-policy

// RetryPolicy decides whether a failed bridge call is retried and how long
// the next attempt may take. Timeouts escalate linearly with the attempt.
type RetryPolicy struct {
	maxRetries int
	timeout    time.Duration
	backoff    time.Duration
}

// NewRetryPolicy creates a policy from the client configuration.
func NewRetryPolicy(cfg ClientConfig) *RetryPolicy {
	return &RetryPolicy{maxRetries: cfg.MaxRetries, timeout: cfg.Timeout, backoff: cfg.Backoff}
}

// FirstTimeout is the deadline of the first attempt; zero means none.
func (r *RetryPolicy) FirstTimeout() time.Duration {
	return r.timeout
}

// ShouldRetry returns whether to retry, the wait before it and the timeout
// of the next attempt. attempts holds every attempt so far, including the
// one just failed.
func (r *RetryPolicy) ShouldRetry(attempts []Attempt) (bool, time.Duration, time.Duration) {
	if len(attempts) == 0 {
		return false, 0, 0
	}

	// Max retries reached
	if len(attempts) > r.maxRetries {
		return false, 0, 0
	}

	latest := attempts[len(attempts)-1]
	if !transient(latest.Code) {
		return false, 0, 0
	}

	n := time.Duration(len(attempts))
	var next time.Duration
	if r.timeout > 0 {
		next = r.timeout * (n + 1)
	}
	return true, r.backoff * n, next
}

// transient lists the codes worth another attempt.
func transient(c codes.Code) bool {
	switch c {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return true
	}
	return false
}

// codeOf maps an error to its gRPC code; non-status errors are Unknown.
func codeOf(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	return status.Code(err)
}

// #endregion retry-policy
