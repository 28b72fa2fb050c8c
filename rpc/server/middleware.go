package server

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/ValentinKolb/mqRPC/rpc/common"
	"golang.org/x/time/rate"
)

var (
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrHandlerTimeout = errors.New("request timed out")
)

// InvokeFunc executes a decoded invocation against the registry
type InvokeFunc func(ctx context.Context, inv *common.Invocation) (any, error)

// Middleware wraps an InvokeFunc
type Middleware func(next InvokeFunc) InvokeFunc

// Chain combines multiple middlewares into one, the first one is the outermost
func Chain(middlewares ...Middleware) Middleware {
	return func(next InvokeFunc) InvokeFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

// RecoverMiddleware turns a panicking handler into a returned error
func RecoverMiddleware() Middleware {
	return func(next InvokeFunc) InvokeFunc {
		return func(ctx context.Context, inv *common.Invocation) (data any, err error) {
			defer func() {
				if r := recover(); r != nil {
					Logger.Errorf("Handler of %s panicked: %v\n%s", inv.Method, r, debug.Stack())
					data, err = nil, fmt.Errorf("panic: %v", r)
				}
			}()
			return next(ctx, inv)
		}
	}
}

// LoggingMiddleware logs method, duration and error of every invocation (debug level)
func LoggingMiddleware() Middleware {
	return func(next InvokeFunc) InvokeFunc {
		return func(ctx context.Context, inv *common.Invocation) (any, error) {
			start := time.Now()
			data, err := next(ctx, inv)
			if err != nil {
				Logger.Debugf("%s(%d args, %d kwargs) failed after %s: %v", inv.Method, len(inv.Args), len(inv.Kwargs), time.Since(start), err)
			} else {
				Logger.Debugf("%s(%d args, %d kwargs) took %s", inv.Method, len(inv.Args), len(inv.Kwargs), time.Since(start))
			}
			return data, err
		}
	}
}

// TimeoutMiddleware bounds an invocation. The handler keeps running in the
// background after the timeout and overlaps with the following invocations,
// it should observe ctx.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next InvokeFunc) InvokeFunc {
		return func(ctx context.Context, inv *common.Invocation) (any, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			type result struct {
				data any
				err  error
			}
			done := make(chan result, 1)
			go func() {
				data, err := next(ctx, inv)
				done <- result{data: data, err: err}
			}()

			select {
			case res := <-done:
				return res.data, res.err
			case <-ctx.Done():
				return nil, ErrHandlerTimeout
			}
		}
	}
}

// RateLimitMiddleware rejects invocations exceeding r per second (token bucket with burst)
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next InvokeFunc) InvokeFunc {
		return func(ctx context.Context, inv *common.Invocation) (any, error) {
			if !limiter.Allow() {
				return nil, ErrRateLimited
			}
			return next(ctx, inv)
		}
	}
}
