package provider

import (
	"context"
	"log/slog"
	"time"

	"github.com/broady/bindgen/ir"
)

// DiscoverFunc is the next step in an interceptor chain.
type DiscoverFunc func(ctx context.Context) ([]ir.Batch, error)

// Interceptor wraps a discovery pass. name identifies the provider.
//
// Interceptors can inspect or filter the returned batches, short-circuit
// with an error, or decorate the context before calling next.
type Interceptor func(ctx context.Context, name string, next DiscoverFunc) ([]ir.Batch, error)

// Intercept returns a Provider that runs p through interceptors. The first
// interceptor is the outer-most one.
func Intercept(p Provider, name string, interceptors ...Interceptor) Provider {
	if len(interceptors) == 0 {
		return p
	}
	return &intercepted{Provider: p, name: name, chain: chainInterceptors(interceptors)}
}

type intercepted struct {
	Provider
	name  string
	chain Interceptor
}

func (p *intercepted) Discover(ctx context.Context) ([]ir.Batch, error) {
	return p.chain(ctx, p.name, p.Provider.Discover)
}

// Unwrap returns the wrapped provider.
func (p *intercepted) Unwrap() Provider { return p.Provider }

// chainInterceptors combines interceptors into one. The first interceptor
// in the slice runs first.
func chainInterceptors(interceptors []Interceptor) Interceptor {
	if len(interceptors) == 1 {
		return interceptors[0]
	}
	return func(ctx context.Context, name string, next DiscoverFunc) ([]ir.Batch, error) {
		chain := next
		for i := len(interceptors) - 1; i >= 0; i-- {
			current, inner := interceptors[i], chain
			chain = func(ctx context.Context) ([]ir.Batch, error) {
				return current(ctx, name, inner)
			}
		}
		return chain(ctx)
	}
}

// LoggingInterceptor logs the start and end of each discovery pass,
// including duration, batch and record counts, and error status.
func LoggingInterceptor(logger *slog.Logger) Interceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context, name string, next DiscoverFunc) ([]ir.Batch, error) {
		start := time.Now()

		logger.DebugContext(ctx, "discovery started",
			slog.String("provider", name),
		)

		batches, err := next(ctx)
		duration := time.Since(start)

		if err != nil {
			logger.ErrorContext(ctx, "discovery failed",
				slog.String("provider", name),
				slog.Duration("duration", duration),
				slog.Any("error", err),
			)
			return nil, err
		}

		records := 0
		for _, b := range batches {
			records += len(b.Records)
		}
		logger.InfoContext(ctx, "discovery completed",
			slog.String("provider", name),
			slog.Duration("duration", duration),
			slog.Int("batches", len(batches)),
			slog.Int("records", records),
		)
		return batches, nil
	}
}
