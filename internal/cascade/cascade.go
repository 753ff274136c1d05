// Package cascade implements ordered first-success fallback across
// providers of one capability. Providers are tried strictly one at a time;
// any terminal provider failure means "try the next one", and only a fully
// exhausted list surfaces an error.
package cascade

import (
	"context"

	"github.com/sametyasit/cryptobuddy/internal/core"
	"github.com/sametyasit/cryptobuddy/internal/retry"
	"go.uber.org/zap"
)

// Source is one provider invocation wrapped with its retry policy.
type Source[T any] struct {
	Name   string
	Policy retry.Policy
	Fetch  func(ctx context.Context) (T, error)
}

// Resolve tries sources in order and returns the first success together
// with the winning provider's name. When every source fails, the result is
// a CascadeError carrying the ordered per-provider failure list.
func Resolve[T any](ctx context.Context, capability core.Capability, log *zap.Logger, sources []Source[T]) (T, string, error) {
	var zero T
	failures := make([]core.ProviderFailure, 0, len(sources))

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return zero, "", err
		}

		result, err := retry.Do(ctx, src.Policy, src.Fetch)
		if err == nil {
			return result, src.Name, nil
		}

		log.Warn("provider failed, falling back",
			zap.String("capability", string(capability)),
			zap.String("provider", src.Name),
			zap.Error(err),
		)
		failures = append(failures, core.ProviderFailure{Provider: src.Name, Err: err})
	}

	return zero, "", &core.CascadeError{Capability: capability, Failures: failures}
}
