// Package retry runs collaborator calls under a bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nosenfield/smart-scrip/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Policy bounds how a call is retried.
type Policy struct {
	// Name labels retry metrics and log lines.
	Name string
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// InitialInterval is the delay before the first retry.
	InitialInterval time.Duration
	// MaxInterval caps the delay between retries.
	MaxInterval time.Duration
	// Multiplier grows the delay after each retry. Values below 1 use the backoff default.
	Multiplier float64
	// AttemptTimeout bounds each individual attempt. Zero means no per-attempt bound.
	AttemptTimeout time.Duration
}

// DefaultPolicy returns a policy of three attempts with a short backoff.
func DefaultPolicy(name string) Policy {
	return Policy{
		Name:            name,
		MaxAttempts:     3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2,
		AttemptTimeout:  5 * time.Second,
	}
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var perm *backoff.PermanentError
	return errors.As(err, &perm)
}

// Do calls op until it succeeds, returns a permanent error, the attempts
// are exhausted or ctx is done. The last error is returned.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	exp := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		exp.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		exp.MaxInterval = p.MaxInterval
	}
	if p.Multiplier >= 1 {
		exp.Multiplier = p.Multiplier
	}
	exp.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.MaxAttempts-1)), ctx)

	attempt := func() error {
		attemptCtx := ctx
		if p.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
			defer cancel()
		}

		err := op(attemptCtx)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		metrics.RecordRetry(p.Name)
		log.Debug().
			Err(err).
			Str("collaborator", p.Name).
			Dur("backoff", next).
			Msg("Retrying collaborator call")
	}

	return backoff.RetryNotify(attempt, b, notify)
}
