package chaindata

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/mrz1836/dcrvault/internal/discovery"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// ErrTransient marks a fetch failure worth retrying.
var ErrTransient = &vaulterr.VaultError{
	Code:     "TRANSIENT_FETCH_ERROR",
	Message:  "history fetch failed temporarily",
	ExitCode: vaulterr.ExitUpstream,
}

// Transient wraps err so that a ResilientFetcher retries it.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// IsTransient reports whether a failed fetch may succeed when repeated.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// RetryPolicy bounds the attempts of one fetch.
type RetryPolicy struct {
	// MaxAttempts counts the initial attempt.
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy makes four attempts, backing off 1s, 2s and 4s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 4,
		BaseDelay:   time.Second,
		MaxDelay:    4 * time.Second,
	}
}

// backoff returns the delay before attempt+1: exponential, capped, with
// jitter in [d/2, d).
func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.BaseDelay << attempt
	if d > p.MaxDelay || d <= 0 {
		d = p.MaxDelay
	}
	half := d / 2
	if half <= 0 {
		return d
	}
	return half + rand.N(half) //nolint:gosec // G404: jitter needs no cryptographic randomness
}

// ResilientOptions configures a ResilientFetcher.
type ResilientOptions struct {
	// RatePerSecond limits fetches; zero disables limiting.
	RatePerSecond float64
	Burst         int

	// Retry defaults to DefaultRetryPolicy when MaxAttempts is zero.
	Retry RetryPolicy

	Logger *zerolog.Logger
}

// ResilientFetcher rate limits another fetcher and retries its transient
// failures.
type ResilientFetcher struct {
	next    discovery.HistoryFetcher
	limiter *rate.Limiter
	policy  RetryPolicy
	logger  zerolog.Logger
}

var _ discovery.HistoryFetcher = (*ResilientFetcher)(nil)

// NewResilientFetcher wraps next.
func NewResilientFetcher(next discovery.HistoryFetcher, opts ResilientOptions) *ResilientFetcher {
	f := &ResilientFetcher{
		next:    next,
		limiter: rate.NewLimiter(rate.Inf, 0),
		policy:  opts.Retry,
		logger:  zerolog.Nop(),
	}
	if opts.RatePerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), max(opts.Burst, 1))
	}
	if f.policy.MaxAttempts <= 0 {
		f.policy = DefaultRetryPolicy()
	}
	if opts.Logger != nil {
		f.logger = opts.Logger.With().Str("component", "fetch").Logger()
	}
	return f
}

// FetchAddressHistories implements discovery.HistoryFetcher.
func (f *ResilientFetcher) FetchAddressHistories(ctx context.Context, req discovery.FetchRequest) (*discovery.ChainData, error) {
	var lastErr error
	for attempt := range f.policy.MaxAttempts {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, vaulterr.WrapAs(vaulterr.ErrSyncCanceled, err, "waiting to fetch")
		}

		data, err := f.next.FetchAddressHistories(ctx, req)
		if err == nil {
			return data, nil
		}
		if !IsTransient(err) {
			return nil, err
		}
		lastErr = err

		if attempt == f.policy.MaxAttempts-1 {
			break
		}
		delay := f.policy.backoff(attempt)
		f.logger.Warn().Err(err).Int("attempt", attempt+1).Dur("retry_in", delay).Msg("history fetch failed")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, vaulterr.WrapAs(vaulterr.ErrSyncCanceled, ctx.Err(), "retrying fetch")
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("fetch failed after %d attempts: %w", f.policy.MaxAttempts, lastErr)
}
