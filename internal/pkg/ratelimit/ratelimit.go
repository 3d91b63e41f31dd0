// Package ratelimit implements fixed-window admission control.
//
// A bucket opens on the first hit for a key and stays open for Spec.Window.
// Within an open bucket the first Spec.Max hits are admitted and the rest are
// rejected until the bucket expires. Bursts of up to 2*Max are possible across
// a window boundary.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/ulule/limiter/v3"
)

// Spec is a limit of Max requests per Window
type Spec struct {
	Max    int
	Window time.Duration
}

// String formats the spec as "<max>/<window>"
func (s Spec) String() string {
	return fmt.Sprintf("%d/%s", s.Max, s.Window)
}

// ParseSpec parses a formatted rate such as "10-M" or "5-H"
func ParseSpec(formatted string) (Spec, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return Spec{}, fmt.Errorf("ratelimit: invalid spec %q: %w", formatted, err)
	}
	if rate.Limit <= 0 || rate.Period <= 0 {
		return Spec{}, fmt.Errorf("ratelimit: invalid spec %q", formatted)
	}
	return Spec{Max: int(rate.Limit), Window: rate.Period}, nil
}

func (s Spec) rate() limiter.Rate {
	return limiter.Rate{Limit: int64(s.Max), Period: s.Window}
}

// Decision is the outcome of an admission check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAfter is the time left in the current window
	ResetAfter time.Duration
	// RetryAfter is set only when the request was rejected
	RetryAfter time.Duration
}

// Limiter decides whether a request for key is admitted under spec
type Limiter interface {
	Admit(ctx context.Context, key string, spec Spec) (Decision, error)
}

func decide(lctx limiter.Context, now time.Time) Decision {
	resetAfter := time.Unix(lctx.Reset, 0).Sub(now)
	if resetAfter < 0 {
		resetAfter = 0
	}

	d := Decision{
		Allowed:    !lctx.Reached,
		Limit:      int(lctx.Limit),
		Remaining:  int(lctx.Remaining),
		ResetAfter: resetAfter,
	}
	if !d.Allowed {
		d.RetryAfter = resetAfter
		if d.RetryAfter < time.Second {
			d.RetryAfter = time.Second
		}
	}
	return d
}
