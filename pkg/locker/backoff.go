package locker

import (
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultBaseDelay is the first retry delay before jitter.
	DefaultBaseDelay = 100 * time.Millisecond
	// DefaultMaxDelay caps the retry delay before jitter.
	DefaultMaxDelay = time.Second
)

// jitterBackoff yields exponentially growing delays, capped at max, with
// full jitter: each delay is sampled uniformly from [0, capped delay).
type jitterBackoff struct {
	exp    *backoff.ExponentialBackOff
	jitter func(time.Duration) time.Duration
}

func newJitterBackoff(base, max time.Duration) *jitterBackoff {
	exp := &backoff.ExponentialBackOff{
		InitialInterval:     base,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         max,
		MaxElapsedTime:      0, // the Mutex enforces maxWait itself
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	exp.Reset()

	return &jitterBackoff{exp: exp, jitter: fullJitter}
}

// Next returns the delay before the next attempt.
func (b *jitterBackoff) Next() time.Duration {
	return b.jitter(b.exp.NextBackOff())
}

func fullJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}

	return time.Duration(rand.Int64N(int64(d)))
}
