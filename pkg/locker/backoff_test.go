package locker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJitterBackoff_DoublesUpToCap(t *testing.T) {
	b := newJitterBackoff(100*time.Millisecond, time.Second)
	b.jitter = func(d time.Duration) time.Duration { return d } // no jitter

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	}
	for i, w := range want {
		assert.Equal(t, w, b.Next(), "attempt %d", i+1)
	}
}

func TestFullJitter_Bounds(t *testing.T) {
	for i := 0; i < 1000; i++ {
		d := fullJitter(500 * time.Millisecond)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.Less(t, d, 500*time.Millisecond)
	}

	assert.Equal(t, time.Duration(0), fullJitter(0))
}
