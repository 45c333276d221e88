package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock(t *testing.T) {
	c := NewClock()
	assert.Zero(t, c.Current())

	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current(), "Current does not advance")

	c.Set(40)
	assert.Equal(t, int64(41), c.Next())
}

func TestClock_Every(t *testing.T) {
	tests := []struct {
		name  string
		tick  int64
		every int64
		want  bool
	}{
		{"on period", 40, 20, true},
		{"off period", 41, 20, false},
		{"every tick", 7, 1, true},
		{"tick zero", 0, 20, false},
		{"disabled", 40, 0, false},
		{"negative", 40, -5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClock()
			c.Set(tt.tick)
			assert.Equal(t, tt.want, c.Every(tt.every))
		})
	}
}

func TestClock_ConcurrentReads(t *testing.T) {
	c := NewClock()
	const steps = 500

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range steps {
			c.Next()
		}
	}()
	go func() {
		defer wg.Done()
		last := int64(0)
		for range steps {
			now := c.Current()
			assert.GreaterOrEqual(t, now, last, "ticks never go backwards")
			last = now
		}
	}()
	wg.Wait()

	assert.Equal(t, int64(steps), c.Current())
}
