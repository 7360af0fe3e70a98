package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonotonicClockAdvances(t *testing.T) {
	c := NewMonotonicClock()
	first := c.Now()
	time.Sleep(time.Millisecond)
	second := c.Now()
	assert.Greater(t, second, first)
}
