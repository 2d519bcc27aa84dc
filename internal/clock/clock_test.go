package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock_Now(t *testing.T) {
	c := RealClock{}

	before := time.Now()
	got := c.Now()
	after := time.Now()

	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}

func TestFixed_Now(t *testing.T) {
	fixedTime := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	c := Fixed{T: fixedTime}

	assert.Equal(t, fixedTime, c.Now())
	assert.Equal(t, fixedTime, c.Now(), "repeated calls return the same instant")
}
