package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheck_FreshUserAllowed(t *testing.T) {
	l := New(10, time.Hour)
	res := l.Check("u1", "swipe")
	assert.True(t, res.Allowed)
	assert.Equal(t, 10, res.Remaining)
}

func TestRecordAction_DrainsQuota(t *testing.T) {
	l := New(3, time.Hour)
	for i := 0; i < 3; i++ {
		l.RecordAction("u1", "swipe")
	}
	res := l.Check("u1", "swipe")
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestCheck_PerUserIsolation(t *testing.T) {
	l := New(2, time.Hour)
	l.RecordAction("u1", "swipe")
	l.RecordAction("u1", "swipe")

	assert.False(t, l.Check("u1", "swipe").Allowed)
	assert.True(t, l.Check("u2", "swipe").Allowed)
}

func TestCheck_PerActionIsolation(t *testing.T) {
	l := New(1, time.Hour)
	l.RecordAction("u1", "swipe")

	assert.False(t, l.Check("u1", "swipe").Allowed)
	assert.True(t, l.Check("u1", "message").Allowed)
}

func TestCheck_DoesNotConsume(t *testing.T) {
	l := New(5, time.Hour)
	for i := 0; i < 10; i++ {
		l.Check("u1", "swipe")
	}
	assert.Equal(t, 5, l.Check("u1", "swipe").Remaining)
}
