package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMillisRoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 30, 0, 123_000_000, time.UTC)

	ms := UnixMillisPtr(&at)

	assert.Equal(t, at, FromUnixMillis(*ms))
	assert.Nil(t, UnixMillisPtr(nil))
	assert.True(t, FromUnixMillis(0).IsZero())
}
