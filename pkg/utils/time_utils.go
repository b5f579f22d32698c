package utils

import "time"

// Rows store epoch milliseconds; these helpers keep the unit in one place.

func NowUnixMillis() int64 { return time.Now().UnixMilli() }

// FromUnixMillis converts stored milliseconds to UTC. Zero stays the zero time.
func FromUnixMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// UnixMillisPtr maps an optional time to an optional column value.
func UnixMillisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}
