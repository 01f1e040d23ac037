package cache

import (
	"encoding/json"
	"time"
)

// Entry is one stored value with its expiry.
type Entry struct {
	Key        string          `json:"key"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  time.Time       `json:"created_at"`
	ExpiresAt  time.Time       `json:"expires_at"`
	TTLSeconds int             `json:"ttl_seconds"`
}

// NewEntry creates an entry written at now that lives for ttlSeconds.
func NewEntry(key string, data json.RawMessage, ttlSeconds int, now time.Time) *Entry {
	return &Entry{
		Key:        key,
		Data:       data,
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Duration(ttlSeconds) * time.Second),
		TTLSeconds: ttlSeconds,
	}
}

// ExpiredAt reports whether the entry has expired at now.
func (e *Entry) ExpiredAt(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Remaining returns how long the entry stays valid after now, never negative.
func (e *Entry) Remaining(now time.Time) time.Duration {
	if d := e.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Touch restarts the entry's lifetime at now.
func (e *Entry) Touch(now time.Time) {
	e.ExpiresAt = now.Add(time.Duration(e.TTLSeconds) * time.Second)
}

// Decode unmarshals the entry data into v.
func (e *Entry) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}
