package source

import (
	"errors"
	"fmt"
)

// ErrSourceUnavailable means a provider is unreachable or returned a
// non-retryable error. The orchestrator skips to the next configured source.
var ErrSourceUnavailable = errors.New("source unavailable")

// ErrRateLimited means the provider answered 429 and the single bounded retry
// also failed. Escalates to the same handling as ErrSourceUnavailable.
var ErrRateLimited = errors.New("rate limited")

// MalformedRecordError marks a single raw record that cannot be normalized.
// It drops that one record; it never aborts a batch.
type MalformedRecordError struct {
	Source Kind
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record: %s", e.Source, e.Reason)
}

// IsMalformed reports whether err is a per-record normalization failure.
func IsMalformed(err error) bool {
	var m *MalformedRecordError
	return errors.As(err, &m)
}
