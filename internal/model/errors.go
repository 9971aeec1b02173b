package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnknownRegion is matched by errors.Is for any *UnknownRegionError.
	ErrUnknownRegion = errors.New("unknown region")
	// ErrUnknownTown is matched by errors.Is for any *UnknownTownError.
	ErrUnknownTown = errors.New("unknown town")
)

// UnknownRegionError rejects a search for a region not in the directory.
type UnknownRegionError struct {
	Region string
}

func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("unknown region %q", e.Region)
}

func (e *UnknownRegionError) Is(target error) bool { return target == ErrUnknownRegion }

// UnknownTownError rejects a town that does not belong to the requested region.
type UnknownTownError struct {
	Region string
	Town   string
}

func (e *UnknownTownError) Error() string {
	return fmt.Sprintf("town %q is not in region %q", e.Town, e.Region)
}

func (e *UnknownTownError) Is(target error) bool { return target == ErrUnknownTown }

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// AdapterError is a whole-fetch failure of one source: network error,
// timeout, bad status or an unexpected document. It never reaches the
// aggregator's caller.
type AdapterError struct {
	Source string
	Err    error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// BatchIndex is the Index of an ItemParseError raised after extraction, when
// the candidate's page position is no longer known.
const BatchIndex = -1

// ItemParseError is a failure to convert one candidate item. The batch
// continues with the next item.
type ItemParseError struct {
	Source string
	// Index is the position of the candidate on the page, or BatchIndex.
	Index int
	// BatchPos is the position in the fetcher's batch when Index is BatchIndex.
	BatchPos int
	Reason   string
}

func (e *ItemParseError) Error() string {
	if e.Index == BatchIndex {
		return fmt.Sprintf("source %s: listing %d: %s", e.Source, e.BatchPos, e.Reason)
	}
	return fmt.Sprintf("source %s: item %d: %s", e.Source, e.Index, e.Reason)
}

// ParseRetryAfter parses a Retry-After header given in seconds. Absent,
// negative or unparseable values yield zero.
func ParseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
