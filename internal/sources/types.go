// Package sources provides the outbound fetch clients. Each client performs one
// bounded request and normalizes the payload into model records, preserving
// source order.
package sources

import "fmt"

// FetchError represents a failed outbound fetch: network error, timeout, or a
// non-success response. The caller reports it as a failed run and does not
// retry; the next scheduled tick is the retry.
type FetchError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s fetch failed: status %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("%s fetch failed: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
