// Package kvstore provides the bounded key/value slot the customization bundle
// lives in. Writes that would push the stored total past the quota fail with
// ErrQuotaExceeded so callers can tell "full" apart from other failures.
package kvstore

import "errors"

// DefaultQuota matches the per-origin budget browsers give local storage.
const DefaultQuota = 5 << 20

var (
	ErrNotFound      = errors.New("key not found")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Store is a bounded string key/value store.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// fits reports whether replacing a value of size old with one of size next
// keeps a store currently holding used bytes within quota.
func fits(quota, used, old, next int64) bool {
	if quota <= 0 {
		return true
	}
	return used-old+next <= quota
}
