// Package storage holds error kinds shared by the repository layers.
package storage

import "errors"

// ErrUnavailable marks a failure of the backing store itself, as opposed
// to a domain rejection such as a missing row or an exhausted counter.
// Handlers map it to 503 so clients know a retry may succeed.
var ErrUnavailable = errors.New("storage unavailable")
