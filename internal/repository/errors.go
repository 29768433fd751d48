// Package repository implements data access over MySQL.  Sentinel
// errors defined here let handlers distinguish failure scenarios and
// map them to HTTP responses without inspecting SQL details.
package repository

import "errors"

// ErrNotFound is returned when the target row does not exist or is
// not visible to the caller (ownership scoping).  Handlers translate
// this into a 404 response.
var ErrNotFound = errors.New("not found")

// ErrStale is returned when a conditional update matched no rows
// because the row's status changed since it was read.  Callers should
// re-read and classify the new state instead of retrying blindly.
var ErrStale = errors.New("stale status")
