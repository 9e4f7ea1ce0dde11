package native

import "errors"

// ErrUnresolvedNative is returned when no handler is registered for a
// (class, name, descriptor) triple the resolver flagged as native
// (spec.md §7).
var ErrUnresolvedNative = errors.New("unresolved native method or field")
