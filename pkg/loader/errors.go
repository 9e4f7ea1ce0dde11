package loader

import "errors"

// Link-time error kinds (spec.md §7).
var (
	ErrNotFound     = errors.New("class not found on classpath")
	ErrNameMismatch = errors.New("this_class does not match the requested class name")
	ErrCircularity  = errors.New("circular superclass or superinterface chain")
)

// Runtime resolution error kinds (spec.md §7).
var (
	ErrMissingMethod   = errors.New("no such method")
	ErrMissingField    = errors.New("no such field")
	ErrUnresolvedNative = errors.New("unresolved native method or field")
)
