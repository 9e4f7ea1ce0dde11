package vmrun

import "errors"

// ErrDivisionByZero is raised by idiv/irem/ldiv/lrem on a zero divisor.
// Not one of spec.md §7's enumerated runtime kinds (that list predates this
// case being reachable without a verifier), but it is a runtime failure in
// the same sense: dispatch terminates the program (spec.md §7).
var ErrDivisionByZero = errors.New("division by zero")

// ErrNoMain is returned by Execute when the requested main class has no
// static main([Ljava/lang/String;)V method.
var ErrNoMain = errors.New("no such method: main([Ljava/lang/String;)V")
