// Package native is the toolkit's fixed, string-keyed surface for methods
// and fields the host runtime implements directly instead of loading
// bytecode for: java/lang/System and java/io/PrintStream (spec.md §4.8,
// §9). It defines its own lightweight Value type rather than importing
// pkg/vmrun's — pkg/vmrun already depends on this package to dispatch
// native calls, so the reverse dependency would cycle; pkg/vmrun converts
// at the boundary.
package native

// Kind tags what a Value holds.
type Kind uint8

const (
	KindInt Kind = iota
	KindLong
	KindFloat
	KindDouble
	KindRef
)

// Value is the native surface's own single-word union, mirroring
// spec.md §3's Value model closely enough to convert losslessly in both
// directions at the pkg/vmrun boundary.
type Value struct {
	Kind   Kind
	Int    int32
	Long   int64
	Float  float32
	Double float64
	Ref    interface{} // e.g. a Go string for a java/lang/String, or *PrintStream
}

func Int(v int32) Value       { return Value{Kind: KindInt, Int: v} }
func Long(v int64) Value      { return Value{Kind: KindLong, Long: v} }
func Float(v float32) Value   { return Value{Kind: KindFloat, Float: v} }
func Double(v float64) Value  { return Value{Kind: KindDouble, Double: v} }
func Ref(v interface{}) Value { return Value{Kind: KindRef, Ref: v} }
