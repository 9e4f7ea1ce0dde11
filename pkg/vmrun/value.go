// Package vmrun is the bytecode interpreter: a frame stack executing JVM
// instructions over a typed value union, resolving constant-pool references
// through pkg/loader and dispatching native calls through pkg/native
// (spec.md §4.9, §4.10).
package vmrun

// Kind tags what a Value holds (spec.md §3's "single-word tagged or
// untagged union").
type Kind uint8

const (
	KindInt Kind = iota
	KindLong
	KindFloat
	KindDouble
	KindRef
)

// Value is the interpreter's operand-stack and local-variable cell.
// Category-2 values (long, double) occupy two local-slot indices; on the
// operand stack they occupy one (spec.md §4.9) because this representation
// already carries the full 64-bit payload in a single Go value instead of
// two half-words.
type Value struct {
	Kind   Kind
	Int    int32
	Long   int64
	Float  float32
	Double float64
	Ref    interface{}
}

// Category returns 1 for everything except long/double, which are
// category-2 (JVMS §2.6.1) — the algebra dup/dup2/pop2 and local-slot
// doubling are built on.
func (v Value) Category() int {
	if v.Kind == KindLong || v.Kind == KindDouble {
		return 2
	}
	return 1
}

func IntVal(v int32) Value       { return Value{Kind: KindInt, Int: v} }
func LongVal(v int64) Value      { return Value{Kind: KindLong, Long: v} }
func FloatVal(v float32) Value   { return Value{Kind: KindFloat, Float: v} }
func DoubleVal(v float64) Value  { return Value{Kind: KindDouble, Double: v} }
func RefVal(v interface{}) Value { return Value{Kind: KindRef, Ref: v} }

// NullVal is a reference Value holding no object, the result of
// aconst_null and the zero value of every reference-typed local.
func NullVal() Value { return Value{Kind: KindRef, Ref: nil} }
