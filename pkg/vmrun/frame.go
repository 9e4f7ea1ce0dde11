package vmrun

import (
	"fmt"

	"github.com/classvm/classvm/pkg/classfile"
	"github.com/classvm/classvm/pkg/loader"
)

// Frame is one method invocation's locals and operand stack, grounded on
// daimatz-gojvm/pkg/vm/frame.go's Frame but carrying this toolkit's own
// Value union and a non-owning pointer to the declaring loader.Class
// instead of a bare *classfile.ClassFile, since resolution needs the
// linked super/interface chain (spec.md §3, §4.9).
type Frame struct {
	Locals []Value
	Stack  []Value
	sp     int
	PC     int
	Code   *classfile.CodeAttr
	Class  *loader.Class
	Method *classfile.MethodInfo
}

// NewFrame allocates a Frame sized from method's Code attribute and links
// it to its declaring class (spec.md §4.9's push operation). Callers fill
// in Locals[0:] with the invocation's receiver/arguments before running it.
func NewFrame(cls *loader.Class, method *classfile.MethodInfo) *Frame {
	code := method.Code
	return &Frame{
		Locals: make([]Value, code.MaxLocals),
		Stack:  make([]Value, code.MaxStack),
		Code:   code,
		Class:  cls,
		Method: method,
	}
}

// Push pushes v onto the operand stack. Category-2 values occupy exactly
// one slot here (spec.md §4.9) — this implementation's Value already
// carries a full 64-bit payload, so no second half-slot is needed.
func (f *Frame) Push(v Value) {
	if f.sp >= len(f.Stack) {
		panic(fmt.Sprintf("operand stack overflow: sp=%d max=%d", f.sp, len(f.Stack)))
	}
	f.Stack[f.sp] = v
	f.sp++
}

// Pop pops the top of the operand stack.
func (f *Frame) Pop() Value {
	if f.sp <= 0 {
		panic("operand stack underflow")
	}
	f.sp--
	return f.Stack[f.sp]
}

// Peek returns the value n slots below the top without popping (n=0 is the
// top), used by the dup family.
func (f *Frame) Peek(n int) Value {
	return f.Stack[f.sp-1-n]
}

// Depth reports the current operand-stack depth.
func (f *Frame) Depth() int { return f.sp }

// LocalLoad reads local slot i.
func (f *Frame) LocalLoad(i int) Value {
	if i < 0 || i >= len(f.Locals) {
		panic(fmt.Sprintf("local variable index out of range: index=%d max=%d", i, len(f.Locals)))
	}
	return f.Locals[i]
}

// LocalStore writes v into local slot i. Long/double values additionally
// blank slot i+1 (spec.md §4.9: "callers also write slot i+1" for layout
// parity with the two-slot JVM convention; this implementation never reads
// i+1 back, LocalLoad always addresses the primary slot).
func (f *Frame) LocalStore(i int, v Value) {
	if i < 0 || i >= len(f.Locals) {
		panic(fmt.Sprintf("local variable index out of range: index=%d max=%d", i, len(f.Locals)))
	}
	f.Locals[i] = v
	if v.Category() == 2 && i+1 < len(f.Locals) {
		f.Locals[i+1] = Value{}
	}
}

// ReadU8 reads a uint8 immediate operand and advances PC.
func (f *Frame) ReadU8() uint8 {
	v := f.Code.Code[f.PC]
	f.PC++
	return v
}

// ReadI8 reads a signed int8 immediate operand and advances PC.
func (f *Frame) ReadI8() int8 {
	return int8(f.ReadU8())
}

// ReadU16 reads a big-endian uint16 immediate operand and advances PC by 2.
func (f *Frame) ReadU16() uint16 {
	v := uint16(f.Code.Code[f.PC])<<8 | uint16(f.Code.Code[f.PC+1])
	f.PC += 2
	return v
}

// ReadI16 reads a big-endian int16 immediate operand and advances PC by 2.
func (f *Frame) ReadI16() int16 {
	return int16(f.ReadU16())
}

// ReadI32 reads a big-endian int32 immediate operand and advances PC by 4.
func (f *Frame) ReadI32() int32 {
	b := f.Code.Code
	v := uint32(b[f.PC])<<24 | uint32(b[f.PC+1])<<16 | uint32(b[f.PC+2])<<8 | uint32(b[f.PC+3])
	f.PC += 4
	return int32(v)
}
