package vmrun

import (
	"fmt"
	"math"

	"github.com/classvm/classvm/pkg/classfile"
	"github.com/classvm/classvm/pkg/loader"
	"github.com/classvm/classvm/pkg/native"
)

// run drives one frame's dispatch loop (spec.md §4.10):
//
//	while frame.pc < code_length:
//	    op = code[frame.pc]; frame.pc += 1
//	    stop = handlers[op](frame)
//	    if stop: break
//
// A handler returns stop=true for any *return opcode; its Value is the
// method's result (zero for void).
func (vm *VM) run(frame *Frame) (Value, error) {
	code := frame.Code.Code
	for frame.PC < len(code) {
		op := code[frame.PC]
		frame.PC++
		result, stop, err := vm.step(frame, op)
		if err != nil {
			return Value{}, fmt.Errorf("%s.%s%s at pc=%d: %w", frame.Class.Name, frame.Method.Name, frame.Method.Descriptor, frame.PC-1, err)
		}
		if stop {
			return result, nil
		}
	}
	return Value{}, nil
}

// step executes one instruction. branchPC, where needed, is the address of
// the opcode itself: frame.PC has already moved past it into the immediate
// operand area by the time step runs.
func (vm *VM) step(frame *Frame, op byte) (Value, bool, error) {
	switch op {
	case opNop:

	// --- Constants ---
	case opAconstNull:
		frame.Push(NullVal())
	case opIconstM1:
		frame.Push(IntVal(-1))
	case opIconst0:
		frame.Push(IntVal(0))
	case opIconst1:
		frame.Push(IntVal(1))
	case opIconst2:
		frame.Push(IntVal(2))
	case opIconst3:
		frame.Push(IntVal(3))
	case opIconst4:
		frame.Push(IntVal(4))
	case opIconst5:
		frame.Push(IntVal(5))
	case opLconst0:
		frame.Push(LongVal(0))
	case opLconst1:
		frame.Push(LongVal(1))
	case opFconst0:
		frame.Push(FloatVal(0))
	case opFconst1:
		frame.Push(FloatVal(1))
	case opFconst2:
		frame.Push(FloatVal(2))
	case opDconst0:
		frame.Push(DoubleVal(0))
	case opDconst1:
		frame.Push(DoubleVal(1))
	case opBipush:
		frame.Push(IntVal(int32(frame.ReadI8())))
	case opSipush:
		frame.Push(IntVal(int32(frame.ReadI16())))
	case opLdc:
		return vm.execLdc(frame, uint16(frame.ReadU8()))
	case opLdcW:
		return vm.execLdc(frame, frame.ReadU16())
	case opLdc2W:
		return vm.execLdc2(frame, frame.ReadU16())

	// --- Loads ---
	case opIload, opFload, opAload:
		frame.Push(frame.LocalLoad(int(frame.ReadU8())))
	case opLload, opDload:
		frame.Push(frame.LocalLoad(int(frame.ReadU8())))
	case opIload0, opFload0, opAload0:
		frame.Push(frame.LocalLoad(0))
	case opIload1, opFload1, opAload1:
		frame.Push(frame.LocalLoad(1))
	case opIload2, opFload2, opAload2:
		frame.Push(frame.LocalLoad(2))
	case opIload3, opFload3, opAload3:
		frame.Push(frame.LocalLoad(3))
	case opLload0, opDload0:
		frame.Push(frame.LocalLoad(0))
	case opLload1, opDload1:
		frame.Push(frame.LocalLoad(1))
	case opLload2, opDload2:
		frame.Push(frame.LocalLoad(2))
	case opLload3, opDload3:
		frame.Push(frame.LocalLoad(3))

	// --- Array loads ---
	case 0x2e, 0x2f, 0x30, 0x31, 0x32, 0x33, 0x34, 0x35: // iaload laload faload daload aaload baload caload saload
		return vm.execArrayLoad(frame)

	// --- Stores ---
	case opIstore, opFstore, opAstore:
		frame.LocalStore(int(frame.ReadU8()), frame.Pop())
	case opLstore, opDstore:
		frame.LocalStore(int(frame.ReadU8()), frame.Pop())
	case opIstore0, opFstore0, opAstore0:
		frame.LocalStore(0, frame.Pop())
	case opIstore1, opFstore1, opAstore1:
		frame.LocalStore(1, frame.Pop())
	case opIstore2, opFstore2, opAstore2:
		frame.LocalStore(2, frame.Pop())
	case opIstore3, opFstore3, opAstore3:
		frame.LocalStore(3, frame.Pop())
	case opLstore0, opDstore0:
		frame.LocalStore(0, frame.Pop())
	case opLstore1, opDstore1:
		frame.LocalStore(1, frame.Pop())
	case opLstore2, opDstore2:
		frame.LocalStore(2, frame.Pop())
	case opLstore3, opDstore3:
		frame.LocalStore(3, frame.Pop())

	// --- Array stores ---
	case 0x4f, 0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x56: // iastore..sastore
		return vm.execArrayStore(frame)

	// --- Stack manipulation ---
	case opPop:
		frame.Pop()
	case opPop2:
		if frame.Peek(0).Category() == 2 {
			frame.Pop()
		} else {
			frame.Pop()
			frame.Pop()
		}
	case opDup:
		frame.Push(frame.Peek(0))
	case opDupX1:
		v1 := frame.Pop()
		v2 := frame.Pop()
		frame.Push(v1)
		frame.Push(v2)
		frame.Push(v1)
	case opDupX2:
		v1 := frame.Pop()
		if frame.Peek(0).Category() == 2 {
			v2 := frame.Pop()
			frame.Push(v1)
			frame.Push(v2)
			frame.Push(v1)
		} else {
			v2 := frame.Pop()
			v3 := frame.Pop()
			frame.Push(v1)
			frame.Push(v3)
			frame.Push(v2)
			frame.Push(v1)
		}
	case opDup2:
		if frame.Peek(0).Category() == 2 {
			v1 := frame.Pop()
			frame.Push(v1)
			frame.Push(v1)
		} else {
			v1 := frame.Pop()
			v2 := frame.Pop()
			frame.Push(v2)
			frame.Push(v1)
			frame.Push(v2)
			frame.Push(v1)
		}
	case opDup2X1:
		if frame.Peek(0).Category() == 2 {
			v1 := frame.Pop()
			v2 := frame.Pop()
			frame.Push(v1)
			frame.Push(v2)
			frame.Push(v1)
		} else {
			v1 := frame.Pop()
			v2 := frame.Pop()
			v3 := frame.Pop()
			frame.Push(v2)
			frame.Push(v1)
			frame.Push(v3)
			frame.Push(v2)
			frame.Push(v1)
		}
	case opDup2X2:
		if frame.Peek(0).Category() == 2 {
			v1 := frame.Pop()
			if frame.Peek(0).Category() == 2 {
				v2 := frame.Pop()
				frame.Push(v1)
				frame.Push(v2)
				frame.Push(v1)
			} else {
				v2 := frame.Pop()
				v3 := frame.Pop()
				frame.Push(v1)
				frame.Push(v3)
				frame.Push(v2)
				frame.Push(v1)
			}
		} else {
			v1 := frame.Pop()
			v2 := frame.Pop()
			if frame.Peek(0).Category() == 2 {
				v3 := frame.Pop()
				frame.Push(v2)
				frame.Push(v1)
				frame.Push(v3)
				frame.Push(v2)
				frame.Push(v1)
			} else {
				v3 := frame.Pop()
				v4 := frame.Pop()
				frame.Push(v2)
				frame.Push(v1)
				frame.Push(v4)
				frame.Push(v3)
				frame.Push(v2)
				frame.Push(v1)
			}
		}
	case opSwap:
		v1 := frame.Pop()
		v2 := frame.Pop()
		frame.Push(v1)
		frame.Push(v2)

	// --- Arithmetic ---
	case opIadd:
		v2, v1 := frame.Pop(), frame.Pop()
		frame.Push(IntVal(v1.Int + v2.Int))
	case opLadd:
		v2, v1 := frame.Pop(), frame.Pop()
		frame.Push(LongVal(v1.Long + v2.Long))
	case opFadd:
		v2, v1 := frame.Pop(), frame.Pop()
		frame.Push(FloatVal(v1.Float + v2.Float))
	case opDadd:
		v2, v1 := frame.Pop(), frame.Pop()
		frame.Push(DoubleVal(v1.Double + v2.Double))
	case opIsub:
		v2, v1 := frame.Pop(), frame.Pop()
		frame.Push(IntVal(v1.Int - v2.Int))
	case opLsub:
		v2, v1 := frame.Pop(), frame.Pop()
		frame.Push(LongVal(v1.Long - v2.Long))
	case opFsub:
		v2, v1 := frame.Pop(), frame.Pop()
		frame.Push(FloatVal(v1.Float - v2.Float))
	case opDsub:
		v2, v1 := frame.Pop(), frame.Pop()
		frame.Push(DoubleVal(v1.Double - v2.Double))
	case opImul:
		v2, v1 := frame.Pop(), frame.Pop()
		frame.Push(IntVal(v1.Int * v2.Int))
	case opLmul:
		v2, v1 := frame.Pop(), frame.Pop()
		frame.Push(LongVal(v1.Long * v2.Long))
	case opFmul:
		v2, v1 := frame.Pop(), frame.Pop()
		frame.Push(FloatVal(v1.Float * v2.Float))
	case opDmul:
		v2, v1 := frame.Pop(), frame.Pop()
		frame.Push(DoubleVal(v1.Double * v2.Double))
	case opIdiv:
		v2, v1 := frame.Pop(), frame.Pop()
		if v2.Int == 0 {
			return Value{}, false, ErrDivisionByZero
		}
		frame.Push(IntVal(v1.Int / v2.Int))
	case opLdiv:
		v2, v1 := frame.Pop(), frame.Pop()
		if v2.Long == 0 {
			return Value{}, false, ErrDivisionByZero
		}
		frame.Push(LongVal(v1.Long / v2.Long))
	case opFdiv:
		v2, v1 := frame.Pop(), frame.Pop()
		frame.Push(FloatVal(v1.Float / v2.Float))
	case opDdiv:
		v2, v1 := frame.Pop(), frame.Pop()
		frame.Push(DoubleVal(v1.Double / v2.Double))
	case opIrem:
		v2, v1 := frame.Pop(), frame.Pop()
		if v2.Int == 0 {
			return Value{}, false, ErrDivisionByZero
		}
		frame.Push(IntVal(v1.Int % v2.Int))
	case opLrem:
		v2, v1 := frame.Pop(), frame.Pop()
		if v2.Long == 0 {
			return Value{}, false, ErrDivisionByZero
		}
		frame.Push(LongVal(v1.Long % v2.Long))
	case opFrem:
		v2, v1 := frame.Pop(), frame.Pop()
		frame.Push(FloatVal(float32(math.Mod(float64(v1.Float), float64(v2.Float)))))
	case opDrem:
		v2, v1 := frame.Pop(), frame.Pop()
		frame.Push(DoubleVal(math.Mod(v1.Double, v2.Double)))
	case opIneg:
		frame.Push(IntVal(-frame.Pop().Int))
	case opLneg:
		frame.Push(LongVal(-frame.Pop().Long))
	case opFneg:
		frame.Push(FloatVal(-frame.Pop().Float))
	case opDneg:
		frame.Push(DoubleVal(-frame.Pop().Double))

	case opIinc:
		index := int(frame.ReadU8())
		delta := int32(frame.ReadI8())
		v := frame.LocalLoad(index)
		frame.LocalStore(index, IntVal(v.Int+delta))

	// --- Conversions ---
	case opI2l:
		frame.Push(LongVal(int64(frame.Pop().Int)))
	case opI2f:
		frame.Push(FloatVal(float32(frame.Pop().Int)))
	case opI2d:
		frame.Push(DoubleVal(float64(frame.Pop().Int)))
	case opL2i:
		frame.Push(IntVal(int32(frame.Pop().Long)))
	case opL2f:
		frame.Push(FloatVal(float32(frame.Pop().Long)))
	case opL2d:
		frame.Push(DoubleVal(float64(frame.Pop().Long)))
	case opF2i:
		frame.Push(IntVal(int32(frame.Pop().Float)))
	case opF2l:
		frame.Push(LongVal(int64(frame.Pop().Float)))
	case opF2d:
		frame.Push(DoubleVal(float64(frame.Pop().Float)))
	case opD2i:
		frame.Push(IntVal(int32(frame.Pop().Double)))
	case opD2l:
		frame.Push(LongVal(int64(frame.Pop().Double)))
	case opD2f:
		frame.Push(FloatVal(float32(frame.Pop().Double)))
	case opI2b:
		frame.Push(IntVal(int32(int8(frame.Pop().Int))))
	case opI2c:
		frame.Push(IntVal(int32(uint16(frame.Pop().Int))))
	case opI2s:
		frame.Push(IntVal(int32(int16(frame.Pop().Int))))

	// --- Branches ---
	case opIfeq:
		return Value{}, false, vm.branchUnary(frame, func(v int32) bool { return v == 0 })
	case opIfne:
		return Value{}, false, vm.branchUnary(frame, func(v int32) bool { return v != 0 })
	case opIflt:
		return Value{}, false, vm.branchUnary(frame, func(v int32) bool { return v < 0 })
	case opIfge:
		return Value{}, false, vm.branchUnary(frame, func(v int32) bool { return v >= 0 })
	case opIfgt:
		return Value{}, false, vm.branchUnary(frame, func(v int32) bool { return v > 0 })
	case opIfle:
		return Value{}, false, vm.branchUnary(frame, func(v int32) bool { return v <= 0 })
	case opIfIcmpeq:
		return Value{}, false, vm.branchBinary(frame, func(a, b int32) bool { return a == b })
	case opIfIcmpne:
		return Value{}, false, vm.branchBinary(frame, func(a, b int32) bool { return a != b })
	case opIfIcmplt:
		return Value{}, false, vm.branchBinary(frame, func(a, b int32) bool { return a < b })
	case opIfIcmpge:
		return Value{}, false, vm.branchBinary(frame, func(a, b int32) bool { return a >= b })
	case opIfIcmpgt:
		return Value{}, false, vm.branchBinary(frame, func(a, b int32) bool { return a > b })
	case opIfIcmple:
		return Value{}, false, vm.branchBinary(frame, func(a, b int32) bool { return a <= b })
	case opIfnull:
		branchPC := frame.PC - 1
		offset := frame.ReadI16()
		if frame.Pop().Ref == nil {
			frame.PC = branchPC + int(offset)
		}
	case opIfnonnull:
		branchPC := frame.PC - 1
		offset := frame.ReadI16()
		if frame.Pop().Ref != nil {
			frame.PC = branchPC + int(offset)
		}
	case opGoto:
		branchPC := frame.PC - 1
		offset := frame.ReadI16()
		frame.PC = branchPC + int(offset)
	case opGotoW:
		branchPC := frame.PC - 1
		offset := frame.ReadI32()
		frame.PC = branchPC + int(offset)

	case opTableswitch:
		vm.execTableswitch(frame)
	case opLookupswitch:
		vm.execLookupswitch(frame)

	// --- Returns ---
	case opIreturn, opFreturn, opAreturn:
		return frame.Pop(), true, nil
	case opLreturn, opDreturn:
		return frame.Pop(), true, nil
	case opReturn:
		return Value{}, true, nil

	// --- Fields ---
	case opGetstatic:
		return vm.execGetstatic(frame)
	case opPutstatic:
		return vm.execPutstatic(frame)
	case opGetfield:
		return vm.execGetfield(frame)
	case opPutfield:
		return vm.execPutfield(frame)

	// --- Invocation ---
	case opInvokevirtual:
		return Value{}, false, vm.callMethod(frame, frame.ReadU16(), false, true)
	case opInvokespecial:
		return Value{}, false, vm.callMethod(frame, frame.ReadU16(), false, true)
	case opInvokestatic:
		return Value{}, false, vm.callMethod(frame, frame.ReadU16(), false, false)
	case opInvokeinterface:
		idx := frame.ReadU16()
		frame.ReadU8() // count, redundant with the descriptor's own arity
		frame.ReadU8() // reserved, always 0
		return Value{}, false, vm.callMethod(frame, idx, true, true)
	case opInvokedynamic:
		frame.ReadU16()
		frame.ReadU8()
		frame.ReadU8()
		return Value{}, false, fmt.Errorf("invokedynamic: bootstrap execution not supported")

	// --- Allocation ---
	case opNew:
		return vm.execNew(frame)
	case opNewarray:
		atype := frame.ReadU8()
		count := frame.Pop().Int
		arr, err := newPrimitiveArray(atype, count)
		if err != nil {
			return Value{}, false, err
		}
		frame.Push(RefVal(arr))
	case opAnewarray:
		frame.ReadU16() // component type class index; element slots start null regardless of type
		count := frame.Pop().Int
		arr, err := newRefArray(count)
		if err != nil {
			return Value{}, false, err
		}
		frame.Push(RefVal(arr))
	case opMultianewarray:
		return vm.execMultianewarray(frame)
	case opArraylength:
		arr, err := asArray(frame.Pop())
		if err != nil {
			return Value{}, false, err
		}
		frame.Push(IntVal(int32(len(arr.data))))

	// --- No-ops (Non-goals: no exception objects, no real monitors, no verifier-backed casts) ---
	case opCheckcast:
		frame.ReadU16()
	case opInstanceof:
		frame.ReadU16()
		// replaced on the stack: objectref -> int; conservative "not null" check
		v := frame.Pop()
		if v.Ref != nil {
			frame.Push(IntVal(1))
		} else {
			frame.Push(IntVal(0))
		}
	case opMonitorenter, opMonitorexit:
		frame.Pop()

	case opWide:
		return Value{}, false, vm.execWide(frame)

	default:
		return Value{}, false, fmt.Errorf("unimplemented opcode 0x%02x", op)
	}

	return Value{}, false, nil
}

func (vm *VM) branchUnary(frame *Frame, cond func(int32) bool) error {
	branchPC := frame.PC - 1
	offset := frame.ReadI16()
	v := frame.Pop()
	if cond(v.Int) {
		frame.PC = branchPC + int(offset)
	}
	return nil
}

func (vm *VM) branchBinary(frame *Frame, cond func(a, b int32) bool) error {
	branchPC := frame.PC - 1
	offset := frame.ReadI16()
	v2 := frame.Pop()
	v1 := frame.Pop()
	if cond(v1.Int, v2.Int) {
		frame.PC = branchPC + int(offset)
	}
	return nil
}

// execLdc resolves a single-width constant (Integer/Float/String; Class,
// MethodHandle, and MethodType entries materialize as the "untyped zero"
// spec.md §4.8 allows since invokedynamic bootstrap and reflection are
// Non-goals) and pushes it.
func (vm *VM) execLdc(frame *Frame, index uint16) (Value, bool, error) {
	c, err := loader.ResolveConstant(frame.Class, index)
	if err != nil {
		return Value{}, false, err
	}
	switch c.Kind {
	case classfile.TagInteger:
		frame.Push(IntVal(c.Int))
	case classfile.TagFloat:
		frame.Push(FloatVal(c.Float))
	case classfile.TagString:
		frame.Push(RefVal(c.Str))
	default:
		frame.Push(NullVal())
	}
	return Value{}, false, nil
}

// execLdc2 resolves a category-2 constant (Long/Double) for ldc2_w.
func (vm *VM) execLdc2(frame *Frame, index uint16) (Value, bool, error) {
	c, err := loader.ResolveConstant(frame.Class, index)
	if err != nil {
		return Value{}, false, err
	}
	switch c.Kind {
	case classfile.TagLong:
		frame.Push(LongVal(c.Long))
	case classfile.TagDouble:
		frame.Push(DoubleVal(c.Double))
	default:
		frame.Push(LongVal(0))
	}
	return Value{}, false, nil
}

func (vm *VM) execTableswitch(frame *Frame) {
	code := frame.Code.Code
	branchPC := frame.PC - 1
	pc := pad4(frame.PC)
	def := be32(code[pc:])
	low := int32(be32(code[pc+4:]))
	high := int32(be32(code[pc+8:]))
	pc += 12
	index := frame.Pop().Int
	if index < low || index > high {
		frame.PC = branchPC + int(int32(def))
		return
	}
	offset := be32(code[pc+int(index-low)*4:])
	frame.PC = branchPC + int(int32(offset))
}

func (vm *VM) execLookupswitch(frame *Frame) {
	code := frame.Code.Code
	branchPC := frame.PC - 1
	pc := pad4(frame.PC)
	def := int32(be32(code[pc:]))
	npairs := int32(be32(code[pc+4:]))
	pc += 8
	key := frame.Pop().Int
	for i := int32(0); i < npairs; i++ {
		pairKey := int32(be32(code[pc+int(i)*8:]))
		if pairKey == key {
			offset := int32(be32(code[pc+int(i)*8+4:]))
			frame.PC = branchPC + int(offset)
			return
		}
	}
	frame.PC = branchPC + int(def)
}

func pad4(pc int) int {
	for pc%4 != 0 {
		pc++
	}
	return pc
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func (vm *VM) execGetstatic(frame *Frame) (Value, bool, error) {
	res, err := vm.Resolver.ResolveField(frame.Class, frame.ReadU16())
	if err != nil {
		return Value{}, false, err
	}
	if res.Native {
		v, err := vm.readNativeField(res.ClassName, res.Name, res.Descriptor)
		if err != nil {
			return Value{}, false, err
		}
		frame.Push(v)
		return Value{}, false, nil
	}
	if err := vm.ensureInit(res.Declaring); err != nil {
		return Value{}, false, err
	}
	frame.Push(vm.getField(res.Declaring.Name, res.Name, res.Descriptor))
	return Value{}, false, nil
}

func (vm *VM) execPutstatic(frame *Frame) (Value, bool, error) {
	res, err := vm.Resolver.ResolveField(frame.Class, frame.ReadU16())
	if err != nil {
		return Value{}, false, err
	}
	v := frame.Pop()
	if res.Native {
		return Value{}, false, fmt.Errorf("%s.%s: %w", res.ClassName, res.Name, native.ErrUnresolvedNative)
	}
	if err := vm.ensureInit(res.Declaring); err != nil {
		return Value{}, false, err
	}
	vm.putField(res.Declaring.Name, res.Name, res.Descriptor, v)
	return Value{}, false, nil
}

func (vm *VM) execGetfield(frame *Frame) (Value, bool, error) {
	res, err := vm.Resolver.ResolveField(frame.Class, frame.ReadU16())
	if err != nil {
		return Value{}, false, err
	}
	objref := frame.Pop()
	if res.Native {
		v, err := vm.readNativeField(res.ClassName, res.Name, res.Descriptor)
		if err != nil {
			return Value{}, false, err
		}
		frame.Push(v)
		return Value{}, false, nil
	}
	obj, ok := objref.Ref.(*object)
	if !ok {
		return Value{}, false, fmt.Errorf("getfield %s.%s: receiver is not an object", res.ClassName, res.Name)
	}
	frame.Push(obj.get(res.Name, res.Descriptor))
	return Value{}, false, nil
}

func (vm *VM) execPutfield(frame *Frame) (Value, bool, error) {
	res, err := vm.Resolver.ResolveField(frame.Class, frame.ReadU16())
	if err != nil {
		return Value{}, false, err
	}
	v := frame.Pop()
	objref := frame.Pop()
	obj, ok := objref.Ref.(*object)
	if !ok {
		return Value{}, false, fmt.Errorf("putfield %s.%s: receiver is not an object", res.ClassName, res.Name)
	}
	obj.set(res.Name, res.Descriptor, v)
	return Value{}, false, nil
}

// callMethod resolves a method reference, pops its arguments (and receiver,
// if hasReceiver) off callerFrame, invokes it — natively or by pushing a
// fresh frame and continuing dispatch there, per spec.md §9's completion of
// resolveMethod's "implementers should" guidance — and pushes a non-void
// result.
func (vm *VM) callMethod(callerFrame *Frame, idx uint16, isInterface, hasReceiver bool) error {
	res, err := vm.Resolver.ResolveMethod(callerFrame.Class, idx, isInterface)
	if err != nil {
		return err
	}
	params, retType := paramKinds(res.Descriptor)
	nargs := len(params)
	if hasReceiver {
		nargs++
	}
	args := make([]Value, nargs)
	for i := nargs - 1; i >= 0; i-- {
		args[i] = callerFrame.Pop()
	}

	var result Value
	if res.Native {
		result, err = vm.invokeNative(res.ClassName, res.Name, res.Descriptor, args)
	} else {
		if err := vm.ensureInit(res.Declaring); err != nil {
			return err
		}
		if res.Method.IsNative() {
			return fmt.Errorf("%s.%s%s: %w", res.ClassName, res.Name, res.Descriptor, native.ErrUnresolvedNative)
		}
		locals := layoutLocals(params, hasReceiver, args)
		result, err = vm.invokeMethod(res.Declaring, res.Method, locals)
	}
	if err != nil {
		return err
	}
	if retType != 'V' {
		callerFrame.Push(result)
	}
	return nil
}

// layoutLocals places a receiver (if any) and parameters into a callee's
// leading local slots, honoring category-2 doubling (spec.md §4.9).
func layoutLocals(params []byte, hasReceiver bool, args []Value) []Value {
	total := localSlots(params)
	if hasReceiver {
		total++
	}
	locals := make([]Value, total)
	slot, argi := 0, 0
	if hasReceiver {
		locals[0] = args[0]
		slot, argi = 1, 1
	}
	for _, p := range params {
		locals[slot] = args[argi]
		slot += localCategory(p)
		argi++
	}
	return locals
}

func (vm *VM) execNew(frame *Frame) (Value, bool, error) {
	index := frame.ReadU16()
	className, err := classfile.GetClassName(frame.Class.File.ConstantPool, index)
	if err != nil {
		return Value{}, false, err
	}
	cls, err := vm.Loader.Load(className)
	if err != nil {
		return Value{}, false, err
	}
	if err := vm.ensureInit(cls); err != nil {
		return Value{}, false, err
	}
	frame.Push(RefVal(newObject(cls)))
	return Value{}, false, nil
}

func (vm *VM) execMultianewarray(frame *Frame) (Value, bool, error) {
	frame.ReadU16() // component type class index
	dims := int(frame.ReadU8())
	counts := make([]int32, dims)
	for i := dims - 1; i >= 0; i-- {
		counts[i] = frame.Pop().Int
	}
	arr, err := buildMultiarray(counts)
	if err != nil {
		return Value{}, false, err
	}
	frame.Push(RefVal(arr))
	return Value{}, false, nil
}

func buildMultiarray(counts []int32) (*jarray, error) {
	if len(counts) == 1 {
		return newRefArray(counts[0])
	}
	arr, err := newRefArray(counts[0])
	if err != nil {
		return nil, err
	}
	for i := range arr.data {
		inner, err := buildMultiarray(counts[1:])
		if err != nil {
			return nil, err
		}
		arr.data[i] = RefVal(inner)
	}
	return arr, nil
}

func (vm *VM) execArrayLoad(frame *Frame) (Value, bool, error) {
	index := frame.Pop().Int
	arr, err := asArray(frame.Pop())
	if err != nil {
		return Value{}, false, err
	}
	if err := checkBounds(arr, index); err != nil {
		return Value{}, false, err
	}
	frame.Push(arr.data[index])
	return Value{}, false, nil
}

func (vm *VM) execArrayStore(frame *Frame) (Value, bool, error) {
	v := frame.Pop()
	index := frame.Pop().Int
	arr, err := asArray(frame.Pop())
	if err != nil {
		return Value{}, false, err
	}
	if err := checkBounds(arr, index); err != nil {
		return Value{}, false, err
	}
	arr.data[index] = v
	return Value{}, false, nil
}

// execWide re-dispatches the opcode immediately following a wide prefix
// with 2-byte (rather than 1-byte) operands, per spec.md §4.5/§4.10.
// pkg/classfile.CheckCodeShape has already validated the follower is legal.
func (vm *VM) execWide(frame *Frame) error {
	follower := frame.ReadU8()
	index := int(frame.ReadU16())
	switch follower {
	case opIload, opFload, opAload, opLload, opDload:
		frame.Push(frame.LocalLoad(index))
	case opIstore, opFstore, opAstore, opLstore, opDstore:
		frame.LocalStore(index, frame.Pop())
	case 0xa9: // ret — jsr/ret are part of the finally-block mechanism this
		// toolkit's Non-goals (no exception unwinding) put out of scope.
		return fmt.Errorf("ret: jsr/ret subroutines not supported")
	case opIinc:
		delta := int32(frame.ReadI16())
		v := frame.LocalLoad(index)
		frame.LocalStore(index, IntVal(v.Int+delta))
	default:
		return fmt.Errorf("wide: unexpected follower opcode 0x%02x", follower)
	}
	return nil
}
