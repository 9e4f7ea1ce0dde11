package disasm

import (
	"fmt"

	"github.com/classvm/classvm/pkg/classfile"
)

// instruction is one decoded opcode, ready to print: its byte offset,
// mnemonic, and an already-formatted operand string (empty if the opcode
// takes none).
type instruction struct {
	pc       int
	mnemonic string
	operands string
}

// decodeInstructions walks code exactly the way
// pkg/classfile.CheckCodeShape does — same padding and header rules — but
// renders each step into a printable instruction instead of discarding it.
// code is assumed to have already passed CheckCodeShape (every loaded
// method's Code attribute has), so no bounds error is expected here.
func decodeInstructions(code []byte, pool classfile.Pool) []instruction {
	var out []instruction
	pc := 0
	for pc < len(code) {
		start := pc
		op := code[pc]
		pc++

		info, ok := opTable[op]
		if !ok {
			out = append(out, instruction{pc: start, mnemonic: fmt.Sprintf("unknown_0x%02x", op)})
			continue
		}

		var operands string
		switch info.kind {
		case kindNone:
			// no operand bytes
		case kindLocal1:
			operands = fmt.Sprintf("%d", code[pc])
			pc++
		case kindImm1:
			operands = fmt.Sprintf("%d", int8(code[pc]))
			pc++
		case kindImm2:
			operands = fmt.Sprintf("%d", be16signed(code[pc:]))
			pc += 2
		case kindPool1:
			idx := uint16(code[pc])
			pc++
			operands = fmt.Sprintf("#%d%s", idx, poolComment(pool, idx))
		case kindPool2:
			idx := be16(code[pc:])
			pc += 2
			operands = fmt.Sprintf("#%d%s", idx, poolComment(pool, idx))
		case kindBranch2:
			off := be16signed(code[pc:])
			pc += 2
			operands = fmt.Sprintf("%d", start+int(off))
		case kindBranch4:
			off := int32(be32(code[pc:]))
			pc += 4
			operands = fmt.Sprintf("%d", start+int(off))
		case kindIinc:
			idx := code[pc]
			inc := int8(code[pc+1])
			pc += 2
			operands = fmt.Sprintf("%d, %d", idx, inc)
		case kindNewarray:
			atype := code[pc]
			pc++
			operands = newarrayTypes[atype]
		case kindInvokeinterface:
			idx := be16(code[pc:])
			count := code[pc+2]
			pc += 4
			operands = fmt.Sprintf("#%d%s, %d", idx, poolComment(pool, idx), count)
		case kindInvokedynamic:
			idx := be16(code[pc:])
			pc += 4
			operands = fmt.Sprintf("#%d%s", idx, poolComment(pool, idx))
		case kindMultianewarray:
			idx := be16(code[pc:])
			dims := code[pc+2]
			pc += 3
			operands = fmt.Sprintf("#%d%s, %d", idx, poolComment(pool, idx), dims)
		case kindTableswitch:
			pc, operands = decodeTableswitch(code, start, pc)
		case kindLookupswitch:
			pc, operands = decodeLookupswitch(code, start, pc)
		case kindWide:
			pc, operands = decodeWide(code, pc)
		}

		out = append(out, instruction{pc: start, mnemonic: info.mnemonic, operands: operands})
	}
	return out
}

func decodeTableswitch(code []byte, opAt, pc int) (int, string) {
	pc = pad4(pc)
	def := int32(be32(code[pc:]))
	low := int32(be32(code[pc+4:]))
	high := int32(be32(code[pc+8:]))
	pc += 12
	s := fmt.Sprintf("default: %d, low: %d, high: %d", opAt+int(def), low, high)
	for key := low; key <= high; key++ {
		off := int32(be32(code[pc:]))
		pc += 4
		s += fmt.Sprintf(", %d: %d", key, opAt+int(off))
	}
	return pc, s
}

func decodeLookupswitch(code []byte, opAt, pc int) (int, string) {
	pc = pad4(pc)
	def := int32(be32(code[pc:]))
	npairs := int32(be32(code[pc+4:]))
	pc += 8
	s := fmt.Sprintf("default: %d", opAt+int(def))
	for i := int32(0); i < npairs; i++ {
		match := int32(be32(code[pc:]))
		off := int32(be32(code[pc+4:]))
		pc += 8
		s += fmt.Sprintf(", %d: %d", match, opAt+int(off))
	}
	return pc, s
}

func decodeWide(code []byte, pc int) (int, string) {
	follower := code[pc]
	pc++
	idx := be16(code[pc:])
	pc += 2
	name := opTable[follower].mnemonic
	if follower == 0x84 { // iinc
		inc := be16signed(code[pc:])
		pc += 2
		return pc, fmt.Sprintf("%s %d, %d", name, idx, inc)
	}
	return pc, fmt.Sprintf("%s %d", name, idx)
}

func pad4(pc int) int {
	for pc%4 != 0 {
		pc++
	}
	return pc
}

func be16(b []byte) uint16  { return uint16(b[0])<<8 | uint16(b[1]) }
func be32(b []byte) uint32  { return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]) }
func be16signed(b []byte) int16 { return int16(be16(b)) }

// poolComment renders a javap-style trailing comment describing what a
// constant-pool index names, e.g. " // Field java/lang/System.out:Ljava/io/PrintStream;".
// Grounded on class.h's CONSTANT_*_info field layout for the original
// implementation this spec was distilled from (SPEC_FULL.md §4); an
// out-of-range or malformed index degrades to no comment rather than an
// error, since this is a best-effort disassembly aid, not the decoder.
func poolComment(pool classfile.Pool, idx uint16) string {
	desc, ok := describeConstant(pool, idx)
	if !ok {
		return ""
	}
	return " // " + desc
}

func describeConstant(pool classfile.Pool, idx uint16) (string, bool) {
	if idx == 0 || int(idx) >= len(pool) {
		return "", false
	}
	switch e := pool[idx].(type) {
	case classfile.Utf8Info:
		return "Utf8 " + e.Value, true
	case classfile.IntegerInfo:
		return fmt.Sprintf("int %d", e.Value), true
	case classfile.FloatInfo:
		return fmt.Sprintf("float %g", e.Value), true
	case classfile.LongInfo:
		return fmt.Sprintf("long %d", e.Value), true
	case classfile.DoubleInfo:
		return fmt.Sprintf("double %g", e.Value), true
	case classfile.ClassInfo:
		name, err := classfile.GetClassName(pool, idx)
		if err != nil {
			return "", false
		}
		return "Class " + name, true
	case classfile.StringInfo:
		s, err := classfile.GetUtf8(pool, e.StringIndex)
		if err != nil {
			return "", false
		}
		return "String " + s, true
	case classfile.FieldrefInfo:
		return describeMemberRef(pool, "Field", e.ClassIndex, e.NameAndTypeIndex)
	case classfile.MethodrefInfo:
		return describeMemberRef(pool, "Method", e.ClassIndex, e.NameAndTypeIndex)
	case classfile.InterfaceMethodrefInfo:
		return describeMemberRef(pool, "InterfaceMethod", e.ClassIndex, e.NameAndTypeIndex)
	case classfile.NameAndTypeInfo:
		name, err1 := classfile.GetUtf8(pool, e.NameIndex)
		desc, err2 := classfile.GetUtf8(pool, e.DescriptorIndex)
		if err1 != nil || err2 != nil {
			return "", false
		}
		return "NameAndType " + name + ":" + desc, true
	case classfile.MethodHandleInfo:
		return fmt.Sprintf("MethodHandle kind %d #%d", e.ReferenceKind, e.ReferenceIndex), true
	case classfile.MethodTypeInfo:
		desc, err := classfile.GetUtf8(pool, e.DescriptorIndex)
		if err != nil {
			return "", false
		}
		return "MethodType " + desc, true
	case classfile.InvokeDynamicInfo:
		return fmt.Sprintf("InvokeDynamic bootstrap #%d", e.BootstrapMethodAttrIndex), true
	default:
		return "", false
	}
}

func describeMemberRef(pool classfile.Pool, kind string, classIdx, natIdx uint16) (string, bool) {
	className, err := classfile.GetClassName(pool, classIdx)
	if err != nil {
		return "", false
	}
	if int(natIdx) == 0 || int(natIdx) >= len(pool) {
		return "", false
	}
	nat, ok := pool[natIdx].(classfile.NameAndTypeInfo)
	if !ok {
		return "", false
	}
	name, err1 := classfile.GetUtf8(pool, nat.NameIndex)
	descriptor, err2 := classfile.GetUtf8(pool, nat.DescriptorIndex)
	if err1 != nil || err2 != nil {
		return "", false
	}
	return fmt.Sprintf("%s %s.%s:%s", kind, className, name, descriptor), true
}
