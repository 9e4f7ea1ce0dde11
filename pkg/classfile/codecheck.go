package classfile

import "fmt"

// fixedOperandBytes gives the number of immediate operand bytes that follow
// each opcode with a statically-known shape. Opcodes absent from this map
// are either illegal or have a variable-length shape handled specially by
// CheckCodeShape (wide, tableswitch, lookupswitch).
var fixedOperandBytes = map[byte]int{
	0x00: 0, // nop
	0x01: 0, // aconst_null
	0x02: 0, 0x03: 0, 0x04: 0, 0x05: 0, 0x06: 0, 0x07: 0, 0x08: 0, // iconst_*
	0x09: 0, 0x0a: 0, // lconst_*
	0x0b: 0, 0x0c: 0, 0x0d: 0, // fconst_*
	0x0e: 0, 0x0f: 0, // dconst_*
	0x10: 1, // bipush
	0x11: 2, // sipush
	0x12: 1, // ldc
	0x13: 2, // ldc_w
	0x14: 2, // ldc2_w
	0x15: 1, 0x16: 1, 0x17: 1, 0x18: 1, 0x19: 1, // *load
	0x1a: 0, 0x1b: 0, 0x1c: 0, 0x1d: 0, // iload_*
	0x1e: 0, 0x1f: 0, 0x20: 0, 0x21: 0, // lload_*
	0x22: 0, 0x23: 0, 0x24: 0, 0x25: 0, // fload_*
	0x26: 0, 0x27: 0, 0x28: 0, 0x29: 0, // dload_*
	0x2a: 0, 0x2b: 0, 0x2c: 0, 0x2d: 0, // aload_*
	0x2e: 0, 0x2f: 0, 0x30: 0, 0x31: 0, 0x32: 0, 0x33: 0, 0x34: 0, 0x35: 0, // *aload
	0x36: 1, 0x37: 1, 0x38: 1, 0x39: 1, 0x3a: 1, // *store
	0x3b: 0, 0x3c: 0, 0x3d: 0, 0x3e: 0, // istore_*
	0x3f: 0, 0x40: 0, 0x41: 0, 0x42: 0, // lstore_*
	0x43: 0, 0x44: 0, 0x45: 0, 0x46: 0, // fstore_*
	0x47: 0, 0x48: 0, 0x49: 0, 0x4a: 0, // dstore_*
	0x4b: 0, 0x4c: 0, 0x4d: 0, 0x4e: 0, // astore_*
	0x4f: 0, 0x50: 0, 0x51: 0, 0x52: 0, 0x53: 0, 0x54: 0, 0x55: 0, 0x56: 0, // *astore
	0x57: 0, 0x58: 0, // pop, pop2
	0x59: 0, 0x5a: 0, 0x5b: 0, 0x5c: 0, 0x5d: 0, 0x5e: 0, // dup*
	0x5f: 0, // swap
	0x60: 0, 0x61: 0, 0x62: 0, 0x63: 0, // *add
	0x64: 0, 0x65: 0, 0x66: 0, 0x67: 0, // *sub
	0x68: 0, 0x69: 0, 0x6a: 0, 0x6b: 0, // *mul
	0x6c: 0, 0x6d: 0, 0x6e: 0, 0x6f: 0, // *div
	0x70: 0, 0x71: 0, 0x72: 0, 0x73: 0, // *rem
	0x74: 0, 0x75: 0, 0x76: 0, 0x77: 0, // *neg
	0x78: 0, 0x79: 0, 0x7a: 0, 0x7b: 0, 0x7c: 0, 0x7d: 0, // shifts
	0x7e: 0, 0x7f: 0, 0x80: 0, 0x81: 0, 0x82: 0, 0x83: 0, // bitwise
	0x84: 2, // iinc
	0x85: 0, 0x86: 0, 0x87: 0, 0x88: 0, 0x89: 0, 0x8a: 0, // i2l..l2d
	0x8b: 0, 0x8c: 0, 0x8d: 0, 0x8e: 0, 0x8f: 0, 0x90: 0, // f2i..d2f
	0x91: 0, 0x92: 0, 0x93: 0, // i2b, i2c, i2s
	0x94: 0, 0x95: 0, 0x96: 0, 0x97: 0, 0x98: 0, // *cmp*
	0x99: 2, 0x9a: 2, 0x9b: 2, 0x9c: 2, 0x9d: 2, 0x9e: 2, // if<cond>
	0x9f: 2, 0xa0: 2, 0xa1: 2, 0xa2: 2, 0xa3: 2, 0xa4: 2, // if_icmp<cond>
	0xa5: 2, 0xa6: 2, // if_acmp<cond>
	0xa7: 2, // goto
	0xa8: 2, // jsr
	0xa9: 1, // ret
	// 0xaa tableswitch, 0xab lookupswitch: variable, handled specially
	0xac: 0, 0xad: 0, 0xae: 0, 0xaf: 0, 0xb0: 0, 0xb1: 0, // *return
	0xb2: 2, 0xb3: 2, 0xb4: 2, 0xb5: 2, // getstatic..putfield
	0xb6: 2, 0xb7: 2, 0xb8: 2, // invokevirtual, invokespecial, invokestatic
	0xb9: 4, // invokeinterface: index(2) count(1) 0(1)
	0xba: 4, // invokedynamic: index(2) 0(1) 0(1)
	0xbb: 2, // new
	0xbc: 1, // newarray
	0xbd: 2, // anewarray
	0xbe: 0, 0xbf: 0, // arraylength, athrow
	0xc0: 2, 0xc1: 2, // checkcast, instanceof
	0xc2: 0, 0xc3: 0, // monitorenter, monitorexit
	// 0xc4 wide: variable, handled specially
	0xc5: 3, // multianewarray: index(2) dims(1)
	0xc6: 2, 0xc7: 2, // ifnull, ifnonnull
	0xc8: 4, 0xc9: 4, // goto_w, jsr_w
}

const (
	opTableswitch  = 0xaa
	opLookupswitch = 0xab
	opWide         = 0xc4
	opIinc         = 0x84
)

// wideFollowers lists the opcodes legal immediately after a wide prefix
// (spec.md §4.5). Each takes a 2-byte index; iinc additionally takes a
// 2-byte signed increment.
var wideFollowers = map[byte]bool{
	0x15: true, 0x17: true, 0x19: true, 0x16: true, 0x18: true, // iload fload aload lload dload
	0x36: true, 0x38: true, 0x3a: true, 0x37: true, 0x39: true, // istore fstore astore lstore dstore
	0xa9: true, // ret
	opIinc: true,
}

// CheckCodeShape walks code from offset 0, classifying every opcode by its
// immediate-operand shape, and requires the walk to land exactly on
// len(code) (spec.md §4.5). It never executes anything; this is a pure
// structural pass that runs once at load time.
func CheckCodeShape(code []byte) error {
	pc := 0
	for pc < len(code) {
		op := code[pc]
		start := pc
		pc++

		switch op {
		case opWide:
			if pc >= len(code) {
				return fmt.Errorf("wide at %d: truncated: %w", start, ErrCodeBadShape)
			}
			follower := code[pc]
			pc++
			if !wideFollowers[follower] {
				return fmt.Errorf("wide at %d: illegal follower opcode 0x%02x: %w", start, follower, ErrCodeBadShape)
			}
			pc += 2 // 2-byte index
			if follower == opIinc {
				pc += 2 // 2-byte increment
			}

		case opTableswitch:
			pc = pad4(pc)
			if pc+12 > len(code) {
				return fmt.Errorf("tableswitch at %d: truncated header: %w", start, ErrCodeBadShape)
			}
			low := int32(be32(code[pc+4:]))
			high := int32(be32(code[pc+8:]))
			pc += 12
			if low > high {
				return fmt.Errorf("tableswitch at %d: low %d > high %d: %w", start, low, high, ErrCodeBadShape)
			}
			n := int(high-low) + 1
			need := n * 4
			if pc+need > len(code) {
				return fmt.Errorf("tableswitch at %d: truncated jump table: %w", start, ErrCodeBadShape)
			}
			pc += need

		case opLookupswitch:
			pc = pad4(pc)
			if pc+8 > len(code) {
				return fmt.Errorf("lookupswitch at %d: truncated header: %w", start, ErrCodeBadShape)
			}
			npairs := int32(be32(code[pc+4:]))
			pc += 8
			if npairs < 0 {
				return fmt.Errorf("lookupswitch at %d: negative npairs %d: %w", start, npairs, ErrCodeBadShape)
			}
			need := int(npairs) * 8
			if pc+need > len(code) {
				return fmt.Errorf("lookupswitch at %d: truncated pair table: %w", start, ErrCodeBadShape)
			}
			pc += need

		default:
			n, ok := fixedOperandBytes[op]
			if !ok {
				return fmt.Errorf("opcode 0x%02x at %d: %w", op, start, ErrCodeBadShape)
			}
			if pc+n > len(code) {
				return fmt.Errorf("opcode 0x%02x at %d: truncated operand: %w", op, start, ErrCodeBadShape)
			}
			pc += n
		}
	}
	if pc != len(code) {
		return fmt.Errorf("walk ended at %d, want %d: %w", pc, len(code), ErrCodeBadShape)
	}
	return nil
}

// pad4 rounds pc up to the next multiple of 4, as tableswitch/lookupswitch
// require so their jump tables are 4-byte aligned relative to the start of
// the method's bytecode.
func pad4(pc int) int {
	for pc%4 != 0 {
		pc++
	}
	return pc
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
