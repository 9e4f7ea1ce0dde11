package disasm

// operandKind classifies how an opcode's immediate bytes are printed.
// This mirrors pkg/classfile/codecheck.go's fixedOperandBytes table byte for
// byte, but carries print semantics (a local-variable index reads
// differently than a constant-pool index) instead of just a length.
type operandKind int

const (
	kindNone operandKind = iota
	kindLocal1            // 1-byte local variable index
	kindImm1              // 1-byte signed immediate (bipush)
	kindImm2              // 2-byte signed immediate (sipush)
	kindPool1             // 1-byte constant pool index (ldc)
	kindPool2             // 2-byte constant pool index (ldc_w, getstatic, invokevirtual, new, ...)
	kindBranch2           // 2-byte signed branch offset
	kindBranch4           // 4-byte signed branch offset
	kindIinc              // 1-byte local index + 1-byte signed increment
	kindNewarray          // 1-byte atype
	kindInvokeinterface   // 2-byte pool index + 1-byte count + 1 reserved byte
	kindInvokedynamic     // 2-byte pool index + 2 reserved bytes
	kindMultianewarray    // 2-byte pool index + 1-byte dimension count
	kindTableswitch
	kindLookupswitch
	kindWide
)

type opInfo struct {
	mnemonic string
	kind     operandKind
}

// opTable names every opcode spec.md §2's ~200-entry dispatch table covers,
// grounded on daimatz-gojvm/pkg/vm/instructions.go's constant names and
// pkg/classfile/codecheck.go's per-opcode operand-length table (the two
// sources this toolkit's own opcode tables, pkg/classfile's and
// pkg/vmrun's, were each built from).
var opTable = map[byte]opInfo{
	0x00: {"nop", kindNone},
	0x01: {"aconst_null", kindNone},
	0x02: {"iconst_m1", kindNone},
	0x03: {"iconst_0", kindNone},
	0x04: {"iconst_1", kindNone},
	0x05: {"iconst_2", kindNone},
	0x06: {"iconst_3", kindNone},
	0x07: {"iconst_4", kindNone},
	0x08: {"iconst_5", kindNone},
	0x09: {"lconst_0", kindNone},
	0x0a: {"lconst_1", kindNone},
	0x0b: {"fconst_0", kindNone},
	0x0c: {"fconst_1", kindNone},
	0x0d: {"fconst_2", kindNone},
	0x0e: {"dconst_0", kindNone},
	0x0f: {"dconst_1", kindNone},
	0x10: {"bipush", kindImm1},
	0x11: {"sipush", kindImm2},
	0x12: {"ldc", kindPool1},
	0x13: {"ldc_w", kindPool2},
	0x14: {"ldc2_w", kindPool2},
	0x15: {"iload", kindLocal1},
	0x16: {"lload", kindLocal1},
	0x17: {"fload", kindLocal1},
	0x18: {"dload", kindLocal1},
	0x19: {"aload", kindLocal1},
	0x1a: {"iload_0", kindNone}, 0x1b: {"iload_1", kindNone}, 0x1c: {"iload_2", kindNone}, 0x1d: {"iload_3", kindNone},
	0x1e: {"lload_0", kindNone}, 0x1f: {"lload_1", kindNone}, 0x20: {"lload_2", kindNone}, 0x21: {"lload_3", kindNone},
	0x22: {"fload_0", kindNone}, 0x23: {"fload_1", kindNone}, 0x24: {"fload_2", kindNone}, 0x25: {"fload_3", kindNone},
	0x26: {"dload_0", kindNone}, 0x27: {"dload_1", kindNone}, 0x28: {"dload_2", kindNone}, 0x29: {"dload_3", kindNone},
	0x2a: {"aload_0", kindNone}, 0x2b: {"aload_1", kindNone}, 0x2c: {"aload_2", kindNone}, 0x2d: {"aload_3", kindNone},
	0x2e: {"iaload", kindNone}, 0x2f: {"laload", kindNone}, 0x30: {"faload", kindNone}, 0x31: {"daload", kindNone},
	0x32: {"aaload", kindNone}, 0x33: {"baload", kindNone}, 0x34: {"caload", kindNone}, 0x35: {"saload", kindNone},
	0x36: {"istore", kindLocal1},
	0x37: {"lstore", kindLocal1},
	0x38: {"fstore", kindLocal1},
	0x39: {"dstore", kindLocal1},
	0x3a: {"astore", kindLocal1},
	0x3b: {"istore_0", kindNone}, 0x3c: {"istore_1", kindNone}, 0x3d: {"istore_2", kindNone}, 0x3e: {"istore_3", kindNone},
	0x3f: {"lstore_0", kindNone}, 0x40: {"lstore_1", kindNone}, 0x41: {"lstore_2", kindNone}, 0x42: {"lstore_3", kindNone},
	0x43: {"fstore_0", kindNone}, 0x44: {"fstore_1", kindNone}, 0x45: {"fstore_2", kindNone}, 0x46: {"fstore_3", kindNone},
	0x47: {"dstore_0", kindNone}, 0x48: {"dstore_1", kindNone}, 0x49: {"dstore_2", kindNone}, 0x4a: {"dstore_3", kindNone},
	0x4b: {"astore_0", kindNone}, 0x4c: {"astore_1", kindNone}, 0x4d: {"astore_2", kindNone}, 0x4e: {"astore_3", kindNone},
	0x4f: {"iastore", kindNone}, 0x50: {"lastore", kindNone}, 0x51: {"fastore", kindNone}, 0x52: {"dastore", kindNone},
	0x53: {"aastore", kindNone}, 0x54: {"bastore", kindNone}, 0x55: {"castore", kindNone}, 0x56: {"sastore", kindNone},
	0x57: {"pop", kindNone}, 0x58: {"pop2", kindNone},
	0x59: {"dup", kindNone}, 0x5a: {"dup_x1", kindNone}, 0x5b: {"dup_x2", kindNone},
	0x5c: {"dup2", kindNone}, 0x5d: {"dup2_x1", kindNone}, 0x5e: {"dup2_x2", kindNone},
	0x5f: {"swap", kindNone},
	0x60: {"iadd", kindNone}, 0x61: {"ladd", kindNone}, 0x62: {"fadd", kindNone}, 0x63: {"dadd", kindNone},
	0x64: {"isub", kindNone}, 0x65: {"lsub", kindNone}, 0x66: {"fsub", kindNone}, 0x67: {"dsub", kindNone},
	0x68: {"imul", kindNone}, 0x69: {"lmul", kindNone}, 0x6a: {"fmul", kindNone}, 0x6b: {"dmul", kindNone},
	0x6c: {"idiv", kindNone}, 0x6d: {"ldiv", kindNone}, 0x6e: {"fdiv", kindNone}, 0x6f: {"ddiv", kindNone},
	0x70: {"irem", kindNone}, 0x71: {"lrem", kindNone}, 0x72: {"frem", kindNone}, 0x73: {"drem", kindNone},
	0x74: {"ineg", kindNone}, 0x75: {"lneg", kindNone}, 0x76: {"fneg", kindNone}, 0x77: {"dneg", kindNone},
	0x78: {"ishl", kindNone}, 0x79: {"lshl", kindNone}, 0x7a: {"ishr", kindNone}, 0x7b: {"lshr", kindNone},
	0x7c: {"iushr", kindNone}, 0x7d: {"lushr", kindNone},
	0x7e: {"iand", kindNone}, 0x7f: {"land", kindNone}, 0x80: {"ior", kindNone}, 0x81: {"lor", kindNone},
	0x82: {"ixor", kindNone}, 0x83: {"lxor", kindNone},
	0x84: {"iinc", kindIinc},
	0x85: {"i2l", kindNone}, 0x86: {"i2f", kindNone}, 0x87: {"i2d", kindNone},
	0x88: {"l2i", kindNone}, 0x89: {"l2f", kindNone}, 0x8a: {"l2d", kindNone},
	0x8b: {"f2i", kindNone}, 0x8c: {"f2l", kindNone}, 0x8d: {"f2d", kindNone},
	0x8e: {"d2i", kindNone}, 0x8f: {"d2l", kindNone}, 0x90: {"d2f", kindNone},
	0x91: {"i2b", kindNone}, 0x92: {"i2c", kindNone}, 0x93: {"i2s", kindNone},
	0x94: {"lcmp", kindNone}, 0x95: {"fcmpl", kindNone}, 0x96: {"fcmpg", kindNone}, 0x97: {"dcmpl", kindNone}, 0x98: {"dcmpg", kindNone},
	0x99: {"ifeq", kindBranch2}, 0x9a: {"ifne", kindBranch2}, 0x9b: {"iflt", kindBranch2},
	0x9c: {"ifge", kindBranch2}, 0x9d: {"ifgt", kindBranch2}, 0x9e: {"ifle", kindBranch2},
	0x9f: {"if_icmpeq", kindBranch2}, 0xa0: {"if_icmpne", kindBranch2}, 0xa1: {"if_icmplt", kindBranch2},
	0xa2: {"if_icmpge", kindBranch2}, 0xa3: {"if_icmpgt", kindBranch2}, 0xa4: {"if_icmple", kindBranch2},
	0xa5: {"if_acmpeq", kindBranch2}, 0xa6: {"if_acmpne", kindBranch2},
	0xa7: {"goto", kindBranch2},
	0xa8: {"jsr", kindBranch2},
	0xa9: {"ret", kindLocal1},
	0xaa: {"tableswitch", kindTableswitch},
	0xab: {"lookupswitch", kindLookupswitch},
	0xac: {"ireturn", kindNone}, 0xad: {"lreturn", kindNone}, 0xae: {"freturn", kindNone},
	0xaf: {"dreturn", kindNone}, 0xb0: {"areturn", kindNone}, 0xb1: {"return", kindNone},
	0xb2: {"getstatic", kindPool2}, 0xb3: {"putstatic", kindPool2},
	0xb4: {"getfield", kindPool2}, 0xb5: {"putfield", kindPool2},
	0xb6: {"invokevirtual", kindPool2}, 0xb7: {"invokespecial", kindPool2}, 0xb8: {"invokestatic", kindPool2},
	0xb9: {"invokeinterface", kindInvokeinterface},
	0xba: {"invokedynamic", kindInvokedynamic},
	0xbb: {"new", kindPool2},
	0xbc: {"newarray", kindNewarray},
	0xbd: {"anewarray", kindPool2},
	0xbe: {"arraylength", kindNone},
	0xbf: {"athrow", kindNone},
	0xc0: {"checkcast", kindPool2}, 0xc1: {"instanceof", kindPool2},
	0xc2: {"monitorenter", kindNone}, 0xc3: {"monitorexit", kindNone},
	0xc4: {"wide", kindWide},
	0xc5: {"multianewarray", kindMultianewarray},
	0xc6: {"ifnull", kindBranch2}, 0xc7: {"ifnonnull", kindBranch2},
	0xc8: {"goto_w", kindBranch4}, 0xc9: {"jsr_w", kindBranch4},
}

// newarrayTypes names the atype byte newarray takes (JVMS §6.5 newarray).
var newarrayTypes = map[byte]string{
	4: "boolean", 5: "char", 6: "float", 7: "double",
	8: "byte", 9: "short", 10: "int", 11: "long",
}
