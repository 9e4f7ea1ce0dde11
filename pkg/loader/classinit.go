package loader

import "github.com/classvm/classvm/pkg/classfile"

// Initializer runs a class's <clinit>()V method body. ClassInit takes one
// rather than calling into pkg/vmrun directly: the interpreter depends on
// this package for loading and resolution, so executing bytecode from here
// would close an import cycle. pkg/vmrun implements Initializer and drives
// ClassInit instead.
type Initializer interface {
	Invoke(cls *Class, method *classfile.MethodInfo) error
}

// ClassInit runs spec.md §4.7's initialization: guarded by a per-class flag
// (idempotent), super first depth-first base-to-derived, then this class's
// own <clinit>()V if present.
func ClassInit(cls *Class, init Initializer) error {
	if cls.init == initialized {
		return nil
	}
	if cls.init == initializing {
		return nil // already on the stack; <clinit> never recurses into itself meaningfully
	}
	cls.init = initializing

	if cls.Super != nil {
		if err := ClassInit(cls.Super, init); err != nil {
			return err
		}
	}

	if m := cls.FindMethod("<clinit>", "()V"); m != nil {
		if err := init.Invoke(cls, m); err != nil {
			return err
		}
	}

	cls.init = initialized
	return nil
}
