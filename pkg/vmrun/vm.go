package vmrun

import (
	"fmt"
	"os"

	"github.com/classvm/classvm/internal/log"
	"github.com/classvm/classvm/pkg/classfile"
	"github.com/classvm/classvm/pkg/loader"
	"github.com/classvm/classvm/pkg/native"
)

// VM ties the class loader, resolver, and native surface together behind
// one Execute entrypoint, and implements loader.Initializer so ClassInit
// can run <clinit> methods without the loader package depending on this
// one (spec.md §4.7, §8 scenario 2).
type VM struct {
	Loader   loader.ClassLoader
	Resolver *loader.Resolver
	Native   *native.Registry
	logger   *log.Helper

	fields map[fieldKey]Value
}

type fieldKey struct {
	class, name, descriptor string
}

// New builds a VM over ld, dispatching native calls through nativeRegistry.
// A nil logger falls back to a filtered stderr logger at LevelError, the
// convention every New*/Options constructor in the corpus's logging layer
// follows (internal/log.Default).
func New(ld loader.ClassLoader, nativeRegistry *native.Registry, logger *log.Helper) *VM {
	if logger == nil {
		logger = log.Default(os.Stderr, log.LevelError)
	}
	return &VM{
		Loader:   ld,
		Resolver: loader.NewResolver(ld),
		Native:   nativeRegistry,
		logger:   logger,
		fields:   make(map[fieldKey]Value),
	}
}

// Invoke implements loader.Initializer: it runs a <clinit>()V body to
// completion, discarding its (always void) result.
func (vm *VM) Invoke(cls *loader.Class, method *classfile.MethodInfo) error {
	_, err := vm.invokeMethod(cls, method, nil)
	return err
}

// Execute loads mainClassName, runs its class initializers depth-first
// through the super chain, then invokes its static
// main([Ljava/lang/String;)V (spec.md §6's launcher, §8 scenario 2).
func (vm *VM) Execute(mainClassName string) error {
	cls, err := vm.Loader.Load(mainClassName)
	if err != nil {
		return fmt.Errorf("%s: %w", mainClassName, err)
	}
	if err := loader.ClassInit(cls, vm); err != nil {
		return fmt.Errorf("%s: %w", mainClassName, err)
	}
	main := cls.FindMethod("main", "([Ljava/lang/String;)V")
	if main == nil || !main.IsStatic() {
		return fmt.Errorf("%s: %w", mainClassName, ErrNoMain)
	}
	args, err := newRefArray(0)
	if err != nil {
		return err
	}
	_, err = vm.invokeMethod(cls, main, []Value{RefVal(args)})
	return err
}

// ensureInit runs cls's class initializer if it hasn't run yet, the "first
// active use" trigger spec.md §4.7 leaves to callers (getstatic, putstatic,
// invokestatic, and new all touch a class for the first time here).
func (vm *VM) ensureInit(cls *loader.Class) error {
	return loader.ClassInit(cls, vm)
}

// invokeMethod runs method on cls with args already laid out as the
// callee's leading locals (spec.md §4.9's push operation), returning its
// result (a zero Value for void methods).
func (vm *VM) invokeMethod(cls *loader.Class, method *classfile.MethodInfo, args []Value) (Value, error) {
	if method.Code == nil {
		return Value{}, fmt.Errorf("%s.%s%s: no code (abstract or native method routed to bytecode dispatch)", cls.Name, method.Name, method.Descriptor)
	}
	frame := NewFrame(cls, method)
	copy(frame.Locals, args)
	return vm.run(frame)
}

// invokeNative converts args to the native package's Value type, calls the
// registry, and converts the result back (the boundary pkg/native's own
// package doc describes).
func (vm *VM) invokeNative(className, name, descriptor string, args []Value) (Value, error) {
	nargs := make([]native.Value, len(args))
	for i, a := range args {
		nargs[i] = toNative(a)
	}
	result, err := vm.Native.InvokeMethod(className, name, descriptor, nargs)
	if err != nil {
		return Value{}, err
	}
	return fromNative(result), nil
}

func (vm *VM) readNativeField(className, name, descriptor string) (Value, error) {
	result, err := vm.Native.ReadField(className, name, descriptor)
	if err != nil {
		return Value{}, err
	}
	return fromNative(result), nil
}

func toNative(v Value) native.Value {
	switch v.Kind {
	case KindInt:
		return native.Int(v.Int)
	case KindLong:
		return native.Long(v.Long)
	case KindFloat:
		return native.Float(v.Float)
	case KindDouble:
		return native.Double(v.Double)
	default:
		return native.Ref(v.Ref)
	}
}

func fromNative(v native.Value) Value {
	switch v.Kind {
	case native.KindInt:
		return IntVal(v.Int)
	case native.KindLong:
		return LongVal(v.Long)
	case native.KindFloat:
		return FloatVal(v.Float)
	case native.KindDouble:
		return DoubleVal(v.Double)
	default:
		return RefVal(v.Ref)
	}
}

// getField reads a static field's current value. Static fields live in a
// process-wide map keyed by (class, name, descriptor); instance fields are
// kept on each heap object instead (object.go).
func (vm *VM) getField(className, name, descriptor string) Value {
	return vm.fields[fieldKey{className, name, descriptor}]
}

func (vm *VM) putField(className, name, descriptor string, v Value) {
	vm.fields[fieldKey{className, name, descriptor}] = v
}
