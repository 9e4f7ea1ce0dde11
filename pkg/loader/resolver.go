package loader

import (
	"fmt"

	"github.com/classvm/classvm/pkg/classfile"
)

// nativeClasses is the small fixed set of classes the native surface
// implements (spec.md §4.8, §9's "keep the native-class table small").
// Resolver only needs to know WHICH classes are native, not how to invoke
// them — pkg/native owns the actual (class,name,descriptor) → handler
// table, and pkg/vmrun's dispatch loop queries it directly, keeping this
// package free of any dependency on the interpreter or native surface.
var nativeClasses = map[string]bool{
	"java/lang/System":    true,
	"java/io/PrintStream": true,
}

// IsNativeClass reports whether className is implemented by the native
// surface rather than by loaded bytecode.
func IsNativeClass(className string) bool {
	return nativeClasses[className]
}

// Resolver maps symbolic constant-pool references to concrete targets
// through a ClassLoader's registry (spec.md §4.8).
type Resolver struct {
	Loader ClassLoader
}

// NewResolver wraps loader.
func NewResolver(loader ClassLoader) *Resolver {
	return &Resolver{Loader: loader}
}

// Constant is resolveConstant's result: the decoded literal for a
// loadable pool entry (Integer/Float/Long/Double/String), or the zero
// Constant (Kind 0) for any other tag (spec.md §4.8's "untyped zero placeholder" — e.g. for a
// pre-Java-7 ldc on a Class/MethodHandle/MethodType entry, which this
// toolkit's Non-goals (invokedynamic bootstrap execution) put out of
// scope for materialization anyway).
type Constant struct {
	Kind  uint8 // classfile.TagInteger, TagFloat, TagLong, TagDouble, TagString, or 0
	Int   int32
	Long  int64
	Float float32
	Double float64
	Str   string
}

// ResolveConstant decodes the pool entry at index into a Constant
// (spec.md §4.8).
func ResolveConstant(cls *Class, index uint16) (Constant, error) {
	pool := cls.File.ConstantPool
	if int(index) >= len(pool) || pool[index] == nil {
		return Constant{}, fmt.Errorf("%s: constant %d: %w", cls.Name, index, classfile.ErrBadIndex)
	}
	switch pool[index].Tag() {
	case classfile.TagInteger:
		v, err := classfile.GetInteger(pool, index)
		return Constant{Kind: classfile.TagInteger, Int: v}, err
	case classfile.TagFloat:
		v, err := classfile.GetFloat(pool, index)
		return Constant{Kind: classfile.TagFloat, Float: v}, err
	case classfile.TagLong:
		v, err := classfile.GetLong(pool, index)
		return Constant{Kind: classfile.TagLong, Long: v}, err
	case classfile.TagDouble:
		v, err := classfile.GetDouble(pool, index)
		return Constant{Kind: classfile.TagDouble, Double: v}, err
	case classfile.TagString:
		v, err := classfile.GetString(pool, index)
		return Constant{Kind: classfile.TagString, Str: v}, err
	default:
		return Constant{}, nil
	}
}

// FieldResolution is resolveField's result (spec.md §4.8).
type FieldResolution struct {
	Native     bool
	ClassName  string
	Name       string
	Descriptor string
	Declaring  *Class             // nil if Native
	Field      *classfile.FieldInfo // nil if Native
}

// ResolveField resolves a CONSTANT_Fieldref by index against cls's pool,
// walking the superclass chain and then superinterfaces (spec.md §4.8;
// superinterface lookup is the open question resolved in SPEC_FULL.md §1).
func (r *Resolver) ResolveField(cls *Class, fieldrefIndex uint16) (FieldResolution, error) {
	ref, err := classfile.ResolveFieldref(cls.File.ConstantPool, fieldrefIndex)
	if err != nil {
		return FieldResolution{}, fmt.Errorf("%s: %w", cls.Name, err)
	}
	if IsNativeClass(ref.ClassName) {
		return FieldResolution{Native: true, ClassName: ref.ClassName, Name: ref.Name, Descriptor: ref.Descriptor}, nil
	}

	owner, err := r.Loader.Load(ref.ClassName)
	if err != nil {
		return FieldResolution{}, fmt.Errorf("%s: resolving field owner %s: %w", cls.Name, ref.ClassName, err)
	}
	if decl, field := findFieldUp(owner, ref.Name, ref.Descriptor); field != nil {
		return FieldResolution{ClassName: ref.ClassName, Name: ref.Name, Descriptor: ref.Descriptor, Declaring: decl, Field: field}, nil
	}
	return FieldResolution{}, fmt.Errorf("%s.%s %s: %w", ref.ClassName, ref.Name, ref.Descriptor, ErrMissingField)
}

func findFieldUp(cls *Class, name, descriptor string) (*Class, *classfile.FieldInfo) {
	for c := cls; c != nil; c = c.Super {
		if f := c.FindField(name, descriptor); f != nil {
			return c, f
		}
	}
	for _, iface := range allSuperinterfaces(cls) {
		if f := iface.FindField(name, descriptor); f != nil {
			return iface, f
		}
	}
	return nil, nil
}

func allSuperinterfaces(cls *Class) []*Class {
	var out []*Class
	seen := map[string]bool{}
	var walk func(*Class)
	walk = func(c *Class) {
		if c == nil {
			return
		}
		for _, iface := range c.Interfaces {
			if seen[iface.Name] {
				continue
			}
			seen[iface.Name] = true
			out = append(out, iface)
			walk(iface)
		}
		walk(c.Super)
	}
	walk(cls)
	return out
}

// MethodResolution is resolveMethod's result (spec.md §4.8).
type MethodResolution struct {
	Native     bool
	ClassName  string
	Name       string
	Descriptor string
	Declaring  *Class               // nil if Native
	Method     *classfile.MethodInfo // nil if Native
}

// ResolveMethod resolves a CONSTANT_Methodref or CONSTANT_InterfaceMethodref
// by index against cls's pool. Non-native resolution walks the declaring
// class, then its superclass chain, then its superinterfaces — the
// reference implementation left this unimplemented (spec.md §9); this is
// the "implementers should" completion it asked for. Actually invoking the
// resolved method (pushing a new frame) is the interpreter's job, not
// this resolver's — see pkg/vmrun's dispatch.
func (r *Resolver) ResolveMethod(cls *Class, methodrefIndex uint16, isInterface bool) (MethodResolution, error) {
	var ref classfile.MemberRef
	var err error
	if isInterface {
		ref, err = classfile.ResolveInterfaceMethodref(cls.File.ConstantPool, methodrefIndex)
	} else {
		ref, err = classfile.ResolveMethodref(cls.File.ConstantPool, methodrefIndex)
	}
	if err != nil {
		return MethodResolution{}, fmt.Errorf("%s: %w", cls.Name, err)
	}
	if IsNativeClass(ref.ClassName) {
		return MethodResolution{Native: true, ClassName: ref.ClassName, Name: ref.Name, Descriptor: ref.Descriptor}, nil
	}

	owner, err := r.Loader.Load(ref.ClassName)
	if err != nil {
		return MethodResolution{}, fmt.Errorf("%s: resolving method owner %s: %w", cls.Name, ref.ClassName, err)
	}
	if decl, method := findMethodUp(owner, ref.Name, ref.Descriptor); method != nil {
		return MethodResolution{ClassName: ref.ClassName, Name: ref.Name, Descriptor: ref.Descriptor, Declaring: decl, Method: method}, nil
	}
	return MethodResolution{}, fmt.Errorf("%s.%s %s: %w", ref.ClassName, ref.Name, ref.Descriptor, ErrMissingMethod)
}

func findMethodUp(cls *Class, name, descriptor string) (*Class, *classfile.MethodInfo) {
	for c := cls; c != nil; c = c.Super {
		if m := c.FindMethod(name, descriptor); m != nil {
			return c, m
		}
	}
	for _, iface := range allSuperinterfaces(cls) {
		if m := iface.FindMethod(name, descriptor); m != nil {
			return iface, m
		}
	}
	return nil, nil
}
