package classfile

import (
	"fmt"
	"io"
	"os"
)

const classMagic = 0xCAFEBABE

// ParseFile opens and parses a .class file from the given path.
func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a .class file image (spec.md §6's section layout) and
// validates every invariant checkable without flow analysis: the magic
// number, the constant pool's two-pass decode+crosscheck, every descriptor,
// and the bytecode shape of every method body. A failure at any point
// returns a wrapped sentinel from errors.go and leaves nothing partially
// registered anywhere — the half-built *ClassFile is simply dropped by the
// caller.
func Parse(rd io.Reader) (*ClassFile, error) {
	r := NewReader(rd)
	cf := &ClassFile{}

	magic, err := r.U4()
	if err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if magic != classMagic {
		return nil, fmt.Errorf("got 0x%08X: %w", magic, ErrBadMagic)
	}

	if cf.MinorVersion, err = r.U2(); err != nil {
		return nil, fmt.Errorf("reading minor_version: %w", err)
	}
	if cf.MajorVersion, err = r.U2(); err != nil {
		return nil, fmt.Errorf("reading major_version: %w", err)
	}

	cpCount, err := r.U2()
	if err != nil {
		return nil, fmt.Errorf("reading constant_pool_count: %w", err)
	}
	pool, err := decodePool(r, cpCount)
	if err != nil {
		return nil, fmt.Errorf("decoding constant pool: %w", err)
	}
	if err := crossCheck(pool); err != nil {
		return nil, fmt.Errorf("validating constant pool: %w", err)
	}
	cf.ConstantPool = pool

	if cf.AccessFlags, err = r.U2(); err != nil {
		return nil, fmt.Errorf("reading access_flags: %w", err)
	}
	if cf.ThisClass, err = r.U2(); err != nil {
		return nil, fmt.Errorf("reading this_class: %w", err)
	}
	if cf.SuperClass, err = r.U2(); err != nil {
		return nil, fmt.Errorf("reading super_class: %w", err)
	}
	if err := requireTag(pool, cf.ThisClass, TagClass); err != nil {
		return nil, fmt.Errorf("this_class: %w", err)
	}
	if cf.SuperClass != 0 {
		if err := requireTag(pool, cf.SuperClass, TagClass); err != nil {
			return nil, fmt.Errorf("super_class: %w", err)
		}
	}

	ifaceCount, err := r.U2()
	if err != nil {
		return nil, fmt.Errorf("reading interfaces_count: %w", err)
	}
	cf.Interfaces = make([]uint16, ifaceCount)
	for i := range cf.Interfaces {
		if cf.Interfaces[i], err = r.U2(); err != nil {
			return nil, fmt.Errorf("reading interface %d: %w", i, err)
		}
		if err := requireTag(pool, cf.Interfaces[i], TagClass); err != nil {
			return nil, fmt.Errorf("interface %d: %w", i, err)
		}
	}

	if cf.Fields, err = parseFields(r, pool); err != nil {
		return nil, fmt.Errorf("parsing fields: %w", err)
	}
	if cf.Methods, err = parseMethods(r, pool); err != nil {
		return nil, fmt.Errorf("parsing methods: %w", err)
	}
	if cf.Attributes, err = parseAttributes(r, pool); err != nil {
		return nil, fmt.Errorf("parsing class attributes: %w", err)
	}

	return cf, nil
}

func parseFields(r *Reader, pool Pool) ([]FieldInfo, error) {
	count, err := r.U2()
	if err != nil {
		return nil, fmt.Errorf("reading fields_count: %w", err)
	}
	fields := make([]FieldInfo, count)
	for i := range fields {
		f, err := parseMember(r, pool)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		if !ValidFieldDescriptor(f.descriptor) {
			return nil, fmt.Errorf("field %d descriptor %q: %w", i, f.descriptor, ErrBadDescriptor)
		}
		fields[i] = FieldInfo{
			AccessFlags: f.accessFlags,
			Name:        f.name,
			Descriptor:  f.descriptor,
			Attributes:  f.attributes,
		}
	}
	return fields, nil
}

func parseMethods(r *Reader, pool Pool) ([]MethodInfo, error) {
	count, err := r.U2()
	if err != nil {
		return nil, fmt.Errorf("reading methods_count: %w", err)
	}
	methods := make([]MethodInfo, count)
	for i := range methods {
		m, err := parseMember(r, pool)
		if err != nil {
			return nil, fmt.Errorf("method %d: %w", i, err)
		}
		if !ValidMethodDescriptor(m.descriptor) {
			return nil, fmt.Errorf("method %d descriptor %q: %w", i, m.descriptor, ErrBadDescriptor)
		}
		mi := MethodInfo{
			AccessFlags: m.accessFlags,
			Name:        m.name,
			Descriptor:  m.descriptor,
			Attributes:  m.attributes,
		}
		if code, ok := FindAttribute(m.attributes, "Code").(CodeAttr); ok {
			c := code
			mi.Code = &c
		}
		methods[i] = mi
	}
	return methods, nil
}

type member struct {
	accessFlags           uint16
	name, descriptor      string
	attributes            []Attribute
}

func parseMember(r *Reader, pool Pool) (member, error) {
	var m member
	var err error
	if m.accessFlags, err = r.U2(); err != nil {
		return m, fmt.Errorf("reading access_flags: %w", err)
	}
	nameIndex, err := r.U2()
	if err != nil {
		return m, fmt.Errorf("reading name_index: %w", err)
	}
	descIndex, err := r.U2()
	if err != nil {
		return m, fmt.Errorf("reading descriptor_index: %w", err)
	}
	if m.name, err = GetUtf8(pool, nameIndex); err != nil {
		return m, fmt.Errorf("resolving name: %w", err)
	}
	if m.descriptor, err = GetUtf8(pool, descIndex); err != nil {
		return m, fmt.Errorf("resolving descriptor: %w", err)
	}
	if m.attributes, err = parseAttributes(r, pool); err != nil {
		return m, fmt.Errorf("parsing attributes: %w", err)
	}
	return m, nil
}
