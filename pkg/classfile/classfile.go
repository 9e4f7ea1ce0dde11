package classfile

// Access flags (JVMS §4.1, §4.5, §4.6 — only the ones this toolkit inspects).
const (
	AccPublic       = 0x0001
	AccPrivate      = 0x0002
	AccProtected    = 0x0004
	AccStatic       = 0x0008
	AccFinal        = 0x0010
	AccSuper        = 0x0020
	AccInterface    = 0x0200
	AccAbstract     = 0x0400
	AccSynthetic    = 0x1000
	AccNative       = 0x0100
	AccAnnotation   = 0x2000
	AccEnum         = 0x4000
)

// FieldInfo and MethodInfo share a shape (spec.md §3): access flags, a
// name/descriptor pulled out of the constant pool at parse time for
// convenience, and an attribute list.
type FieldInfo struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Attributes  []Attribute
}

// MethodInfo additionally caches its Code attribute, if present — a
// method's executable body.
type MethodInfo struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Attributes  []Attribute
	Code        *CodeAttr
}

func (m *MethodInfo) IsNative() bool   { return m.AccessFlags&AccNative != 0 }
func (m *MethodInfo) IsAbstract() bool { return m.AccessFlags&AccAbstract != 0 }
func (m *MethodInfo) IsStatic() bool   { return m.AccessFlags&AccStatic != 0 }

// ClassFile is the in-memory representation of a decoded .class file
// (spec.md §3). Super/loader linkage added at load time lives on loader.Class,
// not here — this type is the pure decode result.
type ClassFile struct {
	MinorVersion, MajorVersion uint16
	ConstantPool               Pool
	AccessFlags                uint16
	ThisClass, SuperClass      uint16
	Interfaces                 []uint16
	Fields                     []FieldInfo
	Methods                    []MethodInfo
	Attributes                 []Attribute
}

func (cf *ClassFile) IsInterface() bool { return cf.AccessFlags&AccInterface != 0 }
func (cf *ClassFile) IsAbstract() bool  { return cf.AccessFlags&AccAbstract != 0 }

// ClassName returns this class's fully qualified internal name.
func (cf *ClassFile) ClassName() (string, error) {
	return GetClassName(cf.ConstantPool, cf.ThisClass)
}

// SuperClassName returns the superclass's internal name, or "" if
// super_class is 0 (only legal for java/lang/Object itself).
func (cf *ClassFile) SuperClassName() (string, error) {
	if cf.SuperClass == 0 {
		return "", nil
	}
	return GetClassName(cf.ConstantPool, cf.SuperClass)
}

// IsTopClass reports whether this class's superclass is java/lang/Object
// (spec.md §4.6).
func (cf *ClassFile) IsTopClass() bool {
	name, err := cf.SuperClassName()
	return err == nil && name == "java/lang/Object"
}

// FindMethod linear-searches for a method by (name, descriptor)
// (spec.md §4.6).
func (cf *ClassFile) FindMethod(name, descriptor string) *MethodInfo {
	for i := range cf.Methods {
		if cf.Methods[i].Name == name && cf.Methods[i].Descriptor == descriptor {
			return &cf.Methods[i]
		}
	}
	return nil
}

// FindField linear-searches for a field by (name, descriptor)
// (spec.md §4.6).
func (cf *ClassFile) FindField(name, descriptor string) *FieldInfo {
	for i := range cf.Fields {
		if cf.Fields[i].Name == name && cf.Fields[i].Descriptor == descriptor {
			return &cf.Fields[i]
		}
	}
	return nil
}

// InterfaceNames resolves every entry of the interfaces table to a class
// name.
func (cf *ClassFile) InterfaceNames() ([]string, error) {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		name, err := GetClassName(cf.ConstantPool, idx)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}
