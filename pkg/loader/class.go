package loader

import "github.com/classvm/classvm/pkg/classfile"

// initState tracks classInit's idempotency guard (spec.md §4.7).
type initState int

const (
	notInitialized initState = iota
	initializing
	initialized
)

// Class extends a decoded classfile.ClassFile with the link-time state
// spec.md §3 describes: a resolved super pointer, resolved superinterface
// pointers, and an initialization flag. The registry that loaded a Class
// exclusively owns it; Super/Interfaces are weak back-references (lookup
// by name through the same registry), never a second ownership path
// (spec.md §9's "class graph cycles and ownership").
type Class struct {
	Name       string
	File       *classfile.ClassFile
	Super      *Class
	Interfaces []*Class

	init initState
}

// IsTopClass reports whether this class's superclass is java/lang/Object
// (spec.md §4.6's isTopClass, lifted onto the linked Class).
func (c *Class) IsTopClass() bool {
	return c.File.IsTopClass()
}

// FindMethod searches this class only (not its supers); callers that want
// inherited lookup should walk Super themselves, as Resolver does.
func (c *Class) FindMethod(name, descriptor string) *classfile.MethodInfo {
	return c.File.FindMethod(name, descriptor)
}

// FindField searches this class only.
func (c *Class) FindField(name, descriptor string) *classfile.FieldInfo {
	return c.File.FindField(name, descriptor)
}

// SuperChainNames returns this class's ancestry, closest first, including
// itself. Used by tests asserting spec.md §8's "super chain contains no
// duplicates" property.
func (c *Class) SuperChainNames() []string {
	names := []string{c.Name}
	for s := c.Super; s != nil; s = s.Super {
		names = append(names, s.Name)
	}
	return names
}
