package classfile

import (
	"fmt"
	"math"
)

// Constant pool tags (JVMS §4.4).
const (
	TagUtf8               = 1
	TagInteger            = 3
	TagFloat              = 4
	TagLong               = 5
	TagDouble             = 6
	TagClass              = 7
	TagString             = 8
	TagFieldref           = 9
	TagMethodref          = 10
	TagInterfaceMethodref = 11
	TagNameAndType        = 12
	TagMethodHandle       = 15
	TagMethodType         = 16
	TagInvokeDynamic      = 18
	tagUntagged           = 0 // reserved slot after a Long/Double; never on the wire
)

// Entry is implemented by every constant pool variant, including the
// reserved post-Long/Double slot.
type Entry interface {
	Tag() uint8
}

type Utf8Info struct{ Value string }
type IntegerInfo struct{ Value int32 }
type FloatInfo struct{ Value float32 }
type LongInfo struct{ Value int64 }
type DoubleInfo struct{ Value float64 }
type ClassInfo struct{ NameIndex uint16 }
type StringInfo struct{ StringIndex uint16 }
type FieldrefInfo struct {
	ClassIndex, NameAndTypeIndex uint16
}
type MethodrefInfo struct {
	ClassIndex, NameAndTypeIndex uint16
}
type InterfaceMethodrefInfo struct {
	ClassIndex, NameAndTypeIndex uint16
}
type NameAndTypeInfo struct {
	NameIndex, DescriptorIndex uint16
}
type MethodHandleInfo struct {
	ReferenceKind  uint8
	ReferenceIndex uint16
}
type MethodTypeInfo struct{ DescriptorIndex uint16 }
type InvokeDynamicInfo struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

// UntaggedInfo occupies the slot immediately following a Long or Double
// entry. It is never referenced from anywhere in a well-formed class file.
type UntaggedInfo struct{}

func (Utf8Info) Tag() uint8               { return TagUtf8 }
func (IntegerInfo) Tag() uint8            { return TagInteger }
func (FloatInfo) Tag() uint8              { return TagFloat }
func (LongInfo) Tag() uint8               { return TagLong }
func (DoubleInfo) Tag() uint8             { return TagDouble }
func (ClassInfo) Tag() uint8              { return TagClass }
func (StringInfo) Tag() uint8             { return TagString }
func (FieldrefInfo) Tag() uint8           { return TagFieldref }
func (MethodrefInfo) Tag() uint8          { return TagMethodref }
func (InterfaceMethodrefInfo) Tag() uint8 { return TagInterfaceMethodref }
func (NameAndTypeInfo) Tag() uint8        { return TagNameAndType }
func (MethodHandleInfo) Tag() uint8       { return TagMethodHandle }
func (MethodTypeInfo) Tag() uint8         { return TagMethodType }
func (InvokeDynamicInfo) Tag() uint8      { return TagInvokeDynamic }
func (UntaggedInfo) Tag() uint8           { return tagUntagged }

// Pool is the 1-indexed constant pool: Pool[0] is always nil.
type Pool []Entry

// decodePool runs spec.md §4.3 pass 1: tag-driven decode of count-1 entries.
func decodePool(r *Reader, count uint16) (Pool, error) {
	pool := make(Pool, count)
	for i := uint16(1); i < count; i++ {
		tag, err := r.U1()
		if err != nil {
			return nil, fmt.Errorf("reading tag at index %d: %w", i, err)
		}
		switch tag {
		case TagUtf8:
			n, err := r.U2()
			if err != nil {
				return nil, fmt.Errorf("reading Utf8 length at index %d: %w", i, err)
			}
			s, err := r.UTF8(int(n))
			if err != nil {
				return nil, fmt.Errorf("reading Utf8 bytes at index %d: %w", i, err)
			}
			pool[i] = Utf8Info{Value: s}

		case TagInteger:
			v, err := r.U4()
			if err != nil {
				return nil, fmt.Errorf("reading Integer at index %d: %w", i, err)
			}
			pool[i] = IntegerInfo{Value: int32(v)}

		case TagFloat:
			v, err := r.U4()
			if err != nil {
				return nil, fmt.Errorf("reading Float at index %d: %w", i, err)
			}
			pool[i] = FloatInfo{Value: math.Float32frombits(v)}

		case TagLong:
			hi, err := r.U4()
			if err != nil {
				return nil, fmt.Errorf("reading Long at index %d: %w", i, err)
			}
			lo, err := r.U4()
			if err != nil {
				return nil, fmt.Errorf("reading Long at index %d: %w", i, err)
			}
			pool[i] = LongInfo{Value: int64(hi)<<32 | int64(lo)}
			i++
			if i < count {
				pool[i] = UntaggedInfo{}
			}

		case TagDouble:
			hi, err := r.U4()
			if err != nil {
				return nil, fmt.Errorf("reading Double at index %d: %w", i, err)
			}
			lo, err := r.U4()
			if err != nil {
				return nil, fmt.Errorf("reading Double at index %d: %w", i, err)
			}
			bits := uint64(hi)<<32 | uint64(lo)
			pool[i] = DoubleInfo{Value: math.Float64frombits(bits)}
			i++
			if i < count {
				pool[i] = UntaggedInfo{}
			}

		case TagClass:
			idx, err := r.U2()
			if err != nil {
				return nil, fmt.Errorf("reading Class at index %d: %w", i, err)
			}
			pool[i] = ClassInfo{NameIndex: idx}

		case TagString:
			idx, err := r.U2()
			if err != nil {
				return nil, fmt.Errorf("reading String at index %d: %w", i, err)
			}
			pool[i] = StringInfo{StringIndex: idx}

		case TagFieldref:
			c, n, err := readRefPair(r)
			if err != nil {
				return nil, fmt.Errorf("reading Fieldref at index %d: %w", i, err)
			}
			pool[i] = FieldrefInfo{ClassIndex: c, NameAndTypeIndex: n}

		case TagMethodref:
			c, n, err := readRefPair(r)
			if err != nil {
				return nil, fmt.Errorf("reading Methodref at index %d: %w", i, err)
			}
			pool[i] = MethodrefInfo{ClassIndex: c, NameAndTypeIndex: n}

		case TagInterfaceMethodref:
			c, n, err := readRefPair(r)
			if err != nil {
				return nil, fmt.Errorf("reading InterfaceMethodref at index %d: %w", i, err)
			}
			pool[i] = InterfaceMethodrefInfo{ClassIndex: c, NameAndTypeIndex: n}

		case TagNameAndType:
			n, d, err := readRefPair(r)
			if err != nil {
				return nil, fmt.Errorf("reading NameAndType at index %d: %w", i, err)
			}
			pool[i] = NameAndTypeInfo{NameIndex: n, DescriptorIndex: d}

		case TagMethodHandle:
			kind, err := r.U1()
			if err != nil {
				return nil, fmt.Errorf("reading MethodHandle kind at index %d: %w", i, err)
			}
			refIdx, err := r.U2()
			if err != nil {
				return nil, fmt.Errorf("reading MethodHandle reference at index %d: %w", i, err)
			}
			pool[i] = MethodHandleInfo{ReferenceKind: kind, ReferenceIndex: refIdx}

		case TagMethodType:
			idx, err := r.U2()
			if err != nil {
				return nil, fmt.Errorf("reading MethodType at index %d: %w", i, err)
			}
			pool[i] = MethodTypeInfo{DescriptorIndex: idx}

		case TagInvokeDynamic:
			bsm, nat, err := readRefPair(r)
			if err != nil {
				return nil, fmt.Errorf("reading InvokeDynamic at index %d: %w", i, err)
			}
			pool[i] = InvokeDynamicInfo{BootstrapMethodAttrIndex: bsm, NameAndTypeIndex: nat}

		default:
			return nil, fmt.Errorf("tag %d at index %d: %w", tag, i, ErrUnknownTag)
		}
	}
	return pool, nil
}

func readRefPair(r *Reader) (a, b uint16, err error) {
	a, err = r.U2()
	if err != nil {
		return 0, 0, err
	}
	b, err = r.U2()
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// methodHandleTargetTags lists, per reference_kind, the tags the
// reference_index entry is allowed to carry (spec.md §4.3 table). Kinds 6
// and 7 accept either Methodref or InterfaceMethodref — resolved open
// question, see SPEC_FULL.md §1 and DESIGN.md.
var methodHandleTargetTags = map[uint8][]uint8{
	1: {TagFieldref},
	2: {TagFieldref},
	3: {TagFieldref},
	4: {TagFieldref},
	5: {TagMethodref},
	6: {TagMethodref, TagInterfaceMethodref},
	7: {TagMethodref, TagInterfaceMethodref},
	8: {TagMethodref},
	9: {TagInterfaceMethodref},
}

// crossCheck runs spec.md §4.3 pass 2: every *_index field must resolve to
// an existing slot carrying the tag the JVM spec requires there, and every
// descriptor_index target must be a syntactically valid descriptor.
func crossCheck(pool Pool) error {
	for i := 1; i < len(pool); i++ {
		entry := pool[i]
		if entry == nil {
			return fmt.Errorf("slot %d: %w", i, ErrBadIndex)
		}
		switch e := entry.(type) {
		case Utf8Info, IntegerInfo, FloatInfo, LongInfo, DoubleInfo, UntaggedInfo:
			// no references to check

		case ClassInfo:
			if err := requireTag(pool, e.NameIndex, TagUtf8); err != nil {
				return fmt.Errorf("Class at %d: %w", i, err)
			}

		case StringInfo:
			if err := requireTag(pool, e.StringIndex, TagUtf8); err != nil {
				return fmt.Errorf("String at %d: %w", i, err)
			}

		case FieldrefInfo:
			if err := checkRefPair(pool, e.ClassIndex, e.NameAndTypeIndex, TagClass); err != nil {
				return fmt.Errorf("Fieldref at %d: %w", i, err)
			}
			if err := checkDescriptor(pool, e.NameAndTypeIndex, false); err != nil {
				return fmt.Errorf("Fieldref at %d: %w", i, err)
			}

		case MethodrefInfo:
			if err := checkRefPair(pool, e.ClassIndex, e.NameAndTypeIndex, TagClass); err != nil {
				return fmt.Errorf("Methodref at %d: %w", i, err)
			}
			if err := checkDescriptor(pool, e.NameAndTypeIndex, true); err != nil {
				return fmt.Errorf("Methodref at %d: %w", i, err)
			}

		case InterfaceMethodrefInfo:
			if err := checkRefPair(pool, e.ClassIndex, e.NameAndTypeIndex, TagClass); err != nil {
				return fmt.Errorf("InterfaceMethodref at %d: %w", i, err)
			}
			if err := checkDescriptor(pool, e.NameAndTypeIndex, true); err != nil {
				return fmt.Errorf("InterfaceMethodref at %d: %w", i, err)
			}

		case NameAndTypeInfo:
			if err := requireTag(pool, e.NameIndex, TagUtf8); err != nil {
				return fmt.Errorf("NameAndType at %d: %w", i, err)
			}
			if err := requireTag(pool, e.DescriptorIndex, TagUtf8); err != nil {
				return fmt.Errorf("NameAndType at %d: %w", i, err)
			}
			desc, _ := getUtf8(pool, e.DescriptorIndex)
			if !ValidDescriptor(desc) {
				return fmt.Errorf("NameAndType at %d: descriptor %q: %w", i, desc, ErrBadDescriptor)
			}

		case MethodHandleInfo:
			allowed, ok := methodHandleTargetTags[e.ReferenceKind]
			if !ok {
				return fmt.Errorf("MethodHandle at %d: kind %d: %w", i, e.ReferenceKind, ErrBadKind)
			}
			if int(e.ReferenceIndex) >= len(pool) || pool[e.ReferenceIndex] == nil {
				return fmt.Errorf("MethodHandle at %d: %w", i, ErrBadIndex)
			}
			gotTag := pool[e.ReferenceIndex].Tag()
			matched := false
			for _, t := range allowed {
				if gotTag == t {
					matched = true
					break
				}
			}
			if !matched {
				return fmt.Errorf("MethodHandle at %d: kind %d requires a different target tag, got %d: %w", i, e.ReferenceKind, gotTag, ErrTagMismatch)
			}

		case MethodTypeInfo:
			if err := requireTag(pool, e.DescriptorIndex, TagUtf8); err != nil {
				return fmt.Errorf("MethodType at %d: %w", i, err)
			}
			desc, _ := getUtf8(pool, e.DescriptorIndex)
			if !ValidMethodDescriptor(desc) {
				return fmt.Errorf("MethodType at %d: descriptor %q: %w", i, desc, ErrBadDescriptor)
			}

		case InvokeDynamicInfo:
			if err := requireTag(pool, e.NameAndTypeIndex, TagNameAndType); err != nil {
				return fmt.Errorf("InvokeDynamic at %d: %w", i, err)
			}

		default:
			return fmt.Errorf("slot %d: unrecognized entry type %T", i, entry)
		}
	}
	return nil
}

func checkRefPair(pool Pool, classIdx, natIdx uint16, classTag uint8) error {
	if err := requireTag(pool, classIdx, classTag); err != nil {
		return err
	}
	return requireTag(pool, natIdx, TagNameAndType)
}

func checkDescriptor(pool Pool, natIdx uint16, method bool) error {
	nat, ok := pool[natIdx].(NameAndTypeInfo)
	if !ok {
		return fmt.Errorf("%w", ErrTagMismatch)
	}
	desc, err := getUtf8(pool, nat.DescriptorIndex)
	if err != nil {
		return err
	}
	valid := desc != "" && (method == (desc[0] == '('))
	if !valid || (method && !ValidMethodDescriptor(desc)) || (!method && !ValidFieldDescriptor(desc)) {
		return fmt.Errorf("descriptor %q: %w", desc, ErrBadDescriptor)
	}
	return nil
}

func requireTag(pool Pool, index uint16, tag uint8) error {
	if int(index) >= len(pool) || pool[index] == nil {
		return fmt.Errorf("index %d: %w", index, ErrBadIndex)
	}
	if pool[index].Tag() != tag {
		return fmt.Errorf("index %d: want tag %d, got %d: %w", index, tag, pool[index].Tag(), ErrTagMismatch)
	}
	return nil
}

func getUtf8(pool Pool, index uint16) (string, error) {
	if int(index) >= len(pool) || pool[index] == nil {
		return "", fmt.Errorf("index %d: %w", index, ErrBadIndex)
	}
	u, ok := pool[index].(Utf8Info)
	if !ok {
		return "", fmt.Errorf("index %d: want Utf8, got tag %d: %w", index, pool[index].Tag(), ErrTagMismatch)
	}
	return u.Value, nil
}

// GetUtf8 returns the Utf8 string at index (spec.md §4.6).
func GetUtf8(pool Pool, index uint16) (string, error) {
	return getUtf8(pool, index)
}

// GetClassName dereferences a Class entry's name_index and returns the
// name it points to.
func GetClassName(pool Pool, classIndex uint16) (string, error) {
	if int(classIndex) >= len(pool) || pool[classIndex] == nil {
		return "", fmt.Errorf("index %d: %w", classIndex, ErrBadIndex)
	}
	c, ok := pool[classIndex].(ClassInfo)
	if !ok {
		return "", fmt.Errorf("index %d: want Class, got tag %d: %w", classIndex, pool[classIndex].Tag(), ErrTagMismatch)
	}
	return getUtf8(pool, c.NameIndex)
}

// GetInteger, GetLong, GetFloat, GetDouble, GetString are typed pool
// accessors with the expected tag (spec.md §4.6).

func GetInteger(pool Pool, index uint16) (int32, error) {
	v, err := requireEntry[IntegerInfo](pool, index, TagInteger)
	if err != nil {
		return 0, err
	}
	return v.Value, nil
}

func GetLong(pool Pool, index uint16) (int64, error) {
	v, err := requireEntry[LongInfo](pool, index, TagLong)
	if err != nil {
		return 0, err
	}
	return v.Value, nil
}

func GetFloat(pool Pool, index uint16) (float32, error) {
	v, err := requireEntry[FloatInfo](pool, index, TagFloat)
	if err != nil {
		return 0, err
	}
	return v.Value, nil
}

func GetDouble(pool Pool, index uint16) (float64, error) {
	v, err := requireEntry[DoubleInfo](pool, index, TagDouble)
	if err != nil {
		return 0, err
	}
	return v.Value, nil
}

func GetString(pool Pool, index uint16) (string, error) {
	v, err := requireEntry[StringInfo](pool, index, TagString)
	if err != nil {
		return "", err
	}
	return getUtf8(pool, v.StringIndex)
}

func requireEntry[T Entry](pool Pool, index uint16, tag uint8) (T, error) {
	var zero T
	if int(index) >= len(pool) || pool[index] == nil {
		return zero, fmt.Errorf("index %d: %w", index, ErrBadIndex)
	}
	v, ok := pool[index].(T)
	if !ok {
		return zero, fmt.Errorf("index %d: want tag %d, got %d: %w", index, tag, pool[index].Tag(), ErrTagMismatch)
	}
	return v, nil
}

// nameAndType resolves a NameAndType entry to (name, descriptor).
func nameAndType(pool Pool, index uint16) (name, descriptor string, err error) {
	nat, ok := pool[index].(NameAndTypeInfo)
	if !ok {
		return "", "", fmt.Errorf("index %d: want NameAndType: %w", index, ErrTagMismatch)
	}
	name, err = getUtf8(pool, nat.NameIndex)
	if err != nil {
		return "", "", err
	}
	descriptor, err = getUtf8(pool, nat.DescriptorIndex)
	if err != nil {
		return "", "", err
	}
	return name, descriptor, nil
}

// MemberRef is the resolved (class, name, descriptor) triple shared by
// Fieldref, Methodref and InterfaceMethodref entries.
type MemberRef struct {
	ClassName  string
	Name       string
	Descriptor string
}

// ResolveFieldref resolves a CONSTANT_Fieldref entry.
func ResolveFieldref(pool Pool, index uint16) (MemberRef, error) {
	e, err := requireEntry[FieldrefInfo](pool, index, TagFieldref)
	if err != nil {
		return MemberRef{}, err
	}
	return resolveMemberRef(pool, e.ClassIndex, e.NameAndTypeIndex)
}

// ResolveMethodref resolves a CONSTANT_Methodref entry.
func ResolveMethodref(pool Pool, index uint16) (MemberRef, error) {
	e, err := requireEntry[MethodrefInfo](pool, index, TagMethodref)
	if err != nil {
		return MemberRef{}, err
	}
	return resolveMemberRef(pool, e.ClassIndex, e.NameAndTypeIndex)
}

// ResolveInterfaceMethodref resolves a CONSTANT_InterfaceMethodref entry.
func ResolveInterfaceMethodref(pool Pool, index uint16) (MemberRef, error) {
	e, err := requireEntry[InterfaceMethodrefInfo](pool, index, TagInterfaceMethodref)
	if err != nil {
		return MemberRef{}, err
	}
	return resolveMemberRef(pool, e.ClassIndex, e.NameAndTypeIndex)
}

func resolveMemberRef(pool Pool, classIndex, natIndex uint16) (MemberRef, error) {
	className, err := GetClassName(pool, classIndex)
	if err != nil {
		return MemberRef{}, fmt.Errorf("resolving class: %w", err)
	}
	name, descriptor, err := nameAndType(pool, natIndex)
	if err != nil {
		return MemberRef{}, fmt.Errorf("resolving name and type: %w", err)
	}
	return MemberRef{ClassName: className, Name: name, Descriptor: descriptor}, nil
}
