// Package testclass assembles synthetic .class file byte streams for tests
// across pkg/classfile, pkg/loader and pkg/vmrun, so each package's test
// suite doesn't need to hand-encode the same big-endian tables.
package testclass

import (
	"bytes"
	"encoding/binary"
)

// Builder accumulates a constant pool and member lists, then serializes
// them into a well-formed (or deliberately broken, via the Raw* escape
// hatches) class file image.
type Builder struct {
	minor, major           uint16
	pool                   bytes.Buffer
	poolCount              uint16 // next free slot, starting at 1
	accessFlags            uint16
	thisClass, superClass  uint16
	interfaces             []uint16
	fields, methods        []member
	attrs                  []attr
}

type member struct {
	accessFlags uint16
	nameIndex   uint16
	descIndex   uint16
	attrs       []attr
}

type attr struct {
	nameIndex uint16
	body      []byte
}

// New starts a builder targeting the given class file version.
func New(major, minor uint16) *Builder {
	return &Builder{major: major, minor: minor, poolCount: 1, accessFlags: 0x0021 /* public, super */}
}

func (b *Builder) u16(v uint16) []byte {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, v)
	return buf
}

func (b *Builder) u32(v uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	return buf
}

func (b *Builder) nextIndex() uint16 {
	idx := b.poolCount
	b.poolCount++
	return idx
}

// AddUtf8 appends a CONSTANT_Utf8 entry and returns its index.
func (b *Builder) AddUtf8(s string) uint16 {
	idx := b.nextIndex()
	b.pool.WriteByte(1)
	b.pool.Write(b.u16(uint16(len(s))))
	b.pool.WriteString(s)
	return idx
}

// AddClass appends a CONSTANT_Class entry naming the given Utf8 index.
func (b *Builder) AddClass(nameIndex uint16) uint16 {
	idx := b.nextIndex()
	b.pool.WriteByte(7)
	b.pool.Write(b.u16(nameIndex))
	return idx
}

// AddClassByName is a convenience for AddClass(AddUtf8(name)).
func (b *Builder) AddClassByName(name string) uint16 {
	return b.AddClass(b.AddUtf8(name))
}

// AddNameAndType appends a CONSTANT_NameAndType entry.
func (b *Builder) AddNameAndType(nameIndex, descIndex uint16) uint16 {
	idx := b.nextIndex()
	b.pool.WriteByte(12)
	b.pool.Write(b.u16(nameIndex))
	b.pool.Write(b.u16(descIndex))
	return idx
}

func (b *Builder) addRefPair(tag byte, classIndex, natIndex uint16) uint16 {
	idx := b.nextIndex()
	b.pool.WriteByte(tag)
	b.pool.Write(b.u16(classIndex))
	b.pool.Write(b.u16(natIndex))
	return idx
}

func (b *Builder) AddFieldref(classIndex, natIndex uint16) uint16 {
	return b.addRefPair(9, classIndex, natIndex)
}

func (b *Builder) AddMethodref(classIndex, natIndex uint16) uint16 {
	return b.addRefPair(10, classIndex, natIndex)
}

func (b *Builder) AddInterfaceMethodref(classIndex, natIndex uint16) uint16 {
	return b.addRefPair(11, classIndex, natIndex)
}

// AddMethodrefByName builds the Class/NameAndType/Utf8 chain for a
// Methodref in one call.
func (b *Builder) AddMethodrefByName(className, name, descriptor string) uint16 {
	c := b.AddClassByName(className)
	nat := b.AddNameAndType(b.AddUtf8(name), b.AddUtf8(descriptor))
	return b.AddMethodref(c, nat)
}

func (b *Builder) AddFieldrefByName(className, name, descriptor string) uint16 {
	c := b.AddClassByName(className)
	nat := b.AddNameAndType(b.AddUtf8(name), b.AddUtf8(descriptor))
	return b.AddFieldref(c, nat)
}

func (b *Builder) AddString(utf8Index uint16) uint16 {
	idx := b.nextIndex()
	b.pool.WriteByte(8)
	b.pool.Write(b.u16(utf8Index))
	return idx
}

func (b *Builder) AddStringByValue(s string) uint16 {
	return b.AddString(b.AddUtf8(s))
}

func (b *Builder) AddInteger(v int32) uint16 {
	idx := b.nextIndex()
	b.pool.WriteByte(3)
	b.pool.Write(b.u32(uint32(v)))
	return idx
}

func (b *Builder) AddFloat(bits uint32) uint16 {
	idx := b.nextIndex()
	b.pool.WriteByte(4)
	b.pool.Write(b.u32(bits))
	return idx
}

// AddLong appends a CONSTANT_Long entry, consuming two pool slots; the
// second is left untagged and must not be otherwise referenced.
func (b *Builder) AddLong(v int64) uint16 {
	idx := b.nextIndex()
	b.nextIndex() // reserve the trailing untagged slot
	b.pool.WriteByte(5)
	b.pool.Write(b.u32(uint32(v >> 32)))
	b.pool.Write(b.u32(uint32(v)))
	return idx
}

func (b *Builder) AddDouble(hi, lo uint32) uint16 {
	idx := b.nextIndex()
	b.nextIndex()
	b.pool.WriteByte(6)
	b.pool.Write(b.u32(hi))
	b.pool.Write(b.u32(lo))
	return idx
}

func (b *Builder) AddMethodHandle(kind uint8, refIndex uint16) uint16 {
	idx := b.nextIndex()
	b.pool.WriteByte(15)
	b.pool.WriteByte(kind)
	b.pool.Write(b.u16(refIndex))
	return idx
}

func (b *Builder) AddMethodType(descIndex uint16) uint16 {
	idx := b.nextIndex()
	b.pool.WriteByte(16)
	b.pool.Write(b.u16(descIndex))
	return idx
}

func (b *Builder) AddInvokeDynamic(bsmIndex, natIndex uint16) uint16 {
	idx := b.nextIndex()
	b.pool.WriteByte(18)
	b.pool.Write(b.u16(bsmIndex))
	b.pool.Write(b.u16(natIndex))
	return idx
}

// RawTag writes a pool entry with an arbitrary tag byte and payload,
// bypassing every helper above — used to synthesize the "unknown tag" and
// "bad reference" failure scenarios.
func (b *Builder) RawTag(tag byte, payload []byte) uint16 {
	idx := b.nextIndex()
	b.pool.WriteByte(tag)
	b.pool.Write(payload)
	return idx
}

// SetThisClass/SetSuperClass/AddInterface set the remaining class-level
// header fields.
func (b *Builder) SetThisClass(idx uint16)  { b.thisClass = idx }
func (b *Builder) SetSuperClass(idx uint16) { b.superClass = idx }
func (b *Builder) AddInterface(idx uint16)  { b.interfaces = append(b.interfaces, idx) }
func (b *Builder) SetAccessFlags(flags uint16) { b.accessFlags = flags }

// AddField appends a field_info entry.
func (b *Builder) AddField(accessFlags uint16, name, descriptor string) {
	b.fields = append(b.fields, member{
		accessFlags: accessFlags,
		nameIndex:   b.AddUtf8(name),
		descIndex:   b.AddUtf8(descriptor),
	})
}

// Method is a handle to an in-progress method_info, so callers can attach
// a Code attribute after building its bytecode (which may itself need pool
// indices allocated after the method's own name/descriptor).
type Method struct {
	b   *Builder
	idx int
}

// AddMethod appends a method_info entry with no attributes yet.
func (b *Builder) AddMethod(accessFlags uint16, name, descriptor string) Method {
	b.methods = append(b.methods, member{
		accessFlags: accessFlags,
		nameIndex:   b.AddUtf8(name),
		descIndex:   b.AddUtf8(descriptor),
	})
	return Method{b: b, idx: len(b.methods) - 1}
}

// SetCode attaches a Code attribute with the given bytecode to the method.
func (m Method) SetCode(maxStack, maxLocals uint16, code []byte) {
	nameIdx := m.b.AddUtf8("Code")
	var body bytes.Buffer
	body.Write(m.b.u16(maxStack))
	body.Write(m.b.u16(maxLocals))
	body.Write(m.b.u32(uint32(len(code))))
	body.Write(code)
	body.Write(m.b.u16(0)) // exception_table_length
	body.Write(m.b.u16(0)) // attributes_count
	m.b.methods[m.idx].attrs = append(m.b.methods[m.idx].attrs, attr{nameIndex: nameIdx, body: body.Bytes()})
}

func (b *Builder) writeAttrs(buf *bytes.Buffer, attrs []attr) {
	buf.Write(b.u16(uint16(len(attrs))))
	for _, a := range attrs {
		buf.Write(b.u16(a.nameIndex))
		buf.Write(b.u32(uint32(len(a.body))))
		buf.Write(a.body)
	}
}

func (b *Builder) writeMembers(buf *bytes.Buffer, members []member) {
	buf.Write(b.u16(uint16(len(members))))
	for _, m := range members {
		buf.Write(b.u16(m.accessFlags))
		buf.Write(b.u16(m.nameIndex))
		buf.Write(b.u16(m.descIndex))
		b.writeAttrs(buf, m.attrs)
	}
}

// Bytes serializes the full class file image.
func (b *Builder) Bytes() []byte {
	var buf bytes.Buffer
	buf.Write(b.u32(0xCAFEBABE))
	buf.Write(b.u16(b.minor))
	buf.Write(b.u16(b.major))
	buf.Write(b.u16(b.poolCount))
	buf.Write(b.pool.Bytes())
	buf.Write(b.u16(b.accessFlags))
	buf.Write(b.u16(b.thisClass))
	buf.Write(b.u16(b.superClass))
	buf.Write(b.u16(uint16(len(b.interfaces))))
	for _, iface := range b.interfaces {
		buf.Write(b.u16(iface))
	}
	b.writeMembers(&buf, b.fields)
	b.writeMembers(&buf, b.methods)
	b.writeAttrs(&buf, b.attrs)
	return buf.Bytes()
}
