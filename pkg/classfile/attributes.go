package classfile

import (
	"bytes"
	"fmt"
)

// Attribute is implemented by every recognized attribute variant plus
// UnknownAttr, the catch-all for anything skipped by declared length
// (spec.md §4.4).
type Attribute interface {
	attributeName() string
}

type ConstantValueAttr struct{ ValueIndex uint16 }
type ExceptionsAttr struct{ ExceptionIndexes []uint16 }
type SourceFileAttr struct{ SourceFileIndex uint16 }
type SyntheticAttr struct{}
type DeprecatedAttr struct{}

type InnerClassEntry struct {
	InnerClassInfoIndex, OuterClassInfoIndex, InnerNameIndex, InnerClassAccessFlags uint16
}
type InnerClassesAttr struct{ Classes []InnerClassEntry }

type LineNumberEntry struct{ StartPC, LineNumber uint16 }
type LineNumberTableAttr struct{ Entries []LineNumberEntry }

type LocalVariableEntry struct {
	StartPC, Length, NameIndex, DescriptorIndex, Index uint16
}
type LocalVariableTableAttr struct{ Entries []LocalVariableEntry }

type ExceptionHandler struct {
	StartPC, EndPC, HandlerPC, CatchType uint16
}

// CodeAttr owns a method's executable body: its bytecode, exception table,
// and nested attributes (spec.md §3).
type CodeAttr struct {
	MaxStack, MaxLocals uint16
	Code                []byte
	ExceptionTable      []ExceptionHandler
	Attributes          []Attribute
}

// UnknownAttr preserves the raw bytes of an attribute this toolkit doesn't
// interpret, consumed by declared length alone (spec.md §4.4).
type UnknownAttr struct {
	Name string
	Data []byte
}

func (ConstantValueAttr) attributeName() string     { return "ConstantValue" }
func (CodeAttr) attributeName() string               { return "Code" }
func (ExceptionsAttr) attributeName() string          { return "Exceptions" }
func (InnerClassesAttr) attributeName() string        { return "InnerClasses" }
func (SourceFileAttr) attributeName() string          { return "SourceFile" }
func (SyntheticAttr) attributeName() string           { return "Synthetic" }
func (DeprecatedAttr) attributeName() string          { return "Deprecated" }
func (LineNumberTableAttr) attributeName() string     { return "LineNumberTable" }
func (LocalVariableTableAttr) attributeName() string  { return "LocalVariableTable" }
func (u UnknownAttr) attributeName() string           { return u.Name }

// parseAttributes reads count (name_index:u2, length:u4, body[length])
// entries and dispatches each by the pool UTF-8 at name_index. Unrecognized
// names are kept as UnknownAttr, skipped by consuming exactly length bytes
// — length is authoritative even for attributes this toolkit does parse
// (spec.md §4.4).
func parseAttributes(r *Reader, pool Pool) ([]Attribute, error) {
	count, err := r.U2()
	if err != nil {
		return nil, fmt.Errorf("reading attributes_count: %w", err)
	}
	attrs := make([]Attribute, count)
	for i := uint16(0); i < count; i++ {
		nameIndex, err := r.U2()
		if err != nil {
			return nil, fmt.Errorf("attribute %d: reading name_index: %w", i, err)
		}
		length, err := r.U4()
		if err != nil {
			return nil, fmt.Errorf("attribute %d: reading length: %w", i, err)
		}
		body, err := r.Bytes(int(length))
		if err != nil {
			return nil, fmt.Errorf("attribute %d: reading body: %w", i, err)
		}
		name, err := GetUtf8(pool, nameIndex)
		if err != nil {
			return nil, fmt.Errorf("attribute %d: resolving name: %w", i, err)
		}
		attr, err := parseAttributeBody(name, pool, body)
		if err != nil {
			return nil, fmt.Errorf("attribute %d (%s): %w", i, name, err)
		}
		attrs[i] = attr
	}
	return attrs, nil
}

func parseAttributeBody(name string, pool Pool, body []byte) (Attribute, error) {
	br := NewReader(bytes.NewReader(body))
	switch name {
	case "ConstantValue":
		idx, err := br.U2()
		if err != nil {
			return nil, err
		}
		return ConstantValueAttr{ValueIndex: idx}, nil

	case "Code":
		return parseCode(br, pool)

	case "Exceptions":
		n, err := br.U2()
		if err != nil {
			return nil, err
		}
		idxs := make([]uint16, n)
		for i := range idxs {
			idxs[i], err = br.U2()
			if err != nil {
				return nil, err
			}
		}
		return ExceptionsAttr{ExceptionIndexes: idxs}, nil

	case "InnerClasses":
		n, err := br.U2()
		if err != nil {
			return nil, err
		}
		classes := make([]InnerClassEntry, n)
		for i := range classes {
			inner, outer, innerName, err := readTriple(br)
			if err != nil {
				return nil, err
			}
			flags, err := br.U2()
			if err != nil {
				return nil, err
			}
			classes[i] = InnerClassEntry{inner, outer, innerName, flags}
		}
		return InnerClassesAttr{Classes: classes}, nil

	case "SourceFile":
		idx, err := br.U2()
		if err != nil {
			return nil, err
		}
		return SourceFileAttr{SourceFileIndex: idx}, nil

	case "Synthetic":
		return SyntheticAttr{}, nil

	case "Deprecated":
		return DeprecatedAttr{}, nil

	case "LineNumberTable":
		n, err := br.U2()
		if err != nil {
			return nil, err
		}
		entries := make([]LineNumberEntry, n)
		for i := range entries {
			startPC, err := br.U2()
			if err != nil {
				return nil, err
			}
			line, err := br.U2()
			if err != nil {
				return nil, err
			}
			entries[i] = LineNumberEntry{StartPC: startPC, LineNumber: line}
		}
		return LineNumberTableAttr{Entries: entries}, nil

	case "LocalVariableTable":
		n, err := br.U2()
		if err != nil {
			return nil, err
		}
		entries := make([]LocalVariableEntry, n)
		for i := range entries {
			startPC, length, nameIdx, err := readTriple(br)
			if err != nil {
				return nil, err
			}
			descIdx, err := br.U2()
			if err != nil {
				return nil, err
			}
			index, err := br.U2()
			if err != nil {
				return nil, err
			}
			entries[i] = LocalVariableEntry{startPC, length, nameIdx, descIdx, index}
		}
		return LocalVariableTableAttr{Entries: entries}, nil

	default:
		return UnknownAttr{Name: name, Data: body}, nil
	}
}

func readTriple(r *Reader) (a, b, c uint16, err error) {
	if a, err = r.U2(); err != nil {
		return
	}
	if b, err = r.U2(); err != nil {
		return
	}
	c, err = r.U2()
	return
}

// parseCode decodes a Code attribute's fixed header, its bytecode (checked
// for structural validity per spec.md §4.5), its exception table, and its
// nested attributes, which go through the same parseAttributes dispatch as
// any other attribute list (so LineNumberTable and LocalVariableTable are
// decoded there, as is any other named kind).
func parseCode(r *Reader, pool Pool) (Attribute, error) {
	maxStack, err := r.U2()
	if err != nil {
		return nil, fmt.Errorf("reading max_stack: %w", err)
	}
	maxLocals, err := r.U2()
	if err != nil {
		return nil, fmt.Errorf("reading max_locals: %w", err)
	}
	codeLength, err := r.U4()
	if err != nil {
		return nil, fmt.Errorf("reading code_length: %w", err)
	}
	code, err := r.Bytes(int(codeLength))
	if err != nil {
		return nil, fmt.Errorf("reading code: %w", err)
	}
	if err := CheckCodeShape(code); err != nil {
		return nil, fmt.Errorf("checking code shape: %w", err)
	}

	excLen, err := r.U2()
	if err != nil {
		return nil, fmt.Errorf("reading exception_table_length: %w", err)
	}
	handlers := make([]ExceptionHandler, excLen)
	for i := range handlers {
		startPC, endPC, handlerPC, err := readTriple(r)
		if err != nil {
			return nil, fmt.Errorf("reading exception handler %d: %w", i, err)
		}
		catchType, err := r.U2()
		if err != nil {
			return nil, fmt.Errorf("reading exception handler %d: %w", i, err)
		}
		handlers[i] = ExceptionHandler{startPC, endPC, handlerPC, catchType}
	}

	attrs, err := parseAttributes(r, pool)
	if err != nil {
		return nil, fmt.Errorf("reading nested attributes: %w", err)
	}

	return CodeAttr{
		MaxStack:       maxStack,
		MaxLocals:      maxLocals,
		Code:           code,
		ExceptionTable: handlers,
		Attributes:     attrs,
	}, nil
}

// FindAttribute linear-searches attrs for one with the given name
// (spec.md §4.6's getAttribute).
func FindAttribute(attrs []Attribute, name string) Attribute {
	for _, a := range attrs {
		if a.attributeName() == name {
			return a
		}
	}
	return nil
}
