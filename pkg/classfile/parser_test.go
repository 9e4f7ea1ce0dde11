package classfile

import (
	"bytes"
	"errors"
	"testing"

	"github.com/classvm/classvm/internal/testclass"
)

func TestParseMinimalClass(t *testing.T) {
	b := testclass.New(52, 0)
	this := b.AddClassByName("pkg/Hello")
	b.SetThisClass(this)
	b.SetSuperClass(b.AddClassByName("java/lang/Object"))
	m := b.AddMethod(AccPublic|AccStatic, "main", "([Ljava/lang/String;)V")
	m.SetCode(1, 1, []byte{0xb1}) // return

	cf, err := Parse(bytes.NewReader(b.Bytes()))
	if err != nil {
		t.Fatalf("Parse() = %v, want nil", err)
	}
	if cf.MajorVersion != 52 {
		t.Errorf("MajorVersion = %d, want 52", cf.MajorVersion)
	}
	name, err := cf.ClassName()
	if err != nil || name != "pkg/Hello" {
		t.Fatalf("ClassName() = %q, %v; want pkg/Hello, nil", name, err)
	}
	super, err := cf.SuperClassName()
	if err != nil || super != "java/lang/Object" {
		t.Fatalf("SuperClassName() = %q, %v; want java/lang/Object, nil", super, err)
	}
	if !cf.IsTopClass() {
		t.Error("IsTopClass() = false, want true")
	}
	method := cf.FindMethod("main", "([Ljava/lang/String;)V")
	if method == nil {
		t.Fatal("FindMethod() = nil, want the main method")
	}
	if method.Code == nil {
		t.Fatal("method.Code = nil, want a Code attribute")
	}
	if !bytes.Equal(method.Code.Code, []byte{0xb1}) {
		t.Errorf("method.Code.Code = %v, want [0xb1]", method.Code.Code)
	}
}

func TestParseBadMagic(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x00, 0, 0, 0, 52}
	_, err := Parse(bytes.NewReader(data))
	if !errors.Is(err, ErrBadMagic) {
		t.Fatalf("Parse() = %v, want ErrBadMagic", err)
	}
}

func TestParseTruncated(t *testing.T) {
	data := []byte{0xCA, 0xFE, 0xBA, 0xBE, 0x00}
	_, err := Parse(bytes.NewReader(data))
	if !errors.Is(err, ErrEOF) {
		t.Fatalf("Parse() = %v, want ErrEOF", err)
	}
}

func TestParseBadFieldDescriptor(t *testing.T) {
	b := testclass.New(52, 0)
	this := b.AddClassByName("pkg/Bad")
	b.SetThisClass(this)
	b.AddField(AccPublic, "count", "not-a-descriptor")

	_, err := Parse(bytes.NewReader(b.Bytes()))
	if !errors.Is(err, ErrBadDescriptor) {
		t.Fatalf("Parse() = %v, want ErrBadDescriptor", err)
	}
}

func TestParseThisClassWrongTag(t *testing.T) {
	b := testclass.New(52, 0)
	utf := b.AddUtf8("pkg/Bad")
	b.SetThisClass(utf) // points at a Utf8, not a Class
	_, err := Parse(bytes.NewReader(b.Bytes()))
	if !errors.Is(err, ErrTagMismatch) {
		t.Fatalf("Parse() = %v, want ErrTagMismatch", err)
	}
}

func TestParseInterfaceAndMethodLookup(t *testing.T) {
	b := testclass.New(52, 0)
	this := b.AddClassByName("pkg/Impl")
	b.SetThisClass(this)
	b.SetSuperClass(b.AddClassByName("java/lang/Object"))
	b.AddInterface(b.AddClassByName("pkg/Greeter"))
	m := b.AddMethod(AccPublic, "greet", "()Ljava/lang/String;")
	m.SetCode(2, 1, []byte{0x01, 0xb0}) // aconst_null, areturn

	cf, err := Parse(bytes.NewReader(b.Bytes()))
	if err != nil {
		t.Fatalf("Parse() = %v, want nil", err)
	}
	ifaces, err := cf.InterfaceNames()
	if err != nil || len(ifaces) != 1 || ifaces[0] != "pkg/Greeter" {
		t.Fatalf("InterfaceNames() = %v, %v; want [pkg/Greeter], nil", ifaces, err)
	}
	if cf.FindMethod("greet", "()Ljava/lang/String;") == nil {
		t.Fatal("FindMethod(greet) = nil")
	}
}

func TestParseMalformedCodeRejected(t *testing.T) {
	b := testclass.New(52, 0)
	b.SetThisClass(b.AddClassByName("pkg/BadCode"))
	m := b.AddMethod(AccStatic, "m", "()V")
	m.SetCode(1, 0, []byte{0x10}) // bipush with no operand byte

	_, err := Parse(bytes.NewReader(b.Bytes()))
	if !errors.Is(err, ErrCodeBadShape) {
		t.Fatalf("Parse() = %v, want ErrCodeBadShape", err)
	}
}
