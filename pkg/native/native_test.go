package native

import (
	"bytes"
	"errors"
	"testing"
)

func TestDefaultRegistrySystemOut(t *testing.T) {
	var buf bytes.Buffer
	r := NewDefaultRegistry(&buf)

	v, err := r.ReadField("java/lang/System", "out", "Ljava/io/PrintStream;")
	if err != nil {
		t.Fatalf("ReadField(System.out) = %v, want nil", err)
	}
	ps, ok := v.Ref.(*PrintStream)
	if !ok {
		t.Fatalf("ReadField(System.out).Ref = %T, want *PrintStream", v.Ref)
	}
	if ps.Writer != &buf {
		t.Error("PrintStream.Writer does not point at the registry's stdout")
	}
}

func TestDefaultRegistryPrintlnString(t *testing.T) {
	var buf bytes.Buffer
	r := NewDefaultRegistry(&buf)
	out, _ := r.ReadField("java/lang/System", "out", "Ljava/io/PrintStream;")

	_, err := r.InvokeMethod("java/io/PrintStream", "println", "(Ljava/lang/String;)V", []Value{out, Ref("hello")})
	if err != nil {
		t.Fatalf("InvokeMethod(println) = %v, want nil", err)
	}
	if got := buf.String(); got != "hello\n" {
		t.Fatalf("stdout = %q, want %q", got, "hello\n")
	}
}

func TestDefaultRegistryPrintlnInt(t *testing.T) {
	var buf bytes.Buffer
	r := NewDefaultRegistry(&buf)
	out, _ := r.ReadField("java/lang/System", "out", "Ljava/io/PrintStream;")

	if _, err := r.InvokeMethod("java/io/PrintStream", "println", "(I)V", []Value{out, Int(42)}); err != nil {
		t.Fatalf("InvokeMethod(println int) = %v, want nil", err)
	}
	if got := buf.String(); got != "42\n" {
		t.Fatalf("stdout = %q, want %q", got, "42\n")
	}
}

func TestRegistryUnresolved(t *testing.T) {
	r := NewRegistry()
	if _, err := r.InvokeMethod("pkg/Foo", "bar", "()V", nil); !errors.Is(err, ErrUnresolvedNative) {
		t.Fatalf("InvokeMethod() = %v, want ErrUnresolvedNative", err)
	}
	if _, err := r.ReadField("pkg/Foo", "bar", "I"); !errors.Is(err, ErrUnresolvedNative) {
		t.Fatalf("ReadField() = %v, want ErrUnresolvedNative", err)
	}
}
