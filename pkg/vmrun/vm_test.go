package vmrun

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/classvm/classvm/internal/testclass"
	"github.com/classvm/classvm/pkg/classfile"
	"github.com/classvm/classvm/pkg/loader"
	"github.com/classvm/classvm/pkg/native"
)

func writeClass(t *testing.T, dir, name string, b *testclass.Builder) {
	t.Helper()
	path := filepath.Join(dir, name+".class")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// TestExecuteHelloWorld builds a class whose main([Ljava/lang/String;)V
// pushes System.out and a string constant then invokes
// println(Ljava/lang/String;)V — the launcher scenario this toolkit's
// testable properties name explicitly (spec.md §8 scenario 2).
func TestExecuteHelloWorld(t *testing.T) {
	dir := t.TempDir()

	object := testclass.New(52, 0)
	object.SetThisClass(object.AddClassByName("java/lang/Object"))
	writeClass(t, dir, "java/lang/Object", object)

	b := testclass.New(52, 0)
	b.SetThisClass(b.AddClassByName("pkg/Hello"))
	b.SetSuperClass(b.AddClassByName("java/lang/Object"))

	fieldref := b.AddFieldrefByName("java/lang/System", "out", "Ljava/io/PrintStream;")
	str := b.AddStringByValue("hello")
	methodref := b.AddMethodrefByName("java/io/PrintStream", "println", "(Ljava/lang/String;)V")

	code := []byte{
		0xb2, byte(fieldref >> 8), byte(fieldref), // getstatic System.out
		0x12, byte(str), // ldc "hello"
		0xb6, byte(methodref >> 8), byte(methodref), // invokevirtual println
		0xb1, // return
	}
	main := b.AddMethod(classfile.AccPublic|classfile.AccStatic, "main", "([Ljava/lang/String;)V")
	main.SetCode(2, 1, code)
	writeClass(t, dir, "pkg/Hello", b)

	var stdout bytes.Buffer
	ld := loader.NewDirClassLoader([]string{dir}, nil)
	vm := New(ld, native.NewDefaultRegistry(&stdout), nil)

	if err := vm.Execute("pkg/Hello"); err != nil {
		t.Fatalf("Execute() = %v, want nil", err)
	}
	if got := stdout.String(); got != "hello\n" {
		t.Fatalf("stdout = %q, want %q", got, "hello\n")
	}
}

// TestExecuteNoMain checks the launcher's failure path for a class with no
// static main([Ljava/lang/String;)V (spec.md §6's "exit nonzero on load or
// resolution failure").
func TestExecuteNoMain(t *testing.T) {
	dir := t.TempDir()
	object := testclass.New(52, 0)
	object.SetThisClass(object.AddClassByName("java/lang/Object"))
	writeClass(t, dir, "java/lang/Object", object)

	b := testclass.New(52, 0)
	b.SetThisClass(b.AddClassByName("Empty"))
	b.SetSuperClass(b.AddClassByName("java/lang/Object"))
	writeClass(t, dir, "Empty", b)

	ld := loader.NewDirClassLoader([]string{dir}, nil)
	vm := New(ld, native.NewRegistry(), nil)
	if err := vm.Execute("Empty"); err == nil {
		t.Fatal("Execute() = nil, want an error for a class with no main method")
	}
}
