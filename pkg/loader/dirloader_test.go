package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/classvm/classvm/internal/testclass"
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

func objectClassBuilder() *testclass.Builder {
	b := testclass.New(52, 0)
	b.SetThisClass(b.AddClassByName("java/lang/Object"))
	return b
}

func TestLoadSimpleClass(t *testing.T) {
	dir := t.TempDir()
	writeClass(t, dir, "java/lang/Object", objectClassBuilder())

	b := testclass.New(52, 0)
	b.SetThisClass(b.AddClassByName("Hello"))
	b.SetSuperClass(b.AddClassByName("java/lang/Object"))
	writeClass(t, dir, "Hello", b)

	cl := NewDirClassLoader([]string{dir}, nil)
	cls, err := cl.Load("Hello")
	if err != nil {
		t.Fatalf("Load(Hello) = %v, want nil", err)
	}
	if cls.Name != "Hello" {
		t.Errorf("cls.Name = %q, want Hello", cls.Name)
	}
	// Hello's super is java/lang/Object, which makes Hello a top class: the
	// loader does not load or link java/lang/Object for it.
	if cls.Super != nil {
		t.Fatalf("cls.Super = %q, want nil for a top class", cls.Super.Name)
	}
	if !cls.IsTopClass() {
		t.Error("Hello.IsTopClass() = false, want true")
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeClass(t, dir, "java/lang/Object", objectClassBuilder())

	cl := NewDirClassLoader([]string{dir}, nil)
	c1, err := cl.Load("java/lang/Object")
	if err != nil {
		t.Fatalf("first Load() = %v", err)
	}
	c2, err := cl.Load("java/lang/Object")
	if err != nil {
		t.Fatalf("second Load() = %v", err)
	}
	if c1 != c2 {
		t.Error("Load() returned different instances on reload, want the same cached pointer")
	}
}

func TestLoadNotFound(t *testing.T) {
	cl := NewDirClassLoader([]string{t.TempDir()}, nil)
	_, err := cl.Load("does/not/Exist")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() = %v, want ErrNotFound", err)
	}
}

func TestLoadNameMismatch(t *testing.T) {
	dir := t.TempDir()
	b := testclass.New(52, 0)
	b.SetThisClass(b.AddClassByName("ActualName"))
	writeClass(t, dir, "RequestedName", b)

	cl := NewDirClassLoader([]string{dir}, nil)
	_, err := cl.Load("RequestedName")
	if !errors.Is(err, ErrNameMismatch) {
		t.Fatalf("Load() = %v, want ErrNameMismatch", err)
	}
}

func TestLoadCircularity(t *testing.T) {
	dir := t.TempDir()

	a := testclass.New(52, 0)
	a.SetThisClass(a.AddClassByName("A"))
	a.SetSuperClass(a.AddClassByName("B"))
	writeClass(t, dir, "A", a)

	b := testclass.New(52, 0)
	b.SetThisClass(b.AddClassByName("B"))
	b.SetSuperClass(b.AddClassByName("A"))
	writeClass(t, dir, "B", b)

	cl := NewDirClassLoader([]string{dir}, nil)
	_, err := cl.Load("A")
	if !errors.Is(err, ErrCircularity) {
		t.Fatalf("Load(A) = %v, want ErrCircularity", err)
	}
}

func TestLoadNoDuplicatesInSuperChain(t *testing.T) {
	dir := t.TempDir()
	writeClass(t, dir, "java/lang/Object", objectClassBuilder())

	mid := testclass.New(52, 0)
	mid.SetThisClass(mid.AddClassByName("Mid"))
	mid.SetSuperClass(mid.AddClassByName("java/lang/Object"))
	writeClass(t, dir, "Mid", mid)

	leaf := testclass.New(52, 0)
	leaf.SetThisClass(leaf.AddClassByName("Leaf"))
	leaf.SetSuperClass(leaf.AddClassByName("Mid"))
	writeClass(t, dir, "Leaf", leaf)

	cl := NewDirClassLoader([]string{dir}, nil)
	cls, err := cl.Load("Leaf")
	if err != nil {
		t.Fatalf("Load(Leaf) = %v, want nil", err)
	}
	names := cls.SuperChainNames()
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			t.Fatalf("SuperChainNames() = %v, has a duplicate %q", names, n)
		}
		seen[n] = true
	}
	// Mid is a top class, so the chain stops there.
	want := []string{"Leaf", "Mid"}
	if len(names) != len(want) {
		t.Fatalf("SuperChainNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("SuperChainNames() = %v, want %v", names, want)
		}
	}
}

func TestSplitClasspath(t *testing.T) {
	if got := SplitClasspath(""); len(got) != 1 || got[0] != "." {
		t.Fatalf("SplitClasspath(\"\") = %v, want [.]", got)
	}
	joined := "a" + string(os.PathListSeparator) + "b"
	got := SplitClasspath(joined)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("SplitClasspath(%q) = %v, want [a b]", joined, got)
	}
}
