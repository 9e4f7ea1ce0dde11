package vmrun

import (
	"bytes"
	"testing"

	"github.com/classvm/classvm/internal/testclass"
	"github.com/classvm/classvm/pkg/classfile"
	"github.com/classvm/classvm/pkg/loader"
	"github.com/classvm/classvm/pkg/native"
)

func TestStepDupX2Category2(t *testing.T) {
	vm := testVM()
	f := newTestFrame(4, 0, nil)
	f.Push(LongVal(9)) // value2 (cat2), bottom
	f.Push(IntVal(1))  // value1 (cat1), top
	if _, _, err := vm.step(f, opDupX2); err != nil {
		t.Fatalf("dup_x2: %v", err)
	}
	// form 2: ..., value2(cat2), value1(cat1) -> ..., value1, value2, value1
	if got := f.Pop(); got.Int != 1 {
		t.Fatalf("top = %v, want int 1", got)
	}
	if got := f.Pop(); got.Long != 9 {
		t.Fatalf("middle = %v, want long 9", got)
	}
	if got := f.Pop(); got.Int != 1 {
		t.Fatalf("bottom = %v, want int 1", got)
	}
}

func TestStepDup2X1Category2(t *testing.T) {
	vm := testVM()
	f := newTestFrame(4, 0, nil)
	f.Push(IntVal(1))
	f.Push(LongVal(9))
	if _, _, err := vm.step(f, opDup2X1); err != nil {
		t.Fatalf("dup2_x1: %v", err)
	}
	// form 2: ..., value2(cat1), value1(cat2) -> ..., value1, value2, value1
	if got := f.Pop(); got.Long != 9 {
		t.Fatalf("top = %v, want long 9", got)
	}
	if got := f.Pop(); got.Int != 1 {
		t.Fatalf("middle = %v, want int 1", got)
	}
	if got := f.Pop(); got.Long != 9 {
		t.Fatalf("bottom = %v, want long 9", got)
	}
}

func TestStepDup2X2AllCategory2(t *testing.T) {
	vm := testVM()
	f := newTestFrame(4, 0, nil)
	f.Push(LongVal(1))
	f.Push(LongVal(2))
	if _, _, err := vm.step(f, opDup2X2); err != nil {
		t.Fatalf("dup2_x2: %v", err)
	}
	// form 4: ..., cat2(1), cat2(2) -> ..., cat2(2), cat2(1), cat2(2)
	got := []int64{f.Pop().Long, f.Pop().Long, f.Pop().Long}
	want := []int64{2, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dup2_x2 stack = %v, want %v", got, want)
		}
	}
}

func TestRunLookupswitch(t *testing.T) {
	vm := testVM()
	// lookupswitch at pc=2: opcode at index 2, operand area starts at 3,
	// padded to 4. header: default(4) npairs(4) = 8 bytes at [4,12), then
	// npairs pairs of (key,offset) 8 bytes each at [12, 12+8*npairs).
	code := make([]byte, 12+8*2)
	code[0], code[1] = 0x10, 7 // bipush 7 -> switch key
	code[2] = 0xab             // lookupswitch
	putBE32(code[4:], 100)     // default offset (unused)
	putBE32(code[8:], 2)       // npairs
	putBE32(code[12:], 3)      // pair0 key=3
	putBE32(code[16:], 999)    // pair0 offset (unused)
	putBE32(code[20:], 7)      // pair1 key=7
	// branch target lands on an appended iconst_1; ireturn
	extra := []byte{0x04, 0xac} // iconst_1; ireturn
	branchTarget := len(code)
	code = append(code, extra...)
	putBE32(code[24:], int32(branchTarget-2)) // branchPC(2)+offset = branchTarget

	f := newTestFrame(4, 0, code)
	result, err := vm.run(f)
	if err != nil {
		t.Fatalf("run() = %v, want nil", err)
	}
	if result.Int != 1 {
		t.Fatalf("result = %d, want 1 (key=7 pair matched)", result.Int)
	}
}

func TestRunLookupswitchDefault(t *testing.T) {
	vm := testVM()
	code := make([]byte, 12+8*1)
	code[0], code[1] = 0x10, 42 // bipush 42, no pair matches
	code[2] = 0xab
	putBE32(code[8:], 1)
	putBE32(code[12:], 1) // pair0 key=1
	putBE32(code[16:], 999)
	extra := []byte{0x03, 0xac} // iconst_0; ireturn
	branchTarget := len(code)
	code = append(code, extra...)
	putBE32(code[4:], int32(branchTarget-2)) // default offset

	f := newTestFrame(4, 0, code)
	result, err := vm.run(f)
	if err != nil {
		t.Fatalf("run() = %v, want nil", err)
	}
	if result.Int != 0 {
		t.Fatalf("result = %d, want 0 (default branch)", result.Int)
	}
}

func TestArrayStoreLoadRoundTrip(t *testing.T) {
	vm := testVM()
	f := newTestFrame(8, 0, nil)
	arr, err := newPrimitiveArray(10, 3) // atype 10 = int
	if err != nil {
		t.Fatalf("newPrimitiveArray: %v", err)
	}
	f.Push(RefVal(arr))
	f.Push(IntVal(1))
	f.Push(IntVal(42))
	if _, _, err := vm.step(f, 0x4f); err != nil { // iastore
		t.Fatalf("iastore: %v", err)
	}
	f.Push(RefVal(arr))
	f.Push(IntVal(1))
	if _, _, err := vm.step(f, 0x2e); err != nil { // iaload
		t.Fatalf("iaload: %v", err)
	}
	if got := f.Pop(); got.Int != 42 {
		t.Fatalf("iaload result = %d, want 42", got.Int)
	}
}

func TestArrayLoadOutOfBounds(t *testing.T) {
	vm := testVM()
	f := newTestFrame(8, 0, nil)
	arr, err := newPrimitiveArray(10, 2)
	if err != nil {
		t.Fatalf("newPrimitiveArray: %v", err)
	}
	f.Push(RefVal(arr))
	f.Push(IntVal(5))
	if _, _, err := vm.step(f, 0x2e); err == nil {
		t.Fatal("iaload out of bounds = nil error, want one")
	}
}

func TestStepNumericConversions(t *testing.T) {
	vm := testVM()
	cases := []struct {
		name string
		op   byte
		push Value
		want func(Value) bool
	}{
		{"l2i", opL2i, LongVal(1 << 40), func(v Value) bool { return v.Kind == KindInt }},
		{"f2d", opF2d, FloatVal(1.5), func(v Value) bool { return v.Kind == KindDouble && v.Double == 1.5 }},
		{"d2l", opD2l, DoubleVal(3.9), func(v Value) bool { return v.Kind == KindLong && v.Long == 3 }},
		{"i2b", opI2b, IntVal(300), func(v Value) bool { return v.Kind == KindInt && v.Int == 44 }},
		{"i2c", opI2c, IntVal(-1), func(v Value) bool { return v.Kind == KindInt && v.Int == 0xffff }},
	}
	for _, c := range cases {
		f := newTestFrame(4, 0, nil)
		f.Push(c.push)
		if _, _, err := vm.step(f, c.op); err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got := f.Pop(); !c.want(got) {
			t.Fatalf("%s result = %v, did not satisfy expectation", c.name, got)
		}
	}
}

func TestExecWideLoadStore(t *testing.T) {
	vm := testVM()
	// wide istore 1; wide iload 1 — PC is positioned past each 'wide' byte
	// itself before execWide runs, matching step's dispatch of opWide.
	f := newTestFrame(4, 300, []byte{opWide, opIstore, 0x00, 0x01, opWide, opIload, 0x00, 0x01})
	f.Push(IntVal(77))
	f.PC = 1
	if err := vm.execWide(f); err != nil {
		t.Fatalf("wide istore: %v", err)
	}
	f.PC = 5
	if err := vm.execWide(f); err != nil {
		t.Fatalf("wide iload: %v", err)
	}
	if got := f.Pop(); got.Int != 77 {
		t.Fatalf("wide round trip = %d, want 77", got.Int)
	}
}

func TestExecWideIinc(t *testing.T) {
	vm := testVM()
	// wide iinc 1, 5
	f := newTestFrame(4, 300, []byte{opWide, opIinc, 0x00, 0x01, 0x00, 0x05})
	f.LocalStore(1, IntVal(10))
	f.PC = 1
	if err := vm.execWide(f); err != nil {
		t.Fatalf("wide iinc: %v", err)
	}
	if got := f.LocalLoad(1); got.Int != 15 {
		t.Fatalf("wide iinc result = %d, want 15", got.Int)
	}
}

func TestBuildMultiarrayDimensions(t *testing.T) {
	arr, err := buildMultiarray([]int32{2, 3})
	if err != nil {
		t.Fatalf("buildMultiarray: %v", err)
	}
	if len(arr.data) != 2 {
		t.Fatalf("outer dimension = %d, want 2", len(arr.data))
	}
	inner, ok := arr.data[0].Ref.(*jarray)
	if !ok {
		t.Fatalf("outer element is not an array: %v", arr.data[0])
	}
	if len(inner.data) != 3 {
		t.Fatalf("inner dimension = %d, want 3", len(inner.data))
	}
}

// TestExecuteObjectFieldsAndStaticInvoke builds a class with an instance
// field plus a static helper method, exercising new/putfield/getfield and a
// non-native invokestatic's recursive frame dispatch end to end (spec.md §4.7
// and §9's resolveMethod completion for user-defined statics).
func TestExecuteObjectFieldsAndStaticInvoke(t *testing.T) {
	dir := t.TempDir()

	object := testclass.New(52, 0)
	object.SetThisClass(object.AddClassByName("java/lang/Object"))
	writeClass(t, dir, "java/lang/Object", object)

	b := testclass.New(52, 0)
	thisClass := b.AddClassByName("pkg/Box")
	b.SetThisClass(thisClass)
	b.SetSuperClass(b.AddClassByName("java/lang/Object"))
	b.AddField(classfile.AccPublic, "value", "I")

	fieldref := b.AddFieldrefByName("pkg/Box", "value", "I")

	// static int make() { Box b = new Box(); b.value = 9; return b.value; }
	code := []byte{
		0xbb, byte(thisClass >> 8), byte(thisClass), // new pkg/Box
		0x4c,       // astore_1
		0x2b,       // aload_1
		0x10, 9,    // bipush 9
		0xb5, byte(fieldref >> 8), byte(fieldref), // putfield value
		0x2b, // aload_1
		0xb4, byte(fieldref >> 8), byte(fieldref), // getfield value
		0xac, // ireturn
	}
	makeMethod := b.AddMethod(classfile.AccPublic|classfile.AccStatic, "make", "()I")
	makeMethod.SetCode(3, 2, code)

	// static int run() { return make(); }
	makeRef := b.AddMethodrefByName("pkg/Box", "make", "()I")
	runCode := []byte{
		0xb8, byte(makeRef >> 8), byte(makeRef), // invokestatic make
		0xac, // ireturn
	}
	runM := b.AddMethod(classfile.AccPublic|classfile.AccStatic, "run", "()I")
	runM.SetCode(1, 0, runCode)

	writeClass(t, dir, "pkg/Box", b)

	ld := loader.NewDirClassLoader([]string{dir}, nil)
	vm := New(ld, native.NewDefaultRegistry(&bytes.Buffer{}), nil)

	cls, err := ld.Load("pkg/Box")
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}
	runMethod := cls.FindMethod("run", "()I")
	if runMethod == nil {
		t.Fatal("run method not found")
	}
	result, err := vm.invokeMethod(cls, runMethod, nil)
	if err != nil {
		t.Fatalf("invokeMethod(run) = %v, want nil", err)
	}
	if result.Int != 9 {
		t.Fatalf("run() = %d, want 9", result.Int)
	}
}
