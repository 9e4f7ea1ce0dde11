package classfile

import (
	"bytes"
	"errors"
	"testing"
)

func TestReaderPrimitives(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x01, 0xCA, 0xFE, 0x00, 0x00, 0x01, 0x02, 'h', 'i'}))

	u1, err := r.U1()
	if err != nil || u1 != 0x01 {
		t.Fatalf("U1() = %v, %v; want 0x01, nil", u1, err)
	}
	u2, err := r.U2()
	if err != nil || u2 != 0xCAFE {
		t.Fatalf("U2() = %v, %v; want 0xCAFE, nil", u2, err)
	}
	u4, err := r.U4()
	if err != nil || u4 != 0x00000102 {
		t.Fatalf("U4() = %v, %v; want 0x102, nil", u4, err)
	}
	s, err := r.UTF8(2)
	if err != nil || s != "hi" {
		t.Fatalf("UTF8(2) = %q, %v; want hi, nil", s, err)
	}
}

func TestReaderBytesZero(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	b, err := r.Bytes(0)
	if err != nil || b != nil {
		t.Fatalf("Bytes(0) = %v, %v; want nil, nil", b, err)
	}
}

func TestReaderShortReadIsErrEOF(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x01}))
	if _, err := r.U4(); !errors.Is(err, ErrEOF) {
		t.Fatalf("U4() on short input: err = %v, want wrapping ErrEOF", err)
	}
}

func TestReaderEmptyIsErrEOF(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	if _, err := r.U1(); !errors.Is(err, ErrEOF) {
		t.Fatalf("U1() on empty input: err = %v, want wrapping ErrEOF", err)
	}
}
