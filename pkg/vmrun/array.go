package vmrun

import "fmt"

// jarray is the interpreter's array object: a contiguous, zero-initialized
// buffer of Values tagged with the element type character that produced it
// (spec.md §4.10's "each allocates a zero-initialized contiguous buffer
// typed by the atype byte"). Object arrays (anewarray) and primitive
// arrays (newarray) share this representation; elemType distinguishes them
// only for diagnostics, since Value is already a tagged union.
type jarray struct {
	elemType byte
	data     []Value
}

func newPrimitiveArray(atype uint8, count int32) (*jarray, error) {
	if count < 0 {
		return nil, fmt.Errorf("newarray: negative length %d", count)
	}
	var elemType byte
	var zero Value
	switch atype {
	case atBoolean, atByte:
		elemType, zero = 'B', IntVal(0)
	case atChar:
		elemType, zero = 'C', IntVal(0)
	case atShort:
		elemType, zero = 'S', IntVal(0)
	case atInt:
		elemType, zero = 'I', IntVal(0)
	case atLong:
		elemType, zero = 'J', LongVal(0)
	case atFloat:
		elemType, zero = 'F', FloatVal(0)
	case atDouble:
		elemType, zero = 'D', DoubleVal(0)
	default:
		return nil, fmt.Errorf("newarray: unknown atype %d", atype)
	}
	data := make([]Value, count)
	for i := range data {
		data[i] = zero
	}
	return &jarray{elemType: elemType, data: data}, nil
}

func newRefArray(count int32) (*jarray, error) {
	if count < 0 {
		return nil, fmt.Errorf("anewarray: negative length %d", count)
	}
	data := make([]Value, count)
	for i := range data {
		data[i] = NullVal()
	}
	return &jarray{elemType: 'L', data: data}, nil
}

func asArray(v Value) (*jarray, error) {
	arr, ok := v.Ref.(*jarray)
	if !ok {
		return nil, fmt.Errorf("expected an array reference, got %v", v)
	}
	return arr, nil
}

func checkBounds(arr *jarray, index int32) error {
	if index < 0 || int(index) >= len(arr.data) {
		return fmt.Errorf("array index %d out of bounds for length %d", index, len(arr.data))
	}
	return nil
}
