package vmrun

import "testing"

func TestValueCategory(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want int
	}{
		{"int", IntVal(1), 1},
		{"float", FloatVal(1), 1},
		{"ref", RefVal("x"), 1},
		{"null", NullVal(), 1},
		{"long", LongVal(1), 2},
		{"double", DoubleVal(1), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Category(); got != tt.want {
				t.Errorf("Category() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParamKinds(t *testing.T) {
	params, ret := paramKinds("(ILjava/lang/String;[DJ)V")
	want := []byte{'I', 'L', '[', 'J'}
	if len(params) != len(want) {
		t.Fatalf("paramKinds() params = %v, want %v", string(params), string(want))
	}
	for i := range want {
		if params[i] != want[i] {
			t.Fatalf("paramKinds() params[%d] = %c, want %c", i, params[i], want[i])
		}
	}
	if ret != 'V' {
		t.Errorf("paramKinds() ret = %c, want V", ret)
	}
}

func TestLocalSlots(t *testing.T) {
	params, _ := paramKinds("(IJD)V")
	if got := localSlots(params); got != 5 { // I=1, J=2, D=2
		t.Errorf("localSlots() = %d, want 5", got)
	}
}

func TestParamKindsNoArgs(t *testing.T) {
	params, ret := paramKinds("()I")
	if len(params) != 0 {
		t.Fatalf("paramKinds() params = %v, want empty", params)
	}
	if ret != 'I' {
		t.Errorf("paramKinds() ret = %c, want I", ret)
	}
}
