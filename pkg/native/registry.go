package native

import "fmt"

// MethodHandler implements a native method body. For an instance method,
// args[0] is the receiver; static methods receive just their declared
// parameters. It pops nothing and pushes nothing itself — pkg/vmrun's
// dispatch loop handles the operand stack and calls this with already-
// popped arguments, then pushes the result if the descriptor isn't void.
type MethodHandler func(args []Value) (Value, error)

// FieldHandler implements a native static field read (spec.md §4.8's
// "delegate to the native surface and return its object reference" —
// this toolkit has no native instance fields).
type FieldHandler func() (Value, error)

type memberKey struct {
	class, name, descriptor string
}

// Registry is the (class,name,descriptor) → handler table spec.md §9 asks
// for, replacing java.c's single combined-string switch (SPEC_FULL.md §4).
type Registry struct {
	methods map[memberKey]MethodHandler
	fields  map[memberKey]FieldHandler
}

// NewRegistry returns an empty registry. Use NewDefaultRegistry for the
// standard java/lang/System + java/io/PrintStream bindings.
func NewRegistry() *Registry {
	return &Registry{
		methods: make(map[memberKey]MethodHandler),
		fields:  make(map[memberKey]FieldHandler),
	}
}

// RegisterMethod binds a native method body.
func (r *Registry) RegisterMethod(class, name, descriptor string, h MethodHandler) {
	r.methods[memberKey{class, name, descriptor}] = h
}

// RegisterField binds a native static field reader.
func (r *Registry) RegisterField(class, name, descriptor string, h FieldHandler) {
	r.fields[memberKey{class, name, descriptor}] = h
}

// InvokeMethod looks up and calls a native method, or ErrUnresolvedNative.
func (r *Registry) InvokeMethod(class, name, descriptor string, args []Value) (Value, error) {
	h, ok := r.methods[memberKey{class, name, descriptor}]
	if !ok {
		return Value{}, fmt.Errorf("%s.%s%s: %w", class, name, descriptor, ErrUnresolvedNative)
	}
	return h(args)
}

// ReadField looks up and calls a native static field reader, or
// ErrUnresolvedNative.
func (r *Registry) ReadField(class, name, descriptor string) (Value, error) {
	h, ok := r.fields[memberKey{class, name, descriptor}]
	if !ok {
		return Value{}, fmt.Errorf("%s.%s %s: %w", class, name, descriptor, ErrUnresolvedNative)
	}
	return h()
}
