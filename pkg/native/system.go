package native

import (
	"fmt"
	"io"
)

// PrintStream is the native object behind java/io/PrintStream, grounded on
// daimatz-gojvm/pkg/native/system.go's own PrintStream — generalized from
// its single variadic Println into the overload set a real launcher run
// actually dispatches through (println(String), println(int), println(long), println()).
type PrintStream struct {
	Writer io.Writer
}

func (ps *PrintStream) printlnString(s string) { fmt.Fprintln(ps.Writer, s) }
func (ps *PrintStream) printlnInt(v int32)     { fmt.Fprintln(ps.Writer, v) }
func (ps *PrintStream) printlnLong(v int64)    { fmt.Fprintln(ps.Writer, v) }
func (ps *PrintStream) println()               { fmt.Fprintln(ps.Writer) }

// NewDefaultRegistry builds the Registry this toolkit's launcher uses:
// java/lang/System.out resolves to a PrintStream wrapping stdout, and
// java/io/PrintStream carries the println overloads a Hello-world main
// method needs (spec.md §8 scenario 2).
func NewDefaultRegistry(stdout io.Writer) *Registry {
	r := NewRegistry()
	out := &PrintStream{Writer: stdout}

	r.RegisterField("java/lang/System", "out", "Ljava/io/PrintStream;", func() (Value, error) {
		return Ref(out), nil
	})

	r.RegisterMethod("java/io/PrintStream", "println", "(Ljava/lang/String;)V", func(args []Value) (Value, error) {
		ps, err := receiver(args)
		if err != nil {
			return Value{}, err
		}
		s, _ := args[1].Ref.(string)
		ps.printlnString(s)
		return Value{}, nil
	})
	r.RegisterMethod("java/io/PrintStream", "println", "(I)V", func(args []Value) (Value, error) {
		ps, err := receiver(args)
		if err != nil {
			return Value{}, err
		}
		ps.printlnInt(args[1].Int)
		return Value{}, nil
	})
	r.RegisterMethod("java/io/PrintStream", "println", "(J)V", func(args []Value) (Value, error) {
		ps, err := receiver(args)
		if err != nil {
			return Value{}, err
		}
		ps.printlnLong(args[1].Long)
		return Value{}, nil
	})
	r.RegisterMethod("java/io/PrintStream", "println", "()V", func(args []Value) (Value, error) {
		ps, err := receiver(args)
		if err != nil {
			return Value{}, err
		}
		ps.println()
		return Value{}, nil
	})

	return r
}

func receiver(args []Value) (*PrintStream, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("println: missing receiver: %w", ErrUnresolvedNative)
	}
	ps, ok := args[0].Ref.(*PrintStream)
	if !ok {
		return nil, fmt.Errorf("println: receiver is not a PrintStream: %w", ErrUnresolvedNative)
	}
	return ps, nil
}
