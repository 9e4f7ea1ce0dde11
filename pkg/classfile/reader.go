package classfile

import (
	"fmt"
	"io"
)

// Reader wraps an io.Reader with the big-endian fixed-width primitives the
// class-file format is built from (spec.md §4.1). Every method returns
// ErrEOF (wrapped) on a short read so callers can propagate a single
// sentinel up through arbitrarily deep parse helpers.
type Reader struct {
	r io.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (r *Reader) readN(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("reading %d bytes: %w", n, ErrEOF)
		}
		return nil, fmt.Errorf("reading %d bytes: %w", n, err)
	}
	return buf, nil
}

// U1 reads one unsigned byte.
func (r *Reader) U1() (uint8, error) {
	b, err := r.readN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U2 reads a big-endian uint16.
func (r *Reader) U2() (uint16, error) {
	b, err := r.readN(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// U4 reads a big-endian uint32.
func (r *Reader) U4() (uint32, error) {
	b, err := r.readN(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// Bytes reads exactly n bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	return r.readN(n)
}

// UTF8 reads n bytes and decodes them as modified UTF-8. The JVM's modified
// form differs from standard UTF-8 only in how it encodes the NUL character
// and supplementary-plane code points; neither matters for the ASCII-heavy
// identifiers and descriptors this toolkit parses, so the bytes are taken
// as-is.
func (r *Reader) UTF8(n int) (string, error) {
	b, err := r.readN(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
