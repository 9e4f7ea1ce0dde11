//go:build gofuzz

package classfile

import "bytes"

// Fuzz exercises the full decode+crosscheck pass for go-fuzz, the same
// shape saferwall-pe/fuzz.go uses for its own binary-format parser.
func Fuzz(data []byte) int {
	cf, err := Parse(bytes.NewReader(data))
	if err != nil {
		return 0
	}
	if _, err := cf.ClassName(); err != nil {
		return 0
	}
	return 1
}
