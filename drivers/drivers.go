// Package drivers holds the control ROM's device drivers and helpers
// shared between them.
package drivers

import "io"

// FIXME SystemWriter needs go:nosplit pragma
type SystemWriter func(int, []byte) int

// Returns a SystemWriter from an io.Writer for rtos.SetSystemWriter(). Writes
// to fd 1 and 2 are passed on, everything else is dropped.
func NewSystemWriter(w io.Writer) SystemWriter {
	return func(fd int, p []byte) int {
		if fd != 1 && fd != 2 {
			return len(p)
		}
		n, _ := w.Write(p)
		return n
	}
}
