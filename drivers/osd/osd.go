// Package osd draws text on the on-screen display overlaid on the host's
// video output.
//
// The overlay is a character generator with a CP437 font. Strings are
// encoded to it by Font, so e.g. '►' can be used directly.
package osd

import (
	"golang.org/x/text/encoding"

	"github.com/ocmsx/ctrlrom/debug"
)

const (
	Cols = 32
	Rows = 16
)

// CP437 glyphs used for drawing
const (
	glyphFull  = 0xdb
	glyphLight = 0xb0
)

// Display is the overlay's character memory.
type Display interface {
	StoreChar(offset int, c byte, inverse bool)
	Enable(on bool)
}

type Screen struct {
	disp    Display
	enc     *encoding.Encoder
	cursor  int
	visible bool
}

func New(disp Display) *Screen {
	return &Screen{
		disp: disp,
		enc:  Font.NewEncoder(),
	}
}

func (s *Screen) Clear() {
	for i := 0; i < Cols*Rows; i++ {
		s.disp.StoreChar(i, ' ', false)
	}
	s.cursor = 0
}

// Show enables or disables the overlay. Enabling it also makes the overlay
// resynchronize to the host's video timing.
func (s *Screen) Show(on bool) {
	s.visible = on
	s.disp.Enable(on)
}

func (s *Screen) Visible() bool { return s.visible }

// Putc writes an already encoded character at the cursor. The cursor wraps
// to the top after the last row.
func (s *Screen) Putc(c byte) {
	if c == '\n' {
		s.cursor += Cols - s.cursor%Cols
	} else {
		s.disp.StoreChar(s.cursor, c, false)
		s.cursor++
	}
	s.cursor %= Cols * Rows
}

func (s *Screen) Write(p []byte) (n int, err error) {
	b, err := s.enc.Bytes(p)
	if err != nil {
		return 0, err
	}
	for _, c := range b {
		s.Putc(c)
	}
	return len(p), nil
}

func (s *Screen) Puts(str string) {
	_, err := s.Write([]byte(str))
	debug.AssertErrNil(err)
}

// SetRow replaces row with text, padded or truncated to the screen's width.
func (s *Screen) SetRow(row int, text string, inverse bool) {
	if row < 0 || row >= Rows {
		return
	}
	b, _ := s.enc.String(text)
	for i := 0; i < Cols; i++ {
		c := byte(' ')
		if i < len(b) {
			c = b[i]
		}
		s.disp.StoreChar(row*Cols+i, c, inverse)
	}
}

// ProgressBar draws a bar on the cursor's row, full when step reaches
// 1<<bits.
func (s *Screen) ProgressBar(step, bits int) {
	filled := Cols
	if bits > 0 {
		filled = min(Cols, max(0, step)*Cols>>bits)
	}
	row := s.cursor / Cols
	for i := 0; i < Cols; i++ {
		c := byte(glyphLight)
		if i < filled {
			c = glyphFull
		}
		s.disp.StoreChar(row*Cols+i, c, false)
	}
}
