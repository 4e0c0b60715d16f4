package osd

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// The overlay font has glyphs in the control range too, which the CP437
// charmap maps to control characters.
var lowGlyphs = [0x20]rune{
	0, '☺', '☻', '♥', '♦', '♣', '♠', '•', '◘', '○', '◙', '♂', '♀', '♪', '♫', '☼',
	'►', '◄', '↕', '‼', '¶', '§', '▬', '↨', '↑', '↓', '→', '←', '∟', '↔', '▲', '▼',
}

const rce = '?' // encoding replacement character

type fontCode struct{}

// Font is the encoding of the overlay's character generator. Newlines are
// passed through.
var Font encoding.Encoding = fontCode{}

func (fontCode) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: &decoder{}}
}

func (fontCode) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: &encoder{}}
}

func encodeRune(r rune) byte {
	if r == '\n' {
		return '\n'
	}
	for i, g := range lowGlyphs[1:] {
		if g == r {
			return byte(i + 1)
		}
	}
	if b, ok := charmap.CodePage437.EncodeRune(r); ok && b >= 0x20 {
		return b
	}
	return rce
}

func decodeByte(b byte) rune {
	if b != 0 && b < 0x20 && b != '\n' {
		return lowGlyphs[b]
	}
	return charmap.CodePage437.DecodeByte(b)
}

type decoder struct{ transform.NopResetter }

func (d *decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for _, c := range src {
		r := decodeByte(c)
		if utf8.RuneLen(r) > len(dst)-nDst {
			err = transform.ErrShortDst
			break
		}
		nDst += utf8.EncodeRune(dst[nDst:], r)
		nSrc++
	}
	return
}

type encoder struct{ transform.NopResetter }

func (e *encoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		if !atEOF && !utf8.FullRune(src[nSrc:]) {
			err = transform.ErrShortSrc
			break
		}
		if nDst >= len(dst) {
			err = transform.ErrShortDst
			break
		}
		r, size := utf8.DecodeRune(src[nSrc:])
		dst[nDst] = encodeRune(r)
		nDst++
		nSrc += size
	}
	return
}
