//go:build noos

package osd

import (
	"embedded/mmio"
	"unsafe"
)

var regs *registers = (*registers)(unsafe.Pointer(baseAddr))

const baseAddr uintptr = 0xffff_fe00

type registers struct {
	enable mmio.U32
	_      [63]uint32
	chars  [Cols * Rows]mmio.U32
}

const charInverse = 1 << 8

type charRAM struct{}

// MMIO returns the overlay's Display.
func MMIO() Display { return charRAM{} }

func (charRAM) StoreChar(offset int, c byte, inverse bool) {
	v := uint32(c)
	if inverse {
		v |= charInverse
	}
	regs.chars[offset].Store(v)
}

func (charRAM) Enable(on bool) {
	var v uint32
	if on {
		v = 1
	}
	regs.enable.Store(v)
}
