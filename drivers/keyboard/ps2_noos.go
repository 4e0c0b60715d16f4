//go:build noos

package keyboard

import (
	"embedded/mmio"
	"unsafe"
)

var regs *registers = (*registers)(unsafe.Pointer(baseAddr))

const baseAddr uintptr = 0xffff_ffe0

type registers struct {
	data mmio.U32
}

const (
	dataValid = 1 << 8
	dataMask  = 0xff
)

type ps2 struct{}

// PS2 returns the Source of the PS/2 keyboard port. Reading the data
// register pops the receive FIFO.
func PS2() Source { return ps2{} }

func (ps2) ReadScancode() (byte, bool) {
	v := regs.data.Load()
	if v&dataValid == 0 {
		return 0, false
	}
	return byte(v & dataMask), true
}
