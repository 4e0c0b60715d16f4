//go:build noos

package sdcard

import (
	"embedded/mmio"
	"unsafe"
)

var spiRegs *spiRegisters = (*spiRegisters)(unsafe.Pointer(spiBaseAddr))

const spiBaseAddr uintptr = 0xffff_ffd0

type spiRegisters struct {
	cs     mmio.U32
	data   mmio.U32
	status mmio.U32
}

const spiBusy = 1 << 15

type spiPort struct{}

// SPIPort returns the SD card slot's SPI controller.
func SPIPort() SPI { return spiPort{} }

func (spiPort) Select(on bool) {
	var v uint32
	if on {
		v = 1
	}
	spiRegs.cs.Store(v)
}

func (spiPort) Transfer(b byte) byte {
	spiRegs.data.Store(uint32(b))
	for spiRegs.status.Load()&spiBusy != 0 {
	}
	return byte(spiRegs.data.Load())
}
