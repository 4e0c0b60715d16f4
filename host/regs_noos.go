//go:build noos

package host

import (
	"embedded/mmio"
	"unsafe"

	"github.com/ocmsx/ctrlrom/dipswitch"
)

var regs *registers = (*registers)(unsafe.Pointer(baseAddr))

const baseAddr uintptr = 0xffff_ff40

type registers struct {
	ctrl     mmio.R32[CtrlFlag]
	sw       mmio.U32
	bootData mmio.U32
	frame    mmio.U32 // read-only, incremented by the core every vsync
}

type mmioBus struct{}

// MMIO returns the Bus of the host core the ROM is running next to.
func MMIO() Bus { return mmioBus{} }

func (mmioBus) StoreCtrl(f CtrlFlag)           { regs.ctrl.Store(f) }
func (mmioBus) StoreSwitches(w dipswitch.Word) { regs.sw.Store(uint32(w)) }

// The port has no handshake, the core is expected to keep up with the
// control CPU.
func (mmioBus) StoreBootData(b byte) { regs.bootData.Store(uint32(b)) }

type frameSync struct{}

func FrameSync() VSync { return frameSync{} }

func (frameSync) Wait() {
	start := regs.frame.Load()
	for regs.frame.Load() == start {
	}
}
