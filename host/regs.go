// Package host drives the interface between the control CPU and the MSX core
// it boots: a control register, the switch register and the boot data port.
//
// All registers are write-only from the control CPU's point of view. Writes
// to the control register replace all flags at once.
package host

import (
	"github.com/ocmsx/ctrlrom/dipswitch"
)

type CtrlFlag uint32

const (
	Reset    CtrlFlag = 1 << iota // hold the core in reset
	SDCard                        // control CPU owns the SD card
	BootDone                      // BIOS loaded, cancels pending boot data requests
	Keyboard                      // keyboard input goes to the control CPU
)

func (f CtrlFlag) String() string {
	if f == 0 {
		return "0"
	}
	var s string
	for i, name := range [...]string{"RESET", "SDCARD", "BOOTDONE", "KEYBOARD"} {
		if f&(1<<i) != 0 {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	return s
}

// Bus is the register interface of the host core.
type Bus interface {
	StoreCtrl(CtrlFlag)
	StoreSwitches(dipswitch.Word)
	StoreBootData(byte)
}

// VSync blocks until the next video frame starts.
type VSync interface {
	Wait()
}
