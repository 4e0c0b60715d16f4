package host

import (
	"github.com/ocmsx/ctrlrom/dipswitch"
)

// Sequencer issues control register writes in the order the core expects
// them.
//
// The SD card must be taken from the core with Steal (or Reset) before a boot
// attempt and handed back with BootDone afterwards, whatever the outcome.
// After the core was in reset, two frames have to pass before the overlay
// sync polarity can be trusted.
type Sequencer struct {
	bus   Bus
	vsync VSync
	ctrl  CtrlFlag
}

func NewSequencer(bus Bus, vsync VSync) *Sequencer {
	return &Sequencer{bus: bus, vsync: vsync}
}

func (s *Sequencer) store(f CtrlFlag) {
	s.ctrl = f
	s.bus.StoreCtrl(f)
}

// Ctrl returns the flags last written to the control register.
func (s *Sequencer) Ctrl() CtrlFlag { return s.ctrl }

// HoldReset puts the core into reset.
func (s *Sequencer) HoldReset() { s.store(Reset) }

// Steal releases reset but keeps the SD card for the control CPU.
func (s *Sequencer) Steal() { s.store(SDCard) }

// Reset pulses the core's reset and steals the SD card.
func (s *Sequencer) Reset() {
	s.HoldReset()
	s.Settle()
	s.Steal()
}

// BootDone hands the SD card back to the core and cancels any boot data
// requests it still has. It may be issued any number of times.
func (s *Sequencer) BootDone() { s.store(BootDone) }

// Capture routes the keyboard to the control CPU while the overlay is
// visible. The SD card stays with the core.
func (s *Sequencer) Capture(visible bool) {
	f := BootDone
	if visible {
		f |= Keyboard
	}
	s.store(f)
}

func (s *Sequencer) Mirror(w dipswitch.Word) { s.bus.StoreSwitches(w) }

// BootWord sends w to the boot data port, most significant byte first.
func (s *Sequencer) BootWord(w uint32) {
	s.bus.StoreBootData(byte(w >> 24))
	s.bus.StoreBootData(byte(w >> 16))
	s.bus.StoreBootData(byte(w >> 8))
	s.bus.StoreBootData(byte(w))
}

func (s *Sequencer) Wait() { s.vsync.Wait() }

// Settle waits two frames.
func (s *Sequencer) Settle() {
	s.vsync.Wait()
	s.vsync.Wait()
}
