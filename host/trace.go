package host

import (
	"sync"

	"github.com/ocmsx/ctrlrom/dipswitch"
)

type EventKind uint8

const (
	EvCtrl EventKind = iota
	EvSwitches
	EvWait
)

type Event struct {
	Kind  EventKind
	Value uint32
}

// Trace is a Bus and VSync which records everything written to it. It stands
// in for the host core in tests and in the simulator.
type Trace struct {
	MaxEvents int // oldest events are dropped beyond this, 0 keeps all

	mtx      sync.Mutex
	events   []Event
	bootData []byte
	ctrl     CtrlFlag
	sw       dipswitch.Word
	frames   int
}

var (
	_ Bus   = (*Trace)(nil)
	_ VSync = (*Trace)(nil)
)

func (t *Trace) record(ev Event) {
	t.events = append(t.events, ev)
	if t.MaxEvents > 0 && len(t.events) > t.MaxEvents {
		t.events = t.events[len(t.events)-t.MaxEvents:]
	}
}

func (t *Trace) StoreCtrl(f CtrlFlag) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.ctrl = f
	t.record(Event{EvCtrl, uint32(f)})
	if f&Reset != 0 {
		t.bootData = t.bootData[:0]
	}
}

func (t *Trace) StoreSwitches(w dipswitch.Word) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.sw = w
	t.record(Event{EvSwitches, uint32(w)})
}

func (t *Trace) StoreBootData(b byte) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.bootData = append(t.bootData, b)
}

func (t *Trace) Wait() {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.frames++
	t.record(Event{EvWait, uint32(t.frames)})
}

// Events returns a copy of the recorded control, switch and wait events.
func (t *Trace) Events() []Event {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return append([]Event(nil), t.events...)
}

// BootData returns the bytes received on the boot data port since the core
// was last reset.
func (t *Trace) BootData() []byte {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return append([]byte(nil), t.bootData...)
}

func (t *Trace) Ctrl() CtrlFlag {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.ctrl
}

func (t *Trace) Switches() dipswitch.Word {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.sw
}

func (t *Trace) Frames() int {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.frames
}

// Clear forgets all recorded events and boot data.
func (t *Trace) Clear() {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.events = t.events[:0]
	t.bootData = t.bootData[:0]
}

// BootDataLen returns len(t.BootData()) without copying.
func (t *Trace) BootDataLen() int {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return len(t.bootData)
}
