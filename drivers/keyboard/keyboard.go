// Package keyboard tracks the state of the few keys the control ROM reacts
// to, decoded from PS/2 scancode set 2.
package keyboard

import (
	"runtime"
)

type Key uint8

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEscape
	KeySpace
	KeyF12

	numKeys
)

var keyNames = [numKeys]string{"none", "up", "down", "left", "right", "enter", "escape", "space", "F12"}

func (k Key) String() string {
	if k >= numKeys {
		return "?"
	}
	return keyNames[k]
}

type State uint8

const (
	Down     State = 1 << iota // key is held
	Pressed                    // went down since last Test
	Released                   // went up since last Test
)

// Source delivers raw scancodes, e.g. from the PS/2 receiver's FIFO.
type Source interface {
	ReadScancode() (b byte, ok bool)
}

type Keyboard struct {
	src   Source
	dec   Decoder
	state [numKeys]State
}

func New(src Source) *Keyboard {
	k := &Keyboard{src: src}
	k.dec.Handler = k.set
	return k
}

// Init discards pending input and forgets all key state.
func (k *Keyboard) Init() {
	if k.src != nil {
		for {
			if _, ok := k.src.ReadScancode(); !ok {
				break
			}
		}
	}
	k.dec.Reset()
	k.state = [numKeys]State{}
}

// HandleRaw decodes all scancodes available from the source.
func (k *Keyboard) HandleRaw() {
	if k.src == nil {
		return
	}
	for {
		b, ok := k.src.ReadScancode()
		if !ok {
			return
		}
		k.dec.Feed(b)
	}
}

func (k *Keyboard) set(key Key, down bool) {
	if key == KeyNone || key >= numKeys {
		return
	}
	s := k.state[key]
	switch {
	case down && s&Down == 0:
		s |= Down | Pressed
	case !down && s&Down != 0:
		s = s&^Down | Released
	}
	k.state[key] = s
}

func (k *Keyboard) Press(key Key)   { k.set(key, true) }
func (k *Keyboard) Release(key Key) { k.set(key, false) }

// Test returns the key's state and clears its Pressed and Released edges.
func (k *Keyboard) Test(key Key) State {
	if key >= numKeys {
		return 0
	}
	s := k.state[key]
	k.state[key] &= Down
	return s
}

// WaitRelease blocks until key was released.
func (k *Keyboard) WaitRelease(key Key) {
	k.Test(key)
	for {
		k.HandleRaw()
		if k.Test(key)&Released != 0 {
			return
		}
		runtime.Gosched()
	}
}
