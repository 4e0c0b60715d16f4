package keyboard

const (
	prefixExtended = 0xe0
	prefixBreak    = 0xf0
)

var set2 = map[byte]Key{
	0x5a: KeyEnter,
	0x76: KeyEscape,
	0x29: KeySpace,
	0x07: KeyF12,
	0x75: KeyUp, // keypad 8, without prefix
	0x72: KeyDown,
	0x6b: KeyLeft,
	0x74: KeyRight,
}

var set2Extended = map[byte]Key{
	0x75: KeyUp,
	0x72: KeyDown,
	0x6b: KeyLeft,
	0x74: KeyRight,
	0x5a: KeyEnter, // keypad enter
}

// Decoder turns a stream of set 2 scancodes into key events.
type Decoder struct {
	Handler func(key Key, down bool)

	extended, brk bool
}

func (d *Decoder) Reset() { d.extended, d.brk = false, false }

func (d *Decoder) Feed(b byte) {
	switch b {
	case prefixExtended:
		d.extended = true
		return
	case prefixBreak:
		d.brk = true
		return
	}
	table := set2
	if d.extended {
		table = set2Extended
	}
	key, ok := table[b]
	down := !d.brk
	d.Reset()
	if ok && d.Handler != nil {
		d.Handler(key, down)
	}
}

// Encode returns the set 2 scancodes for pressing or releasing key.
func Encode(key Key, down bool) []byte {
	var codes []byte
	for _, ext := range []bool{false, true} {
		table := set2
		if ext {
			table = set2Extended
		}
		for code, k := range table {
			if k != key || (!ext && key >= KeyUp && key <= KeyRight) {
				continue
			}
			if ext {
				codes = append(codes, prefixExtended)
			}
			if !down {
				codes = append(codes, prefixBreak)
			}
			return append(codes, code)
		}
	}
	return nil
}

// Chan is a Source fed from another goroutine.
type Chan chan byte

func (c Chan) ReadScancode() (byte, bool) {
	select {
	case b := <-c:
		return b, true
	default:
		return 0, false
	}
}

// Send queues the scancodes of a complete key stroke, dropping them if the
// channel is full.
func (c Chan) Send(key Key) {
	for _, down := range []bool{true, false} {
		for _, b := range Encode(key, down) {
			select {
			case c <- b:
			default:
			}
		}
	}
}
