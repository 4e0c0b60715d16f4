// Package dipswitch translates between the options shown in the on-screen
// menu and the 16-bit switch word consumed by the host core.
//
// The layout of the word is defined once, by the Fields table. Pack and Unpack
// both walk that table, so the two directions can't drift apart.
package dipswitch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ocmsx/ctrlrom/debug"
)

// Word is the value of the host's switch register.
type Word uint16

// Default is written to the host while it is held in reset at power on.
const Default Word = 0x239

func (w Word) String() string { return fmt.Sprintf("%#04x", uint16(w)) }

// Sense tells whether a set bit means the option's value or its negation.
type Sense uint8

const (
	Direct Sense = iota
	Inverted
)

type FieldID int

const (
	Video FieldID = iota
	SDCard
	Slot1
	Slot2
	Keyboard
	Turbo
	RAM

	NumFields
)

// Field describes where a single option lives in the Word.
type Field struct {
	Name   string   // key used by the named form
	Title  string   // menu text of toggles
	Bits   []uint   // bit positions, least significant value bit first
	Count  int      // number of values
	Sense  Sense    // storage sense of the bits
	Labels []string // one per value
}

var toggleLabels = []string{"off", "on"}

var Fields = [NumFields]Field{
	Video: {
		Name: "video", Bits: []uint{0, 1}, Count: 3,
		Labels: []string{"VGA - 31KHz, 60Hz", "VGA - 31KHz, 50Hz", "TV - 480i, 60Hz"},
	},
	SDCard: {
		Name: "sdcard", Title: "SD Card", Bits: []uint{2}, Count: 2,
		Sense: Inverted, Labels: toggleLabels,
	},
	Slot1: {
		Name: "slot1", Bits: []uint{3, 8}, Count: 3,
		Labels: []string{"Sl1: None", "Sl1: ESE-SCC 1MB/SCC-I", "Sl1: MegaRAM"},
	},
	Slot2: {
		Name: "slot2", Bits: []uint{4, 5}, Count: 4,
		Labels: []string{"Sl2: None", "Sl2: ESE-SCC 1MB/SCC-I", "Sl2: ESE-RAM 1MB/ASCII8", "Sl2: ESE-RAM 1MB/ASCII16"},
	},
	Keyboard: {
		Name: "jpkeyboard", Title: "Japanese keyboard layout", Bits: []uint{6}, Count: 2,
		Labels: toggleLabels,
	},
	Turbo: {
		Name: "turbo", Title: "Turbo (10.74MHz)", Bits: []uint{7}, Count: 2,
		Labels: toggleLabels,
	},
	RAM: {
		Name: "ram", Bits: []uint{9}, Count: 2,
		Labels: []string{"2048KB RAM", "4096KB RAM"},
	},
}

// Mask returns the bits of the Word occupied by f.
func (f *Field) Mask() (m Word) {
	for _, b := range f.Bits {
		m |= 1 << b
	}
	return
}

func (f *Field) invert() int {
	if f.Sense == Inverted {
		return 1<<len(f.Bits) - 1
	}
	return 0
}

// fold maps an unrepresentable value onto a valid one by dropping its lowest
// set bits, i.e. the highest contributing bit dominates.
func (f *Field) fold(v int) int {
	if v < 0 {
		return 0
	}
	for v >= f.Count {
		v &= v - 1
	}
	return v
}

// Encode returns the bits for value v, positioned in the Word.
func (f *Field) Encode(v int) (w Word) {
	v = f.fold(v) ^ f.invert()
	for i, b := range f.Bits {
		if v>>i&1 != 0 {
			w |= 1 << b
		}
	}
	return
}

// Decode extracts the field's value from w. Bit patterns that Encode never
// produces are folded.
func (f *Field) Decode(w Word) int {
	v := 0
	for i, b := range f.Bits {
		if w>>b&1 != 0 {
			v |= 1 << i
		}
	}
	return f.fold(v ^ f.invert())
}

func (f *Field) Label(v int) string { return f.Labels[f.fold(v)] }

// Settings holds the value of every option as the menu sees it. For toggles
// 1 means on.
type Settings [NumFields]int

func Pack(s Settings) (w Word) {
	for id := range Fields {
		f := &Fields[id]
		debug.AssertRange(s[id], f.Count, f.Name)
		w |= f.Encode(s[id])
	}
	return
}

func Unpack(w Word) (s Settings) {
	for id := range Fields {
		s[id] = Fields[id].Decode(w)
	}
	return
}

func (s *Settings) Word() Word { return Pack(*s) }

func (s *Settings) Get(id FieldID) int { return s[id] }

func (s *Settings) Set(id FieldID, v int) { s[id] = Fields[id].fold(v) }

func (s *Settings) Enabled(id FieldID) bool { return s[id] != 0 }

func (s *Settings) SetEnabled(id FieldID, on bool) {
	s[id] = 0
	if on {
		s[id] = 1
	}
}

// Cycle advances the option by delta, wrapping around in both directions.
func (s *Settings) Cycle(id FieldID, delta int) {
	n := Fields[id].Count
	s[id] = ((s[id]+delta)%n + n) % n
}

func (s *Settings) Toggle(id FieldID) { s.Cycle(id, 1) }

var (
	ErrUnknownField = errors.New("unknown option")
	ErrUnknownLabel = errors.New("unknown option value")
)

// Named returns the options keyed by field name with their value labels.
func (s *Settings) Named() map[string]string {
	m := make(map[string]string, NumFields)
	for id := range Fields {
		m[Fields[id].Name] = Fields[id].Label(s[id])
	}
	return m
}

// FromNamed is the inverse of Named. Options missing from m keep their value
// in Default. Labels are matched case-insensitively.
func FromNamed(m map[string]string) (Settings, error) {
	s := Unpack(Default)
	for name, label := range m {
		id := lookup(name)
		if id < 0 {
			return s, fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
		v := -1
		for i, l := range Fields[id].Labels {
			if strings.EqualFold(l, label) {
				v = i
				break
			}
		}
		if v < 0 {
			return s, fmt.Errorf("%w: %s=%q", ErrUnknownLabel, name, label)
		}
		s[id] = v
	}
	return s, nil
}

func lookup(name string) FieldID {
	for id := range Fields {
		if Fields[id].Name == name {
			return FieldID(id)
		}
	}
	return -1
}

func (s Settings) String() string {
	var b strings.Builder
	for id := range Fields {
		if id > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%q", Fields[id].Name, Fields[id].Label(s[id]))
	}
	return b.String()
}
