package dipswitch

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allSettings enumerates every combination of option values.
func allSettings() (all []Settings) {
	var s Settings
	var rec func(id int)
	rec = func(id int) {
		if id == int(NumFields) {
			all = append(all, s)
			return
		}
		for v := 0; v < Fields[id].Count; v++ {
			s[id] = v
			rec(id + 1)
		}
	}
	rec(0)
	return
}

func TestRoundTrip(t *testing.T) {
	all := allSettings()
	require.Len(t, all, 3*2*3*4*2*2*2)
	for _, s := range all {
		w := Pack(s)
		if diff := cmp.Diff(s, Unpack(w)); diff != "" {
			t.Fatalf("Unpack(Pack(%v)) mismatch (-want +got):\n%s", s, diff)
		}
	}
}

func TestWordRoundTrip(t *testing.T) {
	const layout = 0x3ff
	unusedSlot1 := Word(1<<3 | 1<<8)
	for w := Word(0); w <= layout; w++ {
		got := Pack(Unpack(w))
		if w&3 == 3 { // video has no fourth mode
			continue
		}
		if w&unusedSlot1 == unusedSlot1 {
			assert.Equal(t, w&^(1<<3), got, "word %v", w)
			continue
		}
		assert.Equal(t, w, got, "word %v", w)
	}
}

func TestSDCardSense(t *testing.T) {
	var s Settings
	s.SetEnabled(SDCard, true)
	assert.Zero(t, Pack(s)&(1<<2))
	s.SetEnabled(SDCard, false)
	assert.NotZero(t, Pack(s)&(1<<2))

	on, off := Unpack(0), Unpack(1<<2)
	assert.True(t, on.Enabled(SDCard))
	assert.False(t, off.Enabled(SDCard))
}

func TestFold(t *testing.T) {
	tests := map[string]struct {
		w    Word
		id   FieldID
		want int
	}{
		"slot1 low":     {1 << 3, Slot1, 1},
		"slot1 high":    {1 << 8, Slot1, 2},
		"slot1 unused":  {1<<3 | 1<<8, Slot1, 2},
		"video unused":  {3, Video, 2},
		"slot2 full":    {3 << 4, Slot2, 3},
		"high bits off": {0xfc00, RAM, 0},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s := Unpack(tc.w)
			assert.Equal(t, tc.want, s.Get(tc.id))
		})
	}
}

func TestPackIgnoresUpperBits(t *testing.T) {
	for _, s := range allSettings() {
		require.Zero(t, Pack(s)&0xfc00)
	}
}

func TestDefault(t *testing.T) {
	s := Unpack(Default)
	want := Settings{
		Video:    1,
		SDCard:   1,
		Slot1:    1,
		Slot2:    3,
		Keyboard: 0,
		Turbo:    0,
		RAM:      1,
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("default mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, Default, s.Word())
}

func TestCycle(t *testing.T) {
	var s Settings
	s.Cycle(Slot2, -1)
	assert.Equal(t, 3, s.Get(Slot2))
	s.Cycle(Slot2, 1)
	assert.Equal(t, 0, s.Get(Slot2))
	s.Toggle(Turbo)
	assert.True(t, s.Enabled(Turbo))
	s.Toggle(Turbo)
	assert.False(t, s.Enabled(Turbo))
	s.Set(Slot1, 3)
	assert.Equal(t, 2, s.Get(Slot1))
}

func TestNamed(t *testing.T) {
	s := Unpack(Default)
	s.Toggle(Turbo)
	named := s.Named()
	assert.Equal(t, "on", named["turbo"])
	assert.Equal(t, "Sl2: ESE-RAM 1MB/ASCII16", named["slot2"])

	got, err := FromNamed(named)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	got, err = FromNamed(map[string]string{"video": "tv - 480i, 60hz"})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Get(Video))
	assert.Equal(t, 3, got.Get(Slot2))

	_, err = FromNamed(map[string]string{"floppy": "on"})
	assert.True(t, errors.Is(err, ErrUnknownField))
	_, err = FromNamed(map[string]string{"ram": "1MB"})
	assert.True(t, errors.Is(err, ErrUnknownLabel))
}
