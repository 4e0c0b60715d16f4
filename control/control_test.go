package control

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocmsx/ctrlrom/boot"
	"github.com/ocmsx/ctrlrom/dipswitch"
	"github.com/ocmsx/ctrlrom/drivers/keyboard"
	"github.com/ocmsx/ctrlrom/drivers/minfat"
	"github.com/ocmsx/ctrlrom/drivers/osd"
	"github.com/ocmsx/ctrlrom/drivers/sdcard"
	"github.com/ocmsx/ctrlrom/host"
	"github.com/ocmsx/ctrlrom/menu"
	"github.com/ocmsx/ctrlrom/persist"
)

type memDev struct{ b []byte }

func (m *memDev) WriteAt(p []byte, off int64) (int, error) {
	if end := int(off) + len(p); end > len(m.b) {
		m.b = append(m.b, make([]byte, end-len(m.b))...)
	}
	return copy(m.b[off:], p), nil
}

func bios(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i*13 + 1)
	}
	return p
}

// swapped returns p as it arrives at the boot data port.
func swapped(p []byte) []byte {
	q := make([]byte, len(p))
	for i := 0; i+4 <= len(p); i += 4 {
		q[i], q[i+1], q[i+2], q[i+3] = p[i+3], p[i+2], p[i+1], p[i]
	}
	return q
}

func card(t *testing.T, files ...minfat.Entry) *sdcard.Memory {
	dev := &memDev{}
	require.NoError(t, minfat.Create(dev, 8192, files))
	return &sdcard.Memory{Data: dev.b}
}

// source hands out one batch of scancodes each time the previous one ran
// dry, so strokes queued before the keyboard is drained survive it.
type source struct {
	batches [][]byte
	codes   []byte
}

func (s *source) ReadScancode() (byte, bool) {
	if len(s.codes) == 0 {
		if len(s.batches) > 0 {
			s.codes, s.batches = s.batches[0], s.batches[1:]
		}
		return 0, false
	}
	b := s.codes[0]
	s.codes = s.codes[1:]
	return b, true
}

func (s *source) stroke(k keyboard.Key) {
	codes := append(keyboard.Encode(k, true), keyboard.Encode(k, false)...)
	s.batches = append(s.batches, codes)
}

type fixture struct {
	trace  *host.Trace
	buf    *osd.Buffer
	src    *source
	kbd    *keyboard.Keyboard
	store  *persist.Memory
	card   *sdcard.Memory
	states []boot.State
	c      *Controller
}

func newFixture(t *testing.T, sd *sdcard.Memory, opts ...Option) *fixture {
	f := &fixture{
		trace: &host.Trace{},
		buf:   &osd.Buffer{},
		src:   &source{},
		store: &persist.Memory{},
		card:  sd,
	}
	f.kbd = keyboard.New(f.src)
	opts = append([]Option{
		WithSaver(f.store),
		WithBootOptions(boot.WithStateHook(func(s boot.State) { f.states = append(f.states, s) })),
	}, opts...)
	f.c = New(Volume(minfat.NewDrive(sd)), host.NewSequencer(f.trace, f.trace),
		osd.New(f.buf), f.kbd, opts...)
	return f
}

func (f *fixture) press(k keyboard.Key) {
	f.kbd.Press(k)
	f.kbd.Release(k)
	f.c.Step()
}

func TestStartup(t *testing.T) {
	img := bios(16*1024 + 100)
	f := newFixture(t, card(t, minfat.Entry{Name: "MSX3BIOSSYS", Data: img}))

	require.True(t, f.c.Startup())
	assert.Equal(t, swapped(img), f.trace.BootData())
	assert.Equal(t, host.BootDone, f.trace.Ctrl())
	assert.Equal(t, dipswitch.Default, f.trace.Switches())
	assert.False(t, f.buf.Enabled())
	assert.False(t, f.c.Menu().Visible())

	ev := f.trace.Events()
	require.GreaterOrEqual(t, len(ev), 7)
	assert.Equal(t, []host.Event{
		{Kind: host.EvCtrl, Value: uint32(host.Reset)},
		{Kind: host.EvSwitches, Value: uint32(dipswitch.Default)},
		{Kind: host.EvCtrl, Value: uint32(host.SDCard)},
		{Kind: host.EvWait, Value: 1},
		{Kind: host.EvWait, Value: 2},
		{Kind: host.EvWait, Value: 3},
		{Kind: host.EvWait, Value: 4},
	}, ev[:7])
	assert.Equal(t, 4, f.trace.Frames())
}

func TestStartupFallbackImage(t *testing.T) {
	img := bios(600)
	f := newFixture(t, card(t, minfat.Entry{Name: "BIOS_M2PROM", Data: img}))

	require.True(t, f.c.Startup())
	assert.Len(t, f.trace.BootData(), 512+88)
	assert.Contains(t, f.buf.Text(), "Trying BIOS_M2P.ROM...")
}

func TestStartupFailure(t *testing.T) {
	f := newFixture(t, card(t, minfat.Entry{Name: "README  TXT", Data: []byte("hi")}))

	err := f.c.Run(context.Background())
	assert.ErrorIs(t, err, boot.ErrImageNotFound)
	assert.Equal(t, host.BootDone, f.trace.Ctrl())
	assert.Empty(t, f.trace.BootData())
	assert.True(t, f.buf.Enabled())
	assert.Contains(t, f.buf.Text(), "Loading BIOS failed")
}

func TestStartupHighCapacity(t *testing.T) {
	sd := card(t, minfat.Entry{Name: "MSX3BIOSSYS", Data: bios(512)})
	sd.HC = true
	f := newFixture(t, sd)
	f.src.stroke(keyboard.KeyEnter)

	require.False(t, f.c.Startup())
	assert.ErrorIs(t, f.c.Loader().Err(), boot.ErrUnsupportedCard)
	assert.NotContains(t, f.states, boot.ImageSearch)
	assert.Contains(t, f.states, boot.UnsupportedAbort)
	assert.False(t, f.c.Settings().Enabled(dipswitch.SDCard))

	saved, err := f.store.Load()
	require.NoError(t, err)
	assert.Equal(t, f.c.Settings().Word(), saved)
	assert.Equal(t, saved, f.trace.Switches())
	assert.Equal(t, dipswitch.Word(1<<2), saved&(1<<2))
	assert.Equal(t, host.BootDone, f.trace.Ctrl())
}

func TestStepReanchor(t *testing.T) {
	f := newFixture(t, card(t, minfat.Entry{Name: "MSX3BIOSSYS", Data: bios(512)}))
	require.True(t, f.c.Startup())

	frames := f.trace.Frames()
	enables := f.buf.Enables()
	f.c.Step()
	assert.Equal(t, frames+2*anchorPulses, f.trace.Frames(), "first iteration anchors")
	assert.Equal(t, enables+anchorPulses, f.buf.Enables())

	frames = f.trace.Frames()
	f.c.Step()
	assert.Equal(t, frames, f.trace.Frames(), "unchanged word")
	assert.Equal(t, host.BootDone, f.trace.Ctrl())
	assert.Equal(t, 0, f.store.Saves())
}

func TestMenuChangesSwitches(t *testing.T) {
	f := newFixture(t, card(t, minfat.Entry{Name: "MSX3BIOSSYS", Data: bios(512)}))
	require.True(t, f.c.Startup())
	f.c.Step()

	f.press(keyboard.KeyF12)
	assert.True(t, f.c.Menu().Visible())
	assert.Equal(t, host.BootDone|host.Keyboard, f.trace.Ctrl())
	line, inverse := f.buf.Line(0)
	assert.Equal(t, "DIP Switches ►", line)
	assert.True(t, inverse)

	f.press(keyboard.KeyEnter) // into the DIP switch page
	f.press(keyboard.KeyDown)
	f.press(keyboard.KeyDown)
	f.press(keyboard.KeyDown)
	f.press(keyboard.KeyDown)
	f.press(keyboard.KeyDown)
	frames := f.trace.Frames()
	f.press(keyboard.KeyEnter) // turbo
	assert.True(t, f.c.Settings().Enabled(dipswitch.Turbo))
	assert.Equal(t, f.c.Settings().Word(), f.trace.Switches())
	assert.Equal(t, dipswitch.Word(1<<7), f.trace.Switches()&(1<<7))
	assert.Equal(t, frames+2*anchorPulses, f.trace.Frames())
	assert.Equal(t, 1, f.store.Saves())

	line, _ = f.buf.Line(5)
	assert.Equal(t, "√ Turbo (10.74MHz)", line)

	f.press(keyboard.KeyEscape)
	assert.False(t, f.c.Menu().Visible())
	assert.Equal(t, host.BootDone, f.trace.Ctrl())
}

func TestResetAction(t *testing.T) {
	img := bios(1024)
	f := newFixture(t, card(t, minfat.Entry{Name: "MSX3BIOSSYS", Data: img}))
	require.True(t, f.c.Startup())
	f.c.Step()
	f.f12ToRow(1)

	f.trace.Clear()
	f.press(keyboard.KeyEnter)
	assert.False(t, f.c.Menu().Visible())
	assert.False(t, f.buf.Enabled())
	assert.Equal(t, swapped(img), f.trace.BootData())
	assert.Equal(t, host.BootDone, f.trace.Ctrl())

	ev := f.trace.Events()
	require.NotEmpty(t, ev)
	assert.Equal(t, host.Event{Kind: host.EvCtrl, Value: uint32(host.Reset)}, ev[0])
	assert.Equal(t, 2, countBootDone(ev), "boot done, then capture")
}

func TestResetFailure(t *testing.T) {
	for name, tc := range map[string]struct {
		breakCard func(*sdcard.Memory)
		ack       bool
		err       error
		saves     int
	}{
		"unsupported card": {func(sd *sdcard.Memory) { sd.HC = true }, true, boot.ErrUnsupportedCard, 1},
		"no card":          {func(sd *sdcard.Memory) { sd.InitErr = errors.New("no card") }, false, boot.ErrStorageInit, 0},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, card(t, minfat.Entry{Name: "MSX3BIOSSYS", Data: bios(512)}))
			require.True(t, f.c.Startup())
			f.c.Step()
			f.f12ToRow(1)

			tc.breakCard(f.card)
			if tc.ack {
				f.src.stroke(keyboard.KeyEnter)
			}
			f.press(keyboard.KeyEnter)

			assert.ErrorIs(t, f.c.Loader().Err(), tc.err)
			assert.False(t, f.c.Menu().Visible())
			assert.True(t, f.buf.Enabled(), "message stays on the overlay")
			assert.Contains(t, f.buf.Text(), "Loading BIOS failed")
			assert.Equal(t, host.BootDone, f.trace.Ctrl())
			assert.Equal(t, tc.saves, f.store.Saves())

			f.c.Step()
			assert.True(t, f.buf.Enabled())
			assert.Equal(t, tc.saves, f.store.Saves())

			f.press(keyboard.KeyF12)
			assert.True(t, f.c.Menu().Visible())
			f.press(keyboard.KeyEscape)
			assert.False(t, f.buf.Enabled())
		})
	}
}

func TestExitAction(t *testing.T) {
	f := newFixture(t, card(t, minfat.Entry{Name: "MSX3BIOSSYS", Data: bios(512)}))
	require.True(t, f.c.Startup())
	f.c.Step()
	f.f12ToRow(2)
	f.press(keyboard.KeyEnter)
	assert.False(t, f.c.Menu().Visible())
}

func TestRunCancel(t *testing.T) {
	f := newFixture(t, card(t, minfat.Entry{Name: "MSX3BIOSSYS", Data: bios(512)}))
	ctx, cancel := context.WithCancel(context.Background())
	steps := 0
	f.c.conf.idle = func() {
		steps++
		if steps == 3 {
			cancel()
		}
	}
	assert.ErrorIs(t, f.c.Run(ctx), context.Canceled)
	assert.Equal(t, 3, steps)
}

func TestWithDefault(t *testing.T) {
	w := dipswitch.Word(0x1c6)
	f := newFixture(t, card(t, minfat.Entry{Name: "MSX3BIOSSYS", Data: bios(512)}), WithDefault(w))
	require.True(t, f.c.Startup())
	assert.Equal(t, dipswitch.Unpack(w), *f.c.Settings())
	assert.Equal(t, w, f.trace.Switches())
}

func TestMenuPages(t *testing.T) {
	f := newFixture(t, card(t))
	labels := func(page []menu.Entry) (s []string) {
		for _, e := range page {
			s = append(s, e.Label(f.c.Settings()))
		}
		return s
	}
	assert.Equal(t, []string{"DIP Switches ►", "Reset", "Exit"}, labels(f.c.top))
	assert.Equal(t, []string{
		"VGA - 31KHz, 50Hz",
		"√ SD Card",
		"Sl1: ESE-SCC 1MB/SCC-I",
		"Sl2: ESE-RAM 1MB/ASCII16",
		"  Japanese keyboard layout",
		"  Turbo (10.74MHz)",
		"4096KB RAM",
		"Back",
	}, labels(f.c.dips))
}

func (f *fixture) f12ToRow(row int) {
	f.press(keyboard.KeyF12)
	for n := 0; n < row; n++ {
		f.press(keyboard.KeyDown)
	}
}

func countBootDone(ev []host.Event) (n int) {
	for _, e := range ev {
		if e.Kind == host.EvCtrl && host.CtrlFlag(e.Value)&host.BootDone != 0 {
			n++
		}
	}
	return n
}
