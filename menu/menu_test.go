package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocmsx/ctrlrom/dipswitch"
	"github.com/ocmsx/ctrlrom/drivers/keyboard"
	"github.com/ocmsx/ctrlrom/drivers/osd"
)

type fixture struct {
	kbd    *keyboard.Keyboard
	buf    *osd.Buffer
	cfg    dipswitch.Settings
	menu   *Menu
	top    []Entry
	sub    []Entry
	called int
}

func newFixture() *fixture {
	f := &fixture{kbd: keyboard.New(nil), buf: &osd.Buffer{}}
	f.cfg = dipswitch.Unpack(dipswitch.Default)
	f.menu = New(osd.New(f.buf), f.kbd, &f.cfg)
	f.sub = []Entry{
		&Toggle{dipswitch.Turbo},
		&Cycle{dipswitch.Slot2},
		&Submenu{"Back", &f.top},
	}
	f.top = []Entry{
		&Submenu{"DIP Switches ►", &f.sub},
		&Action{"Count", func() { f.called++ }},
		&Action{"Exit", f.menu.Hide},
	}
	f.menu.Set(f.top)
	return f
}

func (f *fixture) key(k keyboard.Key) bool {
	f.kbd.Press(k)
	f.kbd.Release(k)
	return f.menu.Run()
}

func TestVisibility(t *testing.T) {
	f := newFixture()
	assert.False(t, f.menu.Run())
	assert.True(t, f.key(keyboard.KeyF12))
	assert.True(t, f.buf.Enabled())
	line, inverse := f.buf.Line(0)
	assert.Equal(t, "DIP Switches ►", line)
	assert.True(t, inverse)

	assert.False(t, f.key(keyboard.KeyF12))
	assert.False(t, f.buf.Enabled())
	assert.True(t, f.key(keyboard.KeyF12))
	assert.False(t, f.key(keyboard.KeyEscape))
}

func TestNavigation(t *testing.T) {
	f := newFixture()
	f.key(keyboard.KeyF12)
	f.key(keyboard.KeyUp)
	assert.Equal(t, 2, f.menu.Row())
	f.key(keyboard.KeyDown)
	f.key(keyboard.KeyDown)
	assert.Equal(t, 1, f.menu.Row())
	f.key(keyboard.KeyEnter)
	assert.Equal(t, 1, f.called)
	_, inverse := f.buf.Line(1)
	assert.True(t, inverse)

	f.key(keyboard.KeyDown)
	assert.False(t, f.key(keyboard.KeyEnter), "exit hides the menu")
}

func TestSubmenu(t *testing.T) {
	f := newFixture()
	f.key(keyboard.KeyF12)
	f.key(keyboard.KeyEnter)
	require.Len(t, f.menu.Page(), 3)

	line, _ := f.buf.Line(0)
	assert.Equal(t, "  Turbo (10.74MHz)", line)
	f.key(keyboard.KeySpace)
	assert.True(t, f.cfg.Enabled(dipswitch.Turbo))
	line, _ = f.buf.Line(0)
	assert.Equal(t, "√ Turbo (10.74MHz)", line)

	f.key(keyboard.KeyDown)
	f.key(keyboard.KeyRight)
	assert.Equal(t, 0, f.cfg.Get(dipswitch.Slot2))
	f.key(keyboard.KeyLeft)
	f.key(keyboard.KeyLeft)
	assert.Equal(t, 2, f.cfg.Get(dipswitch.Slot2))
	line, _ = f.buf.Line(1)
	assert.Equal(t, "Sl2: ESE-RAM 1MB/ASCII8", line)

	f.key(keyboard.KeyDown)
	f.key(keyboard.KeyEnter)
	line, _ = f.buf.Line(0)
	assert.Equal(t, "DIP Switches ►", line)
	line, _ = f.buf.Line(2)
	assert.Equal(t, "Exit", line)
	line, _ = f.buf.Line(3)
	assert.Empty(t, line)
}

func TestEntryVariants(t *testing.T) {
	cfg := dipswitch.Unpack(dipswitch.Default)
	entries := []Entry{&Toggle{dipswitch.SDCard}, &Cycle{dipswitch.Video}, &Submenu{Text: "x"}, &Action{Text: "y"}}
	want := []string{"√ SD Card", "VGA - 31KHz, 50Hz", "x", "y"}
	for i, e := range entries {
		assert.Equal(t, want[i], e.Label(&cfg))
	}
}
