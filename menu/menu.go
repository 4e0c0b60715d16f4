package menu

import (
	"github.com/ocmsx/ctrlrom/dipswitch"
	"github.com/ocmsx/ctrlrom/drivers/keyboard"
	"github.com/ocmsx/ctrlrom/drivers/osd"
)

type Input interface {
	Test(keyboard.Key) keyboard.State
}

type Screen interface {
	SetRow(row int, text string, inverse bool)
	Show(bool)
}

// Menu is driven by calling Run once per main loop iteration.
type Menu struct {
	screen Screen
	input  Input
	cfg    *dipswitch.Settings

	page    []Entry
	row     int
	visible bool
	dirty   bool
}

func New(screen Screen, input Input, cfg *dipswitch.Settings) *Menu {
	return &Menu{screen: screen, input: input, cfg: cfg}
}

// Set makes page the current page with the cursor on its first entry.
func (m *Menu) Set(page []Entry) {
	m.page = page
	m.row = 0
	m.dirty = true
}

func (m *Menu) Page() []Entry { return m.page }
func (m *Menu) Row() int      { return m.row }
func (m *Menu) Visible() bool { return m.visible }

func (m *Menu) Show() {
	m.visible = true
	m.dirty = true
	m.screen.Show(true)
}

func (m *Menu) Hide() {
	m.visible = false
	m.screen.Show(false)
}

// Invalidate forces a redraw on the next Run, e.g. after something else
// drew on the overlay.
func (m *Menu) Invalidate() { m.dirty = true }

func (m *Menu) pressed(k keyboard.Key) bool {
	return m.input.Test(k)&keyboard.Pressed != 0
}

// Run processes pending key presses and redraws the menu if needed. It
// reports whether the menu is visible.
func (m *Menu) Run() bool {
	if m.pressed(keyboard.KeyF12) {
		if m.visible {
			m.Hide()
		} else {
			m.Show()
		}
	}
	if !m.visible {
		return false
	}

	n := len(m.page)
	switch {
	case n == 0:
	case m.pressed(keyboard.KeyUp):
		m.row = (m.row + n - 1) % n
		m.dirty = true
	case m.pressed(keyboard.KeyDown):
		m.row = (m.row + 1) % n
		m.dirty = true
	case m.pressed(keyboard.KeyLeft):
		m.step(-1)
	case m.pressed(keyboard.KeyRight):
		m.step(1)
	case m.pressed(keyboard.KeyEnter), m.pressed(keyboard.KeySpace):
		m.activate()
	case m.pressed(keyboard.KeyEscape):
		m.Hide()
	}

	if m.visible && m.dirty {
		m.draw()
	}
	return m.visible
}

func (m *Menu) step(delta int) {
	switch e := m.page[m.row].(type) {
	case *Toggle:
		m.cfg.Toggle(e.Field)
	case *Cycle:
		m.cfg.Cycle(e.Field, delta)
	default:
		return
	}
	m.dirty = true
}

func (m *Menu) activate() {
	switch e := m.page[m.row].(type) {
	case *Toggle:
		m.cfg.Toggle(e.Field)
	case *Cycle:
		m.cfg.Cycle(e.Field, 1)
	case *Submenu:
		m.Set(*e.Page)
	case *Action:
		e.Do()
	}
	m.dirty = true
}

func (m *Menu) draw() {
	for row := 0; row < osd.Rows; row++ {
		text := ""
		if row < len(m.page) {
			text = m.page[row].Label(m.cfg)
		}
		m.screen.SetRow(row, text, row == m.row && row < len(m.page))
	}
	m.dirty = false
}
