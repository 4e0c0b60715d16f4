// Package menu implements the on-screen menu: pages of entries the user
// walks with the cursor keys, some of them bound to a dipswitch option.
package menu

import (
	"github.com/ocmsx/ctrlrom/dipswitch"
)

// Entry is one of *Toggle, *Cycle, *Submenu or *Action.
type Entry interface {
	Label(cfg *dipswitch.Settings) string
	entry()
}

// Toggle switches a two-valued option on and off.
type Toggle struct {
	Field dipswitch.FieldID
}

// Cycle steps through the values of an option.
type Cycle struct {
	Field dipswitch.FieldID
}

// Submenu replaces the current page.
type Submenu struct {
	Text string
	Page *[]Entry
}

// Action runs Do when selected.
type Action struct {
	Text string
	Do   func()
}

func (*Toggle) entry()  {}
func (*Cycle) entry()   {}
func (*Submenu) entry() {}
func (*Action) entry()  {}

func (e *Toggle) Label(cfg *dipswitch.Settings) string {
	mark := "  "
	if cfg.Enabled(e.Field) {
		mark = "√ "
	}
	return mark + dipswitch.Fields[e.Field].Title
}

func (e *Cycle) Label(cfg *dipswitch.Settings) string {
	return dipswitch.Fields[e.Field].Label(cfg.Get(e.Field))
}

func (e *Submenu) Label(*dipswitch.Settings) string { return e.Text }
func (e *Action) Label(*dipswitch.Settings) string  { return e.Text }
