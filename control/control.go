// Package control implements the main loop of the control ROM.
//
// At power on the host core is held in reset while the BIOS is loaded from
// the SD card. Afterwards the loop keeps the core's DIP switch register in
// sync with the settings menu and hands the keyboard to the menu whenever
// the overlay is visible.
package control

import (
	"context"

	"github.com/ocmsx/ctrlrom/boot"
	"github.com/ocmsx/ctrlrom/dipswitch"
	"github.com/ocmsx/ctrlrom/drivers/keyboard"
	"github.com/ocmsx/ctrlrom/host"
	"github.com/ocmsx/ctrlrom/menu"
)

type Input interface {
	Init()
	HandleRaw()
	Test(keyboard.Key) keyboard.State
	WaitRelease(keyboard.Key)
}

// Screen is the overlay.
type Screen interface {
	Clear()
	Show(bool)
	Puts(string)
	SetRow(row int, text string, inverse bool)
	ProgressBar(step, bits int)
}

// Number of overlay enable writes needed after a switch change until the
// overlay found its position again.
const anchorPulses = 6

type Controller struct {
	seq    *host.Sequencer
	screen Screen
	input  Input
	conf   config

	cfg    dipswitch.Settings
	menu   *menu.Menu
	loader *boot.Loader
	top    []menu.Entry
	dips   []menu.Entry

	prev     dipswitch.Word
	anchored bool
	saved    dipswitch.Word // last word known to be persisted
	failed   bool           // a reset failed, its message is on the overlay
}

func New(storage boot.Storage, seq *host.Sequencer, screen Screen, input Input, opts ...Option) *Controller {
	c := &Controller{
		seq:    seq,
		screen: screen,
		input:  input,
		conf:   defaultConfig(),
	}
	for _, opt := range opts {
		opt(&c.conf)
	}
	c.cfg = dipswitch.Unpack(c.conf.initial)
	c.menu = menu.New(screen, input, &c.cfg)
	bootOpts := append([]boot.Option{boot.WithLogger(c.conf.log.WithName("boot"))}, c.conf.boot...)
	c.loader = boot.New(storage, seq, screen, input, &c.cfg, c.conf.saver, bootOpts...)

	c.dips = []menu.Entry{
		&menu.Cycle{Field: dipswitch.Video},
		&menu.Toggle{Field: dipswitch.SDCard},
		&menu.Cycle{Field: dipswitch.Slot1},
		&menu.Cycle{Field: dipswitch.Slot2},
		&menu.Toggle{Field: dipswitch.Keyboard},
		&menu.Toggle{Field: dipswitch.Turbo},
		&menu.Cycle{Field: dipswitch.RAM},
		&menu.Submenu{Text: "Back", Page: &c.top},
	}
	c.top = []menu.Entry{
		&menu.Submenu{Text: "DIP Switches ►", Page: &c.dips},
		&menu.Action{Text: "Reset", Do: c.Reset},
		&menu.Action{Text: "Exit", Do: c.menu.Hide},
	}
	return c
}

// Settings returns the live settings. They must not be modified while Run
// is active.
func (c *Controller) Settings() *dipswitch.Settings { return &c.cfg }

func (c *Controller) Menu() *menu.Menu { return c.menu }

func (c *Controller) Loader() *boot.Loader { return c.loader }

// Startup takes the host out of power on reset and loads the BIOS. If that
// fails the SD card is handed back to the host and the overlay is left
// showing why.
func (c *Controller) Startup() bool {
	w := c.conf.initial
	c.cfg = dipswitch.Unpack(w)
	c.seq.HoldReset()
	c.seq.Mirror(w)
	c.seq.Steal()
	c.conf.log.Info("startup", "switches", w)

	c.input.Init()
	c.seq.Settle()
	c.screen.Clear()
	c.screen.Show(true) // finds the sync polarity
	c.seq.Settle()
	c.screen.Show(true)

	if !c.loader.Boot() {
		c.screen.Puts("Loading BIOS failed\n")
		c.seq.BootDone()
		return false
	}
	c.saved = c.cfg.Word()
	c.screen.Show(false)
	c.menu.Set(c.top)
	return true
}

// Step runs one iteration of the main loop.
func (c *Controller) Step() {
	c.input.HandleRaw()
	visible := c.menu.Run()
	if visible {
		c.failed = false
	}

	w := c.cfg.Word()
	c.seq.Mirror(w)
	if w != c.saved && c.conf.saver != nil {
		if err := c.conf.saver.Save(w); err != nil {
			c.conf.log.Error(err, "saving switches", "word", w)
		} else {
			c.saved = w
		}
	}
	if !c.anchored || w != c.prev {
		c.conf.log.V(1).Info("switches", "word", w, "settings", c.cfg)
		c.prev, c.anchored = w, true
		for n := 0; n < anchorPulses; n++ {
			c.screen.Show(visible || c.failed)
			c.seq.Settle()
		}
	}
	c.seq.Capture(visible)
}

// Run starts the host and runs the main loop until ctx is done. It returns
// the boot error if the BIOS could not be loaded.
func (c *Controller) Run(ctx context.Context) error {
	if !c.Startup() {
		return c.loader.Err()
	}
	for ctx.Err() == nil {
		c.Step()
		if c.conf.idle != nil {
			c.conf.idle()
		}
	}
	return ctx.Err()
}

// Reset restarts the host and loads the BIOS again. It is the menu's Reset
// action. If loading fails the overlay keeps showing why until the menu is
// opened again.
func (c *Controller) Reset() {
	c.conf.log.Info("reset")
	c.menu.Hide()
	c.screen.Clear()
	c.screen.Show(true)
	c.seq.Reset()
	ok := c.loader.Boot()
	c.saved = c.cfg.Word() // the loader saves what it changes
	c.menu.Set(c.top)
	c.failed = !ok
	if !ok {
		c.screen.Puts("Loading BIOS failed\n")
		return
	}
	c.screen.Show(false)
}
