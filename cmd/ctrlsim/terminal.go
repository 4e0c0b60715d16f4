package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nsf/termbox-go"

	"github.com/ocmsx/ctrlrom/drivers/keyboard"
	"github.com/ocmsx/ctrlrom/drivers/osd"
)

var keymap = map[termbox.Key]keyboard.Key{
	termbox.KeyArrowUp:    keyboard.KeyUp,
	termbox.KeyArrowDown:  keyboard.KeyDown,
	termbox.KeyArrowLeft:  keyboard.KeyLeft,
	termbox.KeyArrowRight: keyboard.KeyRight,
	termbox.KeyEnter:      keyboard.KeyEnter,
	termbox.KeyEsc:        keyboard.KeyEscape,
	termbox.KeySpace:      keyboard.KeySpace,
	termbox.KeyF12:        keyboard.KeyF12,
}

// terminal draws the overlay and feeds key strokes to the simulated PS/2
// port.
type terminal struct {
	s      *sim
	events chan termbox.Event
}

func newTerminal(s *sim) (*terminal, error) {
	if err := termbox.Init(); err != nil {
		return nil, err
	}
	t := &terminal{s: s, events: make(chan termbox.Event)}
	go func() {
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				close(t.events)
				return
			}
			t.events <- ev
		}
	}()
	return t, nil
}

func (t *terminal) close() {
	termbox.Interrupt()
	termbox.Close()
}

func (t *terminal) loop(ctx context.Context, quit func()) {
	redraw := time.NewTicker(time.Second / 30)
	defer redraw.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-t.events:
			if !ok {
				return
			}
			switch {
			case ev.Type != termbox.EventKey:
			case ev.Key == termbox.KeyCtrlC, ev.Key == termbox.KeyCtrlQ:
				quit()
				return
			default:
				if k, ok := keymap[ev.Key]; ok {
					t.s.keys.Send(k)
				}
			}
		case <-redraw.C:
			t.draw()
		}
	}
}

const (
	left = 2
	top  = 1
)

func (t *terminal) draw() {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	on := t.s.osd.Enabled()
	fg, bg := termbox.ColorWhite, termbox.ColorBlue
	if !on {
		fg, bg = termbox.ColorDefault, termbox.ColorDefault
	}
	for row := 0; row < osd.Rows; row++ {
		line, inverse := t.s.osd.Line(row)
		rfg, rbg := fg, bg
		if inverse && on {
			rfg, rbg = bg, fg
		}
		x := left
		for _, r := range line {
			termbox.SetCell(x, top+row, r, rfg, rbg)
			x++
		}
		for ; x < left+osd.Cols; x++ {
			termbox.SetCell(x, top+row, ' ', rfg, rbg)
		}
	}

	tr := t.s.trace
	status := fmt.Sprintf("ctrl %v  switches %v  boot data %d bytes  frame %d",
		tr.Ctrl(), tr.Switches(), tr.BootDataLen(), tr.Frames())
	puts(left, top+osd.Rows+1, status)
	puts(left, top+osd.Rows+2, "F12 menu  ^Q quit")
	termbox.Flush()
}

func puts(x, y int, s string) {
	for _, r := range s {
		termbox.SetCell(x, y, r, termbox.ColorDefault, termbox.ColorDefault)
		x++
	}
}
