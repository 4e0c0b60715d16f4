// Command ctrlsim runs the control ROM against a simulated host core.
//
// The SD card is backed by an image file, the overlay and the PS/2 keyboard
// by the terminal. The BIOS received by the simulated core can be written to
// a file and handed to an emulator.
//
// Usage:
//
//	ctrlsim [flags]
//
// Flags may also be given in ctrlsim.yaml or as CTRLSIM_* environment
// variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"

	"github.com/ocmsx/ctrlrom/boot"
	"github.com/ocmsx/ctrlrom/control"
	"github.com/ocmsx/ctrlrom/drivers/keyboard"
	"github.com/ocmsx/ctrlrom/drivers/minfat"
	"github.com/ocmsx/ctrlrom/drivers/osd"
	"github.com/ocmsx/ctrlrom/drivers/sdcard"
	"github.com/ocmsx/ctrlrom/host"
	"github.com/ocmsx/ctrlrom/persist"
)

const frameRate = 60

// frameClock is the simulated host's vertical sync.
type frameClock struct {
	tick  *time.Ticker
	trace *host.Trace
}

func (c frameClock) Wait() {
	<-c.tick.C
	c.trace.Wait()
}

type sim struct {
	conf   *Config
	log    logr.Logger
	trace  *host.Trace
	osd    *osd.Buffer
	keys   keyboard.Chan
	ctrl   *control.Controller
	dumped bool
}

func newLogger(conf *Config) (logr.Logger, func(), error) {
	out, closeFn := os.Stderr, func() {}
	if conf.LogFile != "" && !conf.Headless {
		f, err := os.OpenFile(conf.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return logr.Discard(), closeFn, err
		}
		out, closeFn = f, func() { f.Close() }
	}
	stdr.SetVerbosity(conf.LogLevel)
	return stdr.New(log.New(out, "", log.LstdFlags)), closeFn, nil
}

func newSim(conf *Config, logger logr.Logger, card sdcard.Card) (*sim, error) {
	var store persist.Store = &persist.Memory{}
	if conf.Settings != "" {
		store = persist.File{Path: conf.Settings}
	}
	w, err := store.Load()
	if errors.Is(err, persist.ErrEmpty) {
		w, err = conf.DefaultWord()
	}
	if err != nil {
		return nil, err
	}

	s := &sim{
		conf:  conf,
		log:   logger,
		trace: &host.Trace{MaxEvents: 4096},
		osd:   &osd.Buffer{},
		keys:  make(keyboard.Chan, 64),
	}
	clock := frameClock{time.NewTicker(time.Second / frameRate), s.trace}
	s.ctrl = control.New(
		control.Volume(minfat.NewDrive(card)),
		host.NewSequencer(s.trace, clock),
		osd.New(s.osd),
		keyboard.New(s.keys),
		control.WithLogger(logger.WithName("control")),
		control.WithDefault(w),
		control.WithSaver(store),
		control.WithIdle(func() { time.Sleep(time.Millisecond) }),
		control.WithBootOptions(boot.WithStateHook(s.booted)),
	)
	return s, nil
}

func (s *sim) booted(st boot.State) {
	if st != boot.Done || s.conf.Dump == "" {
		return
	}
	data := s.trace.BootData()
	if err := os.WriteFile(s.conf.Dump, data, 0o644); err != nil {
		s.log.Error(err, "dump BIOS", "path", s.conf.Dump)
		return
	}
	s.dumped = true
	s.log.Info("dumped BIOS", "path", s.conf.Dump, "bytes", len(data))
}

func main() {
	log.Default().SetFlags(0)
	conf, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatalln(err)
	}
	logger, closeLog, err := newLogger(conf)
	if err != nil {
		log.Fatalln(err)
	}
	defer closeLog()

	var opts []sdcard.ImageOption
	if conf.HighCapacity {
		opts = append(opts, sdcard.ForceHighCapacity(true))
	}
	card, err := sdcard.OpenImage(conf.Image, opts...)
	if err != nil {
		log.Fatalln(err)
	}
	defer card.Close()

	s, err := newSim(conf, logger, card)
	if err != nil {
		log.Fatalln(err)
	}

	if conf.Headless {
		if !s.ctrl.Startup() {
			fmt.Fprintln(os.Stderr, s.osd.Text())
			os.Exit(1)
		}
	} else if err := s.runUI(); err != nil {
		log.Fatalln(err)
	}

	if conf.Run != "" && s.dumped {
		os.Exit(runEmulator(conf.Run, conf.Dump))
	}
}

// runUI runs the control loop until the user quits.
func (s *sim) runUI() error {
	ui, err := newTerminal(s)
	if err != nil {
		return err
	}
	defer ui.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ui.loop(ctx, cancel)

	err = s.ctrl.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	s.log.Error(err, "boot failed")
	<-ctx.Done() // keep the message on screen
	return nil
}
