// Package boot loads the BIOS image from the SD card into the host core.
//
// The image is streamed through the host's boot data port in 512 byte
// blocks. Every 32-bit little-endian word of a block is sent most
// significant byte first. The port has no flow control, the core has to
// accept a byte per write.
package boot

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"strings"

	"github.com/ocmsx/ctrlrom/debug"
	"github.com/ocmsx/ctrlrom/dipswitch"
	"github.com/ocmsx/ctrlrom/drivers/keyboard"
	"github.com/ocmsx/ctrlrom/host"
)

const BlockSize = 512

type State uint8

const (
	Init State = iota
	StorageReady
	CardClassCheck
	UnsupportedAbort
	ImageSearch
	ImageStream
	Done
	Failed
)

var stateNames = [...]string{"Init", "StorageReady", "CardClassCheck", "UnsupportedAbort",
	"ImageSearch", "ImageStream", "Done", "Failed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// Storage is the SD card with its filesystem.
type Storage interface {
	Init() error
	HighCapacity() bool
	FAT32() bool
	Open(name string) (Image, error)
}

// Image is an open file, read sequentially block by block.
type Image interface {
	Size() int64
	ReadBlock() ([]byte, error)
}

// Console shows messages to the user.
type Console interface {
	Puts(string)
	ProgressBar(step, bits int)
}

type Input interface {
	WaitRelease(keyboard.Key)
}

// Saver persists the switch word.
type Saver interface {
	Save(dipswitch.Word) error
}

// Loader runs boot attempts. It must not be used concurrently.
type Loader struct {
	storage Storage
	seq     *host.Sequencer
	console Console
	input   Input
	cfg     *dipswitch.Settings
	saver   Saver
	conf    config

	state State
	err   error
}

func New(storage Storage, seq *host.Sequencer, console Console, input Input,
	cfg *dipswitch.Settings, saver Saver, opts ...Option) *Loader {
	l := &Loader{
		storage: storage,
		seq:     seq,
		console: console,
		input:   input,
		cfg:     cfg,
		saver:   saver,
		conf:    defaultConfig(),
	}
	for _, opt := range opts {
		opt(&l.conf)
	}
	return l
}

func (l *Loader) State() State { return l.state }

// Err returns why the last boot attempt failed.
func (l *Loader) Err() error { return l.err }

func (l *Loader) enter(s State) {
	l.state = s
	l.conf.log.V(1).Info("boot", "state", s)
	if l.conf.hook != nil {
		l.conf.hook(s)
	}
}

// Boot makes one attempt to load the BIOS and reports whether it succeeded.
// Handing the SD card back to the core after a failure is up to the caller.
func (l *Loader) Boot() bool {
	l.err = l.boot()
	if l.err != nil {
		l.enter(Failed)
		l.conf.log.Error(l.err, "boot failed")
		return false
	}
	l.enter(Done)
	return true
}

func (l *Loader) boot() error {
	l.enter(Init)
	l.console.Puts("Initializing SD card\n")
	if err := l.storage.Init(); err != nil {
		l.console.Puts("SD card init failed\n")
		return fmt.Errorf("%w: %w", ErrStorageInit, err)
	}
	l.enter(StorageReady)

	l.enter(CardClassCheck)
	switch {
	case l.storage.HighCapacity():
		return l.unsupported(ErrUnsupportedCard,
			"SDHC card detected but not\nsupported; disabling SD card\n► OK\n")
	case l.storage.FAT32():
		return l.unsupported(ErrUnsupportedFilesystem,
			"Fat32 filesystem detected but\nnot supported; disabling SD card\n► OK\n")
	}

	l.enter(ImageSearch)
	l.seq.Steal()
	img, err := l.open()
	if err != nil {
		return err
	}

	l.enter(ImageStream)
	if err := l.stream(img); err != nil {
		return err
	}
	l.seq.BootDone()
	return nil
}

// unsupported disables the SD card option after the user acknowledged msg
// and keeps the core in reset until the caller hands the card back.
func (l *Loader) unsupported(reason error, msg string) error {
	l.enter(UnsupportedAbort)
	l.console.Puts(msg)
	l.input.WaitRelease(keyboard.KeyEnter)

	l.cfg.SetEnabled(dipswitch.SDCard, false)
	w := l.cfg.Word()
	l.seq.HoldReset()
	l.seq.Mirror(w)
	if l.saver != nil {
		if err := l.saver.Save(w); err != nil {
			l.conf.log.Error(err, "saving switches", "word", w)
		}
	}
	return reason
}

func (l *Loader) open() (Image, error) {
	for _, name := range l.conf.images {
		l.console.Puts("Trying " + displayName(name) + "...\n")
		img, err := l.storage.Open(name)
		if err == nil {
			l.conf.log.Info("opened BIOS", "name", displayName(name), "size", img.Size())
			return img, nil
		}
		l.conf.log.V(1).Info("open", "name", displayName(name), "err", err)
	}
	l.console.Puts("No BIOS found\n")
	return nil, ErrImageNotFound
}

func (l *Loader) stream(img Image) error {
	l.console.Puts("Opened BIOS, loading...\n")
	size := img.Size()
	steps := bits.Len64(uint64(size)) - 9

	remaining := size
	for block := 0; remaining > 0; block++ {
		l.console.ProgressBar(block, steps)
		buf, err := img.ReadBlock()
		if err != nil {
			l.console.Puts("Read block failed\n")
			return &BlockReadError{Block: block, Err: err}
		}
		debug.Assert(len(buf) >= BlockSize, "short block")

		// The last block is sent up to the end of its last word.
		n := int(min(remaining, BlockSize))
		for i := 0; i < n; i += 4 {
			l.seq.BootWord(binary.LittleEndian.Uint32(buf[i:]))
		}
		remaining -= BlockSize
	}
	return nil
}

// displayName turns a directory form name like "BIOS_M2PROM" into
// "BIOS_M2P.ROM".
func displayName(name string) string {
	if len(name) != 11 {
		return name
	}
	base := strings.TrimRight(name[:8], " ")
	if ext := strings.TrimRight(name[8:], " "); ext != "" {
		return base + "." + ext
	}
	return base
}
