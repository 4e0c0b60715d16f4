package control

import (
	"github.com/go-logr/logr"

	"github.com/ocmsx/ctrlrom/boot"
	"github.com/ocmsx/ctrlrom/dipswitch"
)

type config struct {
	log     logr.Logger
	initial dipswitch.Word
	saver   boot.Saver
	idle    func()
	boot    []boot.Option
}

func defaultConfig() config {
	return config{
		log:     logr.Discard(),
		initial: dipswitch.Default,
	}
}

type Option func(*config)

func WithLogger(log logr.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithDefault sets the switch word the host is started with.
func WithDefault(w dipswitch.Word) Option {
	return func(c *config) { c.initial = w }
}

// WithSaver persists the switch word whenever it changes.
func WithSaver(s boot.Saver) Option {
	return func(c *config) { c.saver = s }
}

// WithIdle registers fn to be called at the end of every loop iteration of
// Run.
func WithIdle(fn func()) Option {
	return func(c *config) { c.idle = fn }
}

// WithBootOptions passes opts on to the boot loader.
func WithBootOptions(opts ...boot.Option) Option {
	return func(c *config) { c.boot = append(c.boot, opts...) }
}
