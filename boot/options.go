package boot

import (
	"github.com/go-logr/logr"
)

// Image names in 8.3 directory form, tried in order.
const (
	PrimaryImage  = "MSX3BIOSSYS"
	FallbackImage = "BIOS_M2PROM"
)

type config struct {
	log    logr.Logger
	hook   func(State)
	images [2]string
}

func defaultConfig() config {
	return config{
		log:    logr.Discard(),
		images: [2]string{PrimaryImage, FallbackImage},
	}
}

type Option func(*config)

func WithLogger(log logr.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithStateHook registers fn to be called on every state transition.
func WithStateHook(fn func(State)) Option {
	return func(c *config) { c.hook = fn }
}

func WithImageNames(primary, fallback string) Option {
	return func(c *config) { c.images = [2]string{primary, fallback} }
}
