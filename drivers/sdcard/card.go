// Package sdcard provides block access to the SD card the BIOS is loaded
// from.
package sdcard

import (
	"errors"
)

const BlockSize = 512

// Card is a block device which needs to be initialized before use.
type Card interface {
	Init() error

	// HighCapacity reports whether the card uses block addressing (SDHC
	// and larger). Only valid after Init.
	HighCapacity() bool

	// ReadBlock reads block lba into dst, which must hold BlockSize bytes.
	ReadBlock(dst []byte, lba uint32) error
}

var (
	ErrNoCard      = errors.New("sdcard: no card")
	ErrTimeout     = errors.New("sdcard: timeout")
	ErrVoltage     = errors.New("sdcard: unsupported voltage range")
	ErrRead        = errors.New("sdcard: read failed")
	ErrOutOfRange  = errors.New("sdcard: block out of range")
	ErrNotInit     = errors.New("sdcard: not initialized")
	ErrShortBuffer = errors.New("sdcard: buffer smaller than a block")
)
