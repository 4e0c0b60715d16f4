package boot

import (
	"errors"
	"fmt"
)

var (
	ErrStorageInit           = errors.New("SD card init failed")
	ErrUnsupportedCard       = errors.New("SDHC card not supported")
	ErrUnsupportedFilesystem = errors.New("FAT32 filesystem not supported")
	ErrImageNotFound         = errors.New("no BIOS image found")
)

// BlockReadError is returned when reading a block of the image failed.
// Blocks before it were streamed completely.
type BlockReadError struct {
	Block int
	Err   error
}

func (e *BlockReadError) Error() string {
	return fmt.Sprintf("read block %d: %v", e.Block, e.Err)
}

func (e *BlockReadError) Unwrap() error { return e.Err }
