package sdcard

import (
	"io"
	"os"
	"sync"
)

// Cards larger than this can't be standard capacity.
const maxStandardCapacity = 2 << 30

// Image is a card backed by a raw disk image, e.g. a dump of a real card.
type Image struct {
	r    io.ReaderAt
	size int64
	hc   bool
	c    io.Closer
}

type ImageOption func(*Image)

// ForceHighCapacity makes the image report itself as SDHC regardless of its
// size.
func ForceHighCapacity(hc bool) ImageOption {
	return func(img *Image) { img.hc = img.hc || hc }
}

func NewImage(r io.ReaderAt, size int64, opts ...ImageOption) *Image {
	img := &Image{r: r, size: size, hc: size > maxStandardCapacity}
	for _, opt := range opts {
		opt(img)
	}
	return img
}

// OpenImage opens the image file at path read-only.
func OpenImage(path string, opts ...ImageOption) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	img := NewImage(f, info.Size(), opts...)
	img.c = f
	return img, nil
}

func (img *Image) Init() error        { return nil }
func (img *Image) HighCapacity() bool { return img.hc }
func (img *Image) Size() int64        { return img.size }

func (img *Image) ReadBlock(dst []byte, lba uint32) error {
	if len(dst) < BlockSize {
		return ErrShortBuffer
	}
	off := int64(lba) * BlockSize
	if off+BlockSize > img.size {
		return ErrOutOfRange
	}
	_, err := img.r.ReadAt(dst[:BlockSize], off)
	return err
}

func (img *Image) Close() error {
	if img.c == nil {
		return nil
	}
	return img.c.Close()
}

// Memory is a card held in RAM. Reads of blocks listed in Bad fail.
type Memory struct {
	Data []byte
	HC   bool
	Bad  map[uint32]bool

	InitErr error

	mtx   sync.Mutex
	reads []uint32
}

var (
	_ Card = (*Image)(nil)
	_ Card = (*Memory)(nil)
)

func (m *Memory) Init() error        { return m.InitErr }
func (m *Memory) HighCapacity() bool { return m.HC }

func (m *Memory) ReadBlock(dst []byte, lba uint32) error {
	m.mtx.Lock()
	m.reads = append(m.reads, lba)
	m.mtx.Unlock()
	if len(dst) < BlockSize {
		return ErrShortBuffer
	}
	if m.Bad[lba] {
		return ErrRead
	}
	off := int(lba) * BlockSize
	if off+BlockSize > len(m.Data) {
		return ErrOutOfRange
	}
	copy(dst, m.Data[off:off+BlockSize])
	return nil
}

// Reads returns the blocks read so far, in order.
func (m *Memory) Reads() []uint32 {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return append([]uint32(nil), m.reads...)
}
