// Package minfat reads files from the root directory of a FAT16 volume on an
// SD card, one sector at a time.
//
// A Drive owns a single sector buffer which is shared by all its reads. Only
// one file can be open at a time, opening a file invalidates the previous
// one. FAT32 volumes are recognized but can't be read.
package minfat

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/ocmsx/ctrlrom/drivers/sdcard"
)

var (
	ErrNoVolume = errors.New("minfat: no FAT volume found")
	ErrFAT12    = errors.New("minfat: FAT12 not supported")
	ErrFAT32    = errors.New("minfat: FAT32 not supported")
	ErrName     = errors.New("minfat: invalid 8.3 name")
	ErrClosed   = errors.New("minfat: file closed")
	ErrNotMount = errors.New("minfat: not mounted")
)

const (
	sectorSize   = sdcard.BlockSize
	dirEntrySize = 32

	attrVolume = 0x08
	attrDir    = 0x10
	attrLFN    = 0x0f

	fatEOC      = 0xfff8
	minClusters = 4085
	maxClusters = 65525
)

// Drive is a FAT volume on a card.
type Drive struct {
	card sdcard.Card
	buf  [sectorSize]byte

	mounted     bool
	fat32       bool
	clusterSize uint32 // in sectors
	fatStart    uint32
	rootStart   uint32
	rootSectors uint32
	dataStart   uint32

	gen int // invalidates open files
}

func NewDrive(card sdcard.Card) *Drive {
	return &Drive{card: card}
}

func (d *Drive) read(lba uint32) error {
	return d.card.ReadBlock(d.buf[:], lba)
}

func (d *Drive) u16(off int) uint32 { return uint32(binary.LittleEndian.Uint16(d.buf[off:])) }
func (d *Drive) u32(off int) uint32 { return binary.LittleEndian.Uint32(d.buf[off:]) }

func (d *Drive) hasSignature() bool { return d.buf[510] == 0x55 && d.buf[511] == 0xaa }

// isBootSector reports whether the buffer holds a FAT boot sector rather
// than a partition table.
func (d *Drive) isBootSector() bool {
	return (d.buf[0] == 0xeb || d.buf[0] == 0xe9) && d.u16(11) == sectorSize
}

// Init initializes the card and locates the FAT volume, either on the first
// partition or as a superfloppy.
func (d *Drive) Init() error {
	d.mounted = false
	d.gen++
	if err := d.card.Init(); err != nil {
		return err
	}
	if err := d.read(0); err != nil {
		return err
	}
	if !d.hasSignature() {
		return ErrNoVolume
	}
	var start uint32
	if !d.isBootSector() {
		const part0 = 0x1be
		if d.buf[part0+4] == 0 {
			return ErrNoVolume
		}
		start = d.u32(part0 + 8)
		if err := d.read(start); err != nil {
			return err
		}
		if !d.hasSignature() || !d.isBootSector() {
			return ErrNoVolume
		}
	}
	return d.mount(start)
}

func (d *Drive) mount(start uint32) error {
	clusterSize := uint32(d.buf[13])
	reserved := d.u16(14)
	fats := uint32(d.buf[16])
	rootEntries := d.u16(17)
	total := d.u16(19)
	if total == 0 {
		total = d.u32(32)
	}
	fatSize := d.u16(22)
	if clusterSize == 0 || fats == 0 {
		return ErrNoVolume
	}

	d.fat32 = fatSize == 0
	if d.fat32 {
		fatSize = d.u32(36)
	}
	d.clusterSize = clusterSize
	d.fatStart = start + reserved
	d.rootStart = d.fatStart + fats*fatSize
	d.rootSectors = (rootEntries*dirEntrySize + sectorSize - 1) / sectorSize
	d.dataStart = d.rootStart + d.rootSectors

	if !d.fat32 {
		clusters := (total - (d.dataStart - start)) / clusterSize
		if clusters < minClusters {
			return ErrFAT12
		}
	}
	d.mounted = true
	return nil
}

func (d *Drive) HighCapacity() bool { return d.card.HighCapacity() }

// FAT32 reports whether the mounted volume uses 32-bit FAT entries.
func (d *Drive) FAT32() bool { return d.fat32 }

func validName(name string) bool {
	if len(name) != 11 || name[0] == ' ' {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < ' ' || c >= 0x7f || ('a' <= c && c <= 'z') {
			return false
		}
	}
	return true
}

// Open looks up name in the root directory. The name is given in directory
// form, i.e. "BIOS_M2PROM" for BIOS_M2P.ROM.
func (d *Drive) Open(name string) (*File, error) {
	if !d.mounted {
		return nil, ErrNotMount
	}
	if d.fat32 {
		return nil, ErrFAT32
	}
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrName, name)
	}
	d.gen++
	for s := uint32(0); s < d.rootSectors; s++ {
		if err := d.read(d.rootStart + s); err != nil {
			return nil, err
		}
		for off := 0; off < sectorSize; off += dirEntrySize {
			e := d.buf[off : off+dirEntrySize]
			switch {
			case e[0] == 0:
				return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
			case e[0] == 0xe5, e[11] == attrLFN, e[11]&(attrVolume|attrDir) != 0:
				continue
			}
			if string(e[:11]) != name {
				continue
			}
			return &File{
				d:       d,
				gen:     d.gen,
				size:    int64(binary.LittleEndian.Uint32(e[28:])),
				cluster: uint32(binary.LittleEndian.Uint16(e[26:])),
			}, nil
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// File is a file opened for sequential reading.
type File struct {
	d       *Drive
	gen     int
	size    int64
	cluster uint32
	sector  uint32 // within cluster
}

func (f *File) Size() int64 { return f.size }

func (f *File) next() error {
	d := f.d
	off := f.cluster * 2
	if err := d.read(d.fatStart + off/sectorSize); err != nil {
		return err
	}
	f.cluster = d.u16(int(off % sectorSize))
	f.sector = 0
	return nil
}

// ReadBlock reads the next sector of the file. The returned slice is the
// drive's sector buffer and is only valid until the drive is used again.
// Reading past the last cluster returns io.EOF.
func (f *File) ReadBlock() ([]byte, error) {
	d := f.d
	if d == nil || f.gen != d.gen {
		return nil, ErrClosed
	}
	if f.sector == d.clusterSize {
		if err := f.next(); err != nil {
			return nil, err
		}
	}
	if f.cluster < 2 || f.cluster >= fatEOC {
		return nil, io.EOF
	}
	lba := d.dataStart + (f.cluster-2)*d.clusterSize + f.sector
	if err := d.read(lba); err != nil {
		return nil, err
	}
	f.sector++
	return d.buf[:], nil
}
