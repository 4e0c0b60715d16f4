package minfat

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Entry is a file to be stored by Create.
type Entry struct {
	Name string // 8.3 directory form
	Data []byte
}

// ShortName converts a file name like "bios_m2p.rom" to its directory form
// "BIOS_M2PROM".
func ShortName(name string) (string, error) {
	base, ext, _ := strings.Cut(strings.ToUpper(name), ".")
	if base == "" || len(base) > 8 || len(ext) > 3 || strings.ContainsAny(ext, ". ") {
		return "", fmt.Errorf("%w: %q", ErrName, name)
	}
	short := fmt.Sprintf("%-8s%-3s", base, ext)
	if !validName(short) {
		return "", fmt.Errorf("%w: %q", ErrName, name)
	}
	return short, nil
}

const (
	createRootEntries = 512
	createReserved    = 1
	createFATs        = 2
)

// Create writes a FAT16 superfloppy of the given number of sectors to dev and
// stores files in its root directory. Files are allocated contiguously.
func Create(dev io.WriterAt, sectors uint32, files []Entry) error {
	if len(files) > createRootEntries {
		return errors.New("minfat: too many files")
	}
	for _, f := range files {
		if !validName(f.Name) {
			return fmt.Errorf("%w: %q", ErrName, f.Name)
		}
	}

	clusterSize := uint32(1)
	for sectors/clusterSize >= maxClusters && clusterSize < 128 {
		clusterSize <<= 1
	}
	rootSectors := uint32(createRootEntries * dirEntrySize / sectorSize)
	fatSize := uint32(0)
	var clusters uint32
	for n := 0; n < 3; n++ { // fatSize and clusters depend on each other
		data := sectors - createReserved - createFATs*fatSize - rootSectors
		clusters = data / clusterSize
		fatSize = ((clusters+2)*2 + sectorSize - 1) / sectorSize
	}
	if clusters < minClusters || clusters >= maxClusters {
		return fmt.Errorf("minfat: %d sectors don't make a FAT16 volume", sectors)
	}

	var sect [sectorSize]byte
	le := binary.LittleEndian
	copy(sect[0:], []byte{0xeb, 0x3c, 0x90})
	copy(sect[3:11], "MKSDIMG ")
	le.PutUint16(sect[11:], sectorSize)
	sect[13] = byte(clusterSize)
	le.PutUint16(sect[14:], createReserved)
	sect[16] = createFATs
	le.PutUint16(sect[17:], createRootEntries)
	if sectors < 0x10000 {
		le.PutUint16(sect[19:], uint16(sectors))
	} else {
		le.PutUint32(sect[32:], sectors)
	}
	sect[21] = 0xf8 // fixed disk
	le.PutUint16(sect[22:], uint16(fatSize))
	sect[38] = 0x29
	copy(sect[43:54], "NO NAME    ")
	copy(sect[54:62], "FAT16   ")
	sect[510], sect[511] = 0x55, 0xaa
	if _, err := dev.WriteAt([]byte{0}, int64(sectors)*sectorSize-1); err != nil {
		return err // extends dev to its full size
	}
	if _, err := dev.WriteAt(sect[:], 0); err != nil {
		return err
	}

	fat := make([]byte, fatSize*sectorSize)
	root := make([]byte, rootSectors*sectorSize)
	le.PutUint16(fat[0:], 0xfff8)
	le.PutUint16(fat[2:], 0xffff)

	fatStart := uint32(createReserved)
	dataStart := fatStart + createFATs*fatSize + rootSectors
	clusterBytes := int64(clusterSize) * sectorSize
	next := uint32(2)
	for i, f := range files {
		e := root[i*dirEntrySize:]
		copy(e[:11], f.Name)
		e[11] = 0x20 // archive
		le.PutUint32(e[28:], uint32(len(f.Data)))
		if len(f.Data) == 0 {
			continue
		}
		n := uint32((int64(len(f.Data)) + clusterBytes - 1) / clusterBytes)
		if next+n-2 > clusters {
			return errors.New("minfat: volume full")
		}
		le.PutUint16(e[26:], uint16(next))
		for c := next; c < next+n; c++ {
			link := uint16(c + 1)
			if c == next+n-1 {
				link = 0xffff
			}
			le.PutUint16(fat[c*2:], link)
		}
		off := int64(dataStart+(next-2)*clusterSize) * sectorSize
		if _, err := dev.WriteAt(f.Data, off); err != nil {
			return err
		}
		next += n
	}

	for i := uint32(0); i < createFATs; i++ {
		off := int64(fatStart+i*fatSize) * sectorSize
		if _, err := dev.WriteAt(fat, off); err != nil {
			return err
		}
	}
	_, err := dev.WriteAt(root, int64(fatStart+createFATs*fatSize)*sectorSize)
	return err
}
