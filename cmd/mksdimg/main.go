// Command mksdimg builds SD card images for the control ROM.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	diskfs "github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/disk"
	"github.com/diskfs/go-diskfs/filesystem"
	"github.com/diskfs/go-diskfs/partition/mbr"

	"github.com/ocmsx/ctrlrom/drivers/minfat"
)

const usageString = `Builds an SD card image holding the given files in its root directory.

Usage: %s [flags] <file>...

`

const (
	sectorSize     = 512
	partitionStart = 2048
)

var (
	flags = flag.NewFlagSet("mksdimg", flag.ExitOnError)

	output      = flags.String("o", "sdcard.img", "output image")
	sizeMiB     = flags.Int64("size", 64, "image size in MiB")
	fat32       = flags.Bool("fat32", false, "format FAT32, which the control ROM refuses")
	superfloppy = flags.Bool("superfloppy", false, "no partition table, FAT16 only")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "mksdimg")
	flags.PrintDefaults()
}

type file struct {
	short string // 8.3 directory form
	long  string
	data  []byte
}

func readFiles(paths []string) ([]file, error) {
	files := make([]file, 0, len(paths))
	for _, path := range paths {
		name := filepath.Base(path)
		short, err := minfat.ShortName(name)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		files = append(files, file{short, name, data})
	}
	return files, nil
}

func main() {
	log.Default().SetFlags(0)
	flags.Usage = usage
	flags.Parse(os.Args[1:])

	if *fat32 && *superfloppy {
		log.Fatalln("-fat32 needs a partition table")
	}
	files, err := readFiles(flags.Args())
	if err != nil {
		log.Fatalln(err)
	}
	size := *sizeMiB << 20
	os.Remove(*output)

	switch {
	case *superfloppy:
		err = createSuperfloppy(*output, size, files)
	case *fat32:
		err = createFAT32(*output, size, files)
	default:
		err = createFAT16(*output, size, files)
	}
	if err != nil {
		log.Fatalln(err)
	}
}

func entries(files []file) []minfat.Entry {
	e := make([]minfat.Entry, len(files))
	for i, f := range files {
		e[i] = minfat.Entry{Name: f.short, Data: f.data}
	}
	return e
}

func createSuperfloppy(path string, size int64, files []file) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return minfat.Create(f, uint32(size/sectorSize), entries(files))
}

func partition(path string, size int64, typ mbr.Type) (*disk.Disk, uint32, error) {
	d, err := diskfs.Create(path, size, diskfs.Raw, diskfs.SectorSizeDefault)
	if err != nil {
		return nil, 0, err
	}
	sectors := uint32(size/sectorSize) - partitionStart
	err = d.Partition(&mbr.Table{
		LogicalSectorSize:  sectorSize,
		PhysicalSectorSize: sectorSize,
		Partitions: []*mbr.Partition{{
			Type:  typ,
			Start: partitionStart,
			Size:  sectors,
		}},
	})
	return d, sectors, err
}

func createFAT16(path string, size int64, files []file) error {
	if _, _, err := partition(path, size, mbr.Fat16b); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	vol := io.NewOffsetWriter(f, partitionStart*sectorSize)
	return minfat.Create(vol, uint32(size/sectorSize)-partitionStart, entries(files))
}

func createFAT32(path string, size int64, files []file) error {
	d, _, err := partition(path, size, mbr.Fat32LBA)
	if err != nil {
		return err
	}
	fs, err := d.CreateFilesystem(disk.FilesystemSpec{
		Partition: 1,
		FSType:    filesystem.TypeFat32,
	})
	if err != nil {
		return err
	}
	for _, f := range files {
		rw, err := fs.OpenFile("/"+f.long, os.O_CREATE|os.O_RDWR)
		if err != nil {
			return err
		}
		if _, err := rw.Write(f.data); err != nil {
			return err
		}
	}
	return nil
}
