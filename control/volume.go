package control

import (
	"github.com/ocmsx/ctrlrom/boot"
	"github.com/ocmsx/ctrlrom/drivers/minfat"
)

type volume struct {
	*minfat.Drive
}

// Volume makes a FAT drive usable as the boot loader's storage.
func Volume(d *minfat.Drive) boot.Storage { return volume{d} }

func (v volume) Open(name string) (boot.Image, error) {
	f, err := v.Drive.Open(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}
