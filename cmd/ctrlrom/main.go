//go:build noos

// Command ctrlrom is the control ROM firmware. It loads the BIOS into the
// host core and then serves the settings menu until power off.
package main

import (
	"context"
	"embedded/rtos"
	"os"
	"syscall"

	"github.com/embeddedgo/fs/termfs"

	"github.com/ocmsx/ctrlrom/control"
	"github.com/ocmsx/ctrlrom/drivers"
	"github.com/ocmsx/ctrlrom/drivers/keyboard"
	"github.com/ocmsx/ctrlrom/drivers/minfat"
	"github.com/ocmsx/ctrlrom/drivers/osd"
	"github.com/ocmsx/ctrlrom/drivers/sdcard"
	"github.com/ocmsx/ctrlrom/host"
)

var screen *osd.Screen

func init() {
	var err error

	// Redirect stdout and stderr to the overlay, panics end up there too.
	screen = osd.New(osd.MMIO())
	syswriter := drivers.NewSystemWriter(screen)
	rtos.SetSystemWriter(syswriter)

	console := termfs.NewLight("termfs", nil, syswriter)
	rtos.Mount(console, "/dev/console")
	os.Stdout, err = os.OpenFile("/dev/console", syscall.O_WRONLY, 0)
	if err != nil {
		panic(err)
	}
	os.Stderr = os.Stdout
}

func main() {
	drive := minfat.NewDrive(sdcard.NewSPICard(sdcard.SPIPort()))
	ctrl := control.New(
		control.Volume(drive),
		host.NewSequencer(host.MMIO(), host.FrameSync()),
		screen,
		keyboard.New(keyboard.PS2()),
	)
	ctrl.Run(context.Background())

	// Nothing left to do without a BIOS, the user has to power cycle.
	select {}
}
