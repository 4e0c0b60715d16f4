package main

import (
	"log"
	"os"
	"os/exec"
	"os/signal"

	"github.com/kballard/go-shellquote"
)

// runEmulator runs cmdline with the BIOS file appended and returns its exit
// code. An interrupt is forwarded to the whole process group.
func runEmulator(cmdline, bios string) int {
	args, err := shellquote.Split(cmdline)
	if err != nil || len(args) == 0 {
		log.Println("run:", err)
		return 1
	}
	args = append(args, bios)
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	processGroupEnable(cmd)

	sigintr := make(chan os.Signal, 1)
	signal.Notify(sigintr, os.Interrupt)
	defer signal.Stop(sigintr)

	if err := cmd.Start(); err != nil {
		log.Println("start command:", err)
		return 1
	}
	go func() {
		if _, ok := <-sigintr; !ok {
			return
		}
		if err := processGroupKill(cmd); err != nil {
			log.Println(err)
		}
	}()

	if err := cmd.Wait(); err != nil {
		if exit, ok := err.(*exec.ExitError); ok {
			return exit.ExitCode()
		}
		log.Println(err)
		return 1
	}
	return 0
}
