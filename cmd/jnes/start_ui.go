//go:build ui

package main

import (
	"github.com/nesalab/jnes/nes"
	"github.com/nesalab/jnes/ui"
)

func start(console nes.Console, width, height int) {
	ui.Start(console, width, height)
}
