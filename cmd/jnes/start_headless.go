//go:build !ui

package main

import (
	"github.com/golang/glog"

	"github.com/nesalab/jnes/nes"
)

// start is the default build's windowed entry point: the `ui` package
// pulls in go-gl/glfw, which this build tag keeps out of a plain
// `go build` so headless use (tests, CI, scripted runs) never needs an
// OpenGL toolchain installed.
func start(console nes.Console, width, height int) {
	glog.Fatalln("this build has no windowed UI: pass -headless, or build with -tags ui")
}
