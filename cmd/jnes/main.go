// Command jnes loads an iNES ROM and runs it, either headless (useful for
// scripted testing) or, when built with the `ui` tag, in a window.
package main

import (
	"flag"
	"io/ioutil"

	"github.com/golang/glog"

	"github.com/nesalab/jnes/nes"
)

var (
	romPath  = flag.String("rom", "", "path to an iNES ROM file")
	headless = flag.Bool("headless", false, "run without opening a window")
	debug    = flag.Bool("debug", false, "run the stdin-driven debug console")
	pal      = flag.Bool("pal", false, "use PAL timing instead of NTSC")
	width    = flag.Int("width", 256, "window width")
	height   = flag.Int("height", 240, "window height")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	if *romPath == "" {
		glog.Fatalln("-rom is required")
	}
	data, err := ioutil.ReadFile(*romPath)
	if err != nil {
		glog.Fatalln(err)
	}
	cartridge, err := nes.NewCartridge(data)
	if err != nil {
		glog.Fatalln(err)
	}
	console, err := nes.NewConsole(cartridge, *debug)
	if err != nil {
		glog.Fatalln(err)
	}
	if nc, ok := console.(*nes.NesConsole); ok && *pal {
		nc.SetRegion(true)
	}

	if *headless {
		runHeadless(console)
		return
	}
	runWindowed(console, *width, *height)
}

// runHeadless steps the console forward without any video/audio host,
// useful for smoke-testing a ROM loads and boots without a display.
func runHeadless(console nes.Console) {
	for frames := 0; frames < 60; {
		if _, err := console.Step(); err != nil {
			glog.Fatalln(err)
		}
		if _, ok := console.Frame(); ok {
			frames++
		}
	}
}

func runWindowed(console nes.Console, width, height int) {
	start(console, width, height)
}
