package integration

import (
	"testing"

	"github.com/nesalab/jnes/nes"
)

// buildSmokeROM assembles a minimal iNES image whose reset vector points
// at an infinite NOP loop, enough to exercise the scheduler end-to-end
// without depending on an external ROM fixture (the teacher lineage's
// sample1.nes/helloworld.png fixtures aren't part of this retrieval pack).
func buildSmokeROM() []byte {
	const prgSize = 0x4000
	prg := make([]byte, prgSize)
	prg[0] = 0xEA // NOP
	prg[1] = 0x4C // JMP $8000
	prg[2] = 0x00
	prg[3] = 0x80
	prg[0x3FFC] = 0x00 // reset vector -> $8000
	prg[0x3FFD] = 0x80
	header := []byte{'N', 'E', 'S', 0x1A, byte(prgSize / 0x4000), 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	return append(append([]byte{}, header...), prg...)
}

// TestBootAndRunsFrames verifies a cartridge loads, a console can be
// constructed from it, and stepping the scheduler forward produces
// completed frames without the CPU/PPU ever erroring.
func TestBootAndRunsFrames(t *testing.T) {
	cartridge, err := nes.NewCartridge(buildSmokeROM())
	if err != nil {
		t.Fatalf("NewCartridge: %v", err)
	}
	console, err := nes.NewConsole(cartridge, false)
	if err != nil {
		t.Fatalf("NewConsole: %v", err)
	}
	frames := 0
	for steps := 0; steps < 2_000_000 && frames < 3; steps++ {
		if _, err := console.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
		if _, ok := console.Frame(); ok {
			frames++
		}
	}
	if frames < 3 {
		t.Fatalf("expected at least 3 completed frames, got %d", frames)
	}
}
