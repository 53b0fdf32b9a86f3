package nes

import "testing"

func buildSchedulerROM() []byte {
	prg := make([]byte, prgROMSizeUnit)
	prg[0] = 0xEA // NOP
	prg[1] = 0x4C // JMP $8000
	prg[2] = 0x00
	prg[3] = 0x80
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0x80
	return buildINES(prg, nil, 0, false, false)
}

// TestSchedulerDotRatioInvariant checks the documented catch-up invariant:
// after N CPU cycles the PPU has advanced to within one dot of floor(N*R),
// for both the NTSC (3:1) and PAL (16:5) ratios.
func TestSchedulerDotRatioInvariant(t *testing.T) {
	for _, tc := range []struct {
		name     string
		pal      bool
		num, den int64
	}{
		{"NTSC", false, 3, 1},
		{"PAL", true, 16, 5},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cart, err := NewCartridge(buildSchedulerROM())
			if err != nil {
				t.Fatalf("NewCartridge: %v", err)
			}
			consoleIface, err := NewConsole(cart, false)
			if err != nil {
				t.Fatalf("NewConsole: %v", err)
			}
			console := consoleIface.(*NesConsole)
			console.SetRegion(tc.pal)

			cpuCyclesBefore := console.cpu.totalCycles
			dotsBefore := console.totalPPUDots()

			for i := 0; i < 500; i++ {
				if _, err := console.Step(); err != nil {
					t.Fatalf("Step: %v", err)
				}
			}

			cpuDelta := int64(console.cpu.totalCycles - cpuCyclesBefore)
			dotsDelta := int64(console.totalPPUDots() - dotsBefore)
			want := cpuDelta * tc.num / tc.den
			if dotsDelta != want && dotsDelta != want+1 {
				t.Fatalf("%s: PPU dots=%d, want floor(%d*%d/%d)=%d (or +1)",
					tc.name, dotsDelta, cpuDelta, tc.num, tc.den, want)
			}
		})
	}
}
