package nes

import "testing"

func TestSnapshotRoundTripMapper4(t *testing.T) {
	prg := make([]byte, prgROMSizeUnit)
	prg[0] = 0xEA
	prg[0x3FFC], prg[0x3FFD] = 0x00, 0x80
	rom := buildINES(prg, make([]byte, 0x2000), 4, false, false)
	cart, err := NewCartridge(rom)
	if err != nil {
		t.Fatalf("NewCartridge: %v", err)
	}
	consoleIface, err := NewConsole(cart, false)
	if err != nil {
		t.Fatalf("NewConsole: %v", err)
	}
	console := consoleIface.(*NesConsole)

	m := cart.Mapper.(*mapper4)
	m.WritePRG(0xC000, 7) // irqLatch
	m.WritePRG(0xA001, 0x80)
	m.WriteWRAM(0x6000, 0x99)
	for i := 0; i < 50; i++ {
		if _, err := console.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	snap := console.Capture()
	encoded, err := snap.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	decoded, err := UnmarshalSnapshot(encoded)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot: %v", err)
	}

	// Mutate live state, then restore from the decoded snapshot and check
	// it lands back exactly on the captured values.
	console.cpu.A = 0xFF
	m.WriteWRAM(0x6000, 0x00)
	m.irqLatch = 0

	if err := console.Restore(decoded); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if console.cpu.A != snap.CPU.A {
		t.Fatalf("CPU.A after restore: got=0x%02x, want=0x%02x", console.cpu.A, snap.CPU.A)
	}
	if got := m.ReadWRAM(0x6000); got != 0x99 {
		t.Fatalf("WRAM after restore: got=0x%02x, want=0x99", got)
	}
	if m.irqLatch != 7 {
		t.Fatalf("mapper4 irqLatch after restore: got=%d, want=7", m.irqLatch)
	}
	ms, ok := decoded.Mapper.(*Mapper4State)
	if !ok {
		t.Fatalf("decoded mapper state type: got=%T, want=*Mapper4State", decoded.Mapper)
	}
	if ms.IRQLatch != 7 {
		t.Fatalf("decoded IRQLatch: got=%d, want=7", ms.IRQLatch)
	}
	if decoded.PPU.Dot != snap.PPU.Dot || decoded.PPU.Scanline != snap.PPU.Scanline {
		t.Fatalf("decoded PPU dot/scanline: got=(%d,%d), want=(%d,%d)",
			decoded.PPU.Dot, decoded.PPU.Scanline, snap.PPU.Dot, snap.PPU.Scanline)
	}
	if decoded.APU.FrameIRQCount != snap.APU.FrameIRQCount {
		t.Fatalf("decoded APU.FrameIRQCount: got=%d, want=%d", decoded.APU.FrameIRQCount, snap.APU.FrameIRQCount)
	}
}
