package nes

import "testing"

func newTestMapper5() *mapper5 {
	prg := make([]byte, 0x10000) // 8 banks of 8 KiB
	chr := make([]byte, 0x8000)  // 32 banks of 1 KiB
	m := newMapper5(&RomInfo{PRGROM: prg, CHRROM: chr, WRAMSize: 0x2000})
	m.AttachPPU(NewPPU())
	return m
}

func TestMapper5PRGMode3IsDirectPerBank(t *testing.T) {
	m := newTestMapper5()
	for bank := 0; bank < 8; bank++ {
		for i := 0; i < 0x2000; i++ {
			m.prg[bank*0x2000+i] = byte(bank)
		}
	}
	m.WritePRG(0x5100, 3) // PRG mode 3: four independent 8 KiB windows
	m.WritePRG(0x5114, 2)
	m.WritePRG(0x5115, 3)
	m.WritePRG(0x5116, 4)
	m.WritePRG(0x5117, 5)
	for i, want := range []byte{2, 3, 4, 5} {
		addr := uint16(0x8000 + i*0x2000)
		if got := m.ReadPRG(addr); got != want {
			t.Fatalf("window %d: got bank %d, want %d", i, got, want)
		}
	}
}

func TestMapper5ExRAMWriteBlockedInMode3(t *testing.T) {
	m := newTestMapper5()
	m.WritePRG(0x5104, 1) // ExRAM mode 1: writable RAM
	m.WritePRG(0x5C00, 0x42)
	if got := m.ReadPRG(0x5C00); got != 0x42 {
		t.Fatalf("ExRAM mode 1 write: got=0x%02x, want=0x42", got)
	}
	m.WritePRG(0x5104, 3) // mode 3: writes blocked
	m.WritePRG(0x5C00, 0x99)
	if got := m.ReadPRG(0x5C00); got != 0x42 {
		t.Fatalf("ExRAM mode 3 should reject writes: got=0x%02x, want=0x42 (unchanged)", got)
	}
}

func TestMapper5FillModeNametable(t *testing.T) {
	m := newTestMapper5()
	m.WritePRG(0x5106, 0x55) // fill tile
	m.WritePRG(0x5107, 0x02) // fill attribute (2 bits)
	for i := 0; i < 0x3C0; i++ {
		if m.fillPage[i] != 0x55 {
			t.Fatalf("fill tile byte %d: got=0x%02x, want=0x55", i, m.fillPage[i])
		}
	}
	wantAttr := byte(0x02 | 0x02<<2 | 0x02<<4 | 0x02<<6)
	for i := 0x3C0; i < 0x400; i++ {
		if m.fillPage[i] != wantAttr {
			t.Fatalf("fill attribute byte %d: got=0x%02x, want=0x%02x", i, m.fillPage[i], wantAttr)
		}
	}
}

func TestMapper5ScanlineIRQReloadsOnFire(t *testing.T) {
	m := newTestMapper5()
	m.WritePRG(0x5203, 2) // target scanline 2: also loads counter=2, clears pending
	m.WritePRG(0x5204, 0x80)
	m.TickScanline() // 2 -> 1
	if m.IRQPending() {
		t.Fatalf("IRQ fired early: counter should be 1")
	}
	m.TickScanline() // 1 -> 0
	if m.IRQPending() {
		t.Fatalf("IRQ fired one tick early: counter just reached 0, fires on the next tick")
	}
	m.TickScanline() // counter==0 at entry: fires, reloads to 2
	if !m.IRQPending() {
		t.Fatalf("expected IRQ pending once a tick observes the counter already at 0")
	}
	m.ReadPRG(0x5204) // acknowledges and clears pending
	if m.IRQPending() {
		t.Fatalf("IRQ should clear after reading $5204")
	}
}

func TestMapper5Multiplier(t *testing.T) {
	m := newTestMapper5()
	m.WritePRG(0x5205, 12)
	m.WritePRG(0x5206, 10)
	lo := m.ReadPRG(0x5205)
	hi := m.ReadPRG(0x5206)
	got := uint16(hi)<<8 | uint16(lo)
	if got != 120 {
		t.Fatalf("12*10: got=%d, want=120", got)
	}
}
