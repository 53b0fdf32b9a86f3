package nes

import "testing"

func newTestMapper4() *mapper4 {
	prg := make([]byte, 0x8000) // 4 banks of 8 KiB
	chr := make([]byte, 0x2000) // 8 banks of 1 KiB
	m := newMapper4(&RomInfo{PRGROM: prg, CHRROM: chr, WRAMSize: 0x2000})
	m.AttachPPU(NewPPU())
	return m
}

// driveA12Edge raises then lowers A12, first holding it low for the given
// number of M2 cycles so the mapper's edge filter sees a qualifying
// low-then-rising transition (or not, if cycles < 3).
func driveA12Edge(m *mapper4, lowCycles int) {
	m.NotifyA12(0x0000)
	for i := 0; i < lowCycles; i++ {
		m.TickM2()
	}
	m.NotifyA12(0x1000)
}

func TestMapper4IRQFiltersShortLowPulses(t *testing.T) {
	m := newTestMapper4()
	m.WritePRG(0xC000, 1) // irqLatch = 1
	m.WritePRG(0xC001, 0) // reload
	m.WritePRG(0xE001, 0) // enable

	driveA12Edge(m, 2) // below the 3-cycle filter threshold
	if m.IRQPending() {
		t.Fatalf("IRQ fired on a sub-threshold A12 low pulse")
	}
}

func TestMapper4IRQFiresOnReloadToZero(t *testing.T) {
	m := newTestMapper4()
	m.WritePRG(0xC000, 0) // irqLatch = 0: reload lands directly on zero
	m.WritePRG(0xC001, 0) // reload
	m.WritePRG(0xE001, 0) // enable

	driveA12Edge(m, 3)
	if !m.IRQPending() {
		t.Fatalf("IRQ did not fire when the reload value was 0")
	}
}

func TestMapper4IRQCountsDownAndFires(t *testing.T) {
	m := newTestMapper4()
	m.WritePRG(0xC000, 2) // irqLatch = 2
	m.WritePRG(0xC001, 0) // reload
	m.WritePRG(0xE001, 0) // enable

	driveA12Edge(m, 3) // reload: counter = 2
	if m.IRQPending() {
		t.Fatalf("IRQ fired immediately after reload to a nonzero latch")
	}
	driveA12Edge(m, 3) // counter: 2 -> 1
	if m.IRQPending() {
		t.Fatalf("IRQ fired one cycle early")
	}
	driveA12Edge(m, 3) // counter: 1 -> 0
	if !m.IRQPending() {
		t.Fatalf("IRQ did not fire when the counter reached 0")
	}
}

func TestMapper4IRQAckClearsPending(t *testing.T) {
	m := newTestMapper4()
	m.WritePRG(0xC000, 0)
	m.WritePRG(0xC001, 0)
	m.WritePRG(0xE001, 0)
	driveA12Edge(m, 3)
	if !m.IRQPending() {
		t.Fatalf("setup: expected IRQ pending")
	}
	m.WritePRG(0xE000, 0) // disable + acknowledge
	if m.IRQPending() {
		t.Fatalf("IRQ still pending after $E000 acknowledge")
	}
}

func TestMapper4WRAMGating(t *testing.T) {
	m := newTestMapper4()
	m.WriteWRAM(0x6000, 0x11) // disabled by default
	if got := m.ReadWRAM(0x6000); got != 0xFF {
		t.Fatalf("disabled WRAM: got=0x%02x, want=0xFF", got)
	}
	m.WritePRG(0xA001, 0x80) // enable, no write-protect
	m.WriteWRAM(0x6000, 0x11)
	if got := m.ReadWRAM(0x6000); got != 0x11 {
		t.Fatalf("enabled WRAM: got=0x%02x, want=0x11", got)
	}
	m.WritePRG(0xA001, 0xC0) // enable + write-protect
	m.WriteWRAM(0x6000, 0x22)
	if got := m.ReadWRAM(0x6000); got != 0x11 {
		t.Fatalf("write-protected WRAM should reject the write: got=0x%02x", got)
	}
}

func TestMapper4PRGBankModeSwap(t *testing.T) {
	m := newTestMapper4()
	for bank := 0; bank < 4; bank++ {
		for i := 0; i < 0x2000; i++ {
			m.prg[bank*0x2000+i] = byte(bank)
		}
	}
	m.WritePRG(0x8000, 0x06) // select R6, PRG mode 0
	m.WritePRG(0x8001, 1)    // R6 = bank 1
	if got := m.ReadPRG(0x8000); got != 1 {
		t.Fatalf("mode 0, $8000 window: got bank %d, want 1", got)
	}
	if got := m.ReadPRG(0xC000); got != 2 {
		t.Fatalf("mode 0, $C000 window (second-to-last): got bank %d, want 2", got)
	}
	m.WritePRG(0x8000, 0x46) // same reg, PRG mode 1: swaps $8000/$C000
	if got := m.ReadPRG(0x8000); got != 2 {
		t.Fatalf("mode 1, $8000 window (second-to-last): got bank %d, want 2", got)
	}
	if got := m.ReadPRG(0xC000); got != 1 {
		t.Fatalf("mode 1, $C000 window: got bank %d, want 1", got)
	}
}
