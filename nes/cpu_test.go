package nes

import "testing"

// newRunningCPU wires a CPU up to a tiny NROM program and runs it from
// reset, the way newTestCPU in the teacher lineage bootstrapped against
// nestest.nes - but self-contained, since this core's CPU interpreter is
// an opaque, out-of-scope collaborator (see DESIGN.md) and the golden
// nestest trace fixture isn't part of this retrieval pack.
func newRunningCPU(t *testing.T, program []byte) *CPU {
	t.Helper()
	cart := newTestCartridge(t, program)
	controller := NewController()
	ppu := NewPPU()
	apu := NewAPU()
	cart.Mapper.AttachPPU(ppu)
	bus := NewCPUBus(NewRAM(), ppu, apu, cart, controller)
	cpu := NewCPU(bus)
	return cpu
}

func TestCPUResetVector(t *testing.T) {
	cpu := newRunningCPU(t, []byte{0xEA})
	if cpu.PC != 0x8000 {
		t.Fatalf("PC after reset: got=0x%04x, want=0x8000", cpu.PC)
	}
	if cpu.S != 0xFD {
		t.Fatalf("S after reset: got=0x%02x, want=0xFD", cpu.S)
	}
	if !cpu.P.I {
		t.Fatalf("I flag after reset: got=false, want=true")
	}
}

func TestCPULoadStoreAndFlags(t *testing.T) {
	program := []byte{
		0xA9, 0x00, // LDA #$00
		0x85, 0x10, // STA $10
		0xA9, 0x80, // LDA #$80
		0x85, 0x11, // STA $11
	}
	cpu := newRunningCPU(t, program)
	for i := 0; i < 2; i++ {
		cpu.Do()
	}
	if got := cpu.bus.read(0x10); got != 0x00 {
		t.Fatalf("$10: got=0x%02x, want=0x00", got)
	}
	if !cpu.P.Z {
		t.Fatalf("Z flag after LDA #$00: got=false, want=true")
	}
	for i := 0; i < 2; i++ {
		cpu.Do()
	}
	if got := cpu.bus.read(0x11); got != 0x80 {
		t.Fatalf("$11: got=0x%02x, want=0x80", got)
	}
	if !cpu.P.N {
		t.Fatalf("N flag after LDA #$80: got=false, want=true")
	}
}

func TestCPUIncrementAndBranch(t *testing.T) {
	program := []byte{
		0xA2, 0xFE, // LDX #$FE
		0xE8,       // INX
		0xE8,       // INX (X wraps to 0x00, Z set)
		0xD0, 0xFD, // BNE -3 (not taken, Z is set)
		0xA9, 0x01, // LDA #$01
	}
	cpu := newRunningCPU(t, program)
	for i := 0; i < 5; i++ {
		cpu.Do()
	}
	if cpu.X != 0x00 {
		t.Fatalf("X: got=0x%02x, want=0x00", cpu.X)
	}
	if !cpu.P.Z {
		t.Fatalf("Z flag: got=false, want=true")
	}
	if cpu.A != 0x01 {
		t.Fatalf("A: got=0x%02x, want=0x01 (branch should not have been taken)", cpu.A)
	}
}

func TestCPUStackPushPull(t *testing.T) {
	program := []byte{
		0xA9, 0x42, // LDA #$42
		0x48, // PHA
		0xA9, 0x00, // LDA #$00
		0x68, // PLA
	}
	cpu := newRunningCPU(t, program)
	startS := cpu.S
	for i := 0; i < 4; i++ {
		cpu.Do()
	}
	if cpu.A != 0x42 {
		t.Fatalf("A after PLA: got=0x%02x, want=0x42", cpu.A)
	}
	if cpu.S != startS {
		t.Fatalf("S after matched push/pull: got=0x%02x, want=0x%02x", cpu.S, startS)
	}
}

func TestCPUOAMDMAStallParity(t *testing.T) {
	program := []byte{0xEA}
	cpu := newRunningCPU(t, program)
	cpu.totalCycles = 0
	cpu.write(0x4014, 0x02)
	if cpu.stall != 513 {
		t.Fatalf("OAM DMA stall on even cycle: got=%d, want=513", cpu.stall)
	}
	cpu.stall = 0
	cpu.totalCycles = 1
	cpu.write(0x4014, 0x02)
	if cpu.stall != 514 {
		t.Fatalf("OAM DMA stall on odd cycle: got=%d, want=514", cpu.stall)
	}
}

func TestCPUIRQRespectsIFlag(t *testing.T) {
	program := []byte{0x78, 0xEA} // SEI, NOP
	cpu := newRunningCPU(t, program)
	cpu.Do() // SEI
	cpu.irqTriggered = true
	cpu.Do()
	vector := cpu.bus.read16(0xFFFE)
	if cpu.PC == vector {
		t.Fatalf("IRQ fired while I flag was set")
	}
}
