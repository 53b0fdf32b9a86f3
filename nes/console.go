package nes

import "image"

type Console interface {
	Reset()
	Step() (int, error)
	Frame() (*image.RGBA, bool)
	SetAudioOut(chan float32)
	SetButtons(port int, buttons [8]bool)
}

// frameIRQDividerNTSC is the CPU-cycle period of the APU frame sequencer's
// IRQ, used here only to drive RaiseFrameIRQ's cadence (audio synthesis
// itself is a non-goal).
const frameIRQDividerNTSC = 29830

// NesConsole is the catch-up scheduler tying the CPU, PPU, APU, mapper
// and controllers together. It runs one CPU instruction at a time and
// then walks the PPU forward by exactly ratio-times as many dots, the
// way the teacher's NesConsole.Step does for its fixed 3:1 NTSC ratio -
// generalized here to a region-parameterized rational ratio so PAL's
// 16:5 works the same way.
type NesConsole struct {
	cpu        *CPU
	ppu        *PPU
	apu        *APU
	cartridge  *Cartridge
	controller *Controller

	pal bool

	// dotAccumulator holds the running remainder of cpu_cycles * ratioNum
	// / ratioDen, so PPU dots are emitted exactly floor(cpu*R) over time
	// without ever materializing a fraction.
	dotAccumulator int
	ratioNum       int
	ratioDen       int
	dotsEmitted    uint64 // total PPU dots clocked, for the ppu_cycles_total invariant

	frameIRQAccumulator int

	lastFrame    uint64
	currentFrame uint64
	buffer       *image.RGBA
}

// NewConsole creates a console. If debug is true, this creates a debug console.
func NewConsole(cartridge *Cartridge, debug bool) (Console, error) {
	controller := NewController()
	ppu := NewPPU()
	apu := NewAPU()
	cpuBus := NewCPUBus(NewRAM(), ppu, apu, cartridge, controller)
	cpu := NewCPU(cpuBus)
	console := &NesConsole{
		cpu:        cpu,
		ppu:        ppu,
		apu:        apu,
		cartridge:  cartridge,
		controller: controller,
	}
	console.setRatio()
	cartridge.Mapper.AttachPPU(ppu)
	console.Reset()
	if debug {
		return &DebugConsole{NesConsole: console}, nil
	}
	return console, nil
}

// SetRegion switches the console between NTSC and PAL timing. Must be
// called before Reset to take effect on the reset-alignment dot count.
func (c *NesConsole) SetRegion(pal bool) {
	c.pal = pal
	c.ppu.SetRegion(pal)
	c.setRatio()
}

func (c *NesConsole) setRatio() {
	if c.pal {
		c.ratioNum, c.ratioDen = 16, 5
	} else {
		c.ratioNum, c.ratioDen = 3, 1
	}
}

// clockPPU advances the PPU by the number of dots owed for n CPU cycles,
// maintaining the running remainder so ppu_cycles_total never drifts from
// floor(cpu_cycles_total * ratio).
func (c *NesConsole) clockPPU(cpuCycles int) {
	c.dotAccumulator += cpuCycles * c.ratioNum
	for c.dotAccumulator >= c.ratioDen {
		c.dotAccumulator -= c.ratioDen
		c.dotsEmitted++
		nmi, _ := c.ppu.Clock()
		if nmi {
			c.cpu.nmiTriggered = true
		}
		if f, ok := c.ppu.FrameComplete(); ok {
			c.currentFrame++
			c.buffer = f
		}
	}
}

func (c *NesConsole) Reset() {
	c.currentFrame = 0
	c.lastFrame = 0
	c.dotAccumulator = 0
	c.frameIRQAccumulator = 0
	c.cpu.Reset()
	c.ppu.Reset(true)
	c.cartridge.Mapper.Reset()
	// Reset alignment: the PPU free-runs 7 CPU cycles' worth of dots
	// before the CPU's first fetch, to match the relative phase hardware
	// comes up in.
	c.clockPPU(7)
	c.cpu.totalCycles += 7
}

// Step executes one CPU instruction and returns how many CPU cycles it
// consumed, having walked the PPU, APU and mapper forward by the same
// amount of wall-clock.
func (c *NesConsole) Step() (int, error) {
	c.cpu.irqTriggered = c.cartridge.Mapper.IRQPending()
	cycles, err := c.cpu.Step()
	if err != nil {
		return cycles, err
	}
	for i := 0; i < cycles; i++ {
		c.apu.Step()
		c.cartridge.Mapper.TickM2()
	}
	c.clockPPU(cycles)
	c.frameIRQAccumulator += cycles
	if c.frameIRQAccumulator >= frameIRQDividerNTSC {
		c.frameIRQAccumulator -= frameIRQDividerNTSC
		c.apu.RaiseFrameIRQ()
	}
	return cycles, nil
}

// Frame returns a new frame.
func (c *NesConsole) Frame() (*image.RGBA, bool) {
	if c.lastFrame < c.currentFrame {
		c.lastFrame = c.currentFrame
		return c.buffer, true
	}
	return c.buffer, false
}

func (c *NesConsole) SetAudioOut(channel chan float32) {
	c.apu.SetAudioOut(channel)
}

// totalPPUDots reports the running count of PPU dots clocked so far,
// i.e. ppu_cycles_total - it should never drift from
// floor(cpu_cycles_total * ratioNum / ratioDen) by more than one dot.
func (c *NesConsole) totalPPUDots() uint64 {
	return c.dotsEmitted
}

func (c *NesConsole) SetButtons(port int, buttons [8]bool) {
	c.controller.SetButtons(port, buttons)
}
