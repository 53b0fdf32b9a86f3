package nes

import "math"

type APU struct {
	pulse1 pulse
	pulse2 pulse
	out    chan float32
	sample int

	// frameIRQCount is incremented by the scheduler's frame-sequencer
	// divider; audio synthesis itself is out of scope. The count is carried
	// in snapshots but is not visible through $4015 and raises no CPU IRQ.
	frameIRQCount int
}

func NewAPU() *APU {
	return &APU{}
}

func (a *APU) Step() {
	sampleRate := 44100
	x := float32(math.Sin(2.0 * math.Pi * 440 * float64(a.sample) / float64(sampleRate)))
	select {
	case a.out <- x: // l
	default:
	}
	select {
	case a.out <- x: // r
	default:
	}
	a.sample++
	if a.sample >= sampleRate*10 {
		a.sample = 0
	}
}

func (a *APU) SetAudioOut(c chan float32) {
	a.out = c
}

// WriteRegister accepts writes to $4000-$4013,$4015: audio synthesis is a
// non-goal, but the bus contract still needs to absorb these without
// faulting for games that probe or reset APU state during boot.
func (a *APU) WriteRegister(address uint16, data byte) {}

// writeFrameCounter handles $4017; the frame sequencer mode/IRQ-inhibit
// bits are accepted but not modeled beyond the divider in RaiseFrameIRQ.
func (a *APU) writeFrameCounter(data byte) {}

// RaiseFrameIRQ is called by the scheduler every time the frame-sequencer
// divider (29,830 CPU cycles on NTSC) elapses.
func (a *APU) RaiseFrameIRQ() {
	a.frameIRQCount++
}

// Pulse is a placeholder for the two pulse channels' register state; audio
// synthesis itself is out of scope (see non-goals), so no code decodes or
// clocks these yet.
type pulse struct {
}
