package nes

import "github.com/golang/glog"

// mapper4 implements MMC3 (TxROM): https://www.nesdev.org/wiki/MMC3
//
// Bank switching and mirroring are controlled through the even/odd pair
// of registers at $8000/$8001 and $A000/$A001, decoded by addr&0xE001 the
// way real MMC3 boards ignore every address bit below A13 except A0.
// The scanline IRQ is driven by the PPU's A12 line: only a rising edge
// preceded by at least 3 CPU (M2) cycles of A12 held low clocks the
// counter, which is how real boards filter the sprite-fetch-induced A12
// wiggle from the one true per-scanline A12 rise. Only MMC3's "new" IRQ
// behavior (irq fires the instant the reload makes the counter hit zero)
// is implemented, per this system's scope.
type mapper4 struct {
	prg []byte
	chr []byte

	prgBanks8k int
	bankSelect byte
	reg        [8]byte

	fourScreen     bool
	mirrorVertical bool

	wram *wramPager

	irqLatch   byte
	irqCounter byte
	irqReload  bool
	irqEnabled bool
	irqPending bool

	a12Level   bool
	lowM2Count int

	ppu *PPU
}

func newMapper4(info *RomInfo) *mapper4 {
	chr := info.CHRROM
	if len(chr) == 0 {
		chr = make([]byte, 0x2000)
	}
	return &mapper4{
		prg:            info.PRGROM,
		chr:            chr,
		prgBanks8k:     len(info.PRGROM) / 0x2000,
		fourScreen:     info.Mirroring == MirrorFourScreen,
		mirrorVertical: info.Mirroring == MirrorVertical,
		wram:           newWRAMPager(info.WRAMSize),
	}
}

func (m *mapper4) prgBank(slot int) int {
	last := m.prgBanks8k - 1
	var bank int
	switch slot {
	case 0:
		if m.bankSelect&0x40 == 0 {
			bank = int(m.reg[6])
		} else {
			bank = last - 1
		}
	case 1:
		bank = int(m.reg[7])
	case 2:
		if m.bankSelect&0x40 == 0 {
			bank = last - 1
		} else {
			bank = int(m.reg[6])
		}
	default: // slot 3
		bank = last
	}
	bank %= m.prgBanks8k
	if bank < 0 {
		bank += m.prgBanks8k
	}
	return bank
}

func (m *mapper4) ReadPRG(address uint16) byte {
	if address < 0x8000 {
		return 0xFF
	}
	slot := int((address - 0x8000) / 0x2000)
	off := int((address - 0x8000) % 0x2000)
	return m.prg[m.prgBank(slot)*0x2000+off]
}

func (m *mapper4) WritePRG(address uint16, data byte) {
	switch address & 0xE001 {
	case 0x8000:
		prevInversion := m.bankSelect & 0x80
		m.bankSelect = data
		if m.bankSelect&0x80 != prevInversion {
			m.syncCHR()
		}
	case 0x8001:
		reg := m.bankSelect & 0x07
		m.reg[reg] = data
		if reg <= 5 {
			m.syncCHR()
		}
	case 0xA000:
		if !m.fourScreen {
			m.mirrorVertical = data&0x01 == 0
			m.syncMirror()
		}
	case 0xA001:
		m.wram.SetEnable(data&0x80 != 0)
		m.wram.SetWriteProtect(data&0x40 != 0)
	case 0xC000:
		m.irqLatch = data
	case 0xC001:
		m.irqCounter = 0
		m.irqReload = true
	case 0xE000:
		m.irqEnabled = false
		m.irqPending = false
	case 0xE001:
		m.irqEnabled = true
	default:
		glog.V(2).Infof("Unrouted MMC3 PRG write: address=0x%04x, data=0x%02x\n", address, data)
	}
}

func (m *mapper4) ReadWRAM(address uint16) byte        { return m.wram.Read(address - 0x6000) }
func (m *mapper4) WriteWRAM(address uint16, data byte) { m.wram.Write(address-0x6000, data) }

// syncCHR re-applies all 6 CHR registers to the PPU's 8 pattern-table
// pages. The two 2 KiB windows (R0, R1) are even-masked; a 1 (D7 of the
// bank-select register) swaps which half of the pattern table they occupy.
func (m *mapper4) syncCHR() {
	banks1k := len(m.chr) / 0x400
	if banks1k == 0 {
		return
	}
	page := func(bank int) []byte {
		b := bank % banks1k
		if b < 0 {
			b += banks1k
		}
		lo := b * 0x400
		return m.chr[lo : lo+0x400]
	}
	r0 := int(m.reg[0] &^ 1)
	r1 := int(m.reg[1] &^ 1)
	logical := [8][]byte{
		page(r0), page(r0 + 1),
		page(r1), page(r1 + 1),
		page(int(m.reg[2])), page(int(m.reg[3])),
		page(int(m.reg[4])), page(int(m.reg[5])),
	}
	xor := 0
	if m.bankSelect&0x80 != 0 {
		xor = 4
	}
	for k := 0; k < 8; k++ {
		m.ppu.SetCHRPage(k^xor, logical[k])
	}
}

func (m *mapper4) syncMirror() {
	if m.fourScreen {
		applyMirroring(m.ppu, MirrorFourScreen)
		return
	}
	if m.mirrorVertical {
		applyMirroring(m.ppu, MirrorVertical)
	} else {
		applyMirroring(m.ppu, MirrorHorizontal)
	}
}

func (m *mapper4) AttachPPU(ppu *PPU) {
	m.ppu = ppu
	ppu.SetA12Observer(m.NotifyA12)
	m.syncCHR()
	m.syncMirror()
}

// NotifyA12 is called by the PPU on every CHR address it asserts. Only a
// rising edge counts, and only if A12 was observed low for at least 3
// CPU cycles beforehand - this is the filter real boards use to ignore
// the A12 toggling produced by sprite pattern-table fetches within a
// single scanline.
func (m *mapper4) NotifyA12(address uint16) {
	level := address&0x1000 != 0
	if !m.a12Level && level {
		if m.lowM2Count >= 3 {
			m.clockIRQ()
		}
		m.lowM2Count = 0
	}
	m.a12Level = level
}

// TickM2 is called once per CPU cycle by the scheduler.
func (m *mapper4) TickM2() {
	if !m.a12Level && m.lowM2Count < 8 {
		m.lowM2Count++
	}
}

func (m *mapper4) clockIRQ() {
	if m.irqCounter == 0 || m.irqReload {
		m.irqCounter = m.irqLatch
		m.irqReload = false
	} else {
		m.irqCounter--
	}
	if m.irqCounter == 0 && m.irqEnabled {
		m.irqPending = true
	}
}

func (m *mapper4) IRQPending() bool { return m.irqPending }

func (m *mapper4) Reset() {
	m.bankSelect = 0
	m.irqLatch = 0
	m.irqCounter = 0
	m.irqReload = false
	m.irqEnabled = false
	m.irqPending = false
	m.a12Level = false
	m.lowM2Count = 0
}
