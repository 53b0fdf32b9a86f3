package nes

import "github.com/golang/glog"

// mapper5 implements MMC5 (ExROM): https://www.nesdev.org/wiki/MMC5
//
// PRG/CHR banking is computed on demand from the mode byte and the raw
// register file rather than resynchronized into a precomputed table, since
// PRG access never crosses into the PPU's page-pointer arena. CHR access
// does, so syncCHR pushes page slices into the PPU on every register
// write that could move them. ExRAM (1 KiB) is a CPU-visible data block
// at $5C00-$5FFF and can be mapped as a nametable through $5105; fill mode
// uses a separate fill page built from $5106/$5107. The scanline IRQ
// counter is decremented once per visible scanline by the PPU through the
// hook registered with SetScanlineHook rather than the A12 filter MMC3 uses.
type mapper5 struct {
	prg        []byte
	chr        []byte
	prgBanks8k int

	prgMode byte
	chrMode byte
	chrHigh byte

	prgReg [4]byte    // $5114-$5117
	chrSpr [8]uint16  // $5120-$5127
	chrBg  [4]uint16  // $5128-$512B

	exram     [1024]byte
	exramMode byte

	ntSelect byte
	ntFill   byte
	atFill   byte
	fillPage [1024]byte

	splitCtrl, splitScroll, splitBank byte
	mul                               [2]byte

	irqLatch   byte
	irqCounter int
	irqEnabled bool
	irqPending bool

	wram *wramPager
	ppu  *PPU
}

func newMapper5(info *RomInfo) *mapper5 {
	chr := info.CHRROM
	if len(chr) == 0 {
		chr = make([]byte, 0x2000)
	}
	m := &mapper5{
		prg:        info.PRGROM,
		chr:        chr,
		prgBanks8k: len(info.PRGROM) / 0x2000,
		prgMode:    3,
		chrMode:    3,
		wram:       newWRAMPager(info.WRAMSize),
	}
	m.wram.SetEnable(true)
	return m
}

func (m *mapper5) prgBankIndex(slot int) int {
	switch m.prgMode & 3 {
	case 0:
		bank := int(m.prgReg[3]&0x7F) &^ 3
		return bank + slot
	case 1:
		if slot < 2 {
			bank := int(m.prgReg[1]&0x7F) &^ 1
			return bank + slot
		}
		bank := int(m.prgReg[3]&0x7F) &^ 1
		return bank + (slot - 2)
	case 2:
		switch slot {
		case 0:
			return int(m.prgReg[1] & 0x7F)
		case 1:
			return int(m.prgReg[2] & 0x7F)
		default:
			bank := int(m.prgReg[3]&0x7F) &^ 1
			return bank + (slot - 2)
		}
	default: // mode 3
		return int(m.prgReg[slot] & 0x7F)
	}
}

func (m *mapper5) ReadPRG(address uint16) byte {
	if address >= 0x5C00 && address <= 0x5FFF {
		return m.exram[address&0x3FF]
	}
	switch address {
	case 0x5204:
		ret := byte(0)
		if m.irqPending {
			ret = 0x40
		}
		m.irqPending = false
		return ret
	case 0x5205:
		return byte((uint16(m.mul[0]) * uint16(m.mul[1])) & 0xFF)
	case 0x5206:
		return byte((uint16(m.mul[0]) * uint16(m.mul[1])) >> 8)
	}
	if address >= 0x8000 {
		slot := int((address - 0x8000) / 0x2000)
		off := int((address - 0x8000) % 0x2000)
		bank := m.prgBankIndex(slot) % m.prgBanks8k
		if bank < 0 {
			bank += m.prgBanks8k
		}
		return m.prg[bank*0x2000+off]
	}
	return 0xFF
}

func (m *mapper5) WritePRG(address uint16, data byte) {
	if address >= 0x5C00 && address <= 0x5FFF {
		// Writes are accepted in every ExRAM mode except 3 (read-only).
		if m.exramMode != 3 {
			m.exram[address&0x3FF] = data
		}
		return
	}
	switch address {
	case 0x5100:
		m.prgMode = data & 3
	case 0x5101:
		m.chrMode = data & 3
		m.syncCHR()
	case 0x5104:
		m.exramMode = data & 3
	case 0x5105:
		m.ntSelect = data
		m.syncNametables()
	case 0x5106:
		m.ntFill = data
		m.rebuildFill()
	case 0x5107:
		m.atFill = data
		m.rebuildFill()
	case 0x5113:
		m.wram.SetBank8K(int(data))
	case 0x5114, 0x5115, 0x5116, 0x5117:
		m.prgReg[address-0x5114] = data
	case 0x5120, 0x5121, 0x5122, 0x5123, 0x5124, 0x5125, 0x5126, 0x5127:
		m.chrSpr[address-0x5120] = uint16(data) | uint16(m.chrHigh)<<8
		m.syncCHR()
	case 0x5128, 0x5129, 0x512A, 0x512B:
		m.chrBg[address-0x5128] = uint16(data) | uint16(m.chrHigh)<<8
		m.syncCHR()
	case 0x5130:
		m.chrHigh = data & 3
	case 0x5200:
		m.splitCtrl = data
	case 0x5201:
		m.splitScroll = data
	case 0x5202:
		m.splitBank = data
	case 0x5203:
		m.irqLatch = data
		m.irqCounter = int(data)
		m.irqPending = false
	case 0x5204:
		m.irqEnabled = data&0x80 != 0
	case 0x5205:
		m.mul[0] = data
	case 0x5206:
		m.mul[1] = data
	default:
		glog.V(2).Infof("Unrouted MMC5 write: address=0x%04x, data=0x%02x\n", address, data)
	}
}

func (m *mapper5) ReadWRAM(address uint16) byte        { return m.wram.Read(address - 0x6000) }
func (m *mapper5) WriteWRAM(address uint16, data byte) { m.wram.Write(address-0x6000, data) }

func (m *mapper5) chr1kRange(bank uint16, count int) [][]byte {
	banks1k := len(m.chr) / 0x400
	if banks1k == 0 {
		return nil
	}
	start := int(bank) * count
	pages := make([][]byte, count)
	for i := 0; i < count; i++ {
		b := (start + i) % banks1k
		if b < 0 {
			b += banks1k
		}
		lo := b * 0x400
		pages[i] = m.chr[lo : lo+0x400]
	}
	return pages
}

func (m *mapper5) syncCHR() {
	if m.ppu == nil {
		return
	}
	switch m.chrMode & 3 {
	case 0:
		pages := m.chr1kRange(m.chrSpr[7], 8)
		for i, pg := range pages {
			m.ppu.SetCHRPage(i, pg)
		}
	case 1:
		lo := m.chr1kRange(m.chrSpr[3], 4)
		hi := m.chr1kRange(m.chrBg[3], 4)
		for i := 0; i < 4; i++ {
			m.ppu.SetCHRPage(i, lo[i])
			m.ppu.SetCHRPage(4+i, hi[i])
		}
	case 2:
		a := m.chr1kRange(m.chrSpr[1], 2)
		b := m.chr1kRange(m.chrSpr[3], 2)
		c := m.chr1kRange(m.chrBg[1], 2)
		d := m.chr1kRange(m.chrBg[3], 2)
		m.ppu.SetCHRPage(0, a[0])
		m.ppu.SetCHRPage(1, a[1])
		m.ppu.SetCHRPage(2, b[0])
		m.ppu.SetCHRPage(3, b[1])
		m.ppu.SetCHRPage(4, c[0])
		m.ppu.SetCHRPage(5, c[1])
		m.ppu.SetCHRPage(6, d[0])
		m.ppu.SetCHRPage(7, d[1])
	default: // mode 3
		for i := 0; i < 8; i++ {
			pages := m.chr1kRange(m.chrSpr[i], 1)
			if pages != nil {
				m.ppu.SetCHRPage(i, pages[0])
			}
		}
	}
}

// syncNametables applies the 4-way $5105 nametable source selection: each
// 2-bit field picks one of the cartridge's 2 physical CIRAM pages, ExRAM
// (whatever the $5104 mode), or the fixed fill page.
func (m *mapper5) syncNametables() {
	if m.ppu == nil {
		return
	}
	for i := 0; i < 4; i++ {
		switch (m.ntSelect >> uint(i*2)) & 3 {
		case 0:
			m.ppu.SetNTPage(i, m.ppu.CIRAM(0))
		case 1:
			m.ppu.SetNTPage(i, m.ppu.CIRAM(1))
		case 2:
			m.ppu.SetNTPage(i, m.exram[:])
		case 3:
			m.ppu.SetNTPage(i, m.fillPage[:])
		}
	}
}

func (m *mapper5) rebuildFill() {
	for i := 0; i < 0x3C0; i++ {
		m.fillPage[i] = m.ntFill
	}
	attr := m.atFill & 3
	packed := attr | attr<<2 | attr<<4 | attr<<6
	for i := 0x3C0; i < 0x400; i++ {
		m.fillPage[i] = packed
	}
}

func (m *mapper5) AttachPPU(ppu *PPU) {
	m.ppu = ppu
	ppu.SetScanlineHook(m.TickScanline)
	m.rebuildFill()
	m.syncNametables()
	m.syncCHR()
}

// TickScanline decrements the IRQ counter once per visible scanline,
// raising and reloading on the wrap the way map5_hblank does.
func (m *mapper5) TickScanline() {
	if !m.irqEnabled {
		return
	}
	if m.irqCounter == 0 {
		m.irqPending = true
		m.irqCounter = int(m.irqLatch)
	} else {
		m.irqCounter--
	}
}

func (m *mapper5) TickM2()          {}
func (m *mapper5) IRQPending() bool { return m.irqPending }

func (m *mapper5) Reset() {
	m.irqCounter = 0
	m.irqEnabled = false
	m.irqPending = false
}
