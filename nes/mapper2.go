package nes

// mapper2 implements UxROM: https://www.nesdev.org/wiki/UxROM
type mapper2 struct {
	banks       int
	currentBank int
	prg         []byte
	chr         []byte
	mirroring   Mirroring
	wram        *wramPager
}

func newMapper2(info *RomInfo) *mapper2 {
	banks := len(info.PRGROM) / prgROMSizeUnit
	chr := info.CHRROM
	if len(chr) < chrROMSizeUnit {
		chr = make([]byte, chrROMSizeUnit)
	}
	return &mapper2{
		banks:     banks,
		prg:       info.PRGROM,
		chr:       chr,
		mirroring: info.Mirroring,
		wram:      newWRAMPager(info.WRAMSize),
	}
}

func (m *mapper2) ReadPRG(address uint16) byte {
	if address < 0x8000 {
		return 0xFF
	}
	// CPU $8000-$BFFF: 16 KiB switchable PRG ROM bank.
	// CPU $C000-$FFFF: 16 KiB PRG ROM bank, fixed to the last bank.
	if address < 0xC000 {
		return m.prg[m.currentBank*prgROMSizeUnit+int(address-0x8000)]
	}
	return m.prg[(m.banks-1)*prgROMSizeUnit+int(address-0xC000)]
}

func (m *mapper2) WritePRG(address uint16, data byte) {
	if address >= 0x8000 {
		m.currentBank = int(data) % m.banks
	}
}

func (m *mapper2) ReadWRAM(address uint16) byte        { return m.wram.Read(address - 0x6000) }
func (m *mapper2) WriteWRAM(address uint16, data byte) { m.wram.Write(address-0x6000, data) }

func (m *mapper2) AttachPPU(ppu *PPU) {
	setCHRPagesFlat(ppu, m.chr)
	applyMirroring(ppu, m.mirroring)
}

func (m *mapper2) TickM2()          {}
func (m *mapper2) IRQPending() bool { return false }
func (m *mapper2) Reset()           {}
