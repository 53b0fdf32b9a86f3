package nes

// mapper0 implements NROM: https://www.nesdev.org/wiki/NROM
type mapper0 struct {
	prg       []byte
	chr       []byte
	mirroring Mirroring
	wram      *wramPager
}

func newMapper0(info *RomInfo) *mapper0 {
	chr := info.CHRROM
	if len(chr) < chrROMSizeUnit {
		chr = make([]byte, chrROMSizeUnit)
	}
	return &mapper0{
		prg:       info.PRGROM,
		chr:       chr,
		mirroring: info.Mirroring,
		wram:      newWRAMPager(info.WRAMSize),
	}
}

// ReadPRG serves $8000-$FFFF: NROM-128 mirrors its 16 KiB bank twice,
// NROM-256 fills the full 32 KiB directly via the modulo.
func (m *mapper0) ReadPRG(address uint16) byte {
	if address < 0x8000 {
		return 0xFF
	}
	mod := uint16(len(m.prg))
	return m.prg[(address-0x8000)%mod]
}

func (m *mapper0) WritePRG(address uint16, data byte) {}

func (m *mapper0) ReadWRAM(address uint16) byte        { return m.wram.Read(address - 0x6000) }
func (m *mapper0) WriteWRAM(address uint16, data byte) { m.wram.Write(address-0x6000, data) }

func (m *mapper0) AttachPPU(ppu *PPU) {
	setCHRPagesFlat(ppu, m.chr)
	applyMirroring(ppu, m.mirroring)
}

func (m *mapper0) TickM2()          {}
func (m *mapper0) IRQPending() bool { return false }
func (m *mapper0) Reset()           {}
