package nes

import "fmt"

// Mapper is the cartridge-side memory controller. PRG access is exposed
// as ordinary read/write methods since the CPU bus calls into it directly;
// CHR and nametable access instead go through page pointers the mapper
// publishes into the PPU (see PPU.SetCHRPage / PPU.SetNTPage) - the PPU
// reads and writes those pages directly, there is no reverse call for
// every pattern-table or nametable access.
type Mapper interface {
	ReadPRG(address uint16) byte
	WritePRG(address uint16, data byte)
	ReadWRAM(address uint16) byte
	WriteWRAM(address uint16, data byte)

	// AttachPPU is called once, after the PPU exists, so the mapper can
	// publish its initial CHR/nametable page layout and register any
	// capability hooks (A12 observer, scanline tick) the PPU should call.
	AttachPPU(ppu *PPU)

	// TickM2 advances the mapper's CPU-cycle-driven state (MMC3's A12
	// low-cycle filter). A no-op for mappers that don't need it.
	TickM2()

	// IRQPending reports the mapper's IRQ line level. The scheduler reads
	// it every CPU step; the mapper itself is responsible for clearing it
	// through whatever register write/read hardware uses to acknowledge.
	IRQPending() bool

	Reset()
}

// NewMapper builds the Mapper for a cartridge's header-reported mapper
// number. Mapper 0 (NROM) and 2 (UxROM) are minimal collaborators kept
// from the original cartridge loader; 4 (MMC3) and 5 (MMC5) are this
// core's actual subject matter.
func NewMapper(info *RomInfo) (Mapper, error) {
	switch info.MapperNumber {
	case 0:
		return newMapper0(info), nil
	case 2:
		return newMapper2(info), nil
	case 4:
		return newMapper4(info), nil
	case 5:
		return newMapper5(info), nil
	}
	return nil, fmt.Errorf("unsupported mapper number: %d", info.MapperNumber)
}

// applyMirroring wires the PPU's 4 nametable slots to its 2 physical CIRAM
// pages (or all 4, for four-screen carts) according to a static mirroring
// mode. Mappers with dynamic mirroring (MMC3) call this again whenever
// their mirroring register changes.
func applyMirroring(ppu *PPU, mode Mirroring) {
	switch mode {
	case MirrorVertical:
		ppu.SetNTPage(0, ppu.CIRAM(0))
		ppu.SetNTPage(1, ppu.CIRAM(1))
		ppu.SetNTPage(2, ppu.CIRAM(0))
		ppu.SetNTPage(3, ppu.CIRAM(1))
	case MirrorFourScreen:
		for i := 0; i < 4; i++ {
			ppu.SetNTPage(i, ppu.CIRAM(i))
		}
	default: // MirrorHorizontal
		ppu.SetNTPage(0, ppu.CIRAM(0))
		ppu.SetNTPage(1, ppu.CIRAM(0))
		ppu.SetNTPage(2, ppu.CIRAM(1))
		ppu.SetNTPage(3, ppu.CIRAM(1))
	}
}

// setCHRPagesFlat maps an 8 KiB CHR buffer linearly across the PPU's 8
// pattern-table pages; used by the mappers with no CHR banking.
func setCHRPagesFlat(ppu *PPU, chr []byte) {
	for i := 0; i < 8; i++ {
		lo := i * 0x400
		hi := lo + 0x400
		if hi > len(chr) {
			return
		}
		ppu.SetCHRPage(i, chr[lo:hi])
	}
}
