package nes

import "fmt"

const (
	chrROMSizeUnit      int  = 0x2000 // 8 KiB
	prgROMSizeUnit      int  = 0x4000 // 16 KiB
	InesHeaderSizeBytes int  = 16     // The valid INES header has 16 bytes
	MSDOSEOF            byte = 0x1A
)

// Mirroring is the nametable wiring a cartridge exposes to the PPU absent
// any mapper-driven remapping.
type Mirroring int

const (
	MirrorHorizontal Mirroring = iota
	MirrorVertical
	MirrorFourScreen
)

// RomInfo is what an iNES loader hands the core at cartridge insertion;
// the core reads it once to build a Mapper and never touches the raw
// header again.
// https://www.nesdev.org/wiki/INES
type RomInfo struct {
	PRGROM       []byte
	CHRROM       []byte
	CHRIsRAM     bool
	MapperNumber byte
	Mirroring    Mirroring
	HasBattery   bool
	WRAMSize     int
}

// isValid checks whether the buffer is a valid INES format.
func isValid(data []byte) bool {
	return len(data) >= InesHeaderSizeBytes &&
		data[0] == byte('N') &&
		data[1] == byte('E') &&
		data[2] == byte('S') &&
		data[3] == MSDOSEOF
}

// ParseRomInfo parses an iNES-format ROM image into a RomInfo.
func ParseRomInfo(data []byte) (*RomInfo, error) {
	if !isValid(data) {
		return nil, fmt.Errorf("The buffer is not a valid NES format.")
	}
	prgUnits := int(data[4])
	chrUnits := int(data[5])
	flags6 := data[6]
	flags7 := data[7]
	l := InesHeaderSizeBytes
	r := l + prgUnits*prgROMSizeUnit
	if r > len(data) {
		return nil, fmt.Errorf("PRGROM out of bounds: want %d bytes, have %d", r-l, len(data)-l)
	}
	prgROM := data[l:r]
	l = r
	r = l + chrUnits*chrROMSizeUnit
	if r > len(data) {
		return nil, fmt.Errorf("CHRROM out of bounds: want %d bytes, have %d", r-l, len(data)-l)
	}
	chrIsRAM := chrUnits == 0
	var chrROM []byte
	if chrIsRAM {
		chrROM = make([]byte, chrROMSizeUnit)
	} else {
		chrROM = data[l:r]
	}
	mirroring := MirrorHorizontal
	if flags6&0x08 != 0 {
		mirroring = MirrorFourScreen
	} else if flags6&0x01 != 0 {
		mirroring = MirrorVertical
	}
	wramSize := 0x2000
	if len(data) > 8 && data[8] > 0 {
		wramSize = int(data[8]) * 0x2000
	}
	return &RomInfo{
		PRGROM:       prgROM,
		CHRROM:       chrROM,
		CHRIsRAM:     chrIsRAM,
		MapperNumber: (flags7 & 0xF0) | (flags6 >> 4),
		Mirroring:    mirroring,
		HasBattery:   flags6&0x02 != 0,
		WRAMSize:     wramSize,
	}, nil
}

// Cartridge couples the parsed ROM header with the Mapper built from it.
type Cartridge struct {
	Info   *RomInfo
	Mapper Mapper
}

// NewCartridge creates a cartridge from a raw iNES image.
func NewCartridge(data []byte) (*Cartridge, error) {
	info, err := ParseRomInfo(data)
	if err != nil {
		return nil, err
	}
	mapper, err := NewMapper(info)
	if err != nil {
		return nil, err
	}
	return &Cartridge{Info: info, Mapper: mapper}, nil
}
