package nes

import "testing"

// buildINES assembles a minimal iNES image: prg and chr are laid out
// verbatim (chr may be empty, selecting CHR-RAM), mapperNumber, vertical
// and battery are encoded into flags6/flags7 the way a real dumper would.
func buildINES(prg, chr []byte, mapperNumber byte, vertical bool, battery bool) []byte {
	header := make([]byte, InesHeaderSizeBytes)
	header[0], header[1], header[2], header[3] = 'N', 'E', 'S', MSDOSEOF
	header[4] = byte(len(prg) / prgROMSizeUnit)
	header[5] = byte(len(chr) / chrROMSizeUnit)
	flags6 := (mapperNumber & 0x0F) << 4
	if vertical {
		flags6 |= 0x01
	}
	if battery {
		flags6 |= 0x02
	}
	header[6] = flags6
	header[7] = mapperNumber &^ 0x0F
	data := append([]byte{}, header...)
	data = append(data, prg...)
	data = append(data, chr...)
	return data
}

// newTestCartridge builds a single-16KiB-PRG-bank NROM cartridge whose
// reset vector points at $8000, where callers can place a program.
func newTestCartridge(t *testing.T, program []byte) *Cartridge {
	t.Helper()
	prg := make([]byte, prgROMSizeUnit)
	copy(prg, program)
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0x80
	cart, err := NewCartridge(buildINES(prg, nil, 0, false, false))
	if err != nil {
		t.Fatalf("NewCartridge: %v", err)
	}
	return cart
}
