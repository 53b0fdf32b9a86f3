package nes

import (
	"image"
	"image/color"
)

// Region-dependent frame geometry.
// https://www.nesdev.org/wiki/PPU_frame_timing
const (
	dotsPerScanline       = 341
	scanlinesPerFrameNTSC = 262
	scanlinesPerFramePAL  = 312
	visibleWidth          = 256
	visibleHeight         = 240
)

// spriteEntry is one of the 64 4-byte OAM entries, as seen by the
// renderer once it's been copied into secondary OAM for the current line.
type spriteEntry struct {
	y, tile, attr, x byte
}

func (s spriteEntry) bank() uint16 {
	return uint16(s.tile&0x01) * 0x1000
}

func (s spriteEntry) tileNumber8x16() byte {
	return s.tile &^ 0x01
}

func (s spriteEntry) horizontalFlip() bool { return s.attr&0x40 != 0 }
func (s spriteEntry) verticalFlip() bool   { return s.attr&0x80 != 0 }

// spriteUnit is the per-dot rendering state for one of the 8 sprite
// output slots active during a scanline: an 8-bit pattern shift pair,
// the sprite's attribute byte, and the X countdown before it starts
// shifting out pixels.
type spriteUnit struct {
	x      byte
	ptLo   byte
	ptHi   byte
	attr   byte
	active bool // this slot holds a sprite this scanline
	isZero bool // this slot's source was OAM entry 0
}

// paletteRAM is the 32-byte palette, with the 4 background-color mirrors
// for the "transparent sprite color" slots.
type paletteRAM struct {
	ram [32]byte
}

func (p *paletteRAM) mirror(address uint16) uint16 {
	a := address & 0x1F
	if a >= 0x10 && a%4 == 0 {
		a -= 0x10
	}
	return a
}

func (p *paletteRAM) read(address uint16) byte {
	return p.ram[p.mirror(address)]
}

func (p *paletteRAM) write(address uint16, data byte) {
	p.ram[p.mirror(address)] = data
}

// PPU is a cycle-accurate 2C02/2C07 pixel pipeline. It is driven one dot
// at a time by Clock, which the scheduler calls at the NTSC (3 dots per
// CPU cycle) or PAL (16 dots per 5 CPU cycles) ratio.
type PPU struct {
	// CPU-visible registers.
	ctrl, mask, status byte
	oamAddr            byte
	v, t               uint16
	x                  byte
	w                  bool
	readBuffer         byte

	// Decoded CTRL/MASK bits, refreshed on every write.
	bgPatternTable     uint16
	spritePatternTable uint16
	vramIncrement32    bool
	spriteSize16       bool
	nmiOutput          bool
	grayscale          bool
	showBGLeft         bool
	showSpritesLeft    bool
	showBG             bool
	showSprites        bool
	emphasizeRed       bool
	emphasizeGreen     bool
	emphasizeBlue      bool

	oam [256]byte

	pal      bool // true = PAL timing (312 scanlines, no odd-frame skip)
	dot      int
	scanline int
	oddFrame bool

	frameComplete bool

	// NMI edge handling: the CPU sees a rising edge of (vblank &&
	// nmiOutput) only after a fixed dot delay, matching the real NMI line.
	nmiOccurred   bool
	nmiLinePrev   bool
	nmiDelay      int

	// Background pipeline: 16-bit shift registers reloaded every 8 dots,
	// shifted once per dot.
	bgPTLo, bgPTHi                     uint16
	bgAtLo, bgAtHi                     uint16
	nextNT, nextAT, nextPTLo, nextPTHi byte

	// Sprite evaluation, computed eagerly once per scanline rather than
	// across the per-dot odd/even OAM cadence real hardware uses - see
	// DESIGN.md. The documented invariants (max 8 sprites, the overflow
	// flag and its address-increment bug, sprite-0 tracking) still hold.
	secOAM         [8]spriteEntry
	secOAMCount    int
	spriteOverflow bool
	spriteZeroSlot int // index into secOAM holding OAM entry 0, or -1

	spr [8]spriteUnit

	palette paletteRAM

	chrPages [16][]byte
	ntPages  [4][]byte
	ciram    [4][1024]byte

	a12Observer  func(uint16)
	scanlineHook func()

	picture *image.RGBA
}

func NewPPU() *PPU {
	p := &PPU{
		picture: image.NewRGBA(image.Rect(0, 0, visibleWidth, visibleHeight)),
	}
	p.spriteZeroSlot = -1
	p.Reset(true)
	return p
}

// SetRegion selects NTSC (false) or PAL (true) scanline counts and the
// odd-frame dot-skip behavior, which is NTSC-only.
func (p *PPU) SetRegion(pal bool) {
	p.pal = pal
}

func (p *PPU) scanlinesPerFrame() int {
	if p.pal {
		return scanlinesPerFramePAL
	}
	return scanlinesPerFrameNTSC
}

func (p *PPU) preRenderLine() int {
	return p.scanlinesPerFrame() - 1
}

// Reset puts the PPU back to its post-power-on state. A hard reset also
// clears OAM and the palette; a soft reset leaves them alone, matching
// the reset line on real hardware.
func (p *PPU) Reset(hard bool) {
	p.ctrl = 0
	p.mask = 0
	p.status = 0
	p.oamAddr = 0
	p.v = 0
	p.t = 0
	p.x = 0
	p.w = false
	p.readBuffer = 0
	p.dot = 0
	p.scanline = 0
	p.oddFrame = false
	p.nmiOccurred = false
	p.nmiLinePrev = false
	p.nmiDelay = 0
	p.applyCTRL(0)
	p.applyMASK(0)
	if hard {
		p.oam = [256]byte{}
		p.palette = paletteRAM{}
	}
}

// CIRAM returns one of the console's 4 physical 1 KiB nametable RAM
// pages (pages 2 and 3 only matter for four-screen carts; everything
// else only ever references pages 0 and 1).
func (p *PPU) CIRAM(page int) []byte {
	return p.ciram[page][:]
}

// SetCHRPage publishes a 1 KiB pattern-table page. Mappers call this
// whenever a CHR bank register changes; the PPU reads/writes the slice
// directly on every pattern-table access, so a CHR-RAM-backed page is
// writable for free.
func (p *PPU) SetCHRPage(page int, data []byte) {
	p.chrPages[page] = data
}

// SetNTPage publishes the 1 KiB nametable backing a logical nametable
// slot (0-3, corresponding to $2000/$2400/$2800/$2C00).
func (p *PPU) SetNTPage(slot int, data []byte) {
	p.ntPages[slot] = data
}

// SetA12Observer registers a callback invoked with the full 13-bit CHR
// address on every pattern-table access (MMC3's scanline IRQ tracks A12,
// bit 12, through this hook).
func (p *PPU) SetA12Observer(f func(uint16)) {
	p.a12Observer = f
}

// SetScanlineHook registers a callback invoked once per visible scanline
// (MMC5's scanline IRQ counter).
func (p *PPU) SetScanlineHook(f func()) {
	p.scanlineHook = f
}

func (p *PPU) readCHR(address uint16) byte {
	if p.a12Observer != nil {
		p.a12Observer(address)
	}
	page := p.chrPages[address>>10]
	if page == nil {
		return 0
	}
	return page[address&0x3FF]
}

func (p *PPU) writeCHR(address uint16, data byte) {
	if p.a12Observer != nil {
		p.a12Observer(address)
	}
	page := p.chrPages[address>>10]
	if page != nil {
		page[address&0x3FF] = data
	}
}

func (p *PPU) readNT(address uint16) byte {
	a := (address - 0x2000) % 0x1000
	page := p.ntPages[a/0x400]
	if page == nil {
		return 0
	}
	return page[a%0x400]
}

func (p *PPU) writeNT(address uint16, data byte) {
	a := (address - 0x2000) % 0x1000
	page := p.ntPages[a/0x400]
	if page != nil {
		page[a%0x400] = data
	}
}

func (p *PPU) busRead(address uint16) byte {
	address &= 0x3FFF
	switch {
	case address < 0x2000:
		return p.readCHR(address)
	case address < 0x3F00:
		return p.readNT(address)
	default:
		return p.palette.read(address)
	}
}

func (p *PPU) busWrite(address uint16, data byte) {
	address &= 0x3FFF
	switch {
	case address < 0x2000:
		p.writeCHR(address, data)
	case address < 0x3F00:
		p.writeNT(address, data)
	default:
		p.palette.write(address, data)
	}
}

func (p *PPU) applyCTRL(data byte) {
	p.ctrl = data
	p.vramIncrement32 = data&0x04 != 0
	p.spritePatternTable = uint16(data&0x08) * 0x200 // bit3 -> 0x0000/0x1000
	p.bgPatternTable = uint16(data&0x10) * 0x100      // bit4 -> 0x0000/0x1000
	p.spriteSize16 = data&0x20 != 0
	p.nmiOutput = data&0x80 != 0
}

func (p *PPU) applyMASK(data byte) {
	p.mask = data
	p.grayscale = data&0x01 != 0
	p.showBGLeft = data&0x02 != 0
	p.showSpritesLeft = data&0x04 != 0
	p.showBG = data&0x08 != 0
	p.showSprites = data&0x10 != 0
	p.emphasizeRed = data&0x20 != 0
	p.emphasizeGreen = data&0x40 != 0
	p.emphasizeBlue = data&0x80 != 0
}

func (p *PPU) renderingEnabled() bool { return p.showBG || p.showSprites }

// --- CPU-visible register interface --------------------------------------

// ReadRegister serves a CPU read of $2000-$2007 (reg = address & 7).
func (p *PPU) ReadRegister(reg uint16) byte {
	switch reg {
	case 2:
		return p.readPPUSTATUS()
	case 4:
		return p.readOAMDATA()
	case 7:
		return p.readPPUDATA()
	default:
		return 0 // write-only registers read back open bus, approximated as 0
	}
}

// WriteRegister serves a CPU write of $2000-$2007.
func (p *PPU) WriteRegister(reg uint16, data byte) {
	switch reg {
	case 0:
		p.writePPUCTRL(data)
	case 1:
		p.writePPUMASK(data)
	case 3:
		p.writeOAMADDR(data)
	case 4:
		p.writeOAMDATA(data)
	case 5:
		p.writePPUSCROLL(data)
	case 6:
		p.writePPUADDR(data)
	case 7:
		p.writePPUDATA(data)
	}
}

func (p *PPU) writePPUCTRL(data byte) {
	p.applyCTRL(data)
	// t: ...BA.......... = d: ......BA
	p.t = (p.t &^ 0x0C00) | (uint16(data&0x03) << 10)
}

func (p *PPU) writePPUMASK(data byte) {
	p.applyMASK(data)
}

func (p *PPU) readPPUSTATUS() byte {
	result := p.status
	p.status &^= 0x80 // clear VBlank
	p.w = false
	p.nmiOccurred = false
	return result
}

func (p *PPU) writeOAMADDR(data byte) {
	p.oamAddr = data
}

func (p *PPU) readOAMDATA() byte {
	return p.oam[p.oamAddr]
}

func (p *PPU) writeOAMDATA(data byte) {
	p.oam[p.oamAddr] = data
	p.oamAddr++
}

func (p *PPU) writePPUSCROLL(data byte) {
	if !p.w {
		p.t = (p.t &^ 0x001F) | (uint16(data) >> 3)
		p.x = data & 0x07
		p.w = true
	} else {
		p.t = (p.t &^ 0x73E0) |
			(uint16(data&0x07) << 12) |
			(uint16(data&0xF8) << 2)
		p.w = false
	}
}

func (p *PPU) writePPUADDR(data byte) {
	if !p.w {
		p.t = (p.t &^ 0x7F00) | (uint16(data&0x3F) << 8)
		p.w = true
	} else {
		p.t = (p.t &^ 0x00FF) | uint16(data)
		p.v = p.t
		p.w = false
	}
}

func (p *PPU) vramStep() uint16 {
	if p.vramIncrement32 {
		return 32
	}
	return 1
}

func (p *PPU) readPPUDATA() byte {
	address := p.v & 0x3FFF
	var result byte
	if address < 0x3F00 {
		result = p.readBuffer
		p.readBuffer = p.busRead(address)
	} else {
		result = p.busRead(address)
		// Real hardware still refreshes the internal buffer from the
		// nametable that mirrors in 0x1000 below a palette address.
		p.readBuffer = p.readNT(address - 0x1000)
	}
	p.v += p.vramStep()
	return result
}

func (p *PPU) writePPUDATA(data byte) {
	p.busWrite(p.v&0x3FFF, data)
	p.v += p.vramStep()
}

// OAMDMA copies 256 bytes into OAM starting at the current OAMADDR,
// wrapping through the 256-entry table exactly once.
func (p *PPU) OAMDMA(page []byte) {
	addr := p.oamAddr
	for i := 0; i < 256 && i < len(page); i++ {
		p.oam[addr] = page[i]
		addr++
	}
	p.oamAddr = 0
}

// FrameComplete reports (and consumes) the flag Clock raises once per
// frame, handing back the finished picture.
func (p *PPU) FrameComplete() (*image.RGBA, bool) {
	if p.frameComplete {
		p.frameComplete = false
		return p.picture, true
	}
	return nil, false
}

// --- Loopy scroll math -------------------------------------------------
// https://www.nesdev.org/wiki/PPU_scrolling

func (p *PPU) incrementCoarseX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
	} else {
		p.v &^= 0x7000
		y := (p.v & 0x03E0) >> 5
		switch y {
		case 29:
			y = 0
			p.v ^= 0x0800
		case 31:
			y = 0
		default:
			y++
		}
		p.v = (p.v &^ 0x03E0) | (y << 5)
	}
}

func (p *PPU) copyX() {
	p.v = (p.v &^ 0x041F) | (p.t & 0x041F)
}

func (p *PPU) copyY() {
	p.v = (p.v &^ 0x7BE0) | (p.t & 0x7BE0)
}

// --- Background fetch pipeline ------------------------------------------

func (p *PPU) fetchNameTableByte() {
	address := 0x2000 | (p.v & 0x0FFF)
	p.nextNT = p.busRead(address)
}

func (p *PPU) fetchAttributeTableByte() {
	address := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
	shift := ((p.v >> 4) & 4) | (p.v & 2)
	p.nextAT = (p.busRead(address) >> shift) & 3
}

func (p *PPU) fetchLowTileByte() {
	fineY := (p.v >> 12) & 7
	address := p.bgPatternTable + uint16(p.nextNT)*16 + fineY
	p.nextPTLo = p.busRead(address)
}

func (p *PPU) fetchHighTileByte() {
	fineY := (p.v >> 12) & 7
	address := p.bgPatternTable + uint16(p.nextNT)*16 + fineY + 8
	p.nextPTHi = p.busRead(address)
}

func (p *PPU) reloadShifters() {
	p.bgPTLo = (p.bgPTLo &^ 0x00FF) | uint16(p.nextPTLo)
	p.bgPTHi = (p.bgPTHi &^ 0x00FF) | uint16(p.nextPTHi)
	lo, hi := uint16(0), uint16(0)
	if p.nextAT&1 != 0 {
		lo = 0x00FF
	}
	if p.nextAT&2 != 0 {
		hi = 0x00FF
	}
	p.bgAtLo = (p.bgAtLo &^ 0x00FF) | lo
	p.bgAtHi = (p.bgAtHi &^ 0x00FF) | hi
}

func (p *PPU) shiftBackground() {
	if !p.showBG {
		return
	}
	p.bgPTLo <<= 1
	p.bgPTHi <<= 1
	p.bgAtLo <<= 1
	p.bgAtHi <<= 1
}

// bgFetchCycle performs the 8-dot fetch sequence (NT, AT, PT low, PT
// high, each taking 2 dots) that runs continuously across the visible
// and pre-render lines while rendering is enabled.
func (p *PPU) bgFetchCycle() {
	switch p.dot % 8 {
	case 1:
		p.fetchNameTableByte()
	case 3:
		p.fetchAttributeTableByte()
	case 5:
		p.fetchLowTileByte()
	case 7:
		p.fetchHighTileByte()
	case 0:
		p.reloadShifters()
		p.incrementCoarseX()
	}
}

// --- Sprite evaluation (eager, per-scanline) -----------------------------

func (p *PPU) evaluateSprites() {
	height := 8
	if p.spriteSize16 {
		height = 16
	}
	targetLine := p.scanline + 1
	secIdx := 0
	overflow := false
	zeroSlot := -1
	n, m := 0, 0
	for n < 64 {
		y := int(p.oam[n*4+m])
		inRange := targetLine >= y && targetLine < y+height
		if secIdx < 8 {
			if inRange {
				if n == 0 {
					zeroSlot = secIdx
				}
				p.secOAM[secIdx] = spriteEntry{
					y:    p.oam[n*4],
					tile: p.oam[n*4+1],
					attr: p.oam[n*4+2],
					x:    p.oam[n*4+3],
				}
				secIdx++
			}
			n++
		} else if inRange {
			overflow = true
			m++
			if m == 4 {
				m = 0
				n++
			}
		} else {
			// The hardware overflow bug: once the comparator keeps
			// running past 8 hits, a failed match still increments both
			// the sprite and the in-sprite byte counters.
			n++
			m = (m + 1) % 4
		}
	}
	p.secOAMCount = secIdx
	p.spriteOverflow = overflow
	if overflow {
		p.status |= 0x20 // sprite overflow
	}
	p.spriteZeroSlot = zeroSlot
}

// spriteFetchCycle loads the 8 sprite units' shift registers for the
// scanline about to begin, from the secondary OAM evaluateSprites filled
// in during the current one. Real hardware spreads this across dots
// 257-320 in 8 8-dot phases; this does the equivalent work once at 257.
func (p *PPU) spriteFetchCycle() {
	if p.dot != 257 {
		return
	}
	height := 8
	if p.spriteSize16 {
		height = 16
	}
	targetLine := p.scanline + 1
	for i := 0; i < 8; i++ {
		unit := &p.spr[i]
		*unit = spriteUnit{}
		if i >= p.secOAMCount {
			continue
		}
		s := p.secOAM[i]
		unit.active = true
		unit.isZero = i == p.spriteZeroSlot
		unit.attr = s.attr
		unit.x = s.x
		row := targetLine - int(s.y)
		if s.verticalFlip() {
			row = height - 1 - row
		}
		var base uint16
		var tile byte
		if height == 16 {
			base = s.bank()
			tile = s.tileNumber8x16()
			if row >= 8 {
				tile++
				row -= 8
			}
		} else {
			base = p.spritePatternTable
			tile = s.tile
		}
		address := base + uint16(tile)*16 + uint16(row)
		lo := p.busRead(address)
		hi := p.busRead(address + 8)
		if s.horizontalFlip() {
			lo = reverseBits(lo)
			hi = reverseBits(hi)
		}
		unit.ptLo = lo
		unit.ptHi = hi
	}
}

func reverseBits(b byte) byte {
	b = (b&0xF0)>>4 | (b&0x0F)<<4
	b = (b&0xCC)>>2 | (b&0x33)<<2
	b = (b&0xAA)>>1 | (b&0x55)<<1
	return b
}

// --- Pixel composition ----------------------------------------------------

func (p *PPU) bgPixel() (colorIndex, palette byte) {
	if !p.showBG || (p.dot < 9 && !p.showBGLeft) {
		return 0, 0
	}
	mux := uint16(0x8000) >> p.x
	lo, hi := byte(0), byte(0)
	if p.bgPTLo&mux != 0 {
		lo = 1
	}
	if p.bgPTHi&mux != 0 {
		hi = 2
	}
	colorIndex = lo | hi
	palLo, palHi := byte(0), byte(0)
	if p.bgAtLo&mux != 0 {
		palLo = 1
	}
	if p.bgAtHi&mux != 0 {
		palHi = 2
	}
	palette = palLo | palHi
	return
}

func (p *PPU) spritePixel() (colorIndex, palette byte, behindBG, isZero bool) {
	if !p.showSprites || (p.dot < 9 && !p.showSpritesLeft) {
		return 0, 0, false, false
	}
	x := p.dot - 1
	for i := 0; i < 8; i++ {
		unit := &p.spr[i]
		if !unit.active {
			continue
		}
		offset := x - int(unit.x)
		if offset < 0 || offset > 7 {
			continue
		}
		shift := uint(offset)
		lo := (unit.ptLo >> (7 - shift)) & 1
		hi := (unit.ptHi >> (7 - shift)) & 1
		idx := lo | hi<<1
		if idx == 0 {
			continue
		}
		return idx, unit.attr & 0x03, unit.attr&0x20 != 0, unit.isZero
	}
	return 0, 0, false, false
}

func (p *PPU) renderPixel() {
	x := p.dot - 1
	if x < 0 || x >= visibleWidth || p.scanline >= visibleHeight {
		return
	}
	bgIdx, bgPal := p.bgPixel()
	sprIdx, sprPal, sprBehind, sprZero := p.spritePixel()

	if sprIdx != 0 && bgIdx != 0 && sprZero && x != 255 {
		p.status |= 0x40 // sprite 0 hit
	}

	var paletteAddr uint16
	switch {
	case bgIdx == 0 && sprIdx == 0:
		paletteAddr = 0x3F00
	case bgIdx == 0:
		paletteAddr = 0x3F10 + uint16(sprPal)*4 + uint16(sprIdx)
	case sprIdx == 0:
		paletteAddr = 0x3F00 + uint16(bgPal)*4 + uint16(bgIdx)
	case sprBehind:
		paletteAddr = 0x3F00 + uint16(bgPal)*4 + uint16(bgIdx)
	default:
		paletteAddr = 0x3F10 + uint16(sprPal)*4 + uint16(sprIdx)
	}
	entry := p.palette.read(paletteAddr)
	p.picture.Set(x, p.scanline, p.colorFor(entry))
}

// colorFor resolves a palette entry (0-63) to RGB, applying grayscale
// and the color-emphasis bits.
func (p *PPU) colorFor(entry byte) color.Color {
	idx := entry & 0x3F
	if p.grayscale {
		idx &= 0x30
	}
	key := 0
	if p.emphasizeRed {
		key |= 1
	}
	if p.emphasizeGreen {
		key |= 2
	}
	if p.emphasizeBlue {
		key |= 4
	}
	return emphasisPalette[key][idx]
}

// --- NMI edge handling ----------------------------------------------------

// nmiStep reproduces the fixed NMI-line delay: the CPU doesn't see the
// rising edge of (vblank && nmiOutput) until a few dots after the
// condition becomes true, the delay differing by region.
func (p *PPU) nmiStep() bool {
	delay := 6
	if p.pal {
		delay = 7
	}
	line := p.nmiOccurred && p.nmiOutput
	if line && !p.nmiLinePrev {
		p.nmiDelay = delay
	}
	p.nmiLinePrev = line
	fire := false
	if p.nmiDelay > 0 {
		p.nmiDelay--
		if p.nmiDelay == 0 && line {
			fire = true
		}
	}
	return fire
}

// Clock advances the PPU by exactly one dot, returning true on the dot
// the CPU's NMI line should assert.
func (p *PPU) Clock() (bool, error) {
	pre := p.scanline == p.preRenderLine()
	visible := p.scanline < visibleHeight
	rendering := p.renderingEnabled()

	if pre && p.dot == 1 {
		p.status &^= 0xE0 // clear VBlank, sprite-0, overflow
		p.nmiOccurred = false
	}

	if (visible || pre) && rendering {
		if (p.dot >= 1 && p.dot <= 256) || (p.dot >= 321 && p.dot <= 336) {
			p.shiftBackground()
			p.bgFetchCycle()
		}
		if p.dot == 256 {
			p.incrementY()
		}
		if p.dot == 257 {
			p.copyX()
		}
		if pre && p.dot >= 280 && p.dot <= 304 {
			p.copyY()
		}
	}

	if visible {
		if p.dot == 64 {
			p.evaluateSprites()
		}
		if p.dot == 257 {
			p.spriteFetchCycle()
		}
		if p.dot >= 1 && p.dot <= 256 {
			p.renderPixel()
		}
	}

	if p.scanline == visibleHeight+1 && p.dot == 1 {
		p.status |= 0x80 // VBlank
		p.nmiOccurred = true
	}

	nmi := p.nmiStep()

	// Advance the dot/scanline counters, applying the NTSC odd-frame
	// skip (the pre-render line is one dot short on odd frames; PAL
	// has none).
	p.dot++
	if !p.pal && p.oddFrame && pre && p.dot == dotsPerScanline-1 && rendering {
		p.dot++
	}
	if p.dot >= dotsPerScanline {
		p.dot = 0
		if visible && p.scanlineHook != nil {
			p.scanlineHook()
		}
		p.scanline++
		if p.scanline >= p.scanlinesPerFrame() {
			p.scanline = 0
			p.oddFrame = !p.oddFrame
			p.frameComplete = true
		}
	}

	return nmi, nil
}
