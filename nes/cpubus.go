package nes

import "github.com/golang/glog"

type CPUBus struct {
	wram       *RAM
	ppu        *PPU
	apu        *APU
	cartridge  *Cartridge
	controller *Controller
}

// NewCPUBus creates a new Bus for CPU.
// CPU memory map
// 0x0000 - 0x07FF	WRAM
// 0x0800 - 0x1FFF	WRAM Mirror
// 0x2000 - 0x2007	PPU Registers
// 0x2008 - 0x3FFF	PPU Registers Mirror
// 0x4000 - 0x4013, 0x4015	APU Registers
// 0x4014			OAMDMA (handled on CPU, never reaches the bus)
// 0x4016 - 0x4017	Controller ports
// 0x4020 - 0x5FFF	Extended ROM/RAM (cartridge-specific, e.g. MMC5 registers/ExRAM)
// 0x6000 - 0x7FFF	Work RAM window
// 0x8000 - 0xFFFF	ProgramROM, bank-switched by the cartridge's mapper
func NewCPUBus(wram *RAM, ppu *PPU, apu *APU, cartridge *Cartridge, controller *Controller) *CPUBus {
	return &CPUBus{wram, ppu, apu, cartridge, controller}
}

// read reads a byte.
func (b *CPUBus) read(address uint16) byte {
	switch {
	case address < 0x2000:
		return b.wram.read(address % 0x0800)
	case address < 0x4000:
		return b.ppu.ReadRegister((address - 0x2000) % 8)
	case address == 0x4016:
		return b.controller.Read(0)
	case address == 0x4017:
		return b.controller.Read(1)
	case address < 0x4020:
		glog.Infof("Unimplemented CPU bus read: address=0x%04x\n", address)
		return 0
	case address < 0x6000:
		return b.cartridge.Mapper.ReadPRG(address)
	case address < 0x8000:
		return b.cartridge.Mapper.ReadWRAM(address)
	default:
		return b.cartridge.Mapper.ReadPRG(address)
	}
}

// read16 reads 2 bytes.
func (b *CPUBus) read16(address uint16) uint16 {
	l := uint16(b.read(address))
	h := uint16(b.read(address+1)) << 8
	return h | l
}

// write writes a byte. $4014 (OAMDMA) is intercepted by CPU.write before
// reaching here, since it needs to stall the CPU and burn bus cycles.
func (b *CPUBus) write(address uint16, data byte) {
	switch {
	case address < 0x2000:
		b.wram.write(address%0x0800, data)
	case address < 0x4000:
		b.ppu.WriteRegister((address-0x2000)%8, data)
	case address == 0x4016:
		b.controller.Write(data)
	case address == 0x4017:
		b.apu.writeFrameCounter(data)
	case address < 0x4020:
		glog.Infof("Unimplemented CPU bus write: address=0x%04x, data=0x%02x\n", address, data)
		b.apu.WriteRegister(address, data)
	case address < 0x6000:
		b.cartridge.Mapper.WritePRG(address, data)
	case address < 0x8000:
		b.cartridge.Mapper.WriteWRAM(address, data)
	default:
		b.cartridge.Mapper.WritePRG(address, data)
	}
}
