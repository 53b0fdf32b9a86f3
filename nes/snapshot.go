package nes

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Snapshot is a point-in-time capture of everything needed to resume
// emulation: CPU and PPU register/memory state, the APU's frame-IRQ
// divider, and the cartridge's mapper state. Host-side save formats
// (slots, compression, metadata) are out of this core's scope per spec
// §1 - Snapshot only covers what the core itself owns.
type Snapshot struct {
	CPU    CPUState
	PPU    PPUState
	APU    APUState
	Mapper MapperState
}

type CPUState struct {
	A, X, Y, S   byte
	P            byte
	PC           uint16
	Stall        uint64
	TotalCycles  uint64
	NMITriggered bool
	IRQTriggered bool
}

type PPUState struct {
	Ctrl, Mask, Status, OAMAddr byte
	V, T                        uint16
	X                           byte
	W                           bool
	ReadBuffer                  byte
	OAM                         [256]byte
	Palette                     [32]byte
	CIRAM                       [4][1024]byte
	Dot, Scanline               int32
	OddFrame                    bool
	PAL                         bool
	NMIOccurred, NMILinePrev    bool
	NMIDelay                    int32
}

type APUState struct {
	FrameIRQCount int32
}

// MapperState is implemented by the per-mapper state blocks. A tag byte
// (distinct per mapper kind) is serialized ahead of the block so
// UnmarshalSnapshot can dispatch to the right decoder without guessing
// from the cartridge.
type MapperState interface {
	mapperTag() byte
}

const (
	mapperTagNone byte = iota
	mapperTagMapper0
	mapperTagMapper2
	mapperTagMapper4
	mapperTagMapper5
)

type wramState struct {
	Data         []byte
	Bank         int
	Enabled      bool
	WriteProtect bool
}

type Mapper0State struct {
	WRAM wramState
}

func (*Mapper0State) mapperTag() byte { return mapperTagMapper0 }

type Mapper2State struct {
	PRGBank int
	WRAM    wramState
}

func (*Mapper2State) mapperTag() byte { return mapperTagMapper2 }

type Mapper4State struct {
	BankSelect     byte
	Reg            [8]byte
	MirrorVertical bool
	IRQLatch       byte
	IRQCounter     byte
	IRQReload      bool
	IRQEnabled     bool
	IRQPending     bool
	A12Level       bool
	LowM2Count     int
	WRAM           wramState
}

func (*Mapper4State) mapperTag() byte { return mapperTagMapper4 }

type Mapper5State struct {
	PRGMode, CHRMode, CHRHigh byte
	PRGReg                    [4]byte
	CHRSpr                    [8]uint16
	CHRBg                     [4]uint16
	ExRAM                     [1024]byte
	ExRAMMode                 byte
	NTSelect, NTFill, ATFill  byte
	SplitCtrl, SplitScroll    byte
	SplitBank                byte
	Mul                       [2]byte
	IRQLatch                  byte
	IRQCounter                int
	IRQEnabled, IRQPending    bool
	WRAM                      wramState
}

func (*Mapper5State) mapperTag() byte { return mapperTagMapper5 }

func captureWRAM(w *wramPager) wramState {
	return wramState{
		Data:         append([]byte(nil), w.data...),
		Bank:         w.bank,
		Enabled:      w.enabled,
		WriteProtect: w.writeProtect,
	}
}

func restoreWRAM(w *wramPager, s wramState) {
	copy(w.data, s.Data)
	w.bank = s.Bank
	w.enabled = s.Enabled
	w.writeProtect = s.WriteProtect
}

// Capture snapshots the full machine state reachable from the console.
func (c *NesConsole) Capture() *Snapshot {
	cpu := c.cpu
	ppu := c.ppu
	snap := &Snapshot{
		CPU: CPUState{
			A: cpu.A, X: cpu.X, Y: cpu.Y, S: cpu.S,
			P:            cpu.P.encode(),
			PC:           cpu.PC,
			Stall:        cpu.stall,
			TotalCycles:  cpu.totalCycles,
			NMITriggered: cpu.nmiTriggered,
			IRQTriggered: cpu.irqTriggered,
		},
		PPU: PPUState{
			Ctrl: ppu.ctrl, Mask: ppu.mask, Status: ppu.status, OAMAddr: ppu.oamAddr,
			V: ppu.v, T: ppu.t, X: ppu.x, W: ppu.w, ReadBuffer: ppu.readBuffer,
			OAM:         ppu.oam,
			Palette:     ppu.palette.ram,
			CIRAM:       ppu.ciram,
			Dot:         int32(ppu.dot),
			Scanline:    int32(ppu.scanline),
			OddFrame:    ppu.oddFrame,
			PAL:         ppu.pal,
			NMIOccurred: ppu.nmiOccurred,
			NMILinePrev: ppu.nmiLinePrev,
			NMIDelay:    int32(ppu.nmiDelay),
		},
		APU: APUState{FrameIRQCount: int32(c.apu.frameIRQCount)},
	}
	switch m := c.cartridge.Mapper.(type) {
	case *mapper0:
		snap.Mapper = &Mapper0State{WRAM: captureWRAM(m.wram)}
	case *mapper2:
		snap.Mapper = &Mapper2State{PRGBank: m.currentBank, WRAM: captureWRAM(m.wram)}
	case *mapper4:
		snap.Mapper = &Mapper4State{
			BankSelect: m.bankSelect, Reg: m.reg, MirrorVertical: m.mirrorVertical,
			IRQLatch: m.irqLatch, IRQCounter: m.irqCounter, IRQReload: m.irqReload,
			IRQEnabled: m.irqEnabled, IRQPending: m.irqPending,
			A12Level: m.a12Level, LowM2Count: m.lowM2Count,
			WRAM: captureWRAM(m.wram),
		}
	case *mapper5:
		snap.Mapper = &Mapper5State{
			PRGMode: m.prgMode, CHRMode: m.chrMode, CHRHigh: m.chrHigh,
			PRGReg: m.prgReg, CHRSpr: m.chrSpr, CHRBg: m.chrBg,
			ExRAM: m.exram, ExRAMMode: m.exramMode,
			NTSelect: m.ntSelect, NTFill: m.ntFill, ATFill: m.atFill,
			SplitCtrl: m.splitCtrl, SplitScroll: m.splitScroll, SplitBank: m.splitBank,
			Mul:        m.mul,
			IRQLatch:   m.irqLatch,
			IRQCounter: m.irqCounter,
			IRQEnabled: m.irqEnabled, IRQPending: m.irqPending,
			WRAM: captureWRAM(m.wram),
		}
	}
	return snap
}

// Restore applies a previously captured Snapshot. The cartridge must be
// the same one the snapshot was captured from (same mapper kind and ROM
// sizes). For mapper4 and mapper5, Restore re-applies the CHR and
// nametable page layout from the restored bank registers; mapper0 and
// mapper2 keep the static layout AttachPPU published.
func (c *NesConsole) Restore(snap *Snapshot) error {
	cpu := c.cpu
	ppu := c.ppu
	cpu.A, cpu.X, cpu.Y, cpu.S = snap.CPU.A, snap.CPU.X, snap.CPU.Y, snap.CPU.S
	cpu.P.decodeFrom(snap.CPU.P)
	cpu.PC = snap.CPU.PC
	cpu.stall = snap.CPU.Stall
	cpu.totalCycles = snap.CPU.TotalCycles
	cpu.nmiTriggered = snap.CPU.NMITriggered
	cpu.irqTriggered = snap.CPU.IRQTriggered

	ppu.ctrl, ppu.mask, ppu.status, ppu.oamAddr = snap.PPU.Ctrl, snap.PPU.Mask, snap.PPU.Status, snap.PPU.OAMAddr
	ppu.v, ppu.t, ppu.x, ppu.w, ppu.readBuffer = snap.PPU.V, snap.PPU.T, snap.PPU.X, snap.PPU.W, snap.PPU.ReadBuffer
	ppu.oam = snap.PPU.OAM
	ppu.palette.ram = snap.PPU.Palette
	ppu.ciram = snap.PPU.CIRAM
	ppu.dot, ppu.scanline, ppu.oddFrame = int(snap.PPU.Dot), int(snap.PPU.Scanline), snap.PPU.OddFrame
	ppu.pal = snap.PPU.PAL
	ppu.nmiOccurred, ppu.nmiLinePrev, ppu.nmiDelay = snap.PPU.NMIOccurred, snap.PPU.NMILinePrev, int(snap.PPU.NMIDelay)
	ppu.applyCTRL(ppu.ctrl)
	ppu.applyMASK(ppu.mask)
	// The PPU resumes at the start of a frame, with w, t and the read
	// buffer cleared.
	ppu.dot, ppu.scanline = 0, 0
	ppu.w, ppu.t, ppu.readBuffer = false, 0, 0

	c.apu.frameIRQCount = int(snap.APU.FrameIRQCount)

	switch m := c.cartridge.Mapper.(type) {
	case *mapper0:
		s, ok := snap.Mapper.(*Mapper0State)
		if !ok {
			return fmt.Errorf("snapshot mapper state mismatch: want mapper0, have %T", snap.Mapper)
		}
		restoreWRAM(m.wram, s.WRAM)
	case *mapper2:
		s, ok := snap.Mapper.(*Mapper2State)
		if !ok {
			return fmt.Errorf("snapshot mapper state mismatch: want mapper2, have %T", snap.Mapper)
		}
		m.currentBank = s.PRGBank
		restoreWRAM(m.wram, s.WRAM)
	case *mapper4:
		s, ok := snap.Mapper.(*Mapper4State)
		if !ok {
			return fmt.Errorf("snapshot mapper state mismatch: want mapper4, have %T", snap.Mapper)
		}
		m.bankSelect, m.reg, m.mirrorVertical = s.BankSelect, s.Reg, s.MirrorVertical
		m.irqLatch, m.irqCounter, m.irqReload = s.IRQLatch, s.IRQCounter, s.IRQReload
		m.irqEnabled, m.irqPending = s.IRQEnabled, s.IRQPending
		m.a12Level, m.lowM2Count = s.A12Level, s.LowM2Count
		restoreWRAM(m.wram, s.WRAM)
		m.syncCHR()
		m.syncMirror()
	case *mapper5:
		s, ok := snap.Mapper.(*Mapper5State)
		if !ok {
			return fmt.Errorf("snapshot mapper state mismatch: want mapper5, have %T", snap.Mapper)
		}
		m.prgMode, m.chrMode, m.chrHigh = s.PRGMode, s.CHRMode, s.CHRHigh
		m.prgReg, m.chrSpr, m.chrBg = s.PRGReg, s.CHRSpr, s.CHRBg
		m.exram, m.exramMode = s.ExRAM, s.ExRAMMode
		m.ntSelect, m.ntFill, m.atFill = s.NTSelect, s.NTFill, s.ATFill
		m.splitCtrl, m.splitScroll, m.splitBank = s.SplitCtrl, s.SplitScroll, s.SplitBank
		m.mul = s.Mul
		m.irqLatch, m.irqCounter = s.IRQLatch, s.IRQCounter
		m.irqEnabled, m.irqPending = s.IRQEnabled, s.IRQPending
		restoreWRAM(m.wram, s.WRAM)
		m.rebuildFill()
		m.syncNametables()
		m.syncCHR()
	default:
		return fmt.Errorf("snapshot restore: unsupported mapper type %T", c.cartridge.Mapper)
	}
	return nil
}

// writeWRAM appends a length-prefixed WRAM payload: an int64 byte count,
// the raw bytes, then the fixed bank/enable/write-protect trailer.
func writeWRAM(buf *bytes.Buffer, w wramState) error {
	if err := binary.Write(buf, binary.LittleEndian, int64(len(w.Data))); err != nil {
		return err
	}
	buf.Write(w.Data)
	trailer := struct {
		Bank         int64
		Enabled      bool
		WriteProtect bool
	}{int64(w.Bank), w.Enabled, w.WriteProtect}
	return binary.Write(buf, binary.LittleEndian, trailer)
}

func readWRAM(r *bytes.Reader) (wramState, error) {
	var length int64
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return wramState{}, err
	}
	data := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, data); err != nil {
			return wramState{}, err
		}
	}
	var trailer struct {
		Bank         int64
		Enabled      bool
		WriteProtect bool
	}
	if err := binary.Read(r, binary.LittleEndian, &trailer); err != nil {
		return wramState{}, err
	}
	return wramState{Data: data, Bank: int(trailer.Bank), Enabled: trailer.Enabled, WriteProtect: trailer.WriteProtect}, nil
}

// Marshal encodes the snapshot with encoding/binary in a fixed
// little-endian layout: CPU block, PPU block, APU block, then a mapper
// tag byte followed by that mapper's fixed fields and a length-prefixed
// WRAM payload. No reflection-based codec (gob, JSON) is used, matching
// the teacher lineage's avoidance of those for anything performance- or
// state-fidelity-sensitive.
func (s *Snapshot) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, s.CPU); err != nil {
		return nil, fmt.Errorf("marshal CPU state: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, s.PPU); err != nil {
		return nil, fmt.Errorf("marshal PPU state: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, s.APU); err != nil {
		return nil, fmt.Errorf("marshal APU state: %w", err)
	}
	if s.Mapper == nil {
		return append(buf.Bytes(), mapperTagNone), nil
	}
	if err := buf.WriteByte(s.Mapper.mapperTag()); err != nil {
		return nil, err
	}
	switch m := s.Mapper.(type) {
	case *Mapper0State:
		if err := writeWRAM(&buf, m.WRAM); err != nil {
			return nil, fmt.Errorf("marshal mapper0 state: %w", err)
		}
	case *Mapper2State:
		if err := binary.Write(&buf, binary.LittleEndian, int64(m.PRGBank)); err != nil {
			return nil, fmt.Errorf("marshal mapper2 state: %w", err)
		}
		if err := writeWRAM(&buf, m.WRAM); err != nil {
			return nil, fmt.Errorf("marshal mapper2 state: %w", err)
		}
	case *Mapper4State:
		fixed := struct {
			BankSelect     byte
			Reg            [8]byte
			MirrorVertical bool
			IRQLatch       byte
			IRQCounter     byte
			IRQReload      bool
			IRQEnabled     bool
			IRQPending     bool
			A12Level       bool
			LowM2Count     int64
		}{m.BankSelect, m.Reg, m.MirrorVertical, m.IRQLatch, m.IRQCounter, m.IRQReload, m.IRQEnabled, m.IRQPending, m.A12Level, int64(m.LowM2Count)}
		if err := binary.Write(&buf, binary.LittleEndian, fixed); err != nil {
			return nil, fmt.Errorf("marshal mapper4 state: %w", err)
		}
		if err := writeWRAM(&buf, m.WRAM); err != nil {
			return nil, fmt.Errorf("marshal mapper4 state: %w", err)
		}
	case *Mapper5State:
		fixed := struct {
			PRGMode, CHRMode, CHRHigh byte
			PRGReg                    [4]byte
			CHRSpr                    [8]uint16
			CHRBg                     [4]uint16
			ExRAM                     [1024]byte
			ExRAMMode                 byte
			NTSelect, NTFill, ATFill  byte
			SplitCtrl, SplitScroll    byte
			SplitBank                 byte
			Mul                       [2]byte
			IRQLatch                  byte
			IRQCounter                int64
			IRQEnabled, IRQPending    bool
		}{m.PRGMode, m.CHRMode, m.CHRHigh, m.PRGReg, m.CHRSpr, m.CHRBg, m.ExRAM, m.ExRAMMode,
			m.NTSelect, m.NTFill, m.ATFill, m.SplitCtrl, m.SplitScroll, m.SplitBank, m.Mul,
			m.IRQLatch, int64(m.IRQCounter), m.IRQEnabled, m.IRQPending}
		if err := binary.Write(&buf, binary.LittleEndian, fixed); err != nil {
			return nil, fmt.Errorf("marshal mapper5 state: %w", err)
		}
		if err := writeWRAM(&buf, m.WRAM); err != nil {
			return nil, fmt.Errorf("marshal mapper5 state: %w", err)
		}
	default:
		return nil, fmt.Errorf("marshal: unknown mapper state type %T", s.Mapper)
	}
	return buf.Bytes(), nil
}

// UnmarshalSnapshot decodes a Snapshot previously produced by Marshal.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	r := bytes.NewReader(data)
	var s Snapshot
	if err := binary.Read(r, binary.LittleEndian, &s.CPU); err != nil {
		return nil, fmt.Errorf("unmarshal CPU state: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &s.PPU); err != nil {
		return nil, fmt.Errorf("unmarshal PPU state: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &s.APU); err != nil {
		return nil, fmt.Errorf("unmarshal APU state: %w", err)
	}
	tag, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("unmarshal mapper tag: %w", err)
	}
	switch tag {
	case mapperTagNone:
		return &s, nil
	case mapperTagMapper0:
		wram, err := readWRAM(r)
		if err != nil {
			return nil, fmt.Errorf("unmarshal mapper0 state: %w", err)
		}
		s.Mapper = &Mapper0State{WRAM: wram}
	case mapperTagMapper2:
		var prgBank int64
		if err := binary.Read(r, binary.LittleEndian, &prgBank); err != nil {
			return nil, fmt.Errorf("unmarshal mapper2 state: %w", err)
		}
		wram, err := readWRAM(r)
		if err != nil {
			return nil, fmt.Errorf("unmarshal mapper2 state: %w", err)
		}
		s.Mapper = &Mapper2State{PRGBank: int(prgBank), WRAM: wram}
	case mapperTagMapper4:
		var fixed struct {
			BankSelect     byte
			Reg            [8]byte
			MirrorVertical bool
			IRQLatch       byte
			IRQCounter     byte
			IRQReload      bool
			IRQEnabled     bool
			IRQPending     bool
			A12Level       bool
			LowM2Count     int64
		}
		if err := binary.Read(r, binary.LittleEndian, &fixed); err != nil {
			return nil, fmt.Errorf("unmarshal mapper4 state: %w", err)
		}
		wram, err := readWRAM(r)
		if err != nil {
			return nil, fmt.Errorf("unmarshal mapper4 state: %w", err)
		}
		s.Mapper = &Mapper4State{
			BankSelect: fixed.BankSelect, Reg: fixed.Reg, MirrorVertical: fixed.MirrorVertical,
			IRQLatch: fixed.IRQLatch, IRQCounter: fixed.IRQCounter, IRQReload: fixed.IRQReload,
			IRQEnabled: fixed.IRQEnabled, IRQPending: fixed.IRQPending,
			A12Level: fixed.A12Level, LowM2Count: int(fixed.LowM2Count), WRAM: wram,
		}
	case mapperTagMapper5:
		var fixed struct {
			PRGMode, CHRMode, CHRHigh byte
			PRGReg                    [4]byte
			CHRSpr                    [8]uint16
			CHRBg                     [4]uint16
			ExRAM                     [1024]byte
			ExRAMMode                 byte
			NTSelect, NTFill, ATFill  byte
			SplitCtrl, SplitScroll    byte
			SplitBank                 byte
			Mul                       [2]byte
			IRQLatch                  byte
			IRQCounter                int64
			IRQEnabled, IRQPending    bool
		}
		if err := binary.Read(r, binary.LittleEndian, &fixed); err != nil {
			return nil, fmt.Errorf("unmarshal mapper5 state: %w", err)
		}
		wram, err := readWRAM(r)
		if err != nil {
			return nil, fmt.Errorf("unmarshal mapper5 state: %w", err)
		}
		s.Mapper = &Mapper5State{
			PRGMode: fixed.PRGMode, CHRMode: fixed.CHRMode, CHRHigh: fixed.CHRHigh,
			PRGReg: fixed.PRGReg, CHRSpr: fixed.CHRSpr, CHRBg: fixed.CHRBg,
			ExRAM: fixed.ExRAM, ExRAMMode: fixed.ExRAMMode,
			NTSelect: fixed.NTSelect, NTFill: fixed.NTFill, ATFill: fixed.ATFill,
			SplitCtrl: fixed.SplitCtrl, SplitScroll: fixed.SplitScroll, SplitBank: fixed.SplitBank,
			Mul: fixed.Mul, IRQLatch: fixed.IRQLatch, IRQCounter: int(fixed.IRQCounter),
			IRQEnabled: fixed.IRQEnabled, IRQPending: fixed.IRQPending, WRAM: wram,
		}
	default:
		return nil, fmt.Errorf("unmarshal: unknown mapper tag %d", tag)
	}
	return &s, nil
}
