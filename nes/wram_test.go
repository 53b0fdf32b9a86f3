package nes

import "testing"

func TestWRAMDisabledReadsFF(t *testing.T) {
	w := newWRAMPager(0x2000)
	if got := w.Read(0); got != 0xFF {
		t.Fatalf("disabled window read: got=0x%02x, want=0xFF", got)
	}
	w.Write(0, 0x42) // dropped, window disabled
	if got := w.Read(0); got != 0xFF {
		t.Fatalf("write while disabled took effect: got=0x%02x", got)
	}
}

func TestWRAMWriteProtect(t *testing.T) {
	w := newWRAMPager(0x2000)
	w.SetEnable(true)
	w.SetWriteProtect(true)
	w.Write(0x10, 0x55)
	if got := w.Read(0x10); got != 0x00 {
		t.Fatalf("write-protected window accepted a write: got=0x%02x, want=0x00", got)
	}
	w.SetWriteProtect(false)
	w.Write(0x10, 0x55)
	if got := w.Read(0x10); got != 0x55 {
		t.Fatalf("write after unprotecting: got=0x%02x, want=0x55", got)
	}
}

func TestWRAMBankSwitch(t *testing.T) {
	w := newWRAMPager(0x4000) // 2 banks of 8 KiB
	w.SetEnable(true)
	w.SetBank8K(0)
	w.Write(0, 0xAA)
	w.SetBank8K(1)
	if got := w.Read(0); got != 0x00 {
		t.Fatalf("bank 1 offset 0 should be untouched: got=0x%02x", got)
	}
	w.Write(0, 0xBB)
	w.SetBank8K(0)
	if got := w.Read(0); got != 0xAA {
		t.Fatalf("bank 0 offset 0 should still read back 0xAA: got=0x%02x", got)
	}
	w.SetBank8K(1)
	if got := w.Read(0); got != 0xBB {
		t.Fatalf("bank 1 offset 0: got=0x%02x, want=0xBB", got)
	}
}

func TestWRAMBankWrapsModuloBankCount(t *testing.T) {
	w := newWRAMPager(0x4000) // 2 banks
	w.SetBank8K(5)            // 5 % 2 == 1
	if w.bank != 1 {
		t.Fatalf("bank after wrap: got=%d, want=1", w.bank)
	}
}
