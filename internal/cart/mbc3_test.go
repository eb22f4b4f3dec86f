package cart

import "testing"

func TestMBC3_ROMBanking(t *testing.T) {
	// 1 MiB ROM (64 banks) with a marker byte at the start of each bank.
	rom := make([]byte, 1024*1024)
	for bank := 0; bank < 64; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC3(rom, 0)

	// Fixed bank 0 at 0x0000-0x3FFF; switchable region defaults to bank 1.
	if got := m.Read(0x0000); got != 0x00 {
		t.Fatalf("bank0 read got %02X want 00", got)
	}
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("default switchable bank got %02X want 01", got)
	}

	// Full 7-bit bank select.
	m.Write(0x2000, 0x3F)
	if got := m.Read(0x4000); got != 0x3F {
		t.Fatalf("bank 3F read got %02X", got)
	}

	// Writing 0 remaps to bank 1.
	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("zero write remap got %02X want 01", got)
	}
}

func TestMBC3_RAMBankingAndEnable(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := NewMBC3(rom, 0x8000) // 32 KiB RAM, 4 banks

	// Disabled RAM reads open bus and swallows writes.
	m.Write(0xA000, 0x11)
	if got := m.Read(0xA000); got != 0xFF {
		t.Fatalf("disabled RAM read got %02X want FF", got)
	}

	m.Write(0x0000, 0x0A) // enable
	m.Write(0x4000, 0x02) // bank 2
	m.Write(0xA000, 0x77)
	if got := m.Read(0xA000); got != 0x77 {
		t.Fatalf("bank2 RW got %02X want 77", got)
	}

	// The same offset in bank 0 is untouched.
	m.Write(0x4000, 0x00)
	if got := m.Read(0xA000); got != 0x00 {
		t.Fatalf("bank0 read got %02X want 00", got)
	}

	// RTC register selects (0x08-0x0C) are not implemented and collapse to
	// RAM bank 0 rather than exposing clock registers.
	m.Write(0x4000, 0x08)
	m.Write(0xA000, 0x42)
	m.Write(0x4000, 0x00)
	if got := m.Read(0xA000); got != 0x42 {
		t.Fatalf("RTC select did not fall back to bank 0: got %02X", got)
	}
}

func TestMBC3_BatteryRoundTrip(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := NewMBC3(rom, 0x2000)
	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0xAB)
	m.Write(0xA001, 0xCD)

	data := m.SaveRAM()
	if len(data) != 0x2000 {
		t.Fatalf("SaveRAM length got %d want %d", len(data), 0x2000)
	}

	n := NewMBC3(rom, 0x2000)
	n.LoadRAM(data)
	n.Write(0x0000, 0x0A)
	if got := n.Read(0xA000); got != 0xAB {
		t.Fatalf("restored RAM[0] got %02X want AB", got)
	}
	if got := n.Read(0xA001); got != 0xCD {
		t.Fatalf("restored RAM[1] got %02X want CD", got)
	}
}
