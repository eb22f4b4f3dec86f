package cart

import "testing"

func TestMBC1_ROMBanking(t *testing.T) {
	// Build a 128KB ROM with distinct bytes per bank at start of each bank
	rom := make([]byte, 128*1024)
	for bank := 0; bank < 8; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC1(rom, 0)

	// Bank0 region reads from bank 0 in mode 0
	if got := m.Read(0x0000); got != 0x00 {
		t.Fatalf("bank0 read got %02X want 00", got)
	}

	// Switchable bank defaults to 1
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank1 read got %02X want 01", got)
	}

	// Select bank 3
	m.Write(0x2000, 0x03)
	if got := m.Read(0x4000); got != 0x03 {
		t.Fatalf("bank3 read got %02X want 03", got)
	}

	// Writing 0 maps to 1
	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank0->1 remap failed: got %02X", got)
	}
}

func TestMBC1_RAMBanking_Mode1(t *testing.T) {
	rom := make([]byte, 128*1024)
	m := NewMBC1(rom, 32*1024)

	// Enable RAM
	m.Write(0x0000, 0x0A)

	// Select mode 1 (RAM banking)
	m.Write(0x6000, 0x01)
	// Select RAM bank 2 via high bits
	m.Write(0x4000, 0x02)

	// Write/read in A000-BFFF should go to bank 2
	m.Write(0xA000, 0x77)
	if got := m.Read(0xA000); got != 0x77 {
		t.Fatalf("RAM bank2 RW failed: got %02X", got)
	}
}

func TestMBC1_ZeroWriteAfterNonZeroSelectsBankOne(t *testing.T) {
	// 4-bank (64 KiB) cartridge: writing 0xAA then 0x00 to 0x2000 must land
	// on effective bank 1, not bank 0.
	rom := make([]byte, 64*1024)
	for bank := 0; bank < 4; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC1(rom, 0)
	m.Write(0x2000, 0xAA) // low5=0x0A, masked to bank 2 on a 4-bank cart
	if got := m.Read(0x4000); got != 0x02 {
		t.Fatalf("after 0xAA write got bank %02X want 02", got)
	}
	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("after 0x00 write got bank %02X want 01", got)
	}
}

func TestMBC1_ShadowBank20MapsTo21OnLargeCart(t *testing.T) {
	// 2 MiB cartridge (128 banks): a 0x20 write has all low-5 bits clear, so
	// it is remapped to 1; with high bits = 1 the effective bank is 0x21.
	rom := make([]byte, 2*1024*1024)
	for bank := 0; bank < 128; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC1(rom, 0)
	m.Write(0x2000, 0x20)
	m.Write(0x4000, 0x01) // mode 0: ROM bank bits 5-6
	if got := m.Read(0x4000); got != 0x21 {
		t.Fatalf("large-cart bank got %02X want 21", got)
	}
}

func TestMBC1_HighBitsMaskedOnSmallCart(t *testing.T) {
	// 8-bank (128 KiB) cartridge: high bank bits fall outside the ROM and are
	// masked away, so bank 0x21 folds down to bank 1.
	rom := make([]byte, 128*1024)
	for bank := 0; bank < 8; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC1(rom, 0)
	m.Write(0x2000, 0x20)
	m.Write(0x4000, 0x01)
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("small-cart bank got %02X want 01", got)
	}
}
