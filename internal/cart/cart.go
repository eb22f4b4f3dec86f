package cart

// Cartridge is the minimal interface the Bus needs for ROM/RAM banking.
// Implementations can be ROM-only or MBC variants. Addresses are CPU addresses.
type Cartridge interface {
	// Read returns a byte for ROM (0x0000-0x7FFF) and external RAM (0xA000-0xBFFF).
	Read(addr uint16) byte
	// Write handles MBC control writes (0x0000-0x7FFF) and external RAM writes (0xA000-0xBFFF).
	Write(addr uint16, value byte)
	// SaveState/LoadState serialize internal banking registers and external RAM for save states.
	SaveState() []byte
	LoadState(data []byte)
}

// BatteryBacked is implemented by cartridges whose external RAM should be
// persisted to a .sav file across sessions.
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// cartFamily maps the raw 0x0147 cartridge-type byte to a constructor. Built
// once at package init instead of re-walking a switch per load, and it
// doubles as the single place that documents which raw codes a family covers.
var cartFamily = func() map[byte]func(rom []byte, ramBytes int) Cartridge {
	m := map[byte]func(rom []byte, ramBytes int) Cartridge{}
	register := func(ctor func(rom []byte, ramBytes int) Cartridge, codes ...byte) {
		for _, c := range codes {
			m[c] = ctor
		}
	}
	register(func(rom []byte, _ int) Cartridge { return NewROMOnly(rom) }, 0x00)
	register(func(rom []byte, ram int) Cartridge { return NewMBC1(rom, ram) }, 0x01, 0x02, 0x03)
	register(func(rom []byte, ram int) Cartridge { return NewMBC3(rom, ram) }, 0x0F, 0x10, 0x11, 0x12, 0x13)
	register(func(rom []byte, ram int) Cartridge { return NewMBC5(rom, ram) }, 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E)
	return m
}()

// NewCartridge picks an implementation based on the ROM header, falling back
// to ROM-only for headers that fail to parse or name an unsupported MBC (MBC2,
// MMM01, pocket camera, etc. are not implemented). MBC3 cartridges with a
// timer load as plain MBC3, without clock registers.
func NewCartridge(rom []byte) Cartridge {
	h, err := ParseHeader(rom)
	if err != nil {
		return NewROMOnly(rom)
	}
	if ctor, ok := cartFamily[h.CartType]; ok {
		return ctor(rom, h.RAMSizeBytes)
	}
	return NewROMOnly(rom)
}
