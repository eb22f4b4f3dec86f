package cart

import (
	"encoding/binary"
	"errors"
	"strings"
)

const (
	headerStart = 0x0100
	headerEnd   = 0x014F
)

var nintendoLogo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// romSizeEntry pairs a ROM-size header code with its decoded byte count and bank count.
type romSizeEntry struct {
	bytes, banks int
}

var romSizeTable = map[byte]romSizeEntry{
	0x00: {32 * 1024, 2},
	0x01: {64 * 1024, 4},
	0x02: {128 * 1024, 8},
	0x03: {256 * 1024, 16},
	0x04: {512 * 1024, 32},
	0x05: {1 * 1024 * 1024, 64},
	0x06: {2 * 1024 * 1024, 128},
	0x07: {4 * 1024 * 1024, 256},
	0x08: {8 * 1024 * 1024, 512},
	0x52: {1152 * 1024, 72},
	0x53: {1280 * 1024, 80},
	0x54: {1536 * 1024, 96},
}

var ramSizeTable = map[byte]int{
	0x00: 0,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// cartTypeNames groups raw 0x0147 codes into named MBC families; unknown codes
// fall back to "Other/unknown". cart.NewCartridge does not dispatch every family
// named here (MBC2 loads as ROM-only).
var cartTypeNames = []struct {
	codes []byte
	name  string
}{
	{[]byte{0x00}, "ROM ONLY"},
	{[]byte{0x01, 0x02, 0x03}, "MBC1 (variants)"},
	{[]byte{0x05, 0x06}, "MBC2 (variants)"},
	{[]byte{0x0F, 0x10, 0x11, 0x12, 0x13}, "MBC3 (variants)"},
	{[]byte{0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E}, "MBC5 (variants)"},
}

// Header is the decoded cartridge header (0x0100-0x014F).
type Header struct {
	Title          string // trimmed ASCII, 0x0134-0x0143
	CGBFlag        byte   // 0x0143
	NewLicensee    string // 0x0144-0x0145 (ASCII), meaningful only when OldLicensee==0x33
	SGBFlag        byte   // 0x0146
	CartType       byte   // 0x0147
	ROMSizeCode    byte   // 0x0148
	RAMSizeCode    byte   // 0x0149
	Destination    byte   // 0x014A
	OldLicensee    byte   // 0x014B
	ROMVersion     byte   // 0x014C
	HeaderChecksum byte   // 0x014D
	GlobalChecksum uint16 // 0x014E-0x014F

	LogoValid bool // whether 0x0104-0x0133 matches the real Nintendo boot logo

	// Decoded helpers (for logs/cart.NewCartridge)
	ROMSizeBytes int
	ROMBanks     int
	RAMSizeBytes int
	CartTypeStr  string
}

// ParseHeader decodes the 0x0100-0x014F cartridge header out of rom. It does
// not reject a bad or missing Nintendo logo (plenty of homebrew/test ROMs
// omit it); LogoValid records the result for callers that care.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerEnd+1 {
		return nil, errors.New("ROM too small to contain header")
	}

	logoValid := true
	for i, want := range nintendoLogo {
		if rom[0x0104+i] != want {
			logoValid = false
			break
		}
	}

	rawTitle := rom[0x0134:0x0144]
	title := strings.TrimRight(string(rawTitle), "\x00")

	h := &Header{
		Title:          title,
		CGBFlag:        rom[0x0143],
		NewLicensee:    string(rom[0x0144:0x0146]),
		SGBFlag:        rom[0x0146],
		CartType:       rom[0x0147],
		ROMSizeCode:    rom[0x0148],
		RAMSizeCode:    rom[0x0149],
		Destination:    rom[0x014A],
		OldLicensee:    rom[0x014B],
		ROMVersion:     rom[0x014C],
		HeaderChecksum: rom[0x014D],
		GlobalChecksum: binary.BigEndian.Uint16(rom[0x014E:0x0150]),
		LogoValid:      logoValid,
	}

	h.ROMSizeBytes, h.ROMBanks = lookupROMSize(h.ROMSizeCode)
	h.RAMSizeBytes = ramSizeTable[h.RAMSizeCode]
	h.CartTypeStr = cartTypeName(h.CartType)

	return h, nil
}

// HeaderChecksumOK recomputes the Pan Docs header checksum over 0x0134-0x014C
// and compares it against the stored byte at 0x014D.
func HeaderChecksumOK(rom []byte) bool {
	if len(rom) < 0x014E {
		return false
	}
	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum == rom[0x014D]
}

func lookupROMSize(code byte) (size, banks int) {
	e, ok := romSizeTable[code]
	if !ok {
		return 0, 0
	}
	return e.bytes, e.banks
}

func cartTypeName(code byte) string {
	for _, entry := range cartTypeNames {
		for _, c := range entry.codes {
			if c == code {
				return entry.name
			}
		}
	}
	return "Other/unknown"
}
