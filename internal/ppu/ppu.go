package ppu

import (
	"bytes"
	"encoding/gob"
)

// InterruptRequester is a callback signature to request IF bits (0:VBlank, 1:STAT, etc.).
type InterruptRequester func(bit int)

// LineRegs is a snapshot of the registers that affect rendering, captured the
// moment a scanline enters mode 3 (drawing), so that mid-frame raster effects
// (changing SCX/SCY/palettes between lines) are reproduced faithfully.
type LineRegs struct {
	LCDC               byte
	SCX, SCY           byte
	WX, WY             byte
	BGP, OBP0, OBP1    byte
	WinLine            int
}

// PPU models VRAM/OAM, LCDC/STAT regs, LY/LYC, CGB palette RAM, and drives a
// scanline renderer that materializes a 160x144 RGBA framebuffer.
type PPU struct {
	// memory
	vram [2][0x2000]byte // 0x8000-0x9FFF, bank 0 and CGB bank 1
	oam  [0xA0]byte      // 0xFE00-0xFE9F

	// regs
	lcdc byte // FF40
	stat byte // FF41 (mode bits 0-1, coincidence flag bit2, enables bits3-6)
	scy  byte // FF42
	scx  byte // FF43
	ly   byte // FF44
	lyc  byte // FF45
	bgp  byte // FF47
	obp0 byte // FF48
	obp1 byte // FF49
	wy   byte // FF4A
	wx   byte // FF4B
	vbk  byte // FF4F (CGB VRAM bank select, bit0)

	// CGB palette RAM: 8 palettes x 4 colors x 2 bytes (RGB555 little-endian)
	bgPalRAM  [64]byte
	objPalRAM [64]byte
	bcps      byte // FF68
	ocps      byte // FF6A (bcps indexes bcpd at FF69; ocps indexes ocpd at FF6B)
	cgbMode   bool

	dot int // dots within current line [0..455]

	winLine int // internal window line counter; -1 means not yet active this frame

	lineRegs [144]LineRegs

	fb         [160 * 144 * 4]byte // materialized RGBA framebuffer
	vblankHit  bool                // set on VBlank entry, cleared by ConsumeVBlank

	shades [4][3]byte // DMG 4-shade greyscale-or-tint palette, index 0 = color 0

	req InterruptRequester
}

func New(req InterruptRequester) *PPU {
	p := &PPU{req: req, winLine: -1, shades: dmgShades}
	return p
}

// SetDMGPalette overrides the 4-shade palette used to materialize non-CGB
// (or CGB-compat) colors, e.g. for classic-console palette emulation.
func (p *PPU) SetDMGPalette(shades [4][3]byte) { p.shades = shades }

// SetCGBMode toggles whether CGB palette RAM (rather than BGP/OBP0/OBP1) is
// used to materialize colors, and whether BG tile attributes apply.
func (p *PPU) SetCGBMode(on bool) { p.cgbMode = on }

// CPURead returns bytes for VRAM, OAM, and PPU IO registers. Returns 0xFF for others.
func (p *PPU) CPURead(addr uint16) byte {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if (p.stat & 0x03) == 3 {
			return 0xFF
		}
		return p.vram[p.vbk&1][addr-0x8000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		m := p.stat & 0x03
		if m == 2 || m == 3 {
			return 0xFF
		}
		return p.oam[addr-0xFE00]
	case addr == 0xFF40:
		return p.lcdc
	case addr == 0xFF41:
		return 0x80 | (p.stat & 0x7F)
	case addr == 0xFF42:
		return p.scy
	case addr == 0xFF43:
		return p.scx
	case addr == 0xFF44:
		return p.ly
	case addr == 0xFF45:
		return p.lyc
	case addr == 0xFF47:
		return p.bgp
	case addr == 0xFF48:
		return p.obp0
	case addr == 0xFF49:
		return p.obp1
	case addr == 0xFF4A:
		return p.wy
	case addr == 0xFF4B:
		return p.wx
	case addr == 0xFF4F:
		return 0xFE | (p.vbk & 1)
	case addr == 0xFF68:
		return p.bcps
	case addr == 0xFF69:
		return p.bgPalRAM[p.bcps&0x3F]
	case addr == 0xFF6A:
		return p.ocps
	case addr == 0xFF6B:
		return p.objPalRAM[p.ocps&0x3F]
	default:
		return 0xFF
	}
}

// CPUWrite handles writes to VRAM, OAM, and PPU IO regs. Others are ignored here.
func (p *PPU) CPUWrite(addr uint16, value byte) {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if (p.stat & 0x03) == 3 {
			return
		}
		p.vram[p.vbk&1][addr-0x8000] = value
	case addr >= 0xFE00 && addr <= 0xFE9F:
		m := p.stat & 0x03
		if m == 2 || m == 3 {
			return
		}
		p.oam[addr-0xFE00] = value
	case addr == 0xFF40:
		prev := p.lcdc
		p.lcdc = value
		if (p.lcdc&0x80) == 0 && (prev&0x80) != 0 {
			p.ly = 0
			p.dot = 0
			p.setMode(0)
			p.updateLYC()
		} else if (p.lcdc&0x80) != 0 && (prev&0x80) == 0 {
			p.ly = 0
			p.dot = 0
			p.winLine = -1
			p.setMode(2)
			p.updateLYC()
		}
	case addr == 0xFF41:
		p.stat = (p.stat & 0x07) | (value & 0x78)
	case addr == 0xFF42:
		p.scy = value
	case addr == 0xFF43:
		p.scx = value
	case addr == 0xFF44:
		// LY is read-only; writes are ignored.
	case addr == 0xFF45:
		p.lyc = value
		p.updateLYC()
	case addr == 0xFF47:
		p.bgp = value
	case addr == 0xFF48:
		p.obp0 = value
	case addr == 0xFF49:
		p.obp1 = value
	case addr == 0xFF4A:
		p.wy = value
	case addr == 0xFF4B:
		p.wx = value
	case addr == 0xFF4F:
		p.vbk = value & 1
	case addr == 0xFF68:
		p.bcps = value
	case addr == 0xFF69:
		p.bgPalRAM[p.bcps&0x3F] = value
		if p.bcps&0x80 != 0 {
			p.bcps = 0x80 | ((p.bcps + 1) & 0x3F)
		}
	case addr == 0xFF6A:
		p.ocps = value
	case addr == 0xFF6B:
		p.objPalRAM[p.ocps&0x3F] = value
		if p.ocps&0x80 != 0 {
			p.ocps = 0x80 | ((p.ocps + 1) & 0x3F)
		}
	}
}

// ReadBank reads VRAM from an explicit bank (0 or 1), for CGB-aware rendering helpers.
func (p *PPU) ReadBank(bank int, addr uint16) byte {
	if addr < 0x8000 || addr > 0x9FFF {
		return 0xFF
	}
	return p.vram[bank&1][addr-0x8000]
}

// Read implements VRAMReader using the currently selected VRAM bank.
func (p *PPU) Read(addr uint16) byte { return p.ReadBank(int(p.vbk&1), addr) }

// Tick advances PPU state by the given number of dots (CPU cycles).
func (p *PPU) Tick(cycles int) {
	if cycles <= 0 {
		return
	}
	for i := 0; i < cycles; i++ {
		if (p.lcdc & 0x80) == 0 { // LCD off
			continue
		}
		p.dot++
		var mode byte
		if p.ly >= 144 {
			mode = 1
		} else {
			switch {
			case p.dot < 80:
				mode = 2
			case p.dot < 80+290: // Drawing spans dots 80-369 (290 dots), fixed-width
				mode = 3
			default:
				mode = 0
			}
		}
		p.setMode(mode)

		if p.dot >= 456 {
			p.dot = 0
			p.ly++
			if p.ly == 144 {
				if p.req != nil {
					p.req(0)
				}
				if (p.stat & (1 << 4)) != 0 {
					if p.req != nil {
						p.req(1)
					}
				}
				p.vblankHit = true
			} else if p.ly > 153 {
				p.ly = 0
				p.winLine = -1
			}
			p.updateLYC()
			if p.ly >= 144 {
				p.setMode(1)
			} else {
				p.setMode(2)
			}
		}
	}
}

func (p *PPU) setMode(mode byte) {
	prev := p.stat & 0x03
	if prev == mode {
		return
	}
	p.stat = (p.stat &^ 0x03) | (mode & 0x03)
	switch mode {
	case 0: // HBlank
		if prev == 3 {
			p.renderScanline(p.ly)
		}
		if (p.stat & (1 << 3)) != 0 {
			if p.req != nil {
				p.req(1)
			}
		}
	case 2: // OAM
		if (p.stat & (1 << 5)) != 0 {
			if p.req != nil {
				p.req(1)
			}
		}
	case 3: // entering drawing: capture this line's registers
		if prev == 2 {
			p.captureLine(p.ly)
		}
	}
}

func (p *PPU) captureLine(ly byte) {
	visible := (p.lcdc&0x20) != 0 && ly >= p.wy && p.wx <= 166
	if visible {
		if p.winLine < 0 {
			p.winLine = 0
		} else {
			p.winLine++
		}
	}
	wl := p.winLine
	if wl < 0 {
		wl = 0
	}
	p.lineRegs[ly] = LineRegs{
		LCDC: p.lcdc, SCX: p.scx, SCY: p.scy,
		WX: p.wx, WY: p.wy,
		BGP: p.bgp, OBP0: p.obp0, OBP1: p.obp1,
		WinLine: wl,
	}
}

// LineRegs returns the register snapshot captured for scanline ly.
func (p *PPU) LineRegs(ly int) LineRegs {
	if ly < 0 || ly >= 144 {
		return LineRegs{}
	}
	return p.lineRegs[ly]
}

func (p *PPU) updateLYC() {
	if p.ly == p.lyc {
		p.stat |= 1 << 2
		if (p.stat & (1 << 6)) != 0 {
			if p.req != nil {
				p.req(1)
			}
		}
	} else {
		p.stat &^= 1 << 2
	}
}

// ConsumeVBlank reports and clears the once-per-frame VBlank latch, used by
// the outer driver to know when a complete frame is ready without re-deriving
// it from LY.
func (p *PPU) ConsumeVBlank() bool {
	hit := p.vblankHit
	p.vblankHit = false
	return hit
}

// Framebuffer returns the materialized RGBA8888 framebuffer (160x144x4 bytes).
func (p *PPU) Framebuffer() []byte { return p.fb[:] }

var dmgShades = [4][3]byte{
	{0xFF, 0xFF, 0xFF},
	{0xAA, 0xAA, 0xAA},
	{0x55, 0x55, 0x55},
	{0x00, 0x00, 0x00},
}

func (p *PPU) dmgPaletteColor(palette byte, ci byte) (r, g, b byte) {
	shade := (palette >> (ci * 2)) & 0x03
	c := p.shades[shade]
	return c[0], c[1], c[2]
}

func cgb555ToRGB(lo, hi byte) (r, g, b byte) {
	v := uint16(lo) | uint16(hi)<<8
	r5 := byte(v & 0x1F)
	g5 := byte((v >> 5) & 0x1F)
	b5 := byte((v >> 10) & 0x1F)
	r = (r5 << 3) | (r5 >> 2)
	g = (g5 << 3) | (g5 >> 2)
	b = (b5 << 3) | (b5 >> 2)
	return
}

func (p *PPU) bgColorCGB(pal byte, ci byte) (r, g, b byte) {
	off := int(pal&0x07)*8 + int(ci)*2
	return cgb555ToRGB(p.bgPalRAM[off], p.bgPalRAM[off+1])
}

func (p *PPU) objColorCGB(pal byte, ci byte) (r, g, b byte) {
	off := int(pal&0x07)*8 + int(ci)*2
	return cgb555ToRGB(p.objPalRAM[off], p.objPalRAM[off+1])
}

// renderScanline materializes one row of the framebuffer from BG, window, and
// sprite layers, using the register snapshot captured for ly at mode-3 entry.
func (p *PPU) renderScanline(ly byte) {
	if ly >= 144 {
		return
	}
	lr := p.lineRegs[ly]

	var bgCI, winCI [160]byte
	var bgPal, winPal [160]byte
	var bgPri, winPri [160]bool

	bgEnabled := lr.LCDC&0x01 != 0
	bgTileData8000 := lr.LCDC&0x10 != 0
	bgMapBase := uint16(0x9800)
	if lr.LCDC&0x08 != 0 {
		bgMapBase = 0x9C00
	}
	if bgEnabled {
		if p.cgbMode {
			bgCI, bgPal, bgPri = RenderBGScanlineCGB(p, bgMapBase, bgMapBase, bgTileData8000, lr.SCX, lr.SCY, ly)
		} else {
			bgCI = RenderBackgroundRow(p, bgMapBase, bgTileData8000, lr.SCX, lr.SCY, ly)
		}
	}

	winXStart := int(lr.WX) - 7
	winEnabled := lr.LCDC&0x20 != 0 && ly >= lr.WY && lr.WX <= 166
	if winEnabled {
		winMapBase := uint16(0x9800)
		if lr.LCDC&0x40 != 0 {
			winMapBase = 0x9C00
		}
		winRow := uint16(lr.WinLine) >> 3
		fineY := byte(lr.WinLine & 7)
		if p.cgbMode {
			winCI, winPal, winPri = RenderWindowScanlineCGB(p, winMapBase+winRow*32, winMapBase+winRow*32, bgTileData8000, winXStart, fineY)
		} else {
			winCI = RenderWindowRow(p, winMapBase+winRow*32, bgTileData8000, winXStart, fineY)
		}
	}

	var finalCI, finalPal [160]byte
	var finalPri [160]bool
	for x := 0; x < 160; x++ {
		if winEnabled && x >= winXStart {
			finalCI[x] = winCI[x]
			finalPal[x] = winPal[x]
			finalPri[x] = winPri[x]
		} else {
			finalCI[x] = bgCI[x]
			finalPal[x] = bgPal[x]
			finalPri[x] = bgPri[x]
		}
	}

	var spriteCI, spriteAttr [160]byte
	if lr.LCDC&0x02 != 0 {
		sprites := p.scanSpritesForLine(ly)
		spriteCI, spriteAttr = composeSpriteLine(p, sprites, ly, finalCI, p.cgbMode)
	}

	base := int(ly) * 160 * 4
	for x := 0; x < 160; x++ {
		var r, g, b byte
		useSprite := spriteCI[x] != 0
		if useSprite && p.cgbMode && finalPri[x] && finalCI[x] != 0 {
			// CGB BG-priority-over-everything bit on the BG tile itself wins.
			useSprite = false
		}
		if useSprite {
			attr := spriteAttr[x]
			if p.cgbMode {
				r, g, b = p.objColorCGB(attr&0x07, spriteCI[x])
			} else {
				obp := lr.OBP0
				if attr&0x10 != 0 {
					obp = lr.OBP1
				}
				r, g, b = p.dmgPaletteColor(obp, spriteCI[x])
			}
		} else if p.cgbMode {
			r, g, b = p.bgColorCGB(finalPal[x], finalCI[x])
		} else {
			r, g, b = p.dmgPaletteColor(lr.BGP, finalCI[x])
		}
		o := base + x*4
		p.fb[o+0] = r
		p.fb[o+1] = g
		p.fb[o+2] = b
		p.fb[o+3] = 0xFF
	}
}

// Expose palettes and scroll for renderer convenience (optional helpers)
func (p *PPU) BGP() byte  { return p.bgp }
func (p *PPU) OBP0() byte { return p.obp0 }
func (p *PPU) OBP1() byte { return p.obp1 }
func (p *PPU) LCDC() byte { return p.lcdc }
func (p *PPU) SCY() byte  { return p.scy }
func (p *PPU) SCX() byte  { return p.scx }
func (p *PPU) WY() byte   { return p.wy }
func (p *PPU) WX() byte   { return p.wx }

type ppuState struct {
	VRAM      [2][0x2000]byte
	OAM       [0xA0]byte
	LCDC      byte
	STAT      byte
	SCY, SCX  byte
	LY, LYC   byte
	BGP, OBP0, OBP1 byte
	WY, WX    byte
	VBK       byte
	BGPalRAM  [64]byte
	ObjPalRAM [64]byte
	BCPS, OCPS byte
	CGBMode   bool
	Dot       int
	WinLine   int
}

func (p *PPU) SaveState() []byte {
	var buf bytes.Buffer
	s := ppuState{
		VRAM: p.vram, OAM: p.oam,
		LCDC: p.lcdc, STAT: p.stat, SCY: p.scy, SCX: p.scx, LY: p.ly, LYC: p.lyc,
		BGP: p.bgp, OBP0: p.obp0, OBP1: p.obp1, WY: p.wy, WX: p.wx, VBK: p.vbk,
		BGPalRAM: p.bgPalRAM, ObjPalRAM: p.objPalRAM, BCPS: p.bcps, OCPS: p.ocps,
		CGBMode: p.cgbMode, Dot: p.dot, WinLine: p.winLine,
	}
	if err := gob.NewEncoder(&buf).Encode(&s); err != nil {
		return nil
	}
	return buf.Bytes()
}

func (p *PPU) LoadState(data []byte) {
	if len(data) == 0 {
		return
	}
	var s ppuState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	p.vram, p.oam = s.VRAM, s.OAM
	p.lcdc, p.stat, p.scy, p.scx, p.ly, p.lyc = s.LCDC, s.STAT, s.SCY, s.SCX, s.LY, s.LYC
	p.bgp, p.obp0, p.obp1, p.wy, p.wx, p.vbk = s.BGP, s.OBP0, s.OBP1, s.WY, s.WX, s.VBK
	p.bgPalRAM, p.objPalRAM, p.bcps, p.ocps = s.BGPalRAM, s.ObjPalRAM, s.BCPS, s.OCPS
	p.cgbMode, p.dot, p.winLine = s.CGBMode, s.Dot, s.WinLine
}
