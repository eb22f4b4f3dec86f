package ppu

// CGBVRAMReader extends VRAMReader with bank-aware access, used by the
// Color-mode BG/window renderers that must read both the bank-0 tile map and
// the bank-1 attribute map (and occasionally bank-1 tile data).
type CGBVRAMReader interface {
	VRAMReader
	ReadBank(bank int, addr uint16) byte
}

func cgbTileRowAddr(tileNum byte, unsigned bool, row byte) uint16 {
	if unsigned {
		return 0x8000 + uint16(tileNum)*16 + uint16(row)*2
	}
	return uint16(int32(0x9000) + int32(int8(tileNum))*16 + int32(row)*2)
}

// RenderBGScanlineCGB renders 160 BG pixels for ly along with per-pixel
// CGB palette number and BG-to-OBJ priority, reading the tile map from VRAM
// bank 0 and the parallel attribute byte from bank 1 at attrBase.
func RenderBGScanlineCGB(vram CGBVRAMReader, mapBase, attrBase uint16, tileData8000 bool, scx, scy, ly byte) (ci [160]byte, pal [160]byte, pri [160]bool) {
	bgY := uint16(ly) + uint16(scy)
	mapRow := (bgY >> 3) & 31
	fineY := byte(bgY & 7)
	startX := uint16(scx)

	for x := 0; x < 160; x++ {
		bgX := (startX + uint16(x)) & 0xFF
		mapCol := (bgX >> 3) & 31
		fineX := byte(bgX & 7)

		entryAddr := mapBase + mapRow*32 + mapCol
		tileIdx := vram.ReadBank(0, entryAddr)
		attr := vram.ReadBank(1, attrBase+mapRow*32+mapCol)

		bank := 0
		if attr&0x10 != 0 {
			bank = 1
		}
		row := fineY
		if attr&0x40 != 0 {
			row = 7 - fineY
		}
		addr := cgbTileRowAddr(tileIdx, tileData8000, row)
		lo := vram.ReadBank(bank, addr)
		hi := vram.ReadBank(bank, addr+1)

		bit := 7 - fineX
		if attr&0x20 != 0 {
			bit = fineX
		}
		ci[x] = ((hi>>bit)&1)<<1 | ((lo >> bit) & 1)
		pal[x] = attr & 0x07
		pri[x] = attr&0x80 != 0
	}
	return
}

// RenderWindowScanlineCGB renders the window layer starting at winXStart,
// where fineY is the window's own internal line counter modulo 8 (the row
// within the tile; the caller selects the correct map row by offsetting
// mapBase/attrBase by (winLine/8)*32 before calling, matching the DMG
// window fetcher's convention of taking a row-scoped map base).
func RenderWindowScanlineCGB(vram CGBVRAMReader, mapBase, attrBase uint16, tileData8000 bool, winXStart int, fineY byte) (ci [160]byte, pal [160]byte, pri [160]bool) {
	if winXStart >= 160 {
		return
	}
	if winXStart < 0 {
		winXStart = 0
	}
	fineY &= 7
	for x := winXStart; x < 160; x++ {
		winCol := uint16(x - winXStart)
		tileCol := (winCol >> 3) & 31
		fineX := byte(winCol & 7)

		entryAddr := mapBase + tileCol
		tileIdx := vram.ReadBank(0, entryAddr)
		attr := vram.ReadBank(1, attrBase+tileCol)

		bank := 0
		if attr&0x10 != 0 {
			bank = 1
		}
		row := fineY
		if attr&0x40 != 0 {
			row = 7 - fineY
		}
		addr := cgbTileRowAddr(tileIdx, tileData8000, row)
		lo := vram.ReadBank(bank, addr)
		hi := vram.ReadBank(bank, addr+1)

		bit := 7 - fineX
		if attr&0x20 != 0 {
			bit = fineX
		}
		ci[x] = ((hi>>bit)&1)<<1 | ((lo >> bit) & 1)
		pal[x] = attr & 0x07
		pri[x] = attr&0x80 != 0
	}
	return
}
