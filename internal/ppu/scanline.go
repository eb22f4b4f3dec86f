package ppu

// renderTileRow walks screen columns fromX..159, draining q and refilling it
// from consecutive tile-map columns (wrapping at the 32-tile map width)
// whenever it runs dry, writing one color index per column into out.
func renderTileRow(f *tileRowFetcher, q *pixelQueue, mapRowBase uint16, unsignedAddressing bool, startTileX uint16, rowInTile byte, fromX int, out *[160]byte) {
	tileX := startTileX
	for x := fromX; x < 160; x++ {
		if q.Count() == 0 {
			tileX = (tileX + 1) & 31
			f.Seek(unsignedAddressing, mapRowBase+tileX, rowInTile)
			f.FillRow()
		}
		px, _ := q.Dequeue()
		out[x] = px
	}
}

// RenderBackgroundRow renders the 160 background color indices visible on
// scanline ly, sampling the tile map at mapBase with SCX/SCY scrolling
// applied and wrapping at the 256x256 background plane's edges.
func RenderBackgroundRow(mem VRAMReader, mapBase uint16, unsignedAddressing bool, scx, scy, ly byte) [160]byte {
	var out [160]byte

	bgY := uint16(ly) + uint16(scy)
	rowInTile := byte(bgY & 7)
	mapRowBase := mapBase + ((bgY>>3)&31)*32

	scrollX := uint16(scx)
	tileX := (scrollX >> 3) & 31
	discard := int(scrollX & 7)

	var q pixelQueue
	f := newTileRowFetcher(mem, &q)
	f.Seek(unsignedAddressing, mapRowBase+tileX, rowInTile)
	f.FillRow()
	for i := 0; i < discard; i++ {
		_, _ = q.Dequeue()
	}

	renderTileRow(f, &q, mapRowBase, unsignedAddressing, tileX, rowInTile, 0, &out)
	return out
}

// RenderWindowRow renders the window layer for one scanline, starting at
// screen column wxStart (WX-7). Columns left of wxStart stay at color index 0
// so the caller composites the background there instead.
func RenderWindowRow(mem VRAMReader, mapBase uint16, unsignedAddressing bool, wxStart int, windowLine byte) [160]byte {
	var out [160]byte
	if wxStart >= 160 {
		return out
	}
	if wxStart < 0 {
		wxStart = 0
	}

	rowInTile := windowLine & 7
	mapRowBase := mapBase

	var q pixelQueue
	f := newTileRowFetcher(mem, &q)
	f.Seek(unsignedAddressing, mapRowBase, rowInTile)
	f.FillRow()

	renderTileRow(f, &q, mapRowBase, unsignedAddressing, 0, rowInTile, wxStart, &out)
	return out
}
