package ppu

import "testing"

func TestPixelQueueRingBuffer(t *testing.T) {
	var q pixelQueue
	if q.Count() != 0 {
		t.Fatal("new pixelQueue not empty")
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatal("dequeue from empty should fail")
	}
	for i := 0; i < 32; i++ {
		if !q.Enqueue(byte(i)) {
			t.Fatal("unexpected full")
		}
	}
	if q.Enqueue(0) {
		t.Fatal("should be full")
	}
	for i := 0; i < 32; i++ {
		v, ok := q.Dequeue()
		if !ok {
			t.Fatal("unexpected empty")
		}
		if v != byte(i)&3 {
			t.Fatalf("got %d want %d", v, byte(i)&3)
		}
	}
}

type mockVRAM map[uint16]byte

func (m mockVRAM) Read(addr uint16) byte { return m[addr] }

func TestTileRowFetcherFillsEightPixels(t *testing.T) {
	// lo: 01010101 (0x55), hi: 00110011 (0x33) produces a 0..3 color-index cycle.
	mem := mockVRAM{}
	mem[0x9800] = 0 // tile index addr -> tileNum=0
	mem[0x8000] = 0x55
	mem[0x8001] = 0x33
	var q pixelQueue
	f := newTileRowFetcher(mem, &q)
	f.Seek(true, 0x9800, 0)
	f.FillRow()
	if q.Count() != 8 {
		t.Fatalf("expected 8 pixels queued, got %d", q.Count())
	}
	lo, hi := byte(0x55), byte(0x33)
	for i := 0; i < 8; i++ {
		b := 7 - byte(i)
		want := ((hi>>b)&1)<<1 | ((lo >> b) & 1)
		got, _ := q.Dequeue()
		if got != want {
			t.Fatalf("px %d got %d want %d", i, got, want)
		}
	}
}

func TestTileRowFetcherSignedTileAddressing8800(t *testing.T) {
	mem := mockVRAM{}
	// map at 0x9C00 points to tile index 0xFF (-1)
	mapBase := uint16(0x9C00)
	mem[mapBase] = 0xFF
	// For 0x8800 signed addressing, index 0 is at 0x9000; -1 => 0x8FF0
	rowInTile := byte(5) // row 5 -> offset 10 bytes into tile (each row 2 bytes)
	rowAddr := uint16(0x8FF0) + uint16(rowInTile)*2
	lo, hi := byte(0xA5), byte(0x5A)
	mem[rowAddr] = lo
	mem[rowAddr+1] = hi

	var q pixelQueue
	f := newTileRowFetcher(mem, &q)
	// unsignedAddressing=false => use 0x8800 signed addressing
	f.Seek(false, mapBase, rowInTile)
	f.FillRow()
	if q.Count() != 8 {
		t.Fatalf("expected 8 pixels queued, got %d", q.Count())
	}
	for i := 0; i < 8; i++ {
		b := 7 - byte(i)
		want := ((hi>>b)&1)<<1 | ((lo >> b) & 1)
		got, _ := q.Dequeue()
		if got != want {
			t.Fatalf("px %d got %d want %d", i, got, want)
		}
	}
}
