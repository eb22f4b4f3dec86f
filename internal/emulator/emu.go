package emulator

import (
	"bytes"
	"encoding/gob"
	"errors"
	"io"
	"log"
	"os"

	"github.com/lavignes/gb23/internal/bus"
	"github.com/lavignes/gb23/internal/cart"
	"github.com/lavignes/gb23/internal/cpu"
)

var errNoCartridge = errors.New("emulator: no cartridge loaded")

// Buttons is a snapshot of which physical buttons are currently held.
type Buttons struct {
	A, B, Start, Select   bool
	Up, Down, Left, Right bool
}

// cgbCompatSetNames/cgbCompatSets give a curated set of classic "DMG on CGB"
// color palettes, indexed by the IDs used in compat_tables.go. LoadCartridge
// falls back to the 6th entry only when autoCompatPaletteFromHeader reports no
// match; its checksum%6 fallback can land on any of the six entries.
var cgbCompatSetNames = []string{"Green", "Sepia", "Blue", "Red", "Pastel", "Grayscale"}

var cgbCompatSets = [][4][3]byte{
	{{0x9B, 0xBC, 0x0F}, {0x8B, 0xAC, 0x0F}, {0x30, 0x62, 0x30}, {0x0F, 0x38, 0x0F}}, // Green
	{{0xF8, 0xE8, 0xC8}, {0xD8, 0xA8, 0x68}, {0x98, 0x60, 0x38}, {0x48, 0x28, 0x18}}, // Sepia
	{{0xE0, 0xF0, 0xFF}, {0x90, 0xC8, 0xF0}, {0x40, 0x78, 0xC0}, {0x10, 0x28, 0x58}}, // Blue
	{{0xFF, 0xE8, 0xE0}, {0xF0, 0x98, 0x80}, {0xB8, 0x40, 0x38}, {0x50, 0x10, 0x10}}, // Red
	{{0xF8, 0xE0, 0xF8}, {0xD0, 0xA8, 0xE0}, {0x90, 0x70, 0xB0}, {0x48, 0x38, 0x60}}, // Pastel
	{{0xFF, 0xFF, 0xFF}, {0xAA, 0xAA, 0xAA}, {0x55, 0x55, 0x55}, {0x00, 0x00, 0x00}}, // Grayscale
}

// Machine wires the CPU, Bus (and everything the Bus owns: PPU, APU,
// cartridge, joypad, timers) into a runnable Game Boy.
type Machine struct {
	cfg Config

	bus *bus.Bus
	cpu *cpu.CPU

	header  *cart.Header
	romPath string
	bootROM []byte
	serialW io.Writer

	cgbCapable    bool // cart header advertises CGB support
	wantCGBColors bool // user preference: force CGB coloring on DMG-only carts
	useCGBBG      bool // currently running with CGB background/palette coloring
	compatPalette int

	vblanked bool // latched on frame boundary, cleared by VBlanked()
}

// New creates a Machine with no cartridge loaded.
func New(cfg Config) *Machine {
	return &Machine{cfg: cfg, compatPalette: -1}
}

// SetBootROM stashes boot ROM bytes to be used by LoadCartridge/LoadROMFromFile
// and by ResetWithBoot. Safe to call before or after a cartridge is loaded.
func (m *Machine) SetBootROM(data []byte) {
	m.bootROM = data
	if m.bus != nil {
		m.bus.SetBootROM(data)
	}
}

// SetSerialWriter attaches a sink for serial (link cable) output, e.g. for
// capturing blargg test-ROM pass/fail text.
func (m *Machine) SetSerialWriter(w io.Writer) {
	m.serialW = w
	if m.bus != nil {
		m.bus.SetSerialWriter(w)
	}
}

// LoadCartridge builds a fresh Bus+CPU around rom, optionally booting through
// boot (a DMG boot ROM image) instead of jumping straight to the post-boot
// state.
func (m *Machine) LoadCartridge(rom []byte, boot []byte) error {
	h, err := cart.ParseHeader(rom)
	if err != nil {
		return err
	}
	if boot == nil {
		boot = m.bootROM
	}

	b := bus.NewWithCartridge(cart.NewCartridge(rom))
	if m.serialW != nil {
		b.SetSerialWriter(m.serialW)
	}

	c := cpu.New(b)
	m.header = h
	m.cgbCapable = h.CGBFlag == 0x80 || h.CGBFlag == 0xC0
	m.useCGBBG = m.cgbCapable
	b.SetCGBMode(m.cgbCapable)

	if len(boot) >= 0x100 {
		b.SetBootROM(boot)
		c.SetPC(0x0000)
	} else {
		c.ResetNoBoot()
		c.SetPC(0x0100)
	}

	m.bus = b
	m.cpu = c

	if id, ok := autoCompatPaletteFromHeader(h); ok {
		m.compatPalette = id % len(cgbCompatSetNames)
	} else {
		m.compatPalette = len(cgbCompatSetNames) - 1
	}
	return nil
}

// LoadROMFromFile reads rom from disk and loads it via LoadCartridge,
// recording the path for later use (battery RAM sidecar, window title, ...).
func (m *Machine) LoadROMFromFile(path string) error {
	rom, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := m.LoadCartridge(rom, m.bootROM); err != nil {
		return err
	}
	m.romPath = path
	return nil
}

// ROMPath returns the path LoadROMFromFile was last called with, if any.
func (m *Machine) ROMPath() string { return m.romPath }

// ROMTitle returns the cartridge title from the header, or "" if no ROM is loaded.
func (m *Machine) ROMTitle() string {
	if m.header == nil {
		return ""
	}
	return m.header.Title
}

// LoadBattery restores external cartridge RAM from a .sav image, if the
// loaded cartridge is battery-backed. Returns whether it was applied.
func (m *Machine) LoadBattery(data []byte) bool {
	if m.bus == nil {
		return false
	}
	bb, ok := m.bus.Cart().(cart.BatteryBacked)
	if !ok {
		return false
	}
	bb.LoadRAM(data)
	return true
}

// SaveBattery returns a copy of external cartridge RAM suitable for writing
// to a .sav file, if the loaded cartridge is battery-backed.
func (m *Machine) SaveBattery() ([]byte, bool) {
	if m.bus == nil {
		return nil, false
	}
	bb, ok := m.bus.Cart().(cart.BatteryBacked)
	if !ok {
		return nil, false
	}
	return bb.SaveRAM(), true
}

// SetButtons updates the joypad state for the next Step/StepFrame calls.
func (m *Machine) SetButtons(bt Buttons) {
	if m.bus == nil {
		return
	}
	var mask byte
	if bt.Right {
		mask |= bus.JoypRight
	}
	if bt.Left {
		mask |= bus.JoypLeft
	}
	if bt.Up {
		mask |= bus.JoypUp
	}
	if bt.Down {
		mask |= bus.JoypDown
	}
	if bt.A {
		mask |= bus.JoypA
	}
	if bt.B {
		mask |= bus.JoypB
	}
	if bt.Select {
		mask |= bus.JoypSelectBtn
	}
	if bt.Start {
		mask |= bus.JoypStart
	}
	m.bus.SetJoypadState(mask)
}

// Tick executes one CPU instruction (which also advances the PPU and timers
// by the cycles it consumed) and returns that cycle count. A VBlank boundary
// crossed during the instruction is latched for VBlanked.
func (m *Machine) Tick() int {
	if m.cpu == nil || m.bus == nil {
		return 0
	}
	if m.cfg.Trace {
		log.Printf("PC=%04X SP=%04X AF=%02X%02X", m.cpu.PC, m.cpu.SP, m.cpu.A, m.cpu.F)
	}
	cycles := m.cpu.Step()
	if m.bus.PPU().ConsumeVBlank() {
		m.vblanked = true
	}
	return cycles
}

// VBlanked reports whether a frame boundary was crossed since the previous
// call, then clears the latch; it returns true exactly once per frame.
func (m *Machine) VBlanked() bool {
	v := m.vblanked
	m.vblanked = false
	return v
}

// stepUntilVBlank runs CPU instructions until the PPU reports a fresh VBlank,
// or a generous cycle budget is exhausted (e.g. LCD disabled).
func (m *Machine) stepUntilVBlank() {
	if m.cpu == nil || m.bus == nil {
		return
	}
	const budget = 1 << 20 // generous upper bound on T-cycles per frame
	spent := 0
	for spent < budget {
		spent += m.Tick()
		if m.VBlanked() {
			return
		}
	}
}

// StepFrame runs the machine until the next VBlank, leaving a freshly
// rendered frame in Framebuffer().
func (m *Machine) StepFrame() { m.stepUntilVBlank() }

// StepFrameNoRender is identical to StepFrame: the PPU always renders each
// scanline as it ticks, so there is no separate unrendered fast path. The
// method exists for callers (tests, fast-forward) that want to express
// intent without depending on a render cost that doesn't apply here.
func (m *Machine) StepFrameNoRender() { m.stepUntilVBlank() }

// Framebuffer returns the current RGBA 160x144 frame.
func (m *Machine) Framebuffer() []byte {
	if m.bus == nil {
		return make([]byte, 160*144*4)
	}
	return m.bus.PPU().Framebuffer()
}

// WantCGBColors reports the user's preference for forcing CGB-style coloring
// on a DMG-only cartridge, set via SetUseCGBBG.
func (m *Machine) WantCGBColors() bool { return m.wantCGBColors }

// UseCGBBG reports whether the machine is currently rendering with CGB
// background/palette coloring (true for genuine CGB carts, or a DMG-only
// cart running in compat mode after ResetCGBPostBoot).
func (m *Machine) UseCGBBG() bool { return m.useCGBBG }

// SetUseCGBBG records the user's CGB-coloring preference. It does not itself
// change the running machine; call ResetCGBPostBoot or ResetPostBoot to
// apply it.
func (m *Machine) SetUseCGBBG(on bool) { m.wantCGBColors = on }

// IsCGBCompat reports whether the machine is running a DMG-only cartridge
// under forced CGB-style coloring (as opposed to a genuinely CGB-capable
// cartridge, or a DMG-only cartridge in its native 4-shade mode).
func (m *Machine) IsCGBCompat() bool {
	return m.useCGBBG && !m.cgbCapable
}

// SetUseFetcherBG records the flag in the Config. The PPU always renders the
// background through the fetcher scanline path, so the flag does not change
// the output.
func (m *Machine) SetUseFetcherBG(on bool) { m.cfg.UseFetcherBG = on }

// ResetPostBoot resets the current cartridge to its standard DMG post-boot
// state (registers + PC=0x0100), without CGB coloring.
func (m *Machine) ResetPostBoot() {
	if m.cpu == nil || m.bus == nil {
		return
	}
	m.useCGBBG = false
	m.bus.SetCGBMode(false)
	m.cpu.ResetNoBoot()
	m.cpu.SetPC(0x0100)
}

// ResetWithBoot resets and re-runs the boot ROM from 0x0000, keeping the
// current cartridge and CGB mode as-is. If no boot ROM is set, it behaves
// like ResetPostBoot.
func (m *Machine) ResetWithBoot() {
	if m.cpu == nil || m.bus == nil {
		return
	}
	if len(m.bootROM) < 0x100 {
		m.ResetPostBoot()
		return
	}
	m.bus.SetBootROM(m.bootROM)
	m.cpu.SetPC(0x0000)
}

// ResetCGBPostBoot resets the machine into CGB post-boot state. compat=true
// marks this as a DMG-only cartridge being shown in forced CGB/compat
// coloring (IsCGBCompat becomes true and the active compat palette applies);
// compat=false is for genuinely CGB-capable cartridges running natively.
func (m *Machine) ResetCGBPostBoot(compat bool) {
	if m.cpu == nil || m.bus == nil {
		return
	}
	m.useCGBBG = true
	m.bus.SetCGBMode(true)
	m.cpu.ResetNoBoot()
	m.cpu.SetPC(0x0100)
	if compat && !m.cgbCapable {
		m.applyCompatPalette()
	}
}

func (m *Machine) applyCompatPalette() {
	if m.bus == nil {
		return
	}
	id := m.compatPalette
	if id < 0 || id >= len(cgbCompatSets) {
		id = 0
	}
	m.bus.PPU().SetDMGPalette(cgbCompatSets[id])
}

// CurrentCompatPalette returns the active DMG-compat palette ID.
func (m *Machine) CurrentCompatPalette() int { return m.compatPalette }

// CompatPaletteName returns the display name for a compat palette ID.
func (m *Machine) CompatPaletteName(id int) string {
	if id < 0 || id >= len(cgbCompatSetNames) {
		return "Unknown"
	}
	return cgbCompatSetNames[id]
}

// SetCompatPalette selects a DMG-compat palette by ID and applies it
// immediately if the machine is currently in compat mode.
func (m *Machine) SetCompatPalette(id int) {
	if id < 0 || id >= len(cgbCompatSets) {
		return
	}
	m.compatPalette = id
	if m.IsCGBCompat() {
		m.applyCompatPalette()
	}
}

// CycleCompatPalette advances the active compat palette by delta (wrapping)
// and applies it if currently in compat mode.
func (m *Machine) CycleCompatPalette(delta int) {
	n := len(cgbCompatSets)
	id := ((m.compatPalette+delta)%n + n) % n
	m.SetCompatPalette(id)
}

// APUBufferedStereo returns the number of buffered stereo sample frames.
func (m *Machine) APUBufferedStereo() int {
	if m.bus == nil {
		return 0
	}
	return m.bus.APU().StereoAvailable()
}

// APUPullStereo pulls up to max interleaved [L,R,...] int16 sample frames.
func (m *Machine) APUPullStereo(max int) []int16 {
	if m.bus == nil {
		return nil
	}
	return m.bus.APU().PullStereo(max)
}

// APUCapBufferedStereo discards buffered audio beyond max frames, used to
// bound audio latency after a pause or slow frame.
func (m *Machine) APUCapBufferedStereo(max int) {
	if m.bus == nil {
		return
	}
	m.bus.APU().CapBufferedStereo(max)
}

// APUClearAudioLatency drops all buffered audio outright.
func (m *Machine) APUClearAudioLatency() {
	if m.bus == nil {
		return
	}
	m.bus.APU().ClearBuffered()
}

// stateFile is the on-disk save-state envelope: CPU register state plus the
// full Bus/PPU/APU/cartridge state blob.
type stateFile struct {
	CPU []byte
	Bus []byte
}

// SaveStateToFile writes a full save state (CPU + Bus, which in turn covers
// PPU, APU, cartridge banking/RAM, WRAM, and timers) to path.
func (m *Machine) SaveStateToFile(path string) error {
	if m.cpu == nil || m.bus == nil {
		return errNoCartridge
	}
	s := stateFile{CPU: m.cpu.SaveState(), Bus: m.bus.SaveState()}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// LoadStateFromFile restores a save state written by SaveStateToFile.
func (m *Machine) LoadStateFromFile(path string) error {
	if m.cpu == nil || m.bus == nil {
		return errNoCartridge
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var s stateFile
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	m.cpu.LoadState(s.CPU)
	m.bus.LoadState(s.Bus)
	return nil
}
