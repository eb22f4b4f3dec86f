package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const menuLineHeight = 14

// onOff renders a bool as the two-state labels the settings menu uses everywhere.
func onOff(v bool, on, off string) string {
	if v {
		return on
	}
	return off
}

// drawScrollableLines prints rows[off:off+maxRows] starting at (x, y), marking
// selIdx (absolute index, or -1 for none) with "> " and drawing ^/v scroll
// hints when content runs off either edge. Returns the offset clamped to a
// valid range and the last visible (exclusive) index, since several menus
// need those to position hints or compute paging.
func (a *App) drawScrollableLines(screen *ebiten.Image, rows []string, off, selIdx, x, y int, maxChars int) (clampedOff, end int) {
	if off < 0 {
		off = 0
	}
	if off > len(rows)-1 && len(rows) > 0 {
		off = len(rows) - 1
	}
	maxRows := (a.curH - y) / menuLineHeight
	if maxRows < 1 {
		maxRows = 1
	}
	end = off + maxRows
	if end > len(rows) {
		end = len(rows)
	}
	for i := off; i < end; i++ {
		prefix := "  "
		if i == selIdx {
			prefix = "> "
		}
		line := a.truncateText(prefix+rows[i], maxChars)
		ebitenutil.DebugPrintAt(screen, line, x, y+(i-off)*menuLineHeight)
	}
	if off > 0 {
		ebitenutil.DebugPrintAt(screen, "^", 2, y)
	}
	if end < len(rows) {
		ebitenutil.DebugPrintAt(screen, "v", 2, y+(maxRows-1)*menuLineHeight)
	}
	return off, end
}

func (a *App) drawMainMenu(screen *ebiten.Image) {
	lines := []string{
		fmt.Sprintf("Save state (slot %d)", a.currentSlot+1),
		fmt.Sprintf("Load state (slot %d)", a.currentSlot+1),
		"Select Slot",
		"Switch ROM",
		"Settings",
		"Keybindings",
		"Close",
	}
	ebitenutil.DebugPrintAt(screen, "Menu:", 10, 10)
	for i, s := range lines {
		prefix := "  "
		if i == a.menuIdx {
			prefix = "> "
		}
		ebitenutil.DebugPrintAt(screen, prefix+s, 10, 10+(i+1)*menuLineHeight)
	}
	hint := a.truncateText("F5: Save  F9: Load  1-4: Slot  F11: Fullscreen  Backspace: Back", a.maxCharsForText(10))
	ebitenutil.DebugPrintAt(screen, hint, 10, 10+(len(lines)+1)*menuLineHeight)
}

func (a *App) drawSlotMenu(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, "Select Slot:", 10, 10)
	lines := make([]string, 4)
	for i := range lines {
		state := "[empty]"
		if _, err := os.Stat(a.statePath(i)); err == nil {
			state = ""
		}
		lines[i] = strings.TrimRight(fmt.Sprintf("%d %s", i+1, state), " ")
	}
	a.drawScrollableLines(screen, lines, 0, a.menuIdx, 10, 10+menuLineHeight, a.maxCharsForText(10))
}

func (a *App) drawRomMenu(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, "Select ROM (Enter to load, Backspace/Esc to return)", 10, 10)
	dirLine := a.truncateText("Dir: "+a.cfg.ROMsDir, a.maxCharsForText(10))
	ebitenutil.DebugPrintAt(screen, dirLine, 10, 24)
	if len(a.romList) == 0 {
		ebitenutil.DebugPrintAt(screen, "No ROMs found", 10, 40)
		return
	}
	names := make([]string, len(a.romList))
	maxChars := a.maxCharsForText(10) - 2 // account for "> " prefix
	if maxChars < 1 {
		maxChars = 1
	}
	for i, p := range a.romList {
		names[i] = a.truncateText(filepath.Base(p), maxChars)
	}
	off, _ := a.drawScrollableLines(screen, names, a.romOff, a.romSel, 10, 40, a.maxCharsForText(10))
	a.romOff = off
}

func (a *App) drawKeysMenu(screen *ebiten.Image) {
	title := "Keybindings (Up/Down to scroll, Backspace/Esc to return)"
	cursorY := 10
	for _, w := range a.wrapText(title, a.maxCharsForText(10)) {
		ebitenutil.DebugPrintAt(screen, w, 10, cursorY)
		cursorY += menuLineHeight
	}
	rows := []string{
		"Z: A",
		"X: B",
		"Enter: Start",
		"RightShift: Select",
		"Arrows: D-Pad",
		"P: Pause",
		"N: Step (when paused)",
		"Tab: Fast-forward",
		"R: Reset",
		"B: Reset with Boot ROM",
		"Esc: Open/Close Menu",
	}
	off, _ := a.drawScrollableLines(screen, rows, a.keysOff, -1, 10, cursorY+4, a.maxCharsForText(10))
	a.keysOff = off
}

func (a *App) drawSettingsMenu(screen *ebiten.Image) {
	title := "Settings (Up/Down select; Left/Right change; Enter: edit/apply; Backspace/Esc: back)"
	cursorY := 10
	for _, w := range a.wrapText(title, a.maxCharsForText(10)) {
		ebitenutil.DebugPrintAt(screen, w, 10, cursorY)
		cursorY += menuLineHeight
	}

	romDir := a.cfg.ROMsDir
	if a.editingROMDir {
		romDir = a.romDirInput + "_"
	}
	compatRow := "Compat Palette: -"
	hasCompat := a.m != nil && a.m.IsCGBCompat()
	if hasCompat {
		pid := a.m.CurrentCompatPalette()
		compatRow = fmt.Sprintf("Compat Palette: %d - %s  ([/]): cycle", pid, a.m.CompatPaletteName(pid))
	}
	// Row order must stay in lockstep with updateSettingsMenu's index switch.
	items := []string{
		fmt.Sprintf("Scale: %dx", a.cfg.Scale),
		fmt.Sprintf("Audio: %s", onOff(a.cfg.AudioStereo, "Stereo", "Mono")),
		fmt.Sprintf("Audio Adaptive: %s", onOff(a.cfg.AudioAdaptive, "On", "Off")),
		fmt.Sprintf("Low-Latency Audio: %s", onOff(a.cfg.AudioLowLatency, "On", "Off")),
		fmt.Sprintf("BG Renderer: %s", onOff(a.cfg.UseFetcherBG, "Fetcher", "Classic")),
		fmt.Sprintf("Shader: %s", a.cfg.ShaderPreset),
		fmt.Sprintf("ROMs Dir: %s", a.truncateText(romDir, a.maxCharsForText(10)-11)),
		fmt.Sprintf("CGB Colors: %s", onOff(a.m != nil && a.m.WantCGBColors(), "On", "Off")),
		compatRow,
		fmt.Sprintf("Shell Overlay: %s", onOff(a.cfg.ShellOverlay, "On", "Off")),
	}
	if hasCompat {
		items = append(items, fmt.Sprintf("Shell Skin: %s", filepath.Base(a.cfg.ShellImage)))
	}

	off, _ := a.drawScrollableLines(screen, items, a.settingsOff, a.menuIdx, 10, cursorY, a.maxCharsForText(10))
	a.settingsOff = off
}
