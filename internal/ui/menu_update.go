package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

func (a *App) updateMainMenu() {
	const lastItem = 6
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
		a.menuIdx--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < lastItem {
		a.menuIdx++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		switch a.menuIdx {
		case 0:
			if err := a.saveSlot(a.currentSlot); err == nil {
				a.toast(fmt.Sprintf("Saved slot %d", a.currentSlot+1))
			} else {
				a.toast("Save failed: " + err.Error())
			}
		case 1:
			if _, err := os.Stat(a.statePath(a.currentSlot)); err != nil {
				a.toast("Slot is empty")
			} else if err := a.loadSlot(a.currentSlot); err == nil {
				a.toast(fmt.Sprintf("Loaded slot %d", a.currentSlot+1))
			} else {
				a.toast("Load failed: " + err.Error())
			}
		case 2:
			a.menuMode = "slot"
			a.menuIdx = a.currentSlot
		case 3:
			a.romList = a.findROMs()
			a.romSel = 0
			a.romOff = 0
			a.menuMode = "rom"
		case 4:
			a.menuMode = "settings"
			a.menuIdx = 0
			a.editingROMDir = false
		case 5:
			a.menuMode = "keys"
			a.keysOff = 0
		case lastItem:
			a.showMenu = false
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.showMenu = false
	}
}

func (a *App) updateSlotMenu() {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
		a.menuIdx--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < 3 {
		a.menuIdx++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		a.currentSlot = a.menuIdx
		a.toast(fmt.Sprintf("Slot set to %d", a.currentSlot+1))
		a.menuMode = "main"
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.menuMode = "main"
	}
}

func (a *App) updateRomMenu() {
	n := len(a.romList)
	if n == 0 {
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
			a.menuMode = "main"
		}
		return
	}
	baseY := 28
	maxRows := (a.curH - baseY) / menuLineHeight
	if maxRows < 1 {
		maxRows = 1
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.romSel > 0 {
		a.romSel--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.romSel < n-1 {
		a.romSel++
	}
	switch {
	case a.romSel < a.romOff:
		a.romOff = a.romSel
	case a.romSel >= a.romOff+maxRows:
		a.romOff = a.romSel - maxRows + 1
	}
	if a.romOff < 0 {
		a.romOff = 0
	}
	if a.romOff > n-1 {
		a.romOff = n - 1
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		a.loadSelectedROM()
		a.menuMode = "main"
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.menuMode = "main"
	}
}

// loadSelectedROM loads a.romList[a.romSel], restores its battery save and
// per-ROM compat palette if any, and updates the window title.
func (a *App) loadSelectedROM() {
	path := a.romList[a.romSel]
	if err := a.m.LoadROMFromFile(path); err != nil {
		a.toast("ROM load failed: " + err.Error())
		return
	}
	a.toast("Loaded ROM: " + filepath.Base(path))
	if strings.HasSuffix(strings.ToLower(path), ".gb") {
		sav := strings.TrimSuffix(path, ".gb") + ".sav"
		if data, err := os.ReadFile(sav); err == nil {
			_ = a.m.LoadBattery(data)
		}
	}
	if a.m.WantCGBColors() && !a.m.UseCGBBG() {
		a.m.ResetCGBPostBoot(true)
	}
	title := a.cfg.Title
	if t := a.m.ROMTitle(); t != "" {
		title = a.cfg.Title + " - [" + t + "]"
	}
	ebiten.SetWindowTitle(title)
	if a.m.IsCGBCompat() && a.cfg.PerROMCompatPalette != nil {
		if pid, ok := a.cfg.PerROMCompatPalette[path]; ok {
			a.m.SetCompatPalette(pid)
		}
	}
}

func (a *App) updateKeysMenu() {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.keysOff > 0 {
		a.keysOff--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		a.keysOff++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.menuMode = "main"
	}
}

// settingsRowCount mirrors drawSettingsMenu's item list: the shell-skin row
// only exists while a CGB-compatibility ROM is loaded (the compat-palette row
// is always drawn but inert without one).
func (a *App) settingsRowCount() int {
	if a.m != nil && a.m.IsCGBCompat() {
		return 11
	}
	return 10
}

func (a *App) updateSettingsMenu() {
	items := a.settingsRowCount()
	hasCompat := a.m != nil && a.m.IsCGBCompat()

	if !a.editingROMDir {
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
			a.menuIdx--
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < items-1 {
			a.menuIdx++
		}
		title := "Settings (Up/Down select; Left/Right change; Enter: edit/apply; Backspace/Esc: back)"
		baseY := 10 + menuLineHeight*len(a.wrapText(title, a.maxCharsForText(10))) + menuLineHeight
		maxRows := (a.curH - baseY) / menuLineHeight
		if maxRows < 1 {
			maxRows = 1
		}
		switch {
		case a.menuIdx < a.settingsOff:
			a.settingsOff = a.menuIdx
		case a.menuIdx >= a.settingsOff+maxRows:
			a.settingsOff = a.menuIdx - maxRows + 1
		}
	}

	left := inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft)
	right := inpututil.IsKeyJustPressed(ebiten.KeyArrowRight)
	enter := inpututil.IsKeyJustPressed(ebiten.KeyEnter)

	switch {
	case a.menuIdx == 6:
		a.updateROMsDirRow(enter)
	case a.editingROMDir:
		// all other rows are inert while editing the ROMs dir
	case a.menuIdx == 0 && (left || right): // Scale
		if left && a.cfg.Scale > 1 {
			a.cfg.Scale--
			a.applyWindowSize()
		}
		if right && a.cfg.Scale < 10 {
			a.cfg.Scale++
			a.applyWindowSize()
		}
	case a.menuIdx == 1 && (left || right): // Audio Output
		a.cfg.AudioStereo = !a.cfg.AudioStereo
		if a.audioPlayer != nil {
			a.audioPlayer.Close()
			a.audioPlayer = nil
		}
		for i := 0; i < 12; i++ {
			a.m.StepFrame()
		}
		a.audioSrc = &apuStream{m: a.m, mono: !a.cfg.AudioStereo, muted: &a.audioMuted, lowLatency: a.cfg.AudioLowLatency}
		if p, err := a.audioCtx.NewPlayer(a.audioSrc); err == nil {
			a.audioPlayer = p
			a.applyPlayerBufferSize()
			a.audioPlayer.Play()
		}
	case a.menuIdx == 2 && (left || right): // Audio Adaptive
		a.cfg.AudioAdaptive = !a.cfg.AudioAdaptive
	case a.menuIdx == 3 && (left || right || enter): // Low-Latency Audio
		a.cfg.AudioLowLatency = !a.cfg.AudioLowLatency
		a.saveSettings()
		if a.m != nil && a.cfg.AudioLowLatency {
			a.m.APUCapBufferedStereo(1440) // ~30ms
		}
		if a.audioSrc != nil {
			a.audioSrc.lowLatency = a.cfg.AudioLowLatency
		}
		a.applyPlayerBufferSize()
	case a.menuIdx == 4 && (left || right || enter): // BG Renderer
		a.cfg.UseFetcherBG = !a.cfg.UseFetcherBG
		if a.m != nil {
			a.m.SetUseFetcherBG(a.cfg.UseFetcherBG)
		}
		a.saveSettings()
	case a.menuIdx == 5 && (left || right || enter): // Shader preset cycle
		a.cycleShaderPreset(left)
	case a.menuIdx == 7 && (left || right || enter): // CGB Colors toggle
		a.toggleCGBColors()
	case a.menuIdx == 8 && hasCompat: // Compat Palette row
		if left {
			a.cycleCompatPalette(-1)
		}
		if right || enter {
			a.cycleCompatPalette(+1)
		}
	case a.menuIdx == 9 && (left || right || enter): // Shell Overlay toggle
		a.cfg.ShellOverlay = !a.cfg.ShellOverlay
		if a.cfg.ShellOverlay {
			a.loadShell()
		}
		a.applyWindowSize()
		a.saveSettings()
	case a.menuIdx == 10: // Shell Skin select
		if left {
			a.cycleShellSkin(-1)
		}
		if right || enter {
			a.cycleShellSkin(+1)
		}
	}

	if !a.editingROMDir && (enter || inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace)) {
		a.menuMode = "main"
	}
}

func (a *App) updateROMsDirRow(enter bool) {
	if !a.editingROMDir {
		if enter {
			a.editingROMDir = true
			a.romDirInput = a.cfg.ROMsDir
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
			a.menuMode = "main"
		}
		return
	}
	for _, r := range ebiten.InputChars() {
		if r != '\n' && r != '\r' {
			a.romDirInput += string(r)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && len(a.romDirInput) > 0 {
		a.romDirInput = a.romDirInput[:len(a.romDirInput)-1]
	}
	if enter {
		if val := strings.TrimSpace(a.romDirInput); val != "" {
			a.cfg.ROMsDir = val
			a.saveSettings()
			a.romList = a.findROMs()
			a.toast("ROMs dir set")
		}
		a.editingROMDir = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.editingROMDir = false
		a.romDirInput = a.cfg.ROMsDir
	}
}

func (a *App) cycleShaderPreset(backward bool) {
	presets := []string{"off", "lcd", "crt", "ghost"}
	idx := 0
	for i, p := range presets {
		if strings.ToLower(a.cfg.ShaderPreset) == p {
			idx = i
			break
		}
	}
	if backward {
		idx = (idx - 1 + len(presets)) % len(presets)
	} else {
		idx = (idx + 1) % len(presets)
	}
	a.cfg.ShaderPreset = presets[idx]
	a.shader = nil
	a.ensureShader()
	a.saveSettings()
}

func (a *App) toggleCGBColors() {
	if a.m == nil {
		return
	}
	if turnOn := !a.m.WantCGBColors(); turnOn {
		a.m.SetUseCGBBG(true)
		if a.m.IsCGBCompat() {
			a.m.ResetCGBPostBoot(true)
		}
	} else {
		a.m.SetUseCGBBG(false)
		a.m.ResetPostBoot()
	}
}

func (a *App) cycleCompatPalette(dir int) {
	a.m.CycleCompatPalette(dir)
	pid := a.m.CurrentCompatPalette()
	a.toast(fmt.Sprintf("Compat palette: %d - %s", pid, a.m.CompatPaletteName(pid)))
	if a.m.ROMPath() != "" {
		a.cfg.PerROMCompatPalette[a.m.ROMPath()] = pid
		a.saveSettings()
	}
}

func (a *App) cycleShellSkin(dir int) {
	if len(a.shellList) == 0 {
		return
	}
	a.shellIdx = (a.shellIdx + dir + len(a.shellList)) % len(a.shellList)
	a.cfg.ShellImage = a.shellList[a.shellIdx]
	a.shellImg = nil // force reload
	a.loadShell()
	a.applyWindowSize()
	a.saveSettings()
	a.toast("Skin: " + filepath.Base(a.cfg.ShellImage))
}
