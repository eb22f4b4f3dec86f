package ui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Kage post-processing presets selectable from the settings menu. Keys match
// Config.ShaderPreset; "off" (or anything unknown) means a plain blit.
var shaderPresets = map[string]string{
	"lcd": `//kage:unit pixels

package main

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	c := imageSrc0At(srcPos)
	if mod(floor(srcPos.y), 3.0) < 1.0 {
		c = vec4(c.r*0.82, c.g*0.82, c.b*0.82, c.a)
	}
	return c
}
`,
	"crt": `//kage:unit pixels

package main

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	c := imageSrc0At(srcPos)
	if mod(floor(srcPos.y), 2.0) < 1.0 {
		c = vec4(c.r*0.7, c.g*0.7, c.b*0.7, c.a)
	}
	return c
}
`,
	"ghost": `//kage:unit pixels

package main

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	c := imageSrc0At(srcPos)
	l := imageSrc0At(srcPos + vec2(-1.0, 0.0))
	r := imageSrc0At(srcPos + vec2(1.0, 0.0))
	return c*0.7 + (l+r)*0.15
}
`,
}

// ensureShader lazily compiles the shader for the configured preset. "off",
// unknown names, and compile failures all leave a.shader nil, which Draw
// treats as a plain blit.
func (a *App) ensureShader() {
	if a.shader != nil {
		return
	}
	src, ok := shaderPresets[strings.ToLower(a.cfg.ShaderPreset)]
	if !ok {
		return
	}
	sh, err := ebiten.NewShader([]byte(src))
	if err != nil {
		return
	}
	a.shader = sh
}

// applyWindowSize re-applies the configured integer scale to the OS window.
func (a *App) applyWindowSize() {
	ebiten.SetWindowSize(160*a.cfg.Scale, 144*a.cfg.Scale)
}

// loadShell loads the configured shell-overlay image and refreshes the list
// of sibling .png skins so the settings menu can cycle through them.
func (a *App) loadShell() {
	if a.cfg.ShellImage == "" {
		return
	}
	if a.shellImg == nil {
		img, _, err := ebitenutil.NewImageFromFile(a.cfg.ShellImage)
		if err != nil {
			a.toast("Skin load failed: " + err.Error())
			return
		}
		a.shellImg = img
	}
	dir := filepath.Dir(a.cfg.ShellImage)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	a.shellList = a.shellList[:0]
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".png") {
			continue
		}
		a.shellList = append(a.shellList, filepath.Join(dir, e.Name()))
	}
	sort.Strings(a.shellList)
	for i, p := range a.shellList {
		if p == a.cfg.ShellImage {
			a.shellIdx = i
		}
	}
}
