package ui

// Config holds window, input, and audio settings for the ebiten host.
type Config struct {
	Title       string // window title
	Scale       int    // integer upscaling factor
	AudioStereo bool   // if true, output true stereo; if false, fold to mono
	// Audio buffering
	AudioAdaptive   bool   // adaptive target on underrun
	AudioBufferMs   int    // initial desired buffer in ms (approx)
	AudioLowLatency bool   // hard-cap buffering for minimal latency
	ROMsDir         string // directory to browse for ROMs
	UseFetcherBG    bool   // passed to Machine.SetUseFetcherBG; does not change rendering
	ShaderPreset    string // post-processing preset: "off", "lcd", "crt", "ghost"
	// Visual overlay skin
	ShellOverlay bool   // draw an alpha-blended overlay image over the game view
	ShellImage   string // path to the overlay image (PNG)
	// Per-ROM preferences
	PerROMCompatPalette map[string]int // map of ROM path -> compat palette ID
}

// configDefault names a Config field (by setter) alongside the zero-value
// test and fallback applied when Defaults finds it unset.
type configDefault struct {
	isZero func(*Config) bool
	apply  func(*Config)
}

var configDefaults = []configDefault{
	{func(c *Config) bool { return c.Title == "" }, func(c *Config) { c.Title = "gbemu" }},
	{func(c *Config) bool { return c.Scale <= 0 }, func(c *Config) { c.Scale = 3 }},
	{func(c *Config) bool { return c.AudioBufferMs <= 0 }, func(c *Config) { c.AudioBufferMs = 60 }},
	{func(c *Config) bool { return c.ROMsDir == "" }, func(c *Config) { c.ROMsDir = "roms" }},
	{func(c *Config) bool { return c.ShaderPreset == "" }, func(c *Config) { c.ShaderPreset = "off" }},
	{func(c *Config) bool { return c.PerROMCompatPalette == nil }, func(c *Config) { c.PerROMCompatPalette = make(map[string]int) }},
	{func(c *Config) bool { return c.ShellImage == "" }, func(c *Config) { c.ShellImage = "assets/skins/gbc_overlay.png" }},
}

// Defaults fills every unset field with its fallback value in place.
func (c *Config) Defaults() {
	for _, d := range configDefaults {
		if d.isZero(c) {
			d.apply(c)
		}
	}
}
