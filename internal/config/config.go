package config

import "time"

// Config holds the runtime settings collected from command-line flags.
type Config struct {
	SitePath       string
	MediaDir       string
	FPS            int
	Workers        int
	ViewportWidth  int
	ViewportHeight int
	RotationPeriod time.Duration
	MaxTilt        float64
	ReducedMotion  bool
	ThumbWidth     int
	DPI            int
	Detector       string // caption contrast analyzer: contrast, luma
	LogPath        string
	ShowStats      bool
	BuildVersion   string

	RelayEndpoint string
	RelayService  string
	RelayTemplate string
	RelayKey      string
}

// CardParams are the resolved per-card settings handed to effects and the card runtime.
type CardParams struct {
	Index           int
	Width, Height   float64
	ImageLeft       bool
	RotationPeriod  time.Duration
	MaxTilt         float64
	ParallaxPercent float64
	Once            bool
	ReducedMotion   bool
}

// Params resolves the settings of card c at position i, falling back to cfg defaults.
func (cfg *Config) Params(c Card, i int, width, height float64) CardParams {
	p := CardParams{
		Index:           i,
		Width:           width,
		Height:          height,
		ImageLeft:       c.ImagePosition != "right",
		RotationPeriod:  cfg.RotationPeriod,
		MaxTilt:         cfg.MaxTilt,
		ParallaxPercent: DefaultCardParallax,
		Once:            c.Once,
		ReducedMotion:   cfg.ReducedMotion,
	}
	if c.RotationPeriod > 0 {
		p.RotationPeriod = time.Duration(c.RotationPeriod * float64(time.Second))
	}
	if c.Tilt != nil {
		p.MaxTilt = *c.Tilt
	}
	if c.Parallax != nil {
		p.ParallaxPercent = *c.Parallax
	}
	return p
}
