// Package config holds the tuning knobs for the distortion pipeline. All
// knobs are plain scalars with documented valid ranges; out-of-range values
// are clamped at the point of use, never rejected.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the full tuning surface. Knob values are read once at the top of
// each tick; edits between ticks are safe, edits never tear a tick.
type Config struct {
	// Ripple knobs (open palm)
	Reflection         float64 `toml:"reflection" json:"reflection"`                   // [0, 1]
	RefractionIndex    float64 `toml:"refraction_index" json:"refraction_index"`       // [1, 2]
	DistortionStrength float64 `toml:"distortion_strength" json:"distortion_strength"` // [0, 0.5]
	WaveHeight         float64 `toml:"wave_height" json:"wave_height"`                 // [0, 1]
	RippleStrength     float64 `toml:"ripple_strength" json:"ripple_strength"`         // [0, 1]
	AnimationSpeed     float64 `toml:"animation_speed" json:"animation_speed"`         // [0.1, 4]

	// Stretch knobs (pinch drag)
	GrabRadius        float64 `toml:"grab_radius" json:"grab_radius"`               // [0.05, 0.5]
	StretchStiffness  float64 `toml:"stretch_stiffness" json:"stretch_stiffness"`   // [1, 40]
	ReboundElasticity float64 `toml:"rebound_elasticity" json:"rebound_elasticity"` // [0, 1]
	BlendSoftness     float64 `toml:"blend_softness" json:"blend_softness"`         // [0.05, 1]

	// Smear knobs (fingertip strokes)
	SmearIntensity float64 `toml:"smear_intensity" json:"smear_intensity"` // [0, 1]
	DecayRate      float64 `toml:"decay_rate" json:"decay_rate"`           // (0, 0.1]
	BrushRadius    float64 `toml:"brush_radius" json:"brush_radius"`       // [0.05, 0.4]
	ColorBleed     float64 `toml:"color_bleed" json:"color_bleed"`         // [0, 1]

	// Pipeline settings
	FieldWidth  int    `toml:"field_width" json:"field_width"`   // accumulation grid, [16, 512]
	FieldHeight int    `toml:"field_height" json:"field_height"` // [16, 512]
	TargetFPS   int    `toml:"target_fps" json:"target_fps"`     // active tick rate, [15, 120]
	IdleFPS     int    `toml:"idle_fps" json:"idle_fps"`         // tick rate with no motion, [1, 30]
	CameraID    int    `toml:"camera_id" json:"camera_id"`
	HTTPAddr    string `toml:"http_addr" json:"http_addr"`
	SinkDir     string `toml:"sink_dir" json:"sink_dir"`
	DataDir     string `toml:"data_dir" json:"data_dir"` // snapshots + database
	Workers     int    `toml:"workers" json:"workers"`   // render workers, 0 = one per CPU
}

// Default returns the tuning values the pipeline ships with.
func Default() Config {
	return Config{
		Reflection:         0.35,
		RefractionIndex:    1.3,
		DistortionStrength: 0.12,
		WaveHeight:         0.3,
		RippleStrength:     0.25,
		AnimationSpeed:     1.0,

		GrabRadius:        0.25,
		StretchStiffness:  10.0,
		ReboundElasticity: 0.3,
		BlendSoftness:     0.5,

		SmearIntensity: 0.6,
		DecayRate:      0.04,
		BrushRadius:    0.15,
		ColorBleed:     0.4,

		FieldWidth:  128,
		FieldHeight: 72,
		TargetFPS:   60,
		IdleFPS:     15,
		CameraID:    0,
		HTTPAddr:    ":8080",
	}
}

// Load reads a TOML config file and clamps every knob into its documented
// range. Missing keys keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg.Clamp()
	return cfg, nil
}

// Save writes the config as TOML.
func Save(path string, cfg Config) error {
	var buffer bytes.Buffer
	if err := toml.NewEncoder(&buffer).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, buffer.Bytes(), 0644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Clamp forces every knob into its documented range in place.
func (c *Config) Clamp() {
	clampF(&c.Reflection, 0, 1)
	clampF(&c.RefractionIndex, 1, 2)
	clampF(&c.DistortionStrength, 0, 0.5)
	clampF(&c.WaveHeight, 0, 1)
	clampF(&c.RippleStrength, 0, 1)
	clampF(&c.AnimationSpeed, 0.1, 4)

	clampF(&c.GrabRadius, 0.05, 0.5)
	clampF(&c.StretchStiffness, 1, 40)
	clampF(&c.ReboundElasticity, 0, 1)
	clampF(&c.BlendSoftness, 0.05, 1)

	clampF(&c.SmearIntensity, 0, 1)
	clampF(&c.DecayRate, 0.001, 0.1)
	clampF(&c.BrushRadius, 0.05, 0.4)
	clampF(&c.ColorBleed, 0, 1)

	clampI(&c.FieldWidth, 16, 512)
	clampI(&c.FieldHeight, 16, 512)
	clampI(&c.TargetFPS, 15, 120)
	clampI(&c.IdleFPS, 1, 30)
	if c.CameraID < 0 {
		c.CameraID = 0
	}
	if c.Workers < 0 {
		c.Workers = 0
	}
}

func clampF(v *float64, lo, hi float64) {
	if *v < lo {
		*v = lo
	} else if *v > hi {
		*v = hi
	}
}

func clampI(v *int, lo, hi int) {
	if *v < lo {
		*v = lo
	} else if *v > hi {
		*v = hi
	}
}
