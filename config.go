package bringup

import (
	"time"

	"github.com/merliot/bringup/caldata"
	"github.com/merliot/bringup/pins"
)

// BacklightConfig is the LEDC channel driving the display backlight
type BacklightConfig struct {
	Channel   uint8
	Frequency uint32 // Hz
	// Resolution is the duty resolution in bits
	Resolution uint8
	Pin        pins.Pin
	// Level is the duty written at bring-up
	Level uint32
}

// MaxDuty returns the full-on duty for the resolution
func (b BacklightConfig) MaxDuty() uint32 {
	return 1<<b.Resolution - 1
}

// Config configures the post-GPIO bring-up
type Config struct {
	// TouchEnabled enables touch panel bring-up and calibration
	TouchEnabled bool
	// Rotation is the display rotation used while calibrating
	Rotation uint8
	CalPath  string
	// CalTimeout bounds the interactive calibration; zero waits forever
	CalTimeout           time.Duration
	RecalibrateOnCorrupt bool
	Backlight            BacklightConfig
}

// DefaultConfig returns the ESP32-32E configuration
func DefaultConfig() Config {
	return Config{
		TouchEnabled: true,
		Rotation:     1,
		CalPath:      caldata.DefaultPath,
		CalTimeout:   2 * time.Minute,
		Backlight: BacklightConfig{
			Channel:    0,
			Frequency:  5000,
			Resolution: 8,
			Pin:        pins.TFT_BL,
			Level:      255,
		},
	}
}

// ConfigFromEnv returns DefaultConfig overridden from BRINGUP_* environment
// variables.  Used by host programs only; the firmware has no environment.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.TouchEnabled = getEnvBool("BRINGUP_TOUCH", cfg.TouchEnabled)
	cfg.CalPath = GetEnv("BRINGUP_CAL_PATH", cfg.CalPath)
	cfg.CalTimeout = getEnvDuration("BRINGUP_CAL_TIMEOUT", cfg.CalTimeout)
	cfg.RecalibrateOnCorrupt = getEnvBool("BRINGUP_RECALIBRATE_CORRUPT", cfg.RecalibrateOnCorrupt)
	return cfg
}
