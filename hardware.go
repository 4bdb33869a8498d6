// Package bringup brings up the ESP32-32E board hardware after GPIO setup:
// the touch panel, with its calibration loaded from flash or captured
// interactively, and the display backlight PWM.
package bringup

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"tinygo.org/x/drivers"

	"github.com/merliot/bringup/caldata"
	"github.com/merliot/bringup/pins"
)

// ErrBacklightNotReady is returned when the backlight is used before
// PostSetupGPIO programmed it
var ErrBacklightNotReady = errors.New("backlight not initialized")

// GPIO configures pins
type GPIO interface {
	ConfigureOutput(pin pins.Pin) error
}

// PWM is an LEDC-style PWM controller: a channel is set up with a frequency
// and duty resolution, attached to a pin, and written with a duty.
type PWM interface {
	Setup(channel uint8, frequency uint32, resolution uint8) error
	Attach(pin pins.Pin, channel uint8) error
	Write(channel uint8, duty uint32) error
}

// Touch is the touch driver consuming the calibration
type Touch interface {
	SetCalibration(rec caldata.Record)
}

// Surface is the display the calibration is drawn on
type Surface interface {
	drivers.Displayer
	SetRotation(rotation uint8) error
}

// Hardware is the board's hardware context.  A Hardware must be passed by
// reference; it tracks which one-time init has run.
type Hardware struct {
	Config     Config
	GPIO       GPIO
	PWM        PWM
	Touch      Touch
	Display    Surface
	FS         caldata.FileSystem
	Calibrator caldata.Calibrator
	// Log receives the console diagnostics; defaults to os.Stdout
	Log io.Writer

	backlightReady bool
	brightness     uint32
}

// Report is the result of PostSetupGPIO
type Report struct {
	Touch       bool
	Calibration caldata.Record
	Outcome     caldata.Outcome
	// TouchErr is set if the touch CS pin could not be configured
	TouchErr  error
	Backlight bool
}

// BacklightReady returns true once the backlight PWM is programmed
func (h *Hardware) BacklightReady() bool {
	return h.backlightReady
}

// Brightness returns the last backlight duty written
func (h *Hardware) Brightness() uint32 {
	return h.brightness
}

// PostSetupGPIO brings up the touch panel and the backlight.  Touch
// calibration problems never fail bring-up; they are in the Report.  Only
// backlight programming errors are returned.
func (h *Hardware) PostSetupGPIO(ctx context.Context) (Report, error) {
	var r Report

	h.logf("[DEBUG] _post_setup_gpio() started")

	if h.Config.TouchEnabled {
		h.initTouch(ctx, &r)
	}

	if err := h.initBacklight(); err != nil {
		return r, err
	}
	r.Backlight = h.backlightReady

	h.logf("[DEBUG] _post_setup_gpio() completed")
	return r, nil
}

func (h *Hardware) initTouch(ctx context.Context, r *Report) {
	h.logf("[DEBUG] Initializing touch...")
	r.Touch = true

	if h.GPIO != nil {
		if err := h.GPIO.ConfigureOutput(pins.TOUCH_CS); err != nil {
			r.TouchErr = errors.Wrap(err, "touch CS")
			h.logf("[DEBUG] %s", r.TouchErr)
		}
	}

	store := caldata.Store{
		FS:                   h.FS,
		Calibrator:           h.rotated(h.Calibrator),
		Surface:              h.Display,
		Path:                 h.Config.CalPath,
		Timeout:              h.Config.CalTimeout,
		RecalibrateOnCorrupt: h.Config.RecalibrateOnCorrupt,
		Log:                  h.Log,
	}

	r.Calibration, r.Outcome = store.Load(ctx)
	if h.Touch != nil {
		h.Touch.SetCalibration(r.Calibration)
	}

	h.logf("[DEBUG] Touch initialized")
}

// rotated sets the display rotation before running cal, so the calibration
// targets are drawn in the orientation the touch driver will use.
func (h *Hardware) rotated(cal caldata.Calibrator) caldata.Calibrator {
	if cal == nil {
		return nil
	}
	return caldata.CalibratorFunc(func(ctx context.Context, surface drivers.Displayer) (caldata.Record, error) {
		if h.Display != nil {
			if err := h.Display.SetRotation(h.Config.Rotation); err != nil {
				return caldata.Record{}, errors.Wrap(err, "set rotation")
			}
		}
		return cal.Calibrate(ctx, surface)
	})
}

func (h *Hardware) initBacklight() error {
	if h.backlightReady {
		h.logf("[DEBUG] LEDC already initialized")
		return nil
	}

	bl := h.Config.Backlight

	h.logf("[DEBUG] Initializing LEDC for backlight PWM...")
	if err := h.PWM.Setup(bl.Channel, bl.Frequency, bl.Resolution); err != nil {
		return errors.Wrapf(err, "ledc setup channel %d", bl.Channel)
	}
	h.logf("[DEBUG] ledcSetup done")

	if err := h.PWM.Attach(bl.Pin, bl.Channel); err != nil {
		return errors.Wrapf(err, "ledc attach %s", bl.Pin)
	}
	h.logf("[DEBUG] ledcAttachPin done")

	level := clampDuty(bl.Level, bl.MaxDuty())
	if err := h.PWM.Write(bl.Channel, level); err != nil {
		return errors.Wrapf(err, "ledc write channel %d", bl.Channel)
	}
	h.logf("[DEBUG] ledcWrite done")

	h.brightness = level
	h.backlightReady = true
	h.logf("[DEBUG] LEDC initialized successfully")
	return nil
}

// SetBrightness writes the backlight duty, clamped to the resolution
func (h *Hardware) SetBrightness(level uint32) error {
	if !h.backlightReady {
		return ErrBacklightNotReady
	}
	bl := h.Config.Backlight
	level = clampDuty(level, bl.MaxDuty())
	if err := h.PWM.Write(bl.Channel, level); err != nil {
		return errors.Wrapf(err, "ledc write channel %d", bl.Channel)
	}
	h.brightness = level
	return nil
}

func clampDuty(level, max uint32) uint32 {
	if level > max {
		return max
	}
	return level
}

func (h *Hardware) logf(format string, a ...any) {
	w := h.Log
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, format+"\r\n", a...)
}
