// Package caldata persists the touch panel calibration record.  On boot the
// record is loaded from the file system; if there is no stored record the
// panel is calibrated interactively and the new record is stored for the next
// boot.
package caldata

import (
	"context"
	"strconv"
	"strings"

	"tinygo.org/x/drivers"
)

// Size is the number of values in a calibration record
const Size = 5

// Record holds the touch-to-display calibration values.  The values are
// opaque here; only the touch driver interprets them.
type Record [Size]uint16

// Nominal is the full 12-bit span of a resistive touch controller with no
// rotation or inversion.  Used when calibration could not be captured.
var Nominal = Record{0, 4095, 0, 4095, 0}

func (r Record) String() string {
	var parts [Size]string
	for i, v := range r {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts[:], ", ")
}

// Calibrator captures a fresh calibration record by interacting with the
// user on surface.  Calibrate blocks until the capture is done or ctx is
// done.
type Calibrator interface {
	Calibrate(ctx context.Context, surface drivers.Displayer) (Record, error)
}

// CalibratorFunc adapts a function to a Calibrator
type CalibratorFunc func(ctx context.Context, surface drivers.Displayer) (Record, error)

func (f CalibratorFunc) Calibrate(ctx context.Context, surface drivers.Displayer) (Record, error) {
	return f(ctx, surface)
}
