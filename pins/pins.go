// Package pins is the pin map of the ESP32-32E board (ESP32-WROOM-32E with a
// 2.8" ILI9341 display and an XPT2046 resistive touch controller).
package pins

import "strconv"

// Pin is an ESP32 GPIO number
type Pin uint8

// UART pins
const (
	TX Pin = 1
	RX Pin = 3
)

// I2C pins (can be used for other purposes)
const (
	SDA Pin = 27
	SCL Pin = 4
)

// SPI pins for SD card and SPI peripheral
const (
	SS   Pin = 5 // SD card CS
	MOSI Pin = 23
	MISO Pin = 19
	SCK  Pin = 18
)

// ADC pins
const (
	A0  Pin = 36 // touch interrupt
	A3  Pin = 39 // touch MISO
	A4  Pin = 32 // touch MOSI
	A5  Pin = 33 // touch CS
	A6  Pin = 34 // battery ADC
	A7  Pin = 35 // NC (input only)
	A10 Pin = 4
	A11 Pin = 0  // BOOT button
	A12 Pin = 2  // TFT DC
	A13 Pin = 15 // TFT CS
	A14 Pin = 13 // TFT MOSI
	A15 Pin = 12 // TFT MISO
	A16 Pin = 14 // TFT SCK
	A17 Pin = 27 // SPI SS / I2C SDA
	A18 Pin = 25 // touch SCK
	A19 Pin = 26 // audio DAC
)

// Capacitive touch pads
const (
	T0 Pin = 4
	T1 Pin = 0
	T2 Pin = 2
	T3 Pin = 15
	T4 Pin = 13
	T5 Pin = 12
	T6 Pin = 14
	T7 Pin = 27
	T8 Pin = 33
	T9 Pin = 32
)

// DAC pins
const (
	DAC1 Pin = 25 // not used
	DAC2 Pin = 26 // audio output
)

// Display
const (
	TFT_DC       = A12
	TFT_CS       = A13
	TFT_MOSI     = A14
	TFT_MISO     = A15
	TFT_SCK      = A16
	TFT_BL   Pin = 21
)

// XPT2046 touch controller, on its own SPI bus
const (
	TOUCH_IRQ  = A0
	TOUCH_MISO = A3
	TOUCH_MOSI = A4
	TOUCH_CS   = A5
	TOUCH_SCK  = A18
)

// Misc
const (
	BATTERY = A6
	BOOT    = A11
	AUDIO   = DAC2
)

// Deep sleep wakes on the touch interrupt (XPT2046 IRQ), active low
const (
	DEEPSLEEP_WAKEUP_PIN = TOUCH_IRQ
	DEEPSLEEP_PIN_ACT    = false
)

// Function names for pins with a fixed role on the board.  A GPIO shared by
// several roles carries the name of its main one.
var names = map[Pin]string{
	TX:         "TX",
	RX:         "RX",
	SDA:        "SDA",
	SCL:        "SCL",
	SS:         "SS",
	MOSI:       "MOSI",
	MISO:       "MISO",
	SCK:        "SCK",
	TOUCH_IRQ:  "TOUCH_IRQ",
	TOUCH_MISO: "TOUCH_MISO",
	TOUCH_MOSI: "TOUCH_MOSI",
	TOUCH_CS:   "TOUCH_CS",
	TOUCH_SCK:  "TOUCH_SCK",
	BATTERY:    "BATTERY",
	A7:         "A7",
	BOOT:       "BOOT",
	TFT_DC:     "TFT_DC",
	TFT_CS:     "TFT_CS",
	TFT_MOSI:   "TFT_MOSI",
	TFT_MISO:   "TFT_MISO",
	TFT_SCK:    "TFT_SCK",
	TFT_BL:     "TFT_BL",
	AUDIO:      "AUDIO",
}

func (p Pin) String() string {
	if name, ok := names[p]; ok {
		return name
	}
	return "GPIO" + strconv.Itoa(int(p))
}

// Lookup returns the pin with the function name, or a "GPIOn" name
func Lookup(name string) (Pin, bool) {
	for pin, n := range names {
		if n == name {
			return pin, true
		}
	}
	if len(name) > 4 && name[:4] == "GPIO" {
		n, err := strconv.Atoi(name[4:])
		if err == nil && n >= 0 && n < 40 {
			return Pin(n), true
		}
	}
	return 0, false
}
