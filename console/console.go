// Package console is the board's diagnostic console: the serial port, and a
// terminal on the display once one is attached.
package console

import (
	"image/color"
	"io"
	"sync"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

var (
	font  = &proggy.TinySZ8pt7b
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
)

// Console fans writes out to the serial port and the display terminal
type Console struct {
	mu       sync.Mutex
	serial   io.Writer
	display  tinyterm.Displayer
	terminal *tinyterm.Terminal
}

// New returns a console writing to serial
func New(serial io.Writer) *Console {
	return &Console{serial: serial}
}

// Attach mirrors the console onto display
func (c *Console) Attach(display tinyterm.Displayer) {
	terminal := tinyterm.NewTerminal(display)
	terminal.Configure(&tinyterm.Config{
		Font:              font,
		FontHeight:        10,
		FontOffset:        6,
		UseSoftwareScroll: true,
	})

	c.mu.Lock()
	c.display = display
	c.terminal = terminal
	c.mu.Unlock()
}

// Attached returns true if a display terminal is attached
func (c *Console) Attached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminal != nil
}

func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.serial.Write(p)
	if c.terminal != nil {
		// The display is best-effort; the serial port is the console of
		// record.
		c.terminal.Write(p)
	}
	return n, err
}

// Flush pushes buffered output to the serial port and the display
func (c *Console) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if f, ok := c.serial.(interface{ Flush() error }); ok {
		err = f.Flush()
	}
	if c.display != nil {
		if derr := c.display.Display(); err == nil {
			err = derr
		}
	}
	return err
}

// Splash clears display and draws text centered on it
func Splash(display tinyterm.Displayer, text string) error {
	w, h := display.Size()
	if err := display.FillRectangle(0, 0, w, h, black); err != nil {
		return err
	}
	_, width := tinyfont.LineWidth(font, text)
	x := (w - int16(width)) / 2
	if x < 0 {
		x = 0
	}
	tinyfont.WriteLine(display, font, x, h/2, text, white)
	return display.Display()
}
