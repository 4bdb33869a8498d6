// Package sim simulates the board's hardware on the host.  The pieces record
// what they were asked to do so tests and the simulator can inspect it.
package sim

import (
	"context"
	"fmt"
	"image/color"
	"sync"

	"github.com/merliot/bringup/caldata"
	"github.com/merliot/bringup/pins"
	"tinygo.org/x/drivers"
)

// Framebuffer is an in-memory display
type Framebuffer struct {
	width, height int16
	pixels        []color.RGBA
	rotation      uint8
	flushes       int
	scroll        int16
}

// NewFramebuffer returns a display of width x height pixels
func NewFramebuffer(width, height int16) *Framebuffer {
	return &Framebuffer{
		width:  width,
		height: height,
		pixels: make([]color.RGBA, int(width)*int(height)),
	}
}

// Size returns the size accounting for rotation
func (f *Framebuffer) Size() (x, y int16) {
	if f.rotation%2 == 1 {
		return f.height, f.width
	}
	return f.width, f.height
}

func (f *Framebuffer) SetPixel(x, y int16, c color.RGBA) {
	w, h := f.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	f.pixels[int(y)*int(w)+int(x)] = c
}

// Pixel returns the color at x, y
func (f *Framebuffer) Pixel(x, y int16) color.RGBA {
	w, h := f.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return color.RGBA{}
	}
	return f.pixels[int(y)*int(w)+int(x)]
}

func (f *Framebuffer) Display() error {
	f.flushes++
	return nil
}

func (f *Framebuffer) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	for j := y; j < y+height; j++ {
		for i := x; i < x+width; i++ {
			f.SetPixel(i, j, c)
		}
	}
	return nil
}

func (f *Framebuffer) SetScroll(line int16) {
	f.scroll = line
}

func (f *Framebuffer) SetRotation(rotation uint8) error {
	if rotation > 3 {
		return fmt.Errorf("invalid rotation %d", rotation)
	}
	f.rotation = rotation
	return nil
}

// Rotation returns the last rotation set
func (f *Framebuffer) Rotation() uint8 {
	return f.rotation
}

// Lit returns the number of pixels that are not black
func (f *Framebuffer) Lit() int {
	n := 0
	for _, p := range f.pixels {
		if p.R != 0 || p.G != 0 || p.B != 0 {
			n++
		}
	}
	return n
}

// Calibrator returns a scripted record.  With Block set it waits until the
// context is done, like a user who never touches the panel.
type Calibrator struct {
	mu      sync.Mutex
	Record  caldata.Record
	Err     error
	Block   bool
	calls   int
	surface drivers.Displayer
}

func (c *Calibrator) Calibrate(ctx context.Context, surface drivers.Displayer) (caldata.Record, error) {
	c.mu.Lock()
	c.calls++
	c.surface = surface
	block, rec, err := c.Block, c.Record, c.Err
	c.mu.Unlock()

	if block {
		<-ctx.Done()
		return caldata.Record{}, ctx.Err()
	}
	return rec, err
}

// Calls returns how many captures were run
func (c *Calibrator) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Surface returns the surface of the last capture
func (c *Calibrator) Surface() drivers.Displayer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface
}

// GPIO records pin modes
type GPIO struct {
	outputs map[pins.Pin]bool
	Fail    error
}

func (g *GPIO) ConfigureOutput(pin pins.Pin) error {
	if g.Fail != nil {
		return g.Fail
	}
	if g.outputs == nil {
		g.outputs = make(map[pins.Pin]bool)
	}
	g.outputs[pin] = true
	return nil
}

// IsOutput returns true if pin was configured as an output
func (g *GPIO) IsOutput(pin pins.Pin) bool {
	return g.outputs[pin]
}

// PWM records LEDC channel programming.  Calls holds one line per call, in
// order.
type PWM struct {
	Calls []string
	// Fail makes the named call ("setup", "attach" or "write") fail
	Fail map[string]error
	duty map[uint8]uint32
	pin  map[uint8]pins.Pin
}

func (p *PWM) fail(call string) error {
	if p.Fail == nil {
		return nil
	}
	return p.Fail[call]
}

func (p *PWM) Setup(channel uint8, frequency uint32, resolution uint8) error {
	p.Calls = append(p.Calls, fmt.Sprintf("setup %d %d %d", channel, frequency, resolution))
	return p.fail("setup")
}

func (p *PWM) Attach(pin pins.Pin, channel uint8) error {
	p.Calls = append(p.Calls, fmt.Sprintf("attach %d %d", pin, channel))
	if err := p.fail("attach"); err != nil {
		return err
	}
	if p.pin == nil {
		p.pin = make(map[uint8]pins.Pin)
	}
	p.pin[channel] = pin
	return nil
}

func (p *PWM) Write(channel uint8, duty uint32) error {
	p.Calls = append(p.Calls, fmt.Sprintf("write %d %d", channel, duty))
	if err := p.fail("write"); err != nil {
		return err
	}
	if p.duty == nil {
		p.duty = make(map[uint8]uint32)
	}
	p.duty[channel] = duty
	return nil
}

// Duty returns the last duty written to channel
func (p *PWM) Duty(channel uint8) uint32 {
	return p.duty[channel]
}

// Touch records the calibration handed to the touch driver
type Touch struct {
	Record caldata.Record
	Set    int
}

func (t *Touch) SetCalibration(rec caldata.Record) {
	t.Record = rec
	t.Set++
}
