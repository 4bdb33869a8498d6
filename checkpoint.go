package bringup

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Boot stages, in the order setup() reaches them
const (
	StageSetupGPIO     = "setup_gpio()"
	StageTFTInit       = "tft.init()"
	StageBootText      = "'Booting' text displayed"
	StageStorage       = "begin_storage()"
	StageBeginTFT      = "begin_tft()"
	StageInitClock     = "init_clock()"
	StageInitLED       = "init_led()"
	StagePostSetupGPIO = "_post_setup_gpio()"
)

// Stages lists the boot stages in order
var Stages = []string{
	StageSetupGPIO,
	StageTFTInit,
	StageBootText,
	StageStorage,
	StageBeginTFT,
	StageInitClock,
	StageInitLED,
	StagePostSetupGPIO,
}

// DefaultSettle is the pause after each checkpoint
const DefaultSettle = 100 * time.Millisecond

type flusher interface {
	Flush() error
}

// Checkpoints prints a console line as each boot stage completes
type Checkpoints struct {
	w      io.Writer
	settle time.Duration
	sleep  func(time.Duration)
	passed []string
}

// NewCheckpoints returns Checkpoints writing to w (os.Stdout if nil).  If w
// has a Flush() error method it is flushed after every line.
func NewCheckpoints(w io.Writer) *Checkpoints {
	if w == nil {
		w = os.Stdout
	}
	return &Checkpoints{w: w, settle: DefaultSettle, sleep: time.Sleep}
}

// Settle sets the pause after each checkpoint and the function used to wait
func (c *Checkpoints) Settle(d time.Duration, sleep func(time.Duration)) {
	c.settle = d
	if sleep != nil {
		c.sleep = sleep
	}
}

// Start prints the setup() banner; call right after the console is up
func (c *Checkpoints) Start() {
	fmt.Fprintf(c.w, "\r\n\r\n========================================\r\n")
	fmt.Fprintf(c.w, "[DEBUG] setup() STARTED\r\n")
	fmt.Fprintf(c.w, "========================================\r\n")
	c.wait(false)
}

// Passed prints the completion line for stage
func (c *Checkpoints) Passed(stage string) {
	fmt.Fprintf(c.w, "[DEBUG] %s COMPLETED\r\n", stage)
	c.passed = append(c.passed, stage)
	c.wait(true)
}

// Log returns the stages passed so far
func (c *Checkpoints) Log() []string {
	return append([]string(nil), c.passed...)
}

// Last returns the last stage passed, or "" if none
func (c *Checkpoints) Last() string {
	if len(c.passed) == 0 {
		return ""
	}
	return c.passed[len(c.passed)-1]
}

func (c *Checkpoints) wait(flush bool) {
	if f, ok := c.w.(flusher); ok && flush {
		f.Flush()
	}
	if c.settle > 0 {
		c.sleep(c.settle)
	}
}
