//go:build !tinygo

// bringup-sim runs the ESP32-32E boot sequence checkpoints and the post-GPIO
// bring-up on the host, with a directory standing in for the flash file
// system and simulated display, touch and backlight.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/merliot/bringup"
	"github.com/merliot/bringup/caldata"
	"github.com/merliot/bringup/console"
	"github.com/merliot/bringup/fsys"
	"github.com/merliot/bringup/sim"
)

var (
	dir = bringup.GetEnv("BRINGUP_DIR", ".")
)

func main() {
	if err := NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewCommand .
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bringup-sim",
		Short: "bringup-sim simulates ESP32-32E hardware bring-up on the host",
	}

	cmd.PersistentFlags().StringVarP(&dir, "dir", "d", dir, "directory standing in for the flash file system")

	cmd.AddCommand(
		NewBootCommand(),
		NewShowCommand(),
		NewClearCommand(),
	)

	return cmd
}

// NewBootCommand .
func NewBootCommand() *cobra.Command {
	cfg := bringup.ConfigFromEnv()
	var (
		cal    string
		block  bool
		settle time.Duration
	)

	cmd := &cobra.Command{
		Use:   "boot",
		Short: "Run setup() with debug checkpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := parseRecord(cal)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return boot(ctx, cfg, &sim.Calibrator{Record: rec, Block: block}, settle)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cal, "cal", "300,3500,250,3600,1", "record the simulated calibration captures")
	flags.BoolVar(&block, "block", false, "simulate a user who never touches the panel")
	flags.DurationVar(&cfg.CalTimeout, "timeout", cfg.CalTimeout, "calibration timeout (0 waits forever)")
	flags.BoolVar(&cfg.RecalibrateOnCorrupt, "recalibrate-corrupt", cfg.RecalibrateOnCorrupt, "recalibrate if the stored record is malformed")
	flags.BoolVar(&cfg.TouchEnabled, "touch", cfg.TouchEnabled, "bring up the touch panel")
	flags.DurationVar(&settle, "settle", bringup.DefaultSettle, "pause after each checkpoint")

	return cmd
}

// NewShowCommand .
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored calibration record",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := fsys.Dir(dir).Open(caldata.DefaultPath)
			if err != nil {
				return errors.Wrap(err, "no stored calibration")
			}
			defer f.Close()
			rec, malformed := caldata.Parse(f)
			cmd.Printf("%s\n", rec)
			if len(malformed) > 0 {
				cmd.Printf("malformed lines: %v\n", malformed)
			}
			return nil
		},
	}
}

// NewClearCommand .
func NewClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored calibration, forcing calibration on next boot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fsys.Dir(dir).Remove(caldata.DefaultPath)
		},
	}
}

func boot(ctx context.Context, cfg bringup.Config, cal caldata.Calibrator, settle time.Duration) error {
	serial := console.New(os.Stdout)
	cp := bringup.NewCheckpoints(serial)
	cp.Settle(settle, nil)

	cp.Start()

	gpio := &sim.GPIO{}
	cp.Passed(bringup.StageSetupGPIO)

	display := sim.NewFramebuffer(240, 320)
	cp.Passed(bringup.StageTFTInit)

	if err := console.Splash(display, "Booting"); err != nil {
		return err
	}
	cp.Passed(bringup.StageBootText)

	fs := fsys.Dir(dir)
	cp.Passed(bringup.StageStorage)

	serial.Attach(display)
	cp.Passed(bringup.StageBeginTFT)
	cp.Passed(bringup.StageInitClock)
	cp.Passed(bringup.StageInitLED)

	hw := &bringup.Hardware{
		Config:     cfg,
		GPIO:       gpio,
		PWM:        &sim.PWM{},
		Touch:      &sim.Touch{},
		Display:    display,
		FS:         fs,
		Calibrator: cal,
		Log:        serial,
	}
	r, err := hw.PostSetupGPIO(ctx)
	if err != nil {
		return err
	}
	cp.Passed(bringup.StagePostSetupGPIO)

	fmt.Printf("calibration %s (%s)\n", r.Calibration, r.Outcome.Source)
	if r.Outcome.Corrupt() {
		fmt.Printf("malformed lines: %v\n", r.Outcome.Malformed)
	}
	if r.Outcome.CaptureErr != nil {
		fmt.Printf("capture: %s\n", r.Outcome.CaptureErr)
	}
	if r.Outcome.PersistErr != nil {
		fmt.Printf("not saved: %s\n", r.Outcome.PersistErr)
	}
	fmt.Printf("backlight %d/%d\n", hw.Brightness(), cfg.Backlight.MaxDuty())
	return nil
}

func parseRecord(s string) (caldata.Record, error) {
	var rec caldata.Record
	parts := strings.Split(s, ",")
	if len(parts) != caldata.Size {
		return rec, errors.Errorf("want %d values, got %d", caldata.Size, len(parts))
	}
	for i, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 16)
		if err != nil {
			return rec, errors.Wrapf(err, "value %d", i)
		}
		rec[i] = uint16(v)
	}
	return rec, nil
}
