//go:build tinygo

package bringup

import (
	"machine"

	"github.com/pkg/errors"

	"github.com/merliot/bringup/pins"
)

// MachineGPIO configures pins with the machine package
type MachineGPIO struct{}

func (MachineGPIO) ConfigureOutput(pin pins.Pin) error {
	pin.Machine().Configure(machine.PinConfig{Mode: machine.PinOutput})
	return nil
}

// SwitchedPWM drives an attached pin fully on for any non-zero duty and off
// for zero.  It stands in for LEDC on targets where TinyGo has no PWM for
// the ESP32.
type SwitchedPWM struct {
	channels map[uint8]machine.Pin
}

func (s *SwitchedPWM) Setup(channel uint8, frequency uint32, resolution uint8) error {
	if s.channels == nil {
		s.channels = make(map[uint8]machine.Pin)
	}
	s.channels[channel] = machine.NoPin
	return nil
}

func (s *SwitchedPWM) Attach(pin pins.Pin, channel uint8) error {
	if _, ok := s.channels[channel]; !ok {
		return errors.Errorf("channel %d not set up", channel)
	}
	p := pin.Machine()
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	s.channels[channel] = p
	return nil
}

func (s *SwitchedPWM) Write(channel uint8, duty uint32) error {
	p, ok := s.channels[channel]
	if !ok || p == machine.NoPin {
		return errors.Errorf("channel %d not attached", channel)
	}
	p.Set(duty > 0)
	return nil
}
