//go:build tinygo

package pins

import "machine"

// Machine returns the TinyGo machine pin
func (p Pin) Machine() machine.Pin {
	return machine.Pin(p)
}
