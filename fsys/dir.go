//go:build !tinygo

// Package fsys has file systems for the calibration store: a host directory
// standing in for the board's flash file system, and an in-memory file system
// for tests and simulation.
package fsys

import (
	"os"
	"path/filepath"

	"github.com/merliot/bringup/caldata"
)

// Dir maps absolute firmware paths like "/calData" under a host directory
type Dir string

func (d Dir) name(name string) string {
	return filepath.Join(string(d), filepath.FromSlash(filepath.Clean("/"+name)))
}

func (d Dir) Open(name string) (caldata.File, error) {
	return os.Open(d.name(name))
}

func (d Dir) Create(name string) (caldata.File, error) {
	if err := os.MkdirAll(string(d), 0700); err != nil {
		return nil, err
	}
	return os.OpenFile(d.name(name), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
}

// Remove deletes name, forcing calibration on the next load
func (d Dir) Remove(name string) error {
	err := os.Remove(d.name(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
