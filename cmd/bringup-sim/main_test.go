package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/merliot/bringup"
	"github.com/merliot/bringup/caldata"
	"github.com/merliot/bringup/sim"
)

func TestParseRecord(t *testing.T) {
	c := qt.New(t)
	rec, err := parseRecord("1, 2,3,4,65535")
	c.Assert(err, qt.IsNil)
	c.Assert(rec, qt.Equals, caldata.Record{1, 2, 3, 4, 65535})

	_, err = parseRecord("1,2,3")
	c.Assert(err, qt.ErrorMatches, "want 5 values, got 3")
	_, err = parseRecord("1,2,3,4,65536")
	c.Assert(err, qt.ErrorMatches, "value 4: .*")
}

func TestBootStoresCalibration(t *testing.T) {
	c := qt.New(t)
	dir = c.TempDir()
	cal := &sim.Calibrator{Record: caldata.Record{111, 222, 333, 444, 555}}

	c.Assert(boot(context.Background(), bringup.DefaultConfig(), cal, 0), qt.IsNil)

	b, err := os.ReadFile(filepath.Join(dir, "calData"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(b), qt.Equals, "111\n222\n333\n444\n555\n")

	c.Assert(boot(context.Background(), bringup.DefaultConfig(), cal, 0), qt.IsNil)
	c.Assert(cal.Calls(), qt.Equals, 1)
}
