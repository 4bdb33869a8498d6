package caldata_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/merliot/bringup/caldata"
	"github.com/merliot/bringup/fsys"
	"github.com/merliot/bringup/sim"
)

func TestLoadStored(t *testing.T) {
	c := qt.New(t)
	mem := fsys.NewMem()
	mem.Put("/calData", "100\n200\n300\n400\n500\n")
	cal := &sim.Calibrator{Record: caldata.Record{1, 2, 3, 4, 5}}

	rec, out := caldata.LoadOrCalibrate(context.Background(), mem, cal)

	c.Assert(rec, qt.Equals, caldata.Record{100, 200, 300, 400, 500})
	c.Assert(out.Source, qt.Equals, caldata.SourceStored)
	c.Assert(out.Malformed, qt.HasLen, 0)
	c.Assert(cal.Calls(), qt.Equals, 0)
	c.Assert(mem.Writes("/calData"), qt.Equals, 0)
	c.Assert(mem.OpenHandles(), qt.Equals, 0)
}

func TestCalibrateWhenAbsent(t *testing.T) {
	c := qt.New(t)
	mem := fsys.NewMem()
	cal := &sim.Calibrator{Record: caldata.Record{111, 222, 333, 444, 555}}

	rec, out := caldata.LoadOrCalibrate(context.Background(), mem, cal)

	c.Assert(rec, qt.Equals, caldata.Record{111, 222, 333, 444, 555})
	c.Assert(out.Source, qt.Equals, caldata.SourceCalibrated)
	c.Assert(out.Persisted(), qt.IsTrue)
	c.Assert(cal.Calls(), qt.Equals, 1)

	content, ok := mem.Get("/calData")
	c.Assert(ok, qt.IsTrue)
	c.Assert(content, qt.Equals, "111\n222\n333\n444\n555\n")
	c.Assert(mem.OpenHandles(), qt.Equals, 0)
}

func TestSecondBootUsesStored(t *testing.T) {
	c := qt.New(t)
	mem := fsys.NewMem()
	cal := &sim.Calibrator{Record: caldata.Record{10, 3000, 20, 3100, 3}}

	first, _ := caldata.LoadOrCalibrate(context.Background(), mem, cal)
	second, out := caldata.LoadOrCalibrate(context.Background(), mem, cal)

	c.Assert(second, qt.Equals, first)
	c.Assert(out.Source, qt.Equals, caldata.SourceStored)
	c.Assert(cal.Calls(), qt.Equals, 1)
}

func TestRoundTrip(t *testing.T) {
	c := qt.New(t)
	records := []caldata.Record{
		{},
		{65535, 65535, 65535, 65535, 65535},
		{0, 1, 65534, 65535, 7},
		{321, 3512, 254, 3588, 1},
	}
	for _, want := range records {
		mem := fsys.NewMem()
		c.Assert(caldata.Save(mem, caldata.DefaultPath, want), qt.IsNil)
		cal := &sim.Calibrator{}
		got, out := caldata.LoadOrCalibrate(context.Background(), mem, cal)
		c.Assert(got, qt.Equals, want)
		c.Assert(out.Corrupt(), qt.IsFalse)
		c.Assert(cal.Calls(), qt.Equals, 0)
	}
}

func TestShortFile(t *testing.T) {
	c := qt.New(t)
	mem := fsys.NewMem()
	mem.Put("/calData", "100\n200\n")
	cal := &sim.Calibrator{}

	rec, out := caldata.LoadOrCalibrate(context.Background(), mem, cal)

	c.Assert(rec, qt.Equals, caldata.Record{100, 200, 0, 0, 0})
	c.Assert(out.Source, qt.Equals, caldata.SourceStored)
	c.Assert(out.Malformed, qt.DeepEquals, []int{2, 3, 4})
	c.Assert(cal.Calls(), qt.Equals, 0)
}

func TestRecalibrateOnCorrupt(t *testing.T) {
	c := qt.New(t)
	mem := fsys.NewMem()
	mem.Put("/calData", "100\nxyz\n300\n400\n500\n")
	cal := &sim.Calibrator{Record: caldata.Record{1, 2, 3, 4, 5}}
	s := caldata.Store{FS: mem, Calibrator: cal, RecalibrateOnCorrupt: true, Log: &bytes.Buffer{}}

	rec, out := s.Load(context.Background())

	c.Assert(rec, qt.Equals, caldata.Record{1, 2, 3, 4, 5})
	c.Assert(out.Source, qt.Equals, caldata.SourceCalibrated)
	c.Assert(out.Malformed, qt.DeepEquals, []int{1})
	content, _ := mem.Get("/calData")
	c.Assert(content, qt.Equals, "1\n2\n3\n4\n5\n")
}

func TestUnreadableFileCalibrates(t *testing.T) {
	c := qt.New(t)
	mem := fsys.NewMem()
	mem.Put("/calData", "100\n200\n300\n400\n500\n")
	mem.FailOpen = true
	cal := &sim.Calibrator{Record: caldata.Record{9, 8, 7, 6, 5}}

	rec, out := caldata.LoadOrCalibrate(context.Background(), mem, cal)

	c.Assert(rec, qt.Equals, caldata.Record{9, 8, 7, 6, 5})
	c.Assert(out.Source, qt.Equals, caldata.SourceCalibrated)
	c.Assert(cal.Calls(), qt.Equals, 1)
}

func TestPersistFailures(t *testing.T) {
	c := qt.New(t)
	inject := map[string]func(*fsys.Mem){
		"create": func(m *fsys.Mem) { m.FailCreate = true },
		"write":  func(m *fsys.Mem) { m.FailWrite = true },
		"close":  func(m *fsys.Mem) { m.FailClose = true },
	}
	for name, fail := range inject {
		c.Run(name, func(c *qt.C) {
			mem := fsys.NewMem()
			fail(mem)
			cal := &sim.Calibrator{Record: caldata.Record{111, 222, 333, 444, 555}}
			s := caldata.Store{FS: mem, Calibrator: cal, Log: &bytes.Buffer{}}

			rec, out := s.Load(context.Background())

			c.Assert(rec, qt.Equals, caldata.Record{111, 222, 333, 444, 555})
			c.Assert(out.Source, qt.Equals, caldata.SourceCalibrated)
			c.Assert(out.Persisted(), qt.IsFalse)
			c.Assert(errors.Is(out.PersistErr, fsys.ErrInjected), qt.IsTrue)
			c.Assert(mem.OpenHandles(), qt.Equals, 0)
		})
	}
}

func TestCaptureTimeout(t *testing.T) {
	c := qt.New(t)
	mem := fsys.NewMem()
	cal := &sim.Calibrator{Block: true}
	s := caldata.Store{FS: mem, Calibrator: cal, Timeout: 10 * time.Millisecond, Log: &bytes.Buffer{}}

	rec, out := s.Load(context.Background())

	c.Assert(rec, qt.Equals, caldata.Nominal)
	c.Assert(out.Source, qt.Equals, caldata.SourceFallback)
	c.Assert(errors.Is(out.CaptureErr, context.DeadlineExceeded), qt.IsTrue)
	c.Assert(mem.Writes("/calData"), qt.Equals, 0)
}

func TestCaptureCancelled(t *testing.T) {
	c := qt.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fallback := caldata.Record{5, 5, 5, 5, 5}
	cal := &sim.Calibrator{Record: caldata.Record{1, 2, 3, 4, 5}}
	s := caldata.Store{FS: fsys.NewMem(), Calibrator: cal, Fallback: &fallback, Log: &bytes.Buffer{}}

	rec, out := s.Load(ctx)

	c.Assert(rec, qt.Equals, fallback)
	c.Assert(out.Source, qt.Equals, caldata.SourceFallback)
	c.Assert(errors.Is(out.CaptureErr, context.Canceled), qt.IsTrue)
	c.Assert(cal.Calls(), qt.Equals, 0)
}

func TestCalibratorError(t *testing.T) {
	c := qt.New(t)
	mem := fsys.NewMem()
	boom := errors.New("touch controller not responding")
	cal := &sim.Calibrator{Err: boom}
	s := caldata.Store{FS: mem, Calibrator: cal, Log: &bytes.Buffer{}}

	rec, out := s.Load(context.Background())

	c.Assert(rec, qt.Equals, caldata.Nominal)
	c.Assert(errors.Is(out.CaptureErr, boom), qt.IsTrue)
	c.Assert(mem.Writes("/calData"), qt.Equals, 0)
}

func TestCustomPathAndSurface(t *testing.T) {
	c := qt.New(t)
	mem := fsys.NewMem()
	fb := sim.NewFramebuffer(240, 320)
	cal := &sim.Calibrator{Record: caldata.Record{1, 2, 3, 4, 5}}
	s := caldata.Store{FS: mem, Calibrator: cal, Surface: fb, Path: "/touch.cal", Log: &bytes.Buffer{}}

	s.Load(context.Background())

	c.Assert(cal.Surface(), qt.Equals, fb)
	_, ok := mem.Get("/touch.cal")
	c.Assert(ok, qt.IsTrue)
	_, ok = mem.Get("/calData")
	c.Assert(ok, qt.IsFalse)
}

func TestLogLines(t *testing.T) {
	c := qt.New(t)
	mem := fsys.NewMem()
	mem.Put("/calData", "100\n200\n300\n400\n500\n")
	var log bytes.Buffer
	s := caldata.Store{FS: mem, Log: &log}

	s.Load(context.Background())

	c.Assert(log.String(), qt.Equals, "[DEBUG] Loading calibration: 100, 200, 300, 400, 500\r\n")
}
