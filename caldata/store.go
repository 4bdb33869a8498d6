package caldata

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"tinygo.org/x/drivers"
)

// DefaultPath is the well-known calibration file
const DefaultPath = "/calData"

// FileSystem is the persistent storage holding the calibration file
type FileSystem interface {
	// Open opens name for reading
	Open(name string) (File, error)
	// Create opens name for writing, truncating any existing content
	Create(name string) (File, error)
}

// File is an open file handle
type File interface {
	io.ReadWriteCloser
}

// Source tells where a loaded record came from
type Source int

const (
	// SourceStored means the record was read from the calibration file
	SourceStored Source = iota
	// SourceCalibrated means the record was captured by the calibrator
	SourceCalibrated
	// SourceFallback means capture failed and Store.Fallback was used
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceStored:
		return "stored"
	case SourceCalibrated:
		return "calibrated"
	case SourceFallback:
		return "fallback"
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// Outcome reports what a load did.  None of its conditions are failures;
// the record returned alongside is always usable.
type Outcome struct {
	Source Source
	// Malformed lists the file lines that did not parse cleanly
	Malformed []int
	// CaptureErr is set when the calibrator did not produce a record
	CaptureErr error
	// PersistErr is set when a captured record could not be written
	PersistErr error
}

// Persisted returns true if a freshly captured record was written
func (o Outcome) Persisted() bool {
	return o.Source == SourceCalibrated && o.PersistErr == nil
}

// Corrupt returns true if the stored file had malformed lines
func (o Outcome) Corrupt() bool {
	return len(o.Malformed) > 0
}

// Store loads the calibration record, calibrating when there is no stored
// record.
type Store struct {
	FS         FileSystem
	Calibrator Calibrator
	// Surface is the display the calibrator draws on
	Surface drivers.Displayer
	// Path defaults to DefaultPath
	Path string
	// Timeout bounds an interactive capture.  Zero means ctx alone bounds it.
	Timeout time.Duration
	// RecalibrateOnCorrupt treats a file with malformed lines as absent.
	// When false, malformed lines read as 0.
	RecalibrateOnCorrupt bool
	// Fallback is returned when capture fails; defaults to Nominal
	Fallback *Record
	// Log receives diagnostics; defaults to os.Stdout
	Log io.Writer
}

// LoadOrCalibrate loads the record stored at DefaultPath in fsys, or
// captures one with cal and stores it.
func LoadOrCalibrate(ctx context.Context, fsys FileSystem, cal Calibrator) (Record, Outcome) {
	s := Store{FS: fsys, Calibrator: cal}
	return s.Load(ctx)
}

// Load returns the calibration record for this boot.  The stored record is
// used if the file opens; otherwise the calibrator is run and its record is
// written back, best-effort.
func (s *Store) Load(ctx context.Context) (Record, Outcome) {
	f, err := s.FS.Open(s.path())
	if err != nil {
		s.logf("[DEBUG] No calibration found, running calibration...")
		return s.calibrate(ctx, nil)
	}

	rec, malformed := Parse(f)
	f.Close()

	if len(malformed) > 0 && s.RecalibrateOnCorrupt {
		s.logf("[DEBUG] Calibration data corrupt (lines %v), running calibration...", malformed)
		return s.calibrate(ctx, malformed)
	}

	s.logf("[DEBUG] Loading calibration: %s", rec)
	return rec, Outcome{Source: SourceStored, Malformed: malformed}
}

func (s *Store) calibrate(ctx context.Context, malformed []int) (Record, Outcome) {
	out := Outcome{Malformed: malformed}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	rec, err := s.capture(ctx)
	if err != nil {
		out.Source = SourceFallback
		out.CaptureErr = err
		rec = s.fallback()
		s.logf("[DEBUG] Calibration failed: %s, using %s", err, rec)
		return rec, out
	}

	out.Source = SourceCalibrated
	out.PersistErr = Save(s.FS, s.path(), rec)
	if out.PersistErr != nil {
		s.logf("[DEBUG] Calibration not saved: %s", out.PersistErr)
	}
	return rec, out
}

func (s *Store) capture(ctx context.Context) (Record, error) {
	if s.Calibrator == nil {
		return Record{}, errors.New("no calibrator")
	}
	if err := ctx.Err(); err != nil {
		return Record{}, errors.Wrap(err, "calibration not started")
	}
	rec, err := s.Calibrator.Calibrate(ctx, s.Surface)
	if err != nil {
		return Record{}, errors.Wrap(err, "calibration capture")
	}
	// A calibrator that returns nil after ctx expired may have been cut
	// short; don't trust (or persist) what it returned.
	if err := ctx.Err(); err != nil {
		return Record{}, errors.Wrap(err, "calibration capture")
	}
	return rec, nil
}

// Save writes rec to path in fsys, closing the file on every path
func Save(fsys FileSystem, path string, rec Record) (err error) {
	f, err := fsys.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()
	if err := Write(f, rec); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

func (s *Store) path() string {
	if s.Path == "" {
		return DefaultPath
	}
	return s.Path
}

func (s *Store) fallback() Record {
	if s.Fallback == nil {
		return Nominal
	}
	return *s.Fallback
}

func (s *Store) logf(format string, a ...any) {
	w := s.Log
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, format+"\r\n", a...)
}
