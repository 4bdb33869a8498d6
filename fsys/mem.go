package fsys

import (
	"bytes"
	"errors"
	"io/fs"
	"sync"

	"github.com/merliot/bringup/caldata"
)

// ErrInjected is returned by Mem operations set to fail
var ErrInjected = errors.New("injected failure")

// Mem is an in-memory file system.  Writes become visible when the file is
// closed.  The Fail* fields make the matching operation fail with
// ErrInjected.
type Mem struct {
	mu     sync.Mutex
	files  map[string][]byte
	open   int
	opens  map[string]int
	writes map[string]int

	FailOpen   bool
	FailCreate bool
	FailWrite  bool
	FailClose  bool
}

// NewMem returns an empty Mem
func NewMem() *Mem {
	return &Mem{}
}

func (m *Mem) init() {
	if m.files == nil {
		m.files = make(map[string][]byte)
		m.opens = make(map[string]int)
		m.writes = make(map[string]int)
	}
}

// Put stores content at name directly
func (m *Mem) Put(name string, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	m.files[name] = []byte(content)
}

// Get returns the content at name
func (m *Mem) Get(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	b, ok := m.files[name]
	return string(b), ok
}

// OpenHandles returns the number of files not yet closed
func (m *Mem) OpenHandles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Opens returns how many times name was opened for reading
func (m *Mem) Opens(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	return m.opens[name]
}

// Writes returns how many times name was created for writing
func (m *Mem) Writes(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	return m.writes[name]
}

func (m *Mem) Open(name string) (caldata.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	m.opens[name]++
	if m.FailOpen {
		return nil, &fs.PathError{Op: "open", Path: name, Err: ErrInjected}
	}
	b, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	m.open++
	return &memFile{mem: m, name: name, r: bytes.NewReader(b)}, nil
}

func (m *Mem) Create(name string) (caldata.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	m.writes[name]++
	if m.FailCreate {
		return nil, &fs.PathError{Op: "create", Path: name, Err: ErrInjected}
	}
	m.open++
	return &memFile{mem: m, name: name, w: &bytes.Buffer{}}, nil
}

type memFile struct {
	mem    *Mem
	name   string
	r      *bytes.Reader
	w      *bytes.Buffer
	closed bool
}

func (f *memFile) Read(p []byte) (int, error) {
	if f.closed || f.r == nil {
		return 0, fs.ErrClosed
	}
	return f.r.Read(p)
}

func (f *memFile) Write(p []byte) (int, error) {
	if f.closed || f.w == nil {
		return 0, fs.ErrClosed
	}
	f.mem.mu.Lock()
	fail := f.mem.FailWrite
	f.mem.mu.Unlock()
	if fail {
		return 0, &fs.PathError{Op: "write", Path: f.name, Err: ErrInjected}
	}
	return f.w.Write(p)
}

func (f *memFile) Close() error {
	if f.closed {
		return fs.ErrClosed
	}
	f.closed = true

	f.mem.mu.Lock()
	defer f.mem.mu.Unlock()
	f.mem.open--
	if f.mem.FailClose {
		return &fs.PathError{Op: "close", Path: f.name, Err: ErrInjected}
	}
	if f.w != nil {
		f.mem.files[f.name] = f.w.Bytes()
	}
	return nil
}
