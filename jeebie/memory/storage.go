package memory

import (
	"errors"
	"fmt"
	"io"
)

// ExternalRAM is cartridge-side RAM. While inactive it behaves like a
// floating bus: reads return 0 and writes are dropped.
type ExternalRAM struct {
	data   []byte
	active bool
	dirty  bool
}

func newExternalRAM(size int) *ExternalRAM {
	return &ExternalRAM{data: make([]byte, size)}
}

// Size returns the number of bytes backing the RAM.
func (s *ExternalRAM) Size() int {
	return len(s.data)
}

// Active reports whether the bank controller has enabled access.
func (s *ExternalRAM) Active() bool {
	return s.active
}

func (s *ExternalRAM) setActive(on bool) {
	s.active = on
}

func (s *ExternalRAM) read(offset int) byte {
	if !s.active || len(s.data) == 0 {
		return 0
	}
	return s.data[offset%len(s.data)]
}

func (s *ExternalRAM) write(offset int, value byte) {
	if !s.active || len(s.data) == 0 {
		return
	}
	s.data[offset%len(s.data)] = value
	s.dirty = true
}

// Dirty reports whether the contents changed since the last Save or Load.
func (s *ExternalRAM) Dirty() bool {
	return s.dirty
}

// Load fills the RAM from r. Short inputs leave the tail untouched.
func (s *ExternalRAM) Load(r io.Reader) error {
	_, err := io.ReadFull(r, s.data)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("loading external ram: %w", err)
	}
	s.dirty = false
	return nil
}

// Save writes the full RAM contents to w.
func (s *ExternalRAM) Save(w io.Writer) error {
	if _, err := w.Write(s.data); err != nil {
		return fmt.Errorf("saving external ram: %w", err)
	}
	s.dirty = false
	return nil
}
