package jeebie

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/valerio/jeebie-core/jeebie/audio"
	"github.com/valerio/jeebie-core/jeebie/cpu"
	"github.com/valerio/jeebie-core/jeebie/memory"
	"github.com/valerio/jeebie-core/jeebie/serial"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// stateVersion changes whenever the layout of State does.
const stateVersion = 1

// ErrStateMismatch is returned when restoring a snapshot taken from a
// differently configured machine.
var ErrStateMismatch = errors.New("jeebie: snapshot does not match this machine")

// State is a copy of every stateful component, taken between steps.
type State struct {
	Version int
	Title   string
	Color   bool

	CPU       cpu.State
	MMU       memory.MMUState
	GPU       video.GPUState
	Timer     memory.TimerState
	Joypad    memory.JoypadState
	Cartridge memory.CartridgeState
	Serial    serial.State
	Audio     audio.State
}

// Snapshot copies the machine state. Only call it between steps.
func (d *DMG) Snapshot() *State {
	cart := d.mmu.Cartridge()
	return &State{
		Version:   stateVersion,
		Title:     cart.Header().Title,
		Color:     d.color,
		CPU:       d.cpu.Snapshot(),
		MMU:       d.mmu.Snapshot(),
		GPU:       d.gpu.Snapshot(),
		Timer:     d.timer.Snapshot(),
		Joypad:    d.joypad.Snapshot(),
		Cartridge: cart.Snapshot(),
		Serial:    d.serial.Snapshot(),
		Audio:     d.apu.Snapshot(),
	}
}

// Restore loads s into the machine. The snapshot must come from a machine
// running the same cartridge in the same mode.
func (d *DMG) Restore(s *State) error {
	cart := d.mmu.Cartridge()
	switch {
	case s.Version != stateVersion:
		return fmt.Errorf("%w: version %d, want %d", ErrStateMismatch, s.Version, stateVersion)
	case s.Color != d.color:
		return fmt.Errorf("%w: color mode %t", ErrStateMismatch, s.Color)
	case s.Title != cart.Header().Title:
		return fmt.Errorf("%w: cartridge %q", ErrStateMismatch, s.Title)
	}

	d.cpu.Restore(s.CPU)
	d.mmu.Restore(s.MMU)
	d.gpu.Restore(s.GPU)
	d.timer.Restore(s.Timer)
	d.joypad.Restore(s.Joypad)
	cart.Restore(s.Cartridge)
	d.serial.Restore(s.Serial)
	d.apu.Restore(s.Audio)
	return nil
}

// Encode writes the state with encoding/gob.
func (s *State) Encode(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(s); err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	return nil
}

// DecodeState reads a state written by Encode.
func DecodeState(r io.Reader) (*State, error) {
	var s State
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	return &s, nil
}
