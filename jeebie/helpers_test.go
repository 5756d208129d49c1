package jeebie

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valerio/jeebie-core/jeebie/memory"
)

const programStart = 0x0100

// loopForever is JR -2.
var loopForever = []byte{0x18, 0xFE}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// makeROM builds a ROM-only image with program at the entry point.
func makeROM(title string, color bool, program []byte) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[0x134:0x143], title)
	if color {
		rom[0x143] = 0x80
	}
	copy(rom[programStart:], program)
	return rom
}

func newTestMachine(t testing.TB, program ...byte) *DMG {
	t.Helper()
	return newTestMachineWith(t, Config{}, "MACHINE", program...)
}

func newTestMachineWith(t testing.TB, cfg Config, title string, program ...byte) *DMG {
	t.Helper()
	cart, err := memory.NewCartridge(makeROM(title, false, program))
	require.NoError(t, err)
	if cfg.Logger == nil {
		cfg.Logger = quietLogger()
	}
	return New(cart, cfg)
}

func program(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

type cycleRecorder struct {
	ticks []int
}

func (r *cycleRecorder) Tick(cycles int) {
	r.ticks = append(r.ticks, cycles)
}

func mustCartridge(t testing.TB, rom []byte) *memory.Cartridge {
	t.Helper()
	cart, err := memory.NewCartridge(rom)
	require.NoError(t, err)
	return cart
}
