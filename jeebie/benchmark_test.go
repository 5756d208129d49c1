package jeebie_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/valerio/jeebie-core/jeebie"
	"github.com/valerio/jeebie-core/jeebie/backend"
	"github.com/valerio/jeebie-core/jeebie/backend/headless"
	"github.com/valerio/jeebie-core/jeebie/memory"
)

// benchProgram fills WRAM in a tight loop:
// LD HL,$C000; LD (HL+),A; INC A; JR -4
var benchProgram = []byte{0x21, 0x00, 0xC0, 0x22, 0x3C, 0x18, 0xFC}

func benchMachine(b *testing.B) *jeebie.DMG {
	b.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if path := os.Getenv("JEEBIE_BENCH_ROM"); path != "" {
		emu, err := jeebie.NewWithFile(path, jeebie.Config{Logger: logger})
		if err != nil {
			b.Fatalf("loading %s: %v", path, err)
		}
		return emu
	}

	rom := make([]byte, 0x8000)
	copy(rom[0x134:], "BENCH")
	copy(rom[0x100:], benchProgram)
	cart, err := memory.NewCartridge(rom)
	if err != nil {
		b.Fatalf("building cartridge: %v", err)
	}
	return jeebie.New(cart, jeebie.Config{Logger: logger})
}

func BenchmarkEmulatorHeadless(b *testing.B) {
	cases := []struct {
		name   string
		frames int
	}{
		{"frames_10", 10},
		{"frames_100", 100},
	}

	ctx := context.Background()
	for _, tc := range cases {
		b.Run(tc.name, func(b *testing.B) {
			emu := benchMachine(b)

			// a budget the loop never reaches, so no quit event is built
			h := headless.New(tc.frames*(b.N+1), headless.SnapshotConfig{})
			if err := h.Init(backend.Config{Title: "Benchmark"}); err != nil {
				b.Fatalf("initializing backend: %v", err)
			}
			defer h.Cleanup()

			b.ResetTimer()
			b.ReportAllocs()

			for range b.N {
				for range tc.frames {
					if err := emu.RunUntilFrame(ctx); err != nil {
						b.Fatalf("running frame: %v", err)
					}
					if _, err := h.Update(emu.GetCurrentFrame()); err != nil {
						b.Fatalf("backend update: %v", err)
					}
				}
			}
		})
	}
}

func BenchmarkStep(b *testing.B) {
	emu := benchMachine(b)
	b.ResetTimer()
	for range b.N {
		if _, err := emu.Step(); err != nil {
			b.Fatal(err)
		}
	}
}
