package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/pkg/profile"
	"github.com/urfave/cli"
	"github.com/valerio/jeebie-core/jeebie"
	"github.com/valerio/jeebie-core/jeebie/audio"
	"github.com/valerio/jeebie-core/jeebie/backend"
	"github.com/valerio/jeebie-core/jeebie/backend/headless"
	"github.com/valerio/jeebie-core/jeebie/backend/terminal"
	"github.com/valerio/jeebie-core/jeebie/debug"
	"github.com/valerio/jeebie-core/jeebie/input"
	"github.com/valerio/jeebie-core/jeebie/input/action"
	"github.com/valerio/jeebie-core/jeebie/input/event"
	"github.com/valerio/jeebie-core/jeebie/timing"
)

const statsviewAddr = "localhost:12600"

func main() {
	app := cli.NewApp()
	app.Name = "jeebie"
	app.Description = "A Game Boy emulator"
	app.Usage = "jeebie [options] <ROM file>"
	app.Version = "2.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "rom",
			Usage:  "Path to the ROM file",
			EnvVar: "JEEBIE_ROM",
		},
		cli.BoolFlag{
			Name:   "headless",
			Usage:  "Run without a display for a fixed number of frames",
			EnvVar: "JEEBIE_HEADLESS",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode",
		},
		cli.BoolFlag{
			Name:   "color",
			Usage:  "Force color mode regardless of the cartridge header",
			EnvVar: "JEEBIE_COLOR",
		},
		cli.StringFlag{
			Name:   "save-dir",
			Usage:  "Directory for battery saves and quick states (default: next to the ROM)",
			EnvVar: "JEEBIE_SAVE_DIR",
		},
		cli.StringFlag{
			Name:  "record-audio",
			Usage: "Record the audio output to a WAV file",
		},
		cli.StringFlag{
			Name:  "dump-state",
			Usage: "Write a Graphviz dump of the final machine state to a file",
		},
		cli.StringFlag{
			Name:  "save-state",
			Usage: "Write the machine state to a file on exit",
		},
		cli.StringFlag{
			Name:  "load-state",
			Usage: "Restore the machine state from a file before running",
		},
		cli.BoolFlag{
			Name:  "trace",
			Usage: "Log every executed instruction (needs --log-level debug)",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "Log level: debug, info, warn or error",
			Value:  "info",
			EnvVar: "JEEBIE_LOG_LEVEL",
		},
		cli.StringFlag{
			Name:  "profile",
			Usage: "Write a cpu or mem profile to the working directory",
		},
		cli.BoolFlag{
			Name:  "statsview",
			Usage: "Serve runtime statistics on " + statsviewAddr,
		},
		cli.StringFlag{
			Name:   "pacing",
			Usage:  "Frame pacing: adaptive, ticker or none (headless default: none)",
			EnvVar: "JEEBIE_PACING",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save a PNG every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory for PNG snapshots (default: temp directory)",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Show the debug panes on start",
		},
	}
	app.Action = runEmulator

	if err := app.Run(os.Args); err != nil {
		slog.Error("error running emulator", "error", err)
		os.Exit(1)
	}
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return level, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}

func runEmulator(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() == 0 {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
		romPath = c.Args().Get(0)
	}

	level, err := parseLevel(c.String("log-level"))
	if err != nil {
		return err
	}

	switch c.String("profile") {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile %q, want cpu or mem", c.String("profile"))
	}

	if c.Bool("statsview") {
		go func() {
			viewer.SetConfiguration(viewer.WithAddr(statsviewAddr))
			statsview.New().Start()
		}()
		fmt.Fprintf(os.Stderr, "stats server available at http://%s/debug/statsview\n", statsviewAddr)
	}

	host, logger, err := newHost(c, romPath, level)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	emu, err := jeebie.NewWithFile(romPath, jeebie.Config{
		ForceColor: c.Bool("color"),
		Trace:      c.Bool("trace"),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	pacing := c.String("pacing")
	if pacing == "" && c.Bool("headless") {
		pacing = "none"
	}
	limiter, err := timing.New(pacing)
	if err != nil {
		return err
	}
	emu.SetFrameLimiter(limiter)
	if t, ok := limiter.(*timing.TickerLimiter); ok {
		defer t.Stop()
	}

	files := newSaveFiles(romPath, c.String("save-dir"))
	if err := files.loadBattery(emu); err != nil {
		return err
	}
	if path := c.String("load-state"); path != "" {
		if err := loadState(emu, path); err != nil {
			return err
		}
	}

	var runner jeebie.Emulator = emu
	if path := c.String("record-audio"); path != "" {
		rec, err := startRecording(emu, path)
		if err != nil {
			return err
		}
		defer rec.close()
		runner = rec
	}

	manager := input.NewManager(emu)
	manager.On(action.EmulatorSaveState, event.Press, func() {
		if err := saveState(emu, files.statePath); err != nil {
			slog.Error("quick save failed", "error", err)
		}
	})
	manager.On(action.EmulatorLoadState, event.Press, func() {
		if err := loadState(emu, files.statePath); err != nil {
			slog.Error("quick load failed", "error", err)
		}
	})

	if err := host.Init(backend.Config{
		Title:         emu.Cartridge().Header().Title,
		ShowDebug:     c.Bool("debug"),
		DebugProvider: emu,
	}); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := backend.Run(ctx, runner, host, manager)
	if err := host.Cleanup(); err != nil {
		slog.Warn("backend cleanup failed", "error", err)
	}
	// the screen is gone, later messages go to stderr
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := files.saveBattery(emu); err != nil {
		slog.Error("saving battery ram failed", "error", err)
	}
	if path := c.String("save-state"); path != "" {
		if err := saveState(emu, path); err != nil {
			slog.Error("saving state failed", "error", err)
		}
	}
	if path := c.String("dump-state"); path != "" {
		if err := dumpState(emu, path); err != nil {
			slog.Error("dumping state failed", "error", err)
		}
	}

	return runErr
}

// newHost picks the backend and the logger matching it. The terminal
// backend owns the screen, so logs go to its pane instead of stderr.
func newHost(c *cli.Context, romPath string, level slog.Level) (backend.Backend, *slog.Logger, error) {
	if !c.Bool("headless") {
		t := terminal.New()
		t.SetSnapshotDir(c.String("snapshot-dir"))
		return t, t.Logger(), nil
	}

	frames := c.Int("frames")
	if frames <= 0 {
		return nil, nil, errors.New("headless mode requires --frames with a positive value")
	}
	snapshots, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return headless.New(frames, snapshots), logger, nil
}

// saveFiles locates the per-ROM battery save and quick state.
type saveFiles struct {
	batteryPath string
	statePath   string
}

func newSaveFiles(romPath, dir string) saveFiles {
	if dir == "" {
		dir = filepath.Dir(romPath)
	}
	name := strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))
	return saveFiles{
		batteryPath: filepath.Join(dir, name+".sav"),
		statePath:   filepath.Join(dir, name+".state"),
	}
}

func (s saveFiles) loadBattery(emu *jeebie.DMG) error {
	if !emu.Cartridge().Capabilities().HasBattery {
		return nil
	}
	f, err := os.Open(s.batteryPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening save: %w", err)
	}
	defer f.Close()

	if err := emu.LoadRAM(f); err != nil {
		return fmt.Errorf("loading %s: %w", s.batteryPath, err)
	}
	slog.Info("loaded battery save", "path", s.batteryPath)
	return nil
}

func (s saveFiles) saveBattery(emu *jeebie.DMG) error {
	if !emu.Cartridge().Capabilities().HasBattery {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.batteryPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(s.batteryPath)
	if err != nil {
		return err
	}
	if err := emu.SaveRAM(f); err != nil {
		f.Close()
		return err
	}
	slog.Info("wrote battery save", "path", s.batteryPath)
	return f.Close()
}

func saveState(emu *jeebie.DMG, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := emu.Snapshot().Encode(f); err != nil {
		f.Close()
		return err
	}
	slog.Info("state saved", "path", path)
	return f.Close()
}

func loadState(emu *jeebie.DMG, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	state, err := jeebie.DecodeState(f)
	if err != nil {
		return err
	}
	if err := emu.Restore(state); err != nil {
		return err
	}
	slog.Info("state loaded", "path", path)
	return nil
}

func dumpState(emu *jeebie.DMG, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	debug.WriteStateGraph(f, emu.Snapshot())
	slog.Info("state graph written", "path", path)
	return f.Close()
}

// recordingEmulator drains the mixer into a WAV file after every frame.
type recordingEmulator struct {
	*jeebie.DMG
	file *os.File
	rec  *audio.Recorder
}

func startRecording(emu *jeebie.DMG, path string) (*recordingEmulator, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	// drop whatever was mixed before recording started
	emu.APU().Samples()
	return &recordingEmulator{DMG: emu, file: f, rec: audio.NewRecorder(f)}, nil
}

func (r *recordingEmulator) RunUntilFrame(ctx context.Context) error {
	err := r.DMG.RunUntilFrame(ctx)
	if werr := r.rec.Write(r.DMG.APU().Samples()); werr != nil && err == nil {
		err = werr
	}
	return err
}

func (r *recordingEmulator) close() {
	if err := r.rec.Close(); err != nil {
		slog.Error("finalizing recording failed", "error", err)
	}
	if err := r.file.Close(); err != nil {
		slog.Error("closing recording failed", "error", err)
	}
	slog.Info("audio recorded", "path", r.file.Name(), "frames", r.rec.Frames())
}
