// Package headless runs a machine for a fixed number of frames without any
// display, optionally saving PNG snapshots along the way.
package headless

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/jeebie-core/jeebie/backend"
	"github.com/valerio/jeebie-core/jeebie/debug"
	"github.com/valerio/jeebie-core/jeebie/input/action"
	"github.com/valerio/jeebie-core/jeebie/input/event"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// progressInterval is how often, in frames, progress is logged.
const progressInterval = 60

// Backend implements backend.Backend for batch runs and tests.
type Backend struct {
	config         backend.Config
	frameCount     int
	maxFrames      int
	snapshotConfig SnapshotConfig
	saved          []string
	onFrame        func(frame int)
}

// SnapshotConfig holds configuration for frame snapshots.
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // save a snapshot every N frames
	Directory string // where snapshots are written
	ROMName   string // prefix for snapshot filenames
}

func New(maxFrames int, snapshotConfig SnapshotConfig) *Backend {
	return &Backend{
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
	}
}

// OnFrame registers fn to be called with the frame number after every
// presented frame.
func (h *Backend) OnFrame(fn func(frame int)) {
	h.onFrame = fn
}

func (h *Backend) Init(config backend.Config) error {
	h.config = config
	if h.maxFrames <= 0 {
		return fmt.Errorf("headless: frame count must be positive, got %d", h.maxFrames)
	}
	if h.snapshotConfig.Enabled && h.snapshotConfig.Interval <= 0 {
		return fmt.Errorf("headless: snapshot interval must be positive, got %d", h.snapshotConfig.Interval)
	}

	slog.Info("running headless",
		"title", config.Title,
		"frames", h.maxFrames,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)
	return nil
}

// Update counts the frame, saves a snapshot when one is due and emits a
// quit press once the frame budget is spent.
func (h *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	h.frameCount++

	due := h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval == 0
	if due {
		h.saveSnapshot(frame)
	}
	if h.onFrame != nil {
		h.onFrame(h.frameCount)
	}

	if h.frameCount%progressInterval == 0 {
		slog.Debug("frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}

	if h.frameCount < h.maxFrames {
		return nil, nil
	}

	// always keep the last frame
	if h.snapshotConfig.Enabled && !due {
		h.saveSnapshot(frame)
	}
	slog.Info("headless run completed",
		"frames", h.frameCount,
		"snapshots", len(h.saved),
		"snapshot_dir", h.snapshotConfig.Directory)

	return []backend.InputEvent{{Action: action.EmulatorQuit, Type: event.Press}}, nil
}

func (h *Backend) Cleanup() error {
	return nil
}

// Frames is the number of frames presented so far.
func (h *Backend) Frames() int {
	return h.frameCount
}

// Snapshots lists the files written so far.
func (h *Backend) Snapshots() []string {
	return h.saved
}

// CreateSnapshotConfig builds a snapshot configuration from command line
// values. An interval of zero disables snapshots; an empty directory gets a
// fresh temporary one.
func CreateSnapshotConfig(interval int, directory, romPath string) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
	}
	if !config.Enabled {
		return config, nil
	}

	if directory == "" {
		tempDir, err := os.MkdirTemp("", "jeebie-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("creating snapshot directory: %w", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return config, fmt.Errorf("creating snapshot directory: %w", err)
		}
		config.Directory = directory
	}

	name := filepath.Base(romPath)
	config.ROMName = strings.TrimSuffix(name, filepath.Ext(name))
	if config.ROMName == "" || config.ROMName == "." {
		config.ROMName = "jeebie"
	}
	return config, nil
}

func (h *Backend) saveSnapshot(frame *video.FrameBuffer) {
	base := fmt.Sprintf("%s_frame_%d", h.snapshotConfig.ROMName, h.frameCount)

	path, err := debug.SaveFramePNGToDir(frame, base, h.snapshotConfig.Directory)
	if err != nil {
		slog.Error("failed to save snapshot", "frame", h.frameCount, "error", err)
		return
	}
	h.saved = append(h.saved, path)
}
