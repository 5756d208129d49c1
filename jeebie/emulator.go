package jeebie

import (
	"context"

	"github.com/valerio/jeebie-core/jeebie/debug"
	"github.com/valerio/jeebie-core/jeebie/input"
	"github.com/valerio/jeebie-core/jeebie/input/action"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// Bytes of memory copied around PC for the debug view.
const (
	debugWindow   = 200
	debugLookback = 50
)

// Emulator is what host backends drive.
type Emulator interface {
	RunUntilFrame(ctx context.Context) error
	GetCurrentFrame() *video.FrameBuffer
	HandleAction(act action.Action, pressed bool)
	ExtractDebugData() *debug.Data
}

var _ Emulator = (*DMG)(nil)

// HandleAction applies a host action. Game Boy buttons follow pressed;
// everything else acts on press only.
func (d *DMG) HandleAction(act action.Action, pressed bool) {
	if key, ok := input.JoypadKey(act); ok {
		if pressed {
			d.joypad.Press(key)
		} else {
			d.joypad.Release(key)
		}
		return
	}
	if !pressed {
		return
	}

	switch act {
	case action.EmulatorPauseToggle:
		d.SetPaused(!d.paused)
		d.logger.Info("pause toggled", "paused", d.paused)
	case action.EmulatorStepFrame:
		if d.paused {
			d.pending = pendingFrame
		}
	case action.EmulatorStepInstruction:
		if d.paused {
			d.pending = pendingInstruction
		}
	case action.EmulatorQuit:
		d.Stop()
	case action.AudioToggleChannel1, action.AudioToggleChannel2,
		action.AudioToggleChannel3, action.AudioToggleChannel4:
		channel := int(act-action.AudioToggleChannel1) + 1
		d.apu.ToggleChannel(channel)
		d.logger.Info("audio channel toggled", "channel", channel, "active", d.apu.ChannelStatus())
	default:
		d.logger.Debug("action not handled by machine", "action", act)
	}
}

// ExtractDebugData collects the state the debug views display. It returns
// nil for a machine that was not built with New.
func (d *DMG) ExtractDebugData() *debug.Data {
	if d.cpu == nil || d.mmu == nil || d.gpu == nil {
		return nil
	}

	regs := d.regs
	state := debug.DebuggerRunning
	if d.paused {
		state = debug.DebuggerPaused
	}

	return &debug.Data{
		OAM:  debug.ExtractOAMData(d.mmu, int(d.gpu.Scanline()), d.gpu.SpriteHeight()),
		VRAM: debug.ExtractVRAMData(d.mmu),
		CPU: &debug.CPUState{
			A: regs.A, F: regs.F,
			B: regs.B, C: regs.C,
			D: regs.D, E: regs.E,
			H: regs.H, L: regs.L,
			SP:     regs.SP,
			PC:     regs.PC,
			IME:    regs.IME(),
			Halted: d.cpu.Halted(),
			Cycles: d.cpu.Cycles(),
		},
		Memory:          debug.SnapshotAround(d.mmu, regs.PC, debugLookback, debugWindow),
		DebuggerState:   state,
		InterruptEnable: regs.IE(),
		InterruptFlags:  regs.IF(),
		Scanline:        d.gpu.Scanline(),
		Mode:            d.gpu.Mode().String(),
		Frame:           d.gpu.FrameCount(),
	}
}
