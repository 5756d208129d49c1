// Package terminal renders the machine in a terminal with tcell, two pixels
// per character cell, next to optional register, disassembly and log panes.
package terminal

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/jeebie-core/jeebie/backend"
	"github.com/valerio/jeebie-core/jeebie/backend/terminal/render"
	"github.com/valerio/jeebie-core/jeebie/debug"
	"github.com/valerio/jeebie-core/jeebie/input"
	"github.com/valerio/jeebie-core/jeebie/input/action"
	"github.com/valerio/jeebie-core/jeebie/input/event"
	"github.com/valerio/jeebie-core/jeebie/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	registerHeight = 12
	disasmHeight   = 9
	minTermWidth   = 80
	minTermHeight  = 24
	logCapacity    = 200
)

// keyTimeout is how long a game button stays down after its last key
// event. Terminals report key repeats but never releases.
const keyTimeout = 100 * time.Millisecond

var dpad = []action.Action{action.GBDPadUp, action.GBDPadDown, action.GBDPadLeft, action.GBDPadRight}

// Backend implements backend.Backend on a tcell screen.
type Backend struct {
	screen    tcell.Screen
	newScreen func() (tcell.Screen, error)
	running   bool
	config    backend.Config

	logBuffer *render.LogBuffer
	logger    *slog.Logger
	// logLevel filters the logs pane; everything is captured.
	logLevel slog.Level

	eventQueue []backend.InputEvent
	keyStates  map[action.Action]time.Time // last key event per game button
	activeKeys map[action.Action]bool      // buttons down during the previous frame
	now        func() time.Time

	currentFrame *video.FrameBuffer
	snapshotDir  string
}

// New creates a terminal backend. Its logger captures records for the logs
// pane and becomes the default logger once Init runs.
func New() *Backend {
	return newBackend(tcell.NewScreen)
}

func newBackend(newScreen func() (tcell.Screen, error)) *Backend {
	buf := render.NewLogBuffer(logCapacity)
	return &Backend{
		newScreen:  newScreen,
		logBuffer:  buf,
		logger:     slog.New(render.NewLogBufferHandler(buf, slog.LevelDebug)),
		logLevel:   slog.LevelInfo,
		keyStates:  make(map[action.Action]time.Time),
		activeKeys: make(map[action.Action]bool),
		now:        time.Now,
	}
}

// Logger returns the logger feeding the logs pane. Writing to stderr while
// the screen is active would corrupt it.
func (t *Backend) Logger() *slog.Logger {
	return t.logger
}

// SetSnapshotDir sets where F12 snapshots are written.
func (t *Backend) SetSnapshotDir(dir string) {
	t.snapshotDir = dir
}

func (t *Backend) Init(config backend.Config) error {
	t.config = config

	screen, err := t.newScreen()
	if err != nil {
		return fmt.Errorf("creating terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal screen: %w", err)
	}

	t.screen = screen
	t.running = true
	slog.SetDefault(t.logger)

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	t.logger.Info("terminal backend initialized", "title", config.Title, "debug", config.ShowDebug)
	return nil
}

// Update drains pending key events, turns them into press, hold and release
// events, then draws frame.
func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	now := t.now()

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	var events []backend.InputEvent
	current := make(map[action.Action]bool)
	for act, last := range t.keyStates {
		if now.Sub(last) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}
		current[act] = true
		if t.activeKeys[act] {
			events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
		} else {
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		}
	}
	for act := range t.activeKeys {
		if !current[act] {
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
	t.activeKeys = current

	events = append(events, t.eventQueue...)
	t.eventQueue = nil

	if !t.running {
		return events, nil
	}

	t.currentFrame = frame
	t.render(frame)
	t.screen.Show()
	return events, nil
}

func (t *Backend) Cleanup() error {
	if t.screen != nil {
		t.screen.Fini()
		t.screen = nil
	}
	return nil
}

// HandleAction handles the actions the terminal owns.
func (t *Backend) HandleAction(act action.Action) {
	switch act {
	case action.EmulatorSnapshot:
		path, err := debug.SaveFramePNGToDir(t.currentFrame, "jeebie", t.snapshotDir)
		if err != nil {
			t.logger.Error("snapshot failed", "error", err)
			return
		}
		t.logger.Info("snapshot saved", "path", path)
	case action.EmulatorDebugToggle:
		t.config.ShowDebug = !t.config.ShowDebug
		t.logger.Info("debug panes", "visible", t.config.ShowDebug)
	case action.DebugLogLevelIncrease:
		t.changeLogLevel(1)
	case action.DebugLogLevelDecrease:
		t.changeLogLevel(-1)
	}
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	act, ok := keyMapping[ev.Key()]
	if !ok && ev.Key() == tcell.KeyRune {
		act, ok = runeMapping[ev.Rune()]
	}
	if !ok {
		return
	}

	if act == action.EmulatorQuit {
		t.running = false
	}

	if action.GetInfo(act).Category != action.CategoryGameInput {
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
		return
	}

	// one direction at a time
	for _, d := range dpad {
		if d == act {
			for _, other := range dpad {
				delete(t.keyStates, other)
			}
			break
		}
	}
	t.keyStates[act] = now
}

// tcellKeyNames translates special keys to the names used by the default
// key map.
var tcellKeyNames = map[tcell.Key]string{
	tcell.KeyEnter:  "Enter",
	tcell.KeyUp:     "Up",
	tcell.KeyDown:   "Down",
	tcell.KeyLeft:   "Left",
	tcell.KeyRight:  "Right",
	tcell.KeyEscape: "Escape",
	tcell.KeyF1:     "F1",
	tcell.KeyF2:     "F2",
	tcell.KeyF3:     "F3",
	tcell.KeyF4:     "F4",
	tcell.KeyF5:     "F5",
	tcell.KeyF8:     "F8",
	tcell.KeyF10:    "F10",
	tcell.KeyF12:    "F12",
}

func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)
	for key, name := range tcellKeyNames {
		if act, ok := input.GetDefaultMapping(name); ok {
			mapping[key] = act
		}
	}
	mapping[tcell.KeyCtrlC] = action.EmulatorQuit
	return mapping
}

func buildRuneMapping() map[rune]action.Action {
	mapping := make(map[rune]action.Action)
	for name, act := range input.DefaultKeyMap {
		runes := []rune(name)
		if len(runes) == 1 {
			mapping[runes[0]] = act
		}
	}
	mapping[' '] = action.EmulatorPauseToggle
	return mapping
}

var (
	keyMapping  = buildKeyMapping()
	runeMapping = buildRuneMapping()
)

func (t *Backend) changeLogLevel(direction int) {
	levels := []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}
	idx := 1
	for i, l := range levels {
		if l == t.logLevel {
			idx = i
		}
	}
	// increasing verbosity lowers the level
	idx = max(0, min(len(levels)-1, idx-direction))
	if levels[idx] != t.logLevel {
		t.logger.Info("log filter changed", "from", t.logLevel, "to", levels[idx])
		t.logLevel = levels[idx]
	}
}

func (t *Backend) drawText(x, y, maxWidth int, text string, style tcell.Style) {
	i := 0
	for _, ch := range text {
		if i >= maxWidth {
			return
		}
		t.screen.SetContent(x+i, y, ch, nil, style)
		i++
	}
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	dividerX := width + 2
	panelX := dividerX + 1
	panelWidth := max(termWidth-panelX, 0)

	var data *debug.Data
	if t.config.ShowDebug && t.config.DebugProvider != nil {
		data = t.config.DebugProvider.ExtractDebugData()
	}

	t.drawBorders(termWidth, termHeight, dividerX)
	t.drawGameBoy(frame)

	logsY := 1
	if t.config.ShowDebug {
		t.drawRegisters(data, panelX, 1, panelWidth, termHeight)
		t.drawDisassembly(data, panelX, registerHeight+3, panelWidth, termHeight)
		logsY = registerHeight + disasmHeight + 4
	}
	t.drawLogs(panelX, logsY, panelWidth, termHeight)
}

func (t *Backend) drawBorders(termWidth, termHeight, dividerX int) {
	border := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	title := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for y := range termHeight {
		t.screen.SetContent(dividerX, y, '│', nil, border)
	}

	name := t.config.Title
	if name == "" {
		name = "Game Boy"
	}
	t.drawText(1, 0, dividerX-1, " "+name+" ", title)

	titleX := dividerX + 2
	logsTitleY := 0
	if t.config.ShowDebug {
		registerEndY := registerHeight + 1
		disasmEndY := registerEndY + disasmHeight + 1
		for _, y := range []int{registerEndY, disasmEndY} {
			for x := dividerX + 1; x < termWidth; x++ {
				t.screen.SetContent(x, y, '─', nil, border)
			}
			t.screen.SetContent(dividerX, y, '├', nil, border)
		}
		t.drawText(titleX, 0, termWidth-titleX, " CPU Registers ", title)
		t.drawText(titleX, registerEndY+1, termWidth-titleX, " Disassembly ", title)
		logsTitleY = disasmEndY + 1
	}
	t.drawText(titleX, logsTitleY, termWidth-titleX,
		fmt.Sprintf(" Logs [%s] (-/+ filter) ", t.logLevel), title)

	help := " F10=debug SPACE=pause N=step F=frame F12=snapshot F5/F8=save/load ESC=quit "
	t.drawText(0, termHeight-1, termWidth, help, border)
}

var shadeColors = [4]tcell.Color{tcell.ColorBlack, tcell.ColorGray, tcell.ColorSilver, tcell.ColorWhite}

// drawGameBoy packs two rows into each cell: the glyph draws one pixel in
// the foreground, the other shows through the background.
func (t *Backend) drawGameBoy(frame *video.FrameBuffer) {
	if frame == nil {
		return
	}
	pixels := frame.ToSlice()
	for y := 0; y < height; y += 2 {
		for x := range width {
			top := render.PixelToShade(pixels[y*width+x])
			bottom := render.PixelToShade(pixels[(y+1)*width+x])
			t.screen.SetContent(x+1, y/2+1, render.GetHalfBlockChar(top, bottom), nil, cellStyle(top, bottom))
		}
	}
}

func cellStyle(top, bottom int) tcell.Style {
	switch {
	case top == bottom:
		return tcell.StyleDefault.Foreground(shadeColors[top])
	case top == 3:
		// lower half block: the glyph is the bottom pixel
		return tcell.StyleDefault.Foreground(shadeColors[bottom]).Background(shadeColors[top])
	default:
		return tcell.StyleDefault.Foreground(shadeColors[top]).Background(shadeColors[bottom])
	}
}

func (t *Backend) drawRegisters(data *debug.Data, x, y, w, termHeight int) {
	if data == nil || data.CPU == nil {
		return
	}
	cpu := data.CPU
	ime := "OFF"
	if cpu.IME {
		ime = "ON"
	}

	lines := []string{
		fmt.Sprintf("Status: %s  Frame: %d", data.DebuggerState, data.Frame),
		fmt.Sprintf("A: 0x%02X  F: 0x%02X  [%s]", cpu.A, cpu.F, cpu.Flags()),
		fmt.Sprintf("B: 0x%02X  C: 0x%02X", cpu.B, cpu.C),
		fmt.Sprintf("D: 0x%02X  E: 0x%02X", cpu.D, cpu.E),
		fmt.Sprintf("H: 0x%02X  L: 0x%02X", cpu.H, cpu.L),
		fmt.Sprintf("SP: 0x%04X  PC: 0x%04X", cpu.SP, cpu.PC),
		fmt.Sprintf("IME: %s  IE: 0x%02X  IF: 0x%02X", ime, data.InterruptEnable, data.InterruptFlags),
		fmt.Sprintf("Halted: %t", cpu.Halted),
		fmt.Sprintf("LY: %d  Mode: %s", data.Scanline, data.Mode),
		fmt.Sprintf("Cycles: %d", cpu.Cycles),
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	for i, line := range lines {
		if y+i >= termHeight || i >= registerHeight {
			break
		}
		t.drawText(x, y+i, w, line, style)
	}
}

func (t *Backend) drawDisassembly(data *debug.Data, x, y, w, termHeight int) {
	if data == nil || data.CPU == nil || data.Memory == nil {
		return
	}

	normal := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	current := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)

	for i, line := range debug.CreateDisassembly(data.Memory, data.CPU.PC, disasmHeight) {
		if y+i >= termHeight {
			break
		}
		marker, style := " ", normal
		if line.IsCurrent {
			marker, style = "→", current
		}
		t.drawText(x, y+i, w, fmt.Sprintf("%s0x%04X: %s", marker, line.Address, line.Instruction), style)
	}
}

func (t *Backend) drawLogs(x, y, w, termHeight int) {
	rows := termHeight - y - 1
	if w <= 0 || rows <= 0 {
		return
	}

	styles := map[slog.Level]tcell.Style{
		slog.LevelDebug: tcell.StyleDefault.Foreground(tcell.ColorGray),
		slog.LevelInfo:  tcell.StyleDefault.Foreground(tcell.ColorBlue),
		slog.LevelWarn:  tcell.StyleDefault.Foreground(tcell.ColorYellow),
		slog.LevelError: tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	}

	row := 0
	for _, entry := range t.logBuffer.GetRecent(0) {
		if row >= rows {
			break
		}
		if entry.Level < t.logLevel {
			continue
		}
		text := render.FormatLogEntry(entry)
		if len(text) > w && w > 3 {
			text = text[:w-3] + "..."
		}
		t.drawText(x, y+row, w, text, styles[entry.Level])
		row++
	}
}
