package action

// Action is a host level input, either a Game Boy button or an emulator control.
type Action int

const (
	// Game Boy hardware controls
	GBButtonA Action = iota
	GBButtonB
	GBButtonStart
	GBButtonSelect
	GBDPadUp
	GBDPadDown
	GBDPadLeft
	GBDPadRight

	// Emulator features
	EmulatorPauseToggle
	EmulatorStepFrame
	EmulatorStepInstruction
	EmulatorDebugToggle
	EmulatorSnapshot
	EmulatorSaveState
	EmulatorLoadState
	EmulatorQuit

	// Audio controls
	AudioToggleChannel1
	AudioToggleChannel2
	AudioToggleChannel3
	AudioToggleChannel4

	// Debug controls
	DebugLogLevelIncrease
	DebugLogLevelDecrease
)

// Category groups actions by how hosts deliver them.
type Category int

const (
	// CategoryGameInput actions are held and released.
	CategoryGameInput Category = iota
	CategoryEmulator
	CategoryAudio
	CategoryDebug
)

// Info describes an action for logs and help text.
type Info struct {
	Category    Category
	Description string
}

var infos = map[Action]Info{
	GBButtonA:      {CategoryGameInput, "A"},
	GBButtonB:      {CategoryGameInput, "B"},
	GBButtonStart:  {CategoryGameInput, "Start"},
	GBButtonSelect: {CategoryGameInput, "Select"},
	GBDPadUp:       {CategoryGameInput, "Up"},
	GBDPadDown:     {CategoryGameInput, "Down"},
	GBDPadLeft:     {CategoryGameInput, "Left"},
	GBDPadRight:    {CategoryGameInput, "Right"},

	EmulatorPauseToggle:     {CategoryEmulator, "Pause/resume"},
	EmulatorStepFrame:       {CategoryEmulator, "Step frame"},
	EmulatorStepInstruction: {CategoryEmulator, "Step instruction"},
	EmulatorDebugToggle:     {CategoryEmulator, "Toggle debug view"},
	EmulatorSnapshot:        {CategoryEmulator, "Save screenshot"},
	EmulatorSaveState:       {CategoryEmulator, "Save state"},
	EmulatorLoadState:       {CategoryEmulator, "Load state"},
	EmulatorQuit:            {CategoryEmulator, "Quit"},

	AudioToggleChannel1: {CategoryAudio, "Toggle square 1"},
	AudioToggleChannel2: {CategoryAudio, "Toggle square 2"},
	AudioToggleChannel3: {CategoryAudio, "Toggle wave"},
	AudioToggleChannel4: {CategoryAudio, "Toggle noise"},

	DebugLogLevelIncrease: {CategoryDebug, "More log output"},
	DebugLogLevelDecrease: {CategoryDebug, "Less log output"},
}

// GetInfo returns the description of act.
func GetInfo(act Action) Info {
	if info, ok := infos[act]; ok {
		return info
	}
	return Info{Category: CategoryDebug, Description: "Unknown"}
}

func (a Action) String() string {
	return GetInfo(a).Description
}
