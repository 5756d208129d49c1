package audio

const (
	// cpuClock is the machine clock in cycles per second.
	cpuClock = 4194304

	// SampleRate is the output rate of the mixer, in stereo frames per second.
	SampleRate = 44100

	// cyclesPerStep is one 512Hz frame sequencer step.
	cyclesPerStep = cpuClock / 512

	waveRAMSize = 16

	// maxBufferedFrames bounds the sample buffer when nobody drains it.
	maxBufferedFrames = SampleRate / 2
)

// register read masks for FF10-FF2F: unused and write-only bits read as 1
var readMasks = [0x20]uint8{
	0x80, 0x3F, 0x00, 0xFF, 0xBF, // NR10-NR14
	0xFF, 0x3F, 0x00, 0xFF, 0xBF, // unused, NR21-NR24
	0x7F, 0xFF, 0x9F, 0xFF, 0xBF, // NR30-NR34
	0xFF, 0xFF, 0x00, 0x00, 0xBF, // unused, NR41-NR44
	0x00, 0x00, 0x70, // NR50-NR52
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
}

var dutyPatterns = [4]uint8{
	0b00000001, // 12.5%
	0b10000001, // 25%
	0b10000111, // 50%
	0b01111110, // 75%
}

var noiseDivisors = [8]int{8, 16, 32, 48, 64, 80, 96, 112}

// waveShifts maps the NR32 output level to a right shift; 4 mutes.
var waveShifts = [4]uint8{4, 0, 1, 2}
