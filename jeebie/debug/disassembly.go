package debug

import (
	"github.com/valerio/jeebie-core/jeebie/disasm"
)

// disasmLookback is how many bytes before PC the listing starts decoding.
const disasmLookback = 30

type DisasmLine struct {
	Address     uint16
	Instruction string
	IsCurrent   bool
}

// CreateDisassembly decodes the snapshot into at most maxLines lines centred
// on pc. Decoding starts a few bytes back and may resynchronise on pc, so
// the lines before it are a best guess.
func CreateDisassembly(snapshot *MemorySnapshot, pc uint16, maxLines int) []DisasmLine {
	if snapshot == nil || maxLines <= 0 {
		return nil
	}

	if !snapshot.Contains(pc) {
		lines := decodeFrom(snapshot, 0, pc, maxLines-1)
		return append(lines, DisasmLine{
			Address:     pc,
			Instruction: "[PC outside snapshot range]",
			IsCurrent:   true,
		})
	}

	pcOffset := int(pc - snapshot.StartAddr)
	start := max(pcOffset-disasmLookback, 0)
	all := decodeFrom(snapshot, start, pc, disasmLookback+maxLines)

	current := -1
	for i, line := range all {
		if line.IsCurrent {
			current = i
			break
		}
	}
	if current < 0 {
		// the lookback decode never landed on pc, restart there
		all = decodeFrom(snapshot, pcOffset, pc, maxLines)
		current = 0
	}

	first := max(current-maxLines/2, 0)
	last := min(first+maxLines, len(all))
	first = max(last-maxLines, 0)
	return all[first:last]
}

func decodeFrom(snapshot *MemorySnapshot, offset int, pc uint16, limit int) []DisasmLine {
	var lines []DisasmLine
	for i := offset; i < len(snapshot.Bytes) && len(lines) < limit; {
		address := snapshot.StartAddr + uint16(i)
		text, length := disasm.DisassembleBytes(snapshot.Bytes, snapshot.StartAddr, i)
		lines = append(lines, DisasmLine{
			Address:     address,
			Instruction: text,
			IsCurrent:   address == pc,
		})
		i += length
	}
	return lines
}
