package trace

import (
	"fmt"

	"github.com/sarchlab/tomasulosim/emu"
	"github.com/sarchlab/tomasulosim/insts"
	"github.com/sarchlab/tomasulosim/loader"
)

// ELFSource is a trace source backed by an actual ARM64 ELF binary. It
// runs the binary's architectural behavior once, up front, through the
// existing functional emulator so that the resulting instruction stream
// reflects real control flow — loops, calls, conditional branches — and
// then replays the recorded stream to the timing engine one record at a
// time. The emulator's register values are never exposed to the engine;
// only each instruction's opcode class and register operands are kept,
// matching the Non-goal that no functional data values are simulated.
type ELFSource struct {
	records []Record
	pos     int
}

// NewELFSource loads path, executes it functionally up to maxInstructions
// (0 means unlimited), and returns a trace source replaying the resulting
// dynamic instruction stream.
func NewELFSource(path string, maxInstructions uint64) (*ELFSource, error) {
	prog, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("trace: failed to load %s: %w", path, err)
	}

	src := &ELFSource{}

	e := emu.NewEmulator(
		emu.WithMaxInstructions(maxInstructions),
		emu.WithStackPointer(prog.InitialSP),
		emu.WithTraceSink(func(pc uint64, inst *insts.Instruction) {
			dest, srcs := registerOperands(inst.Op, inst)
			src.records = append(src.records, Record{
				InstructionAddress: pc,
				OpCode:             classify(inst.Op),
				DestReg:            dest,
				SrcReg:             srcs,
			})
		}),
	)

	mem := e.Memory()
	for _, seg := range prog.Segments {
		// MemSize may exceed len(Data) for BSS; untouched pages already
		// read as zero, so only the file-backed bytes need copying.
		for i, b := range seg.Data {
			mem.Write8(seg.VirtAddr+uint64(i), b)
		}
	}
	e.LoadProgram(prog.EntryPoint, mem)

	e.Run()

	return src, nil
}

// Next implements tomasulo.Source.
func (s *ELFSource) Next() (Record, bool) {
	if s.pos >= len(s.records) {
		return Record{}, false
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, true
}

// Len reports the total number of instructions in the recorded trace.
func (s *ELFSource) Len() int { return len(s.records) }
