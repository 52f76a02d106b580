// Package trace adapts decoded instruction streams into the timing
// engine's trace-source contract: a stateful reader that hands back one
// architectural instruction record at a time.
package trace

import (
	"github.com/sarchlab/tomasulosim/insts"
	"github.com/sarchlab/tomasulosim/timing/tomasulo"
)

// Record is an alias for the engine's trace record type, so every
// source in this package satisfies tomasulo.Source directly.
type Record = tomasulo.Record

// classify maps the ARM64 decoder's opcode space down to the three
// function-unit classes the engine understands: 0 = integer/ALU,
// 1 = load/store, 2 = control-flow/system. SIMD/float ops are folded
// into class 0 — the engine models only the control/dependency skeleton,
// not data types, so a vector ALU op occupies the same kind of unit as a
// scalar one for scheduling purposes.
func classify(op insts.Op) int {
	switch op {
	case insts.OpLDR, insts.OpSTR, insts.OpLDRLit, insts.OpLDP, insts.OpSTP,
		insts.OpLDRB, insts.OpSTRB, insts.OpLDRSB, insts.OpLDRH, insts.OpSTRH,
		insts.OpLDRSH, insts.OpLDRQ, insts.OpSTRQ:
		return 1
	case insts.OpB, insts.OpBL, insts.OpBCond, insts.OpBR, insts.OpBLR,
		insts.OpRET, insts.OpSVC:
		return 2
	default:
		return 0
	}
}

// registerOperands extracts the (dest, src0, src1) architectural register
// numbers the engine cares about from a decoded instruction, using -1 for
// "absent" exactly as the trace-source contract specifies. Only the
// registers that participate in true dependencies for that opcode family
// are reported; e.g. a store's "destination" is memory, not a register,
// so it reports no destination but both address/value registers as
// sources.
func registerOperands(op insts.Op, inst *insts.Instruction) (dest int, src [2]int) {
	dest, src[0], src[1] = -1, -1, -1

	switch op {
	case insts.OpADD, insts.OpSUB, insts.OpAND, insts.OpORR, insts.OpEOR,
		insts.OpVADD, insts.OpVSUB, insts.OpVMUL, insts.OpVFADD, insts.OpVFSUB, insts.OpVFMUL:
		dest = regOrNone(inst.Rd)
		src[0] = regOrNone(inst.Rn)
		src[1] = regOrNone(inst.Rm)
	case insts.OpMOVZ, insts.OpMOVN, insts.OpADR, insts.OpADRP, insts.OpVMOV:
		dest = regOrNone(inst.Rd)
	case insts.OpMOVK:
		dest = regOrNone(inst.Rd)
		src[0] = regOrNone(inst.Rd)
	case insts.OpLDR, insts.OpLDRLit, insts.OpLDRB, insts.OpLDRSB, insts.OpLDRH,
		insts.OpLDRSH, insts.OpLDRQ:
		dest = regOrNone(inst.Rd)
		src[0] = regOrNone(inst.Rn)
	case insts.OpLDP:
		dest = regOrNone(inst.Rd)
		src[0] = regOrNone(inst.Rn)
		src[1] = regOrNone(inst.Rt2)
	case insts.OpSTR, insts.OpSTRB, insts.OpSTRH, insts.OpSTRQ:
		src[0] = regOrNone(inst.Rn)
		src[1] = regOrNone(inst.Rd)
	case insts.OpSTP:
		src[0] = regOrNone(inst.Rn)
		src[1] = regOrNone(inst.Rd)
	case insts.OpBR, insts.OpBLR:
		src[0] = regOrNone(inst.Rn)
	case insts.OpBL:
		dest = 30
	}

	return dest, src
}

// regOrNone maps the decoder's register encoding (31 = XZR/SP, used as a
// "no register" placeholder by several formats) to the engine's -1
// sentinel.
func regOrNone(reg uint8) int {
	if reg >= 31 {
		return -1
	}
	return int(reg)
}
