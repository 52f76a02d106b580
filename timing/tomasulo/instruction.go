// Package tomasulo implements the dynamically-scheduled pipeline engine:
// register renaming, the scheduling-queue/scoreboard/CDB broadcast protocol,
// and the ROB and checkpoint-repair recovery schemes built on top of it.
package tomasulo

// State is the lifecycle state of an in-flight instruction.
type State int

const (
	StateFetched State = iota
	StateDispatched
	StateFired
	StateExecuted
	StateCompleted
	StateRetired
)

// String renders a State the way the log and timing report expect.
func (s State) String() string {
	switch s {
	case StateFetched:
		return "FETCHED"
	case StateDispatched:
		return "DISPATCHED"
	case StateFired:
		return "FIRED"
	case StateExecuted:
		return "EXECUTED"
	case StateCompleted:
		return "COMPLETED"
	case StateRetired:
		return "RETIRED"
	default:
		return "UNKNOWN"
	}
}

// NoDestTag marks an instruction that writes no architectural register, or
// an unoccupied bus slot's former sentinel value. Bus occupancy is tracked
// explicitly (see Bus) so this value is never load-bearing for matching —
// it exists only so DestTag always has a well-defined value.
const NoDestTag = ^uint64(0)

// Instruction is a single decoded record as it flows through the engine.
// Index is its stable position in Engine.instructions; unlike a pointer,
// it survives being reused across recovery re-fetch and is safe to store
// in any of the engine's index-addressed containers (DQ, SQ, SB, ROB).
type Instruction struct {
	Index int
	Tag   uint64

	FU      int
	DestReg int
	SrcReg  [2]int

	DestTag  uint64
	SrcTag   [2]uint64
	SrcReady [2]bool

	State      State
	FiredCycle uint64
	Exception  bool

	FetchCycle  uint64
	DispCycle   uint64
	SchedCycle  uint64
	ExecCycle   uint64
	UpdateCycle uint64
}

// reset clears the transient fields touched by rename/schedule/execute,
// preserving Tag, FU, DestReg, and SrcReg — used when a recovery re-fetch
// reuses an existing record rather than the trace source minting a new one.
func (i *Instruction) reset() {
	i.DestTag = NoDestTag
	i.SrcTag = [2]uint64{}
	i.SrcReady = [2]bool{}
	i.State = StateFetched
	i.FiredCycle = 0
	i.FetchCycle = 0
	i.DispCycle = 0
	i.SchedCycle = 0
	i.ExecCycle = 0
	i.UpdateCycle = 0
}
