package tomasulo

import (
	"github.com/sarchlab/tomasulosim/timing/config"
)

// Engine is the cycle-level Tomasulo/ROB/CPR pipeline. Every structure it
// owns — the dispatch and scheduling queues, the scoreboard, the ROB, the
// register file, the CDB buses, and every counter — is mutated only from
// within Tick, and only by the substage currently running. There is no
// process-wide or package-level mutable state; a program may run any
// number of independent Engines concurrently.
type Engine struct {
	cfg    *config.Config
	source Source
	logger Logger

	regFile RegisterFile
	nextTag uint64

	// instructions is the master, append-only, index-addressed sequence.
	// An *Instruction's Index is its position here and never changes.
	instructions []*Instruction

	dq  []int
	sq  []int
	sb  []int
	rob []int

	buses []Bus
	kBusy [3]int

	cycle        uint64
	nextFetchTag uint64
	retiredCount uint64
	firedCount   uint64

	trailingTag uint64

	ib1, ib2 int
	backup1  RegisterFile
	backup2  RegisterFile

	dqSizeSum      uint64
	dqMaxSize      int
	regHitCount    uint64
	robHitCount    uint64
	exceptionCount uint64
	backupCount    uint64
	flushedCount   uint64
}

// EngineOption configures an Engine at construction time.
type EngineOption func(*Engine)

// WithLogger sets the Engine's event logger. The default is NopLogger.
func WithLogger(l Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine constructs an Engine in its initial state: register file
// entries i hold tag i and are ready, the tag counter starts at 128, and
// the first instruction to be fetched will carry tag 1.
func NewEngine(cfg *config.Config, source Source, opts ...EngineOption) *Engine {
	rf := newRegisterFile()
	e := &Engine{
		cfg:          cfg.Clone(),
		source:       source,
		logger:       NopLogger{},
		regFile:      rf,
		nextTag:      128,
		nextFetchTag: 1,
		trailingTag:  1,
		ib1:          -1,
		ib2:          -1,
		backup1:      rf,
		backup2:      rf,
		buses:        make([]Bus, cfg.R),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cycle returns the number of cycles executed so far.
func (e *Engine) Cycle() uint64 { return e.cycle }

// Instructions returns the master instruction sequence in program order,
// for building the final per-instruction timing report.
func (e *Engine) Instructions() []*Instruction { return e.instructions }

// Tick advances the machine by exactly one cycle, running S0 through S6
// in the fixed order described by the specification. The cycle counter is
// incremented once, up front, so every substage this Tick (including the
// S6 fetch stamps) reports the cycle number it belongs to. A cycle in
// which S0 triggers recovery (ROB or CPR) only aborts the rest of S0's own
// retire loop: recoverROB/recoverCPR already clear dq/sq/sb/rob, so S1–S5
// run this same cycle as no-ops against that empty state, and S6 still
// fires to re-fetch starting at the rolled-back trailing tag — exactly
// like the source, whose recovery `break` only exits stage_0's rob/sq
// loop before `run_proc` falls through to stage_1...stage_6.
func (e *Engine) Tick() {
	e.cycle++

	switch e.cfg.Mode {
	case config.ModeBaseline:
		e.retireBaseline()
	case config.ModeROB:
		e.retireROB()
	case config.ModeCPR:
		e.retireCPR()
	}

	e.broadcast()
	e.fire()
	e.wake()

	switch e.cfg.Mode {
	case config.ModeBaseline:
		e.dispatchBaseline()
	case config.ModeROB:
		e.dispatchROB()
	case config.ModeCPR:
		e.dispatchCPR()
	}

	if e.cfg.Mode == config.ModeROB {
		e.reclaimROB()
	}
	e.reclaimSQ()

	e.fetch(e.cfg.Mode != config.ModeBaseline)
}

// done reports the mode-dependent termination predicate.
func (e *Engine) done() bool {
	if e.cfg.Mode == config.ModeBaseline {
		return e.nextFetchTag-1 == e.retiredCount
	}
	return len(e.dq) == 0 && len(e.sq) == 0
}

// Run ticks the engine until the termination predicate for its mode is
// satisfied. The predicate is checked only after each Tick, so the first
// cycle always runs — this mirrors the source's do-while stage loop.
func (e *Engine) Run() {
	for {
		e.Tick()
		if e.done() {
			return
		}
	}
}

// RunCycles ticks the engine for at most maxCycles cycles, stopping early
// if the termination predicate is satisfied. It reports whether the run
// finished naturally before the cycle limit.
func (e *Engine) RunCycles(maxCycles uint64) bool {
	for i := uint64(0); i < maxCycles; i++ {
		e.Tick()
		if e.done() {
			return true
		}
	}
	return false
}
