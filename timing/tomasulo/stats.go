package tomasulo

// Stats is the end-of-run statistics record.
type Stats struct {
	CycleCount         uint64
	RetiredInstruction uint64
	MaxDispSize        int
	AvgDispSize        float64
	AvgInstFired       float64
	AvgInstRetired     float64
	RegFileHitCount    uint64
	RobHitCount        uint64
	ExceptionCount     uint64
	BackupCount        uint64
	FlushedCount       uint64
}

// Stats computes the end-of-run statistics record. AvgInstFired and
// AvgInstRetired are always computed independently from their own
// counters (matching checkpoint2's single, mode-agnostic complete_proc);
// for baseline mode with no exceptions the two are equal by construction,
// since every fired instruction eventually retires — this reproduces the
// source's baseline-mode avg_inst_retired == avg_inst_fired identity as
// an observed consequence rather than a hand-coded mode-conditional.
func (e *Engine) Stats() Stats {
	cycles := e.cycle
	if cycles == 0 {
		cycles = 1
	}
	return Stats{
		CycleCount:         e.cycle,
		RetiredInstruction: e.retiredCount,
		MaxDispSize:        e.dqMaxSize,
		AvgDispSize:        float64(e.dqSizeSum) / float64(cycles),
		AvgInstFired:       float64(e.firedCount) / float64(cycles),
		AvgInstRetired:     float64(e.retiredCount) / float64(cycles),
		RegFileHitCount:    e.regHitCount,
		RobHitCount:        e.robHitCount,
		ExceptionCount:     e.exceptionCount,
		BackupCount:        e.backupCount,
		FlushedCount:       e.flushedCount,
	}
}
