package tomasulo

import "fmt"

// retireBaseline promotes every COMPLETED SQ entry to RETIRED. Retire
// order is immaterial in this mode: completed entries may commit out of
// program order.
func (e *Engine) retireBaseline() {
	for _, idx := range e.sq {
		inst := e.instructions[idx]
		if inst.State != StateCompleted {
			continue
		}
		inst.State = StateRetired
		inst.UpdateCycle = e.cycle
		e.retiredCount++
		e.logger.Log(e.cycle, "STATE UPDATE", fmt.Sprint(inst.Tag))
	}
}

// retireROB walks the ROB from the head, retiring consecutive COMPLETED
// entries in program order and stopping at the first entry that is not
// yet COMPLETED. If the head entry carries the exception flag, recovery
// fires instead of retiring it, and retireROB reports true to abort the
// rest of *this* retire loop only — S1 through S6 still run this cycle
// against the now-cleared queues, same as the source.
func (e *Engine) retireROB() bool {
	for _, idx := range e.rob {
		inst := e.instructions[idx]
		if inst.State != StateCompleted {
			break
		}
		if inst.Exception {
			e.recoverROB(inst)
			return true
		}
		inst.State = StateRetired
		inst.UpdateCycle = e.cycle
		e.retiredCount++
		e.logger.Log(e.cycle, "STATE UPDATE", fmt.Sprint(inst.Tag))
	}
	return false
}

// retireCPR walks the SQ (there is no ROB in this mode); for every
// COMPLETED entry it retires, then checks whether the current checkpoint
// window has fully retired and advances the checkpoint if so. If a
// retiring entry carries the exception flag, CPR rollback fires instead.
func (e *Engine) retireCPR() bool {
	for _, idx := range e.sq {
		inst := e.instructions[idx]
		if inst.State != StateCompleted {
			continue
		}
		if inst.Exception {
			e.recoverCPR(inst)
			return true
		}
		inst.State = StateRetired
		inst.UpdateCycle = e.cycle
		e.logger.Log(e.cycle, "STATE UPDATE", fmt.Sprint(inst.Tag))
		e.maybeAdvanceCheckpoint()
	}
	return false
}

// recoverROB implements the §4.6 ROB-mode recovery procedure: discard all
// in-flight state, reinitialize the register file, and arrange for S6 to
// re-fetch starting at the excepting instruction's tag.
func (e *Engine) recoverROB(exceptionInst *Instruction) {
	notRetired := 0
	for _, idx := range e.sq {
		if e.instructions[idx].State != StateRetired {
			notRetired++
		}
	}
	e.flushedCount += uint64(notRetired)

	exceptionInst.Exception = false
	e.rob = nil
	e.dq = nil
	e.sq = nil
	e.sb = nil
	e.kBusy = [3]int{}
	for i := range e.buses {
		e.buses[i] = Bus{}
	}
	for i := range e.regFile {
		e.regFile[i] = RegEntry{Tag: e.nextTag, Ready: true}
		e.nextTag++
	}

	e.trailingTag = exceptionInst.Tag
	e.exceptionCount++
	e.logger.Log(e.cycle, "EXCEPTION", fmt.Sprint(exceptionInst.Tag))
}

// recoverCPR implements the §4.7 CPR-mode recovery procedure: roll the
// register file back to the backup2 snapshot, collapse backup1 into it,
// and re-fetch from the tag just after ib2.
func (e *Engine) recoverCPR(exceptionInst *Instruction) {
	var lastTag uint64
	if len(e.sq) > 0 {
		lastTag = e.instructions[e.sq[len(e.sq)-1]].Tag
	}
	e.flushedCount += lastTag - e.ib2Tag()

	exceptionInst.Exception = false
	e.dq = nil
	e.sq = nil
	e.sb = nil
	e.kBusy = [3]int{}
	for i := range e.buses {
		e.buses[i] = Bus{}
	}

	e.regFile = e.backup2
	for i := range e.regFile {
		e.regFile[i].Ready = true
	}
	e.backup1 = e.backup2

	e.trailingTag = e.ib2Tag() + 1
	e.exceptionCount++
	e.logger.Log(e.cycle, "EXCEPTION", fmt.Sprint(exceptionInst.Tag))
}

// maybeAdvanceCheckpoint advances the CPR checkpoint window when every
// instruction at or before the current ib1 threshold (or the configured
// default, if no checkpoint has been established yet) has retired.
func (e *Engine) maybeAdvanceCheckpoint() {
	threshold := e.ib1Tag()
	open := 0
	for _, idx := range e.sq {
		inst := e.instructions[idx]
		if inst.Tag <= threshold && inst.State != StateRetired {
			open++
		}
	}
	if open > 0 {
		return
	}

	oldTag := e.ib2Tag()
	if e.ib2 == -1 {
		e.retiredCount += e.cfg.CheckpointInterval
	} else {
		e.retiredCount += threshold - oldTag
	}
	// The log reports old_tag as ib2's tag plus one (or 1 with no prior
	// checkpoint) — the first tag the old window actually covered — per
	// the source's "ib2 == nullptr ? 1 : ib2->inst_tag + 1" logging.
	e.logger.Log(e.cycle, "BACKUP2", fmt.Sprintf("%d TO %d", oldTag+1, threshold))

	e.backup2 = e.backup1
	e.backup1 = e.regFile
	e.ib2 = e.ib1
	if len(e.sq) > 0 {
		e.ib1 = e.sq[len(e.sq)-1]
	}
	e.backupCount++
}

// ib1Tag returns the tag at the ib1 checkpoint barrier, or the configured
// default threshold if no checkpoint has been established yet.
func (e *Engine) ib1Tag() uint64 {
	if e.ib1 == -1 {
		return e.cfg.CheckpointInterval
	}
	return e.instructions[e.ib1].Tag
}

// ib2Tag returns the tag at the ib2 checkpoint barrier, or 0 if no
// checkpoint has been established yet.
func (e *Engine) ib2Tag() uint64 {
	if e.ib2 == -1 {
		return 0
	}
	return e.instructions[e.ib2].Tag
}
