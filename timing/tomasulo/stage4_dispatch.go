package tomasulo

import (
	"fmt"
	"sort"
)

// renameSources implements the source half of §4.1: for each source
// register, either mark it ready immediately (no source, or the
// register-file entry is already ready) or record the entry's current
// producer tag.
func (e *Engine) renameSources(inst *Instruction) {
	for k := 0; k < 2; k++ {
		s := inst.SrcReg[k]
		if s == -1 {
			inst.SrcReady[k] = true
			continue
		}
		if e.regFile[s].Ready {
			inst.SrcReady[k] = true
		} else {
			inst.SrcTag[k] = e.regFile[s].Tag
			inst.SrcReady[k] = false
		}
	}
}

// allocateDestTag implements the destination half of §4.1: allocate a
// fresh tag for a real destination register, or NoDestTag if the
// instruction writes nothing.
func (e *Engine) allocateDestTag(inst *Instruction) uint64 {
	if inst.DestReg < 0 {
		inst.DestTag = NoDestTag
		return NoDestTag
	}
	tag := e.nextTag
	e.nextTag++
	e.regFile[inst.DestReg] = RegEntry{Tag: tag, Ready: false}
	inst.DestTag = tag
	return tag
}

// rereadSources implements the §4.1 re-read pass: after every dispatch
// this cycle, sweep the SQ once more so that a source which became ready
// during this cycle's S1 is observed before S2 next runs.
func (e *Engine) rereadSources() {
	for _, idx := range e.sq {
		inst := e.instructions[idx]
		if inst.State != StateDispatched {
			continue
		}
		for k := 0; k < 2; k++ {
			if inst.SrcReady[k] || inst.SrcReg[k] == -1 {
				continue
			}
			rf := e.regFile[inst.SrcReg[k]]
			if rf.Tag == inst.SrcTag[k] && rf.Ready {
				inst.SrcReady[k] = true
			}
		}
	}
}

// dispatchBaseline implements §4.9 for baseline mode: no ROB, and every
// non-absent source counts as a register-file hit (there is no ROB to
// alternatively attribute it to).
func (e *Engine) dispatchBaseline() {
	for len(e.dq) > 0 && len(e.sq) < e.cfg.SQCapacity() {
		idx := e.dq[0]
		e.dq = e.dq[1:]
		inst := e.instructions[idx]
		inst.State = StateDispatched
		inst.SchedCycle = e.cycle + 1

		e.renameSources(inst)
		e.countRegHits(inst)
		e.allocateDestTag(inst)

		e.sq = append(e.sq, idx)
		e.logger.Log(e.cycle, "DISPATCHED", fmt.Sprint(inst.Tag))
	}
	e.rereadSources()
}

// dispatchROB implements §4.9 for ROB mode: in addition to the baseline
// rename, it pushes the instruction into the ROB (kept sorted by tag,
// defensively — dispatch already pops the DQ in program order so this is
// normally a no-op) and attributes each source to either the register
// file or a younger ROB producer, for accounting only.
func (e *Engine) dispatchROB() {
	for len(e.dq) > 0 && len(e.sq) < e.cfg.SQCapacity() {
		idx := e.dq[0]
		e.dq = e.dq[1:]
		inst := e.instructions[idx]
		inst.State = StateDispatched
		inst.SchedCycle = e.cycle + 1

		e.renameSources(inst)
		e.countROBHits(inst)
		e.allocateDestTag(inst)

		e.sq = append(e.sq, idx)
		e.rob = append(e.rob, idx)
		sort.SliceStable(e.rob, func(i, j int) bool {
			return e.instructions[e.rob[i]].Tag < e.instructions[e.rob[j]].Tag
		})
		e.logger.Log(e.cycle, "DISPATCHED", fmt.Sprint(inst.Tag))
	}
	e.rereadSources()
}

// dispatchCPR implements §4.9 for CPR mode: same accounting as baseline
// (there is no ROB), plus a write-through into the not-yet-committed
// backup1 snapshot for any destination register renamed while the
// current checkpoint window is still open, so that backup1 is internally
// consistent once it later becomes backup2.
func (e *Engine) dispatchCPR() {
	threshold := e.ib1Tag()
	for len(e.dq) > 0 && len(e.sq) < e.cfg.SQCapacity() {
		idx := e.dq[0]
		e.dq = e.dq[1:]
		inst := e.instructions[idx]
		inst.State = StateDispatched
		inst.SchedCycle = e.cycle + 1

		e.renameSources(inst)
		e.countRegHits(inst)
		tag := e.allocateDestTag(inst)

		if inst.DestReg >= 0 && inst.Tag <= threshold {
			e.backup1[inst.DestReg] = RegEntry{Tag: tag, Ready: false}
		}

		e.sq = append(e.sq, idx)
		e.logger.Log(e.cycle, "DISPATCHED", fmt.Sprint(inst.Tag))
	}
	e.rereadSources()
}

// countRegHits counts every real source as a register-file hit: the sole
// rename source available in modes without a ROB.
func (e *Engine) countRegHits(inst *Instruction) {
	for k := 0; k < 2; k++ {
		if inst.SrcReg[k] != -1 {
			e.regHitCount++
		}
	}
}

// countROBHits attributes each real source to either the register file
// or a younger ROB producer of the same architectural register, scanning
// the ROB in reverse. This is accounting only — §4.9 is explicit that the
// actual source tag always comes from the register file.
func (e *Engine) countROBHits(inst *Instruction) {
	for k := 0; k < 2; k++ {
		s := inst.SrcReg[k]
		if s == -1 {
			continue
		}
		found := false
		for j := len(e.rob) - 1; j >= 0; j-- {
			if e.instructions[e.rob[j]].DestReg == s {
				found = true
				break
			}
		}
		if found {
			e.robHitCount++
		} else {
			e.regHitCount++
		}
	}
}
