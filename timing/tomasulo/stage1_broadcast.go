package tomasulo

import (
	"fmt"
	"sort"
)

// broadcast implements §4.3: sort the scoreboard for arbitration, drive up
// to R result buses, advance stalled entries to EXECUTED, promote
// matching SQ entries to COMPLETED, and update the register file from
// whatever was actually broadcast this cycle. S1 is identical across all
// three modes.
func (e *Engine) broadcast() {
	sort.SliceStable(e.sb, func(i, j int) bool {
		a, b := e.instructions[e.sb[i]], e.instructions[e.sb[j]]
		if a.FiredCycle != b.FiredCycle {
			return a.FiredCycle < b.FiredCycle
		}
		return a.Tag < b.Tag
	})

	for i := range e.buses {
		e.buses[i] = Bus{}
	}

	busesUsed := 0
	stuck := e.sb[:0]
	for _, idx := range e.sb {
		inst := e.instructions[idx]
		if busesUsed < len(e.buses) {
			e.buses[busesUsed] = Bus{Occupied: true, InstIdx: idx, DestTag: inst.DestTag}
			busesUsed++
			e.kBusy[inst.FU]--
			if inst.State != StateExecuted {
				inst.State = StateExecuted
			}
			e.logger.Log(e.cycle, "BROADCASTED", fmt.Sprint(inst.Tag))
			continue
		}
		if inst.State == StateFired {
			inst.State = StateExecuted
			e.logger.Log(e.cycle, "EXECUTED", fmt.Sprint(inst.Tag))
		}
		stuck = append(stuck, idx)
	}
	e.sb = stuck

	for _, idx := range e.sq {
		inst := e.instructions[idx]
		if inst.State != StateExecuted {
			continue
		}
		for _, bus := range e.buses {
			if bus.Occupied && e.instructions[bus.InstIdx].Tag == inst.Tag {
				inst.State = StateCompleted
				break
			}
		}
	}

	for _, bus := range e.buses {
		if !bus.Occupied {
			continue
		}
		for i := range e.regFile {
			if e.regFile[i].Tag == bus.DestTag {
				e.regFile[i].Ready = true
				break
			}
		}
	}
}
