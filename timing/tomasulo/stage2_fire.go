package tomasulo

import "fmt"

// fire implements §4.2: a single greedy pass over the SQ in program
// order, firing every DISPATCHED entry whose sources are both ready and
// whose function unit has spare capacity. S2 is identical across all
// three modes.
func (e *Engine) fire() {
	for _, idx := range e.sq {
		inst := e.instructions[idx]
		if inst.State != StateDispatched {
			continue
		}
		if !inst.SrcReady[0] || !inst.SrcReady[1] {
			continue
		}
		if e.kBusy[inst.FU] >= e.cfg.FUCapacity(inst.FU) {
			continue
		}
		inst.State = StateFired
		inst.FiredCycle = e.cycle
		inst.ExecCycle = e.cycle + 1
		e.kBusy[inst.FU]++
		e.sb = append(e.sb, idx)
		e.firedCount++
		e.logger.Log(e.cycle, "SCHEDULED", fmt.Sprint(inst.Tag))
	}
}
