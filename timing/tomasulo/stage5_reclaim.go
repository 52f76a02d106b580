package tomasulo

// reclaimSQ implements the SQ half of §4.10: remove every RETIRED entry,
// releasing its slot. The master instructions sequence is never touched
// here — it is needed for the final timing report and for CPR/ROB
// re-fetch. Identical across all three modes.
func (e *Engine) reclaimSQ() {
	filtered := e.sq[:0]
	for _, idx := range e.sq {
		if e.instructions[idx].State != StateRetired {
			filtered = append(filtered, idx)
		}
	}
	e.sq = filtered
}

// reclaimROB implements the ROB half of §4.10: remove every RETIRED entry
// from the ROB. ROB mode only.
func (e *Engine) reclaimROB() {
	filtered := e.rob[:0]
	for _, idx := range e.rob {
		if e.instructions[idx].State != StateRetired {
			filtered = append(filtered, idx)
		}
	}
	e.rob = filtered
}
