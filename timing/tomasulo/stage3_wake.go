package tomasulo

// wake implements §4.4: every occupied bus is snooped against the
// not-yet-ready source-tag fields of every DISPATCHED SQ entry. A
// broadcast in cycle t cannot cause a fire in the same cycle since S2
// already ran this cycle; the wakeup only takes effect starting cycle
// t+1. S3 is identical across all three modes.
func (e *Engine) wake() {
	for _, bus := range e.buses {
		if !bus.Occupied {
			continue
		}
		for _, idx := range e.sq {
			inst := e.instructions[idx]
			if inst.State != StateDispatched {
				continue
			}
			for k := 0; k < 2; k++ {
				if !inst.SrcReady[k] && inst.SrcTag[k] == bus.DestTag {
					inst.SrcReady[k] = true
				}
			}
		}
	}
}
