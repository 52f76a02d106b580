package tomasulo

import "fmt"

// fetch implements §4.8: attempt to fetch F instructions this cycle,
// favoring an in-progress recovery re-fetch over new trace records.
// assignExceptions is false in baseline mode, where there is no recovery
// scheme to exercise.
func (e *Engine) fetch(assignExceptions bool) {
	for i := 0; i < e.cfg.F; i++ {
		if e.trailingTag < e.nextFetchTag {
			e.refetch()
			continue
		}
		if !e.fetchFresh(assignExceptions) {
			break
		}
	}

	if len(e.dq) > e.dqMaxSize {
		e.dqMaxSize = len(e.dq)
	}
	e.dqSizeSum += uint64(len(e.dq))
}

// refetch re-uses the existing instruction record at the tag the
// recovery rolled back to, resetting only its transient fields. Tags are
// dense and assigned in fetch order, so the record for tag t always sits
// at index t-1 in the master sequence.
func (e *Engine) refetch() {
	idx := int(e.trailingTag) - 1
	inst := e.instructions[idx]
	inst.reset()
	inst.FetchCycle = e.cycle
	inst.DispCycle = e.cycle + 1
	e.dq = append(e.dq, idx)
	e.logger.Log(e.cycle, "RE-FETCHED", fmt.Sprint(inst.Tag))
	e.trailingTag++
}

// fetchFresh pulls the next record from the trace source and appends a
// new instruction record. It reports whether a record was produced.
func (e *Engine) fetchFresh(assignExceptions bool) bool {
	rec, ok := e.source.Next()
	if !ok {
		return false
	}

	fu := absOpCode(rec.OpCode)
	if fu > 2 {
		panic(fmt.Sprintf("tomasulo: trace source produced invalid function-unit class %d (op_code=%d)", fu, rec.OpCode))
	}

	tag := e.nextFetchTag
	e.nextFetchTag++
	// No recovery is pending: trailingTag stays caught up to nextFetchTag
	// so the next fetch() call takes this branch again instead of
	// spuriously re-reading an already-retired record.
	e.trailingTag = e.nextFetchTag

	exception := assignExceptions && e.cfg.E != 0 && tag%e.cfg.E == 0

	inst := &Instruction{
		Index:      len(e.instructions),
		Tag:        tag,
		FU:         fu,
		DestReg:    rec.DestReg,
		SrcReg:     rec.SrcReg,
		DestTag:    NoDestTag,
		Exception:  exception,
		State:      StateFetched,
		FetchCycle: e.cycle,
		DispCycle:  e.cycle + 1,
	}
	e.instructions = append(e.instructions, inst)
	e.dq = append(e.dq, inst.Index)
	e.logger.Log(e.cycle, "FETCHED", fmt.Sprint(inst.Tag))
	return true
}
