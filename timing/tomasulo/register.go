package tomasulo

// RegEntry is one architectural register-file slot: the tag of its current
// producer and whether that producer's result has been broadcast.
type RegEntry struct {
	Tag   uint64
	Ready bool
}

// RegisterFile is the fixed 128-entry architectural register file.
type RegisterFile [128]RegEntry

// newRegisterFile returns a RegisterFile in its initial state: entry i has
// tag i and is ready.
func newRegisterFile() RegisterFile {
	var rf RegisterFile
	for i := range rf {
		rf[i] = RegEntry{Tag: uint64(i), Ready: true}
	}
	return rf
}
