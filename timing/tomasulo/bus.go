package tomasulo

// Bus is one CDB result-bus slot. Occupied is checked explicitly by
// broadcast and wakeup logic instead of relying on a magic dest-tag value,
// per the re-architecture called for where the source used a dest_tag=∞
// sentinel to mean "this slot carries nothing."
type Bus struct {
	Occupied bool
	InstIdx  int
	DestTag  uint64
}
