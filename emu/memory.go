package emu

// pageSize is the granularity at which Memory allocates backing storage.
const pageSize = 4096

// Memory is a byte-addressable ARM64 virtual address space. Pages are
// allocated lazily on first touch, so a sparse address space (code near
// the ELF load address, a stack near the top of the 48-bit space) never
// requires allocating everything in between. An untouched address reads
// as zero, which gives BSS zero-fill for free.
type Memory struct {
	pages map[uint64][]byte
}

// NewMemory creates an empty address space.
func NewMemory() *Memory {
	return &Memory{pages: make(map[uint64][]byte)}
}

func (m *Memory) page(addr uint64) []byte {
	base := addr &^ uint64(pageSize-1)
	p, ok := m.pages[base]
	if !ok {
		p = make([]byte, pageSize)
		m.pages[base] = p
	}
	return p
}

// Read8 reads a single byte.
func (m *Memory) Read8(addr uint64) uint8 {
	return m.page(addr)[addr&(pageSize-1)]
}

// Write8 writes a single byte.
func (m *Memory) Write8(addr uint64, v uint8) {
	m.page(addr)[addr&(pageSize-1)] = v
}

// Read16 reads a little-endian halfword.
func (m *Memory) Read16(addr uint64) uint16 {
	return uint16(m.Read8(addr)) | uint16(m.Read8(addr+1))<<8
}

// Write16 writes a little-endian halfword.
func (m *Memory) Write16(addr uint64, v uint16) {
	m.Write8(addr, uint8(v))
	m.Write8(addr+1, uint8(v>>8))
}

// Read32 reads a little-endian word.
func (m *Memory) Read32(addr uint64) uint32 {
	var v uint32
	for i := uint64(0); i < 4; i++ {
		v |= uint32(m.Read8(addr+i)) << (8 * i)
	}
	return v
}

// Write32 writes a little-endian word.
func (m *Memory) Write32(addr uint64, v uint32) {
	for i := uint64(0); i < 4; i++ {
		m.Write8(addr+i, uint8(v>>(8*i)))
	}
}

// Read64 reads a little-endian doubleword.
func (m *Memory) Read64(addr uint64) uint64 {
	var v uint64
	for i := uint64(0); i < 8; i++ {
		v |= uint64(m.Read8(addr+i)) << (8 * i)
	}
	return v
}

// Write64 writes a little-endian doubleword.
func (m *Memory) Write64(addr uint64, v uint64) {
	for i := uint64(0); i < 8; i++ {
		m.Write8(addr+i, uint8(v>>(8*i)))
	}
}

// LoadProgram copies data into memory starting at addr. It is the
// backing implementation for Emulator.LoadProgram's []byte case.
func (m *Memory) LoadProgram(addr uint64, data []byte) {
	for i, b := range data {
		m.Write8(addr+uint64(i), b)
	}
}
