package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TextSource reads a plain-text trace: one instruction per line, five
// whitespace-separated fields "address op_code dest_reg src_reg0 src_reg1"
// (address in hex, the rest decimal; -1 marks an absent register). Blank
// lines and lines starting with '#' are skipped. This is the on-disk format
// the CLI accepts for traces that did not come from an ELF binary.
type TextSource struct {
	scanner *bufio.Scanner
	line    int
}

// NewTextSource wraps r as a trace source, reading lazily one line per
// call to Next.
func NewTextSource(r io.Reader) *TextSource {
	return &TextSource{scanner: bufio.NewScanner(r)}
}

// Next implements tomasulo.Source.
func (s *TextSource) Next() (Record, bool) {
	for s.scanner.Scan() {
		s.line++
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 5 {
			panic(fmt.Sprintf("trace: line %d: expected 5 fields, got %d: %q", s.line, len(fields), line))
		}

		addr, err := strconv.ParseUint(strings.TrimPrefix(fields[0], "0x"), 16, 64)
		if err != nil {
			panic(fmt.Sprintf("trace: line %d: bad address %q: %v", s.line, fields[0], err))
		}
		op, err := strconv.Atoi(fields[1])
		if err != nil {
			panic(fmt.Sprintf("trace: line %d: bad op_code %q: %v", s.line, fields[1], err))
		}
		dest, err := strconv.Atoi(fields[2])
		if err != nil {
			panic(fmt.Sprintf("trace: line %d: bad dest_reg %q: %v", s.line, fields[2], err))
		}
		src0, err := strconv.Atoi(fields[3])
		if err != nil {
			panic(fmt.Sprintf("trace: line %d: bad src_reg0 %q: %v", s.line, fields[3], err))
		}
		src1, err := strconv.Atoi(fields[4])
		if err != nil {
			panic(fmt.Sprintf("trace: line %d: bad src_reg1 %q: %v", s.line, fields[4], err))
		}

		return Record{
			InstructionAddress: addr,
			OpCode:             op,
			DestReg:            dest,
			SrcReg:             [2]int{src0, src1},
		}, true
	}
	return Record{}, false
}
