package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/nf/icvm/intcode"
)

// location names a memory cell, either absolutely or relative to the
// machine's relative base at the time it is resolved.
type location struct {
	addr int
	rel  bool
}

// parseLocation parses a decimal or 0x-prefixed address,
// or "rb", "rb+N" or "rb-N" for an address relative to the base.
func parseLocation(s string) (location, bool) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "rb"); ok {
		if rest == "" {
			return location{rel: true}, true
		}
		if rest[0] != '+' && rest[0] != '-' {
			return location{}, false
		}
		n, err := strconv.ParseInt(rest, 0, 64)
		if err != nil {
			return location{}, false
		}
		return location{addr: int(n), rel: true}, true
	}
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil || n < 0 {
		return location{}, false
	}
	return location{addr: int(n)}, true
}

// resolve returns the absolute address of l in m.
func (l location) resolve(m *intcode.Machine) int {
	if l.rel {
		return int(m.Base) + l.addr
	}
	return l.addr
}

func (l location) String() string {
	switch {
	case !l.rel:
		return strconv.Itoa(l.addr)
	case l.addr < 0:
		return fmt.Sprintf("rb%d", l.addr)
	default:
		return fmt.Sprintf("rb+%d", l.addr)
	}
}

// patch is a set of memory cells to overwrite before a program runs.
type patch map[int]int64

// parsePatch parses a comma-separated list of addr=value pairs.
func parsePatch(s string) (patch, error) {
	p := patch{}
	if strings.TrimSpace(s) == "" {
		return p, nil
	}
	for _, f := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid patch %q: want addr=value", f)
		}
		l, ok := parseLocation(k)
		if !ok || l.rel {
			return nil, fmt.Errorf("invalid patch address %q", k)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid patch value %q: %v", v, err)
		}
		p[l.addr] = n
	}
	return p, nil
}

// apply writes the patched cells into m's memory. Cells past the end of
// memory are ignored, with a warning.
func (p patch) apply(m *intcode.Machine) {
	for addr, v := range p {
		if addr >= len(m.Mem) {
			log.Printf("patch: address %d beyond end of program (%d cells)", addr, len(m.Mem))
			continue
		}
		m.Mem[addr] = v
	}
}

// peek returns the cell at addr, or zero if addr is outside memory.
func peek(m *intcode.Machine, addr int) int64 {
	if addr < 0 || addr >= len(m.Mem) {
		return 0
	}
	return m.Mem[addr]
}
