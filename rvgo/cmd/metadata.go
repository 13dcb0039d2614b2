package cmd

import (
	"debug/elf"
	"fmt"
	"sort"

	"github.com/ethereum-optimism/amoemu/rvgo/amo"
)

type Symbol struct {
	Name  string `json:"name"`
	Start uint64 `json:"start"`
	Size  uint64 `json:"size"`
}

type Metadata struct {
	Symbols []Symbol `json:"symbols"`
}

func MakeMetadata(elfProgram *elf.File) (*Metadata, error) {
	syms, err := amo.Symbols(elfProgram)
	if err != nil {
		return nil, err
	}
	out := &Metadata{Symbols: make([]Symbol, len(syms))}
	for i, s := range syms {
		out.Symbols[i] = Symbol{Name: s.Name, Start: s.Value, Size: s.Size}
	}
	return out, nil
}

// LookupSymbol names the symbol containing addr, for log output.
func (m *Metadata) LookupSymbol(addr uint64) string {
	if len(m.Symbols) == 0 {
		return "!unknown"
	}
	// find first symbol with higher start. Or n if no such symbol exists
	i := sort.Search(len(m.Symbols), func(i int) bool {
		return m.Symbols[i].Start > addr
	})
	if i == 0 {
		return "!start"
	}
	out := &m.Symbols[i-1]
	if out.Start+out.Size < addr { // addr may be pointing to a gap between symbols
		return "!gap"
	}
	return out.Name
}

func (m *Metadata) String() string {
	return fmt.Sprintf("metadata(%d symbols)", len(m.Symbols))
}
