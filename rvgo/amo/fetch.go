package amo

import "github.com/ethereum-optimism/amoemu/rvgo/riscv"

// FetchInstr reads the 32-bit instruction at pc. Instructions are only 2-byte aligned
// when the C extension is present, so a 4-byte instruction may straddle two aligned words.
// Both words are read and the instruction is spliced out of them, little-endian.
func FetchInstr(mem InstrMemory, pc U64) uint32 {
	aligned := and64(pc, ^U64(riscv.InstrSize-1))
	offset := pc - aligned
	if iszero64(offset) {
		return mem.LoadInstrWord(aligned)
	}
	lo := U64(mem.LoadInstrWord(aligned))
	hi := U64(mem.LoadInstrWord(add64(aligned, riscv.InstrSize)))
	buf := or64(shl64(toU64(32), hi), lo)
	return uint32(and64(shr64(shl64(toU64(3), offset), buf), u32Mask()))
}

// Source is the step that obtains the instruction word to emulate.
type Source interface {
	Instr(mem InstrMemory) uint32
}

// Instr is an already fetched instruction word. It never touches memory.
type Instr uint32

func (i Instr) Instr(InstrMemory) uint32 {
	return uint32(i)
}

// PC is the address of the faulting instruction, fetched with FetchInstr.
type PC U64

func (pc PC) Instr(mem InstrMemory) uint32 {
	return FetchInstr(mem, U64(pc))
}
