package amo

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/amoemu/rvgo/riscv"
)

func TestFetchInstr(t *testing.T) {
	insn := EncodeAtomic(riscv.SelAMOMAXU, 31, 17, 9, riscv.Funct3Double) | 1<<26

	t.Run("aligned", func(t *testing.T) {
		m := NewMemory()
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], insn)
		m.SetUnaligned(0x2000, b[:])
		require.Equal(t, insn, FetchInstr(m, 0x2000))
	})

	t.Run("straddling", func(t *testing.T) {
		m := NewMemory()
		// a compressed nop before, and another after
		m.SetUnaligned(0x2000, []byte{0x01, 0x00})
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], insn)
		m.SetUnaligned(0x2002, b[:])
		m.SetUnaligned(0x2006, []byte{0x01, 0x00})
		require.Equal(t, insn, FetchInstr(m, 0x2002))
		require.Equal(t, insn>>24, FetchInstr(m, 0x2002)>>24, "high byte is reconstructed")
	})

	t.Run("straddling page boundary", func(t *testing.T) {
		m := NewMemory()
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], insn)
		m.SetUnaligned(PageSize-2, b[:])
		require.Equal(t, insn, FetchInstr(m, PageSize-2))
	})

	t.Run("sources agree", func(t *testing.T) {
		m := NewMemory()
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], insn)
		m.SetUnaligned(0x3006, b[:])
		require.Equal(t, Instr(insn).Instr(m), PC(0x3006).Instr(m))
	})

	t.Run("every offset", func(t *testing.T) {
		m := NewMemory()
		m.SetUnaligned(0x4000, []byte{0, 1, 2, 3, 4, 5, 6, 7})
		for off := uint64(0); off < 4; off++ {
			expected := uint32(off) | uint32(off+1)<<8 | uint32(off+2)<<16 | uint32(off+3)<<24
			require.Equalf(t, expected, FetchInstr(m, 0x4000+off), "offset %d", off)
		}
	})
}

type countingMem struct {
	*Memory
	fetches int
}

func (c *countingMem) LoadInstrWord(addr U64) uint32 {
	c.fetches++
	return c.Memory.LoadInstrWord(addr)
}

func TestFetchInstrReads(t *testing.T) {
	m := &countingMem{Memory: NewMemory()}
	FetchInstr(m, 0x100)
	require.Equal(t, 1, m.fetches, "aligned fetch reads one word")
	FetchInstr(m, 0x102)
	require.Equal(t, 3, m.fetches, "misaligned fetch reads two words")
	Instr(0).Instr(m)
	require.Equal(t, 3, m.fetches, "raw instruction source does not touch memory")
}
