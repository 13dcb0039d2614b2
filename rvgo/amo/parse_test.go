package amo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/amoemu/rvgo/riscv"
)

func TestIsAtomic(t *testing.T) {
	t.Run("atomic opcode", func(t *testing.T) {
		for _, insn := range []uint32{0x2F, 0x1002A2AF, 0xFFFFFFAF, EncodeAtomic(riscv.SelLR, 1, 2, 0, riscv.Funct3Double)} {
			require.Truef(t, IsAtomic(insn), "insn %08x", insn)
		}
	})
	t.Run("other opcodes", func(t *testing.T) {
		for opcode := uint32(0); opcode < 0x80; opcode++ {
			if opcode == riscv.OpcodeAtomic {
				continue
			}
			for _, rest := range []uint32{0, 0xFFFFFF80, 0x1002A280, 0x8000_0000} {
				insn := rest | opcode
				require.Falsef(t, IsAtomic(insn), "insn %08x", insn)
			}
		}
	})
}

func TestDecode(t *testing.T) {
	// amoadd.d.aqrl x5, x7, (x10)
	insn := EncodeAtomic(riscv.SelAMOADD, 5, 10, 7, riscv.Funct3Double) | 3<<25
	f := Decode(insn)
	require.Equal(t, Fields{Selector: riscv.SelAMOADD, Rd: 5, Rs1: 10, Rs2: 7, Funct3: riscv.Funct3Double, Aq: true, Rl: true}, f)
	op, ok := f.Op()
	require.True(t, ok)
	require.Equal(t, OpAdd, op)
	require.Equal(t, "amoadd x5, x7, (x10)", f.String())

	t.Run("register bounds", func(t *testing.T) {
		f := Decode(0xFFFFFFFF)
		require.Equal(t, uint8(31), f.Rd)
		require.Equal(t, uint8(31), f.Rs1)
		require.Equal(t, uint8(31), f.Rs2)
		require.Equal(t, uint8(31), f.Selector)
		_, ok := f.Op()
		require.False(t, ok)
	})

	t.Run("lr format", func(t *testing.T) {
		f := Decode(EncodeAtomic(riscv.SelLR, 12, 13, 0, riscv.Funct3Word))
		require.Equal(t, "lr x12, (x13)", f.String())
		require.False(t, f.Aq)
		require.False(t, f.Rl)
	})
}

func TestEncodeAtomicKnownWords(t *testing.T) {
	// values as produced by a RISC-V assembler
	require.Equal(t, uint32(0x1005272f), EncodeAtomic(riscv.SelLR, 14, 10, 0, riscv.Funct3Word))   // lr.w a4, (a0)
	require.Equal(t, uint32(0x18c5272f), EncodeAtomic(riscv.SelSC, 14, 10, 12, riscv.Funct3Word))  // sc.w a4, a2, (a0)
	require.Equal(t, uint32(0x00b5302f), EncodeAtomic(riscv.SelAMOADD, 0, 10, 11, riscv.Funct3Double)) // amoadd.d zero, a1, (a0)
}
