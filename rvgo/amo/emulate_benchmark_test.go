package amo

import (
	"encoding/binary"
	"testing"

	"github.com/ethereum-optimism/amoemu/rvgo/riscv"
)

func BenchmarkEmulate(b *testing.B) {
	insn := EncodeAtomic(riscv.SelAMOADD, regA4, regA0, regA1, riscv.Funct3Double)
	m := NewMemory()
	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], insn)
	m.SetUnaligned(0x1002, raw[:])

	var frame Frame
	var res Reservation
	frame[regA0] = 0x8000
	frame[regA1] = 1

	b.Run("instr", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			EmulateInstr(insn, &frame, &res, m)
		}
	})
	b.Run("misaligned pc", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			EmulateAt(0x1002, &frame, &res, m)
		}
	})
}
