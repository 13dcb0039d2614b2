package amo

import (
	"fmt"

	"github.com/ethereum-optimism/amoemu/rvgo/riscv"
)

// Functions to parse the instruction fields of an R-type atomic instruction.
// Register indices are 5 bits wide by encoding, so no range validation is needed.

func parseOpcode(instr U64) U64 {
	return and64(instr, toU64(riscv.OpcodeMask))
}

func parseRd(instr U64) U64 {
	return and64(shr64(toU64(7), instr), toU64(riscv.RegMask))
}

func parseFunct3(instr U64) U64 {
	return and64(shr64(toU64(12), instr), toU64(0x7))
}

func parseRs1(instr U64) U64 {
	return and64(shr64(toU64(15), instr), toU64(riscv.RegMask))
}

func parseRs2(instr U64) U64 {
	return and64(shr64(toU64(20), instr), toU64(riscv.RegMask))
}

// parseSelector returns the top 5 bits (funct7 >> 2), selecting LR, SC or one of the AMOs.
func parseSelector(instr U64) U64 {
	return and64(shr64(toU64(27), instr), toU64(riscv.RegMask))
}

func parseRl(instr U64) U64 {
	return and64(shr64(toU64(25), instr), toU64(1))
}

func parseAq(instr U64) U64 {
	return and64(shr64(toU64(26), instr), toU64(1))
}

// IsAtomic reports whether the low 7 bits of insn hold the atomic major opcode.
func IsAtomic(insn uint32) bool {
	return parseOpcode(U64(insn)) == riscv.OpcodeAtomic
}

// Fields are the decoded operands of an atomic instruction.
type Fields struct {
	Selector uint8 `json:"selector"`
	Rd       uint8 `json:"rd"`
	Rs1      uint8 `json:"rs1"`
	Rs2      uint8 `json:"rs2"`
	Funct3   uint8 `json:"funct3"`
	// Aq and Rl are decoded for inspection only. Ordering is not modeled.
	Aq bool `json:"aq"`
	Rl bool `json:"rl"`
}

// Decode extracts the fields of insn. It does not check the opcode.
func Decode(insn uint32) Fields {
	instr := U64(insn)
	return Fields{
		Selector: uint8(parseSelector(instr)),
		Rd:       uint8(parseRd(instr)),
		Rs1:      uint8(parseRs1(instr)),
		Rs2:      uint8(parseRs2(instr)),
		Funct3:   uint8(parseFunct3(instr)),
		Aq:       !iszero64(parseAq(instr)),
		Rl:       !iszero64(parseRl(instr)),
	}
}

// Op returns the operation named by the selector, if it is one of the eleven known ones.
func (f Fields) Op() (Op, bool) {
	return OpFromSelector(f.Selector)
}

func (f Fields) String() string {
	op, ok := f.Op()
	if !ok {
		return fmt.Sprintf("unknown(%05b) x%d, x%d, (x%d)", f.Selector, f.Rd, f.Rs2, f.Rs1)
	}
	switch op {
	case OpLR:
		return fmt.Sprintf("%s x%d, (x%d)", op, f.Rd, f.Rs1)
	default:
		return fmt.Sprintf("%s x%d, x%d, (x%d)", op, f.Rd, f.Rs2, f.Rs1)
	}
}

// EncodeAtomic builds an atomic instruction word. Used by tests and the CLI to construct input.
func EncodeAtomic(selector, rd, rs1, rs2 uint8, width uint8) uint32 {
	return (uint32(selector&riscv.RegMask) << 27) | (uint32(rs2&riscv.RegMask) << 20) |
		(uint32(rs1&riscv.RegMask) << 15) | (uint32(width&0x7) << 12) |
		(uint32(rd&riscv.RegMask) << 7) | riscv.OpcodeAtomic
}
