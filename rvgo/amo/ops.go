package amo

import (
	"fmt"

	"github.com/ethereum-optimism/amoemu/rvgo/riscv"
)

// Op is one of the eleven operations of the atomic opcode class.
type Op uint8

const (
	OpLR Op = iota
	OpSC
	OpSwap
	OpAdd
	OpXor
	OpAnd
	OpOr
	OpMin
	OpMax
	OpMinu
	OpMaxu
)

var opNames = [...]string{
	OpLR:   "lr",
	OpSC:   "sc",
	OpSwap: "amoswap",
	OpAdd:  "amoadd",
	OpXor:  "amoxor",
	OpAnd:  "amoand",
	OpOr:   "amoor",
	OpMin:  "amomin",
	OpMax:  "amomax",
	OpMinu: "amominu",
	OpMaxu: "amomaxu",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// IsAMO reports whether op is a read-modify-write, as opposed to LR or SC.
func (op Op) IsAMO() bool {
	return op >= OpSwap && op <= OpMaxu
}

// OpFromSelector maps a 5-bit selector to its operation.
func OpFromSelector(sel uint8) (Op, bool) {
	switch sel {
	case riscv.SelLR:
		return OpLR, true
	case riscv.SelSC:
		return OpSC, true
	case riscv.SelAMOSWAP:
		return OpSwap, true
	case riscv.SelAMOADD:
		return OpAdd, true
	case riscv.SelAMOXOR:
		return OpXor, true
	case riscv.SelAMOAND:
		return OpAnd, true
	case riscv.SelAMOOR:
		return OpOr, true
	case riscv.SelAMOMIN:
		return OpMin, true
	case riscv.SelAMOMAX:
		return OpMax, true
	case riscv.SelAMOMINU:
		return OpMinu, true
	case riscv.SelAMOMAXU:
		return OpMaxu, true
	default:
		return 0, false
	}
}

// Selector is the inverse of OpFromSelector.
func (op Op) Selector() uint8 {
	switch op {
	case OpLR:
		return riscv.SelLR
	case OpSC:
		return riscv.SelSC
	case OpSwap:
		return riscv.SelAMOSWAP
	case OpAdd:
		return riscv.SelAMOADD
	case OpXor:
		return riscv.SelAMOXOR
	case OpAnd:
		return riscv.SelAMOAND
	case OpOr:
		return riscv.SelAMOOR
	case OpMin:
		return riscv.SelAMOMIN
	case OpMax:
		return riscv.SelAMOMAX
	case OpMinu:
		return riscv.SelAMOMINU
	case OpMaxu:
		return riscv.SelAMOMAXU
	default:
		panic(fmt.Errorf("no selector for %s", op))
	}
}

// Apply computes the new memory word of an AMO from the old word and the rs2 operand.
// It panics for LR and SC, which are not read-modify-writes.
func (op Op) Apply(old, operand U64) U64 {
	v := old
	switch op {
	case OpSwap:
		v = operand
	case OpAdd:
		v = add64(v, operand)
	case OpXor:
		v = xor64(v, operand)
	case OpAnd:
		v = and64(v, operand)
	case OpOr:
		v = or64(v, operand)
	case OpMin:
		if slt64(operand, v) != 0 {
			v = operand
		}
	case OpMax:
		if sgt64(operand, v) != 0 {
			v = operand
		}
	case OpMinu:
		if lt64(operand, v) != 0 {
			v = operand
		}
	case OpMaxu:
		if gt64(operand, v) != 0 {
			v = operand
		}
	default:
		panic(fmt.Errorf("unrecognized mem op: %s", op))
	}
	return v
}

// opMem performs the read-modify-write of an AMO and returns the old word for rd.
func opMem(mem WordMemory, op Op, addr U64, operand U64) U64 {
	out := mem.LoadWord(addr)
	mem.StoreWord(addr, op.Apply(out, operand))
	return out
}
