package amo

import "github.com/ethereum-optimism/amoemu/rvgo/riscv"

// Frame is the saved integer register file of a trapped context, indexed by register number.
// Slot 0 is not special-cased: callers discard writes to x0 or never route rd=x0 here.
type Frame = [riscv.RegisterCount]U64

// Bus is the memory an emulated instruction is fetched from and operates on.
type Bus interface {
	WordMemory
	InstrMemory
}

// Emulate runs one atomic instruction, obtained from src, against frame and mem.
// The caller advances the resuming pc only when true is returned.
func Emulate(src Source, frame *Frame, res *Reservation, mem Bus) bool {
	return EmulateInstr(src.Instr(mem), frame, res, mem)
}

// EmulateAt fetches the instruction at pc and emulates it.
func EmulateAt(pc U64, frame *Frame, res *Reservation, mem Bus) bool {
	return EmulateInstr(FetchInstr(mem, pc), frame, res, mem)
}

// EmulateInstr emulates an already fetched instruction word.
// It returns false, without touching frame, res or memory, if the instruction is not an
// atomic one or its operation selector is unknown.
//
// EmulateInstr is not atomic with respect to other harts: it assumes nothing else observes or
// modifies memory between the load and the store of a read-modify-write.
func EmulateInstr(insn uint32, frame *Frame, res *Reservation, mem WordMemory) bool {
	if !IsAtomic(insn) {
		return false
	}
	instr := U64(insn)
	rd := parseRd(instr)
	rs1 := parseRs1(instr)
	rs2 := parseRs2(instr)

	op, ok := OpFromSelector(uint8(parseSelector(instr)))
	if !ok {
		return false
	}

	// acquire and release bits are a no-op: there is no pipeline of mem ops to order.
	addr := frame[rs1]
	switch op {
	case OpLR:
		v := mem.LoadWord(addr)
		res.Reserve(addr)
		frame[rd] = v
	case OpSC:
		rdValue := riscv.SCFailure
		if res.Consume(addr) {
			mem.StoreWord(addr, frame[rs2])
			rdValue = riscv.SCSuccess
		}
		frame[rd] = rdValue
	default:
		frame[rd] = opMem(mem, op, addr, frame[rs2])
	}
	return true
}
