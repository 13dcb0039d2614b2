package amo

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
)

// Hart is the execution context that owns a reservation. One Hart per hardware thread.
// Unlike Emulate, Step reports memory faults as errors, for tooling and tests.
type Hart struct {
	res *Reservation
	mem Bus
	log log.Logger

	emulated uint64
	declined uint64
	last     uint32
}

// NewHart returns a Hart operating on mem. If res is nil the Hart starts with its own Free reservation.
func NewHart(res *Reservation, mem Bus, l log.Logger) *Hart {
	if res == nil {
		res = new(Reservation)
	}
	if l == nil {
		l = log.Root()
	}
	return &Hart{res: res, mem: mem, log: l}
}

func (h *Hart) Reservation() *Reservation {
	return h.res
}

// Stats returns how many instructions were emulated and declined.
func (h *Hart) Stats() (emulated, declined uint64) {
	return h.emulated, h.declined
}

// Step emulates the instruction obtained from src. A memory fault raised by the Bus
// is returned as an error wrapping the *MemoryFault; any other panic is re-raised.
func (h *Hart) Step(src Source, frame *Frame) (handled bool, outErr error) {
	defer func() {
		if r := recover(); r != nil {
			var fault *MemoryFault
			if err, ok := r.(error); ok && errors.As(err, &fault) {
				handled = false
				outErr = fmt.Errorf("emulation aborted: %w", err)
				return
			}
			panic(r)
		}
	}()

	insn := src.Instr(h.mem)
	h.last = insn
	handled = EmulateInstr(insn, frame, h.res, h.mem)
	if !handled {
		h.declined++
		h.log.Debug("declined instruction", "insn", hexutil.Uint64(insn), "atomic", IsAtomic(insn))
		return false, nil
	}
	h.emulated++
	f := Decode(insn)
	addr, reserved := h.res.Reserved()
	h.log.Trace("emulated instruction",
		"insn", hexutil.Uint64(insn),
		"op", f,
		"rd", hexutil.Uint64(frame[f.Rd]),
		"reserved", reserved,
		"reservation", hexutil.Uint64(addr),
	)
	return true, nil
}

// LastInstr returns the instruction word of the most recent Step that got past fetching.
func (h *Hart) LastInstr() uint32 {
	return h.last
}

// StepInstr and StepAt are the two trap entry shapes.
func (h *Hart) StepInstr(insn uint32, frame *Frame) (bool, error) {
	return h.Step(Instr(insn), frame)
}

func (h *Hart) StepAt(pc U64, frame *Frame) (bool, error) {
	return h.Step(PC(pc), frame)
}
