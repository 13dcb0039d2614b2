package amo

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// State is a trapped context as the CLI and tests see it: the saved registers, the
// faulting pc, the memory image and the hart's reservation.
type State struct {
	Memory *Memory `json:"memory"`

	PC uint64 `json:"pc"`

	Reservation Reservation `json:"reservation"`

	Registers Frame `json:"registers"`

	// Emulated and Declined count the traps handled and passed on.
	Emulated uint64 `json:"emulated"`
	Declined uint64 `json:"declined"`
}

func NewState() *State {
	return &State{
		Memory: NewMemory(),
	}
}

// Instr returns the instruction word at the current pc.
func (s *State) Instr() uint32 {
	return FetchInstr(s.Memory, s.PC)
}

// MemoryHash commits to the memory contents, page by page in ascending order.
func (s *State) MemoryHash() common.Hash {
	h := crypto.NewKeccakState()
	if err := s.Memory.Serialize(h); err != nil {
		panic(fmt.Errorf("hashing memory: %w", err))
	}
	var out common.Hash
	_, _ = h.Read(out[:])
	return out
}

const (
	witnessSizeMemRoot     = 32
	witnessSizePC          = 8
	witnessSizeReservation = 8 + 1
	witnessSizeCounters    = 8 * 2
	witnessSizeRegisters   = 8 * 32
	WitnessSize            = witnessSizeMemRoot + witnessSizePC + witnessSizeReservation + witnessSizeCounters + witnessSizeRegisters
)

type StateWitness []byte

func (s *State) EncodeWitness() StateWitness {
	out := make([]byte, 0, WitnessSize)
	memRoot := s.MemoryHash()
	out = append(out, memRoot[:]...)
	out = binary.BigEndian.AppendUint64(out, s.PC)
	out = binary.BigEndian.AppendUint64(out, s.Reservation.Addr)
	if s.Reservation.Valid {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	out = binary.BigEndian.AppendUint64(out, s.Emulated)
	out = binary.BigEndian.AppendUint64(out, s.Declined)
	for _, r := range s.Registers {
		out = binary.BigEndian.AppendUint64(out, r)
	}
	return out
}

func (sw StateWitness) StateHash() (common.Hash, error) {
	if len(sw) != WitnessSize {
		return common.Hash{}, fmt.Errorf("invalid witness length: expected %d but got %d", WitnessSize, len(sw))
	}
	return crypto.Keccak256Hash(sw), nil
}
