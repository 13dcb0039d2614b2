package amo

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/amoemu/rvgo/riscv"
)

func testLogger() log.Logger {
	return log.NewLogger(log.DiscardHandler())
}

func TestHartStep(t *testing.T) {
	m := NewMemory()
	h := NewHart(nil, m, testLogger())

	var frame Frame
	frame[regA0] = 0x1000
	frame[regA2] = 9

	handled, err := h.StepInstr(EncodeAtomic(riscv.SelLR, regA4, regA0, 0, riscv.Funct3Word), &frame)
	require.NoError(t, err)
	require.True(t, handled)
	addr, ok := h.Reservation().Reserved()
	require.True(t, ok)
	require.Equal(t, U64(0x1000), addr)

	handled, err = h.StepInstr(0x00000013, &frame) // nop
	require.NoError(t, err)
	require.False(t, handled)
	require.Equal(t, uint32(0x00000013), h.LastInstr())

	handled, err = h.StepInstr(EncodeAtomic(riscv.SelSC, regA4, regA0, regA2, riscv.Funct3Word), &frame)
	require.NoError(t, err)
	require.True(t, handled)
	require.Equal(t, riscv.SCSuccess, frame[regA4])
	require.Equal(t, U64(9), m.LoadWord(0x1000))

	emulated, declined := h.Stats()
	require.Equal(t, uint64(2), emulated)
	require.Equal(t, uint64(1), declined)
}

func TestHartSharedReservation(t *testing.T) {
	var res Reservation
	h := NewHart(&res, NewMemory(), testLogger())
	var frame Frame
	frame[regA0] = 0x40
	_, err := h.StepInstr(EncodeAtomic(riscv.SelLR, regA4, regA0, 0, riscv.Funct3Double), &frame)
	require.NoError(t, err)
	require.Equal(t, Reservation{Addr: 0x40, Valid: true}, res, "hart writes through to the caller's reservation")
}

func TestHartStepAt(t *testing.T) {
	m := NewMemory()
	insn := EncodeAtomic(riscv.SelAMOOR, regA4, regA0, regA1, riscv.Funct3Double)
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], insn)
	m.SetUnaligned(0x1002, b[:])
	m.StoreWord(0x2000, 0xF0)

	h := NewHart(nil, m, testLogger())
	var frame Frame
	frame[regA0] = 0x2000
	frame[regA1] = 0x0F
	handled, err := h.StepAt(0x1002, &frame)
	require.NoError(t, err)
	require.True(t, handled)
	require.Equal(t, U64(0xFF), m.LoadWord(0x2000))
	require.Equal(t, U64(0xF0), frame[regA4])
}

func TestHartMemoryFault(t *testing.T) {
	m := NewStrictMemory()
	require.NoError(t, m.SetMemoryRange(0x1000, bytes.NewReader(make([]byte, 8))))
	h := NewHart(nil, m, testLogger())

	t.Run("data access", func(t *testing.T) {
		var frame Frame
		frame[regA0] = 0x9000
		frame[regA1] = 1
		before := frame
		handled, err := h.StepInstr(EncodeAtomic(riscv.SelAMOADD, regA4, regA0, regA1, riscv.Funct3Double), &frame)
		require.False(t, handled)
		var fault *MemoryFault
		require.True(t, errors.As(err, &fault))
		require.Equal(t, U64(0x9000), fault.Addr)
		require.Equal(t, before, frame, "faulting load leaves the frame untouched")
	})

	t.Run("lr fault does not reserve", func(t *testing.T) {
		var frame Frame
		frame[regA0] = 0x9000
		_, err := h.StepInstr(EncodeAtomic(riscv.SelLR, regA4, regA0, 0, riscv.Funct3Double), &frame)
		require.Error(t, err)
		_, ok := h.Reservation().Reserved()
		require.False(t, ok)
	})

	t.Run("fetch", func(t *testing.T) {
		var frame Frame
		_, err := h.StepAt(0x5000, &frame)
		require.ErrorContains(t, err, "load access fault")
	})

	t.Run("other panics propagate", func(t *testing.T) {
		h := NewHart(nil, panicBus{}, testLogger())
		var frame Frame
		require.Panics(t, func() {
			_, _ = h.StepInstr(EncodeAtomic(riscv.SelAMOADD, regA4, regA0, regA1, riscv.Funct3Double), &frame)
		})
	})
}

type panicBus struct{}

func (panicBus) LoadWord(U64) U64 { panic("bus error") }
func (panicBus) StoreWord(U64, U64) { panic("bus error") }
func (panicBus) LoadInstrWord(U64) uint32 { panic("bus error") }
