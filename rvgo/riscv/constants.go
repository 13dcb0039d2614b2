package riscv

const (
	// RegisterCount is the number of integer registers in a trap frame.
	// RV32E only has 16, that variant is not handled.
	RegisterCount = 32

	// OpcodeAtomic is the major opcode (bits 0-6) of the A extension: 010_1111.
	OpcodeAtomic = 0x2F
	OpcodeMask   = 0x7F

	RegMask = 0x1F

	InstrSize           = 4
	CompressedInstrSize = 2

	// funct3 width codes. The emulator always operates on the machine word,
	// these are only used for decode output.
	Funct3Word   = 0b010
	Funct3Double = 0b011
)

// Operation selectors, bits 27-31 of an atomic instruction.
const (
	SelAMOADD  = 0b00000
	SelAMOSWAP = 0b00001
	SelLR      = 0b00010
	SelSC      = 0b00011
	SelAMOXOR  = 0b00100
	SelAMOOR   = 0b01000
	SelAMOAND  = 0b01100
	SelAMOMIN  = 0b10000
	SelAMOMAX  = 0b10100
	SelAMOMINU = 0b11000
	SelAMOMAXU = 0b11100
)

// Store-conditional results written to rd.
const (
	SCSuccess = uint64(0)
	SCFailure = uint64(1)
)
