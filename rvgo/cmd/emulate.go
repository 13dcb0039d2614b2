package cmd

import (
	"fmt"

	"github.com/ethereum-optimism/optimism/op-service/jsonutil"
	"github.com/pkg/profile"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/amoemu/rvgo/amo"
	"github.com/ethereum-optimism/amoemu/rvgo/riscv"
)

func loadState(path string) (*amo.State, error) {
	state, err := jsonutil.LoadJSON[amo.State](path)
	if err != nil {
		return nil, fmt.Errorf("failed to load state %q: %w", path, err)
	}
	if state.Memory == nil {
		state.Memory = amo.NewMemory()
	}
	return state, nil
}

// Emulate plays the trap handler around the emulator: it supplies the faulting pc or
// instruction and the saved registers, and on success discards writes to x0 and resumes
// at the next instruction.
func Emulate(ctx *cli.Context) error {
	if ctx.Bool(PProfCPUFlag.Name) {
		defer profile.Start(profile.NoShutdownHook, profile.ProfilePath("."), profile.CPUProfile).Stop()
	}

	l, err := LoggerFromFlags(ctx)
	if err != nil {
		return err
	}

	state, err := loadState(ctx.Path(InputFlag.Name))
	if err != nil {
		return err
	}
	state.Memory.SetStrict(ctx.Bool(StrictMemFlag.Name))

	if ctx.IsSet(PCFlag.Name) {
		pc, err := parseHexU64(PCFlag.Name, ctx.String(PCFlag.Name))
		if err != nil {
			return err
		}
		state.PC = pc
	}

	var src amo.Source = amo.PC(state.PC)
	if ctx.IsSet(InsnFlag.Name) {
		insn, err := parseHexU32(InsnFlag.Name, ctx.String(InsnFlag.Name))
		if err != nil {
			return err
		}
		src = amo.Instr(insn)
	}

	meta := &Metadata{}
	if metaPath := ctx.Path(MetaFlag.Name); metaPath != "" {
		m, err := jsonutil.LoadJSON[Metadata](metaPath)
		if err != nil {
			return fmt.Errorf("failed to load metadata: %w", err)
		}
		meta = m
	}

	hart := amo.NewHart(&state.Reservation, state.Memory, l)
	handled, err := hart.Step(src, &state.Registers)
	if err != nil {
		return fmt.Errorf("failed to emulate at pc %016x: %w", state.PC, err)
	}
	insn := hart.LastInstr()

	if handled {
		state.Registers[0] = 0
		state.PC += riscv.InstrSize
		state.Emulated++
		l.Info("emulated",
			"insn", HexU32(insn),
			"op", amo.Decode(insn),
			"pc", HexU64(state.PC),
			"name", meta.LookupSymbol(state.PC-riscv.InstrSize),
		)
	} else {
		state.Declined++
		l.Warn("declined, not an emulated atomic instruction",
			"insn", HexU32(insn),
			"pc", HexU64(state.PC),
			"atomic", amo.IsAtomic(insn),
			"name", meta.LookupSymbol(state.PC),
		)
	}

	if err := jsonutil.WriteJSON[*amo.State](ctx.Path(OutputFlag.Name), state, OutFilePerm); err != nil {
		return fmt.Errorf("failed to write state output: %w", err)
	}
	return nil
}

var EmulateCommand = &cli.Command{
	Name:        "emulate",
	Usage:       "Emulate the atomic instruction a state trapped on",
	Description: "Emulate the atomic instruction at the state pc, or given with --insn, and write the resumed state.",
	Action:      Emulate,
	Flags: []cli.Flag{
		InputFlag,
		OutputFlag,
		InsnFlag,
		PCFlag,
		StrictMemFlag,
		MetaFlag,
		LogLevelFlag,
		PProfCPUFlag,
	},
}
