package cmd

import (
	"debug/elf"
	"fmt"

	"github.com/ethereum-optimism/optimism/op-service/jsonutil"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/amoemu/rvgo/amo"
)

func LoadELF(ctx *cli.Context) error {
	elfPath := ctx.Path(ELFPathFlag.Name)
	elfProgram, err := elf.Open(elfPath)
	if err != nil {
		return fmt.Errorf("failed to open ELF file %q: %w", elfPath, err)
	}
	defer elfProgram.Close()
	if elfProgram.Machine != elf.EM_RISCV {
		return fmt.Errorf("ELF is not RISC-V, but got %q", elfProgram.Machine.String())
	}
	state, err := amo.LoadELF(elfProgram)
	if err != nil {
		return fmt.Errorf("failed to load ELF data into emulation state: %w", err)
	}
	if metaPath := ctx.Path(ELFMetaFlag.Name); metaPath != "" {
		meta, err := MakeMetadata(elfProgram)
		if err != nil {
			return fmt.Errorf("failed to compute program metadata: %w", err)
		}
		if err := jsonutil.WriteJSON[*Metadata](metaPath, meta, OutFilePerm); err != nil {
			return fmt.Errorf("failed to write metadata: %w", err)
		}
	}
	return jsonutil.WriteJSON[*amo.State](ctx.Path(ELFOutFlag.Name), state, OutFilePerm)
}

var LoadELFCommand = &cli.Command{
	Name:        "load-elf",
	Usage:       "Load ELF file into an emulation JSON state",
	Description: "Load ELF file into an emulation JSON state, with the pc at the program entry",
	Action:      LoadELF,
	Flags: []cli.Flag{
		ELFPathFlag,
		ELFOutFlag,
		ELFMetaFlag,
	},
}
