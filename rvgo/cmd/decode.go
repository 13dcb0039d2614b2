package cmd

import (
	"fmt"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/amoemu/rvgo/amo"
)

var DecodeInsnFlag = &cli.StringFlag{
	Name:     "insn",
	Usage:    "hex encoded instruction word",
	Required: true,
}

type Decoded struct {
	Insn     string      `json:"insn"`
	Atomic   bool        `json:"atomic"`
	Fields   *amo.Fields `json:"fields,omitempty"`
	Op       string      `json:"op,omitempty"`
	Emulated bool        `json:"emulated"`
}

func decode(insn uint32) *Decoded {
	out := &Decoded{
		Insn:   HexU32(insn).String(),
		Atomic: amo.IsAtomic(insn),
	}
	if !out.Atomic {
		return out
	}
	f := amo.Decode(insn)
	out.Fields = &f
	if op, ok := f.Op(); ok {
		out.Op = op.String()
		out.Emulated = true
	}
	return out
}

func Decode(ctx *cli.Context) error {
	insn, err := parseHexU32(DecodeInsnFlag.Name, ctx.String(DecodeInsnFlag.Name))
	if err != nil {
		return err
	}
	d := decode(insn)
	printer := pp.New()
	printer.SetOutput(ctx.App.Writer)
	printer.SetColoringEnabled(false)
	if _, err := printer.Println(d); err != nil {
		return fmt.Errorf("failed to print decoded instruction: %w", err)
	}
	if d.Fields != nil {
		_, _ = fmt.Fprintln(ctx.App.Writer, d.Fields.String())
	}
	return nil
}

var DecodeCommand = &cli.Command{
	Name:        "decode",
	Usage:       "Decode an instruction word",
	Description: "Classify an instruction word and print its atomic-instruction fields.",
	Action:      Decode,
	Flags: []cli.Flag{
		DecodeInsnFlag,
	},
}
