package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
)

var (
	InputFlag = &cli.PathFlag{
		Name:      "input",
		Usage:     "path of input JSON state, optionally gzipped.",
		TakesFile: true,
		Required:  true,
	}
	OutputFlag = &cli.PathFlag{
		Name:      "output",
		Usage:     "path of output JSON state. Not written if empty, use - to write to Stdout.",
		TakesFile: true,
	}
	InsnFlag = &cli.StringFlag{
		Name:  "insn",
		Usage: "hex encoded instruction word to emulate, instead of fetching at the state pc",
	}
	PCFlag = &cli.StringFlag{
		Name:  "pc",
		Usage: "hex encoded faulting pc, overrides the state pc",
	}
	StrictMemFlag = &cli.BoolFlag{
		Name:  "strict-mem",
		Usage: "fault on access to memory pages that are not part of the state",
	}
	MetaFlag = &cli.PathFlag{
		Name:      "meta",
		Usage:     "path to metadata file for symbol lookup for enhanced debugging info.",
		TakesFile: true,
	}
	LogLevelFlag = &cli.StringFlag{
		Name:  "log.level",
		Usage: "log level: trace, debug, info, warn or error",
		Value: "info",
	}
	PProfCPUFlag = &cli.BoolFlag{
		Name:  "pprof.cpu",
		Usage: "enable pprof cpu profiling",
	}
	ELFPathFlag = &cli.PathFlag{
		Name:      "path",
		Usage:     "Path to RISC-V ELF file",
		TakesFile: true,
		Required:  true,
	}
	ELFOutFlag = &cli.PathFlag{
		Name:      "out",
		Usage:     "Output path to write JSON state to.",
		TakesFile: true,
		Value:     "state.json",
	}
	ELFMetaFlag = &cli.PathFlag{
		Name:      "meta",
		Usage:     "Write metadata file, for symbol lookup during emulation. Not written if empty.",
		TakesFile: true,
	}
)

var OutFilePerm = os.FileMode(0o755)

// parseHexU64 accepts leading zeros, unlike hexutil quantities: instruction words are
// usually written zero-padded.
func parseHexU64(name, s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s value %q: %w", name, s, err)
	}
	return v, nil
}

func parseHexU32(name, s string) (uint32, error) {
	v, err := parseHexU64(name, s)
	if err != nil {
		return 0, err
	}
	if v > 0xFFFF_FFFF {
		return 0, fmt.Errorf("invalid --%s value %q: exceeds 32 bits", name, s)
	}
	return uint32(v), nil
}
