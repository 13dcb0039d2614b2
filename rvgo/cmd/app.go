package cmd

import "github.com/urfave/cli/v2"

func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "amoemu"
	app.Usage = "RISC-V atomic instruction emulator"
	app.Description = "Emulates LR/SC and AMO instructions for cores that trap on them"
	app.Commands = []*cli.Command{
		LoadELFCommand,
		EmulateCommand,
		DecodeCommand,
		WitnessCommand,
	}
	return app
}
