package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, []*cli.Opt{
		&cli.Opt{
			Name:        "o",
			Description: "output file (default stdout)",
			Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
		},
		&cli.Opt{
			Name:        "indent",
			Description: "spaces per nesting level, negative for a single line (default 4)",
			Type:        cli.NamedFuncOpt(cfg.indentOpt, "(n)"),
		},
		&cli.Opt{
			Name:        "I",
			Aliases:     []string{"ifmt"},
			Description: "input format: pickle/p, json/j, yaml/y (default detect)",
			Type:        cli.NamedFuncOpt(cfg.fmtFunc(&cfg.InFormat, false), "(format)"),
		},
		&cli.Opt{
			Name:        "O",
			Aliases:     []string{"ofmt"},
			Description: "output format: json/j, yaml/y (default json)",
			Type:        cli.NamedFuncOpt(cfg.fmtFunc(&cfg.OutFormat, true), "(format)"),
		}}...)

	return cli.NewCommandAt(&cfg.Main, "gatherconv").
		WithSynopsis("gatherconv [opts] [command [opts]]").
		WithDescription("gatherconv converts the stats gatherer's server mapping to structured text.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return gatherMain(cfg, cc, args)
		}).
		WithSubs(
			ConvertCommand(cfg),
			MigrateCommand(cfg),
			CheckCommand(cfg))
}

func ConvertCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ConvertConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Convert, "convert").
		WithAliases("c").
		WithSynopsis("convert").
		WithDescription("convert the input to the servers document (the default command)").
		WithRun(func(cc *cli.Context, args []string) error {
			return convert(cfg, cc, args)
		})
}

func MigrateCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &MigrateConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Migrate, "migrate").
		WithAliases("m").
		WithSynopsis("migrate").
		WithDescription("write the input as a versioned sidecar document, keeping source order").
		WithRun(func(cc *cli.Context, args []string) error {
			return migrate(cfg, cc, args)
		})
}

func CheckCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &CheckConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Check, "check").
		WithSynopsis("check [opts] <other>").
		WithDescription("convert the input and <other> and report how the outputs differ").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return check(cfg, cc, args)
		})
}
