package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "graft").
		WithSynopsis("graft [opts] command [opts]").
		WithDescription("graft merges source files by syntax, not by line.").
		WithOpts(opts...).
		WithSubs(
			MergeCommand(cfg),
			SolveCommand(cfg),
			LanguagesCommand(cfg))
}

func MergeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &MergeConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Merge, "merge").
		WithAliases("m").
		WithSynopsis("merge [opts] BASE LEFT RIGHT").
		WithDescription(`Three-way merge of BASE, LEFT and RIGHT.

Intended as a git merge driver:

    [merge "graft"]
        name = syntax-aware merge
        driver = graft merge -o %A -s %S -x %X -y %Y -p %P %O %A %B

Exits 0 on a clean merge, 1 when conflicts remain and 2 when the
inputs cannot be merged at all.`).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return runMerge(cfg, cc, args)
		})
}

func SolveCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &SolveConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Solve, "solve").
		WithAliases("s").
		WithSynopsis("solve [opts] FILE").
		WithDescription("Retry the conflicts of an already merged FILE by syntax.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return runSolve(cfg, cc, args)
		})
}

func LanguagesCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &LanguagesConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Languages, "languages").
		WithAliases("langs", "l").
		WithSynopsis("languages [-gitattributes]").
		WithDescription("List the supported languages and their extensions.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return runLanguages(cfg, cc, args)
		})
}
