package main

import (
	"fmt"
	"strings"

	"github.com/scott-cotton/cli"
)

func runLanguages(cfg *LanguagesConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Languages.Parse(cc, args)
	if err != nil {
		cfg.Languages.Usage(cc, err)
		return cli.ExitCodeErr(2)
	}
	_ = args
	reg, err := cfg.registry()
	if err != nil {
		return cli.ExitCodeErr(2)
	}
	if cfg.GitAttributes {
		for _, p := range reg.Profiles() {
			for _, ext := range p.Extensions {
				fmt.Fprintf(cc.Out, "*.%s merge=graft\n", ext)
			}
		}
		return nil
	}
	for _, p := range reg.Profiles() {
		fmt.Fprintf(cc.Out, "%s\t%s\n", p.Name, strings.Join(p.Extensions, " "))
	}
	return nil
}
