package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	"github.com/graft-dev/graft"
	"github.com/graft-dev/graft/render"
)

func runSolve(cfg *SolveConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Solve.Parse(cc, args)
	if err != nil {
		cfg.Solve.Usage(cc, err)
		return cli.ExitCodeErr(2)
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: solve requires exactly one FILE, got %d args", cli.ErrUsage, len(args))
	}
	cfg.reportColors()
	path := args[0]

	reg, err := cfg.registry()
	if err != nil {
		return cli.ExitCodeErr(2)
	}
	prof, err := reg.ByFilename(path)
	if cfg.Lang != "" {
		prof, err = reg.ByName(cfg.Lang)
	}
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "graft: %v\n", err)
		return cli.ExitCodeErr(2)
	}

	marked, err := os.ReadFile(path)
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "graft: %v\n", err)
		return cli.ExitCodeErr(2)
	}
	out, err := graft.Solve(marked, prof, render.Options{})
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "graft: %v\n", err)
		return cli.ExitCodeErr(2)
	}

	if cfg.Write {
		if cfg.Keep {
			if err := os.WriteFile(path+".orig", marked, 0o644); err != nil {
				color.New(color.FgRed).Fprintf(os.Stderr, "graft: %v\n", err)
				return cli.ExitCodeErr(2)
			}
		}
		if err := os.WriteFile(path, out.Contents, 0o644); err != nil {
			color.New(color.FgRed).Fprintf(os.Stderr, "graft: %v\n", err)
			return cli.ExitCodeErr(2)
		}
	} else {
		if _, err := cc.Out.Write(out.Contents); err != nil {
			return cli.ExitCodeErr(2)
		}
	}

	if out.Clean() {
		color.New(color.FgGreen).Fprintf(os.Stderr, "graft: solved all conflicts in %s\n", path)
		return nil
	}
	color.New(color.FgYellow).Fprintf(os.Stderr,
		"graft: %d conflicts (%d bytes) remain in %s\n", out.Conflicts, out.Mass, path)
	return cli.ExitCodeErr(1)
}
