package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	"github.com/graft-dev/graft"
)

func runMerge(cfg *MergeConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Merge.Parse(cc, args)
	if err != nil {
		cfg.Merge.Usage(cc, err)
		return cli.ExitCodeErr(2)
	}
	if len(args) != 3 {
		return fmt.Errorf("%w: merge requires BASE LEFT RIGHT, got %d args", cli.ErrUsage, len(args))
	}
	cfg.reportColors()

	reg, err := cfg.registry()
	if err != nil {
		return cli.ExitCodeErr(2)
	}
	var texts [3][]byte
	for i, path := range args {
		texts[i], err = os.ReadFile(path)
		if err != nil {
			color.New(color.FgRed).Fprintf(os.Stderr, "graft: %v\n", err)
			return cli.ExitCodeErr(2)
		}
	}

	opts := graft.Options{
		Registry: reg,
		Filename: cfg.Path,
		Render:   cfg.renderOpts(),
	}
	if opts.Filename == "" {
		opts.Filename = args[1]
	}
	if cfg.Lang != "" {
		prof, err := reg.ByName(cfg.Lang)
		if err != nil {
			color.New(color.FgRed).Fprintf(os.Stderr, "graft: %v\n", err)
			return cli.ExitCodeErr(2)
		}
		opts.Profile = prof
	}

	out, err := graft.Merge(texts[0], texts[1], texts[2], opts)
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "graft: %v\n", err)
		return cli.ExitCodeErr(2)
	}
	if err := writeOut(cc, cfg.Out, out.Contents); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "graft: %v\n", err)
		return cli.ExitCodeErr(2)
	}

	if out.Clean() {
		color.New(color.FgGreen).Fprintf(os.Stderr,
			"graft: merged %s cleanly (%s)\n", opts.Filename, out.Method)
		return nil
	}
	color.New(color.FgYellow).Fprintf(os.Stderr,
		"graft: %d conflicts (%d bytes) in %s (%s)\n",
		out.Conflicts, out.Mass, opts.Filename, out.Method)
	return cli.ExitCodeErr(1)
}

func writeOut(cc *cli.Context, path string, contents []byte) error {
	if path == "" || path == "-" {
		_, err := cc.Out.Write(contents)
		return err
	}
	return os.WriteFile(path, contents, 0o644)
}
