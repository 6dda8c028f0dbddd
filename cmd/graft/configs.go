package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/graft-dev/graft/lang"
	"github.com/graft-dev/graft/render"

	"github.com/graft-dev/graft"
)

type MainConfig struct {
	Conf  string `cli:"name=conf desc='language configuration overlay (yaml)'"`
	Color bool   `cli:"name=color desc='force colored reports'"`

	Main *cli.Command
}

// registry builds the language registry, with the -conf overlay
// applied on top of the built-in profiles.
func (cfg *MainConfig) registry() (*lang.Registry, error) {
	reg := graft.DefaultRegistry()
	if cfg.Conf == "" {
		return reg, nil
	}
	data, err := os.ReadFile(cfg.Conf)
	if err != nil {
		return nil, fmt.Errorf("could not read %q: %w", cfg.Conf, err)
	}
	if err := reg.ApplyConfig(data); err != nil {
		return nil, fmt.Errorf("bad configuration %q: %w", cfg.Conf, err)
	}
	return reg, nil
}

// reportColors enables color when forced or when stderr is a terminal.
func (cfg *MainConfig) reportColors() {
	if cfg.Color {
		color.NoColor = false
		return
	}
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		color.NoColor = true
	}
}

type MergeConfig struct {
	*MainConfig

	SName string `cli:"name=s desc='label of the base revision in conflict markers'"`
	XName string `cli:"name=x desc='label of the left revision in conflict markers'"`
	YName string `cli:"name=y desc='label of the right revision in conflict markers'"`

	Lang string `cli:"name=l aliases=lang desc='language name (default: detect from path)'"`
	Path string `cli:"name=p aliases=path desc='path used for language detection (default: the left file)'"`
	Out  string `cli:"name=o desc='output file (default: stdout)'"`

	MarkerSize int  `cli:"name=marker-size desc='conflict marker length (default 7)'"`
	Compact    bool `cli:"name=compact desc='omit base sections from conflict markers'"`

	Merge *cli.Command
}

func (cfg *MergeConfig) renderOpts() render.Options {
	return render.Options{
		MarkerSize: cfg.MarkerSize,
		BaseName:   cfg.SName,
		LeftName:   cfg.XName,
		RightName:  cfg.YName,
		Compact:    cfg.Compact,
	}
}

type SolveConfig struct {
	*MainConfig

	Lang  string `cli:"name=l aliases=lang desc='language name (default: detect from path)'"`
	Write bool   `cli:"name=w desc='write the result back to the file'"`
	Keep  bool   `cli:"name=k aliases=keep desc='with -w, keep the original as FILE.orig'"`

	Solve *cli.Command
}

type LanguagesConfig struct {
	*MainConfig

	GitAttributes bool `cli:"name=gitattributes desc='print .gitattributes lines enabling the merge driver'"`

	Languages *cli.Command
}
