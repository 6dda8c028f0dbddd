// Package debug gates diagnostic logging on environment variables so a
// merge gone wrong can be traced without rebuilding.
package debug

import (
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Match  bool
	Diff   bool
	Merge  bool
	Render bool
}

var d *debug

func init() {
	d = &debug{}
	d.Match = boolEnv("GRAFT_DEBUG_MATCH")
	d.Diff = boolEnv("GRAFT_DEBUG_DIFF")
	d.Merge = boolEnv("GRAFT_DEBUG_MERGE")
	d.Render = boolEnv("GRAFT_DEBUG_RENDER")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Match() bool  { return d.Match }
func Diff() bool   { return d.Diff }
func Merge() bool  { return d.Merge }
func Render() bool { return d.Render }

func Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}
