package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed, color.Bold)
	cyan  = color.New(color.FgCyan)
)

// printSummary writes the counters of a run, finished or not.
func printSummary(w io.Writer, res *runResult) {
	if res == nil {
		return
	}
	if res.RunID != "" {
		cyan.Fprintf(w, "run %s\n", res.RunID)
	}
	fmt.Fprintf(w, "  producers:  %d\n", res.Producers)
	fmt.Fprintf(w, "  packs:      %d\n", res.Packs)
	fmt.Fprintf(w, "  problems:   %d\n", res.Problems)
	fmt.Fprintf(w, "  instances:  %d (%d solved)\n", res.Instances, res.Solved)
	if res.Elapsed > 0 {
		fmt.Fprintf(w, "  elapsed:    %s\n", res.Elapsed)
	}
}

func printSuccess(w io.Writer, res *runResult) {
	green.Fprintf(w, "✓ all %d packs returned in order\n", res.Packs)
}

// printError reports err on stderr and returns it for cobra's exit code.
func printError(title string, err error) error {
	red.Fprintf(os.Stderr, "%s\n", title)
	fmt.Fprintf(os.Stderr, "  %v\n", err)
	return err
}
