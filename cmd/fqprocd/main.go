// Command fqprocd is the CLI entry point for the molecule-processing
// pipeline (§6.4): "process" runs a configured pipeline end to end,
// "validate" runs every pre-flight check without touching any input
// or output, and "verify" re-runs a config against a known-good output
// fixture directory and reports any mismatch. Flag/subcommand dispatch
// follows cmd/sdb/main.go's shape (package-level flag.*Var globals, a
// flag.Args()[0] switch in main), adapted from sdb's per-resource verbs
// (create/sync/gc/describe) to this binary's three verbs.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/internal/logging"
)

var (
	dashAllowOverwrite bool
	dashThreads        int
	dashOutputDir      string
)

func init() {
	flag.BoolVar(&dashAllowOverwrite, "allow-overwrite", false, "overwrite existing output files instead of failing")
	flag.IntVar(&dashThreads, "threads", 0, "worker thread budget (0: use GOMAXPROCS)")
	flag.StringVar(&dashOutputDir, "o", "", "output directory (overrides the config file's output.directory)")
}

func exitf(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f, args...)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	runID := uuid.New().String()
	logger := logging.New(runID)

	var err error
	switch args[0] {
	case "process":
		if len(args) != 2 {
			exitf("usage: %s process <config.toml>", os.Args[0])
		}
		err = runProcess(args[1], logger)
	case "validate":
		if len(args) != 2 {
			exitf("usage: %s validate <config.toml>", os.Args[0])
		}
		err = runValidate(args[1], logger)
	case "verify":
		if len(args) != 3 {
			exitf("usage: %s verify <config.toml> <fixture-dir>", os.Args[0])
		}
		err = runVerify(args[1], args[2], logger)
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "    %s [-allow-overwrite] [-threads N] [-o dir] process <config.toml>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "    %s validate <config.toml>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "    %s verify <config.toml> <fixture-dir>\n", os.Args[0])
	flag.Usage()
}
