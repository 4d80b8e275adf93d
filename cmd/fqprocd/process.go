package main

import (
	"os"
	"runtime"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/demux"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/internal/fqerr"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/internal/logging"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/output"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/pipeline"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/report"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/runconfig"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/transform"
)

// prepared bundles everything buildPrepared assembles from a config
// file, shared by process/validate/verify so the three verbs never
// duplicate the decode-expand-validate sequence.
type prepared struct {
	cfg        *runconfig.RawConfig
	configText string
	input      transform.InputSpec
	steps      []transform.Step
}

// buildPrepared loads path, expands and validates its step list, but
// opens no input file and no output destination — this is exactly the
// work "validate" performs and "process"/"verify" need before they can
// run.
func buildPrepared(path string, logger *logging.Logger) (*prepared, error) {
	cfg, text, err := runconfig.LoadFile(path)
	if err != nil {
		return nil, err
	}
	input, err := cfg.InputSpec()
	if err != nil {
		return nil, err
	}
	rawSteps, err := runconfig.BuildSteps(cfg.Step, logger)
	if err != nil {
		return nil, err
	}
	steps, err := transform.Expand(rawSteps)
	if err != nil {
		return nil, err
	}
	if err := transform.CheckTagTypes(steps); err != nil {
		return nil, err
	}
	if err := transform.ValidateAll(steps, input, cfg.OutputSpec()); err != nil {
		return nil, err
	}
	return &prepared{cfg: cfg, configText: text, input: input, steps: steps}, nil
}

func threadBudget() int {
	if dashThreads > 0 {
		return dashThreads
	}
	return runtime.GOMAXPROCS(0)
}

func runValidate(path string, logger *logging.Logger) error {
	_, err := buildPrepared(path, logger)
	return err
}

func runProcess(path string, logger *logging.Logger) error {
	p, err := buildPrepared(path, logger)
	if err != nil {
		return err
	}

	cfg := p.cfg
	if dashOutputDir != "" {
		cfg.Output.Directory = dashOutputDir
	}
	if cfg.Output.Directory != "" {
		if err := os.MkdirAll(cfg.Output.Directory, 0o750); err != nil {
			return &fqerr.OutputError{Path: cfg.Output.Directory, Msg: "creating output directory", Err: err}
		}
	}

	// markerPrefix names the run-completion marker (§2/§6.2): its mere
	// presence, left behind by a prior run that never reached a clean
	// Finalize, implies allow_overwrite=true for this run too.
	markerPrefix := output.BaseName(cfg.Output.Directory, cfg.Output.Prefix, cfg.Output.Separator, "", "")
	allowOverwrite := dashAllowOverwrite || cfg.Output.AllowOverwrite || output.MarkerExists(markerPrefix)
	cfg.Output.AllowOverwrite = allowOverwrite

	comb, err := cfg.BuildCombiner()
	if err != nil {
		return err
	}
	defer comb.Close()

	sched := pipeline.NewScheduler(p.steps, threadBudget())
	info := demux.NewInfo()

	if err := sched.Init(p.input, cfg.Output.Prefix, cfg.Output.Directory, info, allowOverwrite); err != nil {
		return err
	}

	baseOut, err := cfg.BuildOutputConfig(p.input)
	if err != nil {
		return err
	}

	writer, err := openWriter(baseOut, info)
	if err != nil {
		return err
	}

	if err := output.WriteMarker(markerPrefix); err != nil {
		return err
	}

	if err := sched.Run(comb, p.input, info, writer); err != nil {
		return err
	}

	fragments, order, err := sched.Finalize(info)
	if err != nil {
		return err
	}

	if err := output.RemoveMarker(markerPrefix); err != nil {
		return err
	}

	doc, err := report.NewDocument(inputPaths(cfg), p.configText, fragments, order)
	if err != nil {
		return err
	}
	return writeReport(cfg.Output.Directory, doc)
}

func runVerify(configPath, fixtureDir string, logger *logging.Logger) error {
	workDir, err := os.MkdirTemp("", "fqprocd-verify-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	savedOutputDir, savedAllowOverwrite := dashOutputDir, dashAllowOverwrite
	dashOutputDir, dashAllowOverwrite = workDir, true
	defer func() { dashOutputDir, dashAllowOverwrite = savedOutputDir, savedAllowOverwrite }()

	if err := runProcess(configPath, logger); err != nil {
		return err
	}
	return compareDirs(fixtureDir, workDir)
}

// openWriter builds either a plain output.Writer or, when Init
// registered any bucket beyond the default, an output.BucketedWriter
// routing each bucket into its own file set infixed with the bucket
// name (§4.6) — the demux.Info population happens entirely inside
// step Init, so this check runs after Init and before Run.
func openWriter(base output.Config, info *demux.Info) (pipeline.WriterSink, error) {
	buckets := info.Buckets()
	if len(buckets) <= 1 {
		return output.NewWriter(base)
	}
	return output.NewBucketedWriter(info, func(b demux.Bucket) (output.Writer, error) {
		cfg := base
		if cfg.Infix != "" {
			cfg.Infix = cfg.Infix + cfg.Sep + b.Name
		} else {
			cfg.Infix = b.Name
		}
		return output.NewWriter(cfg)
	})
}

func inputPaths(cfg *runconfig.RawConfig) []string {
	var paths []string
	for _, label := range cfg.Input.Segments {
		paths = append(paths, cfg.Input.Files[label]...)
	}
	return paths
}

func writeReport(outputDir string, doc *report.Document) error {
	path := outputDir
	if path == "" {
		path = "."
	}
	path += "/report.json"
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return report.WriteJSON(f, doc)
}
