// Package runconfig loads a pipeline run's TOML configuration file into
// the in-core types pipeline.Scheduler, parsers.Combiner and
// output.Writer need to run (§6). It deliberately stops at bare
// decoding: schema validation and user-facing diagnostics are named in
// spec §1 as out of scope for this core, so a malformed config
// surfaces whatever error github.com/pelletier/go-toml/v2 or a step's
// own transform.ValidateAll pass produces, unimproved. The teacher
// carries no analogous format at all (cmd/sdb is flag-driven, and
// sneller's own table definitions are YAML/JSON, decoded in a package
// this repo has no use for), so go-toml/v2 is adopted fresh here: it is
// the format spec §1/§6.4 names explicitly, and go-toml/v2 is the
// actively maintained TOML decoder the wider example pack reaches for
// when a repo does pick TOML.
package runconfig

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/internal/fqerr"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/output"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/parsers"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/transform"
)

// InputConfig describes one segment set of input files (§6.1). Format
// and the BAM/FASTA-only knobs apply uniformly to every segment; a run
// mixing formats across segments is not expressible here, matching
// spec §4.2's assumption that all of a run's segments share one input
// family.
type InputConfig struct {
	Segments []string            `toml:"segments"`
	Files    map[string][]string `toml:"files"`

	Format string `toml:"format"` // "fastq" (default), "fasta", "bam"

	// FakeQuality is the PHRED byte FASTA input synthesizes for every
	// base (§4.2); ignored for fastq/bam.
	FakeQuality int `toml:"fake_quality"`

	// BAMIncludeMapped/BAMIncludeUnmapped select which alignment
	// records a BAM input yields; ignored for fastq/fasta.
	BAMIncludeMapped   bool `toml:"bam_include_mapped"`
	BAMIncludeUnmapped bool `toml:"bam_include_unmapped"`

	// TargetReadsPerBlock overrides parsers.DefaultTargetReadsPerBlock
	// when non-zero.
	TargetReadsPerBlock int `toml:"target_reads_per_block"`
}

// OutputConfig mirrors output.Config's fields in their TOML form (§4.5,
// §6.2).
type OutputConfig struct {
	Mode   string `toml:"mode"`   // "segmented" (default), "interleaved", "bam", "none"
	Format string `toml:"format"` // "fastq" (default), "fasta"

	Directory string `toml:"directory"`
	Prefix    string `toml:"prefix"`
	Separator string `toml:"separator"`
	Infix     string `toml:"infix"`

	InterleaveOrder []int `toml:"interleave_order"`

	ChunkSize int64 `toml:"chunk_size"`

	Compression      string `toml:"compression"` // "none" (default), "gzip", "zstd"
	CompressionLevel int    `toml:"compression_level"`

	Hashing        bool `toml:"hashing"`
	AllowOverwrite bool `toml:"allow_overwrite"`
}

// RawConfig is the literal TOML document shape. Each [[step]] table is
// decoded into a generic map rather than a concrete type because the
// action-specific fields vary per builtin step; BuildSteps resolves
// the "action" key against the builtin registry afterward.
type RawConfig struct {
	ThreadBudget int              `toml:"thread_budget"`
	Input        InputConfig      `toml:"input"`
	Step         []map[string]any `toml:"step"`
	Output       OutputConfig     `toml:"output"`

	// estimators holds each input segment's parsers.Estimator, populated
	// by BuildCombiner and consulted by BuildOutputConfig for the output
	// writer's initial chunk-filename width (§4.2, §4.5). An Estimator
	// reports 0 until its parser has read a block, so when
	// BuildOutputConfig runs before the first block is parsed (as the
	// process command does) the width starts at 1.
	estimators []*parsers.Estimator
}

// Load decodes TOML config text into a RawConfig. It performs no
// validation beyond what go-toml/v2 itself enforces (type mismatches,
// malformed syntax).
func Load(data []byte) (*RawConfig, error) {
	var cfg RawConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, &fqerr.ConfigError{Msg: err.Error()}
	}
	return &cfg, nil
}

// LoadFile reads and decodes path, also returning the raw text so a
// caller can stamp report.RunInfo.ConfigText with exactly what drove
// the run (§4.7).
func LoadFile(path string) (*RawConfig, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", &fqerr.ConfigError{Location: path, Msg: err.Error()}
	}
	cfg, err := Load(data)
	if err != nil {
		return nil, "", err
	}
	return cfg, string(data), nil
}

// InputSpec resolves cfg.Input.Segments into a transform.InputSpec,
// assigning each segment label a CombinedBlock.Segments index equal to
// its position in the configured order.
func (cfg *RawConfig) InputSpec() (transform.InputSpec, error) {
	if len(cfg.Input.Segments) == 0 {
		return transform.InputSpec{}, &fqerr.ConfigError{Msg: "input.segments must list at least one segment"}
	}
	labels := make(map[string]int, len(cfg.Input.Segments))
	for i, name := range cfg.Input.Segments {
		if _, dup := labels[name]; dup {
			return transform.InputSpec{}, &fqerr.ConfigError{Msg: fmt.Sprintf("duplicate input segment label %q", name)}
		}
		labels[name] = i
	}
	return transform.InputSpec{SegmentLabels: labels, SegmentCount: len(labels)}, nil
}

// BuildCombiner opens one parsers.Parser per configured segment, in
// input.segments order, and zips them into a parsers.Combiner (§4.2).
func (cfg *RawConfig) BuildCombiner() (*parsers.Combiner, error) {
	segs := make([]parsers.Parser, len(cfg.Input.Segments))
	cfg.estimators = make([]*parsers.Estimator, len(cfg.Input.Segments))
	for i, label := range cfg.Input.Segments {
		files := cfg.Input.Files[label]
		if len(files) == 0 {
			return nil, &fqerr.ConfigError{Location: label, Msg: "segment has no input files configured"}
		}
		p, err := cfg.buildSegmentParser(files)
		if err != nil {
			return nil, err
		}
		segs[i] = p
		cfg.estimators[i] = p.Estimator
	}
	return parsers.NewCombiner(segs), nil
}

// estimateTotal picks a molecule-count estimate from whichever segment's
// Estimator has one to offer — every segment carries the same molecule
// count (the combiner enforces equal per-block lengths across segments),
// so the first usable estimate serves the whole run. Returns 0 before
// BuildCombiner has run, or if no segment estimator has enough
// information yet.
func (cfg *RawConfig) estimateTotal() int64 {
	for _, est := range cfg.estimators {
		if est == nil {
			continue
		}
		if e := est.Estimate(); e > 0 {
			return e
		}
	}
	return 0
}

func (cfg *RawConfig) buildSegmentParser(files []string) (*parsers.ChainedParser, error) {
	format := cfg.Input.Format
	if format == "" {
		format = "fastq"
	}
	target := cfg.Input.TargetReadsPerBlock
	fakeQuality := byte(cfg.Input.FakeQuality)
	if fakeQuality == 0 {
		fakeQuality = 'I' // PHRED 40, a conventional FASTA stand-in quality
	}

	est := &parsers.Estimator{}
	openers := make([]parsers.Opener, len(files))
	for i, path := range files {
		path := path
		isBAM := format == "bam"
		est.BytesPerBase = parsers.BytesPerBaseFor(path, isBAM)
		if path != parsers.StdinMagicPath {
			if fi, err := os.Stat(path); err == nil {
				est.TotalInputBytes += fi.Size()
			}
		}
		openers[i] = func() (parsers.Parser, error) {
			r, closer, err := parsers.OpenInput(path)
			if err != nil {
				return nil, err
			}
			switch format {
			case "fasta":
				return parsers.NewFastaParser(r, closer, path, target, fakeQuality)
			case "bam":
				return parsers.NewBAMParser(r, closer, path, target, cfg.Input.BAMIncludeMapped, cfg.Input.BAMIncludeUnmapped)
			case "fastq":
				return parsers.NewFastqParser(r, closer, path, target), nil
			default:
				return nil, &fqerr.ConfigError{Msg: fmt.Sprintf("unknown input format %q", format)}
			}
		}
	}
	return parsers.NewChainedParser(openers, est), nil
}

// BuildOutputConfig resolves cfg.Output (plus the resolved InputSpec's
// segment order) into an output.Config.
func (cfg *RawConfig) BuildOutputConfig(input transform.InputSpec) (output.Config, error) {
	out := output.Config{
		Dir:             cfg.Output.Directory,
		Prefix:          cfg.Output.Prefix,
		Sep:             cfg.Output.Separator,
		Infix:           cfg.Output.Infix,
		ChunkSize:       cfg.Output.ChunkSize,
		Estimate:        cfg.estimateTotal(),
		Hashing:         cfg.Output.Hashing,
		AllowOverwrite:  cfg.Output.AllowOverwrite,
		InterleaveOrder: cfg.Output.InterleaveOrder,
	}
	if out.Sep == "" {
		out.Sep = "."
	}

	switch cfg.Output.Format {
	case "", "fastq":
		out.Format = output.FormatFastq
	case "fasta":
		out.Format = output.FormatFasta
	default:
		return output.Config{}, &fqerr.ConfigError{Msg: fmt.Sprintf("unknown output format %q", cfg.Output.Format)}
	}

	switch cfg.Output.Mode {
	case "", "segmented":
		out.Mode = output.ModeSegmented
		out.SegmentNames = make([]string, len(input.SegmentLabels))
		for name, idx := range input.SegmentLabels {
			out.SegmentNames[idx] = name
		}
	case "interleaved":
		out.Mode = output.ModeInterleaved
		if len(out.InterleaveOrder) == 0 {
			out.InterleaveOrder = make([]int, len(input.SegmentLabels))
			for _, idx := range input.SegmentLabels {
				out.InterleaveOrder[idx] = idx
			}
		}
	case "bam":
		out.Mode = output.ModeBAM
	case "none":
		out.Mode = output.ModeNone
	default:
		return output.Config{}, &fqerr.ConfigError{Msg: fmt.Sprintf("unknown output mode %q", cfg.Output.Mode)}
	}

	switch cfg.Output.Compression {
	case "", "none":
		out.Compression.Codec = output.CodecNone
	case "gzip":
		out.Compression.Codec = output.CodecGzip
	case "zstd":
		out.Compression.Codec = output.CodecZstd
	default:
		return output.Config{}, &fqerr.ConfigError{Msg: fmt.Sprintf("unknown compression codec %q", cfg.Output.Compression)}
	}
	out.Compression.Level = cfg.Output.CompressionLevel

	return out, nil
}

// OutputSpec reduces cfg.Output into the transform.OutputSpec steps
// see during validation.
func (cfg *RawConfig) OutputSpec() transform.OutputSpec {
	mode := cfg.Output.Mode
	if mode == "" {
		mode = "segmented"
	}
	return transform.OutputSpec{Mode: mode}
}
