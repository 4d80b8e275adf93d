package runconfig

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/output"
)

const sampleConfig = `
thread_budget = 2

[input]
segments = ["read1", "read2"]
format = "fastq"

[input.files]
read1 = ["a_R1.fastq.gz"]
read2 = ["a_R2.fastq.gz"]

[[step]]
action = "ValidateName"

[[step]]
action = "Head"
n = 1000

[[step]]
action = "Report"
label = "final"
count = true
progress_every = 500

[output]
mode = "segmented"
directory = "out"
prefix = "run1"
compression = "gzip"
compression_level = 6
hashing = true
`

func TestLoadDecodesTopLevelFields(t *testing.T) {
	cfg, err := Load([]byte(sampleConfig))
	require.NoError(t, err)
	require.Equal(t, 2, cfg.ThreadBudget)
	require.Equal(t, []string{"read1", "read2"}, cfg.Input.Segments)
	require.Equal(t, []string{"a_R1.fastq.gz"}, cfg.Input.Files["read1"])
	require.Len(t, cfg.Step, 3)
	require.Equal(t, "gzip", cfg.Output.Compression)
}

func TestInputSpecAssignsSegmentIndicesByOrder(t *testing.T) {
	cfg, err := Load([]byte(sampleConfig))
	require.NoError(t, err)
	spec, err := cfg.InputSpec()
	require.NoError(t, err)
	require.Equal(t, 0, spec.SegmentLabels["read1"])
	require.Equal(t, 1, spec.SegmentLabels["read2"])
	require.Equal(t, 2, spec.SegmentCount)
}

func TestInputSpecRejectsDuplicateSegmentLabels(t *testing.T) {
	cfg, err := Load([]byte(`
[input]
segments = ["read1", "read1"]
[input.files]
read1 = ["a.fastq"]
`))
	require.NoError(t, err)
	_, err = cfg.InputSpec()
	require.Error(t, err)
}

func TestBuildStepsResolvesActionsIntoConcreteSteps(t *testing.T) {
	cfg, err := Load([]byte(sampleConfig))
	require.NoError(t, err)
	steps, err := BuildSteps(cfg.Step, nil)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	require.Equal(t, "ValidateName", steps[0].Name())
	require.Equal(t, "Head", steps[1].Name())
	require.Equal(t, "final", steps[2].Name())
}

func TestBuildStepsRejectsUnknownAction(t *testing.T) {
	_, err := BuildSteps([]map[string]any{{"action": "NotARealStep"}}, nil)
	require.Error(t, err)
}

func TestBuildOutputConfigSegmentedDerivesSegmentNamesFromInput(t *testing.T) {
	cfg, err := Load([]byte(sampleConfig))
	require.NoError(t, err)
	spec, err := cfg.InputSpec()
	require.NoError(t, err)
	out, err := cfg.BuildOutputConfig(spec)
	require.NoError(t, err)
	require.Equal(t, output.ModeSegmented, out.Mode)
	require.Equal(t, []string{"read1", "read2"}, out.SegmentNames)
	require.Equal(t, output.CodecGzip, out.Compression.Codec)
	require.Equal(t, 6, out.Compression.Level)
	require.Equal(t, "out", out.Dir)
	require.Equal(t, "run1", out.Prefix)
}

func TestBuildOutputConfigRejectsUnknownMode(t *testing.T) {
	cfg, err := Load([]byte(sampleConfig))
	require.NoError(t, err)
	cfg.Output.Mode = "bogus"
	spec, _ := cfg.InputSpec()
	_, err = cfg.BuildOutputConfig(spec)
	require.Error(t, err)
}
