package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/internal/logging"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/internal/testfq"
)

func writeSampleInputs(t *testing.T, dir string) {
	t.Helper()
	testfq.WriteFastqFile(t, dir, "r1.fastq", []testfq.FastqRecord{
		{Name: "m1", Seq: "ACGT", Qual: testfq.UniformQual(4, 'I')},
		{Name: "m2", Seq: "TTTT", Qual: testfq.UniformQual(4, 'I')},
	})
	testfq.WriteFastqFile(t, dir, "r2.fastq", []testfq.FastqRecord{
		{Name: "m1", Seq: "GGGG", Qual: testfq.UniformQual(4, 'I')},
		{Name: "m2", Seq: "CCCC", Qual: testfq.UniformQual(4, 'I')},
	})
}

func sampleConfigText(dir string) string {
	return `
[input]
segments = ["read1", "read2"]
format = "fastq"

[input.files]
read1 = ["` + filepath.Join(dir, "r1.fastq") + `"]
read2 = ["` + filepath.Join(dir, "r2.fastq") + `"]

[[step]]
action = "ValidateName"

[[step]]
action = "Report"
label = "final"
count = true

[output]
mode = "segmented"
directory = "` + filepath.Join(dir, "out") + `"
prefix = "run"
allow_overwrite = true
`
}

func TestRunValidateAcceptsWellFormedConfig(t *testing.T) {
	dir := t.TempDir()
	writeSampleInputs(t, dir)
	configPath := testfq.WriteConfig(t, dir, sampleConfigText(dir))

	err := runValidate(configPath, logging.New("test"))
	require.NoError(t, err)
}

func TestRunValidateRejectsUnknownStepAction(t *testing.T) {
	dir := t.TempDir()
	writeSampleInputs(t, dir)
	configPath := testfq.WriteConfig(t, dir, `
[input]
segments = ["read1"]
[input.files]
read1 = ["`+filepath.Join(dir, "r1.fastq")+`"]

[[step]]
action = "NotARealStep"
`)

	err := runValidate(configPath, logging.New("test"))
	require.Error(t, err)
}

func TestRunProcessWritesSegmentedOutputAndReport(t *testing.T) {
	dir := t.TempDir()
	writeSampleInputs(t, dir)
	configPath := testfq.WriteConfig(t, dir, sampleConfigText(dir))

	err := runProcess(configPath, logging.New("test"))
	require.NoError(t, err)

	outDir := filepath.Join(dir, "out")
	read1, err := os.ReadFile(filepath.Join(outDir, "run.read1.fastq"))
	require.NoError(t, err)
	require.Contains(t, string(read1), "@m1")
	require.Contains(t, string(read1), "ACGT")

	read2, err := os.ReadFile(filepath.Join(outDir, "run.read2.fastq"))
	require.NoError(t, err)
	require.Contains(t, string(read2), "GGGG")

	reportBytes, err := os.ReadFile(filepath.Join(outDir, "report.json"))
	require.NoError(t, err)
	require.Contains(t, string(reportBytes), `"final"`)
	require.Contains(t, string(reportBytes), `"report_order"`)
}

func TestRunVerifyDetectsMismatch(t *testing.T) {
	dir := t.TempDir()
	writeSampleInputs(t, dir)
	configPath := testfq.WriteConfig(t, dir, sampleConfigText(dir))

	fixtureDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(fixtureDir, "run.read1.fastq"), []byte("not the real output"), 0o644))

	err := runVerify(configPath, fixtureDir, logging.New("test"))
	require.Error(t, err)
}
