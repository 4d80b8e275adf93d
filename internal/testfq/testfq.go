// Package testfq provides fixture-building and subprocess helpers for
// end-to-end tests that exercise cmd/fqprocd as a binary rather than
// through pipeline.Scheduler directly. Grounded on
// ion/blockfmt/convert_test.go's haveParquet2JSON pattern (an
// exec.LookPath probe for an external tool a test depends on,
// skipping gracefully when it's unavailable) and on the same file's
// inline "..." -delimited test-data construction.
package testfq

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// ProcessorCmdEnv is the environment variable the test harness (only
// the test harness, per §6.4) honors to locate a pre-built fqprocd
// binary, so CI can exercise a release build instead of `go run`-ing
// the command fresh in every test process.
const ProcessorCmdEnv = "PROCESSOR_CMD"

// ProcessorCmd returns the *exec.Cmd to invoke fqprocd with the given
// arguments: PROCESSOR_CMD's value split as a single path if set,
// otherwise "go run <module>/cmd/fqprocd" as a fallback for local
// development.
func ProcessorCmd(args ...string) *exec.Cmd {
	if bin := os.Getenv(ProcessorCmdEnv); bin != "" {
		return exec.Command(bin, args...)
	}
	goArgs := append([]string{"run", "github.com/TyberiusPrime/mbf-fastq-processor-sub001/cmd/fqprocd"}, args...)
	return exec.Command("go", goArgs...)
}

// FastqRecord is one four-line FASTQ record for WriteFastqFile.
type FastqRecord struct {
	Name string
	Seq  string
	Qual string
}

// WriteFastqFile writes records to dir/name as an uncompressed FASTQ
// file and returns the full path, failing the test on any I/O error.
func WriteFastqFile(t *testing.T, dir, name string, records []FastqRecord) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating fixture %s: %s", path, err)
	}
	defer f.Close()
	for _, r := range records {
		fmt.Fprintf(f, "@%s\n%s\n+\n%s\n", r.Name, r.Seq, r.Qual)
	}
	return path
}

// UniformQual returns a quality string of n repeats of q, for fixtures
// that don't care about per-base quality variation.
func UniformQual(n int, q byte) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = q
	}
	return string(buf)
}

// WriteConfig writes toml to dir/"config.toml" and returns its path.
func WriteConfig(t *testing.T, dir, toml string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatalf("writing fixture config %s: %s", path, err)
	}
	return path
}
