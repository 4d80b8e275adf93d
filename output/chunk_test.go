package output

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testOpener(t *testing.T) FileOpener {
	t.Helper()
	return func(path string) (*os.File, error) {
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	}
}

// TestChunkRenameOnWidthIncrease reproduces scenario S5's rule (an
// under-estimated initial width later proves too narrow): chunk_size=10,
// an estimate of 50 molecules picks initial width 1 (5 estimated
// chunks), but 105 actual molecules need an 11th chunk (index 10),
// whose two-digit number forces a rename of every prior width-1 chunk
// up to width 2, after which writing continues at the new width.
func TestChunkRenameOnWidthIncrease(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "out")
	cw := NewChunkWriter(base, "fastq", 10, 50, testOpener(t))
	require.Equal(t, 1, cw.width)

	remaining := int64(105)
	for remaining > 0 {
		n := int64(10)
		if remaining < n {
			n = remaining
		}
		_, err := cw.Writer()
		require.NoError(t, err)
		require.NoError(t, cw.AfterWrite(n))
		remaining -= n
	}
	require.NoError(t, cw.Close())

	require.Equal(t, 2, cw.width)
	for k := 0; k <= 10; k++ {
		want := filepath.Join(dir, fmt.Sprintf("out.%02d.fastq", k))
		_, err := os.Stat(want)
		require.NoErrorf(t, err, "expected chunk file %s to exist", want)
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 11)
}

func TestChunkWriterNoChunking(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "out")
	cw := NewChunkWriter(base, "fastq", 0, 0, testOpener(t))
	f, err := cw.Writer()
	require.NoError(t, err)
	_, err = f.WriteString("hello")
	require.NoError(t, err)
	require.NoError(t, cw.Close())

	data, err := os.ReadFile(filepath.Join(dir, "out.fastq"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
}
