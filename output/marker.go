package output

import (
	"os"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/internal/fqerr"
)

// markerContents is the fixed single-line body of the run-completion
// marker file (§6.2).
const markerContents = "run incomplete\n"

// MarkerPath returns `<prefix>.incompleted`, the run-completion marker
// named in §2/§6.2.
func MarkerPath(prefix string) string {
	return prefix + ".incompleted"
}

// WriteMarker creates the run-completion marker at startup. Its mere
// presence signals (to this run's CLI, or to an operator inspecting
// the output directory) that a prior run with this prefix never
// finished cleanly.
func WriteMarker(prefix string) error {
	path := MarkerPath(prefix)
	if err := os.WriteFile(path, []byte(markerContents), 0o644); err != nil {
		return &fqerr.OutputError{Path: path, Msg: "writing run marker", Err: err}
	}
	return nil
}

// RemoveMarker deletes the run-completion marker on a clean exit. It is
// not an error for the marker to already be gone.
func RemoveMarker(prefix string) error {
	path := MarkerPath(prefix)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &fqerr.OutputError{Path: path, Msg: "removing run marker", Err: err}
	}
	return nil
}

// MarkerExists reports whether a prior run with this prefix left an
// incomplete marker behind. The CLI (§4.5 "Overwrite policy") converts
// its presence into implicit allow_overwrite=true.
func MarkerExists(prefix string) bool {
	_, err := os.Stat(MarkerPath(prefix))
	return err == nil
}
