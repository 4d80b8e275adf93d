// Package report implements the C7 sink's finalization half: merging
// every step's Finalize fragment into one JSON document (§4.7). The
// per-block accumulation and progress-line printing live in
// transform/builtin.Report, which runs inside the scheduler; this
// package only assembles what pipeline.Scheduler.Finalize returns into
// the "__"/per-report/"run_info"/"report_order" shape and writes it
// out. HTML rendering is the external collaborator named in spec §1 —
// it would consume the JSON this package produces, nothing more.
package report

import (
	"encoding/json"
	"io"
	"os"
)

// Meta is the "__" key: format version and the input files this run
// consumed.
type Meta struct {
	Version string   `json:"version"`
	Inputs  []string `json:"inputs"`
}

// RunInfo is the "run_info" key: enough to reproduce the run — where it
// ran, which build produced the report, and the exact configuration
// text that drove it.
type RunInfo struct {
	Cwd            string `json:"cwd"`
	ProgramVersion string `json:"program_version"`
	ConfigText     string `json:"config_text"`
}

// Document is the final merged report. A plain struct can't express
// "a dynamic set of per-step keys plus three fixed ones", so
// MarshalJSON builds the object over a map by hand — the same shape
// ion/blockfmt/trailer.go's MarshalJSON/UnmarshalJSON pairs use for
// trailer sections that mix fixed and dynamic content.
type Document struct {
	Meta      Meta
	RunInfo   RunInfo
	Fragments map[string]any
	Order     []string
}

// NewDocument builds a Document from a scheduler's Finalize output,
// stamping run_info from the process's current working directory and
// this binary's build version.
func NewDocument(inputs []string, configText string, fragments map[string]any, order []string) (*Document, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return &Document{
		Meta: Meta{Version: "1", Inputs: inputs},
		RunInfo: RunInfo{
			Cwd:            cwd,
			ProgramVersion: ProgramVersion(),
			ConfigText:     configText,
		},
		Fragments: fragments,
		Order:     order,
	}, nil
}

func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Fragments)+3)
	for k, v := range d.Fragments {
		out[k] = v
	}
	out["__"] = d.Meta
	out["run_info"] = d.RunInfo
	out["report_order"] = d.Order
	return json.Marshal(out)
}

// WriteJSON writes doc to w as indented JSON.
func WriteJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
