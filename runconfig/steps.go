package runconfig

import (
	"fmt"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/demux"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/internal/fqerr"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/internal/logging"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/transform"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/transform/builtin"
)

// BuildSteps resolves every configured [[step]] table into a concrete
// transform.Step by its "action" field (§4.3). This is the one place
// the decoded config touches builtin's concrete types; everything
// upstream of it only knows about generic TOML tables, matching §1's
// "no schema validation" scoping — an unrecognized action or a field
// of the wrong TOML type surfaces as a plain error here, not as a
// dedicated diagnostic.
func BuildSteps(raw []map[string]any, logger *logging.Logger) ([]transform.Step, error) {
	steps := make([]transform.Step, 0, len(raw))
	for i, m := range raw {
		action, _ := m["action"].(string)
		step, err := buildStep(action, m, logger)
		if err != nil {
			return nil, &fqerr.ConfigError{Location: fmt.Sprintf("step %d (%s)", i, action), Msg: err.Error()}
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func buildStep(action string, m map[string]any, logger *logging.Logger) (transform.Step, error) {
	switch action {
	case "ValidateName":
		return &builtin.ValidateName{ReadnameEndChar: toByte(m["readname_end_char"])}, nil

	case "Head":
		return &builtin.Head{N: toInt64(m["n"])}, nil

	case "CutStart":
		return &builtin.CutStart{N: toInt(m["n"]), Segment: toInt(m["segment"])}, nil

	case "CutEnd":
		return &builtin.CutEnd{N: toInt(m["n"]), Segment: toInt(m["segment"])}, nil

	case "ConvertQuality":
		from, err := parsePhredEncoding(toString(m["from"]))
		if err != nil {
			return nil, err
		}
		to, err := parsePhredEncoding(toString(m["to"]))
		if err != nil {
			return nil, err
		}
		return &builtin.ConvertQuality{From: from, To: to}, nil

	case "Report":
		step := &builtin.Report{
			Label:              toString(m["label"]),
			Count:              toBool(m["count"]),
			LengthDistribution: toBool(m["length_distribution"]),
			CountOligos:        toStringSlice(m["count_oligos"]),
			CountOligosSegment: toIntDefault(m["count_oligos_segment"], -1),
			ProgressEvery:      toInt64(m["progress_every"]),
		}
		if step.ProgressEvery > 0 {
			step.Logger = logger
		}
		return step, nil

	case "Demultiplex":
		entries, err := parseBarcodeEntries(m["barcodes"])
		if err != nil {
			return nil, err
		}
		return &builtin.Demultiplex{
			Segment:            toInt(m["segment"]),
			MaxHammingDistance: toInt(m["max_hamming_distance"]),
			OutputUnmatched:    toBool(m["output_unmatched"]),
			Entries:            entries,
		}, nil

	default:
		return nil, fmt.Errorf("unknown step action %q", action)
	}
}

func parsePhredEncoding(s string) (builtin.PhredEncoding, error) {
	switch s {
	case "sanger":
		return builtin.Sanger, nil
	case "illumina1.3", "illumina13":
		return builtin.Illumina13, nil
	case "solexa":
		return builtin.Solexa, nil
	default:
		return 0, fmt.Errorf("unknown PHRED encoding %q", s)
	}
}

// parseBarcodeEntries reads a `barcodes = [{name=..., sequence=...}, ...]`
// array-of-tables value (decoded as []any of map[string]any by
// go-toml/v2 when the target is interface{}) into demux.BarcodeEntry.
func parseBarcodeEntries(v any) ([]demux.BarcodeEntry, error) {
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("barcodes must be an array of {name, sequence} tables")
	}
	entries := make([]demux.BarcodeEntry, 0, len(raw))
	for _, item := range raw {
		tbl, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("each barcodes entry must be a table")
		}
		entries = append(entries, demux.BarcodeEntry{
			Name:     toString(tbl["name"]),
			Sequence: []byte(toString(tbl["sequence"])),
		})
	}
	return entries, nil
}

// The following helpers convert go-toml/v2's interface{}-decoded TOML
// scalars (int64 for integers, bool, string, []any) into the types
// builtin step fields need, treating an absent key as the type's zero
// value rather than an error — matching the "bare decoding, no
// diagnostics" scoping this package holds to throughout.

func toInt64(v any) int64 {
	n, _ := v.(int64)
	return n
}

func toInt(v any) int {
	return int(toInt64(v))
}

func toIntDefault(v any, def int) int {
	n, ok := v.(int64)
	if !ok {
		return def
	}
	return int(n)
}

func toBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

func toByte(v any) byte {
	s := toString(v)
	if len(s) == 0 {
		return 0
	}
	return s[0]
}

func toStringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
