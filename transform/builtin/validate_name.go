// Package builtin implements the concrete Step library (§4.3's
// "ValidateName", "Head", "CutStart"/"CutEnd", "ConvertQuality",
// "Report", "Demultiplex") on top of the transform.Step contract.
// Grounded per-step on original_source/src/transformations/**, adapted
// from the original's RefCell/Cell-based single-threaded mutation
// closures to ordinary Go loops over read.CombinedBlock.
package builtin

import (
	"bytes"
	"fmt"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/demux"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/transform"
)

// ValidateName is the user-facing configuration step; it expands into
// a SpotCheckReadPairing primitive (§4.3's expansion rule) which does
// the actual per-molecule work. ValidateName itself only validates
// segment count; steps are validated after expansion, where
// SpotCheckReadPairing carries the same segment-count check.
type ValidateName struct {
	transform.Base
	// ReadnameEndChar, if non-zero, truncates each name at its first
	// occurrence of this byte before comparison (e.g. ' ' to drop an
	// Illumina-style trailing comment).
	ReadnameEndChar byte
}

func (v *ValidateName) Name() string { return "ValidateName" }

func (v *ValidateName) ValidateSegments(spec transform.InputSpec) error {
	if spec.SegmentCount <= 1 {
		return fmt.Errorf("ValidateName requires at least two input segments")
	}
	return nil
}

// Expand implements transform.Expander.
func (v *ValidateName) Expand() []transform.Step {
	return []transform.Step{&SpotCheckReadPairing{ReadnameEndChar: v.ReadnameEndChar}}
}

// SpotCheckReadPairing checks that every segment's read name agrees
// with segment 0's, up to a canonical prefix, molecule by molecule
// (scenario S2). Grounded on
// original_source/src/transformations/validation/name.rs.
type SpotCheckReadPairing struct {
	transform.Base
	ReadnameEndChar byte
}

func (v *SpotCheckReadPairing) Name() string { return "SpotCheckReadPairing" }

func (v *SpotCheckReadPairing) ValidateSegments(spec transform.InputSpec) error {
	if spec.SegmentCount <= 1 {
		return fmt.Errorf("SpotCheckReadPairing requires at least two input segments")
	}
	return nil
}

// canonicalPrefix strips a trailing "/1", "/2", "/3"-style mate suffix
// (a slash followed by exactly one digit) and then, if endChar is set,
// truncates at its first occurrence — the two conventions FASTQ
// producers use to mark a name's non-identifying tail.
func canonicalPrefix(name []byte, endChar byte) []byte {
	if n := len(name); n >= 2 && name[n-2] == '/' && name[n-1] >= '0' && name[n-1] <= '9' {
		name = name[:n-2]
	}
	if endChar != 0 {
		if i := bytes.IndexByte(name, endChar); i >= 0 {
			name = name[:i]
		}
	}
	return name
}

func (v *SpotCheckReadPairing) Apply(block *read.CombinedBlock, input transform.InputSpec, blockNo int64, info *demux.Info) (bool, error) {
	n := block.N()
	for i := 0; i < n; i++ {
		reference := block.Segments[0].Entries()[i].Name()
		if len(reference) == 0 {
			return false, fmt.Errorf("read name is empty for segment 0 at read index %d", i)
		}
		expected := canonicalPrefix(reference, v.ReadnameEndChar)
		for s := 1; s < len(block.Segments); s++ {
			candidate := block.Segments[s].Entries()[i].Name()
			if len(candidate) == 0 {
				return false, fmt.Errorf("read name is empty for segment %d at read index %d", s, i)
			}
			got := canonicalPrefix(candidate, v.ReadnameEndChar)
			if !bytes.Equal(got, expected) {
				return false, fmt.Errorf(
					"read name mismatch at read no %d (0-based): expected prefix %q from segment 0 name %q, segment %d provided prefix %q from name %q",
					i, expected, reference, s, got, candidate)
			}
		}
	}
	return true, nil
}
