package builtin

import (
	"fmt"
	"math"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/demux"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/transform"
)

// PhredEncoding names one of the FASTQ quality-byte conventions
// ConvertQuality translates between (§4.3). Grounded on
// original_source/src/transformations/edits/convert_quality.rs's
// PhredEncoding enum.
type PhredEncoding int

const (
	Sanger PhredEncoding = iota
	Illumina13
	Solexa
)

func (p PhredEncoding) String() string {
	switch p {
	case Sanger:
		return "sanger"
	case Illumina13:
		return "illumina1.3"
	case Solexa:
		return "solexa"
	default:
		return "unknown"
	}
}

// limits returns the (lower, upper) ASCII quality-byte bounds a
// conversion into this encoding must clamp to.
func (p PhredEncoding) limits() (byte, byte) {
	switch p {
	case Sanger:
		return 33, 126
	case Illumina13:
		return 64, 126
	case Solexa:
		return 59, 126
	default:
		return 33, 126
	}
}

func phredToSolexa(qPhred float64) float64 {
	val := math.Pow(10, qPhred/10.0) - 1.0
	return math.Round(10.0 * math.Log10(val))
}

func solexaToPhred(qSolexa float64) float64 {
	return math.Round(10.0 * math.Log10(math.Pow(10, qSolexa/10.0)+1.0))
}

// ConvertQuality is the user-facing configuration step. It expands
// into ValidatePhred(From) followed by a bare Convert (§4.3's
// expansion rule: "ConvertQuality expands to ValidatePhred(from);
// Convert") so a malformed source quality byte is rejected before any
// byte is rewritten, rather than silently clamped mid-conversion.
type ConvertQuality struct {
	transform.Base
	From, To PhredEncoding
}

func (c *ConvertQuality) Name() string { return "ConvertQuality" }

func (c *ConvertQuality) ValidateOthers(input transform.InputSpec, output transform.OutputSpec, all []transform.Step, thisIndex int) error {
	if c.From == c.To {
		return fmt.Errorf("ConvertQuality 'from' and 'to' encodings are the same, no conversion needed")
	}
	return nil
}

// Expand implements transform.Expander.
func (c *ConvertQuality) Expand() []transform.Step {
	return []transform.Step{
		&ValidatePhred{Encoding: c.From},
		&Convert{From: c.From, To: c.To},
	}
}

// Convert rewrites every base's quality byte from one PHRED encoding
// to another, clamping the result to the destination encoding's valid
// range. Grounded on convert_quality.rs's
// apply_to_qual/to_solexa/from_solexa helpers. It assumes its input
// has already passed ValidatePhred(From).
type Convert struct {
	transform.Base
	From, To PhredEncoding
}

func (c *Convert) Name() string { return "Convert" }

func (c *Convert) convertByte(x byte) byte {
	lower, upper := c.To.limits()
	clamp := func(v float64) byte {
		switch {
		case v < float64(lower):
			return lower
		case v > float64(upper):
			return upper
		default:
			return byte(v)
		}
	}
	switch {
	case c.From == Sanger && c.To == Illumina13:
		return clamp(float64(x) + (64 - 33))
	case c.From == Illumina13 && c.To == Sanger:
		return clamp(float64(x) + (33 - 64))
	case c.From == Sanger && c.To == Solexa:
		return clamp(phredToSolexa(float64(x)-33) + 64)
	case c.From == Illumina13 && c.To == Solexa:
		return clamp(phredToSolexa(float64(x)-64) + 64)
	case c.From == Solexa && c.To == Sanger:
		return clamp(solexaToPhred(float64(x)-64) + 33)
	case c.From == Solexa && c.To == Illumina13:
		return clamp(solexaToPhred(float64(x)-64) + 64)
	default:
		return x
	}
}

func (c *Convert) Apply(block *read.CombinedBlock, input transform.InputSpec, blockNo int64, info *demux.Info) (bool, error) {
	for s := range block.Segments {
		entries := block.Segments[s].Entries()
		for i, r := range entries {
			qual := r.Qual()
			newQual := make([]byte, len(qual))
			for j, q := range qual {
				newQual[j] = c.convertByte(q)
			}
			entries[i] = r.WithSeqQual(r.Seq(), newQual)
		}
	}
	return true, nil
}

// ValidatePhred is the sub-step ConvertQuality.Expand inserts ahead of
// Convert (§4.3's expansion rule), rejecting any quality byte
// outside the declared source encoding's valid range before a
// conversion runs.
type ValidatePhred struct {
	transform.Base
	Encoding PhredEncoding
}

func (v *ValidatePhred) Name() string { return "ValidatePhred" }

func (v *ValidatePhred) Apply(block *read.CombinedBlock, input transform.InputSpec, blockNo int64, info *demux.Info) (bool, error) {
	lower, upper := v.Encoding.limits()
	for s := range block.Segments {
		for _, r := range block.Segments[s].Entries() {
			for _, q := range r.Qual() {
				if q < lower || q > upper {
					return false, fmt.Errorf(
						"quality byte %d (%q) out of range [%d,%d] for %s encoding in read %q",
						q, string(q), lower, upper, v.Encoding, r.Name())
				}
			}
		}
	}
	return true, nil
}
