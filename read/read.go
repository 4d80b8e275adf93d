// Package read implements the byte-owning Read/Block/CombinedBlock data
// model that flows through the pipeline: every parser produces Blocks, every
// transformation step consumes and produces CombinedBlocks, and the writer
// consumes whatever reaches the end of the pipeline.
package read

import "fmt"

// InvalidRead is returned by New when a read's sequence and quality
// strings do not agree in length. New does not check the symbols of
// either string.
type InvalidRead struct {
	Name   string
	Reason string
}

func (e *InvalidRead) Error() string {
	return fmt.Sprintf("invalid read %q: %s", e.Name, e.Reason)
}

// Read is a single molecule's (name, sequence, quality) triple within one
// segment. The byte fields either own their storage directly or slice into
// a Block's shared buffer (see Block).
type Read struct {
	name, seq, qual []byte
}

// New constructs a Read, verifying that seq and qual have equal length.
// The caller retains ownership of the byte slices; New does not copy them.
func New(name, seq, qual []byte) (Read, error) {
	if len(seq) != len(qual) {
		return Read{}, &InvalidRead{
			Name:   string(name),
			Reason: fmt.Sprintf("sequence length %d != quality length %d", len(seq), len(qual)),
		}
	}
	return Read{name: name, seq: seq, qual: qual}, nil
}

// Name returns the read's name, excluding the leading '@' or '>' marker.
func (r Read) Name() []byte { return r.name }

// Seq returns the read's sequence bytes.
func (r Read) Seq() []byte { return r.seq }

// Qual returns the read's quality bytes. len(Qual()) == len(Seq()) always.
func (r Read) Qual() []byte { return r.qual }

// Len returns the shared sequence/quality length.
func (r Read) Len() int { return len(r.seq) }

// WithSeqQual returns a copy of r with seq and qual replaced. name is kept.
// It is the caller's responsibility to ensure len(seq) == len(qual).
func (r Read) WithSeqQual(seq, qual []byte) Read {
	r.seq = seq
	r.qual = qual
	return r
}

// WithName returns a copy of r with a replaced name.
func (r Read) WithName(name []byte) Read {
	r.name = name
	return r
}
