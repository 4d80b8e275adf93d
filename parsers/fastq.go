package parsers

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/internal/fqerr"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
)

// partialState names the position within a four-line FASTQ record that a
// FastqParser is in when a buffer refill interrupts it, per spec §4.2.
// bufio.Reader absorbs the raw buffer-refill bookkeeping the spec
// describes in Rust; this type preserves the same named states so a
// reader of the code (and of diagnostics) sees the same vocabulary the
// spec uses, grounded on jsonrl/parse.go's explicit state-token handling
// of partial input applied to JSON tokens instead of FASTQ lines.
type partialState int

const (
	NoPartial partialState = iota
	InName
	InSeq
	InSpacer
	InQual
)

func (s partialState) String() string {
	switch s {
	case InName:
		return "InName"
	case InSeq:
		return "InSeq"
	case InSpacer:
		return "InSpacer"
	case InQual:
		return "InQual"
	default:
		return "NoPartial"
	}
}

// FastqParser streams four-line FASTQ records out of r, emitting blocks
// of targetReadsPerBlock reads (or fewer for the final block).
type FastqParser struct {
	r      *bufio.Reader
	closer io.Closer
	path   string

	targetReadsPerBlock int

	state      partialState
	crlfKnown  bool
	crlf       bool
	readsEmitted int
	eof        bool
}

// NewFastqParser wraps r (already decompressed) as a FastqParser. path is
// used only for diagnostics.
func NewFastqParser(r io.Reader, closer io.Closer, path string, targetReadsPerBlock int) *FastqParser {
	if targetReadsPerBlock <= 0 {
		targetReadsPerBlock = DefaultTargetReadsPerBlock
	}
	return &FastqParser{
		r:                   bufio.NewReaderSize(r, 1<<20),
		closer:              closer,
		path:                path,
		targetReadsPerBlock: targetReadsPerBlock,
	}
}

func (p *FastqParser) Close() error {
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

// readLine reads one line, stripping the trailing newline and (once the
// file's line-ending mode is known) a preceding '\r'. It also performs
// the one-time CRLF-vs-LF detection described in §4.2: the mode is
// determined from the first newline observed and then fixed for the
// rest of the file.
func (p *FastqParser) readLine(state partialState) ([]byte, error) {
	p.state = state
	line, err := p.r.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		p.state = NoPartial
		return nil, err
	}
	if err != nil {
		// truncated final record: a partial line with no trailing newline
		p.state = NoPartial
		return nil, &fqerr.InputError{Path: p.path, Msg: fmt.Sprintf(
			"truncated final record (in state %s)", state), Err: io.ErrUnexpectedEOF}
	}
	line = line[:len(line)-1] // drop '\n'
	if !p.crlfKnown {
		p.crlfKnown = true
		p.crlf = bytes.HasSuffix(line, []byte{'\r'})
	}
	if p.crlf {
		line = bytes.TrimSuffix(line, []byte{'\r'})
	}
	p.state = NoPartial
	return line, nil
}

// Next implements Parser.
func (p *FastqParser) Next() (read.Block, bool, error) {
	var b read.Block
	if p.eof {
		return b, true, nil
	}
	for i := 0; i < p.targetReadsPerBlock; i++ {
		nameLine, err := p.readLine(InName)
		if err == io.EOF {
			p.eof = true
			if i == 0 {
				return b, true, nil
			}
			return b, false, nil
		}
		if err != nil {
			return b, false, err
		}
		if len(nameLine) == 0 || nameLine[0] != '@' {
			return b, false, &fqerr.InputError{Path: p.path, Msg: fmt.Sprintf(
				"expected '@' marker at record %d, got %q", p.readsEmitted, firstBytes(nameLine))}
		}
		name := append([]byte(nil), nameLine[1:]...)

		seqLine, err := p.readLine(InSeq)
		if err != nil {
			return b, false, wrapTruncated(p.path, err, "sequence")
		}
		seq := append([]byte(nil), seqLine...)

		spacerLine, err := p.readLine(InSpacer)
		if err != nil {
			return b, false, wrapTruncated(p.path, err, "'+' spacer")
		}
		if len(spacerLine) == 0 || spacerLine[0] != '+' {
			return b, false, &fqerr.InputError{Path: p.path, Msg: fmt.Sprintf(
				"expected '+' spacer at record %d, got %q", p.readsEmitted, firstBytes(spacerLine))}
		}

		qualLine, err := p.readLine(InQual)
		if err != nil {
			return b, false, wrapTruncated(p.path, err, "quality")
		}
		qual := append([]byte(nil), qualLine...)

		if len(seq) != len(qual) {
			return b, false, &fqerr.InputError{Path: p.path, Msg: fmt.Sprintf(
				"record %d: sequence length %d != quality length %d", p.readsEmitted, len(seq), len(qual))}
		}
		rd, err := read.New(name, seq, qual)
		if err != nil {
			return b, false, &fqerr.InputError{Path: p.path, Msg: err.Error(), Err: err}
		}
		b.Append(rd)
		p.readsEmitted++
	}
	return b, false, nil
}

func wrapTruncated(path string, err error, what string) error {
	if err == io.EOF {
		return &fqerr.InputError{Path: path, Msg: "truncated final record: missing " + what}
	}
	return err
}

func firstBytes(b []byte) []byte {
	if len(b) > 32 {
		return b[:32]
	}
	return b
}
