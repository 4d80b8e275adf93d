package parsers

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/internal/fqerr"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
)

// FastaParser streams '>'-headed FASTA records, synthesizing a quality
// string from fakeQuality (a valid PHRED byte) for every base, per §4.2.
// Sequence lines may wrap across multiple physical lines until the next
// header or EOF.
type FastaParser struct {
	r      *bufio.Reader
	closer io.Closer
	path   string

	targetReadsPerBlock int
	fakeQuality         byte

	pendingHeader []byte // header line read ahead of the current record
	eof           bool
}

// NewFastaParser wraps r (already decompressed) as a FastaParser.
// fakeQuality must be a printable PHRED byte (ASCII 33-126).
func NewFastaParser(r io.Reader, closer io.Closer, path string, targetReadsPerBlock int, fakeQuality byte) (*FastaParser, error) {
	if fakeQuality < 33 || fakeQuality > 126 {
		return nil, &fqerr.ConfigError{Msg: fmt.Sprintf("fake_quality byte %d is not a valid PHRED code", fakeQuality)}
	}
	if targetReadsPerBlock <= 0 {
		targetReadsPerBlock = DefaultTargetReadsPerBlock
	}
	return &FastaParser{
		r:                   bufio.NewReaderSize(r, 1<<20),
		closer:              closer,
		path:                path,
		targetReadsPerBlock: targetReadsPerBlock,
		fakeQuality:         fakeQuality,
	}, nil
}

func (p *FastaParser) Close() error {
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

func (p *FastaParser) readLine() ([]byte, error) {
	line, err := p.r.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, err
	}
	line = bytes.TrimRight(line, "\r\n")
	if err == io.EOF {
		return line, io.EOF
	}
	return line, nil
}

func (p *FastaParser) nextHeader() ([]byte, error) {
	if p.pendingHeader != nil {
		h := p.pendingHeader
		p.pendingHeader = nil
		return h, nil
	}
	for {
		line, err := p.readLine()
		if err != nil && len(line) == 0 {
			return nil, err
		}
		if len(line) == 0 {
			if err == io.EOF {
				return nil, io.EOF
			}
			continue // skip blank lines between records
		}
		return line, err
	}
}

// Next implements Parser.
func (p *FastaParser) Next() (read.Block, bool, error) {
	var b read.Block
	if p.eof {
		return b, true, nil
	}
	for i := 0; i < p.targetReadsPerBlock; i++ {
		header, err := p.nextHeader()
		if err == io.EOF {
			p.eof = true
			if i == 0 {
				return b, true, nil
			}
			return b, false, nil
		}
		if len(header) == 0 || header[0] != '>' {
			return b, false, &fqerr.InputError{Path: p.path, Msg: fmt.Sprintf(
				"expected '>' marker, got %q", firstBytes(header))}
		}
		name := append([]byte(nil), header[1:]...)

		var seq []byte
		for {
			line, lerr := p.readLine()
			if len(line) > 0 && line[0] == '>' {
				p.pendingHeader = line
				break
			}
			seq = append(seq, line...)
			if lerr == io.EOF {
				p.eof = true
				break
			}
			if lerr != nil {
				return b, false, lerr
			}
		}
		qual := make([]byte, len(seq))
		for i := range qual {
			qual[i] = p.fakeQuality
		}
		rd, err := read.New(name, seq, qual)
		if err != nil {
			return b, false, &fqerr.InputError{Path: p.path, Msg: err.Error(), Err: err}
		}
		b.Append(rd)
		if p.eof {
			return b, false, nil
		}
	}
	return b, false, nil
}
