// Package parsers implements the C2 layer: lazy, finite block streams
// produced from FASTQ, FASTA, and BAM input files, chained across an
// ordered file list, plus the combiner that zips per-segment streams
// into read.CombinedBlock cohorts. Grounded on blockfmt.RowFormat's
// reader-to-chunker interface shape (ion/blockfmt/convert.go).
package parsers

import "github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"

// Parser produces a lazy, finite sequence of (Block, isFinal) pairs
// (spec §4.2). isFinal is true only for the very last block a parser
// will ever emit; implementations must return io.EOF-free nil errors
// once isFinal has been reported.
type Parser interface {
	// Next returns the next block of reads. When the parser is
	// exhausted, it returns an empty block with isFinal=true and a nil
	// error exactly once.
	Next() (read.Block, bool, error)

	// Close releases any resources (open files, decompressors) held by
	// the parser.
	Close() error
}

// DefaultTargetReadsPerBlock is used when a caller does not specify a
// block size; chosen to keep per-stage channel memory (§5 "memory
// bound") proportional to a few megabytes of typical short-read data.
const DefaultTargetReadsPerBlock = 10000
