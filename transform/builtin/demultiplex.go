package builtin

import (
	"fmt"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/demux"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/transform"
)

// Demultiplex assigns each molecule to an output bucket by comparing
// one segment's bases against a barcode table, tolerating up to
// MaxHammingDistance IUPAC-aware mismatches (scenario S6). Grounded on
// original_source/src/transformations/demultiplex.rs's
// transform_demultiplex (exact lookup, then a linear fallback scan of
// every barcode within tolerance), re-expressed over demux.Barcodes'
// ordered, first-match-wins table instead of a BTreeMap-plus-fallback
// pair of passes.
type Demultiplex struct {
	transform.Base
	Segment           int
	MaxHammingDistance int
	OutputUnmatched   bool
	Entries           []demux.BarcodeEntry

	barcodes *demux.Barcodes
}

func (d *Demultiplex) Name() string { return "Demultiplex" }

func (d *Demultiplex) Init(input transform.InputSpec, outputPrefix, outputDir string, info *demux.Info, allowOverwrite bool) (*demux.Barcodes, error) {
	bc, err := demux.NewBarcodes(d.Segment, d.MaxHammingDistance, d.Entries)
	if err != nil {
		return nil, err
	}
	d.barcodes = bc
	for _, e := range d.Entries {
		info.Bucket(e.Name)
	}
	if d.OutputUnmatched {
		info.Bucket(demux.DefaultBucketName)
	}
	return bc, nil
}

func (d *Demultiplex) Apply(block *read.CombinedBlock, input transform.InputSpec, blockNo int64, info *demux.Info) (bool, error) {
	if d.barcodes == nil {
		return false, fmt.Errorf("Demultiplex step used before Init")
	}
	n := block.N()
	if block.OutputTags == nil {
		block.OutputTags = make([]uint64, n)
	}
	entries := block.Segments[d.Segment].Entries()
	for i := 0; i < n; i++ {
		name, ok := d.barcodes.Classify(entries[i].Seq())
		if !ok {
			block.OutputTags[i] = demux.DefaultBucketID
			continue
		}
		block.OutputTags[i] = info.Bucket(name)
	}
	return true, nil
}
