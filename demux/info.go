package demux

import (
	"fmt"
	"sync"

	"golang.org/x/exp/slices"
)

// DefaultBucketID is the output bucket used for molecules that don't
// match any configured barcode, and for the common case of a run with
// no demultiplexing step at all (§4.6). Its ID is below every
// user-named bucket's ID; Buckets sorts by name, so "no_barcode" takes
// its lexicographic place among the other bucket names.
const DefaultBucketID uint64 = 0

// DefaultBucketName is the output-tag name for DefaultBucketID.
const DefaultBucketName = "no_barcode"

// Info is the run-wide demultiplex bucket registry, shared by every
// Demultiplex step instance and consulted by the output writer to
// build one file set per bucket (§4.5, §4.6). Grounded on
// blockfmt.Converter's shared, mutex-guarded run-wide state
// (Converter.manifestLock pattern), adapted from a manifest lock to a
// bucket-name registry.
type Info struct {
	mu       sync.Mutex
	nextID   uint64
	names    map[string]uint64
	idToName map[uint64]string
}

// NewInfo builds an Info preloaded with the default bucket.
func NewInfo() *Info {
	info := &Info{
		nextID:   1,
		names:    map[string]uint64{DefaultBucketName: DefaultBucketID},
		idToName: map[uint64]string{DefaultBucketID: DefaultBucketName},
	}
	return info
}

// Bucket returns the bucket ID for name, registering a new one if this
// is the first time name has been seen. Safe for concurrent use.
func (i *Info) Bucket(name string) uint64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	if id, ok := i.names[name]; ok {
		return id
	}
	id := i.nextID
	i.nextID++
	i.names[name] = id
	i.idToName[id] = name
	return id
}

// Name returns the bucket name for id, or an empty string if id was
// never registered.
func (i *Info) Name(id uint64) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.idToName[id]
}

// Bucket describes one registered demultiplex output bucket.
type Bucket struct {
	ID   uint64
	Name string
}

// Buckets returns every registered bucket, sorted by name, matching
// the output writer's requirement that bucket file sets be created in
// a deterministic, lexicographically-sortable order (§4.5).
func (i *Info) Buckets() []Bucket {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]Bucket, 0, len(i.names))
	for name, id := range i.names {
		out = append(out, Bucket{ID: id, Name: name})
	}
	slices.SortFunc(out, func(a, b Bucket) bool { return a.Name < b.Name })
	return out
}

// BarcodeEntry names one expected barcode sequence and the bucket it
// routes to.
type BarcodeEntry struct {
	Sequence []byte
	Name     string
}

// Barcodes is a Demultiplex step's compiled barcode table: which
// segment carries the barcode read, the matching tolerance, and the
// ordered set of expected sequences (§4.6). Entries are tried in
// order; the first sequence within MaxMismatches wins, matching the
// original's "earlier hits preferred on a tie" rule (dna.rs
// iupac_find_best).
type Barcodes struct {
	SegmentIndex  int
	MaxMismatches int
	Entries       []BarcodeEntry
}

// NewBarcodes validates and builds a Barcodes table. All entries must
// have equal-length sequences, matching the fixed-width comparison the
// Hamming distance requires.
func NewBarcodes(segmentIndex, maxMismatches int, entries []BarcodeEntry) (*Barcodes, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("demux: no barcodes configured")
	}
	width := len(entries[0].Sequence)
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if len(e.Sequence) != width {
			return nil, fmt.Errorf("demux: barcode %q has length %d, expected %d (all barcodes for one segment must share a width)",
				e.Name, len(e.Sequence), width)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("demux: duplicate barcode name %q", e.Name)
		}
		seen[e.Name] = true
	}
	return &Barcodes{SegmentIndex: segmentIndex, MaxMismatches: maxMismatches, Entries: entries}, nil
}

// Classify matches candidate (an exact-base read sequence, same length
// as every barcode entry) against the table, returning the name of the
// first entry within tolerance and true, or ("", false) if nothing
// matches closely enough.
func (b *Barcodes) Classify(candidate []byte) (string, bool) {
	for _, e := range b.Entries {
		if barcodeMatch(e.Sequence, candidate, b.MaxMismatches) {
			return e.Name, true
		}
	}
	return "", false
}
