package read

import (
	"strconv"
	"unsafe"
)

// Block owns a contiguous byte buffer and an ordered list of reads whose
// byte-slice fields may index into that buffer (§3.2). Reads produced by
// a parser typically slice into Block.buffer directly; reads produced by
// a transformation that allocates new bytes (e.g. Convert) carry their
// own storage and are not required to reference buffer at all.
type Block struct {
	buffer  []byte
	entries []Read
}

// NewBlock wraps buffer and entries into a Block without copying.
func NewBlock(buffer []byte, entries []Read) Block {
	return Block{buffer: buffer, entries: entries}
}

// Len returns the number of reads in the block.
func (b *Block) Len() int { return len(b.entries) }

// Entries returns the block's reads.
func (b *Block) Entries() []Read { return b.entries }

// Buffer returns the block's shared backing buffer, which may be empty if
// every entry owns its storage independently.
func (b *Block) Buffer() []byte { return b.buffer }

// SplitAt splits the block into [0,k) and [k,len), sharing the same
// backing buffer between both halves. Buffer slices embedded in each
// read's name/seq/qual fields remain valid in both halves because Go
// slice headers are self-describing: splitting b.entries does not move
// or invalidate the bytes they point to.
func (b *Block) SplitAt(k int) (Block, Block) {
	if k < 0 {
		k = 0
	}
	if k > len(b.entries) {
		k = len(b.entries)
	}
	head := Block{buffer: b.buffer, entries: b.entries[:k:k]}
	tail := Block{buffer: b.buffer, entries: b.entries[k:]}
	return head, tail
}

// Append copies r's bytes into the block's buffer and appends a new read
// that slices into the (possibly reallocated) buffer, so the block remains
// the sole owner of the appended read's storage.
func (b *Block) Append(r Read) {
	nameOff := len(b.buffer)
	b.buffer = append(b.buffer, r.name...)
	seqOff := len(b.buffer)
	b.buffer = append(b.buffer, r.seq...)
	qualOff := len(b.buffer)
	b.buffer = append(b.buffer, r.qual...)
	end := len(b.buffer)

	b.entries = append(b.entries, Read{
		name: b.buffer[nameOff:seqOff:seqOff],
		seq:  b.buffer[seqOff:qualOff:qualOff],
		qual: b.buffer[qualOff:end:end],
	})
}

// containedIn reports whether s is a sub-slice of buf's backing array.
// Used by invariant checks (Block.CheckBufferOwnership) to verify §3.2's
// "every slice index lies within buffer" invariant for reads that are
// supposed to be buffer-backed. Grounded on compr.overlaps' pointer
// arithmetic technique for comparing slice extents without copying.
func containedIn(s, buf []byte) bool {
	if len(s) == 0 {
		return true
	}
	if len(buf) == 0 {
		return false
	}
	s0 := uintptr(unsafe.Pointer(&s[0]))
	s1 := s0 + uintptr(len(s))
	b0 := uintptr(unsafe.Pointer(&buf[0]))
	b1 := b0 + uintptr(len(buf))
	return s0 >= b0 && s1 <= b1
}

// CheckBufferOwnership verifies that every read in the block whose bytes
// overlap the block's buffer at all are fully contained within it. It is
// a debug aid, not called on the hot path.
func (b *Block) CheckBufferOwnership() error {
	for i, r := range b.entries {
		for _, s := range [][]byte{r.name, r.seq, r.qual} {
			if len(s) == 0 {
				continue
			}
			if len(b.buffer) != 0 && containedIn(s, b.buffer) {
				continue
			}
			// owned vector case: bytes live outside buffer entirely, which
			// is permitted by §3.2; only a *partial* overlap is invalid.
			if len(b.buffer) != 0 && overlapsPartially(s, b.buffer) {
				return &InvariantError{Msg: "read " + strconv.Itoa(i) + " straddles block buffer boundary"}
			}
		}
	}
	return nil
}

func overlapsPartially(s, buf []byte) bool {
	if len(s) == 0 || len(buf) == 0 {
		return false
	}
	s0 := uintptr(unsafe.Pointer(&s[0]))
	s1 := s0 + uintptr(len(s))
	b0 := uintptr(unsafe.Pointer(&buf[0]))
	b1 := b0 + uintptr(len(buf))
	fullyInside := s0 >= b0 && s1 <= b1
	fullyOutside := s1 <= b0 || s0 >= b1
	return !fullyInside && !fullyOutside
}
