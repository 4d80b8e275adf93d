package transform

import "fmt"

// Expander is implemented by a Step that lowers itself into a sequence
// of sub-steps before scheduling (§4.3's "expansion rule", e.g.
// ConvertQuality expands to ValidatePhred(from) then a bare Convert;
// ValidateName expands to a SpotCheckReadPairing primitive). A step
// that doesn't need expansion simply doesn't implement this interface.
type Expander interface {
	Expand() []Step
}

// maxExpansionRounds bounds the fixed-point loop so a buggy Expander
// that expands into itself fails loudly instead of hanging.
const maxExpansionRounds = 32

// Expand applies every step's Expand() transitively until no step in
// the list expands any further (§4.3: "Expansion is applied
// transitively until a fixed point is reached").
func Expand(steps []Step) ([]Step, error) {
	cur := steps
	for round := 0; round < maxExpansionRounds; round++ {
		changed := false
		next := make([]Step, 0, len(cur))
		for _, s := range cur {
			if ex, ok := s.(Expander); ok {
				next = append(next, ex.Expand()...)
				changed = true
			} else {
				next = append(next, s)
			}
		}
		cur = next
		if !changed {
			return cur, nil
		}
	}
	return nil, fmt.Errorf("transform: step expansion did not reach a fixed point after %d rounds", maxExpansionRounds)
}
