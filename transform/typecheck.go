package transform

import (
	"fmt"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/read"
)

// CheckTagTypes runs the tag-type checking pass (§4.3): after
// expansion and before initialization, every UsesTags() reference must
// name a tag some earlier step declared, with a type in the allowed
// set; declaring the same tag name twice fails validation.
func CheckTagTypes(steps []Step) error {
	declared := make(map[read.TagName]read.TagValueType)
	for idx, s := range steps {
		for _, use := range s.UsesTags() {
			declType, ok := declared[use.Name]
			if !ok {
				return fmt.Errorf("step %d (%s): uses undeclared tag %q", idx, s.Name(), use.Name)
			}
			if !typeAllowed(declType, use.AllowedTypes) {
				return fmt.Errorf("step %d (%s): tag %q has declared type %s, not in allowed set for this use",
					idx, s.Name(), use.Name, declType)
			}
		}
		if decl, ok := s.DeclaresTagType(); ok {
			if _, exists := declared[decl.Name]; exists {
				return fmt.Errorf("step %d (%s): duplicate declaration of tag %q", idx, s.Name(), decl.Name)
			}
			declared[decl.Name] = decl.Type
		}
	}
	return nil
}

func typeAllowed(t read.TagValueType, allowed []read.TagValueType) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}

// ValidateAll runs ValidateSegments then ValidateOthers across every
// step, in order, surfacing the first failure (§4.3).
func ValidateAll(steps []Step, input InputSpec, output OutputSpec) error {
	for idx, s := range steps {
		if err := s.ValidateSegments(input); err != nil {
			return fmt.Errorf("step %d (%s): %w", idx, s.Name(), err)
		}
	}
	for idx, s := range steps {
		if err := s.ValidateOthers(input, output, steps, idx); err != nil {
			return fmt.Errorf("step %d (%s): %w", idx, s.Name(), err)
		}
	}
	return nil
}
