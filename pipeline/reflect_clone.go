package pipeline

import (
	"reflect"

	"github.com/TyberiusPrime/mbf-fastq-processor-sub001/transform"
)

// shallowCopy duplicates the struct s points to and returns a Step
// backed by the new pointer, so a clone's accumulator fields (counts,
// maps built during Init) no longer alias the original. Maps/slices
// embedded in the struct still alias their backing storage until a
// step's own Init/Apply replaces them (as Report and Demultiplex do),
// which matches every builtin step's actual mutation pattern: fields
// holding run-accumulated state are always reassigned, never mutated
// in place through a shared map.
func shallowCopy(s transform.Step) transform.Step {
	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return s
	}
	clone := reflect.New(v.Elem().Type())
	clone.Elem().Set(v.Elem())
	return clone.Interface().(transform.Step)
}
