package object

import (
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"
)

// Instance is a runtime instance of a Class: a single level of fields,
// keyed by interned field name. There is no prototype chain beyond the
// class's method table consulted by GET_PROPERTY when a field is absent.
type Instance struct {
	header
	Class  *Class
	Fields *swiss.Map[*String, Value]
}

var _ Object = (*Instance)(nil)

func (in *Instance) String() string { return in.Class.Name.Go() + " instance" }
func (in *Instance) Type() string   { return "instance" }

// FieldNames returns the instance's own field names, sorted. The VM's
// "undefined property" errors do not use it; they name only the missing
// property.
func (in *Instance) FieldNames() []string {
	names := make([]string, 0, in.Fields.Count())
	in.Fields.Iter(func(name *String, _ Value) (stop bool) {
		names = append(names, name.Go())
		return false
	})
	slices.Sort(names)
	return names
}

func (in *Instance) Trace(mark func(Value)) {
	mark(in.Class)
	in.Fields.Iter(func(_ *String, v Value) (stop bool) {
		mark(v)
		return false
	})
}
