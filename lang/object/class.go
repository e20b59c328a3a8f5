package object

import (
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"
)

// Class is a runtime class value: its name and its method table, keyed by
// interned method name. Inheritance is implemented by copying the
// superclass's methods into the subclass's table at class-definition time
// (the INHERIT instruction), not by a parent pointer walked at lookup time.
type Class struct {
	header
	Name    *String
	Methods *swiss.Map[*String, *Closure]
}

var _ Object = (*Class)(nil)

func (c *Class) String() string { return c.Name.Go() }
func (c *Class) Type() string   { return "class" }

// Method looks up name in the class's method table.
func (c *Class) Method(name *String) (*Closure, bool) {
	return c.Methods.Get(name)
}

// SetMethod stores closure as the method named name.
func (c *Class) SetMethod(name *String, closure *Closure) {
	c.Methods.Put(name, closure)
}

// InheritFrom copies every method of super into c's own method table, the
// runtime effect of the INHERIT instruction.
func (c *Class) InheritFrom(super *Class) {
	super.Methods.Iter(func(name *String, m *Closure) (stop bool) {
		c.Methods.Put(name, m)
		return false
	})
}

// MethodNames returns the class's method names, sorted. The VM's
// "undefined property" errors do not use it; they name only the missing
// property.
func (c *Class) MethodNames() []string {
	names := make([]string, 0, c.Methods.Count())
	c.Methods.Iter(func(name *String, _ *Closure) (stop bool) {
		names = append(names, name.Go())
		return false
	})
	slices.Sort(names)
	return names
}

func (c *Class) Trace(mark func(Value)) {
	mark(c.Name)
	c.Methods.Iter(func(_ *String, m *Closure) (stop bool) {
		mark(m)
		return false
	})
}
