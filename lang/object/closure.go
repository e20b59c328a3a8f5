package object

// Closure pairs a compiled Function with the upvalues it captured at
// creation time from enclosing call frames. Closures, not bare Functions,
// are the callable values that flow through the language at runtime.
type Closure struct {
	header
	Function *Function
	Upvalues []*Upvalue
}

var _ Object = (*Closure)(nil)

func (c *Closure) String() string { return c.Function.String() }
func (c *Closure) Type() string   { return "function" }
func (c *Closure) Name() string {
	if c.Function.Name == nil {
		return "script"
	}
	return c.Function.Name.Go()
}

func (c *Closure) Trace(mark func(Value)) {
	mark(c.Function)
	for _, uv := range c.Upvalues {
		mark(uv)
	}
}
