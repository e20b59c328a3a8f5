package object

// NativeFn is the signature of a function implemented by the host.
// Natives receive their arguments as a slice and return a Value; an error
// return raises a runtime error in the calling VM (the "means for natives
// to raise a runtime error" left open by the reference design).
type NativeFn func(args []Value) (Value, error)

// Native is a callable value provided by the host embedding the machine.
type Native struct {
	header
	NameStr string
	Arity   int // -1 means variadic: any argument count is accepted
	Fn      NativeFn
}

var _ Object = (*Native)(nil)

func (n *Native) String() string { return "<native fn " + n.NameStr + ">" }
func (n *Native) Type() string   { return "native" }
func (n *Native) Name() string   { return n.NameStr }
