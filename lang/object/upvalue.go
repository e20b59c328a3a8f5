package object

// Upvalue is a reference to a variable captured from an enclosing function.
// While open, Location points directly into a live VM stack slot so writes
// through either the original local or the upvalue are immediately visible
// to the other. On close (when the frame that owns the slot returns, or the
// CLOSE_UPVALUE instruction runs), the current value is copied into Closed
// and Location is redirected to point at it, so the captured variable
// survives its original stack frame.
type Upvalue struct {
	header
	Location *Value
	Closed   Value
	NextOpen *Upvalue // next entry in the VM's open-upvalue list, or nil
}

var _ Object = (*Upvalue)(nil)

func (u *Upvalue) String() string { return "upvalue" }
func (u *Upvalue) Type() string   { return "upvalue" }

// Get returns the upvalue's current value, whether open or closed.
func (u *Upvalue) Get() Value { return *u.Location }

// Set writes through the upvalue, whether open or closed.
func (u *Upvalue) Set(v Value) { *u.Location = v }

// Close hoists the value pointed at by Location into the heap and
// redirects Location to point at it, detaching the upvalue from the stack.
func (u *Upvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

func (u *Upvalue) Trace(mark func(Value)) {
	if v := *u.Location; v != nil {
		mark(v)
	}
}
