// Package vm implements the stack-based virtual machine that executes
// bytecode produced by the compiler package: value stack, call frames,
// globals, upvalues, and the class/instance call protocol.
package vm

import (
	"context"
	"fmt"
	"io"
	"os"
	"unsafe"

	"github.com/dolthub/swiss"

	"github.com/lumen-lang/lumen/lang/compiler"
	"github.com/lumen-lang/lumen/lang/object"
)

const (
	defaultMaxFrames     = 64
	defaultMaxStackSlots = defaultMaxFrames * 256
)

// VM is a single, independent execution context: its own value stack, call
// frames, globals and open-upvalue list, all anchored to one Heap. Multiple
// VMs may share or each own a Heap; nothing here is a package-level global,
// so more than one can coexist in the same process.
type VM struct {
	// Stdout is where PRINT output goes. Stderr is stored alongside it, but
	// the VM writes nothing to it: runtime errors are returned to the caller
	// rather than printed. Nil defaults to os.Stdout / os.Stderr.
	Stdout io.Writer
	Stderr io.Writer

	// MaxFrames bounds call depth; <= 0 uses defaultMaxFrames.
	MaxFrames int
	// MaxStackSlots bounds the value stack; <= 0 uses defaultMaxStackSlots.
	MaxStackSlots int

	heap *object.Heap

	// stack is allocated once, to its full MaxStackSlots capacity, and never
	// grown afterward: an open Upvalue holds a raw *Value into this array, a
	// pointer that a reallocating append would silently invalidate.
	stack []object.Value
	sp    int

	frames  []frame
	globals *swiss.Map[*object.String, object.Value]

	openUpvalues *object.Upvalue

	stdout io.Writer
	stderr io.Writer
}

// Option configures a VM before its stack and frames are allocated. Use
// WithStdio, WithMaxFrames and WithMaxStackSlots; an embedder setting the
// public Stdout/Stderr/MaxFrames/MaxStackSlots fields directly after New
// returns is too late, since the stack array is sized once up front.
type Option func(*VM)

// WithStdio overrides the VM's Stdout (PRINT output) and Stderr writers.
func WithStdio(stdout, stderr io.Writer) Option {
	return func(vm *VM) {
		vm.Stdout = stdout
		vm.Stderr = stderr
	}
}

// WithMaxFrames overrides the call-depth limit.
func WithMaxFrames(n int) Option {
	return func(vm *VM) { vm.MaxFrames = n }
}

// WithMaxStackSlots overrides the operand/local stack size.
func WithMaxStackSlots(n int) Option {
	return func(vm *VM) { vm.MaxStackSlots = n }
}

// New returns a VM backed by heap, with its globals populated with the
// standard natives and its GC root marker registered against this VM's own
// stack, frames, globals and open-upvalue list.
func New(heap *object.Heap, opts ...Option) *VM {
	vm := &VM{
		heap:    heap,
		globals: swiss.NewMap[*object.String, object.Value](32),
	}
	for _, opt := range opts {
		opt(vm)
	}
	vm.init()
	vm.defineNatives()
	heap.AddRootMarker(vm.markRoots) // lives for the VM's lifetime; never removed
	return vm
}

func (vm *VM) init() {
	if vm.Stdout != nil {
		vm.stdout = vm.Stdout
	} else {
		vm.stdout = os.Stdout
	}
	if vm.Stderr != nil {
		vm.stderr = vm.Stderr
	} else {
		vm.stderr = os.Stderr
	}
	if vm.MaxFrames <= 0 {
		vm.MaxFrames = defaultMaxFrames
	}
	if vm.MaxStackSlots <= 0 {
		vm.MaxStackSlots = defaultMaxStackSlots
	}
	vm.stack = make([]object.Value, vm.MaxStackSlots)
	vm.frames = make([]frame, 0, vm.MaxFrames)
}

// markRoots marks every Value directly reachable from this VM: the live
// portion of the operand stack, each frame's closure, every global, and
// the open-upvalue chain. It is registered with the Heap so a collection
// triggered mid-execution never reclaims anything still in play.
func (vm *VM) markRoots(mark func(object.Value)) {
	for _, v := range vm.stack[:vm.sp] {
		mark(v)
	}
	for i := range vm.frames {
		mark(vm.frames[i].closure)
	}
	vm.globals.Iter(func(_ *object.String, v object.Value) (stop bool) {
		mark(v)
		return false
	})
	for uv := vm.openUpvalues; uv != nil; uv = uv.NextOpen {
		mark(uv)
	}
}

// Interpret compiles and runs source to completion. It returns a
// compiler.Errors if compilation failed, or a *RuntimeError if the
// program compiled but failed during execution, matching the two error
// categories a host uses to choose an exit code.
func (vm *VM) Interpret(source string) error {
	return vm.InterpretContext(context.Background(), source)
}

// InterpretContext is Interpret with cooperative cancellation: the
// dispatch loop checks ctx.Done() every stepCheckInterval instructions, so
// a host can bound a REPL line or a script run with a deadline or an
// interrupt signal.
func (vm *VM) InterpretContext(ctx context.Context, source string) error {
	fn, err := compiler.Compile(vm.heap, source)
	if err != nil {
		return err
	}

	closure := vm.heap.NewClosure(fn, nil)
	vm.push(closure)
	if err := vm.callValue(closure, 0); err != nil {
		return err
	}

	return vm.run(ctx)
}

// --- stack helpers ---

// push writes v to the next free slot. The stack is sized so that a
// correctly compiled program (MaxFrames call frames, each with up to 256
// locals and operands) never exceeds it; like the reference design, this
// is an invariant the compiler upholds rather than a bound checked here.
func (vm *VM) push(v object.Value) {
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() object.Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) object.Value {
	return vm.stack[vm.sp-1-distance]
}

func (vm *VM) resetStack() {
	vm.sp = 0
	vm.frames = vm.frames[:0]
	vm.openUpvalues = nil
}

// --- call frames ---

func (vm *VM) currentFrame() *frame { return &vm.frames[len(vm.frames)-1] }

// call pushes a new frame invoking closure with the argCount arguments
// already sitting on top of the stack (with the callee itself, or the
// receiver for a method, at the slot directly below them).
func (vm *VM) call(closure *object.Closure, argCount int) error {
	if argCount != closure.Function.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argCount)
	}
	if len(vm.frames) >= vm.MaxFrames {
		return vm.runtimeError("Stack overflow.")
	}
	vm.frames = append(vm.frames, frame{
		closure: closure,
		slots:   vm.sp - argCount - 1,
	})
	return nil
}

// callValue dispatches a CALL instruction's callee, which may be a
// Closure, a BoundMethod, a Class (constructor call), or a Native.
func (vm *VM) callValue(callee object.Value, argCount int) error {
	switch c := callee.(type) {
	case *object.Closure:
		return vm.call(c, argCount)
	case *object.BoundMethod:
		vm.stack[vm.sp-argCount-1] = c.Receiver
		return vm.call(c.Method, argCount)
	case *object.Class:
		instance := vm.heap.NewInstance(c)
		vm.stack[vm.sp-argCount-1] = instance
		if init, ok := c.Method(vm.heap.InitString()); ok {
			return vm.call(init, argCount)
		}
		if argCount != 0 {
			return vm.runtimeError("Expected 0 arguments but got %d.", argCount)
		}
		return nil
	case *object.Native:
		if c.Arity >= 0 && argCount != c.Arity {
			return vm.runtimeError("Expected %d arguments but got %d.", c.Arity, argCount)
		}
		args := vm.stack[vm.sp-argCount : vm.sp]
		result, err := c.Fn(args)
		if err != nil {
			return vm.runtimeError("%s", err.Error())
		}
		vm.sp -= argCount + 1
		vm.push(result)
		return nil
	default:
		return vm.runtimeError("Can only call functions and classes.")
	}
}

// invokeFromClass looks up name on class's method table and calls it
// directly with argCount arguments already on the stack, the fast path
// INVOKE takes to avoid materializing a BoundMethod for an ordinary
// "receiver.method(args)" call.
func (vm *VM) invokeFromClass(class *object.Class, name *object.String, argCount int) error {
	method, ok := class.Method(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.Go())
	}
	return vm.call(method, argCount)
}

func (vm *VM) invoke(name *object.String, argCount int) error {
	receiver := vm.peek(argCount)
	instance, ok := receiver.(*object.Instance)
	if !ok {
		return vm.runtimeError("Only instances have methods.")
	}

	if field, ok := instance.Fields.Get(name); ok {
		vm.stack[vm.sp-argCount-1] = field
		return vm.callValue(field, argCount)
	}
	return vm.invokeFromClass(instance.Class, name, argCount)
}

// --- upvalues ---

// captureUpvalue returns the open upvalue for the stack slot at
// absolute index local, creating and linking one if none exists yet. The
// open-upvalue list is kept sorted by descending slot so two closures
// capturing the same variable always share one Upvalue.
func (vm *VM) captureUpvalue(local int) *object.Upvalue {
	var prev *object.Upvalue
	uv := vm.openUpvalues
	for uv != nil && indexOf(vm, uv) > local {
		prev = uv
		uv = uv.NextOpen
	}
	if uv != nil && indexOf(vm, uv) == local {
		return uv
	}

	created := vm.heap.NewUpvalue(&vm.stack[local])
	created.NextOpen = uv
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.NextOpen = created
	}
	return created
}

// indexOf returns the absolute stack slot an open upvalue currently points
// at. Valid only while the upvalue is open (Location still aliases a live
// stack slot rather than its own Closed field). The stack array is
// allocated once and never reallocated, so this pointer arithmetic is safe
// for the VM's lifetime.
func indexOf(vm *VM, uv *object.Upvalue) int {
	base := unsafe.Pointer(&vm.stack[0])
	ptr := unsafe.Pointer(uv.Location)
	return int((uintptr(ptr) - uintptr(base)) / unsafe.Sizeof(vm.stack[0]))
}

// closeUpvalues closes every open upvalue pointing at slot last or higher,
// hoisting each captured value off the stack before the frame that owns
// those slots returns or its block exits.
func (vm *VM) closeUpvalues(last int) {
	for vm.openUpvalues != nil && indexOf(vm, vm.openUpvalues) >= last {
		uv := vm.openUpvalues
		uv.Close()
		vm.openUpvalues = uv.NextOpen
	}
}

// --- errors ---

func (vm *VM) runtimeError(format string, args ...interface{}) *RuntimeError {
	msg := fmt.Sprintf(format, args...)
	line := 0
	if len(vm.frames) > 0 {
		line = vm.currentFrame().line()
	}

	trace := make([]string, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		fr := &vm.frames[i]
		name := fr.closure.Function.Name
		nameStr := ""
		if name != nil {
			nameStr = name.Go()
		}
		trace = append(trace, frameTraceLine(nameStr, fr.line()))
	}

	vm.resetStack()
	return &RuntimeError{Message: msg, Line: line, Trace: trace}
}
