package vm

import (
	"context"
	"fmt"

	"github.com/lumen-lang/lumen/lang/object"
)

// stepCheckInterval is how often, in dispatched instructions, the
// interpreter checks the passed context for cancellation. Checking every
// instruction would be needless overhead; checking too rarely would make
// ctx.Done() sluggish to take effect.
const stepCheckInterval = 1 << 12

// run is the bytecode dispatch loop: fetch, decode, execute, repeat, until
// the outermost frame returns or a runtime error unwinds the stack. ctx
// lets an embedder cancel a runaway or long-running script between
// instruction batches.
func (vm *VM) run(ctx context.Context) error {
	fr := vm.currentFrame()
	steps := uint64(0)

	readByte := func() byte {
		b := fr.chunk().Code[fr.ip]
		fr.ip++
		return b
	}
	readShort := func() int {
		hi := readByte()
		lo := readByte()
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() object.Value {
		return fr.chunk().Constants[readByte()]
	}
	readString := func() *object.String {
		return readConstant().(*object.String)
	}

	for {
		steps++
		if steps%stepCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return vm.runtimeError("execution cancelled: %s", ctx.Err())
			default:
			}
		}

		op := object.Opcode(readByte())
		switch op {
		case object.CONSTANT:
			vm.push(readConstant())

		case object.NIL:
			vm.push(object.Nil)
		case object.TRUE:
			vm.push(object.Bool(true))
		case object.FALSE:
			vm.push(object.Bool(false))
		case object.POP:
			vm.pop()

		case object.GET_LOCAL:
			slot := int(readByte())
			vm.push(vm.stack[fr.slots+slot])
		case object.SET_LOCAL:
			slot := int(readByte())
			vm.stack[fr.slots+slot] = vm.peek(0)

		case object.GET_GLOBAL:
			name := readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Go())
			}
			vm.push(v)
		case object.DEFINE_GLOBAL:
			name := readString()
			vm.globals.Put(name, vm.peek(0))
			vm.pop()
		case object.SET_GLOBAL:
			name := readString()
			if _, ok := vm.globals.Get(name); !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Go())
			}
			vm.globals.Put(name, vm.peek(0))

		case object.GET_UPVALUE:
			slot := int(readByte())
			vm.push(fr.closure.Upvalues[slot].Get())
		case object.SET_UPVALUE:
			slot := int(readByte())
			fr.closure.Upvalues[slot].Set(vm.peek(0))

		case object.GET_PROPERTY:
			if err := vm.getProperty(readString()); err != nil {
				return err
			}
		case object.SET_PROPERTY:
			if err := vm.setProperty(readString()); err != nil {
				return err
			}
		case object.GET_SUPER:
			name := readString()
			super := vm.pop().(*object.Class)
			instance := vm.pop()
			if err := vm.bindMethod(super, name, instance); err != nil {
				return err
			}

		case object.EQUAL:
			b, a := vm.pop(), vm.pop()
			vm.push(object.Bool(object.Equal(a, b)))
		case object.GREATER, object.LESS:
			if err := vm.numericCompare(op); err != nil {
				return err
			}

		case object.ADD:
			if err := vm.add(); err != nil {
				return err
			}
		case object.SUBTRACT, object.MULTIPLY, object.DIVIDE:
			if err := vm.arithmetic(op); err != nil {
				return err
			}

		case object.NOT:
			vm.push(object.Bool(!object.Truthy(vm.pop())))
		case object.NEGATE:
			n, ok := vm.peek(0).(object.Number)
			if !ok {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.pop()
			vm.push(-n)

		case object.PRINT:
			fmt.Fprintln(vm.stdout, vm.pop().String())

		case object.JUMP:
			offset := readShort()
			fr.ip += offset
		case object.JUMP_IF_FALSE:
			offset := readShort()
			if !object.Truthy(vm.peek(0)) {
				fr.ip += offset
			}
		case object.LOOP:
			offset := readShort()
			fr.ip -= offset

		case object.CALL:
			argCount := int(readByte())
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return err
			}
			fr = vm.currentFrame()

		case object.INVOKE:
			name := readString()
			argCount := int(readByte())
			if err := vm.invoke(name, argCount); err != nil {
				return err
			}
			fr = vm.currentFrame()

		case object.SUPER_INVOKE:
			name := readString()
			argCount := int(readByte())
			super := vm.pop().(*object.Class)
			if err := vm.invokeFromClass(super, name, argCount); err != nil {
				return err
			}
			fr = vm.currentFrame()

		case object.CLOSURE:
			fn := readConstant().(*object.Function)
			upvalues := make([]*object.Upvalue, fn.UpvalueCount)
			for i := range upvalues {
				isLocal := readByte()
				index := int(readByte())
				if isLocal != 0 {
					upvalues[i] = vm.captureUpvalue(fr.slots + index)
				} else {
					upvalues[i] = fr.closure.Upvalues[index]
				}
			}
			vm.push(vm.heap.NewClosure(fn, upvalues))

		case object.CLOSE_UPVALUE:
			vm.closeUpvalues(vm.sp - 1)
			vm.pop()

		case object.RETURN:
			result := vm.pop()
			vm.closeUpvalues(fr.slots)
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				vm.pop() // the top-level script closure
				return nil
			}
			vm.sp = fr.slots
			vm.push(result)
			fr = vm.currentFrame()

		case object.CLASS:
			vm.push(vm.heap.NewClass(readString()))

		case object.INHERIT:
			superVal := vm.peek(1)
			super, ok := superVal.(*object.Class)
			if !ok {
				return vm.runtimeError("Superclass must be a class.")
			}
			sub := vm.peek(0).(*object.Class)
			sub.InheritFrom(super)
			vm.pop() // drop the subclass; "super" keeps the superclass bound

		case object.METHOD:
			vm.defineMethod(readString())

		default:
			return vm.runtimeError("Unknown opcode %s.", op)
		}
	}
}
