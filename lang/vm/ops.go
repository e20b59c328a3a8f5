package vm

import "github.com/lumen-lang/lumen/lang/object"

// add implements the ADD instruction's two overloads: numeric addition, and
// string concatenation when both operands are strings. Any other operand
// pairing is a type error.
func (vm *VM) add() error {
	b, a := vm.peek(0), vm.peek(1)
	switch a := a.(type) {
	case object.Number:
		bn, ok := b.(object.Number)
		if !ok {
			return vm.runtimeError("Operands must be two numbers or two strings.")
		}
		vm.pop()
		vm.pop()
		vm.push(a + bn)
		return nil
	case *object.String:
		bs, ok := b.(*object.String)
		if !ok {
			return vm.runtimeError("Operands must be two numbers or two strings.")
		}
		vm.pop()
		vm.pop()
		vm.push(vm.heap.InternString(a.Go() + bs.Go()))
		return nil
	default:
		return vm.runtimeError("Operands must be two numbers or two strings.")
	}
}

// arithmetic implements SUBTRACT, MULTIPLY and DIVIDE, all of which require
// two numeric operands.
func (vm *VM) arithmetic(op object.Opcode) error {
	bn, bOk := vm.peek(0).(object.Number)
	an, aOk := vm.peek(1).(object.Number)
	if !aOk || !bOk {
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	switch op {
	case object.SUBTRACT:
		vm.push(an - bn)
	case object.MULTIPLY:
		vm.push(an * bn)
	case object.DIVIDE:
		vm.push(an / bn)
	}
	return nil
}

// numericCompare implements GREATER and LESS, which require two numeric
// operands and push a Bool.
func (vm *VM) numericCompare(op object.Opcode) error {
	bn, bOk := vm.peek(0).(object.Number)
	an, aOk := vm.peek(1).(object.Number)
	if !aOk || !bOk {
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	switch op {
	case object.GREATER:
		vm.push(object.Bool(an > bn))
	case object.LESS:
		vm.push(object.Bool(an < bn))
	}
	return nil
}

// getProperty implements GET_PROPERTY: an instance field shadows a method
// of the same name, and a method resolves to a BoundMethod pairing the
// instance with the Closure found on its class.
func (vm *VM) getProperty(name *object.String) error {
	instance, ok := vm.peek(0).(*object.Instance)
	if !ok {
		return vm.runtimeError("Only instances have properties.")
	}

	if v, ok := instance.Fields.Get(name); ok {
		vm.pop()
		vm.push(v)
		return nil
	}
	class := instance.Class
	vm.pop() // the instance; bindMethod only pushes the result
	return vm.bindMethod(class, name, instance)
}

// setProperty implements SET_PROPERTY: instances may freely create or
// overwrite fields, there being no declared-field list to validate against.
func (vm *VM) setProperty(name *object.String) error {
	instance, ok := vm.peek(1).(*object.Instance)
	if !ok {
		return vm.runtimeError("Only instances have fields.")
	}
	value := vm.peek(0)
	instance.Fields.Put(name, value)

	vm.pop()
	vm.pop()
	vm.push(value)
	return nil
}

// bindMethod looks up name on class and pushes a BoundMethod pairing it
// with instance, or reports an undefined-property error if no such method
// exists. The caller is responsible for having already popped whatever
// operands led to instance and class off the stack.
func (vm *VM) bindMethod(class *object.Class, name *object.String, instance object.Value) error {
	method, ok := class.Method(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.Go())
	}
	vm.push(vm.heap.NewBoundMethod(instance, method))
	return nil
}

// defineMethod implements METHOD: pops a Closure off the stack and records
// it under name in the class now sitting beneath it (left in place so
// successive METHOD instructions, and the class-body epilogue's POP, see
// the same value).
func (vm *VM) defineMethod(name *object.String) {
	method := vm.pop().(*object.Closure)
	class := vm.peek(0).(*object.Class)
	class.SetMethod(name, method)
}
