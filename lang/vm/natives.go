package vm

import (
	"time"

	"github.com/lumen-lang/lumen/lang/object"
)

// defineNatives registers the small set of built-in functions every VM
// instance starts with, each as a global binding to a Native object.
func (vm *VM) defineNatives() {
	vm.defineNative("clock", 0, func(args []object.Value) (object.Value, error) {
		return object.Number(float64(time.Now().UnixNano()) / 1e9), nil
	})
	vm.defineNative("type", 1, func(args []object.Value) (object.Value, error) {
		return vm.heap.InternString(args[0].Type()), nil
	})
}

func (vm *VM) defineNative(name string, arity int, fn object.NativeFn) {
	native := vm.heap.NewNative(name, arity, fn)
	vm.globals.Put(vm.heap.InternString(name), native)
}
