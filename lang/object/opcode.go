package object

import "fmt"

// Opcode is a single bytecode instruction. Each instruction is one byte
// followed by zero or more inline operand bytes, as described for the
// bytecode model.
type Opcode uint8

// "x y OP z" stack pictures describe the operand stack before and after
// execution of the instruction, as in the reference opcode table.
const ( //nolint:revive
	CONSTANT Opcode = iota //                     - CONSTANT<idx>        value
	NIL                    //                     - NIL                  nil
	TRUE                   //                     - TRUE                 true
	FALSE                  //                     - FALSE                false
	POP                    //                     x POP                  -

	GET_LOCAL  //                     - GET_LOCAL<slot>      value
	SET_LOCAL  //                 value SET_LOCAL<slot>      value
	GET_GLOBAL //                     - GET_GLOBAL<nameidx>  value
	SET_GLOBAL //                 value SET_GLOBAL<nameidx>  value
	DEFINE_GLOBAL //              value DEFINE_GLOBAL<nameidx> -

	GET_UPVALUE //                    - GET_UPVALUE<slot>    value
	SET_UPVALUE //                value SET_UPVALUE<slot>    value

	GET_PROPERTY //              instance GET_PROPERTY<nameidx> value
	SET_PROPERTY //        instance value SET_PROPERTY<nameidx> value
	GET_SUPER    //              this super GET_SUPER<nameidx>  value

	EQUAL
	GREATER
	LESS

	ADD
	SUBTRACT
	MULTIPLY
	DIVIDE

	NOT
	NEGATE

	PRINT //                           x PRINT                 -

	JUMP          //                   - JUMP<offset>          -
	JUMP_IF_FALSE //                cond JUMP_IF_FALSE<offset> cond
	LOOP          //                   - LOOP<offset>           -

	CALL         //    fn arg1..argn CALL<argc>                result
	INVOKE       // recv arg1..argn INVOKE<nameidx,argc>        result
	SUPER_INVOKE // recv arg1..argn super SUPER_INVOKE<nameidx,argc> result

	CLOSURE       //             - CLOSURE<constidx,upvals...>   closure
	CLOSE_UPVALUE //             x CLOSE_UPVALUE                 -
	RETURN        //             x RETURN                        -

	CLASS   //                   - CLASS<nameidx>                class
	INHERIT //              super sub INHERIT                    super
	METHOD  //               class closure METHOD<nameidx>        class

	opcodeCount
)

var opcodeNames = [...]string{
	CONSTANT:      "constant",
	NIL:           "nil",
	TRUE:          "true",
	FALSE:         "false",
	POP:           "pop",
	GET_LOCAL:     "get_local",
	SET_LOCAL:     "set_local",
	GET_GLOBAL:    "get_global",
	SET_GLOBAL:    "set_global",
	DEFINE_GLOBAL: "define_global",
	GET_UPVALUE:   "get_upvalue",
	SET_UPVALUE:   "set_upvalue",
	GET_PROPERTY:  "get_property",
	SET_PROPERTY:  "set_property",
	GET_SUPER:     "get_super",
	EQUAL:         "equal",
	GREATER:       "greater",
	LESS:          "less",
	ADD:           "add",
	SUBTRACT:      "subtract",
	MULTIPLY:      "multiply",
	DIVIDE:        "divide",
	NOT:           "not",
	NEGATE:        "negate",
	PRINT:         "print",
	JUMP:          "jump",
	JUMP_IF_FALSE: "jump_if_false",
	LOOP:          "loop",
	CALL:          "call",
	INVOKE:        "invoke",
	SUPER_INVOKE:  "super_invoke",
	CLOSURE:       "closure",
	CLOSE_UPVALUE: "close_upvalue",
	RETURN:        "return",
	CLASS:         "class",
	INHERIT:       "inherit",
	METHOD:        "method",
}

func (op Opcode) String() string {
	if op < opcodeCount {
		if n := opcodeNames[op]; n != "" {
			return n
		}
	}
	return fmt.Sprintf("illegal opcode (%d)", byte(op))
}

// JumpOperandBytes is the fixed width of JUMP/JUMP_IF_FALSE/LOOP operands;
// always two bytes, big-endian, per the bytecode model. The compiler uses
// this instead of a literal 2 when emitting and patching jump offsets.
const JumpOperandBytes = 2
