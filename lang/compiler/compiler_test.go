package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumen-lang/lumen/lang/compiler"
	"github.com/lumen-lang/lumen/lang/object"
)

func compile(t *testing.T, source string) *object.Function {
	t.Helper()
	heap := object.NewHeap()
	fn, err := compiler.Compile(heap, source)
	require.NoError(t, err)
	require.NotNil(t, fn)
	return fn
}

func TestCompileArithmeticExpression(t *testing.T) {
	fn := compile(t, "1 + 2 * 3;")
	require.Contains(t, fn.Chunk.Code, byte(object.MULTIPLY))
	require.Contains(t, fn.Chunk.Code, byte(object.ADD))
	require.Contains(t, fn.Chunk.Code, byte(object.POP))
}

func TestCompileGlobalVariable(t *testing.T) {
	fn := compile(t, "var x = 10; print x;")
	require.Contains(t, fn.Chunk.Code, byte(object.DEFINE_GLOBAL))
	require.Contains(t, fn.Chunk.Code, byte(object.GET_GLOBAL))
	require.Contains(t, fn.Chunk.Code, byte(object.PRINT))
}

func TestCompileLocalVariableUsesSlotNotGlobal(t *testing.T) {
	fn := compile(t, "{ var x = 10; print x; }")
	require.NotContains(t, fn.Chunk.Code, byte(object.DEFINE_GLOBAL))
	require.Contains(t, fn.Chunk.Code, byte(object.GET_LOCAL))
}

func TestCompileIfElseEmitsJumps(t *testing.T) {
	fn := compile(t, `if (1 < 2) { print "yes"; } else { print "no"; }`)
	require.Contains(t, fn.Chunk.Code, byte(object.JUMP_IF_FALSE))
	require.Contains(t, fn.Chunk.Code, byte(object.JUMP))
}

func TestCompileWhileLoopEmitsLoop(t *testing.T) {
	fn := compile(t, `var i = 0; while (i < 3) { i = i + 1; }`)
	require.Contains(t, fn.Chunk.Code, byte(object.LOOP))
}

func TestCompileFunctionProducesClosure(t *testing.T) {
	fn := compile(t, `fun add(a, b) { return a + b; }`)
	require.Contains(t, fn.Chunk.Code, byte(object.CLOSURE))
	require.Contains(t, fn.Chunk.Code, byte(object.DEFINE_GLOBAL))
}

func TestCompileClosureCapturesUpvalue(t *testing.T) {
	fn := compile(t, `
		fun makeCounter() {
			var count = 0;
			fun counter() {
				count = count + 1;
				return count;
			}
			return counter;
		}
	`)
	require.Contains(t, fn.Chunk.Code, byte(object.CLOSURE))
}

func TestCompileClassWithMethodAndInheritance(t *testing.T) {
	fn := compile(t, `
		class Animal {
			speak() { print "..."; }
		}
		class Dog < Animal {
			speak() { print "woof"; }
		}
		var d = Dog();
		d.speak();
	`)
	require.Contains(t, fn.Chunk.Code, byte(object.CLASS))
	require.Contains(t, fn.Chunk.Code, byte(object.INHERIT))
	require.Contains(t, fn.Chunk.Code, byte(object.METHOD))
}

func TestCompileThisAndSuper(t *testing.T) {
	fn := compile(t, `
		class A {
			greet() { print "a"; }
		}
		class B < A {
			greet() {
				super.greet();
				print this;
			}
		}
	`)
	// Method bodies compile into their own Functions, stored as CLOSURE
	// constants of the script chunk; B's greet is the last one.
	var greet *object.Function
	for _, k := range fn.Chunk.Constants {
		if f, ok := k.(*object.Function); ok {
			greet = f
		}
	}
	require.NotNil(t, greet)
	// super.greet() is a call, so it compiles to the fused SUPER_INVOKE.
	require.Contains(t, greet.Chunk.Code, byte(object.SUPER_INVOKE))
}

func TestCompileReportsErrorAtEndForUnterminatedBlock(t *testing.T) {
	heap := object.NewHeap()
	_, err := compiler.Compile(heap, "fun f() { print 1;")
	require.Error(t, err)

	var errs compiler.Errors
	require.ErrorAs(t, err, &errs)
	require.NotEmpty(t, errs)
	require.True(t, errs[0].AtEnd)
}

func TestCompileReportsErrorForInvalidAssignmentTarget(t *testing.T) {
	heap := object.NewHeap()
	_, err := compiler.Compile(heap, "1 + 2 = 3;")
	require.Error(t, err)
}

func TestCompileReportsErrorForTopLevelReturn(t *testing.T) {
	heap := object.NewHeap()
	_, err := compiler.Compile(heap, "return 1;")
	require.Error(t, err)
}

func TestCompileRecoversAfterErrorAndKeepsParsing(t *testing.T) {
	heap := object.NewHeap()
	_, err := compiler.Compile(heap, "1 + ; var x = 1;")
	require.Error(t, err)

	var errs compiler.Errors
	require.ErrorAs(t, err, &errs)
	// Exactly one real syntax error; synchronization must not cascade into
	// spurious follow-on diagnostics for the rest of the source.
	require.Len(t, errs, 1)
}
