package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumen-lang/lumen/lang/object"
	"github.com/lumen-lang/lumen/lang/vm"
)

func run(t *testing.T, source string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	heap := object.NewHeap()
	// Stdio must be supplied as an Option: the VM's init() only reads the
	// public Stdout/Stderr fields once, up front, so setting them after
	// New returns would silently have no effect.
	m := vm.New(heap, vm.WithStdio(&out, &out))
	err := m.Interpret(source)
	return out.String(), err
}

func TestArithmeticPrecedence(t *testing.T) {
	out, err := run(t, `print 1 + 2 * 3;`)
	require.NoError(t, err)
	require.Equal(t, "7\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out, err := run(t, `print "foo" + "bar";`)
	require.NoError(t, err)
	require.Equal(t, "foobar\n", out)
}

func TestGlobalAndLocalVariables(t *testing.T) {
	out, err := run(t, `
		var x = 10;
		{
			var y = 20;
			print x + y;
		}
		print x;
	`)
	require.NoError(t, err)
	require.Equal(t, "30\n10\n", out)
}

func TestControlFlow(t *testing.T) {
	out, err := run(t, `
		var i = 0;
		var sum = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		print sum;

		if (sum > 5) {
			print "big";
		} else {
			print "small";
		}
	`)
	require.NoError(t, err)
	require.Equal(t, "10\nbig\n", out)
}

func TestForLoop(t *testing.T) {
	out, err := run(t, `
		var total = 0;
		for (var i = 0; i < 4; i = i + 1) {
			total = total + i;
		}
		print total;
	`)
	require.NoError(t, err)
	require.Equal(t, "6\n", out)
}

func TestClosureCounterCapturesUpvalueByReference(t *testing.T) {
	out, err := run(t, `
		fun makeCounter() {
			var count = 0;
			fun increment() {
				count = count + 1;
				return count;
			}
			return increment;
		}

		var counter = makeCounter();
		print counter();
		print counter();
		print counter();
	`)
	require.NoError(t, err)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestTwoClosuresOverSameLocalShareUpvalue(t *testing.T) {
	out, err := run(t, `
		fun makePair() {
			var value = 0;
			fun set(v) { value = v; }
			fun get() { return value; }
			set(99);
			return get();
		}
		print makePair();
	`)
	require.NoError(t, err)
	require.Equal(t, "99\n", out)
}

func TestRecursiveFunction(t *testing.T) {
	out, err := run(t, `
		fun fib(n) {
			if (n < 2) return n;
			return fib(n - 1) + fib(n - 2);
		}
		print fib(10);
	`)
	require.NoError(t, err)
	require.Equal(t, "55\n", out)
}

func TestClassInstantiationFieldsAndMethods(t *testing.T) {
	out, err := run(t, `
		class Counter {
			init(start) {
				this.value = start;
			}
			increment() {
				this.value = this.value + 1;
				return this.value;
			}
		}

		var c = Counter(10);
		print c.increment();
		print c.increment();
	`)
	require.NoError(t, err)
	require.Equal(t, "11\n12\n", out)
}

func TestBoundMethodFixesReceiverAtBindTime(t *testing.T) {
	// c.increment() (the INVOKE fast path) never touches getProperty/
	// bindMethod or *object.BoundMethod at all. Referencing c.increment as
	// a bare value forces GET_PROPERTY to resolve it to a method and
	// materialize a BoundMethod, which is what this test drives.
	out, err := run(t, `
		class Counter {
			init(start) {
				this.value = start;
			}
			increment() {
				this.value = this.value + 1;
				return this.value;
			}
		}

		var c = Counter(10);
		var m = c.increment;
		print m();
		print m();

		c = Counter(100);
		print m();
	`)
	require.NoError(t, err)
	// The third call still increments the original Counter(10) instance,
	// not the one c was reassigned to: the receiver was fixed when m was
	// bound, not re-resolved through the variable c.
	require.Equal(t, "11\n12\n13\n", out)
}

func TestClassInheritanceAndSuper(t *testing.T) {
	out, err := run(t, `
		class Animal {
			speak() {
				return "...";
			}
			describe() {
				return "I say " + this.speak();
			}
		}
		class Dog < Animal {
			speak() {
				return "woof and " + super.speak();
			}
		}

		var d = Dog();
		print d.describe();
	`)
	require.NoError(t, err)
	require.Equal(t, "I say woof and ...\n", out)
}

func TestNativeClockAndType(t *testing.T) {
	out, err := run(t, `
		print type(1);
		print type("s");
		print type(nil);
		print type(true);
		print clock() >= 0;
	`)
	require.NoError(t, err)
	require.Equal(t, "number\nstring\nnil\nbool\ntrue\n", out)
}

func TestRuntimeErrorUndefinedVariable(t *testing.T) {
	_, err := run(t, `print undefinedThing;`)
	require.Error(t, err)

	var rerr *vm.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Contains(t, rerr.Message, "Undefined variable 'undefinedThing'")
}

func TestRuntimeErrorTypeMismatchIncludesBacktrace(t *testing.T) {
	_, err := run(t, `
		fun inner() {
			return 1 + "x";
		}
		fun outer() {
			return inner();
		}
		outer();
	`)
	require.Error(t, err)

	var rerr *vm.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Contains(t, rerr.Message, "Operands must be two numbers or two strings.")
	require.Len(t, rerr.Trace, 3) // inner, outer, script
}

func TestRuntimeErrorResetsStackForNextInterpretCall(t *testing.T) {
	heap := object.NewHeap()
	var out bytes.Buffer
	m := vm.New(heap, vm.WithStdio(&out, &out))

	err := m.Interpret(`1 + "x";`)
	require.Error(t, err)

	err = m.Interpret(`print "still alive";`)
	require.NoError(t, err)
	require.Equal(t, "still alive\n", out.String())
}
