package vm

import (
	"fmt"
	"strings"
)

// RuntimeError is a failure raised by the running program itself: a type
// error, an undefined global, an arity mismatch, a stack overflow, and so
// on. It is a distinct type from compiler.Errors so callers can use
// errors.As to tell a compile-time failure from a runtime one, matching
// the two exit codes (65 vs 70) a host program reports for each.
type RuntimeError struct {
	Message string
	Line    int
	// Trace holds one line per active call frame, innermost first, in the
	// "[line N] in fn()" form printed by a reference backtrace.
	Trace []string
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, t := range e.Trace {
		b.WriteByte('\n')
		b.WriteString(t)
	}
	return b.String()
}

// frameTraceLine formats one backtrace entry for a frame currently
// executing fn at the given source line.
func frameTraceLine(fnName string, line int) string {
	if fnName == "" {
		return fmt.Sprintf("[line %d] in script", line)
	}
	return fmt.Sprintf("[line %d] in %s()", line, fnName)
}
