// Package compiler implements the single-pass Pratt parser that compiles
// Lumen source directly to bytecode, resolving lexical scopes and upvalues
// as it goes. There is no separate AST: parsing and code generation are one
// pass, which is load-bearing for the language's simple panic-mode error
// recovery and keeps compiler state minimal.
package compiler

import (
	"fmt"
	"strconv"

	"github.com/lumen-lang/lumen/lang/object"
	"github.com/lumen-lang/lumen/lang/scanner"
	"github.com/lumen-lang/lumen/lang/token"
)

const (
	maxLocals   = 256
	maxUpvalues = 256
	maxArgs     = 255
	maxConstants = 256
)

// Error is a single compile-time diagnostic: "[line N] Error at 'lexeme':
// message", "at end" for EOF, or no location clause at all for an in-band
// scanner error (whose lexeme is already the diagnostic, not source text).
type Error struct {
	Line     int
	AtEnd    bool
	AtToken  bool
	Lexeme   string
	Message  string
}

func (e *Error) Error() string {
	var where string
	switch {
	case e.AtEnd:
		where = " at end"
	case e.AtToken:
		where = fmt.Sprintf(" at '%s'", e.Lexeme)
	}
	return fmt.Sprintf("[line %d] Error%s: %s", e.Line, where, e.Message)
}

// Errors aggregates every diagnostic from a single, panic-mode-recovered
// compile pass.
type Errors []*Error

func (es Errors) Error() string {
	if len(es) == 1 {
		return es[0].Error()
	}
	s := fmt.Sprintf("%d compile errors:", len(es))
	for _, e := range es {
		s += "\n" + e.Error()
	}
	return s
}

func (es Errors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// functionType records which kind of function body is currently being
// compiled, since `this`/`super`/implicit-return/bare-return behave
// differently for each.
type functionType int

const (
	typeScript functionType = iota
	typeFunction
	typeMethod
	typeInitializer
)

// local is a compile-time record of one local variable's stack slot.
type local struct {
	name       string
	depth      int // -1 while declared but not yet initialized
	isCaptured bool
}

// upvalueRef is a compile-time record of one upvalue a function captures,
// either from a local in the immediately enclosing function or from an
// upvalue of that enclosing function.
type upvalueRef struct {
	index   uint8
	isLocal bool
}

// funcState holds the compiler state for one function body being compiled:
// its own locals, upvalues, and scope depth. funcStates nest one per
// enclosing function, mirroring the lexical nesting of the source.
type funcState struct {
	enclosing *funcState
	fn        *object.Function
	fnType    functionType

	locals     []local
	upvalues   []upvalueRef
	scopeDepth int
}

// classState tracks compile-time context for a class body being compiled,
// so `super` expressions can be resolved and nested class bodies handled.
type classState struct {
	enclosing      *classState
	hasSuperclass  bool
}

// Compiler drives the single-pass parse-and-emit process over one token
// stream. Construct one with Compile; it is not reusable across sources.
type Compiler struct {
	heap    *object.Heap
	scanner *scanner.Scanner

	current  token.Token
	previous token.Token

	hadError  bool
	panicMode bool
	errs      Errors

	fstate *funcState
	cstate *classState
}

// Compile compiles source into a top-level script Function, allocating any
// String and Function objects it needs on heap. On success it returns the
// script function and a nil error. On failure it returns nil and an Errors
// value with every diagnostic collected before synchronization, matching
// the "compile returns a null function" contract of §7.
func Compile(heap *object.Heap, source string) (*object.Function, error) {
	c := &Compiler{heap: heap, scanner: scanner.New(source)}
	defer heap.AddRootMarker(c.markRoots)()
	c.pushFunction(typeScript, nil)

	c.advance()
	for !c.matchTok(token.EOF) {
		c.declaration()
	}
	// The loop above only exits once c.current.Kind == token.EOF, so there is
	// nothing left to consume here.

	fn := c.endFunction()
	if c.hadError {
		return nil, c.errs
	}
	return fn, nil
}

// markRoots marks every Function still under construction, across the
// whole enclosing chain of funcStates. It is registered with the Heap for
// the duration of a single Compile call, so a collection triggered by
// source large enough to cross the GC threshold (or by heap pressure
// accumulated across REPL lines sharing one Heap) can't sweep the
// in-progress function or any constant already reachable from its Chunk
// before it's linked into something the VM can see.
func (c *Compiler) markRoots(mark func(object.Value)) {
	for fs := c.fstate; fs != nil; fs = fs.enclosing {
		mark(fs.fn)
	}
}

func (c *Compiler) pushFunction(fnType functionType, name *object.String) {
	fs := &funcState{enclosing: c.fstate, fnType: fnType, scopeDepth: 0}
	fs.fn = c.heap.NewFunction(name)

	// Slot 0 is reserved: for methods/initializers it holds `this`; for
	// plain functions and the script it is an unnamed placeholder that is
	// never read, keeping slot numbering uniform with the reference design.
	slotName := ""
	if fnType == typeMethod || fnType == typeInitializer {
		slotName = "this"
	}
	fs.locals = append(fs.locals, local{name: slotName, depth: 0})

	c.fstate = fs
}

// endFunction finalizes the current function, emitting the implicit
// trailing `nil; return` if the body fell off the end, and pops back to the
// enclosing funcState.
func (c *Compiler) endFunction() *object.Function {
	c.emitReturn()
	fn := c.fstate.fn
	fn.UpvalueCount = len(c.fstate.upvalues)
	c.fstate = c.fstate.enclosing
	return fn
}

// --- token stream plumbing ---

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.Scan()
		if c.current.Kind != token.ERROR {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(kind token.Kind) bool { return c.current.Kind == kind }

func (c *Compiler) matchTok(kind token.Kind) bool {
	if !c.check(kind) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(kind token.Kind, msg string) {
	if c.current.Kind == kind {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.previous, msg) }

func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true
	e := &Error{
		Line:    tok.Line,
		Message: msg,
		Lexeme:  tok.Lexeme,
		AtEnd:   tok.Kind == token.EOF,
		AtToken: tok.Kind != token.EOF && tok.Kind != token.ERROR,
	}
	c.errs = append(c.errs, e)
}

// synchronize recovers from a compile error by discarding tokens until a
// plausible statement boundary, so that a single mistake does not cascade
// into spurious follow-on errors.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Kind != token.EOF {
		if c.previous.Kind == token.SEMICOLON {
			return
		}
		switch c.current.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

// --- bytecode emission ---

func (c *Compiler) chunk() *object.Chunk { return c.fstate.fn.Chunk }

func (c *Compiler) emitByte(b byte) {
	c.chunk().Write(b, c.previous.Line)
}

func (c *Compiler) emitOp(op object.Opcode) { c.emitByte(byte(op)) }

func (c *Compiler) emitOpByte(op object.Opcode, b byte) {
	c.emitByte(byte(op))
	c.emitByte(b)
}

func (c *Compiler) emitReturn() {
	if c.fstate.fnType == typeInitializer {
		c.emitOpByte(object.GET_LOCAL, 0)
	} else {
		c.emitOp(object.NIL)
	}
	c.emitOp(object.RETURN)
}

func (c *Compiler) makeConstant(v object.Value) byte {
	ch := c.chunk()
	if len(ch.Constants) >= maxConstants {
		c.error("Too many constants in one chunk.")
		return 0
	}
	idx := ch.AddConstant(v)
	if idx > 0xff {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(v object.Value) {
	c.emitOpByte(object.CONSTANT, c.makeConstant(v))
}

// maxJumpOffset is the largest value a JumpOperandBytes-wide, big-endian
// jump/loop operand can encode.
const maxJumpOffset = 1<<(8*object.JumpOperandBytes) - 1

// emitJump emits a jump instruction with a JumpOperandBytes-wide placeholder
// operand and returns the offset of its first placeholder byte, to be fixed
// up later by patchJump.
func (c *Compiler) emitJump(op object.Opcode) int {
	c.emitOp(op)
	for i := 0; i < object.JumpOperandBytes; i++ {
		c.emitByte(0xff)
	}
	return len(c.chunk().Code) - object.JumpOperandBytes
}

func (c *Compiler) patchJump(offset int) {
	ch := c.chunk()
	jump := len(ch.Code) - offset - object.JumpOperandBytes
	if jump > maxJumpOffset {
		c.error("Too much code to jump over.")
	}
	ch.Code[offset] = byte(jump >> 8)
	ch.Code[offset+1] = byte(jump)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(object.LOOP)
	offset := len(c.chunk().Code) - loopStart + object.JumpOperandBytes
	if offset > maxJumpOffset {
		c.error("Loop body too large.")
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

// --- scopes, locals and upvalues ---

func (c *Compiler) beginScope() { c.fstate.scopeDepth++ }

func (c *Compiler) endScope() {
	c.fstate.scopeDepth--
	fs := c.fstate
	for len(fs.locals) > 0 && fs.locals[len(fs.locals)-1].depth > fs.scopeDepth {
		last := fs.locals[len(fs.locals)-1]
		if last.isCaptured {
			c.emitOp(object.CLOSE_UPVALUE)
		} else {
			c.emitOp(object.POP)
		}
		fs.locals = fs.locals[:len(fs.locals)-1]
	}
}

func (c *Compiler) identifierConstant(name token.Token) byte {
	return c.makeConstant(c.heap.InternString(name.Lexeme))
}

func identifiersEqual(a, b string) bool { return a == b }

func (c *Compiler) addLocal(name token.Token) {
	fs := c.fstate
	if len(fs.locals) >= maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	fs.locals = append(fs.locals, local{name: name.Lexeme, depth: -1})
}

func (c *Compiler) declareVariable() {
	fs := c.fstate
	if fs.scopeDepth == 0 {
		return
	}
	name := c.previous
	for i := len(fs.locals) - 1; i >= 0; i-- {
		l := fs.locals[i]
		if l.depth != -1 && l.depth < fs.scopeDepth {
			break
		}
		if identifiersEqual(l.name, name.Lexeme) {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) parseVariable(errMsg string) byte {
	c.consume(token.IDENT, errMsg)
	c.declareVariable()
	if c.fstate.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

func (c *Compiler) markInitialized() {
	fs := c.fstate
	if fs.scopeDepth == 0 {
		return
	}
	fs.locals[len(fs.locals)-1].depth = fs.scopeDepth
}

func (c *Compiler) defineVariable(global byte) {
	if c.fstate.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(object.DEFINE_GLOBAL, global)
}

func resolveLocal(fs *funcState, name token.Token) int {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if identifiersEqual(fs.locals[i].name, name.Lexeme) {
			return i
		}
	}
	return -1
}

func (c *Compiler) resolveLocalReporting(fs *funcState, name token.Token) int {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if identifiersEqual(fs.locals[i].name, name.Lexeme) {
			if fs.locals[i].depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (c *Compiler) addUpvalue(fs *funcState, index uint8, isLocal bool) int {
	for i, uv := range fs.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(fs.upvalues) >= maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	fs.upvalues = append(fs.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(fs.upvalues) - 1
}

func (c *Compiler) resolveUpvalue(fs *funcState, name token.Token) int {
	if fs.enclosing == nil {
		return -1
	}
	if local := resolveLocal(fs.enclosing, name); local != -1 {
		fs.enclosing.locals[local].isCaptured = true
		return c.addUpvalue(fs, uint8(local), true)
	}
	if up := c.resolveUpvalue(fs.enclosing, name); up != -1 {
		return c.addUpvalue(fs, uint8(up), false)
	}
	return -1
}

// --- declarations and statements ---

func (c *Compiler) declaration() {
	switch {
	case c.matchTok(token.CLASS):
		c.classDeclaration()
	case c.matchTok(token.FUN):
		c.funDeclaration()
	case c.matchTok(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.matchTok(token.EQ) {
		c.expression()
	} else {
		c.emitOp(object.NIL)
	}
	c.consume(token.SEMICOLON, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(typeFunction)
	c.defineVariable(global)
}

func (c *Compiler) function(fnType functionType) {
	name := c.heap.InternString(c.previous.Lexeme)
	c.pushFunction(fnType, name)
	c.beginScope()

	c.consume(token.LPAREN, "Expect '(' after function name.")
	if !c.check(token.RPAREN) {
		for {
			c.fstate.fn.Arity++
			if c.fstate.fn.Arity > maxArgs {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := c.parseVariable("Expect parameter name.")
			c.defineVariable(constant)
			if !c.matchTok(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after parameters.")
	c.consume(token.LBRACE, "Expect '{' before function body.")
	c.block()

	upvalues := c.fstate.upvalues
	fn := c.endFunction()

	c.emitOpByte(object.CLOSURE, c.makeConstant(fn))
	for _, uv := range upvalues {
		isLocal := byte(0)
		if uv.isLocal {
			isLocal = 1
		}
		c.emitByte(isLocal)
		c.emitByte(uv.index)
	}
}

func (c *Compiler) classDeclaration() {
	c.consume(token.IDENT, "Expect class name.")
	nameTok := c.previous
	nameConst := c.identifierConstant(nameTok)
	c.declareVariable()

	c.emitOpByte(object.CLASS, nameConst)
	c.defineVariable(nameConst)

	cs := &classState{enclosing: c.cstate}
	c.cstate = cs

	if c.matchTok(token.LT) {
		c.consume(token.IDENT, "Expect superclass name.")
		c.variable(false)
		if identifiersEqual(nameTok.Lexeme, c.previous.Lexeme) {
			c.error("A class can't inherit from itself.")
		}

		c.beginScope()
		c.addLocal(token.Token{Kind: token.IDENT, Lexeme: "super"})
		c.defineVariable(0)

		c.namedVariable(nameTok, false)
		c.emitOp(object.INHERIT)
		cs.hasSuperclass = true
	}

	c.namedVariable(nameTok, false)
	c.consume(token.LBRACE, "Expect '{' before class body.")
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RBRACE, "Expect '}' after class body.")
	c.emitOp(object.POP) // pop the class itself, left by namedVariable above

	if cs.hasSuperclass {
		c.endScope()
	}
	c.cstate = cs.enclosing
}

func (c *Compiler) method() {
	c.consume(token.IDENT, "Expect method name.")
	nameTok := c.previous
	nameConst := c.identifierConstant(nameTok)

	fnType := typeMethod
	if nameTok.Lexeme == "init" {
		fnType = typeInitializer
	}
	c.function(fnType)
	c.emitOpByte(object.METHOD, nameConst)
}

func (c *Compiler) statement() {
	switch {
	case c.matchTok(token.PRINT):
		c.printStatement()
	case c.matchTok(token.IF):
		c.ifStatement()
	case c.matchTok(token.RETURN):
		c.returnStatement()
	case c.matchTok(token.WHILE):
		c.whileStatement()
	case c.matchTok(token.FOR):
		c.forStatement()
	case c.matchTok(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "Expect '}' after block.")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after value.")
	c.emitOp(object.PRINT)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after expression.")
	c.emitOp(object.POP)
}

func (c *Compiler) returnStatement() {
	if c.fstate.fnType == typeScript {
		c.error("Can't return from top-level code.")
	}
	if c.matchTok(token.SEMICOLON) {
		c.emitReturn()
		return
	}
	if c.fstate.fnType == typeInitializer {
		c.error("Can't return a value from an initializer.")
	}
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after return value.")
	c.emitOp(object.RETURN)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LPAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(object.JUMP_IF_FALSE)
	c.emitOp(object.POP)
	c.statement()

	elseJump := c.emitJump(object.JUMP)
	c.patchJump(thenJump)
	c.emitOp(object.POP)

	if c.matchTok(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.chunk().Code)
	c.consume(token.LPAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(object.JUMP_IF_FALSE)
	c.emitOp(object.POP)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(object.POP)
}

func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, "Expect '(' after 'for'.")
	switch {
	case c.matchTok(token.SEMICOLON):
		// no initializer
	case c.matchTok(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.chunk().Code)
	exitJump := -1
	if !c.matchTok(token.SEMICOLON) {
		c.expression()
		c.consume(token.SEMICOLON, "Expect ';' after loop condition.")
		exitJump = c.emitJump(object.JUMP_IF_FALSE)
		c.emitOp(object.POP)
	}

	if !c.matchTok(token.RPAREN) {
		bodyJump := c.emitJump(object.JUMP)
		incrementStart := len(c.chunk().Code)
		c.expression()
		c.emitOp(object.POP)
		c.consume(token.RPAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(object.POP)
	}
	c.endScope()
}

// --- expressions ---

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	rule := getRule(c.previous.Kind)
	if rule.prefix == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := prec <= precAssignment
	rule.prefix(c, canAssign)

	for prec <= getRule(c.current.Kind).precedence {
		c.advance()
		infix := getRule(c.previous.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.matchTok(token.EQ) {
		c.error("Invalid assignment target.")
	}
}

func number(c *Compiler, _ bool) {
	v, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(object.Number(v))
}

func str(c *Compiler, _ bool) {
	c.emitConstant(c.heap.InternString(c.previous.Lexeme))
}

func literal(c *Compiler, _ bool) {
	switch c.previous.Kind {
	case token.FALSE:
		c.emitOp(object.FALSE)
	case token.TRUE:
		c.emitOp(object.TRUE)
	case token.NIL:
		c.emitOp(object.NIL)
	}
}

func grouping(c *Compiler, _ bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func unary(c *Compiler, _ bool) {
	opKind := c.previous.Kind
	c.parsePrecedence(precUnary)
	switch opKind {
	case token.BANG:
		c.emitOp(object.NOT)
	case token.MINUS:
		c.emitOp(object.NEGATE)
	}
}

func binary(c *Compiler, _ bool) {
	opKind := c.previous.Kind
	rule := getRule(opKind)
	c.parsePrecedence(rule.precedence + 1)

	switch opKind {
	case token.BANG_EQ:
		c.emitOp(object.EQUAL)
		c.emitOp(object.NOT)
	case token.EQ_EQ:
		c.emitOp(object.EQUAL)
	case token.GT:
		c.emitOp(object.GREATER)
	case token.GT_EQ:
		c.emitOp(object.LESS)
		c.emitOp(object.NOT)
	case token.LT:
		c.emitOp(object.LESS)
	case token.LT_EQ:
		c.emitOp(object.GREATER)
		c.emitOp(object.NOT)
	case token.PLUS:
		c.emitOp(object.ADD)
	case token.MINUS:
		c.emitOp(object.SUBTRACT)
	case token.STAR:
		c.emitOp(object.MULTIPLY)
	case token.SLASH:
		c.emitOp(object.DIVIDE)
	}
}

func and_(c *Compiler, _ bool) {
	endJump := c.emitJump(object.JUMP_IF_FALSE)
	c.emitOp(object.POP)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func or_(c *Compiler, _ bool) {
	elseJump := c.emitJump(object.JUMP_IF_FALSE)
	endJump := c.emitJump(object.JUMP)
	c.patchJump(elseJump)
	c.emitOp(object.POP)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func call(c *Compiler, _ bool) {
	argCount := c.argumentList()
	c.emitOpByte(object.CALL, argCount)
}

func (c *Compiler) argumentList() byte {
	var argCount int
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if argCount == maxArgs {
				c.error("Can't have more than 255 arguments.")
			}
			argCount++
			if !c.matchTok(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after arguments.")
	return byte(argCount)
}

func dot(c *Compiler, canAssign bool) {
	c.consume(token.IDENT, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous)

	switch {
	case canAssign && c.matchTok(token.EQ):
		c.expression()
		c.emitOpByte(object.SET_PROPERTY, name)
	case c.matchTok(token.LPAREN):
		argCount := c.argumentList()
		c.emitOpByte(object.INVOKE, name)
		c.emitByte(argCount)
	default:
		c.emitOpByte(object.GET_PROPERTY, name)
	}
}

func variable(c *Compiler, canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp object.Opcode
	var arg int

	if local := c.resolveLocalReporting(c.fstate, name); local != -1 {
		getOp, setOp, arg = object.GET_LOCAL, object.SET_LOCAL, local
	} else if up := c.resolveUpvalue(c.fstate, name); up != -1 {
		getOp, setOp, arg = object.GET_UPVALUE, object.SET_UPVALUE, up
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = object.GET_GLOBAL, object.SET_GLOBAL
	}

	if canAssign && c.matchTok(token.EQ) {
		c.expression()
		c.emitOpByte(setOp, byte(arg))
	} else {
		c.emitOpByte(getOp, byte(arg))
	}
}

func (c *Compiler) variable(canAssign bool) { variable(c, canAssign) }

func this_(c *Compiler, _ bool) {
	if c.cstate == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	variable(c, false)
}

func super_(c *Compiler, _ bool) {
	switch {
	case c.cstate == nil:
		c.error("Can't use 'super' outside of a class.")
	case !c.cstate.hasSuperclass:
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(token.DOT, "Expect '.' after 'super'.")
	c.consume(token.IDENT, "Expect superclass method name.")
	name := c.identifierConstant(c.previous)

	c.namedVariable(token.Token{Kind: token.IDENT, Lexeme: "this"}, false)
	if c.matchTok(token.LPAREN) {
		argCount := c.argumentList()
		c.namedVariable(token.Token{Kind: token.IDENT, Lexeme: "super"}, false)
		c.emitOpByte(object.SUPER_INVOKE, name)
		c.emitByte(argCount)
	} else {
		c.namedVariable(token.Token{Kind: token.IDENT, Lexeme: "super"}, false)
		c.emitOpByte(object.GET_SUPER, name)
	}
}
