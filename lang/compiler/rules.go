package compiler

import "github.com/lumen-lang/lumen/lang/token"

// precedence orders binary operators from loosest to tightest binding, used
// by parsePrecedence to decide how far an expression extends.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

// parseFn is either a prefix or infix parse step: it consumes the token
// already advanced past (in c.previous) and emits bytecode for it.
type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

// rules maps every token kind that can appear in an expression to its
// prefix/infix parse functions and infix binding precedence, the
// table-driven core of the Pratt parser.
var rules = map[token.Kind]parseRule{
	token.LPAREN:    {prefix: grouping, infix: call, precedence: precCall},
	token.DOT:       {infix: dot, precedence: precCall},
	token.MINUS:     {prefix: unary, infix: binary, precedence: precTerm},
	token.PLUS:      {infix: binary, precedence: precTerm},
	token.SLASH:     {infix: binary, precedence: precFactor},
	token.STAR:      {infix: binary, precedence: precFactor},
	token.BANG:      {prefix: unary},
	token.BANG_EQ:   {infix: binary, precedence: precEquality},
	token.EQ_EQ:     {infix: binary, precedence: precEquality},
	token.GT:        {infix: binary, precedence: precComparison},
	token.GT_EQ:     {infix: binary, precedence: precComparison},
	token.LT:        {infix: binary, precedence: precComparison},
	token.LT_EQ:     {infix: binary, precedence: precComparison},
	token.IDENT:     {prefix: variable},
	token.STRING:    {prefix: str},
	token.NUMBER:    {prefix: number},
	token.AND:       {infix: and_, precedence: precAnd},
	token.OR:        {infix: or_, precedence: precOr},
	token.FALSE:     {prefix: literal},
	token.TRUE:      {prefix: literal},
	token.NIL:       {prefix: literal},
	token.THIS:      {prefix: this_},
	token.SUPER:     {prefix: super_},
}

// getRule returns the parse rule for kind, or the zero rule (no prefix or
// infix handler, lowest precedence) if kind never starts or continues an
// expression.
func getRule(kind token.Kind) parseRule {
	return rules[kind]
}
