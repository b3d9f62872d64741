package compiler

import "loxcore/internal/token"

// precedence levels, matching spec.md §4.2's table (higher binds tighter).
type precedence int

const (
	precNone       precedence = 0
	precAssignment precedence = 10 // =
	precOr         precedence = 30 // or
	precAnd        precedence = 40 // and
	precEquality   precedence = 50 // == !=
	precComparison precedence = 60 // < <= > >=
	precTerm       precedence = 70 // + -
	precFactor     precedence = 80 // * /
	precUnary      precedence = 90 // !
)

// prefixFn parses a prefix (nud) expression starting at c.previous (already
// consumed by the caller).
type prefixFn func(c *Compiler, canAssign bool) error

// infixFn parses an infix (led) expression; c.previous is the operator
// token, already consumed.
type infixFn func(c *Compiler, canAssign bool) error

type rule struct {
	prefix prefixFn
	infix  infixFn
	prec   precedence
}

var rules map[token.Kind]rule

func init() {
	rules = map[token.Kind]rule{
		token.LeftParen:    {prefix: grouping},
		token.Minus:        {prefix: unary, infix: binary, prec: precTerm},
		token.Plus:         {infix: binary, prec: precTerm},
		token.Slash:        {infix: binary, prec: precFactor},
		token.Star:         {infix: binary, prec: precFactor},
		token.Bang:         {prefix: unary},
		token.BangEqual:    {infix: binary, prec: precEquality},
		token.Equal:        {infix: invalidAssignmentTarget, prec: precAssignment},
		token.EqualEqual:   {infix: binary, prec: precEquality},
		token.Greater:      {infix: binary, prec: precComparison},
		token.GreaterEqual: {infix: binary, prec: precComparison},
		token.Less:         {infix: binary, prec: precComparison},
		token.LessEqual:    {infix: binary, prec: precComparison},
		token.Identifier:   {prefix: variable},
		token.String:       {prefix: stringLiteral},
		token.Number:       {prefix: number},
		token.False:        {prefix: literal},
		token.True:         {prefix: literal},
		token.Nil:          {prefix: literal},
		token.And:          {infix: and_, prec: precAnd},
		token.Or:           {infix: or_, prec: precOr},
	}
}

func ruleFor(k token.Kind) rule {
	return rules[k]
}

// parseExpression implements spec.md §4.2's precedence-climbing algorithm:
// parse the prefix form, then repeatedly consume an infix operator whose
// precedence is strictly greater than minPrec, recursing on its own
// precedence for the right operand.
func (c *Compiler) parseExpression(minPrec precedence) error {
	canAssign := minPrec <= precAssignment
	prefix := ruleFor(c.current.Kind).prefix
	if prefix == nil {
		return newError(c.current.Line, ExpectedPrefix, "Expected expression")
	}
	if err := c.advance(); err != nil {
		return err
	}
	if err := prefix(c, canAssign); err != nil {
		return err
	}

	for ruleFor(c.current.Kind).prec > minPrec {
		r := ruleFor(c.current.Kind)
		if err := c.advance(); err != nil {
			return err
		}
		if err := r.infix(c, canAssign); err != nil {
			return err
		}
	}
	return nil
}

func invalidAssignmentTarget(c *Compiler, canAssign bool) error {
	return newError(c.previous.Line, Messaged, "Invalid assignment target")
}
