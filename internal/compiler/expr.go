package compiler

import (
	"loxcore/internal/chunk"
	"loxcore/internal/token"
)

func number(c *Compiler, canAssign bool) error {
	n, err := parseFloat(c.previous.Source)
	if err != nil {
		return newError(c.previous.Line, ParseFloatError, "%v", err)
	}
	idx, err := c.makeConstant(n)
	if err != nil {
		return err
	}
	c.emitOp(chunk.OP_CONSTANT)
	c.emitByte(idx)
	return nil
}

func stringLiteral(c *Compiler, canAssign bool) error {
	// Strip the surrounding quotes before interning.
	raw := c.previous.Source
	s := raw[1 : len(raw)-1]
	idx, err := c.makeString(s)
	if err != nil {
		return err
	}
	c.emitOp(chunk.OP_STRING)
	c.emitByte(idx)
	return nil
}

func literal(c *Compiler, canAssign bool) error {
	switch c.previous.Kind {
	case token.True:
		c.emitOp(chunk.OP_TRUE)
	case token.False:
		c.emitOp(chunk.OP_FALSE)
	case token.Nil:
		c.emitOp(chunk.OP_NIL)
	}
	return nil
}

func grouping(c *Compiler, canAssign bool) error {
	if err := c.parseExpression(precNone); err != nil {
		return err
	}
	if !c.check(token.RightParen) {
		return newError(c.current.Line, ExpectedRightParen, "Expect ')' after expression")
	}
	return c.advance()
}

func unary(c *Compiler, canAssign bool) error {
	opKind := c.previous.Kind
	if err := c.parseExpression(precUnary); err != nil {
		return err
	}
	switch opKind {
	case token.Minus:
		c.emitOp(chunk.OP_NEGATE)
	case token.Bang:
		c.emitOp(chunk.OP_NOT)
	}
	return nil
}

func binary(c *Compiler, canAssign bool) error {
	opKind := c.previous.Kind
	r := ruleFor(opKind)
	if err := c.parseExpression(r.prec); err != nil {
		return err
	}
	switch opKind {
	case token.Plus:
		c.emitOp(chunk.OP_ADD)
	case token.Minus:
		c.emitOp(chunk.OP_SUBTRACT)
	case token.Star:
		c.emitOp(chunk.OP_MULTIPLY)
	case token.Slash:
		c.emitOp(chunk.OP_DIVIDE)
	case token.EqualEqual:
		c.emitOp(chunk.OP_EQUAL)
	case token.BangEqual:
		c.emitOps(chunk.OP_EQUAL, chunk.OP_NOT)
	case token.Greater:
		c.emitOp(chunk.OP_GREATER)
	case token.GreaterEqual:
		c.emitOps(chunk.OP_LESS, chunk.OP_NOT)
	case token.Less:
		c.emitOp(chunk.OP_LESS)
	case token.LessEqual:
		c.emitOps(chunk.OP_GREATER, chunk.OP_NOT)
	default:
		return newError(c.previous.Line, ExpectedBinaryOperator, "Expected binary operator")
	}
	return nil
}

// variable resolves an identifier reference, emitting a GET, or — if an
// assignment is both present and legal at this precedence — compiles the
// right-hand side and emits a SET instead.
func variable(c *Compiler, canAssign bool) error {
	name := c.previous.Source

	if canAssign && c.check(token.Equal) {
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.parseExpression(precAssignment); err != nil {
			return err
		}
		return c.emitVariableOp(name, chunk.OP_SET_LOCAL, chunk.OP_SET_GLOBAL)
	}

	return c.emitVariableOp(name, chunk.OP_GET_LOCAL, chunk.OP_GET_GLOBAL)
}

func (c *Compiler) emitVariableOp(name string, localOp, globalOp chunk.OpCode) error {
	if slot := c.resolveLocal(name); slot != -1 {
		c.emitOp(localOp)
		c.emitByte(byte(slot))
		return nil
	}
	idx, err := c.makeString(name)
	if err != nil {
		return err
	}
	c.emitOp(globalOp)
	c.emitByte(idx)
	return nil
}

// and_ implements short-circuit `and`: if the left operand is false, skip
// evaluating the right operand entirely.
func and_(c *Compiler, canAssign bool) error {
	endJump := c.emitJump(chunk.OP_JUMP_IF_FALSE)
	c.emitOp(chunk.OP_POP)
	if err := c.parseExpression(precAnd); err != nil {
		return err
	}
	return c.patchJump(endJump)
}

// or_ implements short-circuit `or`: if the left operand is true, skip
// evaluating the right operand entirely.
func or_(c *Compiler, canAssign bool) error {
	elseJump := c.emitJump(chunk.OP_JUMP_IF_FALSE)
	endJump := c.emitJump(chunk.OP_JUMP)

	if err := c.patchJump(elseJump); err != nil {
		return err
	}
	c.emitOp(chunk.OP_POP)
	if err := c.parseExpression(precOr); err != nil {
		return err
	}
	return c.patchJump(endJump)
}
