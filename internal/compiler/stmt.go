package compiler

import (
	"loxcore/internal/chunk"
	"loxcore/internal/token"
)

// declaration parses one `var` declaration or statement.
func (c *Compiler) declaration() error {
	if matched, err := c.match(token.Var); err != nil {
		return err
	} else if matched {
		return c.varDeclaration()
	}
	return c.statement()
}

func (c *Compiler) varDeclaration() error {
	if !c.check(token.Identifier) {
		return newError(c.current.Line, Messaged, "Expected variable name")
	}
	name := c.current.Source
	if err := c.advance(); err != nil {
		return err
	}

	if matched, err := c.match(token.Equal); err != nil {
		return err
	} else if matched {
		if err := c.parseExpression(precAssignment); err != nil {
			return err
		}
	} else {
		c.emitOp(chunk.OP_NIL)
	}

	if err := c.consume(token.Semicolon, "Expect ';' after variable declaration"); err != nil {
		return err
	}

	if c.scopeDepth > 0 {
		return c.addLocal(name)
	}
	idx, err := c.makeString(name)
	if err != nil {
		return err
	}
	c.emitOp(chunk.OP_DEFINE_GLOBAL)
	c.emitByte(idx)
	return nil
}

func (c *Compiler) statement() error {
	switch {
	case c.check(token.Print):
		_ = c.advance()
		return c.printStatement()
	case c.check(token.LeftBrace):
		_ = c.advance()
		c.beginScope()
		if err := c.block(); err != nil {
			return err
		}
		c.endScope()
		return nil
	case c.check(token.If):
		_ = c.advance()
		return c.ifStatement()
	case c.check(token.While):
		_ = c.advance()
		return c.whileStatement()
	case c.check(token.For):
		_ = c.advance()
		return c.forStatement()
	case c.check(token.Return):
		_ = c.advance()
		return c.returnStatement()
	default:
		return c.expressionStatement()
	}
}

func (c *Compiler) printStatement() error {
	if err := c.parseExpression(precNone); err != nil {
		return err
	}
	if err := c.consume(token.Semicolon, "Expect ';' after value"); err != nil {
		return err
	}
	c.emitOp(chunk.OP_PRINT)
	return nil
}

func (c *Compiler) returnStatement() error {
	if matched, err := c.match(token.Semicolon); err != nil {
		return err
	} else if matched {
		c.emitOp(chunk.OP_NIL)
		c.emitOp(chunk.OP_RETURN)
		return nil
	}
	if err := c.parseExpression(precNone); err != nil {
		return err
	}
	if err := c.consume(token.Semicolon, "Expect ';' after return value"); err != nil {
		return err
	}
	c.emitOp(chunk.OP_RETURN)
	return nil
}

func (c *Compiler) expressionStatement() error {
	if err := c.parseExpression(precNone); err != nil {
		return err
	}
	if err := c.consume(token.Semicolon, "Expect ';' after expression"); err != nil {
		return err
	}
	c.emitOp(chunk.OP_POP)
	return nil
}

func (c *Compiler) block() error {
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		if err := c.declaration(); err != nil {
			return err
		}
	}
	return c.consume(token.RightBrace, "Expect '}' after block")
}

func (c *Compiler) ifStatement() error {
	if err := c.consume(token.LeftParen, "Expect '(' after 'if'"); err != nil {
		return err
	}
	if err := c.parseExpression(precNone); err != nil {
		return err
	}
	if err := c.consume(token.RightParen, "Expect ')' after condition"); err != nil {
		return err
	}

	thenJump := c.emitJump(chunk.OP_JUMP_IF_FALSE)
	c.emitOp(chunk.OP_POP)
	if err := c.statement(); err != nil {
		return err
	}

	elseJump := c.emitJump(chunk.OP_JUMP)
	if err := c.patchJump(thenJump); err != nil {
		return err
	}
	c.emitOp(chunk.OP_POP)

	if matched, err := c.match(token.Else); err != nil {
		return err
	} else if matched {
		if err := c.statement(); err != nil {
			return err
		}
	}
	return c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() error {
	loopStart := len(c.chunk.Code)
	if err := c.consume(token.LeftParen, "Expect '(' after 'while'"); err != nil {
		return err
	}
	if err := c.parseExpression(precNone); err != nil {
		return err
	}
	if err := c.consume(token.RightParen, "Expect ')' after condition"); err != nil {
		return err
	}

	exitJump := c.emitJump(chunk.OP_JUMP_IF_FALSE)
	c.emitOp(chunk.OP_POP)
	if err := c.statement(); err != nil {
		return err
	}
	if err := c.emitLoop(loopStart); err != nil {
		return err
	}

	if err := c.patchJump(exitJump); err != nil {
		return err
	}
	c.emitOp(chunk.OP_POP)
	return nil
}

// forStatement lowers `for (init; cond; modifier) body` into the
// equivalent while-loop bytecode shape described in spec.md §4.2.
func (c *Compiler) forStatement() error {
	c.beginScope()
	defer c.endScope()

	if err := c.consume(token.LeftParen, "Expect '(' after 'for'"); err != nil {
		return err
	}

	switch {
	case c.check(token.Semicolon):
		if err := c.advance(); err != nil {
			return err
		}
	case c.check(token.Var):
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.varDeclaration(); err != nil {
			return err
		}
	default:
		if err := c.expressionStatement(); err != nil {
			return err
		}
	}

	loopStart := len(c.chunk.Code)
	exitJump := -1
	if !c.check(token.Semicolon) {
		if err := c.parseExpression(precNone); err != nil {
			return err
		}
		exitJump = c.emitJump(chunk.OP_JUMP_IF_FALSE)
		c.emitOp(chunk.OP_POP)
	}
	if err := c.consume(token.Semicolon, "Expect ';' after loop condition"); err != nil {
		return err
	}

	if !c.check(token.RightParen) {
		bodyJump := c.emitJump(chunk.OP_JUMP)
		incrementStart := len(c.chunk.Code)
		if err := c.parseExpression(precNone); err != nil {
			return err
		}
		c.emitOp(chunk.OP_POP)
		if err := c.consume(token.RightParen, "Expect ')' after for clauses"); err != nil {
			return err
		}
		if err := c.emitLoop(loopStart); err != nil {
			return err
		}
		loopStart = incrementStart
		if err := c.patchJump(bodyJump); err != nil {
			return err
		}
	} else {
		if err := c.advance(); err != nil {
			return err
		}
	}

	if err := c.statement(); err != nil {
		return err
	}
	if err := c.emitLoop(loopStart); err != nil {
		return err
	}

	if exitJump != -1 {
		if err := c.patchJump(exitJump); err != nil {
			return err
		}
		c.emitOp(chunk.OP_POP)
	}
	return nil
}
