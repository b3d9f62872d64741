package compiler

import "loxcore/internal/chunk"

// beginScope enters a new block scope.
func (c *Compiler) beginScope() {
	c.scopeDepth++
}

// endScope leaves the current block scope, popping every local declared
// in it (in reverse order) and emitting a matching OP_POP for each —
// spec.md §3's "Lifecycle" rule.
func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.emitOp(chunk.OP_POP)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

// addLocal registers name in the local table at the current scope depth.
// It fails if name is already declared in this exact scope, or if the
// table has grown past what a one-byte slot index can address.
func (c *Compiler) addLocal(name string) error {
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if l.name == name {
			return newError(c.previous.Line, Messaged, "Already a variable with this name in this scope")
		}
	}
	if len(c.locals) >= 256 {
		return newError(c.previous.Line, Messaged, "Too many local variables in one scope")
	}
	c.locals = append(c.locals, local{name: name, depth: c.scopeDepth})
	return nil
}

// resolveLocal searches the local table from the newest scope back,
// returning its slot index, or -1 if name isn't a local (so it must be
// resolved as a global instead).
func (c *Compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			return i
		}
	}
	return -1
}
