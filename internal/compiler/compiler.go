// Package compiler implements the single-pass Pratt-style parser/compiler:
// it consumes tokens from a scanner.Scanner and writes bytecode directly
// into a chunk.Chunk as it parses, with no intermediate AST.
package compiler

import (
	"strconv"

	"golang.org/x/exp/slices"
	"loxcore/internal/chunk"
	"loxcore/internal/scanner"
	"loxcore/internal/token"
)

// local is one entry in the compiler's local-variable table. Its index in
// the table corresponds one-to-one to the runtime stack slot it occupies
// while live (spec.md §3).
type local struct {
	name  string
	depth int
}

// Compiler owns the scanner, the chunk being built, and the local-variable
// table for the scope currently being compiled.
type Compiler struct {
	s *scanner.Scanner

	previous token.Token
	current  token.Token

	chunk      *chunk.Chunk
	locals     []local
	scopeDepth int
}

// Compile compiles source into a Chunk, or returns the first error
// encountered. There is no error recovery: compilation stops at the first
// failure (spec.md §7).
func Compile(source string) (*chunk.Chunk, error) {
	ch, _, err := CompileDebug(source)
	return ch, err
}

// CompileDebug compiles source exactly like Compile, but also returns the
// Compiler instance that produced it so a caller can inspect its
// local-variable table immediately afterwards (e.g. the REPL's ":locals"
// introspection command), before it would otherwise go out of scope. The
// returned Compiler is valid even when err != nil, reflecting however far
// compilation got before failing.
func CompileDebug(source string) (*chunk.Chunk, *Compiler, error) {
	c := &Compiler{s: scanner.New(source), chunk: chunk.New()}
	if err := c.advance(); err != nil {
		return nil, c, err
	}
	for !c.check(token.EOF) {
		if err := c.declaration(); err != nil {
			return nil, c, err
		}
	}
	c.emitOp(chunk.OP_NIL)
	c.emitOp(chunk.OP_RETURN)
	return c.chunk, c, nil
}

// advance pulls the next non-error token from the scanner into current,
// moving the previous current into previous. An Error-kind token becomes
// a compile Error immediately.
func (c *Compiler) advance() error {
	c.previous = c.current
	c.current = c.s.Next()
	if c.current.Kind == token.Error {
		return newError(c.current.Line, Messaged, "%s", c.current.Source)
	}
	return nil
}

func (c *Compiler) check(k token.Kind) bool {
	return c.current.Kind == k
}

func (c *Compiler) match(k token.Kind) (bool, error) {
	if !c.check(k) {
		return false, nil
	}
	return true, c.advance()
}

// consume requires current to have kind k, advancing past it; otherwise
// it fails with an ExpectedDifferentToken compile error carrying message.
func (c *Compiler) consume(k token.Kind, message string) error {
	if c.check(k) {
		return c.advance()
	}
	return newError(c.current.Line, ExpectedDifferentToken, "%s", message)
}

func (c *Compiler) emitByte(b byte) {
	c.chunk.Write(b, c.previous.Line)
}

func (c *Compiler) emitOp(op chunk.OpCode) {
	c.chunk.WriteOp(op, c.previous.Line)
}

func (c *Compiler) emitOps(ops ...chunk.OpCode) {
	for _, op := range ops {
		c.emitOp(op)
	}
}

func (c *Compiler) makeConstant(n float64) (byte, error) {
	idx, err := c.chunk.AddConstant(n)
	if err != nil {
		return 0, newError(c.previous.Line, Messaged, "Too many constants in one chunk")
	}
	return byte(idx), nil
}

func (c *Compiler) makeString(s string) (byte, error) {
	idx, err := c.chunk.AddString(s)
	if err != nil {
		return 0, newError(c.previous.Line, Messaged, "Too many string literals in one chunk")
	}
	return byte(idx), nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// LocalNames returns the names currently in the compiler's local-variable
// table, sorted for deterministic display: used by the REPL's ":locals"
// introspection command. golang.org/x/exp/slices keeps the ordering
// deterministic without a manual insertion sort (the table itself is
// appended to in declaration order; callers want it alphabetized instead).
func (c *Compiler) LocalNames() []string {
	names := make([]string, len(c.locals))
	for i, l := range c.locals {
		names[i] = l.name
	}
	slices.Sort(names)
	return names
}
