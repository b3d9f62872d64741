package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"loxcore/internal/chunk"
)

func opsOf(t *testing.T, source string) []chunk.OpCode {
	t.Helper()
	c, err := Compile(source)
	require.NoError(t, err)

	var ops []chunk.OpCode
	for offset := 0; offset < len(c.Code); {
		op := chunk.OpCode(c.Code[offset])
		ops = append(ops, op)
		switch op {
		case chunk.OP_CONSTANT, chunk.OP_STRING, chunk.OP_DEFINE_GLOBAL,
			chunk.OP_GET_GLOBAL, chunk.OP_SET_GLOBAL, chunk.OP_GET_LOCAL, chunk.OP_SET_LOCAL:
			offset += 2
		case chunk.OP_JUMP, chunk.OP_JUMP_IF_FALSE, chunk.OP_JUMP_IF_TRUE, chunk.OP_LOOP:
			offset += 3
		default:
			offset++
		}
	}
	return ops
}

// arithmeticOnly strips the statement-level bookkeeping ops (POP, and the
// trailing implicit NIL/RETURN every Compile emits) so precedence can be
// asserted on the arithmetic opcodes alone.
func arithmeticOnly(ops []chunk.OpCode) []chunk.OpCode {
	var out []chunk.OpCode
	for _, op := range ops {
		switch op {
		case chunk.OP_CONSTANT, chunk.OP_ADD, chunk.OP_SUBTRACT, chunk.OP_MULTIPLY, chunk.OP_DIVIDE:
			out = append(out, op)
		}
	}
	return out
}

func TestPrecedenceEmissionOrder(t *testing.T) {
	require.Equal(t,
		[]chunk.OpCode{chunk.OP_CONSTANT, chunk.OP_CONSTANT, chunk.OP_CONSTANT, chunk.OP_MULTIPLY, chunk.OP_ADD},
		arithmeticOnly(opsOf(t, "10 + 30 * 40;")),
	)
	require.Equal(t,
		[]chunk.OpCode{chunk.OP_CONSTANT, chunk.OP_CONSTANT, chunk.OP_ADD, chunk.OP_CONSTANT, chunk.OP_MULTIPLY},
		arithmeticOnly(opsOf(t, "(10 + 30) * 40;")),
	)
}

func TestInvalidAssignmentTarget(t *testing.T) {
	_, err := Compile("a * b = 3 + 8;")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid assignment target")
}

func TestJumpTooFar(t *testing.T) {
	body := strings.Repeat("nil;", 70000)
	source := "if (true) { " + body + " }"
	_, err := Compile(source)
	require.Error(t, err)
	var jerr *JumpTooFarError
	require.ErrorAs(t, err, &jerr)
}

func TestUnterminatedStringIsCompileError(t *testing.T) {
	_, err := Compile(`var s = "unterminated;`)
	require.Error(t, err)
}

func TestDuplicateLocalInSameScopeIsCompileError(t *testing.T) {
	_, err := Compile("{ var x = 1; var x = 2; }")
	require.Error(t, err)
}

func TestLocalNamesEmptyAfterBalancedTopLevelCompile(t *testing.T) {
	// Every block closes its own scope before a top-level Compile/
	// CompileDebug call returns, so LocalNames is empty on success: this
	// is what cmd/loxcore/repl.go's ":locals" command normally reports.
	_, c, err := CompileDebug("{ var x = 1; }")
	require.NoError(t, err)
	require.Empty(t, c.LocalNames())
}

func TestLocalNamesReflectsUnclosedBlockOnCompileError(t *testing.T) {
	// A block left open by a compile error never reaches endScope, so its
	// locals are still visible on the returned Compiler: ":locals" can
	// inspect a line that failed to compile mid-block.
	_, c, err := CompileDebug("{ var b = 1; var a = 2;")
	require.Error(t, err)
	require.Equal(t, []string{"a", "b"}, c.LocalNames())
}
