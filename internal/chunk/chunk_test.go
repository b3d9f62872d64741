package chunk

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteKeepsCodeAndLinesInLockstep(t *testing.T) {
	c := New()
	c.WriteOp(OP_NIL, 3)
	c.WriteOp(OP_RETURN, 4)
	require.Equal(t, len(c.Code), len(c.Lines))
	require.Equal(t, 3, c.LineAt(0))
	require.Equal(t, 4, c.LineAt(1))
}

func TestPoolOverflow(t *testing.T) {
	c := New()
	for i := 0; i < MaxPoolSize; i++ {
		_, err := c.AddConstant(float64(i))
		require.NoError(t, err)
	}
	_, err := c.AddConstant(999)
	require.ErrorIs(t, err, ErrPoolFull)
}

func TestDisassemblyIsIdempotent(t *testing.T) {
	c := New()
	idx, err := c.AddConstant(10)
	require.NoError(t, err)
	c.WriteOp(OP_CONSTANT, 1)
	c.Write(byte(idx), 1)
	c.WriteOp(OP_RETURN, 1)

	var first, second bytes.Buffer
	c.Disassemble(&first, "test")
	c.Disassemble(&second, "test")
	require.Equal(t, first.String(), second.String())
}

func TestJumpInstructionPrintsAbsoluteTarget(t *testing.T) {
	c := New()
	c.WriteOp(OP_JUMP_IF_FALSE, 1)
	c.Write(0, 1)
	c.Write(5, 1) // distance 5
	c.WriteOp(OP_POP, 1)

	var buf bytes.Buffer
	c.Disassemble(&buf, "test")
	require.Contains(t, buf.String(), "-> 8")
}
