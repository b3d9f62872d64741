package chunk

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"
)

// Disassemble writes a human-readable listing of the whole chunk to w,
// one line per instruction, in the form
// "<offset:8> <line:8> | <mnemonic> <operand?>". Disassembling the same
// chunk twice produces byte-identical output.
func (c *Chunk) Disassemble(w io.Writer, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = c.disassembleInstruction(w, offset)
	}
}

// DisassembleWithHeader is Disassemble preceded by two header lines: a
// strftime-formatted "; compiled <time>" line and a "; <size> bytecode"
// line. The CLI's `disasm` subcommand uses this form when given -stats
// (the chunk itself carries no timestamp; the caller supplies one so
// output stays reproducible in tests).
func (c *Chunk) DisassembleWithHeader(w io.Writer, name string, compiledAt time.Time) {
	if ts, err := strftime.Format("%Y-%m-%d %H:%M:%S", compiledAt); err == nil {
		fmt.Fprintf(w, "; compiled %s\n", ts)
	}
	fmt.Fprintf(w, "; %s bytecode\n", humanize.Bytes(c.ApproxSize()))
	c.Disassemble(w, name)
}

func (c *Chunk) disassembleInstruction(w io.Writer, offset int) int {
	fmt.Fprintf(w, "%8d %8d | ", offset, c.Lines[offset])

	op := OpCode(c.Code[offset])
	switch op {
	case OP_CONSTANT:
		return c.constantInstruction(w, "OP_CONSTANT", offset)
	case OP_STRING:
		return c.stringInstruction(w, "OP_STRING", offset)
	case OP_NIL:
		return c.simpleInstruction(w, "OP_NIL", offset)
	case OP_TRUE:
		return c.simpleInstruction(w, "OP_TRUE", offset)
	case OP_FALSE:
		return c.simpleInstruction(w, "OP_FALSE", offset)
	case OP_POP:
		return c.simpleInstruction(w, "OP_POP", offset)
	case OP_EQUAL:
		return c.simpleInstruction(w, "OP_EQUAL", offset)
	case OP_GREATER:
		return c.simpleInstruction(w, "OP_GREATER", offset)
	case OP_LESS:
		return c.simpleInstruction(w, "OP_LESS", offset)
	case OP_NOT:
		return c.simpleInstruction(w, "OP_NOT", offset)
	case OP_ADD:
		return c.simpleInstruction(w, "OP_ADD", offset)
	case OP_SUBTRACT:
		return c.simpleInstruction(w, "OP_SUBTRACT", offset)
	case OP_MULTIPLY:
		return c.simpleInstruction(w, "OP_MULTIPLY", offset)
	case OP_DIVIDE:
		return c.simpleInstruction(w, "OP_DIVIDE", offset)
	case OP_NEGATE:
		return c.simpleInstruction(w, "OP_NEGATE", offset)
	case OP_PRINT:
		return c.simpleInstruction(w, "OP_PRINT", offset)
	case OP_DEFINE_GLOBAL:
		return c.stringConstantInstruction(w, "OP_DEFINE_GLOBAL", offset)
	case OP_GET_GLOBAL:
		return c.stringConstantInstruction(w, "OP_GET_GLOBAL", offset)
	case OP_SET_GLOBAL:
		return c.stringConstantInstruction(w, "OP_SET_GLOBAL", offset)
	case OP_GET_LOCAL:
		return c.byteInstruction(w, "OP_GET_LOCAL", offset)
	case OP_SET_LOCAL:
		return c.byteInstruction(w, "OP_SET_LOCAL", offset)
	case OP_JUMP:
		return c.jumpInstruction(w, "OP_JUMP", 1, offset)
	case OP_JUMP_IF_FALSE:
		return c.jumpInstruction(w, "OP_JUMP_IF_FALSE", 1, offset)
	case OP_JUMP_IF_TRUE:
		return c.jumpInstruction(w, "OP_JUMP_IF_TRUE", 1, offset)
	case OP_LOOP:
		return c.jumpInstruction(w, "OP_LOOP", -1, offset)
	case OP_RETURN:
		return c.simpleInstruction(w, "OP_RETURN", offset)
	default:
		fmt.Fprintf(w, "Unknown opcode %d\n", op)
		return offset + 1
	}
}

func (c *Chunk) simpleInstruction(w io.Writer, name string, offset int) int {
	fmt.Fprintf(w, "%s\n", name)
	return offset + 1
}

func (c *Chunk) constantInstruction(w io.Writer, name string, offset int) int {
	idx := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%g'\n", name, idx, c.Constants[idx])
	return offset + 2
}

func (c *Chunk) stringInstruction(w io.Writer, name string, offset int) int {
	idx := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", name, idx, c.Strings[idx])
	return offset + 2
}

func (c *Chunk) stringConstantInstruction(w io.Writer, name string, offset int) int {
	return c.stringInstruction(w, name, offset)
}

func (c *Chunk) byteInstruction(w io.Writer, name string, offset int) int {
	slot := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", name, slot)
	return offset + 2
}

// jumpInstruction prints the absolute target address after applying the
// stored distance: sign is +1 for forward jumps, -1 for OP_LOOP's
// backward distance.
func (c *Chunk) jumpInstruction(w io.Writer, name string, sign int, offset int) int {
	distance := int(binary.BigEndian.Uint16(c.Code[offset+1 : offset+3]))
	target := offset + 3 + sign*distance
	fmt.Fprintf(w, "%-16s %4d -> %d\n", name, offset, target)
	return offset + 3
}
