// Package vm executes a compiled chunk.Chunk on a fixed-size operand
// stack: fetch, decode, execute, repeat, with no garbage collector and no
// call stack beyond the single implicit top-level frame the core
// supports.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"loxcore/internal/chunk"
	"loxcore/internal/value"
)

// StackMax bounds the operand stack. The core never recurses (no user
// functions), so in practice only deeply nested expressions or loops with
// many live locals could approach it.
const StackMax = 2048

// Config is the small set of knobs the core VM actually has, threaded
// through NewWithConfig the way the teacher threads VMConfig through its
// own NewWithConfig.
type Config struct {
	// LenientGlobals makes GET_GLOBAL of an undefined name push Nil
	// instead of raising a RuntimeError. Off by default: an unresolved
	// global is a runtime fault (see DESIGN.md's Open Question table).
	LenientGlobals bool

	// Output is where OP_PRINT writes. Defaults to os.Stdout.
	Output io.Writer
}

// VM holds the operand stack, the global-variable table, and the heap a
// single run executes against.
type VM struct {
	chunk *chunk.Chunk
	ip    int

	stack    [StackMax]value.Value
	stackTop int

	globals map[string]value.Value
	heap    *value.Heap

	cfg Config
}

// New returns a VM with default configuration and a fresh heap and
// globals table.
func New() *VM {
	return NewWithConfig(Config{})
}

// NewWithConfig returns a VM configured per cfg. A nil Output defaults to
// os.Stdout.
func NewWithConfig(cfg Config) *VM {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	return &VM{
		globals: make(map[string]value.Value),
		heap:    value.NewHeap(),
		cfg:     cfg,
	}
}

// Globals exposes the live globals table, for the REPL's `:globals`
// introspection command.
func (vm *VM) Globals() map[string]value.Value { return vm.globals }

// Heap exposes the live heap, so callers can render Object values with
// value.Print (e.g. the REPL printing a line's result).
func (vm *VM) Heap() *value.Heap { return vm.heap }

// Stats renders a one-line human-readable summary of the stack depth and
// heap residency at the point it's called, for the CLI's --stats flag and
// for ad-hoc debugging of a stuck or runaway program.
func (vm *VM) Stats() string {
	stackBytes := uint64(vm.stackTop) * uint64(sizeOfValue)
	return fmt.Sprintf("stack: %d/%d slots (%s), heap: %d objects",
		vm.stackTop, StackMax, humanize.Bytes(stackBytes), vm.heap.Len())
}

// sizeOfValue approximates value.Value's in-memory footprint for Stats'
// byte count; the type itself has no exported size constant.
const sizeOfValue = 32

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop(line int, op string) (value.Value, error) {
	if vm.stackTop == 0 {
		return value.Value{}, &StackUnderflowError{Line: line, Op: op}
	}
	vm.stackTop--
	return vm.stack[vm.stackTop], nil
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
}

// Run executes c to completion, returning the final value left by
// OP_RETURN. The heap and globals persist across calls on the same VM, so
// a REPL can share one VM instance across lines (§6).
func (vm *VM) Run(c *chunk.Chunk) (value.Value, error) {
	vm.chunk = c
	vm.ip = 0
	vm.resetStack()

	for {
		offset := vm.ip
		op := chunk.OpCode(vm.readByte())
		line := c.LineAt(offset)

		switch op {
		case chunk.OP_CONSTANT:
			idx := vm.readByte()
			vm.push(value.NewNumber(c.Constants[idx]))

		case chunk.OP_STRING:
			idx := vm.readByte()
			h := vm.heap.AllocString(c.Strings[idx])
			vm.push(value.NewObject(h))

		case chunk.OP_NIL:
			vm.push(value.NewNil())
		case chunk.OP_TRUE:
			vm.push(value.NewBool(true))
		case chunk.OP_FALSE:
			vm.push(value.NewBool(false))

		case chunk.OP_POP:
			if _, err := vm.pop(line, "OP_POP"); err != nil {
				return value.Value{}, err
			}

		case chunk.OP_EQUAL:
			b, err := vm.pop(line, "OP_EQUAL")
			if err != nil {
				return value.Value{}, err
			}
			a, err := vm.pop(line, "OP_EQUAL")
			if err != nil {
				return value.Value{}, err
			}
			vm.push(value.NewBool(value.Equal(a, b, vm.heap)))

		case chunk.OP_GREATER, chunk.OP_LESS:
			v, err := vm.numericCompare(op, line)
			if err != nil {
				return value.Value{}, err
			}
			vm.push(v)

		case chunk.OP_NOT:
			a, err := vm.pop(line, "OP_NOT")
			if err != nil {
				return value.Value{}, err
			}
			vm.push(value.NewBool(!a.Truthy()))

		case chunk.OP_ADD:
			v, err := vm.add(line)
			if err != nil {
				return value.Value{}, err
			}
			vm.push(v)

		case chunk.OP_SUBTRACT, chunk.OP_MULTIPLY, chunk.OP_DIVIDE:
			v, err := vm.arithmetic(op, line)
			if err != nil {
				return value.Value{}, err
			}
			vm.push(v)

		case chunk.OP_NEGATE:
			a, err := vm.pop(line, "OP_NEGATE")
			if err != nil {
				return value.Value{}, err
			}
			if a.Type != value.Number {
				return value.Value{}, runtimeErrorf(line, "Negation works on numbers only")
			}
			vm.push(value.NewNumber(-a.Num))

		case chunk.OP_PRINT:
			a, err := vm.pop(line, "OP_PRINT")
			if err != nil {
				return value.Value{}, err
			}
			fmt.Fprintln(vm.cfg.Output, value.Print(a, vm.heap))

		case chunk.OP_DEFINE_GLOBAL:
			idx := vm.readByte()
			name := c.Strings[idx]
			v, err := vm.pop(line, "OP_DEFINE_GLOBAL")
			if err != nil {
				return value.Value{}, err
			}
			vm.globals[name] = v

		case chunk.OP_GET_GLOBAL:
			idx := vm.readByte()
			name := c.Strings[idx]
			v, ok := vm.globals[name]
			if !ok {
				if vm.cfg.LenientGlobals {
					vm.push(value.NewNil())
					break
				}
				return value.Value{}, runtimeErrorf(line, "Global is not defined")
			}
			vm.push(v)

		case chunk.OP_SET_GLOBAL:
			idx := vm.readByte()
			name := c.Strings[idx]
			if _, ok := vm.globals[name]; !ok {
				return value.Value{}, runtimeErrorf(line, "Global is not defined")
			}
			vm.globals[name] = vm.peek(0)

		case chunk.OP_GET_LOCAL:
			slot := vm.readByte()
			vm.push(vm.stack[slot])

		case chunk.OP_SET_LOCAL:
			slot := vm.readByte()
			vm.stack[slot] = vm.peek(0)

		case chunk.OP_JUMP:
			dist := vm.readShort()
			vm.ip += dist

		case chunk.OP_JUMP_IF_FALSE:
			dist := vm.readShort()
			if !vm.peek(0).Truthy() {
				vm.ip += dist
			}

		case chunk.OP_JUMP_IF_TRUE:
			dist := vm.readShort()
			if vm.peek(0).Truthy() {
				vm.ip += dist
			}

		case chunk.OP_LOOP:
			dist := vm.readShort()
			vm.ip -= dist

		case chunk.OP_RETURN:
			result, err := vm.pop(line, "OP_RETURN")
			if err != nil {
				return value.Value{}, err
			}
			return result, nil

		default:
			return value.Value{}, runtimeErrorf(line, "Unknown opcode %d", byte(op))
		}
	}
}

func (vm *VM) readByte() byte {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) readShort() int {
	hi := vm.readByte()
	lo := vm.readByte()
	return int(hi)<<8 | int(lo)
}

func (vm *VM) add(line int) (value.Value, error) {
	b, err := vm.pop(line, "OP_ADD")
	if err != nil {
		return value.Value{}, err
	}
	a, err := vm.pop(line, "OP_ADD")
	if err != nil {
		return value.Value{}, err
	}
	switch {
	case a.Type == value.Number && b.Type == value.Number:
		return value.NewNumber(a.Num + b.Num), nil
	case a.IsString(vm.heap) && b.IsString(vm.heap):
		return value.NewObject(vm.heap.Concat(a.Handle, b.Handle)), nil
	default:
		return value.Value{}, runtimeErrorf(line, "Operands must be numbers")
	}
}

func (vm *VM) arithmetic(op chunk.OpCode, line int) (value.Value, error) {
	b, err := vm.pop(line, op.String())
	if err != nil {
		return value.Value{}, err
	}
	a, err := vm.pop(line, op.String())
	if err != nil {
		return value.Value{}, err
	}
	if a.Type != value.Number || b.Type != value.Number {
		return value.Value{}, runtimeErrorf(line, "Operands must be numbers")
	}
	switch op {
	case chunk.OP_SUBTRACT:
		return value.NewNumber(a.Num - b.Num), nil
	case chunk.OP_MULTIPLY:
		return value.NewNumber(a.Num * b.Num), nil
	case chunk.OP_DIVIDE:
		return value.NewNumber(a.Num / b.Num), nil
	default:
		return value.Value{}, runtimeErrorf(line, "Unreachable arithmetic opcode %s", op)
	}
}

func (vm *VM) numericCompare(op chunk.OpCode, line int) (value.Value, error) {
	b, err := vm.pop(line, op.String())
	if err != nil {
		return value.Value{}, err
	}
	a, err := vm.pop(line, op.String())
	if err != nil {
		return value.Value{}, err
	}
	if a.Type != value.Number || b.Type != value.Number {
		return value.Value{}, runtimeErrorf(line, "Operands must be numbers")
	}
	if op == chunk.OP_GREATER {
		return value.NewBool(a.Num > b.Num), nil
	}
	return value.NewBool(a.Num < b.Num), nil
}
