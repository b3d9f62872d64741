package vm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"loxcore/internal/compiler"
	"loxcore/internal/value"
)

func runSource(t *testing.T, source string) value.Value {
	t.Helper()
	c, err := compiler.Compile(source)
	require.NoError(t, err)
	machine := New()
	result, err := machine.Run(c)
	require.NoError(t, err)
	return result
}

func TestScenarioArithmeticPrecedence(t *testing.T) {
	result := runSource(t, "return 10 + 30 * 2;")
	require.Equal(t, value.NewNumber(70), result)
}

func TestScenarioComparisonAndLogic(t *testing.T) {
	result := runSource(t, "return !(5 - 4 > 3 * 2 == !nil);")
	require.Equal(t, value.NewBool(true), result)
}

func TestScenarioStringConcat(t *testing.T) {
	machine := New()
	c, err := compiler.Compile(`var s = "hi "; return s + "there";`)
	require.NoError(t, err)
	result, err := machine.Run(c)
	require.NoError(t, err)
	require.True(t, result.IsString(machine.Heap()))
	require.Equal(t, "hi there", value.Print(result, machine.Heap()))
}

func TestScenarioIfElse(t *testing.T) {
	result := runSource(t, "var z=2; if (false) { z = 100; } else { z = 8; } return z;")
	require.Equal(t, value.NewNumber(8), result)
}

func TestScenarioForLoop(t *testing.T) {
	result := runSource(t, "var x=0; for (var i=0; i<5; i=i+1) { x = x + i; } return x;")
	require.Equal(t, value.NewNumber(10), result)
}

func TestScenarioAndOr(t *testing.T) {
	result := runSource(t, "var a=true; var b=false; return a and b or a;")
	require.Equal(t, value.NewBool(true), result)
}

func TestLeftAssociativeSubtraction(t *testing.T) {
	result := runSource(t, "return 10 - 4 - 1;")
	require.Equal(t, value.NewNumber(5), result)
}

func TestTruthiness(t *testing.T) {
	require.Equal(t, value.NewBool(true), runSource(t, "return !nil;"))
	require.Equal(t, value.NewBool(true), runSource(t, "return !0;"))
	require.Equal(t, value.NewBool(false), runSource(t, "return !1;"))
	require.Equal(t, value.NewBool(true), runSource(t, "return !false;"))
	require.Equal(t, value.NewBool(false), runSource(t, "return !!false;"))
}

func TestCrossTypeEquality(t *testing.T) {
	require.Equal(t, value.NewBool(false), runSource(t, "return true == 1;"))
	require.Equal(t, value.NewBool(true), runSource(t, "return nil == nil;"))
	require.Equal(t, value.NewBool(false), runSource(t, "return nil == false;"))
}

func TestStringEqualityAndConcatError(t *testing.T) {
	require.Equal(t, value.NewBool(true), runSource(t, `return "ok" == "ok";`))

	c, err := compiler.Compile(`return "a" + 1;`)
	require.NoError(t, err)
	_, err = New().Run(c)
	require.Error(t, err)
	var rerr *RuntimeError
	require.ErrorAs(t, err, &rerr)
}

func TestScopeDiscipline(t *testing.T) {
	c, err := compiler.Compile("var z; { var x; var y; x = 10; y = 20; z = x + y; } return z;")
	require.NoError(t, err)
	machine := New()
	result, err := machine.Run(c)
	require.NoError(t, err)
	require.Equal(t, value.NewNumber(30), result)
	require.Equal(t, 0, machine.stackTop)
}

func TestWhileLoop(t *testing.T) {
	result := runSource(t, "var x=0; var y=3; while (y>0) { y=y-1; x=x+1; } return x;")
	require.Equal(t, value.NewNumber(3), result)
}

func TestForLoopAllClauses(t *testing.T) {
	result := runSource(t, "var x=0; for (var i=0; i<10; i=i+1) { x=x+1; } return x;")
	require.Equal(t, value.NewNumber(10), result)
}

func TestForLoopEmptyClausesWithEarlyReturn(t *testing.T) {
	result := runSource(t, "var x=0; for (;;) { x=x+1; if (x>=10) return x; } return x;")
	require.Equal(t, value.NewNumber(10), result)
}

func TestShortCircuitAndSkipsRHS(t *testing.T) {
	// An undefined global read is a runtime error, so if the RHS of
	// `and` were evaluated despite the falsy LHS, this would fail.
	result := runSource(t, "return false and undefinedThing;")
	require.Equal(t, value.NewBool(false), result)
}

func TestShortCircuitOrSkipsRHS(t *testing.T) {
	result := runSource(t, "return true or undefinedThing;")
	require.Equal(t, value.NewBool(true), result)
}

func TestUndefinedGlobalGetIsRuntimeError(t *testing.T) {
	c, err := compiler.Compile("return undefinedThing;")
	require.NoError(t, err)
	_, err = New().Run(c)
	require.Error(t, err)
	var rerr *RuntimeError
	require.ErrorAs(t, err, &rerr)
}

func TestUndefinedGlobalGetIsLenientWhenConfigured(t *testing.T) {
	c, err := compiler.Compile("return undefinedThing;")
	require.NoError(t, err)
	machine := NewWithConfig(Config{LenientGlobals: true})
	result, err := machine.Run(c)
	require.NoError(t, err)
	require.Equal(t, value.NewNil(), result)
}

func TestGlobalsPersistAcrossRunsOnSameVM(t *testing.T) {
	machine := New()

	c1, err := compiler.Compile("var count = 1; return count;")
	require.NoError(t, err)
	result, err := machine.Run(c1)
	require.NoError(t, err)
	require.Equal(t, value.NewNumber(1), result)

	c2, err := compiler.Compile("count = count + 1; return count;")
	require.NoError(t, err)
	result, err = machine.Run(c2)
	require.NoError(t, err)
	require.Equal(t, value.NewNumber(2), result)
}

func TestStatsReportsHeapResidency(t *testing.T) {
	machine := New()
	c, err := compiler.Compile(`var s = "hi"; return s;`)
	require.NoError(t, err)
	_, err = machine.Run(c)
	require.NoError(t, err)
	require.Contains(t, machine.Stats(), "heap: 1 objects")
}

func TestPrintWritesToConfiguredOutput(t *testing.T) {
	var buf bytes.Buffer
	machine := NewWithConfig(Config{Output: &buf})
	c, err := compiler.Compile(`print "hello"; return nil;`)
	require.NoError(t, err)
	_, err = machine.Run(c)
	require.NoError(t, err)
	require.Equal(t, "hello\n", buf.String())
}
