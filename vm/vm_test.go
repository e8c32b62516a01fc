package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctsk/lox/vm"
)

func build(t *testing.T, fn func(c *vm.Chunk)) *vm.Chunk {
	t.Helper()
	c := vm.NewChunk()
	fn(c)
	return c
}

func TestRunArithmeticExpression(t *testing.T) {
	// -(3 * 7 * 11 * 17) / -(500 + 1000 - 250)
	c := vm.NewChunk()
	n := func(v float64) byte { return byte(c.AddConstant(vm.Number(v))) }

	c.Write(byte(vm.OpConstant), 1)
	c.Write(n(3), 1)
	c.Write(byte(vm.OpConstant), 1)
	c.Write(n(7), 1)
	c.WriteOp(vm.OpMultiply, 1)
	c.Write(byte(vm.OpConstant), 1)
	c.Write(n(11), 1)
	c.WriteOp(vm.OpMultiply, 1)
	c.Write(byte(vm.OpConstant), 1)
	c.Write(n(17), 1)
	c.WriteOp(vm.OpMultiply, 1)
	c.WriteOp(vm.OpNegate, 1)

	c.Write(byte(vm.OpConstant), 1)
	c.Write(n(500), 1)
	c.Write(byte(vm.OpConstant), 1)
	c.Write(n(1000), 1)
	c.WriteOp(vm.OpAdd, 1)
	c.Write(byte(vm.OpConstant), 1)
	c.Write(n(250), 1)
	c.WriteOp(vm.OpSubtract, 1)
	c.WriteOp(vm.OpNegate, 1)

	c.WriteOp(vm.OpDivide, 1)
	c.WriteOp(vm.OpReturn, 1)

	var out bytes.Buffer
	i, err := vm.New(vm.WithOutput(&out))
	require.NoError(t, err)
	require.NoError(t, i.Run(c))
}

func TestRunStringConcatenation(t *testing.T) {
	c := vm.NewChunk()
	hello := c.InternString("hello")
	space := c.InternString(" ")
	world := c.InternString("world")
	hi := c.AddConstant(vm.FromObject(hello))
	sp := c.AddConstant(vm.FromObject(space))
	wo := c.AddConstant(vm.FromObject(world))

	c.Write(byte(vm.OpConstant), 1)
	c.Write(byte(hi), 1)
	c.Write(byte(vm.OpConstant), 1)
	c.Write(byte(sp), 1)
	c.WriteOp(vm.OpAdd, 1)
	c.Write(byte(vm.OpConstant), 1)
	c.Write(byte(wo), 1)
	c.WriteOp(vm.OpAdd, 1)
	c.WriteOp(vm.OpPrint, 1)
	c.WriteOp(vm.OpReturn, 1)

	var out bytes.Buffer
	i, err := vm.New(vm.WithOutput(&out))
	require.NoError(t, err)
	require.NoError(t, i.Run(c))
	assert.Equal(t, "hello world\n", out.String())
}

func TestRunGlobalAssignmentRoundTrip(t *testing.T) {
	// var x = 5; x = x + 6; print x;
	c := vm.NewChunk()
	name := c.InternString("x")
	xOff := byte(c.AddConstant(vm.FromObject(name)))
	fiveOff := byte(c.AddConstant(vm.Number(5)))
	sixOff := byte(c.AddConstant(vm.Number(6)))

	c.Write(byte(vm.OpConstant), 1)
	c.Write(fiveOff, 1)
	c.Write(byte(vm.OpDefineGlobal), 1)
	c.Write(xOff, 1)

	c.Write(byte(vm.OpGetGlobal), 1)
	c.Write(xOff, 1)
	c.Write(byte(vm.OpConstant), 1)
	c.Write(sixOff, 1)
	c.WriteOp(vm.OpAdd, 1)
	c.Write(byte(vm.OpSetGlobal), 1)
	c.Write(xOff, 1)
	c.WriteOp(vm.OpPop, 1)

	c.Write(byte(vm.OpGetGlobal), 1)
	c.Write(xOff, 1)
	c.WriteOp(vm.OpPrint, 1)
	c.WriteOp(vm.OpReturn, 1)

	var out bytes.Buffer
	i, err := vm.New(vm.WithOutput(&out))
	require.NoError(t, err)
	require.NoError(t, i.Run(c))
	assert.Equal(t, "11\n", out.String())
}

func TestRunUndefinedVariableIsRuntimeError(t *testing.T) {
	c := vm.NewChunk()
	name := c.InternString("a")
	aOff := byte(c.AddConstant(vm.FromObject(name)))

	c.Write(byte(vm.OpGetGlobal), 1)
	c.Write(aOff, 1)
	c.WriteOp(vm.OpPrint, 1)
	c.WriteOp(vm.OpReturn, 1)

	var out bytes.Buffer
	i, err := vm.New(vm.WithOutput(&out))
	require.NoError(t, err)

	err = i.Run(c)
	require.Error(t, err)
	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	assert.Equal(t, vm.UndefinedVariable, rerr.Kind)
	assert.Equal(t, "Undefined variable 'a'.\n[line 1]", rerr.Error())
}

func TestRunLocalScopePopOnBlockExit(t *testing.T) {
	// { var a = 1; { var a = 2; print a; } print a; }
	c := vm.NewChunk()
	one := byte(c.AddConstant(vm.Number(1)))
	two := byte(c.AddConstant(vm.Number(2)))

	c.Write(byte(vm.OpConstant), 1) // slot 0: outer a = 1
	c.Write(one, 1)
	c.Write(byte(vm.OpConstant), 1) // slot 1: inner a = 2
	c.Write(two, 1)
	c.Write(byte(vm.OpGetLocal), 1)
	c.Write(1, 1)
	c.WriteOp(vm.OpPrint, 1)
	c.WriteOp(vm.OpPop, 1) // end inner block

	c.Write(byte(vm.OpGetLocal), 1)
	c.Write(0, 1)
	c.WriteOp(vm.OpPrint, 1)
	c.WriteOp(vm.OpPop, 1) // end outer block
	c.WriteOp(vm.OpReturn, 1)

	var out bytes.Buffer
	i, err := vm.New(vm.WithOutput(&out))
	require.NoError(t, err)
	require.NoError(t, i.Run(c))
	assert.Equal(t, "2\n1\n", out.String())
}

func TestRunInvalidMathOperandOnNegate(t *testing.T) {
	c := vm.NewChunk()
	c.WriteOp(vm.OpFalse, 3)
	c.WriteOp(vm.OpNegate, 3)
	c.WriteOp(vm.OpReturn, 3)

	i, err := vm.New()
	require.NoError(t, err)
	err = i.Run(c)
	require.Error(t, err)
	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	assert.Equal(t, vm.InvalidMathOperand, rerr.Kind)
	assert.Equal(t, 3, rerr.Line)
}

func TestRunAddMismatchedOperands(t *testing.T) {
	c := vm.NewChunk()
	c.Write(byte(vm.OpConstant), 1)
	c.Write(byte(c.AddConstant(vm.Number(1))), 1)
	str := c.InternString("x")
	c.Write(byte(vm.OpConstant), 1)
	c.Write(byte(c.AddConstant(vm.FromObject(str))), 1)
	c.WriteOp(vm.OpAdd, 1)
	c.WriteOp(vm.OpReturn, 1)

	i, err := vm.New()
	require.NoError(t, err)
	err = i.Run(c)
	require.Error(t, err)
	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	assert.Equal(t, vm.InvalidAddOperands, rerr.Kind)
}

func TestRunIsIdempotentAcrossRepeatedRuns(t *testing.T) {
	c := build(t, func(c *vm.Chunk) {
		c.Write(byte(vm.OpConstant), 1)
		c.Write(byte(c.AddConstant(vm.Number(2))), 1)
		c.Write(byte(vm.OpConstant), 1)
		c.Write(byte(c.AddConstant(vm.Number(3))), 1)
		c.WriteOp(vm.OpAdd, 1)
		c.WriteOp(vm.OpPrint, 1)
		c.WriteOp(vm.OpReturn, 1)
	})

	var out1, out2 bytes.Buffer
	i1, err := vm.New(vm.WithOutput(&out1))
	require.NoError(t, err)
	require.NoError(t, i1.Run(c))

	i2, err := vm.New(vm.WithOutput(&out2))
	require.NoError(t, err)
	require.NoError(t, i2.Run(c))

	assert.Equal(t, out1.String(), out2.String())
	assert.Equal(t, "5\n", out1.String())
}
