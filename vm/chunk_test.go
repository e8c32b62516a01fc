package vm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ctsk/lox/vm"
)

func TestChunkCodeAndLineMapStaySameLength(t *testing.T) {
	c := vm.NewChunk()
	c.Write(byte(vm.OpConstant), 1)
	c.Write(byte(c.AddConstant(vm.Number(1))), 1)
	c.WriteOp(vm.OpReturn, 2)

	assert.Len(t, c.Lines, len(c.Code))
}

func TestChunkAddConstantReturnsStableOffsets(t *testing.T) {
	c := vm.NewChunk()
	a := c.AddConstant(vm.Number(1))
	b := c.AddConstant(vm.Number(2))

	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
	assert.Len(t, c.Constants, 2)
}

func TestChunkDisassembleListsOneLinePerInstruction(t *testing.T) {
	c := vm.NewChunk()
	c.Write(byte(vm.OpConstant), 1)
	c.Write(byte(c.AddConstant(vm.Number(42))), 1)
	c.WriteOp(vm.OpReturn, 1)

	out := c.Disassemble("<test>")
	assert.True(t, strings.HasPrefix(out, "== <test> =="))
	assert.Contains(t, out, "OP_CONSTANT")
	assert.Contains(t, out, "OP_RETURN")
	assert.Equal(t, 3, strings.Count(out, "\n"))
}
