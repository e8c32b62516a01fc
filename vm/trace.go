package vm

import (
	"strings"

	"github.com/sirupsen/logrus"
)

const debugLevel = logrus.DebugLevel

// trace logs the stack contents and the instruction about to run, if the
// instance's logger is at DebugLevel. It is the side channel spec.md
// describes: it never touches the print sink and costs one level check
// when trace is disabled.
func (i *Instance) trace(chunk *Chunk, pc int) {
	if !i.log.IsLevelEnabled(debugLevel) {
		return
	}
	var stack strings.Builder
	stack.WriteString("          ")
	for _, v := range i.stack {
		stack.WriteString("[ ")
		stack.WriteString(Display(v))
		stack.WriteString(" ]")
	}
	i.log.Debug(stack.String())

	var instr strings.Builder
	chunk.disassembleInstruction(&instr, pc)
	i.log.Debug(strings.TrimSuffix(instr.String(), "\n"))
}
