package vm

import (
	"fmt"

	"github.com/pkg/errors"
)

// Run executes chunk to completion or until a runtime error aborts it. Each
// call starts from a fresh value stack, program counter, and runtime
// allocation list, as required of Instance; globals persist only within a
// single call.
func (i *Instance) Run(chunk *Chunk) (err error) {
	defer func() {
		if e := recover(); e != nil {
			if re, ok := e.(*RuntimeError); ok {
				err = re
				return
			}
			panic(e)
		}
	}()

	i.stack = i.stack[:0]
	i.allocations = i.allocations[:0]
	i.globals = make(map[string]Value)

	pc := 0
	for pc < len(chunk.Code) {
		op := OpCode(chunk.Code[pc])
		line := chunk.Lines[pc]
		pc++

		i.trace(chunk, pc-1)

		switch op {
		case OpConstant:
			offset := chunk.Code[pc]
			pc++
			i.push(chunk.Constants[offset])

		case OpNil:
			i.push(Nil)
		case OpTrue:
			i.push(True)
		case OpFalse:
			i.push(False)

		case OpPop:
			i.pop(line)

		case OpNegate:
			v := i.pop(line)
			if v.Kind != KindNumber {
				panic(newRuntimeError(InvalidMathOperand, line))
			}
			i.push(Number(-v.AsNumber()))

		case OpNot:
			v := i.pop(line)
			switch v.Kind {
			case KindNil:
				i.push(True)
			case KindBool:
				i.push(Bool(!v.AsBool()))
			default:
				panic(newRuntimeError(InvalidMathOperand, line))
			}

		case OpAdd:
			b := i.pop(line)
			a := i.pop(line)
			i.push(i.add(a, b, line))

		case OpSubtract:
			b := i.pop(line)
			a := i.pop(line)
			i.push(Number(i.numOperand(a, line) - i.numOperand(b, line)))

		case OpMultiply:
			b := i.pop(line)
			a := i.pop(line)
			i.push(Number(i.numOperand(a, line) * i.numOperand(b, line)))

		case OpDivide:
			b := i.pop(line)
			a := i.pop(line)
			i.push(Number(i.numOperand(a, line) / i.numOperand(b, line)))

		case OpEqual:
			b := i.pop(line)
			a := i.pop(line)
			i.push(Bool(Equal(a, b)))

		case OpGreater:
			b := i.pop(line)
			a := i.pop(line)
			i.push(Bool(i.numOperand(a, line) > i.numOperand(b, line)))

		case OpLess:
			b := i.pop(line)
			a := i.pop(line)
			i.push(Bool(i.numOperand(a, line) < i.numOperand(b, line)))

		case OpPrint:
			v := i.pop(line)
			if _, werr := fmt.Fprintln(i.output, Display(v)); werr != nil {
				e := newRuntimeError(OutputWriteFailure, line)
				e.err = errors.Wrap(werr, "write to print sink")
				panic(e)
			}

		case OpDefineGlobal:
			offset := chunk.Code[pc]
			pc++
			name := chunk.Constants[offset].AsString()
			i.globals[name] = i.pop(line)

		case OpGetGlobal:
			offset := chunk.Code[pc]
			pc++
			name := chunk.Constants[offset].AsString()
			v, ok := i.globals[name]
			if !ok {
				panic(newUndefinedVariableError(line, name))
			}
			i.push(v)

		case OpSetGlobal:
			offset := chunk.Code[pc]
			pc++
			name := chunk.Constants[offset].AsString()
			if _, ok := i.globals[name]; !ok {
				panic(newUndefinedVariableError(line, name))
			}
			i.globals[name] = i.peek(line)

		case OpGetLocal:
			offset := chunk.Code[pc]
			pc++
			i.push(i.stack[offset])

		case OpSetLocal:
			offset := chunk.Code[pc]
			pc++
			i.stack[offset] = i.peek(line)

		case OpReturn:
			return nil

		default:
			panic(errors.Errorf("unknown opcode %d at pc %d", op, pc-1))
		}
	}
	return nil
}

func (i *Instance) push(v Value) {
	i.stack = append(i.stack, v)
}

func (i *Instance) pop(line int) Value {
	n := len(i.stack)
	if n == 0 {
		panic(newRuntimeError(PopFromEmptyStack, line))
	}
	v := i.stack[n-1]
	i.stack = i.stack[:n-1]
	return v
}

func (i *Instance) peek(line int) Value {
	n := len(i.stack)
	if n == 0 {
		panic(newRuntimeError(PopFromEmptyStack, line))
	}
	return i.stack[n-1]
}

func (i *Instance) numOperand(v Value, line int) float64 {
	if v.Kind != KindNumber {
		panic(newRuntimeError(InvalidMathOperands, line))
	}
	return v.AsNumber()
}

// add implements Add's dual Number/String semantics: numeric addition for
// two Numbers, concatenation (producing a new owned string handle retained
// in i.allocations) for two Strings, and InvalidAddOperands otherwise.
func (i *Instance) add(a, b Value, line int) Value {
	if a.Kind == KindNumber && b.Kind == KindNumber {
		return Number(a.AsNumber() + b.AsNumber())
	}
	if a.IsString() && b.IsString() {
		obj := NewString(a.AsString() + b.AsString())
		i.allocations = append(i.allocations, obj)
		return FromObject(obj)
	}
	panic(newRuntimeError(InvalidAddOperands, line))
}
