// Package vm implements the Lox bytecode virtual machine: the Value/Object
// heap, the Chunk bytecode container, the opcode set, and the Instance that
// executes a Chunk against a value stack and a global-name environment.
//
// An Instance owns everything it touches at runtime: its value stack, its
// name-keyed globals table, and the list of string allocations produced
// while running (e.g. the results of "+" on two strings). Run resets all of
// that state when it starts, so nothing carries over from one call to the
// next.
//
// This package has no notion of source text, tokens, or parsing — package
// compiler is the only producer of Chunks.
package vm
