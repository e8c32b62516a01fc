// Package compiler turns Lox source text into a vm.Chunk in a single pass:
// no AST is built. A Scanner produces tokens lazily; a Pratt-style Parser
// consumes them, resolves local variables against a compile-time locals
// stack, interns string and name literals into the chunk's constant pool,
// and emits bytecode directly as each grammar rule is recognized.
//
// Errors are batched rather than fatal: Compile keeps parsing declarations
// after a syntax error, recording each one and resynchronizing at the next
// statement boundary, so a single call can report every syntax error in a
// source file instead of just the first.
package compiler
