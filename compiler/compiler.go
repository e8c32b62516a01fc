package compiler

import (
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/josharian/intern"
	"github.com/sirupsen/logrus"

	"github.com/ctsk/lox/vm"
)

const maxLocals = 256

const uninitializedDepth = -1

type localVar struct {
	name  string
	depth int
}

// Option configures a Compiler at construction time.
type Option func(*Compiler) error

// WithLogger installs a logger used to dump the compiled chunk's
// disassembly at DebugLevel once compilation finishes.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Compiler) error {
		c.log = logger
		return nil
	}
}

// Compiler consumes a Scanner's tokens and emits bytecode into a vm.Chunk in
// a single pass. It is single-use: construct one per call to Compile.
type Compiler struct {
	scanner *Scanner
	prev    Token
	curr    Token

	chunk *vm.Chunk

	literals map[string]int // literal string content -> constant offset

	locals []localVar
	depth  int

	errs      *multierror.Error
	panicMode bool

	log *logrus.Logger
}

// New constructs a Compiler ready to compile source via Compile.
func New(opts ...Option) (*Compiler, error) {
	c := &Compiler{
		literals: make(map[string]int),
		log:      logrus.New(),
	}
	c.log.SetLevel(logrus.InfoLevel)
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Compile compiles src into a fresh *vm.Chunk. On syntax errors it returns a
// non-nil *vm.Chunk (containing whatever was successfully emitted) alongside
// a *multierror.Error whose Errors field holds one *CompileError per
// diagnostic recorded during the batched error-recovery pass.
func Compile(src string, opts ...Option) (*vm.Chunk, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return c.Compile(src)
}

// Compile runs this Compiler over src. See the package-level Compile for
// the return contract.
func (c *Compiler) Compile(src string) (*vm.Chunk, error) {
	c.chunk = vm.NewChunk()
	c.scanner = NewScanner(src)
	c.advance()

	for !c.atEnd() {
		c.declaration()
	}

	c.emitReturn()
	if c.log.IsLevelEnabled(logrus.DebugLevel) {
		c.log.Debugln(c.chunk.Disassemble("<compile>"))
	}
	return c.chunk, c.errs.ErrorOrNil()
}

func (c *Compiler) atEnd() bool { return c.curr.Kind == tokenEOFSentinel }

// tokenEOFSentinel is never produced by the Scanner; ScanToken signals
// exhaustion by returning nil, which advance() turns into this marker so the
// rest of the parser can check c.curr.Kind like any other token kind.
const tokenEOFSentinel TokenKind = 255

func (c *Compiler) advance() {
	c.prev = c.curr
	for {
		tok := c.scanner.ScanToken()
		if tok == nil {
			c.curr = Token{Kind: tokenEOFSentinel, Line: c.prev.Line}
			return
		}
		if tok.Kind != TokenError {
			c.curr = *tok
			return
		}
		c.errorAt(*tok, ScanError)
	}
}

func (c *Compiler) check(kind TokenKind) bool { return c.curr.Kind == kind }

func (c *Compiler) match(kind TokenKind) bool {
	if !c.check(kind) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(kind TokenKind, errKind ErrorKind) {
	if c.check(kind) {
		c.advance()
		return
	}
	c.errorAtCurrent(errKind)
}

/* emission */

func (c *Compiler) emitByte(b byte) { c.chunk.Write(b, c.prev.Line) }
func (c *Compiler) emitOp(op vm.OpCode, operand byte) {
	c.emitByte(byte(op))
	c.emitByte(operand)
}
func (c *Compiler) emitOp0(op vm.OpCode) { c.emitByte(byte(op)) }
func (c *Compiler) emitReturn()          { c.emitOp0(vm.OpReturn) }

func (c *Compiler) emitConstant(v vm.Value) {
	offset := c.chunk.AddConstant(v)
	c.emitOp(vm.OpConstant, byte(offset))
}

/* declarations & statements */

func (c *Compiler) declaration() {
	switch {
	case c.match(TokenVar):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	global, isLocal, ok := c.parseVariable(NoVariableName)

	if c.match(TokenEqual) {
		c.expression()
	} else {
		c.emitOp0(vm.OpNil)
	}
	c.consume(TokenSemicolon, NoSemicolonAfterVarDecl)

	if !ok {
		c.emitOp0(vm.OpPop) // discard the initializer; no variable to bind it to
		return
	}
	if isLocal {
		c.markInitialized()
		return
	}
	c.emitOp(vm.OpDefineGlobal, byte(global))
}

// parseVariable consumes an identifier naming a variable being declared. It
// returns the constant-pool offset for a global name (meaningless when
// isLocal is true, since locals are resolved by stack position, not by
// constant) and ok=false if no identifier was there to consume, in which
// case the caller must not emit a Define/local-binding instruction.
func (c *Compiler) parseVariable(onMissing ErrorKind) (offset int, isLocal bool, ok bool) {
	if !c.check(TokenIdentifier) {
		c.errorAtCurrent(onMissing)
		c.advance()
		return 0, false, false
	}
	c.advance()
	name := c.prev

	if c.depth > 0 {
		c.declareLocal(name)
		return 0, true, true
	}
	return c.identifierConstant(name.Lexeme), false, true
}

func (c *Compiler) identifierConstant(name string) int {
	obj := c.chunk.InternString(intern.String(name))
	return c.chunk.AddConstant(vm.FromObject(obj))
}

func (c *Compiler) declareLocal(name Token) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		local := c.locals[i]
		if local.depth != uninitializedDepth && local.depth < c.depth {
			break
		}
		if local.name == name.Lexeme {
			c.error(DuplicateLocalInScope)
		}
	}
	c.addLocal(name.Lexeme)
}

func (c *Compiler) addLocal(name string) {
	if len(c.locals) >= maxLocals {
		c.error(TooManyLocals)
		return
	}
	c.locals = append(c.locals, localVar{name: name, depth: uninitializedDepth})
}

func (c *Compiler) markInitialized() {
	if c.depth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.depth
}

func (c *Compiler) statement() {
	switch {
	case c.match(TokenPrint):
		c.printStatement()
	case c.match(TokenLeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(TokenSemicolon, NoSemicolonAfterValue)
	c.emitOp0(vm.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(TokenSemicolon, NoSemicolonAfterExpression)
	c.emitOp0(vm.OpPop)
}

func (c *Compiler) beginScope() { c.depth++ }

func (c *Compiler) endScope() {
	c.depth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.depth {
		c.emitOp0(vm.OpPop)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *Compiler) block() {
	for !c.check(TokenRightBrace) && !c.atEnd() {
		c.declaration()
	}
	if c.atEnd() {
		c.errorAtCurrent(RightBraceAfterBlock)
		return
	}
	c.advance() // consume '}'
}

/* expressions */

func (c *Compiler) expression() { c.parsePrecedence(PrecAssignment) }

func (c *Compiler) parsePrecedence(prec Precedence) {
	c.advance()
	prefix := ruleFor(c.prev.Kind).prefix
	if prefix == nil {
		c.error(IncompleteExpression)
		return
	}
	canAssign := prec <= PrecAssignment
	prefix(c, canAssign)

	for prec <= ruleFor(c.curr.Kind).prec {
		c.advance()
		infix := ruleFor(c.prev.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(TokenEqual) {
		c.error(InvalidAssignmentTarget)
	}
}

func (c *Compiler) number(_ bool) {
	v, err := strconv.ParseFloat(c.prev.Lexeme, 64)
	if err != nil {
		c.error(InvalidNumber)
		return
	}
	c.emitConstant(vm.Number(v))
}

func (c *Compiler) string(_ bool) {
	content := c.prev.Lexeme[1 : len(c.prev.Lexeme)-1]
	content = intern.String(content)
	if offset, ok := c.literals[content]; ok {
		c.emitOp(vm.OpConstant, byte(offset))
		return
	}
	obj := c.chunk.InternString(content)
	offset := c.chunk.AddConstant(vm.FromObject(obj))
	c.literals[content] = offset
	c.emitOp(vm.OpConstant, byte(offset))
}

func (c *Compiler) literal(_ bool) {
	switch c.prev.Kind {
	case TokenFalse:
		c.emitOp0(vm.OpFalse)
	case TokenTrue:
		c.emitOp0(vm.OpTrue)
	case TokenNil:
		c.emitOp0(vm.OpNil)
	}
}

func (c *Compiler) grouping(_ bool) {
	c.expression()
	c.consume(TokenRightParen, IncompleteExpression)
}

func (c *Compiler) unary(_ bool) {
	opKind := c.prev.Kind
	c.parsePrecedence(PrecUnary)
	switch opKind {
	case TokenMinus:
		c.emitOp0(vm.OpNegate)
	case TokenBang:
		c.emitOp0(vm.OpNot)
	}
}

func (c *Compiler) binary(_ bool) {
	opKind := c.prev.Kind
	rule := ruleFor(opKind)
	c.parsePrecedence(rule.prec + 1)
	switch opKind {
	case TokenPlus:
		c.emitOp0(vm.OpAdd)
	case TokenMinus:
		c.emitOp0(vm.OpSubtract)
	case TokenStar:
		c.emitOp0(vm.OpMultiply)
	case TokenSlash:
		c.emitOp0(vm.OpDivide)
	case TokenEqualEqual:
		c.emitOp0(vm.OpEqual)
	case TokenBangEqual:
		c.emitOp0(vm.OpEqual)
		c.emitOp0(vm.OpNot)
	case TokenGreater:
		c.emitOp0(vm.OpGreater)
	case TokenGreaterEqual:
		c.emitOp0(vm.OpLess)
		c.emitOp0(vm.OpNot)
	case TokenLess:
		c.emitOp0(vm.OpLess)
	case TokenLessEqual:
		c.emitOp0(vm.OpGreater)
		c.emitOp0(vm.OpNot)
	}
}

func (c *Compiler) variable(canAssign bool) { c.namedVariable(c.prev, canAssign) }

func (c *Compiler) namedVariable(name Token, canAssign bool) {
	var getOp, setOp vm.OpCode
	offset, found := c.resolveLocal(name)
	if found {
		getOp, setOp = vm.OpGetLocal, vm.OpSetLocal
	} else {
		offset = c.identifierConstant(name.Lexeme)
		getOp, setOp = vm.OpGetGlobal, vm.OpSetGlobal
	}

	if canAssign && c.match(TokenEqual) {
		c.expression()
		c.emitOp(setOp, byte(offset))
		return
	}
	c.emitOp(getOp, byte(offset))
}

// resolveLocal returns the absolute stack offset of the nearest local named
// name.Lexeme, walking from the most recently declared. Absolute offsets
// work here because this language has no call frames: local i always lives
// at value-stack position i while its declaring block is active.
func (c *Compiler) resolveLocal(name Token) (offset int, found bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name.Lexeme {
			if c.locals[i].depth == uninitializedDepth {
				c.error(LocalInOwnInitializer)
			}
			return i, true
		}
	}
	return 0, false
}

/* error recovery */

func (c *Compiler) synchronize() {
	c.panicMode = false
	for !c.atEnd() && c.prev.Kind != TokenSemicolon {
		switch c.curr.Kind {
		case TokenClass, TokenFun, TokenVar, TokenFor, TokenIf, TokenWhile, TokenPrint, TokenReturn:
			return
		}
		c.advance()
	}
}

func (c *Compiler) error(kind ErrorKind) { c.errorAt(c.prev, kind) }

func (c *Compiler) errorAtCurrent(kind ErrorKind) { c.errorAt(c.curr, kind) }

func (c *Compiler) errorAt(tok Token, kind ErrorKind) {
	if c.panicMode {
		return
	}
	c.panicMode = true

	var e *CompileError
	switch {
	case kind == ScanError:
		// Scanner errors report as "[line N] Error: <message>" with no
		// associated token text, per spec.
		e = newCompileError(kind, tok.Line, "", false)
	case tok.Kind == tokenEOFSentinel:
		e = newCompileError(kind, tok.Line, "", true)
	default:
		e = newCompileError(kind, tok.Line, tok.Lexeme, false)
	}
	c.errs = multierror.Append(c.errs, e)
}
