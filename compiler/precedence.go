package compiler

// Precedence orders Pratt binding power, low to high.
type Precedence uint8

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix, infix parseFn
	prec          Precedence
}

var rules map[TokenKind]parseRule

func init() {
	rules = map[TokenKind]parseRule{
		TokenLeftParen:    {(*Compiler).grouping, nil, PrecNone},
		TokenMinus:        {(*Compiler).unary, (*Compiler).binary, PrecTerm},
		TokenPlus:         {nil, (*Compiler).binary, PrecTerm},
		TokenSlash:        {nil, (*Compiler).binary, PrecFactor},
		TokenStar:         {nil, (*Compiler).binary, PrecFactor},
		TokenBang:         {(*Compiler).unary, nil, PrecNone},
		TokenBangEqual:    {nil, (*Compiler).binary, PrecEquality},
		TokenEqualEqual:   {nil, (*Compiler).binary, PrecEquality},
		TokenGreater:      {nil, (*Compiler).binary, PrecComparison},
		TokenGreaterEqual: {nil, (*Compiler).binary, PrecComparison},
		TokenLess:         {nil, (*Compiler).binary, PrecComparison},
		TokenLessEqual:    {nil, (*Compiler).binary, PrecComparison},
		TokenIdentifier:   {(*Compiler).variable, nil, PrecNone},
		TokenString:       {(*Compiler).string, nil, PrecNone},
		TokenNumber:       {(*Compiler).number, nil, PrecNone},
		TokenFalse:        {(*Compiler).literal, nil, PrecNone},
		TokenNil:          {(*Compiler).literal, nil, PrecNone},
		TokenTrue:         {(*Compiler).literal, nil, PrecNone},
	}
}

func ruleFor(kind TokenKind) parseRule {
	return rules[kind] // zero value: {nil, nil, PrecNone}
}
