package asm

type TokenType int

const (
	TokenBegin TokenType = iota
	TokenEnd
	TokenIdentifier
	TokenLabel
	TokenLiteral
	TokenScalar
	TokenKeywordCommand
	TokenKeywordCondition
	TokenKeywordDefine
	TokenKeywordInclude
	TokenKeywordMacro
	TokenKeywordRegister
	TokenOperatorBinary
	TokenOperatorUnary
	TokenSymbolArithmetic
	TokenSymbolBrace
	TokenSymbolBracket
	TokenSymbolImmediate
	TokenSymbolPosition
	TokenSymbolSeparator
)

var tokenTypeNames = map[TokenType]string{
	TokenBegin:            "Begin",
	TokenEnd:              "End",
	TokenIdentifier:       "Identifier",
	TokenLabel:            "Label",
	TokenLiteral:          "Literal",
	TokenScalar:           "Scalar",
	TokenKeywordCommand:   "KeywordCommand",
	TokenKeywordCondition: "KeywordCondition",
	TokenKeywordDefine:    "KeywordDefine",
	TokenKeywordInclude:   "KeywordInclude",
	TokenKeywordMacro:     "KeywordMacro",
	TokenKeywordRegister:  "KeywordRegister",
	TokenOperatorBinary:   "OperatorBinary",
	TokenOperatorUnary:    "OperatorUnary",
	TokenSymbolArithmetic: "SymbolArithmetic",
	TokenSymbolBrace:      "SymbolBrace",
	TokenSymbolBracket:    "SymbolBracket",
	TokenSymbolImmediate:  "SymbolImmediate",
	TokenSymbolPosition:   "SymbolPosition",
	TokenSymbolSeparator:  "SymbolSeparator",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// IsKeyword reports whether t is one of the reserved word classes that may
// not be used as a label.
func (t TokenType) IsKeyword() bool {
	return t >= TokenKeywordCommand && t <= TokenKeywordRegister
}

// Subtype indexes the spelling table of a token type.
type Subtype int

const SubtypeUndefined Subtype = -1

const (
	ConditionIf Subtype = iota
	ConditionIfDefine
	ConditionElseIf
	ConditionElseIfDefine
	ConditionElse
	ConditionEndIf
)

const (
	DefineDataByte Subtype = iota
	DefineDataWord
	DefineByte
	DefineOrigin
	DefineReserve
	DefineSegment
	DefineUndefine
)

const (
	IncludeBinary Subtype = iota
	IncludeHeader
	IncludeSource
)

const (
	MacroByte Subtype = iota
	MacroHigh
	MacroLow
	MacroWord
)

const (
	RegisterA Subtype = iota
	RegisterX
	RegisterY
)

const (
	OperatorBinaryEqual Subtype = iota
	OperatorBinaryNotEqual
	OperatorBinaryGreaterEqual
	OperatorBinaryLessEqual
	OperatorBinaryGreater
	OperatorBinaryLess
	OperatorBinaryAnd
	OperatorBinaryOr
)

const (
	OperatorUnaryNotBinary Subtype = iota
	OperatorUnaryNotLogical
)

const (
	ArithmeticAdd Subtype = iota
	ArithmeticSubtract
	ArithmeticMultiply
	ArithmeticDivide
	ArithmeticModulus
	ArithmeticAnd
	ArithmeticOr
	ArithmeticXor
	ArithmeticShiftLeft
	ArithmeticShiftRight
)

const (
	BraceOpen Subtype = iota
	BraceClose
)

const (
	BracketOpen Subtype = iota
	BracketClose
)

const (
	ImmediateValue Subtype = iota
)

const (
	PositionCurrent Subtype = iota
	PositionSegment
)

const (
	SeparatorComma Subtype = iota
)

type spelling struct {
	text string
	name string
}

type keywordTable struct {
	typ       TokenType
	spellings []spelling
}

var commandSpellings = func() []spelling {
	mnemonics := []string{
		"adc", "and", "asl", "bcc", "bcs", "beq", "bit", "bmi",
		"bne", "bpl", "brk", "bvc", "bvs", "clc", "cld", "cli",
		"clv", "cmp", "cpx", "cpy", "dec", "dex", "dey", "eor",
		"inc", "inx", "iny", "jmp", "jsr", "lda", "ldx", "ldy",
		"lsr", "nop", "ora", "pha", "php", "pla", "plp", "rol",
		"ror", "rti", "rts", "sbc", "sec", "sed", "sei", "sta",
		"stx", "sty", "tax", "tay", "tsx", "txa", "txs", "tya",
	}
	out := make([]spelling, len(mnemonics))
	for i, m := range mnemonics {
		out[i] = spelling{text: m, name: m}
	}
	return out
}()

// keywordTables is searched in order by DetermineType; the first table
// holding a spelling wins and the subtype is the index within it.
var keywordTables = []keywordTable{
	{TokenKeywordCommand, commandSpellings},
	{TokenKeywordCondition, []spelling{
		{"if", "if"},
		{"ifdef", "if_define"},
		{"elif", "else_if"},
		{"elifdef", "else_if_define"},
		{"else", "else"},
		{"endif", "end_if"},
	}},
	{TokenKeywordDefine, []spelling{
		{"db", "data_byte"},
		{"dw", "data_word"},
		{"def", "define_byte"},
		{"org", "origin"},
		{"res", "reserve"},
		{"seg", "segment"},
		{"undef", "undefine"},
	}},
	{TokenKeywordInclude, []spelling{
		{"incb", "include_binary"},
		{"inch", "include_header"},
		{"incs", "include_source"},
	}},
	{TokenKeywordMacro, []spelling{
		{"byte", "byte"},
		{"high", "high"},
		{"low", "low"},
		{"word", "word"},
	}},
	{TokenKeywordRegister, []spelling{
		{"a", "a"},
		{"x", "x"},
		{"y", "y"},
	}},
	{TokenOperatorBinary, []spelling{
		{"==", "equal"},
		{"!=", "not_equal"},
		{">=", "greater_equal"},
		{"<=", "less_equal"},
		{">", "greater"},
		{"<", "less"},
		{"&&", "and"},
		{"||", "or"},
	}},
	{TokenOperatorUnary, []spelling{
		{"~", "not_binary"},
		{"!", "not_logical"},
	}},
	{TokenSymbolArithmetic, []spelling{
		{"+", "add"},
		{"-", "subtract"},
		{"*", "multiply"},
		{"/", "divide"},
		{"%", "modulus"},
		{"&", "and"},
		{"|", "or"},
		{"^", "xor"},
		{"<<", "shift_left"},
		{">>", "shift_right"},
	}},
	{TokenSymbolBrace, []spelling{
		{"{", "open"},
		{"}", "close"},
	}},
	{TokenSymbolBracket, []spelling{
		{"(", "open"},
		{")", "close"},
	}},
	{TokenSymbolImmediate, []spelling{
		{"#", "immediate"},
	}},
	{TokenSymbolPosition, []spelling{
		{"$", "current"},
		{"$$", "segment"},
	}},
	{TokenSymbolSeparator, []spelling{
		{",", "comma"},
	}},
}

// DetermineType classifies key against the keyword, operator and symbol
// tables. Keys found in no table are identifiers.
func DetermineType(key string) (TokenType, Subtype, error) {
	if key == "" {
		return TokenIdentifier, SubtypeUndefined, ErrInvalidKey
	}

	for _, table := range keywordTables {
		for i, s := range table.spellings {
			if s.text == key {
				return table.typ, Subtype(i), nil
			}
		}
	}
	return TokenIdentifier, SubtypeUndefined, nil
}

// SubtypeName returns the descriptive name of a subtype, such as "equal"
// for the == operator.
func SubtypeName(typ TokenType, sub Subtype) string {
	if s, ok := lookupSpelling(typ, sub); ok {
		return s.name
	}
	return ""
}

// Spelling returns the source text of a subtype, such as "==".
func Spelling(typ TokenType, sub Subtype) string {
	if s, ok := lookupSpelling(typ, sub); ok {
		return s.text
	}
	return ""
}

// Keywords returns every reserved word spelling in table order.
func Keywords() []string {
	var out []string
	for _, table := range keywordTables {
		if !table.typ.IsKeyword() {
			continue
		}
		for _, s := range table.spellings {
			out = append(out, s.text)
		}
	}
	return out
}

func lookupSpelling(typ TokenType, sub Subtype) (spelling, bool) {
	for _, table := range keywordTables {
		if table.typ != typ {
			continue
		}
		if sub < 0 || int(sub) >= len(table.spellings) {
			return spelling{}, false
		}
		return table.spellings[sub], true
	}
	return spelling{}, false
}
