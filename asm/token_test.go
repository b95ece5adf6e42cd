package asm

import (
	"errors"
	"strconv"
	"testing"
)

func TestTokenTypeString(t *testing.T) {
	tests := []struct {
		typ  TokenType
		want string
	}{
		{TokenBegin, "Begin"},
		{TokenIdentifier, "Identifier"},
		{TokenKeywordCommand, "KeywordCommand"},
		{TokenOperatorBinary, "OperatorBinary"},
		{TokenSymbolSeparator, "SymbolSeparator"},
		{TokenType(999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("TokenType(%d).String() = %q, want %q", tt.typ, got, tt.want)
			}
		})
	}
}

func TestDetermineType(t *testing.T) {
	tests := []struct {
		key     string
		typ     TokenType
		sub     Subtype
		subName string
	}{
		{"lda", TokenKeywordCommand, 29, "lda"},
		{"adc", TokenKeywordCommand, 0, "adc"},
		{"tya", TokenKeywordCommand, 55, "tya"},
		{"if", TokenKeywordCondition, ConditionIf, "if"},
		{"endif", TokenKeywordCondition, ConditionEndIf, "end_if"},
		{"db", TokenKeywordDefine, DefineDataByte, "data_byte"},
		{"undef", TokenKeywordDefine, DefineUndefine, "undefine"},
		{"incs", TokenKeywordInclude, IncludeSource, "include_source"},
		{"word", TokenKeywordMacro, MacroWord, "word"},
		{"x", TokenKeywordRegister, RegisterX, "x"},
		{"==", TokenOperatorBinary, OperatorBinaryEqual, "equal"},
		{"||", TokenOperatorBinary, OperatorBinaryOr, "or"},
		{"!", TokenOperatorUnary, OperatorUnaryNotLogical, "not_logical"},
		{"<<", TokenSymbolArithmetic, ArithmeticShiftLeft, "shift_left"},
		{"}", TokenSymbolBrace, BraceClose, "close"},
		{"(", TokenSymbolBracket, BracketOpen, "open"},
		{"#", TokenSymbolImmediate, ImmediateValue, "immediate"},
		{"$$", TokenSymbolPosition, PositionSegment, "segment"},
		{",", TokenSymbolSeparator, SeparatorComma, "comma"},
		{"LDA", TokenIdentifier, SubtypeUndefined, ""},
		{"loop", TokenIdentifier, SubtypeUndefined, ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			typ, sub, err := DetermineType(tt.key)
			if err != nil {
				t.Fatalf("DetermineType(%q) error = %v", tt.key, err)
			}
			if typ != tt.typ || sub != tt.sub {
				t.Errorf("DetermineType(%q) = %s/%d, want %s/%d", tt.key, typ, sub, tt.typ, tt.sub)
			}
			if got := SubtypeName(typ, sub); got != tt.subName {
				t.Errorf("SubtypeName() = %q, want %q", got, tt.subName)
			}
		})
	}

	if _, _, err := DetermineType(""); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("DetermineType(\"\") error = %v, want %v", err, ErrInvalidKey)
	}
}

func TestSpellingRoundTrip(t *testing.T) {
	for _, table := range keywordTables {
		for i, s := range table.spellings {
			typ, sub, err := DetermineType(s.text)
			if err != nil {
				t.Fatal(err)
			}
			if typ != table.typ || sub != Subtype(i) {
				t.Errorf("DetermineType(%q) = %s/%d, want %s/%d", s.text, typ, sub, table.typ, i)
			}
			if got := Spelling(typ, sub); got != s.text {
				t.Errorf("Spelling(%s, %d) = %q, want %q", typ, sub, got, s.text)
			}
		}
	}
}

func TestAsScalar(t *testing.T) {
	tests := []struct {
		digits string
		base   Base
		want   int32
	}{
		{"0", BaseDecimal, 0},
		{"1", BaseBinary, 1},
		{"101", BaseBinary, 5},
		{"42", BaseDecimal, 42},
		{"FF", BaseHexadecimal, 255},
		{"ff", BaseHexadecimal, 255},
		{"17", BaseOctal, 15},
		{"7fffffff", BaseHexadecimal, 2147483647},
		{"ffffffff", BaseHexadecimal, -1},
	}

	for _, tt := range tests {
		t.Run(tt.base.String()+"/"+tt.digits, func(t *testing.T) {
			if got := AsScalar(tt.digits, tt.base); got != tt.want {
				t.Errorf("AsScalar(%q, %s) = %d, want %d", tt.digits, tt.base, got, tt.want)
			}
		})
	}
}

func TestAsScalarRoundTrip(t *testing.T) {
	bases := map[Base]int{
		BaseBinary:      2,
		BaseDecimal:     10,
		BaseHexadecimal: 16,
		BaseOctal:       8,
	}
	values := []int64{0, 1, 7, 8, 15, 16, 255, 256, 4095, 65535, 1 << 20, 2147483647}

	for base, radix := range bases {
		for _, v := range values {
			digits := strconv.FormatInt(v, radix)
			if got := AsScalar(digits, base); int64(got) != v {
				t.Errorf("AsScalar(%q, %s) = %d, want %d", digits, base, got, v)
			}
		}
	}
}

func TestTokenRefcount(t *testing.T) {
	ctx := newTestContext(t)

	tok := NewKeyToken(ctx, TokenIdentifier, "foo", 1, 1)
	cp := tok.Copy()
	if got := ctx.Store().TokenReferences(tok.Handle()); got != 2 {
		t.Errorf("references after Copy() = %d, want 2", got)
	}
	if cp.Handle() != tok.Handle() {
		t.Errorf("Copy().Handle() = %d, want %d", cp.Handle(), tok.Handle())
	}

	adopted := AdoptToken(ctx, tok.Handle())
	if got := ctx.Store().TokenReferences(tok.Handle()); got != 3 {
		t.Errorf("references after AdoptToken() = %d, want 3", got)
	}

	adopted.Release()
	cp.Release()
	if !tok.Valid() {
		t.Fatal("token evicted while still owned")
	}
	tok.Release()
	if tok.Valid() {
		t.Error("token still valid after last Release()")
	}
	tok.Release()
	assertEmpty(t, ctx)
}

func TestTokenMatch(t *testing.T) {
	ctx := newTestContext(t)

	op := NewToken(ctx, TokenOperatorBinary, OperatorBinaryEqual, 1, 1)
	defer op.Release()
	id := NewKeyToken(ctx, TokenIdentifier, "foo", 1, 1)
	defer id.Release()
	num := NewScalarToken(ctx, 42, 1, 1)
	defer num.Release()

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"type only", op.Match(TokenOperatorBinary, SubtypeUndefined), true},
		{"type and subtype", op.Match(TokenOperatorBinary, OperatorBinaryEqual), true},
		{"wrong subtype", op.Match(TokenOperatorBinary, OperatorBinaryLess), false},
		{"wrong type", op.Match(TokenOperatorUnary, SubtypeUndefined), false},
		{"key", id.MatchKey(TokenIdentifier, "foo"), true},
		{"wrong key", id.MatchKey(TokenIdentifier, "bar"), false},
		{"key wrong type", id.MatchKey(TokenLabel, "foo"), false},
		{"value", num.MatchValue(42), true},
		{"wrong value", num.MatchValue(41), false},
		{"value on non-scalar", op.MatchValue(0), false},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestNewKeyTokenRejectsOtherTypes(t *testing.T) {
	ctx := newTestContext(t)
	mustPanic(t, ErrInvalidType, func() { NewKeyToken(ctx, TokenScalar, "1", 1, 1) })
	assertEmpty(t, ctx)
}

func TestTokenString(t *testing.T) {
	ctx := newTestContext(t)

	tests := []struct {
		tok  Token
		want string
	}{
		{NewKeyToken(ctx, TokenLiteral, "a\nb\"", 2, 3), `Literal "a\nb\"" @2:3`},
		{NewKeyToken(ctx, TokenLiteral, "\x01", 1, 1), `Literal "\x01" @1:1`},
		{NewScalarToken(ctx, -5, 1, 4), "Scalar -5 @1:4"},
		{NewToken(ctx, TokenOperatorBinary, OperatorBinaryEqual, 1, 1), "OperatorBinary equal @1:1"},
		{NewToken(ctx, TokenEnd, SubtypeUndefined, 3, 1), "End @3:1"},
	}

	for _, tt := range tests {
		if got := tt.tok.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
		tt.tok.Release()
	}
}
