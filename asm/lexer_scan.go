package asm

import (
	"fmt"

	"github.com/dhamidi/asm65/asm/stream"
)

const (
	charComment   = ';'
	charLabel     = ':'
	charUnder     = '_'
	charSign      = '-'
	charCharacter = '\''
	charString    = '"'
	charEscape    = '\\'
	charHexEscape = 'x'
)

// escapes is scanned in order; the first matching letter wins.
var escapes = []struct {
	letter byte
	value  byte
}{
	{'a', 0x07},
	{'\\', '\\'},
	{'b', 0x08},
	{'r', '\r'},
	{'"', '"'},
	{'f', '\f'},
	{'t', '\t'},
	{'n', '\n'},
	{'?', '?'},
	{charHexEscape, 0},
	{'\'', '\''},
	{'v', '\v'},
}

// escapeLetter returns the letter used to render ch inside a quoted key.
func escapeLetter(ch byte) (byte, bool) {
	switch ch {
	case '\\', '"':
		return ch, true
	}
	if stream.IsPrint(ch) {
		return 0, false
	}
	for _, e := range escapes {
		if e.letter != charHexEscape && e.value == ch {
			return e.letter, true
		}
	}
	return 0, false
}

func (l *Lexer) advance() {
	_ = l.src.MoveNext()
}

func (l *Lexer) skipWhitespace() error {
	for l.src.Class() == stream.ClassSpace {
		l.advance()
	}
	return l.skipComment()
}

// skipComment consumes a ";;" block comment or a ";" line comment and any
// whitespace that follows it.
func (l *Lexer) skipComment() error {
	if l.src.Character() != charComment {
		return nil
	}

	if l.src.Peek() == charComment {
		row, col := l.src.Row(), l.src.Column()
		l.advance()
		l.advance()
		for {
			if !l.src.HasNext() {
				return l.errorAt(CodeUnterminatedComment, row, col, nil)
			}
			if l.src.Character() == charComment && l.src.Peek() == charComment {
				l.advance()
				l.advance()
				break
			}
			l.advance()
		}
	} else {
		for l.src.HasNext() && l.src.Character() != '\n' {
			l.advance()
		}
		l.advance()
	}

	return l.skipWhitespace()
}

func (l *Lexer) enumerateToken() (Token, error) {
	switch l.src.Class() {
	case stream.ClassAlpha:
		return l.scanAlpha()
	case stream.ClassDigit:
		return l.scanDigit()
	case stream.ClassSymbol:
		switch {
		case l.src.Character() == charUnder:
			return l.scanAlpha()
		case l.src.Character() == charSign && stream.IsDigit(l.src.Peek()):
			return l.scanDigit()
		}
		return l.scanSymbol()
	}
	return Token{}, l.errorHere(CodeExpectingToken, unexpected(l.src.Character()))
}

func isIdentifierChar(ch byte) bool {
	return stream.IsAlpha(ch) || stream.IsDigit(ch) || ch == charUnder
}

func (l *Lexer) scanAlpha() (Token, error) {
	row, col := l.src.Row(), l.src.Column()
	if ch := l.src.Character(); !stream.IsAlpha(ch) && ch != charUnder {
		return Token{}, l.errorHere(CodeExpectingAlpha, unexpected(ch))
	}

	start := l.src.Position()
	for isIdentifierChar(l.src.Character()) {
		l.advance()
	}
	key := l.text(start)

	label := false
	if l.src.Character() == charLabel {
		label = true
		l.advance()
	}

	typ, sub, err := DetermineType(key)
	if err != nil {
		return Token{}, l.errorAt(CodeExpectingAlpha, row, col, err)
	}

	switch {
	case label && typ != TokenIdentifier:
		return Token{}, l.errorAt(CodeInvalidLabel, row, col, fmt.Errorf("%q is reserved", key))
	case label:
		return NewKeyToken(l.ctx, TokenLabel, key, row+1, col+1), nil
	case typ == TokenIdentifier:
		return NewKeyToken(l.ctx, TokenIdentifier, key, row+1, col+1), nil
	}
	return NewToken(l.ctx, typ, sub, row+1, col+1), nil
}

func (l *Lexer) scanDigit() (Token, error) {
	row, col := l.src.Row(), l.src.Column()

	signed := false
	if l.src.Character() == charSign {
		signed = true
		l.advance()
		if !l.src.HasNext() {
			return Token{}, l.errorHere(CodeUnterminatedScalar, nil)
		}
	}
	if !stream.IsDigit(l.src.Character()) {
		return Token{}, l.errorHere(CodeExpectingDigit, unexpected(l.src.Character()))
	}

	base := BaseDecimal
	if l.src.Character() == '0' {
		switch l.src.Peek() {
		case 'b':
			base = BaseBinary
		case 'x':
			base = BaseHexadecimal
		case 'c':
			base = BaseOctal
		}
		if base != BaseDecimal {
			l.advance()
			l.advance()
			if !l.src.HasNext() {
				return Token{}, l.errorHere(CodeUnterminatedScalar, nil)
			}
		}
	}

	digits, err := l.scanDigits(base)
	if err != nil {
		return Token{}, err
	}

	value := AsScalar(digits, base)
	if signed {
		value = -value
	}
	return NewScalarToken(l.ctx, value, row+1, col+1), nil
}

// scanDigits consumes the digit run of a scalar in the given base. A bad
// first digit leaves the scalar unterminated; a bad later digit makes it
// invalid.
func (l *Lexer) scanDigits(base Base) (string, error) {
	start := l.src.Position()
	for {
		ch := l.src.Character()
		empty := l.src.Position() == start

		switch base {
		case BaseBinary, BaseOctal:
			if !stream.IsDigit(ch) {
				if empty {
					return "", l.errorHere(unterminatedScalar[base], unexpected(ch))
				}
				return l.text(start), nil
			}
			limit := byte('1')
			if base == BaseOctal {
				limit = '7'
			}
			if ch > limit {
				if empty {
					return "", l.errorHere(unterminatedScalar[base], unexpected(ch))
				}
				return "", l.errorHere(invalidScalar[base], unexpected(ch))
			}
		case BaseHexadecimal:
			if !stream.IsHex(ch) {
				if empty {
					return "", l.errorHere(CodeUnterminatedScalarHexadecimal, unexpected(ch))
				}
				return l.text(start), nil
			}
		default:
			if !stream.IsDigit(ch) {
				if empty {
					return "", l.errorHere(CodeUnterminatedScalarDecimal, unexpected(ch))
				}
				return l.text(start), nil
			}
		}
		l.advance()
	}
}

var unterminatedScalar = map[Base]ErrorCode{
	BaseBinary:      CodeUnterminatedScalarBinary,
	BaseDecimal:     CodeUnterminatedScalarDecimal,
	BaseHexadecimal: CodeUnterminatedScalarHexadecimal,
	BaseOctal:       CodeUnterminatedScalarOctal,
}

var invalidScalar = map[Base]ErrorCode{
	BaseBinary: CodeInvalidScalarBinary,
	BaseOctal:  CodeInvalidScalarOctal,
}

func (l *Lexer) scanSymbol() (Token, error) {
	row, col := l.src.Row(), l.src.Column()

	ch := l.src.Character()
	switch ch {
	case charCharacter:
		return l.scanCharacter()
	case charString:
		return l.scanString()
	}
	if stream.Classify(ch) != stream.ClassSymbol {
		return Token{}, l.errorHere(CodeExpectingSymbol, unexpected(ch))
	}

	l.advance()
	if next := l.src.Character(); stream.Classify(next) == stream.ClassSymbol {
		if typ, sub, _ := DetermineType(string([]byte{ch, next})); typ != TokenIdentifier {
			l.advance()
			return NewToken(l.ctx, typ, sub, row+1, col+1), nil
		}
	}

	typ, sub, _ := DetermineType(string(ch))
	if typ == TokenIdentifier {
		return Token{}, l.errorAt(CodeInvalidSymbol, row, col, unexpected(ch))
	}
	return NewToken(l.ctx, typ, sub, row+1, col+1), nil
}

func (l *Lexer) scanCharacter() (Token, error) {
	row, col := l.src.Row(), l.src.Column()
	l.advance()

	if l.src.Character() == charCharacter {
		return Token{}, l.errorHere(CodeInvalidLiteralCharacter, nil)
	}
	if !l.src.HasNext() {
		return Token{}, l.errorAt(CodeUnterminatedLiteralCharacter, row, col, nil)
	}

	var value byte
	if l.src.Character() == charEscape {
		var err error
		if value, err = l.scanEscape(); err != nil {
			return Token{}, err
		}
	} else {
		value = l.src.Character()
		l.advance()
	}

	if l.src.Character() != charCharacter {
		return Token{}, l.errorAt(CodeUnterminatedLiteralCharacter, row, col, unexpected(l.src.Character()))
	}
	l.advance()

	return NewKeyToken(l.ctx, TokenLiteral, string([]byte{value}), row+1, col+1), nil
}

func (l *Lexer) scanString() (Token, error) {
	row, col := l.src.Row(), l.src.Column()
	l.advance()

	var key []byte
	for {
		if !l.src.HasNext() {
			return Token{}, l.errorAt(CodeUnterminatedLiteralString, row, col, nil)
		}

		ch := l.src.Character()
		if ch == charString {
			l.advance()
			break
		}
		if ch == charEscape {
			value, err := l.scanEscape()
			if err != nil {
				return Token{}, err
			}
			key = append(key, value)
			continue
		}
		key = append(key, ch)
		l.advance()
	}

	return NewKeyToken(l.ctx, TokenLiteral, string(key), row+1, col+1), nil
}

// scanEscape consumes a backslash escape and returns the byte it denotes.
// "\xHH" takes exactly two hex digits; an unknown letter starts a run of
// exactly three octal digits.
func (l *Lexer) scanEscape() (byte, error) {
	l.advance()
	if !l.src.HasNext() {
		return 0, l.errorHere(CodeUnterminatedCharacterEscape, nil)
	}

	letter := l.src.Character()
	for _, e := range escapes {
		if e.letter != letter {
			continue
		}
		l.advance()
		if letter != charHexEscape {
			return e.value, nil
		}

		start := l.src.Position()
		for i := 0; i < 2; i++ {
			if !stream.IsHex(l.src.Character()) {
				return 0, l.errorHere(CodeUnterminatedCharacterEscape, unexpected(l.src.Character()))
			}
			l.advance()
		}
		return byte(AsScalar(l.text(start), BaseHexadecimal)), nil
	}

	start := l.src.Position()
	for i := 0; i < 3; i++ {
		ch := l.src.Character()
		if !stream.IsDigit(ch) {
			return 0, l.errorHere(CodeUnterminatedCharacterEscape, unexpected(ch))
		}
		if ch > '7' {
			return 0, l.errorHere(CodeInvalidScalarOctal, unexpected(ch))
		}
		l.advance()
	}
	return byte(AsScalar(l.text(start), BaseOctal)), nil
}

// text returns the source bytes between start and the cursor.
func (l *Lexer) text(start int) string {
	return l.src.Slice(start, l.src.Position())
}
