package asm

import (
	"errors"
	"fmt"
	"strings"
)

// Contract violations. These are raised with panic, wrapped with the
// offending handle, and are never returned.
var (
	ErrUninitialized      = errors.New("store uninitialized")
	ErrAlreadyInitialized = errors.New("store already initialized")
	ErrNotFound           = errors.New("entry not found")
	ErrDuplicate          = errors.New("duplicate entry")
	ErrInvalidType        = errors.New("invalid token type")
	ErrInvalidKey         = errors.New("invalid token key")
)

type ErrorCode int

const (
	CodeUnknown ErrorCode = iota

	// lexer
	CodeNoNextToken
	CodeNoPreviousToken
	CodeExpectingToken
	CodeExpectingAlpha
	CodeExpectingDigit
	CodeExpectingSymbol
	CodeInvalidLabel
	CodeInvalidSymbol
	CodeInvalidLiteralCharacter
	CodeInvalidScalarBinary
	CodeInvalidScalarOctal
	CodeUnterminatedScalar
	CodeUnterminatedScalarBinary
	CodeUnterminatedScalarDecimal
	CodeUnterminatedScalarHexadecimal
	CodeUnterminatedScalarOctal
	CodeUnterminatedLiteralCharacter
	CodeUnterminatedLiteralString
	CodeUnterminatedCharacterEscape
	CodeUnterminatedComment

	// tree
	CodeInvalidChildIndex
	CodeNodeNotFound

	// parser
	CodeNoNextTree
	CodeNoPreviousTree
	CodeExpectingStatement
	CodeExpectingExpression
	CodeExpectingIdentifier
	CodeExpectingLiteral
	CodeExpectingBracket
	CodeExpectingSeparator
	CodeInvalidCondition
	CodeUnterminatedIf
	CodeUnterminatedIfDefine
	CodeUnterminatedDefine
	CodeUnterminatedExpression
	CodeUnterminatedBrace
	CodeUnterminatedBracket
	CodeUnterminatedMacro
	CodeUnsupportedCommand
	CodeUnsupportedExpression
)

var errorCodeNames = map[ErrorCode]string{
	CodeUnknown:                       "unknown error",
	CodeNoNextToken:                   "no next token",
	CodeNoPreviousToken:               "no previous token",
	CodeExpectingToken:                "expecting token",
	CodeExpectingAlpha:                "expecting alpha character",
	CodeExpectingDigit:                "expecting digit",
	CodeExpectingSymbol:               "expecting symbol",
	CodeInvalidLabel:                  "invalid label",
	CodeInvalidSymbol:                 "invalid symbol",
	CodeInvalidLiteralCharacter:       "invalid character literal",
	CodeInvalidScalarBinary:           "invalid binary scalar",
	CodeInvalidScalarOctal:            "invalid octal scalar",
	CodeUnterminatedScalar:            "unterminated scalar",
	CodeUnterminatedScalarBinary:      "unterminated binary scalar",
	CodeUnterminatedScalarDecimal:     "unterminated decimal scalar",
	CodeUnterminatedScalarHexadecimal: "unterminated hexadecimal scalar",
	CodeUnterminatedScalarOctal:       "unterminated octal scalar",
	CodeUnterminatedLiteralCharacter:  "unterminated character literal",
	CodeUnterminatedLiteralString:     "unterminated string literal",
	CodeUnterminatedCharacterEscape:   "unterminated character escape",
	CodeUnterminatedComment:           "unterminated comment",
	CodeInvalidChildIndex:             "invalid child index",
	CodeNodeNotFound:                  "node not found",
	CodeNoNextTree:                    "no next tree",
	CodeNoPreviousTree:                "no previous tree",
	CodeExpectingStatement:            "expecting statement",
	CodeExpectingExpression:           "expecting expression",
	CodeExpectingIdentifier:           "expecting identifier",
	CodeExpectingLiteral:              "expecting literal",
	CodeExpectingBracket:              "expecting bracket",
	CodeExpectingSeparator:            "expecting separator",
	CodeInvalidCondition:              "invalid condition",
	CodeUnterminatedIf:                "unterminated if",
	CodeUnterminatedIfDefine:          "unterminated ifdef",
	CodeUnterminatedDefine:            "unterminated define",
	CodeUnterminatedExpression:        "unterminated expression",
	CodeUnterminatedBrace:             "unterminated brace",
	CodeUnterminatedBracket:           "unterminated bracket",
	CodeUnterminatedMacro:             "unterminated macro",
	CodeUnsupportedCommand:            "command statements are not supported yet",
	CodeUnsupportedExpression:         "binary arithmetic expressions are not supported yet",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "Unknown"
}

// Error lets a bare code serve as an errors.Is target.
func (c ErrorCode) Error() string {
	return c.String()
}

// Error is a lexical or grammar failure at a source position. Row and
// Column are 1-based. Detail holds the rendered source line and caret.
type Error struct {
	Code   ErrorCode
	Path   string
	Row    int
	Column int
	Detail string
	Err    error
}

// Error returns the machine form: path:row:col: message.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteByte(':')
	}
	fmt.Fprintf(&b, "%d:%d: %s", e.Row, e.Column, e.Code)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Verbose returns the message followed by the source line and caret.
func (e *Error) Verbose() string {
	if e.Detail == "" {
		return e.Error()
	}
	return e.Error() + "\n" + e.Detail
}

func (e *Error) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && code == e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code carried by err, or CodeUnknown.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
