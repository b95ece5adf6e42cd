package asm

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/tliron/commonlog"
)

// Parser builds one statement Tree at a time from the lexer's tokens. Like
// the lexer it brackets its trees with Begin and End sentinels and replays
// trees it has already built.
type Parser struct {
	ctx   *Context
	lexer *Lexer
	log   commonlog.Logger
	trees []*Tree
	pos   int
	tree  *Tree
}

func NewParser(ctx *Context, text string, opts ...Option) *Parser {
	cfg := newConfig("asm65.parser", opts)
	p := &Parser{
		ctx:   ctx,
		lexer: NewLexer(ctx, text, opts...),
		log:   cfg.log,
	}
	p.Clear()
	return p
}

func OpenParser(ctx *Context, path string, opts ...Option) (*Parser, error) {
	cfg := newConfig("asm65.parser", opts)
	lexer, err := OpenLexer(ctx, path, opts...)
	if err != nil {
		return nil, err
	}
	p := &Parser{
		ctx:   ctx,
		lexer: lexer,
		log:   cfg.log,
	}
	p.Clear()
	return p, nil
}

// Clear drops every tree and rescans the input from the start.
func (p *Parser) Clear() {
	p.release()
	p.lexer.Clear()
	p.trees = []*Tree{
		NewTree(p.ctx, TreeBegin),
		NewTree(p.ctx, TreeEnd),
	}
	p.pos = 0
}

// Close releases every tree and token. The parser must not be used
// afterwards.
func (p *Parser) Close() {
	p.release()
	p.trees = nil
	p.lexer.Close()
}

func (p *Parser) release() {
	for _, t := range p.trees {
		t.Release()
	}
}

func (p *Parser) Lexer() *Lexer { return p.lexer }

func (p *Parser) Reset() { p.pos = 0 }

// Size returns the number of statement trees built so far.
func (p *Parser) Size() int { return len(p.trees) - 2 }

func (p *Parser) Position() int { return p.pos }

func (p *Parser) Tree() *Tree { return p.trees[p.pos] }

func (p *Parser) TreeAt(i int) (*Tree, error) {
	if i < 0 || i >= len(p.trees) {
		return nil, fmt.Errorf("tree %d of %d: %w", i, len(p.trees), ErrNotFound)
	}
	return p.trees[i], nil
}

// Trees yields every cached tree, sentinels included.
func (p *Parser) Trees() iter.Seq2[int, *Tree] {
	return func(yield func(int, *Tree) bool) {
		for i, t := range p.trees {
			if !yield(i, t) {
				return
			}
		}
	}
}

func (p *Parser) HasNext() bool {
	return p.Tree().Type() != TreeEnd
}

func (p *Parser) HasPrevious() bool {
	return p.pos > 0
}

func (p *Parser) MoveNext() error {
	if !p.HasNext() {
		return p.lexer.errorAtToken(CodeNoNextTree, nil)
	}

	if p.lexer.Match(TokenBegin, SubtypeUndefined) {
		if err := p.lexer.MoveNext(); err != nil {
			return err
		}
	}

	if p.pos == len(p.trees)-2 && p.lexer.HasNext() {
		tree, err := p.enumerateTree()
		if err != nil {
			return err
		}
		p.trees = slices.Insert(p.trees, p.pos+1, tree)
		p.log.Debugf("tree %d: %d node(s)", p.pos+1, tree.Size())
	}

	p.pos++
	return nil
}

func (p *Parser) MovePrevious() error {
	if !p.HasPrevious() {
		return p.lexer.errorAtToken(CodeNoPreviousTree, nil)
	}
	p.pos--
	return nil
}

// Enumerate parses the remaining input, rewinds the cursor and returns the
// number of statement trees.
func (p *Parser) Enumerate() (int, error) {
	for p.HasNext() {
		if err := p.MoveNext(); err != nil {
			return p.Size(), err
		}
	}
	p.Reset()
	p.log.Infof("%s: enumerated %d tree(s) from %d token(s)", p.lexer.displayPath(), p.Size(), p.lexer.Size())
	return p.Size(), nil
}

func (p *Parser) enumerateTree() (*Tree, error) {
	p.tree = NewTree(p.ctx, TreeStatement)
	defer func() { p.tree = nil }()

	if err := p.statement(); err != nil {
		p.tree.Release()
		return nil, err
	}
	return p.tree, nil
}

func (p *Parser) token() Token {
	return p.lexer.Token()
}

func (p *Parser) match(typ TokenType, sub Subtype) bool {
	return p.lexer.Match(typ, sub)
}

func (p *Parser) fail(code ErrorCode) error {
	return p.lexer.errorAtToken(code, found(p.token()))
}

func found(tok Token) error {
	p := tok.Payload()
	switch p.Type {
	case TokenEnd:
		return errors.New("found end of input")
	case TokenIdentifier, TokenLabel, TokenLiteral:
		return fmt.Errorf("found %s %q", p.Type, p.Key)
	case TokenScalar:
		return fmt.Errorf("found %s %d", p.Type, p.Value)
	}
	if s := Spelling(p.Type, p.Subtype); s != "" {
		return fmt.Errorf("found %s %q", p.Type, s)
	}
	return fmt.Errorf("found %s", p.Type)
}

// consume moves past the current token.
func (p *Parser) consume() error {
	return p.lexer.MoveNext()
}

// step moves past the current token, failing with code when nothing
// follows it.
func (p *Parser) step(code ErrorCode) error {
	if err := p.lexer.MoveNext(); err != nil {
		return err
	}
	if !p.lexer.HasNext() {
		return p.fail(code)
	}
	return nil
}

// push adds the current token to the tree and moves the cursor onto it.
// The result is passed to pop to restore the cursor.
func (p *Parser) push() (bool, error) {
	root := p.tree.Empty()
	index, err := p.tree.Add(p.token())
	if err != nil || root {
		return false, err
	}
	return true, p.tree.MoveChildIndex(index)
}

func (p *Parser) pop(descended bool) error {
	if !descended {
		return nil
	}
	return p.tree.MoveParent()
}

// leaf adds the current token below the cursor and consumes it.
func (p *Parser) leaf() error {
	if _, err := p.tree.Add(p.token()); err != nil {
		return err
	}
	return p.consume()
}

func (p *Parser) atStatement() bool {
	switch p.token().Type() {
	case TokenKeywordCommand, TokenKeywordDefine, TokenKeywordInclude, TokenLabel:
		return true
	case TokenKeywordCondition:
		return p.match(TokenKeywordCondition, ConditionIf) ||
			p.match(TokenKeywordCondition, ConditionIfDefine)
	}
	return false
}

func (p *Parser) statementList() error {
	for p.atStatement() {
		if err := p.statement(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) statement() error {
	tok := p.token()
	switch tok.Type() {
	case TokenKeywordCommand:
		return p.command()
	case TokenKeywordCondition:
		switch tok.Subtype() {
		case ConditionIf:
			return p.conditionIf()
		case ConditionIfDefine:
			return p.conditionIfDefine()
		}
		return p.fail(CodeInvalidCondition)
	case TokenKeywordDefine:
		return p.define()
	case TokenKeywordInclude:
		return p.include()
	case TokenLabel:
		return p.leaf()
	}
	return p.fail(CodeExpectingStatement)
}

// command statements need addressing-mode rules that are not defined yet.
func (p *Parser) command() error {
	return p.fail(CodeUnsupportedCommand)
}

func (p *Parser) conditionIf() error {
	descended, err := p.push()
	if err != nil {
		return err
	}
	if err := p.step(CodeUnterminatedIf); err != nil {
		return err
	}
	if err := p.conditionExpression(); err != nil {
		return err
	}
	if err := p.statementList(); err != nil {
		return err
	}

	for p.match(TokenKeywordCondition, ConditionElseIf) {
		if err := p.branch(CodeUnterminatedIf, p.conditionExpression); err != nil {
			return err
		}
	}
	if p.match(TokenKeywordCondition, ConditionElse) {
		if err := p.branch(CodeUnterminatedIf, nil); err != nil {
			return err
		}
	}

	if !p.match(TokenKeywordCondition, ConditionEndIf) {
		return p.fail(CodeUnterminatedIf)
	}
	if err := p.consume(); err != nil {
		return err
	}
	return p.pop(descended)
}

func (p *Parser) conditionIfDefine() error {
	descended, err := p.push()
	if err != nil {
		return err
	}
	if err := p.step(CodeUnterminatedIfDefine); err != nil {
		return err
	}
	if err := p.identifier(); err != nil {
		return err
	}
	if err := p.statementList(); err != nil {
		return err
	}

	for p.match(TokenKeywordCondition, ConditionElseIfDefine) {
		if err := p.branch(CodeUnterminatedIfDefine, p.identifier); err != nil {
			return err
		}
	}
	if p.match(TokenKeywordCondition, ConditionElse) {
		if err := p.branch(CodeUnterminatedIfDefine, nil); err != nil {
			return err
		}
	}

	if !p.match(TokenKeywordCondition, ConditionEndIf) {
		return p.fail(CodeUnterminatedIfDefine)
	}
	if err := p.consume(); err != nil {
		return err
	}
	return p.pop(descended)
}

// branch parses an elif, elifdef or else arm below its keyword node.
func (p *Parser) branch(code ErrorCode, head func() error) error {
	descended, err := p.push()
	if err != nil {
		return err
	}
	if err := p.step(code); err != nil {
		return err
	}
	if head != nil {
		if err := head(); err != nil {
			return err
		}
	}
	if err := p.statementList(); err != nil {
		return err
	}
	return p.pop(descended)
}

func (p *Parser) conditionExpression() error {
	if err := p.expression(); err != nil {
		return err
	}
	if !p.match(TokenOperatorBinary, SubtypeUndefined) {
		return nil
	}

	descended, err := p.push()
	if err != nil {
		return err
	}
	if err := p.step(CodeUnterminatedExpression); err != nil {
		return err
	}
	if err := p.conditionExpression(); err != nil {
		return err
	}
	return p.pop(descended)
}

func (p *Parser) define() error {
	sub := p.token().Subtype()

	descended, err := p.push()
	if err != nil {
		return err
	}
	if err := p.step(CodeUnterminatedDefine); err != nil {
		return err
	}

	switch sub {
	case DefineDataByte, DefineDataWord:
		err = p.expressionList()
	case DefineByte:
		if err = p.identifier(); err == nil {
			err = p.expression()
		}
	case DefineOrigin:
		err = p.expression()
	case DefineReserve:
		if err = p.expression(); err == nil {
			if err = p.separator(); err == nil {
				err = p.expression()
			}
		}
	case DefineSegment, DefineUndefine:
		err = p.identifier()
	default:
		err = p.fail(CodeExpectingStatement)
	}
	if err != nil {
		return err
	}
	return p.pop(descended)
}

func (p *Parser) include() error {
	descended, err := p.push()
	if err != nil {
		return err
	}
	if err := p.step(CodeExpectingLiteral); err != nil {
		return err
	}
	if !p.match(TokenLiteral, SubtypeUndefined) {
		return p.fail(CodeExpectingLiteral)
	}
	if err := p.leaf(); err != nil {
		return err
	}
	return p.pop(descended)
}

func (p *Parser) identifier() error {
	if !p.match(TokenIdentifier, SubtypeUndefined) {
		return p.fail(CodeExpectingIdentifier)
	}
	return p.leaf()
}

func (p *Parser) separator() error {
	if !p.match(TokenSymbolSeparator, SubtypeUndefined) {
		return p.fail(CodeExpectingSeparator)
	}
	return p.consume()
}

func (p *Parser) expressionList() error {
	if err := p.expression(); err != nil {
		return err
	}
	if !p.match(TokenSymbolSeparator, SubtypeUndefined) {
		return nil
	}
	if err := p.consume(); err != nil {
		return err
	}
	return p.expressionList()
}

// expression parses a unary term. Binary arithmetic between terms has no
// precedence rules yet and is reported as unsupported.
func (p *Parser) expression() error {
	if err := p.unary(); err != nil {
		return err
	}
	if p.match(TokenSymbolArithmetic, SubtypeUndefined) {
		return p.fail(CodeUnsupportedExpression)
	}
	return nil
}

func (p *Parser) unary() error {
	if !p.match(TokenOperatorUnary, SubtypeUndefined) {
		return p.factor()
	}

	descended, err := p.push()
	if err != nil {
		return err
	}
	if err := p.step(CodeUnterminatedExpression); err != nil {
		return err
	}
	if err := p.unary(); err != nil {
		return err
	}
	return p.pop(descended)
}

func (p *Parser) factor() error {
	switch p.token().Type() {
	case TokenIdentifier, TokenLiteral:
		return p.literal()
	case TokenKeywordMacro:
		return p.macro()
	case TokenScalar, TokenSymbolPosition:
		return p.leaf()
	case TokenSymbolBracket:
		if p.match(TokenSymbolBracket, BracketOpen) {
			return p.compound()
		}
	}
	return p.fail(CodeExpectingExpression)
}

// literal parses an identifier or literal with an optional {expr} index.
func (p *Parser) literal() error {
	descended, err := p.push()
	if err != nil {
		return err
	}
	if err := p.consume(); err != nil {
		return err
	}

	if p.match(TokenSymbolBrace, BraceOpen) {
		if err := p.step(CodeUnterminatedBrace); err != nil {
			return err
		}
		if err := p.expression(); err != nil {
			return err
		}
		if !p.match(TokenSymbolBrace, BraceClose) {
			return p.fail(CodeUnterminatedBrace)
		}
		if err := p.consume(); err != nil {
			return err
		}
	}
	return p.pop(descended)
}

func (p *Parser) compound() error {
	if err := p.step(CodeUnterminatedBracket); err != nil {
		return err
	}
	if err := p.expression(); err != nil {
		return err
	}
	if !p.match(TokenSymbolBracket, BracketClose) {
		return p.fail(CodeUnterminatedBracket)
	}
	return p.consume()
}

func (p *Parser) macro() error {
	sub := p.token().Subtype()

	descended, err := p.push()
	if err != nil {
		return err
	}
	if err := p.step(CodeUnterminatedMacro); err != nil {
		return err
	}
	if !p.match(TokenSymbolBracket, BracketOpen) {
		return p.fail(CodeExpectingBracket)
	}
	if err := p.step(CodeUnterminatedMacro); err != nil {
		return err
	}
	if err := p.expression(); err != nil {
		return err
	}
	if sub == MacroWord {
		if err := p.separator(); err != nil {
			return err
		}
		if err := p.expression(); err != nil {
			return err
		}
	}
	if !p.match(TokenSymbolBracket, BracketClose) {
		return p.fail(CodeUnterminatedMacro)
	}
	if err := p.consume(); err != nil {
		return err
	}
	return p.pop(descended)
}
