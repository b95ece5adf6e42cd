package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/asm65/asm"
	"github.com/dhamidi/asm65/handle"
)

type JSONEncoder struct {
	w io.Writer
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) EncodeTokens(l *asm.Lexer) error {
	text, err := e.MarshalTokens(l)
	return write(e.w, text, err)
}

func (e *JSONEncoder) EncodeTrees(p *asm.Parser) error {
	text, err := e.MarshalTrees(p)
	return write(e.w, text, err)
}

func (e *JSONEncoder) MarshalTokens(l *asm.Lexer) ([]byte, error) {
	doc := jsonDocument{Path: l.Path(), Tokens: []jsonToken{}}
	for _, tok := range tokens(l) {
		doc.Tokens = append(doc.Tokens, tokenToJSON(tok.Payload()))
	}
	return marshal(doc)
}

func (e *JSONEncoder) MarshalTrees(p *asm.Parser) ([]byte, error) {
	doc := jsonDocument{Path: p.Lexer().Path(), Trees: []jsonTree{}}
	for _, tree := range trees(p) {
		jt := jsonTree{Type: tree.Type().String()}
		if !tree.Empty() {
			root, err := nodeToJSON(tree, tree.Root())
			if err != nil {
				return nil, err
			}
			jt.Root = root
		}
		doc.Trees = append(doc.Trees, jt)
	}
	return marshal(doc)
}

func marshal(doc jsonDocument) ([]byte, error) {
	text, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(text, '\n'), nil
}

type jsonDocument struct {
	Path   string      `json:"path,omitempty"`
	Tokens []jsonToken `json:"tokens,omitempty"`
	Trees  []jsonTree  `json:"trees,omitempty"`
}

type jsonToken struct {
	Type    string  `json:"type"`
	Subtype string  `json:"subtype,omitempty"`
	Key     *string `json:"key,omitempty"`
	Value   *int32  `json:"value,omitempty"`
	Row     int     `json:"row"`
	Column  int     `json:"column"`
}

type jsonTree struct {
	Type string    `json:"type"`
	Root *jsonNode `json:"root,omitempty"`
}

type jsonNode struct {
	Token    jsonToken   `json:"token"`
	Children []*jsonNode `json:"children,omitempty"`
}

func tokenToJSON(p asm.TokenPayload) jsonToken {
	jt := jsonToken{
		Type:    p.Type.String(),
		Subtype: asm.SubtypeName(p.Type, p.Subtype),
		Row:     p.Row,
		Column:  p.Column,
	}
	switch p.Type {
	case asm.TokenIdentifier, asm.TokenLabel, asm.TokenLiteral:
		key := p.Key
		jt.Key = &key
	case asm.TokenScalar:
		value := p.Value
		jt.Value = &value
	}
	return jt
}

func nodeToJSON(tree *asm.Tree, h handle.Handle) (*jsonNode, error) {
	n, err := tree.Node(h)
	if err != nil {
		return nil, err
	}
	jn := &jsonNode{Token: tokenToJSON(n.Token().Payload())}
	for _, child := range n.Children() {
		jc, err := nodeToJSON(tree, child)
		if err != nil {
			return nil, err
		}
		jn.Children = append(jn.Children, jc)
	}
	return jn, nil
}
