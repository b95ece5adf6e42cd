package format

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/dhamidi/asm65/asm"
)

func newLexer(t *testing.T, text string) *asm.Lexer {
	t.Helper()
	ctx := asm.NewContext()
	l := asm.NewLexer(ctx, text, asm.WithPath("demo.asm"))
	t.Cleanup(func() {
		l.Close()
		ctx.Close()
	})
	if _, err := l.Enumerate(); err != nil {
		t.Fatal(err)
	}
	return l
}

func newParser(t *testing.T, text string) *asm.Parser {
	t.Helper()
	ctx := asm.NewContext()
	p := asm.NewParser(ctx, text, asm.WithPath("demo.asm"))
	t.Cleanup(func() {
		p.Close()
		ctx.Close()
	})
	if _, err := p.Enumerate(); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNew(t *testing.T) {
	for _, name := range Names {
		if _, err := New(name, nil); err != nil {
			t.Errorf("New(%q) error = %v", name, err)
		}
	}
	if _, err := New("xml", nil); err == nil {
		t.Error("New(xml) succeeded, want error")
	}
}

func TestJSONTokens(t *testing.T) {
	l := newLexer(t, "db 1, x")

	var buf bytes.Buffer
	if err := NewJSONEncoder(&buf).EncodeTokens(l); err != nil {
		t.Fatal(err)
	}

	want := `{
  "path": "demo.asm",
  "tokens": [
    {
      "type": "KeywordDefine",
      "subtype": "data_byte",
      "row": 1,
      "column": 1
    },
    {
      "type": "Scalar",
      "value": 1,
      "row": 1,
      "column": 4
    },
    {
      "type": "SymbolSeparator",
      "subtype": "comma",
      "row": 1,
      "column": 5
    },
    {
      "type": "KeywordRegister",
      "subtype": "x",
      "row": 1,
      "column": 7
    }
  ]
}
`
	if got := buf.String(); got != want {
		t.Errorf("EncodeTokens() =\n%s\nwant\n%s", got, want)
	}
}

func TestJSONEmptyLiteralKeepsKey(t *testing.T) {
	l := newLexer(t, `""`)
	text, err := NewJSONEncoder(nil).MarshalTokens(l)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Tokens []map[string]any `json:"tokens"`
	}
	if err := json.Unmarshal(text, &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Tokens) != 1 {
		t.Fatalf("got %d tokens, want 1", len(doc.Tokens))
	}
	if key, ok := doc.Tokens[0]["key"]; !ok || key != "" {
		t.Errorf("key = %v (present %v), want empty string", key, ok)
	}
}

func TestJSONTrees(t *testing.T) {
	p := newParser(t, "start:\ndb byte(1), 2")

	text, err := NewJSONEncoder(nil).MarshalTrees(p)
	if err != nil {
		t.Fatal(err)
	}

	type node struct {
		Token struct {
			Type    string `json:"type"`
			Subtype string `json:"subtype"`
			Key     string `json:"key"`
			Value   int32  `json:"value"`
		} `json:"token"`
		Children []node `json:"children"`
	}
	var doc struct {
		Trees []struct {
			Type string `json:"type"`
			Root node   `json:"root"`
		} `json:"trees"`
	}
	if err := json.Unmarshal(text, &doc); err != nil {
		t.Fatal(err)
	}

	if len(doc.Trees) != 2 {
		t.Fatalf("got %d trees, want 2", len(doc.Trees))
	}
	if got := doc.Trees[0].Root.Token; got.Type != "Label" || got.Key != "start" {
		t.Errorf("tree 0 root = %+v, want Label start", got)
	}
	db := doc.Trees[1].Root
	if db.Token.Subtype != "data_byte" || len(db.Children) != 2 {
		t.Fatalf("tree 1 root = %+v, want data_byte with 2 children", db)
	}
	if macro := db.Children[0]; macro.Token.Type != "KeywordMacro" || len(macro.Children) != 1 || macro.Children[0].Token.Value != 1 {
		t.Errorf("first child = %+v, want byte(1)", macro)
	}
	if got := db.Children[1].Token.Value; got != 2 {
		t.Errorf("second child value = %d, want 2", got)
	}
}

func TestLineTokens(t *testing.T) {
	l := newLexer(t, "loop: lda #'a'\n  bne loop")

	text, err := NewLineEncoder(nil).MarshalTokens(l)
	if err != nil {
		t.Fatal(err)
	}
	want := "1:1\tLabel\t-\tloop:\n" +
		"1:7\tKeywordCommand\tlda\tlda\n" +
		"1:11\tSymbolImmediate\timmediate\t#\n" +
		"1:12\tLiteral\t-\t\"a\"\n" +
		"2:3\tKeywordCommand\tbne\tbne\n" +
		"2:7\tIdentifier\t-\tloop\n"
	if got := string(text); got != want {
		t.Errorf("MarshalTokens() =\n%s\nwant\n%s", got, want)
	}
}

func TestLineTrees(t *testing.T) {
	p := newParser(t, "db 1")

	text, err := NewLineEncoder(nil).MarshalTrees(p)
	if err != nil {
		t.Fatal(err)
	}
	want := "Statement\n  KeywordDefine data_byte @1:1\n    Scalar 1 @1:4\n"
	if got := string(text); got != want {
		t.Errorf("MarshalTrees() =\n%q\nwant\n%q", got, want)
	}
}

func TestSourceTrees(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"label", "loop:", "loop:\n"},
		{"data", "db   1,2 ,  0x10", "db 1, 2, 16\n"},
		{"define", "def size $", "def size $\n"},
		{"reserve", "res 4,0", "res 4, 0\n"},
		{"include", "incs 'a'", "incs \"a\"\n"},
		{"macros", "dw word(1,2), byte(~x_1)", "dw word(1, 2), byte(~x_1)\n"},
		{"brackets dropped", "db !(flag)", "db !flag\n"},
		{"index", "db buf{ 1 }", "db buf{1}\n"},
		{"escapes", `db "a\tb\x01"`, `db "a\tb\x01"` + "\n"},
		{
			"conditions",
			"if a_1==1&&b<2\ndb 1\nelif c\nifdef d\nstart:\nendif\nelse\nendif",
			"if a_1 == 1 && b < 2\n  db 1\nelif c\n  ifdef d\n    start:\n  endif\nelse\nendif\n",
		},
		{
			"ifdef",
			"ifdef PAL\nelifdef NTSC\ndb 1\nendif",
			"ifdef PAL\nelifdef NTSC\n  db 1\nendif\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t, tt.input)
			text, err := NewSourceEncoder(nil).MarshalTrees(p)
			if err != nil {
				t.Fatal(err)
			}
			if got := string(text); got != tt.want {
				t.Errorf("MarshalTrees(%q) =\n%q\nwant\n%q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSourceTokens(t *testing.T) {
	l := newLexer(t, "\n\nloop:  lda  # 0xff\n\n  db byte( x ) , buf{1}")

	text, err := NewSourceEncoder(nil).WithIndent("\t").MarshalTokens(l)
	if err != nil {
		t.Fatal(err)
	}
	want := "\n\nloop: lda #255\n\ndb byte(x), buf{1}\n"
	if got := string(text); got != want {
		t.Errorf("MarshalTokens() = %q, want %q", got, want)
	}
}
