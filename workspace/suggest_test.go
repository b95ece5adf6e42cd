package workspace

import "testing"

func TestSuggest(t *testing.T) {
	keywords := StatementKeywords()

	tests := []struct {
		word string
		want []string
	}{
		{"dbb", []string{"db"}},
		{"lad", []string{"lda"}},
		{"ld", []string{"lda", "ldx", "ldy"}},
		{"incz", []string{"inc", "incb", "inch"}},
		{"qqqqqq", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			got := Suggest(tt.word, keywords)
			if len(got) < len(tt.want) {
				t.Fatalf("Suggest(%q) = %v, want prefix %v", tt.word, got, tt.want)
			}
			if tt.want == nil && got != nil {
				t.Fatalf("Suggest(%q) = %v, want none", tt.word, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Suggest(%q)[%d] = %q, want %q", tt.word, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestStatementKeywords(t *testing.T) {
	keywords := StatementKeywords()
	has := make(map[string]bool)
	for _, kw := range keywords {
		has[kw] = true
	}
	for _, kw := range []string{"lda", "if", "ifdef", "db", "incs"} {
		if !has[kw] {
			t.Errorf("StatementKeywords() lacks %q", kw)
		}
	}
	for _, kw := range []string{"else", "endif", "byte", "a"} {
		if has[kw] {
			t.Errorf("StatementKeywords() holds %q", kw)
		}
	}
}
