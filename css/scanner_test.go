package css

import (
	"testing"
)

func statementsEqual(a, b []statement) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestScanStatements_Basic(t *testing.T) {
	got := scanStatements(".btn { color : red ; &:hover { color: blue; } }")
	want := []statement{
		{kind: stmtOpen, text: ".btn"},
		{kind: stmtDecl, text: "color:red;"},
		{kind: stmtOpen, text: "&:hover"},
		{kind: stmtDecl, text: "color:blue;"},
		{kind: stmtClose},
		{kind: stmtClose},
	}
	if !statementsEqual(got, want) {
		t.Errorf("scanStatements() = %+v, want %+v", got, want)
	}
}

func TestScanStatements_GroupRules(t *testing.T) {
	got := scanStatements("@media (min-width: 600px) and (color) { color:red; }")
	want := []statement{
		{kind: stmtOpen, text: "@media (min-width:600px) and (color)"},
		{kind: stmtDecl, text: "color:red;"},
		{kind: stmtClose},
	}
	if !statementsEqual(got, want) {
		t.Errorf("scanStatements() = %+v, want %+v", got, want)
	}
}

func TestScanStatements_Keyframes(t *testing.T) {
	got := scanStatements("@keyframes spin{0%{opacity:0;}100%{opacity:1;}}")
	want := []statement{
		{kind: stmtOpen, text: "@keyframes spin"},
		{kind: stmtOpen, text: "0%"},
		{kind: stmtDecl, text: "opacity:0;"},
		{kind: stmtClose},
		{kind: stmtOpen, text: "100%"},
		{kind: stmtDecl, text: "opacity:1;"},
		{kind: stmtClose},
		{kind: stmtClose},
	}
	if !statementsEqual(got, want) {
		t.Errorf("scanStatements() = %+v, want %+v", got, want)
	}
}

func TestScanStatements_Comments(t *testing.T) {
	got := scanStatements("/* header */ .a { color: red; // note\n background: blue; }")
	want := []statement{
		{kind: stmtOpen, text: ".a"},
		{kind: stmtDecl, text: "color:red;"},
		{kind: stmtDecl, text: "background:blue;"},
		{kind: stmtClose},
	}
	if !statementsEqual(got, want) {
		t.Errorf("scanStatements() = %+v, want %+v", got, want)
	}
}

func TestScanStatements_MissingTerminators(t *testing.T) {
	// a run cut short by '}' or end of input degrades into a declaration
	got := scanStatements(".a{color:red} background:blue")
	want := []statement{
		{kind: stmtOpen, text: ".a"},
		{kind: stmtDecl, text: "color:red;"},
		{kind: stmtClose},
		{kind: stmtDecl, text: "background:blue;"},
	}
	if !statementsEqual(got, want) {
		t.Errorf("scanStatements() = %+v, want %+v", got, want)
	}
}

func TestScanStatements_EmptyStatementsDropped(t *testing.T) {
	got := scanStatements(";;;  \n ;")
	if len(got) != 0 {
		t.Errorf("scanStatements() = %+v, want none", got)
	}
}

func TestStripLineComments(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "color:red; // gone\nbackground:blue;", "color:red; \nbackground:blue;"},
		{"url untouched", "background:url(http://x/a.png);", "background:url(http://x/a.png);"},
		{"inside string untouched", `content:"a//b";`, `content:"a//b";`},
		{"inside block comment untouched", "/* a//b */color:red;", "/* a//b */color:red;"},
		{"no comments fast path", ".a{color:red;}", ".a{color:red;}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripLineComments(tc.input); got != tc.want {
				t.Errorf("stripLineComments(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSplitSelectorList_ParenAware(t *testing.T) {
	got := splitSelectorList(".a,:is(.b,.c),.d")
	want := []string{".a", ":is(.b,.c)", ".d"}
	if len(got) != len(want) {
		t.Fatalf("splitSelectorList() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitSelectorList()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMergeConditions(t *testing.T) {
	cases := []struct {
		name  string
		specs []string
		want  string
	}{
		{
			name:  "single spec",
			specs: []string{"@media (color)"},
			want:  "@media (color)",
		},
		{
			name:  "nested merge",
			specs: []string{"@media (min-width:600px)", "@media (color)"},
			want:  "@media (min-width:600px) and (color)",
		},
		{
			name:  "duplicates removed in first-seen order",
			specs: []string{"@media (min-width:600px) and (color)", "@media (color) and (min-width:600px)"},
			want:  "@media (min-width:600px) and (color)",
		},
		{
			name:  "first keyword wins",
			specs: []string{"@container (min-width:400px)", "@media (color)"},
			want:  "@container (min-width:400px) and (color)",
		},
		{
			name:  "none",
			specs: nil,
			want:  "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mergeConditions(tc.specs); got != tc.want {
				t.Errorf("mergeConditions(%v) = %q, want %q", tc.specs, got, tc.want)
			}
		})
	}
}

func TestReplaceIdent(t *testing.T) {
	cases := []struct {
		s, old, new, want string
	}{
		{"@keyframes spin{", "spin", "s_spin", "@keyframes s_spin{"},
		{"animation-name:spin;", "spin", "s_spin", "animation-name:s_spin;"},
		{"animation-name:spin-fast;", "spin", "s_spin", "animation-name:spin-fast;"},
		{"animation:spin 2s linear,spin 1s;", "spin", "s_spin", "animation:s_spin 2s linear,s_spin 1s;"},
		{"no match here", "spin", "s_spin", "no match here"},
	}
	for _, tc := range cases {
		if got := replaceIdent(tc.s, tc.old, tc.new); got != tc.want {
			t.Errorf("replaceIdent(%q, %q, %q) = %q, want %q", tc.s, tc.old, tc.new, got, tc.want)
		}
	}
}
