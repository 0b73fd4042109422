package css

import (
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// statementKind classifies one normalized statement of nested-CSS source.
type statementKind int

const (
	stmtOpen  statementKind = iota // selector or group rule followed by '{'
	stmtClose                      // bare '}'
	stmtDecl                       // 'property:value;'
)

type statement struct {
	kind statementKind
	text string // selector/group spec for open, terminated declaration for decl, empty for close
}

// adjacentCut lists characters that swallow surrounding whitespace during
// normalization. Whitespace between any other two tokens collapses to a
// single space.
const adjacentCut = ":;{}>+~,"

func isCutByte(c byte) bool {
	return strings.IndexByte(adjacentCut, c) >= 0
}

// scanStatements normalizes nested-CSS text into a flat sequence of
// open/close/declaration statements. Comments are dropped, whitespace is
// collapsed and every statement is terminated by exactly one of '{', '}'
// or ';' in the source. A run of text cut short by '}' or end of input is
// kept as a declaration so malformed input still produces output.
func scanStatements(src string) []statement {
	lexer := css.NewLexer(parse.NewInput(strings.NewReader(stripLineComments(src))))

	var (
		stmts []statement
		buf   strings.Builder
		space bool
	)

	pending := func() string {
		text := strings.TrimSpace(buf.String())
		buf.Reset()
		space = false
		return text
	}

	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			// end of input or unrecoverable lexing error
			if text := pending(); text != "" {
				stmts = append(stmts, statement{kind: stmtDecl, text: terminated(text)})
			}
			return stmts

		case css.CommentToken:
			// stripped, leaving any pending whitespace decision untouched

		case css.WhitespaceToken:
			space = true

		case css.LeftBraceToken:
			stmts = append(stmts, statement{kind: stmtOpen, text: pending()})

		case css.RightBraceToken:
			if text := pending(); text != "" {
				stmts = append(stmts, statement{kind: stmtDecl, text: terminated(text)})
			}
			stmts = append(stmts, statement{kind: stmtClose})

		case css.SemicolonToken:
			if text := pending(); text != "" {
				stmts = append(stmts, statement{kind: stmtDecl, text: text + ";"})
			}

		default:
			if space {
				if b := buf.String(); len(b) != 0 && len(data) != 0 && !isCutByte(b[len(b)-1]) && !isCutByte(data[0]) {
					buf.WriteByte(' ')
				}
				space = false
			}
			buf.Write(data)
		}
	}
}

// terminated makes sure a declaration carries its statement terminator.
func terminated(decl string) string {
	if strings.HasSuffix(decl, ";") {
		return decl
	}
	return decl + ";"
}

// stripLineComments removes '// ...' comments, a SASS-ism the CSS tokenizer
// has no notion of. Quoted strings, parenthesized values (url(http://...))
// and block comments are left untouched.
func stripLineComments(src string) string {
	if !strings.Contains(src, "//") {
		return src
	}

	var (
		b       strings.Builder
		quote   byte
		depth   int
		inBlock bool
	)
	b.Grow(len(src))

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case inBlock:
			if c == '*' && i+1 < len(src) && src[i+1] == '/' {
				b.WriteString("*/")
				i++
				inBlock = false
				continue
			}
		case quote != 0:
			if c == '\\' && i+1 < len(src) {
				b.WriteByte(c)
				i++
				c = src[i]
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			inBlock = true
			b.WriteString("/*")
			i++
			continue
		case c == '/' && i+1 < len(src) && src[i+1] == '/' && depth == 0:
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				b.WriteByte('\n')
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
