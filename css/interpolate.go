package css

import (
	"regexp"
	"strconv"
	"strings"
)

// ValueKind discriminates interpolated template values.
type ValueKind int

const (
	ValueOmitted ValueKind = iota // renders nothing
	ValueText                    // literal text, possibly a prior rule reference
	ValueNumber                  // rendered as decimal text
	ValueBool                    // true renders "true", false renders nothing
)

// Value is one interpolated slot of a styling template. It is a tagged
// variant, not an any-typed box: the caller states what it is passing and
// rendering never inspects run-time types.
type Value struct {
	kind ValueKind
	text string
	num  float64
	flag bool
}

// Text returns a literal text value. When the text matches a previously
// generated scope identifier known to the interpolation call, the original
// nested source of that rule is substituted instead.
func Text(s string) Value { return Value{kind: ValueText, text: s} }

// Number returns a numeric value rendered as decimal text.
func Number(f float64) Value { return Value{kind: ValueNumber, num: f} }

// Bool returns a boolean value. Only true produces output, which makes
// `Bool(cond)` usable for conditional fragment inclusion.
func Bool(b bool) Value { return Value{kind: ValueBool, flag: b} }

// Omitted returns a value that renders nothing.
func Omitted() Value { return Value{} }

// Kind reports what kind of value this is.
func (v Value) Kind() ValueKind { return v.kind }

func (v Value) render(priorSource map[string]string) string {
	switch v.kind {
	case ValueText:
		if v.text == "" {
			return ""
		}
		// composing a previously generated rule inlines its raw source,
		// enabling rule reuse and extension
		if src, ok := priorSource[v.text]; ok {
			return src
		}
		return v.text
	case ValueNumber:
		// plain decimal, never exponent notation - 1e+06 is not valid in
		// most CSS value positions
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case ValueBool:
		if v.flag {
			return "true"
		}
		return ""
	default:
		return ""
	}
}

// newlineRun matches a whitespace run containing a line break.
// punctSpace matches whitespace hugging a separator that never needs it.
// extraSemi matches doubled statement terminators left by interpolation.
var (
	newlineRun = regexp.MustCompile(`[ \t\r\f]*\n\s*`)
	punctSpace = regexp.MustCompile(`[ \t]*([:{;~,])[ \t]*`)
	extraSemi  = regexp.MustCompile(`;;+`)
)

// Interpolate resolves a styling template into one nested-CSS string.
// Literal chunks and values are walked in lockstep (len(chunks) is expected
// to be len(values)+1, any surplus on either side is kept or ignored rather
// than rejected). priorSource maps previously generated scope identifiers to
// the nested source that produced them; it is never modified. Interpolation
// has no failure mode: absent or omitted values simply render nothing.
func Interpolate(chunks []string, values []Value, priorSource map[string]string) string {
	var b strings.Builder
	for i, chunk := range chunks {
		b.WriteString(chunk)
		if i < len(values) {
			b.WriteString(values[i].render(priorSource))
		}
	}
	return compact(b.String())
}

// compact strips insignificant whitespace from interpolated nested CSS.
func compact(s string) string {
	s = newlineRun.ReplaceAllString(s, " ")
	s = punctSpace.ReplaceAllString(s, "$1")
	s = extraSemi.ReplaceAllString(s, ";")
	return strings.TrimSpace(s)
}
