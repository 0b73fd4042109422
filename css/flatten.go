package css

import (
	"strings"

	"go.uber.org/zap"
)

// narrowerKind classifies one entry of the scope stack.
type narrowerKind int

const (
	narrowSelector  narrowerKind = iota // plain selector fragment
	narrowCondition                     // @media / @container group rule
	narrowKeyframes                     // @keyframes group rule
)

// narrower is one scope-stack entry: a selector fragment, a conditional
// group fragment or a keyframe group fragment. Immutable once pushed.
type narrower struct {
	text string
	kind narrowerKind
}

func classifyNarrower(text string) narrower {
	switch {
	case strings.HasPrefix(text, "@keyframes"):
		return narrower{text: text, kind: narrowKeyframes}
	case strings.HasPrefix(text, "@media"), strings.HasPrefix(text, "@container"):
		return narrower{text: text, kind: narrowCondition}
	default:
		return narrower{text: text, kind: narrowSelector}
	}
}

// ruleSlot accumulates declarations sharing one composed selector path and
// group-rule context. Two nesting contexts reducing to the same key share a
// slot, interleaving declarations in source order.
type ruleSlot struct {
	group    string // merged @media/@container spec or @keyframes spec, empty if none
	selector string // fully composed selector path
	decls    []string
}

// Flattener turns nested CSS scoped under a single class selector into flat
// standards-compliant CSS text.
type Flattener struct {
	log *zap.Logger
}

// NewFlattener creates a new nested-CSS flattener.
func NewFlattener(log *zap.Logger) *Flattener {
	if log == nil {
		log = zap.NewNop()
	}
	return &Flattener{log: log.Named("css-flatten")}
}

// Flatten parses nested CSS and emits flat CSS scoped under scopeSelector,
// which must be a single class selector (e.g. ".cs_1a2b3c4d"). It never
// fails: malformed input produces a best-effort result. An unmatched closing
// brace is ignored - the stack floor holding the scope selector is never
// popped.
func (f *Flattener) Flatten(cssBody, scopeSelector string) string {
	run := &flattenRun{
		stack: []narrower{{text: scopeSelector, kind: narrowSelector}},
		index: make(map[string]*ruleSlot),
	}
	run.selectSlot()

	for _, st := range scanStatements(cssBody) {
		switch st.kind {
		case stmtOpen:
			run.stack = append(run.stack, classifyNarrower(st.text))
			run.selectSlot()
		case stmtClose:
			if len(run.stack) > 1 {
				run.stack = run.stack[:len(run.stack)-1]
			} else {
				f.log.Debug("Ignoring unmatched closing brace", zap.String("scope", scopeSelector))
			}
			run.selectSlot()
		case stmtDecl:
			run.current.decls = append(run.current.decls, st.text)
		}
	}

	return renameKeyframes(run.render(), scopeSelector, run.keyframeNames())
}

// flattenRun holds the state of a single flatten call. Allocated per call,
// discarded afterwards - nothing is shared between invocations.
type flattenRun struct {
	stack   []narrower
	slots   []*ruleSlot // in order of first appearance
	index   map[string]*ruleSlot
	current *ruleSlot
}

// selectSlot recomputes the active rule slot after every stack mutation.
func (r *flattenRun) selectSlot() {
	group, selector := r.resolveKey()
	key := group + selector
	slot, ok := r.index[key]
	if !ok {
		slot = &ruleSlot{group: group, selector: selector}
		r.index[key] = slot
		r.slots = append(r.slots, slot)
	}
	r.current = slot
}

// resolveKey derives the (groupRuleSpec, selectorPath) pair for the current
// stack. A keyframe narrower takes precedence as the grouping key: only the
// narrowers nested inside it contribute to the selector path (percentage and
// keyword selectors), the outer chain is ignored entirely. Otherwise plain
// selectors compose left to right and conditional group rules merge into one
// spec.
func (r *flattenRun) resolveKey() (group, selector string) {
	for i, n := range r.stack {
		if n.kind == narrowKeyframes {
			var below []string
			for _, inner := range r.stack[i+1:] {
				below = append(below, inner.text)
			}
			return n.text, combine(below)
		}
	}

	var plain, conds []string
	for _, n := range r.stack {
		if n.kind == narrowCondition {
			conds = append(conds, n.text)
		} else {
			plain = append(plain, n.text)
		}
	}
	return mergeConditions(conds), combine(plain)
}

// combine folds selector fragments left to right into one composed path.
func combine(segs []string) string {
	if len(segs) == 0 {
		return ""
	}
	path := segs[0]
	for _, seg := range segs[1:] {
		path = concatSelectors(path, seg)
	}
	return path
}

// concatSelectors composes two selector fragments, expanding comma-separated
// alternatives on either side into the full cartesian product.
func concatSelectors(path, seg string) string {
	paths := splitSelectorList(path)
	segs := splitSelectorList(seg)
	out := make([]string, 0, len(paths)*len(segs))
	for _, p := range paths {
		for _, s := range segs {
			out = append(out, concatPair(p, s))
		}
	}
	return strings.Join(out, ",")
}

// concatPair composes a single parent path with a single child fragment.
// '&' is an explicit parent reference and replaces everywhere it occurs.
// Without it, a fragment starting a new simple selector after a word
// character becomes a descendant; combinators and pseudo suffixes attach
// directly.
func concatPair(path, seg string) string {
	if strings.ContainsRune(seg, '&') {
		return strings.TrimSpace(strings.ReplaceAll(seg, "&", path))
	}
	if path == "" {
		return seg
	}
	if seg == "" {
		return path
	}
	if isWordByte(path[len(path)-1]) && isSelectorStart(seg[0]) {
		return path + " " + seg
	}
	return path + seg
}

func isWordByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

func isSelectorStart(c byte) bool {
	switch c {
	case '.', '#', '*', '[', ':':
		return true
	}
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// splitSelectorList splits a selector on top-level commas, leaving commas
// inside parentheses or brackets (e.g. :is(a,b), [attr="x,y"]) alone.
func splitSelectorList(s string) []string {
	if !strings.ContainsRune(s, ',') {
		return []string{s}
	}
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// mergeConditions merges nested @media/@container specs into one: conditions
// are split on the token "and", deduplicated preserving first-seen order and
// rejoined under the first spec's at-rule keyword.
func mergeConditions(specs []string) string {
	if len(specs) == 0 {
		return ""
	}

	var (
		keyword string
		merged  []string
		seen    = make(map[string]bool)
	)
	for i, spec := range specs {
		kw, rest := splitAtKeyword(spec)
		if i == 0 {
			keyword = kw
		}
		for _, cond := range splitConditions(rest) {
			cond = strings.TrimSpace(cond)
			if cond == "" || seen[cond] {
				continue
			}
			seen[cond] = true
			merged = append(merged, cond)
		}
	}
	return keyword + " " + strings.Join(merged, " and ")
}

func splitAtKeyword(spec string) (keyword, rest string) {
	for _, kw := range []string{"@container", "@media"} {
		if strings.HasPrefix(spec, kw) {
			return kw, strings.TrimSpace(spec[len(kw):])
		}
	}
	keyword, rest, _ = strings.Cut(spec, " ")
	return keyword, rest
}

// splitConditions splits condition text on the literal token "and",
// reassembling pieces whose parentheses ended up unbalanced so "and" inside
// a condition value cannot tear it apart.
func splitConditions(s string) []string {
	parts := strings.Split(s, " and ")
	var (
		out []string
		cur string
	)
	for _, part := range parts {
		if cur == "" {
			cur = part
		} else {
			cur += " and " + part
		}
		if strings.Count(cur, "(") == strings.Count(cur, ")") {
			out = append(out, cur)
			cur = ""
		}
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

// render prunes empty slots and emits the flat CSS text, grouping slots by
// their group-rule spec in order of first appearance. Group-rule blocks wrap
// their two-space indented slots; the empty spec group is emitted unwrapped.
func (r *flattenRun) render() string {
	type groupOut struct {
		spec  string
		lines []string
	}
	var (
		groups []*groupOut
		bySpec = make(map[string]*groupOut)
	)
	for _, slot := range r.slots {
		if len(slot.decls) == 0 {
			continue
		}
		g, ok := bySpec[slot.group]
		if !ok {
			g = &groupOut{spec: slot.group}
			bySpec[slot.group] = g
			groups = append(groups, g)
		}
		g.lines = append(g.lines, slot.selector+"{"+strings.Join(slot.decls, " ")+"}")
	}

	out := make([]string, 0, len(groups))
	for _, g := range groups {
		if g.spec == "" {
			out = append(out, g.lines...)
			continue
		}
		out = append(out, g.spec+"{\n  "+strings.Join(g.lines, "\n  ")+"\n}")
	}
	return strings.Join(out, "\n")
}

// keyframeNames returns the distinct keyframe names that survived pruning,
// in order of first appearance.
func (r *flattenRun) keyframeNames() []string {
	var (
		names []string
		seen  = make(map[string]bool)
	)
	for _, slot := range r.slots {
		if len(slot.decls) == 0 || !strings.HasPrefix(slot.group, "@keyframes") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(slot.group, "@keyframes"))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// renameKeyframes namespaces keyframe animation names with the scope
// identifier. Keyframe names share one global namespace per page, so both
// the @keyframes declaration and every reference to the name (for example
// in animation-name) are renamed consistently, keeping independently scoped
// blocks from colliding.
func renameKeyframes(text, scopeSelector string, names []string) string {
	if len(names) == 0 {
		return text
	}
	ident := strings.TrimPrefix(scopeSelector, ".")
	for _, name := range names {
		text = replaceIdent(text, name, ident+"_"+name)
	}
	return text
}

// replaceIdent substitutes every standalone occurrence of a CSS identifier.
// CSS identifiers may contain hyphens, so "spin" does not match inside
// "spin-fast" or "animation-name".
func replaceIdent(s, old, new string) string {
	var (
		b    strings.Builder
		last int
	)
	for i := 0; i+len(old) <= len(s); {
		j := strings.Index(s[i:], old)
		if j < 0 {
			break
		}
		j += i
		before := j == 0 || !isIdentByte(s[j-1])
		after := j+len(old) == len(s) || !isIdentByte(s[j+len(old)])
		if before && after {
			b.WriteString(s[last:j])
			b.WriteString(new)
			last = j + len(old)
		}
		i = j + len(old)
	}
	if last == 0 {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}

func isIdentByte(c byte) bool {
	return isWordByte(c) || c == '-'
}
