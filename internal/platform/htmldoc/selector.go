package htmldoc

import (
	"strings"
)

// matchState is the dynamic state selectors can depend on.
type matchState struct {
	active int // focused node index, -1 for none
}

// combinator joins two compound selectors.
type combinator byte

const (
	combDescendant combinator = ' '
	combChild      combinator = '>'
	combAdjacent   combinator = '+'
	combSibling    combinator = '~'
)

type attrMatcher struct {
	name  string
	op    string // "", "=", "~=", "^=", "$=", "*=", "|="
	value string
}

// compound is a sequence of simple selectors that all apply to one element.
type compound struct {
	tag     string // "" or "*" for any
	id      string
	classes []string
	attrs   []attrMatcher
	pseudos []string
	never   bool // contains a construct that can never match a rendered element
}

// selector is a complex selector stored right to left: parts[0] is the
// subject and combs[i] joins parts[i] to parts[i+1].
type selector struct {
	parts       []compound
	combs       []combinator
	specificity [3]int
}

// parseSelector parses one complex selector. Unsupported syntax yields ok=false.
func parseSelector(s string) (selector, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return selector{}, false
	}
	var (
		parts []compound
		combs []combinator
	)
	pending := combinator(0)
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			if len(parts) > 0 && pending == 0 {
				pending = combDescendant
			}
			i++
			continue
		case c == '>' || c == '+' || c == '~':
			if len(parts) == 0 {
				return selector{}, false
			}
			pending = combinator(c)
			i++
			continue
		}
		comp, n, ok := parseCompound(s[i:])
		if !ok || n == 0 {
			return selector{}, false
		}
		if len(parts) > 0 {
			if pending == 0 {
				return selector{}, false
			}
			combs = append(combs, pending)
		}
		parts = append(parts, comp)
		pending = 0
		i += n
	}
	if len(parts) == 0 || (pending != 0 && pending != combDescendant) {
		return selector{}, false
	}

	sel := selector{}
	for k := len(parts) - 1; k >= 0; k-- {
		sel.parts = append(sel.parts, parts[k])
	}
	for k := len(combs) - 1; k >= 0; k-- {
		sel.combs = append(sel.combs, combs[k])
	}
	for _, p := range sel.parts {
		if p.id != "" {
			sel.specificity[0]++
		}
		sel.specificity[1] += len(p.classes) + len(p.attrs) + len(p.pseudos)
		if p.tag != "" && p.tag != "*" {
			sel.specificity[2]++
		}
	}
	return sel, true
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func readIdent(s string) string {
	n := 0
	for n < len(s) && isIdentByte(s[n]) {
		n++
	}
	return s[:n]
}

// parseCompound parses a compound selector at the start of s and returns
// the number of bytes consumed.
func parseCompound(s string) (compound, int, bool) {
	var c compound
	i := 0
	if i < len(s) && s[i] == '*' {
		c.tag = "*"
		i++
	} else if id := readIdent(s); id != "" {
		c.tag = strings.ToLower(id)
		i += len(id)
	}
	for i < len(s) {
		switch s[i] {
		case '#':
			id := readIdent(s[i+1:])
			if id == "" {
				return c, 0, false
			}
			c.id = id
			i += 1 + len(id)
		case '.':
			cl := readIdent(s[i+1:])
			if cl == "" {
				return c, 0, false
			}
			c.classes = append(c.classes, cl)
			i += 1 + len(cl)
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return c, 0, false
			}
			am, ok := parseAttrMatcher(s[i+1 : i+end])
			if !ok {
				return c, 0, false
			}
			c.attrs = append(c.attrs, am)
			i += end + 1
		case ':':
			if strings.HasPrefix(s[i:], "::") {
				// Pseudo-elements generate no element of their own.
				name := readIdent(s[i+2:])
				c.never = true
				i += 2 + len(name)
				continue
			}
			name := strings.ToLower(readIdent(s[i+1:]))
			if name == "" {
				return c, 0, false
			}
			i += 1 + len(name)
			if i < len(s) && s[i] == '(' {
				end := strings.IndexByte(s[i:], ')')
				if end < 0 {
					return c, 0, false
				}
				i += end + 1
				c.never = true
				continue
			}
			c.pseudos = append(c.pseudos, name)
		default:
			return c, i, true
		}
	}
	return c, i, true
}

func parseAttrMatcher(body string) (attrMatcher, bool) {
	body = strings.TrimSpace(body)
	for _, op := range []string{"~=", "^=", "$=", "*=", "|=", "="} {
		if k := strings.Index(body, op); k > 0 {
			name := strings.ToLower(strings.TrimSpace(body[:k]))
			val := strings.TrimSpace(body[k+len(op):])
			val = strings.TrimSuffix(strings.TrimSuffix(val, " i"), " s")
			val = strings.Trim(val, `"'`)
			return attrMatcher{name: name, op: op, value: val}, name != ""
		}
	}
	if body == "" {
		return attrMatcher{}, false
	}
	return attrMatcher{name: strings.ToLower(body)}, true
}

// matches reports whether the node at idx is the subject of sel.
func (d *Document) matches(sel selector, idx int, st matchState) bool {
	if !d.matchCompound(sel.parts[0], idx, st) {
		return false
	}
	return d.matchRest(sel, 1, idx, st)
}

// matchRest matches parts[k:] against the relatives of the node at idx.
func (d *Document) matchRest(sel selector, k, idx int, st matchState) bool {
	if k >= len(sel.parts) {
		return true
	}
	switch sel.combs[k-1] {
	case combChild:
		p := d.nodes[idx].parent
		return p >= 0 && d.matchCompound(sel.parts[k], p, st) && d.matchRest(sel, k+1, p, st)
	case combDescendant:
		for p := d.nodes[idx].parent; p >= 0; p = d.nodes[p].parent {
			if d.matchCompound(sel.parts[k], p, st) && d.matchRest(sel, k+1, p, st) {
				return true
			}
		}
		return false
	case combAdjacent:
		s := d.prevSibling(idx)
		return s >= 0 && d.matchCompound(sel.parts[k], s, st) && d.matchRest(sel, k+1, s, st)
	case combSibling:
		for s := d.prevSibling(idx); s >= 0; s = d.prevSibling(s) {
			if d.matchCompound(sel.parts[k], s, st) && d.matchRest(sel, k+1, s, st) {
				return true
			}
		}
		return false
	}
	return false
}

func (d *Document) matchCompound(c compound, idx int, st matchState) bool {
	if c.never {
		return false
	}
	n := d.nodes[idx]
	if c.tag != "" && c.tag != "*" && c.tag != n.tag {
		return false
	}
	if c.id != "" && attr(n.html, "id") != c.id {
		return false
	}
	if len(c.classes) > 0 {
		have := strings.Fields(attr(n.html, "class"))
		for _, want := range c.classes {
			if !containsString(have, want) {
				return false
			}
		}
	}
	for _, am := range c.attrs {
		if !matchAttr(am, n) {
			return false
		}
	}
	for _, p := range c.pseudos {
		if !d.matchPseudo(p, idx, st) {
			return false
		}
	}
	return true
}

func matchAttr(am attrMatcher, n *node) bool {
	v, ok := attrOK(n.html, am.name)
	if !ok {
		return false
	}
	switch am.op {
	case "":
		return true
	case "=":
		return v == am.value
	case "~=":
		return containsString(strings.Fields(v), am.value)
	case "^=":
		return am.value != "" && strings.HasPrefix(v, am.value)
	case "$=":
		return am.value != "" && strings.HasSuffix(v, am.value)
	case "*=":
		return am.value != "" && strings.Contains(v, am.value)
	case "|=":
		return v == am.value || strings.HasPrefix(v, am.value+"-")
	}
	return false
}

func (d *Document) matchPseudo(name string, idx int, st matchState) bool {
	switch name {
	case "focus", "focus-visible":
		return idx == st.active
	case "focus-within":
		for a := st.active; a >= 0; a = d.nodes[a].parent {
			if a == idx {
				return true
			}
		}
		return false
	case "first-child":
		return d.prevSibling(idx) < 0
	case "last-child":
		return d.nextSibling(idx) < 0
	case "root":
		return d.nodes[idx].parent < 0
	case "disabled":
		_, ok := attrOK(d.nodes[idx].html, "disabled")
		return ok
	case "enabled":
		_, ok := attrOK(d.nodes[idx].html, "disabled")
		return !ok
	case "checked":
		_, ok := attrOK(d.nodes[idx].html, "checked")
		return ok
	case "link", "any-link":
		_, ok := attrOK(d.nodes[idx].html, "href")
		return ok && (d.nodes[idx].tag == "a" || d.nodes[idx].tag == "area")
	}
	// hover, active, visited and unknown pseudo-classes describe states a
	// static snapshot is never in.
	return false
}

func (d *Document) prevSibling(idx int) int {
	p := d.nodes[idx].parent
	if p < 0 {
		return -1
	}
	prev := -1
	for _, c := range d.nodes[p].children {
		if c == idx {
			return prev
		}
		prev = c
	}
	return -1
}

func (d *Document) nextSibling(idx int) int {
	p := d.nodes[idx].parent
	if p < 0 {
		return -1
	}
	kids := d.nodes[p].children
	for i, c := range kids {
		if c == idx && i+1 < len(kids) {
			return kids[i+1]
		}
	}
	return -1
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
