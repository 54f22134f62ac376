// Package when implements the boolean predicate language used by view
// descriptors to gate visibility on context keys.
//
// The grammar is small on purpose:
//
//	expr    := or
//	or      := and ("||" and)*
//	and     := unary ("&&" unary)*
//	unary   := "!" unary | primary
//	primary := "(" or ")" | key (("==" | "!=") value)?
//
// A bare key tests truthiness: the key exists and its value is neither
// false nor the empty string. Values compare against the string form of
// the context value; quoted and bare literals are equivalent.
//
// Consumers treat Expr as opaque: the only operations are Keys and Eval.
package when

import (
	"fmt"
	"sort"
	"strconv"
)

// Context is the read side of a context-key snapshot.
type Context interface {
	// Value returns the value for a key and whether the key is set.
	Value(key string) (any, bool)
}

// Expr is a parsed predicate over context keys.
type Expr struct {
	node node
	raw  string
}

// Parse parses a predicate expression. An empty or blank input is an error;
// callers represent "no predicate" as a nil *Expr, which is always true.
func Parse(input string) (*Expr, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("empty when expression")
	}

	p := &parser{toks: toks}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("unexpected %q at offset %d", p.toks[p.pos].text, p.toks[p.pos].offset)
	}

	return &Expr{node: n, raw: input}, nil
}

// MustParse parses an expression and panics on error. For tests and
// compile-time-constant predicates only.
func MustParse(input string) *Expr {
	e, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return e
}

// Keys returns the distinct context keys the expression references, sorted.
func (e *Expr) Keys() []string {
	if e == nil {
		return nil
	}
	set := map[string]struct{}{}
	e.node.keys(set)

	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Eval evaluates the expression against a context snapshot.
// A nil expression is always true.
func (e *Expr) Eval(ctx Context) bool {
	if e == nil {
		return true
	}
	return e.node.eval(ctx)
}

// String returns the original expression text.
func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	return e.raw
}

type node interface {
	eval(ctx Context) bool
	keys(set map[string]struct{})
}

type orNode struct{ children []node }

func (n orNode) eval(ctx Context) bool {
	for _, c := range n.children {
		if c.eval(ctx) {
			return true
		}
	}
	return false
}

func (n orNode) keys(set map[string]struct{}) {
	for _, c := range n.children {
		c.keys(set)
	}
}

type andNode struct{ children []node }

func (n andNode) eval(ctx Context) bool {
	for _, c := range n.children {
		if !c.eval(ctx) {
			return false
		}
	}
	return true
}

func (n andNode) keys(set map[string]struct{}) {
	for _, c := range n.children {
		c.keys(set)
	}
}

type notNode struct{ child node }

func (n notNode) eval(ctx Context) bool { return !n.child.eval(ctx) }

func (n notNode) keys(set map[string]struct{}) { n.child.keys(set) }

type keyNode struct{ key string }

func (n keyNode) eval(ctx Context) bool {
	v, ok := ctx.Value(n.key)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	case nil:
		return false
	default:
		return true
	}
}

func (n keyNode) keys(set map[string]struct{}) { set[n.key] = struct{}{} }

type equalsNode struct {
	key    string
	value  string
	negate bool
}

func (n equalsNode) eval(ctx Context) bool {
	v, ok := ctx.Value(n.key)
	equal := ok && stringify(v) == n.value
	if n.negate {
		return !equal
	}
	return equal
}

func (n equalsNode) keys(set map[string]struct{}) { set[n.key] = struct{}{} }

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) accept(kind tokenKind) (token, bool) {
	t, ok := p.peek()
	if !ok || t.kind != kind {
		return token{}, false
	}
	p.pos++
	return t, true
}

func (p *parser) parseOr() (node, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []node{first}
	for {
		if _, ok := p.accept(tokOr); !ok {
			break
		}
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return first, nil
	}
	return orNode{children: children}, nil
}

func (p *parser) parseAnd() (node, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	children := []node{first}
	for {
		if _, ok := p.accept(tokAnd); !ok {
			break
		}
		next, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return first, nil
	}
	return andNode{children: children}, nil
}

func (p *parser) parseUnary() (node, error) {
	if _, ok := p.accept(tokNot); ok {
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{child: child}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	if _, ok := p.accept(tokLParen); ok {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, ok := p.accept(tokRParen); !ok {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		return inner, nil
	}

	key, ok := p.accept(tokIdent)
	if !ok {
		t, any := p.peek()
		if !any {
			return nil, fmt.Errorf("unexpected end of expression")
		}
		return nil, fmt.Errorf("unexpected %q at offset %d", t.text, t.offset)
	}

	if op, ok := p.accept(tokEq); ok {
		return p.parseComparison(key.text, op)
	}
	if op, ok := p.accept(tokNeq); ok {
		return p.parseComparison(key.text, op)
	}

	return keyNode{key: key.text}, nil
}

func (p *parser) parseComparison(key string, op token) (node, error) {
	val, ok := p.accept(tokIdent)
	if !ok {
		val, ok = p.accept(tokString)
	}
	if !ok {
		return nil, fmt.Errorf("missing value after %q", op.text)
	}
	return equalsNode{key: key, value: val.text, negate: op.kind == tokNeq}, nil
}
