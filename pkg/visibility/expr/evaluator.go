// Package expr is the default visibility rule language.
//
//	invoice_type == "export"
//	has_discount && discount_rate > 0
//	!(country in ["TR", "CY"]) || extras.admin
//
// Identifiers resolve to form values (or extras via `extras.`). Comparisons
// against numbers parse the field value as a locale number ("1.250,50").
package expr

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-formguard/pkg/numfmt"
	"github.com/goliatone/go-formguard/pkg/visibility"
)

// Evaluator compiles rules on first use and caches them.
type Evaluator struct {
	mu    sync.RWMutex
	rules map[string]*Rule
}

// New returns an evaluator with an empty cache.
func New() *Evaluator {
	return &Evaluator{rules: make(map[string]*Rule)}
}

// Eval implements visibility.Evaluator. An empty rule is always visible.
func (e *Evaluator) Eval(_ string, rule string, ctx visibility.Context) (bool, error) {
	compiled, err := e.compile(rule)
	if err != nil {
		return false, err
	}
	return compiled.Eval(ctx)
}

func (e *Evaluator) compile(rule string) (*Rule, error) {
	e.mu.RLock()
	compiled, ok := e.rules[rule]
	e.mu.RUnlock()
	if ok {
		return compiled, nil
	}
	compiled, err := Compile(rule)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.rules[rule] = compiled
	e.mu.Unlock()
	return compiled, nil
}

// Rule is a compiled expression.
type Rule struct {
	source string
	root   node
	refs   []string
}

// Compile parses rule.
func Compile(rule string) (*Rule, error) {
	trimmed := strings.TrimSpace(rule)
	r := &Rule{source: trimmed}
	if trimmed == "" {
		return r, nil
	}
	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, refs: map[string]struct{}{}}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("visibility/expr: unexpected token %q", p.tokens[p.pos].raw)
	}
	r.root = root
	for ref := range p.refs {
		r.refs = append(r.refs, ref)
	}
	sort.Strings(r.refs)
	return r, nil
}

// Fields lists the form fields the rule reads, sorted. Extras are excluded.
func (r *Rule) Fields() []string {
	return append([]string(nil), r.refs...)
}

// Eval evaluates the rule.
func (r *Rule) Eval(ctx visibility.Context) (bool, error) {
	if r == nil || r.root == nil {
		return true, nil
	}
	return r.root.eval(ctx)
}

func (r *Rule) String() string {
	return r.source
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokBool
	tokEq
	tokNeq
	tokLt
	tokLte
	tokGt
	tokGte
	tokAnd
	tokOr
	tokNot
	tokIn
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
)

type token struct {
	kind tokenKind
	raw  string
}

var symbols = []struct {
	text string
	kind tokenKind
}{
	{"==", tokEq}, {"!=", tokNeq}, {"<=", tokLte}, {">=", tokGte},
	{"&&", tokAnd}, {"||", tokOr},
	{"<", tokLt}, {">", tokGt}, {"!", tokNot},
	{"(", tokLParen}, {")", tokRParen}, {"[", tokLBracket}, {"]", tokRBracket}, {",", tokComma},
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0
outer:
	for i < len(input) {
		ch := input[i]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			i++
			continue
		}
		for _, sym := range symbols {
			if strings.HasPrefix(input[i:], sym.text) {
				tokens = append(tokens, token{kind: sym.kind, raw: sym.text})
				i += len(sym.text)
				continue outer
			}
		}
		switch {
		case ch == '=' || ch == '&' || ch == '|':
			return nil, fmt.Errorf("visibility/expr: unexpected %q at %d", ch, i)
		case ch == '"' || ch == '\'':
			end := i + 1
			for end < len(input) && input[end] != ch {
				if input[end] == '\\' {
					end++
				}
				end++
			}
			if end >= len(input) {
				return nil, errors.New("visibility/expr: unterminated string literal")
			}
			body := input[i+1 : end]
			if ch == '\'' {
				body = strings.ReplaceAll(body, `"`, `\"`)
				body = strings.ReplaceAll(body, `\'`, `'`)
			}
			value, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return nil, fmt.Errorf("visibility/expr: invalid string literal: %w", err)
			}
			tokens = append(tokens, token{kind: tokString, raw: value})
			i = end + 1
		default:
			start := i
			for i < len(input) && !strings.ContainsRune(" \t\n\r()[],!=<>&|\"'", rune(input[i])) {
				i++
			}
			raw := input[start:i]
			switch lower := strings.ToLower(raw); {
			case lower == "true" || lower == "false":
				tokens = append(tokens, token{kind: tokBool, raw: lower})
			case lower == "in":
				tokens = append(tokens, token{kind: tokIn, raw: lower})
			case isNumber(raw):
				tokens = append(tokens, token{kind: tokNumber, raw: raw})
			default:
				tokens = append(tokens, token{kind: tokIdent, raw: raw})
			}
		}
	}
	return tokens, nil
}

func isNumber(raw string) bool {
	_, err := strconv.ParseFloat(raw, 64)
	return err == nil
}

type parser struct {
	tokens []token
	pos    int
	refs   map[string]struct{}
}

func (p *parser) peek(kind tokenKind) bool {
	return p.pos < len(p.tokens) && p.tokens[p.pos].kind == kind
}

func (p *parser) match(kind tokenKind) bool {
	if p.peek(kind) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.match(tokOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left, right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.match(tokAnd) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left, right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.match(tokNot) {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	if p.match(tokLParen) {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.match(tokRParen) {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, nil
	}

	if !p.peek(tokIdent) {
		if p.pos >= len(p.tokens) {
			return nil, errors.New("visibility/expr: empty expression")
		}
		return nil, fmt.Errorf("visibility/expr: expected identifier, got %q", p.tokens[p.pos].raw)
	}
	ident := p.tokens[p.pos].raw
	p.pos++
	if !strings.HasPrefix(strings.ToLower(ident), extrasPrefix) {
		p.refs[ident] = struct{}{}
	}

	if p.match(tokIn) {
		if !p.match(tokLBracket) {
			return nil, errors.New("visibility/expr: expected '[' after in")
		}
		var set []literal
		for !p.match(tokRBracket) {
			lit, err := p.literal()
			if err != nil {
				return nil, err
			}
			set = append(set, lit)
			if !p.match(tokComma) && !p.peek(tokRBracket) {
				return nil, errors.New("visibility/expr: expected ',' or ']'")
			}
		}
		return inNode{ident: ident, set: set}, nil
	}

	for _, op := range []tokenKind{tokEq, tokNeq, tokLt, tokLte, tokGt, tokGte} {
		if p.match(op) {
			lit, err := p.literal()
			if err != nil {
				return nil, err
			}
			if op != tokEq && op != tokNeq && lit.kind != tokNumber {
				return nil, fmt.Errorf("visibility/expr: ordering against non-number %q", lit.raw)
			}
			return compareNode{ident: ident, op: op, lit: lit}, nil
		}
	}
	return truthyNode{ident: ident}, nil
}

type literal struct {
	kind tokenKind
	raw  string
}

func (p *parser) literal() (literal, error) {
	if p.pos >= len(p.tokens) {
		return literal{}, errors.New("visibility/expr: missing literal")
	}
	tok := p.tokens[p.pos]
	p.pos++
	switch tok.kind {
	case tokString, tokNumber, tokBool:
		return literal{kind: tok.kind, raw: tok.raw}, nil
	case tokIdent:
		// Bare words compare as strings.
		return literal{kind: tokString, raw: tok.raw}, nil
	default:
		return literal{}, fmt.Errorf("visibility/expr: expected literal, got %q", tok.raw)
	}
}

type node interface {
	eval(ctx visibility.Context) (bool, error)
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(ctx)
}

type andNode struct{ left, right node }

func (n andNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(ctx)
}

type notNode struct{ inner node }

func (n notNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.inner.eval(ctx)
	return !ok, err
}

type truthyNode struct{ ident string }

func (n truthyNode) eval(ctx visibility.Context) (bool, error) {
	value, _ := lookup(ctx, n.ident)
	return truthy(value), nil
}

type compareNode struct {
	ident string
	op    tokenKind
	lit   literal
}

func (n compareNode) eval(ctx visibility.Context) (bool, error) {
	value, _ := lookup(ctx, n.ident)
	switch n.lit.kind {
	case tokBool:
		eq := truthy(value) == (n.lit.raw == "true")
		return eq == (n.op == tokEq), nil
	case tokNumber:
		want, _ := strconv.ParseFloat(n.lit.raw, 64)
		got, err := numfmt.Parse(value)
		if err != nil {
			// A blank or non-numeric value only satisfies "!=".
			return n.op == tokNeq, nil
		}
		switch n.op {
		case tokEq:
			return got == want, nil
		case tokNeq:
			return got != want, nil
		case tokLt:
			return got < want, nil
		case tokLte:
			return got <= want, nil
		case tokGt:
			return got > want, nil
		default:
			return got >= want, nil
		}
	default:
		eq := value == n.lit.raw
		return eq == (n.op == tokEq), nil
	}
}

type inNode struct {
	ident string
	set   []literal
}

func (n inNode) eval(ctx visibility.Context) (bool, error) {
	value, _ := lookup(ctx, n.ident)
	for _, lit := range n.set {
		if value == lit.raw {
			return true, nil
		}
	}
	return false, nil
}

const extrasPrefix = "extras."

func lookup(ctx visibility.Context, key string) (string, bool) {
	if strings.HasPrefix(strings.ToLower(key), extrasPrefix) {
		v, ok := ctx.Extras[key[len(extrasPrefix):]]
		if !ok || v == nil {
			return "", false
		}
		return fmt.Sprint(v), true
	}
	v, ok := ctx.Values[key]
	return v, ok
}

// truthy treats blank, "false", "0" and "off" as false.
func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "false", "0", "off", "no":
		return false
	default:
		return true
	}
}
