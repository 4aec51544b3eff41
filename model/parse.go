// parse.go - S-Ausdruecke einlesen
// Enthält: Lexer (lexmachine), Parse, ParseAll, Tippfehler-Vorschlaege
package model

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/jakobhartmann/tensat/egraph"
)

// ErrSyntax is returned for malformed S-expressions.
var ErrSyntax = errors.New("syntax error")

const (
	tokOpen = iota
	tokClose
	tokAtom
)

var lexer = sync.OnceValues(func() (*lexmachine.Lexer, error) {
	token := func(id int) lexmachine.Action {
		return func(s *lexmachine.Scanner, m *machines.Match) (any, error) {
			return s.Token(id, string(m.Bytes), m), nil
		}
	}
	skip := func(*lexmachine.Scanner, *machines.Match) (any, error) {
		return nil, nil
	}

	l := lexmachine.NewLexer()
	l.Add([]byte(`;[^\n]*`), skip)
	l.Add([]byte(`( |\t|\n|\r)+`), skip)
	l.Add([]byte(`\(`), token(tokOpen))
	l.Add([]byte(`\)`), token(tokClose))
	l.Add([]byte(`[^ \t\r\n\(\);]+`), token(tokAtom))
	if err := l.Compile(); err != nil {
		return nil, err
	}
	return l, nil
})

func tokenize(src string) ([]*lexmachine.Token, error) {
	l, err := lexer()
	if err != nil {
		return nil, errors.Wrap(err, "compile lexer")
	}

	s, err := l.Scanner([]byte(src))
	if err != nil {
		return nil, errors.Wrap(err, "scan")
	}

	var toks []*lexmachine.Token
	for tok, err, eos := s.Next(); !eos; tok, err, eos = s.Next() {
		if ui, ok := err.(*machines.UnconsumedInput); ok {
			return nil, errors.Wrapf(ErrSyntax, "%d:%d: unexpected input", ui.FailLine, ui.FailColumn)
		} else if err != nil {
			return nil, errors.Wrap(err, "scan")
		}
		toks = append(toks, tok.(*lexmachine.Token))
	}
	return toks, nil
}

type parser struct {
	toks []*lexmachine.Token
	pos  int
	expr Expr
}

// Parse reads exactly one term and checks it.
func Parse(src string) (Expr, error) {
	exprs, err := ParseAll(src)
	if err != nil {
		return nil, err
	}

	switch len(exprs) {
	case 0:
		return nil, errors.Wrap(ErrSyntax, "no term")
	case 1:
		return exprs[0], nil
	default:
		return nil, errors.Wrapf(ErrSyntax, "expected one term, got %d", len(exprs))
	}
}

// ParseAll reads every top-level term of src. Each term is checked.
func ParseAll(src string) ([]Expr, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}
	var exprs []Expr
	for p.pos < len(p.toks) {
		p.expr = nil
		if _, err := p.term(); err != nil {
			return nil, err
		}
		if err := p.expr.Check(); err != nil {
			return nil, err
		}
		exprs = append(exprs, p.expr)
	}
	return exprs, nil
}

// MustParse is like Parse but panics on error.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

func (p *parser) next() (*lexmachine.Token, error) {
	if p.pos >= len(p.toks) {
		return nil, errors.Wrap(ErrSyntax, "unexpected end of input")
	}
	tok := p.toks[p.pos]
	p.pos++
	return tok, nil
}

func (p *parser) errorf(tok *lexmachine.Token, format string, args ...any) error {
	return errors.Wrapf(ErrSyntax, "%d:%d: %s", tok.StartLine, tok.StartColumn, fmt.Sprintf(format, args...))
}

// term parses one term and returns its position in p.expr.
func (p *parser) term() (egraph.ID, error) {
	tok, err := p.next()
	if err != nil {
		return 0, err
	}

	switch tok.Type {
	case tokAtom:
		n, err := p.atom(tok)
		if err != nil {
			return 0, err
		}
		return p.expr.Add(n), nil
	case tokClose:
		return 0, p.errorf(tok, "unexpected )")
	}

	head, err := p.next()
	if err != nil {
		return 0, err
	}
	if head.Type != tokAtom {
		return 0, p.errorf(head, "expected operator")
	}
	op, err := p.lookup(head)
	if err != nil {
		return 0, err
	}

	ids := make([]egraph.ID, 0, op.Arity())
	for {
		if p.pos < len(p.toks) && p.toks[p.pos].Type == tokClose {
			p.pos++
			break
		}
		id, err := p.term()
		if err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}

	if len(ids) != op.Arity() {
		return 0, p.errorf(head, "%s takes %d operands, got %d", op, op.Arity(), len(ids))
	}

	n := Node{Op: op}
	copy(n.Args[:], ids)
	return p.expr.Add(n), nil
}

func (p *parser) atom(tok *lexmachine.Token) (Node, error) {
	lexeme := string(tok.Lexeme)
	if v, err := strconv.Atoi(lexeme); err == nil {
		return Num(v), nil
	}

	if op, ok := LookupOp(lexeme); ok {
		if op.Arity() != 0 {
			return Node{}, p.errorf(tok, "%s takes %d operands", op, op.Arity())
		}
		return New(op), nil
	}
	return Var(lexeme), nil
}

func (p *parser) lookup(tok *lexmachine.Token) (Op, error) {
	lexeme := string(tok.Lexeme)
	if op, ok := LookupOp(lexeme); ok {
		return op, nil
	}
	if s := suggest(lexeme); s != "" {
		return OpInvalid, p.errorf(tok, "unknown operator %q, did you mean %q?", lexeme, s)
	}
	return OpInvalid, p.errorf(tok, "unknown operator %q", lexeme)
}

// suggest returns the closest operator token within an edit distance of 2.
func suggest(s string) string {
	best, bestDist := "", 3
	for _, op := range Ops() {
		if op.IsLeaf() {
			continue
		}
		if d := levenshtein.ComputeDistance(s, op.String()); d < bestDist {
			best, bestDist = op.String(), d
		}
	}
	return best
}
