// Package query parses unit filter expressions such as
//
//	locale = "de-DE" and (prop.x-segment-id = "0" or text ~ "hours")
//
// and evaluates them against parsed translation units.
package query

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/tmxparser/core/errors"
	"github.com/FocuswithJustin/tmxparser/core/tmx"
)

// Fields a condition can test.
const (
	FieldTUID     = "tuid"
	FieldSegType  = "segtype"
	FieldLocale   = "locale"
	FieldProperty = "prop"
	FieldText     = "text"
)

//nolint:govet // participle grammar tags are not standard struct tags
type orExpr struct {
	And []*andExpr `@@ ( "or" @@ )*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type andExpr struct {
	Terms []*term `@@ ( "and" @@ )*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type term struct {
	Not   *term      `  "not" @@`
	Group *orExpr    `| "(" @@ ")"`
	Cond  *condition `| @@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type condition struct {
	Pos       lexer.Position
	Field     string  `@Ident`
	Qualifier *string `( "." ( @Ident | @String ) )?`
	Op        string  `@Op`
	Value     string  `@String`
}

var filterLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Op", Pattern: `!=|!~|=|~`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_\-]*`},
	{Name: "Punct", Pattern: `[.()]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var filterParser = participle.MustBuild[orExpr](
	participle.Lexer(filterLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
	participle.CaseInsensitive("Ident"),
)

type predicate func(*tmx.Unit) bool

// Filter is a compiled filter expression. The zero value and a nil *Filter
// match every unit.
type Filter struct {
	src  string
	pred predicate
}

// Parse compiles a filter expression. An empty expression matches everything.
//
// A condition is FIELD OP "VALUE" where FIELD is one of tuid, segtype,
// locale, prop.NAME, text or text.LOCALE, and OP is = (equal), != (not
// equal), ~ (contains) or !~ (does not contain). Conditions combine with
// not, and, or and parentheses; and binds tighter than or.
func Parse(s string) (*Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return &Filter{}, nil
	}

	ast, err := filterParser.ParseString("", s)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid filter %q: %v", s, err)
	}
	pred, err := compileOr(ast)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid filter %q: %v", s, err)
	}
	return &Filter{src: s, pred: pred}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) *Filter {
	f, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return f
}

// Match reports whether u satisfies the filter.
func (f *Filter) Match(u *tmx.Unit) bool {
	if f == nil || f.pred == nil {
		return true
	}
	return f.pred(u)
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.src
}

func compileOr(e *orExpr) (predicate, error) {
	preds := make([]predicate, 0, len(e.And))
	for _, a := range e.And {
		p, err := compileAnd(a)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return func(u *tmx.Unit) bool {
		for _, p := range preds {
			if p(u) {
				return true
			}
		}
		return false
	}, nil
}

func compileAnd(e *andExpr) (predicate, error) {
	preds := make([]predicate, 0, len(e.Terms))
	for _, t := range e.Terms {
		p, err := compileTerm(t)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return func(u *tmx.Unit) bool {
		for _, p := range preds {
			if !p(u) {
				return false
			}
		}
		return true
	}, nil
}

func compileTerm(t *term) (predicate, error) {
	switch {
	case t.Not != nil:
		p, err := compileTerm(t.Not)
		if err != nil {
			return nil, err
		}
		return func(u *tmx.Unit) bool { return !p(u) }, nil
	case t.Group != nil:
		return compileOr(t.Group)
	default:
		return compileCondition(t.Cond)
	}
}

func compileCondition(c *condition) (predicate, error) {
	field := strings.ToLower(c.Field)
	test, negate := compare(c.Op, c.Value)

	var pred predicate
	switch field {
	case FieldTUID, FieldSegType, FieldLocale:
		if c.Qualifier != nil {
			return nil, fmt.Errorf("%s: field %s takes no qualifier", c.Pos, field)
		}
	}

	switch field {
	case FieldTUID:
		pred = func(u *tmx.Unit) bool { return test(u.TUID) }
	case FieldSegType:
		pred = func(u *tmx.Unit) bool { return test(u.SegType) }
	case FieldLocale:
		pred = func(u *tmx.Unit) bool {
			for _, v := range u.Variants {
				if v.Locale != nil && test(*v.Locale) {
					return true
				}
			}
			return false
		}
	case FieldProperty:
		if c.Qualifier == nil || *c.Qualifier == "" {
			return nil, fmt.Errorf("%s: prop needs a name, as in prop.x-segment-id", c.Pos)
		}
		name := *c.Qualifier
		pred = func(u *tmx.Unit) bool {
			pv, ok := u.Properties.Get(name)
			return ok && pv != nil && test(pv.Value)
		}
	case FieldText:
		if c.Qualifier != nil {
			lang := *c.Qualifier
			pred = func(u *tmx.Unit) bool {
				v := u.Variant(lang)
				return v != nil && test(v.Text())
			}
			break
		}
		pred = func(u *tmx.Unit) bool {
			for _, v := range u.Variants {
				if test(v.Text()) {
					return true
				}
			}
			return false
		}
	default:
		return nil, fmt.Errorf("%s: unknown field %q", c.Pos, c.Field)
	}

	if negate {
		return func(u *tmx.Unit) bool { return !pred(u) }, nil
	}
	return pred, nil
}

// compare returns the positive form of op as a string test. Negated
// operators report true so the caller can invert the whole condition:
// locale != "de" means no variant is German.
func compare(op, value string) (func(string) bool, bool) {
	switch op {
	case "=":
		return func(s string) bool { return s == value }, false
	case "!=":
		return func(s string) bool { return s == value }, true
	case "~":
		return func(s string) bool { return strings.Contains(s, value) }, false
	default: // "!~"
		return func(s string) bool { return strings.Contains(s, value) }, true
	}
}
