package style

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	valueLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Color", Pattern: `#[0-9A-Fa-f]+`},
		{Name: "Number", Pattern: `[-+]?(?:\d+\.\d*|\.\d+|\d+)(?:px|em|rw|rh|c|%)?`},
		{Name: "String", Pattern: `"[^"]*"|'[^']*'`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[(),]`},
	})

	valueParser = participle.MustBuild[Value](
		participle.Lexer(valueLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
)

// Value 是一个样式属性值：以逗号分隔的若干组，每组由空白分隔的若干项组成。
// 例如 `"Noto Sans", monospaceSansSerif` 是两组，`80% 15%` 是一组两项。
type Value struct {
	Groups []*Group `parser:"@@ ( ',' @@ )*"`
}

// Group 是空白分隔的一组项。
type Group struct {
	Terms []*Term `parser:"@@+"`
}

// Term 是单个值项。
type Term struct {
	Func   *Func          `parser:"  @@"`
	Color  *string        `parser:"| @Color"`
	Number *string        `parser:"| @Number"`
	String *StringLiteral `parser:"| @String"`
	Ident  *string        `parser:"| @Ident"`
}

// Func 是函数形式的值，例如 rgba(0, 0, 0, 128)。
type Func struct {
	Name string  `parser:"@Ident '('"`
	Args []*Term `parser:"( @@ ( ',' @@ )* )? ')'"`
}

// StringLiteral 在捕获时去掉单引号或双引号。
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	v := values[0]
	if len(v) < 2 {
		return fmt.Errorf("invalid string literal %q", v)
	}
	*s = StringLiteral(v[1 : len(v)-1])
	return nil
}

// ParseValue 解析样式属性值。
func ParseValue(s string) (*Value, error) {
	v, err := valueParser.ParseString("", strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidValue, s, err)
	}
	return v, nil
}

// Terms 返回只有一组时的全部项；多组时报错。
func (v *Value) Terms() ([]*Term, error) {
	if len(v.Groups) != 1 {
		return nil, fmt.Errorf("%w: expected a single group, got %d", ErrInvalidValue, len(v.Groups))
	}
	return v.Groups[0].Terms, nil
}

// Keyword 返回只由一个标识符构成的值。
func (v *Value) Keyword() (string, bool) {
	terms, err := v.Terms()
	if err != nil || len(terms) != 1 || terms[0].Ident == nil {
		return "", false
	}
	return *terms[0].Ident, true
}

// Text 把项还原为文本（字符串去引号，标识符原样）。
func (t *Term) Text() string {
	switch {
	case t.String != nil:
		return string(*t.String)
	case t.Ident != nil:
		return *t.Ident
	case t.Number != nil:
		return *t.Number
	case t.Color != nil:
		return *t.Color
	case t.Func != nil:
		args := make([]string, len(t.Func.Args))
		for i, a := range t.Func.Args {
			args[i] = a.Text()
		}
		return t.Func.Name + "(" + strings.Join(args, ",") + ")"
	}
	return ""
}
