// Package dsl 解析 .writemate 字帖描述文件。
//
// 一个文件可以包含多个 sheet 区块，每个区块描述一张字帖：
//
//	sheet "蘭亭集序" {
//	  template: article-vertical
//	  font: chenyuluoyan-thin
//	  size: 46px
//	  grid: mi
//	  text: "永和九年，歲在癸丑。"
//	}
package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+|\.\d+)(?:px|pt|mm|cm|in|%)?`},
		{Name: "String", Pattern: "\"(?:\\\\.|[^\"])*\"|`[^`]*`"},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[:;,]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	fileParser = participle.MustBuild[File](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// File is the root AST node for a .writemate file.
type File struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Sheets []*Sheet       `parser:"Newline* ( @@ Newline* )*"`
}

// Sheet 描述一张字帖。
type Sheet struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    StringLiteral  `parser:"'sheet' @String"`
	Entries []*Assignment  `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"':' Newline* @@"`
}

// Value represents a property value.
type Value struct {
	Pos    lexer.Position `parser:"" json:"-"`
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Ident  *string        `parser:"| @Ident"`
}

// Raw 返回值的文本形式（字符串已去引号）。
func (v *Value) Raw() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// Kind returns the human-readable value type.
func (v *Value) Kind() string {
	switch {
	case v == nil:
		return "unknown"
	case v.String != nil:
		return "string"
	case v.Number != nil:
		return "number"
	case v.Color != nil:
		return "color"
	case v.Ident != nil:
		return "ident"
	default:
		return "unknown"
	}
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses DSL content from an io.Reader. filename is only used in positions.
func Parse(filename string, r io.Reader) (*File, error) {
	return fileParser.Parse(filename, r)
}

// ParseString parses DSL content from a string.
func ParseString(input string) (*File, error) {
	return fileParser.ParseString("", input)
}
