package annotations

import (
	"fmt"
	"go/ast"
	"go/token"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/repomap/internal/errors"
	"github.com/toyz/repomap/internal/typemodel"
)

// directive is the grammar root: Namespace "::" Name Param*
type directive struct {
	Namespace string   `parser:"@Word Sep"`
	Name      string   `parser:"@Word"`
	Params    []*param `parser:"@@*"`
}

// param is "-key" or "-key=value"
type param struct {
	Key   string  `parser:"Dash @Word"`
	Value *string `parser:"( Equals @(String | Word) )?"`
}

// directivePrefix recognizes comments that look like an annotation at all.
// Ordinary comments and //go: pragmas never match.
var directivePrefix = regexp.MustCompile(`^//\s*([A-Za-z_][A-Za-z0-9_]*)::`)

// Parser parses repomap-style comment directives using alecthomas/participle.
// ExtractFromDoc only parses directives in the parser's namespaces; other
// tools' directives and prose such as "// Note:: ..." are left alone.
type Parser struct {
	parser     *participle.Parser[directive]
	namespaces map[string]bool
}

// NewParser creates a directive parser for the given namespaces, or for
// DefaultNamespace when none are given
func NewParser(namespaces ...string) *Parser {
	if len(namespaces) == 0 {
		namespaces = []string{DefaultNamespace}
	}
	handled := make(map[string]bool, len(namespaces))
	for _, ns := range namespaces {
		handled[ns] = true
	}

	lex := lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Sep", Pattern: `::`},
		{Name: "String", Pattern: `"(\\"|[^"])*"`},
		{Name: "Dash", Pattern: `-`},
		{Name: "Equals", Pattern: `=`},
		{Name: "Word", Pattern: `[^\s"=:\-][^\s"=:]*`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	return &Parser{
		parser: participle.MustBuild[directive](
			participle.Lexer(lex),
			participle.Elide("Whitespace"),
			participle.UseLookahead(2),
		),
		namespaces: handled,
	}
}

// IsDirective reports whether a raw comment line is an annotation candidate
func IsDirective(comment string) bool {
	return directivePrefix.MatchString(strings.TrimSpace(comment))
}

// NamespaceOf returns the namespace of a directive comment
func NamespaceOf(comment string) (string, bool) {
	m := directivePrefix.FindStringSubmatch(strings.TrimSpace(comment))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Namespace returns the namespace part of a canonical annotation name,
// "repomap" for "repomap::Repository"
func Namespace(canonical string) string {
	if i := strings.Index(canonical, Separator); i >= 0 {
		return canonical[:i]
	}
	return canonical
}

// Handles reports whether comment is a directive in one of the parser's namespaces
func (p *Parser) Handles(comment string) bool {
	ns, ok := NamespaceOf(comment)
	return ok && p.namespaces[ns]
}

// Parse parses a single comment line. The comment must satisfy IsDirective.
func (p *Parser) Parse(comment string, loc typemodel.SourceLocation) (*Annotation, error) {
	text := strings.TrimSpace(comment)
	if !IsDirective(text) {
		return nil, fmt.Errorf("not an annotation: %q", comment)
	}
	body := strings.TrimSpace(strings.TrimPrefix(text, "//"))

	parsed, err := p.parser.ParseString("", body)
	if err != nil {
		return nil, err
	}

	if !token.IsIdentifier(parsed.Namespace) {
		return nil, fmt.Errorf("invalid annotation namespace %q", parsed.Namespace)
	}
	if !token.IsIdentifier(parsed.Name) {
		return nil, fmt.Errorf("invalid annotation name %q", parsed.Name)
	}

	annotation := &Annotation{
		Namespace:  parsed.Namespace,
		Name:       parsed.Name,
		Parameters: make(map[string]string, len(parsed.Params)),
		Location:   loc,
		Raw:        comment,
	}

	for _, prm := range parsed.Params {
		if _, dup := annotation.Parameters[prm.Key]; dup {
			return nil, fmt.Errorf("duplicate parameter '%s'", prm.Key)
		}
		value := "true"
		if prm.Value != nil {
			value = *prm.Value
			if strings.HasPrefix(value, `"`) {
				unquoted, err := strconv.Unquote(value)
				if err != nil {
					return nil, fmt.Errorf("parameter '%s': %w", prm.Key, err)
				}
				value = unquoted
			}
		}
		annotation.Parameters[prm.Key] = value
	}

	return annotation, nil
}

// ExtractFromDoc parses every directive of the parser's namespaces in a
// declaration's doc comment. Other comments are ignored; a malformed
// directive in a handled namespace is an error.
func (p *Parser) ExtractFromDoc(doc *ast.CommentGroup, fset *token.FileSet) ([]*Annotation, error) {
	if doc == nil {
		return nil, nil
	}

	var result []*Annotation
	for _, c := range doc.List {
		if !p.Handles(c.Text) {
			continue
		}

		loc := typemodel.SourceLocation{}
		if fset != nil {
			pos := fset.Position(c.Slash)
			loc = typemodel.SourceLocation{File: pos.Filename, Line: pos.Line, Column: pos.Column}
		}

		annotation, err := p.Parse(c.Text, loc)
		if err != nil {
			return nil, errors.AnnotationSyntaxError(strings.TrimSpace(c.Text), errors.SourceLocation{
				File:   loc.File,
				Line:   loc.Line,
				Column: loc.Column,
			}, err)
		}
		result = append(result, annotation)
	}
	return result, nil
}
