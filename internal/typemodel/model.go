// Package typemodel describes the declared types repomap inspects.
//
// The processor never talks to go/types directly; it consumes the
// DeclaredType interface so hosts other than the Go package loader (and
// tests) can feed it hand-built type models.
package typemodel

import (
	"fmt"
	"strings"
)

// Kind is the declaration kind of a type
type Kind int

const (
	KindOther Kind = iota
	KindClass
	KindInterface
	KindEnum
	KindAnnotation
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindAnnotation:
		return "annotation"
	default:
		return "other"
	}
}

// IsClass reports whether declarations of this kind can be instantiated
// as values carrying implemented interfaces.
func (k Kind) IsClass() bool {
	return k == KindClass
}

// Modifier is a declaration modifier
type Modifier string

const (
	// Abstract marks a declaration that cannot be used without further
	// instantiation. The Go host sets it on generic type declarations.
	Abstract Modifier = "abstract"
	Exported Modifier = "exported"
)

// ModifierSet is an unordered set of modifiers
type ModifierSet map[Modifier]struct{}

// NewModifierSet builds a set from the given modifiers
func NewModifierSet(mods ...Modifier) ModifierSet {
	set := make(ModifierSet, len(mods))
	for _, m := range mods {
		set[m] = struct{}{}
	}
	return set
}

// Has reports whether m is in the set
func (s ModifierSet) Has(m Modifier) bool {
	_, ok := s[m]
	return ok
}

// SourceLocation points at a declaration in source code
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// String returns file:line:column, omitting the parts that are unknown
func (l SourceLocation) String() string {
	switch {
	case l.File == "":
		return "unknown location"
	case l.Line == 0:
		return l.File
	case l.Column == 0:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
}

// AnnotationRef is an annotation attached to a declaration
type AnnotationRef struct {
	// Name is the canonical name of the annotation, e.g. "repomap::Repository"
	Name       string
	Parameters map[string]string
}

// TypeArgument is an opaque type reference identified by its canonical text
type TypeArgument struct {
	Name string
}

// String returns the canonical text
func (a TypeArgument) String() string {
	return a.Name
}

// InterfaceRef is an implemented interface as written at the declaration
// site, including any type arguments supplied there.
type InterfaceRef struct {
	// RawName is the canonical name with type arguments erased
	RawName string
	// Args are the type arguments in declaration order
	Args []TypeArgument
}

// String returns the canonical text, Raw[Arg1, Arg2] for instantiations
// and the raw name for unparameterized uses.
func (r InterfaceRef) String() string {
	if len(r.Args) == 0 {
		return r.RawName
	}
	args := make([]string, len(r.Args))
	for i, a := range r.Args {
		args[i] = a.Name
	}
	return r.RawName + "[" + strings.Join(args, ", ") + "]"
}

// RawIdentity erases the type arguments of ref and returns its raw canonical name
func RawIdentity(ref InterfaceRef) string {
	return ref.RawName
}

// Erase strips the type-argument list from canonical text, turning
// "pkg.CrudRepository[pkg.User]" into "pkg.CrudRepository".
func Erase(text string) string {
	if i := strings.IndexByte(text, '['); i >= 0 {
		return text[:i]
	}
	return text
}

// ParseInterfaceRef parses canonical text of the form Raw or
// Raw[Arg1, Arg2]. Arguments may themselves be instantiations; only
// top-level commas separate them.
func ParseInterfaceRef(text string) (InterfaceRef, error) {
	text = strings.TrimSpace(text)
	open := strings.IndexByte(text, '[')
	if open < 0 {
		if text == "" || strings.ContainsAny(text, "]") {
			return InterfaceRef{}, fmt.Errorf("invalid interface reference %q", text)
		}
		return InterfaceRef{RawName: text}, nil
	}
	if open == 0 || !strings.HasSuffix(text, "]") {
		return InterfaceRef{}, fmt.Errorf("invalid interface reference %q", text)
	}

	ref := InterfaceRef{RawName: text[:open]}
	body := text[open+1 : len(text)-1]
	depth, start := 0, 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return InterfaceRef{}, fmt.Errorf("unbalanced brackets in %q", text)
			}
		case ',':
			if depth == 0 {
				ref.Args = append(ref.Args, TypeArgument{Name: strings.TrimSpace(body[start:i])})
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return InterfaceRef{}, fmt.Errorf("unbalanced brackets in %q", text)
	}
	last := strings.TrimSpace(body[start:])
	if last == "" {
		return InterfaceRef{}, fmt.Errorf("empty type argument in %q", text)
	}
	ref.Args = append(ref.Args, TypeArgument{Name: last})
	for _, a := range ref.Args {
		if a.Name == "" {
			return InterfaceRef{}, fmt.Errorf("empty type argument in %q", text)
		}
	}
	return ref, nil
}

// Canonical rewrites interface reference text with the spacing String
// produces, so "a.Map[k.K,v.V]" becomes "a.Map[k.K, v.V]". Nested
// instantiations are rewritten too; arguments that are not references,
// such as map or slice types, are kept as written.
func Canonical(text string) (string, error) {
	ref, err := ParseInterfaceRef(text)
	if err != nil {
		return "", err
	}
	for i, a := range ref.Args {
		if !strings.ContainsRune(a.Name, '[') {
			continue
		}
		if inner, err := Canonical(a.Name); err == nil {
			ref.Args[i].Name = inner
		}
	}
	return ref.String(), nil
}

// DeclaredType is one declared type of the program being inspected
type DeclaredType interface {
	// Name returns the canonical name of the declaration
	Name() string
	Kind() Kind
	Modifiers() ModifierSet
	Annotations() []AnnotationRef
	// Interfaces returns the directly implemented interfaces in declaration order
	Interfaces() []InterfaceRef
	Location() SourceLocation
}
