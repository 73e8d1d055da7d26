package typemodel

// Type is an in-memory DeclaredType. Hosts that already know the shape of
// their declarations, and tests, build these directly.
type Type struct {
	TypeName    string
	TypeKind    Kind
	Mods        ModifierSet
	Annots      []AnnotationRef
	Implements  []InterfaceRef
	Declaration SourceLocation
}

var _ DeclaredType = (*Type)(nil)

// NewClass creates a class-kind Type with the given canonical name
func NewClass(name string) *Type {
	return &Type{TypeName: name, TypeKind: KindClass, Mods: NewModifierSet()}
}

// NewType creates a Type of any kind
func NewType(name string, kind Kind) *Type {
	return &Type{TypeName: name, TypeKind: kind, Mods: NewModifierSet()}
}

// Annotated appends an annotation with the given canonical name
func (t *Type) Annotated(name string) *Type {
	t.Annots = append(t.Annots, AnnotationRef{Name: name})
	return t
}

// Implementing appends a directly implemented interface
func (t *Type) Implementing(raw string, args ...string) *Type {
	ref := InterfaceRef{RawName: raw}
	for _, a := range args {
		ref.Args = append(ref.Args, TypeArgument{Name: a})
	}
	t.Implements = append(t.Implements, ref)
	return t
}

// WithModifiers adds modifiers to the type
func (t *Type) WithModifiers(mods ...Modifier) *Type {
	if t.Mods == nil {
		t.Mods = NewModifierSet()
	}
	for _, m := range mods {
		t.Mods[m] = struct{}{}
	}
	return t
}

// At sets the declaration location
func (t *Type) At(file string, line int) *Type {
	t.Declaration = SourceLocation{File: file, Line: line}
	return t
}

func (t *Type) Name() string                 { return t.TypeName }
func (t *Type) Kind() Kind                   { return t.TypeKind }
func (t *Type) Modifiers() ModifierSet       { return t.Mods }
func (t *Type) Annotations() []AnnotationRef { return t.Annots }
func (t *Type) Interfaces() []InterfaceRef   { return t.Implements }
func (t *Type) Location() SourceLocation     { return t.Declaration }
