package processor

import (
	stderrors "errors"

	"github.com/toyz/repomap/internal/typemodel"
)

// ErrMissingTypeArgument is the cause attached to configuration errors
// raised for an unparameterized use of the tracked interface.
var ErrMissingTypeArgument = stderrors.New("interface reference has no type arguments")

// IsMarked reports whether t carries an annotation whose canonical name is
// exactly annotationName. Annotations on annotations are not followed.
func IsMarked(t typemodel.DeclaredType, annotationName string) bool {
	for _, a := range t.Annotations() {
		if a.Name == annotationName {
			return true
		}
	}
	return false
}

// IsConcrete reports whether t can be instantiated as-is
func IsConcrete(t typemodel.DeclaredType) bool {
	return !t.Modifiers().Has(typemodel.Abstract)
}

// ResolveInterface returns the first directly implemented interface of t
// whose erased name equals targetRawName. Only class-kind declarations
// qualify; interfaces implemented through embedded structs or through
// other interfaces are not considered.
func ResolveInterface(t typemodel.DeclaredType, targetRawName string) (typemodel.InterfaceRef, bool) {
	if !t.Kind().IsClass() {
		return typemodel.InterfaceRef{}, false
	}
	for _, ref := range t.Interfaces() {
		if typemodel.RawIdentity(ref) == targetRawName {
			return ref, true
		}
	}
	return typemodel.InterfaceRef{}, false
}

// FirstTypeArgument returns the first type argument of ref, unresolved
// beyond its canonical text.
func FirstTypeArgument(ref typemodel.InterfaceRef) (typemodel.TypeArgument, error) {
	if len(ref.Args) == 0 {
		return typemodel.TypeArgument{}, ErrMissingTypeArgument
	}
	return ref.Args[0], nil
}
