package annotations

import (
	"sort"

	"github.com/toyz/repomap/internal/typemodel"
)

// DefaultNamespace is the namespace of repomap's own annotations
const DefaultNamespace = "repomap"

// Separator joins an annotation's namespace and name
const Separator = "::"

// Annotation is a parsed comment directive such as
//
//	//repomap::Repository -value=users
type Annotation struct {
	Namespace  string
	Name       string
	Parameters map[string]string // flags without a value are stored as "true"
	Location   typemodel.SourceLocation
	Raw        string // original comment text
}

// CanonicalName returns "<namespace>::<name>"
func (a *Annotation) CanonicalName() string {
	return a.Namespace + Separator + a.Name
}

// Get returns a parameter value with optional default
func (a *Annotation) Get(key string, defaultValue ...string) string {
	if v, ok := a.Parameters[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// HasParameter checks if a parameter exists
func (a *Annotation) HasParameter(key string) bool {
	_, ok := a.Parameters[key]
	return ok
}

// ParameterKeys returns the parameter names in sorted order
func (a *Annotation) ParameterKeys() []string {
	keys := make([]string, 0, len(a.Parameters))
	for k := range a.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Ref converts the annotation into the type model's view of it
func (a *Annotation) Ref() typemodel.AnnotationRef {
	params := make(map[string]string, len(a.Parameters))
	for k, v := range a.Parameters {
		params[k] = v
	}
	return typemodel.AnnotationRef{Name: a.CanonicalName(), Parameters: params}
}
