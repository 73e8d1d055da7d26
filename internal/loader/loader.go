// Package loader is the Go host for the processor. It loads packages with
// golang.org/x/tools/go/packages and adapts every package-scope type
// declaration to a typemodel.DeclaredType.
package loader

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/toyz/repomap/internal/annotations"
	"github.com/toyz/repomap/internal/errors"
	"github.com/toyz/repomap/internal/processor"
	"github.com/toyz/repomap/internal/typemodel"
)

// Qualifier selects how package prefixes appear in canonical names
type Qualifier int

const (
	// QualifyPath prefixes names with the full import path
	QualifyPath Qualifier = iota
	// QualifyName prefixes names with the package name only
	QualifyName
)

func (q Qualifier) String() string {
	if q == QualifyName {
		return "name"
	}
	return "path"
}

// ParseQualifier parses "path" or "name"
func ParseQualifier(s string) (Qualifier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "path":
		return QualifyPath, nil
	case "name":
		return QualifyName, nil
	}
	return QualifyPath, fmt.Errorf("unknown qualifier %q (want path or name)", s)
}

func (q Qualifier) qualify(pkg *types.Package) string {
	if q == QualifyName {
		return pkg.Name()
	}
	return pkg.Path()
}

// Config controls which packages are loaded and how names are rendered
type Config struct {
	// Dir is the directory patterns are resolved from
	Dir string
	// Patterns are go list package patterns; defaults to ./...
	Patterns []string
	// Tests includes _test.go files
	Tests bool
	// Qualifier selects path or name qualified canonical names
	Qualifier Qualifier
	// Annotation is the canonical marker name. Only directives in its
	// namespace are parsed; defaults to processor.DefaultAnnotation.
	Annotation string
}

// Package is one loaded package with its adapted type declarations
type Package struct {
	Path  string
	Name  string
	Types []*typemodel.Type
}

// Loader loads Go packages and adapts their declarations
type Loader struct {
	config      Config
	parser      *annotations.Parser
	diagnostics processor.Diagnostics
}

// New creates a loader
func New(config Config) *Loader {
	if len(config.Patterns) == 0 {
		config.Patterns = []string{"./..."}
	}
	if config.Dir == "" {
		config.Dir = "."
	}
	if config.Annotation == "" {
		config.Annotation = processor.DefaultAnnotation
	}
	return &Loader{
		config: config,
		parser: annotations.NewParser(annotations.Namespace(config.Annotation)),
	}
}

// NewWithDiagnostics creates a loader that reports progress through diagnostics
func NewWithDiagnostics(config Config, diagnostics processor.Diagnostics) *Loader {
	l := New(config)
	l.diagnostics = diagnostics
	return l
}

const loadMode = packages.NeedTypes | packages.NeedTypesInfo |
	packages.NeedSyntax | packages.NeedName | packages.NeedFiles

// Load type-checks the configured patterns and returns the packages sorted
// by import path. Any package or annotation error is fatal.
func (l *Loader) Load(ctx context.Context) ([]*Package, error) {
	pattern := strings.Join(l.config.Patterns, " ")
	root, err := filepath.Abs(l.config.Dir)
	if err != nil {
		return nil, errors.WrapFileSystemError("resolve", l.config.Dir, err)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     root,
		Tests:   l.config.Tests,
	}

	pkgs, err := packages.Load(cfg, l.config.Patterns...)
	if err != nil {
		return nil, errors.LoadError(pattern, err)
	}

	var loadErrs *errors.MultipleErrors
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errors.AddToMultiple(&loadErrs, errors.PackageError(pkg.PkgPath, e.Msg, l.parsePos(root, e.Pos)))
		}
	}
	if loadErrs != nil {
		return nil, errors.LoadError(pattern, loadErrs)
	}

	selected := selectPackages(pkgs)

	var syntaxErrs *errors.MultipleErrors
	result := make([]*Package, 0, len(selected))
	for _, pkg := range selected {
		adapted, errs := l.adaptPackage(root, pkg)
		for _, e := range errs {
			errors.AddToMultiple(&syntaxErrs, e)
		}
		result = append(result, adapted)
		l.debug("Loaded %s: %d type declaration(s)", pkg.PkgPath, len(adapted.Types))
	}
	if err := syntaxErrs.ErrorOrNil(); err != nil {
		return nil, err
	}

	return result, nil
}

// Host loads the packages and returns a processor host delivering one
// round per package.
func (l *Loader) Host(ctx context.Context) (*Host, error) {
	pkgs, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return NewHost(pkgs), nil
}

// selectPackages drops test binaries, keeps the variant with the most
// files per import path and sorts by import path.
func selectPackages(pkgs []*packages.Package) []*packages.Package {
	byPath := make(map[string]*packages.Package, len(pkgs))
	for _, pkg := range pkgs {
		if strings.HasSuffix(pkg.PkgPath, ".test") {
			continue
		}
		if prev, ok := byPath[pkg.PkgPath]; ok && len(prev.Syntax) >= len(pkg.Syntax) {
			continue
		}
		byPath[pkg.PkgPath] = pkg
	}

	selected := make([]*packages.Package, 0, len(byPath))
	for _, pkg := range byPath {
		selected = append(selected, pkg)
	}
	sort.Slice(selected, func(i, j int) bool {
		return selected[i].PkgPath < selected[j].PkgPath
	})
	return selected
}

func (l *Loader) adaptPackage(root string, pkg *packages.Package) (*Package, []errors.RepomapError) {
	result := &Package{Path: pkg.PkgPath, Name: pkg.Name}
	enums := enumTypes(pkg.Types)

	var errs []errors.RepomapError
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				ts := spec.(*ast.TypeSpec)
				if ts.Assign.IsValid() {
					continue
				}
				obj, ok := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
				if !ok {
					continue
				}

				doc := ts.Doc
				if doc == nil && !gen.Lparen.IsValid() {
					doc = gen.Doc
				}
				annots, err := l.parser.ExtractFromDoc(doc, pkg.Fset)
				if err != nil {
					be, ok := err.(*errors.BaseError)
					if !ok {
						be = errors.Wrap(errors.SyntaxErrorCode, "invalid annotation", err)
					}
					loc := be.Location()
					loc.File = relativePath(root, loc.File)
					errs = append(errs, be.WithLocation(loc))
					continue
				}

				t := l.adaptType(obj, ts, enums[obj])
				for _, a := range annots {
					t.Annots = append(t.Annots, a.Ref())
				}
				pos := pkg.Fset.Position(ts.Name.Pos())
				t.Declaration = typemodel.SourceLocation{
					File:   relativePath(root, pos.Filename),
					Line:   pos.Line,
					Column: pos.Column,
				}
				result.Types = append(result.Types, t)
			}
		}
	}
	return result, errs
}

func (l *Loader) adaptType(obj *types.TypeName, ts *ast.TypeSpec, hasConstants bool) *typemodel.Type {
	name := l.config.Qualifier.qualify(obj.Pkg()) + "." + obj.Name()
	underlying := obj.Type().Underlying()

	kind := typemodel.KindOther
	switch underlying.(type) {
	case *types.Struct:
		kind = typemodel.KindClass
	case *types.Interface:
		kind = typemodel.KindInterface
	case *types.Basic:
		if hasConstants {
			kind = typemodel.KindEnum
		}
	}

	t := typemodel.NewType(name, kind)
	if ts.TypeParams != nil && ts.TypeParams.NumFields() > 0 {
		t.WithModifiers(typemodel.Abstract)
	}
	if obj.Exported() {
		t.WithModifiers(typemodel.Exported)
	}

	if st, ok := underlying.(*types.Struct); ok {
		t.Implements = l.embeddedInterfaces(st)
	}
	return t
}

// embeddedInterfaces returns the interfaces a struct embeds directly, in
// field order. Interfaces promoted through embedded structs are not included.
func (l *Loader) embeddedInterfaces(st *types.Struct) []typemodel.InterfaceRef {
	var refs []typemodel.InterfaceRef
	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		if !field.Embedded() || !types.IsInterface(field.Type()) {
			continue
		}
		named, ok := types.Unalias(field.Type()).(*types.Named)
		if !ok || named.Obj().Pkg() == nil {
			// predeclared interfaces such as error and any
			continue
		}
		refs = append(refs, l.interfaceRef(named))
	}
	return refs
}

func (l *Loader) interfaceRef(named *types.Named) typemodel.InterfaceRef {
	origin := named.Origin().Obj()
	ref := typemodel.InterfaceRef{
		RawName: l.config.Qualifier.qualify(origin.Pkg()) + "." + origin.Name(),
	}
	qualifier := func(p *types.Package) string { return l.config.Qualifier.qualify(p) }
	args := named.TypeArgs()
	for i := 0; i < args.Len(); i++ {
		ref.Args = append(ref.Args, typemodel.TypeArgument{Name: types.TypeString(args.At(i), qualifier)})
	}
	return ref
}

// enumTypes returns the package's named basic types that have constants
// declared with them.
func enumTypes(pkg *types.Package) map[*types.TypeName]bool {
	enums := make(map[*types.TypeName]bool)
	if pkg == nil {
		return enums
	}
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		c, ok := scope.Lookup(name).(*types.Const)
		if !ok {
			continue
		}
		named, ok := c.Type().(*types.Named)
		if !ok || named.Obj().Pkg() != pkg {
			continue
		}
		enums[named.Obj()] = true
	}
	return enums
}

// parsePos turns a packages.Error position ("file:line:col") into a location
func (l *Loader) parsePos(root, pos string) errors.SourceLocation {
	if pos == "" || pos == "-" {
		return errors.SourceLocation{}
	}
	loc := errors.SourceLocation{File: pos}
	parts := strings.Split(pos, ":")
	if len(parts) >= 3 {
		line, lerr := strconv.Atoi(parts[len(parts)-2])
		col, cerr := strconv.Atoi(parts[len(parts)-1])
		if lerr == nil && cerr == nil {
			loc = errors.SourceLocation{File: strings.Join(parts[:len(parts)-2], ":"), Line: line, Column: col}
		}
	} else if len(parts) == 2 {
		if line, err := strconv.Atoi(parts[1]); err == nil {
			loc = errors.SourceLocation{File: parts[0], Line: line}
		}
	}
	loc.File = relativePath(root, loc.File)
	return loc
}

func relativePath(root, path string) string {
	if path == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func (l *Loader) debug(format string, args ...interface{}) {
	if l.diagnostics != nil {
		l.diagnostics.Debug(format, args...)
	}
}
