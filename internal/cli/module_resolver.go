package cli

import (
	"fmt"
	"path"
	"strings"

	"github.com/toyz/repomap/internal/loader"
	"github.com/toyz/repomap/internal/utils"
)

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	gomod *utils.GoModParser
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{gomod: utils.NewGoModParser()}
}

// Resolve finds the module governing dir
func (r *ModuleResolver) Resolve(dir string) (*utils.ModuleInfo, error) {
	info, err := r.gomod.FindModule(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to determine module: %w", err)
	}
	return info, nil
}

// ResolveInterface expands a module-relative interface name. "./repository.CrudRepository"
// in module example.com/shop becomes "example.com/shop/repository.CrudRepository";
// "./.CrudRepository" names a type in the module root package. With the
// name qualifier only the last path element is kept, which assumes the
// package is named after its directory. Other names are returned unchanged.
func (r *ModuleResolver) ResolveInterface(name, modulePath string, qualifier loader.Qualifier) (string, error) {
	if !strings.HasPrefix(name, "./") {
		return name, nil
	}
	if modulePath == "" {
		return "", fmt.Errorf("cannot resolve %q without a module path", name)
	}

	rel := strings.TrimPrefix(name, "./")
	dot := strings.LastIndex(rel, ".")
	if dot < 0 || dot == len(rel)-1 {
		return "", fmt.Errorf("interface %q must have the form ./pkg/dir.TypeName", name)
	}

	pkgDir, typeName := rel[:dot], rel[dot+1:]
	pkgPath := path.Join(modulePath, pkgDir)
	if qualifier == loader.QualifyName {
		return path.Base(pkgPath) + "." + typeName, nil
	}
	return pkgPath + "." + typeName, nil
}
