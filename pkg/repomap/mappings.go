// Package repomap reads the repository mapping artifact at runtime.
//
// The artifact is written by the repomap generator and is usually shipped
// with the binary through embed.FS:
//
//	//go:embed META-INF-CUSTOM/curd-repos-mappings.properties
//	var resources embed.FS
//
//	mappings, err := repomap.Load(resources)
//	entity, ok := mappings.EntityType("example.com/shop/repository.CrudRepository[example.com/shop/model.User]")
package repomap

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/toyz/repomap/internal/processor"
	"github.com/toyz/repomap/internal/properties"
	"github.com/toyz/repomap/internal/typemodel"
)

// DefaultResource is where the generator writes the artifact
const DefaultResource = processor.DefaultResourceName

// Mapping is one interface instantiation and the entity type it manages
type Mapping struct {
	// Interface is the canonical instantiation, e.g. repo.Crud[model.User]
	Interface string

	// Entity is the canonical name of the first type argument
	Entity string
}

// Mappings is a read-only view of an artifact, in file order
type Mappings struct {
	index   map[string]string
	entries []Mapping
}

// Load reads DefaultResource from fsys
func Load(fsys fs.FS) (*Mappings, error) {
	return LoadResource(fsys, DefaultResource)
}

// LoadResource reads the artifact named name from fsys
func LoadResource(fsys fs.FS, name string) (*Mappings, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return m, nil
}

// Parse decodes an artifact. Keys are normalized to canonical spacing; a
// key listed twice keeps its first position and its last value.
func Parse(r io.Reader) (*Mappings, error) {
	entries, err := properties.Load(r)
	if err != nil {
		return nil, err
	}

	m := &Mappings{index: make(map[string]string, len(entries))}
	for _, e := range entries {
		key := normalize(e.Key)
		if _, seen := m.index[key]; !seen {
			m.entries = append(m.entries, Mapping{Interface: key})
		}
		m.index[key] = e.Value
	}
	for i := range m.entries {
		m.entries[i].Entity = m.index[m.entries[i].Interface]
	}
	return m, nil
}

// EntityType returns the entity type recorded for an interface
// instantiation. The key may use any spacing around its type arguments.
func (m *Mappings) EntityType(iface string) (string, bool) {
	if entity, ok := m.index[iface]; ok {
		return entity, true
	}
	entity, ok := m.index[normalize(iface)]
	return entity, ok
}

// Lookup is EntityType with the key built from the raw interface name and
// its type argument
func (m *Mappings) Lookup(rawInterface, typeArgument string) (string, bool) {
	return m.EntityType(Key(rawInterface, typeArgument))
}

// Interfaces lists the instantiations that map to entity
func (m *Mappings) Interfaces(entity string) []string {
	var result []string
	for _, e := range m.entries {
		if e.Entity == entity {
			result = append(result, e.Interface)
		}
	}
	return result
}

// Instantiations lists the mappings of one generic interface, given by its
// raw name, in file order
func (m *Mappings) Instantiations(rawInterface string) []Mapping {
	var result []Mapping
	for _, e := range m.entries {
		if typemodel.Erase(e.Interface) == rawInterface {
			result = append(result, e)
		}
	}
	return result
}

// Entries returns a copy of every mapping in file order
func (m *Mappings) Entries() []Mapping {
	return append([]Mapping(nil), m.entries...)
}

func (m *Mappings) Len() int {
	return len(m.entries)
}

// Key builds the canonical key for an instantiation with type arguments
func Key(rawInterface string, typeArguments ...string) string {
	ref := typemodel.InterfaceRef{RawName: rawInterface}
	for _, arg := range typeArguments {
		ref.Args = append(ref.Args, typemodel.TypeArgument{Name: arg})
	}
	return ref.String()
}

// normalize returns key in canonical form, or unchanged when it is not an
// interface reference
func normalize(key string) string {
	if canonical, err := typemodel.Canonical(key); err == nil {
		return canonical
	}
	return key
}
