package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/repomap/internal/errors"
	"github.com/toyz/repomap/internal/utils"
)

var shopFiles = map[string]string{
	"go.mod": "module example.com/shop\n\ngo 1.18\n",
	"model/model.go": `package model

type User struct{ ID int }

type Order struct{ ID int }
`,
	"repository/crud.go": `package repository

type CrudRepository[E any] interface {
	Save(entity E) error
}
`,
	"repository/stores.go": `package repository

import "example.com/shop/model"

//repomap::Repository
type UserRepository struct {
	CrudRepository[model.User]
}

//repomap::Repository
type LegacyUserRepository struct {
	CrudRepository[model.User]
}

//repomap::Repository
type OrderRepository struct {
	CrudRepository[model.Order]
}

type UnmarkedRepository struct {
	CrudRepository[string]
}
`,
}

func writeShop(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range shopFiles {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func quietDiagnostics(t *testing.T) (*utils.DiagnosticSystem, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	d := utils.NewDiagnosticSystem(utils.DiagnosticVerbose)
	d.SetOutput(&out, &out)
	return d, &out
}

func shopConfig(root, output string) *Config {
	cfg := DefaultConfig()
	cfg.Dir = root
	cfg.Output = output
	cfg.Interface = "./repository.CrudRepository"
	return &cfg
}

func TestGenerator_Run(t *testing.T) {
	root := writeShop(t)
	output := t.TempDir()
	diagnostics, out := quietDiagnostics(t)

	g := NewGeneratorWithDiagnostics(diagnostics)
	require.NoError(t, g.Run(context.Background(), shopConfig(root, output), false, nil))

	artifact := filepath.Join(output, "META-INF-CUSTOM", "curd-repos-mappings.properties")
	data, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.Equal(t, "#Generated by repomap\n"+
		"example.com/shop/repository.CrudRepository[example.com/shop/model.User]=example.com/shop/model.User\n"+
		"example.com/shop/repository.CrudRepository[example.com/shop/model.Order]=example.com/shop/model.Order\n",
		string(data))

	summary := g.GetSummary()
	assert.Equal(t, "example.com/shop", summary.Module)
	assert.Equal(t, "example.com/shop/repository.CrudRepository", summary.Interface)
	assert.Equal(t, 2, summary.PackagesProcessed)
	assert.Equal(t, 3, summary.MarkedTypes)
	assert.Equal(t, 1, summary.Collisions)
	assert.Len(t, summary.Mappings, 2)
	assert.Equal(t, artifact, summary.Artifact)

	assert.Contains(t, out.String(), "[WARN]")
	assert.Contains(t, out.String(), "LegacyUserRepository")

	g.ReportSummary()
	assert.Contains(t, out.String(), "Mappings written: 2")
	assert.Contains(t, out.String(), "repomap: wrote "+artifact)
}

func TestGenerator_RunTwiceIsIdempotent(t *testing.T) {
	root := writeShop(t)
	output := t.TempDir()
	diagnostics, _ := quietDiagnostics(t)
	artifact := filepath.Join(output, "META-INF-CUSTOM", "curd-repos-mappings.properties")

	g := NewGeneratorWithDiagnostics(diagnostics)
	require.NoError(t, g.Run(context.Background(), shopConfig(root, output), false, nil))
	first, err := os.ReadFile(artifact)
	require.NoError(t, err)

	require.NoError(t, g.Run(context.Background(), shopConfig(root, output), false, nil))
	second, err := os.ReadFile(artifact)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerator_RelativeOutput(t *testing.T) {
	root := writeShop(t)
	diagnostics, _ := quietDiagnostics(t)

	cfg := shopConfig(root, "build")
	g := NewGeneratorWithDiagnostics(diagnostics)
	require.NoError(t, g.Run(context.Background(), cfg, false, nil))

	artifact := filepath.Join(root, "build", "META-INF-CUSTOM", "curd-repos-mappings.properties")
	assert.FileExists(t, artifact)
	assert.Equal(t, artifact, g.GetSummary().Artifact)
}

func TestGenerator_ForeignDirectives(t *testing.T) {
	root := writeShop(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "repository", "auth.go"), []byte(`package repository

// AuthMiddleware guards the stores.
//axon::middleware AuthMiddleware
type AuthMiddleware struct{}
`), 0644))
	diagnostics, _ := quietDiagnostics(t)

	var stdout bytes.Buffer
	g := NewGeneratorWithDiagnostics(diagnostics)
	require.NoError(t, g.Run(context.Background(), shopConfig(root, t.TempDir()), true, &stdout))
	assert.Len(t, g.GetSummary().Mappings, 2)
}

func TestGenerator_DryRun(t *testing.T) {
	root := writeShop(t)
	output := t.TempDir()
	diagnostics, _ := quietDiagnostics(t)

	cfg := shopConfig(root, output)
	cfg.Qualifier = "name"

	var stdout bytes.Buffer
	g := NewGeneratorWithDiagnostics(diagnostics)
	require.NoError(t, g.Run(context.Background(), cfg, true, &stdout))

	assert.Equal(t, "#Generated by repomap\n"+
		"repository.CrudRepository[model.User]=model.User\n"+
		"repository.CrudRepository[model.Order]=model.Order\n", stdout.String())
	assert.NoFileExists(t, filepath.Join(output, "META-INF-CUSTOM", "curd-repos-mappings.properties"))
	assert.Empty(t, g.GetSummary().Artifact)
}

func TestGenerator_Errors(t *testing.T) {
	diagnostics, _ := quietDiagnostics(t)

	t.Run("missing interface", func(t *testing.T) {
		cfg := shopConfig(writeShop(t), t.TempDir())
		cfg.Interface = ""
		err := NewGeneratorWithDiagnostics(diagnostics).Run(context.Background(), cfg, false, nil)
		assert.Equal(t, errors.ConfigurationErrorCode, errors.CodeOf(err))
	})

	t.Run("no go.mod", func(t *testing.T) {
		cfg := shopConfig(t.TempDir(), t.TempDir())
		cfg.Interface = "example.com/x.Repo"
		err := NewGeneratorWithDiagnostics(diagnostics).Run(context.Background(), cfg, false, nil)
		assert.Error(t, err)
	})

	t.Run("interface used without type argument", func(t *testing.T) {
		root := writeShop(t)
		require.NoError(t, os.WriteFile(filepath.Join(root, "repository", "raw.go"), []byte(`package repository

type Plain interface{ Close() error }

//repomap::Repository
type RawRepository struct {
	Plain
}
`), 0644))

		cfg := shopConfig(root, t.TempDir())
		cfg.Interface = "./repository.Plain"
		err := NewGeneratorWithDiagnostics(diagnostics).Run(context.Background(), cfg, false, nil)
		require.Error(t, err)
		assert.Equal(t, errors.ConfigurationErrorCode, errors.CodeOf(err))
		assert.Contains(t, err.Error(), "RawRepository")
		assert.NoFileExists(t, filepath.Join(cfg.Output, "META-INF-CUSTOM", "curd-repos-mappings.properties"))
	})
}
