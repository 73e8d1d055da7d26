package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/toyz/repomap/internal/errors"
	"github.com/toyz/repomap/internal/loader"
	"github.com/toyz/repomap/internal/processor"
	"github.com/toyz/repomap/internal/utils"
)

// GenerationSummary describes a finished run
type GenerationSummary struct {
	Module            string
	Interface         string
	PackagesProcessed int
	TypesSeen         int
	MarkedTypes       int
	Collisions        int
	Mappings          []processor.Entry
	// Artifact is the written file, empty on dry runs
	Artifact string
	Duration time.Duration
}

// Generator coordinates a generation run: module resolution, package
// loading, processing and the artifact write.
type Generator struct {
	moduleResolver *ModuleResolver
	diagnostics    *utils.DiagnosticSystem
	summary        GenerationSummary
}

// NewGeneratorWithDiagnostics creates a generator reporting through diagnostics
func NewGeneratorWithDiagnostics(diagnostics *utils.DiagnosticSystem) *Generator {
	return &Generator{
		moduleResolver: NewModuleResolver(),
		diagnostics:    diagnostics,
	}
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() GenerationSummary {
	return g.summary
}

// Run executes a generation. With dryRun set the artifact is written to
// dryRunOut instead of the output directory.
func (g *Generator) Run(ctx context.Context, config *Config, dryRun bool, dryRunOut io.Writer) error {
	startTime := time.Now()
	g.summary = GenerationSummary{}

	if err := config.Validate(); err != nil {
		return err
	}
	qualifier, err := loader.ParseQualifier(config.Qualifier)
	if err != nil {
		return errors.WrapConfigurationError("qualifier", "parse", err)
	}
	output := config.OutputDir()

	g.diagnostics.PhaseHeader("Resolving module")
	module, err := g.moduleResolver.Resolve(config.Dir)
	if err != nil {
		return err
	}
	g.summary.Module = module.Path
	g.diagnostics.PhaseItem(fmt.Sprintf("Module %s (%s)", module.Path, module.Root))

	iface, err := g.moduleResolver.ResolveInterface(config.Interface, module.Path, qualifier)
	if err != nil {
		return err
	}
	g.summary.Interface = iface
	g.diagnostics.Verbose("Tracking %s on types marked %s", iface, config.Annotation)

	g.diagnostics.PhaseHeader("Loading packages")
	ld := loader.NewWithDiagnostics(loader.Config{
		Dir:       config.Dir,
		Patterns:  config.Patterns,
		Tests:      config.Tests,
		Qualifier:  qualifier,
		Annotation: config.Annotation,
	}, g.diagnostics)
	host, err := ld.Host(ctx)
	if err != nil {
		return err
	}
	g.summary.PackagesProcessed = len(host.Packages())
	g.diagnostics.PhaseItem(fmt.Sprintf("Loaded %d package(s)", g.summary.PackagesProcessed))

	dirDest := processor.DirDestination{Root: output}
	artifact, err := dirDest.Path(config.Resource)
	if err != nil {
		return errors.WrapConfigurationError("resource", "validate", err)
	}

	var dest processor.Destination = dirDest
	if dryRun {
		dest = processor.WriterDestination{W: dryRunOut}
	} else {
		g.diagnostics.PhaseProgress("Writing " + filepath.ToSlash(artifact))
	}

	p := processor.NewProcessorWithDiagnostics(processor.Config{
		Annotation:   config.Annotation,
		Interface:    iface,
		Destination:  dest,
		ResourceName: config.Resource,
	}, g.diagnostics)

	if err := p.Run(ctx, host); err != nil {
		return err
	}

	stats := p.Stats()
	g.summary.TypesSeen = stats.TypesSeen
	g.summary.MarkedTypes = stats.Marked
	g.summary.Collisions = stats.Collisions
	g.summary.Mappings = p.Metadata().Snapshot()
	if !dryRun {
		g.summary.Artifact = artifact
	}
	g.summary.Duration = time.Since(startTime)

	g.diagnostics.Verbose("Generation finished in %s", g.summary.Duration.Round(time.Millisecond))
	return nil
}

// ReportSummary prints the summary of the last run
func (g *Generator) ReportSummary() {
	s := g.summary
	g.diagnostics.Summary("Summary", map[string]interface{}{
		"Packages processed": s.PackagesProcessed,
		"Types inspected":    s.TypesSeen,
		"Marked types":       s.MarkedTypes,
		"Mappings written":   len(s.Mappings),
		"Collisions":         s.Collisions,
	})

	if len(s.Mappings) > 0 && g.diagnostics.Enabled(utils.DiagnosticVerbose) {
		g.diagnostics.Subsection("Mappings")
		for _, m := range s.Mappings {
			g.diagnostics.List("%s -> %s", m.Key, m.Value)
		}
	}

	if s.Artifact != "" {
		g.diagnostics.Complete("wrote " + s.Artifact)
	}
}
