// Package processor turns rounds of declared types into the repository
// mapping artifact.
//
// A Processor accumulates one entry per concrete, marked type that
// directly implements the tracked generic interface, and writes the
// accumulated mapping exactly once when the host signals the final round.
package processor

import (
	"context"

	"github.com/toyz/repomap/internal/errors"
	"github.com/toyz/repomap/internal/typemodel"
)

const (
	// DefaultAnnotation is the canonical name of the marker annotation
	DefaultAnnotation = "repomap::Repository"
)

// ErrProcessingOver is returned by Process once the final round has been handled
var ErrProcessingOver = errors.StateError("process round", Terminal.String())

// State is the lifecycle state of a Processor
type State int

const (
	Accumulating State = iota
	Terminal
)

func (s State) String() string {
	if s == Terminal {
		return "terminal"
	}
	return "accumulating"
}

// Round is one batch of root declared types supplied by a host
type Round struct {
	Types []typemodel.DeclaredType
	Final bool
}

// Host supplies rounds until it has delivered one with Final set
type Host interface {
	Next(ctx context.Context) (Round, error)
}

// Diagnostics receives progress and warning messages
type Diagnostics interface {
	Warn(format string, args ...interface{})
	Verbose(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

type silent struct{}

func (silent) Warn(string, ...interface{})    {}
func (silent) Verbose(string, ...interface{}) {}
func (silent) Debug(string, ...interface{})   {}

// Config selects what a Processor tracks and where it writes
type Config struct {
	// Annotation is the canonical name of the marker annotation
	Annotation string
	// Interface is the erased canonical name of the tracked generic interface
	Interface string
	// Destination receives the artifact on the final round
	Destination Destination
	// ResourceName overrides DefaultResourceName
	ResourceName string
}

// Stats counts what a Processor has observed
type Stats struct {
	Rounds     int
	TypesSeen  int
	Marked     int
	Recorded   int
	Collisions int
}

// Processor is the round-driven state machine. It is not safe for
// concurrent use.
type Processor struct {
	config      Config
	diagnostics Diagnostics
	metadata    *Metadata
	owners      map[string]string
	state       State
	err         error
	stats       Stats
}

// NewProcessor creates a processor in the Accumulating state
func NewProcessor(config Config) *Processor {
	if config.Annotation == "" {
		config.Annotation = DefaultAnnotation
	}
	return &Processor{
		config:      config,
		diagnostics: silent{},
		metadata:    NewMetadata(),
		owners:      make(map[string]string),
	}
}

// NewProcessorWithDiagnostics creates a processor reporting through diagnostics
func NewProcessorWithDiagnostics(config Config, diagnostics Diagnostics) *Processor {
	p := NewProcessor(config)
	if diagnostics != nil {
		p.diagnostics = diagnostics
	}
	return p
}

// State returns the current lifecycle state
func (p *Processor) State() State {
	return p.state
}

// Stats returns a copy of the counters
func (p *Processor) Stats() Stats {
	return p.stats
}

// Metadata returns the mapping accumulated so far
func (p *Processor) Metadata() *Metadata {
	return p.metadata
}

// Err returns the fatal error the processor stopped on, if any
func (p *Processor) Err() error {
	return p.err
}

// Process handles one round. Qualifying types are recorded; when the round
// is final the mapping is flushed and the processor becomes Terminal.
// A fatal error is sticky: every later call returns it again.
func (p *Processor) Process(ctx context.Context, round Round) error {
	if p.err != nil {
		return p.err
	}
	if p.state == Terminal {
		return ErrProcessingOver
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.config.Interface == "" {
		p.err = errors.ConfigurationError("processor", "no tracked interface configured")
		return p.err
	}

	p.stats.Rounds++
	p.diagnostics.Debug("Round %d: %d type(s), final=%t", p.stats.Rounds, len(round.Types), round.Final)

	for _, t := range round.Types {
		if err := p.observe(t); err != nil {
			p.err = err
			return err
		}
	}

	if !round.Final {
		return nil
	}

	dest := p.config.Destination
	if dest == nil {
		p.err = errors.ConfigurationError("processor", "no artifact destination configured")
		return p.err
	}
	if err := Flush(p.metadata, dest, ResourceName(p.config.ResourceName)); err != nil {
		p.err = err
		return err
	}
	p.diagnostics.Verbose("Wrote %d mapping(s)", p.metadata.Len())
	p.state = Terminal
	return nil
}

// Run drives host until the final round has been processed
func (p *Processor) Run(ctx context.Context, host Host) error {
	for {
		round, err := host.Next(ctx)
		if err != nil {
			return err
		}
		if err := p.Process(ctx, round); err != nil {
			return err
		}
		if round.Final {
			return nil
		}
	}
}

func (p *Processor) observe(t typemodel.DeclaredType) error {
	p.stats.TypesSeen++

	if !IsMarked(t, p.config.Annotation) {
		return nil
	}
	p.stats.Marked++

	if !IsConcrete(t) {
		p.diagnostics.Debug("Skipping %s: abstract", t.Name())
		return nil
	}

	ref, ok := ResolveInterface(t, p.config.Interface)
	if !ok {
		p.diagnostics.Debug("Skipping %s: %s does not directly implement %s", t.Name(), t.Kind(), p.config.Interface)
		return nil
	}

	arg, err := FirstTypeArgument(ref)
	if err != nil {
		loc := t.Location()
		return errors.MissingTypeArgumentError(t.Name(), ref.String(), errors.SourceLocation{
			File:   loc.File,
			Line:   loc.Line,
			Column: loc.Column,
		}).WithCause(err)
	}

	key := ref.String()
	previous, replaced := p.metadata.Record(key, arg.Name)
	if replaced {
		p.stats.Collisions++
		p.diagnostics.Warn("%s is implemented by both %s (%s) and %s (%s); keeping %s",
			key, p.owners[key], previous, t.Name(), arg.Name, arg.Name)
	}
	p.owners[key] = t.Name()
	p.stats.Recorded++
	p.diagnostics.Verbose("%s -> %s (%s)", key, arg.Name, t.Name())
	return nil
}
