package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/toyz/repomap/internal/errors"
	"github.com/toyz/repomap/internal/utils"
)

// Version is the CLI version, overridden at build time with -ldflags
var Version = "0.1.0"

type globalOptions struct {
	configFile string
	verbose    bool
	quiet      bool
}

var global globalOptions

// RootCmd creates and returns the root command for the repomap CLI
func RootCmd() *cobra.Command {
	global = globalOptions{}

	cmd := &cobra.Command{
		Use:   "repomap",
		Short: "Map generic repository interfaces to their entity types",
		Long: `repomap scans Go packages for types marked with //repomap::Repository that
embed a generic repository interface, and writes a properties file mapping
each interface instantiation to its entity type:

  example.com/shop/repository.CrudRepository[example.com/shop/model.User]=example.com/shop/model.User

Settings are read from .repomap.yaml, REPOMAP_* environment variables and
flags, in increasing order of precedence.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&global.configFile, "config", "", "Config file (default ./"+ConfigFileName+")")
	cmd.PersistentFlags().BoolVarP(&global.verbose, "verbose", "v", false, "Enable verbose output and detailed error reporting")
	cmd.PersistentFlags().BoolVarP(&global.quiet, "quiet", "q", false, "Only show errors")
	cmd.PersistentFlags().String("log-level", "", "Output level: silent, error, warn, info, verbose or debug (default info)")

	return cmd
}

// GenerateCmd creates the 'generate' command
func GenerateCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "generate [patterns...]",
		Short: "Write the repository mapping artifact",
		Long: `Load the given package patterns (default ./...), collect every concrete type
marked with the repository annotation that embeds the tracked interface, and
write the mapping artifact below the output directory.

Examples:
  repomap generate --interface ./repository.CrudRepository
  repomap generate --interface example.com/shop/repository.CrudRepository ./internal/...
  repomap generate --qualifier name --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig(global.configFile, cmd.Flags())
			if err != nil {
				return report(cmd, err)
			}
			if len(args) > 0 {
				config.Patterns = args
			}

			diagnostics, err := newDiagnostics(cmd, config, dryRun)
			if err != nil {
				return report(cmd, err)
			}
			diagnostics.Header("Generating repository mappings")

			generator := NewGeneratorWithDiagnostics(diagnostics)
			if err := generator.Run(cmd.Context(), config, dryRun, cmd.OutOrStdout()); err != nil {
				return report(cmd, err)
			}
			generator.ReportSummary()
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("dir", ".", "Directory package patterns are resolved from")
	flags.String("annotation", "", "Canonical name of the marker annotation (default repomap::Repository)")
	flags.String("interface", "", "Tracked generic interface, e.g. ./repository.CrudRepository")
	flags.String("output", "", "Directory the artifact is written below, relative to --dir (default .)")
	flags.String("resource", "", "Artifact path relative to the output directory")
	flags.String("qualifier", "", "Package qualifier in canonical names: path or name")
	flags.Bool("tests", false, "Include _test.go files")
	flags.BoolVar(&dryRun, "dry-run", false, "Print the artifact to stdout instead of writing it")

	return cmd
}

// CleanCmd creates the 'clean' command
func CleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the repository mapping artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig(global.configFile, cmd.Flags())
			if err != nil {
				return report(cmd, err)
			}

			diagnostics, err := newDiagnostics(cmd, config, false)
			if err != nil {
				return report(cmd, err)
			}
			target, removed, err := NewCleaner().Clean(config.OutputDir(), config.Resource)
			if err != nil {
				return report(cmd, err)
			}
			if removed {
				diagnostics.Success("Removed %s", target)
			} else {
				diagnostics.Info("Nothing to clean: %s does not exist", target)
			}
			return nil
		},
	}

	cmd.Flags().String("dir", ".", "Module directory the output directory is relative to")
	cmd.Flags().String("output", "", "Directory the artifact was written below, relative to --dir")
	cmd.Flags().String("resource", "", "Artifact path relative to the output directory")

	return cmd
}

// InitCmd creates the 'init' command
func InitCmd() *cobra.Command {
	var force bool
	var iface, annotation, output, qualifier string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default " + ConfigFileName,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := DefaultConfig()
			config.Dir = ""
			if iface != "" {
				config.Interface = iface
			}
			if annotation != "" {
				config.Annotation = annotation
			}
			if output != "" {
				config.Output = output
			}
			if qualifier != "" {
				config.Qualifier = qualifier
			}

			path := global.configFile
			if path == "" {
				path = ConfigFileName
			}

			if err := WriteConfig(path, config, force); err != nil {
				return report(cmd, err)
			}
			diagnostics, err := newDiagnostics(cmd, &config, false)
			if err != nil {
				return report(cmd, err)
			}
			diagnostics.Success("Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	cmd.Flags().StringVar(&iface, "interface", "", "Tracked generic interface")
	cmd.Flags().StringVar(&annotation, "annotation", "", "Canonical name of the marker annotation")
	cmd.Flags().StringVar(&output, "output", "", "Directory the artifact is written below")
	cmd.Flags().StringVar(&qualifier, "qualifier", "", "Package qualifier in canonical names: path or name")

	return cmd
}

// NewApp assembles the root command with every subcommand
func NewApp() *cobra.Command {
	root := RootCmd()
	root.AddCommand(GenerateCmd())
	root.AddCommand(CleanCmd())
	root.AddCommand(InitCmd())
	return root
}

// newDiagnostics builds the diagnostic system for the configured log level;
// --quiet and --verbose override it. On dry runs stdout carries the
// artifact, so messages go to stderr.
func newDiagnostics(cmd *cobra.Command, config *Config, dryRun bool) (*utils.DiagnosticSystem, error) {
	level, err := config.DiagnosticLevel()
	if err != nil {
		return nil, errors.WrapConfigurationError("log-level", "parse", err)
	}
	switch {
	case global.quiet:
		level = utils.DiagnosticError
	case global.verbose:
		level = utils.DiagnosticVerbose
	}
	diagnostics := utils.NewDiagnosticSystem(level)

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if dryRun {
		out = errOut
	}
	if out != os.Stdout || errOut != os.Stderr {
		diagnostics.SetOutput(out, errOut)
	}
	return diagnostics, nil
}

// report prints err in full; errors are shown even with --quiet
func report(cmd *cobra.Command, err error) error {
	NewDiagnosticReporter(global.verbose, cmd.ErrOrStderr()).ReportError(err)
	return err
}

// Process exit codes
const (
	ExitFailure = 1 // I/O and other failures
	ExitConfig  = 2 // invalid configuration or repository declarations
	ExitSource  = 3 // packages failed to load or hold malformed annotations
)

// ExitCode maps an error returned by the CLI to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch errors.CodeOf(err) {
	case errors.ConfigurationErrorCode:
		return ExitConfig
	case errors.LoadErrorCode, errors.SyntaxErrorCode:
		return ExitSource
	default:
		return ExitFailure
	}
}
