package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDiagnostics(level DiagnosticLevel) (*DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystem(level)
	d.SetOutput(&out, &errOut)
	return d, &out, &errOut
}

func TestDiagnosticSystem_Levels(t *testing.T) {
	tests := []struct {
		level       DiagnosticLevel
		wantOut     []string
		wantErrOut  []string
		wantMissing []string
	}{
		{
			level:       DiagnosticSilent,
			wantMissing: []string{"[ERROR]", "[WARN]", "[INFO]", "[VERBOSE]", "[DEBUG]"},
		},
		{
			level:       DiagnosticError,
			wantErrOut:  []string{"[ERROR] broken"},
			wantMissing: []string{"[WARN]", "[INFO]"},
		},
		{
			level:       DiagnosticInfo,
			wantOut:     []string{"[INFO] loading"},
			wantErrOut:  []string{"[ERROR] broken", "[WARN] careful"},
			wantMissing: []string{"[VERBOSE]", "[DEBUG]"},
		},
		{
			level:      DiagnosticDebug,
			wantOut:    []string{"[INFO] loading", "[VERBOSE] details", "[DEBUG] internals"},
			wantErrOut: []string{"[ERROR] broken", "[WARN] careful"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			d, out, errOut := newTestDiagnostics(tt.level)

			d.Error("broken")
			d.Warn("careful")
			d.Info("loading")
			d.Verbose("details")
			d.Debug("internals")

			for _, s := range tt.wantOut {
				assert.Contains(t, out.String(), s)
			}
			for _, s := range tt.wantErrOut {
				assert.Contains(t, errOut.String(), s)
			}
			for _, s := range tt.wantMissing {
				assert.NotContains(t, out.String()+errOut.String(), s)
			}
		})
	}
}

func TestDiagnosticSystem_Formatting(t *testing.T) {
	d, out, _ := newTestDiagnostics(DiagnosticInfo)

	d.Header("Generating repository mappings")
	d.List("%s -> %s", "repo.CrudRepository[model.User]", "model.User")
	d.PhaseProgress("Writing META-INF-CUSTOM/curd-repos-mappings.properties")
	d.PhaseProgress("Loading packages")
	d.Summary("Summary", map[string]interface{}{"types": 3, "mappings": 1})

	expected := "repomap: Generating repository mappings\n" +
		"  - repo.CrudRepository[model.User] -> model.User\n" +
		"✏ Writing META-INF-CUSTOM/curd-repos-mappings.properties\n" +
		"- Loading packages\n" +
		"\nSummary\n" +
		"   mappings: 1\n" +
		"   types: 3\n\n"
	assert.Equal(t, expected, out.String())
}

func TestParseDiagnosticLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected DiagnosticLevel
	}{
		{"", DiagnosticInfo},
		{"quiet", DiagnosticSilent},
		{"ERROR", DiagnosticError},
		{"warning", DiagnosticWarn},
		{" verbose ", DiagnosticVerbose},
		{"debug", DiagnosticDebug},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseDiagnosticLevel(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}

	_, err := ParseDiagnosticLevel("loud")
	assert.Error(t, err)
}
