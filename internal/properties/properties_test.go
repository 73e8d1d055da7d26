package properties

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "repository.CrudRepository[model.User]", "repository.CrudRepository[model.User]"},
		{"separators", "a=b:c", `a\=b\:c`},
		{"comment markers", "#key!", `\#key\!`},
		{"every space", "a b c", `a\ b\ c`},
		{"leading space", " key", `\ key`},
		{"backslash", `a\b`, `a\\b`},
		{"control characters", "a\tb\nc\rd\fe", `a\tb\nc\rd\fe`},
		{"non ascii", "café", `caf\u00E9`},
		{"supplementary plane", "x😀", `x\uD83D\uDE00`},
		{"low control", "a\x01", `a\u0001`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EscapeKey(tt.input))
		})
	}
}

func TestEscapeValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "model.User", "model.User"},
		{"leading space only", " a b", `\ a b`},
		{"separators", "x=y:z", `x\=y\:z`},
		{"non ascii", "Ünïcode", `\u00DCn\u00EFcode`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EscapeValue(tt.input))
		})
	}
}

func TestStore(t *testing.T) {
	var buf bytes.Buffer
	err := Store(&buf, "Generated by repomap", []Entry{
		{Key: "example.com/app/repository.CrudRepository[example.com/app/model.User]", Value: "example.com/app/model.User"},
		{Key: "repository.Store[string, model.Hello]", Value: "string"},
	})
	require.NoError(t, err)

	expected := "#Generated by repomap\n" +
		"example.com/app/repository.CrudRepository[example.com/app/model.User]=example.com/app/model.User\n" +
		"repository.Store[string,\\ model.Hello]=string\n"
	assert.Equal(t, expected, buf.String())
}

func TestStore_NoComment(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Store(&buf, "", nil))
	assert.Empty(t, buf.String())
}

func TestEncoder_MultiLineComment(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.WriteComment("first\nsecond"))
	require.NoError(t, enc.Flush())
	assert.Equal(t, "#first\n#second\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestStore_WriteFailure(t *testing.T) {
	err := Store(failingWriter{}, "Generated by repomap", []Entry{{Key: "k", Value: "v"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestLoad(t *testing.T) {
	input := strings.Join([]string{
		"#Generated by repomap",
		"! alternate comment",
		"",
		"plain=value",
		"colon:value",
		"spaced   =   padded",
		"whitespace separated",
		`escaped\ key\:x=v\=1`,
		`unicode=caf\u00E9`,
		`pair=\uD83D\uDE00`,
		`multi=first \`,
		`      second`,
		"empty=",
		"lonely",
	}, "\n")

	entries, err := Load(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Key: "plain", Value: "value"},
		{Key: "colon", Value: "value"},
		{Key: "spaced", Value: "padded"},
		{Key: "whitespace", Value: "separated"},
		{Key: "escaped key:x", Value: "v=1"},
		{Key: "unicode", Value: "café"},
		{Key: "pair", Value: "😀"},
		{Key: "multi", Value: "first second"},
		{Key: "empty", Value: ""},
		{Key: "lonely", Value: ""},
	}, entries)
}

func TestLoad_MalformedUnicode(t *testing.T) {
	_, err := Load(strings.NewReader(`bad=\u12`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")

	_, err = Load(strings.NewReader(`bad=\uZZZZ`))
	require.Error(t, err)
}

func TestStoreThenLoad(t *testing.T) {
	entries := []Entry{
		{Key: " leading", Value: " leading"},
		{Key: "a=b:c#d!e", Value: "x=y"},
		{Key: "tab\tkey", Value: "line\nbreak"},
		{Key: "ünïcödé", Value: "😀"},
		{Key: `back\slash`, Value: `C:\path`},
	}

	var buf bytes.Buffer
	require.NoError(t, Store(&buf, "Generated by repomap", entries))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, entries, loaded)
}

func TestStore_InvalidUTF8(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		entries []Entry
	}{
		{"key", "", []Entry{{Key: "repo.Crud[model.\xffUser]", Value: "model.User"}}},
		{"value", "", []Entry{{Key: "repo.Crud[model.User]", Value: "model.\xc3"}}},
		{"comment", "Generated by \xfe", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Store(&buf, tt.comment, tt.entries)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidUTF8))
			assert.Empty(t, buf.String())
		})
	}
}
