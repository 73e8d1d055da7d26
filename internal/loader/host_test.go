package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/repomap/internal/typemodel"
)

func TestHost_Next(t *testing.T) {
	ctx := context.Background()

	t.Run("one round per package", func(t *testing.T) {
		host := NewHost([]*Package{
			{Path: "example.com/a", Types: []*typemodel.Type{typemodel.NewClass("example.com/a.A")}},
			{Path: "example.com/b"},
		})

		first, err := host.Next(ctx)
		require.NoError(t, err)
		assert.False(t, first.Final)
		require.Len(t, first.Types, 1)
		assert.Equal(t, "example.com/a.A", first.Types[0].Name())

		second, err := host.Next(ctx)
		require.NoError(t, err)
		assert.True(t, second.Final)
		assert.Empty(t, second.Types)

		_, err = host.Next(ctx)
		assert.Error(t, err)
	})

	t.Run("no packages", func(t *testing.T) {
		host := NewHost(nil)

		round, err := host.Next(ctx)
		require.NoError(t, err)
		assert.True(t, round.Final)
		assert.Empty(t, round.Types)

		_, err = host.Next(ctx)
		assert.Error(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := NewHost(nil).Next(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestParseQualifier(t *testing.T) {
	tests := []struct {
		input    string
		expected Qualifier
		wantErr  bool
	}{
		{input: "", expected: QualifyPath},
		{input: "path", expected: QualifyPath},
		{input: "Name", expected: QualifyName},
		{input: "short", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q, err := ParseQualifier(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, q)
			assert.Equal(t, tt.expected.String(), q.String())
		})
	}
}

func TestParsePos(t *testing.T) {
	l := New(Config{})
	root := "/work/shop"

	tests := []struct {
		pos      string
		expected string
	}{
		{"/work/shop/repository/user.go:12:6", "repository/user.go:12:6"},
		{"/elsewhere/x.go:3", "/elsewhere/x.go:3"},
		{"-", "unknown location"},
		{"", "unknown location"},
	}

	for _, tt := range tests {
		t.Run(tt.pos, func(t *testing.T) {
			assert.Equal(t, tt.expected, l.parsePos(root, tt.pos).String())
		})
	}
}
