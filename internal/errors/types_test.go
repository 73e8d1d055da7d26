package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseError_Error(t *testing.T) {
	t.Run("message only", func(t *testing.T) {
		err := New(ConfigurationErrorCode, "bad config")
		assert.Equal(t, "bad config", err.Error())
	})

	t.Run("with location and cause", func(t *testing.T) {
		err := Wrap(ArtifactWriteErrorCode, "write failed", io.ErrShortWrite).
			WithLocation(SourceLocation{File: "repo.go", Line: 12})
		assert.Equal(t, "repo.go:12: write failed: short write", err.Error())
		assert.True(t, stderrors.Is(err, io.ErrShortWrite))
	})
}

func TestCodeOf(t *testing.T) {
	inner := ArtifactWriteError("out.properties", io.ErrClosedPipe)
	wrapped := Wrap(LoadErrorCode, "load failed", inner)

	assert.Equal(t, ArtifactWriteErrorCode, CodeOf(inner))
	// The outer wrapper carries its own code, which wins.
	assert.Equal(t, LoadErrorCode, CodeOf(wrapped))
	assert.Equal(t, ArtifactWriteErrorCode, CodeOf(fmt.Errorf("generate: %w", inner)))
	assert.Equal(t, UnknownErrorCode, CodeOf(io.EOF))
	assert.Equal(t, UnknownErrorCode, CodeOf(nil))
}

func TestMissingTypeArgumentError(t *testing.T) {
	loc := SourceLocation{File: "user_repository.go", Line: 8, Column: 6}
	err := MissingTypeArgumentError("repository.UserRepository", "repository.CrudRepository", loc)

	assert.Equal(t, ConfigurationErrorCode, err.ErrorCode())
	assert.Equal(t, loc, err.Location())
	assert.Equal(t, "repository.UserRepository", err.Context()["type_name"])
	assert.NotEmpty(t, err.Suggestions())
	assert.Contains(t, err.Error(), "user_repository.go:8:6")
}

func TestMultipleErrors(t *testing.T) {
	var multi *MultipleErrors
	assert.NoError(t, multi.ErrorOrNil())

	AddToMultiple(&multi, PackageError("example.com/a", "undefined: Foo", SourceLocation{File: "a.go", Line: 3}))
	AddToMultiple(&multi, PackageError("example.com/b", "undefined: Bar", SourceLocation{}))

	require.Error(t, multi.ErrorOrNil())
	assert.Equal(t, 2, multi.Count())
	assert.Equal(t, LoadErrorCode, CodeOf(multi))
	assert.Contains(t, multi.Error(), "multiple errors (2 total)")
	assert.Equal(t, "example.com/a", multi.Context()["error_0_package"])
}

func TestStateError_Is(t *testing.T) {
	sentinel := StateError("process round", "terminal")
	other := StateError("process round", "terminal")

	assert.True(t, stderrors.Is(other, sentinel))
	assert.False(t, stderrors.Is(StateError("flush", "terminal"), sentinel))
}
