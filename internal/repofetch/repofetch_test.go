package repofetch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRemote(t *testing.T) {
	assert.True(t, isRemote("https://github.com/golang/go"))
	assert.True(t, isRemote("http://example.com/repo.git"))
	assert.True(t, isRemote("git@github.com:golang/go.git"))

	assert.False(t, isRemote("./local/repo"))
	assert.False(t, isRemote("/abs/path/repo"))
	assert.False(t, isRemote("repo"))
}

func TestPrepareLocalDirectory(t *testing.T) {
	dir := t.TempDir()

	path, err := Prepare(context.Background(), dir, "")
	require.NoError(t, err)
	assert.Equal(t, dir, path)
	assert.True(t, filepath.IsAbs(path))
}

func TestPrepareMissingLocalPath(t *testing.T) {
	_, err := Prepare(context.Background(), filepath.Join(t.TempDir(), "nope"), "")
	assert.ErrorContains(t, err, "does not exist")
}

func TestPrepareLocalFileIsNotARepository(t *testing.T) {
	file := filepath.Join(t.TempDir(), "main.go")
	require.NoError(t, os.WriteFile(file, []byte("package main"), 0644))

	_, err := Prepare(context.Background(), file, "")
	assert.ErrorContains(t, err, "not a directory")
}

func TestPrepareUnreachableRemoteFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // don't touch the network

	_, err := Prepare(ctx, "https://invalid.invalid/does/not/exist.git", filepath.Join(t.TempDir(), "clone"))
	assert.ErrorContains(t, err, "clone repository")
}
