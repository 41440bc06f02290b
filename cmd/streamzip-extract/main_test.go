package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeJoinRejectsTraversal(t *testing.T) {
	_, err := safeJoin("/tmp/out", "../../etc/passwd")
	assert.Error(t, err)
}

func TestSafeJoinAllowsNestedPaths(t *testing.T) {
	path, err := safeJoin("/tmp/out", "dir/sub/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out/dir/sub/file.txt", path)
}

func TestSafeJoinAllowsBareName(t *testing.T) {
	path, err := safeJoin("/tmp/out", "file.txt")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out/file.txt", path)
}
