package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunConfigFail(t *testing.T) {
	old := *confFile
	defer func() { *confFile = old }()

	*confFile = filepath.Join(t.TempDir(), "missing.yaml")
	assert.Equal(t, 1, run())

	path := filepath.Join(t.TempDir(), "hitcounter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("persist:\n  driver: etcd\n"), 0644))
	*confFile = path
	assert.Equal(t, 1, run())
}
