package publish

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stageFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artifact.bin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDirPut(t *testing.T) {
	root := t.TempDir()
	store := &Dir{Root: root}

	staged := stageFile(t, "payload")
	require.NoError(t, store.Put(context.Background(), "release-full", "out.bin", staged))

	content, err := os.ReadFile(filepath.Join(root, "release-full", "out.bin"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))

	// The sidecar carries the canonical digest of the content.
	sidecar, err := os.ReadFile(filepath.Join(root, "release-full", "out.bin.digest"))
	require.NoError(t, err)
	want := digest.FromString("payload")
	assert.Equal(t, want.String(), strings.TrimSpace(string(sidecar)))
}

func TestDirPutRejectsEmptyQualifier(t *testing.T) {
	store := &Dir{Root: t.TempDir()}
	err := store.Put(context.Background(), "", "out.bin", stageFile(t, "x"))
	assert.ErrorContains(t, err, "qualifier")
}

func TestDirPublishOverwrites(t *testing.T) {
	root := t.TempDir()
	store := &Dir{Root: root}

	require.NoError(t, store.Publish(context.Background(), "site", stageFile(t, "v1")))
	require.NoError(t, store.Publish(context.Background(), "site", stageFile(t, "v2")))

	content, err := os.ReadFile(filepath.Join(root, "site"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(content))
}

func TestDirLeavesNoPartialFiles(t *testing.T) {
	root := t.TempDir()
	store := &Dir{Root: root}
	require.NoError(t, store.Put(context.Background(), "q", "out.bin", stageFile(t, "x")))

	entries, err := os.ReadDir(filepath.Join(root, "q"))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasSuffix(entry.Name(), ".partial"))
	}
}

func TestDirPutMissingStagedFile(t *testing.T) {
	store := &Dir{Root: t.TempDir()}
	err := store.Put(context.Background(), "q", "out.bin", filepath.Join(t.TempDir(), "gone"))
	assert.Error(t, err)
}
