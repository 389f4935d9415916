package fetch

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTarGz(t *testing.T, entries map[string][]byte) string {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for name, data := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o755,
			Size:     int64(len(data)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	path := filepath.Join(t.TempDir(), "archive.tar.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestExtractTarGz(t *testing.T) {
	archive := makeTarGz(t, map[string][]byte{
		"bin/tool":  []byte("#!/bin/sh\necho tool\n"),
		"README.md": []byte("readme"),
	})
	dest := t.TempDir()

	require.NoError(t, ExtractTarGz(archive, dest))

	data, err := os.ReadFile(filepath.Join(dest, "bin", "tool"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "echo tool")
	assert.FileExists(t, filepath.Join(dest, "README.md"))
}

func TestExtractTarGzRejectsTraversal(t *testing.T) {
	archive := makeTarGz(t, map[string][]byte{
		"../escape.sh": []byte("evil"),
	})
	dest := t.TempDir()

	err := ExtractTarGz(archive, dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal file path")
	assert.NoFileExists(t, filepath.Join(filepath.Dir(dest), "escape.sh"))
}

func TestExtractFile(t *testing.T) {
	archive := makeTarGz(t, map[string][]byte{
		"release/tool": []byte("binary contents"),
		"release/docs": []byte("irrelevant"),
	})
	dest := filepath.Join(t.TempDir(), "bin", "tool")

	require.NoError(t, ExtractFile(archive, dest, "tool"))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("binary contents"), data)
}

func TestExtractFileNotFound(t *testing.T) {
	archive := makeTarGz(t, map[string][]byte{"other": []byte("x")})

	err := ExtractFile(archive, filepath.Join(t.TempDir(), "tool"), "tool")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in archive")
}
