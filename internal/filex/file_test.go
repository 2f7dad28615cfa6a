package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesNestedDirectory(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "uploads", "recipes")

	got, err := EnsureDir(target)
	require.NoError(t, err)
	require.Equal(t, target, got)

	fi, err := os.Stat(target)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureDir_Idempotent(t *testing.T) {
	tmp := t.TempDir()

	first, err := EnsureDir(filepath.Join(tmp, "u"))
	require.NoError(t, err)
	second, err := EnsureDir(filepath.Join(tmp, "u"))
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEnsureDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "uploads")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o660))

	_, err := EnsureDir(p)
	require.Error(t, err)
}

func TestWriteFile_WritesContentAndLeavesNoTemp(t *testing.T) {
	tmp := t.TempDir()

	dst, err := WriteFile(tmp, "1_abc.png", []byte("png-bytes"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(tmp, "1_abc.png"), dst)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(data))

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWriteFile_MissingDir(t *testing.T) {
	_, err := WriteFile(filepath.Join(t.TempDir(), "missing"), "x.png", []byte("x"))
	require.Error(t, err)
}
