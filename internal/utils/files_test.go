package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteFileCreatesParent(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "out.csv")
	require.NoError(t, SafeWriteFile(p, []byte("a,b\n")))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(b))
	_, err = os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "Rule_1_Output.xlsx")
	assert.Equal(t, p, UniquePath(p))

	require.NoError(t, os.WriteFile(p, nil, 0o644))
	assert.Equal(t, filepath.Join(dir, "Rule_1_Output__2.xlsx"), UniquePath(p))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Rule_1_Output__2.xlsx"), nil, 0o644))
	assert.Equal(t, filepath.Join(dir, "Rule_1_Output__3.xlsx"), UniquePath(p))
}
