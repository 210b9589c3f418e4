package logger

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogStoresAndStamps(t *testing.T) {
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(old) })

	l := New()
	l.Log("first")
	l.Logf("object %s failed", "rock-3")

	lines := l.Lines()
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "["))
	assert.Contains(t, lines[0], "first")
	assert.Contains(t, lines[1], "object rock-3 failed")

	data, err := os.ReadFile(LogFilePath)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestLinesReturnsCopy(t *testing.T) {
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(old) })

	l := New()
	l.Log("a")
	lines := l.Lines()
	lines[0] = "mutated"
	assert.NotEqual(t, "mutated", l.Lines()[0])
}
