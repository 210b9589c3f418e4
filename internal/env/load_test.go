package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nFOO=bar\nQUOTED=\"hello world\"\n\nbad line\n=nokey\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("FOO", "")
	t.Setenv("QUOTED", "")
	require.NoError(t, Load(path))
	assert.Equal(t, "bar", os.Getenv("FOO"))
	assert.Equal(t, "hello world", os.Getenv("QUOTED"))
}

func TestLoadMissingFile(t *testing.T) {
	assert.NoError(t, Load(filepath.Join(t.TempDir(), "absent.env")))
}

func TestStringDefault(t *testing.T) {
	t.Setenv("SET_VAR", "value")
	assert.Equal(t, "value", String("SET_VAR", "def"))
	assert.Equal(t, "def", String("UNSET_VAR_XYZ", "def"))
}

func TestDurationDefault(t *testing.T) {
	t.Setenv("DUR_OK", "45s")
	t.Setenv("DUR_BAD", "soon")
	assert.Equal(t, 45*time.Second, Duration("DUR_OK", time.Minute))
	assert.Equal(t, time.Minute, Duration("DUR_BAD", time.Minute))
	assert.Equal(t, time.Minute, Duration("DUR_UNSET_XYZ", time.Minute))
}
