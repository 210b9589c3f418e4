package hostconfig

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chtmp(t *testing.T) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	chtmp(t)
	p, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	chtmp(t)
	p := Default()
	p.ShowFPS = true
	p.WindowW = 1920
	require.NoError(t, Save(p))

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestLoadRepairsBadValues(t *testing.T) {
	chtmp(t)
	require.NoError(t, os.MkdirAll("config", 0755))
	require.NoError(t, os.WriteFile(ConfigPath, []byte(`{"window_w": -5, "camera_speed": 0}`), 0644))

	p, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().WindowW, p.WindowW)
	assert.Equal(t, float32(1), p.CameraSpeed)
}

func TestLoadInvalidJSONFallsBack(t *testing.T) {
	chtmp(t)
	require.NoError(t, os.MkdirAll("config", 0755))
	require.NoError(t, os.WriteFile(ConfigPath, []byte("{nope"), 0644))
	p, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}
