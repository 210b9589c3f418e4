package hostconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ConfigPath is the path to the viewer config file, relative to the process working directory.
const ConfigPath = "config/viewer.json"

// Prefs holds viewer-only preferences (debug overlays, grid). Persisted
// across runs; world plan documents are separate and handled elsewhere.
type Prefs struct {
	ShowFPS     bool    `json:"show_fps"`
	GridVisible bool    `json:"grid_visible"`
	WindowW     int32   `json:"window_w"`
	WindowH     int32   `json:"window_h"`
	CameraSpeed float32 `json:"camera_speed"`
}

// Default returns default viewer preferences (overlays off, grid on, 1280x720).
func Default() Prefs {
	return Prefs{
		ShowFPS:     false,
		GridVisible: true,
		WindowW:     1280,
		WindowH:     720,
		CameraSpeed: 1,
	}
}

// Load reads viewer preferences from config/viewer.json. If the file is
// missing or invalid, returns Default() and does not create a file.
func Load() (Prefs, error) {
	data, err := os.ReadFile(ConfigPath)
	if err != nil {
		return Default(), nil
	}
	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return Default(), nil
	}
	if p.WindowW <= 0 || p.WindowH <= 0 {
		d := Default()
		p.WindowW, p.WindowH = d.WindowW, d.WindowH
	}
	if p.CameraSpeed <= 0 {
		p.CameraSpeed = 1
	}
	return p, nil
}

// Save writes viewer preferences to config/viewer.json, creating the config
// directory if needed.
func Save(p Prefs) error {
	dir := filepath.Dir(ConfigPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(ConfigPath, data, 0644)
}
