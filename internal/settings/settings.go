// Package settings persists watermark preferences between runs: the last
// used text and parameters plus a short most-recent-first history of
// watermark texts.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Chandler-Lu/rabpdf/internal/yamlutil"
)

// MaxHistory bounds the recent-text list.
const MaxHistory = 5

// appDirName is the per-user config subdirectory.
const appDirName = "rabpdf"

// settingsFileName is the file inside the config directory.
const settingsFileName = "settings.yaml"

// Settings holds the persisted user preferences.
type Settings struct {
	LastWatermarkText string   `yaml:"lastWatermarkText"`
	Opacity           float64  `yaml:"opacity"`
	FontSize          float64  `yaml:"fontSize"`
	RotationDegrees   float64  `yaml:"rotationDegrees"`
	RecentTextHistory []string `yaml:"recentTextHistory"`
}

// Default returns the settings used when no file exists yet.
func Default() *Settings {
	return &Settings{
		Opacity:         0.2,
		FontSize:        25,
		RotationDegrees: 30,
	}
}

// Remember records text as the most recent watermark, de-duplicating and
// trimming the history to MaxHistory entries. Empty text is ignored.
func (s *Settings) Remember(text string) {
	if text == "" {
		return
	}
	s.LastWatermarkText = text

	history := make([]string, 0, MaxHistory)
	history = append(history, text)
	for _, t := range s.RecentTextHistory {
		if t == text {
			continue
		}
		history = append(history, t)
		if len(history) == MaxHistory {
			break
		}
	}
	s.RecentTextHistory = history
}

// Store reads and writes a Settings file at a fixed path.
type Store struct {
	path string
}

// NewStore creates a Store rooted in the user config directory.
func NewStore() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("settings: resolving config dir: %w", err)
	}
	return NewStoreAt(filepath.Join(dir, appDirName, settingsFileName)), nil
}

// NewStoreAt creates a Store with an explicit file path (used by tests).
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Load reads the settings file. A missing file yields Default() without
// error; a corrupt file is reported.
func (st *Store) Load() (*Settings, error) {
	data, err := os.ReadFile(st.path) // #nosec G304 -- path is derived from UserConfigDir
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: reading %s: %w", st.path, err)
	}

	var s Settings
	if err := yamlutil.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("settings: parsing %s: %w", st.path, err)
	}
	return &s, nil
}

// Save writes the settings file, creating the directory if needed.
func (st *Store) Save(s *Settings) error {
	data, err := yamlutil.Marshal(s)
	if err != nil {
		return fmt.Errorf("settings: encoding: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(st.path), 0o750); err != nil {
		return fmt.Errorf("settings: creating config dir: %w", err)
	}
	if err := os.WriteFile(st.path, data, 0o600); err != nil {
		return fmt.Errorf("settings: writing %s: %w", st.path, err)
	}
	return nil
}
