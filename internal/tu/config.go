// Package tu holds the editor's process-level plumbing: configuration
// and logging.
package tu

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration from config.toml.
type Config struct {
	Library LibraryConfig `toml:"library"`
	Player  PlayerConfig  `toml:"player"`
	Log     LogConfig     `toml:"log"`
}

// LibraryConfig configures scanning.
type LibraryConfig struct {
	Root    string `toml:"root"`
	Workers int    `toml:"workers"`
}

// PlayerConfig selects and configures the playback backend.
type PlayerConfig struct {
	Backend   string          `toml:"backend"`
	PollMS    int64           `toml:"poll_ms"`
	Volume    int             `toml:"volume"`
	VLC       VLCConfig       `toml:"vlc"`
	MPD       MPDConfig       `toml:"mpd"`
	GStreamer GStreamerConfig `toml:"gstreamer"`
}

// VLCConfig holds VLC HTTP RC settings.
type VLCConfig struct {
	URL       string `toml:"url"`
	User      string `toml:"user"`
	Pass      string `toml:"pass"`
	TimeoutMS int64  `toml:"timeout_ms"`
}

// MPDConfig holds MPD connection settings.
type MPDConfig struct {
	Network  string `toml:"network"`
	Address  string `toml:"address"`
	Password string `toml:"password"`
}

// GStreamerConfig holds the pipeline template settings.
type GStreamerConfig struct {
	Pipeline string `toml:"pipeline"`
	Device   string `toml:"device"`
}

// LogConfig describes logging options.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// Load reads config.toml if present. A missing file yields defaults.
func Load() (Config, error) {
	path, err := configPath()
	if err != nil {
		return defaults(), err
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. A missing file yields defaults.
func LoadFile(path string) (Config, error) {
	cfg := defaults()

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if info.IsDir() {
		return cfg, errors.New("config path is a directory")
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Library: LibraryConfig{Workers: 4},
		Player: PlayerConfig{
			Backend: "vlc",
			PollMS:  400,
			Volume:  80,
			VLC:     VLCConfig{URL: "http://127.0.0.1:8080", TimeoutMS: 5000},
			MPD:     MPDConfig{Network: "tcp", Address: "127.0.0.1:6600"},
		},
		Log: LogConfig{Level: "info", Format: "console", Output: "stderr"},
	}
}

func configPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "tu", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tu", "config.toml"), nil
}
