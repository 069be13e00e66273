package config

import (
	"os"

	"github.com/jmgilman/imagedesk/imaging"
	"github.com/jmgilman/imagedesk/internal/logging"
)

// Config is the decoded application configuration.
type Config struct {
	Root     string   `json:"root"`
	Previews Previews `json:"previews"`
	Decode   Decode   `json:"decode"`
	Log      Log      `json:"log"`
}

// Previews configures thumbnail generation.
type Previews struct {
	MaxDimension int `json:"maxDimension"`
	Quality      int `json:"quality"`
}

// Decode configures the decode worker pool.
type Decode struct {
	MaxConcurrent int `json:"maxConcurrent"`
}

// Log configures the logger.
type Log struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	CallerInfo bool   `json:"callerInfo"`
}

// Default returns the configuration used when no file is given. It matches
// the schema defaults.
func Default() Config {
	return Config{
		Previews: Previews{
			MaxDimension: imaging.DefaultMaxDimension,
			Quality:      imaging.DefaultQuality,
		},
		Decode: Decode{MaxConcurrent: 4},
		Log:    Log{Level: "info", Format: "text"},
	}
}

// LogConfig converts the log settings into a logger configuration writing
// to stderr.
func (c Config) LogConfig() logging.Config {
	return logging.Config{
		Level:            logging.ParseLevel(c.Log.Level),
		JSON:             c.Log.Format == "json",
		EnableCallerInfo: c.Log.CallerInfo,
		Output:           os.Stderr,
	}
}

// Thumbnailer returns the preview settings as a Thumbnailer.
func (c Config) Thumbnailer() imaging.Thumbnailer {
	return imaging.Thumbnailer{
		MaxDimension: c.Previews.MaxDimension,
		Quality:      c.Previews.Quality,
	}
}
