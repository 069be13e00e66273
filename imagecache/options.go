package imagecache

import (
	"github.com/jmgilman/imagedesk/imaging"
	"github.com/jmgilman/imagedesk/internal/logging"
)

// DefaultMaxConcurrentDecodes is the default decode admission limit.
const DefaultMaxConcurrentDecodes = 4

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *logging.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithGenerator replaces the preview generator.
func WithGenerator(g PreviewGenerator) Option {
	return func(m *Manager) {
		if g != nil {
			m.generator = g
		}
	}
}

// WithThumbnailer sets the preview size and quality of the default generator.
func WithThumbnailer(t imaging.Thumbnailer) Option {
	return func(m *Manager) {
		m.generator = imaging.NewGenerator(t)
	}
}

// WithMaxConcurrentDecodes bounds how many previews are generated at once.
// Values below 1 are ignored.
func WithMaxConcurrentDecodes(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxDecodes = int64(n)
		}
	}
}

// WithProber replaces the header probe used by LoadFull.
func WithProber(p imaging.ProberFunc) Option {
	return func(m *Manager) {
		if p != nil {
			m.probe = p
		}
	}
}
