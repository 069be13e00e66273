package cache

import (
	"sync"
	"time"
)

// Kinds of cached representation tracked by Metrics.
const (
	KindPreview = "preview"
	KindFull    = "full"
)

// Metrics collects cache and decode statistics. It is safe for concurrent use.
type Metrics struct {
	mu sync.Mutex

	previewHits   int64
	previewMisses int64
	fullHits      int64
	fullMisses    int64

	inserts       int64
	invalidations int64
	decodes       int64
	decodeErrors  int64

	inFlight     int64
	peakInFlight int64

	startTime time.Time
}

// Snapshot is a point-in-time copy of Metrics.
type Snapshot struct {
	PreviewHits   int64
	PreviewMisses int64
	FullHits      int64
	FullMisses    int64
	Inserts       int64
	Invalidations int64
	Decodes       int64
	DecodeErrors  int64
	// InFlight is the number of decodes running right now.
	InFlight int64
	// PeakInFlight is the highest number of decodes ever running at once.
	PeakInFlight int64
	Uptime       time.Duration
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordHit records a cache hit for kind.
func (m *Metrics) RecordHit(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if kind == KindFull {
		m.fullHits++
		return
	}
	m.previewHits++
}

// RecordMiss records a cache miss for kind.
func (m *Metrics) RecordMiss(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if kind == KindFull {
		m.fullMisses++
		return
	}
	m.previewMisses++
}

// RecordInsert records a new cache entry.
func (m *Metrics) RecordInsert() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
}

// RecordInvalidation records n removed entries.
func (m *Metrics) RecordInvalidation(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidations += int64(n)
}

// DecodeStarted marks the start of a decode and returns a function that
// marks its end. The returned function must be called exactly once.
//
//	done := metrics.DecodeStarted()
//	defer func() { done(err) }()
func (m *Metrics) DecodeStarted() func(err error) {
	m.mu.Lock()
	m.decodes++
	m.inFlight++
	if m.inFlight > m.peakInFlight {
		m.peakInFlight = m.inFlight
	}
	m.mu.Unlock()

	var once sync.Once
	return func(err error) {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.inFlight--
			if err != nil {
				m.decodeErrors++
			}
		})
	}
}

// Snapshot returns a copy of the current values.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		PreviewHits:   m.previewHits,
		PreviewMisses: m.previewMisses,
		FullHits:      m.fullHits,
		FullMisses:    m.fullMisses,
		Inserts:       m.inserts,
		Invalidations: m.invalidations,
		Decodes:       m.decodes,
		DecodeErrors:  m.decodeErrors,
		InFlight:      m.inFlight,
		PeakInFlight:  m.peakInFlight,
		Uptime:        time.Since(m.startTime),
	}
}

// HitRate returns hits divided by lookups across both kinds, or 0 with no lookups.
func (s Snapshot) HitRate() float64 {
	hits := s.PreviewHits + s.FullHits
	total := hits + s.PreviewMisses + s.FullMisses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Reset clears all counters. In-flight decodes keep their gauge.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.previewHits, m.previewMisses = 0, 0
	m.fullHits, m.fullMisses = 0, 0
	m.inserts, m.invalidations = 0, 0
	m.decodes, m.decodeErrors = 0, 0
	m.peakInFlight = m.inFlight
	m.startTime = time.Now()
}
