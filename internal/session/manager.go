// Package session maps client sessions to their signal pipelines. Each
// session owns one processor and one preference store; teardown is
// symmetric with creation so no subscriptions or background computation
// outlive the session.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cogui/internal/signal"
	"cogui/internal/store"
)

// Pipeline bundles the per-session processing chain.
type Pipeline struct {
	ID        string
	Processor *signal.Processor
	Store     *store.Store

	lastSeen time.Time
}

// Manager creates, hands out and expires pipelines.
type Manager struct {
	mu        sync.Mutex
	log       *zap.Logger
	pipelines map[string]*Pipeline

	signalConfig signal.Config
	storeOptions func(sessionID string) store.Options

	stop chan struct{}
}

// NewManager builds a manager. storeOptions is called once per new session
// to assemble that session's store.
func NewManager(log *zap.Logger, signalConfig signal.Config, storeOptions func(sessionID string) store.Options) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		log:          log,
		pipelines:    make(map[string]*Pipeline),
		signalConfig: signalConfig,
		storeOptions: storeOptions,
	}
}

// GetOrCreate returns the pipeline for id, creating it on first use. An
// empty id gets a fresh one.
func (m *Manager) GetOrCreate(id string) *Pipeline {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
	}
	p, ok := m.pipelines[id]
	if !ok {
		opts := m.storeOptions(id)
		p = &Pipeline{
			ID:        id,
			Processor: signal.NewProcessor(m.signalConfig, m.log),
			Store:     store.New(opts),
		}
		m.pipelines[id] = p
		m.log.Info("session pipeline created", zap.String("session", id))
	}
	p.lastSeen = time.Now()
	return p
}

// Get returns an existing pipeline, if any.
func (m *Manager) Get(id string) (*Pipeline, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pipelines[id]
	if ok {
		p.lastSeen = time.Now()
	}
	return p, ok
}

// Remove tears a pipeline down and forgets it.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(id)
}

func (m *Manager) removeLocked(id string) {
	p, ok := m.pipelines[id]
	if !ok {
		return
	}
	p.Processor.Close()
	p.Store.Close()
	delete(m.pipelines, id)
	m.log.Info("session pipeline removed", zap.String("session", id))
}

// Len returns the number of live pipelines.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pipelines)
}

// StartSweeper expires pipelines idle longer than ttl, checking every
// interval. Call Stop to halt the sweeper.
func (m *Manager) StartSweeper(interval, ttl time.Duration) {
	m.mu.Lock()
	if m.stop != nil {
		m.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	m.stop = stop
	m.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.sweep(ttl)
			}
		}
	}()
}

func (m *Manager) sweep(ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.pipelines {
		if p.lastSeen.Before(cutoff) {
			m.log.Debug("expiring idle session", zap.String("session", id))
			m.removeLocked(id)
		}
	}
}

// Stop halts the sweeper and tears down every pipeline.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
	for id := range m.pipelines {
		m.removeLocked(id)
	}
}
