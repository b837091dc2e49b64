package monitor

import (
	"context"
	"os"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Pinger is satisfied by the task store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Monitor struct {
	store     Pinger
	redis     *redislib.Client
	uploadDir string

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

// New builds a monitor. redis may be nil when the list cache is disabled.
func New(store Pinger, redis *redislib.Client, uploadDir string, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		store:     store,
		redis:     redis,
		uploadDir: uploadDir,
		interval:  interval,
		stopCh:    make(chan struct{}),
		logger:    logger,
	}
}

// Start performs a first check synchronously and then polls in the background.
func (m *Monitor) Start() {
	m.Refresh()
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Store
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh probes every dependency once and publishes the result.
func (m *Monitor) Refresh() {
	status := Status{
		Store:        m.checkStore(),
		Cache:        m.checkRedis(),
		CacheEnabled: m.redis != nil,
		Uploads:      m.checkUploads(),
		LastCheck:    time.Now(),
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if previous.Healthy() && !status.Healthy() && !previous.LastCheck.IsZero() {
		m.logger.Warn("dependency check failed",
			zap.Bool("store", status.Store),
			zap.Bool("cache", status.Cache),
			zap.Bool("uploads", status.Uploads))
	}
}

func (m *Monitor) checkStore() bool {
	if m.store == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return m.store.Ping(ctx) == nil
}

func (m *Monitor) checkRedis() bool {
	if m.redis == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.redis.Ping(ctx).Err() == nil
}

func (m *Monitor) checkUploads() bool {
	info, err := os.Stat(m.uploadDir)
	return err == nil && info.IsDir()
}
