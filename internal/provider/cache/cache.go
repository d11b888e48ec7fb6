// Package cache is a TTL-bounded JSON cache on local disk shared by all
// providers. Entries live in one file per key under a per-namespace
// directory; there is no locking and the last writer wins.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"pricr/internal/metrics"
)

const appDir = "pricr"

type envelope[T any] struct {
	FetchedAtUnix int64 `json:"fetched_at_unix"`
	Value         T     `json:"value"`
}

// Store reads and writes cache entries below a root directory.
// A nil *Store behaves like a disabled one.
type Store struct {
	root     string
	disabled bool
	log      *zap.Logger
	now      func() time.Time
}

type Option func(*Store)

// WithRoot overrides the cache directory.
func WithRoot(dir string) Option {
	return func(s *Store) {
		if dir != "" {
			s.root = dir
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// Disabled makes every read miss and every write a no-op.
func Disabled() Option { return func(s *Store) { s.disabled = true } }

func New(opts ...Option) *Store {
	s := &Store{log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.root == "" {
		s.root = DefaultRoot()
	}
	return s
}

// DefaultRoot resolves the platform cache directory for pricr.
func DefaultRoot() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir)
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, appDir)
	}
	return filepath.Join(os.Getenv("HOME"), ".cache", appDir)
}

func (s *Store) Root() string {
	if s == nil {
		return ""
	}
	return s.root
}

func (s *Store) Enabled() bool { return s != nil && !s.disabled }

// Path returns the file that holds key inside namespace.
func (s *Store) Path(namespace, key string) string {
	return filepath.Join(s.root, SanitizeNamespace(namespace), fmt.Sprintf("%016x.json", xxhash.Sum64String(key)))
}

// Read returns the cached value when it exists, decodes as T and is no
// older than ttl. Anything else is a miss; stale entries are left in place.
func Read[T any](s *Store, namespace, key string, ttl time.Duration) (T, bool) {
	var zero T
	if !s.Enabled() {
		return zero, false
	}
	path := s.Path(namespace, key)
	raw, err := os.ReadFile(path)
	if err != nil {
		metrics.CacheMiss(namespace)
		return zero, false
	}
	var env envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		s.log.Debug("cache entry undecodable", zap.String("path", path), zap.Error(err))
		metrics.CacheMiss(namespace)
		return zero, false
	}
	// Ages are whole seconds, matching the stored timestamp.
	age := s.now().Unix() - env.FetchedAtUnix
	if age < 0 || age > int64(ttl/time.Second) {
		metrics.CacheMiss(namespace)
		return zero, false
	}
	metrics.CacheHit(namespace)
	return env.Value, true
}

// Write stores value under key. Failures are logged and dropped.
func (s *Store) Write(namespace, key string, value any) {
	if !s.Enabled() {
		return
	}
	path := s.Path(namespace, key)
	if err := s.write(path, value); err != nil {
		s.log.Debug("cache write failed", zap.String("path", path), zap.Error(err))
		metrics.CacheWriteFailure(namespace)
	}
}

func (s *Store) write(path string, value any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(envelope[any]{FetchedAtUnix: s.now().Unix(), Value: value})
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// SanitizeNamespace maps every rune outside [A-Za-z0-9_-] to '_'.
func SanitizeNamespace(ns string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, ns)
}
