// costcache.go - Cache fuer gemessene Op-Kosten
//
// Dieses Modul enthaelt:
// - Cache: Schnittstelle (erfuellt ml.CostCache)
// - NewMemory: Map-basierter Cache fuer eine Sitzung
// - Open: BadgerDB-basierter Cache, der Kosten zwischen Laeufen behaelt
package costcache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// Cache stores op costs by key.
type Cache interface {
	Get(key string) (float64, bool)
	Put(key string, cost float64)
	Close() error
}

// =============================================================================
// Memory
// =============================================================================

type memory struct {
	mu    sync.RWMutex
	costs map[string]float64
}

// NewMemory erstellt einen Cache im Speicher
func NewMemory() Cache {
	return &memory{costs: make(map[string]float64)}
}

func (m *memory) Get(key string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cost, ok := m.costs[key]
	return cost, ok
}

func (m *memory) Put(key string, cost float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.costs[key] = cost
}

func (m *memory) Close() error {
	return nil
}

// =============================================================================
// BadgerDB
// =============================================================================

// Config holds configuration for a BadgerDB backed cache.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	InMemory bool

	// Logger receives BadgerDB's internal log output. If nil, it is discarded.
	Logger *slog.Logger
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

type store struct {
	db     *badger.DB
	logger *slog.Logger
}

// keyPrefix trennt Kosten-Eintraege von moeglichen anderen Daten
const keyPrefix = "cost/"

// Open oeffnet einen BadgerDB-Cache
func Open(cfg Config) (Cache, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent cost cache")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create cost cache directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	logger := cfg.Logger
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
		logger = slog.Default()
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cost cache: %w", err)
	}

	return &store{db: db, logger: logger}, nil
}

func (s *store) Get(key string) (float64, bool) {
	var cost float64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("cost entry has %d bytes", len(val))
			}
			cost = math.Float64frombits(binary.LittleEndian.Uint64(val))
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			s.logger.Warn("cost cache read failed", "key", key, "error", err)
		}
		return 0, false
	}
	return cost, true
}

// Put schreibt einen Eintrag; Fehler werden nur geloggt, weil der Cache
// beim naechsten Zugriff neu schaetzt
func (s *store) Put(key string, cost float64) {
	val := binary.LittleEndian.AppendUint64(nil, math.Float64bits(cost))
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), val)
	}); err != nil {
		s.logger.Warn("cost cache write failed", "key", key, "error", err)
	}
}

func (s *store) Close() error {
	return s.db.Close()
}
