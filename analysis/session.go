// session.go - Exklusiver Zugang zu einem Tensor-Backend
// Enthält: Session, OpenSession, Close, with, wrap/unwrap, Graph-Abfragen
package analysis

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/jakobhartmann/tensat/ml"
	_ "github.com/jakobhartmann/tensat/ml/backend"
)

// Session owns one backend graph. Every backend call is serialized through
// the session; the backend itself is never handed out.
type Session struct {
	id     uuid.UUID
	logger *slog.Logger

	mu      sync.Mutex
	backend ml.Backend
	closed  atomic.Bool
}

// OpenSession creates a new graph on the named backend.
func OpenSession(name string, params ml.BackendParams) (*Session, error) {
	if params.Logger == nil {
		params.Logger = slog.Default()
	}

	b, err := ml.NewBackend(name, params)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:      uuid.New(),
		backend: b,
	}
	s.logger = params.Logger.With("session", s.id, "backend", name)
	s.logger.Debug("session opened")
	return s, nil
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

// Close frees the backend graph. Handles of this session become unusable.
// Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Swap(true) {
		return
	}
	s.backend.Close()
	s.logger.Debug("session closed")
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// with runs fn with exclusive access to the backend.
func (s *Session) with(fn func(ml.Backend)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		fatalf(ErrSessionClosed, "session %s", s.id)
	}
	fn(s.backend)
}

func (s *Session) wrap(t ml.Tensor) Handle {
	if t == nil {
		fatalf(ErrBackendRejected, "backend returned no tensor")
	}
	return Handle{owner: s, t: t}
}

func (s *Session) unwrap(h Handle) ml.Tensor {
	if h.Valid() && h.owner != s {
		fatalf(ErrForeignHandle, "handle of session %s used in session %s", h.owner.id, s.id)
	}
	return h.tensor()
}

// NumOps is the number of ops in the backend graph.
func (s *Session) NumOps() (n int) {
	s.with(func(b ml.Backend) { n = len(b.Ops()) })
	return n
}

// TotalCost sums the cost of all ops in the backend graph.
func (s *Session) TotalCost() (cost float64) {
	s.with(func(b ml.Backend) { cost = b.TotalCost() })
	return cost
}

// InEdges lists the edges ending at the op that produces h.
func (s *Session) InEdges(h Handle) (edges []ml.Edge) {
	t := s.unwrap(h)
	s.with(func(b ml.Backend) { edges = b.InEdges(t.Op()) })
	return edges
}
