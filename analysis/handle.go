// handle.go - Geliehene Verweise auf Backend-Tensoren
package analysis

import (
	"fmt"
	"slices"

	"github.com/jakobhartmann/tensat/ml"
)

// Handle refers to a tensor owned by a Session's backend. Handles are
// comparable and copied freely; they never free the tensor. Reading a handle
// after its session was closed panics with ErrSessionClosed.
type Handle struct {
	owner *Session
	t     ml.Tensor
}

// Valid reports whether h refers to a tensor.
func (h Handle) Valid() bool {
	return h.t != nil
}

func (h Handle) tensor() ml.Tensor {
	if !h.Valid() {
		fatalf(ErrBackendRejected, "invalid tensor handle")
	}
	if h.owner.closed.Load() {
		fatalf(ErrSessionClosed, "handle of session %s", h.owner.id)
	}
	return h.t
}

// Shape returns a copy of the tensor dimensions.
func (h Handle) Shape() []int {
	return slices.Clone(h.tensor().Shape())
}

func (h Handle) Rank() int {
	return h.tensor().Rank()
}

// Op returns the backend op producing the tensor and the output index.
func (h Handle) Op() (ml.Op, int) {
	t := h.tensor()
	return t.Op(), t.Index()
}

// Session returns the session that produced h.
func (h Handle) Session() *Session {
	return h.owner
}

// Equal reports whether both handles refer to the same backend tensor.
func (h Handle) Equal(o Handle) bool {
	return h == o
}

func (h Handle) String() string {
	switch {
	case !h.Valid():
		return "<invalid>"
	case h.owner.closed.Load():
		return "<closed>"
	}
	return fmt.Sprintf("%s%v", h.t.Op().Type(), h.t.Shape())
}
