// metadata.go - Metadaten einer Aequivalenzklasse
// Enthält: Metadata, Konstruktoren je Art, Zugriff mit Art-Pruefung, Interchangeable
package analysis

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/jakobhartmann/tensat/model"
)

// Metadata is the datum attached to every equivalence class. Exactly one
// payload is meaningful, selected by Kind. Metadata is immutable; build it
// with NameData, ScalarData, TensorData or TensorPairData.
//
// The zero value is kind Name with an empty name and invalid handles.
type Metadata struct {
	kind   model.Kind
	name   string
	scalar int
	tensor Handle
	pair   [2]Handle
}

func NameData(name string) Metadata {
	return Metadata{kind: model.KindName, name: name}
}

func ScalarData(v int) Metadata {
	return Metadata{kind: model.KindScalar, scalar: v}
}

func TensorData(h Handle) Metadata {
	return Metadata{kind: model.KindTensor, tensor: h}
}

func TensorPairData(first, second Handle) Metadata {
	return Metadata{kind: model.KindTensorPair, pair: [2]Handle{first, second}}
}

// Kind selects the meaningful payload.
func (m Metadata) Kind() model.Kind {
	return m.kind
}

func (m Metadata) want(k model.Kind) {
	if m.kind != k {
		fatalf(ErrGrammar, "metadata is %s, not %s", m.kind, k)
	}
}

// Name returns the payload of a Name record. It panics for other kinds, as do
// the other accessors.
func (m Metadata) Name() string {
	m.want(model.KindName)
	return m.name
}

func (m Metadata) Scalar() int {
	m.want(model.KindScalar)
	return m.scalar
}

func (m Metadata) Tensor() Handle {
	m.want(model.KindTensor)
	return m.tensor
}

// Pair returns both handles of a TensorPair record.
func (m Metadata) Pair() (Handle, Handle) {
	m.want(model.KindTensorPair)
	return m.pair[0], m.pair[1]
}

func (m Metadata) String() string {
	switch m.kind {
	case model.KindName:
		return strconv.Quote(m.name)
	case model.KindScalar:
		return strconv.Itoa(m.scalar)
	case model.KindTensor:
		return m.tensor.String()
	case model.KindTensorPair:
		return fmt.Sprintf("(%s, %s)", m.pair[0], m.pair[1])
	default:
		return m.kind.String()
	}
}

// Interchangeable reports whether two records could describe the same class:
// same kind and equal payload, where tensors compare by shape.
func Interchangeable(a, b Metadata) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case model.KindName:
		return a.name == b.name
	case model.KindScalar:
		return a.scalar == b.scalar
	case model.KindTensor:
		return sameShape(a.tensor, b.tensor)
	case model.KindTensorPair:
		return sameShape(a.pair[0], b.pair[0]) && sameShape(a.pair[1], b.pair[1])
	default:
		return false
	}
}

func sameShape(a, b Handle) bool {
	if !a.Valid() || !b.Valid() {
		return a.Valid() == b.Valid()
	}
	return slices.Equal(a.Shape(), b.Shape())
}
