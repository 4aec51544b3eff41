// weights.go - Speicherung der Gewichtswerte
// f32-Gewichte liegen in einem ptensor.Dense, f16-Gewichte als float16-Slice.

package ref

import (
	"slices"

	ptensor "github.com/pdevine/tensor"
	"github.com/x448/float16"

	"github.com/jakobhartmann/tensat/ml"
)

type weight struct {
	dtype ml.DType
	f32   *ptensor.Dense
	f16   []float16.Float16
}

// newWeight uebernimmt values; der Aufrufer darf den Slice nicht weiter verwenden
func newWeight(dtype ml.DType, shape []int, values []float32) *weight {
	if dtype == ml.DTypeF16 {
		f16 := make([]float16.Float16, len(values))
		for i, v := range values {
			f16[i] = float16.Fromfloat32(v)
		}
		return &weight{dtype: dtype, f16: f16}
	}

	return &weight{
		dtype: ml.DTypeF32,
		f32:   ptensor.New(ptensor.WithShape(shape...), ptensor.WithBacking(values)),
	}
}

func (w *weight) floats() []float32 {
	if w.dtype == ml.DTypeF16 {
		out := make([]float32, len(w.f16))
		for i, v := range w.f16 {
			out[i] = v.Float32()
		}
		return out
	}

	return slices.Clone(w.f32.Data().([]float32))
}

// WeightValues gibt die Werte einer Weight-Op als float32 zurueck
func (b *Backend) WeightValues(o ml.Op) []float32 {
	b.use()
	w, ok := b.weights[b.opOf(o).id]
	if !ok {
		return nil
	}
	return w.floats()
}

// WeightDType gibt den Speichertyp einer Weight-Op zurueck
func (b *Backend) WeightDType(o ml.Op) ml.DType {
	b.use()
	if w, ok := b.weights[b.opOf(o).id]; ok {
		return w.dtype
	}
	return ml.DTypeOther
}
