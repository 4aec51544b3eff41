// tensor_shape.go - Shape-Inferenz fuer alle Op-Typen
// Aktivierungen sind NCHW, Gewichte HWIO: (kh, kw, cin/groups, cout).
// Fehlerhafte Shapes fuehren zu einem Panic mit ml.ErrShape.

package ref

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/jakobhartmann/tensat/ml"
)

func shapeErrorf(format string, args ...any) {
	panic(errors.Wrapf(ml.ErrShape, format, args...))
}

// broadcastShape erlaubt gleiche Dimensionen oder Dimension 1 auf einer Seite
func broadcastShape(a, b []int) []int {
	if len(a) != len(b) {
		shapeErrorf("element-wise: rank %d vs %d", len(a), len(b))
	}

	out := make([]int, len(a))
	for i := range a {
		switch {
		case a[i] == b[i], b[i] == 1:
			out[i] = a[i]
		case a[i] == 1:
			out[i] = b[i]
		default:
			shapeErrorf("element-wise: %v vs %v", a, b)
		}
	}
	return out
}

func matmulShape(a, b []int) []int {
	r := len(a)
	if r < 2 || len(b) != r {
		shapeErrorf("matmul: rank %d vs %d", len(a), len(b))
	}
	if !slices.Equal(a[:r-2], b[:r-2]) {
		shapeErrorf("matmul: batch dims %v vs %v", a[:r-2], b[:r-2])
	}
	if a[r-1] != b[r-2] {
		shapeErrorf("matmul: inner dims %v x %v", a, b)
	}

	out := slices.Clone(a)
	out[r-1] = b[r-1]
	return out
}

// outputDim berechnet die Ausgabegroesse einer raeumlichen Dimension
func outputDim(in, kernel, stride int, pad ml.PaddingMode) int {
	if stride <= 0 || kernel <= 0 {
		shapeErrorf("kernel %d, stride %d", kernel, stride)
	}

	switch pad {
	case ml.PaddingSame:
		return (in + stride - 1) / stride
	case ml.PaddingValid:
		if in < kernel {
			shapeErrorf("valid padding: input %d smaller than kernel %d", in, kernel)
		}
		return (in-kernel)/stride + 1
	}

	shapeErrorf("unknown %s", pad)
	return 0
}

func conv2dShape(input, weight []int, strideH, strideW int, pad ml.PaddingMode) []int {
	if len(input) != 4 || len(weight) != 4 {
		shapeErrorf("conv2d: input %v, weight %v must be rank 4", input, weight)
	}

	n, c, h, w := input[0], input[1], input[2], input[3]
	kh, kw, cpg, cout := weight[0], weight[1], weight[2], weight[3]
	if cpg <= 0 || c%cpg != 0 {
		shapeErrorf("conv2d: %d input channels not divisible by %d", c, cpg)
	}
	if groups := c / cpg; cout%groups != 0 {
		shapeErrorf("conv2d: %d output channels not divisible into %d groups", cout, groups)
	}

	return []int{n, cout, outputDim(h, kh, strideH, pad), outputDim(w, kw, strideW, pad)}
}

func pool2dShape(input []int, kernelH, kernelW, strideH, strideW int, pad ml.PaddingMode) []int {
	if len(input) != 4 {
		shapeErrorf("pool2d: input %v must be rank 4", input)
	}

	return []int{input[0], input[1], outputDim(input[2], kernelH, strideH, pad), outputDim(input[3], kernelW, strideW, pad)}
}

func concatShape(axis int, shapes [][]int) []int {
	if len(shapes) == 0 {
		shapeErrorf("concat: no inputs")
	}

	out := slices.Clone(shapes[0])
	if axis < 0 || axis >= len(out) {
		shapeErrorf("concat: axis %d out of range for rank %d", axis, len(out))
	}

	for _, s := range shapes[1:] {
		if len(s) != len(out) {
			shapeErrorf("concat: rank %d vs %d", len(s), len(out))
		}
		for i := range s {
			if i != axis && s[i] != out[i] {
				shapeErrorf("concat: %v vs %v along axis %d", shapes[0], s, axis)
			}
		}
		out[axis] += s[axis]
	}
	return out
}

// splitShapes teilt gleichmaessig; false wenn nicht moeglich
func splitShapes(shape []int, axis, n int) ([][]int, bool) {
	if n <= 0 || axis < 0 || axis >= len(shape) || shape[axis]%n != 0 {
		return nil, false
	}

	shapes := make([][]int, n)
	for i := range shapes {
		shapes[i] = slices.Clone(shape)
		shapes[i][axis] = shape[axis] / n
	}
	return shapes, true
}

// mergeGConvShape vervielfacht die Eingangskanaele pro Gruppe
func mergeGConvShape(weight []int, count int) []int {
	if len(weight) != 4 || count <= 0 {
		shapeErrorf("merge_gconv: weight %v, count %d", weight, count)
	}

	out := slices.Clone(weight)
	out[2] *= count
	return out
}

// enlargeShape vergroessert den Kernel auf die Kernelgroesse von ref
func enlargeShape(weight, ref []int) []int {
	if len(weight) != 4 || len(ref) != 4 {
		shapeErrorf("enlarge: %v, %v must be rank 4", weight, ref)
	}
	if weight[0] > ref[0] || weight[1] > ref[1] {
		shapeErrorf("enlarge: kernel %v larger than reference %v", weight[:2], ref[:2])
	}

	return []int{ref[0], ref[1], weight[2], weight[3]}
}

func checkDims(dims []int) {
	if len(dims) == 0 {
		shapeErrorf("tensor must have rank >= 1")
	}
	for _, d := range dims {
		if d <= 0 {
			shapeErrorf("non-positive dimension in %v", dims)
		}
	}
}
