// tensor_nn.go - Neuronale Netzwerk Operationen
// Enthält: Conv2D, Aktivierungen (Relu, Tanh, Sigmoid), Pooling

package ref

import (
	"github.com/jakobhartmann/tensat/ml"
)

// Conv2D faltet input (NCHW) mit weight (HWIO)
func (b *Backend) Conv2D(input, weight ml.Tensor, strideH, strideW int, pad ml.PaddingMode, act ml.ActiMode) ml.Tensor {
	b.use()
	ti, tw := b.tensorOf(input), b.tensorOf(weight)
	shape := conv2dShape(ti.shape, tw.shape, strideH, strideW, pad)
	params := ml.OpParams{
		KernelH:    tw.shape[0],
		KernelW:    tw.shape[1],
		StrideH:    strideH,
		StrideW:    strideW,
		Padding:    pad,
		Activation: act,
	}
	return b.getOrCreate(ml.OpConv2D, params, []*tensor{ti, tw}, [][]int{shape}, true).outputs[0]
}

// Relu wendet ReLU an
func (b *Backend) Relu(t ml.Tensor, inPlace bool) ml.Tensor {
	return b.activation(ml.OpRelu, t, inPlace)
}

// Tanh wendet Tangens Hyperbolicus an
func (b *Backend) Tanh(t ml.Tensor, inPlace bool) ml.Tensor {
	return b.activation(ml.OpTanh, t, inPlace)
}

// Sigmoid wendet Sigmoid an
func (b *Backend) Sigmoid(t ml.Tensor, inPlace bool) ml.Tensor {
	return b.activation(ml.OpSigmoid, t, inPlace)
}

func (b *Backend) activation(typ ml.OpType, t ml.Tensor, inPlace bool) ml.Tensor {
	b.use()
	tt := b.tensorOf(t)
	return b.getOrCreate(typ, ml.OpParams{InPlace: inPlace}, []*tensor{tt}, [][]int{tt.shape}, true).outputs[0]
}

// Pool2DAvg berechnet Average-Pooling
func (b *Backend) Pool2DAvg(input ml.Tensor, kernelH, kernelW, strideH, strideW int, pad ml.PaddingMode, act ml.ActiMode) ml.Tensor {
	return b.pool2d(ml.OpPool2DAvg, input, kernelH, kernelW, strideH, strideW, pad, act)
}

// Pool2DMax berechnet Max-Pooling
func (b *Backend) Pool2DMax(input ml.Tensor, kernelH, kernelW, strideH, strideW int, pad ml.PaddingMode, act ml.ActiMode) ml.Tensor {
	return b.pool2d(ml.OpPool2DMax, input, kernelH, kernelW, strideH, strideW, pad, act)
}

func (b *Backend) pool2d(typ ml.OpType, input ml.Tensor, kernelH, kernelW, strideH, strideW int, pad ml.PaddingMode, act ml.ActiMode) ml.Tensor {
	b.use()
	ti := b.tensorOf(input)
	shape := pool2dShape(ti.shape, kernelH, kernelW, strideH, strideW, pad)
	params := ml.OpParams{
		KernelH:    kernelH,
		KernelW:    kernelW,
		StrideH:    strideH,
		StrideW:    strideW,
		Padding:    pad,
		Activation: act,
	}
	return b.getOrCreate(typ, params, []*tensor{ti}, [][]int{shape}, true).outputs[0]
}
