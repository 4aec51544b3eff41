// types.go - Datentypen und Konstanten fuer Tensor-Operationen
// Dieses Modul definiert OpType, PaddingMode, ActiMode und DType.
// Die numerischen Werte von PaddingMode und ActiMode sind mit dem Backend geteilt.
package ml

import "fmt"

// DType represents the data type of weight elements held by a backend.
type DType int

const (
	DTypeOther DType = iota
	DTypeF32
	DTypeF16
)

func (d DType) String() string {
	switch d {
	case DTypeF32:
		return "f32"
	case DTypeF16:
		return "f16"
	default:
		return "other"
	}
}

// ParseDType liest einen DType aus seinem Namen ("f32", "f16")
func ParseDType(s string) (DType, error) {
	switch s {
	case "f32", "":
		return DTypeF32, nil
	case "f16":
		return DTypeF16, nil
	default:
		return DTypeOther, fmt.Errorf("unsupported dtype %q", s)
	}
}

// PaddingMode selects how spatial operators pad their input.
type PaddingMode int32

const (
	PaddingSame  PaddingMode = 0
	PaddingValid PaddingMode = 1
)

// PaddingModeFromInt decodes the integer encoding used in terms.
func PaddingModeFromInt(v int) (PaddingMode, error) {
	switch p := PaddingMode(v); p {
	case PaddingSame, PaddingValid:
		return p, nil
	}
	return 0, fmt.Errorf("invalid padding mode %d", v)
}

func (p PaddingMode) String() string {
	switch p {
	case PaddingSame:
		return "same"
	case PaddingValid:
		return "valid"
	default:
		return fmt.Sprintf("padding(%d)", int32(p))
	}
}

// ActiMode is the activation fused into an operator.
type ActiMode int32

const (
	ActiNone    ActiMode = 0
	ActiSigmoid ActiMode = 1
	ActiRelu    ActiMode = 2
	ActiTanh    ActiMode = 3
)

// ActiModeFromInt decodes the integer encoding used in terms.
func ActiModeFromInt(v int) (ActiMode, error) {
	switch a := ActiMode(v); a {
	case ActiNone, ActiSigmoid, ActiRelu, ActiTanh:
		return a, nil
	}
	return 0, fmt.Errorf("invalid activation mode %d", v)
}

func (a ActiMode) String() string {
	switch a {
	case ActiNone:
		return "none"
	case ActiSigmoid:
		return "sigmoid"
	case ActiRelu:
		return "relu"
	case ActiTanh:
		return "tanh"
	default:
		return fmt.Sprintf("acti(%d)", int32(a))
	}
}

// OpType identifies the kind of a backend op.
type OpType int

const (
	OpInvalid OpType = iota
	OpInput
	OpWeight
	OpEwAdd
	OpEwMul
	OpMatmul
	OpConv2D
	OpRelu
	OpTanh
	OpSigmoid
	OpPool2DAvg
	OpPool2DMax
	OpConcat
	OpMergeGConv
	OpSplit
	OpEnlarge
)

var opTypeNames = [...]string{
	OpInvalid:    "invalid",
	OpInput:      "input",
	OpWeight:     "weight",
	OpEwAdd:      "ew_add",
	OpEwMul:      "ew_mul",
	OpMatmul:     "matmul",
	OpConv2D:     "conv2d",
	OpRelu:       "relu",
	OpTanh:       "tanh",
	OpSigmoid:    "sigmoid",
	OpPool2DAvg:  "pool2d_avg",
	OpPool2DMax:  "pool2d_max",
	OpConcat:     "concat",
	OpMergeGConv: "merge_gconv",
	OpSplit:      "split",
	OpEnlarge:    "enlarge",
}

func (t OpType) String() string {
	if t >= 0 && int(t) < len(opTypeNames) {
		return opTypeNames[t]
	}
	return fmt.Sprintf("op(%d)", int(t))
}
