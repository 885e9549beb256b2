package ops

import "github.com/gradtape/gradtape/internal/tensor"

// unaryOp is the shared shape of single-input operations.
type unaryOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// Inputs returns the single input.
func (op *unaryOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the operation result.
func (op *unaryOp) Output() *tensor.RawTensor { return op.output }

// NegOp records output = -x.
type NegOp struct{ unaryOp }

// NewNegOp creates a NegOp.
func NewNegOp(x, output *tensor.RawTensor) *NegOp {
	return &NegOp{unaryOp{input: x, output: output}}
}

// Backward: grad_x = -g.
func (op *NegOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Neg(outputGrad)}
}

// ExpOp records output = e^x.
type ExpOp struct{ unaryOp }

// NewExpOp creates an ExpOp.
func NewExpOp(x, output *tensor.RawTensor) *ExpOp {
	return &ExpOp{unaryOp{input: x, output: output}}
}

// Backward: d(e^x)/dx = e^x, which is the saved output.
func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, op.output)}
}

// LogOp records output = ln(x).
type LogOp struct{ unaryOp }

// NewLogOp creates a LogOp.
func NewLogOp(x, output *tensor.RawTensor) *LogOp {
	return &LogOp{unaryOp{input: x, output: output}}
}

// Backward: grad_x = g / x.
func (op *LogOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(outputGrad, op.input)}
}

// SqrtOp records output = √x.
type SqrtOp struct{ unaryOp }

// NewSqrtOp creates a SqrtOp.
func NewSqrtOp(x, output *tensor.RawTensor) *SqrtOp {
	return &SqrtOp{unaryOp{input: x, output: output}}
}

// Backward: d(√x)/dx = 1 / (2√x), reusing the saved output.
func (op *SqrtOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		backend.MulScalar(backend.Div(outputGrad, op.output), 0.5),
	}
}

// TanhOp records output = tanh(x).
type TanhOp struct{ unaryOp }

// NewTanhOp creates a TanhOp.
func NewTanhOp(x, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{unaryOp{input: x, output: output}}
}

// Backward: d(tanh x)/dx = 1 - tanh²x.
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	sq := backend.Mul(op.output, op.output)
	deriv := backend.AddScalar(backend.MulScalar(sq, -1), 1)
	return []*tensor.RawTensor{backend.Mul(outputGrad, deriv)}
}

// SigmoidOp records output = σ(x) = 1 / (1 + e^-x).
type SigmoidOp struct{ unaryOp }

// NewSigmoidOp creates a SigmoidOp.
func NewSigmoidOp(x, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{unaryOp{input: x, output: output}}
}

// Backward: dσ/dx = σ(x)(1 - σ(x)).
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	oneMinus := backend.AddScalar(backend.MulScalar(op.output, -1), 1)
	deriv := backend.Mul(op.output, oneMinus)
	return []*tensor.RawTensor{backend.Mul(outputGrad, deriv)}
}

// ReLUOp records output = max(0, x).
type ReLUOp struct{ unaryOp }

// NewReLUOp creates a ReLUOp.
func NewReLUOp(x, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{unaryOp{input: x, output: output}}
}

// Backward: gradient passes where x > 0. The mask is constant, so it is
// built directly rather than through the backend.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	mask := ones(op.input.Shape(), op.input.DType(), op.input.Device())

	switch op.input.DType() {
	case tensor.Float32:
		in, m := op.input.AsFloat32(), mask.AsFloat32()
		for i, v := range in {
			if v <= 0 {
				m[i] = 0
			}
		}
	case tensor.Float64:
		in, m := op.input.AsFloat64(), mask.AsFloat64()
		for i, v := range in {
			if v <= 0 {
				m[i] = 0
			}
		}
	}

	return []*tensor.RawTensor{backend.Mul(outputGrad, mask)}
}

// PowOp records output = x^p for a constant scalar exponent.
type PowOp struct {
	unaryOp
	exponent float64
}

// NewPowOp creates a PowOp.
func NewPowOp(x, output *tensor.RawTensor, p float64) *PowOp {
	return &PowOp{unaryOp{input: x, output: output}, p}
}

// Backward: d(x^p)/dx = p * x^(p-1).
func (op *PowOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	deriv := backend.MulScalar(backend.PowScalar(op.input, op.exponent-1), op.exponent)
	return []*tensor.RawTensor{backend.Mul(outputGrad, deriv)}
}

// AddScalarOp records output = x + c.
type AddScalarOp struct{ unaryOp }

// NewAddScalarOp creates an AddScalarOp.
func NewAddScalarOp(x, output *tensor.RawTensor) *AddScalarOp {
	return &AddScalarOp{unaryOp{input: x, output: output}}
}

// Backward: the constant shift has derivative 1.
func (op *AddScalarOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{outputGrad}
}

// MulScalarOp records output = x * c.
type MulScalarOp struct {
	unaryOp
	scalar float64
}

// NewMulScalarOp creates a MulScalarOp.
func NewMulScalarOp(x, output *tensor.RawTensor, scalar float64) *MulScalarOp {
	return &MulScalarOp{unaryOp{input: x, output: output}, scalar}
}

// Backward: grad_x = g * c.
func (op *MulScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.MulScalar(outputGrad, op.scalar)}
}
