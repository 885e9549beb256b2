package autodiff

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gradtape/gradtape/internal/autodiff/ops"
	"github.com/gradtape/gradtape/internal/tensor"
)

// GradientTape records operations performed on tracked values during a
// forward pass and computes gradients by walking the record backward
// (reverse-mode automatic differentiation).
//
// A tape is created with Backend.NewTape and records until Close. Values
// must be watched — explicitly with Watch, or implicitly by reading a
// trainable Variable — for Gradient to report their gradients; gradients
// of values that were never watched come back nil, not as an error.
//
// By default a tape releases its recorded operations after the first
// Gradient call; a second call returns an error. Create the tape with the
// Persistent option to query multiple gradients from one forward pass.
type GradientTape struct {
	backend    tensor.Backend      // records backward ops on any outer tapes
	detach     func(*GradientTape) // unregisters from the owning backend
	ops        []ops.Operation     // recorded operations, execution order
	watched    map[*tensor.RawTensor]bool
	recording  bool
	persistent bool
	used       bool
}

// TapeOption configures a tape at creation.
type TapeOption func(*GradientTape)

// Persistent keeps the recorded operations alive across Gradient calls.
func Persistent() TapeOption {
	return func(t *GradientTape) { t.persistent = true }
}

// Watch marks a value as tracked. Gradients flow to watched values only.
func (t *GradientTape) Watch(raw *tensor.RawTensor) {
	t.watched[raw] = true
}

// IsWatched reports whether a value is tracked on this tape.
func (t *GradientTape) IsWatched(raw *tensor.RawTensor) bool {
	return t.watched[raw]
}

// Stop pauses recording. Operations performed while stopped are invisible
// to this tape.
func (t *GradientTape) Stop() {
	t.recording = false
}

// Resume re-enables recording after Stop.
func (t *GradientTape) Resume() {
	t.recording = true
}

// IsRecording reports whether the tape currently records operations.
func (t *GradientTape) IsRecording() bool {
	return t.recording
}

// Record appends an operation. No-op while the tape is stopped.
func (t *GradientTape) Record(op ops.Operation) {
	if t.recording {
		t.ops = append(t.ops, op)
	}
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int {
	return len(t.ops)
}

// Reset drops all recorded operations and watches but keeps the tape
// attached and recording. Useful between training iterations.
func (t *GradientTape) Reset() {
	t.ops = t.ops[:0]
	t.watched = make(map[*tensor.RawTensor]bool)
	t.used = false
}

// Close stops the tape and detaches it from the backend. The recorded
// operations are released.
func (t *GradientTape) Close() {
	t.recording = false
	t.ops = nil
	if t.detach != nil {
		t.detach(t)
		t.detach = nil
	}
}

// Gradient computes d(target)/d(source) for each source.
//
// The result is index-aligned with sources. A source that was never
// watched on this tape — and never read as a trainable Variable — gets a
// nil gradient. This mirrors the recording model: untracked values are
// constants, and asking for their gradient is answered silently rather
// than with an error.
//
// A non-persistent tape can serve exactly one Gradient call; its record
// is released afterwards and further calls fail.
func (t *GradientTape) Gradient(target *tensor.RawTensor, sources ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	grads, err := t.gradients(target)
	if err != nil {
		return nil, err
	}

	result := make([]*tensor.RawTensor, len(sources))
	for i, src := range sources {
		if !t.watched[src] {
			continue // never watched: nil, by contract
		}
		result[i] = grads[src]
	}
	return result, nil
}

// gradients runs the backward pass and returns the full gradient map.
// It enforces the single-use rule and releases a non-persistent record.
func (t *GradientTape) gradients(target *tensor.RawTensor) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	if t.used && !t.persistent {
		return nil, errors.New("gradient tape already used; create the tape with Persistent() to compute multiple gradients")
	}

	grads := t.backward(target)

	t.used = true
	if !t.persistent {
		t.ops = nil
	}
	return grads, nil
}

// backward seeds d(target)/d(target) = 1 and walks the tape in reverse,
// applying each operation's backward rule and accumulating gradients
// where a tensor fans out into several operations.
//
// The tape itself stays silent during the walk, but backward operations
// still run through the autodiff backend: any outer tape that is
// recording captures them, which is how nested tapes provide
// higher-order derivatives.
func (t *GradientTape) backward(target *tensor.RawTensor) map[*tensor.RawTensor]*tensor.RawTensor {
	klog.V(2).Infof("tape backward: %d recorded ops, target shape %v", len(t.ops), target.Shape())

	wasRecording := t.recording
	t.recording = false
	defer func() { t.recording = wasRecording }()

	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	grads[target] = onesSeed(target)

	for i := len(t.ops) - 1; i >= 0; i-- {
		op := t.ops[i]
		outputGrad, ok := grads[op.Output()]
		if !ok {
			continue // no gradient flows through this operation
		}

		inputGrads := op.Backward(outputGrad, t.backend)
		inputs := op.Inputs()
		for j, input := range inputs {
			if j >= len(inputGrads) || inputGrads[j] == nil {
				continue
			}
			if existing, exists := grads[input]; exists {
				grads[input] = t.backend.Add(existing, inputGrads[j])
			} else {
				grads[input] = inputGrads[j]
			}
		}
	}

	return grads
}

// onesSeed builds the initial output gradient, all ones with the shape
// and dtype of the target.
func onesSeed(target *tensor.RawTensor) *tensor.RawTensor {
	seed, err := tensor.NewRaw(target.Shape(), target.DType(), target.Device())
	if err != nil {
		panic(errors.Wrap(err, "backward: seed gradient"))
	}

	switch target.DType() {
	case tensor.Float32:
		data := seed.AsFloat32()
		for i := range data {
			data[i] = 1
		}
	case tensor.Float64:
		data := seed.AsFloat64()
		for i := range data {
			data[i] = 1
		}
	default:
		panic(errors.Errorf("backward: unsupported target dtype %s (float32/float64 only)", target.DType()))
	}
	return seed
}
