package autodiff

import (
	"github.com/pkg/errors"

	"github.com/gradtape/gradtape/internal/tensor"
)

// BackwardCapable is satisfied by Backend. It lets generic code reach the
// innermost gradient tape without naming the concrete decorator type.
type BackwardCapable interface {
	tensor.Backend
	// Tape returns the innermost attached tape, or nil.
	Tape() *GradientTape
}

// Backward computes gradients of t with respect to everything recorded on
// the backend's innermost tape, returning the full gradient map keyed by
// raw tensor.
//
// Unlike GradientTape.Gradient this ignores the watch filter; it is the
// training-loop entry point, where the optimizer looks up parameters in
// the returned map itself. The single-use rule still applies to
// non-persistent tapes.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	tape := backend.Tape()
	if tape == nil {
		return nil, errors.New("backward: no tape attached (did you forget NewTape?)")
	}
	if tape.NumOps() == 0 {
		return nil, errors.New("backward: tape recorded no operations")
	}
	return tape.gradients(t.Raw())
}
