package cpu

import "github.com/pkg/errors"

// Precondition violations reported by Conv2D. Returned errors wrap one of
// these with details of the failed check; match them with errors.Is.
var (
	// ErrShape reports a rank, channel or kernel-size mismatch of input or filter.
	ErrShape = errors.New("conv2d: shape violation")
	// ErrBiasShape reports a bias that is not rank 1 of length M.
	ErrBiasShape = errors.New("conv2d: bias shape violation")
	// ErrOutputSize reports an output tensor whose dimensions disagree with
	// the convolution output-size formula.
	ErrOutputSize = errors.New("conv2d: output size violation")
	// ErrConfig reports an unusable Conv2DConfig or layout tag.
	ErrConfig = errors.New("conv2d: invalid config")
	// ErrDType reports tensors that do not share one floating dtype.
	ErrDType = errors.New("conv2d: dtype violation")
)
