package docmodel

import "errors"

// Error taxonomy for the pipeline. Callers branch with errors.Is, so
// wrapping stages must keep these sentinels in the chain.
var (
	ErrValidation            = errors.New("validation failed")
	ErrNotFound              = errors.New("not found")
	ErrTransient             = errors.New("transient service failure")
	ErrTimeout               = errors.New("deadline exceeded")
	ErrUnsupportedProfile    = errors.New("unsupported extraction profile")
	ErrGroundingInsufficient = errors.New("insufficient grounding context")
)

// IsRetryable reports whether the retry envelope may re-attempt the
// operation. Timeout short-circuits even though it is transient in nature.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrTimeout),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUnsupportedProfile):
		return false
	}
	return true
}
