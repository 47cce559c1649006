package container

import "github.com/pkg/errors"

// Sentinel errors, matching spec.md §6/§7's Structural/Truncation kinds.
var (
	ErrInvalidSignature = errors.New("container: invalid signature")
	ErrInvalidBox       = errors.New("container: invalid box")
	ErrFileTruncated    = errors.New("container: file truncated")
)

// NeedMoreDataError reports that the demuxer cannot make further
// progress without more bytes appended to the input. It is the
// container-layer analog of bitio.OutOfBoundsError.
type NeedMoreDataError struct{ Hint int }

func (e *NeedMoreDataError) Error() string { return "container: need more data" }

// Needed is the demuxer's best estimate of additional bytes required.
func (e *NeedMoreDataError) Needed() int { return e.Hint }
