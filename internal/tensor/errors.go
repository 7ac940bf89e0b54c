package tensor

import (
	"errors"
	"fmt"
)

// ErrShape is the sentinel matched by every *ShapeError via errors.Is.
var ErrShape = errors.New("shape error")

// ShapeError reports a tensor whose rank, batch, channel or spatial layout
// does not match what an operation declared.
type ShapeError struct {
	Op     string // Operation that rejected the tensor (e.g., "adapt", "field.build")
	Got    Shape  // Offending shape
	Want   Shape  // Expected shape; -1 marks a free dimension, nil when not applicable
	Detail string // Additional details
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	if e.Want != nil {
		return fmt.Sprintf("%s: shape %v, want %v: %s", e.Op, e.Got, e.Want, e.Detail)
	}
	return fmt.Sprintf("%s: shape %v: %s", e.Op, e.Got, e.Detail)
}

// Is makes errors.Is(err, ErrShape) hold for any *ShapeError.
func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

// CheckImage validates that t is a rank-4 image tensor with non-empty batch
// and, when channels > 0, exactly that many channels.
func CheckImage(op string, t *Tensor, channels int) error {
	if t == nil {
		return &ShapeError{Op: op, Detail: "nil tensor"}
	}
	s := t.Shape()
	if len(s) != 4 {
		return &ShapeError{Op: op, Got: s, Want: Shape{-1, channels, -1, -1}, Detail: "expected 4D [N,C,H,W]"}
	}
	if err := s.Validate(); err != nil {
		return &ShapeError{Op: op, Got: s, Detail: err.Error()}
	}
	if channels > 0 && s[AxisChannel] != channels {
		return &ShapeError{
			Op:     op,
			Got:    s,
			Want:   Shape{s[AxisBatch], channels, s[AxisHeight], s[AxisWidth]},
			Detail: fmt.Sprintf("expected %d channels, got %d", channels, s[AxisChannel]),
		}
	}
	return nil
}
