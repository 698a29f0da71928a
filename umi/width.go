package umi

import (
	"fmt"
	"sync/atomic"

	"github.com/grailbio/base/errors"
)

// The process-wide UMI width. It is written during configuration and frozen
// before reads are processed; after Freeze it is only read.
var (
	width  int32
	frozen int32
)

// SetWidth sets the process-wide UMI width. It fails if the width is out of
// range or has been frozen.
func SetWidth(k int) error {
	if k < 0 || k > MaxK {
		return errors.E(errors.Invalid, fmt.Sprintf("umi width %d out of range [0, %d]", k, MaxK))
	}
	if Frozen() {
		return errors.E(errors.Precondition, fmt.Sprintf("umi width is frozen at %d", Width()))
	}
	atomic.StoreInt32(&width, int32(k))
	return nil
}

// Freeze makes the current width permanent. Writes made by SetWidth before
// Freeze are visible to any goroutine that observes Frozen() == true.
func Freeze() { atomic.StoreInt32(&frozen, 1) }

// Frozen reports whether Freeze has been called.
func Frozen() bool { return atomic.LoadInt32(&frozen) == 1 }

// Width returns the process-wide UMI width.
func Width() int { return int(atomic.LoadInt32(&width)) }

// DefaultEncoder returns an encoder for the process-wide width. It fails if
// the width has not been frozen.
func DefaultEncoder() (Encoder, error) {
	if !Frozen() {
		return Encoder{}, errors.E(errors.Precondition, "umi width is not configured")
	}
	return Encoder{k: Width()}, nil
}
