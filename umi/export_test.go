package umi

import "sync/atomic"

// reset clears the process-wide width.
func reset() {
	atomic.StoreInt32(&frozen, 0)
	atomic.StoreInt32(&width, 0)
}
