package repository

import (
	"sync/atomic"
	"time"
)

// atomicTime is a time.Time that can be read and written without a lock.
type atomicTime struct {
	nanos atomic.Int64
}

func (t *atomicTime) Load() time.Time {
	return time.Unix(0, t.nanos.Load())
}

func (t *atomicTime) Store(v time.Time) {
	t.nanos.Store(v.UnixNano())
}
