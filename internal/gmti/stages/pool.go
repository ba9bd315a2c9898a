// Package stages implements the three processing stages of the GMTI chain
// and the bounded buffer pool they draw their working memory from.
package stages

import (
	"github.com/banshee-data/gmti.report/internal/gmti"
)

// BufferPool is a bounded free list of sample buffers. Checkout never blocks:
// when the pool has handed out maxCapacity live buffers and the free list is
// empty, the next allocation fails with ErrBufferExhausted. Exhaustion means
// the pool was sized wrong for the chain, not load worth retrying.
//
// A pool is owned by a single stage and is not safe for concurrent use.
type BufferPool struct {
	free      [][]float64
	allocated int
	max       int
}

// NewBufferPool creates a pool that will allocate at most maxCapacity
// buffers before reporting exhaustion.
func NewBufferPool(maxCapacity int) *BufferPool {
	return &BufferPool{max: maxCapacity}
}

// Checkout returns a zero-filled buffer of exactly length elements. A free
// buffer is reused when available; otherwise a fresh one is allocated while
// the live-buffer count stays below capacity.
func (p *BufferPool) Checkout(length int) ([]float64, error) {
	if n := len(p.free); n > 0 {
		buf := p.free[n-1]
		p.free = p.free[:n-1]
		if cap(buf) < length {
			buf = make([]float64, length)
		} else {
			buf = buf[:length]
			for i := range buf {
				buf[i] = 0
			}
		}
		return buf, nil
	}

	if p.allocated < p.max {
		p.allocated++
		return make([]float64, length), nil
	}

	return nil, gmti.Errorf(gmti.ErrBufferExhausted, "pool at capacity %d", p.max)
}

// Release clears buf and returns it to the free list. When the free list is
// already at capacity the buffer is discarded; releasing nil is a no-op.
func (p *BufferPool) Release(buf []float64) {
	if buf == nil {
		return
	}
	for i := range buf {
		buf[i] = 0
	}
	if len(p.free) < p.max {
		p.free = append(p.free, buf[:0])
	}
}

// Reset empties the free list and allocation accounting.
func (p *BufferPool) Reset() {
	p.free = nil
	p.allocated = 0
}

// Free reports how many buffers are parked on the free list.
func (p *BufferPool) Free() int {
	return len(p.free)
}

// Allocated reports how many live buffers the pool has handed out since the
// last Reset, including any now parked on the free list.
func (p *BufferPool) Allocated() int {
	return p.allocated
}
