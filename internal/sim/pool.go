package sim

import (
	"sync"

	"github.com/san-kum/rigid2d/internal/world"
)

// FramePool recycles body-state buffers of a fixed length.
type FramePool struct {
	pool sync.Pool
	size int
}

func NewFramePool(bodies int) *FramePool {
	return &FramePool{
		size: bodies,
		pool: sync.Pool{
			New: func() interface{} {
				buf := make([]world.BodyState, bodies)
				return &buf
			},
		},
	}
}

func (p *FramePool) Get() []world.BodyState {
	return *p.pool.Get().(*[]world.BodyState)
}

// Put returns buf to the pool. Buffers of a different length are dropped.
func (p *FramePool) Put(buf []world.BodyState) {
	if len(buf) != p.size {
		return
	}
	for i := range buf {
		buf[i] = world.BodyState{}
	}
	p.pool.Put(&buf)
}

func (p *FramePool) GetAndCopy(src []world.BodyState) []world.BodyState {
	dst := p.Get()
	copy(dst, src)
	return dst
}
