package runtime

import "github.com/sarchlab/patchflow/ir"

// Buffer is a pooled, typed per-element array filled by a FieldMaterialize
// step. Values are the runtime's concrete per-element representation
// (float64, Vec2, Vec3, Vec4, or Color) matching the buffer's Format.
type Buffer struct {
	Format ir.BufferFormat
	Values []any
}

type bufferKey struct {
	format ir.BufferFormat
	count  int
}

// BufferPool maintains a free list of typed arrays per (format, count), so
// repeated FieldMaterialize steps across frames reuse backing storage
// instead of allocating fresh slices every frame (spec.md §4.12).
type BufferPool struct {
	free map[bufferKey][]*Buffer
}

// NewBufferPool creates an empty pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{free: make(map[bufferKey][]*Buffer)}
}

// Acquire pops a free buffer matching (format, count), or allocates a fresh
// one if the free list is empty.
func (p *BufferPool) Acquire(format ir.BufferFormat, count int) *Buffer {
	key := bufferKey{format: format, count: count}
	if list := p.free[key]; len(list) > 0 {
		buf := list[len(list)-1]
		p.free[key] = list[:len(list)-1]
		return buf
	}
	return &Buffer{Format: format, Values: make([]any, count)}
}

// Release pushes a buffer back onto its free list for a future Acquire.
func (p *BufferPool) Release(buf *Buffer) {
	key := bufferKey{format: buf.Format, count: len(buf.Values)}
	p.free[key] = append(p.free[key], buf)
}

// Scope tracks buffers acquired during one frame so every acquire is
// matched by a release on all exit paths, leak-free even when a frame
// returns early on an error (spec.md §4.12's scoped acquisition pattern).
type Scope struct {
	pool     *BufferPool
	acquired []*Buffer
}

// NewScope opens a frame-local acquisition scope against pool.
func NewScope(pool *BufferPool) *Scope {
	return &Scope{pool: pool}
}

// Acquire acquires a buffer and tracks it for release at scope end.
func (s *Scope) Acquire(format ir.BufferFormat, count int) *Buffer {
	buf := s.pool.Acquire(format, count)
	s.acquired = append(s.acquired, buf)
	return buf
}

// Release returns every buffer acquired through this scope to the pool.
// Safe to call multiple times; idempotent after the first call.
func (s *Scope) Release() {
	for _, buf := range s.acquired {
		s.pool.Release(buf)
	}
	s.acquired = nil
}
