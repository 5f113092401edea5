package runtime

import (
	"testing"

	"github.com/sarchlab/patchflow/ir"
)

func TestBufferPoolReusesReleasedBuffers(t *testing.T) {
	pool := NewBufferPool()

	buf := pool.Acquire(ir.FormatF32, 4)
	buf.Values[0] = 1.0
	pool.Release(buf)

	again := pool.Acquire(ir.FormatF32, 4)
	if again != buf {
		t.Fatalf("expected Acquire to hand back the released buffer, got a fresh one")
	}
}

func TestBufferPoolKeysByFormatAndCount(t *testing.T) {
	pool := NewBufferPool()

	a := pool.Acquire(ir.FormatF32, 4)
	pool.Release(a)

	b := pool.Acquire(ir.FormatVec2F, 4)
	if b == a {
		t.Fatalf("expected a differently-formatted acquire to skip the released buffer")
	}

	c := pool.Acquire(ir.FormatF32, 8)
	if c == a {
		t.Fatalf("expected a differently-sized acquire to skip the released buffer")
	}
}

// Scope.Release balancing every Acquire with a Release is the invariant
// spec.md §8's "buffer pool balance" property names.
func TestScopeReleaseBalancesAllAcquires(t *testing.T) {
	pool := NewBufferPool()
	scope := NewScope(pool)

	scope.Acquire(ir.FormatF32, 2)
	scope.Acquire(ir.FormatF32, 2)
	scope.Acquire(ir.FormatVec2F, 3)
	scope.Release()

	if len(pool.free[bufferKey{format: ir.FormatF32, count: 2}]) != 2 {
		t.Fatalf("expected both FormatF32/2 buffers back on the free list")
	}
	if len(pool.free[bufferKey{format: ir.FormatVec2F, count: 3}]) != 1 {
		t.Fatalf("expected the FormatVec2F/3 buffer back on the free list")
	}
}

func TestScopeReleaseIsIdempotent(t *testing.T) {
	pool := NewBufferPool()
	scope := NewScope(pool)
	scope.Acquire(ir.FormatF32, 1)

	scope.Release()
	scope.Release()

	if len(pool.free[bufferKey{format: ir.FormatF32, count: 1}]) != 1 {
		t.Fatalf("expected exactly one buffer on the free list after a repeated release, got %d", len(pool.free[bufferKey{format: ir.FormatF32, count: 1}]))
	}
}
