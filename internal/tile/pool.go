package tile

import "sync"

// BufferPool recycles upload payload buffers in exact-length buckets.
//
// Thread safety: All methods are safe for concurrent use.
type BufferPool struct {
	mu      sync.Mutex
	buckets map[int][][]byte
	maxSize int // max buffers per bucket
}

// NewBufferPool creates a pool retaining at most maxPerBucket buffers of each
// length. A maxPerBucket of 0 means unlimited.
func NewBufferPool(maxPerBucket int) *BufferPool {
	return &BufferPool{
		buckets: make(map[int][][]byte),
		maxSize: maxPerBucket,
	}
}

// Get returns a buffer of exactly n bytes. Reused buffers are not cleared;
// callers overwrite every byte.
func (p *BufferPool) Get(n int) []byte {
	p.mu.Lock()
	bucket := p.buckets[n]
	if len(bucket) > 0 {
		buf := bucket[len(bucket)-1]
		p.buckets[n] = bucket[:len(bucket)-1]
		p.mu.Unlock()
		return buf
	}
	p.mu.Unlock()
	return make([]byte, n)
}

// Put returns buf to the pool. Empty buffers and buffers arriving at a full
// bucket are discarded.
func (p *BufferPool) Put(buf []byte) {
	n := cap(buf)
	if n == 0 {
		return
	}
	buf = buf[:n]

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[n]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[n] = append(bucket, buf)
}
