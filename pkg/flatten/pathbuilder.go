package flatten

import (
	"strconv"
	"sync"
)

// pathBuilder builds leaf paths with minimal allocation. Builders are pooled
// because flattening visits every leaf of every resource in a batch.
type pathBuilder struct {
	buf []byte
}

var pathBuilderPool = sync.Pool{
	New: func() any {
		return &pathBuilder{
			buf: make([]byte, 0, 256),
		}
	},
}

func acquirePathBuilder() *pathBuilder {
	pb := pathBuilderPool.Get().(*pathBuilder)
	pb.buf = pb.buf[:0]
	return pb
}

func (b *pathBuilder) release() {
	// Don't return oversized buffers to the pool
	if cap(b.buf) <= 4096 {
		pathBuilderPool.Put(b)
	}
}

// len returns the current path length, used with truncate to backtrack
// while walking nested values.
func (b *pathBuilder) length() int {
	return len(b.buf)
}

func (b *pathBuilder) truncate(n int) {
	b.buf = b.buf[:n]
}

// appendKey appends an object key with a leading dot unless at the root.
func (b *pathBuilder) appendKey(key string) {
	if len(b.buf) > 0 {
		b.buf = append(b.buf, '.')
	}
	b.buf = append(b.buf, key...)
}

// appendIndex appends an array index as [n].
func (b *pathBuilder) appendIndex(index int) {
	b.buf = append(b.buf, '[')
	b.buf = strconv.AppendInt(b.buf, int64(index), 10)
	b.buf = append(b.buf, ']')
}

func (b *pathBuilder) path() string {
	return string(b.buf)
}
