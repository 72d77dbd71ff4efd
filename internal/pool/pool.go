// Package pool provides bucketed sync.Pool instances for plane and pixel
// buffers. Buffers are organized by size class to minimize waste.
package pool

import "sync"

// Size classes for bucketed pools. A 1080p 8-bit luma plane lands in the
// 4M class, a 4:2:0 chroma plane of the same frame in 1M.
const (
	Size4K   = 4096
	Size64K  = 65536
	Size256K = 262144
	Size1M   = 1048576
	Size4M   = 4194304
	Size16M  = 16777216
)

// bucketIndex returns the pool index for a given size.
func bucketIndex(size int) int {
	switch {
	case size <= Size4K:
		return 0
	case size <= Size64K:
		return 1
	case size <= Size256K:
		return 2
	case size <= Size1M:
		return 3
	case size <= Size4M:
		return 4
	default:
		return 5
	}
}

var sizes = [6]int{Size4K, Size64K, Size256K, Size1M, Size4M, Size16M}

var pools [6]sync.Pool

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
	}
}

// Get returns a zeroed byte slice of exactly size bytes from the pool.
// The slice may have a larger capacity. The caller should call Put when
// done.
func Get(size int) []byte {
	idx := bucketIndex(size)
	bp := pools[idx].Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		return make([]byte, size)
	}
	b = b[:size]
	clear(b)
	return b
}

// Put returns a byte slice to the pool. Slices smaller than Size4K are not
// pooled.
func Put(b []byte) {
	c := cap(b)
	if c < Size4K {
		return
	}
	// A slice belongs to the largest class it can fully serve.
	idx := len(sizes) - 1
	for idx > 0 && sizes[idx] > c {
		idx--
	}
	b = b[:c]
	pools[idx].Put(&b)
}
