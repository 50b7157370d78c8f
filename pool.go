// pool.go: Scratch buffer pooling for iterated hashing and key material
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"sync"
)

const (
	smallBufferSize  = 64  // Largest hash output served by the built-in providers (SHA-512, BLAKE2b-512)
	mediumBufferSize = 512 // Hashes with unusually large output registered by custom providers
)

var (
	smallBufferPool = sync.Pool{
		New: func() interface{} {
			buf := make([]byte, smallBufferSize)
			return &buf
		},
	}

	mediumBufferPool = sync.Pool{
		New: func() interface{} {
			buf := make([]byte, mediumBufferSize)
			return &buf
		},
	}
)

// getBuffer retrieves a scratch buffer of at least size bytes, resliced to size.
func getBuffer(size int) *[]byte {
	switch {
	case size <= smallBufferSize:
		buf := smallBufferPool.Get().(*[]byte)
		*buf = (*buf)[:size]
		return buf
	case size <= mediumBufferSize:
		buf := mediumBufferPool.Get().(*[]byte)
		*buf = (*buf)[:size]
		return buf
	default:
		buf := make([]byte, size)
		return &buf
	}
}

// putBuffer zeroes a buffer over its full capacity and returns it to its pool.
// Buffers of non-standard capacity are dropped after zeroing.
func putBuffer(buf *[]byte) {
	if buf == nil {
		return
	}
	full := (*buf)[:cap(*buf)]
	Zeroize(full)

	switch cap(full) {
	case smallBufferSize:
		*buf = full
		smallBufferPool.Put(buf)
	case mediumBufferSize:
		*buf = full
		mediumBufferPool.Put(buf)
	}
}

// WarmupPools pre-allocates count buffers per size class so the first digests
// after start-up do not pay for allocation. A count of zero or less does nothing.
func WarmupPools(count int) {
	if count <= 0 {
		return
	}
	bufs := make([]*[]byte, 0, 2*count)
	for i := 0; i < count; i++ {
		bufs = append(bufs, getBuffer(smallBufferSize), getBuffer(mediumBufferSize))
	}
	for _, b := range bufs {
		putBuffer(b)
	}
}
