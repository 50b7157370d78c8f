// roundrobin.go: Round-robin dispatch across independently initialized engines.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pbecrypt

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// roundRobin hands out its members in cyclic order. The counter is the only state
// shared between callers; the selected member does its work under its own lock.
type roundRobin[E any] struct {
	members []E
	next    atomic.Uint64
}

func newRoundRobin[E any](members []E) *roundRobin[E] {
	return &roundRobin[E]{members: members}
}

// pick returns the next member.
func (r *roundRobin[E]) pick() E {
	n := r.next.Add(1) - 1
	return r.members[n%uint64(len(r.members))]
}

func (r *roundRobin[E]) size() int {
	return len(r.members)
}

// buildMembers returns seed followed by size-1 clones of it. Clones are
// initialized concurrently; the first failure is returned.
func buildMembers[E any](seed E, size int, clone func() E, initialize func(E) error) ([]E, error) {
	members := make([]E, size)
	members[0] = seed
	for i := 1; i < size; i++ {
		members[i] = clone()
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, m := range members[1:] {
		g.Go(func() error {
			return initialize(m)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return members, nil
}
