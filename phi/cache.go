// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phi

import (
	"container/list"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/c2h5oh/datasize"
)

// nShards is the number of independently locked cache shards.
const nShards = 16

// cacheKey identifies one memoized repertoire.  Repertoires are pure
// functions of this key for a given transition matrix, so entries are
// never invalidated except by SetTPM, which clears the whole cache.
type cacheKey struct {
	Dir        Directions
	Mech       int
	Purview    int
	State      int
	CutA, CutB int
}

type cacheEntry struct {
	key cacheKey
	rp  *Repertoire
}

type cacheShard struct {
	mu      sync.Mutex
	entries map[cacheKey]*list.Element
	order   *list.List // front = most recently used
}

// Cache is the bounded, sharded LRU memoization of repertoires, owned by
// (and lifetime-bound to) a single System.  Concurrent readers of
// different keys never contend; an insertion only locks its own shard.
type Cache struct {
	shards   [nShards]cacheShard
	shardCap int
	hits     atomic.Int64
	misses   atomic.Int64
}

// NewCache returns a cache holding up to size entries in total, with
// size rounded up to the next multiple of the shard count (16) so every
// shard holds at least one entry.  size <= 0 disables caching: every
// Get misses and Add is a no-op, yielding bit-identical results to a
// caching run.
func NewCache(size int) *Cache {
	ca := &Cache{}
	if size <= 0 {
		return ca
	}
	ca.shardCap = (size + nShards - 1) / nShards
	for i := range ca.shards {
		ca.shards[i].entries = make(map[cacheKey]*list.Element)
		ca.shards[i].order = list.New()
	}
	return ca
}

func (ca *Cache) shard(key cacheKey) *cacheShard {
	h := uint(key.Mech)*0x9e3779b1 ^ uint(key.Purview)*0x85ebca6b ^
		uint(key.State) ^ uint(key.CutA)<<8 ^ uint(key.CutB)<<16 ^ uint(key.Dir)<<4
	return &ca.shards[h%nShards]
}

// Get returns the cached repertoire for key, if present, marking it most
// recently used.
func (ca *Cache) Get(key cacheKey) (*Repertoire, bool) {
	if ca.shardCap == 0 {
		ca.misses.Add(1)
		return nil, false
	}
	sh := ca.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	el, ok := sh.entries[key]
	if !ok {
		ca.misses.Add(1)
		return nil, false
	}
	sh.order.MoveToFront(el)
	ca.hits.Add(1)
	return el.Value.(*cacheEntry).rp, true
}

// Add inserts a repertoire, evicting the least recently used entry of
// its shard when at capacity.
func (ca *Cache) Add(key cacheKey, rp *Repertoire) {
	if ca.shardCap == 0 {
		return
	}
	sh := ca.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if el, ok := sh.entries[key]; ok {
		sh.order.MoveToFront(el)
		el.Value.(*cacheEntry).rp = rp
		return
	}
	if sh.order.Len() >= ca.shardCap {
		old := sh.order.Back()
		if old != nil {
			sh.order.Remove(old)
			delete(sh.entries, old.Value.(*cacheEntry).key)
		}
	}
	sh.entries[key] = sh.order.PushFront(&cacheEntry{key: key, rp: rp})
}

// Clear removes every entry.  All shard locks are taken before any shard
// is cleared, so no computation can observe a mix of old and new
// entries across a transition-matrix replacement.
func (ca *Cache) Clear() {
	if ca.shardCap == 0 {
		return
	}
	for i := range ca.shards {
		ca.shards[i].mu.Lock()
	}
	for i := range ca.shards {
		sh := &ca.shards[i]
		sh.entries = make(map[cacheKey]*list.Element)
		sh.order.Init()
	}
	for i := range ca.shards {
		ca.shards[i].mu.Unlock()
	}
}

// Len returns the current number of entries.
func (ca *Cache) Len() int {
	if ca.shardCap == 0 {
		return 0
	}
	n := 0
	for i := range ca.shards {
		sh := &ca.shards[i]
		sh.mu.Lock()
		n += sh.order.Len()
		sh.mu.Unlock()
	}
	return n
}

// Stats returns cumulative hit and miss counts.
func (ca *Cache) Stats() (hits, misses int64) {
	return ca.hits.Load(), ca.misses.Load()
}

// SizeReport returns a human-readable summary of entries and memory.
func (ca *Cache) SizeReport() string {
	n := 0
	mem := uint64(0)
	if ca.shardCap > 0 {
		for i := range ca.shards {
			sh := &ca.shards[i]
			sh.mu.Lock()
			for el := sh.order.Front(); el != nil; el = el.Next() {
				n++
				mem += uint64(el.Value.(*cacheEntry).rp.NStates())*8 + 64
			}
			sh.mu.Unlock()
		}
	}
	hits, misses := ca.Stats()
	return fmt.Sprintf("%d entries: %v (hits: %d misses: %d)", n,
		(datasize.ByteSize)(mem).HumanReadable(), hits, misses)
}
