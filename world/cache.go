package world

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/getsentry/sentry-go"
	"github.com/voxelforge/voxphys/oerror"
)

// Chunk payloads arriving from the upstream server are frequently identical
// (flat terrain, oceans, void). The cache keys decoded columns by the xxhash
// of the raw payload so every world sharing a payload shares one immutable
// decoded column.
var (
	chunkCache = make(map[uint64]*CachedChunk)
	chunkQueue = make(chan addChunkRequest, 65536)
	cMu        sync.RWMutex
)

func init() {
	for i := 0; i < runtime.NumCPU(); i++ {
		go cacheWorker()
	}
	go clearCacheWorker()
}

// Cache decodes the payload into a shared chunk column and adds it to the
// world at pos. The work normally happens on a cache worker; if the queue is
// saturated the chunk is decoded inline and added unshared. The boolean
// reports whether the request was handed to the workers.
func Cache(w *World, pos ChunkPos, payload []byte) (bool, error) {
	select {
	case chunkQueue <- addChunkRequest{payload: payload, pos: pos, target: w}:
		return true, nil
	default:
		c, err := DecodeChunk(payload)
		if err != nil {
			c = NewChunk()
		}
		w.AddChunk(pos, c)
		return false, err
	}
}

// CachedChunk is an immutable decoded chunk column shared between worlds,
// reference-counted by subscription.
type CachedChunk struct {
	subs atomic.Int64
	c    *Chunk
}

func (cc *CachedChunk) Subscribe() {
	cc.subs.Add(1)
}

func (cc *CachedChunk) Unsubscribe() {
	cc.subs.Add(-1)
}

func (cc *CachedChunk) State(x uint8, y int16, z uint8) BlockState {
	return cc.c.State(x, y, z)
}

func (cc *CachedChunk) EmptySection(idx int) bool {
	return cc.c.EmptySection(idx)
}

type addChunkRequest struct {
	payload []byte
	pos     ChunkPos
	target  *World
}

func clearCacheWorker() {
	t := time.NewTicker(time.Second)
	defer t.Stop()

	defer func() {
		if err := recover(); err != nil {
			hub := sentry.CurrentHub().Clone()
			hub.Recover(err)
			hub.Flush(time.Second * 5)
		}
	}()

	for range t.C {
		cMu.Lock()
		for hash, cached := range chunkCache {
			if cached.subs.Load() <= 0 {
				delete(chunkCache, hash)
			}
		}
		cMu.Unlock()
	}
}

func cacheWorker() {
	defer func() {
		if err := recover(); err != nil {
			hub := sentry.CurrentHub().Clone()
			hub.Recover(oerror.New("cache worker crashed: %v", err))
			hub.Flush(time.Second * 5)
		}
	}()

	for req := range chunkQueue {
		hash := xxhash.Sum64(req.payload)

		// A write lock even for the lookup: with a read lock two workers
		// could miss on the same hash and decode the payload twice.
		cMu.Lock()
		cached, found := chunkCache[hash]
		if !found {
			c, err := DecodeChunk(req.payload)
			if err != nil {
				c = NewChunk()
			}
			cached = &CachedChunk{c: c}
			chunkCache[hash] = cached
		}
		cached.Subscribe()
		req.target.AddChunk(req.pos, cached)
		cMu.Unlock()
	}
}
