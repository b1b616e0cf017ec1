package collision

import (
	"sync"

	"github.com/voxelforge/voxphys/entity"
	"github.com/voxelforge/voxphys/world"
)

// Checked-out scratch objects are confined to the checking-out goroutine and
// every checkout must be paired with a return on all paths, early exits and
// error paths included. The pools only amortize allocation; they provide no
// synchronization of the objects themselves.

var resultPool = sync.Pool{
	New: func() any {
		return NewResult()
	},
}

// CheckoutResult draws an empty result from the shared pool.
func CheckoutResult() *Result {
	return resultPool.Get().(*Result)
}

// ReturnResult resets the result and puts it back. The result and every
// contact pointer read from it are invalid afterwards.
func ReturnResult(r *Result) {
	r.Reset()
	resultPool.Put(r)
}

var sweeperPool = sync.Pool{
	New: func() any {
		return &Sweeper{}
	},
}

// CheckoutSweeper draws a sweeper bound to the given world.
func CheckoutSweeper(w *world.World) *Sweeper {
	s := sweeperPool.Get().(*Sweeper)
	s.Cfg.Bind(w)
	return s
}

// ReturnSweeper clears the sweeper and puts it back.
func ReturnSweeper(s *Sweeper) {
	s.Clear()
	sweeperPool.Put(s)
}

var providerPool = sync.Pool{
	New: func() any {
		return &EntityProvider{}
	},
}

// CheckoutProvider draws an entity provider bound to the given index.
func CheckoutProvider(idx *entity.Index) *EntityProvider {
	p := providerPool.Get().(*EntityProvider)
	p.Bind(idx)
	return p
}

// ReturnProvider clears the provider and puts it back.
func ReturnProvider(p *EntityProvider) {
	p.Clear()
	providerPool.Put(p)
}
