package pool

import "sync"

// NewDynamic builds an unbounded Pool, sized by GC pressure rather than a
// fixed worker count — the default redirect-node recycler (config.go's
// newPool) unless the engine was built with WithFixedRedirectPool.
func NewDynamic(newFn func() interface{}) Pool {
	return &sync.Pool{New: newFn}
}
