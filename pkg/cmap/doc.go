// Package cmap provides a sharded concurrent map keyed by strings.
//
// Keys are spread over a power-of-two number of shards with murmur3, each
// guarded by its own RWMutex, so callers hitting different keys rarely
// contend.
//
//	m := cmap.New[string, *rate.Limiter]()
//	limiter, _ := m.GetOrCompute(clientIP, newLimiter)
package cmap
