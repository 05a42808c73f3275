// Package cache is the per-file AstNodeId -> TypeId memoization spec 4.7
// describes: lowering and checking the same node twice within one file's
// analysis pass should not redo the work.
package cache

import (
	"sync"

	"github.com/tsz-lang/tszcore/internal/astnode"
	"github.com/tsz-lang/tszcore/internal/types"
)

// FileCache memoizes one file's node->TypeId results. Not safe to share
// across files (the checker allocates one per file, spec 5's
// single-threaded-per-file model), but is safe to read from multiple
// goroutines concurrently with no concurrent writer once a file's analysis
// pass has finished, so RWMutex is enough rather than needing per-entry
// atomics.
type FileCache struct {
	mu      sync.RWMutex
	results map[astnode.NodeIndex]types.TypeId
}

func New() *FileCache {
	return &FileCache{results: make(map[astnode.NodeIndex]types.TypeId)}
}

func (c *FileCache) Get(node astnode.NodeIndex) (types.TypeId, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.results[node]
	return id, ok
}

func (c *FileCache) Set(node astnode.NodeIndex, id types.TypeId) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[node] = id
}

// GetOrCompute returns the memoized result for node, computing and storing
// it via compute on a miss.
func (c *FileCache) GetOrCompute(node astnode.NodeIndex, compute func() types.TypeId) types.TypeId {
	if id, ok := c.Get(node); ok {
		return id
	}
	id := compute()
	c.Set(node, id)
	return id
}

func (c *FileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}
