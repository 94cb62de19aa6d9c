package catalog

import (
	"strconv"
	"sync"
	"time"
)

// idGenerator hands out "<prefix>-<epoch-ms>" ids. Two calls in the same
// millisecond get consecutive values, so a process never repeats an id.
type idGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func newIDGenerator(now func() time.Time) *idGenerator {
	return &idGenerator{now: now}
}

func (g *idGenerator) next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return prefix + "-" + strconv.FormatInt(ms, 10)
}
