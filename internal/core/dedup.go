package core

import "container/list"

// DefaultDedupCapacity bounds the in-memory duplicate cache. Entries
// are around 50 bytes each, so the default costs a few megabytes.
const DefaultDedupCapacity = 100_000

// DBDedupChecker is the cold tier: a lookup against durable receipts.
type DBDedupChecker interface {
	Seen(callID string) (bool, error)
}

// DedupChecker answers whether a call ID was already processed. The
// hot tier is an LRU of recent IDs; misses fall through to the
// receipt store. A cold-tier error counts as not-a-duplicate, which
// keeps the engine running at the cost of re-executing a redelivered
// call.
//
// Not safe for concurrent use. Only the engine loop touches it.
type DedupChecker struct {
	lru *dedupLRU
	db  DBDedupChecker

	tier2Errors int64
}

func NewDedupChecker(capacity int, db DBDedupChecker) *DedupChecker {
	return &DedupChecker{
		lru: newDedupLRU(capacity),
		db:  db,
	}
}

// IsDuplicate reports whether callID was already processed. The tier
// is "lru" or "db" on hits, empty on misses.
func (d *DedupChecker) IsDuplicate(callID string) (bool, string) {
	if d.lru.Contains(callID) {
		return true, "lru"
	}

	if d.db != nil {
		seen, err := d.db.Seen(callID)
		if err != nil {
			d.tier2Errors++
			return false, ""
		}
		if seen {
			d.lru.Add(callID)
			return true, "db"
		}
	}

	return false, ""
}

// MarkProcessed records callID once its call has committed.
func (d *DedupChecker) MarkProcessed(callID string) {
	d.lru.Add(callID)
}

// Warm preloads the hot tier with persisted call IDs, newest first.
func (d *DedupChecker) Warm(callIDs []string) {
	for i := len(callIDs) - 1; i >= 0; i-- {
		d.lru.Add(callIDs[i])
	}
}

// Tier2Errors returns how many cold-tier lookups have failed.
func (d *DedupChecker) Tier2Errors() int64 {
	return d.tier2Errors
}

// Size returns the number of IDs in the hot tier.
func (d *DedupChecker) Size() int {
	return d.lru.Size()
}

// dedupLRU is a fixed-capacity set with least-recently-used eviction.
type dedupLRU struct {
	capacity int
	entries  map[string]*list.Element
	order    *list.List
}

func newDedupLRU(capacity int) *dedupLRU {
	if capacity <= 0 {
		capacity = DefaultDedupCapacity
	}
	return &dedupLRU{
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Contains reports whether id is cached and refreshes its recency.
func (l *dedupLRU) Contains(id string) bool {
	elem, ok := l.entries[id]
	if ok {
		l.order.MoveToFront(elem)
	}
	return ok
}

// Add inserts id, evicting the least recently used entry when full.
func (l *dedupLRU) Add(id string) {
	if elem, ok := l.entries[id]; ok {
		l.order.MoveToFront(elem)
		return
	}

	if l.order.Len() >= l.capacity {
		oldest := l.order.Back()
		if oldest != nil {
			l.order.Remove(oldest)
			delete(l.entries, oldest.Value.(string))
		}
	}

	l.entries[id] = l.order.PushFront(id)
}

func (l *dedupLRU) Size() int {
	return l.order.Len()
}
