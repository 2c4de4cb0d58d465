package storage

import "context"

// Stage buffers writes against a KV until Commit. Reads see staged
// writes first and fall through to the underlying store otherwise, so
// a sequence of operations observes its own effects before they are
// durable. Commit applies every buffered put through a single
// KV.Apply; Discard drops them all. Either way the underlying store
// is never left holding a partial batch.
type Stage struct {
	kv      KV
	pending map[string]int // key -> index into puts
	puts    []Put
}

func NewStage(kv KV) *Stage {
	return &Stage{kv: kv, pending: make(map[string]int)}
}

func (s *Stage) Get(ctx context.Context, key string) ([]byte, error) {
	if i, ok := s.pending[key]; ok {
		v := s.puts[i].Value
		out := make([]byte, len(v))
		copy(out, v)
		return out, nil
	}
	return s.kv.Get(ctx, key)
}

// Put buffers a write. A repeated put to the same key overwrites the
// buffered value in place, keeping the key's first-write position.
func (s *Stage) Put(key string, value []byte) {
	v := make([]byte, len(value))
	copy(v, value)
	if i, ok := s.pending[key]; ok {
		s.puts[i].Value = v
		return
	}
	s.pending[key] = len(s.puts)
	s.puts = append(s.puts, Put{Key: key, Value: v})
}

// Puts returns the buffered writes in first-write key order.
func (s *Stage) Puts() []Put {
	return s.puts
}

// Dirty reports whether any writes are buffered.
func (s *Stage) Dirty() bool {
	return len(s.puts) > 0
}

// Commit applies the buffered writes and clears the stage. On error
// the writes stay buffered and the underlying store is unchanged.
func (s *Stage) Commit(ctx context.Context) error {
	if len(s.puts) == 0 {
		return nil
	}
	if err := s.kv.Apply(ctx, s.puts); err != nil {
		return err
	}
	s.reset()
	return nil
}

// Discard drops the buffered writes without applying them.
func (s *Stage) Discard() {
	s.reset()
}

func (s *Stage) reset() {
	s.pending = make(map[string]int)
	s.puts = nil
}
