package storage_test

import (
	"bytes"
	"context"
	"testing"

	"OogaLedger/internal/storage"
)

// ============================================================================
// Test: MemoryKV
// ============================================================================

func TestMemoryKV_AbsentKeyIsNil(t *testing.T) {
	kv := storage.NewMemoryKV()

	v, err := kv.Get(context.Background(), "/no-such-key")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != nil {
		t.Errorf("absent key: got %v, want nil", v)
	}
}

func TestMemoryKV_ApplyThenGet(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()

	err := kv.Apply(ctx, []storage.Put{
		{Key: "a", Value: []byte{1}},
		{Key: "b", Value: []byte{2}},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	v, err := kv.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(v, []byte{1}) {
		t.Errorf("got % x, want 01", v)
	}
	if kv.Len() != 2 {
		t.Errorf("len: got %d, want 2", kv.Len())
	}
}

func TestMemoryKV_GetReturnsCopy(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()

	kv.Apply(ctx, []storage.Put{{Key: "a", Value: []byte{1, 2, 3}}})

	v, _ := kv.Get(ctx, "a")
	v[0] = 99

	again, _ := kv.Get(ctx, "a")
	if again[0] != 1 {
		t.Error("mutating a returned value should not affect the store")
	}
}

func TestMemoryKV_SnapshotIsDeepCopy(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()

	kv.Apply(ctx, []storage.Put{{Key: "a", Value: []byte{5}}})

	snap := kv.Snapshot()
	snap["a"][0] = 99
	snap["b"] = []byte{1}

	v, _ := kv.Get(ctx, "a")
	if v[0] != 5 {
		t.Error("snapshot mutation should not affect the store")
	}
	if kv.Len() != 1 {
		t.Errorf("len: got %d, want 1", kv.Len())
	}
}

// ============================================================================
// Test: Stage
// ============================================================================

func TestStage_GetFallsThrough(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()
	kv.Apply(ctx, []storage.Put{{Key: "a", Value: []byte{1}}})

	st := storage.NewStage(kv)
	v, err := st.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(v, []byte{1}) {
		t.Errorf("got % x, want 01", v)
	}
}

func TestStage_GetSeesStagedWrite(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()
	kv.Apply(ctx, []storage.Put{{Key: "a", Value: []byte{1}}})

	st := storage.NewStage(kv)
	st.Put("a", []byte{2})

	v, _ := st.Get(ctx, "a")
	if !bytes.Equal(v, []byte{2}) {
		t.Errorf("staged read: got % x, want 02", v)
	}

	// Underlying store is untouched until commit.
	under, _ := kv.Get(ctx, "a")
	if !bytes.Equal(under, []byte{1}) {
		t.Errorf("underlying store: got % x, want 01", under)
	}
}

func TestStage_CommitAppliesAll(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()

	st := storage.NewStage(kv)
	st.Put("a", []byte{1})
	st.Put("b", []byte{2})

	if !st.Dirty() {
		t.Fatal("stage should be dirty before commit")
	}
	if err := st.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if st.Dirty() {
		t.Error("stage should be clean after commit")
	}

	if kv.Len() != 2 {
		t.Errorf("len after commit: got %d, want 2", kv.Len())
	}
}

func TestStage_DiscardLeavesStoreUntouched(t *testing.T) {
	kv := storage.NewMemoryKV()

	st := storage.NewStage(kv)
	st.Put("a", []byte{1})
	st.Discard()

	if st.Dirty() {
		t.Error("stage should be clean after discard")
	}
	if kv.Len() != 0 {
		t.Errorf("len after discard: got %d, want 0", kv.Len())
	}
}

func TestStage_RepeatedPutKeepsFirstPosition(t *testing.T) {
	kv := storage.NewMemoryKV()

	st := storage.NewStage(kv)
	st.Put("a", []byte{1})
	st.Put("b", []byte{2})
	st.Put("a", []byte{3})

	puts := st.Puts()
	if len(puts) != 2 {
		t.Fatalf("puts: got %d entries, want 2", len(puts))
	}
	if puts[0].Key != "a" || !bytes.Equal(puts[0].Value, []byte{3}) {
		t.Errorf("puts[0]: got %s=% x, want a=03", puts[0].Key, puts[0].Value)
	}
	if puts[1].Key != "b" {
		t.Errorf("puts[1]: got %s, want b", puts[1].Key)
	}
}

func TestStage_PutBuffersCopy(t *testing.T) {
	kv := storage.NewMemoryKV()

	st := storage.NewStage(kv)
	val := []byte{1}
	st.Put("a", val)
	val[0] = 99

	v, _ := st.Get(context.Background(), "a")
	if v[0] != 1 {
		t.Error("mutating the caller's slice should not affect the staged value")
	}
}

func TestStage_CommitEmptyIsNoop(t *testing.T) {
	kv := storage.NewMemoryKV()
	st := storage.NewStage(kv)

	if err := st.Commit(context.Background()); err != nil {
		t.Fatalf("empty commit: %v", err)
	}
	if kv.Len() != 0 {
		t.Errorf("len: got %d, want 0", kv.Len())
	}
}
