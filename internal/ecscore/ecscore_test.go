package ecscore

import "testing"

func TestHandleRecycleBumpsGeneration(t *testing.T) {
	w := NewWorld()
	a := w.Create()
	w.Destroy(a)
	b := w.Create()

	if a.Index != b.Index {
		t.Fatalf("expected freed slot to be reused, got %d vs %d", a.Index, b.Index)
	}
	if a.Gen == b.Gen {
		t.Fatalf("expected generation bump on recycle")
	}
	if w.Alive(a) {
		t.Fatalf("stale handle must not read as alive")
	}
	if !w.Alive(b) {
		t.Fatalf("fresh handle must read as alive")
	}
}

func TestStoreSetGetRemove(t *testing.T) {
	type hp struct{ cur, max int }
	w := NewWorld()
	s := NewStore[hp]()
	h := w.Create()

	if _, ok := s.Get(h); ok {
		t.Fatalf("expected empty store miss")
	}
	s.Set(h, hp{cur: 5, max: 10})
	got, ok := s.Get(h)
	if !ok || got.cur != 5 {
		t.Fatalf("expected stored component, got %+v ok=%v", got, ok)
	}

	if !s.Mutate(h, func(v *hp) { v.cur = 7 }) {
		t.Fatalf("expected mutate to find the component")
	}
	if s.MustGet(h).cur != 7 {
		t.Fatalf("expected in-place mutation visible")
	}

	s.Remove(h)
	if s.Has(h) {
		t.Fatalf("expected component removed")
	}
}

func TestTagsOneShotLifecycle(t *testing.T) {
	w := NewWorld()
	tags := NewTags()
	a, b := w.Create(), w.Create()

	tags.Enable(a)
	tags.Enable(a) // idempotent
	tags.Enable(b)
	if tags.Len() != 2 {
		t.Fatalf("expected 2 tagged, got %d", tags.Len())
	}

	tags.Disable(b)
	if tags.Has(b) {
		t.Fatalf("expected b untagged")
	}

	seen := 0
	tags.Each(func(Handle) { seen++ })
	if seen != 1 {
		t.Fatalf("expected Each to visit 1 handle, got %d", seen)
	}

	tags.Clear()
	if tags.Len() != 0 {
		t.Fatalf("expected cleared tag set")
	}
}
