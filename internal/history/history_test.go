package history

import (
	"bytes"
	"testing"
	"time"
)

func TestStoreAddGet(t *testing.T) {
	s := NewStore(time.Hour, 10)

	e := s.Add("Juan Perez", "Offer Letter - Juan Perez.pptx", "application/vnd.openxmlformats-officedocument.presentationml.presentation", []byte("doc-bytes"))
	if e.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if e.Size != int64(len("doc-bytes")) {
		t.Errorf("Size = %d, want %d", e.Size, len("doc-bytes"))
	}

	got := s.Get(e.ID)
	if got == nil {
		t.Fatal("Get returned nil for a stored entry")
	}
	if got.CandidateName != "Juan Perez" {
		t.Errorf("CandidateName = %q", got.CandidateName)
	}
	if !bytes.Equal(got.Data(), []byte("doc-bytes")) {
		t.Errorf("Data = %q", got.Data())
	}

	if s.Get("missing") != nil {
		t.Error("Get for unknown ID should return nil")
	}
}

func TestStoreDelete(t *testing.T) {
	s := NewStore(time.Hour, 10)
	e := s.Add("A", "a.pptx", "application/octet-stream", nil)

	if !s.Delete(e.ID) {
		t.Error("Delete of existing entry should report true")
	}
	if s.Delete(e.ID) {
		t.Error("second Delete should report false")
	}
	if s.Get(e.ID) != nil {
		t.Error("entry still retrievable after Delete")
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	s := NewStore(time.Hour, 10)
	now := time.Now()
	for i, name := range []string{"first", "second", "third"} {
		e := s.Add(name, name+".pptx", "application/octet-stream", nil)
		e.CreatedAt = now.Add(time.Duration(i) * time.Second)
	}

	list := s.List()
	if len(list) != 3 {
		t.Fatalf("List returned %d entries, want 3", len(list))
	}
	for i, want := range []string{"third", "second", "first"} {
		if list[i].CandidateName != want {
			t.Errorf("List[%d] = %q, want %q", i, list[i].CandidateName, want)
		}
	}
}

func TestStoreCapEvictsOldest(t *testing.T) {
	s := NewStore(time.Hour, 2)
	now := time.Now()

	a := s.Add("oldest", "a.pptx", "application/octet-stream", nil)
	a.CreatedAt = now.Add(-2 * time.Minute)
	b := s.Add("middle", "b.pptx", "application/octet-stream", nil)
	b.CreatedAt = now.Add(-time.Minute)
	c := s.Add("newest", "c.pptx", "application/octet-stream", nil)

	if s.Get(a.ID) != nil {
		t.Error("oldest entry should have been evicted at the cap")
	}
	if s.Get(b.ID) == nil || s.Get(c.ID) == nil {
		t.Error("newer entries should survive the cap")
	}
	if len(s.List()) != 2 {
		t.Errorf("store holds %d entries, want 2", len(s.List()))
	}
}

func TestStoreCleanup(t *testing.T) {
	s := NewStore(time.Minute, 10)

	expired := s.Add("old", "old.pptx", "application/octet-stream", nil)
	expired.CreatedAt = time.Now().Add(-2 * time.Minute)
	live := s.Add("new", "new.pptx", "application/octet-stream", nil)

	s.Cleanup()

	if s.Get(expired.ID) != nil {
		t.Error("expired entry survived Cleanup")
	}
	if s.Get(live.ID) == nil {
		t.Error("live entry removed by Cleanup")
	}
}

func TestStoreZeroCapUnbounded(t *testing.T) {
	s := NewStore(time.Hour, 0)
	for i := 0; i < 5; i++ {
		s.Add("x", "x.pptx", "application/octet-stream", nil)
	}
	if got := len(s.List()); got != 5 {
		t.Errorf("store holds %d entries, want 5", got)
	}
}
