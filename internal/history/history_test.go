package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	entries := []Entry{
		{StartedAt: base, FinishedAt: base.Add(time.Minute), Input: "a.mkv", Output: "a.av1.mkv", Outcome: "completed", Frames: 100, TotalFrames: 100, Bytes: 1 << 20},
		{StartedAt: base.Add(time.Hour), FinishedAt: base.Add(2 * time.Hour), Input: "b.mkv", Output: "b.av1.mkv", Outcome: "completed", ExitCode: 1, Error: "av1an exited with status 1"},
		{StartedAt: base.Add(30 * time.Minute), FinishedAt: base.Add(31 * time.Minute), Input: "c.mkv", Output: "c.av1.mkv", Outcome: "canceled", Error: "encode canceled"},
	}
	for i := range entries {
		got, err := s.Record(ctx, entries[i])
		if err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if got.ID == "" {
			t.Fatal("Record() did not assign an ID")
		}
		entries[i] = got
	}

	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	wantOrder := []string{"b.mkv", "c.mkv", "a.mkv"}
	if len(all) != len(wantOrder) {
		t.Fatalf("List() returned %d entries, want %d", len(all), len(wantOrder))
	}
	for i, in := range wantOrder {
		if all[i].Input != in {
			t.Errorf("List()[%d].Input = %q, want %q", i, all[i].Input, in)
		}
	}

	b := all[0]
	if b.ID != entries[1].ID || b.ExitCode != 1 || b.Error != "av1an exited with status 1" {
		t.Errorf("List()[0] = %+v, want entry b", b)
	}
	if !b.StartedAt.Equal(entries[1].StartedAt) || b.Duration() != time.Hour {
		t.Errorf("timestamps = %v..%v, want %v lasting 1h", b.StartedAt, b.FinishedAt, entries[1].StartedAt)
	}
	a := all[2]
	if a.Frames != 100 || a.TotalFrames != 100 || a.Bytes != 1<<20 || a.Error != "" {
		t.Errorf("List()[2] = %+v, want entry a", a)
	}

	limited, err := s.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d entries", len(limited))
	}
}

func TestOpen_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Record(ctx, Entry{ID: "fixed", Outcome: "completed"}); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].ID != "fixed" {
		t.Errorf("List() after reopen = %+v", all)
	}
	if _, err := s.Record(ctx, Entry{ID: "fixed"}); err == nil {
		t.Error("Record() with duplicate ID error = nil, want error")
	}
}

func TestClose_Nil(t *testing.T) {
	var s *Store
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil store = %v", err)
	}
}
