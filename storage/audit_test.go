package storage

import (
	"context"
	"testing"
	"time"

	"maple/tools"
)

func newTestLog(t *testing.T) *AuditLog {
	t.Helper()
	a, err := NewAuditLog(t.TempDir())
	if err != nil {
		t.Fatalf("NewAuditLog: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestAuditRecordAndRecent(t *testing.T) {
	a := newTestLog(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	recs := []tools.Record{
		{SessionID: "s1", Tool: "read_file", FilePath: "a.go", Result: "package a", Outcome: "ok", Time: base},
		{SessionID: "s1", Tool: "write_file", FilePath: "b.go", Result: "File write for 'b.go' cancelled.", Outcome: "cancelled", Time: base.Add(time.Minute)},
		{SessionID: "s2", Tool: "edit_file", FilePath: "c.go", Result: "Error: File not found", Outcome: "error", Time: base.Add(2 * time.Minute)},
	}
	for _, r := range recs {
		if err := a.Record(ctx, r); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	tests := []struct {
		name      string
		limit     int
		wantTools []string
	}{
		{"all newest first", 10, []string{"edit_file", "write_file", "read_file"}},
		{"limited", 1, []string{"edit_file"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Recent(ctx, tt.limit)
			if err != nil {
				t.Fatalf("Recent: %v", err)
			}
			if len(got) != len(tt.wantTools) {
				t.Fatalf("got %d entries, want %d", len(got), len(tt.wantTools))
			}
			for i, e := range got {
				if e.Tool != tt.wantTools[i] {
					t.Errorf("entry %d tool = %s, want %s", i, e.Tool, tt.wantTools[i])
				}
				if e.ID == "" {
					t.Errorf("entry %d has no id", i)
				}
			}
		})
	}

	s1, err := a.BySession(ctx, "s1")
	if err != nil {
		t.Fatalf("BySession: %v", err)
	}
	if len(s1) != 2 || s1[0].Tool != "read_file" || s1[1].Outcome != "cancelled" {
		t.Errorf("session s1 = %+v", s1)
	}
}

func TestAuditPrune(t *testing.T) {
	a := newTestLog(t)
	ctx := context.Background()
	now := time.Now()

	for _, age := range []time.Duration{48 * time.Hour, time.Hour} {
		if err := a.Record(ctx, tools.Record{SessionID: "s", Tool: "read_file", Time: now.Add(-age)}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := a.Prune(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}
	left, _ := a.Recent(ctx, 10)
	if len(left) != 1 {
		t.Errorf("%d entries left, want 1", len(left))
	}
}

func TestAuditReopen(t *testing.T) {
	dir := t.TempDir()
	a, err := NewAuditLog(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Record(context.Background(), tools.Record{SessionID: "s", Tool: "read_file"}); err != nil {
		t.Fatal(err)
	}
	a.Close()

	b, err := NewAuditLog(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	got, _ := b.Recent(context.Background(), 10)
	if len(got) != 1 {
		t.Errorf("got %d entries after reopen, want 1", len(got))
	}
}
