package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/papapumpkin/orrery/internal/graph"
	"github.com/papapumpkin/orrery/internal/store"
	"github.com/papapumpkin/orrery/internal/task"
)

func testSession(t *testing.T) *session {
	t.Helper()
	return &session{
		blobs: store.NewMemory(),
		graph: graph.New(),
	}
}

func addTask(s *session, title string) task.Facts {
	f := task.Facts{
		ID:        task.NewID(),
		Title:     title,
		RawInput:  title,
		Energy:    task.EnergyMedium,
		Kind:      task.KindObligation,
		CreatedAt: time.Now(),
	}
	s.tasks = append(s.tasks, f)
	return f
}

func TestFind_ByIDPrefixAndTitle(t *testing.T) {
	t.Parallel()
	s := testSession(t)
	tax := addTask(s, "File taxes")
	addTask(s, "Walk the dog")

	got, err := s.find(tax.ID.String())
	if err != nil || got.ID != tax.ID {
		t.Fatalf("find by full ID: got %v, err %v", got.ID, err)
	}

	got, err = s.find(tax.ID.String()[:8])
	if err != nil || got.ID != tax.ID {
		t.Fatalf("find by ID prefix: got %v, err %v", got.ID, err)
	}

	got, err = s.find("taxes")
	if err != nil || got.ID != tax.ID {
		t.Fatalf("find by title substring: got %v, err %v", got.ID, err)
	}
}

func TestFind_NoMatchAndAmbiguous(t *testing.T) {
	t.Parallel()
	s := testSession(t)
	addTask(s, "Call dentist")
	addTask(s, "Call plumber")

	if _, err := s.find("nonexistent"); err == nil {
		t.Fatal("expected error for unknown reference")
	}
	if _, err := s.find("call"); err == nil {
		t.Fatal("expected error for ambiguous reference")
	}
}

func TestRemoveAndUpdate(t *testing.T) {
	t.Parallel()
	s := testSession(t)
	a := addTask(s, "one")
	b := addTask(s, "two")

	b.DeferCount = 3
	s.update(b)
	if s.tasks[1].DeferCount != 3 {
		t.Fatalf("update did not stick: %+v", s.tasks[1])
	}

	s.remove(a.ID)
	if len(s.tasks) != 1 || s.tasks[0].ID != b.ID {
		t.Fatalf("remove left %+v", s.tasks)
	}

	s.remove(a.ID) // already gone, no-op
	if len(s.tasks) != 1 {
		t.Fatalf("second remove changed list: %+v", s.tasks)
	}
}

func TestSaveState_RoundTripsTasksAndEdges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := testSession(t)
	a := addTask(s, "prep")
	b := addTask(s, "ship")
	if err := s.graph.AddDependency(a.ID, b.ID); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	if err := s.saveState(ctx); err != nil {
		t.Fatalf("saveState: %v", err)
	}

	fresh := &session{blobs: s.blobs, graph: graph.New()}
	fresh.restoreTasks(ctx)
	fresh.restoreEdges(ctx)

	if len(fresh.tasks) != 2 {
		t.Fatalf("restored %d tasks, want 2", len(fresh.tasks))
	}
	if got := fresh.graph.Blockers(b.ID); len(got) != 1 || got[0] != a.ID {
		t.Fatalf("restored blockers = %v, want [%v]", got, a.ID)
	}
}

func TestRestore_MissingAndCorruptBlobs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := testSession(t)
	s.restoreTasks(ctx)
	s.restoreEdges(ctx)
	if len(s.tasks) != 0 || s.graph.Len() != 0 {
		t.Fatal("restore from empty store should leave empty state")
	}

	_ = s.blobs.Save(ctx, store.KeyTasks, []byte("{not json"))
	_ = s.blobs.Save(ctx, store.KeyEdges, []byte("{not json"))
	s.restoreTasks(ctx)
	s.restoreEdges(ctx)
	if len(s.tasks) != 0 || s.graph.Len() != 0 {
		t.Fatal("corrupt blobs should be ignored")
	}
}

func TestTitleFor(t *testing.T) {
	t.Parallel()
	s := testSession(t)
	f := addTask(s, "known task")

	if got := s.titleFor(f.ID); got != "known task" {
		t.Fatalf("titleFor known = %q", got)
	}
	stranger := task.NewID()
	if got := s.titleFor(stranger); got != shortID(stranger) {
		t.Fatalf("titleFor unknown = %q, want short ID", got)
	}
}

func TestParseDeadline(t *testing.T) {
	t.Parallel()

	if _, err := parseDeadline("not a date"); err == nil {
		t.Fatal("expected error for garbage input")
	}

	d, err := parseDeadline("2026-09-15T14:00:00Z")
	if err != nil {
		t.Fatalf("RFC 3339: %v", err)
	}
	if d.Hour() != 14 {
		t.Fatalf("RFC 3339 hour = %d", d.Hour())
	}

	d, err = parseDeadline("2026-09-15")
	if err != nil {
		t.Fatalf("date only: %v", err)
	}
	if d.Day() != 15 || d.Hour() != 23 || d.Minute() != 59 {
		t.Fatalf("date-only deadline should be end of day, got %v", d)
	}
}
