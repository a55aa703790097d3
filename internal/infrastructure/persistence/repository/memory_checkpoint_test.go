package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/garyjia/ai-procurement/internal/application/port"
	"github.com/garyjia/ai-procurement/internal/domain/entity"
	"github.com/garyjia/ai-procurement/internal/domain/workflow"
)

func TestMemoryCheckpointStore_SaveLoad(t *testing.T) {
	store := NewMemoryCheckpointStore()
	ctx := context.Background()

	state := entity.NewProcurementState("wf-1", "thread-1", "SKU-001", "Widget", 10)
	state.SetStatus(workflow.StateAwaitingApproval)

	if err := store.Save(ctx, state.ThreadID, state); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := store.Load(ctx, "thread-1")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.WorkflowID != "wf-1" || loaded.WorkflowStatus != workflow.StateAwaitingApproval {
		t.Errorf("Load() returned wrong state: %+v", loaded)
	}
}

func TestMemoryCheckpointStore_LoadMissing(t *testing.T) {
	store := NewMemoryCheckpointStore()

	_, err := store.Load(context.Background(), "no-such-thread")
	if !errors.Is(err, port.ErrCheckpointNotFound) {
		t.Errorf("Load() error = %v, want ErrCheckpointNotFound", err)
	}
}

func TestMemoryCheckpointStore_LoadReturnsCopy(t *testing.T) {
	store := NewMemoryCheckpointStore()
	ctx := context.Background()

	state := entity.NewProcurementState("wf-1", "thread-1", "SKU-001", "Widget", 10)
	if err := store.Save(ctx, state.ThreadID, state); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	first, _ := store.Load(ctx, "thread-1")
	first.SKU = "mutated"

	second, _ := store.Load(ctx, "thread-1")
	if second.SKU != "Widget" {
		t.Error("mutating a loaded state must not affect the stored checkpoint")
	}
}

func TestMemoryCheckpointStore_ThreadsAreIsolated(t *testing.T) {
	store := NewMemoryCheckpointStore()
	ctx := context.Background()

	a := entity.NewProcurementState("wf-a", "thread-a", "SKU-A", "Alpha", 1)
	b := entity.NewProcurementState("wf-b", "thread-b", "SKU-B", "Beta", 2)

	if err := store.Save(ctx, a.ThreadID, a); err != nil {
		t.Fatalf("Save(a) error: %v", err)
	}
	if err := store.Save(ctx, b.ThreadID, b); err != nil {
		t.Fatalf("Save(b) error: %v", err)
	}

	// Overwrite a and make sure b is untouched
	a.SetStatus(workflow.StateFailed)
	a.ErrorMessage = "boom"
	if err := store.Save(ctx, a.ThreadID, a); err != nil {
		t.Fatalf("Save(a) error: %v", err)
	}

	gotB, err := store.Load(ctx, "thread-b")
	if err != nil {
		t.Fatalf("Load(b) error: %v", err)
	}
	if gotB.WorkflowID != "wf-b" || gotB.WorkflowStatus != workflow.StateInitialized {
		t.Errorf("workflow b contaminated by writes to a: %+v", gotB)
	}

	gotA, err := store.Load(ctx, "thread-a")
	if err != nil {
		t.Fatalf("Load(a) error: %v", err)
	}
	if gotA.WorkflowStatus != workflow.StateFailed {
		t.Errorf("latest write for a not visible, got %v", gotA.WorkflowStatus)
	}
}
